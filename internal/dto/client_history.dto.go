package dto

import "github.com/BruksfildServices01/barber-calendar/internal/models"

type ClientHistoryDTO struct {
	Client       models.Client        `json:"client"`
	Reservations []models.Reservation `json:"reservations"`
}
