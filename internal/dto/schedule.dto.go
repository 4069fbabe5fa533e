package dto

import "github.com/BruksfildServices01/barber-calendar/internal/models"

// ScheduleSlotDTO is one generated slot with its booking, if any.
type ScheduleSlotDTO struct {
	Time        string              `json:"time"`
	IsPast      bool                `json:"isPast"`
	Booked      bool                `json:"booked"`
	Reservation *models.Reservation `json:"reservation,omitempty"`
}

type DayScheduleDTO struct {
	Date       string            `json:"date"`
	Weekday    string            `json:"weekday"`
	WorkingDay bool              `json:"workingDay"`
	Slots      []ScheduleSlotDTO `json:"slots"`
	// Unslotted holds reservations whose time matches no generated slot,
	// e.g. after the opening hours changed.
	Unslotted []models.Reservation `json:"unslotted"`
}
