package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/httpresp"
	"github.com/BruksfildServices01/barber-calendar/internal/middleware"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
	ucSettings "github.com/BruksfildServices01/barber-calendar/internal/usecase/settings"
)

type SettingsHandler struct {
	get    *ucSettings.GetSettings
	update *ucSettings.UpdateSettings
	log    *zap.Logger
}

func NewSettingsHandler(get *ucSettings.GetSettings, update *ucSettings.UpdateSettings, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{get: get, update: update, log: log}
}

// UpdateSettingsRequest is a partial update; absent fields are kept.
type UpdateSettingsRequest struct {
	BusinessName *string `json:"businessName"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`

	StartHour           *int `json:"startHour"`
	EndHour             *int `json:"endHour"`
	AppointmentDuration *int `json:"appointmentDuration"`

	WorkingDays *models.WorkingDays `json:"workingDays"`
	Services    []models.Service    `json:"services"`
}

// ======================================================
// GET
// ======================================================

func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.get.Execute(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err, "failed_to_load_settings")
		return
	}

	httpresp.OK(c, s)
}

// ======================================================
// UPDATE
// ======================================================

func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	s, err := h.update.Execute(c.Request.Context(), ucSettings.UpdateSettingsInput{
		Actor:               middleware.Actor(c),
		BusinessName:        req.BusinessName,
		Phone:               req.Phone,
		Email:               req.Email,
		Address:             req.Address,
		StartHour:           req.StartHour,
		EndHour:             req.EndHour,
		AppointmentDuration: req.AppointmentDuration,
		WorkingDays:         req.WorkingDays,
		Services:            req.Services,
	})
	if err != nil {
		writeError(c, h.log, err, "failed_to_save_settings")
		return
	}

	httpresp.OK(c, s)
}
