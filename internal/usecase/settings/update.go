package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// ======================================================
// INPUT
// ======================================================

// UpdateSettingsInput carries only the fields being changed; nil keeps the
// stored value. A non-nil Services replaces the whole list.
type UpdateSettingsInput struct {
	Actor string

	BusinessName *string
	Phone        *string
	Email        *string
	Address      *string

	StartHour           *int
	EndHour             *int
	AppointmentDuration *int

	WorkingDays *models.WorkingDays
	Services    []models.Service
}

// ======================================================
// USE CASE
// ======================================================

type UpdateSettings struct {
	repo    booking.SettingsStore
	current *GetSettings
	cache   cache.Cache
	audit   audit.Sink
	log     *zap.Logger

	// emailDomainOK is consulted when the email changes; nil skips the check.
	emailDomainOK func(email string) bool
}

func NewUpdateSettings(
	repo booking.SettingsStore,
	current *GetSettings,
	c cache.Cache,
	sink audit.Sink,
	log *zap.Logger,
	emailDomainOK func(string) bool,
) *UpdateSettings {
	if c == nil {
		c = cache.Nop{}
	}
	if sink == nil {
		sink = audit.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UpdateSettings{
		repo:          repo,
		current:       current,
		cache:         c,
		audit:         sink,
		log:           log,
		emailDomainOK: emailDomainOK,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *UpdateSettings) Execute(ctx context.Context, in UpdateSettingsInput) (*models.BusinessSettings, error) {
	cur, err := uc.current.Execute(ctx)
	if err != nil {
		return nil, err
	}
	next := *cur
	next.Services = append([]models.Service(nil), cur.Services...)

	// --------------------------------------------------
	// Merge
	// --------------------------------------------------
	if in.BusinessName != nil {
		next.BusinessName = strings.TrimSpace(*in.BusinessName)
	}
	if in.Phone != nil {
		next.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		next.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Address != nil {
		next.Address = strings.TrimSpace(*in.Address)
	}
	if in.StartHour != nil {
		next.StartHour = *in.StartHour
	}
	if in.EndHour != nil {
		next.EndHour = *in.EndHour
	}
	if in.AppointmentDuration != nil {
		next.AppointmentDuration = *in.AppointmentDuration
	}
	if in.WorkingDays != nil {
		next.WorkingDays = *in.WorkingDays
	}
	if in.Services != nil {
		next.Services = make([]models.Service, 0, len(in.Services))
		for _, svc := range in.Services {
			svc.Name = strings.TrimSpace(svc.Name)
			if svc.ID == "" {
				svc.ID = uuid.NewString()
			}
			next.Services = append(next.Services, svc)
		}
	}

	// --------------------------------------------------
	// Validation
	// --------------------------------------------------
	if err := booking.ValidateSettings(next); err != nil {
		return nil, httperr.ErrBusinessf("invalid_settings", "%s", strings.TrimPrefix(err.Error(), booking.ErrInvalidSettings.Error()+": "))
	}

	if uc.emailDomainOK != nil && next.Email != "" && next.Email != cur.Email {
		if !uc.emailDomainOK(next.Email) {
			return nil, httperr.ErrBusiness("invalid_email_domain")
		}
	}

	// --------------------------------------------------
	// Persist
	// --------------------------------------------------
	if err := uc.repo.SaveSettings(ctx, &next); err != nil {
		return nil, err
	}

	if err := uc.cache.Invalidate(ctx, cache.NamespaceSettings); err != nil {
		uc.log.Warn("settings cache invalidate failed", zap.Error(err))
	}

	uc.audit.Dispatch(audit.Event{
		Actor:  in.Actor,
		Action: "settings_updated",
		Entity: "settings",
		Metadata: map[string]any{
			"startHour":           next.StartHour,
			"endHour":             next.EndHour,
			"appointmentDuration": next.AppointmentDuration,
			"services":            len(next.Services),
		},
	})

	return &next, nil
}

// IsInvalid reports whether err came from settings validation.
func IsInvalid(err error) bool {
	return httperr.IsBusiness(err, "invalid_settings") || errors.Is(err, booking.ErrInvalidSettings)
}
