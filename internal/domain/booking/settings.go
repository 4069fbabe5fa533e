package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

var ErrInvalidSettings = errors.New("booking: invalid settings")

// DefaultSettings is served until the first settings update is stored.
func DefaultSettings() models.BusinessSettings {
	return models.BusinessSettings{
		ID:                  models.SettingsID,
		BusinessName:        "Elite Barber Shop",
		Phone:               "(555) 123-4567",
		Email:               "info@elitebarbershop.com",
		Address:             "123 Main Street, City, State 12345",
		StartHour:           9,
		EndHour:             18,
		AppointmentDuration: 30,
		WorkingDays: models.WorkingDays{
			Monday:    true,
			Tuesday:   true,
			Wednesday: true,
			Thursday:  true,
			Friday:    true,
			Saturday:  true,
			Sunday:    false,
		},
		Services: []models.Service{
			{ID: "1", Name: "Haircut", Duration: 30, Price: 25},
			{ID: "2", Name: "Beard Trim", Duration: 15, Price: 15},
			{ID: "3", Name: "Haircut + Beard", Duration: 45, Price: 35},
			{ID: "4", Name: "Shampoo & Style", Duration: 20, Price: 20},
			{ID: "5", Name: "Hot Towel Shave", Duration: 30, Price: 30},
		},
	}
}

// ValidateSettings checks the opening window and the service list. The
// returned error wraps ErrInvalidSettings.
func ValidateSettings(s models.BusinessSettings) error {
	if s.StartHour < 0 || s.StartHour > 23 || s.EndHour < 0 || s.EndHour > 23 {
		return fmt.Errorf("%w: hours must be between 0 and 23", ErrInvalidSettings)
	}
	if s.StartHour >= s.EndHour {
		return fmt.Errorf("%w: opening hour must be before closing hour", ErrInvalidSettings)
	}
	if s.AppointmentDuration <= 0 {
		return fmt.Errorf("%w: appointment duration must be positive", ErrInvalidSettings)
	}

	seen := make(map[string]struct{}, len(s.Services))
	for _, svc := range s.Services {
		name := strings.ToLower(strings.TrimSpace(svc.Name))
		if name == "" {
			return fmt.Errorf("%w: service name is required", ErrInvalidSettings)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate service %q", ErrInvalidSettings, svc.Name)
		}
		seen[name] = struct{}{}
		if svc.Duration <= 0 || svc.Price < 0 {
			return fmt.Errorf("%w: service %q needs a positive duration and a non-negative price", ErrInvalidSettings, svc.Name)
		}
	}
	return nil
}
