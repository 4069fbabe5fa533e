package models

import "time"

// SettingsID is the primary key of the single settings row.
const SettingsID uint = 1

type BusinessSettings struct {
	ID uint `gorm:"primaryKey" json:"-" bson:"-"`

	BusinessName string `gorm:"size:100" json:"businessName" bson:"businessName"`
	Phone        string `gorm:"size:30" json:"phone" bson:"phone"`
	Email        string `gorm:"size:100" json:"email" bson:"email"`
	Address      string `gorm:"size:255" json:"address" bson:"address"`

	StartHour           int `json:"startHour" bson:"startHour"`
	EndHour             int `json:"endHour" bson:"endHour"`
	AppointmentDuration int `json:"appointmentDuration" bson:"appointmentDuration"`

	WorkingDays WorkingDays `gorm:"embedded;embeddedPrefix:open_" json:"workingDays" bson:"workingDays"`
	Services    []Service   `gorm:"serializer:json;type:jsonb" json:"services" bson:"services"`

	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Service struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	Duration int     `json:"duration" bson:"duration"`
	Price    float64 `json:"price" bson:"price"`
}

type WorkingDays struct {
	Monday    bool `json:"monday" bson:"monday"`
	Tuesday   bool `json:"tuesday" bson:"tuesday"`
	Wednesday bool `json:"wednesday" bson:"wednesday"`
	Thursday  bool `json:"thursday" bson:"thursday"`
	Friday    bool `json:"friday" bson:"friday"`
	Saturday  bool `json:"saturday" bson:"saturday"`
	Sunday    bool `json:"sunday" bson:"sunday"`
}

// IsOpen reports whether the shop takes bookings on the given weekday.
func (w WorkingDays) IsOpen(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return false
	}
}
