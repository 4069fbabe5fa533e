package models

import (
	"strings"
	"time"
)

// Client is a customer of the shop. Name keeps its display form; NameKey is the
// lower-cased form used for matching and carries the uniqueness constraint.
type Client struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`
	Name    string `gorm:"size:100;not null" json:"name" bson:"name"`
	NameKey string `gorm:"size:100;uniqueIndex;not null" json:"-" bson:"nameKey"`
	Phone   string `gorm:"size:30" json:"phone" bson:"phone"`
	Notes   string `gorm:"type:text" json:"notes" bson:"notes"`

	TotalAppointments int    `gorm:"not null;default:0" json:"totalAppointments" bson:"totalAppointments"`
	LastVisit         string `gorm:"size:10" json:"lastVisit" bson:"lastVisit"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NameKey returns the case-insensitive match key for a client name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
