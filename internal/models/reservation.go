package models

import "time"

// Reservation occupies one (date, time) slot. ClientName and ClientPhone are a
// snapshot taken at booking time and are not re-synced when the client changes.
type Reservation struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`

	ClientID    string `gorm:"size:36;index" json:"clientId" bson:"clientId"`
	ClientName  string `gorm:"size:100" json:"clientName" bson:"clientName"`
	ClientPhone string `gorm:"size:30" json:"clientPhone" bson:"clientPhone"`

	Service string `gorm:"size:100" json:"service" bson:"service"`
	Date    string `gorm:"size:10;not null;uniqueIndex:idx_reservation_slot,priority:1" json:"date" bson:"date"`
	Time    string `gorm:"size:16;not null;uniqueIndex:idx_reservation_slot,priority:2" json:"time" bson:"time"`
	Notes   string `gorm:"type:text" json:"notes" bson:"notes"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
