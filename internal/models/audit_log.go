package models

import "time"

type AuditLog struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`

	Actor  string `gorm:"size:100" json:"actor" bson:"actor"`
	Action string `gorm:"size:50;not null;index" json:"action" bson:"action"`

	Entity   string `gorm:"size:50" json:"entity" bson:"entity"`
	EntityID string `gorm:"size:36" json:"entityId" bson:"entityId"`
	Metadata string `gorm:"type:text" json:"metadata" bson:"metadata"`

	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
}
