package audit

import (
	"context"
	"encoding/json"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// Logger persists audit events through whichever store is active.
type Logger struct {
	store booking.AuditStore
}

func New(store booking.AuditStore) *Logger {
	return &Logger{store: store}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	log := models.AuditLog{
		Actor:    ev.Actor,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Metadata: metaJSON,
	}

	return l.store.SaveAuditLog(ctx, &log)
}
