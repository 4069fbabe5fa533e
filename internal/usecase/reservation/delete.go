package reservation

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
)

// DeleteReservation frees the slot. Client counters are left untouched.
type DeleteReservation struct {
	d Deps
}

func NewDeleteReservation(d Deps) *DeleteReservation {
	return &DeleteReservation{d: d.withDefaults()}
}

func (uc *DeleteReservation) Execute(ctx context.Context, actor, id string) error {
	d := uc.d

	current, err := d.Repo.GetReservation(ctx, id)
	if errors.Is(err, booking.ErrNotFound) {
		return httperr.ErrBusiness("reservation_not_found")
	}
	if err != nil {
		return err
	}

	if err := d.Repo.DeleteReservation(ctx, id); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return httperr.ErrBusiness("reservation_not_found")
		}
		return err
	}
	d.invalidate(ctx, cache.NamespaceReservations)

	d.Metrics.ReservationOp("delete")
	d.Audit.Dispatch(audit.Event{
		Actor:    actor,
		Action:   "reservation_deleted",
		Entity:   "reservation",
		EntityID: id,
		Metadata: map[string]any{
			"clientName": current.ClientName,
			"date":       current.Date,
			"time":       current.Time,
		},
	})
	return nil
}
