package reservation

import (
	"context"
	"errors"
	"strings"

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

// UpdateReservationInput changes only the non-nil fields.
type UpdateReservationInput struct {
	Actor string
	ID    string

	ClientName  *string
	ClientPhone *string
	Service     *string
	Date        *string
	Time        *string
	Notes       *string
}

// ======================================================
// USE CASE
// ======================================================

type UpdateReservation struct {
	d          Deps
	reconciler *ClientReconciler
}

func NewUpdateReservation(d Deps, reconciler *ClientReconciler) *UpdateReservation {
	return &UpdateReservation{d: d.withDefaults(), reconciler: reconciler}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute applies an edit. Moving to another slot is checked with the
// reservation itself excluded, so it never conflicts with its own slot and
// an elapsed slot of today stays valid. Edits that keep the slot skip the
// booking rules entirely. The client is reconciled only when the name
// changes to a different client.
func (uc *UpdateReservation) Execute(
	ctx context.Context,
	in UpdateReservationInput,
) (*models.Reservation, error) {

	d := uc.d

	current, err := d.Repo.GetReservation(ctx, in.ID)
	if errors.Is(err, booking.ErrNotFound) {
		return nil, httperr.ErrBusiness("reservation_not_found")
	}
	if err != nil {
		return nil, err
	}

	next := *current

	// --------------------------------------------------
	// Merge
	// --------------------------------------------------
	if in.ClientName != nil {
		next.ClientName = strings.TrimSpace(*in.ClientName)
		if next.ClientName == "" {
			return nil, httperr.ErrBusiness("client_name_required")
		}
	}
	if in.ClientPhone != nil {
		next.ClientPhone = strings.TrimSpace(*in.ClientPhone)
	}
	if in.Service != nil {
		next.Service = strings.TrimSpace(*in.Service)
	}
	if in.Notes != nil {
		next.Notes = strings.TrimSpace(*in.Notes)
	}

	rawDate, rawTime := current.Date, current.Time
	if in.Date != nil {
		rawDate = *in.Date
	}
	if in.Time != nil {
		rawTime = *in.Time
	}
	if in.Date != nil || in.Time != nil {
		next.Date, next.Time, err = d.normalizeSlot(rawDate, rawTime)
		if err != nil {
			return nil, d.rejected(err, "api", rawDate, rawTime)
		}
	}

	// --------------------------------------------------
	// Booking rules (moves only)
	// --------------------------------------------------
	moved := next.Date != current.Date || next.Time != current.Time
	if moved {
		settings, err := d.Settings.Execute(ctx)
		if err != nil {
			return nil, err
		}
		existing, err := d.Repo.ListReservations(ctx, booking.ReservationFilter{Date: next.Date})
		if err != nil {
			return nil, err
		}
		if err := booking.CanBook(*settings, existing, next.Date, next.Time, d.Now(), current.ID); err != nil {
			return nil, d.rejected(err, "api", next.Date, next.Time)
		}
	}

	// --------------------------------------------------
	// Client
	// --------------------------------------------------
	renamed := models.NameKey(next.ClientName) != models.NameKey(current.ClientName)

	var (
		ix       *booking.ClientIndex
		client   *models.Client
		created  bool
		clientIn booking.ClientInput
	)
	if renamed {
		ix, err = uc.reconciler.NewIndex(ctx)
		if err != nil {
			return nil, err
		}
		clientIn = booking.ClientInput{Name: next.ClientName, Phone: next.ClientPhone, Notes: next.Notes}
		client, created = uc.reconciler.Apply(ix, clientIn, next.Date)
		next.ClientID = client.ID
	}

	// --------------------------------------------------
	// Persist
	// --------------------------------------------------
	if err := d.Repo.UpdateReservation(ctx, &next); err != nil {
		switch {
		case errors.Is(err, booking.ErrDuplicate):
			return nil, d.rejected(d.slotTaken(ctx, next.Date, next.Time), "api", next.Date, next.Time)
		case errors.Is(err, booking.ErrNotFound):
			return nil, httperr.ErrBusiness("reservation_not_found")
		default:
			return nil, err
		}
	}
	d.invalidate(ctx, cache.NamespaceReservations)

	if renamed {
		stored, err := uc.reconciler.Persist(ctx, ix, client, created, clientIn, next.Date)
		if err != nil {
			d.Log.Error("client write failed, restoring reservation", zap.String("id", current.ID), zap.Error(err))
			if rerr := d.Repo.UpdateReservation(ctx, current); rerr != nil {
				d.Log.Error("reservation rollback failed", zap.String("id", current.ID), zap.Error(rerr))
			}
			d.invalidate(ctx, cache.NamespaceReservations)
			return nil, err
		}
		if stored.ID != next.ClientID {
			relinked := next
			relinked.ClientID = stored.ID
			if err := d.Repo.UpdateReservation(ctx, &relinked); err != nil {
				d.Log.Warn("reservation relink failed", zap.String("id", next.ID), zap.Error(err))
			} else {
				next = relinked
			}
		}
	}

	d.Metrics.ReservationOp("update")
	d.Audit.Dispatch(audit.Event{
		Actor:    in.Actor,
		Action:   "reservation_updated",
		Entity:   "reservation",
		EntityID: next.ID,
		Metadata: map[string]any{
			"from":    current.Date + " " + current.Time,
			"to":      next.Date + " " + next.Time,
			"renamed": renamed,
		},
	})

	return &next, nil
}
