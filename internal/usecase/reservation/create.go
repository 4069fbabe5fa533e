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

type CreateReservationInput struct {
	Actor string

	ClientName  string
	ClientPhone string

	Service string
	Date    string
	Time    string
	Notes   string
}

// ======================================================
// USE CASE
// ======================================================

type CreateReservation struct {
	d          Deps
	reconciler *ClientReconciler
}

func NewCreateReservation(d Deps, reconciler *ClientReconciler) *CreateReservation {
	return &CreateReservation{d: d.withDefaults(), reconciler: reconciler}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateReservation) Execute(
	ctx context.Context,
	in CreateReservationInput,
) (*models.Reservation, error) {

	d := uc.d

	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		return nil, httperr.ErrBusiness("client_name_required")
	}

	date, clock, err := d.normalizeSlot(in.Date, in.Time)
	if err != nil {
		return nil, d.rejected(err, "api", in.Date, in.Time)
	}

	// --------------------------------------------------
	// Booking rules
	// --------------------------------------------------
	settings, err := d.Settings.Execute(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := d.Repo.ListReservations(ctx, booking.ReservationFilter{Date: date})
	if err != nil {
		return nil, err
	}

	if err := booking.CanBook(*settings, existing, date, clock, d.Now(), ""); err != nil {
		return nil, d.rejected(err, "api", date, clock)
	}

	// --------------------------------------------------
	// Client
	// --------------------------------------------------
	ix, err := uc.reconciler.NewIndex(ctx)
	if err != nil {
		return nil, err
	}

	clientIn := booking.ClientInput{Name: name, Phone: in.ClientPhone, Notes: in.Notes}
	client, created := uc.reconciler.Apply(ix, clientIn, date)

	// --------------------------------------------------
	// Persist
	// --------------------------------------------------
	res := &models.Reservation{
		ClientID:    client.ID,
		ClientName:  name,
		ClientPhone: strings.TrimSpace(in.ClientPhone),
		Service:     strings.TrimSpace(in.Service),
		Date:        date,
		Time:        clock,
		Notes:       strings.TrimSpace(in.Notes),
	}

	if err := d.Repo.CreateReservation(ctx, res); err != nil {
		if errors.Is(err, booking.ErrDuplicate) {
			return nil, d.rejected(d.slotTaken(ctx, date, clock), "api", date, clock)
		}
		return nil, err
	}
	d.invalidate(ctx, cache.NamespaceReservations)

	// a booking whose client could not be recorded is taken back
	stored, err := uc.reconciler.Persist(ctx, ix, client, created, clientIn, date)
	if err != nil {
		d.Log.Error("client write failed, removing reservation", zap.String("id", res.ID), zap.Error(err))
		if derr := d.Repo.DeleteReservation(ctx, res.ID); derr != nil {
			d.Log.Error("reservation rollback failed", zap.String("id", res.ID), zap.Error(derr))
		}
		d.invalidate(ctx, cache.NamespaceReservations)
		return nil, err
	}
	if stored.ID != res.ClientID {
		relinked := *res
		relinked.ClientID = stored.ID
		if err := d.Repo.UpdateReservation(ctx, &relinked); err != nil {
			d.Log.Warn("reservation relink failed", zap.String("id", res.ID), zap.Error(err))
		} else {
			res = &relinked
		}
	}

	d.Metrics.ReservationOp("create")
	d.Audit.Dispatch(audit.Event{
		Actor:    in.Actor,
		Action:   "reservation_created",
		Entity:   "reservation",
		EntityID: res.ID,
		Metadata: map[string]any{
			"clientId":      res.ClientID,
			"date":          res.Date,
			"time":          res.Time,
			"clientCreated": created,
		},
	})

	return res, nil
}
