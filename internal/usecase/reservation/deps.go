package reservation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// SettingsSource yields the settings in effect (stored or default).
type SettingsSource interface {
	Execute(ctx context.Context) (*models.BusinessSettings, error)
}

type Store interface {
	booking.ReservationStore
	booking.ClientStore
}

// Deps is shared by every reservation use case.
type Deps struct {
	Repo       Store
	Settings   SettingsSource
	Cache      cache.Cache
	TTL        time.Duration
	Audit      audit.Sink
	Metrics    *metrics.Metrics
	Log        *zap.Logger
	Now        func() time.Time
	Normalizer *booking.Normalizer
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Audit == nil {
		d.Audit = audit.Discard
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Normalizer == nil {
		d.Normalizer = booking.NewNormalizer(booking.DayFirst, d.Log)
	}
	return d
}

// normalizeSlot turns raw date/time text into canonical values.
func (d Deps) normalizeSlot(rawDate, rawTime string) (string, string, error) {
	date, ok := d.Normalizer.ParseDate(rawDate)
	if !ok {
		return "", "", &booking.Rejection{Reason: booking.ReasonParseFailure, Value: rawDate}
	}
	clock, ok := d.Normalizer.ParseTime(rawTime)
	if !ok {
		return "", "", &booking.Rejection{Reason: booking.ReasonParseFailure, Value: rawTime}
	}
	return date, clock, nil
}

// rejected records a refused booking and hands the error back.
func (d Deps) rejected(err error, origin, date, clock string) error {
	if rej, ok := booking.AsRejection(err); ok {
		d.Metrics.BookingRejected(string(rej.Reason), origin)
		d.Log.Info("booking rejected",
			zap.String("reason", string(rej.Reason)),
			zap.String("origin", origin),
			zap.String("date", date),
			zap.String("time", clock),
		)
	}
	return err
}

// slotTaken builds the rejection for a write that lost a race on the
// storage unique index.
func (d Deps) slotTaken(ctx context.Context, date, clock string) error {
	rej := &booking.Rejection{Reason: booking.ReasonSlotTaken}
	if existing, err := d.Repo.ListReservations(ctx, booking.ReservationFilter{Date: date}); err == nil {
		if holder := booking.FindConflict(existing, date, clock, ""); holder != nil {
			rej.TakenBy = holder.ClientName
		}
	}
	return rej
}

func (d Deps) invalidate(ctx context.Context, namespace string) {
	if err := d.Cache.Invalidate(ctx, namespace); err != nil {
		d.Log.Warn("cache invalidate failed", zap.String("namespace", namespace), zap.Error(err))
	}
}
