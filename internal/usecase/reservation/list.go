package reservation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

type ListReservationsInput struct {
	Date     string
	ClientID string
}

// ListReservations returns reservations in calendar order, cached per filter.
type ListReservations struct {
	d Deps
}

func NewListReservations(d Deps) *ListReservations {
	return &ListReservations{d: d.withDefaults()}
}

func (uc *ListReservations) Execute(ctx context.Context, in ListReservationsInput) ([]models.Reservation, error) {
	d := uc.d

	filter := booking.ReservationFilter{ClientID: strings.TrimSpace(in.ClientID)}
	if raw := strings.TrimSpace(in.Date); raw != "" {
		date, ok := d.Normalizer.ParseDate(raw)
		if !ok {
			return nil, &booking.Rejection{Reason: booking.ReasonParseFailure, Value: raw}
		}
		filter.Date = date
	}

	key := "date=" + filter.Date + "|client=" + filter.ClientID

	var cached []models.Reservation
	hit, err := d.Cache.Get(ctx, cache.NamespaceReservations, key, &cached)
	if err != nil {
		d.Log.Warn("reservations cache read failed", zap.Error(err))
	}
	d.Metrics.CacheLookup(cache.NamespaceReservations, hit)
	if hit {
		return cached, nil
	}

	out, err := d.Repo.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}
	booking.SortReservations(out)

	if err := d.Cache.Set(ctx, cache.NamespaceReservations, key, out, d.TTL); err != nil {
		d.Log.Warn("reservations cache write failed", zap.Error(err))
	}
	return out, nil
}
