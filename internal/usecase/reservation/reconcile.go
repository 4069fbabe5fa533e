package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// ClientReconciler is the one path through which a booking touches client
// records, for interactive bookings and imports alike.
type ClientReconciler struct {
	clients booking.ClientStore
	cache   cache.Cache
	log     *zap.Logger
}

func NewClientReconciler(clients booking.ClientStore, c cache.Cache, log *zap.Logger) *ClientReconciler {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ClientReconciler{clients: clients, cache: c, log: log}
}

// NewIndex loads every client once. Batches keep the index for their whole
// run so later rows see clients created by earlier ones.
func (r *ClientReconciler) NewIndex(ctx context.Context) (*booking.ClientIndex, error) {
	list, err := r.clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return booking.NewClientIndex(list), nil
}

// Apply records one booking on bookingDate against the index. A new client
// gets its id here so the reservation can point at it before it is stored.
func (r *ClientReconciler) Apply(ix *booking.ClientIndex, in booking.ClientInput, bookingDate string) (*models.Client, bool) {
	c, created := booking.UpsertClientForBooking(ix, in, bookingDate)
	if created && c.ID == "" {
		c.ID = uuid.NewString()
	}
	return c, created
}

// Persist stores a client returned by Apply. If another writer stored a
// client with the same name in the meantime, the booking is applied to that
// record instead and it is returned; callers must then re-point their
// reservation at the returned id.
func (r *ClientReconciler) Persist(
	ctx context.Context,
	ix *booking.ClientIndex,
	c *models.Client,
	created bool,
	in booking.ClientInput,
	bookingDate string,
) (*models.Client, error) {

	defer func() {
		if err := r.cache.Invalidate(ctx, cache.NamespaceClients); err != nil {
			r.log.Warn("cache invalidate failed", zap.String("namespace", cache.NamespaceClients), zap.Error(err))
		}
	}()

	if !created {
		if err := r.clients.UpdateClient(ctx, c); err != nil {
			return nil, fmt.Errorf("update client %s: %w", c.ID, err)
		}
		return c, nil
	}

	err := r.clients.CreateClient(ctx, c)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, booking.ErrDuplicate) {
		return nil, fmt.Errorf("create client: %w", err)
	}

	r.log.Info("client created concurrently, merging booking", zap.String("name", c.Name))

	fresh, err := r.NewIndex(ctx)
	if err != nil {
		return nil, err
	}
	stored, again := booking.UpsertClientForBooking(fresh, in, bookingDate)
	if again {
		return nil, fmt.Errorf("create client %q: %w", c.Name, booking.ErrDuplicate)
	}
	if err := r.clients.UpdateClient(ctx, stored); err != nil {
		return nil, fmt.Errorf("update client %s: %w", stored.ID, err)
	}
	ix.Put(stored)
	return stored, nil
}
