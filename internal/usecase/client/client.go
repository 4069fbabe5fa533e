package client

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/dto"
	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

const listKey = "all"

type Store interface {
	booking.ClientStore
	booking.ReservationStore
}

type Deps struct {
	Repo    Store
	Cache   cache.Cache
	TTL     time.Duration
	Audit   audit.Sink
	Metrics *metrics.Metrics
	Log     *zap.Logger
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
	return d
}

func (d Deps) invalidate(ctx context.Context) {
	if err := d.Cache.Invalidate(ctx, cache.NamespaceClients); err != nil {
		d.Log.Warn("cache invalidate failed", zap.String("namespace", cache.NamespaceClients), zap.Error(err))
	}
}

// ======================================================
// LIST
// ======================================================

type ListClients struct {
	d Deps
}

func NewListClients(d Deps) *ListClients {
	return &ListClients{d: d.withDefaults()}
}

// Execute returns clients in creation order. query, when set, keeps clients
// whose name or phone contains it (case-insensitive).
func (uc *ListClients) Execute(ctx context.Context, query string) ([]models.Client, error) {
	all, err := uc.all(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	out := make([]models.Client, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.Phone, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (uc *ListClients) all(ctx context.Context) ([]models.Client, error) {
	d := uc.d

	var cached []models.Client
	hit, err := d.Cache.Get(ctx, cache.NamespaceClients, listKey, &cached)
	if err != nil {
		d.Log.Warn("clients cache read failed", zap.Error(err))
	}
	d.Metrics.CacheLookup(cache.NamespaceClients, hit)
	if hit {
		return cached, nil
	}

	list, err := d.Repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.Cache.Set(ctx, cache.NamespaceClients, listKey, list, d.TTL); err != nil {
		d.Log.Warn("clients cache write failed", zap.Error(err))
	}
	return list, nil
}

// ======================================================
// CREATE
// ======================================================

type CreateClientInput struct {
	Actor string
	Name  string
	Phone string
	Notes string
}

type CreateClient struct {
	d Deps
}

func NewCreateClient(d Deps) *CreateClient {
	return &CreateClient{d: d.withDefaults()}
}

func (uc *CreateClient) Execute(ctx context.Context, in CreateClientInput) (*models.Client, error) {
	d := uc.d

	c := &models.Client{
		Name:  strings.TrimSpace(in.Name),
		Phone: strings.TrimSpace(in.Phone),
		Notes: strings.TrimSpace(in.Notes),
	}
	if c.Name == "" {
		return nil, httperr.ErrBusiness("client_name_required")
	}

	if err := d.Repo.CreateClient(ctx, c); err != nil {
		if errors.Is(err, booking.ErrDuplicate) {
			return nil, httperr.ErrBusinessf("client_name_taken", "a client named %q already exists", c.Name)
		}
		return nil, err
	}
	d.invalidate(ctx)

	d.Audit.Dispatch(audit.Event{
		Actor:    in.Actor,
		Action:   "client_created",
		Entity:   "client",
		EntityID: c.ID,
	})
	return c, nil
}

// ======================================================
// UPDATE
// ======================================================

// UpdateClientInput changes only the non-nil fields. Counters are managed by
// bookings and cannot be edited here.
type UpdateClientInput struct {
	Actor string
	ID    string
	Name  *string
	Phone *string
	Notes *string
}

type UpdateClient struct {
	d Deps
}

func NewUpdateClient(d Deps) *UpdateClient {
	return &UpdateClient{d: d.withDefaults()}
}

func (uc *UpdateClient) Execute(ctx context.Context, in UpdateClientInput) (*models.Client, error) {
	d := uc.d

	c, err := d.Repo.GetClient(ctx, in.ID)
	if errors.Is(err, booking.ErrNotFound) {
		return nil, httperr.ErrBusiness("client_not_found")
	}
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
		if c.Name == "" {
			return nil, httperr.ErrBusiness("client_name_required")
		}
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Notes != nil {
		c.Notes = strings.TrimSpace(*in.Notes)
	}

	if err := d.Repo.UpdateClient(ctx, c); err != nil {
		switch {
		case errors.Is(err, booking.ErrDuplicate):
			return nil, httperr.ErrBusinessf("client_name_taken", "a client named %q already exists", c.Name)
		case errors.Is(err, booking.ErrNotFound):
			return nil, httperr.ErrBusiness("client_not_found")
		default:
			return nil, err
		}
	}
	d.invalidate(ctx)

	d.Audit.Dispatch(audit.Event{
		Actor:    in.Actor,
		Action:   "client_updated",
		Entity:   "client",
		EntityID: c.ID,
	})
	return c, nil
}

// ======================================================
// HISTORY
// ======================================================

// ClientHistory lists the reservations booked under a client, newest first.
// Reservations are matched by client id, and by name for bookings stored
// before the client record existed.
type ClientHistory struct {
	d Deps
}

func NewClientHistory(d Deps) *ClientHistory {
	return &ClientHistory{d: d.withDefaults()}
}

func (uc *ClientHistory) Execute(ctx context.Context, id string) (*dto.ClientHistoryDTO, error) {
	d := uc.d

	c, err := d.Repo.GetClient(ctx, id)
	if errors.Is(err, booking.ErrNotFound) {
		return nil, httperr.ErrBusiness("client_not_found")
	}
	if err != nil {
		return nil, err
	}

	all, err := d.Repo.ListReservations(ctx, booking.ReservationFilter{})
	if err != nil {
		return nil, err
	}

	key := models.NameKey(c.Name)
	out := make([]models.Reservation, 0)
	for _, r := range all {
		if r.ClientID == c.ID || (r.ClientID == "" && models.NameKey(r.ClientName) == key) {
			out = append(out, r)
		}
	}

	booking.SortReservations(out)
	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })

	return &dto.ClientHistoryDTO{Client: *c, Reservations: out}, nil
}
