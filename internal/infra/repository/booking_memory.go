package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// BookingMemoryRepository is a process-local store with the same uniqueness
// rules as the database-backed ones. Values are copied on the way in and out.
type BookingMemoryRepository struct {
	mu sync.RWMutex

	settings     *models.BusinessSettings
	reservations map[string]models.Reservation
	clients      map[string]models.Client
	auditLogs    []models.AuditLog

	// creation order
	reservationIDs []string
	clientIDs      []string

	now func() time.Time
}

var _ booking.Repository = (*BookingMemoryRepository)(nil)

func NewBookingMemoryRepository() *BookingMemoryRepository {
	return &BookingMemoryRepository{
		reservations: make(map[string]models.Reservation),
		clients:      make(map[string]models.Client),
		now:          time.Now,
	}
}

// --------------------------------------------------
// Settings
// --------------------------------------------------

func (r *BookingMemoryRepository) GetSettings(context.Context) (*models.BusinessSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, booking.ErrNotFound
	}
	s := copySettings(*r.settings)
	return &s, nil
}

func (r *BookingMemoryRepository) SaveSettings(_ context.Context, s *models.BusinessSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = models.SettingsID
	s.UpdatedAt = r.now()
	stored := copySettings(*s)
	r.settings = &stored
	return nil
}

func copySettings(s models.BusinessSettings) models.BusinessSettings {
	s.Services = append([]models.Service(nil), s.Services...)
	return s
}

// --------------------------------------------------
// Reservations
// --------------------------------------------------

func (r *BookingMemoryRepository) ListReservations(
	_ context.Context,
	f booking.ReservationFilter,
) ([]models.Reservation, error) {

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Reservation
	for _, id := range r.reservationIDs {
		res := r.reservations[id]
		if f.Date != "" && res.Date != f.Date {
			continue
		}
		if f.ClientID != "" && res.ClientID != f.ClientID {
			continue
		}
		out = append(out, res)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *BookingMemoryRepository) GetReservation(_ context.Context, id string) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.reservations[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &res, nil
}

// slotHolder returns the id of the reservation on (date, time), if any.
func (r *BookingMemoryRepository) slotHolder(date, timeLabel string) (string, bool) {
	for id, res := range r.reservations {
		if res.Date == date && res.Time == timeLabel {
			return id, true
		}
	}
	return "", false
}

func (r *BookingMemoryRepository) CreateReservation(_ context.Context, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.slotHolder(res.Date, res.Time); taken {
		return booking.ErrDuplicate
	}

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := r.now()
	res.CreatedAt, res.UpdatedAt = now, now

	r.reservations[res.ID] = *res
	r.reservationIDs = append(r.reservationIDs, res.ID)
	return nil
}

func (r *BookingMemoryRepository) UpdateReservation(_ context.Context, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reservations[res.ID]
	if !ok {
		return booking.ErrNotFound
	}
	if holder, taken := r.slotHolder(res.Date, res.Time); taken && holder != res.ID {
		return booking.ErrDuplicate
	}

	res.CreatedAt = existing.CreatedAt
	res.UpdatedAt = r.now()
	r.reservations[res.ID] = *res
	return nil
}

func (r *BookingMemoryRepository) DeleteReservation(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reservations[id]; !ok {
		return booking.ErrNotFound
	}
	delete(r.reservations, id)
	r.reservationIDs = removeID(r.reservationIDs, id)
	return nil
}

// --------------------------------------------------
// Clients
// --------------------------------------------------

func (r *BookingMemoryRepository) ListClients(context.Context) ([]models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Client, 0, len(r.clientIDs))
	for _, id := range r.clientIDs {
		out = append(out, r.clients[id])
	}
	return out, nil
}

func (r *BookingMemoryRepository) GetClient(_ context.Context, id string) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &c, nil
}

func (r *BookingMemoryRepository) nameHolder(key string) (string, bool) {
	for id, c := range r.clients {
		if c.NameKey == key {
			return id, true
		}
	}
	return "", false
}

func (r *BookingMemoryRepository) CreateClient(_ context.Context, c *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.NameKey = models.NameKey(c.Name)
	if _, taken := r.nameHolder(c.NameKey); taken {
		return booking.ErrDuplicate
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.now()
	c.CreatedAt, c.UpdatedAt = now, now

	r.clients[c.ID] = *c
	r.clientIDs = append(r.clientIDs, c.ID)
	return nil
}

func (r *BookingMemoryRepository) UpdateClient(_ context.Context, c *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.clients[c.ID]
	if !ok {
		return booking.ErrNotFound
	}

	c.NameKey = models.NameKey(c.Name)
	if holder, taken := r.nameHolder(c.NameKey); taken && holder != c.ID {
		return booking.ErrDuplicate
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = r.now()
	r.clients[c.ID] = *c
	return nil
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (r *BookingMemoryRepository) SaveAuditLog(_ context.Context, l *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.now()
	}
	r.auditLogs = append(r.auditLogs, *l)
	return nil
}

func (r *BookingMemoryRepository) ListAuditLogs(
	_ context.Context,
	f booking.AuditFilter,
) ([]models.AuditLog, int64, error) {

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.AuditLog
	// newest first
	for i := len(r.auditLogs) - 1; i >= 0; i-- {
		l := r.auditLogs[i]
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.Entity != "" && l.Entity != f.Entity {
			continue
		}
		if f.From != nil && l.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !l.CreatedAt.Before(*f.To) {
			continue
		}
		matched = append(matched, l)
	}

	total := int64(len(matched))
	if f.Limit > 0 {
		if f.Offset >= len(matched) {
			return []models.AuditLog{}, total, nil
		}
		end := f.Offset + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[f.Offset:end]
	}
	return matched, total, nil
}

// --------------------------------------------------
// Lifecycle
// --------------------------------------------------

func (r *BookingMemoryRepository) Ping(context.Context) error  { return nil }
func (r *BookingMemoryRepository) Close(context.Context) error { return nil }

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
