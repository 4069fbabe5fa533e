package booking

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

var (
	// ErrNotFound is returned by stores when the addressed record does not exist.
	ErrNotFound = errors.New("booking: record not found")
	// ErrDuplicate is returned when a write violates a uniqueness rule:
	// two reservations on one (date, time), or two clients with one name.
	ErrDuplicate = errors.New("booking: duplicate record")
)

type ReservationFilter struct {
	Date     string
	ClientID string
}

type AuditFilter struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type SettingsStore interface {
	// GetSettings returns ErrNotFound until settings have been saved once.
	GetSettings(ctx context.Context) (*models.BusinessSettings, error)
	SaveSettings(ctx context.Context, s *models.BusinessSettings) error
}

type ReservationStore interface {
	ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservation(ctx context.Context, r *models.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
}

type ClientStore interface {
	// ListClients returns clients in creation order.
	ListClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, c *models.Client) error
}

type AuditStore interface {
	SaveAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, int64, error)
}

// Repository is the whole storage surface. Implementations assign ids on create.
type Repository interface {
	SettingsStore
	ReservationStore
	ClientStore
	AuditStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
