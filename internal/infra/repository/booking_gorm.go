package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

var _ booking.Repository = (*BookingGormRepository)(nil)

// translateGormError maps driver errors onto the store errors. The gorm
// connection must be opened with TranslateError so unique violations
// arrive as gorm.ErrDuplicatedKey.
func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return booking.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return booking.ErrDuplicate
	default:
		return err
	}
}

// --------------------------------------------------
// Settings
// --------------------------------------------------

func (r *BookingGormRepository) GetSettings(ctx context.Context) (*models.BusinessSettings, error) {
	var s models.BusinessSettings
	if err := r.db.WithContext(ctx).First(&s, models.SettingsID).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &s, nil
}

func (r *BookingGormRepository) SaveSettings(ctx context.Context, s *models.BusinessSettings) error {
	s.ID = models.SettingsID
	return translateGormError(
		r.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(s).Error,
	)
}

// --------------------------------------------------
// Reservations
// --------------------------------------------------

func (r *BookingGormRepository) ListReservations(
	ctx context.Context,
	f booking.ReservationFilter,
) ([]models.Reservation, error) {

	q := r.db.WithContext(ctx).Model(&models.Reservation{})
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}

	var out []models.Reservation
	if err := q.Order("date ASC").Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingGormRepository) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &res, nil
}

func (r *BookingGormRepository) CreateReservation(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	return translateGormError(r.db.WithContext(ctx).Create(res).Error)
}

func (r *BookingGormRepository) UpdateReservation(ctx context.Context, res *models.Reservation) error {
	tx := r.db.WithContext(ctx).
		Model(&models.Reservation{ID: res.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(res)
	if tx.Error != nil {
		return translateGormError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *BookingGormRepository) DeleteReservation(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reservation{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Clients
// --------------------------------------------------

func (r *BookingGormRepository) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingGormRepository) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &c, nil
}

func (r *BookingGormRepository) CreateClient(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.NameKey = models.NameKey(c.Name)
	return translateGormError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *BookingGormRepository) UpdateClient(ctx context.Context, c *models.Client) error {
	c.NameKey = models.NameKey(c.Name)

	tx := r.db.WithContext(ctx).
		Model(&models.Client{ID: c.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(c)
	if tx.Error != nil {
		return translateGormError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (r *BookingGormRepository) SaveAuditLog(ctx context.Context, l *models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *BookingGormRepository) ListAuditLogs(
	ctx context.Context,
	f booking.AuditFilter,
) ([]models.AuditLog, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// --------------------------------------------------
// Lifecycle
// --------------------------------------------------

func (r *BookingGormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *BookingGormRepository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
