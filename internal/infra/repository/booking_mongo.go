package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

const (
	collClients      = "clients"
	collReservations = "reservations"
	collSettings     = "settings"
	collAuditLogs    = "audit_logs"

	settingsDocID = "singleton"
	mongoTimeout  = 5 * time.Second
)

// BookingMongoRepository keeps each record type in its own collection. The
// settings collection holds a single document.
type BookingMongoRepository struct {
	client       *mongo.Client
	clients      *mongo.Collection
	reservations *mongo.Collection
	settings     *mongo.Collection
	auditLogs    *mongo.Collection
}

var _ booking.Repository = (*BookingMongoRepository)(nil)

// NewBookingMongoRepository binds the collections and creates the unique
// indexes the booking rules rely on.
func NewBookingMongoRepository(ctx context.Context, client *mongo.Client, database string) (*BookingMongoRepository, error) {
	db := client.Database(database)
	r := &BookingMongoRepository{
		client:       client,
		clients:      db.Collection(collClients),
		reservations: db.Collection(collReservations),
		settings:     db.Collection(collSettings),
		auditLogs:    db.Collection(collAuditLogs),
	}

	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *BookingMongoRepository) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.reservations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "clientId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("reservations indexes: %w", err)
	}

	if _, err := r.clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "nameKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("clients indexes: %w", err)
	}

	if _, err := r.auditLogs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return booking.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return booking.ErrDuplicate
	default:
		return err
	}
}

// --------------------------------------------------
// Settings
// --------------------------------------------------

func (r *BookingMongoRepository) GetSettings(ctx context.Context) (*models.BusinessSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var s models.BusinessSettings
	if err := r.settings.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&s); err != nil {
		return nil, translateMongoError(err)
	}
	s.ID = models.SettingsID
	return &s, nil
}

func (r *BookingMongoRepository) SaveSettings(ctx context.Context, s *models.BusinessSettings) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	s.ID = models.SettingsID
	s.UpdatedAt = time.Now()

	_, err := r.settings.ReplaceOne(ctx,
		bson.M{"_id": settingsDocID},
		s,
		options.Replace().SetUpsert(true),
	)
	return translateMongoError(err)
}

// --------------------------------------------------
// Reservations
// --------------------------------------------------

func (r *BookingMongoRepository) ListReservations(
	ctx context.Context,
	f booking.ReservationFilter,
) ([]models.Reservation, error) {

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.reservations.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Reservation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingMongoRepository) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var res models.Reservation
	if err := r.reservations.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		return nil, translateMongoError(err)
	}
	return &res, nil
}

func (r *BookingMongoRepository) CreateReservation(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now()
	res.CreatedAt, res.UpdatedAt = now, now

	_, err := r.reservations.InsertOne(ctx, res)
	return translateMongoError(err)
}

func (r *BookingMongoRepository) UpdateReservation(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"clientId":    res.ClientID,
		"clientName":  res.ClientName,
		"clientPhone": res.ClientPhone,
		"service":     res.Service,
		"date":        res.Date,
		"time":        res.Time,
		"notes":       res.Notes,
		"updatedAt":   res.UpdatedAt,
	}}

	result, err := r.reservations.UpdateByID(ctx, res.ID, update)
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *BookingMongoRepository) DeleteReservation(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	result, err := r.reservations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Clients
// --------------------------------------------------

func (r *BookingMongoRepository) ListClients(ctx context.Context) ([]models.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	cursor, err := r.clients.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Client
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingMongoRepository) GetClient(ctx context.Context, id string) (*models.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var c models.Client
	if err := r.clients.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translateMongoError(err)
	}
	return &c, nil
}

func (r *BookingMongoRepository) CreateClient(ctx context.Context, c *models.Client) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.NameKey = models.NameKey(c.Name)
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := r.clients.InsertOne(ctx, c)
	return translateMongoError(err)
}

func (r *BookingMongoRepository) UpdateClient(ctx context.Context, c *models.Client) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	c.NameKey = models.NameKey(c.Name)
	c.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":              c.Name,
		"nameKey":           c.NameKey,
		"phone":             c.Phone,
		"notes":             c.Notes,
		"totalAppointments": c.TotalAppointments,
		"lastVisit":         c.LastVisit,
		"updatedAt":         c.UpdatedAt,
	}}

	result, err := r.clients.UpdateByID(ctx, c.ID, update)
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (r *BookingMongoRepository) SaveAuditLog(ctx context.Context, l *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	_, err := r.auditLogs.InsertOne(ctx, l)
	return err
}

func (r *BookingMongoRepository) ListAuditLogs(
	ctx context.Context,
	f booking.AuditFilter,
) ([]models.AuditLog, int64, error) {

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.Entity != "" {
		filter["entity"] = f.Entity
	}
	created := bson.M{}
	if f.From != nil {
		created["$gte"] = *f.From
	}
	if f.To != nil {
		created["$lt"] = *f.To
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}

	total, err := r.auditLogs.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit)).SetSkip(int64(f.Offset))
	}

	cursor, err := r.auditLogs.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// --------------------------------------------------
// Lifecycle
// --------------------------------------------------

func (r *BookingMongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *BookingMongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
