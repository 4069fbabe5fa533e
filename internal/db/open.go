package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/config"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/infra/repository"
)

// Open returns the repository selected by STORAGE_DRIVER.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (booking.Repository, error) {
	log.Info("opening storage", zap.String("driver", cfg.StorageDriver))

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		gdb, err := NewPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewBookingGormRepository(gdb), nil

	case config.StorageMongo:
		client, err := NewMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewBookingMongoRepository(ctx, client, cfg.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repo, nil

	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return repository.NewBookingMemoryRepository(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
