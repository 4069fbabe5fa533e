package settings

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

const cacheKey = "current"

// ======================================================
// USE CASE
// ======================================================

// GetSettings serves the stored settings, or the defaults until the first
// update has been saved.
type GetSettings struct {
	repo    booking.SettingsStore
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewGetSettings(
	repo booking.SettingsStore,
	c cache.Cache,
	ttl time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
) *GetSettings {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GetSettings{repo: repo, cache: c, ttl: ttl, metrics: m, log: log}
}

func (uc *GetSettings) Execute(ctx context.Context) (*models.BusinessSettings, error) {
	var cached models.BusinessSettings
	hit, err := uc.cache.Get(ctx, cache.NamespaceSettings, cacheKey, &cached)
	if err != nil {
		uc.log.Warn("settings cache read failed", zap.Error(err))
	}
	uc.metrics.CacheLookup(cache.NamespaceSettings, hit)
	if hit {
		return &cached, nil
	}

	s, err := uc.repo.GetSettings(ctx)
	if errors.Is(err, booking.ErrNotFound) {
		def := booking.DefaultSettings()
		s, err = &def, nil
	}
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, cache.NamespaceSettings, cacheKey, s, uc.ttl); err != nil {
		uc.log.Warn("settings cache write failed", zap.Error(err))
	}
	return s, nil
}
