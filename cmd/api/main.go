package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-calendar/internal/db"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/logger"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/middleware"
	"github.com/BruksfildServices01/barber-calendar/internal/routes"
	"github.com/BruksfildServices01/barber-calendar/internal/session"
	"github.com/BruksfildServices01/barber-calendar/internal/timezone"
	"github.com/BruksfildServices01/barber-calendar/internal/usecase/importer"
)

const defaultAdminPassword = "admin111"

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// STORAGE
	// ======================================================
	repo, err := dbpkg.Open(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.Error(err))
	}

	c := newCache(ctx, cfg, zlog)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New("barber_calendar")
	}

	// ======================================================
	// SESSIONS
	// ======================================================
	if cfg.Timezone != "" && !timezone.IsValid(cfg.Timezone) {
		zlog.Warn("unknown TIMEZONE, using the process local zone", zap.String("timezone", cfg.Timezone))
	}
	loc := timezone.Location(cfg.Timezone)
	now := timezone.Clock(loc)

	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL, session.Credentials{
		Email:        cfg.AdminEmail,
		Name:         cfg.AdminName,
		PasswordHash: adminPasswordHash(cfg, zlog),
	}, now)

	// ======================================================
	// AUDIT + NORMALIZER
	// ======================================================
	dispatcher := audit.NewDispatcher(audit.New(repo), zlog)

	order, err := booking.ParseDateOrder(cfg.DateOrder)
	if err != nil {
		zlog.Fatal("invalid DATE_ORDER", zap.String("value", cfg.DateOrder), zap.Error(err))
	}

	sources := []importer.Source{importer.FileSource{Path: cfg.ImportFile}}
	if cfg.ImportS3Bucket != "" {
		sources = append(sources, importer.S3Source{
			Client: importer.NewS3Client(cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSS3Endpoint),
			Bucket: cfg.ImportS3Bucket,
			Key:    cfg.ImportS3Key,
		})
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(m.Middleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	routes.RegisterRoutes(r, routes.Dependencies{
		Config:        cfg,
		Repo:          repo,
		Cache:         c,
		TTLs:          cache.TTLs{Reservations: cfg.CacheTTLReservations, Clients: cfg.CacheTTLClients, Settings: cfg.CacheTTLSettings},
		Audit:         dispatcher,
		Metrics:       m,
		Sessions:      sessions,
		Normalizer:    booking.NewNormalizer(order, zlog),
		Now:           now,
		ImportSources: sources,
		Log:           zlog,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server running",
			zap.String("addr", cfg.Addr()),
			zap.String("storage", cfg.StorageDriver),
			zap.String("cache", cfg.CacheDriver),
			zap.String("timezone", loc.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zlog.Error("audit dispatcher shutdown", zap.Error(err))
	}
	if err := repo.Close(shutdownCtx); err != nil {
		zlog.Error("storage shutdown", zap.Error(err))
	}
}

func newCache(ctx context.Context, cfg *config.Config, zlog *zap.Logger) cache.Cache {
	c, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		zlog.Fatal("failed to open cache", zap.String("driver", cfg.CacheDriver), zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return c
}

// adminPasswordHash prefers a configured bcrypt hash, then a plain
// password, then the built-in default.
func adminPasswordHash(cfg *config.Config, zlog *zap.Logger) string {
	if cfg.AdminPasswordHash != "" {
		return cfg.AdminPasswordHash
	}

	password := cfg.AdminPassword
	if password == "" {
		if cfg.IsProduction() {
			zlog.Fatal("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set in production")
		}
		zlog.Warn("using the default admin password", zap.String("email", cfg.AdminEmail))
		password = defaultAdminPassword
	}

	hash, err := session.HashPassword(password)
	if err != nil {
		zlog.Fatal("failed to hash admin password", zap.Error(err))
	}
	return hash
}
