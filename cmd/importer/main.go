package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-calendar/internal/db"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/logger"
	"github.com/BruksfildServices01/barber-calendar/internal/usecase/importer"
	"github.com/BruksfildServices01/barber-calendar/internal/usecase/reservation"
)

// importer books every row of a CSV file through the same use case as
// POST /api/import and prints the result as JSON.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	file := flag.StringP("file", "f", cfg.ImportFile, "CSV file to import")
	s3Bucket := flag.String("s3-bucket", cfg.ImportS3Bucket, "S3 bucket to read when the file is missing")
	s3Key := flag.String("s3-key", cfg.ImportS3Key, "S3 object key")
	actor := flag.String("actor", "cli", "actor recorded in the audit log")
	flag.Parse()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := dbpkg.Open(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = repo.Close(closeCtx)
	}()

	order, err := booking.ParseDateOrder(cfg.DateOrder)
	if err != nil {
		zlog.Fatal("invalid DATE_ORDER", zap.String("value", cfg.DateOrder), zap.Error(err))
	}

	dispatcher := audit.NewDispatcher(audit.New(repo), zlog)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = dispatcher.Close(closeCtx)
	}()

	// only redis is shared with the API; a process-local cache would be
	// invalidated for nobody
	var c cache.Cache = cache.Nop{}
	if cfg.CacheDriver == config.CacheRedis {
		c, err = cache.Open(ctx, cfg.CacheOptions())
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
	}
	uc := importer.NewImportCSV(
		repo,
		reservation.NewClientReconciler(repo, c, zlog),
		booking.NewNormalizer(order, zlog),
		c,
		dispatcher,
		nil,
		zlog,
	)

	sources := []importer.Source{importer.FileSource{Path: *file}}
	if *s3Bucket != "" {
		sources = append(sources, importer.S3Source{
			Client: importer.NewS3Client(cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSS3Endpoint),
			Bucket: *s3Bucket,
			Key:    *s3Key,
		})
	}

	rc, name, err := importer.OpenFirst(ctx, zlog, sources...)
	if err != nil {
		zlog.Fatal("no import source", zap.Error(err))
	}
	defer rc.Close()

	res, err := uc.Execute(ctx, rc, *actor)
	if err != nil {
		zlog.Fatal("import failed", zap.String("source", name), zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		zlog.Fatal("write result", zap.Error(err))
	}
}
