package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/config"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/handlers"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/middleware"
	"github.com/BruksfildServices01/barber-calendar/internal/session"
	ucClient "github.com/BruksfildServices01/barber-calendar/internal/usecase/client"
	"github.com/BruksfildServices01/barber-calendar/internal/usecase/importer"
	ucReservation "github.com/BruksfildServices01/barber-calendar/internal/usecase/reservation"
	ucSettings "github.com/BruksfildServices01/barber-calendar/internal/usecase/settings"
	"github.com/BruksfildServices01/barber-calendar/internal/validators"
)

// Dependencies are the singletons built in main.
type Dependencies struct {
	Config     *config.Config
	Repo       booking.Repository
	Cache      cache.Cache
	TTLs       cache.TTLs
	Audit      audit.Sink
	Metrics    *metrics.Metrics
	Sessions   *session.Manager
	Normalizer *booking.Normalizer
	Now        func() time.Time
	// ImportSources are read when an import request carries no CSV.
	ImportSources []importer.Source
	Log           *zap.Logger
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	emailDomainOK := func(string) bool { return true }
	if deps.Config != nil && deps.Config.CheckEmailDomain {
		emailDomainOK = validators.IsEmailDomainValid
	}

	loginRate := 0
	if deps.Config != nil {
		loginRate = deps.Config.LoginRatePerMin
	}

	// ======================================================
	// USE CASES: SETTINGS
	// ======================================================
	getSettingsUC := ucSettings.NewGetSettings(deps.Repo, deps.Cache, deps.TTLs.Settings, deps.Metrics, log)
	updateSettingsUC := ucSettings.NewUpdateSettings(deps.Repo, getSettingsUC, deps.Cache, deps.Audit, log, emailDomainOK)

	// ======================================================
	// USE CASES: RESERVATIONS
	// ======================================================
	resDeps := ucReservation.Deps{
		Repo:       deps.Repo,
		Settings:   getSettingsUC,
		Cache:      deps.Cache,
		TTL:        deps.TTLs.Reservations,
		Audit:      deps.Audit,
		Metrics:    deps.Metrics,
		Log:        log,
		Now:        deps.Now,
		Normalizer: deps.Normalizer,
	}
	reconciler := ucReservation.NewClientReconciler(deps.Repo, deps.Cache, log)

	listReservationsUC := ucReservation.NewListReservations(resDeps)
	createReservationUC := ucReservation.NewCreateReservation(resDeps, reconciler)
	updateReservationUC := ucReservation.NewUpdateReservation(resDeps, reconciler)
	deleteReservationUC := ucReservation.NewDeleteReservation(resDeps)
	scheduleUC := ucReservation.NewGetSchedule(resDeps, listReservationsUC)

	// ======================================================
	// USE CASES: CLIENTS
	// ======================================================
	clientDeps := ucClient.Deps{
		Repo:    deps.Repo,
		Cache:   deps.Cache,
		TTL:     deps.TTLs.Clients,
		Audit:   deps.Audit,
		Metrics: deps.Metrics,
		Log:     log,
	}

	// ======================================================
	// USE CASES: IMPORT
	// ======================================================
	importUC := importer.NewImportCSV(deps.Repo, reconciler, deps.Normalizer, deps.Cache, deps.Audit, deps.Metrics, log)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(deps.Sessions, log)

	reservationHandler := handlers.NewReservationHandler(
		createReservationUC,
		updateReservationUC,
		deleteReservationUC,
		listReservationsUC,
		scheduleUC,
		log,
	)

	clientHandler := handlers.NewClientHandler(
		ucClient.NewListClients(clientDeps),
		ucClient.NewCreateClient(clientDeps),
		ucClient.NewUpdateClient(clientDeps),
		ucClient.NewClientHistory(clientDeps),
		log,
	)

	settingsHandler := handlers.NewSettingsHandler(getSettingsUC, updateSettingsUC, log)
	importHandler := handlers.NewImportHandler(importUC, deps.ImportSources, log)
	auditLogsHandler := handlers.NewAuditLogsHandler(deps.Repo, log)

	// ======================================================
	// INFRA
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Repo.Ping(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login",
			middleware.RateLimitMiddleware(middleware.NewIPLimiter(loginRate), log),
			authHandler.Login,
		)

		// ------------------------------
		// SECURED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(deps.Sessions))
		{
			secured.GET("/auth/me", authHandler.Me)

			secured.GET("/reservations", reservationHandler.List)
			secured.POST("/reservations", reservationHandler.Create)
			secured.PUT("/reservations/:id", reservationHandler.Update)
			secured.DELETE("/reservations/:id", reservationHandler.Delete)

			secured.GET("/schedule", reservationHandler.Schedule)

			secured.GET("/clients", clientHandler.List)
			secured.POST("/clients", clientHandler.Create)
			secured.PUT("/clients/:id", clientHandler.Update)
			secured.GET("/clients/:id/history", clientHandler.History)

			secured.GET("/settings", settingsHandler.Get)
			secured.PUT("/settings", settingsHandler.Update)

			secured.POST("/import", importHandler.Import)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
