package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/academy-recon-api/api/swagger"
	"github.com/noah-isme/academy-recon-api/internal/handler"
	"github.com/noah-isme/academy-recon-api/internal/middleware"
	"github.com/noah-isme/academy-recon-api/internal/models"
	"github.com/noah-isme/academy-recon-api/internal/repository"
	"github.com/noah-isme/academy-recon-api/internal/service"
	"github.com/noah-isme/academy-recon-api/internal/source"
	"github.com/noah-isme/academy-recon-api/pkg/cache"
	"github.com/noah-isme/academy-recon-api/pkg/config"
	"github.com/noah-isme/academy-recon-api/pkg/database"
	"github.com/noah-isme/academy-recon-api/pkg/jobs"
	"github.com/noah-isme/academy-recon-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-recon-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-recon-api/pkg/middleware/requestid"
)

// @title Academy Recon API
// @version 0.1.0
// @description Payment reconciliation core for the academy administration dashboard
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	snapshotRepo := repository.NewSnapshotRepository(redisClient, logr)
	defer snapshotRepo.Close() //nolint:errcheck

	var snapshotStore service.SnapshotStore
	if cfg.Snapshot.CacheEnabled {
		snapshotStore = snapshotRepo
	}
	snapshotSvc := service.NewSnapshotService(service.SnapshotServiceParams{
		Store:      snapshotStore,
		Metrics:    metricsSvc,
		DefaultTTL: cfg.Snapshot.CacheTTL,
		Logger:     logr,
	})

	ledgerRepo := repository.NewLedgerRepository(db)
	rosterClient := source.NewRosterClient(cfg.Sources.RosterURL, cfg.Sources.FetchTimeout, logr)
	pricingClient := source.NewPricingClient(cfg.Sources.PricingURL, cfg.Sources.FetchTimeout, logr)

	authSvc := service.NewAuthService(cfg.JWT.Secret)

	reconSvc := service.NewReconService(service.ReconServiceParams{
		Roster:   rosterClient,
		Pricing:  pricingClient,
		Ledger:   ledgerRepo,
		Snapshot: snapshotSvc,
		Metrics:  metricsSvc,
		Logger:   logr,
		Validate: validator.New(),
		Config: service.ReconServiceConfig{
			FlatRatioThreshold: cfg.Recon.FlatRatioThreshold,
			NextDueGraceDays:   cfg.Recon.NextDueGraceDays,
		},
	})

	// Single worker: reconciliation passes must never overlap.
	queue := jobs.NewQueue("reconciliation", func(ctx context.Context, job jobs.Job) error {
		return reconSvc.RunReconciliation(ctx)
	}, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Recon.QueueBufferSize,
		Logger:     logr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)

	enqueuePass := func(sourceName string) bool {
		return queue.TryEnqueue(jobs.Job{
			ID:     uuid.NewString(),
			Type:   "reconcile",
			Source: sourceName,
		})
	}

	rosterPoller := service.NewSourcePoller(service.SourcePollerConfig{
		Source:   models.PollSourceRoster,
		Interval: cfg.Recon.RosterPollInterval,
		Poll: func(ctx context.Context) (string, error) {
			hash, err := reconSvc.RosterChangeHash(ctx)
			metricsSvc.RecordPollCycle(models.PollSourceRoster, err != nil)
			return hash, err
		},
		Trigger: func(sourceName string) {
			metricsSvc.RecordHashChange(sourceName)
			if !enqueuePass(sourceName) {
				logr.Sugar().Warnw("reconciliation queue full, trigger dropped", "source", sourceName)
			}
		},
		Logger: logr,
	})

	ledgerPoller := service.NewSourcePoller(service.SourcePollerConfig{
		Source:   models.PollSourceLedger,
		Interval: cfg.Recon.LedgerPollInterval,
		Poll: func(ctx context.Context) (string, error) {
			hash, err := reconSvc.LedgerChangeHash(ctx)
			metricsSvc.RecordPollCycle(models.PollSourceLedger, err != nil)
			return hash, err
		},
		Trigger: func(sourceName string) {
			metricsSvc.RecordHashChange(sourceName)
			if !enqueuePass(sourceName) {
				logr.Sugar().Warnw("reconciliation queue full, trigger dropped", "source", sourceName)
			}
		},
		Logger: logr,
	})

	rosterPoller.Start(ctx)
	ledgerPoller.Start(ctx)

	// Manual refresh goes through the pollers, so the stored hashes stay in
	// step with whatever pass the refresh ends up triggering.
	paymentHandler := handler.NewPaymentHandler(reconSvc, func() bool {
		go rosterPoller.Poke()
		go ledgerPoller.Poke()
		return true
	}, rosterPoller, ledgerPoller)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	payments := r.Group("/payments")
	{
		payments.GET("", paymentHandler.List)
		payments.GET("/poller", paymentHandler.PollerStatus)

		guarded := payments.Group("")
		guarded.Use(middleware.JWT(authSvc))
		guarded.PATCH("/:studentId/:courseKey", paymentHandler.Update)
		guarded.POST("/refresh", paymentHandler.Refresh)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	rosterPoller.Stop()
	ledgerPoller.Stop()
	queue.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
