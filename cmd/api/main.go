package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/sunshinecoast4wd/booking-engine/api/routes"
	"github.com/sunshinecoast4wd/booking-engine/internal/booking"
	"github.com/sunshinecoast4wd/booking-engine/internal/cartstore"
	"github.com/sunshinecoast4wd/booking-engine/internal/catalog"
	"github.com/sunshinecoast4wd/booking-engine/internal/remotecart"
	"github.com/sunshinecoast4wd/booking-engine/pkg/config"
	"github.com/sunshinecoast4wd/booking-engine/pkg/db"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/metrics"
	"github.com/sunshinecoast4wd/booking-engine/pkg/migrate"
	"github.com/sunshinecoast4wd/booking-engine/pkg/redis"
	"github.com/sunshinecoast4wd/booking-engine/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		errs := multierr.Combine(redisClient.Close(), dbClient.Close())
		if errs != nil {
			logg.Error(context.Background(), "error closing clients", errs)
		}
	}()

	snapshots, err := newSnapshotStore(cfg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	catalogClient, err := catalog.NewClient(cfg.Catalog, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog client", err)
		os.Exit(1)
	}
	catalogRepo, err := catalog.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog repository", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Client:   catalogClient,
		Repo:     catalogRepo,
		Cache:    redisClient,
		Logger:   logg,
		CacheTTL: cfg.Catalog.CacheTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	var remoteClient cartstore.RemoteClient
	if cfg.RemoteCart.Enabled {
		client, err := remotecart.NewClient(cfg.RemoteCart, cfg.Catalog.RegionID, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create remote cart client", err)
			os.Exit(1)
		}
		remoteClient = client
	}

	bookingService, err := booking.NewService(booking.ServiceParams{
		Catalog:   catalogService,
		Snapshots: snapshots,
		Remote:    remoteClient,
		Logger:    logg,
		Metrics:   engineMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, catalogService, bookingService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func newSnapshotStore(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client) (storage.Snapshots, error) {
	switch cfg.Snapshot.Backend {
	case "gorm", "db":
		return storage.NewGormSnapshots(dbClient.DB(), cfg.Snapshot.TTL)
	case "memory":
		return storage.NewMemorySnapshots(), nil
	default:
		return storage.NewRedisSnapshots(redisClient, cfg.Snapshot.TTL)
	}
}
