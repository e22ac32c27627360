package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bouncehq/rentals-backend/api/routes"
	"github.com/bouncehq/rentals-backend/internal/orders"
	"github.com/bouncehq/rentals-backend/internal/pricingrules"
	"github.com/bouncehq/rentals-backend/internal/quotes"
	"github.com/bouncehq/rentals-backend/pkg/config"
	"github.com/bouncehq/rentals-backend/pkg/db"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/maps"
	"github.com/bouncehq/rentals-backend/pkg/metrics"
	"github.com/bouncehq/rentals-backend/pkg/migrate"
	"github.com/bouncehq/rentals-backend/pkg/redis"
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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var mapsClient *maps.Client
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err = maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "google maps api key not set, travel distances use the estimate")
	}

	metricsRegistry := prometheus.NewRegistry()
	pricingMetrics := metrics.NewPricingMetrics(metricsRegistry)

	rulesService, err := pricingrules.NewService(pricingrules.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing rules service", err)
		os.Exit(1)
	}
	if _, err := rulesService.EnsureSeeded(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to seed pricing rules", err)
		os.Exit(1)
	}

	var distances *quotes.DistanceResolver
	if mapsClient != nil {
		distances = quotes.NewDistanceResolver(mapsClient, redisClient, pricingMetrics, logg, cfg.GoogleMaps.Timeout)
	} else {
		distances = quotes.NewDistanceResolver(nil, redisClient, pricingMetrics, logg, cfg.GoogleMaps.Timeout)
	}

	quotesService, err := quotes.NewService(rulesService, distances, cfg.Warehouse, pricingMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotes service", err)
		os.Exit(1)
	}

	var travelCalculator *quotes.TravelCalculator
	if mapsClient != nil {
		travelCalculator, err = quotes.NewTravelCalculator(quotesService, mapsClient)
	} else {
		travelCalculator, err = quotes.NewTravelCalculator(quotesService, nil)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create travel calculator", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, rulesService, distances, cfg.Warehouse, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metricsRegistry,
			quotesService,
			travelCalculator,
			rulesService,
			ordersService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
