package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mobihub/mobihub-server/api/routes"
	"github.com/mobihub/mobihub-server/internal/bookings"
	"github.com/mobihub/mobihub-server/internal/categories"
	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/internal/listings"
	"github.com/mobihub/mobihub-server/internal/settlement"
	"github.com/mobihub/mobihub-server/internal/wishlist"
	"github.com/mobihub/mobihub-server/pkg/config"
	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/logger"
	"github.com/mobihub/mobihub-server/pkg/metrics"
	"github.com/mobihub/mobihub-server/pkg/redis"
	"github.com/mobihub/mobihub-server/pkg/stripe"
)

const shutdownGrace = 15 * time.Second

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

	if cfg.FeatureFlags.AutoMigrate {
		if !cfg.App.IsDev() {
			logg.Warn(context.Background(), "auto-migrate requested outside dev, skipping")
		} else if err := db.AutoMigrate(dbClient.DB()); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	conn := dbClient.DB()
	identityService, err := identity.NewService(identity.ServiceParams{Repo: identity.NewRepository(conn)})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}
	categoryService, err := categories.NewService(categories.ServiceParams{Repo: categories.NewRepository(conn)})
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}
	listingRepo := listings.NewRepository(conn)
	listingService, err := listings.NewService(listings.ServiceParams{
		Repo:       listingRepo,
		Identity:   identityService,
		Categories: categoryService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}
	wishlistRepo := wishlist.NewRepository(conn)
	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{Repo: wishlistRepo, ListingRepo: listingRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}
	bookingService, err := bookings.NewService(bookings.ServiceParams{
		DB:           dbClient,
		Repo:         bookings.NewRepository(conn),
		ListingRepo:  listingRepo,
		WishlistRepo: wishlistRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}
	settlementService, err := settlement.NewService(settlement.ServiceParams{
		DB:           dbClient,
		Repo:         settlement.NewRepository(conn),
		BookingRepo:  bookings.NewRepository(conn),
		ListingRepo:  listingRepo,
		WishlistRepo: wishlistRepo,
		Processor:    stripeClient,
		Metrics:      settlementMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			identityService,
			categoryService,
			listingService,
			bookingService,
			wishlistService,
			settlementService,
		),
	}

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
