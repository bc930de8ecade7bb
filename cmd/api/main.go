package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/farmfresh-backend/api/routes"
	"github.com/angelmondragon/farmfresh-backend/internal/auth"
	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	"github.com/angelmondragon/farmfresh-backend/internal/farmers"
	"github.com/angelmondragon/farmfresh-backend/internal/maintenance"
	"github.com/angelmondragon/farmfresh-backend/internal/orders"
	products "github.com/angelmondragon/farmfresh-backend/internal/products"
	"github.com/angelmondragon/farmfresh-backend/internal/users"
	"github.com/angelmondragon/farmfresh-backend/internal/wishlist"
	"github.com/angelmondragon/farmfresh-backend/pkg/auth/session"
	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/instance"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	store, err := kv.Open(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	counter, ok := store.(kv.Counter)
	if !ok {
		return fmt.Errorf("storage driver %q cannot back rate limits", cfg.Storage.Driver)
	}

	fee, err := cfg.Checkout.DeliveryFee()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(reg)
	maintenanceMetrics := metrics.NewMaintenance(reg)

	sessionManager, err := session.NewManager(store, cfg.JWT)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(store),
		SessionManager: sessionManager,
		Store:          store,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	catalog, err := products.SeedRepository()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	productService, err := products.NewService(catalog)
	if err != nil {
		return fmt.Errorf("create product service: %w", err)
	}

	directory, err := farmers.SeedRepository()
	if err != nil {
		return fmt.Errorf("load farmers: %w", err)
	}
	farmerService, err := farmers.NewService(directory, productService)
	if err != nil {
		return fmt.Errorf("create farmer service: %w", err)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:       store,
		Products:    productService,
		Logger:      logg,
		Metrics:     storefrontMetrics,
		DeliveryFee: fee,
	})
	if err != nil {
		return fmt.Errorf("create cart service: %w", err)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:              orders.NewRepository(store),
		Carts:             cartService,
		Logger:            logg,
		Metrics:           storefrontMetrics,
		DeliveryFee:       fee,
		DeliveryLeadTime:  cfg.Checkout.DeliveryLeadTime,
		TrackingCodeChars: cfg.Checkout.TrackingCodeChars,
	})
	if err != nil {
		return fmt.Errorf("create orders service: %w", err)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(store),
		Products:     productService,
		Logger:       logg,
	})
	if err != nil {
		return fmt.Errorf("create wishlist service: %w", err)
	}

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			storefrontMetrics,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			store,
			counter,
			sessionManager,
			authService,
			productService,
			farmerService,
			cartService,
			fee,
			ordersService,
			wishlistService,
		),
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"storage":  string(cfg.Storage.Driver),
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(groupCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()
		logg.Info(groupCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if purger, ok := store.(maintenance.ExpiredPurger); ok && cfg.Storage.UsesSQL() {
		scheduler, err := newMaintenance(cfg, logg, store, counter, purger, maintenanceMetrics)
		if err != nil {
			return err
		}
		group.Go(func() error {
			return scheduler.Run(groupCtx)
		})
	}

	return group.Wait()
}

func newMaintenance(
	cfg *config.Config,
	logg *logger.Logger,
	store kv.Store,
	counter kv.Counter,
	purger maintenance.ExpiredPurger,
	m *metrics.Maintenance,
) (*maintenance.Service, error) {
	lock, err := maintenance.NewKVLock(lockStore{Store: store, Counter: counter}, "maintenance", cfg.Storage.PurgeInterval)
	if err != nil {
		return nil, fmt.Errorf("create maintenance lock: %w", err)
	}
	purge, err := maintenance.NewPurgeExpiredJob(purger, logg, m)
	if err != nil {
		return nil, fmt.Errorf("create purge job: %w", err)
	}
	registry, err := maintenance.NewRegistry(purge)
	if err != nil {
		return nil, err
	}
	return maintenance.NewService(maintenance.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  m,
		Interval: cfg.Storage.PurgeInterval,
	})
}

type lockStore struct {
	kv.Store
	kv.Counter
}
