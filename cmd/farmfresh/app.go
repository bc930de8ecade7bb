package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	"github.com/angelmondragon/farmfresh-backend/internal/orders"
	products "github.com/angelmondragon/farmfresh-backend/internal/products"
	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

// app is the set of services the operator commands drive.
type app struct {
	store   kv.Store
	catalog products.Service
	carts   cart.Service
	orders  orders.Service
}

type appOpener func(ctx context.Context) (*app, error)

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "farmfresh-cli",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})
	store, err := kv.Open(ctx, cfg, logg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a, err := newApp(store, cfg, logg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func newApp(store kv.Store, cfg *config.Config, logg *logger.Logger) (*app, error) {
	fee, err := cfg.Checkout.DeliveryFee()
	if err != nil {
		return nil, err
	}
	repo, err := products.SeedRepository()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalog, err := products.NewService(repo)
	if err != nil {
		return nil, err
	}
	carts, err := cart.NewService(cart.ServiceParams{
		Store:       store,
		Products:    catalog,
		Logger:      logg,
		DeliveryFee: fee,
	})
	if err != nil {
		return nil, err
	}
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:              orders.NewRepository(store),
		Carts:             carts,
		Logger:            logg,
		DeliveryFee:       fee,
		DeliveryLeadTime:  cfg.Checkout.DeliveryLeadTime,
		TrackingCodeChars: cfg.Checkout.TrackingCodeChars,
	})
	if err != nil {
		return nil, err
	}
	return &app{store: store, catalog: catalog, carts: carts, orders: orderSvc}, nil
}
