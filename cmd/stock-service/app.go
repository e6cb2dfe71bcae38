package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/bootstrap"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/export"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/messaging"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/pokeapi"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/logging"
)

type app struct {
	cfg        config.Config
	log        *slog.Logger
	source     *pokeapi.Client
	catalog    *application.CatalogService
	reconciler *application.ReconcileService
	closers    []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	storage, err := bootstrap.OpenStorage(ctx, cfg, bootstrap.OriginStockService, log)
	if err != nil {
		return nil, err
	}
	locker, closeLocker, err := bootstrap.NewLocker(cfg, log)
	if err != nil {
		storage.Close()
		return nil, err
	}

	outboxWriter := bootstrap.StartOutbox(ctx, cfg, storage.Outbox, messaging.StockExchange, "stock.dispatcher.v1", log)

	source := pokeapi.NewClient(cfg.CatalogSourceURL, cfg.CatalogFetchConcurrency)
	catalog := application.NewCatalogService(
		storage.Products,
		source,
		outboxWriter,
		application.CatalogOptions{Limit: cfg.CatalogLimit, StockMin: cfg.StockMin, StockMax: cfg.StockMax},
		log,
	)
	reconciler := application.NewReconcileService(
		storage.Products,
		export.NewFileSource(cfg.ExportPath),
		locker,
		outboxWriter,
		application.ReconcileOptions{
			Policy:           cfg.StockPolicy,
			ArchiveProcessed: cfg.ArchiveProcessed,
			LockTTL:          5 * time.Minute,
		},
		log,
	)

	return &app{
		cfg:        cfg,
		log:        log,
		source:     source,
		catalog:    catalog,
		reconciler: reconciler,
		closers:    []func() error{closeLocker, storage.Close},
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Error("close failed", "err", err)
		}
	}
}
