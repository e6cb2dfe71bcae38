package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/api"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/bootstrap"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/export"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/messaging"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error", "json").Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting storefront", "port", cfg.HttpPort, "storage", cfg.StorageDriver, "export_path", cfg.ExportPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := bootstrap.OpenStorage(ctx, cfg, bootstrap.OriginStorefront, log)
	if err != nil {
		log.Error("failed to open storage", "err", err)
		os.Exit(1)
	}
	defer storage.Close()

	outboxWriter := bootstrap.StartOutbox(ctx, cfg, storage.Outbox, messaging.StorefrontExchange, "storefront.dispatcher.v1", log)

	catalog := application.NewCatalogService(storage.Products, nil, outboxWriter, application.CatalogOptions{}, log)
	orders := application.NewOrderService(storage.Orders, export.NewFileSink(cfg.ExportPath), outboxWriter, cfg.UnitPrice, log)
	invoices := application.NewInvoiceService(storage.Invoices)

	router := api.NewRouter(30 * time.Second)
	api.NewStorefrontServer(catalog, orders, invoices, log).RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.HttpPort,
		Handler: router,
	}

	go func() {
		log.Info("HTTP listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down storefront", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "err", err)
	}
}
