package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/api"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/messaging"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stock-service HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	a.log.Info("starting stock-service", "port", a.cfg.HttpPort, "storage", a.cfg.StorageDriver, "export_path", a.cfg.ExportPath)

	if a.cfg.MessagingEnabled && a.cfg.ReconcileOnExport {
		bus := messaging.NewStorefrontConsumerBus(a.cfg.RabbitUri, "stock.storefront-events.v1")
		handler := application.NewOrderExportedHandler(a.reconciler, a.log)
		if err := messaging.RegisterExportSubscriptions(ctx, bus, handler, a.log); err != nil {
			return fmt.Errorf("failed to start export subscriptions: %w", err)
		}
	}

	router := api.NewRouter(2 * time.Minute)
	api.NewStockServer(a.catalog, a.reconciler, a.log).RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:    ":" + a.cfg.HttpPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HTTP listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		a.log.Info("shutting down stock-service", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", "err", err)
	}
	return nil
}
