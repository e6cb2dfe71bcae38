package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type EventHandler interface {
	Handle(ctx context.Context, ev primitives.Event) error
}

type Reconciler interface {
	Reconcile(ctx context.Context) (*domain.ReconciliationReport, error)
}

// OrderExportedHandler runs a reconciliation pass whenever storefront reports
// a fresh export.
type OrderExportedHandler struct {
	reconciler Reconciler
	log        *slog.Logger
}

func NewOrderExportedHandler(r Reconciler, log *slog.Logger) *OrderExportedHandler {
	return &OrderExportedHandler{reconciler: r, log: log}
}

func (h *OrderExportedHandler) Handle(ctx context.Context, ev primitives.Event) error {
	env, ok := ev.(*primitives.IntegrationEventEnvelope)
	if !ok {
		h.log.Warn("OrderExportedHandler: invalid event type", "type", fmt.Sprintf("%T", ev))
		return nil
	}
	if env.Type != domain.EventOrderExported {
		return nil
	}

	var payload domain.OrderExportedPayload
	if err := json.Unmarshal([]byte(env.PayloadJSON), &payload); err != nil {
		h.log.Warn("OrderExportedHandler: failed to unmarshal payload", "err", err)
		return nil
	}

	h.log.Info("OrderExportedHandler: received export",
		"order_group_id", payload.OrderGroupID, "location", payload.Location, "lines", payload.LineCount)

	_, err := h.reconciler.Reconcile(ctx)
	if errors.Is(err, domain.ErrReconcileInProgress) {
		h.log.Info("OrderExportedHandler: reconciliation already running, skipping")
		return nil
	}
	return err
}
