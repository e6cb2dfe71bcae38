package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// OutboxWriter queues a domain event for the dispatcher. Checkout enqueues
// OrderPlaced and OrderExported, catalog refresh CatalogRefreshed, and
// reconciliation one StockAdjusted per applied row.
type OutboxWriter interface {
	Enqueue(ctx context.Context, ev primitives.Event) error
}

var outboxEventTypes = map[string]bool{
	domain.EventOrderPlaced:      true,
	domain.EventOrderExported:    true,
	domain.EventCatalogRefreshed: true,
	domain.EventStockAdjusted:    true,
}

type outboxWriter struct {
	repo domain.OutboxRepository
	now  func() time.Time
}

func NewOutboxWriter(repo domain.OutboxRepository) OutboxWriter {
	return &outboxWriter{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Enqueue stores ev under its routing key, which doubles as the message type
// the dispatcher publishes. Events without one of the storefront routing keys
// are rejected before anything is written.
func (w *outboxWriter) Enqueue(ctx context.Context, ev primitives.Event) error {
	if ev == nil {
		return fmt.Errorf("enqueue: nil event")
	}
	eventType := ev.GetRoutingKey()
	if !outboxEventTypes[eventType] {
		return fmt.Errorf("enqueue %T: unknown event type %q", ev, eventType)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", eventType, err)
	}

	return w.repo.Insert(ctx, domain.OutboxMessage{
		ID:            uuid.New(),
		Type:          eventType,
		PayloadJSON:   string(payload),
		OccurredAtUtc: w.now(),
	})
}

// NopOutboxWriter drops events; used when messaging is disabled so the
// outbox table does not grow without a dispatcher draining it.
type NopOutboxWriter struct{}

func (NopOutboxWriter) Enqueue(context.Context, primitives.Event) error { return nil }
