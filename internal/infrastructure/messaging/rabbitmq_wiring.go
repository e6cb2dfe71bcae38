package messaging

import (
	"context"
	"log/slog"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/abstractions"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	messaging "github.com/rodolfodevapp/eventshop-messaging-go/rabbitmq"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

const (
	StorefrontExchange = "storefront.events"
	StockExchange      = "stock.events"
)

func busOptions(rabbitUri, exchange, queuePrefix string) messaging.RabbitMqOptions {
	return messaging.RabbitMqOptions{
		URI:          rabbitUri,
		ExchangeName: exchange,
		QueuePrefix:  queuePrefix,
		Prefetch:     32,
		RetryDelayMs: 30000,
	}
}

// NewProducerBus is the bus the outbox dispatcher publishes to.
func NewProducerBus(rabbitUri, exchange, queuePrefix string) *messaging.RabbitMqEventBus {
	return messaging.NewRabbitMqEventBus(busOptions(rabbitUri, exchange, queuePrefix), nil, nil)
}

// NewStorefrontConsumerBus listens on storefront.events, where OrderExported
// is published.
func NewStorefrontConsumerBus(rabbitUri, queuePrefix string) *messaging.RabbitMqEventBus {
	return messaging.NewRabbitMqEventBus(busOptions(rabbitUri, StorefrontExchange, queuePrefix), nil, nil)
}

// EnvelopePublisher wraps outbox payloads in the standard integration
// envelope before handing them to the bus.
type EnvelopePublisher struct {
	bus abstractions.EventBus
}

func NewEnvelopePublisher(bus abstractions.EventBus) *EnvelopePublisher {
	return &EnvelopePublisher{bus: bus}
}

func (p *EnvelopePublisher) Publish(ctx context.Context, eventType, payloadJSON string) error {
	envelope := primitives.NewIntegrationEventEnvelope(eventType, payloadJSON)
	envelope.SetRoutingKey(eventType)
	return p.bus.Publish(ctx, &envelope)
}

func RegisterExportSubscriptions(
	ctx context.Context,
	bus *messaging.RabbitMqEventBus,
	orderExportedHandler application.EventHandler,
	log *slog.Logger,
) error {
	bus.Subscribe(domain.EventOrderExported, orderExportedHandler)

	if err := bus.StartConsumers(ctx); err != nil {
		log.Error("error starting storefront consumers", "err", err)
		return err
	}
	return nil
}
