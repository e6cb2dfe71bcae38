package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// Publisher hands one outbox message to the broker.
type Publisher interface {
	Publish(ctx context.Context, eventType, payloadJSON string) error
}

type Dispatcher struct {
	repo      domain.OutboxRepository
	publisher Publisher
	maxRetry  int
	batchSize int
	log       *slog.Logger
	now       func() time.Time
}

func NewDispatcher(
	repo domain.OutboxRepository,
	publisher Publisher,
	maxRetry, batchSize int,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		maxRetry:  maxRetry,
		batchSize: batchSize,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// DispatchOnce publishes one batch of pending messages and returns how many
// were marked processed. A failed publish bumps the retry count; messages at
// maxRetry are no longer picked up.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	msgs, err := d.repo.GetPendingBatch(ctx, d.maxRetry, d.batchSize)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	processed := 0
	for i := range msgs {
		msg := &msgs[i]

		if !json.Valid([]byte(msg.PayloadJSON)) {
			d.log.Error("outbox payload is not valid json", "id", msg.ID, "type", msg.Type)
			msg.RetryCount++
			if err := d.repo.Save(ctx, *msg); err != nil {
				d.log.Error("outbox save failed", "id", msg.ID, "err", err)
			}
			continue
		}

		if err := d.publisher.Publish(ctx, msg.Type, msg.PayloadJSON); err != nil {
			d.log.Warn("outbox publish failed", "id", msg.ID, "type", msg.Type, "retry", msg.RetryCount+1, "err", err)
			msg.RetryCount++
		} else {
			now := d.now()
			msg.ProcessedAtUtc = &now
			processed++
		}

		if err := d.repo.Save(ctx, *msg); err != nil {
			d.log.Error("outbox save failed", "id", msg.ID, "err", err)
		}
	}

	return processed, nil
}
