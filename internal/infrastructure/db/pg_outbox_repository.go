package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// PgOutboxRepository stores pending domain events (OrderPlaced, OrderExported,
// CatalogRefreshed, StockAdjusted) in outbox_messages. Both services share the
// table, so every row is tagged with the origin that wrote it and a
// repository only ever hands its own rows to the dispatcher.
type PgOutboxRepository struct {
	db     *sql.DB
	origin string
}

func NewPgOutboxRepository(db *sql.DB, origin string) *PgOutboxRepository {
	return &PgOutboxRepository{db: db, origin: origin}
}

func (r *PgOutboxRepository) Insert(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.OccurredAtUtc.IsZero() {
		msg.OccurredAtUtc = time.Now().UTC()
	}

	const q = `
        insert into outbox_messages
        (id, origin, type, payload_json, occurred_at_utc, retry_count, processed_at_utc)
        values ($1, $2, $3, $4, $5, $6, null)
    `
	_, err := r.db.ExecContext(ctx, q,
		msg.ID, r.origin, msg.Type, msg.PayloadJSON, msg.OccurredAtUtc, msg.RetryCount)
	return wrap("insert "+msg.Type+" outbox message", err)
}

// GetPendingBatch returns this origin's unprocessed events, oldest first,
// skipping those that already used up maxRetry attempts.
func (r *PgOutboxRepository) GetPendingBatch(ctx context.Context, maxRetry, batchSize int) ([]domain.OutboxMessage, error) {
	const q = `
        select id, type, payload_json, occurred_at_utc, retry_count
        from outbox_messages
        where origin = $1
          and processed_at_utc is null
          and retry_count < $2
        order by occurred_at_utc asc
        limit $3
    `
	rows, err := r.db.QueryContext(ctx, q, r.origin, maxRetry, batchSize)
	if err != nil {
		return nil, wrap("pending outbox batch", err)
	}
	defer rows.Close()

	batch := make([]domain.OutboxMessage, 0, batchSize)
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.Type, &msg.PayloadJSON, &msg.OccurredAtUtc, &msg.RetryCount); err != nil {
			return nil, wrap("pending outbox batch", err)
		}
		msg.OccurredAtUtc = msg.OccurredAtUtc.UTC()
		batch = append(batch, msg)
	}
	return batch, wrap("pending outbox batch", rows.Err())
}

// Save records a dispatch attempt. A processed timestamp, once set, is
// never cleared.
func (r *PgOutboxRepository) Save(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == uuid.Nil {
		return errors.New("outbox message id is empty")
	}

	var processed sql.NullTime
	if msg.ProcessedAtUtc != nil {
		processed = sql.NullTime{Time: msg.ProcessedAtUtc.UTC(), Valid: true}
	}

	const q = `
        update outbox_messages
        set retry_count = $3,
            processed_at_utc = coalesce($4, processed_at_utc)
        where id = $1 and origin = $2
    `
	res, err := r.db.ExecContext(ctx, q, msg.ID, r.origin, msg.RetryCount, processed)
	if err != nil {
		return wrap("save outbox message", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Entity: "outbox message", Key: msg.ID.String()}
	}
	return nil
}
