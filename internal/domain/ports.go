package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	// FindByName returns (nil, nil) when no product has that name.
	FindByName(ctx context.Context, name string) (*Product, error)
	ReplaceAll(ctx context.Context, items []NewProduct) ([]Product, error)
	// DecrementStock returns the stock left, or a *NotFoundError.
	DecrementStock(ctx context.Context, name string, qty int, policy StockPolicy) (int, error)
}

// OrderStore runs a checkout as one unit of work.
type OrderStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx OrderTx) error) error
}

type OrderTx interface {
	NextOrderGroupID(ctx context.Context) (int64, error)
	FindProductByName(ctx context.Context, name string) (*Product, error)
	InsertOrderLine(ctx context.Context, line *OrderLine) error
	InsertInvoice(ctx context.Context, inv *Invoice) error
}

type InvoiceRepository interface {
	ListInvoiceRows(ctx context.Context) ([]InvoiceRow, error)
}

type OutboxRepository interface {
	Insert(ctx context.Context, msg OutboxMessage) error
	GetPendingBatch(ctx context.Context, maxRetry, batchSize int) ([]OutboxMessage, error)
	Save(ctx context.Context, msg OutboxMessage) error
}

type OutboxMessage struct {
	ID             uuid.UUID
	Type           string
	PayloadJSON    string
	OccurredAtUtc  time.Time
	RetryCount     int
	ProcessedAtUtc *time.Time
}

func (m OutboxMessage) Processed() bool { return m.ProcessedAtUtc != nil }

type CatalogSource interface {
	FetchItems(ctx context.Context, limit int) ([]CatalogItem, error)
}

// ExportSink is the single-slot external record written after each checkout.
type ExportSink interface {
	Write(ctx context.Context, records []ExportRecord) error
	Location() string
}

type RecordSource interface {
	// Read returns ErrSourceUnavailable when there is nothing to read.
	Read(ctx context.Context) ([]RawRecord, error)
	// Archive moves the consumed record aside and returns where it went.
	Archive(ctx context.Context, at time.Time) (string, error)
	Location() string
}

type Locker interface {
	// Acquire returns ErrLockHeld when another owner holds key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
