package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

const orderGroupCounter = "order_group"

// PgOrderStore runs a checkout inside one database transaction.
type PgOrderStore struct {
	db *sql.DB
}

func NewPgOrderStore(db *sql.DB) *PgOrderStore {
	return &PgOrderStore{db: db}
}

func (s *PgOrderStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin order tx", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &pgOrderTx{tx: tx}); err != nil {
		return err
	}
	return wrap("commit order tx", tx.Commit())
}

type pgOrderTx struct {
	tx *sql.Tx
}

// NextOrderGroupID bumps the counter row. The row lock it takes serializes
// concurrent checkouts until the surrounding transaction ends; the greatest()
// keeps the counter ahead of rows written before the counter existed.
func (t *pgOrderTx) NextOrderGroupID(ctx context.Context) (int64, error) {
	q := `
        insert into order_group_sequence (name, last_id)
        values ($1, (select coalesce(max(order_group_id), 0) + 1 from order_lines))
        on conflict (name) do update
        set last_id = greatest(
            order_group_sequence.last_id,
            (select coalesce(max(order_group_id), 0) from order_lines)
        ) + 1
        returning last_id
    `
	var id int64
	if err := t.tx.QueryRowContext(ctx, q, orderGroupCounter).Scan(&id); err != nil {
		return 0, wrap("next order group id", err)
	}
	return id, nil
}

func (t *pgOrderTx) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	return findProductByName(ctx, t.tx, name)
}

func (t *pgOrderTx) InsertOrderLine(ctx context.Context, line *domain.OrderLine) error {
	if line.CreatedAtUtc.IsZero() {
		line.CreatedAtUtc = time.Now().UTC()
	}
	q := `
        insert into order_lines
        (order_group_id, product_id, quantity, customer_name, customer_email, customer_address, created_at_utc)
        values ($1,$2,$3,$4,$5,$6,$7)
        returning id
    `
	err := t.tx.QueryRowContext(
		ctx, q,
		line.OrderGroupID,
		line.ProductID,
		line.Quantity,
		line.Customer.Name,
		line.Customer.Email,
		line.Customer.Address,
		line.CreatedAtUtc,
	).Scan(&line.ID)
	return wrap("insert order line", err)
}

func (t *pgOrderTx) InsertInvoice(ctx context.Context, inv *domain.Invoice) error {
	if inv.CreatedAtUtc.IsZero() {
		inv.CreatedAtUtc = time.Now().UTC()
	}
	q := `
        insert into invoices (order_group_id, total, created_at_utc)
        values ($1,$2,$3)
        returning id
    `
	err := t.tx.QueryRowContext(ctx, q, inv.OrderGroupID, inv.Total.StringFixed(2), inv.CreatedAtUtc).Scan(&inv.ID)
	return wrap("insert invoice", err)
}
