package db

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type PgInvoiceRepository struct {
	db *sql.DB
}

func NewPgInvoiceRepository(db *sql.DB) *PgInvoiceRepository {
	return &PgInvoiceRepository{db: db}
}

// ListInvoiceRows returns one row per invoiced order line. Lines whose product
// was dropped by a catalog refresh fall out of the inner join.
func (r *PgInvoiceRepository) ListInvoiceRows(ctx context.Context) ([]domain.InvoiceRow, error) {
	q := `
        select i.id, i.order_group_id, i.created_at_utc, i.total::text,
               o.customer_name, o.customer_email, o.customer_address,
               p.name, p.image_url, o.quantity
        from invoices i
        join order_lines o on o.order_group_id = i.order_group_id
        join products p on p.id = o.product_id
        order by i.id, o.id
    `
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrap("list invoices", err)
	}
	defer rows.Close()

	var result []domain.InvoiceRow
	for rows.Next() {
		var row domain.InvoiceRow
		var total string
		if err := rows.Scan(
			&row.InvoiceID,
			&row.OrderGroupID,
			&row.CreatedAtUtc,
			&total,
			&row.Customer.Name,
			&row.Customer.Email,
			&row.Customer.Address,
			&row.ProductName,
			&row.ImageURL,
			&row.Quantity,
		); err != nil {
			return nil, wrap("list invoices", err)
		}
		if row.Total, err = decimal.NewFromString(total); err != nil {
			return nil, wrap("list invoices", err)
		}
		result = append(result, row)
	}
	return result, wrap("list invoices", rows.Err())
}
