package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type PgProductRepository struct {
	db *sql.DB
}

func NewPgProductRepository(db *sql.DB) *PgProductRepository {
	return &PgProductRepository{db: db}
}

func (r *PgProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	q := `
        select id, name, image_url, stock, updated_at_utc
        from products
        order by id
    `
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrap("list products", err)
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.ImageURL, &p.Stock, &p.UpdatedAtUtc); err != nil {
			return nil, wrap("list products", err)
		}
		result = append(result, p)
	}
	return result, wrap("list products", rows.Err())
}

func (r *PgProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return findProductByName(ctx, r.db, name)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findProductByName(ctx context.Context, q queryRower, name string) (*domain.Product, error) {
	row := q.QueryRowContext(ctx, `
        select id, name, image_url, stock, updated_at_utc
        from products
        where name = $1
    `, name)

	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.ImageURL, &p.Stock, &p.UpdatedAtUtc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("find product", err)
	}
	return &p, nil
}

// ReplaceAll swaps the whole catalog in one transaction. Ids come from the
// bigserial sequence, so a refreshed catalog never reuses an old id.
func (r *PgProductRepository) ReplaceAll(ctx context.Context, items []domain.NewProduct) ([]domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("replace products", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `delete from products`); err != nil {
		return nil, wrap("replace products", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        insert into products (name, image_url, stock, updated_at_utc)
        values ($1,$2,$3,$4)
        returning id
    `)
	if err != nil {
		return nil, wrap("replace products", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	out := make([]domain.Product, 0, len(items))
	for _, it := range items {
		p := domain.Product{Name: it.Name, ImageURL: it.ImageURL, Stock: it.Stock, UpdatedAtUtc: now}
		if err := stmt.QueryRowContext(ctx, it.Name, it.ImageURL, it.Stock, now).Scan(&p.ID); err != nil {
			return nil, wrap("replace products", err)
		}
		out = append(out, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("replace products", err)
	}
	return out, nil
}

func (r *PgProductRepository) DecrementStock(ctx context.Context, name string, qty int, policy domain.StockPolicy) (int, error) {
	q := `
        update products
        set stock = stock - $2,
            updated_at_utc = now()
        where name = $1
        returning stock
    `
	if policy == domain.StockClamp {
		q = `
        update products
        set stock = greatest(stock - $2, 0),
            updated_at_utc = now()
        where name = $1
        returning stock
    `
	}

	var stock int
	if err := r.db.QueryRowContext(ctx, q, name, qty).Scan(&stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &domain.NotFoundError{Entity: "product", Key: name}
		}
		return 0, wrap("decrement stock", err)
	}
	return stock, nil
}
