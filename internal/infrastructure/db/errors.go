package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

const uniqueViolation = "23505"

// wrap turns a driver error into a *domain.StorageError. Unique violations on
// the order tables surface as domain.ErrDuplicateOrderGroup.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.TableName {
		case "invoices", "order_lines":
			err = fmt.Errorf("%w: %s", domain.ErrDuplicateOrderGroup, pgErr.ConstraintName)
		}
	}
	return domain.NewStorageError(op, err)
}
