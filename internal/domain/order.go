package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const SkipReasonProductNotFound = "product_not_found"

type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
}

// CartEntry is one requested (product, quantity) pair. ProductID is what the
// client saw on the catalog page; resolution always goes through the name.
type CartEntry struct {
	ProductID   int64  `json:"id,omitempty"`
	ProductName string `json:"name" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
}

type PlaceOrderCommand struct {
	Cart     []CartEntry `json:"cart" validate:"required,min=1,dive"`
	Customer Customer    `json:"customer"`
}

type OrderLine struct {
	ID           int64
	OrderGroupID int64
	ProductID    int64
	Quantity     int
	Customer     Customer
	CreatedAtUtc time.Time
}

type AcceptedLine struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SkippedEntry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type OrderResult struct {
	OrderGroupID int64           `json:"orderGroupId"`
	InvoiceID    int64           `json:"invoiceId"`
	Lines        []AcceptedLine  `json:"lines"`
	Skipped      []SkippedEntry  `json:"skipped"`
	Total        decimal.Decimal `json:"total"`
	ExportedTo   string          `json:"exportedTo,omitempty"`
}

// ExportRecords projects the accepted lines onto the external record layout.
func (r *OrderResult) ExportRecords() []ExportRecord {
	out := make([]ExportRecord, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, ExportRecord{ID: l.ProductID, Name: l.Name, Quantity: l.Quantity})
	}
	return out
}

// NextOrderGroupID derives the id for a new checkout from the last id handed
// out by the counter and the highest id already present in order lines.
func NextOrderGroupID(lastIssued, maxExisting int64) int64 {
	return max(lastIssued, maxExisting) + 1
}
