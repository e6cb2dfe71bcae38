package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID           int64
	OrderGroupID int64
	Total        decimal.Decimal
	CreatedAtUtc time.Time
}

// InvoiceRow is one row of the invoice ⋈ order_line ⋈ product join. The
// invoice and customer columns repeat on every line of the same invoice.
type InvoiceRow struct {
	InvoiceID    int64
	OrderGroupID int64
	CreatedAtUtc time.Time
	Total        decimal.Decimal
	Customer     Customer
	ProductName  string
	ImageURL     string
	Quantity     int
}

type InvoiceLine struct {
	ProductName string `json:"product_name"`
	ImageURL    string `json:"image_ref"`
	Quantity    int    `json:"quantity"`
}

type InvoiceDocument struct {
	InvoiceID    int64           `json:"invoiceId"`
	OrderGroupID int64           `json:"orderGroupId"`
	CreatedAtUtc time.Time       `json:"createdAtUtc"`
	Total        decimal.Decimal `json:"total"`
	Customer     Customer        `json:"customer"`
	Lines        []InvoiceLine   `json:"lines"`
}
