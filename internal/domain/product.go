package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product is one row of the catalog. Name is unique and is the key used by
// checkout and reconciliation to find it.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_ref"`
	Stock        int       `json:"stock"`
	UpdatedAtUtc time.Time `json:"updatedAtUtc"`
}

// CatalogItem is what the external catalog source hands back for one entry.
type CatalogItem struct {
	SourceID int
	Name     string
	ImageURL string
}

type NewProduct struct {
	Name     string
	ImageURL string
	Stock    int
}

type StockPolicy string

const (
	StockAllowNegative StockPolicy = "allow-negative"
	StockClamp         StockPolicy = "clamp"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch StockPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StockAllowNegative:
		return StockAllowNegative, nil
	case StockClamp:
		return StockClamp, nil
	default:
		return "", fmt.Errorf("unknown stock policy %q", s)
	}
}

// ApplyDecrement returns the stock left after taking qty units.
func (p StockPolicy) ApplyDecrement(stock, qty int) int {
	left := stock - qty
	if p == StockClamp && left < 0 {
		return 0
	}
	return left
}
