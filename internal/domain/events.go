package domain

import (
	"time"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
)

const (
	EventOrderPlaced      = "OrderPlaced"
	EventOrderExported    = "OrderExported"
	EventCatalogRefreshed = "CatalogRefreshed"
	EventStockAdjusted    = "StockAdjusted"
)

type OrderPlacedLine struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type OrderPlacedEvent struct {
	primitives.BaseEvent
	OrderGroupID int64             `json:"orderGroupId"`
	InvoiceID    int64             `json:"invoiceId"`
	Total        string            `json:"total"`
	CustomerName string            `json:"customerName"`
	Lines        []OrderPlacedLine `json:"lines"`
	Skipped      int               `json:"skipped"`
	PlacedAtUtc  time.Time         `json:"placedAtUtc"`
}

func NewOrderPlacedEvent(res *OrderResult, customer Customer) *OrderPlacedEvent {
	lines := make([]OrderPlacedLine, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, OrderPlacedLine{ProductID: l.ProductID, Name: l.Name, Quantity: l.Quantity})
	}
	ev := &OrderPlacedEvent{
		BaseEvent:    primitives.NewBaseEvent(),
		OrderGroupID: res.OrderGroupID,
		InvoiceID:    res.InvoiceID,
		Total:        res.Total.StringFixed(2),
		CustomerName: customer.Name,
		Lines:        lines,
		Skipped:      len(res.Skipped),
		PlacedAtUtc:  time.Now().UTC(),
	}
	ev.SetRoutingKey(EventOrderPlaced)
	return ev
}

// OrderExportedPayload is the body of OrderExported as seen by consumers.
type OrderExportedPayload struct {
	OrderGroupID int64     `json:"orderGroupId"`
	Location     string    `json:"location"`
	LineCount    int       `json:"lineCount"`
	ExportedAt   time.Time `json:"exportedAtUtc"`
}

type OrderExportedEvent struct {
	primitives.BaseEvent
	OrderExportedPayload
}

func NewOrderExportedEvent(orderGroupID int64, location string, lineCount int) *OrderExportedEvent {
	ev := &OrderExportedEvent{
		BaseEvent: primitives.NewBaseEvent(),
		OrderExportedPayload: OrderExportedPayload{
			OrderGroupID: orderGroupID,
			Location:     location,
			LineCount:    lineCount,
			ExportedAt:   time.Now().UTC(),
		},
	}
	ev.SetRoutingKey(EventOrderExported)
	return ev
}

type CatalogRefreshedEvent struct {
	primitives.BaseEvent
	ProductCount   int       `json:"productCount"`
	RefreshedAtUtc time.Time `json:"refreshedAtUtc"`
}

func NewCatalogRefreshedEvent(count int) *CatalogRefreshedEvent {
	ev := &CatalogRefreshedEvent{
		BaseEvent:      primitives.NewBaseEvent(),
		ProductCount:   count,
		RefreshedAtUtc: time.Now().UTC(),
	}
	ev.SetRoutingKey(EventCatalogRefreshed)
	return ev
}

// StockAdjustedEvent is emitted once per product touched by reconciliation.
type StockAdjustedEvent struct {
	primitives.BaseEvent
	ProductName   string    `json:"productName"`
	Quantity      int       `json:"quantity"`
	Stock         int       `json:"stock"`
	Reason        string    `json:"reason"`
	OccurredAtUtc time.Time `json:"occurredAtUtc"`
}

func NewStockAdjustedEvent(name string, qty, stock int, reason string) *StockAdjustedEvent {
	ev := &StockAdjustedEvent{
		BaseEvent:     primitives.NewBaseEvent(),
		ProductName:   name,
		Quantity:      qty,
		Stock:         stock,
		Reason:        reason,
		OccurredAtUtc: time.Now().UTC(),
	}
	ev.SetRoutingKey(EventStockAdjusted)
	return ev
}
