package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/memory"
)

func TestListInvoices_GroupsLinesPerInvoice(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, nil, "A", "B", "C")
	orders := newOrderService(store, &recordingSink{})
	ctx := context.Background()

	misty := domain.Customer{Name: "Misty", Email: "misty@cerulean.test", Address: "Cerulean Gym"}
	_, err := orders.PlaceOrder(ctx, domain.PlaceOrderCommand{
		Cart:     []domain.CartEntry{{ProductName: "A", Quantity: 1}, {ProductName: "B", Quantity: 2}},
		Customer: ash,
	})
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, domain.PlaceOrderCommand{
		Cart:     []domain.CartEntry{{ProductName: "C", Quantity: 5}},
		Customer: misty,
	})
	require.NoError(t, err)

	docs, err := NewInvoiceService(store).ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, int64(1), docs[0].OrderGroupID)
	assert.Equal(t, ash, docs[0].Customer)
	assert.True(t, docs[0].Total.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, []domain.InvoiceLine{
		{ProductName: "A", ImageURL: "https://img/A.png", Quantity: 1},
		{ProductName: "B", ImageURL: "https://img/B.png", Quantity: 2},
	}, docs[0].Lines)

	assert.Equal(t, int64(2), docs[1].OrderGroupID)
	assert.Equal(t, misty, docs[1].Customer)
	assert.Equal(t, []domain.InvoiceLine{{ProductName: "C", ImageURL: "https://img/C.png", Quantity: 5}}, docs[1].Lines)
}

func TestFoldInvoiceRows_SortsByInvoiceAndKeepsLineOrder(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.InvoiceRow{
		{InvoiceID: 9, OrderGroupID: 3, CreatedAtUtc: at, ProductName: "z"},
		{InvoiceID: 2, OrderGroupID: 1, CreatedAtUtc: at, ProductName: "b"},
		{InvoiceID: 9, OrderGroupID: 3, CreatedAtUtc: at, ProductName: "y"},
		{InvoiceID: 2, OrderGroupID: 1, CreatedAtUtc: at, ProductName: "a"},
	}

	docs := FoldInvoiceRows(rows)

	require.Len(t, docs, 2)
	assert.Equal(t, int64(2), docs[0].InvoiceID)
	assert.Equal(t, "b", docs[0].Lines[0].ProductName)
	assert.Equal(t, "a", docs[0].Lines[1].ProductName)
	assert.Equal(t, int64(9), docs[1].InvoiceID)
	assert.Equal(t, "z", docs[1].Lines[0].ProductName)
	assert.Equal(t, "y", docs[1].Lines[1].ProductName)
}

func TestFoldInvoiceRows_Empty(t *testing.T) {
	docs := FoldInvoiceRows(nil)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
