package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/memory"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/logging"
)

func items(names ...string) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(names))
	for i, n := range names {
		out = append(out, domain.CatalogItem{SourceID: i + 1, Name: n, ImageURL: "https://img/" + n + ".png"})
	}
	return out
}

func TestRefreshItems_ReplacesCatalog(t *testing.T) {
	store := memory.NewStore()
	svc := NewCatalogService(store, stubSource{}, NewOutboxWriter(store), CatalogOptions{StockMin: 1, StockMax: 100}, logging.Discard())
	ctx := context.Background()

	old, err := svc.RefreshItems(ctx, items("Q1", "Q2", "Q3"))
	require.NoError(t, err)
	fresh, err := svc.RefreshItems(ctx, items("P1", "P2"))
	require.NoError(t, err)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "P1", listed[0].Name)
	assert.Equal(t, "P2", listed[1].Name)

	for _, p := range fresh {
		for _, q := range old {
			assert.NotEqual(t, q.ID, p.ID)
		}
		assert.GreaterOrEqual(t, p.Stock, 1)
		assert.LessOrEqual(t, p.Stock, 100)
	}

	msgs := store.OutboxMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.EventCatalogRefreshed, msgs[1].Type)
}

func TestRefreshItems_DropsBlankAndDuplicateNames(t *testing.T) {
	store := memory.NewStore()
	svc := NewCatalogService(store, stubSource{}, NopOutboxWriter{}, CatalogOptions{StockFunc: func() int { return 42 }}, logging.Discard())

	products, err := svc.RefreshItems(context.Background(), items("mew", " ", "mew", "mewtwo"))
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "mew", products[0].Name)
	assert.Equal(t, "mewtwo", products[1].Name)
	assert.Equal(t, 42, products[0].Stock)
}

func TestRefresh_UsesSourceAndLimit(t *testing.T) {
	store := memory.NewStore()
	src := stubSource{items: items("a", "b", "c", "d")}
	svc := NewCatalogService(store, src, NopOutboxWriter{}, CatalogOptions{Limit: 3, StockMin: 5, StockMax: 5}, logging.Discard())

	products, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 3)
	for _, p := range products {
		assert.Equal(t, 5, p.Stock)
	}
}

func TestRefresh_SourceFailureKeepsCatalog(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, nil, "keep")
	svc := NewCatalogService(store, stubSource{err: errBoom}, NopOutboxWriter{}, CatalogOptions{Limit: 10}, logging.Discard())

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, errBoom)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "keep", listed[0].Name)
}
