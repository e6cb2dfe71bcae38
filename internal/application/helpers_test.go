package application

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/memory"
)

func seedCatalog(t *testing.T, store *memory.Store, stock map[string]int, names ...string) map[string]domain.Product {
	t.Helper()
	items := make([]domain.NewProduct, 0, len(names))
	for _, n := range names {
		items = append(items, domain.NewProduct{Name: n, ImageURL: "https://img/" + n + ".png", Stock: stock[n]})
	}
	products, err := store.ReplaceAll(context.Background(), items)
	require.NoError(t, err)

	out := make(map[string]domain.Product, len(products))
	for _, p := range products {
		out[p.Name] = p
	}
	return out
}

func tempExportPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "ordenes.csv")
}

type recordingSink struct {
	mu      sync.Mutex
	writes  [][]domain.ExportRecord
	failErr error
}

func (s *recordingSink) Write(ctx context.Context, records []domain.ExportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.writes = append(s.writes, records)
	return nil
}

func (s *recordingSink) Location() string { return "memory://export" }

func (s *recordingSink) last() []domain.ExportRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return nil
	}
	return s.writes[len(s.writes)-1]
}

type stubSource struct {
	items []domain.CatalogItem
	err   error
}

func (s stubSource) FetchItems(ctx context.Context, limit int) ([]domain.CatalogItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items[:min(limit, len(s.items))], nil
}

var errBoom = errors.New("boom")
