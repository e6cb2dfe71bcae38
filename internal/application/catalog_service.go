package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type CatalogOptions struct {
	Limit    int
	StockMin int
	StockMax int
	// StockFunc overrides the initial stock draw; nil means uniform in
	// [StockMin, StockMax].
	StockFunc func() int
}

type CatalogService struct {
	products domain.ProductRepository
	source   domain.CatalogSource
	outbox   OutboxWriter
	limit    int
	stock    func() int
	log      *slog.Logger
}

func NewCatalogService(
	products domain.ProductRepository,
	source domain.CatalogSource,
	outbox OutboxWriter,
	opts CatalogOptions,
	log *slog.Logger,
) *CatalogService {
	stock := opts.StockFunc
	if stock == nil {
		lo, hi := opts.StockMin, max(opts.StockMax, opts.StockMin)
		stock = func() int { return lo + rand.IntN(hi-lo+1) }
	}
	return &CatalogService{
		products: products,
		source:   source,
		outbox:   outbox,
		limit:    opts.Limit,
		stock:    stock,
		log:      log,
	}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// Refresh pulls the configured number of entries from the catalog source and
// replaces the whole catalog with them.
func (s *CatalogService) Refresh(ctx context.Context) ([]domain.Product, error) {
	items, err := s.source.FetchItems(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return s.RefreshItems(ctx, items)
}

// RefreshItems replaces the catalog with items, each starting with a fresh
// random stock. Blank and repeated names are dropped.
func (s *CatalogService) RefreshItems(ctx context.Context, items []domain.CatalogItem) ([]domain.Product, error) {
	seen := make(map[string]struct{}, len(items))
	fresh := make([]domain.NewProduct, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			s.log.Warn("catalog item without name dropped", "source_id", it.SourceID)
			continue
		}
		if _, dup := seen[name]; dup {
			s.log.Warn("duplicate catalog item dropped", "name", name)
			continue
		}
		seen[name] = struct{}{}
		fresh = append(fresh, domain.NewProduct{Name: name, ImageURL: it.ImageURL, Stock: s.stock()})
	}

	products, err := s.products.ReplaceAll(ctx, fresh)
	if err != nil {
		return nil, err
	}
	s.log.Info("catalog refreshed", "products", len(products))

	if err := s.outbox.Enqueue(ctx, domain.NewCatalogRefreshedEvent(len(products))); err != nil {
		s.log.Error("enqueue CatalogRefreshed failed", "err", err)
	}
	return products, nil
}
