// Package memory keeps the catalog, orders, invoices and outbox in process.
// It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	products      map[string]*domain.Product
	lastProductID int64

	lines       []domain.OrderLine
	lastLineID  int64
	lastGroupID int64

	invoices      []domain.Invoice
	lastInvoiceID int64

	outbox []domain.OutboxMessage
}

func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		products: make(map[string]*domain.Product),
	}
}

// Products

func (s *Store) List(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findByNameLocked(name), nil
}

func (s *Store) findByNameLocked(name string) *domain.Product {
	p, ok := s.products[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *Store) ReplaceAll(ctx context.Context, items []domain.NewProduct) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.Name]; dup {
			return nil, domain.NewStorageError("replace products", errors.New("duplicate product name "+it.Name))
		}
		seen[it.Name] = struct{}{}
	}

	s.products = make(map[string]*domain.Product, len(items))
	out := make([]domain.Product, 0, len(items))
	now := s.now()
	for _, it := range items {
		s.lastProductID++
		p := &domain.Product{
			ID:           s.lastProductID,
			Name:         it.Name,
			ImageURL:     it.ImageURL,
			Stock:        it.Stock,
			UpdatedAtUtc: now,
		}
		s.products[p.Name] = p
		out = append(out, *p)
	}
	return out, nil
}

func (s *Store) DecrementStock(ctx context.Context, name string, qty int, policy domain.StockPolicy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[name]
	if !ok {
		return 0, &domain.NotFoundError{Entity: "product", Key: name}
	}
	p.Stock = policy.ApplyDecrement(p.Stock, qty)
	p.UpdatedAtUtc = s.now()
	return p.Stock, nil
}

// Orders

// WithinTx holds the store lock for the whole unit of work, so checkouts are
// serialized, and only publishes the staged rows when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.OrderTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, lastLineID: s.lastLineID, lastInvoiceID: s.lastInvoiceID, lastGroupID: s.lastGroupID}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.lines = append(s.lines, tx.lines...)
	s.invoices = append(s.invoices, tx.invoices...)
	s.lastLineID = tx.lastLineID
	s.lastInvoiceID = tx.lastInvoiceID
	s.lastGroupID = tx.lastGroupID
	return nil
}

type memTx struct {
	store *Store

	lines         []domain.OrderLine
	invoices      []domain.Invoice
	lastLineID    int64
	lastInvoiceID int64
	lastGroupID   int64
}

func (t *memTx) NextOrderGroupID(ctx context.Context) (int64, error) {
	var maxExisting int64
	for _, l := range t.store.lines {
		maxExisting = max(maxExisting, l.OrderGroupID)
	}
	for _, l := range t.lines {
		maxExisting = max(maxExisting, l.OrderGroupID)
	}
	t.lastGroupID = domain.NextOrderGroupID(t.lastGroupID, maxExisting)
	return t.lastGroupID, nil
}

func (t *memTx) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	return t.store.findByNameLocked(name), nil
}

func (t *memTx) InsertOrderLine(ctx context.Context, line *domain.OrderLine) error {
	if line.Quantity <= 0 {
		return domain.NewStorageError("insert order line", errors.New("quantity must be positive"))
	}
	for _, staged := range [][]domain.OrderLine{t.store.lines, t.lines} {
		for _, l := range staged {
			if l.OrderGroupID == line.OrderGroupID && l.ProductID == line.ProductID {
				return domain.NewStorageError("insert order line", domain.ErrDuplicateOrderGroup)
			}
		}
	}
	t.lastLineID++
	line.ID = t.lastLineID
	if line.CreatedAtUtc.IsZero() {
		line.CreatedAtUtc = t.store.now()
	}
	t.lines = append(t.lines, *line)
	return nil
}

func (t *memTx) InsertInvoice(ctx context.Context, inv *domain.Invoice) error {
	for _, staged := range [][]domain.Invoice{t.store.invoices, t.invoices} {
		for _, existing := range staged {
			if existing.OrderGroupID == inv.OrderGroupID {
				return domain.NewStorageError("insert invoice", domain.ErrDuplicateOrderGroup)
			}
		}
	}
	t.lastInvoiceID++
	inv.ID = t.lastInvoiceID
	if inv.CreatedAtUtc.IsZero() {
		inv.CreatedAtUtc = t.store.now()
	}
	t.invoices = append(t.invoices, *inv)
	return nil
}

// Invoices

func (s *Store) ListInvoiceRows(ctx context.Context) ([]domain.InvoiceRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]*domain.Product, len(s.products))
	for _, p := range s.products {
		byID[p.ID] = p
	}

	invoices := append([]domain.Invoice(nil), s.invoices...)
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].ID < invoices[j].ID })

	var rows []domain.InvoiceRow
	for _, inv := range invoices {
		for _, l := range s.lines {
			if l.OrderGroupID != inv.OrderGroupID {
				continue
			}
			p, ok := byID[l.ProductID]
			if !ok {
				continue
			}
			rows = append(rows, domain.InvoiceRow{
				InvoiceID:    inv.ID,
				OrderGroupID: inv.OrderGroupID,
				CreatedAtUtc: inv.CreatedAtUtc,
				Total:        inv.Total,
				Customer:     l.Customer,
				ProductName:  p.Name,
				ImageURL:     p.ImageURL,
				Quantity:     l.Quantity,
			})
		}
	}
	return rows, nil
}

// OrderLines returns a copy of every committed order line.
func (s *Store) OrderLines() []domain.OrderLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OrderLine(nil), s.lines...)
}

func (s *Store) Invoices() []domain.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Invoice(nil), s.invoices...)
}

// Outbox

func (s *Store) Insert(ctx context.Context, msg domain.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, msg)
	return nil
}

func (s *Store) GetPendingBatch(ctx context.Context, maxRetry, batchSize int) ([]domain.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.OutboxMessage
	for _, m := range s.outbox {
		if len(out) >= batchSize {
			break
		}
		if m.Processed() || m.RetryCount >= maxRetry {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, msg domain.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].ID == msg.ID {
			s.outbox[i].RetryCount = msg.RetryCount
			if msg.ProcessedAtUtc != nil {
				s.outbox[i].ProcessedAtUtc = msg.ProcessedAtUtc
			}
			return nil
		}
	}
	return &domain.NotFoundError{Entity: "outbox message", Key: msg.ID.String()}
}

// OutboxMessages returns a copy of the outbox in insertion order.
func (s *Store) OutboxMessages() []domain.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxMessage(nil), s.outbox...)
}
