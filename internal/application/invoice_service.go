package application

import (
	"context"
	"sort"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type InvoiceService struct {
	invoices domain.InvoiceRepository
}

func NewInvoiceService(invoices domain.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoices: invoices}
}

func (s *InvoiceService) ListInvoices(ctx context.Context) ([]domain.InvoiceDocument, error) {
	rows, err := s.invoices.ListInvoiceRows(ctx)
	if err != nil {
		return nil, err
	}
	return FoldInvoiceRows(rows), nil
}

// FoldInvoiceRows groups joined rows by invoice id. Header and customer
// fields come from the first row of each group; lines keep row order.
// Documents are sorted by invoice id.
func FoldInvoiceRows(rows []domain.InvoiceRow) []domain.InvoiceDocument {
	docs := []domain.InvoiceDocument{}
	idx := make(map[int64]int)
	for _, r := range rows {
		i, ok := idx[r.InvoiceID]
		if !ok {
			i = len(docs)
			idx[r.InvoiceID] = i
			docs = append(docs, domain.InvoiceDocument{
				InvoiceID:    r.InvoiceID,
				OrderGroupID: r.OrderGroupID,
				CreatedAtUtc: r.CreatedAtUtc,
				Total:        r.Total,
				Customer:     r.Customer,
				Lines:        []domain.InvoiceLine{},
			})
		}
		docs[i].Lines = append(docs[i].Lines, domain.InvoiceLine{
			ProductName: r.ProductName,
			ImageURL:    r.ImageURL,
			Quantity:    r.Quantity,
		})
	}
	sort.SliceStable(docs, func(a, b int) bool { return docs[a].InvoiceID < docs[b].InvoiceID })
	return docs
}
