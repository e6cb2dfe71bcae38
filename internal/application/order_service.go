package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/validation"
)

type OrderService struct {
	store     domain.OrderStore
	sink      domain.ExportSink
	outbox    OutboxWriter
	validate  *validatorv10.Validate
	unitPrice decimal.Decimal
	log       *slog.Logger
}

func NewOrderService(
	store domain.OrderStore,
	sink domain.ExportSink,
	outbox OutboxWriter,
	unitPrice decimal.Decimal,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		store:     store,
		sink:      sink,
		outbox:    outbox,
		validate:  validation.New(),
		unitPrice: unitPrice,
		log:       log,
	}
}

// PlaceOrder writes every resolvable cart entry as an order line under one
// new order group, invoices the group and exports the accepted lines.
//
// Nothing is written when validation fails or no entry resolves. When the
// export fails after commit the result is still returned together with an
// error wrapping domain.ErrExportFailed.
func (s *OrderService) PlaceOrder(ctx context.Context, cmd domain.PlaceOrderCommand) (*domain.OrderResult, error) {
	if err := validation.Struct(s.validate, cmd); err != nil {
		return nil, err
	}
	customer := domain.Customer{
		Name:    strings.TrimSpace(cmd.Customer.Name),
		Email:   strings.TrimSpace(cmd.Customer.Email),
		Address: strings.TrimSpace(cmd.Customer.Address),
	}
	entries := mergeCart(cmd.Cart)

	var res *domain.OrderResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.OrderTx) error {
		groupID, err := tx.NextOrderGroupID(ctx)
		if err != nil {
			return err
		}
		res = &domain.OrderResult{
			OrderGroupID: groupID,
			Lines:        []domain.AcceptedLine{},
			Skipped:      []domain.SkippedEntry{},
			Total:        decimal.Zero,
		}

		for _, e := range entries {
			p, err := tx.FindProductByName(ctx, e.ProductName)
			if err != nil {
				return err
			}
			if p == nil {
				s.log.Warn("cart entry skipped, product not found",
					"order_group_id", groupID, "name", e.ProductName, "quantity", e.Quantity)
				res.Skipped = append(res.Skipped, domain.SkippedEntry{
					Name: e.ProductName, Quantity: e.Quantity, Reason: domain.SkipReasonProductNotFound,
				})
				continue
			}

			line := &domain.OrderLine{
				OrderGroupID: groupID,
				ProductID:    p.ID,
				Quantity:     e.Quantity,
				Customer:     customer,
			}
			if err := tx.InsertOrderLine(ctx, line); err != nil {
				return err
			}
			subtotal := s.unitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
			res.Total = res.Total.Add(subtotal)
			res.Lines = append(res.Lines, domain.AcceptedLine{
				ProductID: p.ID, Name: p.Name, Quantity: e.Quantity, Subtotal: subtotal,
			})
		}

		if len(res.Lines) == 0 {
			names := make([]string, 0, len(res.Skipped))
			for _, sk := range res.Skipped {
				names = append(names, sk.Name)
			}
			return fmt.Errorf("%w: %s", domain.ErrNoAcceptedLines, strings.Join(names, ", "))
		}

		inv := &domain.Invoice{OrderGroupID: groupID, Total: res.Total}
		if err := tx.InsertInvoice(ctx, inv); err != nil {
			return err
		}
		res.InvoiceID = inv.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order placed",
		"order_group_id", res.OrderGroupID, "invoice_id", res.InvoiceID,
		"lines", len(res.Lines), "skipped", len(res.Skipped), "total", res.Total.StringFixed(2))

	if err := s.outbox.Enqueue(ctx, domain.NewOrderPlacedEvent(res, customer)); err != nil {
		s.log.Error("enqueue OrderPlaced failed", "order_group_id", res.OrderGroupID, "err", err)
	}

	if err := s.sink.Write(ctx, res.ExportRecords()); err != nil {
		s.log.Error("order export failed", "order_group_id", res.OrderGroupID, "location", s.sink.Location(), "err", err)
		return res, fmt.Errorf("%w: order group %d: %w", domain.ErrExportFailed, res.OrderGroupID, err)
	}
	res.ExportedTo = s.sink.Location()

	ev := domain.NewOrderExportedEvent(res.OrderGroupID, res.ExportedTo, len(res.Lines))
	if err := s.outbox.Enqueue(ctx, ev); err != nil {
		s.log.Error("enqueue OrderExported failed", "order_group_id", res.OrderGroupID, "err", err)
	}
	return res, nil
}

// mergeCart folds repeated product names into one entry, keeping the order in
// which names first appear.
func mergeCart(cart []domain.CartEntry) []domain.CartEntry {
	idx := make(map[string]int, len(cart))
	out := make([]domain.CartEntry, 0, len(cart))
	for _, e := range cart {
		e.ProductName = strings.TrimSpace(e.ProductName)
		if i, ok := idx[e.ProductName]; ok {
			out[i].Quantity += e.Quantity
			continue
		}
		idx[e.ProductName] = len(out)
		out = append(out, e)
	}
	return out
}
