package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

const ReasonReconciliation = "RECONCILIATION"

type ReconcileOptions struct {
	Policy           domain.StockPolicy
	ArchiveProcessed bool
	LockTTL          time.Duration
}

type ReconcileService struct {
	products domain.ProductRepository
	source   domain.RecordSource
	locker   domain.Locker
	outbox   OutboxWriter
	opts     ReconcileOptions
	log      *slog.Logger
	now      func() time.Time
}

func NewReconcileService(
	products domain.ProductRepository,
	source domain.RecordSource,
	locker domain.Locker,
	outbox OutboxWriter,
	opts ReconcileOptions,
	log *slog.Logger,
) *ReconcileService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	if opts.Policy == "" {
		opts.Policy = domain.StockAllowNegative
	}
	return &ReconcileService{
		products: products,
		source:   source,
		locker:   locker,
		outbox:   outbox,
		opts:     opts,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile applies the external record to stock, one decrement per valid
// row, in file order. A missing record yields an empty report. Row-level
// problems land in the report; only an unreadable record fails the pass.
//
// With ArchiveProcessed the record is moved aside before any row is applied;
// a failed archive applies nothing. Once rows start applying the pass runs
// to the end even if ctx is cancelled.
func (s *ReconcileService) Reconcile(ctx context.Context) (*domain.ReconciliationReport, error) {
	key := "reconcile:" + s.source.Location()
	release, err := s.locker.Acquire(ctx, key, s.opts.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return nil, domain.ErrReconcileInProgress
		}
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Error("release reconcile lock failed", "key", key, "err", err)
		}
	}()

	report := domain.NewReconciliationReport(s.source.Location(), s.now())
	log := s.log.With("run_id", report.RunID, "source", report.Source)

	records, err := s.source.Read(ctx)
	if errors.Is(err, domain.ErrSourceUnavailable) {
		log.Info("no reconciliation source present")
		report.FinishedAtUtc = s.now()
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reconciliation source: %w", err)
	}
	report.SourceFound = true
	report.Rows = len(records)

	if s.opts.ArchiveProcessed {
		dst, err := s.source.Archive(ctx, s.now())
		if err != nil {
			report.FinishedAtUtc = s.now()
			return report, fmt.Errorf("archive reconciliation source: %w", err)
		}
		report.ArchivedTo = dst
	}

	applyCtx := context.WithoutCancel(ctx)
	for _, rec := range records {
		s.applyRow(applyCtx, log, report, rec)
	}
	if ctx.Err() != nil {
		log.Warn("reconciliation outlived its request", "err", ctx.Err())
	}

	report.FinishedAtUtc = s.now()
	log.Info("reconciliation finished",
		"rows", report.Rows,
		"applied", len(report.Applied),
		"skipped", len(report.Skipped),
		"unmatched", len(report.Unmatched),
		"failed", len(report.Failed),
		"archived_to", report.ArchivedTo)
	return report, nil
}

func (s *ReconcileService) applyRow(ctx context.Context, log *slog.Logger, report *domain.ReconciliationReport, rec domain.RawRecord) {
	out := domain.RowOutcome{Line: rec.Line, Name: rec.Name}

	switch {
	case rec.ParseError != "":
		out.Reason = domain.SkipReasonMalformedRow
	case rec.Name == "":
		out.Reason = domain.SkipReasonMissingName
	case rec.Quantity == "":
		out.Reason = domain.SkipReasonMissingQuantity
	default:
		qty, err := strconv.Atoi(rec.Quantity)
		if err != nil || qty <= 0 {
			out.Reason = domain.SkipReasonBadQuantity
		} else {
			out.Quantity = qty
		}
	}
	if out.Reason != "" {
		log.Warn("reconciliation row skipped", "line", rec.Line, "name", rec.Name, "quantity", rec.Quantity, "reason", out.Reason, "parse_error", rec.ParseError)
		report.Skipped = append(report.Skipped, out)
		return
	}

	stock, err := s.products.DecrementStock(ctx, out.Name, out.Quantity, s.opts.Policy)
	switch {
	case domain.IsNotFound(err):
		out.Reason = domain.SkipReasonProductNotFound
		log.Warn("reconciliation row unmatched", "line", rec.Line, "name", out.Name)
		report.Unmatched = append(report.Unmatched, out)
	case err != nil:
		out.Reason = err.Error()
		log.Error("reconciliation row failed", "line", rec.Line, "name", out.Name, "err", err)
		report.Failed = append(report.Failed, out)
	default:
		out.Stock = &stock
		log.Info("stock decremented", "line", rec.Line, "name", out.Name, "quantity", out.Quantity, "stock", stock)
		report.Applied = append(report.Applied, out)
		ev := domain.NewStockAdjustedEvent(out.Name, out.Quantity, stock, ReasonReconciliation)
		if err := s.outbox.Enqueue(ctx, ev); err != nil {
			log.Error("enqueue StockAdjusted failed", "name", out.Name, "err", err)
		}
	}
}
