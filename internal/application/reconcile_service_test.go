package application

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/export"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/lock"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/memory"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/logging"
)

func newReconciler(store *memory.Store, path string, locker domain.Locker, opts ReconcileOptions) *ReconcileService {
	return NewReconcileService(store, export.NewFileSource(path), locker, NewOutboxWriter(store), opts, logging.Discard())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func stockOf(t *testing.T, store *memory.Store, name string) int {
	t.Helper()
	p, err := store.FindByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func TestReconcile_DecrementsMatchedProduct(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"bulbasaur": 10}, "bulbasaur")
	path := tempExportPath(t)
	writeFile(t, path, "id,name,quantity\n1,bulbasaur,3\n")

	report, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{ArchiveProcessed: true}).Reconcile(context.Background())
	require.NoError(t, err)

	assert.True(t, report.SourceFound)
	assert.Equal(t, 1, report.Rows)
	require.Len(t, report.Applied, 1)
	require.NotNil(t, report.Applied[0].Stock)
	assert.Equal(t, 7, *report.Applied[0].Stock)
	assert.Equal(t, 7, stockOf(t, store, "bulbasaur"))

	msgs := store.OutboxMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.EventStockAdjusted, msgs[0].Type)
}

func TestReconcile_UnknownProductIsReportedNotApplied(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"ivysaur": 10}, "ivysaur")
	path := tempExportPath(t)
	writeFile(t, path, "id,name,quantity\n1,bulbasaur,3\n")

	report, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{}).Reconcile(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "bulbasaur", report.Unmatched[0].Name)
	assert.Empty(t, report.Applied)
	assert.Equal(t, 10, stockOf(t, store, "ivysaur"))
}

func TestReconcile_SkipsMalformedRowsAndContinues(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"onix": 50}, "onix")
	path := tempExportPath(t)
	writeFile(t, path, "ID,Nombre,CANTIDAD\n"+
		"1,,2\n"+
		"2,onix,\n"+
		"3,onix,many\n"+
		"4,onix,-1\n"+
		"5,onix,5\n")

	report, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{}).Reconcile(context.Background())
	require.NoError(t, err)

	reasons := []string{}
	for _, s := range report.Skipped {
		reasons = append(reasons, s.Reason)
	}
	assert.Equal(t, []string{
		domain.SkipReasonMissingName,
		domain.SkipReasonMissingQuantity,
		domain.SkipReasonBadQuantity,
		domain.SkipReasonBadQuantity,
	}, reasons)
	assert.Equal(t, 6, report.Applied[0].Line)
	assert.Equal(t, 45, stockOf(t, store, "onix"))
}

func TestReconcile_WithoutArchiveDecrementsTwice(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"bulbasaur": 10}, "bulbasaur")
	path := tempExportPath(t)
	writeFile(t, path, "id,name,quantity\n1,bulbasaur,3\n")
	svc := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{ArchiveProcessed: false})

	for i := 0; i < 2; i++ {
		_, err := svc.Reconcile(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 4, stockOf(t, store, "bulbasaur"))
}

func TestReconcile_ArchiveMakesSecondPassEmpty(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"bulbasaur": 10}, "bulbasaur")
	path := tempExportPath(t)
	writeFile(t, path, "id,name,quantity\n1,bulbasaur,3\n")
	svc := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{ArchiveProcessed: true})

	first, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, first.ArchivedTo)
	_, err = os.Stat(first.ArchivedTo)
	assert.NoError(t, err)

	second, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.False(t, second.SourceFound)
	assert.Zero(t, second.Rows)
	assert.Empty(t, second.Applied)

	assert.Equal(t, 7, stockOf(t, store, "bulbasaur"))
}

func TestReconcile_ClampPolicyFloorsAtZero(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"magikarp": 2}, "magikarp")
	path := tempExportPath(t)
	writeFile(t, path, "name,quantity\nmagikarp,5\n")

	_, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{Policy: domain.StockClamp}).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stockOf(t, store, "magikarp"))
}

func TestReconcile_AllowNegativeGoesBelowZero(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"magikarp": 2}, "magikarp")
	path := tempExportPath(t)
	writeFile(t, path, "name,quantity\nmagikarp,5\n")

	_, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{}).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, -3, stockOf(t, store, "magikarp"))
}

func TestReconcile_MissingSourceIsEmptyReport(t *testing.T) {
	store := memory.NewStore()

	report, err := newReconciler(store, tempExportPath(t), lock.NewLocalLocker(), ReconcileOptions{}).Reconcile(context.Background())
	require.NoError(t, err)

	assert.False(t, report.SourceFound)
	assert.Empty(t, report.Applied)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Unmatched)
	assert.False(t, report.FinishedAtUtc.IsZero())
}

func TestReconcile_UnrecognizableHeaderFailsBatch(t *testing.T) {
	store := memory.NewStore()
	path := tempExportPath(t)
	writeFile(t, path, "foo,bar\n1,2\n")

	_, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{ArchiveProcessed: true}).Reconcile(context.Background())

	assert.ErrorIs(t, err, domain.ErrMalformedSource)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "a rejected source must stay in place")
}

func TestReconcile_ConcurrentPassIsRejected(t *testing.T) {
	store := memory.NewStore()
	path := tempExportPath(t)
	locker := lock.NewLocalLocker()

	release, err := locker.Acquire(context.Background(), "reconcile:"+path, time.Minute)
	require.NoError(t, err)
	defer release(context.Background())

	_, err = newReconciler(store, path, locker, ReconcileOptions{}).Reconcile(context.Background())
	assert.ErrorIs(t, err, domain.ErrReconcileInProgress)
}

func TestReconcile_ReleasesLockAfterPass(t *testing.T) {
	store := memory.NewStore()
	path := tempExportPath(t)
	svc := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{})

	_, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	_, err = svc.Reconcile(context.Background())
	assert.NoError(t, err)
}

func TestReconcile_ReadsWhatCheckoutExported(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"bulbasaur": 10, "pikachu": 4}, "bulbasaur", "pikachu")
	path := tempExportPath(t)
	ctx := context.Background()

	orders := newOrderService(store, export.NewFileSink(path))
	_, err := orders.PlaceOrder(ctx, domain.PlaceOrderCommand{
		Cart:     []domain.CartEntry{{ProductName: "bulbasaur", Quantity: 3}, {ProductName: "pikachu", Quantity: 1}},
		Customer: ash,
	})
	require.NoError(t, err)

	report, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{ArchiveProcessed: true}).Reconcile(ctx)
	require.NoError(t, err)

	assert.Len(t, report.Applied, 2)
	assert.Equal(t, 7, stockOf(t, store, "bulbasaur"))
	assert.Equal(t, 3, stockOf(t, store, "pikachu"))
}

func TestReconcile_MalformedRowIsSkippedAndBatchContinues(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"bulbasaur": 10}, "bulbasaur")
	path := tempExportPath(t)
	writeFile(t, path, "id,name,quantity\n1,bulbasaur,3\n2,bad\"name,1\n")

	report, err := newReconciler(store, path, lock.NewLocalLocker(), ReconcileOptions{ArchiveProcessed: true}).Reconcile(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 3, report.Skipped[0].Line)
	assert.Equal(t, domain.SkipReasonMalformedRow, report.Skipped[0].Reason)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, 7, stockOf(t, store, "bulbasaur"))
	assert.NotEmpty(t, report.ArchivedTo)
}

// cancelAfterDecrement cancels the caller's context once the first
// decrement has gone through.
type cancelAfterDecrement struct {
	*memory.Store
	cancel context.CancelFunc
}

func (c *cancelAfterDecrement) DecrementStock(ctx context.Context, name string, qty int, policy domain.StockPolicy) (int, error) {
	stock, err := c.Store.DecrementStock(ctx, name, qty, policy)
	c.cancel()
	return stock, err
}

func TestReconcile_CancelledMidPassStillAppliesOnce(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"bulbasaur": 10, "onix": 10}, "bulbasaur", "onix")
	path := tempExportPath(t)
	writeFile(t, path, "id,name,quantity\n1,bulbasaur,3\n2,onix,1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	products := &cancelAfterDecrement{Store: store, cancel: cancel}
	svc := NewReconcileService(products, export.NewFileSource(path), lock.NewLocalLocker(), NewOutboxWriter(store),
		ReconcileOptions{ArchiveProcessed: true}, logging.Discard())

	first, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Applied, 2)
	assert.Equal(t, 7, stockOf(t, store, "bulbasaur"))
	assert.Equal(t, 9, stockOf(t, store, "onix"))

	second, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.False(t, second.SourceFound)
	assert.Equal(t, 7, stockOf(t, store, "bulbasaur"))
	assert.Equal(t, 9, stockOf(t, store, "onix"))
}

type failingArchive struct {
	*export.FileSource
}

func (failingArchive) Archive(ctx context.Context, at time.Time) (string, error) {
	return "", errBoom
}

func TestReconcile_FailedArchiveAppliesNothing(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store, map[string]int{"bulbasaur": 10}, "bulbasaur")
	path := tempExportPath(t)
	writeFile(t, path, "id,name,quantity\n1,bulbasaur,3\n")
	svc := NewReconcileService(store, failingArchive{export.NewFileSource(path)}, lock.NewLocalLocker(), NewOutboxWriter(store),
		ReconcileOptions{ArchiveProcessed: true}, logging.Discard())

	for i := 0; i < 2; i++ {
		report, err := svc.Reconcile(context.Background())
		require.ErrorIs(t, err, errBoom)
		require.NotNil(t, report)
		assert.True(t, report.SourceFound)
		assert.Empty(t, report.Applied)
	}

	assert.Equal(t, 10, stockOf(t, store, "bulbasaur"))
	assert.Empty(t, store.OutboxMessages())
}
