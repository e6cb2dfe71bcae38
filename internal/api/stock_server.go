package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type CatalogRefresher interface {
	List(ctx context.Context) ([]domain.Product, error)
	Refresh(ctx context.Context) ([]domain.Product, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context) (*domain.ReconciliationReport, error)
}

// StockServer exposes catalog refresh and stock reconciliation.
type StockServer struct {
	catalog    CatalogRefresher
	reconciler Reconciler
	log        *slog.Logger
}

func NewStockServer(catalog CatalogRefresher, reconciler Reconciler, log *slog.Logger) *StockServer {
	return &StockServer{catalog: catalog, reconciler: reconciler, log: log}
}

type refreshResponse struct {
	Count    int              `json:"count"`
	Products []domain.Product `json:"products"`
}

type reconcileErrorResponse struct {
	Error  string                       `json:"error"`
	Report *domain.ReconciliationReport `json:"report"`
}

func (s *StockServer) RegisterRoutes(r chi.Router) {
	r.Get("/health", handleHealth)
	r.Get("/", s.handleListProducts)
	r.Get("/swagger.json", swaggerHandler(stockOpenAPISpec))

	for _, path := range []string{"/fetch-and-save", "/refresh"} {
		r.Get(path, s.handleRefresh)
		r.Post(path, s.handleRefresh)
	}
	for _, path := range []string{"/update-stock", "/reconcile"} {
		r.Get(path, s.handleReconcile)
		r.Post(path, s.handleReconcile)
	}
}

func (s *StockServer) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *StockServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Count: len(products), Products: products})
}

func (s *StockServer) handleReconcile(w http.ResponseWriter, r *http.Request) {
	report, err := s.reconciler.Reconcile(r.Context())
	if err != nil && report != nil {
		s.log.Error("reconciliation failed", "run_id", report.RunID, "err", err)
		writeJSON(w, http.StatusInternalServerError, reconcileErrorResponse{Error: err.Error(), Report: report})
		return
	}
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
