package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type CatalogLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, cmd domain.PlaceOrderCommand) (*domain.OrderResult, error)
}

type InvoiceLister interface {
	ListInvoices(ctx context.Context) ([]domain.InvoiceDocument, error)
}

// StorefrontServer serves the catalog pages, checkout and invoices.
type StorefrontServer struct {
	catalog  CatalogLister
	orders   OrderPlacer
	invoices InvoiceLister
	log      *slog.Logger
}

func NewStorefrontServer(
	catalog CatalogLister,
	orders OrderPlacer,
	invoices InvoiceLister,
	log *slog.Logger,
) *StorefrontServer {
	return &StorefrontServer{
		catalog:  catalog,
		orders:   orders,
		invoices: invoices,
		log:      log,
	}
}

func (s *StorefrontServer) RegisterRoutes(r chi.Router) {
	r.Get("/health", handleHealth)
	r.Get("/", s.handleListProducts)
	r.Get("/api/products", s.handleListProducts)
	r.Post("/orders", s.handlePlaceOrder)
	r.Post("/generate-csv", s.handlePlaceOrder)
	r.Get("/invoices", s.handleListInvoices)
	r.Get("/swagger.json", swaggerHandler(storefrontOpenAPISpec))
}

func (s *StorefrontServer) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *StorefrontServer) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	docs, err := s.invoices.ListInvoices(r.Context())
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *StorefrontServer) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var (
		cmd domain.PlaceOrderCommand
		err error
	)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		cmd, err = decodeCheckoutForm(r)
	} else {
		cmd, err = decodeCheckoutJSON(r)
	}
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}

	res, err := s.orders.PlaceOrder(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrExportFailed) && res != nil {
			s.log.Error("order committed but export failed", "order_group_id", res.OrderGroupID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error:        "order saved but export failed",
				OrderGroupID: res.OrderGroupID,
			})
			return
		}
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type checkoutRequest struct {
	Cart []struct {
		ID       int64           `json:"id"`
		Name     string          `json:"name"`
		Quantity json.RawMessage `json:"quantity"`
	} `json:"cart"`
	Customer domain.Customer `json:"customer"`
}

func decodeCheckoutJSON(r *http.Request) (domain.PlaceOrderCommand, error) {
	var req checkoutRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return domain.PlaceOrderCommand{}, &domain.ValidationError{Fields: map[string]string{"body": "must be a valid JSON object"}}
	}

	fields := map[string]string{}
	cmd := domain.PlaceOrderCommand{Customer: req.Customer}
	for i, e := range req.Cart {
		qty, err := parseQuantity(e.Quantity)
		if err != nil {
			fields[fmt.Sprintf("cart[%d].quantity", i)] = err.Error()
		}
		cmd.Cart = append(cmd.Cart, domain.CartEntry{ProductID: e.ID, ProductName: e.Name, Quantity: qty})
	}
	if len(fields) > 0 {
		return domain.PlaceOrderCommand{}, &domain.ValidationError{Fields: fields}
	}
	return cmd, nil
}

// parseQuantity accepts a JSON number or a numeric string.
func parseQuantity(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("is required")
	}
	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errors.New("must be an integer")
		}
	}
	return atoiQuantity(s)
}

func atoiQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return n, nil
}

// decodeCheckoutForm reads the original checkout page encoding: one
// selectedProducts=<id>,<name> per checked product, its quantity in
// quantity_<id>, and the customer in clienteNombre/clienteEmail/clienteDireccion.
func decodeCheckoutForm(r *http.Request) (domain.PlaceOrderCommand, error) {
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return domain.PlaceOrderCommand{}, &domain.ValidationError{Fields: map[string]string{"body": "must be a valid form"}}
	}

	fields := map[string]string{}
	cmd := domain.PlaceOrderCommand{
		Customer: domain.Customer{
			Name:    r.PostFormValue("clienteNombre"),
			Email:   r.PostFormValue("clienteEmail"),
			Address: r.PostFormValue("clienteDireccion"),
		},
	}

	for i, sel := range r.PostForm["selectedProducts"] {
		idStr, name, ok := strings.Cut(sel, ",")
		if !ok {
			fields[fmt.Sprintf("selectedProducts[%d]", i)] = "must be <id>,<name>"
			continue
		}
		idStr = strings.TrimSpace(idStr)
		id, _ := strconv.ParseInt(idStr, 10, 64)

		qty, err := atoiQuantity(r.PostFormValue("quantity_" + idStr))
		if err != nil {
			fields["quantity_"+idStr] = err.Error()
		}
		cmd.Cart = append(cmd.Cart, domain.CartEntry{ProductID: id, ProductName: strings.TrimSpace(name), Quantity: qty})
	}

	if len(fields) > 0 {
		return domain.PlaceOrderCommand{}, &domain.ValidationError{Fields: fields}
	}
	return cmd, nil
}
