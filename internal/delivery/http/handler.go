package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/service"
)

// Handler exposes the storefront over JSON/HTTP.
type Handler struct {
	catalog  *service.CatalogService
	cart     *service.CartService
	checkout *service.CheckoutService
	account  *service.AccountService
	auth     *Auth
}

// NewHandler creates a Handler.
func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	account *service.AccountService,
	auth *Auth,
) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		account:  account,
		auth:     auth,
	}
}

// RegisterRoutes wires all endpoints onto the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.handleGetProduct)
	mux.HandleFunc("POST /api/products", h.handleCreateProduct)
	mux.HandleFunc("GET /api/products/{slug}/reviews", h.handleListReviews)
	mux.HandleFunc("POST /api/products/{slug}/reviews", h.auth.Require(h.handleAddReview))

	mux.HandleFunc("GET /api/cart", h.auth.Require(h.handleViewCart))
	mux.HandleFunc("POST /api/cart/items", h.auth.Require(h.handleAddItem))
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.auth.Require(h.handleSetQuantity))
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.auth.Require(h.handleRemoveItem))
	mux.HandleFunc("DELETE /api/cart", h.auth.Require(h.handleClearCart))

	mux.HandleFunc("POST /api/checkout", h.auth.Require(h.handleCheckout))
	mux.HandleFunc("POST /api/payments/{id}/success", h.handleMarkSuccess)
	mux.HandleFunc("POST /api/payments/{id}/failed", h.handleMarkFailed)
	mux.HandleFunc("POST /api/payments/{id}/cancelled", h.handleMarkCancelled)

	mux.HandleFunc("GET /api/profile", h.auth.Require(h.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", h.auth.Require(h.handleUpdateProfile))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.ProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product entity.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.catalog.CreateProduct(r.Context(), &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.ProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	reviews, err := h.catalog.Reviews(r.Context(), product.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

type addReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

func (h *Handler) handleAddReview(w http.ResponseWriter, r *http.Request) {
	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	product, err := h.catalog.ProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	customer, err := h.account.Profile(r.Context(), customerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	review, err := h.catalog.AddReview(r.Context(), customer, product.ID, req.Rating, req.Review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, items, err := h.cart.Items(ctx, customerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := h.cart.Total(ctx, customerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order": order,
		"items": items,
		"total": total,
	})
}

type addItemRequest struct {
	ProductID uint   `json:"product_id"`
	PackSize  string `json:"pack_size"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item, err := h.cart.AddItem(r.Context(), customerID(r), req.ProductID, req.PackSize, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item, err := h.cart.SetQuantity(r.Context(), customerID(r), itemID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	if err := h.cart.RemoveItem(r.Context(), customerID(r), itemID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), customerID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	Method entity.PaymentMethod `json:"method"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result, err := h.checkout.StartCheckout(r.Context(), customerID(r), req.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type markSuccessRequest struct {
	ExternalPaymentID string `json:"external_payment_id"`
}

func (h *Handler) handleMarkSuccess(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}
	var req markSuccessRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	payment, err := h.checkout.MarkSuccess(r.Context(), paymentID, req.ExternalPaymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) handleMarkFailed(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}
	payment, err := h.checkout.MarkFailed(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) handleMarkCancelled(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}
	payment, err := h.checkout.MarkCancelled(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	customer, err := h.account.Profile(r.Context(), customerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update service.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	customer, err := h.account.UpdateProfile(r.Context(), customerID(r), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	return uint(id), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, entity.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entity.ErrStateConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("Request failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
