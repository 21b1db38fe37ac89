package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/baas"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/images"
)

// ProductClient is the slice of the remote catalog the cart handler needs
// to copy display fields onto new line items.
type ProductClient interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type CartHandler struct {
	cart     *cart.Store
	catalog  ProductClient
	resolver *images.Resolver
	logger   *zap.Logger
}

func NewCartHandler(c *cart.Store, catalog ProductClient, resolver *images.Resolver, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:     c,
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartItemDTO is a line item with its image resolved to a renderable URL.
type CartItemDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	ImageURL string  `json:"image_url"`
}

type CartResponseDTO struct {
	Items []CartItemDTO `json:"items"`
	Total float64       `json:"total"`
}

func (h *CartHandler) toDTO(items []domain.CartLineItem) CartResponseDTO {
	out := CartResponseDTO{Items: make([]CartItemDTO, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, CartItemDTO{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			ImageURL: h.resolver.Resolve(item.Image),
		})
	}
	out.Total = domain.CartTotal(items)
	return out
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.toDTO(h.cart.Items()))
}

// AddItem looks the product up in the remote catalog and adds one unit of
// it to the cart. Repeated adds of the same product increment the line.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, baas.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		h.logger.Warn("product lookup failed", zap.String("product_id", req.ProductID), zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "catalog is unavailable, try again")
		return
	}

	h.cart.Add(r.Context(), *product)
	respondJSON(w, http.StatusCreated, h.toDTO(h.cart.Items()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// Zero or negative removes the line entirely.
	h.cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.toDTO(h.cart.Items()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	h.cart.Remove(r.Context(), productID)
	respondJSON(w, http.StatusOK, h.toDTO(h.cart.Items()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	respondJSON(w, http.StatusOK, h.toDTO(h.cart.Items()))
}
