package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/orders"
)

type OrdersHandler struct {
	history *orders.History
	logger  *zap.Logger
}

func NewOrdersHandler(h *orders.History, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{history: h, logger: logger}
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.history.List(r.Context(), userID))
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	order := h.history.Get(r.Context(), userID, chi.URLParam(r, "order_id"))
	if order == nil {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// BuyAgain replays a historical order's items into the live cart, adding
// the order's quantities on top of whatever the cart already holds.
func (h *OrdersHandler) BuyAgain(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	order := h.history.Get(r.Context(), userID, chi.URLParam(r, "order_id"))
	if order == nil {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	h.history.BuyAgain(r.Context(), order)
	respondJSON(w, http.StatusOK, map[string]string{"status": "added"})
}
