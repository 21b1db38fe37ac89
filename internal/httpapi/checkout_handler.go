package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/checkout"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/images"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/reconcile"
)

type CheckoutHandler struct {
	checkout   *checkout.Checkout
	reconciler *reconcile.Reconciler
	resolver   *images.Resolver
	logger     *zap.Logger
}

func NewCheckoutHandler(c *checkout.Checkout, r *reconcile.Reconciler, resolver *images.Resolver, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:   c,
		reconciler: r,
		resolver:   resolver,
		logger:     logger,
	}
}

type ShippingRequestDTO struct {
	Shipping domain.Shipping `json:"shipping"`
	Method   string          `json:"method"`
}

type PaymentRequestDTO struct {
	CardNumber        string `json:"card_number,omitempty"`
	CardExpiry        string `json:"card_expiry,omitempty"`
	CardCVV           string `json:"card_cvv,omitempty"`
	TransferReference string `json:"transfer_reference,omitempty"`
}

type OrderResponseDTO struct {
	Order   *domain.Order `json:"order"`
	Message string        `json:"message"`
}

// GetDisplayCart returns the reconciled cart the checkout screens render:
// live cart, or remote cart, or the durable snapshot, with images filled.
func (h *CheckoutHandler) GetDisplayCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	items, total := h.reconciler.DisplayCart(r.Context(), userID)

	out := CartResponseDTO{Items: make([]CartItemDTO, 0, len(items)), Total: total}
	for _, item := range items {
		out.Items = append(out.Items, CartItemDTO{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			ImageURL: h.resolver.Resolve(item.Image),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"state": h.checkout.State().String()})
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.checkout.SubmitShipping(r.Context(), req.Shipping, domain.PaymentMethod(req.Method))
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusUnprocessableEntity, "validation_failed", verr.Message)
			return
		}
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"state": h.checkout.State().String()})
}

func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	userID := getUserIDFromContext(r.Context())
	order, err := h.checkout.SubmitPayment(r.Context(), userID, checkout.PaymentInput{
		Card: checkout.CardDetails{
			Number: req.CardNumber,
			Expiry: req.CardExpiry,
			CVV:    req.CardCVV,
		},
		TransferReference: req.TransferReference,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrProcessing):
			// Duplicate submit while a payment is in flight: not an error,
			// just nothing to do.
			respondJSON(w, http.StatusAccepted, map[string]string{"state": checkout.StateProcessing.String()})
		case errors.Is(err, checkout.ErrShippingMissing):
			respondError(w, http.StatusConflict, "shipping_missing",
				"shipping info missing, returning to previous step")
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusConflict, "empty_cart", "your cart is empty")
		default:
			var verr *checkout.ValidationError
			if errors.As(err, &verr) {
				respondError(w, http.StatusUnprocessableEntity, "validation_failed", verr.Message)
				return
			}
			h.logger.Error("payment processing failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "payment_failed", "payment could not be completed, try again")
		}
		return
	}

	respondJSON(w, http.StatusCreated, OrderResponseDTO{
		Order:   order,
		Message: "order " + order.ID + " confirmed",
	})
}
