package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/baas"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/checkout"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/images"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/orders"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/reconcile"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

type remoteMock struct{}

func (remoteMock) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	return nil, baas.ErrProductNotFound
}

func (remoteMock) GetCart(context.Context, string) ([]domain.CartLineItem, error) {
	return nil, nil
}

func newCheckoutHandler(t *testing.T) (*CheckoutHandler, *cart.Store) {
	t.Helper()
	logger := zap.NewNop()
	mem := storage.NewMemoryStore()
	cartStore := cart.NewStore(mem, logger)
	remote := remoteMock{}
	backfiller := reconcile.NewBackfiller(remote, logger)
	reconciler := reconcile.New(cartStore, remote, mem, backfiller, logger)
	history := orders.NewHistory(mem, cartStore, backfiller, logger)
	flow := checkout.New(cartStore, reconciler, history, mem, logger)
	resolver := images.NewResolver("https://api.example.com", "https://api.example.com/files", "/placeholder.png", logger)

	return NewCheckoutHandler(flow, reconciler, resolver, logger), cartStore
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("POST", "/", bytes.NewReader(data)))
	return recorder
}

func validShippingDTO() ShippingRequestDTO {
	return ShippingRequestDTO{
		Shipping: domain.Shipping{
			Name:    "Ana Reyes",
			Phone:   "+56911112222",
			Address: "Av. Principal 123",
			City:    "Santiago",
			Region:  "RM",
		},
		Method: "card",
	}
}

func TestSubmitShipping_Success(t *testing.T) {
	handler, _ := newCheckoutHandler(t)

	recorder := postJSON(t, handler.SubmitShipping, validShippingDTO())

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response map[string]string
	json.NewDecoder(recorder.Body).Decode(&response)
	if response["state"] != checkout.StateCollectingPayment.String() {
		t.Errorf("Expected state %s, got %s", checkout.StateCollectingPayment, response["state"])
	}
}

func TestSubmitShipping_ValidationFailure(t *testing.T) {
	handler, _ := newCheckoutHandler(t)

	dto := validShippingDTO()
	dto.Shipping.Phone = ""
	recorder := postJSON(t, handler.SubmitShipping, dto)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "validation_failed" {
		t.Errorf("Expected error code 'validation_failed', got '%s'", response.Code)
	}
}

func TestSubmitPayment_InvalidCard(t *testing.T) {
	handler, cartStore := newCheckoutHandler(t)
	cartStore.Add(context.Background(), domain.Product{ID: "p1", Name: "Mouse", Price: 1000})
	postJSON(t, handler.SubmitShipping, validShippingDTO())

	recorder := postJSON(t, handler.SubmitPayment, PaymentRequestDTO{
		CardNumber: "123",
		CardExpiry: "12/39",
		CardCVV:    "123",
	})

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Error == "" {
		t.Error("Expected a card-specific error message")
	}
}

func TestSubmitPayment_BeforeShipping(t *testing.T) {
	handler, cartStore := newCheckoutHandler(t)
	cartStore.Add(context.Background(), domain.Product{ID: "p1", Name: "Mouse", Price: 1000})

	recorder := postJSON(t, handler.SubmitPayment, PaymentRequestDTO{
		CardNumber: "4111111111111111",
		CardExpiry: "12/39",
		CardCVV:    "123",
	})

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "shipping_missing" {
		t.Errorf("Expected error code 'shipping_missing', got '%s'", response.Code)
	}
}

func TestGetDisplayCart(t *testing.T) {
	handler, cartStore := newCheckoutHandler(t)
	cartStore.Add(context.Background(), domain.Product{
		ID: "p1", Name: "Mouse", Price: 1000,
		Image: domain.ImageRef{Kind: domain.ImageURL, Value: "https://cdn.example.com/m.png"},
	})

	recorder := httptest.NewRecorder()
	handler.GetDisplayCart(recorder, httptest.NewRequest("GET", "/", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Items) != 1 || response.Total != 1000 {
		t.Errorf("Expected one item totalling 1000, got %+v", response)
	}
}

func TestCheckoutFlow_EndToEnd(t *testing.T) {
	handler, cartStore := newCheckoutHandler(t)
	ctx := context.Background()
	cartStore.Add(ctx, domain.Product{ID: "p1", Name: "Mouse", Price: 1000})
	cartStore.Add(ctx, domain.Product{ID: "p1", Name: "Mouse", Price: 1000})

	if rec := postJSON(t, handler.SubmitShipping, validShippingDTO()); rec.Code != http.StatusOK {
		t.Fatalf("shipping step failed with status %d", rec.Code)
	}

	recorder := postJSON(t, handler.SubmitPayment, PaymentRequestDTO{
		CardNumber: "4111 1111 1111 1111",
		CardExpiry: "12/39",
		CardCVV:    "123",
	})

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Order == nil || response.Order.Total != 2000 {
		t.Errorf("Expected order with total 2000, got %+v", response.Order)
	}
	if response.Message == "" {
		t.Error("Expected a confirmation message")
	}
	if len(cartStore.Items()) != 0 {
		t.Error("Expected the cart to be cleared after checkout")
	}
}
