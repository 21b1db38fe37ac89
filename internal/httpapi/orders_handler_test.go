package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/orders"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/reconcile"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

func newOrdersHandler(t *testing.T) (*OrdersHandler, *orders.History, *cart.Store) {
	t.Helper()
	logger := zap.NewNop()
	mem := storage.NewMemoryStore()
	cartStore := cart.NewStore(mem, logger)
	history := orders.NewHistory(mem, cartStore, reconcile.NewBackfiller(remoteMock{}, logger), logger)
	return NewOrdersHandler(history, logger), history, cartStore
}

func seedOrder(t *testing.T, history *orders.History) domain.Order {
	t.Helper()
	order := domain.Order{
		ID:     "ORD-000123",
		Date:   time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
		Status: domain.OrderStatusCompleted,
		Items: []domain.CartLineItem{{
			ID: "p1", Name: "Mouse", Price: 1000, Quantity: 2,
			Image: domain.ImageRef{Kind: domain.ImageURL, Value: "/m.png"},
		}},
		Total: 2000,
	}
	if err := history.Append(context.Background(), "", &order); err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}

func TestOrdersList(t *testing.T) {
	handler, history, _ := newOrdersHandler(t)
	seedOrder(t, history)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var groups []orders.Group
	if err := json.NewDecoder(recorder.Body).Decode(&groups); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(groups) != 1 || groups[0].Date != "March 1, 2025" {
		t.Errorf("Expected one group for March 1, 2025, got %+v", groups)
	}
}

func TestOrdersGet_NotFound(t *testing.T) {
	handler, _, _ := newOrdersHandler(t)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/", nil), "order_id", "ORD-999999")
	handler.Get(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestOrdersBuyAgain(t *testing.T) {
	handler, history, cartStore := newOrdersHandler(t)
	seedOrder(t, history)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("POST", "/", nil), "order_id", "ORD-000123")
	handler.BuyAgain(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if got := cartStore.Quantity("p1"); got != 2 {
		t.Errorf("Expected quantity 2 replayed into the cart, got %d", got)
	}
}
