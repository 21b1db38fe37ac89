// Package checkout drives the two-step checkout flow: shipping capture,
// then payment. All validation is local; the payment provider itself is
// simulated with a fixed delay and deterministic success.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/orders"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/reconcile"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

var (
	// ErrProcessing reports a duplicate submit while a payment is already
	// in flight. Callers treat it as a no-op, not a failure.
	ErrProcessing = errors.New("payment already processing")

	// ErrShippingMissing reports a payment submitted before shipping was
	// captured (deep link or lost draft). The UI returns to the previous step.
	ErrShippingMissing = errors.New("shipping info missing")

	ErrEmptyCart = errors.New("cart is empty, nothing to check out")
)

// providerDelay is the simulated payment provider's fixed latency. The
// simulated provider always approves; declines are not modeled.
const providerDelay = 1200 * time.Millisecond

// draft is the durable form of the first checkout step, so a reload or
// back-navigation between steps does not lose the shipping details.
type draft struct {
	Shipping domain.Shipping      `json:"shipping"`
	Method   domain.PaymentMethod `json:"method"`
}

type Checkout struct {
	mu         sync.Mutex
	state      State
	draft      draft
	processing bool

	cart       *cart.Store
	reconciler *reconcile.Reconciler
	history    *orders.History
	storage    storage.Store
	logger     *zap.Logger

	now   func() time.Time
	delay time.Duration
}

func New(c *cart.Store, r *reconcile.Reconciler, h *orders.History, st storage.Store, logger *zap.Logger) *Checkout {
	return &Checkout{
		state:      StateCollectingShipping,
		cart:       c,
		reconciler: r,
		history:    h,
		storage:    st,
		logger:     logger,
		now:        time.Now,
		delay:      providerDelay,
	}
}

// State returns the current flow state.
func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LoadDraft restores a previously persisted shipping draft. When one
// exists the flow resumes at the payment step.
func (c *Checkout) LoadDraft(ctx context.Context) {
	var d draft
	found, err := storage.ReadJSON(ctx, c.storage, storage.KeyCheckoutDraft, c.logger, &d)
	if err != nil {
		c.logger.Warn("checkout draft read failed", zap.Error(err))
		return
	}
	if !found || !d.Method.Valid() {
		return
	}
	if validateShipping(d.Shipping) != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d
	c.state = StateCollectingPayment
}

// SubmitShipping validates the address fields, persists the draft and
// advances to the payment step. The returned error is a *ValidationError
// when input was the problem.
func (c *Checkout) SubmitShipping(ctx context.Context, shipping domain.Shipping, method domain.PaymentMethod) error {
	if verr := validateShipping(shipping); verr != nil {
		return verr
	}
	if !method.Valid() {
		return validationFailed("choose a payment method")
	}

	c.mu.Lock()
	// Any settled state may start over with fresh shipping details; only an
	// in-flight payment blocks the flow.
	if c.state == StateProcessing {
		c.mu.Unlock()
		return fmt.Errorf("cannot submit shipping while %s", StateProcessing)
	}
	c.draft = draft{Shipping: shipping, Method: method}
	c.state = StateCollectingPayment
	d := c.draft
	c.mu.Unlock()

	if err := storage.WriteJSON(ctx, c.storage, storage.KeyCheckoutDraft, d); err != nil {
		// The in-memory draft still carries the flow; losing the mirror only
		// costs draft recovery after a restart.
		c.logger.Warn("checkout draft write failed", zap.Error(err))
	}
	return nil
}

// PaymentInput is the second-step form. Card is read only when the drafted
// method is card; TransferReference is optional free text for transfers.
type PaymentInput struct {
	Card              CardDetails
	TransferReference string
}

// SubmitPayment validates the payment input, runs the simulated provider
// and finalizes the order. On success the cart and draft are cleared and
// the recorded order is returned. Validation failures return the flow to
// the payment step with a *ValidationError; a duplicate submit while a
// payment is in flight returns ErrProcessing and does nothing.
func (c *Checkout) SubmitPayment(ctx context.Context, userID string, input PaymentInput) (*domain.Order, error) {
	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return nil, ErrProcessing
	}
	if c.state == StateCollectingShipping {
		c.mu.Unlock()
		return nil, ErrShippingMissing
	}
	if !CanTransitionTo(c.state, StateProcessing) {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("cannot submit payment while %s", state)
	}
	d := c.draft

	var payment domain.PaymentRecord
	switch d.Method {
	case domain.PaymentMethodCard:
		if verr := validateCard(input.Card, c.now()); verr != nil {
			// Failed is transient: the flow lands back on the payment step
			// with the cart and draft intact so the user can retry.
			c.state = StateCollectingPayment
			c.mu.Unlock()
			return nil, verr
		}
		payment = domain.PaymentRecord{CardLast4: cardLast4(input.Card.Number)}
	case domain.PaymentMethodTransfer:
		payment = domain.PaymentRecord{TransferReference: input.TransferReference}
	}

	c.processing = true
	c.state = StateProcessing
	c.mu.Unlock()

	order, err := c.process(ctx, userID, d, payment)

	c.mu.Lock()
	c.processing = false
	if err != nil {
		c.state = StateCollectingPayment
	} else {
		c.state = StateSucceeded
	}
	c.mu.Unlock()
	return order, err
}

func (c *Checkout) process(ctx context.Context, userID string, d draft, payment domain.PaymentRecord) (*domain.Order, error) {
	items, total := c.reconciler.DisplayCart(ctx, userID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// Simulated provider: fixed latency, deterministic approval.
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	order := &domain.Order{
		ID:       newOrderID(),
		Date:     c.now(),
		Status:   domain.OrderStatusCompleted,
		Items:    domain.CopyItems(items),
		Total:    total,
		Shipping: d.Shipping,
		Method:   d.Method,
		Payment:  payment,
	}

	if err := c.history.Append(ctx, userID, order); err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}

	c.cart.Clear(ctx)
	if err := c.storage.Delete(ctx, storage.KeyCheckoutDraft); err != nil {
		c.logger.Warn("checkout draft delete failed", zap.Error(err))
	}

	c.logger.Info("order completed",
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// newOrderID builds the human-readable order id: a fixed prefix with a
// random six-digit suffix.
func newOrderID() string {
	return fmt.Sprintf("ORD-%06d", rand.Intn(1000000))
}
