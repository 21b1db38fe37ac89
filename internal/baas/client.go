// Package baas is the REST client for the hosted backend-as-a-service that
// owns the catalog, per-user carts, orders and authentication. This client
// never implements any of that behavior itself; it maps remote payloads
// into domain types and degrades cleanly when the service is unreachable.
package baas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/images"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnauthorized    = errors.New("unauthorized")
)

// TokenSource supplies the bearer token for authenticated requests, empty
// when no user is signed in.
type TokenSource func(ctx context.Context) string

type Client struct {
	apiBase  string
	authBase string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	token    TokenSource
	logger   *zap.Logger
}

// NewClient builds a client against the catalog/order API at apiBase and
// the authentication API at authBase. All requests share a bounded timeout
// so a stalled backend fails fast instead of hanging the caller, and GETs
// go through a circuit breaker so repeated failures trip open instead of
// piling up.
func NewClient(apiBase, authBase string, timeout time.Duration, token TokenSource, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "baas",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 404s and expired sessions are answers, not outages.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrUnauthorized)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("remote service breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		apiBase:  apiBase,
		authBase: authBase,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		token:   token,
		logger:  logger,
	}
}

// productPayload matches the remote catalog record. Image shapes vary per
// record, so they stay raw until normalized.
type productPayload struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Price  float64           `json:"price"`
	Image  json.RawMessage   `json:"image"`
	Images []json.RawMessage `json:"images"`
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: images.NormalizeFirst(p.Image, p.Images),
	}
}

// GetProduct fetches a single catalog record by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/products/%s", c.apiBase, id))
	if err != nil {
		return nil, err
	}

	var payload productPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	if payload.ID == "" {
		payload.ID = id
	}
	product := payload.toDomain()
	return &product, nil
}

// cartItemPayload matches the remote per-user cart rows. Some deployments
// key the product by product_id, others by id; product_id wins.
type cartItemPayload struct {
	ProductID string            `json:"product_id"`
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Price     float64           `json:"price"`
	Quantity  int               `json:"quantity"`
	Image     json.RawMessage   `json:"image"`
	Images    []json.RawMessage `json:"images"`
}

// GetCart fetches the remote per-user cart and maps it into line items.
// Rows without a usable product id or a positive quantity are dropped.
func (c *Client) GetCart(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/carts/%s", c.apiBase, userID))
	if err != nil {
		return nil, err
	}

	var rows []cartItemPayload
	if err := json.Unmarshal(body, &rows); err != nil {
		// Some deployments wrap the rows in an items field.
		var wrapped struct {
			Items []cartItemPayload `json:"items"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode cart for user %s: %w", userID, err)
		}
		rows = wrapped.Items
	}

	items := make([]domain.CartLineItem, 0, len(rows))
	for _, row := range rows {
		id := row.ProductID
		if id == "" {
			id = row.ID
		}
		if id == "" || row.Quantity < 1 {
			continue
		}
		items = append(items, domain.CartLineItem{
			ID:       id,
			Name:     row.Name,
			Price:    row.Price,
			Quantity: row.Quantity,
			Image:    images.NormalizeFirst(row.Image, row.Images),
		})
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.authorize(ctx, req)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", url, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrProductNotFound
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, ErrUnauthorized
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
		}

		return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	})
}

func (c *Client) postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.token == nil {
		return
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
