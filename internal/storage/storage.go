package storage

import (
	"context"
	"errors"
)

// Store is the durable string-keyed value store backing the client. It is
// the equivalent of the browser's persistent storage: synchronous semantics,
// string keys, opaque serialized values, durable across restarts.
//
// Consumers define this interface, not the Redis implementation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")

// Each writer owns a distinct key, so writers never conflict with each
// other. Keys are namespaced per user by the callers where a user id exists.
const (
	KeyCart          = "storefront:cart"
	KeyCheckoutDraft = "storefront:checkout-draft"
	KeyOrders        = "storefront:orders"
	KeyAuthToken     = "storefront:auth-token"
	KeyProfile       = "storefront:profile"
)
