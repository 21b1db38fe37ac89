package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SchemaVersion is bumped whenever the shape of any persisted payload
// changes. Values written under an older version are discarded on read
// rather than half-parsed.
const SchemaVersion = 1

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// WriteJSON wraps v in a versioned envelope and stores it under key.
func WriteJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload failed: %w", key, err)
	}
	env, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s envelope failed: %w", key, err)
	}
	return store.Set(ctx, key, env)
}

// ReadJSON loads key into v. Missing keys, corrupted payloads and version
// mismatches all report found=false; corruption is logged, never returned,
// so callers can treat bad durable data as absent.
func ReadJSON(ctx context.Context, store Store, key string, logger *zap.Logger, v any) (found bool, err error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Warn("discarding corrupted stored value", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	if env.Version != SchemaVersion {
		logger.Warn("discarding stored value with mismatched schema version",
			zap.String("key", key), zap.Int("version", env.Version))
		return false, nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		logger.Warn("discarding stored value that does not match schema",
			zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// UserKey namespaces a storage key per user so two signed-in users on the
// same device do not read each other's state. Anonymous sessions use the
// bare key.
func UserKey(key, userID string) string {
	if userID == "" {
		return key
	}
	return key + ":" + userID
}
