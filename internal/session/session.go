// Package session exposes the signed-in state the auth screens persist:
// the bearer token and the cached profile. It only reads; the auth flow
// owns the writes.
package session

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

type Session struct {
	storage storage.Store
	logger  *zap.Logger
}

func New(st storage.Store, logger *zap.Logger) *Session {
	return &Session{storage: st, logger: logger}
}

type storedProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Token returns the stored bearer token, empty when nobody is signed in.
func (s *Session) Token(ctx context.Context) string {
	var token string
	found, err := storage.ReadJSON(ctx, s.storage, storage.KeyAuthToken, s.logger, &token)
	if err != nil || !found {
		return ""
	}
	return token
}

// SaveToken persists the bearer token returned by the auth service.
func (s *Session) SaveToken(ctx context.Context, token string) error {
	return storage.WriteJSON(ctx, s.storage, storage.KeyAuthToken, token)
}

// SaveProfile caches the authenticated profile for offline readout.
func (s *Session) SaveProfile(ctx context.Context, id, name, email string) error {
	return storage.WriteJSON(ctx, s.storage, storage.KeyProfile, storedProfile{
		ID: id, Name: name, Email: email,
	})
}

// Clear forgets the token and cached profile.
func (s *Session) Clear(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.KeyAuthToken); err != nil {
		s.logger.Warn("failed to delete stored token", zap.Error(err))
	}
	if err := s.storage.Delete(ctx, storage.KeyProfile); err != nil {
		s.logger.Warn("failed to delete stored profile", zap.Error(err))
	}
}

// UserID resolves the signed-in user's id, preferring the token's subject
// claim and falling back to the cached profile. The token is parsed
// without signature verification: the remote service is the only party
// that can verify it, this client just needs the identity it names.
func (s *Session) UserID(ctx context.Context) (string, bool) {
	token := s.Token(ctx)
	if token != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				return sub, true
			}
		} else {
			s.logger.Debug("stored token is not a parseable JWT", zap.Error(err))
		}
	}

	var profile storedProfile
	found, err := storage.ReadJSON(ctx, s.storage, storage.KeyProfile, s.logger, &profile)
	if err != nil || !found || profile.ID == "" {
		return "", false
	}
	return profile.ID, true
}
