package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/baas"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/session"
)

// AuthClient is the slice of the remote auth service the handler relays.
type AuthClient interface {
	Login(ctx context.Context, creds baas.Credentials) (*baas.AuthResult, error)
	Register(ctx context.Context, reg baas.Registration) (*baas.AuthResult, error)
	GetProfile(ctx context.Context) (*baas.Profile, error)
}

// AuthHandler relays auth calls to the remote service and persists the
// returned bearer token and profile so the rest of the client can tell
// whether a user is signed in.
type AuthHandler struct {
	auth    AuthClient
	session *session.Session
	logger  *zap.Logger
}

func NewAuthHandler(auth AuthClient, sess *session.Session, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, session: sess, logger: logger}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds baas.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		if errors.Is(err, baas.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
			return
		}
		h.logger.Warn("login failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "sign-in is unavailable, try again")
		return
	}

	h.persist(r.Context(), result)
	respondJSON(w, http.StatusOK, result.User)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg baas.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if reg.Email == "" || reg.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	result, err := h.auth.Register(r.Context(), reg)
	if err != nil {
		h.logger.Warn("registration failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "registration is unavailable, try again")
		return
	}

	h.persist(r.Context(), result)
	respondJSON(w, http.StatusCreated, result.User)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if getUserIDFromContext(r.Context()) == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to view your profile")
		return
	}

	profile, err := h.auth.GetProfile(r.Context())
	if err != nil {
		if errors.Is(err, baas.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "session expired, sign in again")
			return
		}
		h.logger.Warn("profile fetch failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "profile is unavailable, try again")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Clear(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) persist(ctx context.Context, result *baas.AuthResult) {
	if err := h.session.SaveToken(ctx, result.Token); err != nil {
		h.logger.Warn("failed to persist auth token", zap.Error(err))
	}
	if err := h.session.SaveProfile(ctx, result.User.ID, result.User.Name, result.User.Email); err != nil {
		h.logger.Warn("failed to persist profile", zap.Error(err))
	}
}
