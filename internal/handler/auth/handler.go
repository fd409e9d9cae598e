// Package auth exposes the sign-in, sign-up and sign-out endpoints backed by
// the external auth provider.
package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mockmate/webapp/internal/middleware"
	modelauth "github.com/mockmate/webapp/internal/model/auth"
	authservice "github.com/mockmate/webapp/internal/service/auth"
	"github.com/mockmate/webapp/pkg/utils"
)

// Provider is the slice of the auth provider client the handler uses.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (modelauth.Session, error)
	SignIn(ctx context.Context, email, password string) (modelauth.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SignOutHook runs after a session is removed, with the user it belonged to.
type SignOutHook func(userID string)

// Handler serves the auth endpoints.
type Handler struct {
	provider  Provider
	sessions  *authservice.Store
	jwtSecret string
	onSignOut SignOutHook
	validator *validator.Validate
}

// New creates an auth handler. jwtSecret may be empty, in which case access
// tokens are accepted without local verification. onSignOut may be nil.
func New(provider Provider, sessions *authservice.Store, jwtSecret string, onSignOut SignOutHook) *Handler {
	return &Handler{
		provider:  provider,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		onSignOut: onSignOut,
		validator: validator.New(),
	}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
}

// RegisterSessionRoutes mounts routes that require a live session.
func (h *Handler) RegisterSessionRoutes(r chi.Router) {
	r.Get("/auth/session", h.handleSession)
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, h.provider.SignUp)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, h.provider.SignIn)
}

func (h *Handler) handleCredentials(w http.ResponseWriter, r *http.Request, exchange func(context.Context, string, string) (modelauth.Session, error)) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	session, err := exchange(r.Context(), req.Email, req.Password)
	if err != nil {
		// Provider failures surface directly; no retry orchestration.
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if h.jwtSecret != "" {
		if _, err := authservice.ParseAccessToken(h.jwtSecret, session.AccessToken); err != nil {
			log.Printf("[auth] provider token failed verification: %v", err)
			utils.RespondError(w, http.StatusBadGateway, "auth provider returned an invalid token")
			return
		}
	}

	id := h.sessions.Create(session)
	http.SetCookie(w, sessionCookie(id))
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"user":      session.User,
		"expiresAt": session.ExpiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookie)
	if err == nil && cookie.Value != "" {
		if session, ok := h.sessions.Get(cookie.Value); ok {
			if err := h.provider.SignOut(r.Context(), session.AccessToken); err != nil {
				log.Printf("[auth] provider sign-out failed: %v", err)
			}
			h.sessions.Delete(cookie.Value)
			if h.onSignOut != nil {
				h.onSignOut(session.User.ID)
			}
		}
	}

	http.SetCookie(w, expiredSessionCookie())
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"user":      session.User,
		"expiresAt": session.ExpiresAt,
	})
}

// sessionCookie carries no Expires: the store refreshes tokens in the
// background, so server-side session lifetime must govern, not the initial
// access token's expiry.
func sessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredSessionCookie() *http.Cookie {
	c := sessionCookie("")
	c.MaxAge = -1
	return c
}

// validationMessage flattens validator errors into one user-facing line.
func validationMessage(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request"
	}

	var parts []string
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			parts = append(parts, strings.ToLower(fieldError.Field())+" is required")
		case "email":
			parts = append(parts, "email must be a valid address")
		case "min":
			parts = append(parts, strings.ToLower(fieldError.Field())+" is too short")
		default:
			parts = append(parts, strings.ToLower(fieldError.Field())+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
