// Package pages renders the application's four views. The protected ones
// sit behind the session gate; until the gate resolves, a visitor sees
// nothing but the redirect.
package pages

import (
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockmate/webapp/internal/middleware"
	"github.com/mockmate/webapp/web"
)

// Handler renders the embedded page templates.
type Handler struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Handler, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	return &Handler{tmpl: tmpl}, nil
}

// RegisterPublicRoutes mounts the sign-in and sign-up pages.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/login", h.render("login.html", nil))
	r.Get("/register", h.render("register.html", nil))
}

// RegisterProtectedRoutes mounts the gated pages.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/", h.renderDashboard)
	r.Get("/interview", h.render("interview.html", nil))
}

func (h *Handler) render(name string, data any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.execute(w, name, data)
	}
}

type dashboardData struct {
	Email string
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{}
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		data.Email = session.User.Email
	}
	h.execute(w, "dashboard.html", data)
}

func (h *Handler) execute(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[pages] render %s failed: %v", name, err)
	}
}
