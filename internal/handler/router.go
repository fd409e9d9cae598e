package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authHandler "github.com/mockmate/webapp/internal/handler/auth"
	dashboardHandler "github.com/mockmate/webapp/internal/handler/dashboard"
	interviewHandler "github.com/mockmate/webapp/internal/handler/interview"
	pagesHandler "github.com/mockmate/webapp/internal/handler/pages"
	middlewarePkg "github.com/mockmate/webapp/internal/middleware"
	authService "github.com/mockmate/webapp/internal/service/auth"
	"github.com/mockmate/webapp/web"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *authHandler.Handler
	Dashboard *dashboardHandler.Handler
	Interview *interviewHandler.Handler
	Pages     *pagesHandler.Handler
}

// NewRouter wires HTTP routes to the handlers and gates the protected ones.
func NewRouter(sessions *authService.Store, h Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	r.Handle("/static/*", web.StaticHandler())
	h.Pages.RegisterPublicRoutes(r)

	r.Route("/api", func(api chi.Router) {
		h.Auth.RegisterRoutes(api)

		api.Group(func(gated chi.Router) {
			gated.Use(middlewarePkg.GateAPI(sessions))
			h.Auth.RegisterSessionRoutes(gated)
			h.Dashboard.RegisterRoutes(gated)
			h.Interview.RegisterRoutes(gated)
		})
	})

	r.Group(func(gated chi.Router) {
		gated.Use(middlewarePkg.GatePages(sessions))
		h.Pages.RegisterProtectedRoutes(gated)
	})

	return r
}
