package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpx "github.com/dropDatabas3/entrada/internal/http"
	"github.com/dropDatabas3/entrada/internal/http/handlers"
)

// NewRouter cablea rutas, middlewares y handlers sobre chi.
func NewRouter(c *Container) http.Handler {
	ah := handlers.NewAuthHandler(c.Backends, c.Sessions, "/")
	ph := handlers.NewProtectedHandler(c.DefaultBackend(), c.Sessions)

	r := chi.NewRouter()
	r.Use(httpx.WithRequestID)
	r.Use(httpx.WithSecurityHeaders)
	r.Use(httpx.WithRecover)
	r.Use(httpx.WithLogging)

	r.Get("/healthz", handlers.Healthz)
	r.Get("/readyz", handlers.Readyz(c.Repo))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/auth/{provider}/login", ah.Start)
	r.Get("/auth/{provider}/callback", ah.Callback)
	r.Get("/auth/logout", ah.Logout)

	r.Get("/", ph.Home)
	r.Get("/v1/me", ph.Me)

	r.Post("/graphql", handlers.GraphQL)
	r.Get("/graphql", handlers.GraphQLInfo)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "ruta inexistente")
	})

	return r
}
