package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	ramware "github.com/mcaldbick/RAM/internal/middleware"
	"github.com/mcaldbick/RAM/internal/permissions"
	"github.com/mcaldbick/RAM/internal/repository"
	"github.com/mcaldbick/RAM/internal/services/iam"
	"github.com/mcaldbick/RAM/internal/telemetry"
)

// RouterOptions controls the construction of the HTTP router. The zero
// value is not usable: Resolver and the repositories are required; the
// registry defaults to the shipped enforcer configuration.
type RouterOptions struct {
	Resolver      *iam.IdentityResolver
	Relationships repository.RelationshipRepository
	Roles         repository.RoleRepository
	Registry      *permissions.Registry
	Metrics       *telemetry.ServerMetrics
	CORSOptions   *cors.Options
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the development CORS policy for the SPA
// frontend.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-RAM-*"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with the shared middleware chain and the
// RAM routes mounted. The request preparation pipeline runs on every route;
// the authentication gates wrap only the route groups that need them.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	if opts.Metrics != nil {
		r.Use(metricsMiddleware(opts.Metrics))
	}

	registry := opts.Registry
	if registry == nil {
		registry = permissions.DefaultRegistry()
	}

	health := opts.HealthHandler
	if health == nil {
		health = defaultHealthHandler
	}
	r.Get("/health", health)

	relationships := NewRelationshipHandler(opts.Relationships, registry)
	identities := NewIdentityHandler(opts.Roles)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ramware.PrepareRequest(opts.Resolver))

		r.Group(func(r chi.Router) {
			r.Use(ramware.RequireAuthenticated)

			r.Get("/me", identities.Me)
			r.Get("/me/identity", identities.MyIdentity)
			r.Get("/me/roles", identities.MyRoles)

			r.Get("/relationships", relationships.List)
			r.Post("/relationship", relationships.Create)
			r.Get("/relationship/{id}", relationships.View)
			r.Put("/relationship/{id}", relationships.Modify)
			r.Post("/relationship/{id}/accept", relationships.Accept)
			r.Post("/relationship/{id}/reject", relationships.Reject)
			r.Post("/relationship/{id}/notify-delegate", relationships.NotifyDelegate)
			r.Post("/relationship/claim/{code}", relationships.Claim)
		})

		r.Group(func(r chi.Router) {
			r.Use(ramware.RequireAgencyUser)

			r.Get("/agency/user", identities.AgencyUser)
		})
	})

	return r
}

// metricsMiddleware records request count, latency, and 5xx errors per
// method/route/status.
func metricsMiddleware(m *telemetry.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			m.ConnectionOpened(r.Context())
			defer m.ConnectionClosed(r.Context())

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.RecordRequest(r.Context(), r.Method, route, strconv.Itoa(ww.Status()), float64(time.Since(start).Milliseconds()))
		})
	}
}
