package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "tausepro/internal/admin/handler"
	"tausepro/internal/guard"
	"tausepro/internal/platform/health"
	"tausepro/pkg/platform/middleware/request"
)

// Handler serves the console's own routes. The admin API endpoints are
// served by the admin handler mounted next to them.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Config collects what the router needs besides the handlers.
type Config struct {
	Bundles        Bundles
	Health         *health.Handler
	Metrics        *request.Metrics
	Cookie         CookieConfig
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies []netip.Prefix
}

// NewRouter wires the console routes and middleware.
func NewRouter(h *Handler, cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata(cfg.TrustedProxies))
	r.Use(request.Logger(logger))
	if cfg.Metrics != nil {
		r.Use(request.LatencyMiddleware(cfg.Metrics, routePattern))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	}

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	session := Session(cfg.Bundles, cfg.Cookie, logger)
	clientGuard := guard.Middleware(guard.ClientTree, clientState, logger)
	adminGuard := guard.Middleware(guard.AdminTree, adminState, logger)
	admin := adminhandler.New(adminStores, logger)

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(session)

		// Logout is idempotent and answered whatever the auth state.
		r.Post("/logout", h.handleLogout)
		r.Post("/admin/logout", h.handleAdminLogout)

		r.Group(func(r chi.Router) {
			r.Use(clientGuard)
			r.Use(guard.FeatureGate(featureBlocked, logger))

			r.Get("/", notFound)
			r.Get("/login", h.handleLoginView)
			r.Post("/login", h.handleLogin)
			r.Get("/dashboard", h.handleDashboard)
			r.Get("/analytics", h.handleAnalytics)
			r.Get("/agents", h.handleAgents)
			r.Get("/settings", h.handleSettings)
			r.Get("/paywall", h.handlePaywall)
			r.Post("/paywall/upgrade", h.handleUpgrade)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminGuard)

			r.Get("/admin/login", h.handleAdminLoginView)
			r.Post("/admin/login", h.handleAdminLogin)
			admin.Register(r)
		})
	})

	// Unknown paths still go through the guards so visitors land on a
	// login or home page instead of a bare 404.
	fallback := session(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tree := clientGuard
		if strings.HasPrefix(req.URL.Path, "/admin") {
			tree = adminGuard
		}
		tree(http.HandlerFunc(notFound)).ServeHTTP(w, req)
	}))
	r.NotFound(fallback.ServeHTTP)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not_found"}`))
}

// routePattern labels latency by chi route pattern so path parameters do not
// explode metric cardinality.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
