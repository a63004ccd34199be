package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	adminmodels "tausepro/internal/admin/models"
	"tausepro/internal/apiclient"
	"tausepro/internal/auth/models"
	"tausepro/internal/console"
	"tausepro/internal/guard"
	"tausepro/internal/paywall"
	"tausepro/internal/persist"
	"tausepro/internal/platform/health"
	"tausepro/internal/pyme"
	id "tausepro/pkg/domain"
	"tausepro/pkg/platform/httputil"
)

func reply(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

type RouterSuite struct {
	suite.Suite
	upstream *httptest.Server
	registry *console.Registry
	router   http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	tenant := models.Tenant{ID: "tenant_1", Name: "Panadería La Esquina", Plan: id.PlanGratis}
	user := models.User{ID: "user_1", Email: "ana@panaderia.co", Name: "Ana", Role: models.RoleOwner, TenantID: "tenant_1"}
	admin := models.User{ID: "admin_1", Email: "root@tausepro.co", Name: "Root", Role: models.RoleSuperAdmin}

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/auth/login", reply(http.StatusOK, models.LoginResponse{Token: "tok-1", User: user, Tenant: &tenant}))
	mux.Handle("POST /api/v1/admin/auth/login", reply(http.StatusOK, models.LoginResponse{Token: "admin-tok", User: admin}))
	mux.Handle("POST /api/v1/admin/auth/logout", reply(http.StatusNoContent, nil))
	mux.Handle("GET /api/v1/pymes/usage", reply(http.StatusOK, paywall.UsageResponse{
		Plan:  id.PlanGratis,
		Usage: &paywall.Usage{APICalls: 40, MCPAgents: 3},
	}))
	mux.Handle("GET /api/v1/pymes/dashboard", reply(http.StatusOK, pyme.Dashboard{CurrentPlan: id.PlanGratis}))
	mux.Handle("GET /api/v1/admin/tenants", reply(http.StatusOK, []adminmodels.Tenant{{ID: "tenant_1", Name: "Panadería La Esquina"}}))
	s.upstream = httptest.NewServer(mux)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.registry = console.NewRegistry(apiclient.Config{BaseURL: s.upstream.URL + "/api/v1"}, persist.NewMemory(), console.WithLogger(logger))
	s.router = NewRouter(NewHandler(logger), Config{
		Bundles: s.registry,
		Health:  health.New("test"),
	}, logger)
}

func (s *RouterSuite) TearDownTest() {
	s.upstream.Close()
}

// do sends a request carrying cookie (when set) and returns the recorder.
func (s *RouterSuite) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func (s *RouterSuite) clientLogin() *http.Cookie {
	rec := s.do(http.MethodGet, "/login", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	s.Require().NotNil(cookie)

	rec = s.do(http.MethodPost, "/login", `{"email":"ana@panaderia.co","password":"secret"}`, cookie)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	return cookie
}

func (s *RouterSuite) TestHealthNeedsNoSession() {
	rec := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Nil(sessionCookie(rec))
}

func (s *RouterSuite) TestSessionCookieIssued() {
	rec := s.do(http.MethodGet, "/dashboard", "", nil)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))

	cookie := sessionCookie(rec)
	s.Require().NotNil(cookie)
	s.True(cookie.HttpOnly)
	s.Equal(http.SameSiteLaxMode, cookie.SameSite)
	_, err := id.ParseSessionID(cookie.Value)
	s.NoError(err)
}

func (s *RouterSuite) TestClientFlow() {
	cookie := s.clientLogin()

	s.Run("dashboard", func() {
		rec := s.do(http.MethodGet, "/dashboard", "", cookie)
		s.Require().Equal(http.StatusOK, rec.Code)
		var view DashboardView
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &view))
		s.Equal(id.PlanGratis, view.Paywall.Plan)
		s.Equal(int64(40), view.Paywall.Usage.APICalls)
	})

	s.Run("analytics is gated on gratis", func() {
		rec := s.do(http.MethodGet, "/analytics", "", cookie)
		s.Require().Equal(http.StatusPaymentRequired, rec.Code)
		var body httputil.ErrorResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("https://app.tause.pro/billing/upgrade?reason=analytics", body.UpgradeURL)
	})

	s.Run("agents at limit cannot be created", func() {
		rec := s.do(http.MethodGet, "/agents", "", cookie)
		s.Require().Equal(http.StatusOK, rec.Code)
		var view AgentsView
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &view))
		s.False(view.CanCreate)
		s.Equal(int64(3), view.Agents.Used)
		s.Equal(id.PlanStarter, view.UpgradeTo)
	})

	s.Run("login page sends members home", func() {
		rec := s.do(http.MethodGet, "/login", "", cookie)
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/dashboard", rec.Header().Get("Location"))
	})

	s.Run("root and unknown paths fall back to dashboard", func() {
		for _, path := range []string{"/", "/no-such-page"} {
			rec := s.do(http.MethodGet, path, "", cookie)
			s.Equal(http.StatusFound, rec.Code, path)
			s.Equal("/dashboard", rec.Header().Get("Location"), path)
		}
	})

	s.Run("logout", func() {
		rec := s.do(http.MethodPost, "/logout", "", cookie)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/settings", "", cookie)
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/login", rec.Header().Get("Location"))
	})
}

func (s *RouterSuite) TestMountedAdminRoutesAreKnownToTheGuard() {
	mux, ok := s.router.(chi.Routes)
	s.Require().True(ok)

	var seen int
	err := chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route != "/admin" && !strings.HasPrefix(route, "/admin/") {
			return nil
		}
		seen++
		s.True(guard.AdminTree.Known(route), "%s %s", method, route)
		return nil
	})
	s.Require().NoError(err)
	s.Greater(seen, 30)
}

func (s *RouterSuite) TestBadLoginBody() {
	rec := s.do(http.MethodPost, "/login", `{not json`, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestAdminFlow() {
	rec := s.do(http.MethodPost, "/admin/tenants", `{}`, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("/admin/login", rec.Header().Get("Location"))

	cookie := sessionCookie(rec)
	s.Require().NotNil(cookie)

	rec = s.do(http.MethodPost, "/admin/login", `{"email":"root@tausepro.co","password":"secret"}`, cookie)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/admin/tenants", "", cookie)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), "tenant_1")

	s.Run("unknown admin paths fall back to the admin home", func() {
		for _, path := range []string{"/admin/nonexistent", "/admin/tenants/tenant_1/explode"} {
			rec := s.do(http.MethodGet, path, "", cookie)
			s.Equal(http.StatusFound, rec.Code, path)
			s.Equal("/admin", rec.Header().Get("Location"), path)
		}
	})

	s.Run("admin session does not open the client console", func() {
		rec := s.do(http.MethodGet, "/dashboard", "", cookie)
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/login", rec.Header().Get("Location"))
	})

	s.Run("logout", func() {
		rec := s.do(http.MethodPost, "/admin/logout", "", cookie)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/admin", "", cookie)
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/admin/login", rec.Header().Get("Location"))
	})
}
