package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tausepro/internal/admin/models"
	authmodels "tausepro/internal/auth/models"
	"tausepro/internal/persist"
	"tausepro/internal/platform/config"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
)

var adminUser = authmodels.User{ID: "admin_1", Email: "root@tausepro.co", Name: "Root", Role: authmodels.RoleSuperAdmin}

// upstream is a fake admin API that records the requests it saw.
type upstream struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
}

func (u *upstream) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	u.mu.Lock()
	defer u.mu.Unlock()
	route := r.Method + " " + r.URL.RequestURI()
	u.requests = append(u.requests, route)
	u.bodies[route] = string(body)
}

func (u *upstream) saw(route string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, r := range u.requests {
		if r == route {
			return true
		}
	}
	return false
}

type AdminctlSuite struct {
	suite.Suite
	api    *upstream
	server *httptest.Server
	store  *persist.Memory
	out    *bytes.Buffer
}

func TestAdminctlSuite(t *testing.T) {
	suite.Run(t, new(AdminctlSuite))
}

func (s *AdminctlSuite) SetupTest() {
	s.api = &upstream{bodies: make(map[string]string)}
	mux := http.NewServeMux()
	json200 := func(body any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.api.record(r)
			w.Header().Set("Content-Type", "application/json")
			if body == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			_ = json.NewEncoder(w).Encode(body)
		}
	}
	mux.Handle("POST /api/v1/admin/auth/login", json200(authmodels.LoginResponse{Token: "admin-tok", User: adminUser}))
	mux.Handle("POST /api/v1/admin/auth/logout", json200(nil))
	mux.Handle("GET /api/v1/admin/auth/me", json200(adminUser))
	mux.Handle("GET /api/v1/admin/tenants", json200([]models.Tenant{
		{ID: "t_1", Name: "Panadería La Esquina", Plan: id.PlanStarter, Status: "active", City: "Medellín", CreatedAt: "2026-10-12T10:00:00Z", Metrics: models.TenantMetrics{APICalls: 12500}},
		{ID: "t_2", Name: "Ferretería El Tornillo", Plan: id.PlanGratis, Status: "trial", City: "Cali"},
	}))
	mux.Handle("POST /api/v1/admin/tenants/t_1/suspend", json200(nil))
	mux.Handle("PUT /api/v1/admin/modules/whatsapp/config", json200(nil))
	mux.Handle("DELETE /api/v1/admin/agents/agent_9", json200(nil))
	mux.HandleFunc("GET /api/v1/admin/system/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.api.record(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"metrics offline"}`))
	})
	s.server = httptest.NewServer(mux)
	s.store = persist.NewMemory()
	s.out = &bytes.Buffer{}
}

func (s *AdminctlSuite) TearDownTest() {
	s.server.Close()
}

func (s *AdminctlSuite) app(format format) *app {
	cfg := config.CLI{APIBaseURL: s.server.URL + "/api/v1", Timeout: 5 * time.Second}
	a := newApp(cfg, s.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.in = strings.NewReader("")
	a.out = s.out
	a.format = format
	a.now = func() time.Time { return time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC) }
	return a
}

func (s *AdminctlSuite) exec(args ...string) error {
	s.out.Reset()
	return s.app(formatTable).run(context.Background(), args[0], args[1:])
}

func (s *AdminctlSuite) login() {
	s.Require().NoError(s.exec("login", "-email", "root@tausepro.co", "-password", "secret"))
}

func (s *AdminctlSuite) TestRequiresLogin() {
	err := s.exec("tenants")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AdminctlSuite) TestUnknownCommand() {
	s.ErrorContains(s.exec("frobnicate"), "unknown command")
}

func (s *AdminctlSuite) TestLoginPersistsAcrossRuns() {
	s.login()
	s.Contains(s.out.String(), "root@tausepro.co")

	s.Require().NoError(s.exec("whoami"))
	s.Contains(s.out.String(), "super_admin")

	s.Require().NoError(s.exec("logout"))
	s.ErrorContains(s.exec("whoami"), "not logged in")
}

func (s *AdminctlSuite) TestTenantsTable() {
	s.login()
	s.Require().NoError(s.exec("tenants"))

	out := s.out.String()
	s.Contains(out, "Panadería La Esquina")
	s.Contains(out, "12,500")
	s.Contains(out, "2 days ago")
	s.Contains(out, "gratis=1  starter=1")
}

func (s *AdminctlSuite) TestTenantFiltersPersist() {
	s.login()
	s.Require().NoError(s.exec("tenants", "-plan", "growth", "-city", "Cali"))
	s.True(s.api.saw("GET /api/v1/admin/tenants?city=Cali&plan=growth"))

	// Filters carry over; clearing one with an empty value drops it.
	s.Require().NoError(s.exec("tenants", "-city="))
	s.True(s.api.saw("GET /api/v1/admin/tenants?plan=growth"))
}

func (s *AdminctlSuite) TestSuspend() {
	s.login()
	s.Require().NoError(s.exec("suspend", "t_1", "-reason", "falta de pago"))
	s.Contains(s.out.String(), "tenant t_1 suspended")
	s.JSONEq(`{"reason":"falta de pago"}`, s.api.bodies["POST /api/v1/admin/tenants/t_1/suspend"])

	s.Error(s.exec("suspend"))
}

func (s *AdminctlSuite) TestModuleConfigFromYAML() {
	s.login()
	path := filepath.Join(s.T().TempDir(), "patch.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("isEnabled: true\nversion: 2.1.0\nsettings:\n  provider: twilio\n"), 0o600))

	s.Require().NoError(s.exec("module-config", "whatsapp", "-f", path))
	s.JSONEq(`{"isEnabled":true,"version":"2.1.0","settings":{"provider":"twilio"}}`,
		s.api.bodies["PUT /api/v1/admin/modules/whatsapp/config"])
}

func (s *AdminctlSuite) TestDeleteAgent() {
	s.login()
	s.Require().NoError(s.exec("delete-agent", "agent_9"))
	s.True(s.api.saw("DELETE /api/v1/admin/agents/agent_9"))
}

func (s *AdminctlSuite) TestMetricsFailureCarriesStoreMessage() {
	s.login()
	err := s.exec("metrics")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Contains(err.Error(), "Error al cargar métricas")
}

func (s *AdminctlSuite) TestJSONOutput() {
	s.login()
	s.out.Reset()
	s.Require().NoError(s.app(formatJSON).run(context.Background(), "tenants", nil))

	var tenants []models.Tenant
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &tenants))
	s.Len(tenants, 2)
}

func (s *AdminctlSuite) TestYAMLOutputUsesAPIFieldNames() {
	s.login()
	s.out.Reset()
	s.Require().NoError(s.app(formatYAML).run(context.Background(), "tenants", nil))
	out := s.out.String()
	s.Contains(out, "createdAt:")
	s.Contains(out, "2026-10-12T10:00:00Z")
	s.NotContains(out, "CreatedAt")
}

func TestSessionIDForIsStable(t *testing.T) {
	a := sessionIDFor("http://localhost:8090/api/v1")
	b := sessionIDFor("http://localhost:8090/api/v1/")
	c := sessionIDFor("https://api.tause.pro/api/v1")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, formatYAML, f)

	_, err = parseFormat("xml")
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1,234,567", count(1234567))
	assert.Equal(t, "$2.500.000 COP", cop(2500000))
	assert.Equal(t, "99.95%", percent(99.95))
}

func TestRunUsageErrors(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, strings.NewReader(""), io.Discard, &stderr))
	assert.Contains(t, stderr.String(), "usage: adminctl")

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"-o", "xml", "tenants"}, strings.NewReader(""), io.Discard, &stderr))
	assert.Contains(t, stderr.String(), "unknown output format")
}
