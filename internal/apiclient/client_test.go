package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/circuit"
	"tausepro/pkg/requestcontext"
)

type fakeSession struct {
	mu       sync.Mutex
	token    string
	tenantID string
	cleared  int
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) TenantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenantID
}

func (s *fakeSession) ClearAuth(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.tenantID = ""
	s.cleared++
}

func (s *fakeSession) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *fakeSession) clearedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

type ClientSuite struct {
	suite.Suite
	server   *httptest.Server
	handler  http.HandlerFunc
	session  *fakeSession
	refreshN atomic.Int32
	cfg      Config
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.session = &fakeSession{token: "stale", tenantID: "tenant_colombia_1"}
	s.refreshN.Store(0)
	s.cfg = Config{
		BaseURL: s.server.URL + "/api/v1/",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

// acceptOnly answers 200 {"ok":true} for the given bearer and 401 otherwise.
func (s *ClientSuite) acceptOnly(token string, hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"token expired"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func (s *ClientSuite) refreshTo(token string) RefreshFunc {
	return func(context.Context) error {
		s.refreshN.Add(1)
		s.session.set(token)
		return nil
	}
}

type okBody struct {
	OK bool `json:"ok"`
}

func (s *ClientSuite) TestHeaders() {
	var got http.Header
	var gotPath string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.RequestURI()
		w.WriteHeader(http.StatusNoContent)
	}
	c := New(s.cfg, s.session, nil)

	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	s.Require().NoError(c.Get(ctx, WithQuery("/admin/tenants", map[string]string{"plan": "starter", "city": ""}), nil))

	s.Equal("/api/v1/admin/tenants?plan=starter", gotPath)
	s.Equal("Bearer stale", got.Get("Authorization"))
	s.Equal("tenant_colombia_1", got.Get("X-Tenant-ID"))
	s.Equal("application/json", got.Get("Content-Type"))
	s.Equal("application/json", got.Get("Accept"))
	s.Equal("req-42", got.Get("X-Request-ID"))
}

func (s *ClientSuite) TestHeadersOmittedWithoutSession() {
	var got http.Header
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}
	c := New(s.cfg, &fakeSession{}, nil)

	s.Require().NoError(c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.co"}, nil))
	s.Empty(got.Get("Authorization"))
	s.Empty(got.Get("X-Tenant-ID"))
}

func (s *ClientSuite) TestRefreshesOnceAndRetries() {
	var hits atomic.Int32
	s.handler = s.acceptOnly("fresh", &hits)
	c := New(s.cfg, s.session, s.refreshTo("fresh"))

	var out okBody
	s.Require().NoError(c.Get(context.Background(), "/pymes/dashboard", &out))
	s.True(out.OK)
	s.Equal(int32(1), s.refreshN.Load())
	s.Equal(int32(2), hits.Load())
	s.Zero(s.session.clearedCount())
}

func (s *ClientSuite) TestSecond401IsReturnedWithoutAnotherRefresh() {
	var hits atomic.Int32
	s.handler = s.acceptOnly("never", &hits)
	c := New(s.cfg, s.session, s.refreshTo("fresh"))

	err := c.Get(context.Background(), "/pymes/dashboard", nil)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal("token expired", err.Error())
	s.Equal(int32(1), s.refreshN.Load())
	s.Equal(int32(2), hits.Load())
}

func (s *ClientSuite) TestRefreshFailureClearsSession() {
	var hits atomic.Int32
	s.handler = s.acceptOnly("fresh", &hits)
	refreshErr := dErrors.New(dErrors.CodeUnauthorized, "refresh rejected")
	c := New(s.cfg, s.session, func(context.Context) error {
		s.refreshN.Add(1)
		return refreshErr
	})

	err := c.Get(context.Background(), "/pymes/usage", nil)
	s.Require().Error(err)
	s.ErrorIs(err, refreshErr)
	s.Equal(1, s.session.clearedCount())
	s.Equal(int32(1), hits.Load(), "original request is not retried")
	s.Empty(s.session.Token())
}

func (s *ClientSuite) TestNoRefreshFuncClearsOn401() {
	s.handler = s.acceptOnly("fresh", nil)
	c := New(s.cfg, s.session, nil)

	err := c.Get(context.Background(), "/admin/tenants", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal(401, Status(err))
	s.Equal(1, s.session.clearedCount())
}

func (s *ClientSuite) TestPreflightRefreshOnExpiredToken() {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}).SignedString([]byte("k"))
	s.Require().NoError(err)
	s.session.set(expired)

	var hits atomic.Int32
	s.handler = s.acceptOnly("fresh", &hits)
	s.cfg.Now = func() time.Time { return now }
	c := New(s.cfg, s.session, s.refreshTo("fresh"))

	s.Require().NoError(c.Get(context.Background(), "/auth/me", nil))
	s.Equal(int32(1), s.refreshN.Load())
	s.Equal(int32(1), hits.Load(), "first send already carries the new token")
}

func (s *ClientSuite) TestPreflightRefreshCountsAsTheRefresh() {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}).SignedString([]byte("k"))
	s.Require().NoError(err)
	s.session.set(expired)

	var hits atomic.Int32
	s.handler = s.acceptOnly("never", &hits)
	s.cfg.Now = func() time.Time { return now }
	c := New(s.cfg, s.session, s.refreshTo("fresh"))

	err = c.Get(context.Background(), "/auth/me", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal(int32(1), s.refreshN.Load())
	s.Equal(int32(1), hits.Load())
}

func (s *ClientSuite) TestConcurrent401sShareOneRefresh() {
	s.handler = s.acceptOnly("fresh", nil)
	release := make(chan struct{})
	c := New(s.cfg, s.session, func(context.Context) error {
		s.refreshN.Add(1)
		<-release
		s.session.set("fresh")
		return nil
	})

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.Get(context.Background(), "/pymes/dashboard", nil)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}
	s.Equal(int32(1), s.refreshN.Load())
}

func (s *ClientSuite) TestDoOnceNeverRefreshes() {
	s.handler = s.acceptOnly("fresh", nil)
	c := New(s.cfg, s.session, s.refreshTo("fresh"))

	err := c.DoOnce(context.Background(), http.MethodPost, "/auth/refresh", nil, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Zero(s.refreshN.Load())
	s.Zero(s.session.clearedCount())
}

func (s *ClientSuite) TestStatusMapping() {
	cases := []struct {
		status int
		body   string
		code   dErrors.Code
		msg    string
	}{
		{http.StatusBadRequest, `{"message":"nit inválido"}`, dErrors.CodeBadRequest, "nit inválido"},
		{http.StatusUnprocessableEntity, ``, dErrors.CodeBadRequest, "Unprocessable Entity"},
		{http.StatusPaymentRequired, `{"error":"plan limit reached"}`, dErrors.CodePaymentRequired, "plan limit reached"},
		{http.StatusForbidden, `{"error_description":"not your tenant"}`, dErrors.CodeForbidden, "not your tenant"},
		{http.StatusNotFound, `not json`, dErrors.CodeNotFound, "Not Found"},
		{http.StatusConflict, `{}`, dErrors.CodeConflict, "Conflict"},
		{http.StatusTooManyRequests, `{}`, dErrors.CodeRateLimited, "Too Many Requests"},
		{http.StatusBadGateway, `{}`, dErrors.CodeUnavailable, "Bad Gateway"},
	}
	c := New(s.cfg, s.session, nil)
	for _, tc := range cases {
		s.Run(http.StatusText(tc.status), func() {
			s.handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}
			err := c.Get(context.Background(), "/admin/modules", nil)
			s.Require().Error(err)
			s.Equal(tc.code, dErrors.CodeOf(err))
			s.Equal(tc.msg, err.Error())
			s.Equal(tc.status, Status(err))
		})
	}
}

func (s *ClientSuite) TestTimeout() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}
	c := New(s.cfg, s.session, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, "/admin/system/metrics", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	c := New(Config{
		HTTP: doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}),
	}, &fakeSession{}, nil)

	err := c.Get(context.Background(), "/pymes/usage", nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Equal(t, 0, Status(err))
}

func TestDefaultBaseURL(t *testing.T) {
	c := New(Config{}, &fakeSession{}, nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/admin/agents", WithQuery("/admin/agents", map[string]string{"status": " "}))
	assert.Equal(t, "/admin/agents?category=ventas&status=active",
		WithQuery("/admin/agents", map[string]string{"status": "active", "category": "ventas"}))
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestBodyMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"error":"bad_request","message":"email inválido"}`, "email inválido"},
		{"nested error object", `{"error":{"code":"E42","message":"tenant suspendido"}}`, "tenant suspendido"},
		{"errors array", `{"errors":[{"field":"nit","message":"nit requerido"}]}`, "nit requerido"},
		{"non-string error ignored", `{"error":true}`, ""},
		{"invalid json", `<html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bodyMessage([]byte(tt.body)))
		})
	}
}

func (s *ClientSuite) TestBreakerFailsFast() {
	var hits atomic.Int32
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	s.cfg.Breaker = circuit.New("api", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	c := New(s.cfg, s.session, nil)
	ctx := context.Background()

	s.Error(c.Get(ctx, "/pymes/usage", nil))
	s.Error(c.Get(ctx, "/pymes/usage", nil))
	s.Equal(circuit.StateOpen, s.cfg.Breaker.State())

	err := c.Get(ctx, "/pymes/usage", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(int32(2), hits.Load(), "open circuit does not reach the api")
}

func (s *ClientSuite) TestBreakerIgnoresClientErrors() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}
	s.cfg.Breaker = circuit.New("api", circuit.WithFailureThreshold(1))
	c := New(s.cfg, s.session, nil)

	s.Error(c.Get(context.Background(), "/admin/tenants/none", nil))
	s.Equal(circuit.StateClosed, s.cfg.Breaker.State())
}
