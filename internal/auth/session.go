// Package auth holds the console's authentication state for one visitor in
// one realm. A Session owns the API client that authenticates with it, so
// token refresh and logout-on-401 stay in one place.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"tausepro/internal/apiclient"
	"tausepro/internal/auth/device"
	"tausepro/internal/auth/metrics"
	"tausepro/internal/auth/models"
	"tausepro/internal/persist"
	"tausepro/internal/platform/tracer"
	"tausepro/internal/sentinel"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/requestcontext"
)

// Session is the auth store for one visitor in one realm. It is safe for
// concurrent use; the lock is never held across a network call.
type Session struct {
	id      id.SessionID
	realm   Realm
	store   persist.Store
	api     *apiclient.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer

	mu            sync.RWMutex
	token         string
	user          *models.User
	tenant        *models.Tenant
	authenticated bool
	loading       bool
	device        string
	onClear       []func(context.Context)
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Session) { s.tracer = t }
}

// NewSession builds an empty session and the API client bound to it. Call
// Restore to load persisted state.
func NewSession(sessionID id.SessionID, realm Realm, api apiclient.Config, store persist.Store, opts ...Option) *Session {
	s := &Session{
		id:     sessionID,
		realm:  realm,
		store:  store,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = persist.NewMemory()
	}
	if api.Logger == nil {
		api.Logger = s.logger
	}
	if api.Tracer == nil {
		api.Tracer = s.tracer
	}

	var refresh apiclient.RefreshFunc
	if realm.CanRefresh() {
		refresh = s.RefreshToken
	}
	s.api = apiclient.New(api, s, refresh)
	return s
}

func (s *Session) ID() id.SessionID { return s.id }

func (s *Session) Realm() Realm { return s.realm }

// API returns the client that authenticates as this session.
func (s *Session) API() *apiclient.Client { return s.api }

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// TenantID is the current tenant sent as X-Tenant-ID. Admin sessions have none.
func (s *Session) TenantID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tenant == nil {
		return ""
	}
	return s.tenant.ID.String()
}

// State returns a copy of the current auth state.
func (s *Session) State() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := models.State{
		IsAuthenticated: s.authenticated,
		IsLoading:       s.loading,
		HasToken:        s.token != "",
		Device:          s.device,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	if s.tenant != nil {
		t := *s.tenant
		st.Tenant = &t
	}
	return st
}

// Restore loads the persisted snapshot and token. A corrupt document is
// logged and discarded; the session starts logged out.
func (s *Session) Restore(ctx context.Context) error {
	var snap models.Snapshot
	found, err := persist.LoadJSON(ctx, s.store, s.id, s.realm.SnapshotKey, &snap)
	if err != nil && !errors.Is(err, sentinel.ErrCorrupt) {
		return err
	}
	if err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt auth snapshot",
			"realm", s.realm.Name,
			"error", err,
		)
		found = false
	}

	var token string
	if _, err := persist.LoadJSON(ctx, s.store, s.id, s.realm.TokenKey, &token); err != nil {
		if !errors.Is(err, sentinel.ErrCorrupt) {
			return err
		}
		token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if found {
		s.user = snap.User
		s.tenant = snap.Tenant
		// Without a token the persisted flag cannot be honoured.
		s.authenticated = snap.IsAuthenticated && token != ""
	}
	return nil
}

// Login authenticates with the realm's credentials endpoint. On failure the
// previous state is kept and only the loading flag is cleared.
func (s *Session) Login(ctx context.Context, email, password string) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAuthLogin, tracer.String(tracer.AttrRealm, s.realm.Name))
	defer func() { span.End(err) }()

	req := models.LoginRequest{Email: email, Password: password}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.IncLogin(s.realm.Name, "invalid")
		return err
	}

	s.setLoading(true)
	var resp models.LoginResponse
	if err := s.api.DoOnce(ctx, http.MethodPost, s.realm.LoginPath, req, &resp); err != nil {
		s.setLoading(false)
		s.metrics.IncLogin(s.realm.Name, "failed")
		s.logger.InfoContext(ctx, "login failed",
			"realm", s.realm.Name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid credentials")
		}
		return err
	}
	if resp.Token == "" {
		s.setLoading(false)
		s.metrics.IncLogin(s.realm.Name, "failed")
		return dErrors.New(dErrors.CodeUnavailable, "login response missing token")
	}

	ua := requestcontext.UserAgent(ctx)
	user := resp.User

	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.tenant = resp.Tenant
	s.authenticated = true
	s.loading = false
	s.device = device.Label(ua)
	s.mu.Unlock()

	s.persistToken(ctx, resp.Token)
	s.persistSnapshot(ctx)

	s.metrics.IncLogin(s.realm.Name, "ok")
	attrs := []any{
		"realm", s.realm.Name,
		"user_id", user.ID,
		"device", device.Label(ua),
		"device_fingerprint", device.Fingerprint(ua),
		"request_id", requestcontext.RequestID(ctx),
	}
	if resp.Tenant != nil {
		attrs = append(attrs, "tenant_id", resp.Tenant.ID)
		span.SetAttributes(tracer.String(tracer.AttrTenantID, resp.Tenant.ID.String()))
	}
	s.logger.InfoContext(ctx, "login succeeded", attrs...)
	return nil
}

// Logout ends the session. Realms with a logout endpoint are told first on a
// best-effort basis; local state is cleared regardless. Idempotent.
func (s *Session) Logout(ctx context.Context) {
	s.logout(ctx, "user")
}

func (s *Session) logout(ctx context.Context, reason string) {
	if s.realm.LogoutPath != "" && s.Token() != "" {
		if err := s.api.DoOnce(ctx, http.MethodPost, s.realm.LogoutPath, nil, nil); err != nil {
			s.logger.DebugContext(ctx, "remote logout failed",
				"realm", s.realm.Name,
				"error", err,
			)
		}
	}
	s.metrics.IncLogout(s.realm.Name, reason)
	s.ClearAuth(ctx)
}

// OnClear registers fn to run after every ClearAuth, including the ones the
// API client triggers on an unrecoverable 401.
func (s *Session) OnClear(fn func(ctx context.Context)) {
	s.mu.Lock()
	s.onClear = append(s.onClear, fn)
	s.mu.Unlock()
}

// ClearAuth drops token, user and tenant locally and persists the cleared
// state. The API client calls it when a session can no longer authenticate.
func (s *Session) ClearAuth(ctx context.Context) {
	s.mu.Lock()
	had := s.token != "" || s.authenticated
	s.token = ""
	s.user = nil
	s.tenant = nil
	s.authenticated = false
	s.loading = false
	s.device = ""
	hooks := s.onClear
	s.mu.Unlock()

	if err := s.store.Delete(ctx, s.id, s.realm.TokenKey); err != nil {
		s.logger.WarnContext(ctx, "failed to delete persisted token", "realm", s.realm.Name, "error", err)
	}
	s.persistSnapshot(ctx)
	for _, fn := range hooks {
		fn(ctx)
	}
	if had {
		s.logger.InfoContext(ctx, "auth cleared",
			"realm", s.realm.Name,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// RefreshUser reloads the current user (and tenant) from the realm's me
// endpoint. Without a token it does nothing. Any failure logs the session out
// and is returned for the caller to log.
func (s *Session) RefreshUser(ctx context.Context) error {
	if s.Token() == "" {
		return nil
	}

	s.setLoading(true)
	user, tenant, err := s.fetchMe(ctx)
	if err != nil {
		s.metrics.IncUserRefresh(s.realm.Name, "failed")
		s.logger.InfoContext(ctx, "profile refresh failed, logging out",
			"realm", s.realm.Name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.logout(ctx, "profile_refresh_failed")
		return err
	}

	s.mu.Lock()
	s.user = user
	s.tenant = tenant
	s.authenticated = true
	s.loading = false
	s.mu.Unlock()

	s.persistSnapshot(ctx)
	s.metrics.IncUserRefresh(s.realm.Name, "ok")
	return nil
}

func (s *Session) fetchMe(ctx context.Context) (*models.User, *models.Tenant, error) {
	if s.realm.BareMe {
		var user models.User
		if err := s.api.Get(ctx, s.realm.MePath, &user); err != nil {
			return nil, nil, err
		}
		return &user, nil, nil
	}

	var resp models.MeResponse
	if err := s.api.Get(ctx, s.realm.MePath, &resp); err != nil {
		return nil, nil, err
	}
	return &resp.User, resp.Tenant, nil
}

// RefreshToken exchanges the current token for a new one. It is a single
// attempt; the API client decides what a failure means for the session.
func (s *Session) RefreshToken(ctx context.Context) error {
	if !s.realm.CanRefresh() {
		return dErrors.New(dErrors.CodeUnauthorized, "realm "+s.realm.Name+" does not refresh tokens")
	}
	if s.Token() == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no token to refresh")
	}

	var resp models.RefreshResponse
	if err := s.api.DoOnce(ctx, http.MethodPost, s.realm.RefreshPath, nil, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "refresh response missing token")
	}
	s.SetToken(ctx, resp.Token)
	return nil
}

// SetToken replaces the token, leaving user and tenant untouched.
func (s *Session) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.persistToken(ctx, token)
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) persistToken(ctx context.Context, token string) {
	var err error
	if token == "" {
		err = s.store.Delete(ctx, s.id, s.realm.TokenKey)
	} else {
		err = persist.SaveJSON(ctx, s.store, s.id, s.realm.TokenKey, token)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist token", "realm", s.realm.Name, "error", err)
	}
}

func (s *Session) persistSnapshot(ctx context.Context) {
	s.mu.RLock()
	snap := models.Snapshot{
		User:            s.user,
		Tenant:          s.tenant,
		IsAuthenticated: s.authenticated,
	}
	s.mu.RUnlock()
	if err := persist.SaveJSON(ctx, s.store, s.id, s.realm.SnapshotKey, snap); err != nil {
		s.logger.WarnContext(ctx, "failed to persist auth snapshot", "realm", s.realm.Name, "error", err)
	}
}

var _ apiclient.Session = (*Session)(nil)
