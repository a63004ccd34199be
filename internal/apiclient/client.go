// Package apiclient is the REST client every console component talks to the
// TausePro API through. It attaches the session's bearer token and tenant,
// refreshes once on 401 and maps failures to domain errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"tausepro/internal/auth/tokens"
	"tausepro/internal/platform/tracer"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/circuit"
	"tausepro/pkg/requestcontext"
)

// DefaultBaseURL is the API root when none is configured.
const DefaultBaseURL = "http://localhost:8090/api/v1"

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Session is the auth state a Client reads credentials from.
type Session interface {
	Token() string
	TenantID() string
	// ClearAuth drops token and identity locally. The client calls it when the
	// session can no longer be authenticated.
	ClearAuth(ctx context.Context)
}

// RefreshFunc obtains and stores a new token for the session. It must use
// DoOnce so a 401 on the refresh endpoint cannot trigger another refresh.
type RefreshFunc func(ctx context.Context) error

// Config is shared by every Client built for the same API.
type Config struct {
	BaseURL string
	HTTP    HTTPDoer
	Timeout time.Duration
	Tracer  tracer.Tracer
	Logger  *slog.Logger
	// Breaker, when set, is shared by every client of the API so a failing
	// upstream is detected across sessions.
	Breaker *circuit.Breaker
	// Now is overridable in tests that exercise pre-flight refresh.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.HTTP == nil {
		c.HTTP = &http.Client{Timeout: c.Timeout}
	}
	if c.Tracer == nil {
		c.Tracer = tracer.NewNoop()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Client performs JSON requests on behalf of one session.
type Client struct {
	cfg     Config
	session Session
	refresh RefreshFunc
	group   singleflight.Group
}

// New builds a client for session. A nil refresh means 401 clears the
// session directly.
func New(cfg Config, session Session, refresh RefreshFunc) *Client {
	return &Client{
		cfg:     cfg.withDefaults(),
		session: session,
		refresh: refresh,
	}
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends the request and decodes a 2xx JSON body into out (when non-nil).
//
// At most one refresh happens per call: either before sending, when the
// token's exp has already passed, or after the first 401. The request is then
// retried once. A failed refresh clears the session.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (err error) {
	ctx, span := c.cfg.Tracer.Start(ctx, tracer.SpanAPIRequest,
		tracer.String(tracer.AttrHTTPMethod, method),
		tracer.String(tracer.AttrHTTPPath, path),
	)
	defer func() { span.End(err) }()

	refreshed := false
	token := c.session.Token()
	if c.refresh != nil && token != "" && tokens.Expired(token, c.cfg.Now()) {
		if err := c.refreshOnce(ctx); err != nil {
			return err
		}
		refreshed = true
	}

	sentWith := c.session.Token()
	status, err := c.send(ctx, method, path, body, out)
	span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, status))
	if status != http.StatusUnauthorized {
		return err
	}

	if c.refresh == nil {
		c.cfg.Logger.InfoContext(ctx, "session rejected by api, clearing auth",
			"path", path,
			"request_id", requestcontext.RequestID(ctx),
		)
		span.AddEvent(tracer.EventLoggedOut)
		c.session.ClearAuth(ctx)
		return err
	}
	if refreshed {
		return err
	}

	// Another request on this session may already have rotated the token.
	if current := c.session.Token(); current == "" || current == sentWith {
		if err := c.refreshOnce(ctx); err != nil {
			return err
		}
	}

	span.SetAttributes(tracer.Bool(tracer.AttrRetried, true))
	status, err = c.send(ctx, method, path, body, out)
	span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, status))
	return err
}

// DoOnce sends a single attempt: no pre-flight refresh, no retry and no
// session clearing. Refresh and logout endpoints use it.
func (c *Client) DoOnce(ctx context.Context, method, path string, body, out any) error {
	_, err := c.send(ctx, method, path, body, out)
	return err
}

// refreshOnce collapses concurrent refreshes on this client into one call.
// The shared call runs detached from any single caller's cancellation.
func (c *Client) refreshOnce(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		rctx, span := c.cfg.Tracer.Start(context.WithoutCancel(ctx), tracer.SpanTokenRefresh)
		rctx, cancel := context.WithTimeout(rctx, c.cfg.Timeout)
		defer cancel()

		err := c.refresh(rctx)
		span.End(err)
		if err != nil {
			refreshTotal.WithLabelValues("failed").Inc()
			c.cfg.Logger.WarnContext(ctx, "token refresh failed, clearing auth",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			c.session.ClearAuth(ctx)
			return nil, err
		}
		refreshTotal.WithLabelValues("ok").Inc()
		return nil, nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "session expired")
	}
	return nil
}

// send performs one HTTP exchange and returns the status (0 on transport
// failure) alongside the mapped error.
func (c *Client) send(ctx context.Context, method, path string, body, out any) (int, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return 0, err
	}
	if b := c.cfg.Breaker; b != nil && !b.Allow() {
		observe(method, "circuit_open", 0)
		return 0, dErrors.New(dErrors.CodeUnavailable, "api temporarily unavailable")
	}

	start := time.Now()
	resp, err := c.cfg.HTTP.Do(req)
	if err != nil {
		observe(method, "error", time.Since(start))
		c.recordOutcome(ctx, true)
		return 0, transportError(ctx, err)
	}
	defer resp.Body.Close()
	observe(method, statusLabel(resp.StatusCode), time.Since(start))
	c.recordOutcome(ctx, resp.StatusCode >= http.StatusInternalServerError)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // message is best-effort
		return resp.StatusCode, statusError(resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, dErrors.Wrap(err, dErrors.CodeUnavailable, "decode api response")
	}
	return resp.StatusCode, nil
}

// recordOutcome feeds the shared breaker. Only transport failures and 5xx
// count against the upstream.
func (c *Client) recordOutcome(ctx context.Context, failed bool) {
	b := c.cfg.Breaker
	if b == nil {
		return
	}
	var change circuit.StateChange
	if failed {
		change = b.RecordFailure()
	} else {
		change = b.RecordSuccess()
	}
	switch {
	case change.Opened:
		circuitOpen.Set(1)
		c.cfg.Logger.WarnContext(ctx, "api circuit opened", "breaker", b.Name())
	case change.Closed:
		circuitOpen.Set(0)
		c.cfg.Logger.InfoContext(ctx, "api circuit closed", "breaker", b.Name())
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	url := c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("build %s %s", method, path))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tenantID := c.session.TenantID(); tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	return req, nil
}
