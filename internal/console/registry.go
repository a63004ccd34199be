package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	adminstore "tausepro/internal/admin/store"
	"tausepro/internal/apiclient"
	"tausepro/internal/auth"
	"tausepro/internal/auth/metrics"
	"tausepro/internal/paywall"
	"tausepro/internal/persist"
	"tausepro/internal/platform/tracer"
	"tausepro/internal/pyme"
	id "tausepro/pkg/domain"
)

// DefaultIdleTTL is how long an untouched bundle stays in memory. Persisted
// state outlives it and is restored on the next request.
const DefaultIdleTTL = 30 * time.Minute

// Registry caches live bundles by session ID with a sliding idle expiry.
type Registry struct {
	cache   *ttlcache.Cache[id.SessionID, *Bundle]
	group   singleflight.Group
	api     apiclient.Config
	persist persist.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	idleTTL time.Duration
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithIdleTTL overrides DefaultIdleTTL when greater than zero.
func WithIdleTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

// NewRegistry builds an empty registry. A nil persist store keeps state in
// process memory only.
func NewRegistry(api apiclient.Config, ps persist.Store, opts ...Option) *Registry {
	r := &Registry{
		api:     api,
		persist: ps,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		idleTTL: DefaultIdleTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.persist == nil {
		r.persist = persist.NewMemory()
	}
	r.cache = ttlcache.New[id.SessionID, *Bundle](
		ttlcache.WithTTL[id.SessionID, *Bundle](r.idleTTL),
	)
	r.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[id.SessionID, *Bundle]) {
		r.logger.Debug("console session evicted", "session_id", item.Key(), "reason", reason)
		r.metrics.SetLiveSessions(r.cache.Len())
	})
	return r
}

// Start runs the expiry loop until Stop is called. It blocks.
func (r *Registry) Start() {
	r.cache.Start()
}

func (r *Registry) Stop() {
	r.cache.Stop()
}

// Get returns the live bundle for sessionID, building and restoring it from
// the persist store on first use. Concurrent first requests share one build.
func (r *Registry) Get(ctx context.Context, sessionID id.SessionID) (*Bundle, error) {
	if item := r.cache.Get(sessionID); item != nil {
		return item.Value(), nil
	}

	v, err, _ := r.group.Do(sessionID.String(), func() (any, error) {
		if item := r.cache.Get(sessionID); item != nil {
			return item.Value(), nil
		}
		b, err := r.build(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		r.cache.Set(sessionID, b, ttlcache.DefaultTTL)
		r.metrics.SetLiveSessions(r.cache.Len())
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bundle), nil
}

func (r *Registry) build(ctx context.Context, sessionID id.SessionID) (*Bundle, error) {
	opts := []auth.Option{auth.WithLogger(r.logger), auth.WithMetrics(r.metrics), auth.WithTracer(r.tracer)}
	client := auth.NewSession(sessionID, auth.ClientRealm, r.api, r.persist, opts...)
	admin := auth.NewSession(sessionID, auth.AdminRealm, r.api, r.persist, opts...)

	if err := client.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore client session: %w", err)
	}
	if err := admin.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore admin session: %w", err)
	}

	store := adminstore.New(admin.API(), sessionID, r.persist,
		adminstore.WithLogger(r.logger),
		adminstore.WithTracer(r.tracer),
	)
	if err := store.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore admin store: %w", err)
	}

	b := &Bundle{
		ID:      sessionID,
		Client:  client,
		Admin:   admin,
		Paywall: paywall.NewStore(client.API(), paywall.WithStoreLogger(r.logger), paywall.WithStoreTracer(r.tracer)),
		Store:   store,
		Pyme:    pyme.New(client.API()),
		logger:  r.logger,
	}
	client.OnClear(func(context.Context) { b.Paywall.Reset() })
	admin.OnClear(func(ctx context.Context) { b.Store.Reset(ctx) })
	b.revalidate(ctx)
	return b, nil
}

// Remove drops the live bundle; persisted state is untouched.
func (r *Registry) Remove(sessionID id.SessionID) {
	r.cache.Delete(sessionID)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// AuthenticatedStores returns the paywall stores of visitors signed into the
// client console. It does not extend their idle expiry.
func (r *Registry) AuthenticatedStores() []*paywall.Store {
	var out []*paywall.Store
	r.cache.Range(func(item *ttlcache.Item[id.SessionID, *Bundle]) bool {
		b := item.Value()
		if b.Client.State().IsAuthenticated {
			out = append(out, b.Paywall)
		}
		return true
	})
	return out
}

var _ paywall.Source = (*Registry)(nil)
