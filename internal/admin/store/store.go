// Package store keeps the super-admin console state of one operator: the
// fetched tenants, modules and agents, the system rollups, and the listing
// filters. Mutations go to the API first and only then patch local state.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"tausepro/internal/admin/client"
	"tausepro/internal/admin/models"
	authmodels "tausepro/internal/auth/models"
	"tausepro/internal/persist"
	"tausepro/internal/platform/tracer"
	"tausepro/internal/sentinel"
	id "tausepro/pkg/domain"
	"tausepro/pkg/requestcontext"
)

// Resource names, used for loading flags, errors and metrics labels.
const (
	ResourceTenants = "tenants"
	ResourceModules = "modules"
	ResourceAgents  = "agents"
	ResourceConfig  = "config"
	ResourceMetrics = "metrics"
)

// Messages recorded when a fetch fails. The console shows them verbatim.
const (
	ErrLoadTenants = "Error al cargar tenants"
	ErrLoadModules = "Error al cargar módulos"
	ErrLoadAgents  = "Error al cargar agentes"
	ErrLoadConfig  = "Error al cargar configuración"
	ErrLoadMetrics = "Error al cargar métricas"
)

// Flags holds one boolean per resource.
type Flags struct {
	Tenants bool `json:"tenants"`
	Modules bool `json:"modules"`
	Agents  bool `json:"agents"`
	Config  bool `json:"config"`
	Metrics bool `json:"metrics"`
}

// Errors holds the last fetch error per resource; empty means none.
type Errors struct {
	Tenants string `json:"tenants,omitempty"`
	Modules string `json:"modules,omitempty"`
	Agents  string `json:"agents,omitempty"`
	Config  string `json:"config,omitempty"`
	Metrics string `json:"metrics,omitempty"`
}

// State is a copy of the store contents.
type State struct {
	CurrentUser   *authmodels.User      `json:"currentUser"`
	Tenants       []models.Tenant       `json:"tenants"`
	Modules       []models.Module       `json:"modules"`
	Agents        []models.Agent        `json:"agents"`
	SystemConfig  *models.SystemConfig  `json:"systemConfig"`
	SystemMetrics *models.SystemMetrics `json:"systemMetrics"`
	IsLoading     Flags                 `json:"isLoading"`
	Errors        Errors                `json:"errors"`
	Filters       models.Filters        `json:"filters"`
}

// persisted is the subset of State kept under persist.KeyAdminStore.
type persisted struct {
	CurrentUser *authmodels.User `json:"currentUser"`
	Filters     models.Filters   `json:"filters"`
}

type Store struct {
	api       *client.Client
	persist   persist.Store
	sessionID id.SessionID
	logger    *slog.Logger
	tracer    tracer.Tracer

	mu    sync.RWMutex
	state State
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Store) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New builds an empty store. A nil persist store keeps state in memory only.
func New(api client.API, sessionID id.SessionID, ps persist.Store, opts ...Option) *Store {
	s := &Store{
		api:       client.New(api),
		persist:   ps,
		sessionID: sessionID,
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persist == nil {
		s.persist = persist.NewMemory()
	}
	return s
}

// Client exposes the typed admin client for the endpoints the store keeps no
// state for (users, reports, logs and commands).
func (s *Store) Client() *client.Client { return s.api }

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Tenants = slices.Clone(s.state.Tenants)
	st.Modules = slices.Clone(s.state.Modules)
	st.Agents = slices.Clone(s.state.Agents)
	if s.state.CurrentUser != nil {
		u := *s.state.CurrentUser
		st.CurrentUser = &u
	}
	if s.state.SystemConfig != nil {
		c := *s.state.SystemConfig
		st.SystemConfig = &c
	}
	if s.state.SystemMetrics != nil {
		m := *s.state.SystemMetrics
		st.SystemMetrics = &m
	}
	return st
}

func (s *Store) Filters() models.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Filters
}

// Restore loads the persisted filters and current user. A corrupt document
// is discarded.
func (s *Store) Restore(ctx context.Context) error {
	var p persisted
	found, err := persist.LoadJSON(ctx, s.persist, s.sessionID, persist.KeyAdminStore, &p)
	if errors.Is(err, sentinel.ErrCorrupt) {
		s.logger.WarnContext(ctx, "discarding corrupt admin store", "error", err)
		return nil
	}
	if err != nil || !found {
		return err
	}
	s.mu.Lock()
	s.state.CurrentUser = p.CurrentUser
	s.state.Filters = p.Filters
	s.mu.Unlock()
	return nil
}

// SetCurrentUser records the logged-in operator; nil clears it.
func (s *Store) SetCurrentUser(ctx context.Context, user *authmodels.User) {
	s.mu.Lock()
	if user != nil {
		u := *user
		user = &u
	}
	s.state.CurrentUser = user
	s.mu.Unlock()
	s.save(ctx)
}

// Reset drops everything, including the persisted document.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	if err := s.persist.Delete(ctx, s.sessionID, persist.KeyAdminStore); err != nil {
		s.logger.WarnContext(ctx, "failed to delete admin store", "error", err)
	}
}

func (s *Store) SetTenantFilters(ctx context.Context, p models.TenantFilterPatch) {
	s.mu.Lock()
	s.state.Filters.Tenants = s.state.Filters.Tenants.Merge(p)
	s.mu.Unlock()
	s.save(ctx)
}

func (s *Store) SetModuleFilters(ctx context.Context, p models.CategoryFilterPatch) {
	s.mu.Lock()
	s.state.Filters.Modules = s.state.Filters.Modules.Merge(p)
	s.mu.Unlock()
	s.save(ctx)
}

func (s *Store) SetAgentFilters(ctx context.Context, p models.CategoryFilterPatch) {
	s.mu.Lock()
	s.state.Filters.Agents = s.state.Filters.Agents.Merge(p)
	s.mu.Unlock()
	s.save(ctx)
}

func (s *Store) save(ctx context.Context) {
	s.mu.RLock()
	p := persisted{CurrentUser: s.state.CurrentUser, Filters: s.state.Filters}
	s.mu.RUnlock()
	if err := persist.SaveJSON(ctx, s.persist, s.sessionID, persist.KeyAdminStore, p); err != nil {
		s.logger.WarnContext(ctx, "failed to persist admin store", "error", err)
	}
}

// fetch runs load with the loading flag set and the previous error cleared.
// On failure msg is recorded for the resource and the error is returned.
func (s *Store) fetch(ctx context.Context, resource, msg string, load func() error) error {
	s.mu.Lock()
	s.setFlag(resource, true)
	s.setError(resource, "")
	s.mu.Unlock()

	err := load()

	s.mu.Lock()
	s.setFlag(resource, false)
	if err != nil {
		s.setError(resource, msg)
	}
	s.mu.Unlock()

	fetchTotal.WithLabelValues(resource, outcome(err)).Inc()
	if err != nil {
		s.logger.ErrorContext(ctx, "admin fetch failed",
			"resource", resource,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return err
}

// mutate logs and counts the result of an API mutation.
func (s *Store) mutate(ctx context.Context, resource, action string, err error) error {
	mutationsTotal.WithLabelValues(resource, action, outcome(err)).Inc()
	if err != nil {
		s.logger.ErrorContext(ctx, "admin mutation failed",
			"resource", resource,
			"action", action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return err
}

// setFlag and setError expect s.mu to be held.
func (s *Store) setFlag(resource string, v bool) {
	switch resource {
	case ResourceTenants:
		s.state.IsLoading.Tenants = v
	case ResourceModules:
		s.state.IsLoading.Modules = v
	case ResourceAgents:
		s.state.IsLoading.Agents = v
	case ResourceConfig:
		s.state.IsLoading.Config = v
	case ResourceMetrics:
		s.state.IsLoading.Metrics = v
	}
}

func (s *Store) setError(resource, msg string) {
	switch resource {
	case ResourceTenants:
		s.state.Errors.Tenants = msg
	case ResourceModules:
		s.state.Errors.Modules = msg
	case ResourceAgents:
		s.state.Errors.Agents = msg
	case ResourceConfig:
		s.state.Errors.Config = msg
	case ResourceMetrics:
		s.state.Errors.Metrics = msg
	}
}

// Dashboard refreshes system metrics and tenants concurrently. Both fetches
// run to completion; the first error is returned.
func (s *Store) Dashboard(ctx context.Context) (State, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAdminDashboard)
	var g errgroup.Group
	g.Go(func() error { return s.FetchSystemMetrics(ctx) })
	g.Go(func() error { return s.FetchTenants(ctx) })
	err := g.Wait()
	span.End(err)
	return s.State(), err
}
