package paywall

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tausepro/internal/platform/tracer"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/requestcontext"
)

const (
	usagePath = "/pymes/usage"
	planPath  = "/pymes/plan"
)

// Usage is the tenant's metered consumption in the current period.
type Usage struct {
	APICalls         int64  `json:"apiCalls"`
	MCPAgents        int64  `json:"mcpAgents"`
	WhatsAppMessages int64  `json:"whatsappMessages"`
	Period           string `json:"period"`
	LastReset        string `json:"lastReset"`
}

// UsageResponse is the body of GET /pymes/usage and POST /pymes/plan.
type UsageResponse struct {
	Plan  id.Plan `json:"plan"`
	Usage *Usage  `json:"usage,omitempty"`
}

type upgradeRequest struct {
	Plan id.Plan `json:"plan"`
}

// API is the subset of the API client the store needs.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Snapshot is the view of a store returned to the console.
type Snapshot struct {
	Plan        id.Plan        `json:"plan"`
	Info        PlanFeatures   `json:"info"`
	Usage       Usage          `json:"usage"`
	Progress    Progress       `json:"progress"`
	Recommended id.Plan        `json:"recommendedPlan"`
	Plans       []PlanFeatures `json:"plans"`
	RefreshedAt *time.Time     `json:"refreshedAt,omitempty"`
}

// Store holds one tenant's plan and usage. It starts on gratis with zero
// usage until the first refresh.
type Store struct {
	api    API
	logger *slog.Logger
	tracer tracer.Tracer
	now    func() time.Time

	mu          sync.RWMutex
	plan        id.Plan
	usage       Usage
	refreshedAt time.Time
}

type StoreOption func(*Store)

func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithStoreTracer(t tracer.Tracer) StoreOption {
	return func(s *Store) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(api API, opts ...StoreOption) *Store {
	s := &Store{
		api:    api,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
		now:    time.Now,
		plan:   id.PlanGratis,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.usage = Usage{Period: "monthly", LastReset: s.now().UTC().Format(time.RFC3339)}
	return s
}

func (s *Store) Plan() id.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

func (s *Store) Usage() Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage
}

// SetPlan adopts the plan reported on the tenant at login.
func (s *Store) SetPlan(plan id.Plan) {
	s.mu.Lock()
	s.plan = plan.Normalize()
	s.mu.Unlock()
}

// Reset drops plan and usage back to the logged-out defaults.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = id.PlanGratis
	s.usage = Usage{Period: "monthly", LastReset: s.now().UTC().Format(time.RFC3339)}
	s.refreshedAt = time.Time{}
}

// PlanInfo returns the catalog entry of the current plan.
func (s *Store) PlanInfo() PlanFeatures {
	return Features(s.Plan())
}

func (s *Store) IsBlocked(feature string) bool {
	s.mu.RLock()
	plan, usage := s.plan, s.usage
	s.mu.RUnlock()
	blocked := IsBlocked(plan, usage, feature)
	if blocked {
		blockedTotal.WithLabelValues(feature, plan.String()).Inc()
	}
	return blocked
}

func (s *Store) FeatureAccess(feature string) bool {
	return !s.IsBlocked(feature)
}

// Access reports access to each feature against one read of the state. It is
// for rendering and does not count as a blocked attempt.
func (s *Store) Access(features ...string) map[string]bool {
	s.mu.RLock()
	plan, usage := s.plan, s.usage
	s.mu.RUnlock()
	out := make(map[string]bool, len(features))
	for _, f := range features {
		out[f] = !IsBlocked(plan, usage, f)
	}
	return out
}

func (s *Store) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProgressFor(s.plan, s.usage)
}

// Snapshot captures the store for rendering.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Plan:        s.plan,
		Info:        Features(s.plan),
		Usage:       s.usage,
		Progress:    ProgressFor(s.plan, s.usage),
		Recommended: RecommendedPlan(s.usage),
		Plans:       Catalog(),
	}
	if !s.refreshedAt.IsZero() {
		t := s.refreshedAt
		snap.RefreshedAt = &t
	}
	return snap
}

// RefreshUsage replaces plan and usage with the API's view.
func (s *Store) RefreshUsage(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanUsageRefresh)
	defer func() { span.End(err) }()

	var resp UsageResponse
	if err := s.api.Get(ctx, usagePath, &resp); err != nil {
		refreshTotal.WithLabelValues("failed").Inc()
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "refresh usage")
	}
	s.apply(resp)
	span.SetAttributes(tracer.String(tracer.AttrPlan, s.Plan().String()))
	refreshTotal.WithLabelValues("ok").Inc()
	return nil
}

// Upgrade asks the API to move the tenant to plan and switches on success.
func (s *Store) Upgrade(ctx context.Context, plan id.Plan) error {
	target, err := id.ParsePlan(plan.String())
	if err != nil {
		return err
	}

	var resp UsageResponse
	if err := s.api.Post(ctx, planPath, upgradeRequest{Plan: target}, &resp); err != nil {
		s.logger.WarnContext(ctx, "plan change failed",
			"plan", target,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return err
	}
	if resp.Plan == "" {
		resp.Plan = target
	}
	s.apply(resp)
	s.logger.InfoContext(ctx, "plan changed",
		"plan", s.Plan(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Store) apply(resp UsageResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resp.Plan != "" {
		s.plan = resp.Plan.Normalize()
	}
	if resp.Usage != nil {
		u := *resp.Usage
		if u.Period == "" {
			u.Period = "monthly"
		}
		s.usage = u
	}
	s.refreshedAt = s.now()
}
