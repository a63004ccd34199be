// Package handler serves the admin console tree of the BFF. Every route
// works on the admin store of the visitor's console session.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tausepro/internal/admin/client"
	"tausepro/internal/admin/models"
	"tausepro/internal/admin/store"
	authmodels "tausepro/internal/auth/models"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/httputil"
	"tausepro/pkg/requestcontext"
)

// Store is the admin store as the handler uses it.
type Store interface {
	State() store.State
	Client() *client.Client
	Dashboard(ctx context.Context) (store.State, error)

	FetchTenants(ctx context.Context) error
	CreateTenant(ctx context.Context, req models.CreateTenantRequest) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenantID id.TenantID, patch models.TenantPatch) error
	DeleteTenant(ctx context.Context, tenantID id.TenantID) error
	SuspendTenant(ctx context.Context, tenantID id.TenantID, reason string) error
	ActivateTenant(ctx context.Context, tenantID id.TenantID) error
	ChangeTenantPlan(ctx context.Context, tenantID id.TenantID, plan id.Plan) error
	SetTenantFilters(ctx context.Context, p models.TenantFilterPatch)
	TenantsByPlan() map[id.Plan]int
	TenantsByStatus() map[models.TenantStatus]int

	FetchModules(ctx context.Context) error
	UpdateModule(ctx context.Context, moduleID id.ModuleID, patch models.ModulePatch) error
	ToggleModule(ctx context.Context, moduleID id.ModuleID, enabled bool) error
	UpdateModuleConfig(ctx context.Context, moduleID id.ModuleID, patch models.ModuleConfigPatch) error
	SetModuleFilters(ctx context.Context, p models.CategoryFilterPatch)
	ActiveModules() []models.Module

	FetchAgents(ctx context.Context) error
	CreateAgent(ctx context.Context, req models.CreateAgentRequest) (*models.Agent, error)
	UpdateAgent(ctx context.Context, agentID id.AgentID, patch models.AgentPatch) error
	DeleteAgent(ctx context.Context, agentID id.AgentID) error
	AssignAgent(ctx context.Context, agentID id.AgentID, tenantID id.TenantID) error
	UnassignAgent(ctx context.Context, agentID id.AgentID, tenantID id.TenantID) error
	SetAgentFilters(ctx context.Context, p models.CategoryFilterPatch)
	ActiveAgents() []models.Agent

	FetchSystemConfig(ctx context.Context) error
	UpdateSystemConfig(ctx context.Context, patch models.SystemConfigPatch) error
	FetchSystemMetrics(ctx context.Context) error
}

var _ Store = (*store.Store)(nil)

// StoreFunc resolves the admin store of the request's console session.
type StoreFunc func(ctx context.Context) (Store, error)

type Handler struct {
	stores StoreFunc
	logger *slog.Logger
}

func New(stores StoreFunc, logger *slog.Logger) *Handler {
	return &Handler{stores: stores, logger: logger}
}

// Register mounts the admin routes. The caller is expected to have applied
// the admin route guard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin", h.HandleDashboard)

	r.Get("/admin/tenants", h.HandleListTenants)
	r.Post("/admin/tenants", h.HandleCreateTenant)
	r.Get("/admin/tenants/{id}", h.HandleGetTenant)
	r.Put("/admin/tenants/{id}", h.HandleUpdateTenant)
	r.Delete("/admin/tenants/{id}", h.HandleDeleteTenant)
	r.Post("/admin/tenants/{id}/suspend", h.HandleSuspendTenant)
	r.Post("/admin/tenants/{id}/activate", h.HandleActivateTenant)
	r.Get("/admin/tenants/{id}/metrics", h.HandleTenantMetrics)
	r.Post("/admin/tenants/{id}/plan", h.HandleChangeTenantPlan)

	r.Get("/admin/modules", h.HandleListModules)
	r.Get("/admin/modules/{id}", h.HandleGetModule)
	r.Put("/admin/modules/{id}", h.HandleUpdateModule)
	r.Post("/admin/modules/{id}/toggle", h.HandleToggleModule)
	r.Get("/admin/modules/{id}/metrics", h.HandleModuleMetrics)
	r.Put("/admin/modules/{id}/config", h.HandleUpdateModuleConfig)

	r.Get("/admin/agents", h.HandleListAgents)
	r.Post("/admin/agents", h.HandleCreateAgent)
	r.Get("/admin/agents/{id}", h.HandleGetAgent)
	r.Put("/admin/agents/{id}", h.HandleUpdateAgent)
	r.Delete("/admin/agents/{id}", h.HandleDeleteAgent)
	r.Post("/admin/agents/{id}/assign", h.HandleAssignAgent)
	r.Delete("/admin/agents/{id}/assign/{tenantId}", h.HandleUnassignAgent)
	r.Get("/admin/agents/{id}/metrics", h.HandleAgentMetrics)
	r.Post("/admin/agents/{id}/test", h.HandleTestAgent)

	r.Get("/admin/system/config", h.HandleGetSystemConfig)
	r.Put("/admin/system/config", h.HandleUpdateSystemConfig)
	r.Get("/admin/system/metrics", h.HandleSystemMetrics)
	r.Get("/admin/system/logs", h.HandleLogs)
	r.Post("/admin/system/execute", h.HandleExecute)

	r.Get("/admin/users", h.HandleListUsers)
	r.Post("/admin/users", h.HandleCreateUser)
	r.Put("/admin/users/{id}", h.HandleUpdateUser)
	r.Delete("/admin/users/{id}", h.HandleDeleteUser)
	r.Post("/admin/users/{id}/password", h.HandleChangePassword)

	r.Get("/admin/reports/tenants-by-plan", h.HandleReportTenantsByPlan)
	r.Get("/admin/reports/usage-by-module", h.HandleReportUsageByModule)
	r.Get("/admin/reports/top-agents", h.HandleReportTopAgents)
	r.Get("/admin/reports/geography", h.HandleReportGeography)
}

// DashboardResponse is the landing view of the admin console.
type DashboardResponse struct {
	Metrics         *models.SystemMetrics       `json:"metrics"`
	Tenants         []models.Tenant             `json:"tenants"`
	TenantsByPlan   map[id.Plan]int             `json:"tenantsByPlan"`
	TenantsByStatus map[models.TenantStatus]int `json:"tenantsByStatus"`
	Errors          store.Errors                `json:"errors"`
	CurrentUser     *authmodels.User            `json:"currentUser,omitempty"`
}

// HandleDashboard loads metrics and tenants concurrently. A failure of one
// half is reported in errors while the other half is still rendered.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	st, err := s.Dashboard(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "admin dashboard partially loaded",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if err != nil && st.SystemMetrics == nil && st.Tenants == nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &DashboardResponse{
		Metrics:         st.SystemMetrics,
		Tenants:         st.Tenants,
		TenantsByPlan:   s.TenantsByPlan(),
		TenantsByStatus: s.TenantsByStatus(),
		Errors:          st.Errors,
		CurrentUser:     st.CurrentUser,
	})
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (Store, bool) {
	s, err := h.stores(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return s, true
}

// fail logs a failed operation and writes its error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", requestcontext.RequestID(ctx))
	h.logger.ErrorContext(ctx, msg, attrs...)
	httputil.WriteError(w, err)
}

// fetchFailed reports a failed listing with the message the store recorded.
func (h *Handler) fetchFailed(ctx context.Context, w http.ResponseWriter, err error, recorded string) {
	h.fail(ctx, w, "admin fetch failed", dErrors.Wrap(err, dErrors.CodeUnavailable, recorded))
}

func tenantParam(w http.ResponseWriter, r *http.Request, name string) (id.TenantID, bool) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return "", false
	}
	return tenantID, true
}

func moduleParam(w http.ResponseWriter, r *http.Request) (id.ModuleID, bool) {
	moduleID, err := id.ParseModuleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid module id"))
		return "", false
	}
	return moduleID, true
}

func agentParam(w http.ResponseWriter, r *http.Request) (id.AgentID, bool) {
	agentID, err := id.ParseAgentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid agent id"))
		return "", false
	}
	return agentID, true
}

func userParam(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return "", false
	}
	return userID, true
}

// queryPatch returns a pointer to the query value when the key is present,
// so ?city= clears a filter while an absent key keeps it.
func queryPatch(r *http.Request, key string) *string {
	q := r.URL.Query()
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
