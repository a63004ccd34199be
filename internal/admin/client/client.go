// Package client is the typed wrapper over the API's /admin endpoints. It
// only shapes paths and bodies; auth and error mapping live in apiclient.
package client

import (
	"context"
	"strconv"

	"tausepro/internal/admin/models"
	"tausepro/internal/apiclient"
	authmodels "tausepro/internal/auth/models"
	id "tausepro/pkg/domain"
)

// API is the subset of *apiclient.Client the admin client needs.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// ReportPeriod selects the window of the usage-by-module report.
type ReportPeriod string

const (
	PeriodDay   ReportPeriod = "day"
	PeriodWeek  ReportPeriod = "week"
	PeriodMonth ReportPeriod = "month"
)

// Valid reports whether p is a known period. Empty is valid and means month.
func (p ReportPeriod) Valid() bool {
	switch p {
	case "", PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// DefaultTopAgents is the row count of the top-agents report when none is given.
const DefaultTopAgents = 10

type Client struct {
	api API
}

func New(api API) *Client {
	return &Client{api: api}
}

func tenantPath(tenantID id.TenantID, suffix string) string {
	return "/admin/tenants/" + apiclient.PathEscape(tenantID.String()) + suffix
}

func modulePath(moduleID id.ModuleID, suffix string) string {
	return "/admin/modules/" + apiclient.PathEscape(moduleID.String()) + suffix
}

func agentPath(agentID id.AgentID, suffix string) string {
	return "/admin/agents/" + apiclient.PathEscape(agentID.String()) + suffix
}

func userPath(userID id.UserID, suffix string) string {
	return "/admin/users/" + apiclient.PathEscape(userID.String()) + suffix
}

// Tenants

func (c *Client) ListTenants(ctx context.Context, f models.TenantFilters) ([]models.Tenant, error) {
	var out []models.Tenant
	if err := c.api.Get(ctx, apiclient.WithQuery("/admin/tenants", f.Query()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTenant(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	var out models.Tenant
	if err := c.api.Get(ctx, tenantPath(tenantID, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTenant(ctx context.Context, req models.CreateTenantRequest) (*models.Tenant, error) {
	var out models.Tenant
	if err := c.api.Post(ctx, "/admin/tenants", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTenant(ctx context.Context, tenantID id.TenantID, patch models.TenantPatch) error {
	return c.api.Put(ctx, tenantPath(tenantID, ""), patch, nil)
}

func (c *Client) DeleteTenant(ctx context.Context, tenantID id.TenantID) error {
	return c.api.Delete(ctx, tenantPath(tenantID, ""), nil)
}

func (c *Client) SuspendTenant(ctx context.Context, tenantID id.TenantID, reason string) error {
	return c.api.Post(ctx, tenantPath(tenantID, "/suspend"), models.SuspendRequest{Reason: reason}, nil)
}

func (c *Client) ActivateTenant(ctx context.Context, tenantID id.TenantID) error {
	return c.api.Post(ctx, tenantPath(tenantID, "/activate"), nil, nil)
}

func (c *Client) TenantMetrics(ctx context.Context, tenantID id.TenantID) (*models.TenantMetrics, error) {
	var out models.TenantMetrics
	if err := c.api.Get(ctx, tenantPath(tenantID, "/metrics"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangeTenantPlan(ctx context.Context, tenantID id.TenantID, plan id.Plan) error {
	return c.api.Post(ctx, tenantPath(tenantID, "/plan"), models.ChangePlanRequest{Plan: plan}, nil)
}

// Modules

func (c *Client) ListModules(ctx context.Context, f models.CategoryFilters) ([]models.Module, error) {
	var out []models.Module
	if err := c.api.Get(ctx, apiclient.WithQuery("/admin/modules", f.Query()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetModule(ctx context.Context, moduleID id.ModuleID) (*models.Module, error) {
	var out models.Module
	if err := c.api.Get(ctx, modulePath(moduleID, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateModule(ctx context.Context, moduleID id.ModuleID, patch models.ModulePatch) error {
	return c.api.Put(ctx, modulePath(moduleID, ""), patch, nil)
}

func (c *Client) ToggleModule(ctx context.Context, moduleID id.ModuleID, enabled bool) error {
	return c.api.Post(ctx, modulePath(moduleID, "/toggle"), models.ToggleModuleRequest{Enabled: enabled}, nil)
}

func (c *Client) ModuleMetrics(ctx context.Context, moduleID id.ModuleID) (*models.ModuleUsage, error) {
	var out models.ModuleUsage
	if err := c.api.Get(ctx, modulePath(moduleID, "/metrics"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateModuleConfig(ctx context.Context, moduleID id.ModuleID, patch models.ModuleConfigPatch) error {
	return c.api.Put(ctx, modulePath(moduleID, "/config"), patch, nil)
}

// Agents

func (c *Client) ListAgents(ctx context.Context, f models.CategoryFilters) ([]models.Agent, error) {
	var out []models.Agent
	if err := c.api.Get(ctx, apiclient.WithQuery("/admin/agents", f.Query()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAgent(ctx context.Context, agentID id.AgentID) (*models.Agent, error) {
	var out models.Agent
	if err := c.api.Get(ctx, agentPath(agentID, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAgent(ctx context.Context, req models.CreateAgentRequest) (*models.Agent, error) {
	var out models.Agent
	if err := c.api.Post(ctx, "/admin/agents", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAgent(ctx context.Context, agentID id.AgentID, patch models.AgentPatch) error {
	return c.api.Put(ctx, agentPath(agentID, ""), patch, nil)
}

func (c *Client) DeleteAgent(ctx context.Context, agentID id.AgentID) error {
	return c.api.Delete(ctx, agentPath(agentID, ""), nil)
}

func (c *Client) AssignAgent(ctx context.Context, agentID id.AgentID, tenantID id.TenantID) error {
	return c.api.Post(ctx, agentPath(agentID, "/assign"), models.AssignAgentRequest{TenantID: tenantID}, nil)
}

func (c *Client) UnassignAgent(ctx context.Context, agentID id.AgentID, tenantID id.TenantID) error {
	return c.api.Delete(ctx, agentPath(agentID, "/assign/"+apiclient.PathEscape(tenantID.String())), nil)
}

func (c *Client) AgentMetrics(ctx context.Context, agentID id.AgentID) (*models.AgentPerformance, error) {
	var out models.AgentPerformance
	if err := c.api.Get(ctx, agentPath(agentID, "/metrics"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TestAgent(ctx context.Context, agentID id.AgentID, message string) (*models.AgentTestResult, error) {
	var out models.AgentTestResult
	if err := c.api.Post(ctx, agentPath(agentID, "/test"), models.AgentTestRequest{Message: message}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// System

func (c *Client) SystemConfig(ctx context.Context) (*models.SystemConfig, error) {
	var out models.SystemConfig
	if err := c.api.Get(ctx, "/admin/system/config", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSystemConfig(ctx context.Context, patch models.SystemConfigPatch) error {
	return c.api.Put(ctx, "/admin/system/config", patch, nil)
}

func (c *Client) SystemMetrics(ctx context.Context) (*models.SystemMetrics, error) {
	var out models.SystemMetrics
	if err := c.api.Get(ctx, "/admin/system/metrics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logs(ctx context.Context, f models.LogFilters) ([]models.LogEntry, error) {
	var out []models.LogEntry
	if err := c.api.Get(ctx, apiclient.WithQuery("/admin/system/logs", f.Query()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Execute(ctx context.Context, req models.ExecuteRequest) (*models.CommandResult, error) {
	var out models.CommandResult
	if err := c.api.Post(ctx, "/admin/system/execute", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Admin users

func (c *Client) ListUsers(ctx context.Context) ([]authmodels.User, error) {
	var out []authmodels.User
	if err := c.api.Get(ctx, "/admin/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, req models.CreateAdminUserRequest) (*authmodels.User, error) {
	var out authmodels.User
	if err := c.api.Post(ctx, "/admin/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID id.UserID, patch models.AdminUserPatch) error {
	return c.api.Put(ctx, userPath(userID, ""), patch, nil)
}

func (c *Client) DeleteUser(ctx context.Context, userID id.UserID) error {
	return c.api.Delete(ctx, userPath(userID, ""), nil)
}

func (c *Client) ChangePassword(ctx context.Context, userID id.UserID, newPassword string) error {
	return c.api.Post(ctx, userPath(userID, "/password"), models.ChangePasswordRequest{NewPassword: newPassword}, nil)
}

// Reports

func (c *Client) TenantsByPlan(ctx context.Context) ([]models.PlanReportRow, error) {
	var out []models.PlanReportRow
	if err := c.api.Get(ctx, "/admin/reports/tenants-by-plan", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UsageByModule(ctx context.Context, period ReportPeriod) ([]models.ModuleUsageRow, error) {
	if period == "" {
		period = PeriodMonth
	}
	path := apiclient.WithQuery("/admin/reports/usage-by-module", map[string]string{"period": string(period)})
	var out []models.ModuleUsageRow
	if err := c.api.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TopAgents(ctx context.Context, limit int) ([]models.TopAgentRow, error) {
	if limit <= 0 {
		limit = DefaultTopAgents
	}
	path := apiclient.WithQuery("/admin/reports/top-agents", map[string]string{"limit": strconv.Itoa(limit)})
	var out []models.TopAgentRow
	if err := c.api.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Geography(ctx context.Context) (*models.GeographyReport, error) {
	var out models.GeographyReport
	if err := c.api.Get(ctx, "/admin/reports/geography", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
