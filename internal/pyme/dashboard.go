// Package pyme reads the client console's own data for the logged-in tenant.
package pyme

import (
	"context"

	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
)

const dashboardPath = "/pymes/dashboard"

type Metrics struct {
	TotalAPICalls int64 `json:"total_api_calls"`
	TotalAgents   int64 `json:"total_agents"`
	ActiveChats   int64 `json:"active_chats"`
	MessagesSent  int64 `json:"messages_sent"`
}

// Meter is one usage bar. Percentage is computed by the API.
type Meter struct {
	Used       int64   `json:"used"`
	Limit      int64   `json:"limit"`
	Percentage float64 `json:"percentage"`
}

type Usage struct {
	APICalls Meter `json:"api_calls"`
	Agents   Meter `json:"agents"`
}

type Activity struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// Dashboard is the body of GET /pymes/dashboard.
type Dashboard struct {
	Metrics        Metrics    `json:"metrics"`
	Usage          Usage      `json:"usage"`
	RecentActivity []Activity `json:"recent_activity"`
	CurrentPlan    id.Plan    `json:"current_plan"`
}

// API is the subset of the API client the dashboard needs.
type API interface {
	Get(ctx context.Context, path string, out any) error
}

type Client struct {
	api API
}

func New(api API) *Client {
	return &Client{api: api}
}

// GetDashboard loads the tenant dashboard. A missing plan is read as gratis.
func (c *Client) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.api.Get(ctx, dashboardPath, &out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load dashboard")
	}
	out.CurrentPlan = out.CurrentPlan.Normalize()
	if out.RecentActivity == nil {
		out.RecentActivity = []Activity{}
	}
	return &out, nil
}
