package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tausepro/internal/admin/models"
	id "tausepro/pkg/domain"
)

type call struct {
	method string
	path   string
	body   any
}

// recorder answers every call with reply, decoded into out.
type recorder struct {
	calls []call
	reply string
	err   error
}

func (r *recorder) do(method, path string, body, out any) error {
	r.calls = append(r.calls, call{method: method, path: path, body: body})
	if r.err != nil {
		return r.err
	}
	if out != nil && r.reply != "" {
		return json.Unmarshal([]byte(r.reply), out)
	}
	return nil
}

func (r *recorder) Get(_ context.Context, path string, out any) error {
	return r.do(http.MethodGet, path, nil, out)
}

func (r *recorder) Post(_ context.Context, path string, body, out any) error {
	return r.do(http.MethodPost, path, body, out)
}

func (r *recorder) Put(_ context.Context, path string, body, out any) error {
	return r.do(http.MethodPut, path, body, out)
}

func (r *recorder) Delete(_ context.Context, path string, out any) error {
	return r.do(http.MethodDelete, path, nil, out)
}

func (r *recorder) last() call {
	return r.calls[len(r.calls)-1]
}

func TestPaths(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	c := New(rec)

	tests := []struct {
		name   string
		run    func() error
		method string
		path   string
	}{
		{"list tenants with filters", func() error {
			_, err := c.ListTenants(ctx, models.TenantFilters{Plan: "starter", City: "Cali"})
			return err
		}, http.MethodGet, "/admin/tenants?city=Cali&plan=starter"},
		{"list tenants unfiltered", func() error {
			_, err := c.ListTenants(ctx, models.TenantFilters{})
			return err
		}, http.MethodGet, "/admin/tenants"},
		{"get tenant escapes id", func() error {
			_, err := c.GetTenant(ctx, "a/b")
			return err
		}, http.MethodGet, "/admin/tenants/a%2Fb"},
		{"update tenant", func() error { return c.UpdateTenant(ctx, "t1", models.TenantPatch{}) }, http.MethodPut, "/admin/tenants/t1"},
		{"delete tenant", func() error { return c.DeleteTenant(ctx, "t1") }, http.MethodDelete, "/admin/tenants/t1"},
		{"suspend tenant", func() error { return c.SuspendTenant(ctx, "t1", "impago") }, http.MethodPost, "/admin/tenants/t1/suspend"},
		{"activate tenant", func() error { return c.ActivateTenant(ctx, "t1") }, http.MethodPost, "/admin/tenants/t1/activate"},
		{"tenant metrics", func() error {
			_, err := c.TenantMetrics(ctx, "t1")
			return err
		}, http.MethodGet, "/admin/tenants/t1/metrics"},
		{"change plan", func() error { return c.ChangeTenantPlan(ctx, "t1", id.PlanGrowth) }, http.MethodPost, "/admin/tenants/t1/plan"},
		{"list modules", func() error {
			_, err := c.ListModules(ctx, models.CategoryFilters{Status: "beta"})
			return err
		}, http.MethodGet, "/admin/modules?status=beta"},
		{"toggle module", func() error { return c.ToggleModule(ctx, "m1", true) }, http.MethodPost, "/admin/modules/m1/toggle"},
		{"module config", func() error {
			return c.UpdateModuleConfig(ctx, "m1", models.ModuleConfigPatch{})
		}, http.MethodPut, "/admin/modules/m1/config"},
		{"assign agent", func() error { return c.AssignAgent(ctx, "a1", "t1") }, http.MethodPost, "/admin/agents/a1/assign"},
		{"unassign agent", func() error { return c.UnassignAgent(ctx, "a1", "t1") }, http.MethodDelete, "/admin/agents/a1/assign/t1"},
		{"test agent", func() error {
			_, err := c.TestAgent(ctx, "a1", "hola")
			return err
		}, http.MethodPost, "/admin/agents/a1/test"},
		{"logs", func() error {
			_, err := c.Logs(ctx, models.LogFilters{Level: "error", Limit: 20})
			return err
		}, http.MethodGet, "/admin/system/logs?level=error&limit=20"},
		{"execute", func() error {
			_, err := c.Execute(ctx, models.ExecuteRequest{Command: "cache:flush"})
			return err
		}, http.MethodPost, "/admin/system/execute"},
		{"change password", func() error { return c.ChangePassword(ctx, "u1", "s3cret-pass") }, http.MethodPost, "/admin/users/u1/password"},
		{"usage report defaults to month", func() error {
			_, err := c.UsageByModule(ctx, "")
			return err
		}, http.MethodGet, "/admin/reports/usage-by-module?period=month"},
		{"top agents defaults to ten", func() error {
			_, err := c.TopAgents(ctx, 0)
			return err
		}, http.MethodGet, "/admin/reports/top-agents?limit=10"},
		{"top agents limit", func() error {
			_, err := c.TopAgents(ctx, 3)
			return err
		}, http.MethodGet, "/admin/reports/top-agents?limit=3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.run())
			assert.Equal(t, tt.method, rec.last().method)
			assert.Equal(t, tt.path, rec.last().path)
		})
	}
}

func TestBodies(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	c := New(rec)

	require.NoError(t, c.SuspendTenant(ctx, "t1", "impago"))
	assert.Equal(t, models.SuspendRequest{Reason: "impago"}, rec.last().body)

	require.NoError(t, c.ToggleModule(ctx, "m1", false))
	assert.Equal(t, models.ToggleModuleRequest{Enabled: false}, rec.last().body)

	require.NoError(t, c.AssignAgent(ctx, "a1", "t9"))
	assert.Equal(t, models.AssignAgentRequest{TenantID: "t9"}, rec.last().body)
}

func TestDecodesResponses(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{reply: `[{"id":"t1","name":"Café","plan":"starter","status":"active"}]`}
	tenants, err := New(rec).ListTenants(ctx, models.TenantFilters{})
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, id.TenantID("t1"), tenants[0].ID)
	assert.Equal(t, models.TenantActive, tenants[0].Status)

	rec.reply = `{"response":"Hola","time":1.5}`
	res, err := New(rec).TestAgent(ctx, "a1", "hola")
	require.NoError(t, err)
	assert.Equal(t, "Hola", res.Response)
}

func TestErrorsPassThrough(t *testing.T) {
	rec := &recorder{err: assert.AnError}
	_, err := New(rec).GetAgent(context.Background(), "a1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReportPeriodValid(t *testing.T) {
	for _, p := range []ReportPeriod{"", PeriodDay, PeriodWeek, PeriodMonth} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, ReportPeriod("year").Valid())
}
