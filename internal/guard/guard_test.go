package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tausepro/internal/auth/models"
)

func TestClientTreeDecide(t *testing.T) {
	anon := models.State{}
	authed := models.State{IsAuthenticated: true, HasToken: true}

	tests := []struct {
		name  string
		state models.State
		path  string
		want  Decision
	}{
		{"loading wins over everything", models.State{IsLoading: true, IsAuthenticated: true}, "/login", Decision{Action: Loading}},
		{"login open to visitors", anon, "/login", Decision{Action: Allow}},
		{"login sends members home", authed, "/login", Decision{Action: Redirect, Location: "/dashboard"}},
		{"protected needs login", anon, "/analytics", Decision{Action: Redirect, Location: "/login"}},
		{"root needs login", anon, "/", Decision{Action: Redirect, Location: "/login"}},
		{"root goes to dashboard", authed, "/", Decision{Action: Redirect, Location: "/dashboard"}},
		{"known route allowed", authed, "/settings", Decision{Action: Allow}},
		{"trailing slash ignored", authed, "/agents/", Decision{Action: Allow}},
		{"unknown route falls back", authed, "/no-such-page", Decision{Action: Redirect, Location: "/dashboard"}},
		{"unknown route needs login first", anon, "/no-such-page", Decision{Action: Redirect, Location: "/login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientTree.Decide(tt.state, tt.path))
		})
	}
}

func TestAdminTreeDecide(t *testing.T) {
	anon := models.State{}
	authed := models.State{IsAuthenticated: true, HasToken: true}

	tests := []struct {
		name  string
		state models.State
		path  string
		want  Decision
	}{
		{"login open", anon, "/admin/login", Decision{Action: Allow}},
		{"login sends admins home", authed, "/admin/login", Decision{Action: Redirect, Location: "/admin"}},
		{"home needs login", anon, "/admin", Decision{Action: Redirect, Location: "/admin/login"}},
		{"nested route needs login", anon, "/admin/tenants/t_1", Decision{Action: Redirect, Location: "/admin/login"}},
		{"nested route allowed", authed, "/admin/tenants/t_1", Decision{Action: Allow}},
		{"home allowed", authed, "/admin/", Decision{Action: Allow}},
		{"parameterised route allowed", authed, "/admin/agents/a_1/assign/t_9", Decision{Action: Allow}},
		{"unknown admin path falls back", authed, "/admin/nonexistent", Decision{Action: Redirect, Location: "/admin"}},
		{"unknown action falls back", authed, "/admin/tenants/t_1/explode", Decision{Action: Redirect, Location: "/admin"}},
		{"empty id segment falls back", authed, "/admin/tenants//suspend", Decision{Action: Redirect, Location: "/admin"}},
		{"outside the tree falls back", authed, "/dashboard", Decision{Action: Redirect, Location: "/admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdminTree.Decide(tt.state, tt.path))
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "unknown", Action(42).String())
}
