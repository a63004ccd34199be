// Package guard decides whether a console request may proceed given the
// visitor's auth state, and turns that decision into an HTTP response.
package guard

import (
	"strings"

	"tausepro/internal/auth/models"
)

// Action is the outcome of a guard decision.
type Action int

const (
	Allow    Action = iota // serve the route
	Loading                // auth state is still settling
	Redirect               // send the visitor to Decision.Location
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is what a Tree says about one request.
type Decision struct {
	Action   Action
	Location string
}

// Tree is one console's route layout: a login page, a home page and the
// protected routes it knows about.
type Tree struct {
	Name      string
	LoginPath string
	HomePath  string
	// RootPath, when set, is a protected path that authenticated visitors
	// are always sent on from.
	RootPath string
	known    func(path string) bool
}

var (
	ClientTree = Tree{
		Name:      "client",
		LoginPath: "/login",
		HomePath:  "/dashboard",
		RootPath:  "/",
		known: oneOf(
			"/dashboard",
			"/analytics",
			"/agents",
			"/settings",
			"/paywall",
			"/paywall/upgrade",
		),
	}

	AdminTree = Tree{
		Name:      "admin",
		LoginPath: "/admin/login",
		HomePath:  "/admin",
		known: patterns(
			"/admin",
			"/admin/logout",
			"/admin/tenants",
			"/admin/tenants/{id}",
			"/admin/tenants/{id}/suspend",
			"/admin/tenants/{id}/activate",
			"/admin/tenants/{id}/metrics",
			"/admin/tenants/{id}/plan",
			"/admin/modules",
			"/admin/modules/{id}",
			"/admin/modules/{id}/toggle",
			"/admin/modules/{id}/metrics",
			"/admin/modules/{id}/config",
			"/admin/agents",
			"/admin/agents/{id}",
			"/admin/agents/{id}/assign",
			"/admin/agents/{id}/assign/{tenantId}",
			"/admin/agents/{id}/metrics",
			"/admin/agents/{id}/test",
			"/admin/system/config",
			"/admin/system/metrics",
			"/admin/system/logs",
			"/admin/system/execute",
			"/admin/users",
			"/admin/users/{id}",
			"/admin/users/{id}/password",
			"/admin/reports/tenants-by-plan",
			"/admin/reports/usage-by-module",
			"/admin/reports/top-agents",
			"/admin/reports/geography",
		),
	}
)

// Known reports whether path is a route of the tree. The login page always is.
func (t Tree) Known(path string) bool {
	path = cleanPath(path)
	return path == t.LoginPath || t.known == nil || t.known(path)
}

// patterns matches chi-style route patterns; a {param} segment matches any
// single non-empty segment.
func patterns(ps ...string) func(string) bool {
	split := make([][]string, 0, len(ps))
	for _, p := range ps {
		split = append(split, strings.Split(strings.Trim(p, "/"), "/"))
	}
	return func(path string) bool {
		segs := strings.Split(strings.Trim(path, "/"), "/")
	next:
		for _, pat := range split {
			if len(pat) != len(segs) {
				continue
			}
			for i, seg := range pat {
				if segs[i] == "" {
					continue next
				}
				if strings.HasPrefix(seg, "{") || seg == segs[i] {
					continue
				}
				continue next
			}
			return true
		}
		return false
	}
}

func oneOf(paths ...string) func(string) bool {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(path string) bool {
		_, ok := set[path]
		return ok
	}
}

// Decide applies the tree's rules in order: loading, the public login page,
// then protected routes. Every path other than the login page is protected.
func (t Tree) Decide(st models.State, path string) Decision {
	path = cleanPath(path)
	if st.IsLoading {
		return Decision{Action: Loading}
	}

	if path == t.LoginPath {
		if st.IsAuthenticated {
			return Decision{Action: Redirect, Location: t.HomePath}
		}
		return Decision{Action: Allow}
	}

	if !st.IsAuthenticated {
		return Decision{Action: Redirect, Location: t.LoginPath}
	}
	if t.RootPath != "" && path == t.RootPath {
		return Decision{Action: Redirect, Location: t.HomePath}
	}
	if t.known != nil && !t.known(path) {
		return Decision{Action: Redirect, Location: t.HomePath}
	}
	return Decision{Action: Allow}
}

func cleanPath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
