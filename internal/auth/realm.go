package auth

import "tausepro/internal/persist"

// Realm describes one login surface of the API. The client console and the
// super-admin console authenticate against different endpoints and persist
// under different keys so one visitor can hold both sessions.
type Realm struct {
	Name        string
	LoginPath   string
	RefreshPath string // empty: the realm cannot refresh, 401 logs out
	MePath      string
	LogoutPath  string // empty: logout is local only
	SnapshotKey string
	TokenKey    string

	// BareMe is set when MePath returns the user object itself instead of
	// {"user": ..., "tenant": ...}.
	BareMe bool
}

var (
	ClientRealm = Realm{
		Name:        "client",
		LoginPath:   "/auth/login",
		RefreshPath: "/auth/refresh",
		MePath:      "/auth/me",
		SnapshotKey: persist.KeyAuth,
		TokenKey:    persist.KeyAuthToken,
	}

	AdminRealm = Realm{
		Name:        "admin",
		LoginPath:   "/admin/auth/login",
		MePath:      "/admin/auth/me",
		LogoutPath:  "/admin/auth/logout",
		BareMe:      true,
		SnapshotKey: persist.KeyAdminAuth,
		TokenKey:    persist.KeyAdminToken,
	}
)

// CanRefresh reports whether sessions in this realm renew their token.
func (r Realm) CanRefresh() bool {
	return r.RefreshPath != ""
}
