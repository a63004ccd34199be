package models

// LoginResponse is returned by both login endpoints. The admin realm omits
// the tenant.
type LoginResponse struct {
	Token  string  `json:"token"`
	User   User    `json:"user"`
	Tenant *Tenant `json:"tenant,omitempty"`
}

// RefreshResponse carries the rotated access token.
type RefreshResponse struct {
	Token string `json:"token"`
}

// MeResponse is the client realm's /auth/me body. The admin realm returns
// the user object bare.
type MeResponse struct {
	User   User    `json:"user"`
	Tenant *Tenant `json:"tenant,omitempty"`
}
