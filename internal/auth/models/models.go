package models

import (
	id "tausepro/pkg/domain"
)

// Role of a console user. Client users are owner/admin/employee; the admin
// realm adds super_admin, support and developer.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleSuperAdmin Role = "super_admin"
	RoleSupport    Role = "support"
	RoleDeveloper  Role = "developer"
)

// AdminPermissions is only present on admin-realm users.
type AdminPermissions struct {
	CanManageTenants      bool `json:"canManageTenants"`
	CanManageModules      bool `json:"canManageModules"`
	CanManageAgents       bool `json:"canManageAgents"`
	CanViewSystemMetrics  bool `json:"canViewSystemMetrics"`
	CanManageSystemConfig bool `json:"canManageSystemConfig"`
	CanManageUsers        bool `json:"canManageUsers"`
	CanViewBilling        bool `json:"canViewBilling"`
}

// User is the authenticated console user. Timestamps stay as the API sends
// them; the console never computes with them.
type User struct {
	ID          id.UserID         `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Role        Role              `json:"role"`
	TenantID    id.TenantID       `json:"tenantId,omitempty"`
	Permissions *AdminPermissions `json:"permissions,omitempty"`
	IsActive    *bool             `json:"isActive,omitempty"`
	LastLoginAt string            `json:"lastLoginAt,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
}

// Tenant is the business account the client user works in.
type Tenant struct {
	ID         id.TenantID `json:"id"`
	Name       string      `json:"name"`
	Subdomain  string      `json:"subdomain"`
	Plan       id.Plan     `json:"plan"`
	NIT        string      `json:"nit"`
	City       string      `json:"city"`
	Department string      `json:"department"`
	Industry   string      `json:"industry"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email"`
	Address    string      `json:"address"`
	IsActive   bool        `json:"isActive"`
	CreatedAt  string      `json:"createdAt,omitempty"`
	UpdatedAt  string      `json:"updatedAt,omitempty"`
}

// State is the full auth state of one session.
type State struct {
	User            *User   `json:"user"`
	Tenant          *Tenant `json:"tenant"`
	IsAuthenticated bool    `json:"isAuthenticated"`
	IsLoading       bool    `json:"isLoading"`
	HasToken        bool    `json:"hasToken"`
	Device          string  `json:"device,omitempty"`
}

// Snapshot is the persisted subset of State. The token lives under its own
// key and the loading flag is never persisted.
type Snapshot struct {
	User            *User   `json:"user"`
	Tenant          *Tenant `json:"tenant"`
	IsAuthenticated bool    `json:"isAuthenticated"`
}
