package models

import (
	"strings"

	authmodels "tausepro/internal/auth/models"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
	strutil "tausepro/pkg/platform/strings"
	"tausepro/pkg/validation"
)

// CreateTenantRequest is the body of POST /admin/tenants.
type CreateTenantRequest struct {
	Name       string          `json:"name" validate:"required,notblank"`
	Subdomain  string          `json:"subdomain" validate:"required,hostname_rfc1123"`
	Plan       id.Plan         `json:"plan" validate:"required,plan"`
	NIT        string          `json:"nit,omitempty"`
	City       string          `json:"city,omitempty"`
	Department string          `json:"department,omitempty"`
	Industry   string          `json:"industry,omitempty"`
	Email      string          `json:"email" validate:"required,email"`
	Phone      string          `json:"phone,omitempty"`
	Address    string          `json:"address,omitempty"`
	Settings   *TenantSettings `json:"settings,omitempty"`
}

func (r *CreateTenantRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Subdomain = strings.ToLower(strings.TrimSpace(r.Subdomain))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.NIT = strings.TrimSpace(r.NIT)
	r.City = strings.TrimSpace(r.City)
	r.Department = strings.TrimSpace(r.Department)
	r.Industry = strings.TrimSpace(r.Industry)
	if r.Plan == "" {
		r.Plan = id.PlanGratis
	}
	r.Plan = r.Plan.Normalize()
	if r.Settings != nil {
		r.Settings.Features = strutil.DedupeAndTrimLower(r.Settings.Features)
	}
}

func (r *CreateTenantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckStringLength("name", r.Name, validation.MaxNameLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("email", r.Email, validation.MaxEmailLength); err != nil {
		return err
	}
	if r.Settings != nil {
		if err := validation.CheckSliceCount("features", len(r.Settings.Features), validation.MaxTenantFeatures); err != nil {
			return err
		}
	}
	return validation.Validate(r)
}

// TenantPatch is a partial tenant update. Nil fields are left untouched.
type TenantPatch struct {
	Name       *string         `json:"name,omitempty"`
	Subdomain  *string         `json:"subdomain,omitempty"`
	Plan       *id.Plan        `json:"plan,omitempty"`
	Status     *TenantStatus   `json:"status,omitempty"`
	NIT        *string         `json:"nit,omitempty"`
	City       *string         `json:"city,omitempty"`
	Department *string         `json:"department,omitempty"`
	Industry   *string         `json:"industry,omitempty"`
	Email      *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string         `json:"phone,omitempty"`
	Address    *string         `json:"address,omitempty"`
	Settings   *TenantSettings `json:"settings,omitempty"`
}

func (p *TenantPatch) Validate() error {
	if p == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name must not be blank")
	}
	if p.Plan != nil {
		if _, err := id.ParsePlan(p.Plan.String()); err != nil {
			return dErrors.New(dErrors.CodeValidation, "plan must be one of [gratis starter growth scale]")
		}
	}
	if p.Status != nil && !validTenantStatus(*p.Status) {
		return dErrors.New(dErrors.CodeValidation, "status must be one of [active suspended pending]")
	}
	return validation.Validate(p)
}

// Apply merges the patch into t the way a shallow object spread would.
func (p TenantPatch) Apply(t *Tenant) {
	setIf(&t.Name, p.Name)
	setIf(&t.Subdomain, p.Subdomain)
	if p.Plan != nil {
		t.Plan = p.Plan.Normalize()
	}
	setIf(&t.Status, p.Status)
	setIf(&t.NIT, p.NIT)
	setIf(&t.City, p.City)
	setIf(&t.Department, p.Department)
	setIf(&t.Industry, p.Industry)
	setIf(&t.Email, p.Email)
	setIf(&t.Phone, p.Phone)
	setIf(&t.Address, p.Address)
	setIf(&t.Settings, p.Settings)
}

func validTenantStatus(s TenantStatus) bool {
	switch s {
	case TenantActive, TenantSuspended, TenantPending:
		return true
	}
	return false
}

type SuspendRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (r *SuspendRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *SuspendRequest) Validate() error {
	return validation.CheckStringLength("reason", r.Reason, validation.MaxReasonLength)
}

type ChangePlanRequest struct {
	Plan id.Plan `json:"plan" validate:"required,plan"`
}

func (r *ChangePlanRequest) Normalize() {
	r.Plan = id.Plan(strings.ToLower(strings.TrimSpace(r.Plan.String())))
}

func (r *ChangePlanRequest) Validate() error {
	return validation.Validate(r)
}

// ModuleConfigPatch is the body of PUT /admin/modules/{id}/config.
type ModuleConfigPatch struct {
	IsEnabled    *bool          `json:"isEnabled,omitempty" yaml:"isEnabled,omitempty"`
	IsRequired   *bool          `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	Version      *string        `json:"version,omitempty" yaml:"version,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Settings     map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

func (p ModuleConfigPatch) Apply(c *ModuleConfig) {
	setIf(&c.IsEnabled, p.IsEnabled)
	setIf(&c.IsRequired, p.IsRequired)
	setIf(&c.Version, p.Version)
	if p.Dependencies != nil {
		c.Dependencies = append([]string(nil), p.Dependencies...)
	}
	if p.Settings != nil {
		c.Settings = p.Settings
	}
}

// ModulePatch is a partial module update.
type ModulePatch struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *ModuleCategory `json:"category,omitempty" validate:"omitempty,oneof=core ecommerce communication analytics integration"`
	Status      *ModuleStatus   `json:"status,omitempty" validate:"omitempty,oneof=active beta deprecated"`
	Config      *ModuleConfig   `json:"config,omitempty"`
}

func (p *ModulePatch) Validate() error {
	if p == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(p)
}

func (p ModulePatch) Apply(m *Module) {
	setIf(&m.Name, p.Name)
	setIf(&m.Description, p.Description)
	setIf(&m.Category, p.Category)
	setIf(&m.Status, p.Status)
	setIf(&m.Config, p.Config)
}

type ToggleModuleRequest struct {
	Enabled bool `json:"enabled"`
}

// CreateAgentRequest is the body of POST /admin/agents.
type CreateAgentRequest struct {
	Name        string        `json:"name" validate:"required,notblank"`
	Description string        `json:"description,omitempty"`
	Category    AgentCategory `json:"category" validate:"required,oneof=ventas soporte contabilidad logistica custom"`
	Status      AgentStatus   `json:"status,omitempty" validate:"omitempty,oneof=active inactive error"`
	Config      AgentConfig   `json:"config"`
}

func (r *CreateAgentRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Config.Tools = strutil.DedupeAndTrim(r.Config.Tools)
	if r.Status == "" {
		r.Status = AgentInactive
	}
}

func (r *CreateAgentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckStringLength("name", r.Name, validation.MaxNameLength); err != nil {
		return err
	}
	if err := validation.CheckSliceCount("tools", len(r.Config.Tools), validation.MaxAgentTools); err != nil {
		return err
	}
	return validateAgentConfig(r.Config, validation.Validate(r))
}

// AgentPatch is a partial agent update.
type AgentPatch struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Category    *AgentCategory `json:"category,omitempty" validate:"omitempty,oneof=ventas soporte contabilidad logistica custom"`
	Status      *AgentStatus   `json:"status,omitempty" validate:"omitempty,oneof=active inactive error"`
	Config      *AgentConfig   `json:"config,omitempty"`
}

func (p *AgentPatch) Validate() error {
	if p == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if p.Config != nil {
		if err := validation.CheckSliceCount("tools", len(p.Config.Tools), validation.MaxAgentTools); err != nil {
			return err
		}
		return validateAgentConfig(*p.Config, validation.Validate(p))
	}
	return validation.Validate(p)
}

func (p AgentPatch) Apply(a *Agent) {
	setIf(&a.Name, p.Name)
	setIf(&a.Description, p.Description)
	setIf(&a.Category, p.Category)
	setIf(&a.Status, p.Status)
	setIf(&a.Config, p.Config)
}

func validateAgentConfig(c AgentConfig, tagErr error) error {
	if tagErr != nil {
		return tagErr
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return dErrors.New(dErrors.CodeValidation, "temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return dErrors.New(dErrors.CodeValidation, "max_tokens must not be negative")
	}
	return nil
}

type AssignAgentRequest struct {
	TenantID id.TenantID `json:"tenantId"`
}

func (r *AssignAgentRequest) Validate() error {
	_, err := id.ParseTenantID(r.TenantID.String())
	return err
}

type AgentTestRequest struct {
	Message string `json:"message" validate:"required,notblank"`
}

func (r *AgentTestRequest) Validate() error {
	if err := validation.CheckStringLength("message", r.Message, validation.MaxMessageLength); err != nil {
		return err
	}
	return validation.Validate(r)
}

// SystemConfigPatch replaces whole sections of the system config.
type SystemConfigPatch struct {
	General      *GeneralConfig      `json:"general,omitempty"`
	Payments     *PaymentsConfig     `json:"payments,omitempty"`
	Integrations *IntegrationsConfig `json:"integrations,omitempty"`
	Security     *SecurityConfig     `json:"security,omitempty"`
	Limits       *LimitsConfig       `json:"limits,omitempty"`
}

func (p SystemConfigPatch) Apply(c *SystemConfig) {
	setIf(&c.General, p.General)
	setIf(&c.Payments, p.Payments)
	setIf(&c.Integrations, p.Integrations)
	setIf(&c.Security, p.Security)
	setIf(&c.Limits, p.Limits)
}

type ExecuteRequest struct {
	Command string         `json:"command" validate:"required,notblank"`
	Params  map[string]any `json:"params,omitempty"`
}

func (r *ExecuteRequest) Normalize() {
	r.Command = strings.TrimSpace(r.Command)
}

func (r *ExecuteRequest) Validate() error {
	if err := validation.CheckStringLength("command", r.Command, validation.MaxCommandLength); err != nil {
		return err
	}
	return validation.Validate(r)
}

// CreateAdminUserRequest is the body of POST /admin/users.
type CreateAdminUserRequest struct {
	Email       string                       `json:"email" validate:"required,email"`
	Name        string                       `json:"name" validate:"required,notblank"`
	Role        authmodels.Role              `json:"role" validate:"required,oneof=super_admin admin support developer"`
	Password    string                       `json:"password,omitempty" validate:"omitempty,min=8"`
	Permissions *authmodels.AdminPermissions `json:"permissions,omitempty"`
}

func (r *CreateAdminUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateAdminUserRequest) Validate() error {
	if err := validation.CheckStringLength("email", r.Email, validation.MaxEmailLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("password", r.Password, validation.MaxPasswordLength); err != nil {
		return err
	}
	return validation.Validate(r)
}

// AdminUserPatch is a partial admin user update.
type AdminUserPatch struct {
	Name        *string                      `json:"name,omitempty"`
	Role        *authmodels.Role             `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin support developer"`
	IsActive    *bool                        `json:"isActive,omitempty"`
	Permissions *authmodels.AdminPermissions `json:"permissions,omitempty"`
}

func (p *AdminUserPatch) Validate() error {
	return validation.Validate(p)
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

func (r *ChangePasswordRequest) Validate() error {
	if err := validation.CheckStringLength("new_password", r.NewPassword, validation.MaxPasswordLength); err != nil {
		return err
	}
	return validation.Validate(r)
}
