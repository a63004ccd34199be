// Package models holds the super-admin records exchanged with the API's
// /admin endpoints. Timestamps stay as the API sends them.
package models

import (
	id "tausepro/pkg/domain"
)

type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantPending   TenantStatus = "pending"
)

type TenantMetrics struct {
	APICalls     int64  `json:"apiCalls"`
	AgentsCount  int64  `json:"agentsCount"`
	UsersCount   int64  `json:"usersCount"`
	RevenueCOP   int64  `json:"revenueCOP"`
	LastActivity string `json:"lastActivity"`
}

type TenantIntegrations struct {
	Wompi        bool `json:"wompi"`
	DIAN         bool `json:"dian"`
	Servientrega bool `json:"servientrega"`
	WhatsApp     bool `json:"whatsapp"`
}

type TenantSettings struct {
	IsActive     bool               `json:"isActive"`
	Features     []string           `json:"features"`
	Integrations TenantIntegrations `json:"integrations"`
}

// Tenant is a customer business account as the platform operators see it.
type Tenant struct {
	ID          id.TenantID    `json:"id"`
	Name        string         `json:"name"`
	Subdomain   string         `json:"subdomain"`
	Plan        id.Plan        `json:"plan"`
	Status      TenantStatus   `json:"status"`
	NIT         string         `json:"nit"`
	City        string         `json:"city"`
	Department  string         `json:"department"`
	Industry    string         `json:"industry"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Address     string         `json:"address"`
	Metrics     TenantMetrics  `json:"metrics"`
	Settings    TenantSettings `json:"settings"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	LastLoginAt string         `json:"lastLoginAt,omitempty"`
}

type ModuleCategory string

const (
	ModuleCore          ModuleCategory = "core"
	ModuleEcommerce     ModuleCategory = "ecommerce"
	ModuleCommunication ModuleCategory = "communication"
	ModuleAnalytics     ModuleCategory = "analytics"
	ModuleIntegration   ModuleCategory = "integration"
)

type ModuleStatus string

const (
	ModuleActive     ModuleStatus = "active"
	ModuleBeta       ModuleStatus = "beta"
	ModuleDeprecated ModuleStatus = "deprecated"
)

type ModuleConfig struct {
	IsEnabled    bool           `json:"isEnabled"`
	IsRequired   bool           `json:"isRequired"`
	Version      string         `json:"version"`
	Dependencies []string       `json:"dependencies"`
	Settings     map[string]any `json:"settings"`
}

type ModuleUsage struct {
	ActiveTenants   int64   `json:"activeTenants"`
	TotalCalls      int64   `json:"totalCalls"`
	ErrorRate       float64 `json:"errorRate"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

type ModulePermissions struct {
	CanEnable      bool `json:"canEnable"`
	CanConfigure   bool `json:"canConfigure"`
	CanViewMetrics bool `json:"canViewMetrics"`
}

// Module is a platform feature tenants can have enabled.
type Module struct {
	ID          id.ModuleID       `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    ModuleCategory    `json:"category"`
	Status      ModuleStatus      `json:"status"`
	Config      ModuleConfig      `json:"config"`
	Usage       ModuleUsage       `json:"usage"`
	Permissions ModulePermissions `json:"permissions"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

type AgentCategory string

const (
	AgentVentas       AgentCategory = "ventas"
	AgentSoporte      AgentCategory = "soporte"
	AgentContabilidad AgentCategory = "contabilidad"
	AgentLogistica    AgentCategory = "logistica"
	AgentCustom       AgentCategory = "custom"
)

type AgentStatus string

const (
	AgentActive   AgentStatus = "active"
	AgentInactive AgentStatus = "inactive"
	AgentError    AgentStatus = "error"
)

type AgentConfig struct {
	Model       string            `json:"model"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"maxTokens"`
	Tools       []string          `json:"tools"`
	Prompts     map[string]string `json:"prompts"`
}

type AgentPerformance struct {
	TotalConversations int64   `json:"totalConversations"`
	AvgResponseTime    float64 `json:"avgResponseTime"`
	SatisfactionScore  float64 `json:"satisfactionScore"`
	ErrorRate          float64 `json:"errorRate"`
	LastUsed           string  `json:"lastUsed"`
}

// AgentTenants tracks which tenants an agent is assigned to and active in.
type AgentTenants struct {
	Assigned []id.TenantID         `json:"assigned"`
	Active   []id.TenantID         `json:"active"`
	Usage    map[id.TenantID]int64 `json:"usage"`
}

type AgentPermissions struct {
	CanEdit        bool `json:"canEdit"`
	CanDelete      bool `json:"canDelete"`
	CanAssign      bool `json:"canAssign"`
	CanViewMetrics bool `json:"canViewMetrics"`
}

// Agent is a configured MCP assistant.
type Agent struct {
	ID          id.AgentID       `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    AgentCategory    `json:"category"`
	Status      AgentStatus      `json:"status"`
	Config      AgentConfig      `json:"config"`
	Performance AgentPerformance `json:"performance"`
	Tenants     AgentTenants     `json:"tenants"`
	Permissions AgentPermissions `json:"permissions"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

type GeneralConfig struct {
	MaintenanceMode bool   `json:"maintenanceMode"`
	DebugMode       bool   `json:"debugMode"`
	Timezone        string `json:"timezone"`
	Language        string `json:"language"`
}

type PaymentsConfig struct {
	WompiEnabled bool `json:"wompiEnabled"`
	PSEEnabled   bool `json:"pseEnabled"`
	NequiEnabled bool `json:"nequiEnabled"`
	TestMode     bool `json:"testMode"`
}

type IntegrationsConfig struct {
	DIANEnabled         bool `json:"dianEnabled"`
	ServientregaEnabled bool `json:"servientregaEnabled"`
	WhatsAppEnabled     bool `json:"whatsappEnabled"`
}

type PasswordPolicy struct {
	MinLength           int  `json:"minLength"`
	RequireUppercase    bool `json:"requireUppercase"`
	RequireNumbers      bool `json:"requireNumbers"`
	RequireSpecialChars bool `json:"requireSpecialChars"`
}

type SecurityConfig struct {
	JWTExpiry          int64          `json:"jwtExpiry"`
	RefreshTokenExpiry int64          `json:"refreshTokenExpiry"`
	MaxLoginAttempts   int            `json:"maxLoginAttempts"`
	PasswordPolicy     PasswordPolicy `json:"passwordPolicy"`
}

type LimitsConfig struct {
	MaxTenants          int64 `json:"maxTenants"`
	MaxUsersPerTenant   int64 `json:"maxUsersPerTenant"`
	MaxAgentsPerTenant  int64 `json:"maxAgentsPerTenant"`
	MaxAPICallsPerMonth int64 `json:"maxApiCallsPerMonth"`
}

// SystemConfig is the platform-wide configuration document.
type SystemConfig struct {
	General      GeneralConfig      `json:"general"`
	Payments     PaymentsConfig     `json:"payments"`
	Integrations IntegrationsConfig `json:"integrations"`
	Security     SecurityConfig     `json:"security"`
	Limits       LimitsConfig       `json:"limits"`
	UpdatedAt    string             `json:"updatedAt"`
	UpdatedBy    string             `json:"updatedBy"`
}

type MetricsOverview struct {
	TotalTenants        int64 `json:"totalTenants"`
	ActiveTenants       int64 `json:"activeTenants"`
	TotalUsers          int64 `json:"totalUsers"`
	TotalRevenueCOP     int64 `json:"totalRevenueCOP"`
	AvgTenantRevenueCOP int64 `json:"avgTenantRevenueCOP"`
}

type MetricsUsage struct {
	TotalAPICalls           int64   `json:"totalApiCalls"`
	TotalAgentConversations int64   `json:"totalAgentConversations"`
	TotalWhatsAppMessages   int64   `json:"totalWhatsAppMessages"`
	AvgResponseTime         float64 `json:"avgResponseTime"`
}

type MetricsPlans struct {
	Gratis  int64 `json:"gratis"`
	Starter int64 `json:"starter"`
	Growth  int64 `json:"growth"`
	Scale   int64 `json:"scale"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

type IndustryCount struct {
	Industry string `json:"industry"`
	Count    int64  `json:"count"`
}

type MetricsGeography struct {
	TopCities      []CityCount       `json:"topCities"`
	TopDepartments []DepartmentCount `json:"topDepartments"`
	TopIndustries  []IndustryCount   `json:"topIndustries"`
}

type MetricsPerformance struct {
	Uptime          float64 `json:"uptime"`
	ErrorRate       float64 `json:"errorRate"`
	AvgLoadTime     float64 `json:"avgLoadTime"`
	ConcurrentUsers int64   `json:"concurrentUsers"`
}

type MetricsGrowth struct {
	NewTenantsThisMonth int64   `json:"newTenantsThisMonth"`
	NewTenantsThisWeek  int64   `json:"newTenantsThisWeek"`
	ChurnRate           float64 `json:"churnRate"`
	UpgradeRate         float64 `json:"upgradeRate"`
}

// SystemMetrics is the platform-wide metrics rollup.
type SystemMetrics struct {
	Overview    MetricsOverview    `json:"overview"`
	Usage       MetricsUsage       `json:"usage"`
	Plans       MetricsPlans       `json:"plans"`
	Geography   MetricsGeography   `json:"geography"`
	Performance MetricsPerformance `json:"performance"`
	Growth      MetricsGrowth      `json:"growth"`
	LastUpdated string             `json:"lastUpdated"`
}

// Report rows.

type PlanReportRow struct {
	Plan    id.Plan `json:"plan"`
	Count   int64   `json:"count"`
	Revenue int64   `json:"revenue"`
}

type ModuleUsageRow struct {
	Module          string  `json:"module"`
	Calls           int64   `json:"calls"`
	Errors          int64   `json:"errors"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

type TopAgentRow struct {
	Agent         string  `json:"agent"`
	Conversations int64   `json:"conversations"`
	Satisfaction  float64 `json:"satisfaction"`
	Tenants       int64   `json:"tenants"`
}

type CityRevenue struct {
	City    string `json:"city"`
	Count   int64  `json:"count"`
	Revenue int64  `json:"revenue"`
}

type DepartmentRevenue struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
	Revenue    int64  `json:"revenue"`
}

type GeographyReport struct {
	Cities      []CityRevenue       `json:"cities"`
	Departments []DepartmentRevenue `json:"departments"`
}

// LogEntry is one line of GET /admin/system/logs.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Service   string         `json:"service"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type CommandResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

type AgentTestResult struct {
	Response string  `json:"response"`
	Time     float64 `json:"time"`
}
