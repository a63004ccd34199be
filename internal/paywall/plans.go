// Package paywall gates console features by subscription tier and metered
// usage. Tier rules and limits are static; usage comes from the API.
package paywall

import (
	id "tausepro/pkg/domain"
)

// Unlimited marks a limit that never blocks.
const Unlimited int64 = -1

// Limits are the monthly allowances of a plan.
type Limits struct {
	APICalls         int64 `json:"apiCalls"`
	MCPAgents        int64 `json:"mcpAgents"`
	WhatsAppMessages int64 `json:"whatsappMessages"`
}

// PlanFeatures describes a tier as shown on the pricing view.
type PlanFeatures struct {
	Plan      id.Plan  `json:"plan"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Currency  string   `json:"currency"`
	Limits    Limits   `json:"limits"`
	Features  []string `json:"features"`
	IsPopular bool     `json:"isPopular,omitempty"`
}

var catalog = map[id.Plan]PlanFeatures{
	id.PlanGratis: {
		Plan:     id.PlanGratis,
		Name:     "Gratis",
		Price:    0,
		Currency: "COP",
		Limits:   Limits{APICalls: 100, MCPAgents: 3, WhatsAppMessages: 50},
		Features: []string{
			"Dashboard básico",
			"Agentes MCP básicos",
			"Soporte por email",
			"Validaciones Colombia (NIT, CC)",
			"Reportes básicos",
		},
	},
	id.PlanStarter: {
		Plan:     id.PlanStarter,
		Name:     "Starter",
		Price:    49900,
		Currency: "COP",
		Limits:   Limits{APICalls: 5000, MCPAgents: 10, WhatsAppMessages: 1000},
		Features: []string{
			"Todo lo del plan Gratis",
			"Analytics avanzados",
			"Integraciones PSE/Nequi",
			"Chat WhatsApp Business",
			"Soporte prioritario",
			"Facturación DIAN básica",
		},
		IsPopular: true,
	},
	id.PlanGrowth: {
		Plan:     id.PlanGrowth,
		Name:     "Growth",
		Price:    149900,
		Currency: "COP",
		Limits:   Limits{APICalls: 25000, MCPAgents: 50, WhatsAppMessages: 5000},
		Features: []string{
			"Todo lo del plan Starter",
			"Multi-usuario (hasta 10)",
			"API personalizada",
			"Integraciones Servientrega/TCC",
			"Facturación DIAN completa",
			"Exportación de datos",
			"Webhooks",
		},
	},
	id.PlanScale: {
		Plan:     id.PlanScale,
		Name:     "Scale",
		Price:    499900,
		Currency: "COP",
		Limits:   Limits{APICalls: Unlimited, MCPAgents: Unlimited, WhatsAppMessages: Unlimited},
		Features: []string{
			"Todo lo del plan Growth",
			"Usuarios ilimitados",
			"SLA 99.9% uptime",
			"Soporte telefónico",
			"Onboarding personalizado",
			"Integración ERP/CRM",
			"White-label disponible",
		},
	},
}

// Features returns the catalog entry for plan. Unknown plans get gratis.
func Features(plan id.Plan) PlanFeatures {
	f := catalog[plan.Normalize()]
	f.Features = append([]string(nil), f.Features...)
	return f
}

// Catalog lists every tier from cheapest to most expensive.
func Catalog() []PlanFeatures {
	out := make([]PlanFeatures, 0, len(id.Plans))
	for _, p := range id.Plans {
		out = append(out, Features(p))
	}
	return out
}
