package paywall

import (
	"maps"
	"slices"

	id "tausepro/pkg/domain"
)

// Metered features block once usage reaches the plan limit.
const (
	FeatureAPICalls  = "api_calls"
	FeatureMCPAgents = "mcp_agents"
	FeatureWhatsApp  = "whatsapp"
)

// Tier features block below a minimum plan.
const (
	FeatureAnalytics           = "analytics"
	FeatureAPIAccess           = "api_access"
	FeaturePSEIntegration      = "pse_integration"
	FeatureShippingIntegration = "shipping_integration"
	FeatureMultiUser           = "multi_user"
	FeatureWebhooks            = "webhooks"
	FeatureDIANFull            = "dian_full"
	FeatureDataExport          = "data_export"
	FeatureWhiteLabel          = "white_label"
	FeaturePhoneSupport        = "phone_support"
	FeatureSLAUptime           = "sla_uptime"
)

var minimumPlan = map[string]id.Plan{
	FeatureAnalytics:           id.PlanStarter,
	FeatureAPIAccess:           id.PlanStarter,
	FeaturePSEIntegration:      id.PlanStarter,
	FeatureShippingIntegration: id.PlanStarter,
	FeatureMultiUser:           id.PlanGrowth,
	FeatureWebhooks:            id.PlanGrowth,
	FeatureDIANFull:            id.PlanGrowth,
	FeatureDataExport:          id.PlanGrowth,
	FeatureWhiteLabel:          id.PlanScale,
	FeaturePhoneSupport:        id.PlanScale,
	FeatureSLAUptime:           id.PlanScale,
}

// MinimumPlan returns the cheapest plan that unlocks a tier feature. Metered
// and unknown features report false.
func MinimumPlan(feature string) (id.Plan, bool) {
	p, ok := minimumPlan[feature]
	return p, ok
}

// TierFeatures lists every plan-gated feature in name order.
func TierFeatures() []string {
	return slices.Sorted(maps.Keys(minimumPlan))
}

// IsBlocked reports whether feature is unavailable on plan with usage.
// Unknown features are never blocked.
func IsBlocked(plan id.Plan, usage Usage, feature string) bool {
	limits := Features(plan).Limits
	switch feature {
	case FeatureAPICalls:
		return reached(usage.APICalls, limits.APICalls)
	case FeatureMCPAgents:
		return reached(usage.MCPAgents, limits.MCPAgents)
	case FeatureWhatsApp:
		return reached(usage.WhatsAppMessages, limits.WhatsAppMessages)
	}
	if floor, ok := minimumPlan[feature]; ok {
		return plan.Rank() < floor.Rank()
	}
	return false
}

func reached(used, limit int64) bool {
	return limit != Unlimited && used >= limit
}

// Meter is the progress of one metered counter.
type Meter struct {
	Used       int64   `json:"used"`
	Limit      int64   `json:"limit"`
	Percentage float64 `json:"percentage"`
}

// Progress reports every meter against the plan's limits.
type Progress struct {
	APICalls         Meter `json:"apiCalls"`
	MCPAgents        Meter `json:"mcpAgents"`
	WhatsAppMessages Meter `json:"whatsappMessages"`
}

// ProgressFor computes usage against plan limits. Unlimited meters report 0%.
func ProgressFor(plan id.Plan, usage Usage) Progress {
	limits := Features(plan).Limits
	return Progress{
		APICalls:         meter(usage.APICalls, limits.APICalls),
		MCPAgents:        meter(usage.MCPAgents, limits.MCPAgents),
		WhatsAppMessages: meter(usage.WhatsAppMessages, limits.WhatsAppMessages),
	}
}

func meter(used, limit int64) Meter {
	m := Meter{Used: used, Limit: limit}
	if limit != Unlimited && limit > 0 {
		m.Percentage = float64(used) / float64(limit) * 100
	}
	return m
}

// RecommendedPlan is the cheapest plan whose limits usage does not exceed.
func RecommendedPlan(usage Usage) id.Plan {
	for _, p := range id.Plans {
		l := Features(p).Limits
		if !exceeds(usage.APICalls, l.APICalls) &&
			!exceeds(usage.MCPAgents, l.MCPAgents) &&
			!exceeds(usage.WhatsAppMessages, l.WhatsAppMessages) {
			return p
		}
	}
	return id.PlanScale
}

func exceeds(used, limit int64) bool {
	return limit != Unlimited && used > limit
}

// UnlockingPlan is the cheapest plan above current on which feature is not
// blocked for usage. It reports false when no plan unlocks it.
func UnlockingPlan(current id.Plan, usage Usage, feature string) (id.Plan, bool) {
	for _, p := range id.Plans {
		if p.Rank() <= current.Rank() {
			continue
		}
		if !IsBlocked(p, usage, feature) {
			return p, true
		}
	}
	return "", false
}
