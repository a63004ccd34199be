package paywall

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	id "tausepro/pkg/domain"
)

func TestIsBlockedMetered(t *testing.T) {
	tests := []struct {
		name    string
		plan    id.Plan
		usage   Usage
		feature string
		blocked bool
	}{
		{"gratis below api limit", id.PlanGratis, Usage{APICalls: 99}, FeatureAPICalls, false},
		{"gratis at api limit", id.PlanGratis, Usage{APICalls: 100}, FeatureAPICalls, true},
		{"gratis at agent limit", id.PlanGratis, Usage{MCPAgents: 3}, FeatureMCPAgents, true},
		{"gratis at whatsapp limit", id.PlanGratis, Usage{WhatsAppMessages: 50}, FeatureWhatsApp, true},
		{"starter below whatsapp limit", id.PlanStarter, Usage{WhatsAppMessages: 999}, FeatureWhatsApp, false},
		{"growth over agent limit", id.PlanGrowth, Usage{MCPAgents: 51}, FeatureMCPAgents, true},
		{"scale never blocks", id.PlanScale, Usage{APICalls: 1_000_000}, FeatureAPICalls, false},
		{"unknown plan is gratis", id.Plan("enterprise"), Usage{APICalls: 100}, FeatureAPICalls, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blocked, IsBlocked(tt.plan, tt.usage, tt.feature))
		})
	}
}

func TestIsBlockedTiers(t *testing.T) {
	// blocked[i] is the answer for id.Plans[i]: gratis, starter, growth, scale.
	tests := map[string][4]bool{
		FeatureAnalytics:           {true, false, false, false},
		FeatureAPIAccess:           {true, false, false, false},
		FeaturePSEIntegration:      {true, false, false, false},
		FeatureShippingIntegration: {true, false, false, false},
		FeatureMultiUser:           {true, true, false, false},
		FeatureWebhooks:            {true, true, false, false},
		FeatureDIANFull:            {true, true, false, false},
		FeatureDataExport:          {true, true, false, false},
		FeatureWhiteLabel:          {true, true, true, false},
		FeaturePhoneSupport:        {true, true, true, false},
		FeatureSLAUptime:           {true, true, true, false},
		"holographic_receipts":     {false, false, false, false},
	}
	for feature, blocked := range tests {
		for i, plan := range id.Plans {
			assert.Equal(t, blocked[i], IsBlocked(plan, Usage{}, feature), "%s on %s", feature, plan)
		}
	}
}

func TestProgressFor(t *testing.T) {
	p := ProgressFor(id.PlanStarter, Usage{APICalls: 2500, MCPAgents: 10, WhatsAppMessages: 0})
	assert.Equal(t, Meter{Used: 2500, Limit: 5000, Percentage: 50}, p.APICalls)
	assert.Equal(t, Meter{Used: 10, Limit: 10, Percentage: 100}, p.MCPAgents)
	assert.Zero(t, p.WhatsAppMessages.Percentage)

	unlimited := ProgressFor(id.PlanScale, Usage{APICalls: 90000})
	assert.Equal(t, Unlimited, unlimited.APICalls.Limit)
	assert.Zero(t, unlimited.APICalls.Percentage)
}

func TestRecommendedPlan(t *testing.T) {
	tests := []struct {
		name  string
		usage Usage
		want  id.Plan
	}{
		{"idle tenant", Usage{}, id.PlanGratis},
		{"exactly at gratis limits", Usage{APICalls: 100, MCPAgents: 3, WhatsAppMessages: 50}, id.PlanGratis},
		{"one call over gratis", Usage{APICalls: 101}, id.PlanStarter},
		{"too many agents for starter", Usage{MCPAgents: 11}, id.PlanGrowth},
		{"whatsapp over growth", Usage{WhatsAppMessages: 5001}, id.PlanScale},
		{"exactly at starter calls", Usage{APICalls: 5000}, id.PlanStarter},
		{"one call over starter", Usage{APICalls: 5001}, id.PlanGrowth},
		{"one call over growth", Usage{APICalls: 25001}, id.PlanScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecommendedPlan(tt.usage))
		})
	}
}

func TestCatalog(t *testing.T) {
	plans := Catalog()
	assert.Len(t, plans, 4)
	assert.Equal(t, id.PlanGratis, plans[0].Plan)
	assert.Equal(t, int64(49900), plans[1].Price)
	assert.True(t, plans[1].IsPopular)
	assert.False(t, plans[2].IsPopular)

	f := Features(id.PlanGrowth)
	f.Features[0] = "mutated"
	assert.NotEqual(t, "mutated", Features(id.PlanGrowth).Features[0], "callers get a copy")

	floor, ok := MinimumPlan(FeatureWebhooks)
	assert.True(t, ok)
	assert.Equal(t, id.PlanGrowth, floor)
	_, ok = MinimumPlan(FeatureAPICalls)
	assert.False(t, ok)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "Gratis", FormatPrice(0))

	got := FormatPrice(49900)
	assert.True(t, len(got) > 0 && got[0] == '$', "got %q", got)
	assert.Contains(t, got, "49.900")
	assert.Contains(t, FormatPrice(149900), "149.900")
	assert.Contains(t, FormatPrice(499900), "499.900")
	assert.Equal(t, "COP", peso.String())
}

func TestTierFeatures(t *testing.T) {
	features := TierFeatures()
	assert.Len(t, features, 11)
	assert.True(t, slices.IsSorted(features))
	assert.Contains(t, features, FeatureAnalytics)
	assert.NotContains(t, features, FeatureAPICalls)
}

func TestUnlockingPlan(t *testing.T) {
	full := Usage{MCPAgents: 3}

	p, ok := UnlockingPlan(id.PlanGratis, full, FeatureMCPAgents)
	assert.True(t, ok)
	assert.Equal(t, id.PlanStarter, p)

	p, ok = UnlockingPlan(id.PlanGratis, Usage{}, FeatureMultiUser)
	assert.True(t, ok)
	assert.Equal(t, id.PlanGrowth, p)

	_, ok = UnlockingPlan(id.PlanScale, full, FeatureMCPAgents)
	assert.False(t, ok)
}
