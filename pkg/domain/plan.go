package domain

import (
	"strings"

	dErrors "tausepro/pkg/domain-errors"
)

// Plan is a subscription tier. The wire value of the free tier is "gratis".
type Plan string

const (
	PlanGratis  Plan = "gratis"
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
	PlanScale   Plan = "scale"
)

// Plans lists every tier from cheapest to most expensive.
var Plans = []Plan{PlanGratis, PlanStarter, PlanGrowth, PlanScale}

// ParsePlan accepts the four tier names case-insensitively, plus "free" as
// an alias for gratis.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanGratis, PlanStarter, PlanGrowth, PlanScale:
		return p, nil
	case "free":
		return PlanGratis, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown plan: "+s)
	}
}

// Normalize maps unknown or empty plans to gratis, the most restrictive tier.
func (p Plan) Normalize() Plan {
	parsed, err := ParsePlan(string(p))
	if err != nil {
		return PlanGratis
	}
	return parsed
}

// Rank orders tiers: gratis is 0, scale is 3. Unknown plans rank as gratis.
func (p Plan) Rank() int {
	switch p.Normalize() {
	case PlanStarter:
		return 1
	case PlanGrowth:
		return 2
	case PlanScale:
		return 3
	default:
		return 0
	}
}

func (p Plan) String() string {
	return string(p)
}
