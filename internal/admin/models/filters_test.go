package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantFiltersMerge(t *testing.T) {
	f := TenantFilters{Plan: "starter", City: "Medellín"}

	f = f.Merge(TenantFilterPatch{Status: ptr("active")})
	assert.Equal(t, TenantFilters{Plan: "starter", Status: "active", City: "Medellín"}, f)

	f = f.Merge(TenantFilterPatch{City: ptr("")})
	assert.Equal(t, "", f.City, "empty string clears a filter")
	assert.Equal(t, "starter", f.Plan)
}

func TestCategoryFiltersMerge(t *testing.T) {
	f := CategoryFilters{}.Merge(CategoryFilterPatch{Category: ptr("core")})
	assert.Equal(t, CategoryFilters{Category: "core"}, f)
	assert.Equal(t, map[string]string{"category": "core", "status": ""}, f.Query())
}

func TestLogFiltersQuery(t *testing.T) {
	q := LogFilters{Level: "error", Limit: 50}.Query()
	assert.Equal(t, "error", q["level"])
	assert.Equal(t, "50", q["limit"])

	_, ok := LogFilters{}.Query()["limit"]
	assert.False(t, ok)
}
