package models

import "strconv"

// TenantFilters narrow GET /admin/tenants. Empty fields are not sent.
type TenantFilters struct {
	Plan     string `json:"plan"`
	Status   string `json:"status"`
	City     string `json:"city"`
	Industry string `json:"industry"`
}

func (f TenantFilters) Query() map[string]string {
	return map[string]string{
		"plan":     f.Plan,
		"status":   f.Status,
		"city":     f.City,
		"industry": f.Industry,
	}
}

// TenantFilterPatch carries a partial filter update; nil fields keep their
// current value and an empty string clears one.
type TenantFilterPatch struct {
	Plan     *string `json:"plan,omitempty"`
	Status   *string `json:"status,omitempty"`
	City     *string `json:"city,omitempty"`
	Industry *string `json:"industry,omitempty"`
}

func (f TenantFilters) Merge(p TenantFilterPatch) TenantFilters {
	setIf(&f.Plan, p.Plan)
	setIf(&f.Status, p.Status)
	setIf(&f.City, p.City)
	setIf(&f.Industry, p.Industry)
	return f
}

// CategoryFilters narrow module and agent listings.
type CategoryFilters struct {
	Category string `json:"category"`
	Status   string `json:"status"`
}

func (f CategoryFilters) Query() map[string]string {
	return map[string]string{
		"category": f.Category,
		"status":   f.Status,
	}
}

type CategoryFilterPatch struct {
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
}

func (f CategoryFilters) Merge(p CategoryFilterPatch) CategoryFilters {
	setIf(&f.Category, p.Category)
	setIf(&f.Status, p.Status)
	return f
}

// Filters is every listing filter the admin console keeps.
type Filters struct {
	Tenants TenantFilters   `json:"tenants"`
	Modules CategoryFilters `json:"modules"`
	Agents  CategoryFilters `json:"agents"`
}

// LogFilters narrow GET /admin/system/logs.
type LogFilters struct {
	Level     string `json:"level"`
	Service   string `json:"service"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Limit     int    `json:"limit"`
}

func (f LogFilters) Query() map[string]string {
	q := map[string]string{
		"level":     f.Level,
		"service":   f.Service,
		"startDate": f.StartDate,
		"endDate":   f.EndDate,
	}
	if f.Limit > 0 {
		q["limit"] = strconv.Itoa(f.Limit)
	}
	return q
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
