package store

import (
	"context"

	"tausepro/internal/admin/models"
	id "tausepro/pkg/domain"
)

func (s *Store) FetchTenants(ctx context.Context) error {
	filters := s.Filters().Tenants
	return s.fetch(ctx, ResourceTenants, ErrLoadTenants, func() error {
		tenants, err := s.api.ListTenants(ctx, filters)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.Tenants = tenants
		s.mu.Unlock()
		return nil
	})
}

func (s *Store) CreateTenant(ctx context.Context, req models.CreateTenantRequest) (*models.Tenant, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tenant, err := s.api.CreateTenant(ctx, req)
	if err := s.mutate(ctx, ResourceTenants, "create", err); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.Tenants = append(s.state.Tenants, *tenant)
	s.mu.Unlock()
	return tenant, nil
}

func (s *Store) UpdateTenant(ctx context.Context, tenantID id.TenantID, patch models.TenantPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := s.mutate(ctx, ResourceTenants, "update", s.api.UpdateTenant(ctx, tenantID, patch)); err != nil {
		return err
	}
	s.updateTenant(tenantID, patch.Apply)
	return nil
}

func (s *Store) DeleteTenant(ctx context.Context, tenantID id.TenantID) error {
	if err := s.mutate(ctx, ResourceTenants, "delete", s.api.DeleteTenant(ctx, tenantID)); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Tenants = deleteByID(s.state.Tenants, func(t models.Tenant) bool { return t.ID == tenantID })
	s.mu.Unlock()
	return nil
}

func (s *Store) SuspendTenant(ctx context.Context, tenantID id.TenantID, reason string) error {
	req := models.SuspendRequest{Reason: reason}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.mutate(ctx, ResourceTenants, "suspend", s.api.SuspendTenant(ctx, tenantID, req.Reason)); err != nil {
		return err
	}
	s.updateTenant(tenantID, func(t *models.Tenant) { t.Status = models.TenantSuspended })
	return nil
}

func (s *Store) ActivateTenant(ctx context.Context, tenantID id.TenantID) error {
	if err := s.mutate(ctx, ResourceTenants, "activate", s.api.ActivateTenant(ctx, tenantID)); err != nil {
		return err
	}
	s.updateTenant(tenantID, func(t *models.Tenant) { t.Status = models.TenantActive })
	return nil
}

func (s *Store) ChangeTenantPlan(ctx context.Context, tenantID id.TenantID, plan id.Plan) error {
	req := models.ChangePlanRequest{Plan: plan}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.mutate(ctx, ResourceTenants, "change_plan", s.api.ChangeTenantPlan(ctx, tenantID, req.Plan)); err != nil {
		return err
	}
	s.updateTenant(tenantID, func(t *models.Tenant) { t.Plan = req.Plan.Normalize() })
	return nil
}

func (s *Store) updateTenant(tenantID id.TenantID, fn func(*models.Tenant)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Tenants {
		if s.state.Tenants[i].ID == tenantID {
			fn(&s.state.Tenants[i])
		}
	}
}

// TenantsByPlan counts the loaded tenants per plan.
func (s *Store) TenantsByPlan() map[id.Plan]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[id.Plan]int)
	for _, t := range s.state.Tenants {
		counts[t.Plan]++
	}
	return counts
}

// TenantsByStatus counts the loaded tenants per status.
func (s *Store) TenantsByStatus() map[models.TenantStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.TenantStatus]int)
	for _, t := range s.state.Tenants {
		counts[t.Status]++
	}
	return counts
}

func deleteByID[T any](items []T, match func(T) bool) []T {
	out := items[:0:0]
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}
