package store

import (
	"context"

	"tausepro/internal/admin/models"
	id "tausepro/pkg/domain"
)

func (s *Store) FetchModules(ctx context.Context) error {
	filters := s.Filters().Modules
	return s.fetch(ctx, ResourceModules, ErrLoadModules, func() error {
		modules, err := s.api.ListModules(ctx, filters)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.Modules = modules
		s.mu.Unlock()
		return nil
	})
}

func (s *Store) UpdateModule(ctx context.Context, moduleID id.ModuleID, patch models.ModulePatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := s.mutate(ctx, ResourceModules, "update", s.api.UpdateModule(ctx, moduleID, patch)); err != nil {
		return err
	}
	s.updateModule(moduleID, patch.Apply)
	return nil
}

func (s *Store) ToggleModule(ctx context.Context, moduleID id.ModuleID, enabled bool) error {
	if err := s.mutate(ctx, ResourceModules, "toggle", s.api.ToggleModule(ctx, moduleID, enabled)); err != nil {
		return err
	}
	s.updateModule(moduleID, func(m *models.Module) { m.Config.IsEnabled = enabled })
	return nil
}

func (s *Store) UpdateModuleConfig(ctx context.Context, moduleID id.ModuleID, patch models.ModuleConfigPatch) error {
	if err := s.mutate(ctx, ResourceModules, "update_config", s.api.UpdateModuleConfig(ctx, moduleID, patch)); err != nil {
		return err
	}
	s.updateModule(moduleID, func(m *models.Module) { patch.Apply(&m.Config) })
	return nil
}

func (s *Store) updateModule(moduleID id.ModuleID, fn func(*models.Module)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Modules {
		if s.state.Modules[i].ID == moduleID {
			fn(&s.state.Modules[i])
		}
	}
}

// ActiveModules returns the loaded modules with config.isEnabled set.
func (s *Store) ActiveModules() []models.Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Module
	for _, m := range s.state.Modules {
		if m.Config.IsEnabled {
			out = append(out, m)
		}
	}
	return out
}
