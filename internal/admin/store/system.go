package store

import (
	"context"

	"tausepro/internal/admin/models"
)

func (s *Store) FetchSystemConfig(ctx context.Context) error {
	return s.fetch(ctx, ResourceConfig, ErrLoadConfig, func() error {
		cfg, err := s.api.SystemConfig(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.SystemConfig = cfg
		s.mu.Unlock()
		return nil
	})
}

// UpdateSystemConfig sends the patch and merges it into the loaded config.
// Nothing is merged if the config was never fetched.
func (s *Store) UpdateSystemConfig(ctx context.Context, patch models.SystemConfigPatch) error {
	if err := s.mutate(ctx, ResourceConfig, "update", s.api.UpdateSystemConfig(ctx, patch)); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state.SystemConfig != nil {
		patch.Apply(s.state.SystemConfig)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) FetchSystemMetrics(ctx context.Context) error {
	return s.fetch(ctx, ResourceMetrics, ErrLoadMetrics, func() error {
		m, err := s.api.SystemMetrics(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.SystemMetrics = m
		s.mu.Unlock()
		return nil
	})
}
