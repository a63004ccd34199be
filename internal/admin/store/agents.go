package store

import (
	"context"
	"slices"

	"tausepro/internal/admin/models"
	id "tausepro/pkg/domain"
)

func (s *Store) FetchAgents(ctx context.Context) error {
	filters := s.Filters().Agents
	return s.fetch(ctx, ResourceAgents, ErrLoadAgents, func() error {
		agents, err := s.api.ListAgents(ctx, filters)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.Agents = agents
		s.mu.Unlock()
		return nil
	})
}

func (s *Store) CreateAgent(ctx context.Context, req models.CreateAgentRequest) (*models.Agent, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	agent, err := s.api.CreateAgent(ctx, req)
	if err := s.mutate(ctx, ResourceAgents, "create", err); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.state.Agents = append(s.state.Agents, *agent)
	s.mu.Unlock()
	return agent, nil
}

func (s *Store) UpdateAgent(ctx context.Context, agentID id.AgentID, patch models.AgentPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := s.mutate(ctx, ResourceAgents, "update", s.api.UpdateAgent(ctx, agentID, patch)); err != nil {
		return err
	}
	s.updateAgent(agentID, patch.Apply)
	return nil
}

func (s *Store) DeleteAgent(ctx context.Context, agentID id.AgentID) error {
	if err := s.mutate(ctx, ResourceAgents, "delete", s.api.DeleteAgent(ctx, agentID)); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Agents = deleteByID(s.state.Agents, func(a models.Agent) bool { return a.ID == agentID })
	s.mu.Unlock()
	return nil
}

// AssignAgent adds the tenant to the agent's assigned and active lists.
func (s *Store) AssignAgent(ctx context.Context, agentID id.AgentID, tenantID id.TenantID) error {
	req := models.AssignAgentRequest{TenantID: tenantID}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.mutate(ctx, ResourceAgents, "assign", s.api.AssignAgent(ctx, agentID, tenantID)); err != nil {
		return err
	}
	s.updateAgent(agentID, func(a *models.Agent) {
		a.Tenants.Assigned = append(slices.Clone(a.Tenants.Assigned), tenantID)
		a.Tenants.Active = append(slices.Clone(a.Tenants.Active), tenantID)
	})
	return nil
}

// UnassignAgent removes the tenant from both lists.
func (s *Store) UnassignAgent(ctx context.Context, agentID id.AgentID, tenantID id.TenantID) error {
	if err := s.mutate(ctx, ResourceAgents, "unassign", s.api.UnassignAgent(ctx, agentID, tenantID)); err != nil {
		return err
	}
	isTenant := func(t id.TenantID) bool { return t == tenantID }
	s.updateAgent(agentID, func(a *models.Agent) {
		a.Tenants.Assigned = deleteByID(a.Tenants.Assigned, isTenant)
		a.Tenants.Active = deleteByID(a.Tenants.Active, isTenant)
	})
	return nil
}

func (s *Store) updateAgent(agentID id.AgentID, fn func(*models.Agent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Agents {
		if s.state.Agents[i].ID == agentID {
			fn(&s.state.Agents[i])
		}
	}
}

// ActiveAgents returns the loaded agents with status active.
func (s *Store) ActiveAgents() []models.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Agent
	for _, a := range s.state.Agents {
		if a.Status == models.AgentActive {
			out = append(out, a)
		}
	}
	return out
}
