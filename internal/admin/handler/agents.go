package handler

import (
	"net/http"

	"tausepro/internal/admin/models"
	"tausepro/pkg/platform/httputil"
)

// HandleListAgents lists agents; ?active=true narrows to active ones.
func (h *Handler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	s.SetAgentFilters(ctx, models.CategoryFilterPatch{
		Category: queryPatch(r, "category"),
		Status:   queryPatch(r, "status"),
	})
	if err := s.FetchAgents(ctx); err != nil {
		h.fetchFailed(ctx, w, err, s.State().Errors.Agents)
		return
	}
	st := s.State()
	items := st.Agents
	if r.URL.Query().Get("active") == "true" {
		items = s.ActiveAgents()
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse[models.Agent]{Items: items, Filters: st.Filters.Agents})
}

func (h *Handler) HandleCreateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.CreateAgentRequest](w, r, h.logger)
	if !ok {
		return
	}

	agent, err := s.CreateAgent(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "create agent failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, agent)
}

func (h *Handler) HandleGetAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	agentID, ok := agentParam(w, r)
	if !ok {
		return
	}

	agent, err := s.Client().GetAgent(ctx, agentID)
	if err != nil {
		h.fail(ctx, w, "get agent failed", err, "agent_id", agentID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agent)
}

func (h *Handler) HandleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	agentID, ok := agentParam(w, r)
	if !ok {
		return
	}
	patch, ok := httputil.DecodeAndPrepare[models.AgentPatch](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.UpdateAgent(ctx, agentID, *patch); err != nil {
		h.fail(ctx, w, "update agent failed", err, "agent_id", agentID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	agentID, ok := agentParam(w, r)
	if !ok {
		return
	}

	if err := s.DeleteAgent(ctx, agentID); err != nil {
		h.fail(ctx, w, "delete agent failed", err, "agent_id", agentID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleAssignAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	agentID, ok := agentParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AssignAgentRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.AssignAgent(ctx, agentID, req.TenantID); err != nil {
		h.fail(ctx, w, "assign agent failed", err, "agent_id", agentID, "tenant_id", req.TenantID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleUnassignAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	agentID, ok := agentParam(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "tenantId")
	if !ok {
		return
	}

	if err := s.UnassignAgent(ctx, agentID, tenantID); err != nil {
		h.fail(ctx, w, "unassign agent failed", err, "agent_id", agentID, "tenant_id", tenantID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleAgentMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	agentID, ok := agentParam(w, r)
	if !ok {
		return
	}

	perf, err := s.Client().AgentMetrics(ctx, agentID)
	if err != nil {
		h.fail(ctx, w, "agent metrics failed", err, "agent_id", agentID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perf)
}

func (h *Handler) HandleTestAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	agentID, ok := agentParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AgentTestRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := s.Client().TestAgent(ctx, agentID, req.Message)
	if err != nil {
		h.fail(ctx, w, "test agent failed", err, "agent_id", agentID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
