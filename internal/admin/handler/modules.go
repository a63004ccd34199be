package handler

import (
	"net/http"

	"tausepro/internal/admin/models"
	"tausepro/pkg/platform/httputil"
)

// HandleListModules lists modules; ?active=true narrows to enabled ones.
func (h *Handler) HandleListModules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	s.SetModuleFilters(ctx, models.CategoryFilterPatch{
		Category: queryPatch(r, "category"),
		Status:   queryPatch(r, "status"),
	})
	if err := s.FetchModules(ctx); err != nil {
		h.fetchFailed(ctx, w, err, s.State().Errors.Modules)
		return
	}
	st := s.State()
	items := st.Modules
	if r.URL.Query().Get("active") == "true" {
		items = s.ActiveModules()
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse[models.Module]{Items: items, Filters: st.Filters.Modules})
}

func (h *Handler) HandleGetModule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	moduleID, ok := moduleParam(w, r)
	if !ok {
		return
	}

	m, err := s.Client().GetModule(ctx, moduleID)
	if err != nil {
		h.fail(ctx, w, "get module failed", err, "module_id", moduleID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) HandleUpdateModule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	moduleID, ok := moduleParam(w, r)
	if !ok {
		return
	}
	patch, ok := httputil.DecodeAndPrepare[models.ModulePatch](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.UpdateModule(ctx, moduleID, *patch); err != nil {
		h.fail(ctx, w, "update module failed", err, "module_id", moduleID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleToggleModule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	moduleID, ok := moduleParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[models.ToggleModuleRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.ToggleModule(ctx, moduleID, req.Enabled); err != nil {
		h.fail(ctx, w, "toggle module failed", err, "module_id", moduleID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleModuleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	moduleID, ok := moduleParam(w, r)
	if !ok {
		return
	}

	usage, err := s.Client().ModuleMetrics(ctx, moduleID)
	if err != nil {
		h.fail(ctx, w, "module metrics failed", err, "module_id", moduleID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, usage)
}

func (h *Handler) HandleUpdateModuleConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	moduleID, ok := moduleParam(w, r)
	if !ok {
		return
	}
	patch, ok := httputil.DecodeJSON[models.ModuleConfigPatch](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.UpdateModuleConfig(ctx, moduleID, *patch); err != nil {
		h.fail(ctx, w, "update module config failed", err, "module_id", moduleID)
		return
	}
	writeNoContent(w)
}
