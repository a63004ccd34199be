package handler

import (
	"net/http"

	"tausepro/internal/admin/models"
	"tausepro/pkg/platform/httputil"
)

// ListResponse wraps a listing with the filters it was loaded with.
type ListResponse[T any] struct {
	Items   []T `json:"items"`
	Filters any `json:"filters"`
}

// HandleListTenants merges any filter present in the query into the stored
// filters, then refetches.
func (h *Handler) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	s.SetTenantFilters(ctx, models.TenantFilterPatch{
		Plan:     queryPatch(r, "plan"),
		Status:   queryPatch(r, "status"),
		City:     queryPatch(r, "city"),
		Industry: queryPatch(r, "industry"),
	})
	if err := s.FetchTenants(ctx); err != nil {
		h.fetchFailed(ctx, w, err, s.State().Errors.Tenants)
		return
	}
	st := s.State()
	httputil.WriteJSON(w, http.StatusOK, &ListResponse[models.Tenant]{Items: st.Tenants, Filters: st.Filters.Tenants})
}

func (h *Handler) HandleCreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.CreateTenantRequest](w, r, h.logger)
	if !ok {
		return
	}

	tenant, err := s.CreateTenant(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "create tenant failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tenant)
}

func (h *Handler) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "id")
	if !ok {
		return
	}

	tenant, err := s.Client().GetTenant(ctx, tenantID)
	if err != nil {
		h.fail(ctx, w, "get tenant failed", err, "tenant_id", tenantID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tenant)
}

func (h *Handler) HandleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "id")
	if !ok {
		return
	}
	patch, ok := httputil.DecodeAndPrepare[models.TenantPatch](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.UpdateTenant(ctx, tenantID, *patch); err != nil {
		h.fail(ctx, w, "update tenant failed", err, "tenant_id", tenantID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.DeleteTenant(ctx, tenantID); err != nil {
		h.fail(ctx, w, "delete tenant failed", err, "tenant_id", tenantID)
		return
	}
	writeNoContent(w)
}

// HandleSuspendTenant accepts an optional {"reason": "..."} body.
func (h *Handler) HandleSuspendTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "id")
	if !ok {
		return
	}
	var reason string
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[models.SuspendRequest](w, r, h.logger)
		if !ok {
			return
		}
		reason = req.Reason
	}

	if err := s.SuspendTenant(ctx, tenantID, reason); err != nil {
		h.fail(ctx, w, "suspend tenant failed", err, "tenant_id", tenantID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleActivateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.ActivateTenant(ctx, tenantID); err != nil {
		h.fail(ctx, w, "activate tenant failed", err, "tenant_id", tenantID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleTenantMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "id")
	if !ok {
		return
	}

	m, err := s.Client().TenantMetrics(ctx, tenantID)
	if err != nil {
		h.fail(ctx, w, "tenant metrics failed", err, "tenant_id", tenantID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) HandleChangeTenantPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	tenantID, ok := tenantParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ChangePlanRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.ChangeTenantPlan(ctx, tenantID, req.Plan); err != nil {
		h.fail(ctx, w, "change tenant plan failed", err, "tenant_id", tenantID, "plan", req.Plan)
		return
	}
	writeNoContent(w)
}
