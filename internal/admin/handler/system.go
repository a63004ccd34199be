package handler

import (
	"net/http"
	"strconv"

	"tausepro/internal/admin/client"
	"tausepro/internal/admin/models"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/httputil"
)

func (h *Handler) HandleGetSystemConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	if err := s.FetchSystemConfig(ctx); err != nil {
		h.fetchFailed(ctx, w, err, s.State().Errors.Config)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.State().SystemConfig)
}

func (h *Handler) HandleUpdateSystemConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	patch, ok := httputil.DecodeJSON[models.SystemConfigPatch](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.UpdateSystemConfig(ctx, *patch); err != nil {
		h.fail(ctx, w, "update system config failed", err)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	if err := s.FetchSystemMetrics(ctx); err != nil {
		h.fetchFailed(ctx, w, err, s.State().Errors.Metrics)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.State().SystemMetrics)
}

func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := models.LogFilters{
		Level:     q.Get("level"),
		Service:   q.Get("service"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		f.Limit = limit
	}

	entries, err := s.Client().Logs(ctx, f)
	if err != nil {
		h.fail(ctx, w, "fetch logs failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ExecuteRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := s.Client().Execute(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "execute command failed", err, "command", req.Command)
		return
	}
	h.logger.InfoContext(ctx, "system command executed", "command", req.Command, "success", res.Success)
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	users, err := s.Client().ListUsers(ctx)
	if err != nil {
		h.fail(ctx, w, "list admin users failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.CreateAdminUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	user, err := s.Client().CreateUser(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "create admin user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	patch, ok := httputil.DecodeAndPrepare[models.AdminUserPatch](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Client().UpdateUser(ctx, userID, *patch); err != nil {
		h.fail(ctx, w, "update admin user failed", err, "user_id", userID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	if err := s.Client().DeleteUser(ctx, userID); err != nil {
		h.fail(ctx, w, "delete admin user failed", err, "user_id", userID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ChangePasswordRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Client().ChangePassword(ctx, userID, req.NewPassword); err != nil {
		h.fail(ctx, w, "change admin password failed", err, "user_id", userID)
		return
	}
	writeNoContent(w)
}

func (h *Handler) HandleReportTenantsByPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	rows, err := s.Client().TenantsByPlan(ctx)
	if err != nil {
		h.fail(ctx, w, "tenants by plan report failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleReportUsageByModule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	period := client.ReportPeriod(r.URL.Query().Get("period"))
	if !period.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "period must be one of [day week month]"))
		return
	}

	rows, err := s.Client().UsageByModule(ctx, period)
	if err != nil {
		h.fail(ctx, w, "usage by module report failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleReportTopAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	rows, err := s.Client().TopAgents(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "top agents report failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleReportGeography(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	report, err := s.Client().Geography(ctx)
	if err != nil {
		h.fail(ctx, w, "geography report failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
