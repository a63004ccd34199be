package httptransport

import (
	"net/http"

	"tausepro/internal/auth/models"
	"tausepro/internal/paywall"
	"tausepro/internal/pyme"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/httputil"
	"tausepro/pkg/requestcontext"
)

// SessionResponse is the auth state returned by login and view endpoints.
type SessionResponse struct {
	IsAuthenticated bool           `json:"isAuthenticated"`
	IsLoading       bool           `json:"isLoading"`
	User            *models.User   `json:"user,omitempty"`
	Tenant          *models.Tenant `json:"tenant,omitempty"`
	Device          string         `json:"device,omitempty"`
}

func sessionResponse(st models.State) SessionResponse {
	return SessionResponse{
		IsAuthenticated: st.IsAuthenticated,
		IsLoading:       st.IsLoading,
		User:            st.User,
		Tenant:          st.Tenant,
		Device:          st.Device,
	}
}

type DashboardView struct {
	Dashboard *pyme.Dashboard  `json:"dashboard"`
	Paywall   paywall.Snapshot `json:"paywall"`
}

type AnalyticsView struct {
	Plan     id.Plan          `json:"plan"`
	Usage    paywall.Usage    `json:"usage"`
	Progress paywall.Progress `json:"progress"`
}

// AgentsView is what the agents page needs to offer or block agent creation.
type AgentsView struct {
	Agents    paywall.Meter `json:"agents"`
	CanCreate bool          `json:"canCreate"`
	UpgradeTo id.Plan       `json:"upgradeTo,omitempty"`
}

type SettingsView struct {
	User     *models.User         `json:"user"`
	Tenant   *models.Tenant       `json:"tenant,omitempty"`
	Plan     paywall.PlanFeatures `json:"plan"`
	Features map[string]bool      `json:"features"`
}

type upgradeRequest struct {
	Plan string `json:"plan"`
}

func (h *Handler) handleLoginView(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(b.Client.State()))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[models.LoginRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := b.LoginClient(r.Context(), req.Email, req.Password); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(b.Client.State()))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	b.LogoutClient(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	dash, err := b.Pyme.GetDashboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DashboardView{Dashboard: dash, Paywall: b.Paywall.Snapshot()})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	snap := b.Paywall.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, AnalyticsView{Plan: snap.Plan, Usage: snap.Usage, Progress: snap.Progress})
}

func (h *Handler) handleAgents(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view := AgentsView{
		Agents:    b.Paywall.Progress().MCPAgents,
		CanCreate: b.Paywall.Access(paywall.FeatureMCPAgents)[paywall.FeatureMCPAgents],
	}
	if !view.CanCreate {
		view.UpgradeTo, _ = paywall.UnlockingPlan(b.Paywall.Plan(), b.Paywall.Usage(), paywall.FeatureMCPAgents)
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	st := b.Client.State()
	features := b.Paywall.Access(paywall.TierFeatures()...)
	httputil.WriteJSON(w, http.StatusOK, SettingsView{
		User:     st.User,
		Tenant:   st.Tenant,
		Plan:     b.Paywall.PlanInfo(),
		Features: features,
	})
}

func (h *Handler) handlePaywall(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b.Paywall.Snapshot())
}

func (h *Handler) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[upgradeRequest](w, r, h.logger)
	if !ok {
		return
	}
	plan, err := id.ParsePlan(req.Plan)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "unknown plan"))
		return
	}
	if err := b.Paywall.Upgrade(r.Context(), plan); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b.Paywall.Snapshot())
}
