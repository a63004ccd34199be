package httptransport

import (
	"context"
	"net/http"

	adminhandler "tausepro/internal/admin/handler"
	"tausepro/internal/auth/models"
	"tausepro/internal/console"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/httputil"
)

func (h *Handler) handleAdminLoginView(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(b.Admin.State()))
}

func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[models.LoginRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := b.LoginAdmin(r.Context(), req.Email, req.Password); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse(b.Admin.State()))
}

func (h *Handler) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	b, err := bundle(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	b.LogoutAdmin(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// adminStores resolves the admin store for the admin API handler.
func adminStores(ctx context.Context) (adminhandler.Store, error) {
	b, ok := console.BundleFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "console session missing from context")
	}
	return b.Store, nil
}

func clientState(r *http.Request) (models.State, error) {
	b, err := bundle(r)
	if err != nil {
		return models.State{}, err
	}
	return b.Client.State(), nil
}

func adminState(r *http.Request) (models.State, error) {
	b, err := bundle(r)
	if err != nil {
		return models.State{}, err
	}
	return b.Admin.State(), nil
}

func featureBlocked(r *http.Request, feature string) bool {
	b, ok := console.BundleFrom(r.Context())
	return ok && b.Paywall.IsBlocked(feature)
}
