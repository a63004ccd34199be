package guard

import (
	"log/slog"
	"net/http"
	"net/url"

	"tausepro/internal/auth/models"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/httputil"
	"tausepro/pkg/requestcontext"
)

// UpgradeBaseURL is where blocked features send the visitor.
const UpgradeBaseURL = "https://app.tause.pro/billing/upgrade"

// StateFunc reads the auth state for the tree being guarded.
type StateFunc func(r *http.Request) (models.State, error)

// BlockedFunc reports whether the visitor's plan blocks feature.
type BlockedFunc func(r *http.Request, feature string) bool

// routeFeatures maps gated routes to the paywall feature they require.
var routeFeatures = map[string]string{
	"/analytics": "analytics",
}

// FeatureFor returns the feature gating path, if any.
func FeatureFor(path string) (string, bool) {
	f, ok := routeFeatures[cleanPath(path)]
	return f, ok
}

// UpgradeURL builds the billing link for a blocked feature.
func UpgradeURL(feature string) string {
	if feature == "" {
		return UpgradeBaseURL
	}
	return UpgradeBaseURL + "?" + url.Values{"reason": {feature}}.Encode()
}

type loadingResponse struct {
	State string `json:"state"`
}

// Middleware enforces tree decisions. GET requests are redirected with 302;
// other methods get 401 when sent to login and 409 otherwise, with the
// target in Location.
func Middleware(tree Tree, state StateFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			st, err := state(r)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve console session",
					"tree", tree.Name,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			d := tree.Decide(st, r.URL.Path)
			switch d.Action {
			case Allow:
				next.ServeHTTP(w, r)
			case Loading:
				httputil.WriteJSON(w, http.StatusAccepted, loadingResponse{State: Loading.String()})
			case Redirect:
				logger.DebugContext(ctx, "guard redirect",
					"tree", tree.Name,
					"path", r.URL.Path,
					"location", d.Location,
					"request_id", requestcontext.RequestID(ctx),
				)
				redirect(w, r, tree, d.Location)
			}
		})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, tree Tree, location string) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		http.Redirect(w, r, location, http.StatusFound)
		return
	}
	w.Header().Set("Location", location)
	if location == tree.LoginPath {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "login required"))
		return
	}
	httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "already signed in"))
}

// FeatureGate answers 402 for routes whose feature the plan blocks. Routes
// without a feature pass through.
func FeatureGate(blocked BlockedFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			feature, ok := FeatureFor(r.URL.Path)
			if !ok || !blocked(r, feature) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			logger.InfoContext(ctx, "feature blocked by plan",
				"feature", feature,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WritePaymentRequired(w, feature, UpgradeURL(feature))
		})
	}
}
