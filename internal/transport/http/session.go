package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"tausepro/internal/console"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/httputil"
	"tausepro/pkg/requestcontext"
)

// SessionCookie names the cookie carrying the console session ID.
const SessionCookie = "tausepro_session"

// Bundles resolves the live console state of a session.
type Bundles interface {
	Get(ctx context.Context, sessionID id.SessionID) (*console.Bundle, error)
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge int // seconds; zero makes it a browser-session cookie
}

// Session reads or issues the session cookie and attaches the visitor's
// bundle to the request context. A missing or malformed cookie starts a
// fresh session.
func Session(bundles Bundles, cookie CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sid, ok := sessionFromCookie(r)
			if !ok {
				sid = id.NewSessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sid.String(),
					Path:     "/",
					MaxAge:   cookie.MaxAge,
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			b, err := bundles.Get(ctx, sid)
			if err != nil {
				logger.ErrorContext(ctx, "failed to load console session",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "session unavailable"))
				return
			}

			ctx = requestcontext.WithSessionID(ctx, sid)
			ctx = console.WithBundle(ctx, b)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromCookie(r *http.Request) (id.SessionID, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return id.SessionID{}, false
	}
	sid, err := id.ParseSessionID(c.Value)
	if err != nil || sid.IsNil() {
		return id.SessionID{}, false
	}
	return sid, true
}

// bundle returns the request's bundle. The Session middleware guarantees one
// on every console route.
func bundle(r *http.Request) (*console.Bundle, error) {
	b, ok := console.BundleFrom(r.Context())
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "console session missing from context")
	}
	return b, nil
}
