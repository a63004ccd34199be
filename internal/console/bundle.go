// Package console keeps the live per-visitor state of the BFF: one Bundle per
// session cookie, holding the client and admin auth sessions and the stores
// that talk to the API as them.
package console

import (
	"context"
	"log/slog"

	adminstore "tausepro/internal/admin/store"
	"tausepro/internal/auth"
	"tausepro/internal/paywall"
	"tausepro/internal/pyme"
	id "tausepro/pkg/domain"
	"tausepro/pkg/requestcontext"
)

// Bundle is everything the console knows about one visitor.
type Bundle struct {
	ID      id.SessionID
	Client  *auth.Session
	Admin   *auth.Session
	Paywall *paywall.Store
	Store   *adminstore.Store
	Pyme    *pyme.Client

	logger *slog.Logger
}

// LoginClient signs the visitor into the client console and aligns the
// paywall with the tenant's plan. A failed usage refresh is logged only.
func (b *Bundle) LoginClient(ctx context.Context, email, password string) error {
	if err := b.Client.Login(ctx, email, password); err != nil {
		return err
	}
	b.syncPlan()
	if err := b.Paywall.RefreshUsage(ctx); err != nil {
		b.logger.WarnContext(ctx, "usage refresh after login failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return nil
}

// LogoutClient ends the client session. The paywall drops back to gratis
// through the session's clear hook.
func (b *Bundle) LogoutClient(ctx context.Context) {
	b.Client.Logout(ctx)
}

// LoginAdmin signs the visitor into the admin console and records the
// operator on the admin store.
func (b *Bundle) LoginAdmin(ctx context.Context, email, password string) error {
	if err := b.Admin.Login(ctx, email, password); err != nil {
		return err
	}
	b.Store.SetCurrentUser(ctx, b.Admin.State().User)
	return nil
}

// LogoutAdmin ends the admin session; the clear hook resets the admin store.
func (b *Bundle) LogoutAdmin(ctx context.Context) {
	b.Admin.Logout(ctx)
}

// revalidate checks restored sessions against the API: each realm holding a
// token reloads its profile, and a signed-in client reloads usage so limits
// apply from the first request. Failures are logged; a failed profile reload
// has already logged that realm out.
func (b *Bundle) revalidate(ctx context.Context) {
	if b.Client.Token() != "" {
		if err := b.Client.RefreshUser(ctx); err != nil {
			b.logger.InfoContext(ctx, "restored client session rejected",
				"session_id", b.ID,
				"error", err,
			)
		}
	}
	if b.Client.State().IsAuthenticated {
		b.syncPlan()
		if err := b.Paywall.RefreshUsage(ctx); err != nil {
			b.logger.WarnContext(ctx, "usage refresh after restore failed",
				"session_id", b.ID,
				"error", err,
			)
		}
	}

	if b.Admin.Token() != "" {
		if err := b.Admin.RefreshUser(ctx); err != nil {
			b.logger.InfoContext(ctx, "restored admin session rejected",
				"session_id", b.ID,
				"error", err,
			)
			return
		}
		b.Store.SetCurrentUser(ctx, b.Admin.State().User)
	}
}

// syncPlan copies the tenant plan onto the paywall when a tenant is known.
func (b *Bundle) syncPlan() {
	if t := b.Client.State().Tenant; t != nil {
		b.Paywall.SetPlan(t.Plan)
	}
}

type bundleKey struct{}

// WithBundle attaches the visitor's bundle to ctx.
func WithBundle(ctx context.Context, b *Bundle) context.Context {
	return context.WithValue(ctx, bundleKey{}, b)
}

// BundleFrom returns the bundle attached by the session middleware.
func BundleFrom(ctx context.Context) (*Bundle, bool) {
	b, ok := ctx.Value(bundleKey{}).(*Bundle)
	return b, ok && b != nil
}
