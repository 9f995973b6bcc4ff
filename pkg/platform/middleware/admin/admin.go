// Package admin guards the administrative surface with a shared token.
package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"examreg/pkg/platform/audit"
	"examreg/pkg/platform/httputil"
	"examreg/pkg/requestcontext"
)

const HeaderAdminToken = "X-Admin-Token"

// SecurityPublisher receives admin_auth_failed events.
type SecurityPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RequireAdminToken rejects requests whose X-Admin-Token does not match
// expectedToken. An empty expectedToken rejects everything. Accepted requests
// carry the "admin" actor for audit events.
func RequireAdminToken(expectedToken string, security SecurityPublisher, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(HeaderAdminToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
				)
				if security != nil {
					err := security.Emit(ctx, audit.Event{
						Category:  audit.CategorySecurity,
						Timestamp: time.Now(),
						Subject:   "admin",
						Action:    string(audit.EventAdminAuthFailed),
						RequestID: requestcontext.RequestID(ctx),
						Detail:    map[string]string{"client_ip": requestcontext.ClientIP(ctx)},
					})
					if err != nil {
						logger.WarnContext(ctx, "failed to emit security audit event", "error", err)
					}
				}
				httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "admin token required",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, "admin")))
		})
	}
}
