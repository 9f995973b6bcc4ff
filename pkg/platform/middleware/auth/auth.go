// Package auth authenticates applicants by bearer token.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "examreg/pkg/domain"
	"examreg/pkg/platform/audit"
	"examreg/pkg/platform/httputil"
	"examreg/pkg/requestcontext"
)

// Claims are the validated identity carried by an applicant token.
type Claims struct {
	AccountID id.AccountID
	Email     string
	Name      string
}

type JWTValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// AccountEnsurer creates the account row the first time a token is seen.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, accountID id.AccountID, email, name string) error
}

// SecurityPublisher receives rejected-credential events. Emission is best
// effort and never blocks the response.
type SecurityPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RequireBearer validates the Authorization header and stores the account id
// and actor in the request context. accounts and security may be nil.
func RequireBearer(validator JWTValidator, accounts AccountEnsurer, security SecurityPublisher, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				reject(ctx, w, security, logger, "missing token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				reject(ctx, w, security, logger, "invalid token")
				return
			}

			ctx = requestcontext.WithAccountID(ctx, claims.AccountID)
			ctx = requestcontext.WithActor(ctx, "account:"+claims.AccountID.String())

			if accounts != nil {
				if err := accounts.EnsureAccount(ctx, claims.AccountID, claims.Email, claims.Name); err != nil {
					httputil.WriteError(w, err)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(ctx context.Context, w http.ResponseWriter, security SecurityPublisher, logger *slog.Logger, reason string) {
	if security != nil {
		err := security.Emit(ctx, audit.Event{
			Category:  audit.CategorySecurity,
			Timestamp: time.Now(),
			Subject:   "bearer",
			Action:    string(audit.EventBearerAuthFailed),
			RequestID: requestcontext.RequestID(ctx),
			Detail: map[string]string{
				"reason":    reason,
				"client_ip": requestcontext.ClientIP(ctx),
			},
		})
		if err != nil {
			logger.WarnContext(ctx, "failed to emit security audit event", "error", err)
		}
	}
	httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthorized",
		"error_description": "Missing or invalid Authorization header",
	})
}
