package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/financial-analyst/internal"
	scoped "github.com/frahmantamala/financial-analyst/pkg/logger"
	"github.com/go-chi/chi"
)

// CompanyAccessChecker answers whether a grant row exists for the pair.
type CompanyAccessChecker interface {
	HasAccess(ctx context.Context, userID, companyID int64) (bool, error)
}

// RequireCompanyAccess rejects requests for a company the caller holds no
// grant for, before the handler decodes anything. It must run after the auth
// middleware.
func RequireCompanyAccess(checker CompanyAccessChecker, param string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrInvalidToken)
				return
			}

			companyID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || companyID <= 0 {
				writeAppError(w, internal.NewValidationError("invalid "+param, internal.ErrCodeInvalidID))
				return
			}

			allowed, err := checker.HasAccess(r.Context(), user.ID, companyID)
			if err != nil {
				scoped.Scoped(r.Context(), logger).Error("company access check failed", "user_id", user.ID, "company_id", companyID, "error", err)
				writeAppError(w, internal.NewInternalError("failed to check company access", err))
				return
			}
			if !allowed {
				scoped.Scoped(r.Context(), logger).Warn("access denied: no grant for company",
					"user_id", user.ID,
					"role", user.Role,
					"company_id", companyID)
				writeAppError(w, internal.ErrCompanyForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
