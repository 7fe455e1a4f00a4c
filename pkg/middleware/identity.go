package middleware

import (
	"net/http"

	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIdentity trusts the X-User-ID header set by the platform's auth gateway.
// Authentication itself happens upstream; this service only needs the identity.
func UserIdentity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("X-User-ID")
			if header == "" {
				utils.ResponseUnauthorized(w, "Missing user identity")
				return
			}

			userID, err := uuid.Parse(header)
			if err != nil {
				logger.Warn("Malformed user identity header",
					zap.String("value", header),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid user identity")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BranchIdentity trusts the X-Branch-ID header for branch-scoped routes.
func BranchIdentity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("X-Branch-ID")
			if header == "" {
				utils.ResponseUnauthorized(w, "Missing branch identity")
				return
			}

			branchID, err := uuid.Parse(header)
			if err != nil {
				logger.Warn("Malformed branch identity header",
					zap.String("value", header),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid branch identity")
				return
			}

			ctx := utils.SetBranchContext(r.Context(), branchID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
