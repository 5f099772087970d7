package middleware

import (
	"net/http"

	"dukan-pos/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin gates back-office endpoints to the admin role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{domain.RoleAdmin}, logger)
}

// RequireRole ensures the caller holds one of the allowed roles
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Role not authorized for endpoint",
				zap.String("role", role),
				zap.String("path", r.URL.Path),
			)
			respondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
