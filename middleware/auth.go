package middleware

import (
	"context"
	"net/http"
	"strings"

	"loserpool-go/services"
)

// adminContextKey is the key used to store admin claims in request context
type adminContextKey string

const adminKey adminContextKey = "admin"

// AuthMiddleware handles bearer-token authentication for the operator surface
type AuthMiddleware struct {
	authService *services.AuthService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// RequireAdmin rejects requests that don't carry a valid operator token
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) claimsFromRequest(r *http.Request) (*services.AdminClaims, error) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return m.authService.ValidateToken(parts[1])
	}
	return nil, http.ErrNoCookie
}

// AdminFromContext retrieves the validated claims from the request context
func AdminFromContext(r *http.Request) *services.AdminClaims {
	if claims, ok := r.Context().Value(adminKey).(*services.AdminClaims); ok {
		return claims
	}
	return nil
}
