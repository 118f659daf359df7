package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

// Middleware returns an HTTP middleware that validates the Bearer token on
// every request and stores the authenticated caller address in the request
// context. When the validator is not configured the middleware passes
// requests through unchanged, which is the expected mode for local
// development.
func Middleware(validator *JWTValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil || !validator.IsConfigured() {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Debug("token validation failed", zap.Error(err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			if sub, ok := claims["sub"].(string); ok {
				ctx = WithSubject(ctx, sub)
			}
			if addrStr, ok := claims["address"].(string); ok {
				var addr bridge.Address
				if err := addr.UnmarshalText([]byte(addrStr)); err != nil {
					logger.Debug("invalid address claim", zap.String("address", addrStr), zap.Error(err))
					http.Error(w, "invalid address claim", http.StatusUnauthorized)
					return
				}
				ctx = WithCaller(ctx, addr)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
