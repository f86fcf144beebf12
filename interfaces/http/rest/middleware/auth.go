package middleware

import (
	"errors"
	"net/http"
	"strings"

	"ccivisits-backend/pkg/auth"
	"ccivisits-backend/pkg/common"
	"go.uber.org/zap"
)

// Authenticate creates an authentication middleware. Requests arriving
// through the Lambda adapter carry pre-validated identity headers from
// the API Gateway JWT authorizer; anything else is validated locally.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(100)     // per minute per IP
	userLimiter := auth.NewUserRateLimiter(200) // per minute per user

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)
			allowed, _ := ipLimiter.Allow(r.Context(), clientIP)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			userCtx, err := resolveUser(r, validator)
			if err != nil {
				logger.Warn("authentication failed",
					zap.Error(err),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path))
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					respondUnauthorized(w, "Token has expired")
				case errors.Is(err, auth.ErrInvalidSignature):
					respondUnauthorized(w, "Invalid token signature")
				case errors.Is(err, auth.ErrMissingToken):
					respondUnauthorized(w, "Missing authentication token")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}

			allowed, _ = userLimiter.Allow(r.Context(), userCtx.UserID)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), userCtx)
			ctx = common.WithUserID(ctx, userCtx.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose authenticated user lacks the role.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				respondUnauthorized(w, "Not authenticated")
				return
			}
			if !user.HasRole(role) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveUser(r *http.Request, validator *auth.JWTValidator) (*auth.UserContext, error) {
	// Pre-authorized by the API Gateway JWT authorizer.
	if r.Header.Get("X-API-Gateway-Authorized") == "true" {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			return nil, auth.ErrInvalidClaims
		}
		roles := []string{"authenticated"}
		if raw := r.Header.Get("X-User-Roles"); raw != "" {
			roles = strings.Split(raw, ",")
		}
		return &auth.UserContext{
			UserID: userID,
			Email:  r.Header.Get("X-User-Email"),
			Roles:  roles,
		}, nil
	}

	token := extractToken(r)
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &auth.UserContext{
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}

// extractToken pulls the bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		authHeader = r.Header.Get("authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// getClientIP extracts the client IP honoring proxy headers.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, message)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	code := common.StandardErrorCodes.InternalError
	switch status {
	case http.StatusForbidden:
		code = common.StandardErrorCodes.Forbidden
	case http.StatusTooManyRequests:
		code = common.StandardErrorCodes.TooManyRequests
	}
	common.RespondError(w, status, code, message)
}
