package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/errors"
	"github.com/ikkim/bookshelf-backend/pkg/util"
)

// Context keys for identity information
const (
	UserIDKey    = "user_id"
	UserLoginKey = "user_login"
	UserRoleKey  = "user_role"
	ClaimsKey    = "token_claims"
)

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	tokens  util.TokenSettings
	revoked RevocationChecker
}

// NewAuthMiddleware builds the bearer-token guard. A nil checker skips the revocation lookup.
func NewAuthMiddleware(tokens util.TokenSettings, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:  tokens,
		revoked: revoked,
	}
}

// Authenticate validates the bearer token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, errors.AuthTokenInvalid, "Authorization header must be 'Bearer <token>'")
				return
			}
			token = strings.TrimSpace(parts[1])
		} else {
			// Browsers cannot set headers on a websocket handshake
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "", "Authorization header is required")
				return
			}
			log.Debug("Using token from query parameter", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
		}

		claims, err := util.ValidateToken(token, m.tokens)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if err == util.ErrExpiredToken {
				errors.Unauthorized(c, errors.AuthTokenExpired, "Token has expired")
			} else {
				errors.Unauthorized(c, errors.AuthTokenInvalid, "Invalid token")
			}
			return
		}

		if m.revoked != nil && claims.ID != "" {
			revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open while the revocation store is unreachable
				log.Error("Token revocation lookup failed", err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
			} else if revoked {
				log.Warn("Revoked token presented", map[string]interface{}{
					"path": c.Request.URL.Path,
					"jti":  claims.ID,
				})
				errors.Unauthorized(c, errors.AuthTokenRevoked, "Token has been revoked")
				return
			}
		}

		userID, _ := claims.UserID()
		c.Set(UserIDKey, userID)
		c.Set(UserLoginKey, claims.Name)
		c.Set(UserRoleKey, claims.Role)
		c.Set(ClaimsKey, claims)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": userID,
			"login":   claims.Name,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// RequireRole checks if user has one of the given roles
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "Role information not found")
			return
		}

		userID, _ := GetUserID(c)

		for _, r := range roles {
			if role == r {
				log.Debug("Role check passed", map[string]interface{}{
					"user_id":       userID,
					"user_role":     role,
					"required_role": r,
				})
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		if len(roles) == 1 && roles[0] == model.RoleNameAdmin {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "Administrator role required")
			return
		}
		errors.Forbidden(c, "")
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserLogin extracts the login from context
func GetUserLogin(c *gin.Context) (string, bool) {
	login, exists := c.Get(UserLoginKey)
	if !exists {
		return "", false
	}
	s, ok := login.(string)
	return s, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	s, ok := role.(string)
	return s, ok
}

// GetClaims returns the validated token claims
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := claims.(*util.Claims)
	return cl, ok
}
