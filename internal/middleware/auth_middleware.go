package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/pkg/redis"
	"github.com/ikkim/pizza-delivery-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	UserRoleKey = "user_role"
	ClaimsKey   = "claims"
)

// websocket clients cannot set headers, so they pass the access token here
const tokenQueryParam = "token"

type AuthMiddleware struct {
	jwtSecret string
	blacklist redis.TokenBlacklist
}

func NewAuthMiddleware(jwtSecret string, blacklist redis.TokenBlacklist) *AuthMiddleware {
	if blacklist == nil {
		blacklist = redis.NoopBlacklist{}
	}
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

// Authenticate requires a valid, unrevoked access token. The token comes from
// the Authorization header, or the token query parameter for websocket upgrades.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Authorization header must be 'Bearer <token>'")
				return
			}
			token = parts[1]
		} else {
			token = c.Query(tokenQueryParam)
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "Authentication credentials were not provided")
				return
			}
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if stderrors.Is(err, util.ErrExpiredToken) {
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token has expired")
			} else {
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Token is invalid")
			}
			return
		}

		if claims.TokenType != util.TokenTypeAccess {
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Access token required")
			return
		}

		revoked, err := m.blacklist.IsTokenBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("Failed to check token revocation", err)
			errors.AbortWithError(c, http.StatusInternalServerError, errors.InternalServerError, "Could not verify token")
			return
		}
		if revoked {
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(UserRoleKey, model.UserRole(claims.Role))
		c.Set(ClaimsKey, claims)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// RequireRole checks if user has required role
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			errors.AbortWithError(c, http.StatusForbidden, errors.AuthzForbidden, "Role information not found")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.AbortWithError(c, http.StatusForbidden, errors.AuthzForbidden, "You do not have permission to perform this action")
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

func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(UsernameKey)
	if !exists {
		return "", false
	}
	name, ok := username.(string)
	return name, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}

// GetClaims returns the parsed token, needed to revoke it on logout.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := claims.(*util.Claims)
	return cl, ok
}
