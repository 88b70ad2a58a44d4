package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/errors"
	pkgredis "github.com/ikkim/pizza-delivery-backend/pkg/redis"
	"github.com/ikkim/pizza-delivery-backend/pkg/util"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest(t *testing.T) (*gin.Engine, *AuthMiddleware, pkgredis.TokenBlacklist) {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	blacklist := pkgredis.NewTokenBlacklist(client)

	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(testJWTSecret, blacklist), blacklist
}

func generateTestTokens(t *testing.T, userID uint, username, role string) *util.TokenPair {
	tokens, err := util.GenerateTokenPair(userID, username, role, testJWTSecret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func whoAmI(c *gin.Context) {
	userID, _ := GetUserID(c)
	username, _ := GetUsername(c)
	role, _ := GetUserRole(c)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "username": username, "role": role})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorResponse {
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, auth, _ := setupMiddlewareTest(t)
	tokens := generateTestTokens(t, 1, "alice", "customer")
	router.GET("/test", auth.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "customer", body["role"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, auth, _ := setupMiddlewareTest(t)
	tokens := generateTestTokens(t, 7, "rider", "delivery_partner")
	router.GET("/ws", auth.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+tokens.AccessToken, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Authenticate_Rejections(t *testing.T) {
	router, auth, _ := setupMiddlewareTest(t)
	tokens := generateTestTokens(t, 1, "alice", "customer")
	expired, err := util.GenerateToken(1, "alice", "customer", util.TokenTypeAccess, testJWTSecret, -time.Minute)
	require.NoError(t, err)
	router.GET("/test", auth.Authenticate(), whoAmI)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing", header: "", code: errors.AuthUnauthorized},
		{name: "bad format", header: "Token abc", code: errors.AuthTokenInvalid},
		{name: "garbage", header: "Bearer abc", code: errors.AuthTokenInvalid},
		{name: "expired", header: "Bearer " + expired, code: errors.AuthTokenExpired},
		{name: "refresh token", header: "Bearer " + tokens.RefreshToken, code: errors.AuthTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}
}

func TestAuthMiddleware_Authenticate_Revoked(t *testing.T) {
	router, auth, blacklist := setupMiddlewareTest(t)
	tokens := generateTestTokens(t, 1, "alice", "customer")
	claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)
	require.NoError(t, blacklist.BlacklistToken(context.Background(), claims.ID, claims.RemainingTTL()))

	router.GET("/test", auth.Authenticate(), whoAmI)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errors.AuthTokenRevoked, decodeError(t, w).Error)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, auth, _ := setupMiddlewareTest(t)
	router.POST("/delivery", auth.Authenticate(), auth.RequireRole(model.RoleDeliveryPartner), whoAmI)

	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "partner allowed", role: "delivery_partner", want: http.StatusOK},
		{name: "customer forbidden", role: "customer", want: http.StatusForbidden},
		{name: "admin forbidden", role: "admin", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := generateTestTokens(t, 3, "user", tt.role)
			req := httptest.NewRequest(http.MethodPost, "/delivery", nil)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	router, _, _ := setupMiddlewareTest(t)
	router.GET("/ping", func(c *gin.Context) {
		assert.NotNil(t, GetLoggerFromContext(c))
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
