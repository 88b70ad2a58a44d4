package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	apperrors "github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
	pkgredis "github.com/ikkim/pizza-delivery-backend/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func setupAuthControllerTest(t *testing.T) *gin.Engine {
	testDB := setupTestDB(t)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	blacklist := pkgredis.NewTokenBlacklist(client)

	authService := service.NewAuthService(
		repository.NewUserRepository(testDB),
		blacklist,
		testSecret,
		15*time.Minute,
		24*time.Hour,
	)
	ctrl := NewAuthController(authService)
	auth := middleware.NewAuthMiddleware(testSecret, blacklist)

	router := gin.New()
	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)
	router.POST("/token/refresh", ctrl.Refresh)
	router.POST("/logout", auth.Authenticate(), ctrl.Logout)
	router.GET("/me", auth.Authenticate(), ctrl.GetMe)
	router.PATCH("/users/:id", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), ctrl.UpdateUser)
	return router
}

func register(t *testing.T, router *gin.Engine, username, role string) UserResponse {
	t.Helper()
	w := performJSON(router, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	requireStatus(t, w, http.StatusCreated)
	var user UserResponse
	decodeBody(t, w, &user)
	return user
}

func login(t *testing.T, router *gin.Engine, username string) (access, refresh string) {
	t.Helper()
	w := performJSON(router, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": "password123",
	})
	requireStatus(t, w, http.StatusOK)
	var body struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decodeBody(t, w, &body)
	return body.Access, body.Refresh
}

func withBearer(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_RegisterLoginMe(t *testing.T) {
	router := setupAuthControllerTest(t)

	user := register(t, router, "alice", "customer")
	assert.Equal(t, model.RoleCustomer, user.Role)

	access, _ := login(t, router, "alice")
	w := withBearer(router, http.MethodGet, "/me", access)
	requireStatus(t, w, http.StatusOK)
	var me UserResponse
	decodeBody(t, w, &me)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "alice", me.Username)
}

func TestAuthController_Register_Errors(t *testing.T) {
	router := setupAuthControllerTest(t)
	register(t, router, "alice", "customer")

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{
			name:   "missing role",
			body:   map[string]string{"username": "bob", "email": "bob@example.com", "password": "password123"},
			status: http.StatusBadRequest,
			code:   apperrors.ValidationInvalidInput,
		},
		{
			name:   "unknown role",
			body:   map[string]string{"username": "bob", "email": "bob@example.com", "password": "password123", "role": "chef"},
			status: http.StatusBadRequest,
			code:   apperrors.AuthInvalidRole,
		},
		{
			name:   "weak password",
			body:   map[string]string{"username": "bob", "email": "bob@example.com", "password": "12345678", "role": "customer"},
			status: http.StatusBadRequest,
			code:   apperrors.AuthWeakPassword,
		},
		{
			name:   "duplicate username",
			body:   map[string]string{"username": "alice", "email": "x@example.com", "password": "password123", "role": "customer"},
			status: http.StatusConflict,
			code:   apperrors.AuthUsernameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPost, "/register", tt.body)
			requireStatus(t, w, tt.status)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestAuthController_Login_InvalidCredentials(t *testing.T) {
	router := setupAuthControllerTest(t)
	register(t, router, "alice", "customer")

	w := performJSON(router, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "nope-nope"})
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, apperrors.AuthInvalidCredentials, errorCode(t, w))
}

func TestAuthController_RefreshAndLogout(t *testing.T) {
	router := setupAuthControllerTest(t)
	register(t, router, "alice", "customer")
	access, refresh := login(t, router, "alice")

	w := performJSON(router, http.MethodPost, "/token/refresh", map[string]string{"refresh": refresh})
	requireStatus(t, w, http.StatusOK)

	w = performJSON(router, http.MethodPost, "/token/refresh", map[string]string{"refresh": access})
	requireStatus(t, w, http.StatusUnauthorized)

	w = performAuthorized(router, http.MethodPost, "/logout", access, map[string]string{"refresh": refresh})
	requireStatus(t, w, http.StatusNoContent)

	w = withBearer(router, http.MethodGet, "/me", access)
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, apperrors.AuthTokenRevoked, errorCode(t, w))

	w = performJSON(router, http.MethodPost, "/token/refresh", map[string]string{"refresh": refresh})
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, apperrors.AuthTokenRevoked, errorCode(t, w))
}

func TestAuthController_UpdateUser(t *testing.T) {
	router := setupAuthControllerTest(t)
	target := register(t, router, "alice", "customer")
	register(t, router, "boss", "admin")
	adminToken, _ := login(t, router, "boss")
	customerToken, _ := login(t, router, "alice")
	path := fmt.Sprintf("/users/%d", target.ID)

	w := performAuthorized(router, http.MethodPatch, path, adminToken, map[string]string{"email": "alice@pizza.example.com"})
	requireStatus(t, w, http.StatusOK)
	var updated UserResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, "alice@pizza.example.com", updated.Email)

	w = performAuthorized(router, http.MethodPatch, path, adminToken, map[string]string{"role": "admin"})
	requireStatus(t, w, http.StatusForbidden)
	assert.Equal(t, apperrors.AuthzRoleImmutable, errorCode(t, w))

	w = performAuthorized(router, http.MethodPatch, path, customerToken, map[string]string{"username": "hacker"})
	requireStatus(t, w, http.StatusForbidden)

	requireStatus(t, performAuthorized(router, http.MethodPatch, "/users/9999", adminToken, map[string]string{"username": "ghost"}), http.StatusNotFound)
}
