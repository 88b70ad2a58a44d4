package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	apperrors "github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
	"github.com/ikkim/pizza-delivery-backend/pkg/util"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role"`
}

type UserResponse struct {
	ID       uint           `json:"id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Role     model.UserRole `json:"role"`
}

func newUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// Register handles user registration
// POST /api/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "username, email, password and role are required")
		return
	}

	user, err := ctrl.authService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "A user with that username already exists")
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "A user with that email already exists")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.AuthInvalidRole, err.Error())
		case errors.Is(err, util.ErrPasswordTooShort), errors.Is(err, util.ErrPasswordAllNumeric):
			apperrors.BadRequest(c, apperrors.AuthWeakPassword, err.Error())
		case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidEmail):
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
		default:
			log.Error("Registration failed", err)
			apperrors.ParseAndRespond(c, err, "register user")
		}
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Login issues an access/refresh token pair
// POST /api/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "username and password are required")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid username or password")
			return
		}
		log.Error("Login failed", err)
		apperrors.ParseAndRespond(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  tokens.AccessToken,
		"refresh": tokens.RefreshToken,
		"user":    newUserResponse(user),
	})
}

// Refresh exchanges a refresh token for a new access token
// POST /api/token/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "refresh is required")
		return
	}

	access, err := ctrl.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExpiredToken):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Token has expired")
		case errors.Is(err, service.ErrTokenRevoked):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "Token has been revoked")
		case errors.Is(err, util.ErrInvalidToken), errors.Is(err, service.ErrNotRefreshToken), errors.Is(err, service.ErrUserNotFound):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Token is invalid")
		default:
			middleware.GetLoggerFromContext(c).Error("Token refresh failed", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout revokes the caller's access token and optional refresh token
// POST /api/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := ctrl.authService.Logout(c.Request.Context(), claims, req.Refresh); err != nil {
		apperrors.InternalError(c, "Failed to log out")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMe returns the authenticated user
// GET /api/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		apperrors.ParseAndRespond(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateUser lets an admin change a user's username or email
// PATCH /api/users/:id
func (ctrl *AuthController) UpdateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	user, err := ctrl.authService.UpdateUser(targetID, service.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		case errors.Is(err, service.ErrRoleImmutable):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzRoleImmutable, "Role cannot be changed after registration")
		case errors.Is(err, service.ErrUsernameExists):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "A user with that username already exists")
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "A user with that email already exists")
		case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidEmail):
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
		default:
			log.Error("Failed to update user", err, map[string]interface{}{
				"target_id": targetID,
			})
			apperrors.ParseAndRespond(c, err, "update user")
		}
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
