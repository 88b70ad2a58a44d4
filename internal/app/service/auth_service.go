package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/ikkim/pizza-delivery-backend/pkg/redis"
	"github.com/ikkim/pizza-delivery-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("role must be customer, admin or delivery_partner")
	ErrRoleImmutable      = errors.New("role cannot be changed")
	ErrInvalidUsername    = errors.New("username is required")
	ErrInvalidEmail       = errors.New("email is required")
	ErrNotRefreshToken    = errors.New("refresh token required")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UserUpdate carries the fields an admin may patch. Role is accepted only if unchanged.
type UserUpdate struct {
	Username *string
	Email    *string
	Role     *string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, error)
	Login(username, password string) (*model.User, *util.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, claims *util.Claims, refreshToken string) error
	GetUserByID(id uint) (*model.User, error)
	UpdateUser(id uint, update UserUpdate) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	blacklist     redis.TokenBlacklist
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	blacklist redis.TokenBlacklist,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	if blacklist == nil {
		blacklist = redis.NoopBlacklist{}
	}
	return &authService{
		userRepo:      userRepo,
		blacklist:     blacklist,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := model.UserRole(strings.TrimSpace(input.Role))

	logger.Info("Attempting user registration", map[string]interface{}{
		"username": username,
		"role":     role,
	})

	if username == "" {
		return nil, ErrInvalidUsername
	}
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := util.ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(username, email, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": username,
		"role":     user.Role,
	})
	return user, nil
}

func (s *authService) Login(username, password string) (*model.User, *util.TokenPair, error) {
	username = strings.TrimSpace(username)
	logger.Info("Login attempt", map[string]interface{}{
		"username": username,
	})

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"username": username,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"username": username,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Username,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", err
	}
	if claims.TokenType != util.TokenTypeRefresh {
		return "", ErrNotRefreshToken
	}

	revoked, err := s.blacklist.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		logger.Error("Failed to check token revocation", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	user, err := s.GetUserByID(claims.UserID)
	if err != nil {
		return "", err
	}

	return util.GenerateToken(user.ID, user.Username, string(user.Role), util.TokenTypeAccess, s.jwtSecret, s.accessExpiry)
}

// Logout revokes the presented access token and, when supplied, the refresh token.
func (s *authService) Logout(ctx context.Context, claims *util.Claims, refreshToken string) error {
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		logger.Error("Failed to revoke access token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	if refreshToken != "" {
		refresh, err := util.ValidateToken(refreshToken, s.jwtSecret)
		if err == nil && refresh.UserID == claims.UserID {
			if err := s.blacklist.BlacklistToken(ctx, refresh.ID, refresh.RemainingTTL()); err != nil {
				return err
			}
		}
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to get user by ID", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateUser(id uint, update UserUpdate) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if update.Role != nil && model.UserRole(strings.TrimSpace(*update.Role)) != user.Role {
		logger.Warn("Rejected role change", map[string]interface{}{
			"user_id": id,
			"role":    user.Role,
		})
		return nil, ErrRoleImmutable
	}

	username, email := user.Username, user.Email
	if update.Username != nil {
		if username = strings.TrimSpace(*update.Username); username == "" {
			return nil, ErrInvalidUsername
		}
	}
	if update.Email != nil {
		if email = strings.ToLower(strings.TrimSpace(*update.Email)); email == "" {
			return nil, ErrInvalidEmail
		}
	}

	if err := s.ensureUnique(username, email, id); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(id, username, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Username = username
	user.Email = email
	logger.Info("User updated", map[string]interface{}{
		"user_id": id,
	})
	return user, nil
}

func (s *authService) ensureUnique(username, email string, excludeID uint) error {
	taken, err := s.userRepo.ExistsByUsername(username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		logger.Warn("Username already taken", map[string]interface{}{
			"username": username,
		})
		return ErrUsernameExists
	}

	taken, err = s.userRepo.ExistsByEmail(email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailAlreadyExists
	}
	return nil
}
