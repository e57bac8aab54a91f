package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/ikkim/bookshelf-backend/pkg/util"
	"gorm.io/gorm"
)

// TokenRevoker stores revoked token ids. Nil disables logout revocation.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type AuthService interface {
	Register(login, email, password string) (*AuthResult, error)
	Login(login, password string) (*AuthResult, error)
	GetUserByID(id uint) (*model.User, error)
	GetUserByLogin(login string) (*model.User, error)
	Logout(ctx context.Context, claims *util.Claims) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   util.TokenSettings
	revoker  TokenRevoker
}

func NewAuthService(userRepo repository.UserRepository, tokens util.TokenSettings, revoker TokenRevoker) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		revoker:  revoker,
	}
}

func (s *authService) Register(login, email, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	email = strings.TrimSpace(email)

	logger.Info("Attempting user registration", logger.Fields{
		"login": login,
		"email": email,
	})

	if login == "" || email == "" || password == "" {
		return nil, ErrMissingField
	}

	if _, err := s.userRepo.FindByLogin(login); err == nil {
		logger.Warn("Registration failed: login already exists", logger.Fields{
			"login": login,
		})
		return nil, ErrLoginAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		logger.Warn("Registration failed: email already exists", logger.Fields{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, logger.Fields{
			"login": login,
		})
		return nil, err
	}

	user := &model.User{
		Login:        login,
		Email:        email,
		PasswordHash: hashedPassword,
		RoleID:       model.RoleIDUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered successfully", logger.Fields{
		"user_id": user.ID,
		"login":   user.Login,
	})
	return result, nil
}

func (s *authService) Login(login, password string) (*AuthResult, error) {
	logger.Info("Login attempt", logger.Fields{
		"login": login,
	})

	user, err := s.userRepo.FindByLogin(strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", logger.Fields{
				"login": login,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", logger.Fields{
			"login":   login,
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully", logger.Fields{
		"user_id": user.ID,
		"role":    user.RoleName(),
	})
	return result, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := util.GenerateToken(user.ID, user.Login, user.RoleName(), s.tokens)
	if err != nil {
		logger.Error("Failed to generate token", err, logger.Fields{
			"user_id": user.ID,
		})
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", logger.Fields{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) GetUserByLogin(login string) (*model.User, error) {
	user, err := s.userRepo.FindByLogin(login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.revoker == nil || claims == nil || claims.ExpiresAt == nil {
		logger.Debug("Logout without revocation list")
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	logger.Info("Token revoked", logger.Fields{
		"user_id": claims.Subject,
		"jti":     claims.ID,
	})
	return nil
}
