package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	apperrors "github.com/ikkim/bookshelf-backend/internal/errors"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type RegisterRequest struct {
	Login    string `json:"login" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserSummary is the public lookup view of a user
type UserSummary struct {
	ID     uint   `json:"id"`
	Login  string `json:"login"`
	Email  string `json:"email"`
	RoleID uint   `json:"role_id"`
}

// Register handles user registration
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if !bindJSON(c, &req, "register") {
		return
	}

	result, err := ctrl.authService.Register(req.Login, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginAlreadyExists):
			apperrors.BadRequest(c, apperrors.AuthLoginExists, "Login is already taken")
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.BadRequest(c, apperrors.AuthEmailExists, "Email is already registered")
		default:
			respondError(c, err, "register user")
		}
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": result.User.ID,
	})
	c.JSON(http.StatusOK, result)
}

// Login handles user login
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if !bindJSON(c, &req, "login") {
		return
	}

	result, err := ctrl.authService.Login(req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"login": req.Login,
			})
			apperrors.Unauthorized(c, apperrors.AuthInvalidCredentials, "Invalid login or password")
			return
		}
		respondError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Profile returns the caller's account
// GET /api/auth/profile
func (ctrl *AuthController) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		respondError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UserByLogin looks a user up by login
// GET /api/auth/user-by-login/:login
func (ctrl *AuthController) UserByLogin(c *gin.Context) {
	login := strings.TrimSpace(c.Param("login"))
	if login == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "login is required")
		return
	}

	user, err := ctrl.authService.GetUserByLogin(login)
	if err != nil {
		respondError(c, err, "get user by login")
		return
	}

	c.JSON(http.StatusOK, UserSummary{
		ID:     user.ID,
		Login:  user.Login,
		Email:  user.Email,
		RoleID: user.RoleID,
	})
}

// Logout revokes the presented token
// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err, "logout")
		return
	}

	login, _ := middleware.GetUserLogin(c)
	middleware.GetLoggerFromContext(c).Info("User logged out", map[string]interface{}{
		"login": login,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
