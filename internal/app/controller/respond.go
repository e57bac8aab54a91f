package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	apperrors "github.com/ikkim/bookshelf-backend/internal/errors"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
	"github.com/ikkim/bookshelf-backend/pkg/util"
)

type serviceError struct {
	target error
	status int
	code   string
}

// serviceErrors maps domain sentinels to responses; first match wins.
var serviceErrors = []serviceError{
	{service.ErrIDMismatch, http.StatusBadRequest, apperrors.ValidationIDMismatch},
	{service.ErrMissingField, http.StatusBadRequest, apperrors.ValidationRequired},
	{util.ErrPasswordTooLong, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{util.ErrEmptyPassword, http.StatusBadRequest, apperrors.ValidationRequired},
	{service.ErrInvalidCatalogItem, http.StatusBadRequest, apperrors.ValidationInvalidPrice},
	{service.ErrInvalidCategory, http.StatusBadRequest, apperrors.ValidationRequired},
	{service.ErrInvalidOrderLine, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrInvalidStatus, http.StatusBadRequest, apperrors.OrderInvalidState},
	{service.ErrInvalidRating, http.StatusBadRequest, apperrors.ReviewInvalidRating},
	{service.ErrEmptyReview, http.StatusBadRequest, apperrors.ReviewEmptyText},
	{service.ErrCartEmpty, http.StatusBadRequest, apperrors.CartEmpty},
	{service.ErrRoleNotFound, http.StatusBadRequest, apperrors.AuthzRoleNotFound},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.UserNotFound},
	{service.ErrCatalogItemNotFound, http.StatusNotFound, apperrors.CatalogItemNotFound},
	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.CategoryNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound},
	{service.ErrOrderLineNotFound, http.StatusNotFound, apperrors.OrderLineNotFound},
	{service.ErrCartLineNotFound, http.StatusNotFound, apperrors.CartLineNotFound},
	{service.ErrCatalogItemInUse, http.StatusConflict, apperrors.CatalogItemInUse},
	{service.ErrUserInUse, http.StatusConflict, apperrors.UserInUse},
	{service.ErrOpenOrderExists, http.StatusConflict, apperrors.OrderOpenExists},
	{service.ErrLoginAlreadyExists, http.StatusConflict, apperrors.AuthLoginExists},
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailExists},
}

// respondError renders a service error. Unknown errors go through the driver error parser.
func respondError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	for _, se := range serviceErrors {
		if errors.Is(err, se.target) {
			log.Warn("Request rejected", map[string]interface{}{
				"context": context,
				"status":  se.status,
				"error":   err.Error(),
			})
			apperrors.RespondWithError(c, se.status, se.code, se.target.Error())
			return
		}
	}

	info := apperrors.ParseAndRespond(c, err, context)
	if info.Status >= http.StatusInternalServerError {
		log.Error("Request failed", err, map[string]interface{}{
			"context": context,
		})
		_ = c.Error(err)
	} else {
		log.Warn("Request rejected by storage constraint", map[string]interface{}{
			"context": context,
			"error":   err.Error(),
		})
	}
}

// parseID reads a positive numeric path parameter, answering 400 otherwise.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUserID reads the authenticated user, answering 401 when absent.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == 0 {
		apperrors.Unauthorized(c, "", "")
		return 0, false
	}
	return userID, true
}

func bindJSON(c *gin.Context, dst interface{}, context string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request payload", map[string]interface{}{
			"context": context,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request payload")
		return false
	}
	return true
}
