package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ErrorInfo is a parsed error ready to be rendered.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError turns a storage error into a client-safe code and message.
// Driver details never leak into the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: "Internal server error",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return duplicateKeyError(pgErr.ConstraintName + " " + pgErr.Detail)
		case pgForeignKeyViolation:
			return foreignKeyError(pgErr.Message)
		case pgNotNullViolation:
			return ErrorInfo{
				Status:  http.StatusBadRequest,
				Code:    ValidationRequired,
				Message: "Missing required field: " + pgErr.ColumnName,
			}
		case pgCheckViolation:
			return ErrorInfo{
				Status:  http.StatusBadRequest,
				Code:    ValidationInvalidInput,
				Message: "Invalid field value",
			}
		}
	}

	// SQLite reports constraint failures as plain text
	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "unique constraint failed"),
		strings.Contains(errLower, "duplicate key"):
		return duplicateKeyError(errLower)
	case strings.Contains(errLower, "foreign key constraint"):
		return foreignKeyError(errLower)
	case strings.Contains(errLower, "connection refused"),
		strings.Contains(errLower, "no such host"):
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalUnavailable,
			Message: "A backing service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: defaultErrorMessage(context),
	}
}

func duplicateKeyError(detail string) ErrorInfo {
	detail = strings.ToLower(detail)

	info := ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists}
	switch {
	case strings.Contains(detail, "login"):
		info.Code = AuthLoginExists
		info.Message = "Login is already taken"
	case strings.Contains(detail, "email"):
		info.Code = AuthEmailExists
		info.Message = "Email is already registered"
	case strings.Contains(detail, "categories") || strings.Contains(detail, "name"):
		info.Message = "Category name already exists"
	case strings.Contains(detail, "order_lines") || strings.Contains(detail, "order_product"):
		info.Message = "The order already has a line for this product"
	default:
		info.Message = "Resource already exists"
	}
	return info
}

func foreignKeyError(detail string) ErrorInfo {
	detail = strings.ToLower(detail)

	if strings.Contains(detail, "still referenced") || strings.Contains(detail, "delete") {
		return ErrorInfo{
			Status:  http.StatusConflict,
			Code:    ResourceConflict,
			Message: "The resource is still referenced and cannot be deleted",
		}
	}
	return ErrorInfo{
		Status:  http.StatusConflict,
		Code:    ResourceConflict,
		Message: "A referenced resource does not exist",
	}
}

func notFoundMessage(context string) string {
	context = strings.ToLower(context)

	switch {
	case strings.Contains(context, "catalog"), strings.Contains(context, "product"):
		return "Catalog item not found"
	case strings.Contains(context, "category"):
		return "Category not found"
	case strings.Contains(context, "line"):
		return "Order line not found"
	case strings.Contains(context, "order"):
		return "Order not found"
	case strings.Contains(context, "user"):
		return "User not found"
	}
	return "Requested resource not found"
}

func defaultErrorMessage(context string) string {
	context = strings.ToLower(context)

	switch {
	case strings.Contains(context, "create"):
		return "Failed to create the resource, please try again later"
	case strings.Contains(context, "update"), strings.Contains(context, "replace"):
		return "Failed to update the resource, please try again later"
	case strings.Contains(context, "delete"):
		return "Failed to delete the resource, please try again later"
	}
	return "Internal server error, please try again later"
}

// ParseAndRespond renders err with the status ParseError chose for it.
func ParseAndRespond(c *gin.Context, err error, context string) ErrorInfo {
	info := ParseError(err, context)
	RespondWithError(c, info.Status, info.Code, info.Message)
	return info
}
