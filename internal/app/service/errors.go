package service

import "errors"

var (
	ErrLoginAlreadyExists = errors.New("login already exists")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrMissingField       = errors.New("login, email and password are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUserInUse          = errors.New("user has orders or reviews")

	ErrCatalogItemNotFound = errors.New("catalog item not found")
	ErrCatalogItemInUse    = errors.New("catalog item is referenced by order lines")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrInvalidCatalogItem  = errors.New("title is required and price must be a non-negative decimal")
	ErrInvalidCategory     = errors.New("category name is required")

	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderLineNotFound = errors.New("order line not found")
	ErrInvalidOrderLine  = errors.New("order line count must be positive")
	ErrInvalidStatus     = errors.New("order status must be open or completed")
	ErrOpenOrderExists   = errors.New("user already has an open order")

	ErrCartLineNotFound = errors.New("cart line not found")
	ErrCartEmpty        = errors.New("cart is empty")

	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyReview   = errors.New("review text is required")

	ErrIDMismatch = errors.New("id in body does not match id in path")
)

// resolveID applies the replace rule: a zero body id takes the path id,
// any other value must match it.
func resolveID(pathID, bodyID uint) (uint, error) {
	if bodyID != 0 && bodyID != pathID {
		return 0, ErrIDMismatch
	}
	return pathID, nil
}
