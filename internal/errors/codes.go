package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map messages from these codes.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong login or password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthLoginExists        = "AUTH_LOGIN_EXISTS"
	AuthEmailExists        = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationIDMismatch   = "VALIDATION_ID_MISMATCH" // body id differs from path id
	ValidationInvalidPrice = "VALIDATION_INVALID_PRICE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT" // delete restricted by a reference

	// ==================== Catalog (CATALOG_) ====================
	CatalogItemNotFound = "CATALOG_ITEM_NOT_FOUND"
	CatalogItemInUse    = "CATALOG_ITEM_IN_USE"
	CategoryNotFound    = "CATEGORY_NOT_FOUND"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound     = "ORDER_NOT_FOUND"
	OrderLineNotFound = "ORDER_LINE_NOT_FOUND"
	OrderInvalidState = "ORDER_INVALID_STATUS"
	OrderOpenExists   = "ORDER_OPEN_EXISTS"

	// ==================== Cart (CART_) ====================
	CartLineNotFound = "CART_LINE_NOT_FOUND"
	CartEmpty        = "CART_EMPTY"

	// ==================== Reviews (REVIEW_) ====================
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewEmptyText     = "REVIEW_EMPTY_TEXT"

	// ==================== Users (USER_) ====================
	UserNotFound = "USER_NOT_FOUND"
	UserInUse    = "USER_IN_USE"

	// ==================== Upload (UPLOAD_) ====================
	UploadUnavailable = "UPLOAD_UNAVAILABLE" // object storage not configured
	UploadFailed      = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalUnavailable   = "INTERNAL_SERVICE_UNAVAILABLE"
)
