package errors

// Error codes returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these, not the message.

const (
	// ==================== AUTH_ ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthWeakPassword       = "AUTH_WEAK_PASSWORD"
	AuthInvalidRole        = "AUTH_INVALID_ROLE"

	// ==================== AUTHZ_ ====================
	AuthzForbidden     = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly     = "AUTHZ_ADMIN_ONLY"
	AuthzRoleImmutable = "AUTHZ_ROLE_IMMUTABLE"

	// ==================== VALIDATION_ ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== RESOURCE_ ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== PIZZA_ ====================
	PizzaNotFound     = "PIZZA_NOT_FOUND"
	PizzaInvalidType  = "PIZZA_INVALID_TYPE"
	PizzaInvalidPrice = "PIZZA_INVALID_PRICE"

	// ==================== CART_ ====================
	CartEmpty           = "CART_EMPTY"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== ORDER_ ====================
	OrderNotFound             = "ORDER_NOT_FOUND"
	OrderInvalidStatus        = "ORDER_INVALID_STATUS"
	OrderInvalidPaymentMode   = "ORDER_INVALID_PAYMENT_MODE"
	OrderInvalidPaymentStatus = "ORDER_INVALID_PAYMENT_STATUS"
	OrderNothingToUpdate      = "ORDER_NOTHING_TO_UPDATE"

	// ==================== RATING_ ====================
	RatingInvalidValue = "RATING_INVALID_VALUE"

	// ==================== UPLOAD_ ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadUnavailable     = "UPLOAD_UNAVAILABLE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== INTERNAL_ ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
