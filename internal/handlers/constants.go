package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrInternalServerError = "Internal server error"
	ErrChildNotFoundMsg    = "Child not found"
	ErrTooManyRequests     = "Too many requests"

	maxBodyBytes = 1 << 20
)
