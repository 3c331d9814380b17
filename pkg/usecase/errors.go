package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrWebhookNotFound    = errors.New("webhook not found")
	ErrConnectionNotFound = errors.New("slack connection not found")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrUserNotFound       = errors.New("user not found")

	// Configuration errors
	ErrSlackUserNotConfigured = errors.New("slack user ID is not configured for the webhook owner")
	ErrSlackNotConfigured     = errors.New("slack integration is not configured")

	// Access control errors
	ErrAccessDenied = errors.New("access denied")
	ErrUnauthorized = errors.New("unauthorized")

	// Input errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrSlackUserIDInUse   = errors.New("slack user ID is linked to another user")
	ErrSameTodoComparison = errors.New("cannot compare a todo with itself")
)

// Context keys for error values
const (
	WebhookIDKey    = "webhook_id"
	ConnectionIDKey = "connection_id"
	TodoIDKey       = "todo_id"
	UserIDKey       = "user_id"
)
