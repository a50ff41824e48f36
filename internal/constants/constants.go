package constants

// Session
const (
	SessionCookieName = "onboarding_session"
	SessionKeyUserID  = "user_id"
)

// Gin context keys
const (
	ContextKeyAuth     = "auth"
	ContextKeyTemplate = "template"
	ContextKeyCategory = "category"
	ContextKeyTask     = "task"
)

// Validation
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Export document version, recorded in every snapshot but not validated
// on import.
const ExportVersion = "1.0"
