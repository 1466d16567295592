package constants

import "time"

// Session and context keys
const (
	SessionCookieName    = "todo_session"
	SessionKeyToken      = "token"
	ContextKeyUserID     = "user_id"
	ContextKeyClaims     = "session_claims"
	ContextKeyLocale     = "locale"
	ContextKeyRequestID  = "request_id"
	ContextKeyTodoID     = "todo_id"
	HeaderRequestID      = "X-Request-ID"
	LocaleCookieName     = "lang"
	LocaleQueryParameter = "lang"
)

// Account rules
const (
	MinPasswordLength    = 6
	MinUsernameLength    = 3
	MaxUsernameLength    = 100
	MaxEmailLength       = 255
	MaxDisplayNameLength = 50
)

// Todo rules
const (
	MaxTodoTextLength = 200
	DueDateLayout     = "2006-01-02"
)

// Avatar rules
const (
	MaxAvatarSize       = 2 * 1024 * 1024
	AvatarURLPrefix     = "/avatars/"
	DefaultAvatarExt    = "jpg"
	MaxMultipartMemory  = 8 << 20
	DefaultSessionTTL   = 7 * 24 * time.Hour
	MaxAIGeneratedTodos = 20
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
	MaxPage         = 1_000_000
)
