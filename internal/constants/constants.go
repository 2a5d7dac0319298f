package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyProfile = "profile"
	ContextKeyProject = "project"
	ContextKeyTask    = "task"

	SessionCookieName     = "studio_session"
	SessionKeyRefreshedAt = "refreshed_at"
	SessionKeyDragPrefix  = "kanban_drag:"
)

// Session lifecycle
const (
	SessionMaxAge          = 86400 * 7
	SessionRefreshInterval = 15 * time.Minute
)

// Validation limits
const (
	MinPasswordLength   = 8
	MaxAIGeneratedTasks = 20
	MaxTagsPerTask      = 20
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Defaults applied when a value is not supplied
const (
	DefaultTimeEntryDescription = "General work time"
	DashboardRecentProjects     = 5
)
