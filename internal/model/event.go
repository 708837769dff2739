package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth        = "auth"
	EventCategoryApplication = "application"
	EventCategoryScore       = "score"
	EventCategoryUser        = "user"
	EventCategorySystem      = "system"
)

// Event represents an audit log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	ActorID   string // user uid when known, empty otherwise
	Metadata  string // JSON string
	CreatedAt time.Time
}
