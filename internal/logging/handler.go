// Package logging provides a custom slog handler that integrates with the
// audit event log. It forwards logs at WARN level and above to the
// database-backed events table.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/olegiv/pbfund-go/internal/model"
	"github.com/olegiv/pbfund-go/internal/store"
)

// AuditHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the audit event log.
type AuditHandler struct {
	inner slog.Handler
	store *store.Store
	level slog.Level // Minimum level to forward to the event log (default: WARN)
}

// NewAuditHandler creates a handler that wraps inner. Logs at WARN level
// and above are written to both the wrapped handler and the event log.
func NewAuditHandler(inner slog.Handler, st *store.Store) *AuditHandler {
	return &AuditHandler{
		inner: inner,
		store: st,
		level: slog.LevelWarn,
	}
}

// NewAuditHandlerWithLevel creates an AuditHandler with a custom minimum level.
func NewAuditHandlerWithLevel(inner slog.Handler, st *store.Store, level slog.Level) *AuditHandler {
	return &AuditHandler{
		inner: inner,
		store: st,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeEvent(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditHandler{
		inner: h.inner.WithAttrs(attrs),
		store: h.store,
		level: h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{
		inner: h.inner.WithGroup(name),
		store: h.store,
		level: h.level,
	}
}

// writeEvent writes a log record to the audit event log. A background
// context is used so the event lands even if the caller's context is
// already cancelled.
func (h *AuditHandler) writeEvent(r slog.Record) {
	_ = h.store.InsertEvent(context.Background(), model.Event{
		Level:     slogLevelToEventLevel(r.Level),
		Category:  extractCategory(r),
		ActorID:   extractActor(r),
		Message:   r.Message,
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	})
}

// slogLevelToEventLevel converts a slog.Level to an event log level.
func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// extractCategory attempts to extract a category from the log record
// attributes. It looks for a "category" attribute or infers from common
// patterns in the message.
func extractCategory(r slog.Record) string {
	var category string

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false // Stop iteration
		}
		return true
	})

	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "password") || strings.Contains(msg, "account"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "application"):
		return model.EventCategoryApplication
	case strings.Contains(msg, "score") || strings.Contains(msg, "scoring"):
		return model.EventCategoryScore
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	default:
		return model.EventCategorySystem
	}
}

// extractActor pulls a user uid out of the record attributes when present.
func extractActor(r slog.Record) string {
	var actor string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "uid" || a.Key == "actor" {
			actor = a.Value.String()
			return false
		}
		return true
	})
	return actor
}

// extractMetadata collects all log attributes into a JSON string.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	// Build a simple JSON object from attributes
	var sb strings.Builder
	sb.WriteString("{")
	first := true

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			return true // Skip category, already extracted
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})

	sb.WriteString("}")
	return sb.String()
}

// escapeJSON escapes special characters in a string for JSON.
func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
