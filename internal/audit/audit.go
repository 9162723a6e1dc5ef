// Package audit records the mutations users make through the console.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Actions recorded by the console.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionReturn  = "return"
	ActionOverdue = "overdue"
)

// Entry is one successful mutation. ResourceID is zero for creates, since the
// console does not keep the backend's response.
type Entry struct {
	ID         int64
	UserID     int64
	Action     string
	Resource   string
	ResourceID int64
	RemoteAddr string
	CreatedAt  time.Time
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
}

// LogRecorder writes entries to a structured logger. It is used when no
// database is configured.
type LogRecorder struct {
	log *slog.Logger
}

func NewLogRecorder(log *slog.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(ctx context.Context, e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.log.InfoContext(ctx, "audit",
		"user_id", e.UserID,
		"action", e.Action,
		"resource", e.Resource,
		"resource_id", e.ResourceID,
		"remote_addr", e.RemoteAddr,
	)
	return nil
}
