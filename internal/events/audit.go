package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskboard/internal/platform/logger"
)

// AuditLogHandler writes one info line per task event.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an AuditLogHandler. Request-scoped loggers in
// the event context take precedence over l.
func NewAuditLogHandler(l *slog.Logger) *AuditLogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuditLogHandler{logger: l.With("component", "audit")}
}

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("task event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.Int64("task_id", event.TaskID),
		slog.Time("occurred_at", event.CreatedAt))
	return nil
}
