package events

import (
	"context"
	"log/slog"
)

// NewAuditLogger returns a handler that writes one structured log line per
// event. Subscribed with SubscribeAll it forms the audit trail of every
// admin mutation.
func NewAuditLogger(logger *slog.Logger) Handler {
	return func(ctx context.Context, event Event) error {
		attrs := []any{
			"event_id", event.ID,
			"action", event.Action,
			"resource", event.Resource,
			"resource_id", event.ResourceID,
			"name", event.Name,
			"occurred_at", event.OccurredAt,
		}
		for k, v := range event.Meta {
			attrs = append(attrs, k, v)
		}
		logger.Info("audit", attrs...)
		return nil
	}
}
