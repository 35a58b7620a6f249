package events

import (
	"context"
	"log/slog"
)

// AuditEventTypes lists the events written to the audit log.
var AuditEventTypes = []string{
	LoginSucceeded,
	LoginFailed,
	TokenRefreshed,
	PasswordChanged,
	PositionRepaired,
	UserProvisioned,
	PositionAssigned,
	UserDeactivated,
}

// RegisterAuditLog subscribes a structured log writer to every audit event.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := logger.With("component", "audit")
	handler := func(ctx context.Context, event Event) error {
		attrs := []any{
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
		}
		if data, ok := event.Payload().(map[string]interface{}); ok {
			for k, v := range data {
				attrs = append(attrs, k, v)
			}
		}
		level := slog.LevelInfo
		if event.EventType() == LoginFailed || event.EventType() == PositionRepaired {
			level = slog.LevelWarn
		}
		audit.Log(ctx, level, "audit event", attrs...)
		return nil
	}

	for _, t := range AuditEventTypes {
		bus.Subscribe(t, handler)
	}
}
