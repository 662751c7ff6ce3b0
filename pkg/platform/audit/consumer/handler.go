package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"caslkey/internal/platform/kafka/consumer"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/audit/store/postgres"
)

// Materializer stores relayed events for querying. Writes must be idempotent
// on eventID because Kafka delivers at least once.
type Materializer interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// EventHandler materializes audit events of one category.
type EventHandler struct {
	category audit.EventCategory
	store    Materializer
	logger   *slog.Logger
}

func NewEventHandler(category audit.EventCategory, store Materializer, logger *slog.Logger) *EventHandler {
	return &EventHandler{category: category, store: store, logger: logger}
}

// Handle decodes and stores one event. Malformed messages are logged and
// committed so they cannot block the partition.
func (h *EventHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var payload postgres.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal audit payload",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	eventID, event, err := payload.ToEvent()
	if err != nil {
		h.logger.ErrorContext(ctx, "malformed audit event", "topic", msg.Topic, "error", err)
		return nil
	}
	if event.Category != h.category {
		h.logger.WarnContext(ctx, "audit event on wrong topic",
			"event_id", eventID,
			"category", event.Category,
			"expected", h.category,
		)
	}
	if h.category == audit.CategoryCompliance && event.SessionID.IsNil() {
		h.logger.ErrorContext(ctx, "CRITICAL: compliance event missing SessionID",
			"event_id", eventID,
			"action", event.Action,
		)
		return nil
	}

	if err := h.store.AppendWithID(ctx, eventID, event); err != nil {
		return fmt.Errorf("store %s event: %w", h.category, err)
	}

	h.logger.DebugContext(ctx, "stored audit event",
		"event_id", eventID,
		"action", event.Action,
		"session_id", event.SessionID,
	)
	return nil
}
