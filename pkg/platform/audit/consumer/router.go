package consumer

import (
	"context"
	"log/slog"
	"slices"

	"caslkey/internal/platform/kafka/consumer"
	audit "caslkey/pkg/platform/audit"
)

// Router materializes every audit category from its own topic.
type Router struct {
	byTopic map[string]*EventHandler
	logger  *slog.Logger
}

// NewRouter builds one EventHandler per category in topics, all writing to
// store.
func NewRouter(topics map[audit.EventCategory]string, store Materializer, logger *slog.Logger) *Router {
	r := &Router{
		byTopic: make(map[string]*EventHandler, len(topics)),
		logger:  logger,
	}
	for category, topic := range topics {
		r.byTopic[topic] = NewEventHandler(category, store, logger)
	}
	return r
}

// Topics lists the subscribed topics in a stable order.
func (r *Router) Topics() []string {
	out := make([]string, 0, len(r.byTopic))
	for topic := range r.byTopic {
		out = append(out, topic)
	}
	slices.Sort(out)
	return out
}

// Handle dispatches msg by topic. Messages from a topic the router does not
// own are committed and skipped.
func (r *Router) Handle(ctx context.Context, msg *consumer.Message) error {
	h, ok := r.byTopic[msg.Topic]
	if !ok {
		r.logger.WarnContext(ctx, "audit message on unrouted topic", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}
	return h.Handle(ctx, msg)
}
