package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SubscribeAll registers a handler for every action.
const SubscribeAll = "*"

// Event is one record emitted after a successful admin mutation.
type Event struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID int64          `json:"resource_id"`
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Meta       map[string]any `json:"meta,omitempty"`
}

func NewEvent(action, resource string, resourceID int64, name string) Event {
	return Event{
		ID:         uuid.New().String(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Name:       name,
		OccurredAt: time.Now(),
	}
}

type Handler func(ctx context.Context, event Event) error

// Bus fans published events out to subscribed handlers. Handlers run
// asynchronously; a failing handler is logged and never blocks the caller.
type Bus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.RWMutex
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one action, or for every action when
// given SubscribeAll.
func (b *Bus) Subscribe(action string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[action] = append(b.handlers[action], handler)
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Action])+len(b.handlers[SubscribeAll]))
	handlers = append(handlers, b.handlers[event.Action]...)
	handlers = append(handlers, b.handlers[SubscribeAll]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			if err := h(ctx, event); err != nil {
				b.logger.Error("event handler failed",
					"action", event.Action,
					"event_id", event.ID,
					"error", err)
			}
		}(handler)
	}
}

// PublishSync runs every handler inline and returns the first failure.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Action])+len(b.handlers[SubscribeAll]))
	handlers = append(handlers, b.handlers[event.Action]...)
	handlers = append(handlers, b.handlers[SubscribeAll]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				"action", event.Action,
				"event_id", event.ID,
				"error", err)
			return err
		}
	}
	return nil
}
