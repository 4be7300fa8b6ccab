package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const dispatchTopic = "domain-events"

// Handler consumes one domain event. Handler errors are logged and swallowed;
// they never propagate to the operation that emitted the event.
type Handler func(ctx context.Context, event Event) error

type registration struct {
	name     string
	priority int
	handler  Handler
}

// Registry holds the handlers subscribed to each event type, ordered by
// priority descending. It is populated during process startup and read-only
// once the dispatcher starts.
type Registry struct {
	handlers map[string][]registration
	frozen   bool
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]registration)}
}

// Register adds a handler for an event type. Higher priority runs first;
// equal priorities run in registration order.
func (r *Registry) Register(eventType, name string, priority int, handler Handler) error {
	if r.frozen {
		return fmt.Errorf("registry is frozen, register handlers before the dispatcher starts")
	}
	r.handlers[eventType] = append(r.handlers[eventType], registration{
		name:     name,
		priority: priority,
		handler:  handler,
	})
	sort.SliceStable(r.handlers[eventType], func(i, j int) bool {
		return r.handlers[eventType][i].priority > r.handlers[eventType][j].priority
	})
	return nil
}

func (r *Registry) handlersFor(eventType string) []registration {
	return r.handlers[eventType]
}

// Dispatcher drains an in-process event queue and fans events out to the
// registered handlers. It decouples webhook-style consumers from the
// transactional core: Emit appends to the queue and returns, the dispatcher
// delivers asynchronously.
type Dispatcher struct {
	pubsub   *gochannel.GoChannel
	registry *Registry
	logger   *slog.Logger
	// Optional downstream publisher (e.g. Kafka); nil means in-process only.
	forward EventPublisher
}

func NewDispatcher(registry *Registry, forward EventPublisher, logger *slog.Logger) *Dispatcher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewSlogLogger(logger),
	)
	return &Dispatcher{
		pubsub:   pubsub,
		registry: registry,
		logger:   logger,
		forward:  forward,
	}
}

// Publish enqueues an event. Best-effort: callers treat failure as
// non-fatal, so errors surface only to be logged by the emitting side.
func (d *Dispatcher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	return d.pubsub.Publish(dispatchTopic, msg)
}

// Start freezes the registry and begins draining the queue. Runs until ctx
// is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.registry.frozen = true

	messages, err := d.pubsub.Subscribe(ctx, dispatchTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to dispatch topic: %w", err)
	}

	go func() {
		for msg := range messages {
			d.dispatch(ctx, msg)
			msg.Ack()
		}
	}()

	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, msg *message.Message) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		d.logger.Error("Failed to decode event", "error", err, "message_id", msg.UUID)
		return
	}

	for _, reg := range d.registry.handlersFor(event.Type) {
		if err := reg.handler(ctx, event); err != nil {
			d.logger.Error("Event handler failed",
				"handler", reg.name,
				"event_type", event.Type,
				"event_id", event.ID,
				"error", err)
		}
	}

	if d.forward != nil {
		if err := d.forward.Publish(ctx, event); err != nil {
			d.logger.Error("Failed to forward event",
				"event_type", event.Type,
				"event_id", event.ID,
				"error", err)
		}
	}
}

func (d *Dispatcher) Close() error {
	return d.pubsub.Close()
}
