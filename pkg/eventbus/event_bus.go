// Package eventbus carries workflow store and execution lifecycle events
// between the executor, the services and any subscriber.
package eventbus

import (
	"context"
	"errors"

	"github.com/n3wth/skillflow/pkg/events"
)

// ErrUnknownEventType is returned when a handler is registered for an event
// type the bus cannot decode.
var ErrUnknownEventType = errors.New("unknown event type")

type Event interface {
	GetType() events.EventType
}

// EventPublisher is all the executor and the services need. key is the
// workflow id, so events of one workflow share a partition.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber dispatches decoded events to one handler per type.
// Handlers must be registered before Subscribe.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the concrete event struct, for example
// *events.NodeCompleted. Returning an error nacks the message.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
