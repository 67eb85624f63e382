// Package pubsub provides a generic publish/subscribe event system used to
// notify observers about provider lifecycle changes, most importantly the
// algorithms-loaded event published after every successful refresh.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// AlgorithmsLoadedEvent is published when a provider has loaded (or
	// refreshed) its list of available algorithms. Observers should
	// re-query the provider's Algorithms afterwards; the event carries no
	// algorithm payload of its own.
	AlgorithmsLoadedEvent EventType = "algorithms_loaded"

	// ProviderAddedEvent is published when a provider is registered.
	ProviderAddedEvent EventType = "provider_added"

	// ProviderRemovedEvent is published when a provider is removed.
	ProviderRemovedEvent EventType = "provider_removed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	// ID uniquely identifies this event instance.
	ID        string
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// ProviderEvent is the payload for provider lifecycle events.
type ProviderEvent struct {
	// ProviderID is the ID of the provider the event concerns.
	ProviderID string

	// AlgorithmCount is the number of algorithms registered with the
	// provider at the time the event was published.
	AlgorithmCount int
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
