// internal/domain/dashboard/service.go

package dashboard

import (
	"context"
	"errors"
	"time"
)

// ErrShareNotFound is returned when a share link does not exist
var ErrShareNotFound = errors.New("share not found")

// NavigationMode tells how a persisted query write lands in history
type NavigationMode string

const (
	// NavigationPush adds a new history entry
	NavigationPush NavigationMode = "push"

	// NavigationReplace overwrites the current history entry
	NavigationReplace NavigationMode = "replace"
)

// Navigator receives writes of the persisted query (the shareable URL)
type Navigator interface {
	// Push adds query as a new navigable entry
	Push(query string)

	// Replace overwrites the current entry with query
	Replace(query string)
}

// Message is an event delivered by the bus
type Message struct {
	Subject string
	Data    []byte
}

// Subscription is an active bus subscription
type Subscription interface {
	Unsubscribe() error
}

// EventBus carries dashboard events between sessions and their transports
type EventBus interface {
	// Publish sends data on subject
	Publish(subject string, data []byte) error

	// Subscribe registers handler for messages on subject
	Subscribe(subject string, handler func(Message)) (Subscription, error)

	// Close releases the underlying connection
	Close() error
}

// Share is a stored, shareable dashboard link
type Share struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShareStore persists share links
type ShareStore interface {
	// SaveShare stores a share and returns it with its ID assigned
	SaveShare(ctx context.Context, query string) (*Share, error)

	// GetShare retrieves a share by ID
	GetShare(ctx context.Context, id string) (*Share, error)
}
