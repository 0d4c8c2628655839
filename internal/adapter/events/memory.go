// internal/adapter/events/memory.go

package events

import (
	"errors"
	"strings"
	"sync"

	"poidash/internal/domain/dashboard"
)

// ErrClosed is returned when publishing on a closed bus
var ErrClosed = errors.New("event bus closed")

// MemoryBus is an in-process dashboard.EventBus. It supports the NATS
// subject wildcards '*' (one token) and '>' (rest of the subject).
// Handlers run synchronously on the publishing goroutine.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[int]*memorySubscription
	nextID int
	closed bool
}

// NewMemoryBus creates an empty in-process bus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[int]*memorySubscription),
	}
}

type memorySubscription struct {
	bus     *MemoryBus
	id      int
	subject string
	handler func(dashboard.Message)
}

func (s *memorySubscription) Unsubscribe() error {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	return nil
}

// Publish delivers data to every matching subscription
func (b *MemoryBus) Publish(subject string, data []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	var handlers []func(dashboard.Message)
	for id := 0; id < b.nextID; id++ {
		if sub, ok := b.subs[id]; ok && subjectMatches(sub.subject, subject) {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	msg := dashboard.Message{Subject: subject, Data: data}
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

// Subscribe registers handler for messages on subject
func (b *MemoryBus) Subscribe(subject string, handler func(dashboard.Message)) (dashboard.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	sub := &memorySubscription{bus: b, id: b.nextID, subject: subject, handler: handler}
	b.subs[sub.id] = sub
	b.nextID++
	return sub, nil
}

// Close drops all subscriptions
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[int]*memorySubscription)
	return nil
}

func subjectMatches(pattern, subject string) bool {
	p := strings.Split(pattern, ".")
	s := strings.Split(subject, ".")
	for i, token := range p {
		if token == ">" {
			return len(s) > i
		}
		if i >= len(s) {
			return false
		}
		if token != "*" && token != s[i] {
			return false
		}
	}
	return len(p) == len(s)
}

var _ dashboard.EventBus = (*MemoryBus)(nil)
