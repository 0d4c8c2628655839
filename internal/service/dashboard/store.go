// internal/service/dashboard/store.go

package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"poidash/internal/domain/dashboard"
)

var (
	// ErrInvalidPage is returned for page numbers below 1
	ErrInvalidPage = errors.New("page must be at least 1")

	// ErrInvalidView is returned for view indexes outside the known views
	ErrInvalidView = errors.New("unknown view")
)

// Change describes a filter state transition
type Change struct {
	Prev     dashboard.FilterState
	Next     dashboard.FilterState
	External bool // reconciled from the persisted query, not a user action
}

// FetchKeyChanged reports whether the transition requires new data
func (c Change) FetchKeyChanged() bool {
	return c.Prev.FetchKey() != c.Next.FetchKey()
}

// Store owns the filter state and keeps it in sync with the persisted query
type Store struct {
	mu          sync.Mutex
	state       dashboard.FilterState
	navigator   dashboard.Navigator
	subscribers map[int]func(Change)
	nextID      int
}

// NewStore creates a store initialized from the persisted query
func NewStore(initial dashboard.FilterState, navigator dashboard.Navigator) *Store {
	return &Store{
		state:       initial,
		navigator:   navigator,
		subscribers: make(map[int]func(Change)),
	}
}

// State returns the current filter state
func (s *Store) State() dashboard.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state change and returns a cancel func.
// Subscribers run synchronously on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// SetCategory selects a category and returns to the first page
func (s *Store) SetCategory(category string) {
	if category == "" {
		category = dashboard.AllCategories
	}
	s.apply(func(f *dashboard.FilterState) {
		f.Category = category
		f.Page = 1
	}, dashboard.NavigationPush)
}

// SetPage moves to page n
func (s *Store) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, n)
	}
	s.apply(func(f *dashboard.FilterState) {
		f.Page = n
	}, dashboard.NavigationPush)
	return nil
}

// SetView switches the active view
func (s *Store) SetView(idx int) error {
	if !dashboard.ValidView(idx) {
		return fmt.Errorf("%w: %d", ErrInvalidView, idx)
	}
	s.apply(func(f *dashboard.FilterState) {
		f.View = idx
	}, dashboard.NavigationPush)
	return nil
}

// CommitSearch stores a settled search term and returns to the first page.
// The history entry is replaced so typing does not flood navigation.
func (s *Store) CommitSearch(text string) {
	s.apply(func(f *dashboard.FilterState) {
		f.Search = text
		f.Page = 1
	}, dashboard.NavigationReplace)
}

// Sync reconciles the state with an externally changed persisted query.
// It never writes the persisted query back.
func (s *Store) Sync(query string) error {
	next, err := dashboard.ParseQuery(query)
	if err != nil {
		return fmt.Errorf("parsing persisted query: %w", err)
	}

	s.mu.Lock()
	prev := s.state
	if prev == next {
		s.mu.Unlock()
		return nil
	}
	s.state = next
	subscribers := s.snapshotSubscribers()
	s.mu.Unlock()

	notify(subscribers, Change{Prev: prev, Next: next, External: true})
	return nil
}

func (s *Store) apply(mutate func(*dashboard.FilterState), mode dashboard.NavigationMode) {
	s.mu.Lock()
	prev := s.state
	next := prev
	mutate(&next)
	if next == prev {
		s.mu.Unlock()
		return
	}
	s.state = next

	// Written under the lock so history order matches state order.
	// Navigators must not call back into the store.
	if s.navigator != nil {
		query := next.Encode()
		if mode == dashboard.NavigationReplace {
			s.navigator.Replace(query)
		} else {
			s.navigator.Push(query)
		}
	}

	subscribers := s.snapshotSubscribers()
	s.mu.Unlock()

	notify(subscribers, Change{Prev: prev, Next: next})
}

func (s *Store) snapshotSubscribers() []func(Change) {
	out := make([]func(Change), 0, len(s.subscribers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subscribers []func(Change), change Change) {
	for _, fn := range subscribers {
		fn(change)
	}
}
