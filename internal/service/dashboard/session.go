// internal/service/dashboard/session.go

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"poidash/internal/domain/dashboard"
	"poidash/internal/domain/poi"
	"poidash/internal/service/export"
)

// SessionConfig contains configuration for a dashboard session
type SessionConfig struct {
	PageLimit      int
	SearchDebounce time.Duration
	RefreshTimeout time.Duration
	SubjectPrefix  string
}

// Snapshot is everything a renderer needs at one point in time
type Snapshot struct {
	SessionID   string                `json:"sessionId"`
	Filter      dashboard.FilterState `json:"filter"`
	Query       string                `json:"query"`
	SearchInput string                `json:"searchInput"`
	View        dashboard.ViewState   `json:"view"`
}

// LocationEvent is published for every persisted query write
type LocationEvent struct {
	Mode  dashboard.NavigationMode `json:"mode"`
	Query string                   `json:"query"`
}

// Session is one dashboard instance. It owns the filter store, the search
// debouncer and the orchestrator, and wires them together.
type Session struct {
	id           string
	config       SessionConfig
	store        *Store
	debouncer    *Debouncer
	orchestrator *Orchestrator
	bus          dashboard.EventBus
	navigator    dashboard.Navigator

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// guards the cancelled check and wg.Add against Close
	refreshMu sync.Mutex

	unsubscribe []func()
}

// NewSession creates a session whose filter state is read from the
// persisted query. Navigation writes go to navigator; events go to bus
// when it is non-nil.
func NewSession(
	source poi.Source,
	navigator dashboard.Navigator,
	bus dashboard.EventBus,
	initial dashboard.FilterState,
	config SessionConfig,
) *Session {
	if config.SubjectPrefix == "" {
		config.SubjectPrefix = "dashboard"
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     uuid.New().String(),
		config: config,
		bus:    bus,
		ctx:    ctx,
		cancel: cancel,
	}
	s.navigator = &publishingNavigator{next: navigator, session: s}

	s.store = NewStore(initial, s.navigator)
	s.debouncer = NewDebouncer(initial.Search, config.SearchDebounce, s.store.CommitSearch)
	s.orchestrator = NewOrchestrator(source, OrchestratorConfig{
		PageLimit:      config.PageLimit,
		RefreshTimeout: config.RefreshTimeout,
	})

	s.unsubscribe = append(s.unsubscribe,
		s.store.Subscribe(s.onFilterChange),
		s.orchestrator.Subscribe(s.onViewChange),
	)

	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Store returns the filter state store
func (s *Session) Store() *Store {
	return s.store
}

// Debouncer returns the search debouncer
func (s *Session) Debouncer() *Debouncer {
	return s.debouncer
}

// Orchestrator returns the data orchestrator
func (s *Session) Orchestrator() *Orchestrator {
	return s.orchestrator
}

// ViewSubject is the bus subject carrying committed snapshots
func (s *Session) ViewSubject() string {
	return fmt.Sprintf("%s.%s.view", s.config.SubjectPrefix, s.id)
}

// LocationSubject is the bus subject carrying persisted query writes
func (s *Session) LocationSubject() string {
	return fmt.Sprintf("%s.%s.location", s.config.SubjectPrefix, s.id)
}

// Start issues the initial fetch for the startup filter state
func (s *Session) Start() {
	s.refresh(s.store.State())
}

// Input feeds raw search input through the debouncer
func (s *Session) Input(text string) {
	s.debouncer.Input(text)
}

// SetCategory selects a category
func (s *Session) SetCategory(category string) {
	s.store.SetCategory(category)
}

// SetPage moves to page n
func (s *Session) SetPage(n int) error {
	return s.store.SetPage(n)
}

// SetView switches the active view
func (s *Session) SetView(idx int) error {
	return s.store.SetView(idx)
}

// Navigate applies an externally changed persisted query, e.g. back navigation
func (s *Session) Navigate(query string) error {
	return s.store.Sync(query)
}

// Retry re-runs the refresh for the current filter state
func (s *Session) Retry() {
	s.refresh(s.store.State())
}

// Export serializes the currently loaded page
func (s *Session) Export() string {
	return export.Serialize(s.orchestrator.View().POIs)
}

// Snapshot returns the current state of the session
func (s *Session) Snapshot() Snapshot {
	filter := s.store.State()
	return Snapshot{
		SessionID:   s.id,
		Filter:      filter,
		Query:       filter.Encode(),
		SearchInput: s.debouncer.Value(),
		View:        s.orchestrator.View(),
	}
}

// Wait blocks until all in-flight refreshes have settled
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels pending work and detaches the session from its collaborators
func (s *Session) Close() {
	s.debouncer.Stop()

	s.refreshMu.Lock()
	s.cancel()
	s.refreshMu.Unlock()
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.wg.Wait()
}

func (s *Session) onFilterChange(change Change) {
	if change.External && change.Prev.Search != change.Next.Search {
		s.debouncer.Reset(change.Next.Search)
	}
	if change.FetchKeyChanged() {
		s.refresh(change.Next)
	}
}

func (s *Session) refresh(filter dashboard.FilterState) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.orchestrator.Refresh(s.ctx, filter)
		if err != nil && !errors.Is(err, ErrStale) {
			log.Printf("Dashboard session %s refresh failed: %v", s.id, err)
		}
	}()
}

func (s *Session) onViewChange(view dashboard.ViewState) {
	if s.bus == nil {
		return
	}
	filter := s.store.State()
	s.publish(s.ViewSubject(), Snapshot{
		SessionID:   s.id,
		Filter:      filter,
		Query:       filter.Encode(),
		SearchInput: s.debouncer.Value(),
		View:        view,
	})
}

func (s *Session) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", subject, err)
		return
	}
	if err := s.bus.Publish(subject, data); err != nil {
		log.Printf("Failed to publish %s event: %v", subject, err)
	}
}

// publishingNavigator forwards persisted query writes and mirrors them on the bus
type publishingNavigator struct {
	next    dashboard.Navigator
	session *Session
}

func (n *publishingNavigator) Push(query string) {
	if n.next != nil {
		n.next.Push(query)
	}
	n.emit(dashboard.NavigationPush, query)
}

func (n *publishingNavigator) Replace(query string) {
	if n.next != nil {
		n.next.Replace(query)
	}
	n.emit(dashboard.NavigationReplace, query)
}

func (n *publishingNavigator) emit(mode dashboard.NavigationMode, query string) {
	if n.session.bus == nil {
		return
	}
	n.session.publish(n.session.LocationSubject(), LocationEvent{Mode: mode, Query: query})
}
