package dashboard

import (
	"context"
	"sync"
	"time"

	"poidash/internal/domain/dashboard"
	"poidash/internal/domain/poi"
)

// fakeSource implements poi.Source with canned data
type fakeSource struct {
	mu         sync.Mutex
	listFn     func(ctx context.Context, params poi.ListParams) (poi.PaginatedResponse, error)
	sentiment  []poi.SentimentCount
	categories []poi.CategoryCount
	emotions   *poi.EmotionAverages
	geo        []poi.GeoPoint
	listCalls  []poi.ListParams
	geoCalls   []poi.GeoParams
	panicOn    string
	aggregates func() // called at the start of every aggregate call
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		sentiment:  []poi.SentimentCount{{Label: "Positive", Count: 3}},
		categories: []poi.CategoryCount{{Label: "Food", Count: 2}, {ID: "Park", Count: 1}},
		geo:        []poi.GeoPoint{{Name: "A", Category: "Food"}},
	}
}

func pageOf(page, totalPages int, names ...string) poi.PaginatedResponse {
	data := make([]poi.POI, 0, len(names))
	for _, n := range names {
		data = append(data, poi.POI{ID: n, Name: n, Category: "Food"})
	}
	return poi.PaginatedResponse{
		Data:       data,
		Pagination: poi.Pagination{Page: page, TotalPages: totalPages, Total: len(names)},
	}
}

func (f *fakeSource) ListPOIs(ctx context.Context, params poi.ListParams) (poi.PaginatedResponse, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, params)
	fn := f.listFn
	shouldPanic := f.panicOn == "pois"
	f.mu.Unlock()

	if shouldPanic {
		panic("boom")
	}
	if fn != nil {
		return fn(ctx, params)
	}
	return pageOf(params.Page, 3, "p"+params.Category+params.Search), nil
}

func (f *fakeSource) SentimentAnalytics(ctx context.Context) []poi.SentimentCount {
	f.enterAggregate()
	return f.sentiment
}

func (f *fakeSource) CategoryAnalytics(ctx context.Context) []poi.CategoryCount {
	f.enterAggregate()
	return f.categories
}

func (f *fakeSource) EmotionAnalytics(ctx context.Context) *poi.EmotionAverages {
	f.enterAggregate()
	return f.emotions
}

func (f *fakeSource) GeoData(ctx context.Context, params poi.GeoParams) []poi.GeoPoint {
	f.mu.Lock()
	f.geoCalls = append(f.geoCalls, params)
	f.mu.Unlock()
	f.enterAggregate()
	return f.geo
}

func (f *fakeSource) enterAggregate() {
	f.mu.Lock()
	hook := f.aggregates
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (f *fakeSource) ListCalls() []poi.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]poi.ListParams(nil), f.listCalls...)
}

// fakeTimers records armed timers so tests decide when they fire
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (ft *fakeTimers) After(d time.Duration, fn func()) Stopper {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{delay: d, fn: fn}
	ft.timers = append(ft.timers, t)
	return t
}

// Active returns the timers that are neither stopped nor fired
func (ft *fakeTimers) Active() []*fakeTimer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	var out []*fakeTimer
	for _, t := range ft.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// Armed returns how many timers were ever armed
func (ft *fakeTimers) Armed() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.timers)
}

// Elapse fires every active timer, as if the quiet period passed
func (ft *fakeTimers) Elapse() {
	for _, t := range ft.Active() {
		t.fired = true
		t.fn()
	}
}

// recordingNavigator captures persisted query writes
type recordingNavigator struct {
	mu     sync.Mutex
	writes []HistoryEntry
}

func (n *recordingNavigator) Push(query string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.writes = append(n.writes, HistoryEntry{Query: query, Mode: dashboard.NavigationPush})
}

func (n *recordingNavigator) Replace(query string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.writes = append(n.writes, HistoryEntry{Query: query, Mode: dashboard.NavigationReplace})
}

func (n *recordingNavigator) Writes() []HistoryEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]HistoryEntry(nil), n.writes...)
}

// recordingBus captures published events
type recordingBus struct {
	mu       sync.Mutex
	messages []dashboard.Message
}

func (b *recordingBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, dashboard.Message{Subject: subject, Data: data})
	return nil
}

func (b *recordingBus) Subscribe(subject string, handler func(dashboard.Message)) (dashboard.Subscription, error) {
	return nil, nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) Subjects() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		out = append(out, m.Subject)
	}
	return out
}
