package dashboard

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poidash/internal/domain/dashboard"
)

func newTestSession(t *testing.T, query string) (*Session, *fakeSource, *History, *fakeTimers) {
	t.Helper()

	initial, err := dashboard.ParseQuery(query)
	require.NoError(t, err)

	source := newFakeSource()
	history := NewHistory(query)
	timers := &fakeTimers{}

	session := NewSession(source, history, nil, initial, SessionConfig{PageLimit: 50})
	session.Debouncer().WithTimer(timers.After)
	history.OnNavigate(func(q string) {
		require.NoError(t, session.Navigate(q))
	})
	t.Cleanup(session.Close)

	return session, source, history, timers
}

func TestSession_StartFetchesInitialFilter(t *testing.T) {
	session, source, _, _ := newTestSession(t, "category=Park&page=2&search=lake&view=1")

	session.Start()
	session.Wait()

	calls := source.ListCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Page)
	assert.Equal(t, "Park", calls[0].Category)
	assert.Equal(t, "lake", calls[0].Search)

	snap := session.Snapshot()
	assert.Equal(t, "lake", snap.SearchInput)
	assert.Equal(t, dashboard.ViewMap, snap.Filter.View)
	assert.False(t, snap.View.Loading)
	assert.Equal(t, "pParklake", snap.View.POIs[0].Name)
}

func TestSession_DebouncedSearchCommitsOnce(t *testing.T) {
	session, source, history, timers := newTestSession(t, "page=3")
	session.Start()
	session.Wait()

	session.Input("c")
	session.Input("ca")
	session.Input("caf")

	assert.Len(t, source.ListCalls(), 1, "no fetch while typing")
	assert.Empty(t, history.Writes(), "no persisted write while typing")
	assert.Equal(t, "caf", session.Snapshot().SearchInput)

	timers.Elapse()
	session.Wait()

	assert.Equal(t, []HistoryEntry{{Query: "search=caf", Mode: dashboard.NavigationReplace}}, history.Writes())
	assert.Equal(t, 1, history.Len(), "search replaces the current entry")

	calls := source.ListCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, 1, calls[1].Page)
	assert.Equal(t, "caf", calls[1].Search)
}

func TestSession_ViewChangeDoesNotRefetch(t *testing.T) {
	session, source, history, _ := newTestSession(t, "")
	session.Start()
	session.Wait()

	require.NoError(t, session.SetView(dashboard.ViewList))
	session.Wait()

	assert.Len(t, source.ListCalls(), 1)
	assert.Equal(t, []HistoryEntry{{Query: "view=2", Mode: dashboard.NavigationPush}}, history.Writes())
}

func TestSession_CategoryAndPageRefetch(t *testing.T) {
	session, source, _, _ := newTestSession(t, "")
	session.Start()
	session.Wait()

	session.SetCategory("Food")
	session.Wait()
	require.NoError(t, session.SetPage(2))
	session.Wait()

	calls := source.ListCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, "Food", calls[1].Category)
	assert.Equal(t, 1, calls[1].Page)
	assert.Equal(t, 2, calls[2].Page)
	assert.Equal(t, 2, session.Snapshot().View.Pagination.CurrentPage)
}

func TestSession_BackNavigationResetsSearchInput(t *testing.T) {
	session, source, history, timers := newTestSession(t, "")
	session.Start()
	session.Wait()

	session.SetCategory("Food")
	session.Wait()
	session.Input("tac")
	timers.Elapse()
	session.Wait()
	require.Equal(t, "tac", session.Snapshot().Filter.Search)

	// Start typing again, then navigate back before the timer fires.
	session.Input("taco")
	writes := len(history.Writes())
	require.True(t, history.Back())
	session.Wait()

	snap := session.Snapshot()
	assert.Equal(t, dashboard.DefaultFilter(), snap.Filter)
	assert.Equal(t, "", snap.SearchInput, "displayed input follows the URL")
	assert.False(t, session.Debouncer().Pending())
	assert.Len(t, history.Writes(), writes)

	calls := source.ListCalls()
	assert.Equal(t, "all", calls[len(calls)-1].Category)
	assert.Equal(t, "", calls[len(calls)-1].Search)
}

func TestSession_Export(t *testing.T) {
	session, _, _, _ := newTestSession(t, "category=Food")
	session.Start()
	session.Wait()

	out := session.Export()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Category,Sentiment,Latitude,Longitude", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "pFood,Food,"))
}

func TestSession_PublishesEvents(t *testing.T) {
	source := newFakeSource()
	bus := &recordingBus{}
	session := NewSession(source, nil, bus, dashboard.DefaultFilter(), SessionConfig{SubjectPrefix: "dash"})
	defer session.Close()

	session.Start()
	session.Wait()
	session.SetCategory("Food")
	session.Wait()

	subjects := bus.Subjects()
	viewSubject := "dash." + session.ID() + ".view"
	locationSubject := "dash." + session.ID() + ".location"
	assert.Contains(t, subjects, viewSubject)
	assert.Contains(t, subjects, locationSubject)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	for _, m := range bus.messages {
		if m.Subject != locationSubject {
			continue
		}
		var ev LocationEvent
		require.NoError(t, json.Unmarshal(m.Data, &ev))
		assert.Equal(t, LocationEvent{Mode: dashboard.NavigationPush, Query: "category=Food"}, ev)
	}

	last := bus.messages[len(bus.messages)-1]
	assert.Equal(t, viewSubject, last.Subject)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(last.Data, &snap))
	assert.Equal(t, "Food", snap.Filter.Category)
	assert.False(t, snap.View.Loading)
}

func TestSession_CloseStopsRefreshes(t *testing.T) {
	session, source, _, _ := newTestSession(t, "")
	session.Close()

	session.Start()
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, source.ListCalls())
}

func TestSession_RefreshRacingCloseStartsNothingAfterClose(t *testing.T) {
	session, source, _, _ := newTestSession(t, "")

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				session.Retry()
			}
		}
	}()

	time.Sleep(5 * time.Millisecond)
	session.Close()
	afterClose := len(source.ListCalls())

	close(stop)
	<-done
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, afterClose, len(source.ListCalls()))
}
