// internal/service/dashboard/history.go

package dashboard

import (
	"sync"

	"poidash/internal/domain/dashboard"
)

// HistoryEntry is one navigable persisted query
type HistoryEntry struct {
	Query string
	Mode  dashboard.NavigationMode
}

// History is an in-memory navigation history with browser semantics. It is
// the Navigator used by the CLI and by tests.
type History struct {
	mu       sync.Mutex
	entries  []string
	cursor   int
	writes   []HistoryEntry
	onChange func(query string)
}

// NewHistory creates a history whose current entry is initial
func NewHistory(initial string) *History {
	return &History{
		entries: []string{initial},
	}
}

// OnNavigate registers the listener invoked by Back and Forward
func (h *History) OnNavigate(fn func(query string)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

// Push adds a new entry after the cursor, dropping any forward entries
func (h *History) Push(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.cursor+1], query)
	h.cursor++
	h.writes = append(h.writes, HistoryEntry{Query: query, Mode: dashboard.NavigationPush})
}

// Replace overwrites the current entry
func (h *History) Replace(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.cursor] = query
	h.writes = append(h.writes, HistoryEntry{Query: query, Mode: dashboard.NavigationReplace})
}

// Current returns the current entry
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Writes returns every Push and Replace in order
func (h *History) Writes() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HistoryEntry(nil), h.writes...)
}

// Back moves to the previous entry. It reports false at the first entry.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves to the next entry. It reports false at the last entry.
func (h *History) Forward() bool {
	return h.move(1)
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.cursor + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.cursor = next
	query := h.entries[next]
	fn := h.onChange
	h.mu.Unlock()

	if fn != nil {
		fn(query)
	}
	return true
}

var _ dashboard.Navigator = (*History)(nil)
