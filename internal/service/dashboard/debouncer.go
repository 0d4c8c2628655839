// internal/service/dashboard/debouncer.go

package dashboard

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a search term is committed
const DefaultSearchDebounce = 1000 * time.Millisecond

// Stopper cancels a pending timer
type Stopper interface {
	Stop() bool
}

// TimerFunc arms fn to run once after d
type TimerFunc func(d time.Duration, fn func()) Stopper

func realTimer(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, fn)
}

// Debouncer delays committing search input until typing settles. It holds
// at most one pending timer; arming a new one cancels the previous one.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	after     TimerFunc
	pending   Stopper
	seq       uint64
	input     string
	committed string
	commit    func(string)
}

// NewDebouncer creates a debouncer whose committed value starts at initial
func NewDebouncer(initial string, delay time.Duration, commit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Debouncer{
		delay:     delay,
		after:     realTimer,
		input:     initial,
		committed: initial,
		commit:    commit,
	}
}

// WithTimer replaces the timer implementation
func (d *Debouncer) WithTimer(after TimerFunc) *Debouncer {
	d.mu.Lock()
	d.after = after
	d.mu.Unlock()
	return d
}

// Input records a keystroke-level value and restarts the quiet period
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.input = text
	d.cancelLocked()
	seq := d.seq
	d.pending = d.after(d.delay, func() { d.fire(seq) })
}

// Reset force-sets both the displayed and committed value after an external
// change. Any pending commit is dropped and nothing is committed.
func (d *Debouncer) Reset(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.input = text
	d.committed = text
}

// Value returns the displayed value
func (d *Debouncer) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input
}

// Committed returns the last committed value
func (d *Debouncer) Committed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Pending reports whether a commit is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels any pending commit
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.cancelLocked()
	d.mu.Unlock()
}

// cancelLocked stops the pending timer. The sequence bump also invalidates a
// timer that already fired but has not taken the lock yet.
func (d *Debouncer) cancelLocked() {
	d.seq++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	if d.input == d.committed {
		d.mu.Unlock()
		return
	}
	d.committed = d.input
	text := d.committed
	d.mu.Unlock()

	if d.commit != nil {
		d.commit(text)
	}
}
