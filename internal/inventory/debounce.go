package inventory

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of Trigger calls into one call of fn, made once
// the window has passed without another trigger.
type Debouncer struct {
	window time.Duration
	fn     func()

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &Debouncer{window: window, fn: fn}
}

func (d *Debouncer) Window() time.Duration { return d.window }

// Trigger (re)starts the quiet window, cancelling any pending call.
func (d *Debouncer) Trigger() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// A timer that already fired can't be stopped; the sequence check drops it.
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}
