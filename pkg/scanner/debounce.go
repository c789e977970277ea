package scanner

import (
	"sync"
	"time"
)

// Debouncer suppresses duplicate rapid detections of the same code and
// enforces a single in-flight submission per device. A detection is accepted
// only when no submission is in flight and the code differs from the last
// accepted one; the last code clears on its own after the window so the same
// book can be scanned again.
type Debouncer struct {
	mu       sync.Mutex
	lastCode string
	busy     bool
	window   time.Duration
	timer    *time.Timer
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Accept reports whether a detected code should be submitted. On acceptance
// the debouncer marks itself busy and schedules the window reset; the reset
// runs regardless of when, or whether, Complete is called.
func (d *Debouncer) Accept(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.busy || code == d.lastCode {
		return false
	}

	d.busy = true
	d.lastCode = code

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.lastCode = ""
	})

	return true
}

// Complete marks the in-flight submission finished. It must be called on
// every completion, success or failure, or the device wedges.
func (d *Debouncer) Complete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = false
}
