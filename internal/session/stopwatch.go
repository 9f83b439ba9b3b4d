package session

import "time"

// Stopwatch measures play time with pauses taken out. The zero value is
// stopped at zero.
type Stopwatch struct {
	acc     time.Duration
	started *time.Time
}

func (w *Stopwatch) Start(now time.Time) {
	if w.started == nil {
		w.started = &now
	}
}

func (w *Stopwatch) Stop(now time.Time) {
	if w.started != nil {
		w.acc += now.Sub(*w.started)
		w.started = nil
	}
}

func (w *Stopwatch) Running() bool {
	return w.started != nil
}

func (w *Stopwatch) Elapsed(now time.Time) time.Duration {
	if w.started == nil {
		return w.acc
	}
	return w.acc + now.Sub(*w.started)
}

// Reset stops the watch and clears it.
func (w *Stopwatch) Reset() {
	*w = Stopwatch{}
}
