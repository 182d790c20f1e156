package bench

import "time"

// Timer measures elapsed wall-clock time on the monotonic clock.
type Timer struct {
	start time.Time
}

// StartTimer returns a running Timer.
func StartTimer() Timer { return Timer{start: time.Now()} }

// Elapsed returns the time since the timer started.
func (t Timer) Elapsed() time.Duration { return time.Since(t.start) }

// ElapsedMillis returns Elapsed in fractional milliseconds.
func (t Timer) ElapsedMillis() float64 {
	return float64(t.Elapsed()) / float64(time.Millisecond)
}
