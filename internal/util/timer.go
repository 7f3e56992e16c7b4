package util

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Timer measures how long an outbound call took.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer starting at current time.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since start, or zero for an unstarted timer.
func (t Timer) Elapsed() time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed milliseconds since start.
func (t Timer) ElapsedMs() int64 {
	return t.Elapsed().Milliseconds()
}

// Fields exposes the elapsed time as a log field.
func (t Timer) Fields() logrus.Fields {
	return logrus.Fields{"elapsed_ms": t.ElapsedMs()}
}
