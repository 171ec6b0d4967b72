package pipeline

import (
	"time"

	"github.com/abhisek/namebayes/internal/report"
)

// timer tracks the wall time of consecutive pipeline phases.
type timer struct {
	phases []report.Timing
	starts []time.Time
}

func newTimer() *timer {
	return &timer{phases: make([]report.Timing, 0, 6), starts: make([]time.Time, 0, 6)}
}

// begin starts a phase and returns its index.
func (t *timer) begin(name string) int {
	t.phases = append(t.phases, report.Timing{Phase: name})
	t.starts = append(t.starts, time.Now())
	return len(t.phases) - 1
}

// end finishes the phase at idx and returns its duration.
func (t *timer) end(idx int) time.Duration {
	if idx < 0 || idx >= len(t.phases) {
		return 0
	}
	d := time.Since(t.starts[idx])
	t.phases[idx].Duration = d
	return d
}

func (t *timer) report() []report.Timing {
	return append([]report.Timing(nil), t.phases...)
}
