package reconstruct

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Phase labels the coarse stage a reconstruction batch is in.
type Phase string

// Phases, in pipeline order.
const (
	PhaseModelLoading   Phase = "model-loading"
	PhaseEstimating     Phase = "estimating"
	PhaseGeneratingMesh Phase = "generating-mesh"
	PhaseSmoothing      Phase = "smoothing"
	PhaseAligning       Phase = "aligning"
	PhaseMerging        Phase = "merging"
	PhaseComplete       Phase = "complete"
)

// Event is one progress update. Percent is monotonically non-decreasing
// within a job.
type Event struct {
	JobID   uuid.UUID
	Phase   Phase
	Percent int
	At      time.Time
}

// ProgressFunc receives progress events. The host decides how to render
// them.
type ProgressFunc func(Event)

// progressThrottle limits same-phase percent updates.
const progressThrottle = 100 * time.Millisecond

// progressReporter emits monotonic, throttled progress events for one job.
type progressReporter struct {
	jobID     uuid.UUID
	fn        ProgressFunc
	clock     clock.Clock
	percent   *atomic.Int32
	lastPhase Phase
	lastEmit  time.Time
}

func newProgressReporter(jobID uuid.UUID, fn ProgressFunc, clk clock.Clock) *progressReporter {
	return &progressReporter{
		jobID:   jobID,
		fn:      fn,
		clock:   clk,
		percent: atomic.NewInt32(0),
	}
}

// report emits an event for the phase at the given percent. Percent never
// goes backward; same-phase repeats inside the throttle window are dropped,
// phase transitions and completion always emit.
func (r *progressReporter) report(phase Phase, percent int) {
	if r == nil || r.fn == nil {
		return
	}

	current := r.percent.Load()
	p := int32(percent)
	if p < current {
		p = current
	} else {
		r.percent.Store(p)
	}

	now := r.clock.Now()
	samePhase := phase == r.lastPhase
	if samePhase && phase != PhaseComplete && now.Sub(r.lastEmit) < progressThrottle {
		return
	}
	r.lastPhase = phase
	r.lastEmit = now

	r.fn(Event{
		JobID:   r.jobID,
		Phase:   phase,
		Percent: int(p),
		At:      now,
	})
}
