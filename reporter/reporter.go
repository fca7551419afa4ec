package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/justapithecus/loadcraft/core"
)

// ChannelCapacity bounds the three per-run event channels. Small on
// purpose: it surfaces scheduler/sink back-pressure early rather than
// letting the pipeline buffer megabytes of snapshots.
const ChannelCapacity = 10

// DefaultReportingFrequency is the minimum wall-clock interval between
// successive on_load_action_ended calls per sink. Configuring a smaller
// value panics at construction time.
const DefaultReportingFrequency = 5 * time.Second

// Sink is the contract every reporting sink implements. Methods are
// invoked sequentially per dispatcher and awaited; a sink may perform
// arbitrary I/O. The engine does not recover a panicking sink method, and
// an error returned by a sink method is discarded without retry or
// logging.
type Sink interface {
	// OnTestEnded is invoked exactly once per run, after all dispatchers
	// have drained.
	OnTestEnded(ctx context.Context, status TestStatus) error
	// OnLoadStepEnded is invoked once per completed Load step.
	OnLoadStepEnded(ctx context.Context, status StepStatus) error
	// OnLoadActionEnded is invoked at most once per reporting frequency
	// while a Load step is executing.
	OnLoadActionEnded(ctx context.Context, status StepStatus) error
	// OnInternalStepEnded is invoked once per completed non-Load
	// lifecycle step.
	OnInternalStepEnded(ctx context.Context, stepName string) error
}

// Reporter owns the registered sinks and the throttle policy for the
// action dispatcher. It is constructed once per run by the runner and
// discarded afterwards.
type Reporter struct {
	sinks              []Sink
	reportingFrequency time.Duration
}

// New constructs a Reporter. reportingFrequency of 0 selects
// DefaultReportingFrequency; any configured non-zero value smaller than
// the default panics, since a sub-default throttle window is rejected
// at configuration time rather than silently honored.
func New(sinks []Sink, reportingFrequency time.Duration) *Reporter {
	freq := reportingFrequency
	if freq == 0 {
		freq = DefaultReportingFrequency
	} else if freq < DefaultReportingFrequency {
		panic(fmt.Sprintf("reporting frequency must be greater than or equal to the default value %s", DefaultReportingFrequency))
	}

	return &Reporter{sinks: sinks, reportingFrequency: freq}
}

func (r *Reporter) dispatch(invoke func(Sink) error) {
	for _, sink := range r.sinks {
		_ = invoke(sink)
	}
}

// DispatchActions drains ch, throttled: a snapshot is projected and
// fanned out to every sink's OnLoadActionEnded only if more than
// reportingFrequency has elapsed since the previous dispatch and at
// least one sink is registered. Snapshots arriving inside the throttle
// window are dropped, never queued beyond ch's own capacity. The
// returned channel is closed once ch is closed and fully drained.
func (r *Reporter) DispatchActions(ch <-chan core.Snapshot) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		lastEmit := time.Now()
		for snap := range ch {
			if len(r.sinks) == 0 {
				continue
			}
			if time.Since(lastEmit) <= r.reportingFrequency {
				continue
			}

			status := NewStepStatus(snap)
			r.dispatch(func(s Sink) error {
				return s.OnLoadActionEnded(context.Background(), status)
			})
			lastEmit = time.Now()
		}
	}()

	return done
}

// DispatchLoadSteps drains ch, unthrottled: every snapshot is projected,
// fanned out to every sink's OnLoadStepEnded, and appended to the
// returned stats-by-step sequence in arrival order (== declaration order,
// since the lifecycle publishes exactly once per Load step, sequentially).
func (r *Reporter) DispatchLoadSteps(ch <-chan core.Snapshot) (done <-chan struct{}, stepsByStep *[]StepStatus) {
	finished := make(chan struct{})
	steps := make([]StepStatus, 0)

	go func() {
		defer close(finished)

		for snap := range ch {
			status := NewStepStatus(snap)
			r.dispatch(func(s Sink) error {
				return s.OnLoadStepEnded(context.Background(), status)
			})
			steps = append(steps, status)
		}
	}()

	return finished, &steps
}

// DispatchInternalSteps drains ch, unthrottled: every snapshot's step
// name is fanned out to every sink's OnInternalStepEnded.
func (r *Reporter) DispatchInternalSteps(ch <-chan core.Snapshot) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		for snap := range ch {
			name := snap.StepName
			r.dispatch(func(s Sink) error {
				return s.OnInternalStepEnded(context.Background(), name)
			})
		}
	}()

	return done
}

// ReportTestEnded materializes the final TestStatus from final and fans
// it out to every sink's OnTestEnded. It must only be called after the
// three dispatchers above have been joined.
func (r *Reporter) ReportTestEnded(final core.Snapshot) TestStatus {
	status := NewTestStatus(final)
	r.dispatch(func(s Sink) error {
		return s.OnTestEnded(context.Background(), status)
	})
	return status
}
