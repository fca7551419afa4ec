// Package runner wires the reporter's channels and dispatchers around the
// step lifecycle, drives a test case to completion, and produces the
// final TestStatus — the Runner component of the engine.
package runner

import (
	"fmt"
	"time"

	"github.com/justapithecus/loadcraft/core"
	"github.com/justapithecus/loadcraft/export"
	"github.com/justapithecus/loadcraft/log"
	"github.com/justapithecus/loadcraft/reporter"
	"github.com/justapithecus/loadcraft/testcase"
)

// Config configures a Runner: its sink list, exporter output
// specifications, the terminal-summary toggle, and the action
// dispatcher's reporting frequency.
type Config struct {
	// Sinks receive status snapshots throughout the run.
	Sinks []reporter.Sink
	// OutputSpecs are written once the run completes. Empty disables
	// export entirely.
	OutputSpecs []export.OutputSpec
	// UseSummary, when true, prints the final txt report to stdout with
	// a screen clear, independent of any registered terminal sink.
	UseSummary bool
	// ReportingFrequency is the action dispatcher's throttle window. 0
	// selects reporter.DefaultReportingFrequency; a smaller non-zero
	// value panics at construction, per the InvalidConfiguration taxonomy.
	ReportingFrequency time.Duration
	// Logger receives one "run completed" message with the final hit
	// counts once the run succeeds. A nil Logger disables logging.
	Logger *log.Logger
}

// Runner owns the reporter built from Config and drives test cases to
// completion.
type Runner struct {
	cfg      Config
	reporter *reporter.Reporter
}

// New constructs a Runner from cfg. Panics from reporter.New (invalid
// reporting frequency) propagate to the caller: misconfiguration is
// caught before any step runs, not surfaced as a run error.
func New(cfg Config) *Runner {
	return &Runner{cfg: cfg, reporter: reporter.New(cfg.Sinks, cfg.ReportingFrequency)}
}

// Run drives tc through the step lifecycle, fans out every snapshot to
// the configured sinks, writes the configured export files, and returns
// the final TestStatus. It returns ErrNoLoadSteps unchanged when tc has
// no runnable Load step — in that case nothing is published or exported.
func Run[D any](r *Runner, tc *testcase.Case[D]) (reporter.TestStatus, error) {
	actionCh := make(chan core.Snapshot, reporter.ChannelCapacity)
	loadStepCh := make(chan core.Snapshot, reporter.ChannelCapacity)
	internalStepCh := make(chan core.Snapshot, reporter.ChannelCapacity)

	actionDone := r.reporter.DispatchActions(actionCh)
	loadStepDone, stepsByStep := r.reporter.DispatchLoadSteps(loadStepCh)
	internalStepDone := r.reporter.DispatchInternalSteps(internalStepCh)

	ctx, err := core.Run(tc, actionCh, loadStepCh, internalStepCh)

	close(actionCh)
	close(loadStepCh)
	close(internalStepCh)
	<-actionDone
	<-loadStepDone
	<-internalStepDone

	if err != nil {
		return reporter.TestStatus{}, err
	}

	final := ctx.Snapshot()
	testStatus := r.reporter.ReportTestEnded(final)

	if r.cfg.Logger != nil {
		r.cfg.Logger.Info("run completed", map[string]any{
			"all_hits":      testStatus.Metrics.AllHits,
			"negative_hits": testStatus.Metrics.NegativeHits,
		})
	}

	if len(r.cfg.OutputSpecs) > 0 {
		if err := export.Write(r.cfg.OutputSpecs, testStatus, *stepsByStep); err != nil {
			return testStatus, fmt.Errorf("export failure: %w", err)
		}
	}

	if r.cfg.UseSummary {
		content, err := export.Render(export.Txt, testStatus, *stepsByStep)
		if err != nil {
			return testStatus, fmt.Errorf("export failure: %w", err)
		}
		fmt.Print("\x1B[2J\x1B[1;1H\r\n" + string(content) + "\r\n")
	}

	return testStatus, nil
}
