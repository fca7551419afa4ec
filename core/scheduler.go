package core

import (
	"context"
	"sync"
	"time"

	"github.com/justapithecus/loadcraft/types"
)

// runStagePeriods drives one stage's wall-clock-anchored period loop: it
// spawns stage.Rate concurrent goroutines running task once per period,
// for as long as elapsed time since the stage began is strictly less
// than stage.During. The next period is always computed by adding
// interval to the previous target rather than to "now", so that small
// per-period overruns don't accumulate drift; a period already in the
// past is not slept on at all. Every spawned goroutine is registered on
// wg so the caller can await the whole step's in-flight work once all of
// its stages have finished looping.
func runStagePeriods(stage types.Stage, wg *sync.WaitGroup, task func()) {
	stageStart := time.Now()
	nextPeriod := stageStart

	for time.Since(stageStart) < stage.During {
		for i := uint(0); i < stage.Rate; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				task()
			}()
		}

		nextPeriod = nextPeriod.Add(stage.Interval)
		if sleepFor := time.Until(nextPeriod); sleepFor > 0 {
			time.Sleep(sleepFor)
		}
	}
}

// RunWarmUp drives the WarmUp stages against data. Each spawned task only
// awaits the action; no metrics are recorded and nothing is published
// until the caller does so at the step boundary.
func RunWarmUp[D any](stages []types.Stage, data D, action types.WarmUpFunc[D]) {
	var wg sync.WaitGroup
	for _, stage := range stages {
		runStagePeriods(stage, &wg, func() {
			action(context.Background(), data)
		})
	}
	wg.Wait()
}

// RunLoad drives the Load stages against data. Each spawned task times
// the action, folds the result into ctx, refreshes load_duration against
// loadStart, and publishes a Snapshot on publish — all inside the single
// critical section Context.RecordLoadHit establishes.
func RunLoad[D any](stages []types.Stage, data D, loadStart time.Time, ctx *Context, action types.LoadFunc[D], publish chan<- Snapshot) {
	var wg sync.WaitGroup
	for _, stage := range stages {
		ctx.SetCurrentStage(stage.Name)
		runStagePeriods(stage, &wg, func() {
			t0 := time.Now()
			result := action(context.Background(), data)
			ctx.RecordLoadHit(result, time.Since(t0), loadStart, publish)
		})
	}
	wg.Wait()
}
