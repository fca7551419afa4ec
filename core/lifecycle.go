package core

import (
	"context"
	"errors"
	"time"

	"github.com/justapithecus/loadcraft/testcase"
)

// ErrNoLoadSteps is returned when a test case has no Load step with a
// non-empty stage list.
var ErrNoLoadSteps = errors.New("no load steps: a test case must declare at least one Load step with a non-empty stage list")

// Run executes tc's steps in canonical order (Init, WarmUp, Load...,
// CleanUp), publishing a Snapshot on the appropriate channel after each
// step completes. It returns the final Context on success, or
// ErrNoLoadSteps if tc has no Load step with a non-empty stage list — in
// which case nothing is published and the channels are untouched.
//
// actionCh, loadStepCh, and internalStepCh are owned by the caller: Run
// never closes them, matching the Runner's responsibility to close all
// three sender sides once every step has finished and only then await
// the dispatchers.
func Run[D any](tc *testcase.Case[D], actionCh, loadStepCh, internalStepCh chan<- Snapshot) (*Context, error) {
	if !tc.HasRunnableLoadStep() {
		return nil, ErrNoLoadSteps
	}

	ctx := NewContext(tc.TestName, tc.TestSuite)
	data := tc.Data

	var loadStart time.Time
	loadStarted := false

	for _, step := range tc.OrderedSteps() {
		ctx.SetCurrentStep(step.Name())

		switch {
		case step.IsInit():
			updated, err := step.Init()(context.Background(), data)
			if err != nil {
				panic("Init operation has failed")
			}
			data = updated
			internalStepCh <- ctx.Snapshot()

		case step.IsWarmUp():
			RunWarmUp(step.Stages(), data, step.WarmUp())
			internalStepCh <- ctx.Snapshot()

		case step.IsLoad():
			if !loadStarted {
				loadStart = time.Now()
				loadStarted = true
			}
			RunLoad(step.Stages(), data, loadStart, ctx, step.Load(), actionCh)
			loadStepCh <- ctx.Snapshot()

		case step.IsCleanUp():
			step.CleanUp()(context.Background(), data)
			internalStepCh <- ctx.Snapshot()
		}
	}

	return ctx, nil
}
