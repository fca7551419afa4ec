// Package types defines the typed action contracts and stage configuration
// that the rest of the engine operates over.
package types

import (
	"context"
	"fmt"
	"time"
)

// InitFunc runs once before any stage executes. It owns data and may
// replace it; a non-nil error aborts the run.
type InitFunc[D any] func(ctx context.Context, data D) (D, error)

// WarmUpFunc runs during the WarmUp stage against a shared, read-only
// view of data. A panic inside WarmUpFunc is not recovered by the engine.
type WarmUpFunc[D any] func(ctx context.Context, data D)

// LoadFunc runs during a Load stage against a shared, read-only view of
// data. A non-nil error is recorded in the metrics accumulator as a
// failed hit; it never aborts the run. A panic is not recovered.
type LoadFunc[D any] func(ctx context.Context, data D) error

// CleanUpFunc runs once after all Load steps, against a clone of the
// final data value.
type CleanUpFunc[D any] func(ctx context.Context, data D)

// Coder is implemented by errors that carry a signed 32-bit outcome code.
// The metrics accumulator histograms this code for failed Load hits.
type Coder interface {
	Code() int32
}

// Failure is an error carrying the signed 32-bit code a Load action wants
// recorded in the error histogram. User actions may return any error;
// only errors implementing Coder contribute a non-zero code.
type Failure int32

// Error implements the error interface.
func (f Failure) Error() string {
	return fmt.Sprintf("action failed with code %d", int32(f))
}

// Code implements Coder.
func (f Failure) Code() int32 {
	return int32(f)
}

// Stage describes one (duration, interval, rate) triple a Stage Scheduler
// drives for a WarmUp or Load step.
type Stage struct {
	// Name labels the stage in snapshots and export files.
	Name string
	// During is the total wall-clock duration of the stage.
	During time.Duration
	// Interval is the period between successive batches of tasks.
	Interval time.Duration
	// Rate is the number of concurrent tasks spawned per batch. Zero is
	// legal and produces no work.
	Rate uint
}

// Validate enforces the invariants TestStepStage must satisfy: Interval
// must be positive and Rate must be non-negative (guaranteed by the
// unsigned type). It panics, matching the configuration-time panic
// posture used elsewhere for malformed stages.
func (s Stage) Validate() {
	if s.Interval <= 0 {
		panic(fmt.Sprintf("stage %q: interval must be greater than zero, got %s", s.Name, s.Interval))
	}
}
