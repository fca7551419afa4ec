package metrics

import (
	"errors"
	"testing"
	"time"
)

type testFailure int32

func (f testFailure) Error() string { return "boom" }
func (f testFailure) Code() int32   { return int32(f) }

func TestAccumulator_EmptySnapshotDefaults(t *testing.T) {
	snap := NewAccumulator().Snapshot()

	if got := snap.Hits(); got != 0 {
		t.Errorf("Hits() = %d, want 0", got)
	}
	if got := snap.Min(); got != 0 {
		t.Errorf("Min() = %d, want 0", got)
	}
	if got := snap.Max(); got != 0 {
		t.Errorf("Max() = %d, want 0", got)
	}
	if got := snap.Mean(); got != 0 {
		t.Errorf("Mean() = %d, want 0", got)
	}
	if got := snap.StdDev(); got != 0 {
		t.Errorf("StdDev() = %d, want 0", got)
	}
	if got := snap.Percentile(0.9); got != 0 {
		t.Errorf("Percentile(0.9) = %d, want 0", got)
	}
	if got := snap.RequestsPerSecond(0); got != 0 {
		t.Errorf("RequestsPerSecond(0) = %v, want 0", got)
	}
	if got := len(snap.Errors()); got != 0 {
		t.Errorf("len(Errors()) = %d, want 0", got)
	}
}

func TestAccumulator_AddHit_SuccessAndFailureCounters(t *testing.T) {
	a := NewAccumulator()
	a.AddHit(nil, 10*time.Millisecond)
	a.AddHit(testFailure(400), 20*time.Millisecond)
	a.AddHit(testFailure(400), 30*time.Millisecond)
	a.AddHit(testFailure(500), 40*time.Millisecond)

	snap := a.Snapshot()

	if got := snap.SuccessfulHits(); got != 1 {
		t.Errorf("SuccessfulHits() = %d, want 1", got)
	}
	if got := snap.UnsuccessfulHits(); got != 3 {
		t.Errorf("UnsuccessfulHits() = %d, want 3", got)
	}
	if got := snap.Hits(); got != 4 {
		t.Errorf("Hits() = %d, want 4", got)
	}

	errs := snap.Errors()
	if errs[400] != 2 {
		t.Errorf("Errors()[400] = %d, want 2", errs[400])
	}
	if errs[500] != 1 {
		t.Errorf("Errors()[500] = %d, want 1", errs[500])
	}

	var total uint64
	for _, count := range errs {
		total += count
	}
	if total != snap.UnsuccessfulHits() {
		t.Errorf("sum(Errors()) = %d, want %d", total, snap.UnsuccessfulHits())
	}
}

func TestAccumulator_AddHit_PlainErrorHistogramsAsZero(t *testing.T) {
	a := NewAccumulator()
	a.AddHit(errors.New("no code attached"), 5*time.Millisecond)

	errs := a.Snapshot().Errors()
	if errs[0] != 1 {
		t.Errorf("Errors()[0] = %d, want 1", errs[0])
	}
}

// TestAccumulator_PercentileSeed mirrors the percentile seed scenario:
// samples [80, 100, 130, 150, 200, 300] → min 80, max 300, mean 160,
// std_dev 73.
func TestAccumulator_PercentileSeed(t *testing.T) {
	a := NewAccumulator()
	for _, ms := range []int64{150, 80, 300, 100, 200, 130} {
		a.AddHit(nil, time.Duration(ms)*time.Millisecond)
	}

	snap := a.Snapshot()

	if got := snap.Min(); got != 80 {
		t.Errorf("Min() = %d, want 80", got)
	}
	if got := snap.Max(); got != 300 {
		t.Errorf("Max() = %d, want 300", got)
	}
	if got := snap.Mean(); got != 160 {
		t.Errorf("Mean() = %d, want 160", got)
	}
	if got := snap.StdDev(); got != 73 {
		t.Errorf("StdDev() = %d, want 73", got)
	}
	if got := snap.Percentile(0); got != snap.Min() {
		t.Errorf("Percentile(0) = %d, want Min() = %d", got, snap.Min())
	}
	if got := snap.Percentile(1); got != snap.Max() {
		t.Errorf("Percentile(1) = %d, want Max() = %d", got, snap.Max())
	}

	p90 := snap.Percentile(0.9)
	p95 := snap.Percentile(0.95)
	p99 := snap.Percentile(0.99)
	if !(p90 <= p95 && p95 <= p99 && p99 <= snap.Max()) {
		t.Errorf("percentile ordering violated: p90=%d p95=%d p99=%d max=%d", p90, p95, p99, snap.Max())
	}
}

func TestAccumulator_RequestsPerSecond(t *testing.T) {
	a := NewAccumulator()
	for i := 0; i < 10; i++ {
		a.AddHit(nil, time.Millisecond)
	}

	snap := a.Snapshot()
	if got := snap.RequestsPerSecond(5 * time.Second); got != 2 {
		t.Errorf("RequestsPerSecond(5s) = %v, want 2", got)
	}
}

func TestAccumulator_SnapshotIsIndependentOfLiveState(t *testing.T) {
	a := NewAccumulator()
	a.AddHit(nil, time.Millisecond)
	snap := a.Snapshot()

	a.AddHit(testFailure(500), 2*time.Millisecond)

	if got := snap.Hits(); got != 1 {
		t.Errorf("snapshot mutated after later AddHit: Hits() = %d, want 1", got)
	}
}
