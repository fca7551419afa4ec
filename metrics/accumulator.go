// Package metrics implements the streaming per-step aggregate described by
// the engine's metrics accumulator: hit counters, a sorted multiset of
// elapsed times, and an error-code histogram, plus the derived queries
// (percentile, std-dev, requests/sec) computed over an immutable snapshot.
package metrics

import (
	"math"
	"sort"
	"time"
)

// Accumulator is the mutable, streaming half of the metrics model. It is
// not safe for concurrent use on its own — callers (the core package's
// TestContext) serialize access with their own lock, matching the
// single-mutex discipline the context is specified to hold.
type Accumulator struct {
	successfulHits   uint64
	unsuccessfulHits uint64
	elapsedMillis    []int64 // kept sorted ascending
	errors           map[int32]uint64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{errors: make(map[int32]uint64)}
}

// AddHit folds one action result into the accumulator. A nil result is a
// success; any other error increments unsuccessfulHits and the error
// histogram, keyed by Code() when the error implements Coder (0
// otherwise). The elapsed time is always inserted into the sorted
// multiset, regardless of outcome.
func (a *Accumulator) AddHit(result error, elapsed time.Duration) {
	if result != nil {
		a.unsuccessfulHits++
		a.errors[CodeOf(result)]++
	} else {
		a.successfulHits++
	}

	ms := elapsed.Milliseconds()
	idx := sort.Search(len(a.elapsedMillis), func(i int) bool { return a.elapsedMillis[i] >= ms })
	a.elapsedMillis = append(a.elapsedMillis, 0)
	copy(a.elapsedMillis[idx+1:], a.elapsedMillis[idx:])
	a.elapsedMillis[idx] = ms
}

// Coder is the interface an error can implement to carry a signed 32-bit
// outcome code into the histogram. Defined here (rather than imported
// from types) so this package stays leaf-level and dependency-free.
type Coder interface {
	Code() int32
}

// CodeOf extracts the histogram key for a failed hit: the Coder-asserted
// code, or 0 when result doesn't carry one.
func CodeOf(result error) int32 {
	if result == nil {
		return 0
	}
	if c, ok := result.(Coder); ok {
		return c.Code()
	}
	return 0
}

// Snapshot returns an immutable, independently-owned copy of the current
// accumulator state. Snapshot is the only way derived queries (Min, Max,
// Percentile, StdDev, ...) are computed — they never run against the live,
// lock-protected Accumulator.
func (a *Accumulator) Snapshot() Snapshot {
	elapsed := make([]int64, len(a.elapsedMillis))
	copy(elapsed, a.elapsedMillis)

	errs := make(map[int32]uint64, len(a.errors))
	for code, count := range a.errors {
		errs[code] = count
	}

	return Snapshot{
		successfulHits:   a.successfulHits,
		unsuccessfulHits: a.unsuccessfulHits,
		elapsedMillis:    elapsed,
		errors:           errs,
	}
}

// Snapshot is an immutable, independently-owned copy of an Accumulator's
// state, over which all derived queries are pure functions.
type Snapshot struct {
	successfulHits   uint64
	unsuccessfulHits uint64
	elapsedMillis    []int64
	errors           map[int32]uint64
}

// SuccessfulHits returns the number of successful actions recorded.
func (s Snapshot) SuccessfulHits() uint64 { return s.successfulHits }

// UnsuccessfulHits returns the number of failed actions recorded.
func (s Snapshot) UnsuccessfulHits() uint64 { return s.unsuccessfulHits }

// Hits returns successful + unsuccessful, the total number of recorded
// elapsed-time samples.
func (s Snapshot) Hits() uint64 { return s.successfulHits + s.unsuccessfulHits }

// Min returns the smallest recorded elapsed time in milliseconds, or 0
// when no samples have been recorded.
func (s Snapshot) Min() int64 {
	if len(s.elapsedMillis) == 0 {
		return 0
	}
	return s.elapsedMillis[0]
}

// Max returns the largest recorded elapsed time in milliseconds, or 0
// when no samples have been recorded.
func (s Snapshot) Max() int64 {
	if len(s.elapsedMillis) == 0 {
		return 0
	}
	return s.elapsedMillis[len(s.elapsedMillis)-1]
}

// Mean returns the integer-truncated average elapsed time in
// milliseconds, or 0 when no samples have been recorded.
func (s Snapshot) Mean() int64 {
	n := len(s.elapsedMillis)
	if n == 0 {
		return 0
	}
	var sum int64
	for _, v := range s.elapsedMillis {
		sum += v
	}
	return sum / int64(n)
}

// Percentile returns the interpolated p-th percentile (p in (0,1)) of the
// recorded elapsed times, truncated to an integer millisecond value. It
// returns 0 for an empty snapshot.
func (s Snapshot) Percentile(p float64) int64 {
	n := len(s.elapsedMillis)
	if n == 0 {
		return 0
	}

	idx := float64(n-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}

	loVal := float64(s.elapsedMillis[lo])
	hiVal := float64(s.elapsedMillis[hi])
	interpolated := loVal + (idx-float64(lo))*(hiVal-loVal)
	return int64(interpolated)
}

// StdDev returns the rounded standard deviation (population, integer
// mean) of the recorded elapsed times in milliseconds, or 0 when empty.
func (s Snapshot) StdDev() int64 {
	n := len(s.elapsedMillis)
	if n == 0 {
		return 0
	}

	mean := s.Mean()
	var sumSquares float64
	for _, v := range s.elapsedMillis {
		diff := float64(v - mean)
		sumSquares += diff * diff
	}

	variance := sumSquares / float64(n)
	return int64(math.Round(math.Sqrt(variance)))
}

// RequestsPerSecond returns Hits() divided by loadDuration in seconds, or
// 0 when loadDuration is zero.
func (s Snapshot) RequestsPerSecond(loadDuration time.Duration) float64 {
	secs := loadDuration.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.Hits()) / secs
}

// Errors returns a copy of the error-code histogram.
func (s Snapshot) Errors() map[int32]uint64 {
	out := make(map[int32]uint64, len(s.errors))
	for code, count := range s.errors {
		out[code] = count
	}
	return out
}
