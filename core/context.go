// Package core implements the TestContext, the Stage Scheduler, and the
// Step Lifecycle orchestration that together drive a test case to
// completion.
package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justapithecus/loadcraft/metrics"
)

// Context is the per-run mutable state: identity, current step/stage
// labels, the accumulated load duration, and the embedded metrics
// accumulator. It is the only mutable resource shared across the
// scheduler's goroutines, guarded by a single mutex so every mutation —
// including cloning a publishable Snapshot — is atomic.
type Context struct {
	mu sync.Mutex

	sessionID string
	testName  string
	testSuite string
	createdAt time.Time

	stepName  string
	stageName string

	loadDuration time.Duration
	metrics      *metrics.Accumulator
}

// NewContext constructs a fresh context: a new session_id, empty metrics,
// no current step or stage.
func NewContext(testName, testSuite string) *Context {
	return &Context{
		sessionID: uuid.NewString(),
		testName:  testName,
		testSuite: testSuite,
		createdAt: time.Now(),
		metrics:   metrics.NewAccumulator(),
	}
}

// SessionID returns the run's immutable correlation identifier.
func (c *Context) SessionID() string { return c.sessionID }

// SetCurrentStep sets the current step label and clears the stage label
// until SetCurrentStage is called again.
func (c *Context) SetCurrentStep(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stepName = name
	c.stageName = ""
}

// SetCurrentStage sets the current stage label.
func (c *Context) SetCurrentStage(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stageName = name
}

// AddHit folds one action result into the embedded metrics accumulator.
func (c *Context) AddHit(result error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.AddHit(result, elapsed)
}

// RecordLoadHit performs the full per-action Load bookkeeping under a
// single critical section: folds the result into the accumulator,
// refreshes load_duration against loadStart, takes an immutable snapshot,
// and publishes it on publish. The send happens while the lock is held,
// matching the single-critical-section discipline the context is
// specified to uphold; a full channel therefore briefly back-pressures
// the caller rather than dropping the snapshot.
func (c *Context) RecordLoadHit(result error, elapsed time.Duration, loadStart time.Time, publish chan<- Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.AddHit(result, elapsed)
	c.loadDuration = time.Since(loadStart)
	snap := c.snapshotLocked()

	if publish != nil {
		publish <- snap
	}
}

// Snapshot returns an immutable clone of the context's current state.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Context) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:    c.sessionID,
		TestName:     c.testName,
		TestSuite:    c.testSuite,
		StepName:     c.stepName,
		StageName:    c.stageName,
		TestDuration: time.Since(c.createdAt),
		LoadDuration: c.loadDuration,
		Metrics:      c.metrics.Snapshot(),
	}
}

// Snapshot is an immutable projection of a Context at one moment. It
// shares no state with the live context and is the value that crosses
// the engine/sink boundary, directly or via StepStatus/TestStatus.
type Snapshot struct {
	SessionID    string
	TestName     string
	TestSuite    string
	StepName     string
	StageName    string
	TestDuration time.Duration
	LoadDuration time.Duration
	Metrics      metrics.Snapshot
}
