// Package testcase holds the step-lifecycle data model: TestCase and its
// ordered, uniqueness-checked TestStep sequence.
package testcase

import (
	"fmt"
	"sort"

	"github.com/justapithecus/loadcraft/types"
)

// kind tags which of the four variants a step is.
type kind int

const (
	kindInit kind = iota
	kindWarmUp
	kindLoad
	kindCleanUp
)

// order returns the canonical ordering weight used to sort steps before a
// run: Init=0, WarmUp=1, Load=2, CleanUp=3.
func (k kind) order() int { return int(k) }

// Step is one lifecycle phase: Init, WarmUp, Load, or CleanUp. Exactly one
// of the Init/WarmUp/Load/CleanUp fields is meaningful, selected by kind;
// callers build a Step with one of the New*Step constructors rather than
// populating this struct directly.
type Step[D any] struct {
	kind   kind
	name   string
	stages []types.Stage

	init    types.InitFunc[D]
	warmUp  types.WarmUpFunc[D]
	load    types.LoadFunc[D]
	cleanUp types.CleanUpFunc[D]
}

// NewInitStep builds the single Init step of a test case.
func NewInitStep[D any](fn types.InitFunc[D]) Step[D] {
	return Step[D]{kind: kindInit, name: "init", init: fn}
}

// NewWarmUpStep builds the single WarmUp step, driven by the given stages.
func NewWarmUpStep[D any](fn types.WarmUpFunc[D], stages ...types.Stage) Step[D] {
	for _, s := range stages {
		s.Validate()
	}
	return Step[D]{kind: kindWarmUp, name: "warmup", warmUp: fn, stages: stages}
}

// NewLoadStep builds one Load step. Multiple Load steps are permitted and
// keep declaration order among themselves.
func NewLoadStep[D any](name string, fn types.LoadFunc[D], stages ...types.Stage) Step[D] {
	for _, s := range stages {
		s.Validate()
	}
	return Step[D]{kind: kindLoad, name: name, load: fn, stages: stages}
}

// NewCleanUpStep builds the single CleanUp step.
func NewCleanUpStep[D any](fn types.CleanUpFunc[D]) Step[D] {
	return Step[D]{kind: kindCleanUp, name: "cleanup", cleanUp: fn}
}

// Name returns the step's label, used as ctx.step_name and in snapshots.
func (s Step[D]) Name() string { return s.name }

// IsInit reports whether this step is the Init step.
func (s Step[D]) IsInit() bool { return s.kind == kindInit }

// IsWarmUp reports whether this step is the WarmUp step.
func (s Step[D]) IsWarmUp() bool { return s.kind == kindWarmUp }

// IsLoad reports whether this step is a Load step.
func (s Step[D]) IsLoad() bool { return s.kind == kindLoad }

// IsCleanUp reports whether this step is the CleanUp step.
func (s Step[D]) IsCleanUp() bool { return s.kind == kindCleanUp }

// Stages returns the step's ordered stage list (WarmUp/Load only).
func (s Step[D]) Stages() []types.Stage { return s.stages }

// Init returns the step's Init callback. Only meaningful when IsInit.
func (s Step[D]) Init() types.InitFunc[D] { return s.init }

// WarmUp returns the step's WarmUp callback. Only meaningful when IsWarmUp.
func (s Step[D]) WarmUp() types.WarmUpFunc[D] { return s.warmUp }

// Load returns the step's Load callback. Only meaningful when IsLoad.
func (s Step[D]) Load() types.LoadFunc[D] { return s.load }

// CleanUp returns the step's CleanUp callback. Only meaningful when IsCleanUp.
func (s Step[D]) CleanUp() types.CleanUpFunc[D] { return s.cleanUp }

// Case is a configured run: a stable name/suite pair, an opaque user data
// payload, and the ordered step sequence built up by WithStep.
type Case[D any] struct {
	TestName  string
	TestSuite string
	Data      D

	steps []Step[D]
}

// New constructs an empty test case. Steps are appended with WithStep
// before the case is handed to a runner.
func New[D any](testName, testSuite string, data D) *Case[D] {
	return &Case[D]{TestName: testName, TestSuite: testSuite, Data: data}
}

// WithStep appends step to the case, enforcing the uniqueness invariant:
// a second Init, WarmUp, or CleanUp panics. Load steps accumulate freely.
// Returns the case so calls can be chained, matching the builder idiom.
func (c *Case[D]) WithStep(step Step[D]) *Case[D] {
	if step.kind != kindLoad {
		for _, existing := range c.steps {
			if existing.kind == step.kind {
				panic(fmt.Sprintf("duplicate %s step: a test case may declare at most one", stepKindName(step.kind)))
			}
		}
	}

	c.steps = append(c.steps, step)
	return c
}

// OrderedSteps returns the case's steps sorted by canonical ordering
// weight (Init, WarmUp, Load..., CleanUp), using a stable sort so
// multiple Load steps retain their declaration order.
func (c *Case[D]) OrderedSteps() []Step[D] {
	ordered := make([]Step[D], len(c.steps))
	copy(ordered, c.steps)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].kind.order() < ordered[j].kind.order()
	})

	return ordered
}

// HasRunnableLoadStep reports whether the case has at least one Load step
// with a non-empty stage list — the Runner's precondition for NoLoadSteps.
func (c *Case[D]) HasRunnableLoadStep() bool {
	for _, s := range c.steps {
		if s.kind == kindLoad && len(s.stages) > 0 {
			return true
		}
	}
	return false
}

func stepKindName(k kind) string {
	switch k {
	case kindInit:
		return "Init"
	case kindWarmUp:
		return "WarmUp"
	case kindCleanUp:
		return "CleanUp"
	default:
		return "Load"
	}
}
