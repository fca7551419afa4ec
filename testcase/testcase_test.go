package testcase

import (
	"context"
	"testing"

	"github.com/justapithecus/loadcraft/types"
)

func noopInit(_ context.Context, data string) (string, error) { return data, nil }
func noopWarmUp(_ context.Context, _ string)                   {}
func noopLoad(_ context.Context, _ string) error               { return nil }
func noopCleanUp(_ context.Context, _ string)                  {}

func TestCase_OrderedSteps_CanonicalOrder(t *testing.T) {
	stage := types.Stage{Name: "s1", During: 1, Interval: 1, Rate: 1}

	c := New("t", "suite", "data")
	c.WithStep(NewCleanUpStep(noopCleanUp))
	c.WithStep(NewLoadStep("load-b", noopLoad, stage))
	c.WithStep(NewWarmUpStep(noopWarmUp, stage))
	c.WithStep(NewLoadStep("load-a", noopLoad, stage))
	c.WithStep(NewInitStep(noopInit))

	ordered := c.OrderedSteps()
	want := []string{"init", "warmup", "load-b", "load-a", "cleanup"}
	if len(ordered) != len(want) {
		t.Fatalf("len(OrderedSteps()) = %d, want %d", len(ordered), len(want))
	}
	for i, name := range want {
		if got := ordered[i].Name(); got != name {
			t.Errorf("OrderedSteps()[%d].Name() = %q, want %q", i, got, name)
		}
	}
}

func TestCase_WithStep_DuplicateInitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate Init step")
		}
	}()

	c := New("t", "suite", "data")
	c.WithStep(NewInitStep(noopInit))
	c.WithStep(NewInitStep(noopInit))
}

func TestCase_WithStep_DuplicateWarmUpPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate WarmUp step")
		}
	}()

	c := New("t", "suite", "data")
	c.WithStep(NewWarmUpStep[string](noopWarmUp))
	c.WithStep(NewWarmUpStep[string](noopWarmUp))
}

func TestCase_WithStep_DuplicateCleanUpPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate CleanUp step")
		}
	}()

	c := New("t", "suite", "data")
	c.WithStep(NewCleanUpStep[string](noopCleanUp))
	c.WithStep(NewCleanUpStep[string](noopCleanUp))
}

func TestCase_WithStep_MultipleLoadStepsAllowed(t *testing.T) {
	stage := types.Stage{Name: "s1", During: 1, Interval: 1, Rate: 1}

	c := New("t", "suite", "data")
	c.WithStep(NewLoadStep("first", noopLoad, stage))
	c.WithStep(NewLoadStep("second", noopLoad, stage))

	if got := len(c.OrderedSteps()); got != 2 {
		t.Fatalf("len(OrderedSteps()) = %d, want 2", got)
	}
}

func TestCase_HasRunnableLoadStep(t *testing.T) {
	stage := types.Stage{Name: "s1", During: 1, Interval: 1, Rate: 1}

	empty := New("t", "suite", "data")
	if empty.HasRunnableLoadStep() {
		t.Error("HasRunnableLoadStep() = true for a case with no steps, want false")
	}

	emptyStages := New("t", "suite", "data")
	emptyStages.WithStep(NewLoadStep[string]("load", noopLoad))
	if emptyStages.HasRunnableLoadStep() {
		t.Error("HasRunnableLoadStep() = true for a Load step with no stages, want false")
	}

	runnable := New("t", "suite", "data")
	runnable.WithStep(NewLoadStep("load", noopLoad, stage))
	if !runnable.HasRunnableLoadStep() {
		t.Error("HasRunnableLoadStep() = false for a Load step with stages, want true")
	}
}

func TestStage_Validate_NonPositiveIntervalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on zero interval")
		}
	}()

	types.Stage{Name: "bad", During: 1, Interval: 0, Rate: 1}.Validate()
}
