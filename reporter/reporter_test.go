package reporter

import (
	"testing"
	"time"

	"github.com/justapithecus/loadcraft/core"
)

func TestNew_BelowDefaultFrequencyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for reporting frequency below default")
		}
	}()
	New(nil, time.Second)
}

func TestNew_ZeroFrequencySelectsDefault(t *testing.T) {
	r := New(nil, 0)
	if r.reportingFrequency != DefaultReportingFrequency {
		t.Errorf("reportingFrequency = %s, want %s", r.reportingFrequency, DefaultReportingFrequency)
	}
}

func TestDispatchLoadSteps_AppendsInArrivalOrder(t *testing.T) {
	sink := NewStubSink()
	r := New([]Sink{sink}, DefaultReportingFrequency)

	ch := make(chan core.Snapshot, ChannelCapacity)
	done, steps := r.DispatchLoadSteps(ch)

	ch <- core.Snapshot{SessionID: "s", TestName: "t", StepName: "first"}
	ch <- core.Snapshot{SessionID: "s", TestName: "t", StepName: "second"}
	close(ch)
	<-done

	if got := len(*steps); got != 2 {
		t.Fatalf("len(stepsByStep) = %d, want 2", got)
	}
	if (*steps)[0].StepName != "first" || (*steps)[1].StepName != "second" {
		t.Errorf("stepsByStep order = %v, want [first second]", *steps)
	}

	if _, loadStepEnded, _, _ := sink.Counts(); loadStepEnded != 2 {
		t.Errorf("OnLoadStepEnded calls = %d, want 2", loadStepEnded)
	}
}

func TestDispatchInternalSteps_ForwardsStepName(t *testing.T) {
	sink := NewStubSink()
	r := New([]Sink{sink}, DefaultReportingFrequency)

	ch := make(chan core.Snapshot, ChannelCapacity)
	done := r.DispatchInternalSteps(ch)

	ch <- core.Snapshot{StepName: "init"}
	close(ch)
	<-done

	if len(sink.InternalStepEndedCalls) != 1 || sink.InternalStepEndedCalls[0] != "init" {
		t.Errorf("InternalStepEndedCalls = %v, want [init]", sink.InternalStepEndedCalls)
	}
}

func TestDispatchActions_ThrottlesBelowReportingFrequency(t *testing.T) {
	sink := NewStubSink()
	r := New([]Sink{sink}, DefaultReportingFrequency)

	ch := make(chan core.Snapshot, ChannelCapacity)
	done := r.DispatchActions(ch)

	for i := 0; i < 5; i++ {
		ch <- core.Snapshot{SessionID: "s"}
	}
	close(ch)
	<-done

	if _, _, loadActionEnded, _ := sink.Counts(); loadActionEnded != 0 {
		t.Errorf("OnLoadActionEnded calls = %d, want 0 within the throttle window", loadActionEnded)
	}
}

func TestDispatchActions_NoSinksNeverDispatches(t *testing.T) {
	r := New(nil, DefaultReportingFrequency)

	ch := make(chan core.Snapshot, ChannelCapacity)
	done := r.DispatchActions(ch)
	ch <- core.Snapshot{}
	close(ch)
	<-done // must not hang or panic with zero sinks
}

func TestReportTestEnded_InvokesEverySink(t *testing.T) {
	sink := NewStubSink()
	r := New([]Sink{sink}, DefaultReportingFrequency)

	status := r.ReportTestEnded(core.Snapshot{SessionID: "s", TestName: "t"})

	if status.SessionID != "s" {
		t.Errorf("SessionID = %q, want %q", status.SessionID, "s")
	}
	if testEnded, _, _, _ := sink.Counts(); testEnded != 1 {
		t.Errorf("OnTestEnded calls = %d, want 1", testEnded)
	}
}

func TestMetrics_AsCSV_AppendsErrorPairs(t *testing.T) {
	m := Metrics{Errors: map[int32]uint64{400: 2, 500: 1}}
	csv := m.AsCSV()

	if got := csv; len(got) == 0 {
		t.Fatal("AsCSV() returned empty string")
	}
	wantSuffix := ";400;2;500;1"
	if got := csv[len(csv)-len(wantSuffix):]; got != wantSuffix {
		t.Errorf("AsCSV() error suffix = %q, want %q", got, wantSuffix)
	}
}
