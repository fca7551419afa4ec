// Package reporter implements the event fan-out pipeline: the three
// bounded per-run channels, their dispatcher goroutines, the throttled
// action dispatch policy, and the immutable StepStatus/TestStatus
// snapshots handed to reporting sinks.
package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/justapithecus/loadcraft/core"
)

// Metrics is the immutable projection of a metrics accumulator carried by
// StepStatus and TestStatus. All duration fields are integer
// milliseconds.
type Metrics struct {
	TestDuration  int64            `json:"test_duration"`
	LoadDuration  int64            `json:"load_duration"`
	MinTime       int64            `json:"min_time"`
	MeanTime      int64            `json:"mean_time"`
	MaxTime       int64            `json:"max_time"`
	StdDev        int64            `json:"std_dev"`
	P90Time       int64            `json:"p90_time"`
	P95Time       int64            `json:"p95_time"`
	P99Time       int64            `json:"p99_time"`
	PositiveHits  uint64           `json:"positive_hits"`
	NegativeHits  uint64           `json:"negative_hits"`
	AllHits       uint64           `json:"all_hits"`
	RequestPerSec float64          `json:"request_per_sec"`
	Errors        map[int32]uint64 `json:"errors"`
}

func newMetrics(snap core.Snapshot) Metrics {
	m := snap.Metrics
	return Metrics{
		TestDuration:  snap.TestDuration.Milliseconds(),
		LoadDuration:  snap.LoadDuration.Milliseconds(),
		MinTime:       m.Min(),
		MeanTime:      m.Mean(),
		MaxTime:       m.Max(),
		StdDev:        m.StdDev(),
		P90Time:       m.Percentile(0.90),
		P95Time:       m.Percentile(0.95),
		P99Time:       m.Percentile(0.99),
		PositiveHits:  m.SuccessfulHits(),
		NegativeHits:  m.UnsuccessfulHits(),
		AllHits:       m.Hits(),
		RequestPerSec: m.RequestsPerSecond(snap.LoadDuration),
		Errors:        m.Errors(),
	}
}

// AsText renders the key/value block used by the txt exporter and the
// terminal summary sink.
func (m Metrics) AsText() string {
	var b strings.Builder
	row := func(label string, value string) {
		fmt.Fprintf(&b, "%-20s: %s ms\r\n", label, value)
	}

	row("Test Duration", fmt.Sprintf("%d", m.TestDuration))
	row("Load Duration", fmt.Sprintf("%d", m.LoadDuration))
	row("Min Time", fmt.Sprintf("%d", m.MinTime))
	row("Mean Time", fmt.Sprintf("%d", m.MeanTime))
	row("Max Time", fmt.Sprintf("%d", m.MaxTime))
	row("Std Dev", fmt.Sprintf("%d", m.StdDev))
	row("p90", fmt.Sprintf("%d", m.P90Time))
	row("p95", fmt.Sprintf("%d", m.P95Time))
	fmt.Fprintf(&b, "%-20s: %d ms\r\n\r\n", "p99", m.P99Time)

	fmt.Fprintf(&b, "%-20s: %d\r\n", "All Hits", m.AllHits)
	fmt.Fprintf(&b, "%-20s: %d\r\n", "Successful hits", m.PositiveHits)
	fmt.Fprintf(&b, "%-20s: %d\r\n", "Unsuccessul hits", m.NegativeHits)
	fmt.Fprintf(&b, "%-20s: %.2f", "Requests/sec", m.RequestPerSec)

	if len(m.Errors) > 0 {
		fmt.Fprintf(&b, "\r\n\r\n%-20s:\r\n\r\n", "Errors count")
		for _, code := range sortedErrorCodes(m.Errors) {
			fmt.Fprintf(&b, "%-20d: %d\r\n", code, m.Errors[code])
		}
	}

	return b.String()
}

// AsCSV renders the semicolon-delimited row used by the csv exporter,
// appending one `;code;count` pair per histogrammed error code.
func (m Metrics) AsCSV() string {
	content := fmt.Sprintf("%d;%d;%d;%d;%d;%d;%d;%d;%d;%d;%d;%d;%.2f",
		m.TestDuration, m.LoadDuration, m.MinTime, m.MeanTime, m.MaxTime, m.StdDev,
		m.P90Time, m.P95Time, m.P99Time, m.AllHits, m.PositiveHits, m.NegativeHits, m.RequestPerSec)

	for _, code := range sortedErrorCodes(m.Errors) {
		content += fmt.Sprintf(";%d;%d", code, m.Errors[code])
	}

	return content
}

func sortedErrorCodes(errs map[int32]uint64) []int32 {
	codes := make([]int32, 0, len(errs))
	for code := range errs {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// StepStatus is the immutable projection published for a single Load
// step, both when the step ends and for throttled in-progress action
// updates. Internal lifecycle steps are reported by name only.
type StepStatus struct {
	SessionID string  `json:"session_id"`
	TestName  string  `json:"test_name"`
	StepName  string  `json:"step_name"`
	Metrics   Metrics `json:"metrics"`
}

// NewStepStatus reads snap once and materializes a StepStatus.
func NewStepStatus(snap core.Snapshot) StepStatus {
	return StepStatus{
		SessionID: snap.SessionID,
		TestName:  snap.TestName,
		StepName:  snap.StepName,
		Metrics:   newMetrics(snap),
	}
}

// AsText renders the step's key/value block, per exporting.rs's
// StepStatus::as_txt.
func (s StepStatus) AsText() string {
	return fmt.Sprintf("%-20s: %s\r\n\r\n%s", "Test Step", s.StepName, s.Metrics.AsText())
}

// AsCSV renders the step's csv row.
func (s StepStatus) AsCSV() string {
	return fmt.Sprintf("%s;%s", s.StepName, s.Metrics.AsCSV())
}

// TestStatus is the immutable projection published once per run, after
// every other sink invocation has completed.
type TestStatus struct {
	SessionID string  `json:"session_id"`
	TestName  string  `json:"test_name"`
	Metrics   Metrics `json:"metrics"`
}

// NewTestStatus reads snap once and materializes a TestStatus.
func NewTestStatus(snap core.Snapshot) TestStatus {
	return TestStatus{
		SessionID: snap.SessionID,
		TestName:  snap.TestName,
		Metrics:   newMetrics(snap),
	}
}

// AsText renders the test-level key/value block, per exporting.rs's
// TestStatus::as_txt.
func (t TestStatus) AsText() string {
	return fmt.Sprintf("%-20s: %s\r\n%-20s: %s\r\n\r\n%s", "Session ID", t.SessionID, "Test Case", t.TestName, t.Metrics.AsText())
}

// AsCSV renders the test-level csv prefix (session id and test name,
// before the step's own columns).
func (t TestStatus) AsCSV() string {
	return fmt.Sprintf("%s;%s;%s", t.SessionID, t.TestName, t.Metrics.AsCSV())
}

// Report is the test_status/step_status[] document serialized by the
// json and binary export file types.
type Report struct {
	TestStatus TestStatus   `json:"test_status" msgpack:"test_status"`
	StepStatus []StepStatus `json:"step_status" msgpack:"step_status"`
}
