// Package terminal implements the engine's default reporting sink: a
// screen-clearing, lipgloss-styled printer.
package terminal

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/loadcraft/reporter"
)

// clearScreen is the ANSI sequence printed before every block: clear the
// screen, move cursor to 1;1.
const clearScreen = "\x1B[2J\x1B[1;1H"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	boxStyle   = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#626262"))
)

// Sink is the default terminal reporting sink: it clears the screen and
// prints a lipgloss-boxed text block for on_test_ended, on_load_step_ended,
// and on_load_action_ended. on_internal_step_ended is a no-op.
type Sink struct{}

// New returns the default terminal sink.
func New() *Sink {
	return &Sink{}
}

func (Sink) render(title string, body string) string {
	block := titleStyle.Render(title) + "\n\n" + body
	return clearScreen + boxStyle.Render(block) + "\n"
}

// OnTestEnded prints the final test status.
func (s Sink) OnTestEnded(_ context.Context, status reporter.TestStatus) error {
	fmt.Print(s.render(fmt.Sprintf("%s — final", status.TestName), status.AsText()))
	return nil
}

// OnLoadStepEnded prints the completed step's status.
func (s Sink) OnLoadStepEnded(_ context.Context, status reporter.StepStatus) error {
	fmt.Print(s.render(fmt.Sprintf("%s — step %s", status.TestName, status.StepName), status.AsText()))
	return nil
}

// OnLoadActionEnded prints the throttled in-flight status.
func (s Sink) OnLoadActionEnded(_ context.Context, status reporter.StepStatus) error {
	fmt.Print(s.render(fmt.Sprintf("%s — in progress", status.TestName), status.AsText()))
	return nil
}

// OnInternalStepEnded is a no-op: internal lifecycle transitions don't
// warrant a terminal redraw.
func (s Sink) OnInternalStepEnded(_ context.Context, _ string) error {
	return nil
}
