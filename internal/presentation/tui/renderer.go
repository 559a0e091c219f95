package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/typomata/pkg/index"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return "", fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		return r.Render(markdown)
	}
}

// TransitionTable renders the transition map as a markdown table.
func TransitionTable(name string, entries []index.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	sb.WriteString("| State | Action | Handler | Results | Label |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			e.State, e.Action, e.Handler, strings.Join(e.Results, ", "), e.Label)
	}
	return sb.String()
}

// Tracer prints one coloured line per step of a run.
type Tracer struct {
	w       io.Writer
	profile termenv.Profile
}

// NewTracer writes to w using the terminal colour profile.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w, profile: termenv.ColorProfile()}
}

// Step prints a successful transition.
func (t *Tracer) Step(n int, from, action, handler, to string) {
	arrow := t.profile.String("->").Foreground(t.profile.Color("#22d3ee"))
	name := t.profile.String(handler).Faint()
	fmt.Fprintf(t.w, "%3d  %s + %s %s %s  %s\n", n, from, action, arrow, to, name)
}

// Fail prints a rejected step.
func (t *Tracer) Fail(n int, err error) {
	msg := t.profile.String(err.Error()).Foreground(t.profile.Color("#fb7185"))
	fmt.Fprintf(t.w, "%3d  %s\n", n, msg)
}
