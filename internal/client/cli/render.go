package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

const barWidth = 30

// renderer draws task snapshots. On a terminal the line is redrawn in
// place; otherwise a line is printed per phase and per 10% step.
type renderer struct {
	w   io.Writer
	tty bool

	drawn     bool
	lastPhase models.Phase
	lastStep  int
}

func newRenderer(w io.Writer) *renderer {
	r := &renderer{w: w}
	if f, ok := w.(*os.File); ok {
		r.tty = term.IsTerminal(int(f.Fd()))
	}
	return r
}

func (r *renderer) Render(t models.Task) {
	line := statusLine(t)
	if r.tty {
		fmt.Fprintf(r.w, "\r\033[K%s", line)
		r.drawn = true
		return
	}

	step := t.OverallProgress / 10
	if r.drawn && t.Phase == r.lastPhase && step == r.lastStep {
		return
	}
	r.drawn, r.lastPhase, r.lastStep = true, t.Phase, step
	fmt.Fprintln(r.w, line)
}

// Done ends an in-place line.
func (r *renderer) Done() {
	if r.tty && r.drawn {
		fmt.Fprintln(r.w)
	}
	r.drawn = false
}

func statusLine(t models.Task) string {
	label := phaseLabel(t.Phase)
	switch t.Phase {
	case models.PhaseIdle:
		return label
	case models.PhaseFailed:
		return label + ": " + t.FailureReason
	}

	line := fmt.Sprintf("%-10s %s %3d%%", label, bar(t.OverallProgress), t.OverallProgress)
	if t.Message != "" && t.Phase == models.PhaseProcessing {
		line += "  " + t.Message
	}
	return line
}

func phaseLabel(p models.Phase) string {
	switch p {
	case models.PhaseUploading:
		return "Uploading"
	case models.PhaseProcessing:
		return "Processing"
	case models.PhaseCompleted:
		return "Done"
	case models.PhaseFailed:
		return "Failed"
	default:
		return "Cancelled"
	}
}

func bar(percent int) string {
	n := min(max(percent, 0), 100) * barWidth / 100
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", barWidth-n) + "]"
}
