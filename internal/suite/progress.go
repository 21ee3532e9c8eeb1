package suite

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gotrs-io/ui-smoke/internal/scenario"
)

// Progress receives per-scenario notifications.
type Progress interface {
	Started(sc scenario.Scenario)
	Finished(res scenario.RunResult)
}

type nopProgress struct{}

func (nopProgress) Started(scenario.Scenario)   {}
func (nopProgress) Finished(scenario.RunResult) {}

// ConsoleProgress prints one line when a scenario starts and one when it
// ends:
//
//	Navigating to Clientes...
//	  ... success, screenshot at verification/clients_verification.png
type ConsoleProgress struct {
	w      io.Writer
	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

// NewConsoleProgress writes to w. Colour follows fatih/color's terminal
// detection unless noColor is set.
func NewConsoleProgress(w io.Writer, noColor bool) *ConsoleProgress {
	p := &ConsoleProgress{
		w:      w,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow),
	}
	if noColor {
		p.green.DisableColor()
		p.red.DisableColor()
		p.yellow.DisableColor()
	}
	return p
}

func (p *ConsoleProgress) Started(sc scenario.Scenario) {
	fmt.Fprintf(p.w, "Navigating to %s...\n", sc.Name())
}

func (p *ConsoleProgress) Finished(res scenario.RunResult) {
	switch res.Status {
	case scenario.StatusPassed:
		if len(res.Screenshots) > 0 {
			p.green.Fprintf(p.w, "  ... success, screenshot at %s\n", strings.Join(res.Screenshots, ", "))
			return
		}
		p.green.Fprintln(p.w, "  ... success")
	case scenario.StatusSkipped:
		p.yellow.Fprintf(p.w, "  ... skipped %s: %s\n", res.Name, res.Reason)
	default:
		p.red.Fprintf(p.w, "  ... FAILED: %s\n", res.Reason)
	}
}
