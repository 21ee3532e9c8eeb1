// Package report renders suite reports for humans (table, HTML) and
// machines (JSON).
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gotrs-io/ui-smoke/internal/scenario"
	"github.com/gotrs-io/ui-smoke/internal/suite"
)

// TableFormatter renders a report as a text table.
type TableFormatter struct {
	title   string
	colored bool
}

// NewTableFormatter creates a formatter. colored selects a status-coloured
// style; plain output uses the default box style.
func NewTableFormatter(title string, colored bool) *TableFormatter {
	return &TableFormatter{title: title, colored: colored}
}

// Format renders the report.
func (tf *TableFormatter) Format(r *suite.Report) string {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(tf.title)
	t.AppendHeader(table.Row{"#", "Scenario", "Status", "Duration", "Step", "Reason"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Step", Align: text.AlignRight},
		{Name: "Reason", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for i, res := range r.Results {
		t.AppendRow(table.Row{
			i + 1,
			res.ScenarioID,
			statusString(res.Status),
			FormatDuration(res.Elapsed),
			FormatStep(res.FailedStep),
			res.Reason,
		})
	}

	if tf.colored {
		switch {
		case r.Failed > 0 || r.Errored > 0:
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		case r.Skipped > 0:
			t.SetStyle(table.StyleColoredBlackOnYellowWhite)
		default:
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		}
	}

	overall := "PASS"
	if !r.OK() {
		overall = "FAIL"
	}
	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d passed / %d failed / %d errored / %d skipped", r.Passed, r.Failed, r.Errored, r.Skipped),
		overall,
		FormatDuration(r.Elapsed),
		"",
		"",
	})

	t.Render()
	return buf.String()
}

func statusString(s scenario.Status) string {
	switch s {
	case scenario.StatusPassed:
		return "PASS"
	case scenario.StatusFailed:
		return "FAIL"
	case scenario.StatusErrored:
		return "ERROR"
	case scenario.StatusSkipped:
		return "SKIP"
	default:
		return string(s)
	}
}

// FormatStep shows a failed step index, or "-" when no step failed.
func FormatStep(i int) string {
	if i < 0 {
		return "-"
	}
	return strconv.Itoa(i)
}

// FormatDuration rounds for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
