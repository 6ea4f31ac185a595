package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableSink renders the verdicts as a terminal table.
type TableSink struct {
	W io.Writer
}

func (s *TableSink) Write(r *Report) error {
	t := table.NewWriter()
	t.SetOutputMirror(s.W)
	t.SetTitle(fmt.Sprintf("Test Reliability (%d runs)", r.RunsExecuted))

	t.AppendHeader(table.Row{
		"Test", "Tier", "Success Rate", "Passed", "Failed", "Avg Duration", "Variance",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Success Rate", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Avg Duration", Align: text.AlignRight},
		{Name: "Variance", Align: text.AlignRight},
	})

	summary := r.Summary()
	for _, v := range r.SortedVerdicts() {
		t.AppendRow(table.Row{
			v.TestName,
			v.Label(),
			fmt.Sprintf("%.1f%%", v.SuccessRate*100),
			v.SuccessfulRuns,
			v.FailedRuns,
			fmt.Sprintf("%.2fs", v.AvgDuration.Seconds()),
			fmt.Sprintf("%.2f", v.DurationVariance),
		})
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		"",
		fmt.Sprintf("%d stable", summary.Stable),
		fmt.Sprintf("%d flaky / %d failing", summary.Flaky, summary.Failing),
		"",
		"",
	})

	switch {
	case summary.Failing > 0 || summary.Flaky > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case summary.TotalTests == 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.Render()

	if summary.TotalTests == 0 {
		// No signal is not the same as all-stable; make that visible.
		fmt.Fprintln(s.W, "No test results were observed; nothing to classify.")
	}
	return nil
}

var _ Sink = (*TableSink)(nil)
var _ Sink = (*WriterSink)(nil)
var _ Sink = (*FileSink)(nil)
