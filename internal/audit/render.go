package audit

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/risk"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// RenderScore prints every check and the point total
func RenderScore(w io.Writer, score *Score) {
	fmt.Fprintln(w, "=== Score ===")
	for _, o := range score.Outcomes {
		status := "FAIL"
		if o.Passed {
			status = "PASS"
		}
		fmt.Fprintf(w, "[%s] %s (%d pts)\n", status, o.Preset, o.Points)
		for _, c := range o.Checks {
			mark := "✗"
			switch {
			case c.Skipped:
				mark = "-"
			case c.Passed:
				mark = "✓"
			case c.Advisory:
				mark = "!"
			}
			fmt.Fprintf(w, "  %s %s: %s\n", mark, c.Name, c.Detail)
		}
	}
	fmt.Fprintf(w, "Total: %d / %d\n\n", score.Points, score.MaxPoints)
}

// RenderAllocation prints the weights on every row where the allocation changes
func RenderAllocation(w io.Writer, result *contracts.BacktestResult) error {
	fmt.Fprintf(w, "=== Allocation: %s (%s) ===\n", result.Preset, result.EngineName)

	tw := newTable(w)
	fmt.Fprintf(tw, "Date\t%s\t\n", strings.Join(result.Weights.Columns, "\t"))

	prev := make([]float64, result.Weights.NCols())
	for i, row := range result.Weights.Values {
		if slices.Equal(row, prev) {
			continue
		}
		prev = row

		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", result.Weights.Dates[i].Format(contracts.DateLayout), strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d allocation changes over %d rows\n\n", result.RebalanceCount, result.Weights.NRows())
	return nil
}

// RenderPerformance prints the preset's headline metrics next to the benchmark's
func RenderPerformance(w io.Writer, result *contracts.BacktestResult, benchName string, bench *contracts.PerformanceReport) error {
	fmt.Fprintf(w, "=== Performance: %s vs %s ===\n", result.Preset, benchName)

	r := result.Report
	tw := newTable(w)
	fmt.Fprintf(tw, "Metric\t%s\t%s\t\n", result.Preset, benchName)
	fmt.Fprintf(tw, "Total Return\t%.2f%%\t%.2f%%\t\n", r.TotalReturn*100, bench.TotalReturn*100)
	fmt.Fprintf(tw, "CAGR\t%.2f%%\t%.2f%%\t\n", r.CAGR*100, bench.CAGR*100)
	fmt.Fprintf(tw, "Volatility\t%.2f%%\t%.2f%%\t\n", r.Volatility*100, bench.Volatility*100)
	fmt.Fprintf(tw, "Sharpe\t%.4f\t%.4f\t\n", r.Sharpe, bench.Sharpe)
	fmt.Fprintf(tw, "Max Drawdown\t%.2f%%\t%.2f%%\t\n", r.MaxDrawdown*100, bench.MaxDrawdown*100)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

// RenderReport prints every metric of the preset's report
func RenderReport(w io.Writer, result *contracts.BacktestResult) error {
	r := result.Report
	normal, err := risk.ParametricVaR(result.Portfolio(), risk.DefaultConfidence)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "=== Report: %s ===\n", result.Preset)

	tw := newTable(w)
	rows := []struct {
		name  string
		value string
	}{
		{"Start", r.StartDate.Format(contracts.DateLayout)},
		{"End", r.EndDate.Format(contracts.DateLayout)},
		{"Days", fmt.Sprintf("%d", r.Days)},
		{"Total Return", fmt.Sprintf("%.2f%%", r.TotalReturn*100)},
		{"CAGR", fmt.Sprintf("%.2f%%", r.CAGR*100)},
		{"Volatility (ann.)", fmt.Sprintf("%.2f%%", r.Volatility*100)},
		{"Sharpe", fmt.Sprintf("%.4f", r.Sharpe)},
		{"Sortino", fmt.Sprintf("%.4f", r.Sortino)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", r.MaxDrawdown*100)},
		{"Calmar", fmt.Sprintf("%.4f", r.Calmar)},
		{"VaR 95% (1d)", fmt.Sprintf("%.2f%%", r.VaR95*100)},
		{"CVaR 95% (1d)", fmt.Sprintf("%.2f%%", r.CVaR95*100)},
		{"Parametric VaR 95% (1d)", fmt.Sprintf("%.2f%%", normal.VaR*100)},
		{"Parametric CVaR 95% (1d)", fmt.Sprintf("%.2f%%", normal.CVaR*100)},
		{"Best Day", fmt.Sprintf("%.2f%%", r.BestDay*100)},
		{"Worst Day", fmt.Sprintf("%.2f%%", r.WorstDay*100)},
		{"Rebalances", fmt.Sprintf("%d", result.RebalanceCount)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t\n", row.name, row.value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

// RenderCumulative prints the cumulative product at each month end and the final value
func RenderCumulative(w io.Writer, result *contracts.BacktestResult) error {
	cum := result.Report.Cumulative
	dates := result.Returns.Dates
	fmt.Fprintf(w, "=== Cumulative: %s ===\n", result.Preset)

	tw := newTable(w)
	fmt.Fprintln(tw, "Date\tCumulative\t")
	for i := range cum {
		last := i == len(cum)-1
		if !last && dates[i+1].Month() == dates[i].Month() {
			continue
		}
		fmt.Fprintf(tw, "%s\t%.6f\t\n", dates[i].Format(contracts.DateLayout), cum[i])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Final: %.6f\n\n", cum[len(cum)-1])
	return nil
}
