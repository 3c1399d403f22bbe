package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/inference-sim/fastpass-sim/sim"
)

// formatCell renders a cell as "mean ± half" or "n/a".
func formatCell(c Cell) string {
	if !c.Defined {
		return "n/a"
	}
	if c.N < 2 {
		return fmt.Sprintf("%.3f", c.Mean)
	}
	return fmt.Sprintf("%.3f ± %.3f", c.Mean, c.HalfWidth)
}

// WriteTable prints the sweep as an aligned text table.
func WriteTable(w io.Writer, table *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "lambda\tf\tpriority\tregular\tpriority (theory)\tregular (theory)\tM/M/1")
	for _, r := range table.Rows {
		fmt.Fprintf(tw, "%.2f\t%.4f\t%s\t%s\t%s\t%s\t%s\n",
			r.ArrivalRate, r.Fraction,
			formatCell(r.Priority), formatCell(r.Regular),
			sim.FormatAvg(r.Predicted.Priority, r.Predicted.PriorityOK),
			sim.FormatAvg(r.Predicted.Regular, r.Predicted.RegularOK),
			sim.FormatAvg(r.Baseline, r.BaselineOK))
	}
	return tw.Flush()
}

// csvHeader lists the columns written by WriteCSV.
var csvHeader = []string{
	"arrival_rate", "fraction",
	"priority_avg", "priority_halfwidth", "priority_completed", "priority_arrived",
	"regular_avg", "regular_halfwidth", "regular_completed", "regular_arrived",
	"priority_theory", "regular_theory", "mm1_baseline",
}

// optFloat renders v, or an empty cell when undefined.
func optFloat(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one record per row. Undefined averages are empty cells.
func WriteCSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range table.Rows {
		record := []string{
			strconv.FormatFloat(r.ArrivalRate, 'g', -1, 64),
			strconv.FormatFloat(r.Fraction, 'g', -1, 64),
			optFloat(r.Priority.Mean, r.Priority.Defined),
			optFloat(r.Priority.HalfWidth, r.Priority.Defined && r.Priority.N > 1),
			strconv.FormatInt(r.Priority.Completed, 10),
			strconv.FormatInt(r.Priority.Arrived, 10),
			optFloat(r.Regular.Mean, r.Regular.Defined),
			optFloat(r.Regular.HalfWidth, r.Regular.Defined && r.Regular.N > 1),
			strconv.FormatInt(r.Regular.Completed, 10),
			strconv.FormatInt(r.Regular.Arrived, 10),
			optFloat(r.Predicted.Priority, r.Predicted.PriorityOK),
			optFloat(r.Predicted.Regular, r.Predicted.RegularOK),
			optFloat(r.Baseline, r.BaselineOK),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecommendations prints one block per arrival rate.
func WriteRecommendations(w io.Writer, recs []Recommendation) {
	for _, rec := range recs {
		fmt.Fprintf(w, "\nResults for λ=%g:\n", rec.ArrivalRate)
		if !rec.Found {
			fmt.Fprintln(w, "No good operating point found under the criteria.")
			continue
		}
		fmt.Fprintf(w, "Recommended FastPass fraction: %.2f\n", rec.Fraction)
		fmt.Fprintf(w, "  - FastPass residence time: %.2f\n", rec.PriorityAvg)
		fmt.Fprintf(w, "  - Regular residence time: %.2f (threshold %.2f)\n", rec.RegularAvg, rec.Threshold)
		fmt.Fprintf(w, "  - Regular/FastPass time ratio: %.2f\n", rec.RegularPerPrior)
	}
}
