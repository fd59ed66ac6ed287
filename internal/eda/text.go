package eda

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/housing-eda/internal/frame"
)

// WriteText renders the report as aligned console tables, section by
// section in the classic explore order.
func (r *Report) WriteText(out io.Writer) {
	fmt.Fprintln(out, "General information:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COLUMN\tKIND\tNON-NULL")
	_, _ = fmt.Fprintln(w, "------\t----\t--------")
	for _, ci := range r.Structure {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", ci.Name, ci.Kind, ci.NonNull)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nFirst %d rows:\n", headRows)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(r.Columns, "\t"))
	for _, row := range r.Head {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()

	fmt.Fprintln(out, "\nDescriptive statistics:")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COLUMN\tCOUNT\tMEAN\tSTD\tMIN\t25%\t50%\t75%\tMAX")
	for _, s := range r.Describe {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Column, s.Count,
			statCell(s.Mean), statCell(s.Std), statCell(s.Min),
			statCell(s.P25), statCell(s.Median), statCell(s.P75), statCell(s.Max))
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nShape: (%d, %d)\n", r.Rows, r.Cols)
	fmt.Fprintf(out, "\nSum of duplicates: %d\n", r.Duplicates)

	fmt.Fprintln(out, "\nMissing values:")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "Column\tSum of NaNs\tPerc of NaNs")
	for _, mi := range r.Missing {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.2f\n", mi.Column, mi.Count, mi.Percent)
	}
	_ = w.Flush()
}

// statCell renders one statistic; NaN renders as a dash.
func statCell(v float64) string {
	s := frame.FormatCell(v)
	if s == "" {
		return "-"
	}
	return s
}
