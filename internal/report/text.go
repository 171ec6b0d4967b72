package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

// TextOptions controls text rendering.
type TextOptions struct {
	// Color enables ANSI colors.
	Color bool
	// Summary adds the run header, confusion matrix, summary block and
	// timings around the per-class metric lines.
	Summary bool
}

type palette struct {
	label, good, bad, undef, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		label: color.New(color.Bold),
		good:  color.New(color.FgGreen),
		bad:   color.New(color.FgRed),
		undef: color.New(color.FgYellow),
		dim:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.label, p.good, p.bad, p.undef, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) value(v float64) string {
	s := FormatValue(v)
	switch {
	case s == Undefined:
		return p.undef.Sprint(s)
	case v >= 0.5:
		return p.good.Sprint(s)
	default:
		return p.bad.Sprint(s)
	}
}

// WriteText writes the per-class report. Without colors or summary the output
// is exactly three lines per class:
//
//	Precision(<class>) => <value>
//	Recall(<class>) => <value>
//	F(<class>) => <value>
func WriteText(w io.Writer, r Report, opts TextOptions) error {
	p := newPalette(opts.Color)
	ew := &errWriter{w: w}

	if opts.Summary {
		writeHeader(ew, r, p)
		writeMatrix(ew, r)
	}

	for _, m := range r.Matrix.Metrics() {
		ew.printf("Precision(%s) => %s\n", m.Class, p.value(m.Precision))
		ew.printf("Recall(%s) => %s\n", m.Class, p.value(m.Recall))
		ew.printf("F(%s) => %s\n", m.Class, p.value(m.F1))
	}

	if opts.Summary {
		s := r.Matrix.Summarize()
		ew.printf("\n")
		ew.printf("%s %d/%d correct, %d unassigned, accuracy %s\n",
			p.label.Sprint("Summary:"), s.Correct, s.Total, s.Unassigned, p.value(s.Accuracy))
		ew.printf("Macro => precision %s, recall %s, F %s\n",
			p.value(s.MacroPrecision), p.value(s.MacroRecall), p.value(s.MacroF1))
		if len(r.Timings) > 0 {
			ew.printf("\n%s\n", p.label.Sprint("Timings:"))
			for _, t := range r.Timings {
				ew.printf("  %-10s %s\n", t.Phase, p.dim.Sprint(t.Duration.Round(time.Microsecond)))
			}
		}
	}
	return ew.err
}

func writeHeader(ew *errWriter, r Report, p palette) {
	if r.RunID != "" {
		ew.printf("%s %s\n", p.label.Sprint("Run:"), r.RunID)
	}
	ew.printf("%s %s\n", p.label.Sprint("Source:"), r.Source)
	ew.printf("%s seed %d, train ratio %s, scoring %s\n",
		p.label.Sprint("Params:"), r.Seed, FormatValue(r.TrainRatio), r.Scoring)
	ew.printf("%s %d records (%d skipped, %d duplicates), %d train, %d test\n",
		p.label.Sprint("Data:"), r.Records, r.Skipped, r.Duplicates, r.TrainSize, r.TestSize)
	ew.printf("%s %s\n\n", p.label.Sprint("Classes:"), strings.Join(r.Matrix.Classes(), ", "))
}

// writeMatrix prints the confusion matrix with true classes as rows.
func writeMatrix(ew *errWriter, r Report) {
	classes := r.Matrix.Classes()
	if len(classes) == 0 {
		return
	}
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "true \\ predicted\t")
	for _, c := range classes {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprint(tw, "unassigned\t\n")
	for i, row := range r.Matrix.Rows() {
		fmt.Fprintf(tw, "%s\t", classes[i])
		for _, n := range row {
			fmt.Fprintf(tw, "%d\t", n)
		}
		fmt.Fprint(tw, "\n")
	}
	tw.Flush()
	ew.printf("\n")
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
