package report

import (
	"encoding/json"
	"io"
	"time"
)

type jsonMetric struct {
	Class     string   `json:"class"`
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	F1        *float64 `json:"f1"`
}

type jsonSummary struct {
	Total          int      `json:"total"`
	Correct        int      `json:"correct"`
	Unassigned     int      `json:"unassigned"`
	Accuracy       *float64 `json:"accuracy"`
	MacroPrecision *float64 `json:"macro_precision"`
	MacroRecall    *float64 `json:"macro_recall"`
	MacroF1        *float64 `json:"macro_f1"`
}

type jsonRun struct {
	ID         string     `json:"id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	Source     string     `json:"source"`
	Seed       uint64     `json:"seed"`
	TrainRatio float64    `json:"train_ratio"`
	Scoring    string     `json:"scoring"`
	Records    int        `json:"records"`
	Skipped    int        `json:"skipped"`
	Duplicates int        `json:"duplicates"`
	TrainSize  int        `json:"train_size"`
	TestSize   int        `json:"test_size"`
}

type jsonReport struct {
	Run     jsonRun            `json:"run"`
	Classes []string           `json:"classes"`
	Matrix  [][]int            `json:"matrix"`
	Metrics []jsonMetric       `json:"metrics"`
	Summary jsonSummary        `json:"summary"`
	Timings map[string]float64 `json:"timings_ms,omitempty"`
}

// WriteJSON writes r as one indented JSON object. Undefined metrics are null.
// Matrix rows follow classes; the last column of each row is the unassigned
// count.
func WriteJSON(w io.Writer, r Report) error {
	out := jsonReport{
		Run: jsonRun{
			ID:         r.RunID,
			Source:     r.Source,
			Seed:       r.Seed,
			TrainRatio: r.TrainRatio,
			Scoring:    r.Scoring,
			Records:    r.Records,
			Skipped:    r.Skipped,
			Duplicates: r.Duplicates,
			TrainSize:  r.TrainSize,
			TestSize:   r.TestSize,
		},
		Classes: r.Matrix.Classes(),
		Matrix:  r.Matrix.Rows(),
		Metrics: []jsonMetric{},
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		out.Run.CreatedAt = &t
	}
	for _, m := range r.Matrix.Metrics() {
		out.Metrics = append(out.Metrics, jsonMetric{
			Class:     m.Class,
			Precision: Nullable(m.Precision),
			Recall:    Nullable(m.Recall),
			F1:        Nullable(m.F1),
		})
	}
	s := r.Matrix.Summarize()
	out.Summary = jsonSummary{
		Total:          s.Total,
		Correct:        s.Correct,
		Unassigned:     s.Unassigned,
		Accuracy:       Nullable(s.Accuracy),
		MacroPrecision: Nullable(s.MacroPrecision),
		MacroRecall:    Nullable(s.MacroRecall),
		MacroF1:        Nullable(s.MacroF1),
	}
	if len(r.Timings) > 0 {
		out.Timings = make(map[string]float64, len(r.Timings))
		for _, t := range r.Timings {
			out.Timings[t.Phase] = float64(t.Duration.Microseconds()) / 1000
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
