package evaluate

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ClassMetrics holds the quality scores of one class. A metric whose
// denominator is zero is NaN.
type ClassMetrics struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
}

// Summary aggregates a confusion matrix.
type Summary struct {
	Total      int
	Correct    int
	Unassigned int
	// Accuracy is Correct/Total, NaN when nothing was evaluated.
	Accuracy float64
	// Macro averages skip undefined per-class values and are NaN when no
	// class has a defined value.
	MacroPrecision float64
	MacroRecall    float64
	MacroF1        float64
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

// F1 is the harmonic mean of precision and recall. It is NaN when either is
// undefined or both are zero.
func F1(precision, recall float64) float64 {
	if math.IsNaN(precision) || math.IsNaN(recall) || precision+recall == 0 {
		return math.NaN()
	}
	return 2 * precision * recall / (precision + recall)
}

// Metrics returns precision, recall and F1 for every class in class order.
// Precision divides by the column total; recall divides by the row total,
// which counts unassigned records as misses.
func (cm *ConfusionMatrix) Metrics() []ClassMetrics {
	out := make([]ClassMetrics, len(cm.classes))
	for i, c := range cm.classes {
		tp := int(cm.cells.At(i, i))
		p := ratio(tp, cm.ColumnTotal(c))
		r := ratio(tp, cm.RowTotal(c))
		out[i] = ClassMetrics{Class: c, Precision: p, Recall: r, F1: F1(p, r)}
	}
	return out
}

// Summarize computes accuracy and macro averages.
func (cm *ConfusionMatrix) Summarize() Summary {
	s := Summary{
		Total:      cm.Total(),
		Correct:    cm.Correct(),
		Unassigned: cm.TotalUnassigned(),
	}
	s.Accuracy = ratio(s.Correct, s.Total)

	var ps, rs, fs []float64
	for _, m := range cm.Metrics() {
		ps = appendDefined(ps, m.Precision)
		rs = appendDefined(rs, m.Recall)
		fs = appendDefined(fs, m.F1)
	}
	s.MacroPrecision = mean(ps)
	s.MacroRecall = mean(rs)
	s.MacroF1 = mean(fs)
	return s
}

func appendDefined(dst []float64, v float64) []float64 {
	if math.IsNaN(v) {
		return dst
	}
	return append(dst, v)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}
