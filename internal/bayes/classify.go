package bayes

import (
	"fmt"
	"math"

	"github.com/abhisek/namebayes/internal/features"
)

// ClassifyFunc picks a class for a feature vector. ok is false when no class
// scored above zero.
type ClassifyFunc func(m *Model, v features.Vector) (class string, ok bool)

// ScoreMode selects how class scores are combined.
type ScoreMode string

const (
	// ScoreProduct multiplies smoothed factors. This is the default.
	ScoreProduct ScoreMode = "product"
	// ScoreLog sums log factors, which does not underflow on long inputs or
	// large training sets.
	ScoreLog ScoreMode = "log"
)

// ParseScoreMode maps a config string to a ScoreMode. Empty means product.
func ParseScoreMode(s string) (ScoreMode, error) {
	switch ScoreMode(s) {
	case "", ScoreProduct:
		return ScoreProduct, nil
	case ScoreLog:
		return ScoreLog, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q (want product or log)", s)
	}
}

// Func returns the classifier implementing mode.
func (mode ScoreMode) Func() ClassifyFunc {
	if mode == ScoreLog {
		return ClassifyLog
	}
	return Classify
}

// Score is the score of one class for one input.
type Score struct {
	Class string
	Value float64
}

// factor is the add-one smoothed weight of a feature seen count times in a
// class. The denominator adds the training set size, not a vocabulary size.
func factor(count, classTotal, modelTotal int) float64 {
	return float64(count+1) / float64(classTotal+modelTotal)
}

// score multiplies the smoothed factors of every feature in v for table t.
// A zero denominator (empty training set) scores zero.
func score(m *Model, t *ClassTable, v features.Vector) float64 {
	if t.total+m.total == 0 {
		return 0
	}
	s := 1.0
	for _, f := range v {
		s *= factor(t.counts[f], t.total, m.total)
	}
	return s
}

// logScore is score in log space; zero evidence is -Inf.
func logScore(m *Model, t *ClassTable, v features.Vector) float64 {
	if t.total+m.total == 0 {
		return math.Inf(-1)
	}
	s := 0.0
	for _, f := range v {
		s += math.Log(factor(t.counts[f], t.total, m.total))
	}
	return s
}

// Scores returns the product score of every class, in class order.
func Scores(m *Model, v features.Vector) []Score {
	out := make([]Score, len(m.classes))
	for i, c := range m.classes {
		out[i] = Score{Class: c, Value: score(m, m.tables[c], v)}
	}
	return out
}

// LogScores returns the log-space score of every class, in class order.
func LogScores(m *Model, v features.Vector) []Score {
	out := make([]Score, len(m.classes))
	for i, c := range m.classes {
		out[i] = Score{Class: c, Value: logScore(m, m.tables[c], v)}
	}
	return out
}

// Classify returns the class with the highest product score. A class wins
// only by beating the running maximum strictly, starting from zero: ties go
// to the earlier class and a zero score never wins. When every class scores
// zero, ok is false.
func Classify(m *Model, v features.Vector) (string, bool) {
	return pick(Scores(m, v), 0)
}

// ClassifyLog applies the same rule to log scores, starting from -Inf.
func ClassifyLog(m *Model, v features.Vector) (string, bool) {
	return pick(LogScores(m, v), math.Inf(-1))
}

func pick(scores []Score, floor float64) (string, bool) {
	best, top := -1, floor
	for i, s := range scores {
		if s.Value > top {
			best, top = i, s.Value
		}
	}
	if best < 0 {
		return "", false
	}
	return scores[best].Class, true
}
