package evaluate

import (
	"fmt"

	"github.com/abhisek/namebayes/internal/bayes"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ConfusionMatrix counts (true class, predicted class) pairs. Besides the
// classes × classes cells, every true class has an unassigned bucket for
// records the classifier could not place in any class.
type ConfusionMatrix struct {
	classes []string
	index   map[string]int
	// cells has one row per true class and one column per predicted class,
	// plus a trailing unassigned column. Nil when there are no classes.
	cells *mat.Dense
}

// NewConfusionMatrix returns a zeroed matrix over classes.
func NewConfusionMatrix(classes []string) *ConfusionMatrix {
	cm := &ConfusionMatrix{
		classes: append([]string(nil), classes...),
		index:   make(map[string]int, len(classes)),
	}
	for i, c := range cm.classes {
		cm.index[c] = i
	}
	if n := len(cm.classes); n > 0 {
		cm.cells = mat.NewDense(n, n+1, nil)
	}
	return cm
}

// Classes returns the class labels in matrix order.
func (cm *ConfusionMatrix) Classes() []string { return append([]string(nil), cm.classes...) }

func (cm *ConfusionMatrix) unassignedCol() int { return len(cm.classes) }

// Add records one prediction. When assigned is false the prediction lands in
// the true class's unassigned bucket and predicted is ignored.
func (cm *ConfusionMatrix) Add(trueClass, predicted string, assigned bool) error {
	i, ok := cm.index[trueClass]
	if !ok {
		return fmt.Errorf("true class %q: %w", trueClass, bayes.ErrUnknownClass)
	}
	j := cm.unassignedCol()
	if assigned {
		if j, ok = cm.index[predicted]; !ok {
			return fmt.Errorf("predicted class %q: %w", predicted, bayes.ErrUnknownClass)
		}
	}
	cm.cells.Set(i, j, cm.cells.At(i, j)+1)
	return nil
}

// Count returns matrix[trueClass][predicted], zero for unknown labels.
func (cm *ConfusionMatrix) Count(trueClass, predicted string) int {
	i, ok := cm.index[trueClass]
	j, ok2 := cm.index[predicted]
	if !ok || !ok2 {
		return 0
	}
	return int(cm.cells.At(i, j))
}

// Unassigned returns how many records of trueClass got no prediction.
func (cm *ConfusionMatrix) Unassigned(trueClass string) int {
	i, ok := cm.index[trueClass]
	if !ok {
		return 0
	}
	return int(cm.cells.At(i, cm.unassignedCol()))
}

// RowTotal is the number of evaluated records whose true class is c,
// unassigned ones included.
func (cm *ConfusionMatrix) RowTotal(c string) int {
	i, ok := cm.index[c]
	if !ok {
		return 0
	}
	return int(floats.Sum(mat.Row(nil, i, cm.cells)))
}

// ColumnTotal is the number of records predicted as c.
func (cm *ConfusionMatrix) ColumnTotal(c string) int {
	j, ok := cm.index[c]
	if !ok {
		return 0
	}
	return int(floats.Sum(mat.Col(nil, j, cm.cells)))
}

// Total is the number of records added.
func (cm *ConfusionMatrix) Total() int {
	if cm.cells == nil {
		return 0
	}
	return int(mat.Sum(cm.cells))
}

// Correct is the trace of the classes × classes block.
func (cm *ConfusionMatrix) Correct() int {
	n := 0
	for i := range cm.classes {
		n += int(cm.cells.At(i, i))
	}
	return n
}

// TotalUnassigned sums the unassigned buckets.
func (cm *ConfusionMatrix) TotalUnassigned() int {
	if cm.cells == nil {
		return 0
	}
	return int(floats.Sum(mat.Col(nil, cm.unassignedCol(), cm.cells)))
}

// Rows returns the counts as a row-major table. Each row has one entry per
// class followed by the unassigned count.
func (cm *ConfusionMatrix) Rows() [][]int {
	out := make([][]int, len(cm.classes))
	for i := range cm.classes {
		row := make([]int, len(cm.classes)+1)
		for j := range row {
			row[j] = int(cm.cells.At(i, j))
		}
		out[i] = row
	}
	return out
}

// FromRows rebuilds a matrix from Rows output.
func FromRows(classes []string, rows [][]int) (*ConfusionMatrix, error) {
	cm := NewConfusionMatrix(classes)
	if len(rows) != len(classes) {
		return nil, fmt.Errorf("matrix has %d rows, want %d", len(rows), len(classes))
	}
	for i, row := range rows {
		if len(row) != len(classes)+1 {
			return nil, fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), len(classes)+1)
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("matrix cell (%d,%d) is negative", i, j)
			}
			cm.cells.Set(i, j, float64(v))
		}
	}
	return cm, nil
}
