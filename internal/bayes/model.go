// Package bayes trains per-class feature frequency tables and classifies
// feature vectors against them with add-one smoothing.
package bayes

import (
	"errors"
	"fmt"

	"github.com/abhisek/namebayes/internal/features"
)

var (
	// ErrUnknownClass is returned when a record's class is not one of the
	// model's classes.
	ErrUnknownClass = errors.New("unknown class")

	// ErrDuplicateClass is returned when the class list repeats a label.
	ErrDuplicateClass = errors.New("duplicate class")
)

// ClassTable holds the training counts of one class.
type ClassTable struct {
	total  int
	counts map[features.Feature]int
}

func newClassTable() *ClassTable {
	return &ClassTable{counts: make(map[features.Feature]int)}
}

// Total is the number of training records of this class.
func (t *ClassTable) Total() int { return t.total }

// Count is the number of training records of this class that carried f.
// Unseen features count zero.
func (t *ClassTable) Count(f features.Feature) int { return t.counts[f] }

// Distinct is the number of distinct (name, value) pairs seen for the class.
func (t *ClassTable) Distinct() int { return len(t.counts) }

func (t *ClassTable) add(v features.Vector) {
	t.total++
	for _, f := range v {
		t.counts[f]++
	}
}

// Model is the trained state. It is immutable once returned by Train and safe
// to share between goroutines.
type Model struct {
	classes []string
	total   int
	tables  map[string]*ClassTable
}

func newModel(classes []string, total int) (*Model, error) {
	m := &Model{
		classes: append([]string(nil), classes...),
		total:   total,
		tables:  make(map[string]*ClassTable, len(classes)),
	}
	for _, c := range classes {
		if _, dup := m.tables[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateClass, c)
		}
		m.tables[c] = newClassTable()
	}
	return m, nil
}

// Classes returns a copy of the class labels in scoring order.
func (m *Model) Classes() []string { return append([]string(nil), m.classes...) }

// Total is the number of records the model was trained on.
func (m *Model) Total() int { return m.total }

// Table returns the counts of class c, or nil when c is not a model class.
func (m *Model) Table(c string) *ClassTable { return m.tables[c] }

// HasClass reports whether c is one of the model's classes.
func (m *Model) HasClass(c string) bool {
	_, ok := m.tables[c]
	return ok
}
