package dataset

import (
	"strings"

	"github.com/abhisek/namebayes/internal/features"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Record is one labeled token.
type Record struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// Example is a record together with its extracted feature vector.
type Example struct {
	Record
	Features features.Vector
}

// Normalize trims surrounding whitespace, composes the string to NFC and
// lowercases it.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// Casers keep state, so each call gets its own.
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// NewRecord returns a record with both fields normalized.
func NewRecord(name, class string) Record {
	return Record{Name: Normalize(name), Class: Normalize(class)}
}

// Dedupe removes exact duplicates, keeping the first occurrence of each
// (name, class) pair. It returns the distinct records and the number dropped.
func Dedupe(records []Record) ([]Record, int) {
	seen := make(map[Record]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

// Classes returns the distinct class labels in first-seen order.
func Classes(records []Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Class]; ok {
			continue
		}
		seen[r.Class] = struct{}{}
		out = append(out, r.Class)
	}
	return out
}

// ExtractAll pairs every record with its feature vector. A nil extractor
// uses features.Default.
func ExtractAll(records []Record, ex features.Extractor) []Example {
	if ex == nil {
		ex = features.Default
	}
	out := make([]Example, len(records))
	for i, r := range records {
		out[i] = Example{Record: r, Features: ex.Extract(r.Name)}
	}
	return out
}

// CountByClass tallies records per class label.
func CountByClass(records []Record) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		out[r.Class]++
	}
	return out
}
