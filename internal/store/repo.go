package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID matches nothing.
var ErrNotFound = errors.New("run not found")

// QueryOpts configures run listing.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // created_at >= From
	To    time.Time // created_at <= To
}

// ClassResult is the stored outcome for one class. Nil metrics are undefined
// (zero denominator).
type ClassResult struct {
	Class     string   `json:"class"`
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	F1        *float64 `json:"f1"`
}

// RunData is the JSON payload of a run.
type RunData struct {
	Classes []string      `json:"classes"`
	Matrix  [][]int       `json:"matrix"` // rows: true class; columns: classes, then unassigned
	Results []ClassResult `json:"results"`
}

// Run is one stored evaluation.
type Run struct {
	ID         string
	Sequence   int64
	CreatedAt  time.Time
	Source     string
	Seed       uint64
	TrainRatio float64
	Scoring    string
	Records    int
	Duplicates int
	Skipped    int
	TrainSize  int
	TestSize   int
	Correct    int
	Unassigned int
	Data       RunData
}

// RunRepo stores and reads evaluation runs.
type RunRepo interface {
	// Save stores run, assigning ID, Sequence and CreatedAt when unset.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID or unique ID prefix.
	// Returns ErrNotFound when nothing matches.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs, newest first.
	List(ctx context.Context, opts QueryOpts) ([]Run, error)

	// Prune deletes all but the keep most recent runs and reports how many
	// were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
