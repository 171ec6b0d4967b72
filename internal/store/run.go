package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// runRepo implements RunRepo with raw SQL.
type runRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

const runColumns = `id, sequence, created_at, source, seed, train_ratio, scoring,
	records, duplicates, skipped, train_size, test_size, correct, unassigned, data`

func (r *runRepo) Save(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run.Data)
	if err != nil {
		return fmt.Errorf("marshal run data: %w", err)
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Sequence == 0 {
		seq, err := r.seq.Next(ctx)
		if err != nil {
			return err
		}
		run.Sequence = seq
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Sequence, run.CreatedAt.UnixNano(), run.Source, int64(run.Seed),
		run.TrainRatio, run.Scoring, run.Records, run.Duplicates, run.Skipped,
		run.TrainSize, run.TestSize, run.Correct, run.Unassigned, string(data),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (r *runRepo) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? ORDER BY sequence DESC LIMIT 2`,
		len(id), id,
	)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(runs) > 1 && runs[0].ID != id && runs[1].ID != id:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	for i := range runs {
		if runs[i].ID == id {
			return &runs[i], nil
		}
	}
	return &runs[0], nil
}

func (r *runRepo) List(ctx context.Context, opts QueryOpts) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.From.UnixNano())
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, opts.To.UnixNano())
	}

	q := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return scanRuns(rows)
}

func (r *runRepo) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("prune: keep must be >= 0, got %d", keep)
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM runs WHERE sequence NOT IN (
			SELECT sequence FROM runs ORDER BY sequence DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return int(n), nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run     Run
			created int64
			seed    int64
			data    string
		)
		err := rows.Scan(&run.ID, &run.Sequence, &created, &run.Source, &seed,
			&run.TrainRatio, &run.Scoring, &run.Records, &run.Duplicates, &run.Skipped,
			&run.TrainSize, &run.TestSize, &run.Correct, &run.Unassigned, &data)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(0, created).UTC()
		run.Seed = uint64(seed)
		if err := json.Unmarshal([]byte(data), &run.Data); err != nil {
			return nil, fmt.Errorf("unmarshal run %s data: %w", run.ID, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
