package bayes

import (
	"context"
	"fmt"

	"github.com/abhisek/namebayes/internal/dataset"
	"golang.org/x/sync/errgroup"
)

// Train builds a model from examples. The class list is fixed up front and
// every example must belong to one of its classes. An empty training set
// yields a model with all-zero counts.
func Train(examples []dataset.Example, classes []string) (*Model, error) {
	m, err := newModel(classes, len(examples))
	if err != nil {
		return nil, err
	}
	for i, ex := range examples {
		t, ok := m.tables[ex.Class]
		if !ok {
			return nil, fmt.Errorf("example %d (%q): %w %q", i, ex.Name, ErrUnknownClass, ex.Class)
		}
		t.add(ex.Features)
	}
	return m, nil
}

// TrainParallel builds the same model as Train, with each class table filled
// by its own goroutine. Classes are independent in this model, so tables are
// built without sharing and merged by construction. At most workers tables
// are built at once; workers < 1 means one per class.
func TrainParallel(ctx context.Context, examples []dataset.Example, classes []string, workers int) (*Model, error) {
	m, err := newModel(classes, len(examples))
	if err != nil {
		return nil, err
	}

	shards := make(map[string][]int, len(classes))
	for i, ex := range examples {
		if !m.HasClass(ex.Class) {
			return nil, fmt.Errorf("example %d (%q): %w %q", i, ex.Name, ErrUnknownClass, ex.Class)
		}
		shards[ex.Class] = append(shards[ex.Class], i)
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, c := range m.classes {
		t, idx := m.tables[c], shards[c]
		g.Go(func() error {
			for _, i := range idx {
				if err := ctx.Err(); err != nil {
					return err
				}
				t.add(examples[i].Features)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	return m, nil
}
