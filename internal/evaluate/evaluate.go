// Package evaluate runs a classifier over labeled examples and derives
// per-class precision, recall and F1 from the resulting confusion matrix.
package evaluate

import (
	"context"
	"fmt"

	"github.com/abhisek/namebayes/internal/bayes"
	"github.com/abhisek/namebayes/internal/dataset"
	"golang.org/x/sync/errgroup"
)

// Options configures Evaluate.
type Options struct {
	// Workers bounds concurrent classification. Values below 2 classify
	// sequentially.
	Workers int
	// Classify picks a class per example. Nil means bayes.Classify.
	Classify bayes.ClassifyFunc
}

// Prediction is the classifier output for one example.
type Prediction struct {
	Class    string
	Assigned bool
}

// Predict classifies every example against m. Output order matches input
// order regardless of Workers.
func Predict(ctx context.Context, m *bayes.Model, examples []dataset.Example, opts Options) ([]Prediction, error) {
	classify := opts.Classify
	if classify == nil {
		classify = bayes.Classify
	}
	out := make([]Prediction, len(examples))

	if opts.Workers < 2 {
		for i, ex := range examples {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c, ok := classify(m, ex.Features)
			out[i] = Prediction{Class: c, Assigned: ok}
		}
		return out, nil
	}

	// The model is read-only, so workers share it without locking; each
	// writes only its own slot.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range examples {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, ok := classify(m, examples[i].Features)
			out[i] = Prediction{Class: c, Assigned: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate classifies examples and accumulates the confusion matrix over the
// model's classes. An example whose true class is not a model class returns
// bayes.ErrUnknownClass.
func Evaluate(ctx context.Context, m *bayes.Model, examples []dataset.Example, opts Options) (*ConfusionMatrix, error) {
	cm := NewConfusionMatrix(m.Classes())
	for i, ex := range examples {
		if !m.HasClass(ex.Class) {
			return nil, fmt.Errorf("test example %d (%q): %w %q", i, ex.Name, bayes.ErrUnknownClass, ex.Class)
		}
	}

	preds, err := Predict(ctx, m, examples, opts)
	if err != nil {
		return nil, fmt.Errorf("classify test set: %w", err)
	}
	for i, p := range preds {
		if err := cm.Add(examples[i].Class, p.Class, p.Assigned); err != nil {
			return nil, err
		}
	}
	return cm, nil
}
