// Package source defines where decision items come from.
//
// A Source stands in for an upstream rule evaluator: it inspects domain state
// and emits candidate items. The ranking pipeline only depends on this
// interface.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/model"
)

// Source produces candidate decision items as of now.
type Source interface {
	Name() string
	Items(ctx context.Context, now time.Time) ([]model.DecisionItem, error)
}

// Func adapts a function to the Source interface.
type Func struct {
	Fn    func(ctx context.Context, now time.Time) ([]model.DecisionItem, error)
	Label string
}

// Name implements Source.
func (f Func) Name() string {
	return f.Label
}

// Items implements Source.
func (f Func) Items(ctx context.Context, now time.Time) ([]model.DecisionItem, error) {
	return f.Fn(ctx, now)
}

// Static is a Source backed by a fixed slice. Each call returns a fresh copy.
type Static struct {
	Label string
	List  []model.DecisionItem
}

// Name implements Source.
func (s Static) Name() string {
	return s.Label
}

// Items implements Source.
func (s Static) Items(_ context.Context, _ time.Time) ([]model.DecisionItem, error) {
	return model.CloneItems(s.List), nil
}

// Collect runs every source in order and concatenates their items.
// A failing source does not stop the others; all failures are joined into
// the returned error alongside the items that were collected.
func Collect(ctx context.Context, now time.Time, sources ...Source) ([]model.DecisionItem, error) {
	var (
		items []model.DecisionItem
		errs  []error
	)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		got, err := src.Items(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name(), err))
			continue
		}

		slog.Debug("Collected items from source", "source", src.Name(), "count", len(got))
		items = append(items, got...)
	}

	return items, errors.Join(errs...)
}

// Retrying wraps a Source and retries transient failures such as a busy database.
type Retrying struct {
	Source
	Options common.RetryOptions
}

// Items implements Source.
func (r Retrying) Items(ctx context.Context, now time.Time) ([]model.DecisionItem, error) {
	var items []model.DecisionItem
	err := common.WithRetry(ctx, func() error {
		var err error
		items, err = r.Source.Items(ctx, now)
		return err
	}, r.Options)
	return items, err
}
