// Package engine composes rollup, scoring and ordering into the decision queue pipeline.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/rollup"
	"github.com/Veraticus/decision-queue/internal/scoring"
	"github.com/Veraticus/decision-queue/internal/source"
)

// Result is the ordered output of one pipeline pass.
type Result struct {
	// ActionItems are the ranked items for the decision surface.
	ActionItems []model.DecisionItem
	// InformationalItems holds every non-action item, in the same order.
	InformationalItems []model.DecisionItem
	// Warnings reports upstream defects found while rolling up, such as mixed-tier groups.
	Warnings []error
}

// Engine runs the decision queue pipeline.
type Engine struct {
	registry *rollup.Registry
	logger   *slog.Logger
}

// Config holds configuration options for the engine.
type Config struct {
	Registry *rollup.Registry
	Logger   *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Registry: rollup.DefaultRegistry(),
		Logger:   slog.Default(),
	}
}

// New creates an engine with the built-in rollup policies.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
// Nil fields fall back to the defaults.
func NewWithConfig(cfg Config) *Engine {
	if cfg.Registry == nil {
		cfg.Registry = rollup.DefaultRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

// Registry returns the rollup policies the engine applies.
func (e *Engine) Registry() *rollup.Registry {
	return e.registry
}

// Postprocess rolls up, scores and orders items as of now.
//
// The input is never modified. Calling Postprocess on a copy of the same
// items yields the same ordered ids.
func (e *Engine) Postprocess(items []model.DecisionItem, now time.Time) Result {
	rolled, err := e.registry.Rollup(items, now)

	var warnings []error
	if err != nil {
		warnings = unjoin(err)
		for _, w := range warnings {
			e.logger.Warn("Rollup skipped", "error", w)
		}
	}

	scored := scoring.Score(rolled, now)
	scoring.Sort(scored)

	result := Result{Warnings: warnings}
	for _, item := range scored {
		if item.Surface == model.SurfaceAction {
			result.ActionItems = append(result.ActionItems, item)
		} else {
			result.InformationalItems = append(result.InformationalItems, item)
		}
	}

	e.logger.Debug("Postprocessed decision items",
		"input", len(items),
		"after_rollup", len(rolled),
		"action", len(result.ActionItems),
		"informational", len(result.InformationalItems))

	return result
}

// Run collects items from sources and postprocesses them.
// Source failures are returned together with the result built from the
// sources that succeeded.
func (e *Engine) Run(ctx context.Context, now time.Time, sources ...source.Source) (Result, error) {
	items, err := source.Collect(ctx, now, sources...)
	if err != nil {
		e.logger.Error("Some sources failed", "error", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	return e.Postprocess(items, now), err
}

// Postprocess runs the pipeline with the built-in rollup policies.
func Postprocess(items []model.DecisionItem, now time.Time) Result {
	return New().Postprocess(items, now)
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// IsMixedTier reports whether a warning came from a mixed-tier rollup group.
func IsMixedTier(err error) bool {
	return errors.Is(err, rollup.ErrMixedTiers)
}
