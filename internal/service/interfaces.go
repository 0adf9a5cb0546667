// Package service defines the interfaces shared between the pipeline and its backends.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/decision-queue/internal/model"
)

// ItemFilter narrows item queries. Zero values match everything.
type ItemFilter struct {
	Since     *time.Time
	Source    string
	Tiers     []model.Tier
	TitleKeys []model.TitleKey
	Surface   model.Surface
	Limit     int
}

// Run is a recorded dashboard evaluation.
type Run struct {
	EvaluatedAt time.Time `json:"evaluatedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	ID          string    `json:"id"`
	Items       []RunItem `json:"items,omitempty"`
	ActionCount int       `json:"actionCount"`
}

// RunItem is one dashboard row as it was shown in a run.
type RunItem struct {
	ItemID     string         `json:"itemId"`
	Title      string         `json:"title"`
	Tier       model.Tier     `json:"tier"`
	Severity   model.Severity `json:"severity"`
	Category   model.Category `json:"category"`
	Pass       string         `json:"pass,omitempty"`
	Position   int            `json:"position"`
	SortScore  int            `json:"sortScore"`
	ChildCount int            `json:"childCount"`
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Item operations
	SaveItems(ctx context.Context, sourceName string, items []model.DecisionItem) error
	ListItems(ctx context.Context, filter ItemFilter) ([]model.DecisionItem, error)
	CountItems(ctx context.Context) (int, error)
	DeleteItems(ctx context.Context, ids ...string) (int64, error)

	// Run history
	RecordRun(ctx context.Context, run Run) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Source
	Name() string
	Items(ctx context.Context, now time.Time) ([]model.DecisionItem, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RunItemsFrom converts dashboard rows into run items. passes is matched to
// items by position and may be shorter than items.
func RunItemsFrom(items []model.DecisionItem, passes []string) []RunItem {
	out := make([]RunItem, len(items))
	for i, item := range items {
		var pass string
		if i < len(passes) {
			pass = passes[i]
		}
		out[i] = RunItem{
			Position:   i,
			ItemID:     item.ID,
			Title:      item.Title,
			Tier:       item.Tier,
			Severity:   item.Severity,
			Category:   item.Category,
			SortScore:  item.SortScore,
			Pass:       pass,
			ChildCount: len(item.Children),
		}
	}
	return out
}
