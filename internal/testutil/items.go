package testutil

import (
	"testing"
	"time"

	"github.com/Veraticus/decision-queue/internal/model"
)

// Now is the fixed evaluation time used by fixtures.
var Now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// ItemBuilder provides a fluent interface for constructing decision items.
// Items default to the action surface, coverage tier, blue severity and
// project category, created at Now.
type ItemBuilder struct {
	t    *testing.T
	item model.DecisionItem
}

// NewItem starts a builder for an item with the given id.
func NewItem(t *testing.T, id string) *ItemBuilder {
	t.Helper()
	return &ItemBuilder{
		t: t,
		item: model.DecisionItem{
			ID:        id,
			Title:     "Item " + id,
			Surface:   model.SurfaceAction,
			Tier:      model.TierCoverage,
			Severity:  model.SeverityBlue,
			Category:  model.CategoryProject,
			CreatedAt: Now,
		},
	}
}

// Capital sets the capital tier.
func (b *ItemBuilder) Capital() *ItemBuilder { return b.Tier(model.TierCapital) }

// Integrity sets the integrity tier.
func (b *ItemBuilder) Integrity() *ItemBuilder { return b.Tier(model.TierIntegrity) }

// Coverage sets the coverage tier.
func (b *ItemBuilder) Coverage() *ItemBuilder { return b.Tier(model.TierCoverage) }

// Tier sets the decision tier.
func (b *ItemBuilder) Tier(tier model.Tier) *ItemBuilder {
	b.item.Tier = tier
	return b
}

// Severity sets the severity.
func (b *ItemBuilder) Severity(sev model.Severity) *ItemBuilder {
	b.item.Severity = sev
	return b
}

// Category sets the category.
func (b *ItemBuilder) Category(cat model.Category) *ItemBuilder {
	b.item.Category = cat
	return b
}

// Key sets the title key.
func (b *ItemBuilder) Key(key model.TitleKey) *ItemBuilder {
	b.item.TitleKey = key
	return b
}

// Title sets the title.
func (b *ItemBuilder) Title(title string) *ItemBuilder {
	b.item.Title = title
	return b
}

// Informational moves the item to the informational surface.
func (b *ItemBuilder) Informational() *ItemBuilder {
	b.item.Surface = model.SurfaceInformational
	return b
}

// DaysOld dates the item the given number of days before Now.
func (b *ItemBuilder) DaysOld(days int) *ItemBuilder {
	b.item.CreatedAt = Now.AddDate(0, 0, -days)
	return b
}

// Portfolio sets the portfolio reference.
func (b *ItemBuilder) Portfolio(id, name string) *ItemBuilder {
	b.item.Context.PortfolioID = id
	b.item.Context.PortfolioName = name
	return b
}

// Asset sets the asset reference.
func (b *ItemBuilder) Asset(id, symbol string) *ItemBuilder {
	b.item.Context.AssetID = id
	b.item.Context.AssetSymbol = symbol
	return b
}

// Build returns the item, failing the test if it is invalid.
func (b *ItemBuilder) Build() model.DecisionItem {
	b.t.Helper()
	if err := b.item.Validate(); err != nil {
		b.t.Fatalf("invalid test item: %v", err)
	}
	return b.item.Clone()
}

// Ideas returns n unsimulated capital ideas in one portfolio, aged 1..n days.
func Ideas(t *testing.T, n int, portfolio string) []model.DecisionItem {
	t.Helper()
	items := make([]model.DecisionItem, n)
	for i := range items {
		items[i] = NewItem(t, portfolio+"-idea-"+string(rune('a'+i))).
			Capital().
			Severity(model.SeverityOrange).
			Category(model.CategoryProcess).
			Key(model.KeyIdeaNotSimulated).
			Portfolio(portfolio, portfolio).
			DaysOld(i + 1).
			Build()
	}
	return items
}

// MixedQueue returns a queue that exercises rollup and every tier and
// category: three unsimulated ideas, an unconfirmed execution, a stale
// thesis, an overdue deliverable, an informational note and four fresh
// coverage items.
func MixedQueue(t *testing.T) []model.DecisionItem {
	t.Helper()
	items := Ideas(t, 3, "Growth")
	items = append(items,
		NewItem(t, "exec-1").Capital().Severity(model.SeverityRed).Category(model.CategoryRisk).
			Key(model.KeyExecutionNotConfirmed).Portfolio("Income", "Income").DaysOld(2).Build(),
		NewItem(t, "thesis-1").Coverage().Key(model.KeyThesisStale).Asset("acme", "ACME").DaysOld(30).Build(),
		NewItem(t, "deliv-1").Integrity().Severity(model.SeverityOrange).
			Key(model.KeyDeliverableOverdue).DaysOld(5).Build(),
		NewItem(t, "note-1").Informational().DaysOld(1).Build(),
	)
	for _, id := range []string{"cov-1", "cov-2", "cov-3", "cov-4"} {
		items = append(items, NewItem(t, id).Coverage().Category(model.CategoryProcess).Build())
	}
	return items
}
