// Package scoring assigns a totally ordered rank to decision items.
//
// A score is the sum of three weights: tier, severity and an age bonus. The
// weights are spaced so that a higher tier always outranks a lower one and a
// higher severity always outranks a lower one inside a tier. Age only breaks
// ties inside a tier and severity bucket.
package scoring

import (
	"cmp"
	"slices"
	"time"

	"github.com/Veraticus/decision-queue/internal/model"
)

// Weight tables. SeverityGap must stay larger than MaxAgeBonus, and the
// largest severity weight plus MaxAgeBonus must stay below TierGap.
const (
	TierGap     = 10000
	SeverityGap = 1000
	MaxAgeBonus = SeverityGap - 1
)

// TierWeight returns the score contribution of a tier.
func TierWeight(t model.Tier) int {
	return t.Rank() * TierGap
}

// SeverityWeight returns the score contribution of a severity.
func SeverityWeight(s model.Severity) int {
	return s.Rank() * SeverityGap
}

// AgeBonus grows one point per whole day and is capped at MaxAgeBonus.
func AgeBonus(days int) int {
	return min(max(days, 0), MaxAgeBonus)
}

// ComputeSortScore scores a single item as of now.
// Rollups age by their oldest child.
func ComputeSortScore(item model.DecisionItem, now time.Time) int {
	return TierWeight(item.Tier) + SeverityWeight(item.Severity) + AgeBonus(item.AgeDays(now))
}

// Compare orders items by SortScore descending, then by ID ascending.
// It returns 0 only when both score and ID are equal.
func Compare(a, b model.DecisionItem) int {
	if a.SortScore != b.SortScore {
		return cmp.Compare(b.SortScore, a.SortScore)
	}
	return cmp.Compare(a.ID, b.ID)
}

// Score returns copies of items with SortScore filled in, including the
// children of rollups. Children keep their order.
// The input slice and its items are left untouched.
func Score(items []model.DecisionItem, now time.Time) []model.DecisionItem {
	scored := make([]model.DecisionItem, len(items))
	for i, item := range items {
		scored[i] = item.Clone()
		score(&scored[i], now)
	}
	return scored
}

func score(item *model.DecisionItem, now time.Time) {
	item.SortScore = ComputeSortScore(*item, now)
	for i := range item.Children {
		score(&item.Children[i], now)
	}
}

// Sort orders items in place using Compare.
func Sort(items []model.DecisionItem) {
	slices.SortStableFunc(items, Compare)
}

// Sorted returns a sorted copy of items.
func Sorted(items []model.DecisionItem) []model.DecisionItem {
	out := slices.Clone(items)
	Sort(out)
	return out
}
