// Package dashboard curates the ranked action list into a short view that
// keeps every important tier and category visible.
package dashboard

import (
	"slices"

	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/scoring"
)

// MaxItems is the dashboard size budget.
const MaxItems = 6

// topCount is how many of the highest-scoring items are always shown.
const topCount = 2

// Pass names the selection step that chose an item.
type Pass string

// Selection passes, in the order they run.
const (
	PassAll      Pass = "all"
	PassTop      Pass = "top"
	PassTier     Pass = "tier"
	PassCategory Pass = "category"
	PassBackfill Pass = "backfill"
)

// Pick is one selected item and the pass that selected it.
type Pick struct {
	Item model.DecisionItem
	Pass Pass
}

// SelectTop picks at most MaxItems items from a score-sorted action list.
//
// Short lists are returned as they are. Longer lists are filled by four
// passes: the two highest scores, then the best item of each missing tier,
// then the best item of each missing category, then the next highest scores.
// Diversity is best effort; earlier passes may use up the budget. The result
// is ordered with scoring.Compare.
func SelectTop(sorted []model.DecisionItem) []model.DecisionItem {
	picks := Explain(sorted)
	out := make([]model.DecisionItem, len(picks))
	for i, p := range picks {
		out[i] = p.Item
	}
	return out
}

// Explain runs the same selection as SelectTop and reports which pass chose each item.
func Explain(sorted []model.DecisionItem) []Pick {
	if len(sorted) <= MaxItems {
		picks := make([]Pick, len(sorted))
		for i, item := range sorted {
			picks[i] = Pick{Item: item, Pass: PassAll}
		}
		return picks
	}

	s := &selector{items: sorted, taken: make([]bool, len(sorted))}

	for i := 0; i < topCount && s.hasRoom(); i++ {
		s.take(i, PassTop)
	}

	for _, tier := range model.TierPriority {
		if !s.hasRoom() {
			break
		}
		if s.covers(func(item model.DecisionItem) bool { return item.Tier == tier }) {
			continue
		}
		if i := s.best(func(item model.DecisionItem) bool { return item.Tier == tier }); i >= 0 {
			s.take(i, PassTier)
		}
	}

	for _, cat := range model.CategoryPriority {
		if !s.hasRoom() {
			break
		}
		if s.covers(func(item model.DecisionItem) bool { return item.Category == cat }) {
			continue
		}
		if i := s.best(func(item model.DecisionItem) bool { return item.Category == cat }); i >= 0 {
			s.take(i, PassCategory)
		}
	}

	for i := range s.items {
		if !s.hasRoom() {
			break
		}
		if !s.taken[i] {
			s.take(i, PassBackfill)
		}
	}

	slices.SortStableFunc(s.picks, func(a, b Pick) int {
		return scoring.Compare(a.Item, b.Item)
	})
	return s.picks
}

// selector tracks selection by input position, so duplicate ids cannot be counted twice.
type selector struct {
	items []model.DecisionItem
	taken []bool
	picks []Pick
}

func (s *selector) hasRoom() bool {
	return len(s.picks) < MaxItems
}

func (s *selector) take(i int, pass Pass) {
	s.taken[i] = true
	s.picks = append(s.picks, Pick{Item: s.items[i], Pass: pass})
}

// covers reports whether any selected item matches.
func (s *selector) covers(match func(model.DecisionItem) bool) bool {
	for _, p := range s.picks {
		if match(p.Item) {
			return true
		}
	}
	return false
}

// best returns the position of the highest-ranked unselected match, or -1.
// The input is score-sorted, so that is the first one found.
func (s *selector) best(match func(model.DecisionItem) bool) int {
	for i, item := range s.items {
		if !s.taken[i] && match(item) {
			return i
		}
	}
	return -1
}
