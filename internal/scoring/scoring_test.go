package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func item(id string, tier model.Tier, sev model.Severity, ageDays int) model.DecisionItem {
	return model.DecisionItem{
		ID:        id,
		Tier:      tier,
		Severity:  sev,
		Surface:   model.SurfaceAction,
		CreatedAt: now.AddDate(0, 0, -ageDays),
	}
}

func TestComputeSortScore_Weights(t *testing.T) {
	tests := []struct {
		name string
		item model.DecisionItem
		want int
	}{
		{name: "capital red fresh", item: item("a", model.TierCapital, model.SeverityRed, 0), want: 33000},
		{name: "integrity orange 12 days", item: item("b", model.TierIntegrity, model.SeverityOrange, 12), want: 22012},
		{name: "coverage blue 3 days", item: item("c", model.TierCoverage, model.SeverityBlue, 3), want: 11003},
		{name: "unknown tier and severity", item: item("d", "experimental", "purple", 5), want: 5},
		{name: "age bonus capped", item: item("e", model.TierCoverage, model.SeverityBlue, 5000), want: 10000 + 1000 + MaxAgeBonus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeSortScore(tt.item, now))
		})
	}
}

func TestComputeSortScore_TierDominates(t *testing.T) {
	severities := []model.Severity{model.SeverityRed, model.SeverityOrange, model.SeverityBlue, "unknown"}
	ages := []int{0, 1, 30, 365, 10000}
	tiers := []model.Tier{model.TierCapital, model.TierIntegrity, model.TierCoverage, "other"}

	for hi := 0; hi < len(tiers); hi++ {
		for lo := hi + 1; lo < len(tiers); lo++ {
			for _, hiSev := range severities {
				for _, loSev := range severities {
					for _, hiAge := range ages {
						for _, loAge := range ages {
							higher := ComputeSortScore(item("h", tiers[hi], hiSev, hiAge), now)
							lower := ComputeSortScore(item("l", tiers[lo], loSev, loAge), now)
							assert.Greater(t, higher, lower, "%s/%s/%d vs %s/%s/%d",
								tiers[hi], hiSev, hiAge, tiers[lo], loSev, loAge)
						}
					}
				}
			}
		}
	}
}

func TestComputeSortScore_SeverityDominatesAge(t *testing.T) {
	for _, tier := range model.TierPriority {
		redFresh := ComputeSortScore(item("r", tier, model.SeverityRed, 0), now)
		orangeOld := ComputeSortScore(item("o", tier, model.SeverityOrange, 100000), now)
		orangeFresh := ComputeSortScore(item("o2", tier, model.SeverityOrange, 0), now)
		blueOld := ComputeSortScore(item("b", tier, model.SeverityBlue, 100000), now)

		assert.Greater(t, redFresh, orangeOld, "tier %s", tier)
		assert.Greater(t, orangeFresh, blueOld, "tier %s", tier)
	}
}

func TestComputeSortScore_OlderNeverLower(t *testing.T) {
	prev := -1
	for days := 0; days < 1200; days += 7 {
		score := ComputeSortScore(item("x", model.TierIntegrity, model.SeverityOrange, days), now)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestComputeSortScore_CapitalOrangeBeatsOldCoverageRed(t *testing.T) {
	capital := ComputeSortScore(item("cap", model.TierCapital, model.SeverityOrange, 3), now)
	coverage := ComputeSortScore(item("cov", model.TierCoverage, model.SeverityRed, 200), now)
	assert.Greater(t, capital, coverage)
}

func TestComputeSortScore_RollupUsesOldestChild(t *testing.T) {
	rollup := model.DecisionItem{
		ID:        "rollup:x",
		Tier:      model.TierCapital,
		Severity:  model.SeverityOrange,
		CreatedAt: now,
		Children: []model.DecisionItem{
			item("a", model.TierCapital, model.SeverityOrange, 4),
			item("b", model.TierCapital, model.SeverityOrange, 10),
		},
	}
	assert.Equal(t, 30000+2000+10, ComputeSortScore(rollup, now))
}

func TestCompare(t *testing.T) {
	a := model.DecisionItem{ID: "a", SortScore: 100}
	b := model.DecisionItem{ID: "b", SortScore: 100}
	c := model.DecisionItem{ID: "c", SortScore: 200}

	assert.Negative(t, Compare(c, a), "higher score first")
	assert.Positive(t, Compare(a, c))
	assert.Negative(t, Compare(a, b), "tie broken by id")
	assert.Positive(t, Compare(b, a))
	assert.Zero(t, Compare(a, a))
}

func TestCompare_StrictTotalOrder(t *testing.T) {
	var items []model.DecisionItem
	for i := 0; i < 30; i++ {
		items = append(items, model.DecisionItem{ID: fmt.Sprintf("item-%02d", i), SortScore: i % 4})
	}

	for _, x := range items {
		for _, y := range items {
			got := Compare(x, y)
			assert.Equal(t, -got, Compare(y, x))
			if x.ID != y.ID {
				assert.NotZero(t, got, "%s vs %s", x.ID, y.ID)
			}
		}
	}
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	input := []model.DecisionItem{
		item("a", model.TierCoverage, model.SeverityBlue, 1),
		item("b", model.TierCapital, model.SeverityRed, 2),
	}

	scored := Score(input, now)
	require.Len(t, scored, 2)
	assert.Equal(t, 11001, scored[0].SortScore)
	assert.Equal(t, 33002, scored[1].SortScore)
	assert.Zero(t, input[0].SortScore)
	assert.Zero(t, input[1].SortScore)
}

func TestSorted(t *testing.T) {
	scored := Score([]model.DecisionItem{
		item("z", model.TierCoverage, model.SeverityBlue, 1),
		item("m", model.TierCapital, model.SeverityOrange, 1),
		item("a", model.TierCoverage, model.SeverityBlue, 1),
		item("q", model.TierIntegrity, model.SeverityRed, 0),
	}, now)

	sorted := Sorted(scored)
	assert.Equal(t, []string{"m", "q", "a", "z"}, model.IDs(sorted))
	assert.Equal(t, []string{"z", "m", "a", "q"}, model.IDs(scored), "input order preserved")
}

func TestScore_RescoresRollupChildren(t *testing.T) {
	child := item("a", model.TierCapital, model.SeverityOrange, 3)
	child.SortScore = 99999
	rollup := model.DecisionItem{
		ID:       "rollup:IDEA_NOT_SIMULATED",
		Tier:     model.TierCapital,
		Severity: model.SeverityOrange,
		Surface:  model.SurfaceAction,
		Children: []model.DecisionItem{child, item("b", model.TierCapital, model.SeverityOrange, 1)},
	}

	scored := Score([]model.DecisionItem{rollup}, now)
	require.Len(t, scored[0].Children, 2)
	assert.Equal(t, ComputeSortScore(child, now), scored[0].Children[0].SortScore)
	assert.Equal(t, 32003, scored[0].Children[0].SortScore)
	assert.Equal(t, 32001, scored[0].Children[1].SortScore)
	assert.Equal(t, 99999, rollup.Children[0].SortScore)
}
