package rollup

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLabel(t *testing.T) {
	label := CountLabel("%d ideas not simulated")
	assert.Equal(t, "4 ideas not simulated", label(4))
	assert.Equal(t, "1,204 ideas not simulated", label(1204))
}

func TestFixedCTA_FreshPayload(t *testing.T) {
	build := FixedCTA("Simulate all", "OPEN_TRADE_QUEUE_FILTER", "primary", map[string]any{"filter": "unsimulated"})
	first := build(nil)
	first[0].Payload["filter"] = "mutated"
	second := build(nil)
	assert.Equal(t, "unsimulated", second[0].Payload["filter"])
}

func TestPolicy_Validate(t *testing.T) {
	valid := DefaultPolicies()[0]
	require.NoError(t, valid.Validate())

	tests := []struct {
		mutate func(*Policy)
		name   string
	}{
		{name: "missing title key", mutate: func(p *Policy) { p.TitleKey = "" }},
		{name: "missing rollup id", mutate: func(p *Policy) { p.RollupID = "" }},
		{name: "min count too small", mutate: func(p *Policy) { p.MinCount = 1 }},
		{name: "missing label", mutate: func(p *Policy) { p.Label = nil }},
		{name: "missing cta", mutate: func(p *Policy) { p.CTAs = nil }},
		{name: "bad dimension", mutate: func(p *Policy) { p.Breakdown = "desk" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPolicy))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	keys := make([]model.TitleKey, 0)
	for _, p := range r.Policies() {
		keys = append(keys, p.TitleKey)
	}
	assert.Equal(t, []model.TitleKey{model.KeyIdeaNotSimulated, model.KeyExecutionNotConfirmed, model.KeyThesisStale}, keys)

	_, ok := r.Lookup(model.KeyRatingChangeUnresolved)
	assert.False(t, ok)

	err := r.Register(DefaultPolicies()[0])
	assert.True(t, errors.Is(err, ErrDuplicatePolicy))

	replacement := DefaultPolicies()[0]
	replacement.MinCount = 5
	require.NoError(t, r.Replace(replacement))
	p, ok := r.Lookup(model.KeyIdeaNotSimulated)
	require.True(t, ok)
	assert.Equal(t, 5, p.MinCount)
	assert.Len(t, r.Policies(), 3)
}

func TestPolicyConfig_Policy(t *testing.T) {
	cfg := PolicyConfig{
		TitleKey: "DELIVERABLE_OVERDUE",
		Label:    "%d deliverables overdue",
		Category: "project",
		Severity: "red",
		CTA: CTAConfig{
			Label:     "Open deliverables",
			ActionKey: "OPEN_PROJECTS_FILTER",
			Payload:   map[string]any{"filter": "overdue"},
		},
	}

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, model.KeyDeliverableOverdue, p.TitleKey)
	assert.Equal(t, "rollup:DELIVERABLE_OVERDUE", p.RollupID)
	assert.Equal(t, DefaultMinCount, p.MinCount)
	assert.Equal(t, DimensionPortfolio, p.Breakdown)
	assert.Equal(t, model.CategoryProject, p.Category)
	assert.Equal(t, model.SeverityRed, p.Severity)
	assert.Equal(t, "7 deliverables overdue", p.Label(7))
	assert.Equal(t, "overdue", p.CTAs(nil)[0].Payload["filter"])
}

func TestPolicyConfig_Errors(t *testing.T) {
	base := PolicyConfig{
		TitleKey: "DELIVERABLE_OVERDUE",
		Label:    "%d overdue",
		CTA:      CTAConfig{Label: "Open", ActionKey: "OPEN"},
	}

	tests := []struct {
		mutate func(*PolicyConfig)
		name   string
	}{
		{name: "no title key", mutate: func(c *PolicyConfig) { c.TitleKey = " " }},
		{name: "label without count", mutate: func(c *PolicyConfig) { c.Label = "overdue" }},
		{name: "label with two counts", mutate: func(c *PolicyConfig) { c.Label = "%d of %d" }},
		{name: "missing cta action", mutate: func(c *PolicyConfig) { c.CTA.ActionKey = "" }},
		{name: "bad category", mutate: func(c *PolicyConfig) { c.Category = "misc" }},
		{name: "bad severity", mutate: func(c *PolicyConfig) { c.Severity = "green" }},
		{name: "bad breakdown", mutate: func(c *PolicyConfig) { c.Breakdown = "desk" }},
		{name: "bad min count", mutate: func(c *PolicyConfig) { c.MinCount = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			_, err := c.Policy()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPolicy))
		})
	}
}

func TestApply(t *testing.T) {
	r := DefaultRegistry()
	err := Apply(r, []PolicyConfig{
		{
			TitleKey: "IDEA_NOT_SIMULATED",
			Label:    "%d unsimulated ideas",
			MinCount: 4,
			CTA:      CTAConfig{Label: "Simulate", ActionKey: "OPEN_TRADE_QUEUE_FILTER"},
		},
		{
			TitleKey: "RATING_CHANGE_UNRESOLVED",
			Label:    "%d rating changes unresolved",
			CTA:      CTAConfig{Label: "Resolve", ActionKey: "OPEN_RATINGS"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, r.Policies(), 4)

	p, ok := r.Lookup(model.KeyIdeaNotSimulated)
	require.True(t, ok)
	assert.Equal(t, 4, p.MinCount)
	assert.Equal(t, "4 unsimulated ideas", p.Label(4))

	err = Apply(r, []PolicyConfig{{TitleKey: "X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollup policy 0")
}

func TestApply_RollupIDs(t *testing.T) {
	tests := []struct {
		name    string
		configs []PolicyConfig
		wantErr bool
		wantID  string
	}{
		{
			name: "id held by another key",
			configs: []PolicyConfig{{
				TitleKey: "DELIVERABLE_OVERDUE",
				RollupID: "rollup:IDEA_NOT_SIMULATED",
				Label:    "%d deliverables overdue",
				CTA:      CTAConfig{Label: "Open", ActionKey: "OPEN_PROJECTS_FILTER"},
			}},
			wantErr: true,
		},
		{
			name: "two configured keys share an id",
			configs: []PolicyConfig{
				{
					TitleKey: "DELIVERABLE_OVERDUE",
					RollupID: "rollup:overdue",
					Label:    "%d deliverables overdue",
					CTA:      CTAConfig{Label: "Open", ActionKey: "OPEN_PROJECTS_FILTER"},
				},
				{
					TitleKey: "RATING_CHANGE_UNRESOLVED",
					RollupID: "rollup:overdue",
					Label:    "%d rating changes unresolved",
					CTA:      CTAConfig{Label: "Resolve", ActionKey: "OPEN_RATINGS"},
				},
			},
			wantErr: true,
		},
		{
			name: "key replaces its own policy with the same id",
			configs: []PolicyConfig{{
				TitleKey: "IDEA_NOT_SIMULATED",
				RollupID: "rollup:IDEA_NOT_SIMULATED",
				Label:    "%d unsimulated ideas",
				CTA:      CTAConfig{Label: "Simulate", ActionKey: "OPEN_TRADE_QUEUE_FILTER"},
			}},
			wantID: "rollup:IDEA_NOT_SIMULATED",
		},
		{
			name: "key moves to a new id and frees the old one",
			configs: []PolicyConfig{
				{
					TitleKey: "IDEA_NOT_SIMULATED",
					RollupID: "rollup:ideas",
					Label:    "%d unsimulated ideas",
					CTA:      CTAConfig{Label: "Simulate", ActionKey: "OPEN_TRADE_QUEUE_FILTER"},
				},
				{
					TitleKey: "DELIVERABLE_OVERDUE",
					RollupID: "rollup:IDEA_NOT_SIMULATED",
					Label:    "%d deliverables overdue",
					CTA:      CTAConfig{Label: "Open", ActionKey: "OPEN_PROJECTS_FILTER"},
				},
			},
			wantID: "rollup:ideas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRegistry()
			err := Apply(r, tt.configs)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDuplicatePolicy)
				return
			}
			require.NoError(t, err)
			p, ok := r.Lookup(model.KeyIdeaNotSimulated)
			require.True(t, ok)
			assert.Equal(t, tt.wantID, p.RollupID)
		})
	}
}

func TestRollup_ConfiguredPoliciesKeepDistinctIDs(t *testing.T) {
	r := DefaultRegistry()
	err := Apply(r, []PolicyConfig{{
		TitleKey: "DELIVERABLE_OVERDUE",
		RollupID: "rollup:IDEA_NOT_SIMULATED",
		Label:    "%d deliverables overdue",
		CTA:      CTAConfig{Label: "Open", ActionKey: "OPEN_PROJECTS_FILTER"},
	}})
	require.ErrorIs(t, err, ErrDuplicatePolicy)

	var items []model.DecisionItem
	for i, key := range []model.TitleKey{
		model.KeyIdeaNotSimulated, model.KeyIdeaNotSimulated, model.KeyIdeaNotSimulated,
		model.KeyDeliverableOverdue, model.KeyDeliverableOverdue, model.KeyDeliverableOverdue,
	} {
		items = append(items, model.DecisionItem{
			ID:       fmt.Sprintf("item-%d", i),
			Title:    "item",
			Surface:  model.SurfaceAction,
			Tier:     model.TierCapital,
			Severity: model.SeverityOrange,
			Category: model.CategoryProcess,
			TitleKey: key,
		})
	}

	out, err := r.Rollup(items, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	ids := model.IDs(out)
	assert.Len(t, ids, 4)
	assert.Equal(t, 1, countOf(ids, "rollup:IDEA_NOT_SIMULATED"))
}

func countOf(ids []string, id string) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}
