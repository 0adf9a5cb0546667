package rollup

import (
	"fmt"
	"strings"

	"github.com/Veraticus/decision-queue/internal/model"
)

// CTAConfig is the declarative form of an aggregate CTA.
type CTAConfig struct {
	Payload   map[string]any `mapstructure:"payload" yaml:"payload"`
	Label     string         `mapstructure:"label" yaml:"label"`
	ActionKey string         `mapstructure:"action_key" yaml:"action_key"`
	Kind      string         `mapstructure:"kind" yaml:"kind"`
}

// PolicyConfig is the declarative form of a Policy, as read from the config file:
//
//	rollups:
//	  - title_key: DELIVERABLE_OVERDUE
//	    label: "%d deliverables overdue"
//	    breakdown: portfolio
//	    cta: {label: Open deliverables, action_key: OPEN_PROJECTS_FILTER, payload: {filter: overdue}}
type PolicyConfig struct {
	CTA       CTAConfig `mapstructure:"cta" yaml:"cta"`
	TitleKey  string    `mapstructure:"title_key" yaml:"title_key"`
	RollupID  string    `mapstructure:"rollup_id" yaml:"rollup_id"`
	Label     string    `mapstructure:"label" yaml:"label"`
	Category  string    `mapstructure:"category" yaml:"category"`
	Severity  string    `mapstructure:"severity" yaml:"severity"`
	Breakdown string    `mapstructure:"breakdown" yaml:"breakdown"`
	MinCount  int       `mapstructure:"min_count" yaml:"min_count"`
}

// Policy converts the config into a validated Policy, applying defaults.
func (c PolicyConfig) Policy() (Policy, error) {
	key := model.TitleKey(strings.TrimSpace(c.TitleKey))
	if key == "" {
		return Policy{}, fmt.Errorf("%w: title_key is required", ErrInvalidPolicy)
	}
	if strings.Count(c.Label, "%d") != 1 {
		return Policy{}, fmt.Errorf("%w: %s: label must contain exactly one %%d, got %q", ErrInvalidPolicy, key, c.Label)
	}
	if c.CTA.Label == "" || c.CTA.ActionKey == "" {
		return Policy{}, fmt.Errorf("%w: %s: cta label and action_key are required", ErrInvalidPolicy, key)
	}

	p := Policy{
		TitleKey:  key,
		RollupID:  c.RollupID,
		MinCount:  c.MinCount,
		Breakdown: Dimension(c.Breakdown),
		Label:     CountLabel(c.Label),
		CTAs:      FixedCTA(c.CTA.Label, c.CTA.ActionKey, c.CTA.Kind, c.CTA.Payload),
	}
	if p.RollupID == "" {
		p.RollupID = RollupIDFor(key)
	}
	if p.MinCount == 0 {
		p.MinCount = DefaultMinCount
	}
	if p.Breakdown == "" {
		p.Breakdown = DimensionPortfolio
	}
	if c.Category != "" {
		cat, err := model.ParseCategory(c.Category)
		if err != nil {
			return Policy{}, fmt.Errorf("%w: %s: %v", ErrInvalidPolicy, key, err)
		}
		p.Category = cat
	}
	if c.Severity != "" {
		sev, err := model.ParseSeverity(c.Severity)
		if err != nil {
			return Policy{}, fmt.Errorf("%w: %s: %v", ErrInvalidPolicy, key, err)
		}
		p.Severity = sev
	}

	return p, p.Validate()
}

// Apply registers configured policies on r, overriding built-ins with the same title key.
func Apply(r *Registry, configs []PolicyConfig) error {
	for i, c := range configs {
		p, err := c.Policy()
		if err != nil {
			return fmt.Errorf("rollup policy %d: %w", i, err)
		}
		if err := r.Replace(p); err != nil {
			return fmt.Errorf("rollup policy %d: %w", i, err)
		}
	}
	return nil
}
