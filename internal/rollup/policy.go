package rollup

import (
	"errors"
	"fmt"

	"github.com/Veraticus/decision-queue/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Policy errors.
var (
	ErrInvalidPolicy   = errors.New("invalid rollup policy")
	ErrDuplicatePolicy = errors.New("rollup policy already registered")
)

// DefaultMinCount is the group size at which the built-in policies collapse items.
const DefaultMinCount = 3

// Dimension names the context field used to break a rollup down into chips.
type Dimension string

const (
	// DimensionPortfolio breaks down by portfolio name.
	DimensionPortfolio Dimension = "portfolio"
	// DimensionAsset breaks down by asset symbol.
	DimensionAsset Dimension = "asset"
)

// Unassigned is the chip label for items missing the breakdown value.
const Unassigned = "Unassigned"

// ValueOf extracts the breakdown value from an item.
func (d Dimension) ValueOf(item model.DecisionItem) string {
	var v string
	switch d {
	case DimensionPortfolio:
		v = item.Context.PortfolioName
		if v == "" {
			v = item.Context.PortfolioID
		}
	case DimensionAsset:
		v = item.Context.AssetSymbol
		if v == "" {
			v = item.Context.AssetID
		}
	}
	if v == "" {
		return Unassigned
	}
	return v
}

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	return d == DimensionPortfolio || d == DimensionAsset
}

// Policy describes how items sharing a title key collapse into one rollup.
type Policy struct {
	// Label renders the rollup title for a group of count items.
	Label func(count int) string
	// CTAs builds the aggregate actions for the rollup from its children.
	CTAs     func(children []model.DecisionItem) []model.CTA
	TitleKey model.TitleKey
	RollupID string
	// Category and Severity are fixed overrides. When empty the rollup takes
	// the first child's category and the most severe child severity.
	Category  model.Category
	Severity  model.Severity
	Breakdown Dimension
	MinCount  int
}

// Validate checks the policy is usable by the aggregator.
func (p Policy) Validate() error {
	switch {
	case p.TitleKey == "":
		return fmt.Errorf("%w: title key is required", ErrInvalidPolicy)
	case p.RollupID == "":
		return fmt.Errorf("%w: %s: rollup id is required", ErrInvalidPolicy, p.TitleKey)
	case p.MinCount < 2:
		return fmt.Errorf("%w: %s: min count must be at least 2, got %d", ErrInvalidPolicy, p.TitleKey, p.MinCount)
	case p.Label == nil:
		return fmt.Errorf("%w: %s: label is required", ErrInvalidPolicy, p.TitleKey)
	case p.CTAs == nil:
		return fmt.Errorf("%w: %s: cta builder is required", ErrInvalidPolicy, p.TitleKey)
	case !p.Breakdown.Valid():
		return fmt.Errorf("%w: %s: unknown breakdown dimension %q", ErrInvalidPolicy, p.TitleKey, p.Breakdown)
	}
	return nil
}

// CountLabel returns a Label function that formats count into format with
// locale-aware digit grouping, e.g. "%d ideas not simulated".
func CountLabel(format string) func(int) string {
	printer := message.NewPrinter(language.English)
	return func(count int) string {
		return printer.Sprintf(format, count)
	}
}

// FixedCTA returns a CTA builder that always yields one CTA, with a fresh payload per call.
func FixedCTA(label, actionKey, kind string, payload map[string]any) func([]model.DecisionItem) []model.CTA {
	return func([]model.DecisionItem) []model.CTA {
		p := make(map[string]any, len(payload))
		for k, v := range payload {
			p[k] = v
		}
		return []model.CTA{{
			Label:     label,
			ActionKey: actionKey,
			Kind:      kind,
			Payload:   p,
		}}
	}
}

// RollupIDFor is the conventional rollup id for a title key.
func RollupIDFor(key model.TitleKey) string {
	return "rollup:" + string(key)
}

// DefaultPolicies returns the built-in rollup policies.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			TitleKey:  model.KeyIdeaNotSimulated,
			MinCount:  DefaultMinCount,
			RollupID:  RollupIDFor(model.KeyIdeaNotSimulated),
			Label:     CountLabel("%d ideas not simulated"),
			Category:  model.CategoryProcess,
			Severity:  model.SeverityOrange,
			Breakdown: DimensionPortfolio,
			CTAs: FixedCTA("Simulate all", "OPEN_TRADE_QUEUE_FILTER", "primary",
				map[string]any{"filter": "unsimulated"}),
		},
		{
			TitleKey:  model.KeyExecutionNotConfirmed,
			MinCount:  DefaultMinCount,
			RollupID:  RollupIDFor(model.KeyExecutionNotConfirmed),
			Label:     CountLabel("%d executions awaiting confirmation"),
			Category:  model.CategoryRisk,
			Severity:  model.SeverityRed,
			Breakdown: DimensionPortfolio,
			CTAs: FixedCTA("Confirm executions", "OPEN_TRADE_QUEUE_FILTER", "primary",
				map[string]any{"filter": "unconfirmed"}),
		},
		{
			TitleKey:  model.KeyThesisStale,
			MinCount:  DefaultMinCount,
			RollupID:  RollupIDFor(model.KeyThesisStale),
			Label:     CountLabel("%d theses need a refresh"),
			Category:  model.CategoryProject,
			Severity:  model.SeverityBlue,
			Breakdown: DimensionAsset,
			CTAs: FixedCTA("Review theses", "OPEN_RESEARCH_FILTER", "secondary",
				map[string]any{"filter": "stale"}),
		},
	}
}
