// Package model defines the core domain types for the decision queue.
package model

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
)

// ErrInvalidItem is returned by Validate for items missing required fields.
var ErrInvalidItem = errors.New("invalid decision item")

// Chip is a small labeled value shown next to an item.
type Chip struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// CTA describes an action the UI can dispatch for an item.
// Payload is opaque to the pipeline.
type CTA struct {
	Payload   map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
	Label     string         `json:"label" yaml:"label"`
	ActionKey string         `json:"actionKey" yaml:"actionKey"`
	Kind      string         `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// ItemContext carries references to the entities an item is about.
// The pipeline only reads it to build rollup breakdowns.
type ItemContext struct {
	Extra         map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
	AssetID       string         `json:"assetId,omitempty" yaml:"assetId,omitempty"`
	AssetSymbol   string         `json:"assetSymbol,omitempty" yaml:"assetSymbol,omitempty"`
	PortfolioID   string         `json:"portfolioId,omitempty" yaml:"portfolioId,omitempty"`
	PortfolioName string         `json:"portfolioName,omitempty" yaml:"portfolioName,omitempty"`
	TradeIdeaID   string         `json:"tradeIdeaId,omitempty" yaml:"tradeIdeaId,omitempty"`
}

// DecisionItem is one attention-worthy event produced by an evaluator,
// or a synthetic rollup summarizing several of them.
type DecisionItem struct {
	CreatedAt   time.Time      `json:"createdAt" yaml:"createdAt"`
	Context     ItemContext    `json:"context" yaml:"context"`
	ID          string         `json:"id" yaml:"id"`
	Surface     Surface        `json:"surface" yaml:"surface"`
	Severity    Severity       `json:"severity" yaml:"severity"`
	Category    Category       `json:"category" yaml:"category"`
	Tier        Tier           `json:"decisionTier" yaml:"decisionTier"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	TitleKey    TitleKey       `json:"titleKey" yaml:"titleKey"`
	Chips       []Chip         `json:"chips,omitempty" yaml:"chips,omitempty"`
	CTAs        []CTA          `json:"ctas,omitempty" yaml:"ctas,omitempty"`
	Children    []DecisionItem `json:"children,omitempty" yaml:"children,omitempty"`
	SortScore   int            `json:"sortScore" yaml:"sortScore"`
	Dismissible bool           `json:"dismissible" yaml:"dismissible"`
}

// IsRollup reports whether the item summarizes other items.
func (d DecisionItem) IsRollup() bool {
	return len(d.Children) > 0
}

// Clone returns a deep copy of the item's slices and maps.
// CTA payload and context extra values are copied one level deep; their contents are opaque.
func (d DecisionItem) Clone() DecisionItem {
	out := d
	if d.Chips != nil {
		out.Chips = append([]Chip(nil), d.Chips...)
	}
	if d.CTAs != nil {
		out.CTAs = make([]CTA, len(d.CTAs))
		for i, cta := range d.CTAs {
			cta.Payload = maps.Clone(cta.Payload)
			out.CTAs[i] = cta
		}
	}
	out.Context.Extra = maps.Clone(d.Context.Extra)
	if d.Children != nil {
		out.Children = CloneItems(d.Children)
	}
	return out
}

// EffectiveCreatedAt is the creation time used for aging.
// For rollups it is the oldest child's creation time.
func (d DecisionItem) EffectiveCreatedAt() time.Time {
	if !d.IsRollup() {
		return d.CreatedAt
	}
	oldest := d.Children[0].EffectiveCreatedAt()
	for _, child := range d.Children[1:] {
		if c := child.EffectiveCreatedAt(); c.Before(oldest) {
			oldest = c
		}
	}
	return oldest
}

// AgeDays returns the number of whole days between the item's effective
// creation time and now. Items dated in the future have age 0.
func (d DecisionItem) AgeDays(now time.Time) int {
	return DaysBetween(d.EffectiveCreatedAt(), now)
}

// DaysBetween returns the whole days elapsed from then to now, floored at zero.
func DaysBetween(then, now time.Time) int {
	elapsed := now.Sub(then)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

// Validate checks the fields evaluators must always set.
// The ranking pipeline never calls this; it is for import paths.
func (d DecisionItem) Validate() error {
	var missing []string
	if strings.TrimSpace(d.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if d.CreatedAt.IsZero() {
		missing = append(missing, "createdAt")
	}
	if d.Surface == "" {
		missing = append(missing, "surface")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w %q: missing %s", ErrInvalidItem, d.ID, strings.Join(missing, ", "))
	}

	for i, child := range d.Children {
		if err := child.Validate(); err != nil {
			return fmt.Errorf("child %d of %q: %w", i, d.ID, err)
		}
	}
	return nil
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []DecisionItem) []DecisionItem {
	if items == nil {
		return nil
	}
	out := make([]DecisionItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// IDs returns the item IDs in order.
func IDs(items []DecisionItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
