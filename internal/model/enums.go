package model

import (
	"fmt"
	"strings"
)

// Tier is the coarse priority bucket of a decision item.
// Tier ordering always dominates severity and age.
type Tier string

const (
	// TierCapital covers decisions that move capital (trades, sizing).
	TierCapital Tier = "capital"
	// TierIntegrity covers record-keeping problems such as unconfirmed executions.
	TierIntegrity Tier = "integrity"
	// TierCoverage covers research upkeep: stale theses, open rating changes.
	TierCoverage Tier = "coverage"
)

// TierPriority lists the known tiers from most to least important.
var TierPriority = []Tier{TierCapital, TierIntegrity, TierCoverage}

// Rank returns the position of the tier in the total order.
// Unknown tiers rank below every known tier.
func (t Tier) Rank() int {
	switch t {
	case TierCapital:
		return 3
	case TierIntegrity:
		return 2
	case TierCoverage:
		return 1
	default:
		return 0
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t.Rank() > 0
}

// Severity is the urgency of an item within its tier.
type Severity string

const (
	// SeverityRed is the most urgent severity.
	SeverityRed Severity = "red"
	// SeverityOrange needs attention soon.
	SeverityOrange Severity = "orange"
	// SeverityBlue is informational urgency.
	SeverityBlue Severity = "blue"
)

// Rank returns the position of the severity in the total order.
// Unknown severities rank below every known severity.
func (s Severity) Rank() int {
	switch s {
	case SeverityRed:
		return 3
	case SeverityOrange:
		return 2
	case SeverityBlue:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Category groups items for the dashboard diversity quota.
type Category string

const (
	// CategoryProcess covers workflow steps that are waiting on someone.
	CategoryProcess Category = "process"
	// CategoryRisk covers exposure and reconciliation problems.
	CategoryRisk Category = "risk"
	// CategoryProject covers research and deliverable work.
	CategoryProject Category = "project"
)

// CategoryPriority lists the categories the dashboard tries to keep visible, in order.
var CategoryPriority = []Category{CategoryProcess, CategoryRisk, CategoryProject}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryProcess, CategoryRisk, CategoryProject:
		return true
	default:
		return false
	}
}

// Surface decides where an item is shown.
type Surface string

const (
	// SurfaceAction items are ranked and offered on the dashboard.
	SurfaceAction Surface = "action"
	// SurfaceInformational items are shown without ranking guarantees.
	SurfaceInformational Surface = "informational"
)

// Valid reports whether s is a known surface.
func (s Surface) Valid() bool {
	return s == SurfaceAction || s == SurfaceInformational
}

// TitleKey identifies the rule that produced an item. It is also the rollup grouping key.
type TitleKey string

// Rule identifiers emitted by the upstream evaluators.
const (
	KeyIdeaNotSimulated       TitleKey = "IDEA_NOT_SIMULATED"
	KeyExecutionNotConfirmed  TitleKey = "EXECUTION_NOT_CONFIRMED"
	KeyThesisStale            TitleKey = "THESIS_STALE"
	KeyRatingChangeUnresolved TitleKey = "RATING_CHANGE_UNRESOLVED"
	KeyDeliverableOverdue     TitleKey = "DELIVERABLE_OVERDUE"
)

// KnownTitleKeys lists every rule identifier this build understands.
var KnownTitleKeys = []TitleKey{
	KeyIdeaNotSimulated,
	KeyExecutionNotConfirmed,
	KeyThesisStale,
	KeyRatingChangeUnresolved,
	KeyDeliverableOverdue,
}

// Valid reports whether k is a known rule identifier.
func (k TitleKey) Valid() bool {
	for _, known := range KnownTitleKeys {
		if k == known {
			return true
		}
	}
	return false
}

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
