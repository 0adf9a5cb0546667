// Package rollup collapses repetitive low-signal decision items into a single
// summary item per rule, keeping the originals as children.
//
// Rollup behavior is data: each eligible title key has one Policy in a
// Registry. Adding a rollup type means registering a policy, not changing the
// aggregation algorithm.
package rollup

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/decision-queue/internal/model"
)

// ErrMixedTiers is reported when a group that qualifies for rollup contains
// items from different decision tiers. It indicates an evaluator defect.
var ErrMixedTiers = errors.New("rollup group spans multiple decision tiers")

// MixedTierError describes a group that was left un-rolled because its tiers differ.
type MixedTierError struct {
	TitleKey model.TitleKey
	Tiers    []model.Tier
}

func (e *MixedTierError) Error() string {
	names := make([]string, len(e.Tiers))
	for i, t := range e.Tiers {
		names[i] = string(t)
	}
	return fmt.Sprintf("%s: %v (%s)", e.TitleKey, ErrMixedTiers, strings.Join(names, ", "))
}

func (e *MixedTierError) Unwrap() error {
	return ErrMixedTiers
}

// Registry is a lookup table of rollup policies keyed by title key.
type Registry struct {
	policies map[model.TitleKey]Policy
	owners   map[string]model.TitleKey
	order    []model.TitleKey
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		policies: make(map[model.TitleKey]Policy),
		owners:   make(map[string]model.TitleKey),
	}
}

// DefaultRegistry returns a new registry holding DefaultPolicies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range DefaultPolicies() {
		if err := r.Register(p); err != nil {
			panic(fmt.Sprintf("built-in rollup policy: %v", err))
		}
	}
	return r
}

// Register adds a policy. It fails if the policy is invalid or its title key is taken.
func (r *Registry) Register(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.policies[p.TitleKey]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePolicy, p.TitleKey)
	}
	if err := r.checkRollupID(p); err != nil {
		return err
	}
	r.policies[p.TitleKey] = p
	r.owners[p.RollupID] = p.TitleKey
	r.order = append(r.order, p.TitleKey)
	return nil
}

// Replace adds a policy or overwrites the existing one for its title key.
func (r *Registry) Replace(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.checkRollupID(p); err != nil {
		return err
	}
	old, exists := r.policies[p.TitleKey]
	if exists {
		delete(r.owners, old.RollupID)
	} else {
		r.order = append(r.order, p.TitleKey)
	}
	r.policies[p.TitleKey] = p
	r.owners[p.RollupID] = p.TitleKey
	return nil
}

// checkRollupID fails if p's rollup id belongs to a policy for another title key.
func (r *Registry) checkRollupID(p Policy) error {
	if owner, taken := r.owners[p.RollupID]; taken && owner != p.TitleKey {
		return fmt.Errorf("%w: rollup id %s is used by %s", ErrDuplicatePolicy, p.RollupID, owner)
	}
	return nil
}

// Lookup returns the policy for key, if any.
func (r *Registry) Lookup(key model.TitleKey) (Policy, bool) {
	p, ok := r.policies[key]
	return p, ok
}

// Policies returns the registered policies in registration order.
func (r *Registry) Policies() []Policy {
	out := make([]Policy, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.policies[key])
	}
	return out
}

// Aggregate rolls items up with the default policies.
func Aggregate(items []model.DecisionItem, now time.Time) ([]model.DecisionItem, error) {
	return DefaultRegistry().Rollup(items, now)
}

// group is the set of input positions sharing one registered title key.
type group struct {
	policy  Policy
	indexes []int
}

// Rollup groups items by title key and replaces every group that meets its
// policy's threshold with one synthetic rollup item. The rollup takes the
// position of its group's first member; every other item keeps its relative
// order. Items are copied, never modified.
//
// Groups whose members disagree on decision tier are passed through and
// reported as *MixedTierError values joined into the returned error. The
// returned items are complete even when the error is non-nil.
func (r *Registry) Rollup(items []model.DecisionItem, now time.Time) ([]model.DecisionItem, error) {
	groups := make(map[model.TitleKey]*group)
	var keys []model.TitleKey

	for i, item := range items {
		p, ok := r.policies[item.TitleKey]
		if !ok {
			continue
		}
		g, seen := groups[item.TitleKey]
		if !seen {
			g = &group{policy: p}
			groups[item.TitleKey] = g
			keys = append(keys, item.TitleKey)
		}
		g.indexes = append(g.indexes, i)
	}

	// Position of a group's first member -> its rollup; other members are dropped.
	emitAt := make(map[int]model.DecisionItem)
	absorbed := make(map[int]bool)
	var errs []error

	for _, key := range keys {
		g := groups[key]
		if len(g.indexes) < g.policy.MinCount {
			continue
		}

		children := make([]model.DecisionItem, len(g.indexes))
		for i, idx := range g.indexes {
			children[i] = items[idx].Clone()
		}

		tier, tiers := commonTier(children)
		if len(tiers) > 1 {
			errs = append(errs, &MixedTierError{TitleKey: key, Tiers: tiers})
			continue
		}

		emitAt[g.indexes[0]] = build(g.policy, tier, children, now)
		for _, idx := range g.indexes {
			absorbed[idx] = true
		}
	}

	out := make([]model.DecisionItem, 0, len(items))
	for i, item := range items {
		if rolled, ok := emitAt[i]; ok {
			out = append(out, rolled)
			continue
		}
		if absorbed[i] {
			continue
		}
		out = append(out, item.Clone())
	}

	return out, errors.Join(errs...)
}

// commonTier returns the shared tier of items, and every distinct tier in first-seen order.
func commonTier(items []model.DecisionItem) (model.Tier, []model.Tier) {
	var tiers []model.Tier
	for _, item := range items {
		if !slices.Contains(tiers, item.Tier) {
			tiers = append(tiers, item.Tier)
		}
	}
	return tiers[0], tiers
}

func build(p Policy, tier model.Tier, children []model.DecisionItem, now time.Time) model.DecisionItem {
	oldest := children[0].EffectiveCreatedAt()
	maxAge := 0
	for _, child := range children {
		if c := child.EffectiveCreatedAt(); c.Before(oldest) {
			oldest = c
		}
		maxAge = max(maxAge, child.AgeDays(now))
	}

	category := p.Category
	if category == "" {
		category = children[0].Category
	}
	severity := p.Severity
	if severity == "" {
		severity = children[0].Severity
		for _, child := range children[1:] {
			if child.Severity.Rank() > severity.Rank() {
				severity = child.Severity
			}
		}
	}

	return model.DecisionItem{
		ID:          p.RollupID,
		Surface:     model.SurfaceAction,
		Severity:    severity,
		Category:    category,
		Tier:        tier,
		Title:       p.Label(len(children)),
		Description: oldestDescription(maxAge),
		TitleKey:    p.TitleKey,
		Chips:       breakdownChips(p.Breakdown, children),
		CTAs:        p.CTAs(children),
		CreatedAt:   oldest,
		Children:    children,
	}
}

func oldestDescription(days int) string {
	return fmt.Sprintf("Oldest waiting %d days.", days)
}

// breakdownChips counts children per dimension value, highest count first.
// Equal counts keep the order in which the values first appeared.
func breakdownChips(dim Dimension, children []model.DecisionItem) []model.Chip {
	type bucket struct {
		value string
		count int
	}
	var buckets []bucket
	pos := make(map[string]int)

	for _, child := range children {
		v := dim.ValueOf(child)
		if i, ok := pos[v]; ok {
			buckets[i].count++
			continue
		}
		pos[v] = len(buckets)
		buckets = append(buckets, bucket{value: v, count: 1})
	}

	slices.SortStableFunc(buckets, func(a, b bucket) int {
		return b.count - a.count
	})

	chips := make([]model.Chip, len(buckets))
	for i, b := range buckets {
		chips[i] = model.Chip{Label: b.value, Value: strconv.Itoa(b.count)}
	}
	return chips
}
