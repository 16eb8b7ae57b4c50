package synth

import (
	"github.com/pkruglov/abacgen/internal/rule"
)

// IdentityGroup aggregates every raw rule sharing an identity key. The
// backfill pass reads these after reduction, including actions that lost
// the majority vote.
type IdentityGroup struct {
	Key            rule.Key
	Representative rule.PolicyRule
	ActionCounts   map[rule.Action]int
	Count          int
}

// Deduplicate merges the raw rule multiset into exactly one rule per
// identity key, in first-appearance order. Conflicting actions resolve by
// majority vote; ties break by a weighted draw over the tied candidates.
// The identity groups are returned alongside for backfill.
func Deduplicate(raw []rule.PolicyRule, s *Sampler) ([]rule.PolicyRule, []IdentityGroup) {
	byKey := make(map[rule.Key]int, len(raw))
	groups := make([]IdentityGroup, 0, len(raw))

	for _, r := range raw {
		k := r.Key()
		i, ok := byKey[k]
		if !ok {
			i = len(groups)
			byKey[k] = i
			groups = append(groups, IdentityGroup{
				Key:            k,
				Representative: r,
				ActionCounts:   make(map[rule.Action]int),
			})
		}
		groups[i].ActionCounts[r.Action]++
		groups[i].Count++
	}

	out := make([]rule.PolicyRule, len(groups))
	for i, g := range groups {
		resolved := g.Representative
		resolved.Action = majorityAction(g.ActionCounts, s)
		out[i] = resolved
	}
	return out, groups
}

// majorityAction returns the most frequent action in the tally; ties go
// to a weighted draw. Candidates are walked in canonical order so the
// draw sequence is stable under a fixed seed.
func majorityAction(counts map[rule.Action]int, s *Sampler) rule.Action {
	best := 0
	for _, a := range rule.ActionOrder {
		if counts[a] > best {
			best = counts[a]
		}
	}
	if best == 0 {
		return rule.Deny
	}
	var tied []rule.Action
	for _, a := range rule.ActionOrder {
		if counts[a] == best {
			tied = append(tied, a)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	return s.Pick(tied)
}
