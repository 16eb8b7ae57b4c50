package synth

import (
	"sort"

	"github.com/pkruglov/abacgen/internal/rule"
)

// backfillCandidate is one (identity group, action) pair eligible to
// refill a reduced set, including actions that lost the majority vote.
type backfillCandidate struct {
	r     rule.PolicyRule
	count int
}

// Backfill refills a reduced set from the pre-reduction identity groups,
// ranked by original occurrence count then priority, until the budget is
// met or candidates run out. A candidate whose identity key is already
// present is skipped, which keeps the output free of duplicate identities
// while never fabricating a rule that did not occur.
func Backfill(out []rule.PolicyRule, groups []IdentityGroup, budget int) []rule.PolicyRule {
	if len(out) >= budget {
		return out
	}

	present := make(map[rule.Key]bool, len(out))
	for _, r := range out {
		present[r.Key()] = true
	}

	var cands []backfillCandidate
	for _, g := range groups {
		for _, a := range rule.ActionOrder {
			n := g.ActionCounts[a]
			if n == 0 {
				continue
			}
			r := g.Representative
			r.Action = a
			cands = append(cands, backfillCandidate{r: r, count: n})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].count != cands[j].count {
			return cands[i].count > cands[j].count
		}
		if cands[i].r.Priority != cands[j].r.Priority {
			return cands[i].r.Priority > cands[j].r.Priority
		}
		if cands[i].r.Topic != cands[j].r.Topic {
			return cands[i].r.Topic < cands[j].r.Topic
		}
		if cands[i].r.Static != cands[j].r.Static {
			return cands[i].r.Static < cands[j].r.Static
		}
		return cands[i].r.Action < cands[j].r.Action
	})

	for _, c := range cands {
		if len(out) >= budget {
			break
		}
		k := c.r.Key()
		if present[k] {
			continue
		}
		present[k] = true
		out = append(out, c.r)
	}
	return out
}
