package synth

import (
	"math"
	"sort"

	"github.com/pkruglov/abacgen/internal/config"
	"github.com/pkruglov/abacgen/internal/rule"
)

// Specificity ranks for generalized topic patterns. Rank 3 is the least
// lossy generalization (room wildcarded), rank 0 the universal catch-all.
const maxSpecificity = 3

// candidate is one generalized rule accumulated during reduction.
// Identified by (topic, static, priority); counts how many source rules
// collapsed into it and tallies their actions for the majority vote.
type candidate struct {
	topic        string
	static       string
	priority     int
	specificity  int
	count        int
	actionCounts map[rule.Action]int

	// non-key fields carried from the first contributing rule
	dynamic string
	filter  string
	hints   []rule.Hint
}

type genLevel struct {
	topic       string
	specificity int
}

// generalizations returns the descending generalization chain for a
// topic. Topics with at least four segments wildcard the room, then
// room+floor, then room+floor+building, ending at the catch-all; shorter
// topics are kept as-is at the highest specificity.
func generalizations(topic string) []genLevel {
	segs := rule.Segments(topic)
	if len(segs) < 4 {
		return []genLevel{{topic: topic, specificity: maxSpecificity}}
	}
	levels := make([]genLevel, 0, 4)
	work := make([]string, len(segs))
	copy(work, segs)
	// wildcard room (segment 2), then floor, then building
	for i, rank := 2, maxSpecificity; i >= 0; i, rank = i-1, rank-1 {
		work[i] = rule.SingleWildcard
		levels = append(levels, genLevel{topic: rule.JoinTopic(work...), specificity: rank})
	}
	levels = append(levels, genLevel{topic: rule.MultiWildcard, specificity: 0})
	return levels
}

// Reduce coarsens topic patterns and selects a budget-sized subset using
// the configured grouping key and distribution strategy. Callers invoke
// it only when the unique rule count exceeds a positive budget.
func Reduce(unique []rule.PolicyRule, cfg *config.Config, s *Sampler) []rule.PolicyRule {
	budget := cfg.MaxRules

	// Accumulate generalization candidates.
	type candKey struct {
		topic    string
		static   string
		priority int
	}
	index := make(map[candKey]*candidate)
	var ordered []*candidate
	for _, r := range unique {
		for _, lvl := range generalizations(r.Topic) {
			k := candKey{topic: lvl.topic, static: r.Static, priority: r.Priority}
			c := index[k]
			if c == nil {
				c = &candidate{
					topic:        lvl.topic,
					static:       r.Static,
					priority:     r.Priority,
					specificity:  lvl.specificity,
					actionCounts: make(map[rule.Action]int),
					dynamic:      r.Dynamic,
					filter:       r.Filter,
					hints:        r.Hints,
				}
				index[k] = c
				ordered = append(ordered, c)
			}
			c.count++
			c.actionCounts[r.Action]++
		}
	}

	// Global ranking: priority desc, specificity desc, count desc, then
	// lexicographic topic and static for a stable deterministic tie-break.
	sort.SliceStable(ordered, func(i, j int) bool {
		return rankLess(ordered[i], ordered[j])
	})

	groups := groupCandidates(ordered, cfg.Generalization.GroupBy)

	var selected []*candidate
	switch cfg.Generalization.Strategy {
	case "round_robin":
		selected = selectRoundRobin(groups, budget)
	case "proportional":
		selected = selectProportional(ordered, groups, budget)
	case "priority_buckets":
		selected = selectPriorityBuckets(ordered, groups, budget)
	default:
		selected = selectGlobal(ordered, budget)
	}

	out := make([]rule.PolicyRule, len(selected))
	for i, c := range selected {
		out[i] = rule.PolicyRule{
			Topic:    c.topic,
			Static:   c.static,
			Dynamic:  c.dynamic,
			Filter:   c.filter,
			Hints:    c.hints,
			Action:   majorityAction(c.actionCounts, s),
			Priority: c.priority,
		}
	}
	return out
}

// rankLess orders candidates best-first.
func rankLess(a, b *candidate) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.specificity != b.specificity {
		return a.specificity > b.specificity
	}
	if a.count != b.count {
		return a.count > b.count
	}
	if a.topic != b.topic {
		return a.topic < b.topic
	}
	return a.static < b.static
}

// candidateGroup is an ordered set of candidates sharing a grouping key.
// Members stay in global rank order, so the group's best is its head.
type candidateGroup struct {
	key     string
	members []*candidate
	mass    int // total priority mass
	count   int // total occurrence count
}

// groupCandidates partitions ranked candidates by the configured grouping
// key, preserving rank order within each group.
func groupCandidates(ranked []*candidate, groupBy string) []*candidateGroup {
	keyFn := func(c *candidate) string { return c.static }
	switch groupBy {
	case "hints":
		keyFn = func(c *candidate) string { return rule.HintString(c.hints) }
	case "device":
		keyFn = func(c *candidate) string { return deviceToken(c.topic) }
	}

	byKey := make(map[string]*candidateGroup)
	var groups []*candidateGroup
	for _, c := range ranked {
		k := keyFn(c)
		g := byKey[k]
		if g == nil {
			g = &candidateGroup{key: k}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, c)
		g.mass += c.priority
		g.count += c.count
	}
	return groups
}

// deviceToken extracts the device segment from a topic pattern: the last
// literal segment before the trailing multi-level wildcard.
func deviceToken(topic string) string {
	segs := rule.Segments(topic)
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] != rule.MultiWildcard && segs[i] != rule.SingleWildcard {
			return segs[i]
		}
	}
	return ""
}

// selectGlobal takes the globally best candidates up to the budget.
func selectGlobal(ranked []*candidate, budget int) []*candidate {
	if len(ranked) > budget {
		ranked = ranked[:budget]
	}
	out := make([]*candidate, len(ranked))
	copy(out, ranked)
	return out
}

// selectRoundRobin orders groups by total priority mass and cycles
// through them, taking each group's best remaining candidate, until the
// budget is exhausted.
func selectRoundRobin(groups []*candidateGroup, budget int) []*candidate {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].mass != groups[j].mass {
			return groups[i].mass > groups[j].mass
		}
		return groups[i].key < groups[j].key
	})

	heads := make([]int, len(groups))
	var out []*candidate
	for len(out) < budget {
		took := false
		for gi, g := range groups {
			if len(out) >= budget {
				break
			}
			if heads[gi] >= len(g.members) {
				continue
			}
			out = append(out, g.members[heads[gi]])
			heads[gi]++
			took = true
		}
		if !took {
			break
		}
	}
	return out
}

// selectProportional gives each group a quota proportional to its share
// of the total occurrence count (minimum 1 for non-empty groups), fills
// quotas best-first, and tops up any shortfall from the globally best
// remaining candidates.
func selectProportional(ranked []*candidate, groups []*candidateGroup, budget int) []*candidate {
	total := 0
	for _, g := range groups {
		total += g.count
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].key < groups[j].key
	})

	taken := make(map[*candidate]bool)
	var out []*candidate
	for _, g := range groups {
		if len(out) >= budget {
			break
		}
		quota := 1
		if total > 0 {
			quota = int(math.Round(float64(budget) * float64(g.count) / float64(total)))
			if quota < 1 {
				quota = 1
			}
		}
		for _, c := range g.members {
			if quota == 0 || len(out) >= budget {
				break
			}
			out = append(out, c)
			taken[c] = true
			quota--
		}
	}

	// Shortfall: fill from the global ranking regardless of group.
	for _, c := range ranked {
		if len(out) >= budget {
			break
		}
		if taken[c] {
			continue
		}
		out = append(out, c)
		taken[c] = true
	}
	return out
}

// selectPriorityBuckets buckets candidates by priority, descending, and
// round-robins across groups within each bucket before moving on.
func selectPriorityBuckets(ranked []*candidate, groups []*candidateGroup, budget int) []*candidate {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].mass != groups[j].mass {
			return groups[i].mass > groups[j].mass
		}
		return groups[i].key < groups[j].key
	})

	// Distinct priorities in descending order; ranked is already sorted
	// by priority first.
	var priorities []int
	seen := make(map[int]bool)
	for _, c := range ranked {
		if !seen[c.priority] {
			seen[c.priority] = true
			priorities = append(priorities, c.priority)
		}
	}

	heads := make([]int, len(groups))
	var out []*candidate
	for _, p := range priorities {
		if len(out) >= budget {
			break
		}
		for {
			took := false
			for gi, g := range groups {
				if len(out) >= budget {
					break
				}
				// advance past members outside this bucket
				h := heads[gi]
				if h < len(g.members) && g.members[h].priority == p {
					out = append(out, g.members[h])
					heads[gi] = h + 1
					took = true
				}
			}
			if !took || len(out) >= budget {
				break
			}
		}
	}
	return out
}
