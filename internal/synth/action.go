// Package synth implements the rule synthesis pipeline: template
// expansion, attribute-derived rules, weighted action assignment,
// deduplication with majority-vote conflict resolution, and
// budget-constrained generalization with backfill.
package synth

import (
	"math"
	"math/rand"

	"github.com/pkruglov/abacgen/internal/rule"
)

// Sampler draws actions from weighted distributions. All pipeline
// randomness flows through this one seeded source, so identical config
// plus identical seed reproduces the run bit for bit. Never reads
// package-level rand state.
type Sampler struct {
	rng    *rand.Rand
	global map[string]float64
}

// NewSampler creates a sampler with the given seed and global weight table.
func NewSampler(seed int64, global map[string]float64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed)), global: global}
}

// Resolve picks an action from the given weights, falling back to the
// global table when nil or empty, and to the fixed fallback action when
// no positive finite weights remain.
func (s *Sampler) Resolve(weights map[string]float64, fallback rule.Action) rule.Action {
	if fallback == "" {
		fallback = rule.Deny
	}
	table := weights
	if len(table) == 0 {
		table = s.global
	}

	actions := make([]rule.Action, 0, len(rule.ActionOrder))
	effective := make([]float64, 0, len(rule.ActionOrder))
	total := 0.0
	for _, a := range rule.ActionOrder {
		w := table[string(a)]
		if w <= 0 || math.IsInf(w, 1) || math.IsNaN(w) {
			continue
		}
		actions = append(actions, a)
		effective = append(effective, w)
		total += w
	}
	if len(actions) == 0 {
		return fallback
	}

	r := s.rng.Float64() * total
	cum := 0.0
	for i, a := range actions {
		cum += effective[i]
		if r <= cum {
			return a
		}
	}
	return actions[len(actions)-1]
}

// Pick breaks a tie among candidate actions by a weighted draw over the
// global table, uniform when no candidate carries a positive weight.
// Candidates must already be in canonical order.
func (s *Sampler) Pick(candidates []rule.Action) rule.Action {
	if len(candidates) == 1 {
		return candidates[0]
	}
	total := 0.0
	weights := make([]float64, len(candidates))
	for i, a := range candidates {
		w := s.global[string(a)]
		if w <= 0 || math.IsInf(w, 1) || math.IsNaN(w) {
			continue
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return candidates[s.rng.Intn(len(candidates))]
	}
	r := s.rng.Float64() * total
	cum := 0.0
	for i, a := range candidates {
		cum += weights[i]
		if weights[i] > 0 && r <= cum {
			return a
		}
	}
	return candidates[len(candidates)-1]
}
