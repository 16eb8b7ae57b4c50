package synth

import (
	"time"

	"github.com/pkruglov/abacgen/internal/config"
	"github.com/pkruglov/abacgen/internal/rule"
)

// Stats summarizes one synthesis pass for operator output.
type Stats struct {
	Seed     int64
	Expanded int
	Derived  int
	Unique   int
	Reduced  bool
	Final    int
}

// Synthesize runs the full pipeline over a config: expansion and
// derivation, action resolution (inline), deduplication, and, when the
// unique count exceeds a positive budget, generalization plus backfill.
// A single seeded random source drives every sampled decision, so a fixed
// seed reproduces the output exactly.
func Synthesize(cfg *config.Config) ([]rule.PolicyRule, Stats) {
	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	s := NewSampler(seed, cfg.ActionWeights)

	expanded := ExpandBasePolicies(cfg, s)
	derived := DeriveUserRules(cfg, s)
	raw := make([]rule.PolicyRule, 0, len(expanded)+len(derived))
	raw = append(raw, expanded...)
	raw = append(raw, derived...)

	unique, groups := Deduplicate(raw, s)

	stats := Stats{
		Seed:     seed,
		Expanded: len(expanded),
		Derived:  len(derived),
		Unique:   len(unique),
	}

	final := unique
	if cfg.MaxRules > 0 && len(unique) > cfg.MaxRules {
		final = Reduce(unique, cfg, s)
		final = Backfill(final, groups, cfg.MaxRules)
		stats.Reduced = true
	}
	stats.Final = len(final)
	return final, stats
}
