package synth

import (
	"strconv"

	"github.com/pkruglov/abacgen/internal/config"
	"github.com/pkruglov/abacgen/internal/rule"
)

// axis is one expansion dimension: the placeholder names it binds and the
// values it cycles through.
type axis struct {
	placeholders []string
	values       []string
}

// ExpandBasePolicies expands every base policy template across its
// configured dimensions and numeric range into concrete rules. Expansion
// never fails: a template that cannot be substituted is emitted literally.
func ExpandBasePolicies(cfg *config.Config, s *Sampler) []rule.PolicyRule {
	var rules []rule.PolicyRule
	for _, p := range cfg.BasePolicies {
		rules = append(rules, expandPolicy(cfg, p, s)...)
	}
	return rules
}

func expandPolicy(cfg *config.Config, p config.BasePolicy, s *Sampler) []rule.PolicyRule {
	hints := rule.ParseHints(p.Hints)
	fallback := rule.ParseAction(p.Action, rule.Deny)

	emit := func(topic string, out *[]rule.PolicyRule) {
		for _, step := range rangeSteps(p.Range) {
			static, dynamic, filter := p.Static, p.Dynamic, p.Filter
			if step != nil {
				vars := map[string]string{
					"v":      strconv.Itoa(*step),
					"v_plus": strconv.Itoa(*step + 1),
				}
				static = rule.Substitute(static, vars)
				dynamic = rule.Substitute(dynamic, vars)
				filter = rule.Substitute(filter, vars)
			}
			*out = append(*out, rule.PolicyRule{
				Topic:    topic,
				Static:   static,
				Dynamic:  dynamic,
				Filter:   filter,
				Hints:    hints,
				Action:   s.Resolve(p.ActionWeights, fallback),
				Priority: p.Priority,
			})
		}
	}

	var rules []rule.PolicyRule

	if len(p.ExpandOn) == 0 {
		emit(rule.NormalizeTopic(p.TopicTemplate), &rules)
		return rules
	}

	axes := make([]axis, 0, len(p.ExpandOn)+1)
	for _, name := range p.ExpandOn {
		axes = append(axes, axis{
			placeholders: cfg.PlaceholderNames(name),
			values:       cfg.DimensionValues(name),
		})
	}
	devices := p.Devices
	if len(devices) == 0 {
		devices = []string{""}
	}
	axes = append(axes, axis{placeholders: cfg.PlaceholderNames("devices"), values: devices})

	forEachCombination(axes, func(vars map[string]string) {
		topic := rule.NormalizeTopic(rule.Substitute(p.TopicTemplate, vars))
		emit(topic, &rules)
	})
	return rules
}

// rangeSteps returns the values of an inclusive range, or a single nil
// entry when no range is configured so callers emit exactly one rule.
func rangeSteps(r *config.Range) []*int {
	if r == nil {
		return []*int{nil}
	}
	step := r.Step
	if step <= 0 {
		step = 1
	}
	var steps []*int
	for v := r.Min; v <= r.Max; v += step {
		v := v
		steps = append(steps, &v)
	}
	if len(steps) == 0 {
		steps = []*int{nil}
	}
	return steps
}

// forEachCombination walks the Cartesian product of all axes in order,
// last axis fastest, calling fn with the placeholder binding for each
// combination.
func forEachCombination(axes []axis, fn func(vars map[string]string)) {
	idx := make([]int, len(axes))
	for {
		vars := make(map[string]string, len(axes))
		for i, ax := range axes {
			for _, name := range ax.placeholders {
				vars[name] = ax.values[idx[i]]
			}
		}
		fn(vars)

		// odometer increment, last axis fastest
		i := len(axes) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i].values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}
