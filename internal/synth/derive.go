package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkruglov/abacgen/internal/config"
	"github.com/pkruglov/abacgen/internal/rule"
)

const (
	// perUserGrantPriority is the priority of per-user capability ACL rows.
	perUserGrantPriority = 5
	// attributeGrantPriority is the priority of reusable attribute-based
	// grants. Kept distinct from the per-user constant so the engine can
	// order the two families.
	attributeGrantPriority = 2

	roleAttribute      = "role"
	clearanceAttribute = "clearance"
)

// userAttrs holds one user's attributes in first-seen order.
type userAttrs struct {
	userID   int
	username string
	names    []string
	values   map[string]string
}

// DeriveUserRules produces per-user rules from the user-attribute records:
// role-based restrictions and capability-to-device grants. Attribute
// records referencing an unknown user are skipped silently.
func DeriveUserRules(cfg *config.Config, s *Sampler) []rule.PolicyRule {
	var rules []rule.PolicyRule
	for _, u := range collectUserAttrs(cfg) {
		rules = append(rules, restrictionRules(cfg, u, s)...)
		rules = append(rules, capabilityRules(cfg, u, s)...)
	}
	return rules
}

func collectUserAttrs(cfg *config.Config) []*userAttrs {
	usernames := make(map[int]string, len(cfg.Users))
	for _, u := range cfg.Users {
		usernames[u.UserID] = u.Username
	}

	var order []*userAttrs
	byID := make(map[int]*userAttrs)
	for _, a := range cfg.UserAttributes {
		username, ok := usernames[a.UserID]
		if !ok || username == "" {
			continue
		}
		u := byID[a.UserID]
		if u == nil {
			u = &userAttrs{userID: a.UserID, username: username, values: make(map[string]string)}
			byID[a.UserID] = u
			order = append(order, u)
		}
		if _, seen := u.values[a.Name]; !seen {
			u.names = append(u.names, a.Name)
		}
		u.values[a.Name] = a.Value
	}
	return order
}

// restrictionRules expands a user's role restrictions over the buildings
// dimension. Priority is role base + clearance*multiplier + offset.
func restrictionRules(cfg *config.Config, u *userAttrs, s *Sampler) []rule.PolicyRule {
	role := u.values[roleAttribute]
	restrictions := cfg.RoleRestrictions[role]
	if len(restrictions) == 0 {
		return nil
	}

	clearance := 0
	if v, err := strconv.Atoi(strings.TrimSpace(u.values[clearanceAttribute])); err == nil {
		clearance = v
	}
	base := cfg.RolePriority(role)
	static := subjectPredicate(u.username)

	var rules []rule.PolicyRule
	for _, rst := range restrictions {
		priority := base + clearance*cfg.ClearanceMultiplier + cfg.RestrictionOffset(rst)
		fallback := rule.ParseAction(rst.Action, rule.Deny)
		for _, b := range cfg.DimensionValues("buildings") {
			if b == "" {
				continue
			}
			if rst.BuildingSuffix != "" && !strings.HasSuffix(b, rst.BuildingSuffix) {
				continue
			}
			vars := make(map[string]string)
			for _, name := range cfg.PlaceholderNames("buildings") {
				vars[name] = b
			}
			if rst.Floor != "" {
				for _, name := range cfg.PlaceholderNames("floors") {
					vars[name] = rst.Floor
				}
			}
			rules = append(rules, rule.PolicyRule{
				Topic:    rule.NormalizeTopic(rule.Substitute(rst.TopicTemplate, vars)),
				Static:   static,
				Hints:    []rule.Hint{rule.HintSubject},
				Action:   s.Resolve(nil, fallback),
				Priority: priority,
			})
		}
	}
	return rules
}

// capabilityRules emits, for each "?true" capability attribute, a per-user
// grant for every dimension combination and device, plus a reusable
// attribute-level grant for the same scope.
func capabilityRules(cfg *config.Config, u *userAttrs, s *Sampler) []rule.PolicyRule {
	var rules []rule.PolicyRule

	emit := func(staticFor func(attr string) string, priority int) {
		for _, attr := range u.names {
			if !isCapability(u.values[attr]) {
				continue
			}
			static := staticFor(attr)
			for _, dev := range cfg.CapabilityDevices[attr] {
				for _, b := range cfg.DimensionValues("buildings") {
					for _, fl := range cfg.DimensionValues("floors") {
						for _, r := range cfg.DimensionValues("rooms") {
							rules = append(rules, rule.PolicyRule{
								Topic:    rule.JoinTopic(b, fl, r, dev, rule.MultiWildcard),
								Static:   static,
								Hints:    []rule.Hint{rule.HintSubject},
								Action:   s.Resolve(nil, rule.Grant),
								Priority: priority,
							})
						}
					}
				}
			}
		}
	}

	emit(func(string) string { return subjectPredicate(u.username) }, perUserGrantPriority)
	emit(func(attr string) string { return fmt.Sprintf("subj.%s ?? false", attr) }, attributeGrantPriority)
	return rules
}

// isCapability reports whether an attribute value encodes a boolean true
// capability flag ("?true" and variants).
func isCapability(val string) bool {
	return strings.HasPrefix(val, "?") && strings.Contains(val, "true")
}

func subjectPredicate(username string) string {
	return fmt.Sprintf("subj.username=='%s'", username)
}
