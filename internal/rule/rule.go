// Package rule defines the ABAC rule value type shared by the synthesis
// pipeline: topic patterns, predicate strings, actions, and the identity
// key used for deduplication.
package rule

import "strings"

// Action is the enforcement outcome a rule carries.
type Action string

const (
	Grant  Action = "grant"
	Deny   Action = "deny"
	Filter Action = "filter"
)

// ActionOrder is the canonical iteration order for action tables.
// Weighted draws and vote tie-breaks walk actions in this order so that
// a seeded run is reproducible regardless of map iteration.
var ActionOrder = []Action{Deny, Filter, Grant}

// ParseAction maps a string to an Action, falling back to the given
// default for empty or unknown input.
func ParseAction(s string, fallback Action) Action {
	switch Action(s) {
	case Grant, Deny, Filter:
		return Action(s)
	default:
		return fallback
	}
}

// Hint names an evaluation-context class a rule's predicates reference.
type Hint string

const (
	HintSubject        Hint = "subj"
	HintObject         Hint = "obj"
	HintContext        Hint = "ctx"
	HintPayload        Hint = "payload"
	HintJSON           Hint = "json"
	HintDerivedSubject Hint = "dsubj"
)

// ParseHints converts raw hint names into Hints, preserving order.
func ParseHints(names []string) []Hint {
	if len(names) == 0 {
		return nil
	}
	hints := make([]Hint, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		hints = append(hints, Hint(n))
	}
	return hints
}

// HintString renders a hint set in its canonical comma-joined form,
// matching the SQL set column syntax.
func HintString(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = string(h)
	}
	return strings.Join(parts, ",")
}

const (
	// Separator delimits topic pattern segments.
	Separator = "/"
	// SingleWildcard matches exactly one topic segment.
	SingleWildcard = "+"
	// MultiWildcard matches any number of trailing segments.
	MultiWildcard = "#"
)

// PolicyRule is one synthesized ABAC rule. Rules are immutable value
// records: pipeline stages return new rules rather than mutating inputs.
type PolicyRule struct {
	Topic    string
	Static   string
	Dynamic  string
	Filter   string
	Hints    []Hint
	Action   Action
	Priority int
}

// Key is the identity of a rule for deduplication. Action is deliberately
// excluded: conflicting actions for the same key are resolved by vote,
// not kept as distinct rules.
type Key struct {
	Topic    string
	Static   string
	Dynamic  string
	Priority int
}

// Key returns the rule's identity key.
func (r PolicyRule) Key() Key {
	return Key{Topic: r.Topic, Static: r.Static, Dynamic: r.Dynamic, Priority: r.Priority}
}

// NormalizeTopic collapses doubled separators, strips leading and trailing
// separators, and maps an empty result to the catch-all wildcard.
func NormalizeTopic(topic string) string {
	for strings.Contains(topic, Separator+Separator) {
		topic = strings.ReplaceAll(topic, Separator+Separator, Separator)
	}
	topic = strings.Trim(topic, Separator)
	if topic == "" {
		return MultiWildcard
	}
	return topic
}

// Segments splits a topic pattern into its hierarchical segments.
func Segments(topic string) []string {
	return strings.Split(topic, Separator)
}

// JoinTopic builds a normalized topic from segments, dropping empties.
func JoinTopic(segments ...string) string {
	return NormalizeTopic(strings.Join(segments, Separator))
}

// Substitute replaces {name} placeholders in template with values from
// vars. On any failure (a placeholder missing from vars, or a brace that
// never closes) the literal template is returned unchanged. Downstream
// code tolerates partial configuration, so substitution never errors.
func Substitute(template string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.Index(rest[open:], "}")
		if end < 0 {
			return template
		}
		name := rest[open+1 : open+end]
		val, ok := vars[name]
		if !ok {
			return template
		}
		b.WriteString(rest[:open])
		b.WriteString(val)
		rest = rest[open+end+1:]
	}
}
