package rule

import "testing"

func TestNormalizeTopic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "b1/f1/r1/cam/#", "b1/f1/r1/cam/#"},
		{"doubled separator", "b1//f1/cam/#", "b1/f1/cam/#"},
		{"many doubled separators", "b1///f1//cam", "b1/f1/cam"},
		{"leading separator", "/b1/f1", "b1/f1"},
		{"trailing separator", "b1/f1/", "b1/f1"},
		{"empty", "", "#"},
		{"only separators", "///", "#"},
		{"catch-all stays", "#", "#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTopic(tt.in); got != tt.want {
				t.Errorf("NormalizeTopic(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinTopic(t *testing.T) {
	if got := JoinTopic("b1", "", "", "cam", "#"); got != "b1/cam/#" {
		t.Errorf("expected b1/cam/#, got %q", got)
	}
	if got := JoinTopic("", "", ""); got != "#" {
		t.Errorf("expected catch-all for all-empty segments, got %q", got)
	}
}

func TestSubstitute(t *testing.T) {
	vars := map[string]string{"b": "b1", "fl": "f2"}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"full substitution", "{b}/{fl}/cam/#", "b1/f2/cam/#"},
		{"no placeholders", "plain/topic", "plain/topic"},
		{"unknown placeholder keeps literal", "{b}/{room}/#", "{b}/{room}/#"},
		{"unclosed brace keeps literal", "{b}/{fl", "{b}/{fl"},
		{"repeated placeholder", "{b}/{b}", "b1/b1"},
		{"empty template", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.template, vars); got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestSubstituteEmptyValue(t *testing.T) {
	got := Substitute("{b}/{fl}/x", map[string]string{"b": "b1", "fl": ""})
	if got != "b1//x" {
		t.Errorf("expected raw b1//x before normalization, got %q", got)
	}
	if NormalizeTopic(got) != "b1/x" {
		t.Errorf("expected b1/x after normalization, got %q", NormalizeTopic(got))
	}
}

func TestParseAction(t *testing.T) {
	if got := ParseAction("grant", Deny); got != Grant {
		t.Errorf("expected grant, got %s", got)
	}
	if got := ParseAction("", Deny); got != Deny {
		t.Errorf("expected deny fallback for empty, got %s", got)
	}
	if got := ParseAction("bogus", Grant); got != Grant {
		t.Errorf("expected grant fallback for unknown, got %s", got)
	}
}

func TestKeyExcludesAction(t *testing.T) {
	a := PolicyRule{Topic: "b1/#", Static: "s", Dynamic: "d", Priority: 2, Action: Grant}
	b := a
	b.Action = Deny
	if a.Key() != b.Key() {
		t.Error("identity key must not depend on action")
	}
	c := a
	c.Priority = 3
	if a.Key() == c.Key() {
		t.Error("identity key must depend on priority")
	}
}

func TestHintString(t *testing.T) {
	if got := HintString([]Hint{HintSubject, HintContext}); got != "subj,ctx" {
		t.Errorf("expected subj,ctx got %q", got)
	}
	if got := HintString(nil); got != "" {
		t.Errorf("expected empty string for no hints, got %q", got)
	}
}

func TestParseHints(t *testing.T) {
	hints := ParseHints([]string{"subj", " ctx ", ""})
	if len(hints) != 2 || hints[0] != HintSubject || hints[1] != HintContext {
		t.Errorf("unexpected hints: %v", hints)
	}
}
