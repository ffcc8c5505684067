package decompile

import (
	"fmt"
	"sort"
	"strings"
)

// Rules selects which rewrites Normalize applies.
type Rules struct {
	// FoldNumbers restores 0/0, 1/0, !0 and !1 to NaN, Infinity, true and false.
	FoldNumbers bool
	// SplitSequences turns comma expressions in statement position into
	// separate statements.
	SplitSequences bool
	// ShortCircuit turns "a && b()" and "a || b()" statements into if statements.
	ShortCircuit bool
	// Ternary turns conditional statements and returns into if/else.
	Ternary bool
	// VoidReturn turns "return void x" into "x; return;".
	VoidReturn bool
}

// AllRules enables every rule.
func AllRules() Rules {
	return Rules{
		FoldNumbers:    true,
		SplitSequences: true,
		ShortCircuit:   true,
		Ternary:        true,
		VoidReturn:     true,
	}
}

// None reports whether no rule is enabled.
func (r Rules) None() bool {
	return r == Rules{}
}

func (r *Rules) field(name string) *bool {
	switch name {
	case "fold-numbers":
		return &r.FoldNumbers
	case "sequences":
		return &r.SplitSequences
	case "short-circuit":
		return &r.ShortCircuit
	case "ternary":
		return &r.Ternary
	case "void-return":
		return &r.VoidReturn
	}
	return nil
}

// RuleNames lists the names ParseRules accepts, sorted.
func RuleNames() []string {
	names := []string{"fold-numbers", "sequences", "short-circuit", "ternary", "void-return"}
	sort.Strings(names)
	return names
}

// ParseRules parses a comma-separated rule list. "all" and "none" set every
// rule; a name enables one rule and "-name" disables it. Items apply left to
// right, so "all,-ternary" enables everything but the ternary rewrite. An
// empty string yields AllRules.
func ParseRules(s string) (Rules, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AllRules(), nil
	}
	var r Rules
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		switch item {
		case "":
			continue
		case "all":
			r = AllRules()
			continue
		case "none":
			r = Rules{}
			continue
		}
		enable := true
		if name, ok := strings.CutPrefix(item, "-"); ok {
			item, enable = name, false
		}
		f := r.field(item)
		if f == nil {
			return Rules{}, fmt.Errorf("unknown rule %q (known: all, none, %s)", item, strings.Join(RuleNames(), ", "))
		}
		*f = enable
	}
	return r, nil
}
