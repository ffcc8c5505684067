package decompile

import (
	"context"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/phobologic/unbrowserify/internal/js"
)

func normalize(t *testing.T, src string, rules Rules) string {
	t.Helper()
	prog, err := js.Parse(context.Background(), []byte(src), "test.js")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	Normalize(prog, rules)
	return js.Print(prog, js.DefaultPrintOptions())
}

func assertText(t *testing.T, want, got string) {
	t.Helper()
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("output mismatch:\n%s", diff)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "nan",
			src:  "x = 0/0;",
			want: "x = NaN;\n",
		},
		{
			name: "infinity",
			src:  "x = 1/0;",
			want: "x = Infinity;\n",
		},
		{
			name: "booleans",
			src:  "x = !0, y = !1;",
			want: "x = true;\ny = false;\n",
		},
		{
			name: "other division untouched",
			src:  "x = 2/0 + 0/1;",
			want: "x = 2 / 0 + 0 / 1;\n",
		},
		{
			name: "and statement",
			src:  "a && b();",
			want: "if (a) {\n    b();\n}\n",
		},
		{
			name: "or statement",
			src:  "a || b();",
			want: "if (!a) {\n    b();\n}\n",
		},
		{
			name: "or removes double negation",
			src:  "!a || b();",
			want: "if (a) {\n    b();\n}\n",
		},
		{
			name: "logical expression in assignment untouched",
			src:  "x = a && b();",
			want: "x = a && b();\n",
		},
		{
			name: "ternary statement",
			src:  "a ? b() : c();",
			want: "if (a) {\n    b();\n} else {\n    c();\n}\n",
		},
		{
			name: "ternary with undefined branch",
			src:  "a ? b() : void 0;",
			want: "if (a) {\n    b();\n}\n",
		},
		{
			name: "ternary with undefined consequent",
			src:  "a ? void 0 : c();",
			want: "if (!a) {\n    c();\n}\n",
		},
		{
			name: "ternary in assignment untouched",
			src:  "x = a ? b : c;",
			want: "x = a ? b : c;\n",
		},
		{
			name: "ternary return",
			src:  "function f() { return a ? b : c; }",
			want: "function f() {\n    if (a) {\n        return b;\n    } else {\n        return c;\n    }\n}\n",
		},
		{
			name: "void return",
			src:  "function f() { return void a(); }",
			want: "function f() {\n    a();\n    return;\n}\n",
		},
		{
			name: "void literal return",
			src:  "function f() { return void 0; }",
			want: "function f() {\n    return;\n}\n",
		},
		{
			name: "sequence return",
			src:  "function f() { return a(), b(), c; }",
			want: "function f() {\n    a();\n    b();\n    return c;\n}\n",
		},
		{
			name: "sequence if test",
			src:  "if (a(), b) c();",
			want: "a();\nif (b) {\n    c();\n}\n",
		},
		{
			name: "sequence for init",
			src:  "for (a = 1, b = 2; a < b; a++) {}",
			want: "a = 1;\nfor (b = 2; a < b; a++) {}\n",
		},
		{
			name: "sequence for var init",
			src:  "for (var i = (a(), 0), j = (b(), 1); i < j; i++) {}",
			want: "a();\nfor (var i = 0, j = (b(), 1); i < j; i++) {}\n",
		},
		{
			name: "sequence var declarator",
			src:  "var a = 1, b = (c(), 2);",
			want: "var a = 1;\nc();\nvar b = 2;\n",
		},
		{
			name: "sequence inside short circuit",
			src:  "a && (b(), c());",
			want: "if (a) {\n    b();\n    c();\n}\n",
		},
		{
			name: "nested rewrites",
			src:  "a ? (b && c(), d()) : e || f();",
			want: "if (a) {\n    if (b) {\n        c();\n    }\n    d();\n} else if (!e) {\n    f();\n}\n",
		},
		{
			name: "function expression body",
			src:  "x = function () { a && b(); };",
			want: "x = function() {\n    if (a) {\n        b();\n    }\n};\n",
		},
		{
			name: "labelled loop",
			src:  "l: for (a(), b = 0; ;) break l;",
			want: "a();\nl: for (b = 0; ;) {\n    break l;\n}\n",
		},
		{
			name: "concise arrow keeps expression",
			src:  "f = () => (a(), 0/0);",
			want: "f = () => (a(), NaN);\n",
		},
		{
			name: "switch case bodies",
			src:  "switch (a(), b) { case 1: c && d(); }",
			want: "a();\nswitch (b) {\ncase 1:\n    if (c) {\n        d();\n    }\n}\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertText(t, tt.want, normalize(t, tt.src, AllRules()))
		})
	}
}

func TestNormalizeTernaryWithUndefinedBranchDropsElse(t *testing.T) {
	t.Parallel()

	rules := Rules{Ternary: true}
	tests := []struct {
		src, want string
	}{
		{"a ? b() : c();", "if (a) {\n    b();\n} else {\n    c();\n}\n"},
		{"a ? b() : void 0;", "if (a) {\n    b();\n}\n"},
		{"a ? b() : undefined;", "if (a) {\n    b();\n}\n"},
		{"a ? void 0 : c();", "if (!a) {\n    c();\n}\n"},
		{"a() ? void 0 : void 0;", "a();\n"},
	}
	for _, tt := range tests {
		assertText(t, tt.want, normalize(t, tt.src, rules))
	}
}

func TestNormalizeSelectedRules(t *testing.T) {
	t.Parallel()

	src := "a && b(), x = 0/0;"

	assertText(t, "a && b(), x = 0 / 0;\n", normalize(t, src, Rules{}))
	assertText(t, "a && b();\nx = 0 / 0;\n", normalize(t, src, Rules{SplitSequences: true}))
	assertText(t, "if (a) {\n    b();\n}\nx = NaN;\n", normalize(t, src, AllRules()))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	srcs := []string{
		"a ? (b && c(), d()) : e || f();",
		"function f() { return a(), b ? void c() : d; }",
		"for (var i = (a(), 0); i < 1; i++) { x = !0; }",
		"l: for (a(), b = 0; ;) break l;",
	}
	for _, src := range srcs {
		once := normalize(t, src, AllRules())
		twice := normalize(t, once, AllRules())
		if once != twice {
			t.Errorf("normalizing %q twice changed the output:\n%s\nvs\n%s", src, once, twice)
		}
	}
}

func TestParseRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Rules
		wantErr bool
	}{
		{in: "", want: AllRules()},
		{in: "all", want: AllRules()},
		{in: "none", want: Rules{}},
		{in: "ternary", want: Rules{Ternary: true}},
		{in: "sequences, fold-numbers", want: Rules{SplitSequences: true, FoldNumbers: true}},
		{in: "all,-ternary,-void-return", want: Rules{FoldNumbers: true, SplitSequences: true, ShortCircuit: true}},
		{in: "none,short-circuit", want: Rules{ShortCircuit: true}},
		{in: "bogus", wantErr: true},
		{in: "all,-bogus", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRules(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRules(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRules(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRules(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if !(Rules{}).None() || AllRules().None() {
		t.Error("None() mismatch")
	}
}
