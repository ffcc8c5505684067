package js

import (
	"context"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(context.Background(), []byte(src), "test.js")
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return prog
}

func assertPrinted(t *testing.T, got, want string) {
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
	t.Errorf("printed output mismatch:\n%s", diff)
}

func TestPrintBeautified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "declarators one per line",
			src:  "var a = 1, b = 2, c = 3;",
			want: "var a = 1,\n    b = 2,\n    c = 3;\n",
		},
		{
			name: "declarators aligned under let",
			src:  "function f(){ let x = 1, y; }",
			want: "function f() {\n    let x = 1,\n        y;\n}\n",
		},
		{
			name: "for header keeps declarators inline",
			src:  "for (var i = 0, j = 0; ;) {}",
			want: "for (var i = 0, j = 0; ;) {}\n",
		},
		{
			name: "empty for header",
			src:  "for (;;) x();",
			want: "for (;;) {\n    x();\n}\n",
		},
		{
			name: "for in",
			src:  "for (var k in o) f(k);",
			want: "for (var k in o) {\n    f(k);\n}\n",
		},
		{
			name: "else if chain",
			src:  "if (a) b(); else if (c) d(); else e();",
			want: "if (a) {\n    b();\n} else if (c) {\n    d();\n} else {\n    e();\n}\n",
		},
		{
			name: "function expression at statement start",
			src:  "(function(){ x(); })();",
			want: "(function() {\n    x();\n})();\n",
		},
		{
			name: "object at statement start",
			src:  "({}).toString();",
			want: "({}).toString();\n",
		},
		{
			name: "comma inside assignment",
			src:  "a = (b, c);",
			want: "a = (b, c);\n",
		},
		{
			name: "conditional",
			src:  "a = b ? c : d;",
			want: "a = b ? c : d;\n",
		},
		{
			name: "adjacent minus signs",
			src:  "x = a - -b;",
			want: "x = a - -b;\n",
		},
		{
			name: "number member access",
			src:  "x = (1).toString();",
			want: "x = (1).toString();\n",
		},
		{
			name: "object literal",
			src:  "o = {a: 1, 'b-c': 2, 3: 4};",
			want: "o = {\n    a: 1,\n    \"b-c\": 2,\n    3: 4\n};\n",
		},
		{
			name: "concise arrow",
			src:  "f = (a) => a + 1;",
			want: "f = (a) => a + 1;\n",
		},
		{
			name: "nullish mixed with logical",
			src:  "x = a ?? (b || c);",
			want: "x = a ?? (b || c);\n",
		},
		{
			name: "try catch finally",
			src:  "try { a(); } catch (e) { b(e); } finally { c(); }",
			want: "try {\n    a();\n} catch (e) {\n    b(e);\n} finally {\n    c();\n}\n",
		},
		{
			name: "switch",
			src:  "switch (x) { case 1: a(); break; default: b(); }",
			want: "switch (x) {\ncase 1:\n    a();\n    break;\ndefault:\n    b();\n}\n",
		},
		{
			name: "bare return",
			src:  "function f(){ return; }",
			want: "function f() {\n    return;\n}\n",
		},
		{
			name: "precedence kept",
			src:  "x = (a + b) * c;",
			want: "x = (a + b) * c;\n",
		},
		{
			name: "redundant parens dropped",
			src:  "x = (a * b) + c;",
			want: "x = a * b + c;\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertPrinted(t, Print(mustParse(t, tt.src), DefaultPrintOptions()), tt.want)
		})
	}
}

func TestPrintStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		ascii bool
		want  string
	}{
		{"prefers double quotes", `s = 'it\'s';`, true, "s = \"it's\";\n"},
		{"single quotes when fewer escapes", `s = 'say "hi"';`, true, "s = 'say \"hi\"';\n"},
		{"ascii escapes latin1", `s = "é";`, true, "s = \"\\xE9\";\n"},
		{"ascii escapes bmp", `s = "€";`, true, "s = \"\\u20AC\";\n"},
		{"utf8 kept", `s = "é";`, false, "s = \"é\";\n"},
		{"escapes decoded and re-encoded", `s = "a\u0062\x63\n";`, true, "s = \"abc\\n\";\n"},
		{"line separator always escaped", "s = \"\u2028\";", false, "s = \"\\u2028\";\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultPrintOptions()
			opts.ASCIIOnly = tt.ascii
			assertPrinted(t, Print(mustParse(t, tt.src), opts), tt.want)
		})
	}
}

func TestPrintCompact(t *testing.T) {
	t.Parallel()

	opts := PrintOptions{Braces: true}
	tests := []struct {
		src  string
		want string
	}{
		{"var a = 1, b = 2;", "var a=1,b=2;"},
		{"if (a) b();", "if(a){b();}"},
		{"function f(a){ return a; }", "function f(a){return a;}"},
		{"x = typeof y;", "x=typeof y;"},
	}
	for _, tt := range tests {
		assertPrinted(t, Print(mustParse(t, tt.src), opts), tt.want)
	}
}

func TestPrintWithoutBraces(t *testing.T) {
	t.Parallel()

	opts := DefaultPrintOptions()
	opts.Braces = false

	// The inner if has no else, so the outer else needs the braces.
	src := "if (a) { if (b) c(); } else d();"
	want := "if (a) {\n    if (b)\n        c();\n} else\n    d();\n"
	assertPrinted(t, Print(mustParse(t, src), opts), want)
}

func TestPrintExpr(t *testing.T) {
	t.Parallel()

	prog := mustParse(t, "a + b * c;")
	expr := prog.Stmts[0].Data.(*SExpr).Value
	if got := PrintExpr(expr, DefaultPrintOptions()); got != "a + b * c" {
		t.Errorf("PrintExpr = %q", got)
	}
}

func TestPrintIsStable(t *testing.T) {
	t.Parallel()

	src := `
var x = {a: [1, , 3], b: function* g() { yield 1; }, get c() { return 2; }};
class A extends B { constructor() { super(); this.n = new C(1); } static m() {} }
label: for (const [k, v] of Object.entries(x)) { if (!k) continue label; }
async function h() { await p; return ` + "`t${x}`" + `; }
`
	once := Print(mustParse(t, src), DefaultPrintOptions())
	twice := Print(mustParse(t, once), DefaultPrintOptions())
	assertPrinted(t, twice, once)
}
