package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/phobologic/unbrowserify/internal/js"
	"github.com/phobologic/unbrowserify/internal/model"
)

const prelude = `(function e(t,n,r){function s(o,u){if(!n[o]){var f=n[o]={exports:{}};t[o][0].call(f.exports,function(x){return s(t[o][1][x]||x)},f,f.exports,e,t,n,r)}return n[o].exports}for(var o=0;o<r.length;o++)s(r[o]);return s})`

func parse(t *testing.T, src string) *js.Program {
	t.Helper()
	prog, err := js.Parse(context.Background(), []byte(src), "bundle.js")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func TestExtract(t *testing.T) {
	t.Parallel()

	src := prelude + `({
1:[function(require,module,exports){
var b = require("./b");
b();
},{"./b":2,"fs":undefined}],
"2":[function(require,module,exports){
module.exports = function () {};
},{}]
},{},[1]);
`
	b, err := Extract(parse(t, src))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if b.File != "bundle.js" {
		t.Errorf("File = %q", b.File)
	}
	if len(b.Entries) != 1 || b.Entries[0] != "1" {
		t.Errorf("Entries = %v, want [1]", b.Entries)
	}
	if len(b.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(b.Records))
	}

	first := b.Record("1")
	if first == nil {
		t.Fatal("record 1 missing")
	}
	if len(first.Requires) != 1 {
		t.Fatalf("record 1 requires = %+v, want one entry (undefined skipped)", first.Requires)
	}
	if first.Requires[0] != (model.RequireEntry{Specifier: "./b", Target: "2"}) {
		t.Errorf("record 1 require = %+v", first.Requires[0])
	}
	if first.Line != 2 {
		t.Errorf("record 1 line = %d, want 2", first.Line)
	}
	if first.Function == nil || len(first.Function.Fn.Body) != 2 {
		t.Errorf("record 1 function body not extracted")
	}

	if b.Record("2") == nil {
		t.Error(`string key "2" should normalise to id 2`)
	}
}

func TestExtractAssignedKernel(t *testing.T) {
	t.Parallel()

	src := `require=` + prelude + `({1:[function(require,module,exports){},{}]},{},[1]);`
	b, err := Extract(parse(t, src))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(b.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(b.Records))
	}
}

func TestExtractFalseRequireValue(t *testing.T) {
	t.Parallel()

	src := prelude + `({1:[function(require,module,exports){},{"./x":false,"./y":void 0}]},{},[1]);`
	b, err := Extract(parse(t, src))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if n := len(b.Records[0].Requires); n != 0 {
		t.Errorf("expected excluded requires to be skipped, got %d", n)
	}
}

func TestFindIgnoresNestedCalls(t *testing.T) {
	t.Parallel()

	src := `function helper() { a(); b(); }
var k = class { m() { c(); } };
x = (() => d());
` + prelude + `({},{},[]);`
	call, loc, err := Find(parse(t, src))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if loc.Line != 4 {
		t.Errorf("kernel line = %d, want 4", loc.Line)
	}
	if len(call.Args) != 3 {
		t.Errorf("kernel args = %d, want 3", len(call.Args))
	}
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no kernel", "var a = 1;", model.ErrNoKernel},
		{"no kernel in functions only", "function f() { g(); }", model.ErrNoKernel},
		{"two calls", "a(); b();", model.ErrAmbiguousKernel},
		{"two calls in one statement", "a(b());", nil},
		{"too few arguments", prelude + "({},{});", model.ErrMalformedKernel},
		{"module map not an object", prelude + "([],{},[]);", model.ErrMalformedModuleMap},
		{"entries not an array", prelude + "({},{},1);", model.ErrMalformedKernel},
		{"entry not a literal", prelude + "({},{},[x]);", model.ErrMalformedKernel},
		{"entry not a pair", prelude + "({1:function(){}},{},[1]);", model.ErrMalformedModuleMap},
		{"entry without function", prelude + "({1:[1,{}]},{},[1]);", model.ErrMalformedModuleMap},
		{"missing require map", prelude + "({1:[function(){}]},{},[1]);", model.ErrMissingRequireMap},
		{"require map not an object", prelude + "({1:[function(){},[]]},{},[1]);", model.ErrMissingRequireMap},
		{"duplicate ids", prelude + `({1:[function(){},{}],"1":[function(){},{}]},{},[1]);`, model.ErrMalformedModuleMap},
		{"computed key", prelude + "({[k]:[function(){},{}]},{},[1]);", model.ErrMalformedModuleMap},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Extract(parse(t, tt.src))
			if tt.want == nil {
				// The outer call is the kernel; it fails validation but is
				// not ambiguous.
				if errors.Is(err, model.ErrAmbiguousKernel) {
					t.Errorf("nested call counted as a second kernel: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var se *model.SourceError
			if !errors.As(err, &se) {
				t.Fatalf("expected *model.SourceError, got %T", err)
			}
			if se.File != "bundle.js" {
				t.Errorf("File = %q", se.File)
			}
		})
	}
}
