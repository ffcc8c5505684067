package unbundle

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/phobologic/unbrowserify/internal/decompile"
	"github.com/phobologic/unbrowserify/internal/js"
	"github.com/phobologic/unbrowserify/internal/model"
)

const fibBundle = `(function e(t,n,r){function s(o,u){if(!n[o]){if(!t[o]){var a=typeof require=="function"&&require;if(!u&&a)return a(o,!0);throw new Error("Cannot find module '"+o+"'")}var f=n[o]={exports:{}};t[o][0].call(f.exports,function(e){var n=t[o][1][e];return s(n?n:e)},f,f.exports,e,t,n,r)}return n[o].exports}for(var o=0;o<r.length;o++)s(r[o]);return s})({1:[function(require,module,exports){
var fib=require("./lib/fib.js"),pad=require("left-pad");console.log(pad(fib(10),4))
},{"./lib/fib.js":2,"left-pad":3}],2:[function(require,module,exports){
function fib(n){return n<2?n:fib(n-1)+fib(n-2)}module.exports=fib
},{}],3:[function(require,module,exports){
module.exports=function(s){return s}
},{}],4:[function(require,module,exports){
dead()
},{}]},{},[1]);
`

const fibSource = `function fib(n) {
  if (n < 2) {
    return n;
  } else {
    return fib(n - 1) + fib(n - 2);
  }
}
module.exports = fib;
`

func assertText(t *testing.T, name, want, got string) {
	t.Helper()
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want/" + name,
		ToFile:   "got/" + name,
		Context:  3,
	})
	t.Errorf("%s mismatch:\n%s", name, diff)
}

func TestUnbundleRoundTrip(t *testing.T) {
	t.Parallel()

	res, err := Unbundle(context.Background(), []byte(fibBundle), Options{Label: "fib.js", Rules: decompile.AllRules()})
	if err != nil {
		t.Fatalf("Unbundle: %v", err)
	}

	if want := []string{"index", "browser", "lib/fib"}; !reflect.DeepEqual(res.ModuleNames(), want) {
		t.Errorf("ModuleNames() = %v, want %v", res.ModuleNames(), want)
	}

	got, err := res.Print("lib/fib", js.DefaultPrintOptions())
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, "lib/fib.js", `function fib(n) {
    if (n < 2) {
        return n;
    } else {
        return fib(n - 1) + fib(n - 2);
    }
}
module.exports = fib;
`, got)

	// The extracted module prints like the hand-written original.
	orig, err := js.Parse(context.Background(), []byte(fibSource), "fib.js")
	if err != nil {
		t.Fatal(err)
	}
	decompile.Normalize(orig, decompile.AllRules())
	assertText(t, "original", js.Print(orig, js.DefaultPrintOptions()), got)

	index, err := res.Print("index", js.DefaultPrintOptions())
	if err != nil {
		t.Fatal(err)
	}
	assertText(t, "index.js", `var fib = require("./lib/fib"),
    pad = require("left-pad");
console.log(pad(fib(10), 4));
`, index)

	if browser, _ := res.Print("browser", js.DefaultPrintOptions()); browser != "" {
		t.Errorf("browser = %q, want empty", browser)
	}
	if _, err := res.Print("missing", js.DefaultPrintOptions()); err == nil {
		t.Error("expected error printing an unknown module")
	}

	if want := []string{"left-pad"}; !reflect.DeepEqual(res.Packages(), want) {
		t.Errorf("Packages() = %v, want %v", res.Packages(), want)
	}
	wantWarn := []model.Warning{{ID: "4", Message: "not reachable from an entry point; skipped"}}
	if !reflect.DeepEqual(res.Warnings, wantWarn) {
		t.Errorf("Warnings = %+v, want %+v", res.Warnings, wantWarn)
	}
	if res.Passes < 1 {
		t.Errorf("Passes = %d, want at least 1", res.Passes)
	}
}

func TestUnbundleWithoutRules(t *testing.T) {
	t.Parallel()

	res, err := Unbundle(context.Background(), []byte(fibBundle), Options{})
	if err != nil {
		t.Fatalf("Unbundle: %v", err)
	}
	got, err := res.Print("lib/fib", js.DefaultPrintOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "return n < 2 ? n : fib(n - 1) + fib(n - 2);") {
		t.Errorf("expected the conditional to survive, got:\n%s", got)
	}
}

func TestUnbundleKeepExternal(t *testing.T) {
	t.Parallel()

	res, err := Unbundle(context.Background(), []byte(fibBundle), Options{KeepExternal: true})
	if err != nil {
		t.Fatalf("Unbundle: %v", err)
	}
	if _, ok := res.Program("node_modules/left-pad"); !ok {
		t.Errorf("expected node_modules/left-pad among %v", res.ModuleNames())
	}
	index, _ := res.Print("index", js.DefaultPrintOptions())
	if !strings.Contains(index, `require("./node_modules/left-pad")`) {
		t.Errorf("expected a relative require of the vendored copy, got:\n%s", index)
	}
	if len(res.Programs()) != 4 {
		t.Errorf("Programs() has %d entries, want 4", len(res.Programs()))
	}
}

func TestUnbundlePackageFileKeepsOneName(t *testing.T) {
	t.Parallel()

	src := `(function(){})({1:[function(require,module,exports){
module.exports=require("left-pad/lib/pad.js")
},{"left-pad/lib/pad.js":2}],2:[function(require,module,exports){
module.exports=1
},{}]},{},[1]);`

	res, err := Unbundle(context.Background(), []byte(src), Options{KeepExternal: true})
	if err != nil {
		t.Fatalf("Unbundle: %v", err)
	}
	if _, ok := res.Program("node_modules/left-pad/lib/pad"); !ok {
		t.Errorf("expected node_modules/left-pad/lib/pad among %v", res.ModuleNames())
	}
	index, _ := res.Print("index", js.DefaultPrintOptions())
	if !strings.Contains(index, `require("./node_modules/left-pad/lib/pad")`) {
		t.Errorf("expected the require to match the extracted name, got:\n%s", index)
	}
}

func TestUnbundleBundleMap(t *testing.T) {
	t.Parallel()

	res, err := Unbundle(context.Background(), []byte(fibBundle), Options{Label: "fib.js"})
	if err != nil {
		t.Fatalf("Unbundle: %v", err)
	}
	bm := res.BundleMap()
	if bm.Bundle != "fib.js" {
		t.Errorf("Bundle = %q", bm.Bundle)
	}
	if len(bm.Modules) != 3 {
		t.Fatalf("got %d modules, want 3: %+v", len(bm.Modules), bm.Modules)
	}
	if len(bm.Dependencies) != 2 {
		t.Errorf("got %d dependencies, want 2: %+v", len(bm.Dependencies), bm.Dependencies)
	}
	if bm.Modules[len(bm.Modules)-1].Name != "index" {
		t.Errorf("expected index to rank last, got %+v", bm.Modules)
	}
}

func TestUnbundleErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no kernel", "var a = 1;", model.ErrNoKernel},
		{"two kernels", "f(); g();", model.ErrAmbiguousKernel},
		{"bad module map", "f([], {}, [1]);", model.ErrMalformedModuleMap},
		{"missing target", `f({1:[function(require){require("./x")},{"./x":9}]},{},[1]);`, model.ErrUnresolvedReference},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Unbundle(context.Background(), []byte(tt.src), Options{Label: "bad.js"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
