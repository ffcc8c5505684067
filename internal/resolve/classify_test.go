package resolve

import (
	"reflect"
	"strings"
	"testing"

	"github.com/phobologic/unbrowserify/internal/model"
)

type prefixMatcher string

func (p prefixMatcher) Match(name string) bool { return strings.HasPrefix(name, string(p)) }

func table() *model.NameTable {
	t := model.NewNameTable()
	t.Seed("1", "index")
	t.Assign("2", "lib/a")
	t.Assign("3", "node_modules/events")
	t.Assign("4", "node_modules/left-pad")
	t.Assign("5", "node_modules/left-pad/lib/util")
	t.Assign("6", "node_modules/@scope/widget")
	t.Assign("7", "node_modules/Vendor_Lib")
	t.Assign("8", "node_modules/Vendor_Lib/x")
	t.Assign("9", "test/fixtures")
	return t
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cls := Classify(table(), ClassifyOptions{Ignore: prefixMatcher("test/")})

	want := map[model.ModuleID]model.ModuleKind{
		"1": model.KindEntry,
		"2": model.KindModule,
		"3": model.KindBuiltin,
		"4": model.KindPackage,
		"5": model.KindPackage,
		"6": model.KindPackage,
		"7": model.KindModule,
		"8": model.KindModule,
		"9": model.KindIgnored,
	}
	if !reflect.DeepEqual(cls.Kinds, want) {
		t.Errorf("Kinds = %v, want %v", cls.Kinds, want)
	}
	if want := []string{"@scope/widget", "left-pad"}; !reflect.DeepEqual(cls.Packages, want) {
		t.Errorf("Packages = %v, want %v", cls.Packages, want)
	}
	if k := cls.Kind("unknown"); k != model.KindIgnored {
		t.Errorf("unknown id kind = %s, want ignored", k)
	}
}

func TestClassifyKeepExternal(t *testing.T) {
	t.Parallel()

	cls := Classify(table(), ClassifyOptions{KeepExternal: true})
	for _, id := range []model.ModuleID{"3", "4", "5", "6"} {
		if k := cls.Kind(id); k != model.KindModule {
			t.Errorf("%s: kind = %s, want module", id, k)
		}
	}
	if len(cls.Packages) != 0 {
		t.Errorf("Packages = %v, want none", cls.Packages)
	}
}

func TestClassifyNeverIgnoresEntry(t *testing.T) {
	t.Parallel()

	cls := Classify(table(), ClassifyOptions{Ignore: prefixMatcher("")})
	if k := cls.Kind("1"); k != model.KindEntry {
		t.Errorf("entry kind = %s", k)
	}
	if k := cls.Kind("2"); k != model.KindIgnored {
		t.Errorf("lib/a kind = %s, want ignored", k)
	}
}

func TestIsPackageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"left-pad", true},
		{"lodash.merge", true},
		{"@babel/core", true},
		{"Uppercase", false},
		{"with space", false},
		{".hidden", false},
		{"@scope", false},
		{strings.Repeat("a", 215), false},
	}
	for _, tt := range tests {
		if got := IsPackageName(tt.name); got != tt.want {
			t.Errorf("IsPackageName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
