package resolve

import (
	"regexp"
	"sort"

	"github.com/phobologic/unbrowserify/internal/model"
)

// packageName matches the published npm package naming convention.
var packageName = regexp.MustCompile(`^(?:@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)

// builtins are the core modules of the Node.js runtime, which bundlers shim
// or leave to the host.
var builtins = map[string]struct{}{
	"_process":       {},
	"assert":         {},
	"async_hooks":    {},
	"buffer":         {},
	"child_process":  {},
	"cluster":        {},
	"console":        {},
	"constants":      {},
	"crypto":         {},
	"dgram":          {},
	"dns":            {},
	"domain":         {},
	"events":         {},
	"fs":             {},
	"http":           {},
	"http2":          {},
	"https":          {},
	"inspector":      {},
	"module":         {},
	"net":            {},
	"os":             {},
	"path":           {},
	"perf_hooks":     {},
	"process":        {},
	"punycode":       {},
	"querystring":    {},
	"readline":       {},
	"repl":           {},
	"stream":         {},
	"string_decoder": {},
	"sys":            {},
	"timers":         {},
	"tls":            {},
	"tty":            {},
	"url":            {},
	"util":           {},
	"v8":             {},
	"vm":             {},
	"worker_threads": {},
	"zlib":           {},
}

// IsBuiltin reports whether name is a core module of the host runtime.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// IsPackageName reports whether name follows the npm naming convention.
func IsPackageName(name string) bool {
	return len(name) <= 214 && packageName.MatchString(name)
}

// Matcher reports whether a resolved module name is excluded by the user.
type Matcher interface {
	Match(name string) bool
}

// ClassifyOptions configures Classify.
type ClassifyOptions struct {
	// KeepExternal extracts builtins and packages like ordinary modules.
	KeepExternal bool
	// Ignore excludes matching names; entry modules are never ignored.
	Ignore Matcher
}

// Classification is the kind of every named module plus the packages to
// declare as runtime dependencies.
type Classification struct {
	Kinds    map[model.ModuleID]model.ModuleKind
	Packages []string
}

// Kind returns the kind of id; unnamed ids are reported as ignored.
func (c *Classification) Kind(id model.ModuleID) model.ModuleKind {
	if k, ok := c.Kinds[id]; ok {
		return k
	}
	return model.KindIgnored
}

// Classify sorts every named module into entry, module, builtin, package
// or ignored. Modules inside an excluded package share its kind but are
// not declared separately.
func Classify(names *model.NameTable, opts ClassifyOptions) *Classification {
	c := &Classification{Kinds: make(map[model.ModuleID]model.ModuleKind, names.Len())}
	packages := make(map[string]struct{})

	roots := make(map[string]model.ModuleKind)
	for _, id := range names.IDs() {
		name, _ := names.Lookup(id)
		pkg, sub := SplitPackage(name)
		if pkg == "" || sub != "" || opts.KeepExternal || names.IsSentinel(id) {
			continue
		}
		switch {
		case IsBuiltin(pkg):
			roots[pkg] = model.KindBuiltin
		case IsPackageName(pkg):
			roots[pkg] = model.KindPackage
		}
	}

	for _, id := range names.IDs() {
		name, _ := names.Lookup(id)
		kind := model.KindModule
		pkg, _ := SplitPackage(name)
		switch {
		case names.IsSentinel(id):
			kind = model.KindEntry
		case opts.Ignore != nil && opts.Ignore.Match(name):
			kind = model.KindIgnored
		case pkg != "":
			if k, ok := roots[pkg]; ok {
				kind = k
			}
		}
		if kind == model.KindPackage {
			packages[pkg] = struct{}{}
		}
		c.Kinds[id] = kind
	}

	for pkg := range packages {
		c.Packages = append(c.Packages, pkg)
	}
	sort.Strings(c.Packages)
	return c
}
