// Package assemble turns resolved module-map entries into standalone module
// programs with rewritten require specifiers.
package assemble

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/phobologic/unbrowserify/internal/js"
	"github.com/phobologic/unbrowserify/internal/model"
	"github.com/phobologic/unbrowserify/internal/resolve"
)

// CanonicalParams are the names the module wrapper's parameters print as,
// by position.
var CanonicalParams = []string{
	"require",
	"module",
	"exports",
	"__modules",
	"__cache",
	"__entries",
}

// Options configures Assemble.
type Options struct {
	// Reserved names always get a program, empty if no module claims them.
	Reserved []string
	Logger   *zap.Logger
}

// Mapping is one require-map entry of an assembled module.
type Mapping struct {
	Specifier string
	Target    string
	Rewritten string
}

// Module is one output module. Several ids may share a name.
type Module struct {
	Name     string
	Kind     model.ModuleKind
	IDs      []model.ModuleID
	Program  *js.Program
	Requires []Mapping
}

// Result holds the assembled modules, in order of first appearance with the
// reserved names first.
type Result struct {
	Modules []*Module
	Skipped []model.ModuleID
	byName  map[string]*Module
}

// Module returns the module with the given name, or nil.
func (r *Result) Module(name string) *Module {
	return r.byName[name]
}

// Names returns the module names in output order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Modules))
	for i, m := range r.Modules {
		names[i] = m.Name
	}
	return names
}

// Assemble builds one program per extracted module name.
func Assemble(b *model.Bundle, names *model.NameTable, cls *resolve.Classification, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	res := &Result{byName: make(map[string]*Module)}
	for _, name := range opts.Reserved {
		res.add(name, model.KindEntry)
	}

	for _, rec := range b.Records {
		name, ok := names.Lookup(rec.ID)
		if !ok {
			log.Warn("skipping module unreachable from the entry points", zap.String("id", string(rec.ID)))
			res.Skipped = append(res.Skipped, rec.ID)
			continue
		}
		kind := cls.Kind(rec.ID)
		if !kind.Extracted() {
			log.Debug("not extracting module",
				zap.String("id", string(rec.ID)),
				zap.String("name", name),
				zap.String("kind", string(kind)))
			continue
		}

		mappings, err := requireMapping(b.File, rec, name, names, cls)
		if err != nil {
			return nil, err
		}

		canonicalizeParams(rec.Function, log)
		rewriteRequires(rec.Function, mappings)

		m := res.add(name, kind)
		m.IDs = append(m.IDs, rec.ID)
		m.Requires = append(m.Requires, mappings...)
		m.Program.Stmts = append(m.Program.Stmts, rec.Function.Fn.Body...)
	}
	return res, nil
}

func (r *Result) add(name string, kind model.ModuleKind) *Module {
	if m, ok := r.byName[name]; ok {
		return m
	}
	m := &Module{Name: name, Kind: kind, Program: &js.Program{Label: name + ".js"}}
	r.byName[name] = m
	r.Modules = append(r.Modules, m)
	return m
}

func requireMapping(file string, rec *model.ModuleRecord, name string, names *model.NameTable, cls *resolve.Classification) ([]Mapping, error) {
	out := make([]Mapping, 0, len(rec.Requires))
	for _, req := range rec.Requires {
		target, ok := names.Lookup(req.Target)
		if !ok {
			return nil, &model.SourceError{
				File: file,
				Line: rec.Line,
				Err:  fmt.Errorf("%w: %s (required by %s as %q)", model.ErrUnresolvedModuleID, req.Target, name, req.Specifier),
			}
		}
		out = append(out, Mapping{
			Specifier: req.Specifier,
			Target:    target,
			Rewritten: Specifier(name, target, cls.Kind(req.Target)),
		})
	}
	return out, nil
}

// Specifier returns the require argument module from uses to load target.
// Packages and builtins left out of the output keep their bare name.
func Specifier(from, target string, kind model.ModuleKind) string {
	pkg, sub := resolve.SplitPackage(target)
	if pkg == "" || sub != "" {
		target = resolve.StripExtension(target)
		pkg, sub = resolve.SplitPackage(target)
	}
	if pkg != "" && !kind.Extracted() {
		if sub == "" {
			return pkg
		}
		return pkg + "/" + sub
	}
	rel, err := filepath.Rel(path.Dir(from), target)
	if err != nil {
		return "./" + target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// canonicalizeParams overrides the printed names of the wrapper's
// parameters. Bindings keep their identity. An inner binding that already
// prints as a canonical name is renamed out of the way first. A parameter
// keeps its name when the canonical name is used by a free identifier, or
// when either name appears in source text kept verbatim.
func canonicalizeParams(fn *js.EFunction, log *zap.Logger) {
	names := collectNames(fn)
	for i, arg := range fn.Fn.Args {
		if i >= len(CanonicalParams) {
			break
		}
		id, ok := arg.Binding.Data.(*js.BIdentifier)
		if !ok || id.Ref == nil {
			continue
		}
		canonical := CanonicalParams[i]
		current := id.Ref.Display()
		if current == canonical {
			continue
		}
		if names.free[canonical] || names.inRaw(current) || names.inRaw(canonical) {
			log.Debug("keeping wrapper parameter name",
				zap.String("param", current),
				zap.String("canonical", canonical))
			continue
		}
		for _, sym := range names.symbols {
			if sym != id.Ref && sym.Display() == canonical {
				sym.Rename(names.fresh(canonical))
			}
		}
		id.Ref.Rename(canonical)
		names.taken[canonical] = true
	}
}

// scopeNames is every name a module function prints or refers to.
type scopeNames struct {
	symbols []*js.Symbol
	free    map[string]bool
	taken   map[string]bool
	raw     []string
}

func collectNames(fn *js.EFunction) *scopeNames {
	n := &scopeNames{free: make(map[string]bool), taken: make(map[string]bool)}
	seen := make(map[*js.Symbol]bool)
	addSym := func(sym *js.Symbol) {
		if sym == nil || seen[sym] {
			return
		}
		seen[sym] = true
		n.symbols = append(n.symbols, sym)
		n.taken[sym.Display()] = true
	}
	addName := func(b *js.BIdentifier) {
		if b != nil {
			addSym(b.Ref)
		}
	}

	root := []js.Stmt{{Data: &js.SExpr{Value: js.Expr{Data: fn}}}}
	js.Inspect(root, func(node any) bool {
		switch d := node.(type) {
		case *js.BIdentifier:
			addSym(d.Ref)
		case *js.EIdentifier:
			if d.Ref == nil {
				n.free[d.Name] = true
				n.taken[d.Name] = true
			} else {
				addSym(d.Ref)
			}
		case *js.SFunction:
			addName(d.Fn.Name)
		case *js.EFunction:
			addName(d.Fn.Name)
		case *js.SClass:
			addName(d.Class.Name)
		case *js.EClass:
			addName(d.Class.Name)
		case *js.ERaw:
			n.raw = append(n.raw, d.Text)
		case *js.SRaw:
			n.raw = append(n.raw, d.Text)
		}
		return true
	})
	return n
}

// fresh returns an unused name derived from base.
func (n *scopeNames) fresh(base string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s$%d", base, i)
		if !n.taken[name] && !n.inRaw(name) {
			n.taken[name] = true
			return name
		}
	}
}

// inRaw reports whether name occurs as a whole identifier in verbatim text.
func (n *scopeNames) inRaw(name string) bool {
	for _, text := range n.raw {
		for i := 0; ; {
			j := strings.Index(text[i:], name)
			if j < 0 {
				break
			}
			start, end := i+j, i+j+len(name)
			if (start == 0 || !isIdentByte(text[start-1])) && (end == len(text) || !isIdentByte(text[end])) {
				return true
			}
			i = start + 1
		}
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9'
}

func requireSymbol(fn *js.EFunction) *js.Symbol {
	if len(fn.Fn.Args) == 0 {
		return nil
	}
	if id, ok := fn.Fn.Args[0].Binding.Data.(*js.BIdentifier); ok {
		return id.Ref
	}
	return nil
}

// rewriteRequires replaces the specifier of every require call found in the
// module's require map.
func rewriteRequires(fn *js.EFunction, mappings []Mapping) {
	if len(mappings) == 0 {
		return
	}
	bySpecifier := make(map[string]string, len(mappings))
	for _, m := range mappings {
		bySpecifier[m.Specifier] = m.Rewritten
	}
	req := requireSymbol(fn)

	js.Inspect(fn.Fn.Body, func(node any) bool {
		call, ok := node.(*js.ECall)
		if !ok || len(call.Args) != 1 {
			return true
		}
		callee, ok := call.Target.Data.(*js.EIdentifier)
		if !ok {
			return true
		}
		if !(req != nil && callee.Ref == req) && !(callee.Ref == nil && callee.Name == "require") {
			return true
		}
		arg, ok := call.Args[0].Data.(*js.EString)
		if !ok {
			return true
		}
		if rewritten, ok := bySpecifier[js.StringValue(arg.Value)]; ok {
			call.Args[0].Data = &js.EString{Value: js.StringUnits(rewritten)}
		}
		return true
	})
}
