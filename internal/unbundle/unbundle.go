// Package unbundle runs the unbundling engine: it turns the source of a
// browserify bundle into one syntax tree per original module.
package unbundle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/phobologic/unbrowserify/internal/assemble"
	"github.com/phobologic/unbrowserify/internal/decompile"
	"github.com/phobologic/unbrowserify/internal/graph"
	"github.com/phobologic/unbrowserify/internal/js"
	"github.com/phobologic/unbrowserify/internal/kernel"
	"github.com/phobologic/unbrowserify/internal/model"
	"github.com/phobologic/unbrowserify/internal/resolve"
)

// Options configures Unbundle.
type Options struct {
	// Label names the bundle in diagnostics, usually its path.
	Label string
	// Rules selects the normalizing rewrites; the zero value disables them.
	Rules decompile.Rules
	// KeepExternal extracts builtins and published packages as ordinary
	// modules.
	KeepExternal bool
	// Ignore excludes matching module names from extraction.
	Ignore resolve.Matcher
	Logger *zap.Logger
}

// Result is a fully unbundled program.
type Result struct {
	Bundle         *model.Bundle
	Names          *model.NameTable
	Classification *resolve.Classification
	Modules        *assemble.Result
	Dependencies   []model.Dependency
	Warnings       []model.Warning
	// Passes is the number of name resolution passes.
	Passes int
}

// Unbundle parses source and returns its modules. Any structural or
// resolution failure aborts the whole run.
func Unbundle(ctx context.Context, source []byte, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Label == "" {
		opts.Label = "<bundle>"
	}

	start := time.Now()
	prog, err := js.Parse(ctx, source, opts.Label)
	if err != nil {
		return nil, err
	}
	log.Debug("parsed bundle", zap.String("file", opts.Label), zap.Int("statements", len(prog.Stmts)), zap.Duration("elapsed", time.Since(start)))

	b, err := kernel.Extract(prog)
	if err != nil {
		return nil, err
	}
	log.Debug("extracted module map", zap.Int("modules", len(b.Records)), zap.Int("entries", len(b.Entries)))

	resolved, err := resolve.Resolve(b, resolve.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	log.Debug("resolved module names", zap.Int("named", resolved.Names.Len()), zap.Int("passes", resolved.Passes))

	cls := resolve.Classify(resolved.Names, resolve.ClassifyOptions{
		KeepExternal: opts.KeepExternal,
		Ignore:       opts.Ignore,
	})

	modules, err := assemble.Assemble(b, resolved.Names, cls, assemble.Options{
		Reserved: []string{resolve.MainName, resolve.BrowserName},
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	if !opts.Rules.None() {
		for _, m := range modules.Modules {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("normalizing %s: %w", m.Name, err)
			}
			decompile.Normalize(m.Program, opts.Rules)
		}
	}

	res := &Result{
		Bundle:         b,
		Names:          resolved.Names,
		Classification: cls,
		Modules:        modules,
		Dependencies:   graph.Build(b, resolved.Names),
		Warnings:       resolved.Warnings,
		Passes:         resolved.Passes,
	}
	for _, id := range modules.Skipped {
		res.Warnings = append(res.Warnings, model.Warning{ID: id, Message: "not reachable from an entry point; skipped"})
	}
	return res, nil
}

// ModuleNames returns the output module names, reserved names first.
func (r *Result) ModuleNames() []string {
	return r.Modules.Names()
}

// Program returns the tree of the named module.
func (r *Result) Program(name string) (*js.Program, bool) {
	m := r.Modules.Module(name)
	if m == nil {
		return nil, false
	}
	return m.Program, true
}

// Programs returns every output module keyed by name.
func (r *Result) Programs() map[string]*js.Program {
	out := make(map[string]*js.Program, len(r.Modules.Modules))
	for _, m := range r.Modules.Modules {
		out[m.Name] = m.Program
	}
	return out
}

// Print serializes the named module.
func (r *Result) Print(name string, opts js.PrintOptions) (string, error) {
	prog, ok := r.Program(name)
	if !ok {
		return "", fmt.Errorf("no module named %q", name)
	}
	return js.Print(prog, opts), nil
}

// Packages returns the published packages the bundle depends on, sorted.
func (r *Result) Packages() []string {
	return r.Classification.Packages
}

// BundleMap summarizes the result for listing, with modules ordered by rank.
func (r *Result) BundleMap() *model.BundleMap {
	mods := graph.Modules(r.Names, r.Classification.Kind)
	graph.Rank(mods, r.Dependencies)
	return &model.BundleMap{
		Bundle:       r.Bundle.File,
		Modules:      mods,
		Dependencies: r.Dependencies,
		Packages:     r.Classification.Packages,
		Warnings:     r.Warnings,
	}
}
