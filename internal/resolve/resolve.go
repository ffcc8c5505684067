// Package resolve assigns human-readable module names to bundle module ids
// by propagating require specifiers outward from the entry points.
package resolve

import (
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/phobologic/unbrowserify/internal/model"
)

// Reserved names of the entry modules.
const (
	MainName    = "index"
	BrowserName = "browser"
)

// PackageRoot is the namespace bare specifiers are resolved under.
const PackageRoot = "node_modules"

var scriptExtensions = []string{".js", ".cjs", ".mjs", ".json"}

// Options configures Resolve.
type Options struct {
	// MainName is the name seeded for every entry id. Defaults to MainName.
	MainName string
	Logger   *zap.Logger
}

// Result is the outcome of name resolution.
type Result struct {
	Names    *model.NameTable
	Warnings []model.Warning
	// Unresolved lists ids no named module requires, in module-map order.
	Unresolved []model.ModuleID
	Passes     int
}

// Resolve computes a name for every module reachable from the bundle's
// entry ids. Naming conflicts are recorded as warnings; a require target
// missing from the module map is an error.
func Resolve(b *model.Bundle, opts Options) (*Result, error) {
	if opts.MainName == "" {
		opts.MainName = MainName
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	known := make(map[model.ModuleID]struct{}, len(b.Records))
	for _, rec := range b.Records {
		known[rec.ID] = struct{}{}
	}
	for _, rec := range b.Records {
		for _, req := range rec.Requires {
			if _, ok := known[req.Target]; !ok {
				return nil, &model.SourceError{
					File: b.File,
					Line: rec.Line,
					Err:  fmt.Errorf("%w: module %s requires %q as %s", model.ErrUnresolvedReference, rec.ID, req.Specifier, req.Target),
				}
			}
		}
	}

	r := &resolver{names: model.NewNameTable(), log: log}
	for _, id := range b.Entries {
		if _, ok := known[id]; !ok {
			return nil, &model.SourceError{
				File: b.File,
				Err:  fmt.Errorf("%w: entry id %s", model.ErrUnresolvedReference, id),
			}
		}
		r.names.Seed(id, opts.MainName)
	}

	pending := b.Records
	passes := 0
	for len(pending) > 0 {
		passes++
		var deferred []*model.ModuleRecord
		assigned := 0
		for _, rec := range pending {
			name, ok := r.names.Lookup(rec.ID)
			if !ok {
				deferred = append(deferred, rec)
				continue
			}
			for _, req := range rec.Requires {
				if r.offer(req.Target, Candidate(name, req.Specifier), rec.ID) {
					assigned++
				}
			}
		}
		pending = deferred
		if assigned == 0 {
			break
		}
	}

	res := &Result{Names: r.names, Warnings: r.warnings, Passes: passes}
	for _, rec := range pending {
		res.Unresolved = append(res.Unresolved, rec.ID)
	}
	return res, nil
}

type resolver struct {
	names    *model.NameTable
	warnings []model.Warning
	log      *zap.Logger
}

// offer proposes candidate as the name of id and reports whether a new name
// was assigned.
func (r *resolver) offer(id model.ModuleID, candidate string, from model.ModuleID) bool {
	existing, ok := r.names.Lookup(id)
	if !ok {
		r.names.Assign(id, candidate)
		return true
	}
	if strings.EqualFold(existing, candidate) {
		return false
	}

	if len(existing) <= len(candidate) || r.names.IsSentinel(id) {
		r.warn(id, fmt.Sprintf("required from %s as %q, keeping %q", from, candidate, existing),
			zap.String("kept", existing), zap.String("candidate", candidate))
		return false
	}

	renamed := candidate + "/index"
	r.names.Rename(id, renamed)
	r.warn(id, fmt.Sprintf("required from %s as %q, renamed %q to %q", from, candidate, existing, renamed),
		zap.String("previous", existing), zap.String("renamed", renamed))
	return false
}

func (r *resolver) warn(id model.ModuleID, msg string, fields ...zap.Field) {
	r.warnings = append(r.warnings, model.Warning{ID: id, Message: msg})
	r.log.Warn("module name conflict", append([]zap.Field{zap.String("id", string(id))}, fields...)...)
}

// Candidate derives the name of a required module from the requiring
// module's name and the specifier it used.
func Candidate(current, specifier string) string {
	if !IsRelative(specifier) {
		name := PackageRoot + "/" + strings.TrimLeft(specifier, "/")
		// A bare package name keeps its extension: highlight.js is a package.
		if _, sub := SplitPackage(name); sub != "" {
			name = StripExtension(name)
		}
		return name
	}

	joined := path.Join(moduleDir(current), specifier)
	if strings.HasSuffix(specifier, "/") || specifier == "." || specifier == ".." ||
		strings.HasSuffix(specifier, "/.") || strings.HasSuffix(specifier, "/..") {
		joined = path.Join(joined, "index")
	}
	joined = StripExtension(joined)

	// Names may not escape the output directory.
	for strings.HasPrefix(joined, "../") {
		joined = joined[len("../"):]
	}
	if joined == ".." || joined == "." || joined == "" {
		joined = "index"
	}
	return joined
}

// moduleDir is the directory relative specifiers are resolved against. A
// package root such as node_modules/foo acts as its own directory.
func moduleDir(name string) string {
	if pkg, sub := SplitPackage(name); pkg != "" && sub == "" {
		return PackageRoot + "/" + pkg
	}
	return path.Dir(name)
}

// IsRelative reports whether specifier is a path relative to the requiring
// module.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// StripExtension removes a trailing script extension.
func StripExtension(name string) string {
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// SplitPackage splits a name under PackageRoot into the package name
// (including any scope) and the path inside it. pkg is empty for names
// outside PackageRoot.
func SplitPackage(name string) (pkg, sub string) {
	rest, ok := strings.CutPrefix(name, PackageRoot+"/")
	if !ok || rest == "" {
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 3)
	n := 1
	if strings.HasPrefix(rest, "@") && len(parts) > 1 {
		n = 2
	}
	pkg = strings.Join(parts[:min(n, len(parts))], "/")
	sub = strings.TrimPrefix(strings.TrimPrefix(rest, pkg), "/")
	return pkg, sub
}
