// Package model defines core data structures for unbrowserify.
package model

import (
	"errors"
	"fmt"

	"github.com/phobologic/unbrowserify/internal/js"
)

// Structural and resolution failures. Every fatal engine error wraps one of
// these.
var (
	ErrNoKernel            = errors.New("no bundle kernel found")
	ErrAmbiguousKernel     = errors.New("ambiguous bundle kernel")
	ErrMalformedKernel     = errors.New("malformed bundle kernel")
	ErrMalformedModuleMap  = errors.New("malformed module map")
	ErrMissingRequireMap   = errors.New("module entry has no require map")
	ErrUnresolvedReference = errors.New("require target not in module map")
	ErrUnresolvedModuleID  = errors.New("unresolved module id")
)

// SourceError attaches the input file and, when known, a source line to a
// structural failure.
type SourceError struct {
	File string
	Line int
	Err  error
}

func (e *SourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ModuleID is a module-map key normalised to its string form; the numeric
// key 1 and the string key "1" are the same id.
type ModuleID string

// RequireEntry pairs the specifier an author passed to require with the id
// the bundler bound it to.
type RequireEntry struct {
	Specifier string
	Target    ModuleID
}

// ModuleRecord is one module-map entry.
type ModuleRecord struct {
	ID       ModuleID
	Function *js.EFunction
	Requires []RequireEntry
	Line     int
}

// Bundle is the extracted content of a bundle kernel.
type Bundle struct {
	File    string
	Records []*ModuleRecord
	Entries []ModuleID
}

// Record returns the record with the given id, or nil.
func (b *Bundle) Record(id ModuleID) *ModuleRecord {
	for _, r := range b.Records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ModuleKind classifies a resolved module.
type ModuleKind string

const (
	KindEntry   ModuleKind = "entry"
	KindModule  ModuleKind = "module"
	KindBuiltin ModuleKind = "builtin"
	KindPackage ModuleKind = "package"
	KindIgnored ModuleKind = "ignored"
)

// Extracted reports whether modules of this kind are written out.
func (k ModuleKind) Extracted() bool {
	return k == KindEntry || k == KindModule
}

// Warning is a non-fatal diagnostic, such as a naming conflict.
type Warning struct {
	ID      ModuleID
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("module %s: %s", w.ID, w.Message)
}

// Dependency represents an edge in the module graph:
// Source requires Target through the listed specifiers.
type Dependency struct {
	Source     string
	Target     string
	Specifiers []string
}

// ModuleInfo is a resolved module as listed in a bundle report.
type ModuleInfo struct {
	ID   ModuleID
	Name string
	Kind ModuleKind
	Rank float64
}

// BundleMap is the complete resolved bundle, ready for serialization.
type BundleMap struct {
	Bundle       string
	Modules      []ModuleInfo
	Dependencies []Dependency
	Packages     []string
	Warnings     []Warning
}
