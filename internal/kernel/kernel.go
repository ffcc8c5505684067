// Package kernel locates the bundle kernel in a parsed program and extracts
// the module map it is called with.
package kernel

import (
	"fmt"

	"github.com/phobologic/unbrowserify/internal/js"
	"github.com/phobologic/unbrowserify/internal/model"
)

// Find returns the single call expression in prog's top-level statements,
// not counting calls nested inside functions, classes or the matched call
// itself. It fails with ErrNoKernel or ErrAmbiguousKernel.
func Find(prog *js.Program) (*js.ECall, js.Loc, error) {
	var (
		match *js.ECall
		loc   js.Loc
		err   error
	)
	for _, st := range prog.Stmts {
		js.Inspect([]js.Stmt{st}, func(node any) bool {
			if err != nil {
				return false
			}
			switch n := node.(type) {
			case *js.EFunction, *js.EArrow, *js.EClass, *js.SFunction, *js.SClass:
				return false
			case *js.ECall:
				if match != nil {
					err = &model.SourceError{File: prog.Label, Line: st.Loc.Line, Err: model.ErrAmbiguousKernel}
					return false
				}
				match, loc = n, st.Loc
				return false
			}
			return true
		})
		if err != nil {
			return nil, js.Loc{}, err
		}
	}
	if match == nil {
		return nil, js.Loc{}, &model.SourceError{File: prog.Label, Err: model.ErrNoKernel}
	}
	return match, loc, nil
}

// Extract finds the kernel and builds one ModuleRecord per module-map entry.
func Extract(prog *js.Program) (*model.Bundle, error) {
	call, loc, err := Find(prog)
	if err != nil {
		return nil, err
	}
	file := prog.Label
	fail := func(line int, err error, format string, args ...any) error {
		if line == 0 {
			line = loc.Line
		}
		return &model.SourceError{File: file, Line: line, Err: fmt.Errorf("%w: "+format, append([]any{err}, args...)...)}
	}

	if len(call.Args) < 3 {
		return nil, fail(0, model.ErrMalformedKernel, "expected 3 arguments, got %d", len(call.Args))
	}

	moduleMap, ok := call.Args[0].Data.(*js.EObject)
	if !ok {
		return nil, fail(call.Args[0].Loc.Line, model.ErrMalformedModuleMap, "first argument is not an object literal")
	}

	entryList, ok := call.Args[2].Data.(*js.EArray)
	if !ok {
		return nil, fail(call.Args[2].Loc.Line, model.ErrMalformedKernel, "third argument is not an array literal")
	}

	b := &model.Bundle{File: file}
	for _, item := range entryList.Items {
		id, ok := literalID(item)
		if !ok {
			return nil, fail(item.Loc.Line, model.ErrMalformedKernel, "entry id is not a literal")
		}
		b.Entries = append(b.Entries, id)
	}

	seen := make(map[model.ModuleID]struct{}, len(moduleMap.Properties))
	for _, prop := range moduleMap.Properties {
		line := prop.Key.Loc.Line
		if prop.Kind != js.PropertyNormal || prop.IsComputed {
			return nil, fail(line, model.ErrMalformedModuleMap, "unsupported module map member")
		}
		id, ok := literalID(prop.Key)
		if !ok {
			return nil, fail(line, model.ErrMalformedModuleMap, "module key is not a literal")
		}
		if _, dup := seen[id]; dup {
			return nil, fail(line, model.ErrMalformedModuleMap, "duplicate module id %s", id)
		}
		seen[id] = struct{}{}

		rec, err := record(id, prop.ValueOrNil)
		if err != nil {
			return nil, fail(line, err, "module %s", id)
		}
		rec.Line = line
		b.Records = append(b.Records, rec)
	}
	return b, nil
}

func record(id model.ModuleID, value js.Expr) (*model.ModuleRecord, error) {
	pair, ok := value.Data.(*js.EArray)
	if !ok || len(pair.Items) == 0 {
		return nil, model.ErrMalformedModuleMap
	}
	fn, ok := pair.Items[0].Data.(*js.EFunction)
	if !ok {
		return nil, model.ErrMalformedModuleMap
	}
	if len(pair.Items) < 2 {
		return nil, model.ErrMissingRequireMap
	}
	requireMap, ok := pair.Items[1].Data.(*js.EObject)
	if !ok {
		return nil, model.ErrMissingRequireMap
	}

	rec := &model.ModuleRecord{ID: id, Function: fn}
	for _, p := range requireMap.Properties {
		if p.Kind != js.PropertyNormal || p.IsComputed {
			return nil, model.ErrMissingRequireMap
		}
		spec, ok := literalID(p.Key)
		if !ok {
			return nil, model.ErrMissingRequireMap
		}
		if excluded(p.ValueOrNil) {
			continue
		}
		target, ok := literalID(p.ValueOrNil)
		if !ok {
			return nil, model.ErrMalformedModuleMap
		}
		rec.Requires = append(rec.Requires, model.RequireEntry{Specifier: string(spec), Target: target})
	}
	return rec, nil
}

// excluded reports whether a require-map value marks a dependency the
// bundler left out on purpose.
func excluded(e js.Expr) bool {
	if js.IsUndefined(e) {
		return true
	}
	b, ok := e.Data.(*js.EBoolean)
	return ok && !b.Value
}

func literalID(e js.Expr) (model.ModuleID, bool) {
	switch v := e.Data.(type) {
	case *js.EString:
		return model.ModuleID(js.StringValue(v.Value)), true
	case *js.ENumber:
		return model.ModuleID(js.FormatNumber(v.Value)), true
	}
	return "", false
}
