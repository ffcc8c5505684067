package js

// Symbol is one binding. Every identifier bound to it shares the pointer, so
// renaming the symbol renames every use.
type Symbol struct {
	Name    string
	display string
}

// Rename overrides the name the printer uses for the symbol. Identity is
// unchanged.
func (s *Symbol) Rename(name string) {
	s.display = name
}

// Display returns the printed name of the symbol.
func (s *Symbol) Display() string {
	if s.display != "" {
		return s.display
	}
	return s.Name
}

type scope struct {
	parent  *scope
	members map[string]*Symbol
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, members: make(map[string]*Symbol)}
}

func (s *scope) declare(name string) *Symbol {
	if sym, ok := s.members[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name}
	s.members[name] = sym
	return sym
}

func (s *scope) lookup(name string) *Symbol {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.members[name]; ok {
			return sym
		}
	}
	return nil
}

// ResolveScopes binds every identifier in prog to its declaring Symbol.
// Identifiers with no declaration (globals) keep a nil Ref. It may be called
// again after the tree was rewritten; existing bindings are replaced.
func ResolveScopes(prog *Program) {
	r := &resolver{}
	top := newScope(nil)
	r.hoistVars(prog.Stmts, top)
	r.stmts(prog.Stmts, top)
}

type resolver struct{}

// hoistVars declares the var bindings of a function body in fn without
// entering nested functions.
func (r *resolver) hoistVars(stmts []Stmt, fn *scope) {
	for _, st := range stmts {
		r.hoistStmt(st, fn)
	}
}

func (r *resolver) hoistStmt(st Stmt, fn *scope) {
	switch s := st.Data.(type) {
	case *SLocal:
		if s.Kind == LocalVar {
			for _, d := range s.Decls {
				r.declareBinding(d.Binding, fn)
			}
		}
	case *SBlock:
		r.hoistVars(s.Stmts, fn)
	case *SIf:
		r.hoistStmt(s.Yes, fn)
		if s.NoOrNil.Data != nil {
			r.hoistStmt(s.NoOrNil, fn)
		}
	case *SFor:
		if s.InitOrNil.Data != nil {
			r.hoistStmt(s.InitOrNil, fn)
		}
		r.hoistStmt(s.Body, fn)
	case *SForIn:
		r.hoistStmt(s.Init, fn)
		r.hoistStmt(s.Body, fn)
	case *SForOf:
		r.hoistStmt(s.Init, fn)
		r.hoistStmt(s.Body, fn)
	case *SWhile:
		r.hoistStmt(s.Body, fn)
	case *SDoWhile:
		r.hoistStmt(s.Body, fn)
	case *SWith:
		r.hoistStmt(s.Body, fn)
	case *SLabel:
		r.hoistStmt(s.Stmt, fn)
	case *SSwitch:
		for _, c := range s.Cases {
			r.hoistVars(c.Body, fn)
		}
	case *STry:
		r.hoistVars(s.Block, fn)
		if s.CatchOrNil != nil {
			r.hoistVars(s.CatchOrNil.Body, fn)
		}
		r.hoistVars(s.FinallyOrNil, fn)
	}
}

// declareLexical declares the block-scoped bindings of a statement list.
func (r *resolver) declareLexical(stmts []Stmt, s *scope) {
	for _, st := range stmts {
		switch d := st.Data.(type) {
		case *SLocal:
			if d.Kind != LocalVar {
				for _, decl := range d.Decls {
					r.declareBinding(decl.Binding, s)
				}
			}
		case *SFunction:
			if d.Fn.Name != nil {
				d.Fn.Name.Ref = s.declare(d.Fn.Name.Name)
			}
		case *SClass:
			if d.Class.Name != nil {
				d.Class.Name.Ref = s.declare(d.Class.Name.Name)
			}
		}
	}
}

func (r *resolver) declareBinding(b Binding, s *scope) {
	switch d := b.Data.(type) {
	case *BIdentifier:
		d.Ref = s.declare(d.Name)
	case *BArray:
		for _, item := range d.Items {
			r.declareBinding(item.Binding, s)
		}
	case *BObject:
		for _, p := range d.Properties {
			r.declareBinding(p.Value, s)
		}
	}
}

// bindingRefs resolves default values and computed keys inside a binding.
// The bound names themselves were declared already.
func (r *resolver) bindingRefs(b Binding, s *scope) {
	switch d := b.Data.(type) {
	case *BIdentifier:
		if d.Ref == nil {
			d.Ref = s.lookup(d.Name)
		}
	case *BArray:
		for _, item := range d.Items {
			r.bindingRefs(item.Binding, s)
			r.expr(item.DefaultOrNil, s)
		}
	case *BObject:
		for _, p := range d.Properties {
			if p.IsComputed {
				r.expr(p.Key, s)
			}
			r.bindingRefs(p.Value, s)
			r.expr(p.DefaultOrNil, s)
		}
	}
}

func (r *resolver) stmts(stmts []Stmt, s *scope) {
	r.declareLexical(stmts, s)
	for _, st := range stmts {
		r.stmt(st, s)
	}
}

func (r *resolver) block(stmts []Stmt, parent *scope) {
	r.stmts(stmts, newScope(parent))
}

func (r *resolver) body(st Stmt, s *scope) {
	if b, ok := st.Data.(*SBlock); ok {
		r.block(b.Stmts, s)
		return
	}
	// A lone declaration as a body still gets its own scope.
	inner := newScope(s)
	r.declareLexical([]Stmt{st}, inner)
	r.stmt(st, inner)
}

func (r *resolver) stmt(st Stmt, s *scope) {
	switch d := st.Data.(type) {
	case *SExpr:
		r.expr(d.Value, s)
	case *SLocal:
		for _, decl := range d.Decls {
			r.bindingRefs(decl.Binding, s)
			r.expr(decl.ValueOrNil, s)
		}
	case *SFunction:
		r.fn(&d.Fn, s, false)
	case *SClass:
		r.class(&d.Class, s, false)
	case *SReturn:
		r.expr(d.ValueOrNil, s)
	case *SThrow:
		r.expr(d.Value, s)
	case *SIf:
		r.expr(d.Test, s)
		r.body(d.Yes, s)
		if d.NoOrNil.Data != nil {
			r.body(d.NoOrNil, s)
		}
	case *SBlock:
		r.block(d.Stmts, s)
	case *SFor:
		head := newScope(s)
		if d.InitOrNil.Data != nil {
			r.declareLexical([]Stmt{d.InitOrNil}, head)
			r.stmt(d.InitOrNil, head)
		}
		r.expr(d.TestOrNil, head)
		r.expr(d.UpdateOrNil, head)
		r.body(d.Body, head)
	case *SForIn:
		head := newScope(s)
		r.declareLexical([]Stmt{d.Init}, head)
		r.expr(d.Value, head)
		r.stmt(d.Init, head)
		r.body(d.Body, head)
	case *SForOf:
		head := newScope(s)
		r.declareLexical([]Stmt{d.Init}, head)
		r.expr(d.Value, head)
		r.stmt(d.Init, head)
		r.body(d.Body, head)
	case *SWhile:
		r.expr(d.Test, s)
		r.body(d.Body, s)
	case *SDoWhile:
		r.body(d.Body, s)
		r.expr(d.Test, s)
	case *SWith:
		r.expr(d.Value, s)
		r.body(d.Body, s)
	case *SLabel:
		r.stmt(d.Stmt, s)
	case *SSwitch:
		r.expr(d.Test, s)
		inner := newScope(s)
		for _, c := range d.Cases {
			r.declareLexical(c.Body, inner)
		}
		for _, c := range d.Cases {
			r.expr(c.ValueOrNil, inner)
			for _, cs := range c.Body {
				r.stmt(cs, inner)
			}
		}
	case *STry:
		r.block(d.Block, s)
		if d.CatchOrNil != nil {
			cs := newScope(s)
			if d.CatchOrNil.BindingOrNil.Data != nil {
				r.declareBinding(d.CatchOrNil.BindingOrNil, cs)
				r.bindingRefs(d.CatchOrNil.BindingOrNil, cs)
			}
			r.block(d.CatchOrNil.Body, cs)
		}
		if d.HasFinally {
			r.block(d.FinallyOrNil, s)
		}
	}
}

// fn resolves a function. Named function expressions see their own name in
// an intermediate scope.
func (r *resolver) fn(f *Fn, s *scope, isExpr bool) {
	outer := s
	if isExpr && f.Name != nil {
		outer = newScope(s)
		f.Name.Ref = outer.declare(f.Name.Name)
	}
	r.functionBody(f.Args, f.Body, outer)
}

func (r *resolver) functionBody(args []Arg, body []Stmt, s *scope) {
	fs := newScope(s)
	for _, a := range args {
		r.declareBinding(a.Binding, fs)
	}
	for _, a := range args {
		r.bindingRefs(a.Binding, fs)
		r.expr(a.DefaultOrNil, fs)
	}
	r.hoistVars(body, fs)
	r.stmts(body, fs)
}

func (r *resolver) class(c *Class, s *scope, isExpr bool) {
	inner := newScope(s)
	if c.Name != nil {
		sym := inner.declare(c.Name.Name)
		if isExpr || c.Name.Ref == nil {
			c.Name.Ref = sym
		}
	}
	r.expr(c.ExtendsOrNil, inner)
	r.properties(c.Properties, inner)
}

func (r *resolver) properties(props []Property, s *scope) {
	for i := range props {
		p := &props[i]
		if p.Kind == PropertyStaticBlock {
			r.functionBody(nil, p.Body, s)
			continue
		}
		if p.IsComputed || p.Kind == PropertySpread {
			r.expr(p.Key, s)
		}
		r.expr(p.ValueOrNil, s)
	}
}

func (r *resolver) expr(e Expr, s *scope) {
	switch d := e.Data.(type) {
	case nil:
	case *EIdentifier:
		d.Ref = s.lookup(d.Name)
	case *ETemplate:
		r.expr(d.TagOrNil, s)
		for _, p := range d.Parts {
			r.expr(p.Value, s)
		}
	case *EArray:
		for _, item := range d.Items {
			r.expr(item, s)
		}
	case *EObject:
		r.properties(d.Properties, s)
	case *EFunction:
		r.fn(&d.Fn, s, true)
	case *EArrow:
		r.functionBody(d.Args, d.Body, s)
	case *EClass:
		r.class(&d.Class, s, true)
	case *EUnary:
		r.expr(d.Value, s)
	case *EBinary:
		r.expr(d.Left, s)
		r.expr(d.Right, s)
	case *EIf:
		r.expr(d.Test, s)
		r.expr(d.Yes, s)
		r.expr(d.No, s)
	case *ECall:
		r.expr(d.Target, s)
		for _, a := range d.Args {
			r.expr(a, s)
		}
	case *ENew:
		r.expr(d.Target, s)
		for _, a := range d.Args {
			r.expr(a, s)
		}
	case *EDot:
		r.expr(d.Target, s)
	case *EIndex:
		r.expr(d.Target, s)
		r.expr(d.Index, s)
	case *ESpread:
		r.expr(d.Value, s)
	case *EYield:
		r.expr(d.ValueOrNil, s)
	case *EAwait:
		r.expr(d.Value, s)
	}
}
