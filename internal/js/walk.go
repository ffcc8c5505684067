package js

// Inspect walks stmts in depth-first order, calling visit with the Data of
// every statement, expression and binding (S, E and B values). If visit
// returns false the node's children are skipped.
func Inspect(stmts []Stmt, visit func(node any) bool) {
	w := walker{visit: visit}
	w.stmts(stmts)
}

type walker struct {
	visit func(node any) bool
}

func (w walker) stmts(stmts []Stmt) {
	for _, s := range stmts {
		w.stmt(s)
	}
}

func (w walker) stmt(st Stmt) {
	if st.Data == nil || !w.visit(st.Data) {
		return
	}
	switch s := st.Data.(type) {
	case *SExpr:
		w.expr(s.Value)
	case *SLocal:
		for _, d := range s.Decls {
			w.binding(d.Binding)
			w.expr(d.ValueOrNil)
		}
	case *SFunction:
		w.fn(&s.Fn)
	case *SClass:
		w.class(&s.Class)
	case *SReturn:
		w.expr(s.ValueOrNil)
	case *SThrow:
		w.expr(s.Value)
	case *SIf:
		w.expr(s.Test)
		w.stmt(s.Yes)
		w.stmt(s.NoOrNil)
	case *SBlock:
		w.stmts(s.Stmts)
	case *SFor:
		w.stmt(s.InitOrNil)
		w.expr(s.TestOrNil)
		w.expr(s.UpdateOrNil)
		w.stmt(s.Body)
	case *SForIn:
		w.stmt(s.Init)
		w.expr(s.Value)
		w.stmt(s.Body)
	case *SForOf:
		w.stmt(s.Init)
		w.expr(s.Value)
		w.stmt(s.Body)
	case *SWhile:
		w.expr(s.Test)
		w.stmt(s.Body)
	case *SDoWhile:
		w.stmt(s.Body)
		w.expr(s.Test)
	case *SWith:
		w.expr(s.Value)
		w.stmt(s.Body)
	case *SSwitch:
		w.expr(s.Test)
		for _, c := range s.Cases {
			w.expr(c.ValueOrNil)
			w.stmts(c.Body)
		}
	case *STry:
		w.stmts(s.Block)
		if s.CatchOrNil != nil {
			w.binding(s.CatchOrNil.BindingOrNil)
			w.stmts(s.CatchOrNil.Body)
		}
		w.stmts(s.FinallyOrNil)
	case *SLabel:
		w.stmt(s.Stmt)
	}
}

func (w walker) fn(f *Fn) {
	for _, a := range f.Args {
		w.binding(a.Binding)
		w.expr(a.DefaultOrNil)
	}
	w.stmts(f.Body)
}

func (w walker) class(c *Class) {
	w.expr(c.ExtendsOrNil)
	w.properties(c.Properties)
}

func (w walker) properties(props []Property) {
	for _, p := range props {
		if p.IsComputed {
			w.expr(p.Key)
		}
		w.expr(p.ValueOrNil)
		w.stmts(p.Body)
	}
}

func (w walker) binding(b Binding) {
	if b.Data == nil || !w.visit(b.Data) {
		return
	}
	switch d := b.Data.(type) {
	case *BArray:
		for _, item := range d.Items {
			w.binding(item.Binding)
			w.expr(item.DefaultOrNil)
		}
	case *BObject:
		for _, p := range d.Properties {
			if p.IsComputed {
				w.expr(p.Key)
			}
			w.binding(p.Value)
			w.expr(p.DefaultOrNil)
		}
	}
}

func (w walker) expr(e Expr) {
	if e.Data == nil || !w.visit(e.Data) {
		return
	}
	switch d := e.Data.(type) {
	case *ETemplate:
		w.expr(d.TagOrNil)
		for _, p := range d.Parts {
			w.expr(p.Value)
		}
	case *EArray:
		for _, item := range d.Items {
			w.expr(item)
		}
	case *EObject:
		w.properties(d.Properties)
	case *EFunction:
		w.fn(&d.Fn)
	case *EArrow:
		for _, a := range d.Args {
			w.binding(a.Binding)
			w.expr(a.DefaultOrNil)
		}
		w.stmts(d.Body)
	case *EClass:
		w.class(&d.Class)
	case *EUnary:
		w.expr(d.Value)
	case *EBinary:
		w.expr(d.Left)
		w.expr(d.Right)
	case *EIf:
		w.expr(d.Test)
		w.expr(d.Yes)
		w.expr(d.No)
	case *ECall:
		w.expr(d.Target)
		for _, a := range d.Args {
			w.expr(a)
		}
	case *ENew:
		w.expr(d.Target)
		for _, a := range d.Args {
			w.expr(a)
		}
	case *EDot:
		w.expr(d.Target)
	case *EIndex:
		w.expr(d.Target)
		w.expr(d.Index)
	case *ESpread:
		w.expr(d.Value)
	case *EYield:
		w.expr(d.ValueOrNil)
	case *EAwait:
		w.expr(d.Value)
	}
}
