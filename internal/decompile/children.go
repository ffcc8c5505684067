package decompile

import (
	"github.com/phobologic/unbrowserify/internal/js"
)

// children normalizes the nested statements and expressions of st.
func (n *normalizer) children(st js.Stmt) {
	switch s := st.Data.(type) {
	case *js.SExpr:
		n.expr(&s.Value)
	case *js.SLocal:
		n.decls(s.Decls)
	case *js.SFunction:
		n.fn(&s.Fn)
	case *js.SClass:
		n.class(&s.Class)
	case *js.SReturn:
		n.expr(&s.ValueOrNil)
	case *js.SThrow:
		n.expr(&s.Value)
	case *js.SIf:
		n.expr(&s.Test)
		s.Yes = n.body(s.Yes)
		if s.NoOrNil.Data != nil {
			s.NoOrNil = n.body(s.NoOrNil)
		}
	case *js.SBlock:
		s.Stmts = n.stmtList(s.Stmts)
	case *js.SFor:
		n.loopInit(s.InitOrNil)
		n.expr(&s.TestOrNil)
		n.expr(&s.UpdateOrNil)
		s.Body = n.body(s.Body)
	case *js.SForIn:
		n.loopInit(s.Init)
		n.expr(&s.Value)
		s.Body = n.body(s.Body)
	case *js.SForOf:
		n.loopInit(s.Init)
		n.expr(&s.Value)
		s.Body = n.body(s.Body)
	case *js.SWhile:
		n.expr(&s.Test)
		s.Body = n.body(s.Body)
	case *js.SDoWhile:
		s.Body = n.body(s.Body)
		n.expr(&s.Test)
	case *js.SWith:
		n.expr(&s.Value)
		s.Body = n.body(s.Body)
	case *js.SSwitch:
		n.expr(&s.Test)
		for i := range s.Cases {
			n.expr(&s.Cases[i].ValueOrNil)
			s.Cases[i].Body = n.stmtList(s.Cases[i].Body)
		}
	case *js.STry:
		s.Block = n.stmtList(s.Block)
		if s.CatchOrNil != nil {
			n.binding(s.CatchOrNil.BindingOrNil)
			s.CatchOrNil.Body = n.stmtList(s.CatchOrNil.Body)
		}
		s.FinallyOrNil = n.stmtList(s.FinallyOrNil)
	}
}

// loopInit visits a loop header, which must stay a single statement.
func (n *normalizer) loopInit(st js.Stmt) {
	switch s := st.Data.(type) {
	case *js.SExpr:
		n.expr(&s.Value)
	case *js.SLocal:
		n.decls(s.Decls)
	}
}

func (n *normalizer) decls(decls []js.Decl) {
	for i := range decls {
		n.binding(decls[i].Binding)
		n.expr(&decls[i].ValueOrNil)
	}
}

func (n *normalizer) fn(f *js.Fn) {
	n.args(f.Args)
	f.Body = n.stmtList(f.Body)
}

func (n *normalizer) args(args []js.Arg) {
	for i := range args {
		n.binding(args[i].Binding)
		n.expr(&args[i].DefaultOrNil)
	}
}

func (n *normalizer) class(c *js.Class) {
	n.expr(&c.ExtendsOrNil)
	n.properties(c.Properties)
}

func (n *normalizer) properties(props []js.Property) {
	for i := range props {
		if props[i].IsComputed {
			n.expr(&props[i].Key)
		}
		n.expr(&props[i].ValueOrNil)
		props[i].Body = n.stmtList(props[i].Body)
	}
}

func (n *normalizer) binding(b js.Binding) {
	switch d := b.Data.(type) {
	case *js.BArray:
		for i := range d.Items {
			n.binding(d.Items[i].Binding)
			n.expr(&d.Items[i].DefaultOrNil)
		}
	case *js.BObject:
		for i := range d.Properties {
			if d.Properties[i].IsComputed {
				n.expr(&d.Properties[i].Key)
			}
			n.binding(d.Properties[i].Value)
			n.expr(&d.Properties[i].DefaultOrNil)
		}
	}
}

// expr visits an expression in place. Children are folded before their
// parent, so "!(0 / 0)" sees its operand as NaN.
func (n *normalizer) expr(e *js.Expr) {
	switch d := e.Data.(type) {
	case nil:
		return
	case *js.ETemplate:
		n.expr(&d.TagOrNil)
		for i := range d.Parts {
			n.expr(&d.Parts[i].Value)
		}
	case *js.EArray:
		for i := range d.Items {
			n.expr(&d.Items[i])
		}
	case *js.EObject:
		n.properties(d.Properties)
	case *js.EFunction:
		n.fn(&d.Fn)
	case *js.EArrow:
		n.args(d.Args)
		if d.PreferExpr && len(d.Body) == 1 {
			// A concise body stays an expression.
			if ret, ok := d.Body[0].Data.(*js.SReturn); ok {
				n.expr(&ret.ValueOrNil)
				break
			}
		}
		d.Body = n.stmtList(d.Body)
	case *js.EClass:
		n.class(&d.Class)
	case *js.EUnary:
		n.expr(&d.Value)
	case *js.EBinary:
		n.expr(&d.Left)
		n.expr(&d.Right)
	case *js.EIf:
		n.expr(&d.Test)
		n.expr(&d.Yes)
		n.expr(&d.No)
	case *js.ECall:
		n.expr(&d.Target)
		for i := range d.Args {
			n.expr(&d.Args[i])
		}
	case *js.ENew:
		n.expr(&d.Target)
		for i := range d.Args {
			n.expr(&d.Args[i])
		}
	case *js.EDot:
		n.expr(&d.Target)
	case *js.EIndex:
		n.expr(&d.Target)
		n.expr(&d.Index)
	case *js.ESpread:
		n.expr(&d.Value)
	case *js.EYield:
		n.expr(&d.ValueOrNil)
	case *js.EAwait:
		n.expr(&d.Value)
	}

	if n.rules.FoldNumbers {
		if folded, ok := foldNumber(*e); ok {
			e.Data = folded
		}
	}
}

// foldNumber restores the literal a numeric idiom stands for.
func foldNumber(e js.Expr) (js.E, bool) {
	switch d := e.Data.(type) {
	case *js.EBinary:
		if d.Op != js.BinOpDiv {
			break
		}
		left, lok := d.Left.Data.(*js.ENumber)
		right, rok := d.Right.Data.(*js.ENumber)
		if !lok || !rok || right.Value != 0 {
			break
		}
		switch left.Value {
		case 0:
			return &js.EIdentifier{Name: "NaN"}, true
		case 1:
			return &js.EIdentifier{Name: "Infinity"}, true
		}
	case *js.EUnary:
		if d.Op != js.UnOpNot {
			break
		}
		num, ok := d.Value.Data.(*js.ENumber)
		if !ok {
			break
		}
		switch num.Value {
		case 0:
			return &js.EBoolean{Value: true}, true
		case 1:
			return &js.EBoolean{Value: false}, true
		}
	}
	return nil, false
}
