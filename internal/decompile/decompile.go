// Package decompile rewrites a fixed set of minifier idioms back into
// conventional control flow.
package decompile

import (
	"github.com/phobologic/unbrowserify/internal/js"
)

// Normalize rewrites prog in place. Statements produced by a rule are offered
// to the rules again before their children are visited, so the result is a
// fixed point: normalizing twice gives the same tree as normalizing once.
func Normalize(prog *js.Program, rules Rules) {
	n := &normalizer{rules: rules}
	prog.Stmts = n.stmtList(prog.Stmts)
}

type normalizer struct {
	rules Rules
}

func (n *normalizer) stmtList(stmts []js.Stmt) []js.Stmt {
	out := make([]js.Stmt, 0, len(stmts))
	for _, st := range stmts {
		out = append(out, n.stmt(st)...)
	}
	return out
}

// stmt normalizes one statement into one or more statements. The statement
// carrying the original construct is always last.
func (n *normalizer) stmt(st js.Stmt) []js.Stmt {
	if l, ok := st.Data.(*js.SLabel); ok {
		// Statements hoisted out of a labelled loop go before the label.
		inner := n.stmt(l.Stmt)
		last := len(inner) - 1
		l.Stmt = inner[last]
		return append(inner[:last:last], st)
	}
	if produced, ok := n.rewrite(st); ok {
		return n.stmtList(produced)
	}
	n.children(st)
	return []js.Stmt{st}
}

// body normalizes the single-statement body of a control statement,
// wrapping several results in a block.
func (n *normalizer) body(st js.Stmt) js.Stmt {
	out := n.stmt(st)
	if len(out) == 1 {
		return out[0]
	}
	return js.Stmt{Data: &js.SBlock{Stmts: out}, Loc: st.Loc}
}

// rewrite applies the first rule that matches st.
func (n *normalizer) rewrite(st js.Stmt) ([]js.Stmt, bool) {
	switch s := st.Data.(type) {
	case *js.SExpr:
		if n.rules.SplitSequences {
			if left, right, ok := splitComma(s.Value); ok {
				return []js.Stmt{exprStmt(left), exprStmt(right)}, true
			}
		}
		if n.rules.ShortCircuit {
			if out, ok := shortCircuit(s.Value, st.Loc); ok {
				return []js.Stmt{out}, true
			}
		}
		if n.rules.Ternary {
			if out, ok := ternaryStmt(s.Value, st.Loc); ok {
				return []js.Stmt{out}, true
			}
		}

	case *js.SReturn:
		if n.rules.SplitSequences {
			if left, right, ok := splitComma(s.ValueOrNil); ok {
				return []js.Stmt{exprStmt(left), {Data: &js.SReturn{ValueOrNil: right}, Loc: st.Loc}}, true
			}
		}
		if n.rules.Ternary {
			if cond, ok := s.ValueOrNil.Data.(*js.EIf); ok {
				return []js.Stmt{{Data: &js.SIf{
					Test:    cond.Test,
					Yes:     returnStmt(cond.Yes),
					NoOrNil: returnStmt(cond.No),
				}, Loc: st.Loc}}, true
			}
		}
		if n.rules.VoidReturn {
			if u, ok := s.ValueOrNil.Data.(*js.EUnary); ok && u.Op == js.UnOpVoid {
				ret := js.Stmt{Data: &js.SReturn{}, Loc: st.Loc}
				if js.IsPrimitiveLiteral(u.Value) {
					return []js.Stmt{ret}, true
				}
				return []js.Stmt{exprStmt(u.Value), ret}, true
			}
		}

	case *js.SIf:
		if n.rules.SplitSequences {
			if left, right, ok := splitComma(s.Test); ok {
				s.Test = right
				return []js.Stmt{exprStmt(left), st}, true
			}
		}

	case *js.SWith:
		if n.rules.SplitSequences {
			if left, right, ok := splitComma(s.Value); ok {
				s.Value = right
				return []js.Stmt{exprStmt(left), st}, true
			}
		}

	case *js.SSwitch:
		if n.rules.SplitSequences {
			if left, right, ok := splitComma(s.Test); ok {
				s.Test = right
				return []js.Stmt{exprStmt(left), st}, true
			}
		}

	case *js.SFor:
		if n.rules.SplitSequences {
			switch init := s.InitOrNil.Data.(type) {
			case *js.SExpr:
				if left, right, ok := splitComma(init.Value); ok {
					init.Value = right
					return []js.Stmt{exprStmt(left), st}, true
				}
			case *js.SLocal:
				// Only the first declarator can be hoisted without
				// reordering evaluation.
				if init.Kind == js.LocalVar && len(init.Decls) > 0 {
					if left, right, ok := splitComma(init.Decls[0].ValueOrNil); ok {
						init.Decls[0].ValueOrNil = right
						return []js.Stmt{exprStmt(left), st}, true
					}
				}
			}
		}

	case *js.SLocal:
		if n.rules.SplitSequences {
			for i := range s.Decls {
				left, right, ok := splitComma(s.Decls[i].ValueOrNil)
				if !ok {
					continue
				}
				s.Decls[i].ValueOrNil = right
				var out []js.Stmt
				if i > 0 {
					head := &js.SLocal{Kind: s.Kind, Decls: s.Decls[:i:i]}
					out = append(out, js.Stmt{Data: head, Loc: st.Loc})
					s.Decls = s.Decls[i:]
				}
				return append(out, exprStmt(left), st), true
			}
		}
	}
	return nil, false
}

func splitComma(e js.Expr) (js.Expr, js.Expr, bool) {
	b, ok := e.Data.(*js.EBinary)
	if !ok || b.Op != js.BinOpComma {
		return js.Expr{}, js.Expr{}, false
	}
	return b.Left, b.Right, true
}

func shortCircuit(e js.Expr, loc js.Loc) (js.Stmt, bool) {
	b, ok := e.Data.(*js.EBinary)
	if !ok {
		return js.Stmt{}, false
	}
	switch b.Op {
	case js.BinOpLogicalAnd:
		return js.Stmt{Data: &js.SIf{Test: b.Left, Yes: exprStmt(b.Right)}, Loc: loc}, true
	case js.BinOpLogicalOr:
		return js.Stmt{Data: &js.SIf{Test: not(b.Left), Yes: exprStmt(b.Right)}, Loc: loc}, true
	}
	return js.Stmt{}, false
}

// ternaryStmt turns a statement-level conditional into an if. An undefined
// branch evaluates to nothing, so it produces no else (or no then, with the
// test negated).
func ternaryStmt(e js.Expr, loc js.Loc) (js.Stmt, bool) {
	cond, ok := e.Data.(*js.EIf)
	if !ok {
		return js.Stmt{}, false
	}
	yesNoop, noNoop := js.IsUndefined(cond.Yes), js.IsUndefined(cond.No)
	switch {
	case yesNoop && noNoop:
		return exprStmt(cond.Test), true
	case noNoop:
		return js.Stmt{Data: &js.SIf{Test: cond.Test, Yes: exprStmt(cond.Yes)}, Loc: loc}, true
	case yesNoop:
		return js.Stmt{Data: &js.SIf{Test: not(cond.Test), Yes: exprStmt(cond.No)}, Loc: loc}, true
	}
	return js.Stmt{Data: &js.SIf{
		Test:    cond.Test,
		Yes:     exprStmt(cond.Yes),
		NoOrNil: exprStmt(cond.No),
	}, Loc: loc}, true
}

// not negates a condition, removing a double negation.
func not(e js.Expr) js.Expr {
	if u, ok := e.Data.(*js.EUnary); ok && u.Op == js.UnOpNot {
		return u.Value
	}
	return js.Expr{Data: &js.EUnary{Op: js.UnOpNot, Value: e}, Loc: e.Loc}
}

func exprStmt(e js.Expr) js.Stmt {
	return js.Stmt{Data: &js.SExpr{Value: e}, Loc: e.Loc}
}

func returnStmt(e js.Expr) js.Stmt {
	if js.IsUndefined(e) {
		return js.Stmt{Data: &js.SReturn{}, Loc: e.Loc}
	}
	return js.Stmt{Data: &js.SReturn{ValueOrNil: e}, Loc: e.Loc}
}
