package js

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ErrSyntax is wrapped by every *SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the first error node tree-sitter recovered from.
type SyntaxError struct {
	Label  string
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Label, e.Line, e.Column, e.Near)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// NewParser creates a fresh tree-sitter parser for JavaScript.
// Each goroutine must use its own parser (not thread-safe).
func NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return p
}

// Parse parses source into a Program and resolves its scopes. label names
// the source in diagnostics.
func Parse(ctx context.Context, source []byte, label string) (*Program, error) {
	parser := NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", label, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, source, label)
	}

	c := &converter{src: source}
	prog := &Program{Label: label, Stmts: c.stmtList(root)}
	ResolveScopes(prog)
	return prog, nil
}

func syntaxError(root *sitter.Node, source []byte, label string) error {
	bad := findError(root)
	if bad == nil {
		bad = root
	}
	near := nodeText(bad, source)
	if bad.IsMissing() {
		near = "missing " + bad.Type()
	}
	pt := bad.StartPoint()
	return &SyntaxError{Label: label, Line: int(pt.Row) + 1, Column: int(pt.Column), Near: clip(near, 24)}
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func findError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch == nil || !ch.HasError() && !ch.IsMissing() {
			continue
		}
		if found := findError(ch); found != nil {
			return found
		}
	}
	return nil
}

// nodeText returns the source text of a tree-sitter node.
func nodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// converter turns a tree-sitter concrete syntax tree into the sum-type tree.
type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string { return nodeText(n, c.src) }

func (c *converter) loc(n *sitter.Node) Loc {
	pt := n.StartPoint()
	return Loc{Line: int(pt.Row) + 1, Column: int(pt.Column)}
}

func (c *converter) named(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case "comment", "hash_bang_line", "html_comment":
			continue
		}
		out = append(out, ch)
	}
	return out
}

func (c *converter) first(n *sitter.Node) *sitter.Node {
	if kids := c.named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// hasToken reports whether n has a direct anonymous child of the given type
// before stop (nil means any position).
func (c *converter) hasToken(n *sitter.Node, token string, stop *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if stop != nil && sameNode(ch, stop) {
			return false
		}
		if !ch.IsNamed() && ch.Type() == token {
			return true
		}
	}
	return false
}

func (c *converter) stmtList(n *sitter.Node) []Stmt {
	if n == nil {
		return nil
	}
	kids := c.named(n)
	out := make([]Stmt, 0, len(kids))
	for _, ch := range kids {
		out = append(out, c.stmt(ch))
	}
	return out
}

func (c *converter) stmt(n *sitter.Node) Stmt {
	loc := c.loc(n)
	var data S

	switch n.Type() {
	case "expression_statement":
		data = &SExpr{Value: c.expr(c.first(n))}
	case "variable_declaration":
		data = c.local(n, LocalVar)
	case "lexical_declaration":
		kind := LocalLet
		if k := n.ChildByFieldName("kind"); k != nil && c.text(k) == "const" {
			kind = LocalConst
		}
		data = c.local(n, kind)
	case "statement_block":
		data = &SBlock{Stmts: c.stmtList(n)}
	case "if_statement":
		s := &SIf{
			Test: c.expr(n.ChildByFieldName("condition")),
			Yes:  c.stmt(n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				alt = c.first(alt)
			}
			s.NoOrNil = c.stmt(alt)
		}
		data = s
	case "for_statement":
		data = c.forStmt(n)
	case "for_in_statement":
		data = c.forInStmt(n)
	case "while_statement":
		data = &SWhile{
			Test: c.expr(n.ChildByFieldName("condition")),
			Body: c.stmt(n.ChildByFieldName("body")),
		}
	case "do_statement":
		data = &SDoWhile{
			Body: c.stmt(n.ChildByFieldName("body")),
			Test: c.expr(n.ChildByFieldName("condition")),
		}
	case "with_statement":
		data = &SWith{
			Value: c.expr(n.ChildByFieldName("object")),
			Body:  c.stmt(n.ChildByFieldName("body")),
		}
	case "switch_statement":
		data = c.switchStmt(n)
	case "try_statement":
		data = c.tryStmt(n)
	case "return_statement":
		s := &SReturn{}
		if v := c.first(n); v != nil {
			s.ValueOrNil = c.expr(v)
		}
		data = s
	case "throw_statement":
		data = &SThrow{Value: c.expr(c.first(n))}
	case "break_statement":
		s := &SBreak{}
		if l := n.ChildByFieldName("label"); l != nil {
			s.Label = c.text(l)
		}
		data = s
	case "continue_statement":
		s := &SContinue{}
		if l := n.ChildByFieldName("label"); l != nil {
			s.Label = c.text(l)
		}
		data = s
	case "labeled_statement":
		data = &SLabel{
			Name: c.text(n.ChildByFieldName("label")),
			Stmt: c.stmt(n.ChildByFieldName("body")),
		}
	case "empty_statement":
		data = &SEmpty{}
	case "debugger_statement":
		data = &SDebugger{}
	case "function_declaration", "generator_function_declaration":
		data = &SFunction{Fn: c.fn(n)}
	case "class_declaration":
		data = &SClass{Class: c.class(n)}
	default:
		data = &SRaw{Text: c.text(n)}
	}
	return Stmt{Data: data, Loc: loc}
}

func (c *converter) local(n *sitter.Node, kind LocalKind) *SLocal {
	s := &SLocal{Kind: kind}
	for _, ch := range c.named(n) {
		if ch.Type() != "variable_declarator" {
			continue
		}
		d := Decl{Binding: c.binding(ch.ChildByFieldName("name"))}
		if v := ch.ChildByFieldName("value"); v != nil {
			d.ValueOrNil = c.expr(v)
		}
		s.Decls = append(s.Decls, d)
	}
	return s
}

func (c *converter) forStmt(n *sitter.Node) *SFor {
	s := &SFor{Body: c.stmt(n.ChildByFieldName("body"))}
	if init := n.ChildByFieldName("initializer"); init != nil && init.IsNamed() {
		switch init.Type() {
		case "empty_statement":
		case "variable_declaration", "lexical_declaration":
			s.InitOrNil = c.stmt(init)
		case "expression_statement":
			s.InitOrNil = Stmt{Data: &SExpr{Value: c.expr(c.first(init))}, Loc: c.loc(init)}
		default:
			s.InitOrNil = Stmt{Data: &SExpr{Value: c.expr(init)}, Loc: c.loc(init)}
		}
	}
	if cond := n.ChildByFieldName("condition"); cond != nil && cond.IsNamed() {
		switch cond.Type() {
		case "empty_statement":
		case "expression_statement":
			s.TestOrNil = c.expr(c.first(cond))
		default:
			s.TestOrNil = c.expr(cond)
		}
	}
	if inc := n.ChildByFieldName("increment"); inc != nil {
		s.UpdateOrNil = c.expr(inc)
	}
	return s
}

func (c *converter) forInStmt(n *sitter.Node) S {
	left := n.ChildByFieldName("left")
	var init Stmt
	if k := n.ChildByFieldName("kind"); k != nil {
		kind := LocalVar
		switch c.text(k) {
		case "let":
			kind = LocalLet
		case "const":
			kind = LocalConst
		}
		init = Stmt{Data: &SLocal{Kind: kind, Decls: []Decl{{Binding: c.binding(left)}}}, Loc: c.loc(k)}
	} else {
		init = Stmt{Data: &SExpr{Value: c.assignTarget(left)}, Loc: c.loc(left)}
	}
	value := c.expr(n.ChildByFieldName("right"))
	body := c.stmt(n.ChildByFieldName("body"))
	if op := n.ChildByFieldName("operator"); op != nil && op.Type() == "of" {
		return &SForOf{Init: init, Value: value, Body: body, IsAwait: c.hasToken(n, "await", left)}
	}
	return &SForIn{Init: init, Value: value, Body: body}
}

func (c *converter) switchStmt(n *sitter.Node) *SSwitch {
	s := &SSwitch{Test: c.expr(n.ChildByFieldName("value"))}
	body := n.ChildByFieldName("body")
	if body == nil {
		return s
	}
	for _, ch := range c.named(body) {
		var cs Case
		value := ch.ChildByFieldName("value")
		if ch.Type() == "switch_case" && value != nil {
			cs.ValueOrNil = c.expr(value)
		}
		for _, st := range c.named(ch) {
			if value != nil && sameNode(st, value) {
				continue
			}
			cs.Body = append(cs.Body, c.stmt(st))
		}
		s.Cases = append(s.Cases, cs)
	}
	return s
}

func (c *converter) tryStmt(n *sitter.Node) *STry {
	s := &STry{Block: c.stmtList(n.ChildByFieldName("body"))}
	if h := n.ChildByFieldName("handler"); h != nil {
		catch := &Catch{Body: c.stmtList(h.ChildByFieldName("body"))}
		if p := h.ChildByFieldName("parameter"); p != nil {
			catch.BindingOrNil = c.binding(p)
		}
		s.CatchOrNil = catch
	}
	if f := n.ChildByFieldName("finalizer"); f != nil {
		s.HasFinally = true
		s.FinallyOrNil = c.stmtList(f.ChildByFieldName("body"))
	}
	return s
}

func (c *converter) fn(n *sitter.Node) Fn {
	f := Fn{}
	if name := n.ChildByFieldName("name"); name != nil {
		f.Name = &BIdentifier{Name: c.text(name)}
	}
	f.Args = c.params(n.ChildByFieldName("parameters"))
	body := n.ChildByFieldName("body")
	f.Body = c.stmtList(body)
	f.IsAsync = c.hasToken(n, "async", body)
	f.IsGenerator = c.hasToken(n, "*", body)
	return f
}

func (c *converter) params(n *sitter.Node) []Arg {
	if n == nil {
		return nil
	}
	var args []Arg
	for _, ch := range c.named(n) {
		switch ch.Type() {
		case "assignment_pattern":
			args = append(args, Arg{
				Binding:      c.binding(ch.ChildByFieldName("left")),
				DefaultOrNil: c.expr(ch.ChildByFieldName("right")),
			})
		case "rest_pattern":
			args = append(args, Arg{Binding: c.binding(c.first(ch)), IsRest: true})
		default:
			args = append(args, Arg{Binding: c.binding(ch)})
		}
	}
	return args
}

func (c *converter) class(n *sitter.Node) Class {
	cl := Class{}
	if name := n.ChildByFieldName("name"); name != nil {
		cl.Name = &BIdentifier{Name: c.text(name)}
	}
	for _, ch := range c.named(n) {
		if ch.Type() == "class_heritage" {
			cl.ExtendsOrNil = c.expr(c.first(ch))
		}
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return cl
	}
	for _, ch := range c.named(body) {
		switch ch.Type() {
		case "method_definition":
			cl.Properties = append(cl.Properties, c.method(ch))
		case "field_definition":
			prop := ch.ChildByFieldName("property")
			p := Property{Kind: PropertyField, IsStatic: c.hasToken(ch, "static", prop)}
			p.Key, p.IsComputed = c.propertyKey(prop)
			if v := ch.ChildByFieldName("value"); v != nil {
				p.ValueOrNil = c.expr(v)
			}
			cl.Properties = append(cl.Properties, p)
		case "class_static_block":
			p := Property{Kind: PropertyStaticBlock, IsStatic: true}
			for _, b := range c.named(ch) {
				if b.Type() == "statement_block" {
					p.Body = c.stmtList(b)
				}
			}
			cl.Properties = append(cl.Properties, p)
		default:
			cl.Properties = append(cl.Properties, Property{
				Kind: PropertyField,
				Key:  Expr{Data: &ERaw{Text: c.text(ch)}, Loc: c.loc(ch)},
			})
		}
	}
	return cl
}

func (c *converter) method(n *sitter.Node) Property {
	name := n.ChildByFieldName("name")
	p := Property{
		Kind:        PropertyMethod,
		IsStatic:    c.hasToken(n, "static", name),
		IsAsync:     c.hasToken(n, "async", name),
		IsGenerator: c.hasToken(n, "*", name),
	}
	switch {
	case c.hasToken(n, "get", name):
		p.Kind = PropertyGet
	case c.hasToken(n, "set", name):
		p.Kind = PropertySet
	}
	p.Key, p.IsComputed = c.propertyKey(name)
	fn := Fn{
		Args:        c.params(n.ChildByFieldName("parameters")),
		Body:        c.stmtList(n.ChildByFieldName("body")),
		IsAsync:     p.IsAsync,
		IsGenerator: p.IsGenerator,
	}
	p.ValueOrNil = Expr{Data: &EFunction{Fn: fn}, Loc: c.loc(n)}
	return p
}

func (c *converter) propertyKey(n *sitter.Node) (Expr, bool) {
	loc := c.loc(n)
	switch n.Type() {
	case "computed_property_name":
		return c.expr(c.first(n)), true
	case "string":
		if units, err := decodeString(c.text(n)); err == nil {
			return Expr{Data: &EString{Value: units}, Loc: loc}, false
		}
	case "number":
		return c.expr(n), false
	case "property_identifier", "identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern":
		return Expr{Data: &EString{Value: StringUnits(c.text(n))}, Loc: loc}, false
	case "private_property_identifier":
		return Expr{Data: &EPrivateName{Name: c.text(n)}, Loc: loc}, false
	}
	return Expr{Data: &ERaw{Text: c.text(n)}, Loc: loc}, false
}

func (c *converter) binding(n *sitter.Node) Binding {
	loc := c.loc(n)
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern", "undefined":
		return Binding{Data: &BIdentifier{Name: c.text(n)}, Loc: loc}
	case "object_pattern":
		b := &BObject{}
		for _, ch := range c.named(n) {
			b.Properties = append(b.Properties, c.propertyBinding(ch))
		}
		return Binding{Data: b, Loc: loc}
	case "array_pattern":
		b := &BArray{}
		c.eachElement(n, func(ch *sitter.Node) {
			if ch == nil {
				b.Items = append(b.Items, ArrayBinding{Binding: Binding{Data: &BMissing{}, Loc: loc}})
				return
			}
			switch ch.Type() {
			case "assignment_pattern":
				b.Items = append(b.Items, ArrayBinding{
					Binding:      c.binding(ch.ChildByFieldName("left")),
					DefaultOrNil: c.expr(ch.ChildByFieldName("right")),
				})
			case "rest_pattern":
				b.Items = append(b.Items, ArrayBinding{Binding: c.binding(c.first(ch)), IsSpread: true})
			default:
				b.Items = append(b.Items, ArrayBinding{Binding: c.binding(ch)})
			}
		})
		return Binding{Data: b, Loc: loc}
	}
	return Binding{Data: &BIdentifier{Name: c.text(n)}, Loc: loc}
}

func (c *converter) propertyBinding(n *sitter.Node) PropertyBinding {
	switch n.Type() {
	case "pair_pattern":
		p := PropertyBinding{}
		p.Key, p.IsComputed = c.propertyKey(n.ChildByFieldName("key"))
		value := n.ChildByFieldName("value")
		if value.Type() == "assignment_pattern" {
			p.Value = c.binding(value.ChildByFieldName("left"))
			p.DefaultOrNil = c.expr(value.ChildByFieldName("right"))
		} else {
			p.Value = c.binding(value)
		}
		return p
	case "object_assignment_pattern":
		left := n.ChildByFieldName("left")
		p := PropertyBinding{Value: c.binding(left), DefaultOrNil: c.expr(n.ChildByFieldName("right"))}
		p.Key, p.IsComputed = c.propertyKey(left)
		p.IsShorthand = left.Type() == "shorthand_property_identifier_pattern"
		return p
	case "rest_pattern":
		return PropertyBinding{Value: c.binding(c.first(n)), IsSpread: true}
	}
	p := PropertyBinding{Value: c.binding(n), IsShorthand: true}
	p.Key, _ = c.propertyKey(n)
	return p
}

// eachElement visits the elements of an array literal or pattern, passing
// nil for holes.
func (c *converter) eachElement(n *sitter.Node, visit func(*sitter.Node)) {
	expect := true
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		switch ch.Type() {
		case "[", "]", "comment":
		case ",":
			if expect {
				visit(nil)
			}
			expect = true
		default:
			visit(ch)
			expect = false
		}
	}
}

func (c *converter) expr(n *sitter.Node) Expr {
	if n == nil {
		return Expr{}
	}
	loc := c.loc(n)
	var data E

	switch n.Type() {
	case "parenthesized_expression":
		return c.expr(c.first(n))
	case "sequence_expression":
		var items []*sitter.Node
		c.flattenSequence(n, &items)
		out := c.expr(items[0])
		for _, item := range items[1:] {
			out = Expr{Data: &EBinary{Op: BinOpComma, Left: out, Right: c.expr(item)}, Loc: loc}
		}
		return out
	case "identifier", "undefined":
		data = &EIdentifier{Name: c.text(n)}
	case "number":
		raw := c.text(n)
		v, _ := numberValue(raw)
		data = &ENumber{Raw: raw, Value: v}
	case "string":
		units, err := decodeString(c.text(n))
		if err != nil {
			data = &ERaw{Text: c.text(n)}
		} else {
			data = &EString{Value: units}
		}
	case "template_string":
		data = c.template(n, Expr{})
	case "regex":
		data = &ERegExp{Value: c.text(n)}
	case "true":
		data = &EBoolean{Value: true}
	case "false":
		data = &EBoolean{Value: false}
	case "null":
		data = &ENull{}
	case "this":
		data = &EThis{}
	case "super":
		data = &ESuper{}
	case "array":
		a := &EArray{}
		c.eachElement(n, func(ch *sitter.Node) {
			if ch == nil {
				a.Items = append(a.Items, Expr{Data: &EMissing{}, Loc: loc})
				return
			}
			a.Items = append(a.Items, c.expr(ch))
		})
		data = a
	case "object":
		data = &EObject{Properties: c.properties(n)}
	case "function", "function_expression", "generator_function":
		data = &EFunction{Fn: c.fn(n)}
	case "arrow_function":
		data = c.arrow(n)
	case "class":
		data = &EClass{Class: c.class(n)}
	case "assignment_expression":
		data = &EBinary{
			Op:    BinOpAssign,
			Left:  c.assignTarget(n.ChildByFieldName("left")),
			Right: c.expr(n.ChildByFieldName("right")),
		}
	case "augmented_assignment_expression":
		op, ok := assignOps[n.ChildByFieldName("operator").Type()]
		if !ok {
			data = &ERaw{Text: c.text(n)}
			break
		}
		data = &EBinary{
			Op:    op,
			Left:  c.expr(n.ChildByFieldName("left")),
			Right: c.expr(n.ChildByFieldName("right")),
		}
	case "binary_expression":
		op, ok := binaryOps[n.ChildByFieldName("operator").Type()]
		if !ok {
			data = &ERaw{Text: c.text(n)}
			break
		}
		data = &EBinary{
			Op:    op,
			Left:  c.expr(n.ChildByFieldName("left")),
			Right: c.expr(n.ChildByFieldName("right")),
		}
	case "unary_expression":
		op, ok := prefixOps[n.ChildByFieldName("operator").Type()]
		if !ok {
			data = &ERaw{Text: c.text(n)}
			break
		}
		data = &EUnary{Op: op, Value: c.expr(n.ChildByFieldName("argument"))}
	case "update_expression":
		prefix := n.Child(0).Type()
		arg := c.expr(n.ChildByFieldName("argument"))
		switch {
		case prefix == "++":
			data = &EUnary{Op: UnOpPreInc, Value: arg}
		case prefix == "--":
			data = &EUnary{Op: UnOpPreDec, Value: arg}
		case c.hasToken(n, "++", nil):
			data = &EUnary{Op: UnOpPostInc, Value: arg}
		default:
			data = &EUnary{Op: UnOpPostDec, Value: arg}
		}
	case "ternary_expression":
		data = &EIf{
			Test: c.expr(n.ChildByFieldName("condition")),
			Yes:  c.expr(n.ChildByFieldName("consequence")),
			No:   c.expr(n.ChildByFieldName("alternative")),
		}
	case "call_expression":
		target := c.expr(n.ChildByFieldName("function"))
		args := n.ChildByFieldName("arguments")
		if args != nil && args.Type() == "template_string" {
			data = c.template(args, target)
			break
		}
		data = &ECall{Target: target, Args: c.arguments(args), OptionalChain: c.optional(n)}
	case "new_expression":
		data = &ENew{
			Target: c.expr(n.ChildByFieldName("constructor")),
			Args:   c.arguments(n.ChildByFieldName("arguments")),
		}
	case "member_expression":
		data = &EDot{
			Target:        c.expr(n.ChildByFieldName("object")),
			Name:          c.text(n.ChildByFieldName("property")),
			OptionalChain: c.optional(n),
		}
	case "subscript_expression":
		data = &EIndex{
			Target:        c.expr(n.ChildByFieldName("object")),
			Index:         c.expr(n.ChildByFieldName("index")),
			OptionalChain: c.optional(n),
		}
	case "await_expression":
		data = &EAwait{Value: c.expr(c.first(n))}
	case "yield_expression":
		y := &EYield{IsStar: c.hasToken(n, "*", nil)}
		if v := c.first(n); v != nil {
			y.ValueOrNil = c.expr(v)
		}
		data = y
	case "spread_element":
		data = &ESpread{Value: c.expr(c.first(n))}
	case "object_pattern", "array_pattern", "assignment_pattern":
		return c.assignTarget(n)
	default:
		data = &ERaw{Text: c.text(n)}
	}
	return Expr{Data: data, Loc: loc}
}

func (c *converter) flattenSequence(n *sitter.Node, out *[]*sitter.Node) {
	for _, ch := range c.named(n) {
		if ch.Type() == "sequence_expression" {
			c.flattenSequence(ch, out)
			continue
		}
		*out = append(*out, ch)
	}
}

func (c *converter) optional(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "optional_chain" {
			return true
		}
	}
	return false
}

func (c *converter) arguments(n *sitter.Node) []Expr {
	if n == nil {
		return nil
	}
	var args []Expr
	for _, ch := range c.named(n) {
		args = append(args, c.expr(ch))
	}
	return args
}

func (c *converter) arrow(n *sitter.Node) *EArrow {
	a := &EArrow{}
	if p := n.ChildByFieldName("parameter"); p != nil {
		a.Args = []Arg{{Binding: c.binding(p)}}
	} else {
		a.Args = c.params(n.ChildByFieldName("parameters"))
	}
	body := n.ChildByFieldName("body")
	a.IsAsync = c.hasToken(n, "async", body)
	if body.Type() == "statement_block" {
		a.Body = c.stmtList(body)
	} else {
		a.Body = []Stmt{{Data: &SReturn{ValueOrNil: c.expr(body)}, Loc: c.loc(body)}}
		a.PreferExpr = true
	}
	return a
}

func (c *converter) properties(n *sitter.Node) []Property {
	var props []Property
	for _, ch := range c.named(n) {
		switch ch.Type() {
		case "pair":
			p := Property{Kind: PropertyNormal, ValueOrNil: c.expr(ch.ChildByFieldName("value"))}
			p.Key, p.IsComputed = c.propertyKey(ch.ChildByFieldName("key"))
			props = append(props, p)
		case "shorthand_property_identifier":
			name := c.text(ch)
			props = append(props, Property{
				Key:         Expr{Data: &EString{Value: StringUnits(name)}, Loc: c.loc(ch)},
				ValueOrNil:  Expr{Data: &EIdentifier{Name: name}, Loc: c.loc(ch)},
				IsShorthand: true,
			})
		case "method_definition":
			props = append(props, c.method(ch))
		case "spread_element":
			props = append(props, Property{Kind: PropertySpread, ValueOrNil: c.expr(c.first(ch))})
		default:
			props = append(props, Property{Kind: PropertySpread, ValueOrNil: Expr{Data: &ERaw{Text: c.text(ch)}, Loc: c.loc(ch)}})
		}
	}
	return props
}

func (c *converter) template(n *sitter.Node, tag Expr) *ETemplate {
	t := &ETemplate{TagOrNil: tag}
	start, end := n.StartByte()+1, n.EndByte()-1
	pos := start
	for _, ch := range c.named(n) {
		if ch.Type() != "template_substitution" {
			continue
		}
		raw := string(c.src[pos:ch.StartByte()])
		if len(t.Parts) == 0 {
			t.HeadRaw = raw
		} else {
			t.Parts[len(t.Parts)-1].TailRaw = raw
		}
		t.Parts = append(t.Parts, TemplatePart{Value: c.expr(c.first(ch))})
		pos = ch.EndByte()
	}
	raw := string(c.src[pos:end])
	if len(t.Parts) == 0 {
		t.HeadRaw = raw
	} else {
		t.Parts[len(t.Parts)-1].TailRaw = raw
	}
	return t
}

// assignTarget converts the left side of an assignment, where destructuring
// patterns appear as array and object literals.
func (c *converter) assignTarget(n *sitter.Node) Expr {
	loc := c.loc(n)
	switch n.Type() {
	case "object_pattern":
		o := &EObject{}
		for _, ch := range c.named(n) {
			switch ch.Type() {
			case "pair_pattern":
				p := Property{ValueOrNil: c.assignTarget(ch.ChildByFieldName("value"))}
				p.Key, p.IsComputed = c.propertyKey(ch.ChildByFieldName("key"))
				o.Properties = append(o.Properties, p)
			case "object_assignment_pattern":
				left := ch.ChildByFieldName("left")
				p := Property{
					ValueOrNil: Expr{Data: &EBinary{
						Op:    BinOpAssign,
						Left:  c.assignTarget(left),
						Right: c.expr(ch.ChildByFieldName("right")),
					}, Loc: c.loc(ch)},
					IsShorthand: left.Type() == "shorthand_property_identifier_pattern",
				}
				p.Key, p.IsComputed = c.propertyKey(left)
				o.Properties = append(o.Properties, p)
			case "rest_pattern":
				o.Properties = append(o.Properties, Property{Kind: PropertySpread, ValueOrNil: c.assignTarget(c.first(ch))})
			default:
				p := Property{ValueOrNil: c.assignTarget(ch), IsShorthand: true}
				p.Key, _ = c.propertyKey(ch)
				o.Properties = append(o.Properties, p)
			}
		}
		return Expr{Data: o, Loc: loc}
	case "array_pattern":
		a := &EArray{}
		c.eachElement(n, func(ch *sitter.Node) {
			if ch == nil {
				a.Items = append(a.Items, Expr{Data: &EMissing{}, Loc: loc})
				return
			}
			a.Items = append(a.Items, c.assignTarget(ch))
		})
		return Expr{Data: a, Loc: loc}
	case "assignment_pattern":
		return Expr{Data: &EBinary{
			Op:    BinOpAssign,
			Left:  c.assignTarget(n.ChildByFieldName("left")),
			Right: c.expr(n.ChildByFieldName("right")),
		}, Loc: loc}
	case "rest_pattern":
		return Expr{Data: &ESpread{Value: c.assignTarget(c.first(n))}, Loc: loc}
	case "shorthand_property_identifier_pattern":
		return Expr{Data: &EIdentifier{Name: c.text(n)}, Loc: loc}
	}
	return c.expr(n)
}
