package js

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PrintOptions control the printer's output format.
type PrintOptions struct {
	// Beautify prints one statement per line with four-space indentation.
	Beautify bool
	// ASCIIOnly escapes every non-ASCII character.
	ASCIIOnly bool
	// Braces wraps single-statement bodies in a block.
	Braces bool
}

// DefaultPrintOptions enables every option.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{Beautify: true, ASCIIOnly: true, Braces: true}
}

// Print serializes prog.
func Print(prog *Program, opts PrintOptions) string {
	p := newPrinter(opts)
	p.stmts(prog.Stmts)
	return string(p.buf)
}

// PrintExpr serializes a single expression.
func PrintExpr(e Expr, opts PrintOptions) string {
	p := newPrinter(opts)
	p.expr(e, LLowest, 0)
	return string(p.buf)
}

type printFlags uint8

const (
	forbidCall printFlags = 1 << iota
	forbidIn
)

type printer struct {
	opts   PrintOptions
	buf    []byte
	indent int

	// Positions at which an expression starting with "{" or "function"
	// would be misparsed and must be parenthesized.
	stmtStart      int
	arrowExprStart int

	skipIndent bool
}

func newPrinter(opts PrintOptions) *printer {
	return &printer{opts: opts, stmtStart: -1, arrowExprStart: -1}
}

func (p *printer) print(s string) {
	p.buf = append(p.buf, s...)
}

func (p *printer) printSpace() {
	if p.opts.Beautify {
		p.buf = append(p.buf, ' ')
	}
}

func (p *printer) printNewline() {
	if p.opts.Beautify {
		p.buf = append(p.buf, '\n')
	}
}

func (p *printer) printIndent() {
	if p.skipIndent {
		p.skipIndent = false
		return
	}
	if !p.opts.Beautify {
		return
	}
	for i := 0; i < p.indent; i++ {
		p.buf = append(p.buf, "    "...)
	}
}

func (p *printer) printSemicolonAfterStatement() {
	p.print(";")
	p.printNewline()
}

func (p *printer) lastByte() byte {
	if len(p.buf) == 0 {
		return 0
	}
	return p.buf[len(p.buf)-1]
}

func (p *printer) printSpaceBeforeIdentifier() {
	c := p.lastByte()
	if c >= 0x80 || c == '_' || c == '$' || c == '\\' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		p.buf = append(p.buf, ' ')
	}
}

func (p *printer) printKeyword(kw string) {
	p.printSpaceBeforeIdentifier()
	p.print(kw)
}

// printOperator prints a punctuator, separating it from a preceding sign of
// the same kind so "a - -b" does not become "a--b".
func (p *printer) printOperator(op string) {
	last := p.lastByte()
	if (op[0] == '+' || op[0] == '-') && last == op[0] {
		p.buf = append(p.buf, ' ')
	}
	if op[0] == '/' && last == '/' {
		p.buf = append(p.buf, ' ')
	}
	p.print(op)
}

func (p *printer) printIdentifier(name string) {
	p.printSpaceBeforeIdentifier()
	if p.opts.ASCIIOnly {
		name = escapeNonASCII(name, true)
	}
	p.print(name)
}

func (p *printer) symbolName(name string, ref *Symbol) string {
	if ref != nil {
		return ref.Display()
	}
	return name
}

// Statements

func (p *printer) stmts(stmts []Stmt) {
	for _, s := range stmts {
		p.stmt(s)
	}
}

func (p *printer) block(stmts []Stmt) {
	p.print("{")
	if len(stmts) == 0 {
		p.print("}")
		return
	}
	p.printNewline()
	p.indent++
	p.stmts(stmts)
	p.indent--
	p.printIndent()
	p.print("}")
}

// body prints the body of a control statement. It reports whether the body
// ended in a closing brace.
func (p *printer) body(st Stmt, forceBlock bool) bool {
	if b, ok := st.Data.(*SBlock); ok {
		p.printSpace()
		p.block(b.Stmts)
		return true
	}
	if p.opts.Braces || forceBlock {
		p.printSpace()
		p.block([]Stmt{st})
		return true
	}
	p.printNewline()
	p.indent++
	if !p.opts.Beautify {
		p.printSpaceBeforeIdentifier()
	}
	p.stmt(st)
	p.indent--
	return false
}

func (p *printer) stmt(st Stmt) {
	switch s := st.Data.(type) {
	case *SExpr:
		p.printIndent()
		p.stmtStart = len(p.buf)
		p.expr(s.Value, LLowest, 0)
		p.printSemicolonAfterStatement()

	case *SLocal:
		p.printIndent()
		p.local(s, false)
		p.printSemicolonAfterStatement()

	case *SFunction:
		p.printIndent()
		p.fn(&s.Fn, "function")
		p.printNewline()

	case *SClass:
		p.printIndent()
		p.class(&s.Class)
		p.printNewline()

	case *SReturn:
		p.printIndent()
		p.printKeyword("return")
		if s.ValueOrNil.Data != nil {
			p.printSpace()
			p.expr(s.ValueOrNil, LLowest, 0)
		}
		p.printSemicolonAfterStatement()

	case *SThrow:
		p.printIndent()
		p.printKeyword("throw")
		p.printSpace()
		p.expr(s.Value, LLowest, 0)
		p.printSemicolonAfterStatement()

	case *SIf:
		p.printIndent()
		if p.ifStmt(s) {
			p.printNewline()
		}

	case *SBlock:
		p.printIndent()
		p.block(s.Stmts)
		p.printNewline()

	case *SFor:
		p.printIndent()
		p.printKeyword("for")
		p.printSpace()
		p.print("(")
		if s.InitOrNil.Data != nil {
			p.forInit(s.InitOrNil)
			p.print(";")
			p.printSpace()
		} else {
			p.print(";")
		}
		if s.TestOrNil.Data != nil {
			p.expr(s.TestOrNil, LLowest, 0)
			p.print(";")
			p.printSpace()
		} else {
			p.print(";")
		}
		if s.UpdateOrNil.Data != nil {
			p.expr(s.UpdateOrNil, LLowest, 0)
		}
		p.print(")")
		if p.body(s.Body, false) {
			p.printNewline()
		}

	case *SForIn:
		p.forInOf(s.Init, "in", s.Value, s.Body, false)

	case *SForOf:
		p.forInOf(s.Init, "of", s.Value, s.Body, s.IsAwait)

	case *SWhile:
		p.printIndent()
		p.printKeyword("while")
		p.printSpace()
		p.print("(")
		p.expr(s.Test, LLowest, 0)
		p.print(")")
		if p.body(s.Body, false) {
			p.printNewline()
		}

	case *SDoWhile:
		p.printIndent()
		p.printKeyword("do")
		if p.body(s.Body, false) {
			p.printSpace()
		} else {
			p.printIndent()
		}
		p.printKeyword("while")
		p.printSpace()
		p.print("(")
		p.expr(s.Test, LLowest, 0)
		p.print(")")
		p.printSemicolonAfterStatement()

	case *SWith:
		p.printIndent()
		p.printKeyword("with")
		p.printSpace()
		p.print("(")
		p.expr(s.Value, LLowest, 0)
		p.print(")")
		if p.body(s.Body, false) {
			p.printNewline()
		}

	case *SSwitch:
		p.printIndent()
		p.printKeyword("switch")
		p.printSpace()
		p.print("(")
		p.expr(s.Test, LLowest, 0)
		p.print(")")
		p.printSpace()
		p.print("{")
		p.printNewline()
		for _, c := range s.Cases {
			p.printIndent()
			if c.ValueOrNil.Data != nil {
				p.printKeyword("case")
				p.printSpace()
				p.expr(c.ValueOrNil, LLowest, 0)
			} else {
				p.printKeyword("default")
			}
			p.print(":")
			p.printNewline()
			p.indent++
			p.stmts(c.Body)
			p.indent--
		}
		p.printIndent()
		p.print("}")
		p.printNewline()

	case *STry:
		p.printIndent()
		p.printKeyword("try")
		p.printSpace()
		p.block(s.Block)
		if s.CatchOrNil != nil {
			p.printSpace()
			p.print("catch")
			p.printSpace()
			if s.CatchOrNil.BindingOrNil.Data != nil {
				p.print("(")
				p.binding(s.CatchOrNil.BindingOrNil)
				p.print(")")
				p.printSpace()
			}
			p.block(s.CatchOrNil.Body)
		}
		if s.HasFinally {
			p.printSpace()
			p.print("finally")
			p.printSpace()
			p.block(s.FinallyOrNil)
		}
		p.printNewline()

	case *SBreak:
		p.printIndent()
		p.printKeyword("break")
		if s.Label != "" {
			p.print(" ")
			p.printIdentifier(s.Label)
		}
		p.printSemicolonAfterStatement()

	case *SContinue:
		p.printIndent()
		p.printKeyword("continue")
		if s.Label != "" {
			p.print(" ")
			p.printIdentifier(s.Label)
		}
		p.printSemicolonAfterStatement()

	case *SLabel:
		p.printIndent()
		p.printIdentifier(s.Name)
		p.print(":")
		p.printSpace()
		p.skipIndent = true
		p.stmt(s.Stmt)

	case *SEmpty:
		p.printIndent()
		p.printSemicolonAfterStatement()

	case *SDebugger:
		p.printIndent()
		p.printKeyword("debugger")
		p.printSemicolonAfterStatement()

	case *SRaw:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print(s.Text)
		p.printNewline()
	}
}

// ifStmt prints an if statement and reports whether it ended in a closing
// brace.
func (p *printer) ifStmt(s *SIf) bool {
	p.printKeyword("if")
	p.printSpace()
	p.print("(")
	p.expr(s.Test, LLowest, 0)
	p.print(")")

	// Without braces a nested else-less if would capture our else.
	force := s.NoOrNil.Data != nil && endsWithOpenIf(s.Yes)
	closed := p.body(s.Yes, force)
	if s.NoOrNil.Data == nil {
		return closed
	}
	if closed {
		p.printSpace()
	} else {
		p.printIndent()
	}
	p.printKeyword("else")
	if elseIf, ok := s.NoOrNil.Data.(*SIf); ok {
		p.print(" ")
		return p.ifStmt(elseIf)
	}
	return p.body(s.NoOrNil, false)
}

func endsWithOpenIf(st Stmt) bool {
	for {
		switch s := st.Data.(type) {
		case *SIf:
			if s.NoOrNil.Data == nil {
				return true
			}
			st = s.NoOrNil
		case *SFor:
			st = s.Body
		case *SForIn:
			st = s.Body
		case *SForOf:
			st = s.Body
		case *SWhile:
			st = s.Body
		case *SWith:
			st = s.Body
		case *SLabel:
			st = s.Stmt
		default:
			return false
		}
	}
}

func (p *printer) forInit(init Stmt) {
	switch s := init.Data.(type) {
	case *SLocal:
		p.local(s, true)
	case *SExpr:
		p.expr(s.Value, LLowest, forbidIn)
	}
}

func (p *printer) forInOf(init Stmt, op string, value Expr, body Stmt, isAwait bool) {
	p.printIndent()
	p.printKeyword("for")
	if isAwait {
		p.print(" await")
	}
	p.printSpace()
	p.print("(")
	p.forInit(init)
	p.print(" ")
	p.print(op)
	p.print(" ")
	level := LLowest
	if op == "of" {
		level = LComma
	}
	p.expr(value, level, 0)
	p.print(")")
	if p.body(body, false) {
		p.printNewline()
	}
}

// local prints a declaration list. Outside a for header a list with several
// declarators puts each on its own line, aligned under the first.
func (p *printer) local(s *SLocal, inFor bool) {
	kind := s.Kind.String()
	p.printKeyword(kind)
	p.print(" ")
	flags := printFlags(0)
	if inFor {
		flags = forbidIn
	}
	multiline := p.opts.Beautify && !inFor && len(s.Decls) > 1
	for i, d := range s.Decls {
		if i > 0 {
			p.print(",")
			if multiline {
				p.printNewline()
				p.printIndent()
				p.print(strings.Repeat(" ", len(kind)+1))
			} else {
				p.printSpace()
			}
		}
		p.binding(d.Binding)
		if d.ValueOrNil.Data != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.expr(d.ValueOrNil, LComma, flags)
		}
	}
}

func (p *printer) fn(f *Fn, keyword string) {
	if f.IsAsync {
		p.printKeyword("async")
		p.print(" ")
	}
	p.printKeyword(keyword)
	if f.IsGenerator {
		p.print("*")
	}
	if f.Name != nil {
		p.printSpace()
		p.printIdentifier(p.symbolName(f.Name.Name, f.Name.Ref))
	}
	p.fnSignature(f.Args, f.Body)
}

func (p *printer) fnSignature(args []Arg, body []Stmt) {
	p.args(args)
	p.printSpace()
	p.block(body)
}

func (p *printer) args(args []Arg) {
	p.print("(")
	for i, a := range args {
		if i > 0 {
			p.print(",")
			p.printSpace()
		}
		if a.IsRest {
			p.print("...")
		}
		p.binding(a.Binding)
		if a.DefaultOrNil.Data != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.expr(a.DefaultOrNil, LComma, 0)
		}
	}
	p.print(")")
}

func (p *printer) class(c *Class) {
	p.printKeyword("class")
	if c.Name != nil {
		p.print(" ")
		p.printIdentifier(p.symbolName(c.Name.Name, c.Name.Ref))
	}
	if c.ExtendsOrNil.Data != nil {
		p.print(" extends")
		p.printSpace()
		p.expr(c.ExtendsOrNil, LNew-1, 0)
	}
	p.printSpace()
	p.print("{")
	if len(c.Properties) == 0 {
		p.print("}")
		return
	}
	p.printNewline()
	p.indent++
	for _, prop := range c.Properties {
		p.printIndent()
		p.property(prop)
		if prop.Kind == PropertyField {
			if _, raw := prop.Key.Data.(*ERaw); !raw {
				p.print(";")
			}
		}
		p.printNewline()
	}
	p.indent--
	p.printIndent()
	p.print("}")
}

func (p *printer) binding(b Binding) {
	switch d := b.Data.(type) {
	case *BIdentifier:
		p.printIdentifier(p.symbolName(d.Name, d.Ref))

	case *BMissing:

	case *BArray:
		p.print("[")
		for i, item := range d.Items {
			if i > 0 {
				p.print(",")
				p.printSpace()
			}
			if item.IsSpread {
				p.print("...")
			}
			p.binding(item.Binding)
			if item.DefaultOrNil.Data != nil {
				p.printSpace()
				p.print("=")
				p.printSpace()
				p.expr(item.DefaultOrNil, LComma, 0)
			}
		}
		if n := len(d.Items); n > 0 {
			if _, hole := d.Items[n-1].Binding.Data.(*BMissing); hole {
				p.print(",")
			}
		}
		p.print("]")

	case *BObject:
		if len(d.Properties) == 0 {
			p.print("{}")
			return
		}
		p.print("{")
		p.printSpace()
		for i, prop := range d.Properties {
			if i > 0 {
				p.print(",")
				p.printSpace()
			}
			if prop.IsSpread {
				p.print("...")
				p.binding(prop.Value)
				continue
			}
			shorthand := false
			if id, ok := prop.Value.Data.(*BIdentifier); ok && prop.IsShorthand && !prop.IsComputed {
				if key, ok := prop.Key.Data.(*EString); ok && StringValue(key.Value) == p.symbolName(id.Name, id.Ref) {
					shorthand = true
				}
			}
			if !shorthand {
				p.propertyKey(prop.Key, prop.IsComputed)
				p.print(":")
				p.printSpace()
			}
			p.binding(prop.Value)
			if prop.DefaultOrNil.Data != nil {
				p.printSpace()
				p.print("=")
				p.printSpace()
				p.expr(prop.DefaultOrNil, LComma, 0)
			}
		}
		p.printSpace()
		p.print("}")
	}
}

func (p *printer) propertyKey(key Expr, computed bool) {
	if computed {
		p.print("[")
		p.expr(key, LComma, 0)
		p.print("]")
		return
	}
	switch k := key.Data.(type) {
	case *EString:
		name := StringValue(k.Value)
		if isIdentifierName(name) && utf8.ValidString(name) && !hasLoneSurrogate(k.Value) {
			p.printIdentifier(name)
			return
		}
		p.print(quoteString(k.Value, p.opts.ASCIIOnly))
	case *ENumber:
		p.printSpaceBeforeIdentifier()
		p.print(k.Raw)
	default:
		p.expr(key, LLowest, 0)
	}
}

func (p *printer) property(prop Property) {
	if prop.Kind == PropertySpread {
		p.print("...")
		p.expr(prop.ValueOrNil, LComma, 0)
		return
	}
	if prop.Kind == PropertyStaticBlock {
		p.printKeyword("static")
		p.printSpace()
		p.block(prop.Body)
		return
	}
	if prop.IsStatic {
		p.printKeyword("static")
		p.print(" ")
	}

	if fn, ok := prop.ValueOrNil.Data.(*EFunction); ok {
		switch prop.Kind {
		case PropertyGet, PropertySet, PropertyMethod:
			switch prop.Kind {
			case PropertyGet:
				p.printKeyword("get")
				p.print(" ")
			case PropertySet:
				p.printKeyword("set")
				p.print(" ")
			}
			if fn.Fn.IsAsync {
				p.printKeyword("async")
				p.print(" ")
			}
			if fn.Fn.IsGenerator {
				p.print("*")
			}
			p.propertyKey(prop.Key, prop.IsComputed)
			p.fnSignature(fn.Fn.Args, fn.Fn.Body)
			return
		}
	}

	if prop.Kind == PropertyField {
		p.propertyKey(prop.Key, prop.IsComputed)
		if prop.ValueOrNil.Data != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.expr(prop.ValueOrNil, LComma, 0)
		}
		return
	}

	if prop.IsShorthand && !prop.IsComputed {
		if key, ok := prop.Key.Data.(*EString); ok {
			name := StringValue(key.Value)
			switch v := prop.ValueOrNil.Data.(type) {
			case *EIdentifier:
				if p.symbolName(v.Name, v.Ref) == name {
					p.printIdentifier(name)
					return
				}
			case *EBinary:
				if id, ok := v.Left.Data.(*EIdentifier); ok && v.Op == BinOpAssign && p.symbolName(id.Name, id.Ref) == name {
					p.printIdentifier(name)
					p.printSpace()
					p.print("=")
					p.printSpace()
					p.expr(v.Right, LComma, 0)
					return
				}
			}
		}
	}

	p.propertyKey(prop.Key, prop.IsComputed)
	p.print(":")
	p.printSpace()
	p.expr(prop.ValueOrNil, LComma, 0)
}

// Expressions

func (p *printer) expr(e Expr, level L, flags printFlags) {
	switch d := e.Data.(type) {
	case nil:

	case *EIdentifier:
		p.printIdentifier(p.symbolName(d.Name, d.Ref))

	case *ENumber:
		p.printSpaceBeforeIdentifier()
		p.print(d.Raw)

	case *EString:
		p.print(quoteString(d.Value, p.opts.ASCIIOnly))

	case *ETemplate:
		if d.TagOrNil.Data != nil {
			p.expr(d.TagOrNil, LPostfix, 0)
		}
		p.print("`")
		p.templateChunk(d.HeadRaw)
		for _, part := range d.Parts {
			p.print("${")
			p.expr(part.Value, LLowest, 0)
			p.print("}")
			p.templateChunk(part.TailRaw)
		}
		p.print("`")

	case *ERegExp:
		if p.lastByte() == '/' {
			p.print(" ")
		}
		value := d.Value
		if p.opts.ASCIIOnly {
			value = escapeNonASCII(value, false)
		}
		p.printSpaceBeforeIdentifier()
		p.print(value)

	case *EBoolean:
		if d.Value {
			p.printKeyword("true")
		} else {
			p.printKeyword("false")
		}

	case *ENull:
		p.printKeyword("null")

	case *EThis:
		p.printKeyword("this")

	case *ESuper:
		p.printKeyword("super")

	case *EMissing:

	case *EArray:
		p.print("[")
		for i, item := range d.Items {
			if i > 0 {
				p.print(",")
				if _, hole := item.Data.(*EMissing); !hole {
					p.printSpace()
				}
			}
			p.expr(item, LComma, 0)
		}
		if n := len(d.Items); n > 0 {
			if _, hole := d.Items[n-1].Data.(*EMissing); hole {
				p.print(",")
			}
		}
		p.print("]")

	case *EObject:
		wrap := p.stmtStart == len(p.buf) || p.arrowExprStart == len(p.buf)
		if wrap {
			p.print("(")
		}
		p.object(d)
		if wrap {
			p.print(")")
		}

	case *EFunction:
		wrap := p.stmtStart == len(p.buf)
		if wrap {
			p.print("(")
		}
		p.fn(&d.Fn, "function")
		if wrap {
			p.print(")")
		}

	case *EArrow:
		wrap := level >= LAssign
		if wrap {
			p.print("(")
		}
		if d.IsAsync {
			p.printKeyword("async")
			p.print(" ")
		}
		p.args(d.Args)
		p.printSpace()
		p.print("=>")
		p.printSpace()
		if ret, ok := singleReturn(d.Body); ok && d.PreferExpr {
			p.arrowExprStart = len(p.buf)
			p.expr(ret, LComma, flags&forbidIn)
		} else {
			p.block(d.Body)
		}
		if wrap {
			p.print(")")
		}

	case *EClass:
		wrap := p.stmtStart == len(p.buf)
		if wrap {
			p.print("(")
		}
		p.class(&d.Class)
		if wrap {
			p.print(")")
		}

	case *EUnary:
		entry := OpTable[d.Op]
		wrap := level >= entry.Level
		if wrap {
			p.print("(")
		}
		if d.Op.IsPrefix() {
			if entry.IsKeyword {
				p.printKeyword(entry.Text)
				p.print(" ")
			} else {
				p.printOperator(entry.Text)
			}
			p.expr(d.Value, LPrefix-1, 0)
		} else {
			p.expr(d.Value, LPostfix-1, 0)
			p.printOperator(entry.Text)
		}
		if wrap {
			p.print(")")
		}

	case *EBinary:
		p.binary(d, level, flags)

	case *EIf:
		wrap := level >= LConditional
		if wrap {
			p.print("(")
			flags &^= forbidIn
		}
		p.expr(d.Test, LConditional, flags&forbidIn)
		p.printSpace()
		p.print("?")
		p.printSpace()
		p.expr(d.Yes, LYield, 0)
		p.printSpace()
		p.print(":")
		p.printSpace()
		p.expr(d.No, LYield, flags&forbidIn)
		if wrap {
			p.print(")")
		}

	case *ECall:
		wrap := level >= LNew || flags&forbidCall != 0
		if wrap {
			p.print("(")
		}
		p.expr(d.Target, LPostfix, 0)
		if d.OptionalChain {
			p.print("?.")
		}
		p.callArgs(d.Args)
		if wrap {
			p.print(")")
		}

	case *ENew:
		wrap := level >= LCall
		if wrap {
			p.print("(")
		}
		p.printKeyword("new")
		p.print(" ")
		p.expr(d.Target, LNew, forbidCall)
		p.callArgs(d.Args)
		if wrap {
			p.print(")")
		}

	case *EDot:
		if num, ok := d.Target.Data.(*ENumber); ok && isDigits(num.Raw) {
			p.print("(")
			p.print(num.Raw)
			p.print(")")
		} else {
			p.expr(d.Target, LPostfix, flags&forbidCall)
		}
		if d.OptionalChain {
			p.print("?.")
		} else {
			p.print(".")
		}
		name := d.Name
		if p.opts.ASCIIOnly {
			name = escapeNonASCII(name, true)
		}
		p.print(name)

	case *EIndex:
		p.expr(d.Target, LPostfix, flags&forbidCall)
		if d.OptionalChain {
			p.print("?.")
		}
		p.print("[")
		p.expr(d.Index, LLowest, 0)
		p.print("]")

	case *ESpread:
		p.print("...")
		p.expr(d.Value, LComma, 0)

	case *EYield:
		wrap := level >= LAssign
		if wrap {
			p.print("(")
		}
		p.printKeyword("yield")
		if d.IsStar {
			p.print("*")
		}
		if d.ValueOrNil.Data != nil {
			p.print(" ")
			p.expr(d.ValueOrNil, LYield, 0)
		}
		if wrap {
			p.print(")")
		}

	case *EAwait:
		wrap := level >= LPrefix
		if wrap {
			p.print("(")
		}
		p.printKeyword("await")
		p.print(" ")
		p.expr(d.Value, LPrefix-1, 0)
		if wrap {
			p.print(")")
		}

	case *EPrivateName:
		p.print(d.Name)

	case *ERaw:
		p.printSpaceBeforeIdentifier()
		p.print(d.Text)
	}
}

func (p *printer) binary(e *EBinary, level L, flags printFlags) {
	entry := OpTable[e.Op]
	wrap := level >= entry.Level || e.Op == BinOpIn && flags&forbidIn != 0
	if wrap {
		p.print("(")
		flags &^= forbidIn
	}

	leftLevel := entry.Level - 1
	rightLevel := entry.Level - 1
	if e.Op.IsRightAssociative() {
		leftLevel = entry.Level
	}
	if e.Op.IsLeftAssociative() {
		rightLevel = entry.Level
	}

	switch e.Op {
	case BinOpPow:
		// "-a ** b" is a syntax error.
		if u, ok := e.Left.Data.(*EUnary); ok && u.Op.IsPrefix() {
			leftLevel = LPrefix
		}
	case BinOpNullishCoalescing:
		if isLogical(e.Left) {
			leftLevel = LPrefix
		}
		if isLogical(e.Right) {
			rightLevel = LPrefix
		}
	case BinOpLogicalOr, BinOpLogicalAnd:
		if isNullish(e.Left) {
			leftLevel = LPrefix
		}
		if isNullish(e.Right) {
			rightLevel = LPrefix
		}
	}

	p.expr(e.Left, leftLevel, flags&forbidIn)

	if e.Op == BinOpComma {
		p.print(",")
		p.printSpace()
	} else {
		p.printSpace()
		if entry.IsKeyword {
			p.printKeyword(entry.Text)
			p.print(" ")
		} else {
			p.printOperator(entry.Text)
			p.printSpace()
		}
	}

	p.expr(e.Right, rightLevel, flags&forbidIn)

	if wrap {
		p.print(")")
	}
}

func isLogical(e Expr) bool {
	b, ok := e.Data.(*EBinary)
	return ok && (b.Op == BinOpLogicalOr || b.Op == BinOpLogicalAnd)
}

func isNullish(e Expr) bool {
	b, ok := e.Data.(*EBinary)
	return ok && b.Op == BinOpNullishCoalescing
}

func (p *printer) callArgs(args []Expr) {
	p.print("(")
	for i, a := range args {
		if i > 0 {
			p.print(",")
			p.printSpace()
		}
		p.expr(a, LComma, 0)
	}
	p.print(")")
}

func (p *printer) object(o *EObject) {
	if len(o.Properties) == 0 {
		p.print("{}")
		return
	}
	p.print("{")
	p.printNewline()
	p.indent++
	for i, prop := range o.Properties {
		if i > 0 {
			p.print(",")
			p.printNewline()
		}
		p.printIndent()
		p.property(prop)
	}
	p.printNewline()
	p.indent--
	p.printIndent()
	p.print("}")
}

func (p *printer) templateChunk(raw string) {
	if p.opts.ASCIIOnly {
		raw = escapeNonASCII(raw, true)
	}
	p.print(raw)
}

func singleReturn(body []Stmt) (Expr, bool) {
	if len(body) != 1 {
		return Expr{}, false
	}
	ret, ok := body[0].Data.(*SReturn)
	if !ok || ret.ValueOrNil.Data == nil {
		return Expr{}, false
	}
	return ret.ValueOrNil, true
}

func hasLoneSurrogate(units []uint16) bool {
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xd800 && u <= 0xdbff {
			if i+1 < len(units) && units[i+1] >= 0xdc00 && units[i+1] <= 0xdfff {
				i++
				continue
			}
			return true
		}
		if u >= 0xdc00 && u <= 0xdfff {
			return true
		}
	}
	return false
}

// isIdentifierName reports whether s can be written as a bare property name.
func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) ||
			unicode.Is(unicode.Pc, r) || r == '\u200c' || r == '\u200d'):
		default:
			return false
		}
	}
	return true
}
