// Package js holds the JavaScript syntax tree used by the unbundler, together
// with a tree-sitter front end, scope resolution and a printer.
package js

// Loc is a source position. Line is 1-based, Column is a 0-based byte offset.
type Loc struct {
	Line   int
	Column int
}

// Program is a parsed source file or an assembled module.
type Program struct {
	Label string
	Stmts []Stmt
}

// Expr is an expression node. Data is nil when an optional expression is
// absent (fields named "OrNil").
type Expr struct {
	Data E
	Loc  Loc
}

// E is implemented by every expression node type.
type E interface{ isExpr() }

// Stmt is a statement node.
type Stmt struct {
	Data S
	Loc  Loc
}

// S is implemented by every statement node type.
type S interface{ isStmt() }

// Binding is a declaration target: an identifier or a destructuring pattern.
type Binding struct {
	Data B
	Loc  Loc
}

// B is implemented by every binding node type.
type B interface{ isBinding() }

type BIdentifier struct {
	Name string
	Ref  *Symbol
}

type BMissing struct{}

type ArrayBinding struct {
	Binding      Binding
	DefaultOrNil Expr
	IsSpread     bool
}

type BArray struct {
	Items []ArrayBinding
}

type PropertyBinding struct {
	Key          Expr
	Value        Binding
	DefaultOrNil Expr
	IsComputed   bool
	IsSpread     bool
	IsShorthand  bool
}

type BObject struct {
	Properties []PropertyBinding
}

func (*BIdentifier) isBinding() {}
func (*BMissing) isBinding()    {}
func (*BArray) isBinding()      {}
func (*BObject) isBinding()     {}

// Arg is a formal parameter.
type Arg struct {
	Binding      Binding
	DefaultOrNil Expr
	IsRest       bool
}

// Fn is the shared part of function declarations, expressions and methods.
type Fn struct {
	Name        *BIdentifier
	Args        []Arg
	Body        []Stmt
	IsAsync     bool
	IsGenerator bool
}

type PropertyKind uint8

const (
	PropertyNormal PropertyKind = iota
	PropertyGet
	PropertySet
	PropertyMethod
	PropertySpread
	PropertyField
	PropertyStaticBlock
)

// Property is an object literal member or a class member.
type Property struct {
	Kind        PropertyKind
	Key         Expr
	ValueOrNil  Expr
	IsComputed  bool
	IsStatic    bool
	IsShorthand bool
	IsAsync     bool
	IsGenerator bool
	// Body is the block of a PropertyStaticBlock.
	Body []Stmt
}

type Class struct {
	Name         *BIdentifier
	ExtendsOrNil Expr
	Properties   []Property
}

type EIdentifier struct {
	Name string
	Ref  *Symbol
}

// ENumber keeps the literal as written; Value is its numeric value.
type ENumber struct {
	Raw   string
	Value float64
}

// EString holds UTF-16 code units so lone surrogates survive a round trip.
type EString struct {
	Value []uint16
}

type TemplatePart struct {
	Value   Expr
	TailRaw string
}

type ETemplate struct {
	TagOrNil Expr
	HeadRaw  string
	Parts    []TemplatePart
}

type ERegExp struct{ Value string }

type EBoolean struct{ Value bool }

type ENull struct{}

type EThis struct{}

type ESuper struct{}

type EMissing struct{}

type EArray struct {
	Items []Expr
}

type EObject struct {
	Properties []Property
}

type EFunction struct{ Fn Fn }

// EArrow bodies are always statements; an expression body is stored as a
// single return statement with PreferExpr set.
type EArrow struct {
	Args       []Arg
	Body       []Stmt
	IsAsync    bool
	PreferExpr bool
}

type EClass struct{ Class Class }

type EUnary struct {
	Op    OpCode
	Value Expr
}

type EBinary struct {
	Op    OpCode
	Left  Expr
	Right Expr
}

// EIf is the conditional operator a ? b : c.
type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

type ECall struct {
	Target        Expr
	Args          []Expr
	OptionalChain bool
}

type ENew struct {
	Target Expr
	Args   []Expr
}

type EDot struct {
	Target        Expr
	Name          string
	OptionalChain bool
}

type EIndex struct {
	Target        Expr
	Index         Expr
	OptionalChain bool
}

type ESpread struct{ Value Expr }

type EYield struct {
	ValueOrNil Expr
	IsStar     bool
}

type EAwait struct{ Value Expr }

// EPrivateName is a #name class member key.
type EPrivateName struct{ Name string }

// ERaw is source text the converter keeps verbatim.
type ERaw struct{ Text string }

func (*EIdentifier) isExpr()  {}
func (*ENumber) isExpr()      {}
func (*EString) isExpr()      {}
func (*ETemplate) isExpr()    {}
func (*ERegExp) isExpr()      {}
func (*EBoolean) isExpr()     {}
func (*ENull) isExpr()        {}
func (*EThis) isExpr()        {}
func (*ESuper) isExpr()       {}
func (*EMissing) isExpr()     {}
func (*EArray) isExpr()       {}
func (*EObject) isExpr()      {}
func (*EFunction) isExpr()    {}
func (*EArrow) isExpr()       {}
func (*EClass) isExpr()       {}
func (*EUnary) isExpr()       {}
func (*EBinary) isExpr()      {}
func (*EIf) isExpr()          {}
func (*ECall) isExpr()        {}
func (*ENew) isExpr()         {}
func (*EDot) isExpr()         {}
func (*EIndex) isExpr()       {}
func (*ESpread) isExpr()      {}
func (*EYield) isExpr()       {}
func (*EAwait) isExpr()       {}
func (*EPrivateName) isExpr() {}
func (*ERaw) isExpr()         {}

type LocalKind uint8

const (
	LocalVar LocalKind = iota
	LocalLet
	LocalConst
)

func (k LocalKind) String() string {
	switch k {
	case LocalLet:
		return "let"
	case LocalConst:
		return "const"
	}
	return "var"
}

type Decl struct {
	Binding    Binding
	ValueOrNil Expr
}

type SLocal struct {
	Kind  LocalKind
	Decls []Decl
}

type SExpr struct{ Value Expr }

type SFunction struct{ Fn Fn }

type SClass struct{ Class Class }

type SReturn struct{ ValueOrNil Expr }

type SThrow struct{ Value Expr }

type SIf struct {
	Test    Expr
	Yes     Stmt
	NoOrNil Stmt
}

type SBlock struct{ Stmts []Stmt }

type SFor struct {
	InitOrNil   Stmt
	TestOrNil   Expr
	UpdateOrNil Expr
	Body        Stmt
}

type SForIn struct {
	Init  Stmt
	Value Expr
	Body  Stmt
}

type SForOf struct {
	Init    Stmt
	Value   Expr
	Body    Stmt
	IsAwait bool
}

type SWhile struct {
	Test Expr
	Body Stmt
}

type SDoWhile struct {
	Body Stmt
	Test Expr
}

type SWith struct {
	Value Expr
	Body  Stmt
}

type Case struct {
	ValueOrNil Expr
	Body       []Stmt
}

type SSwitch struct {
	Test  Expr
	Cases []Case
}

type Catch struct {
	BindingOrNil Binding
	Body         []Stmt
}

type STry struct {
	Block        []Stmt
	CatchOrNil   *Catch
	FinallyOrNil []Stmt
	HasFinally   bool
}

type SBreak struct{ Label string }

type SContinue struct{ Label string }

type SLabel struct {
	Name string
	Stmt Stmt
}

type SEmpty struct{}

type SDebugger struct{}

// SRaw is a statement the converter keeps verbatim (imports, exports).
type SRaw struct{ Text string }

func (*SLocal) isStmt()    {}
func (*SExpr) isStmt()     {}
func (*SFunction) isStmt() {}
func (*SClass) isStmt()    {}
func (*SReturn) isStmt()   {}
func (*SThrow) isStmt()    {}
func (*SIf) isStmt()       {}
func (*SBlock) isStmt()    {}
func (*SFor) isStmt()      {}
func (*SForIn) isStmt()    {}
func (*SForOf) isStmt()    {}
func (*SWhile) isStmt()    {}
func (*SDoWhile) isStmt()  {}
func (*SWith) isStmt()     {}
func (*SSwitch) isStmt()   {}
func (*STry) isStmt()      {}
func (*SBreak) isStmt()    {}
func (*SContinue) isStmt() {}
func (*SLabel) isStmt()    {}
func (*SEmpty) isStmt()    {}
func (*SDebugger) isStmt() {}
func (*SRaw) isStmt()      {}

// StringValue converts UTF-16 code units to a Go string. Lone surrogates
// become U+FFFD.
func StringValue(units []uint16) string {
	return string(utf16Decode(units))
}

// StringUnits converts a Go string to UTF-16 code units.
func StringUnits(s string) []uint16 {
	return utf16Encode([]rune(s))
}

// IsUndefined reports whether e is the identifier undefined or void applied
// to a side-effect free literal.
func IsUndefined(e Expr) bool {
	switch d := e.Data.(type) {
	case *EIdentifier:
		return d.Name == "undefined" && d.Ref == nil
	case *EUnary:
		return d.Op == UnOpVoid && IsPrimitiveLiteral(d.Value)
	}
	return false
}

// IsPrimitiveLiteral reports whether e is a literal with no side effects.
func IsPrimitiveLiteral(e Expr) bool {
	switch e.Data.(type) {
	case *ENumber, *EString, *EBoolean, *ENull:
		return true
	}
	return false
}
