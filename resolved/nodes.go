package resolved

// Node is any element of a resolved syntax tree.
type Node interface {
	node()
}

// Expr is an expression node. Every expression carries its resolved type
// and the boxing conversion the front end decided on.
type Expr interface {
	Node
	Info() *ExprInfo
}

type Stmt interface {
	Node
	stmt()
}

// Decl is a member of a type body.
type Decl interface {
	Node
	decl()
}

type ExprInfo struct {
	Type     *Type `json:"type,omitempty"`
	Boxing   bool  `json:"boxing,omitempty"`
	Unboxing bool  `json:"unboxing,omitempty"`
}

func (i *ExprInfo) Info() *ExprInfo { return i }

// ----------------------------------------------------------------------------
// Declarations

type Import struct {
	Name     string `json:"name"`
	OnDemand bool   `json:"onDemand,omitempty"`
	Static   bool   `json:"static,omitempty"`
	Package  bool   `json:"package,omitempty"` // Name denotes a package
	Type     *Type  `json:"ref,omitempty"`     // resolved single-type import
}

// TypeDecl declares a class, interface, enum, local or anonymous type.
// Imports are only set on top-level declarations.
type TypeDecl struct {
	Type      *Type           `json:"type"`
	Imports   []Import        `json:"imports,omitempty"`
	Constants []*EnumConstant `json:"constants,omitempty"`
	Body      []Decl          `json:"body,omitempty"`
}

type FieldDecl struct {
	Static bool       `json:"static,omitempty"`
	Vars   []*VarFrag `json:"vars"`
}

// MethodDecl declares a method or constructor. Body is nil for abstract and
// native methods.
type MethodDecl struct {
	Method *Method     `json:"method"`
	Params []*Variable `json:"params,omitempty"`
	Body   *Block      `json:"body,omitempty"`
}

type Initializer struct {
	Static bool   `json:"static,omitempty"`
	Body   *Block `json:"body"`
}

type EnumConstant struct {
	Var  *Variable `json:"var"`
	Ctor *Method   `json:"ctor,omitempty"`
	Args []Expr    `json:"args,omitempty"`
	Body *TypeDecl `json:"body,omitempty"`
}

// VarFrag declares one variable, optionally initialized.
type VarFrag struct {
	Var  *Variable `json:"var"`
	Init Expr      `json:"init,omitempty"`
}

// ----------------------------------------------------------------------------
// Statements

type Block struct {
	Stmts []Stmt `json:"stmts,omitempty"`
}

type LocalVar struct {
	Vars []*VarFrag `json:"vars"`
}

type LocalType struct {
	Decl *TypeDecl `json:"decl"`
}

type ExprStmt struct {
	X Expr `json:"x"`
}

type If struct {
	Cond Expr `json:"cond"`
	Then Stmt `json:"then"`
	Else Stmt `json:"else,omitempty"`
}

type While struct {
	Cond Expr `json:"cond"`
	Body Stmt `json:"body"`
}

type DoWhile struct {
	Body Stmt `json:"body"`
	Cond Expr `json:"cond"`
}

// For is a classic for loop. Init holds either one *LocalVar or expressions.
type For struct {
	Init   []Node `json:"init,omitempty"`
	Cond   Expr   `json:"cond,omitempty"`
	Update []Expr `json:"update,omitempty"`
	Body   Stmt   `json:"body"`
}

// ForEach is an enhanced for loop. Elem is the erased element type
// produced by the iterable (or the array component type).
type ForEach struct {
	Var  *Variable `json:"var"`
	X    Expr      `json:"x"`
	Elem *Type     `json:"elem,omitempty"`
	Body Stmt      `json:"body"`
}

type Labeled struct {
	Label string `json:"label"`
	Body  Stmt   `json:"body"`
}

type Break struct {
	Label string `json:"label,omitempty"`
}

type Continue struct {
	Label string `json:"label,omitempty"`
}

type Return struct {
	X Expr `json:"x,omitempty"`
}

type Throw struct {
	X Expr `json:"x"`
}

type Try struct {
	Resources []*LocalVar `json:"resources,omitempty"`
	Body      *Block      `json:"body"`
	Catches   []*Catch    `json:"catches,omitempty"`
	Finally   *Block      `json:"finally,omitempty"`
}

// Catch has more than one type for multi-catch clauses.
type Catch struct {
	Param *Variable `json:"param"`
	Types []*Type   `json:"types"`
	Body  *Block    `json:"body"`
}

// Switch holds case labels and statements flattened in source order.
type Switch struct {
	Tag  Expr   `json:"tag"`
	Body []Stmt `json:"body,omitempty"`
}

type Case struct {
	Values  []Expr `json:"values,omitempty"`
	Default bool   `json:"default,omitempty"`
}

type Synchronized struct {
	Lock Expr   `json:"lock"`
	Body *Block `json:"body"`
}

// CtorCall is an explicit this(...) or super(...) constructor invocation.
type CtorCall struct {
	Super  bool    `json:"super,omitempty"`
	Method *Method `json:"method,omitempty"`
	Args   []Expr  `json:"args,omitempty"`
}

type Empty struct{}

// ----------------------------------------------------------------------------
// Expressions

type LitKind string

const (
	IntLit    LitKind = "int"
	LongLit   LitKind = "long"
	FloatLit  LitKind = "float"
	DoubleLit LitKind = "double"
	CharLit   LitKind = "char"
	StringLit LitKind = "string"
	BoolLit   LitKind = "boolean"
	NullLit   LitKind = "null"
)

// Literal keeps the source token in Value, quotes and suffixes included.
type Literal struct {
	ExprInfo
	Kind  LitKind `json:"lit"`
	Value string  `json:"value"`
}

// Name is a simple or qualified name. It refers to a variable (Var) or,
// in receiver and qualifier position, to a type (Ref). A Name with neither
// denotes a package.
type Name struct {
	ExprInfo
	Ident     string    `json:"ident"`
	Var       *Variable `json:"var,omitempty"`
	Ref       *Type     `json:"ref,omitempty"`
	Qualifier Expr      `json:"qualifier,omitempty"`
}

type FieldAccess struct {
	ExprInfo
	X     Expr      `json:"x,omitempty"`
	Field *Variable `json:"field"`
	Super bool      `json:"super,omitempty"`
}

// Infix is a binary operation; More holds extended operands of the same
// operator, folded left.
type Infix struct {
	ExprInfo
	Op   string `json:"op"`
	X    Expr   `json:"x"`
	Y    Expr   `json:"y"`
	More []Expr `json:"more,omitempty"`
}

type Prefix struct {
	ExprInfo
	Op string `json:"op"`
	X  Expr   `json:"x"`
}

type Postfix struct {
	ExprInfo
	Op string `json:"op"`
	X  Expr   `json:"x"`
}

type Assign struct {
	ExprInfo
	Op  string `json:"op"`
	Lhs Expr   `json:"lhs"`
	Rhs Expr   `json:"rhs"`
}

// Call is a method invocation. Recv is nil for unqualified calls.
type Call struct {
	ExprInfo
	Recv   Expr    `json:"recv,omitempty"`
	Super  bool    `json:"super,omitempty"`
	Method *Method `json:"method"`
	Args   []Expr  `json:"args,omitempty"`
}

// New creates an instance of Class. When Body is set the instance is of the
// anonymous type Body.Type whose superclass or interface is Class.
type New struct {
	ExprInfo
	Class *Type     `json:"class"`
	Outer Expr      `json:"outer,omitempty"`
	Ctor  *Method   `json:"ctor,omitempty"`
	Args  []Expr    `json:"args,omitempty"`
	Body  *TypeDecl `json:"body,omitempty"`
}

type NewArray struct {
	ExprInfo
	Dims []Expr     `json:"dims,omitempty"`
	Init *ArrayInit `json:"init,omitempty"`
}

type ArrayInit struct {
	ExprInfo
	Elems []Expr `json:"elems,omitempty"`
}

type Index struct {
	ExprInfo
	X     Expr `json:"x"`
	Index Expr `json:"index"`
}

type Cast struct {
	ExprInfo
	To *Type `json:"to"`
	X  Expr  `json:"x"`
}

type InstanceOf struct {
	ExprInfo
	X  Expr  `json:"x"`
	Of *Type `json:"of"`
}

type Conditional struct {
	ExprInfo
	Cond Expr `json:"cond"`
	Then Expr `json:"then"`
	Else Expr `json:"else"`
}

// This is `this` or, with a Qualifier, `Outer.this`.
type This struct {
	ExprInfo
	Qualifier *Type `json:"qualifier,omitempty"`
}

type Paren struct {
	ExprInfo
	X Expr `json:"x"`
}

// TypeLit is a class literal such as String.class.
type TypeLit struct {
	ExprInfo
	Of *Type `json:"of"`
}

// Unsupported stands for any node kind the generator does not know how to
// lower. It is valid in declaration, statement and expression position.
type Unsupported struct {
	ExprInfo
	Kind string `json:"-"`
}

func (*TypeDecl) node()     {}
func (*FieldDecl) node()    {}
func (*MethodDecl) node()   {}
func (*Initializer) node()  {}
func (*EnumConstant) node() {}
func (*VarFrag) node()      {}
func (*Catch) node()        {}

func (*Block) node()        {}
func (*LocalVar) node()     {}
func (*LocalType) node()    {}
func (*ExprStmt) node()     {}
func (*If) node()           {}
func (*While) node()        {}
func (*DoWhile) node()      {}
func (*For) node()          {}
func (*ForEach) node()      {}
func (*Labeled) node()      {}
func (*Break) node()        {}
func (*Continue) node()     {}
func (*Return) node()       {}
func (*Throw) node()        {}
func (*Try) node()          {}
func (*Switch) node()       {}
func (*Case) node()         {}
func (*Synchronized) node() {}
func (*CtorCall) node()     {}
func (*Empty) node()        {}

func (*Literal) node()     {}
func (*Name) node()        {}
func (*FieldAccess) node() {}
func (*Infix) node()       {}
func (*Prefix) node()      {}
func (*Postfix) node()     {}
func (*Assign) node()      {}
func (*Call) node()        {}
func (*New) node()         {}
func (*NewArray) node()    {}
func (*ArrayInit) node()   {}
func (*Index) node()       {}
func (*Cast) node()        {}
func (*InstanceOf) node()  {}
func (*Conditional) node() {}
func (*This) node()        {}
func (*Paren) node()       {}
func (*TypeLit) node()     {}
func (*Unsupported) node() {}

func (*TypeDecl) decl()    {}
func (*FieldDecl) decl()   {}
func (*MethodDecl) decl()  {}
func (*Initializer) decl() {}
func (*Unsupported) decl() {}

func (*Block) stmt()        {}
func (*LocalVar) stmt()     {}
func (*LocalType) stmt()    {}
func (*ExprStmt) stmt()     {}
func (*If) stmt()           {}
func (*While) stmt()        {}
func (*DoWhile) stmt()      {}
func (*For) stmt()          {}
func (*ForEach) stmt()      {}
func (*Labeled) stmt()      {}
func (*Break) stmt()        {}
func (*Continue) stmt()     {}
func (*Return) stmt()       {}
func (*Throw) stmt()        {}
func (*Try) stmt()          {}
func (*Switch) stmt()       {}
func (*Case) stmt()         {}
func (*Synchronized) stmt() {}
func (*CtorCall) stmt()     {}
func (*Empty) stmt()        {}
func (*Unsupported) stmt()  {}
