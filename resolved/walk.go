package resolved

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a resolved tree in depth-first source order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *TypeDecl:
		for _, c := range n.Constants {
			Walk(v, c)
		}
		for _, d := range n.Body {
			Walk(v, d)
		}
	case *FieldDecl:
		for _, f := range n.Vars {
			Walk(v, f)
		}
	case *MethodDecl:
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *Initializer:
		Walk(v, n.Body)
	case *EnumConstant:
		walkExprs(v, n.Args)
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *VarFrag:
		if n.Init != nil {
			Walk(v, n.Init)
		}
	case *Catch:
		Walk(v, n.Body)

	case *Block:
		for _, s := range n.Stmts {
			Walk(v, s)
		}
	case *LocalVar:
		for _, f := range n.Vars {
			Walk(v, f)
		}
	case *LocalType:
		Walk(v, n.Decl)
	case *ExprStmt:
		Walk(v, n.X)
	case *If:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *While:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *DoWhile:
		Walk(v, n.Body)
		Walk(v, n.Cond)
	case *For:
		for _, i := range n.Init {
			Walk(v, i)
		}
		if n.Cond != nil {
			Walk(v, n.Cond)
		}
		walkExprs(v, n.Update)
		Walk(v, n.Body)
	case *ForEach:
		Walk(v, n.X)
		Walk(v, n.Body)
	case *Labeled:
		Walk(v, n.Body)
	case *Return:
		if n.X != nil {
			Walk(v, n.X)
		}
	case *Throw:
		Walk(v, n.X)
	case *Try:
		for _, r := range n.Resources {
			Walk(v, r)
		}
		Walk(v, n.Body)
		for _, c := range n.Catches {
			Walk(v, c)
		}
		if n.Finally != nil {
			Walk(v, n.Finally)
		}
	case *Switch:
		Walk(v, n.Tag)
		for _, s := range n.Body {
			Walk(v, s)
		}
	case *Case:
		walkExprs(v, n.Values)
	case *Synchronized:
		Walk(v, n.Lock)
		Walk(v, n.Body)
	case *CtorCall:
		walkExprs(v, n.Args)

	case *Name:
		if n.Qualifier != nil {
			Walk(v, n.Qualifier)
		}
	case *FieldAccess:
		if n.X != nil {
			Walk(v, n.X)
		}
	case *Infix:
		Walk(v, n.X)
		Walk(v, n.Y)
		walkExprs(v, n.More)
	case *Prefix:
		Walk(v, n.X)
	case *Postfix:
		Walk(v, n.X)
	case *Assign:
		Walk(v, n.Lhs)
		Walk(v, n.Rhs)
	case *Call:
		if n.Recv != nil {
			Walk(v, n.Recv)
		}
		walkExprs(v, n.Args)
	case *New:
		if n.Outer != nil {
			Walk(v, n.Outer)
		}
		walkExprs(v, n.Args)
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *NewArray:
		walkExprs(v, n.Dims)
		if n.Init != nil {
			Walk(v, n.Init)
		}
	case *ArrayInit:
		walkExprs(v, n.Elems)
	case *Index:
		Walk(v, n.X)
		Walk(v, n.Index)
	case *Cast:
		Walk(v, n.X)
	case *InstanceOf:
		Walk(v, n.X)
	case *Conditional:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)
	case *Paren:
		Walk(v, n.X)
	}

	v.Visit(nil)
}

func walkExprs(v Visitor, list []Expr) {
	for _, e := range list {
		Walk(v, e)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses node like Walk, calling f for each node. Children are
// skipped when f returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
