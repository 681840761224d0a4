// internal/syntree/syntree.go
package syntree

import "github.com/JunsuLime/CMinusCompiler/internal/symtab"

// MaxChildren is the number of ordered child slots per node.
const MaxChildren = 3

// NodeClass groups the node kinds the way the tree walkers dispatch on
// them.
type NodeClass int

const (
	StmtClass NodeClass = iota
	ExpClass
	DeclClass
	ParamClass
	TypeClass
)

// NodeKind is the single discriminator for every node variant.
type NodeKind int

const (
	// Statements
	CompoundK NodeKind = iota
	IfK
	IterK
	ReturnK

	// Expressions
	ConstK
	IdK
	ArrIdK
	CallK
	OpK
	AssignK

	// Declarations
	VarK
	ArrVarK
	FuncK

	// Parameters
	ParamK
	ArrParamK

	// Types
	TypeNameK
)

// Class returns the walker-level grouping of the kind.
func (k NodeKind) Class() NodeClass {
	switch k {
	case CompoundK, IfK, IterK, ReturnK:
		return StmtClass
	case ConstK, IdK, ArrIdK, CallK, OpK, AssignK:
		return ExpClass
	case VarK, ArrVarK, FuncK:
		return DeclClass
	case ParamK, ArrParamK:
		return ParamClass
	default:
		return TypeClass
	}
}

// Op is a binary operator.
type Op int

const (
	Plus Op = iota
	Minus
	Times
	Over
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
)

func (o Op) String() string {
	switch o {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Times:
		return "*"
	case Over:
		return "/"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case Eq:
		return "=="
	default:
		return "!="
	}
}

// Node is one syntax-tree node. Children are positional and any slot
// may be nil; Sibling links peers into an ordered list (statements in a
// block, top-level declarations, actual arguments of a call). Scope is
// stamped by the analyzer on the compound node that introduces a scope.
type Node struct {
	Kind     NodeKind
	Lineno   int
	Children [MaxChildren]*Node
	Sibling  *Node

	Name string         // Id, ArrId, Call, declarations, parameters
	Val  int            // Const value; ArrVar element count
	Op   Op             // Op nodes
	Type symtab.ExpType // TypeName nodes; element type on ArrId

	Scope *symtab.Scope
}

// Link chains the given nodes as siblings and returns the head.
func Link(nodes ...*Node) *Node {
	var head, tail *Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if head == nil {
			head = n
		} else {
			tail.Sibling = n
		}
		tail = n
	}
	return head
}

// Compound block: child 0 holds the local declarations, child 1 the
// statement list.
func NewCompound(lineno int, decls, stmts *Node) *Node {
	return &Node{Kind: CompoundK, Lineno: lineno, Children: [MaxChildren]*Node{decls, stmts}}
}

// If statement: condition, then branch, optional else branch.
func NewIf(lineno int, cond, then, els *Node) *Node {
	return &Node{Kind: IfK, Lineno: lineno, Children: [MaxChildren]*Node{cond, then, els}}
}

// Iter is the while-style loop: condition and body.
func NewIter(lineno int, cond, body *Node) *Node {
	return &Node{Kind: IterK, Lineno: lineno, Children: [MaxChildren]*Node{cond, body}}
}

// Return statement; value may be nil.
func NewReturn(lineno int, value *Node) *Node {
	return &Node{Kind: ReturnK, Lineno: lineno, Children: [MaxChildren]*Node{value}}
}

// Integer literal.
func NewConst(lineno, val int) *Node {
	return &Node{Kind: ConstK, Lineno: lineno, Val: val}
}

// Plain identifier use.
func NewId(lineno int, name string) *Node {
	return &Node{Kind: IdK, Lineno: lineno, Name: name}
}

// Subscripted identifier use: name[index]. Element access always yields
// an integer, which the front end records on the node.
func NewArrId(lineno int, name string, index *Node) *Node {
	return &Node{Kind: ArrIdK, Lineno: lineno, Name: name, Type: symtab.Integer,
		Children: [MaxChildren]*Node{index}}
}

// Call expression; args is the sibling-linked actual list (may be nil).
func NewCall(lineno int, name string, args *Node) *Node {
	return &Node{Kind: CallK, Lineno: lineno, Name: name, Children: [MaxChildren]*Node{args}}
}

// Binary operation.
func NewOp(lineno int, op Op, left, right *Node) *Node {
	return &Node{Kind: OpK, Lineno: lineno, Op: op, Children: [MaxChildren]*Node{left, right}}
}

// Assignment; lhs is an Id or ArrId node.
func NewAssign(lineno int, lhs, rhs *Node) *Node {
	return &Node{Kind: AssignK, Lineno: lineno, Children: [MaxChildren]*Node{lhs, rhs}}
}

// Scalar variable declaration; child 0 is the TypeName node.
func NewVarDecl(lineno int, name string, typ *Node) *Node {
	return &Node{Kind: VarK, Lineno: lineno, Name: name, Children: [MaxChildren]*Node{typ}}
}

// Array variable declaration of size elements.
func NewArrVarDecl(lineno int, name string, typ *Node, size int) *Node {
	return &Node{Kind: ArrVarK, Lineno: lineno, Name: name, Val: size,
		Children: [MaxChildren]*Node{typ}}
}

// Function declaration: child 0 is the return TypeName, child 1 the
// sibling-linked parameter list, child 2 the body compound.
func NewFuncDecl(lineno int, name string, typ, params, body *Node) *Node {
	return &Node{Kind: FuncK, Lineno: lineno, Name: name,
		Children: [MaxChildren]*Node{typ, params, body}}
}

// Scalar parameter.
func NewParam(lineno int, name string) *Node {
	return &Node{Kind: ParamK, Lineno: lineno, Name: name}
}

// Array parameter (passed by reference).
func NewArrParam(lineno int, name string) *Node {
	return &Node{Kind: ArrParamK, Lineno: lineno, Name: name}
}

// Type name node.
func NewTypeName(lineno int, t symtab.ExpType) *Node {
	return &Node{Kind: TypeNameK, Lineno: lineno, Type: t}
}
