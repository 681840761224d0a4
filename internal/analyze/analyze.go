// internal/analyze/analyze.go
package analyze

import (
	"github.com/JunsuLime/CMinusCompiler/internal/listing"
	"github.com/JunsuLime/CMinusCompiler/internal/symtab"
	"github.com/JunsuLime/CMinusCompiler/internal/syntree"
)

// DiagKind names a semantic diagnostic.
type DiagKind string

const (
	Undefined  DiagKind = "Undefined"
	VoidVar    DiagKind = "VoidVar"
	ReturnType DiagKind = "ReturnType"
	Assignment DiagKind = "Assignment"
	FuncParam  DiagKind = "FuncParam"
)

// Options controls analyzer tracing.
type Options struct {
	TraceAnalyze bool // dump the symbol table after the build phase
}

// Analyzer owns the symbol table being built and the state the walk
// threads between nodes: the name of the function whose scope the next
// compound opens, and the head of the pending parameter list.
type Analyzer struct {
	tab  *symtab.Table
	out  *listing.Writer
	opts Options

	scopeName string
	paramHead *syntree.Node
}

// New creates an analyzer with a fresh symbol table writing diagnostics
// to out.
func New(out *listing.Writer, opts Options) *Analyzer {
	return &Analyzer{tab: symtab.NewTable(), out: out, opts: opts}
}

// Table returns the populated symbol table for the later passes.
func (a *Analyzer) Table() *symtab.Table { return a.tab }

// Traverse applies pre in preorder and post in postorder to the tree,
// then walks the sibling chain.
func Traverse(t *syntree.Node, pre, post func(*syntree.Node)) {
	for ; t != nil; t = t.Sibling {
		pre(t)
		for i := 0; i < syntree.MaxChildren; i++ {
			Traverse(t.Children[i], pre, post)
		}
		post(t)
	}
}

func (a *Analyzer) printError(kind DiagKind, t *syntree.Node) {
	switch kind {
	case Undefined:
		if t.Kind == syntree.CallK {
			a.out.Errorf("error: Undeclared function %s at line %d", t.Name, t.Lineno)
		} else {
			a.out.Errorf("error: Undeclared variable %s at line %d", t.Name, t.Lineno)
		}
	case VoidVar:
		a.out.Errorf("error: Variable type cannot be Void at line %d", t.Lineno)
	case ReturnType:
		a.out.Errorf("Type error at line %d: return type inconsistance", t.Lineno)
	case Assignment:
		a.out.Errorf("error: Type inconsistance at line %d", t.Lineno)
	case FuncParam:
		a.out.Errorf("Type error at line %d: invalid function call", t.Lineno)
	}
}

// BuildSymtab populates the symbol table by a preorder walk, assigning
// memory locations and reporting declaration-level diagnostics.
func (a *Analyzer) BuildSymtab(root *syntree.Node) {
	Traverse(root, a.insertNode, a.afterInsert)
	if a.opts.TraceAnalyze {
		a.out.Printf("\nSymbol table:\n\n")
		a.tab.Dump(a.out)
	}
}

// TypeCheck runs the postorder type-checking walk. BuildSymtab must
// have run on the same tree first, so compound nodes carry their
// scopes.
func (a *Analyzer) TypeCheck(root *syntree.Node) {
	Traverse(root, a.beforeCheck, a.checkNode)
}

// HasErrors reports whether any diagnostic was written to the sink.
func (a *Analyzer) HasErrors() bool { return a.out.HasErrors() }

func (a *Analyzer) insertNode(t *syntree.Node) {
	switch t.Kind {
	case syntree.CompoundK:
		a.tab.Push(a.scopeName)
		t.Scope = a.tab.Top()
		num := 0
		for p := a.paramHead; p != nil; p = p.Sibling {
			if p.Kind == syntree.ArrParamK {
				a.tab.Insert(a.tab.Top(), p.Name, p.Lineno, symtab.IntegerArray, symtab.ParamVar, num, 0)
			} else {
				a.tab.Insert(a.tab.Top(), p.Name, p.Lineno, symtab.Integer, symtab.ParamVar, num, 0)
			}
			num++
		}
		a.paramHead = nil

	case syntree.AssignK:
		a.checkAssign(t)

	case syntree.IdK:
		a.recordUse(t, symtab.Default)

	case syntree.ArrIdK:
		a.recordUse(t, symtab.NormalVar)

	case syntree.CallK:
		a.recordUse(t, symtab.Func)

	case syntree.FuncK:
		a.tab.Insert(a.tab.Top(), t.Name, t.Lineno, t.Children[0].Type, symtab.Func, -1, 0)
		a.scopeName = t.Name

	case syntree.VarK:
		if t.Children[0].Type == symtab.Void {
			a.printError(VoidVar, t)
			break
		}
		a.tab.Insert(a.tab.Top(), t.Name, t.Lineno, t.Children[0].Type, symtab.NormalVar, -1, 0)

	case syntree.ArrVarK:
		a.tab.Insert(a.tab.Top(), t.Name, t.Lineno, symtab.IntegerArray, symtab.NormalVar, -1, t.Val)

	case syntree.ParamK, syntree.ArrParamK:
		// Only the head is remembered; the compound drains the chain.
		if a.paramHead == nil {
			a.paramHead = t
		}
	}
}

func (a *Analyzer) afterInsert(t *syntree.Node) {
	switch t.Kind {
	case syntree.CompoundK:
		a.tab.Pop()
	case syntree.FuncK:
		a.tab.ResetMemloc()
	}
}

// recordUse binds a use site to its declaration, appending the line
// number to the owning entry, or reports it undeclared.
func (a *Analyzer) recordUse(t *syntree.Node, cat symtab.IdCategory) {
	owner := a.tab.Top().FindScopeOf(t.Name)
	if owner == nil {
		a.printError(Undefined, t)
		return
	}
	a.tab.Insert(owner, t.Name, t.Lineno, symtab.Void, cat, -1, 0)
}

// checkAssign validates the rhs of an assignment against the lhs type.
// It runs during the build phase, after the left-hand declaration is
// already in scope.
func (a *Analyzer) checkAssign(t *syntree.Node) {
	lhs, rhs := t.Children[0], t.Children[1]
	if lhs == nil || rhs == nil || lhs.Kind.Class() != syntree.ExpClass || rhs.Kind.Class() != syntree.ExpClass {
		return
	}
	switch lhs.Kind {
	case syntree.IdK:
		l := a.tab.Top().Lookup(lhs.Name)
		if l == nil {
			return
		}
		switch rhs.Kind {
		case syntree.ArrIdK:
			if l.Type != rhs.Type {
				a.printError(Assignment, t)
			}
		case syntree.CallK, syntree.IdK:
			l2 := a.tab.Top().Lookup(rhs.Name)
			if l2 == nil {
				return
			}
			if l2.Type != l.Type {
				a.printError(Assignment, t)
			}
		case syntree.ConstK, syntree.OpK:
			if l.Type != symtab.Integer {
				a.printError(Assignment, t)
			}
		}
	case syntree.ArrIdK:
		switch rhs.Kind {
		case syntree.ArrIdK:
			if rhs.Type != symtab.Integer {
				a.printError(Assignment, t)
			}
		case syntree.IdK, syntree.CallK:
			l2 := a.tab.Top().Lookup(rhs.Name)
			if l2 == nil {
				return
			}
			if l2.Type != symtab.Integer {
				a.printError(Assignment, t)
			}
		}
	}
}

func (a *Analyzer) beforeCheck(t *syntree.Node) {
	if t.Kind == syntree.CompoundK {
		a.tab.SetCurrent(t.Scope)
	}
}

func (a *Analyzer) checkNode(t *syntree.Node) {
	switch t.Kind {
	case syntree.CompoundK:
		a.tab.Pop()

	case syntree.IterK:
		cond := t.Children[0]
		if cond == nil || cond.Kind.Class() != syntree.ExpClass {
			return
		}
		switch cond.Kind {
		case syntree.IdK, syntree.CallK:
			l := a.tab.Top().Lookup(cond.Name)
			if l != nil && l.Type != symtab.Integer {
				a.printError(Assignment, cond)
			}
		}

	case syntree.ReturnK:
		a.checkReturn(t)

	case syntree.CallK:
		a.checkCall(t)

	case syntree.OpK:
		if !a.checkOperand(t, t.Children[0]) {
			return
		}
		a.checkOperand(t, t.Children[1])
	}
}

// checkReturn matches the returned value, or its absence, against the
// enclosing function's declared return type. The enclosing function is
// found by looking its own name up through the current scope chain.
func (a *Analyzer) checkReturn(t *syntree.Node) {
	fn := a.tab.Top().Lookup(a.tab.Top().Name)
	if fn == nil {
		return
	}
	val := t.Children[0]
	if val == nil {
		if fn.Type != symtab.Void {
			a.printError(ReturnType, t)
		}
		return
	}
	if val.Kind.Class() != syntree.ExpClass {
		return
	}
	switch val.Kind {
	case syntree.ArrIdK:
		if fn.Type != val.Type {
			a.printError(ReturnType, t)
		}
	case syntree.IdK, syntree.CallK:
		l := a.tab.Top().Lookup(val.Name)
		if l == nil {
			return
		}
		if l.Type != fn.Type {
			a.printError(ReturnType, t)
		}
	case syntree.ConstK, syntree.OpK:
		if fn.Type != symtab.Integer {
			a.printError(ReturnType, t)
		}
	}
}

// checkCall walks the ordered actual arguments against the callee's
// declared parameter list, flagging positional type mismatches and
// arity mismatches.
func (a *Analyzer) checkCall(t *syntree.Node) {
	params := a.tab.ParamList(t.Name)
	if params == nil {
		// Callee scope unknown; the undeclared call was already
		// reported during the build phase.
		return
	}
	j := 0
	for arg := t.Children[0]; arg != nil; arg = arg.Sibling {
		if arg.Kind.Class() != syntree.ExpClass {
			j++
			continue
		}
		if j < len(params) && params[j] != nil {
			decl := params[j]
			switch arg.Kind {
			case syntree.ArrIdK:
				if decl.Type != arg.Type {
					a.printError(FuncParam, t)
				}
			case syntree.IdK, syntree.CallK:
				l := a.tab.Top().Lookup(arg.Name)
				if l != nil && l.Type != decl.Type {
					a.printError(FuncParam, t)
				}
			case syntree.ConstK, syntree.OpK:
				if decl.Type != symtab.Integer {
					a.printError(FuncParam, t)
				}
			}
		}
		j++
	}
	if j != len(params) {
		a.printError(FuncParam, t)
	}
}

// checkOperand verifies one operand of a binary operation resolves to
// an integer. It reports false when checking of the operation cannot
// continue, so the right operand is skipped after a bad left one.
func (a *Analyzer) checkOperand(t, operand *syntree.Node) bool {
	if operand == nil || operand.Kind.Class() != syntree.ExpClass {
		return true
	}
	switch operand.Kind {
	case syntree.IdK, syntree.CallK:
		l := a.tab.Top().Lookup(operand.Name)
		if l == nil {
			return false
		}
		if l.Type != symtab.Integer {
			a.printError(Assignment, t)
			return false
		}
	}
	return true
}
