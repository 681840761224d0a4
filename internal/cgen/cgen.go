// internal/cgen/cgen.go
package cgen

import (
	"github.com/JunsuLime/CMinusCompiler/internal/code"
	"github.com/JunsuLime/CMinusCompiler/internal/symtab"
	"github.com/JunsuLime/CMinusCompiler/internal/syntree"
)

// Generator walks an analyzed syntax tree and emits TM instructions.
// It relies on the scopes the analyzer stamped on compound nodes; the
// tree is assumed well typed.
type Generator struct {
	tab *symtab.Table
	em  *code.Emitter

	// functionSkip is the reserved slot that jumps straight-line
	// execution over the body of the function currently being emitted.
	functionSkip int
}

// New creates a generator emitting through em against the populated
// symbol table.
func New(tab *symtab.Table, em *code.Emitter) *Generator {
	return &Generator{tab: tab, em: em}
}

// Generate emits the complete program: prelude, built-in function
// bodies, all declared functions, and the final HALT. codefile names
// the compiled source in the listing header.
func (g *Generator) Generate(root *syntree.Node, codefile string) {
	g.em.Comment("C-minus compilation to TM code")
	g.em.Comment("File: " + codefile)

	g.em.Comment("Standard prelude:")
	g.em.EmitRM(code.LD, code.SP, 0, code.AC, "load maxaddress from location 0")
	g.em.EmitRM(code.ST, code.AC, 0, code.AC, "clear location 0")
	g.em.EmitRM(code.LDA, code.FP, 0, code.SP, "set first fp")
	g.em.EmitRM(code.LDC, code.Zero, 0, 0, "set zero register")
	g.em.Comment("End of standard prelude.")

	g.makeBuiltins()

	g.tab.Reset()
	g.gen(root)

	g.em.Comment("End of execution.")
	g.em.EmitRO(code.HALT, 0, 0, 0, "")
}

// makeBuiltins emits the bodies of input and output, each wrapped by
// the standard prologue and epilogue so calls to them follow the one
// calling convention.
func (g *Generator) makeBuiltins() {
	g.beforeFuncDecl("input")
	g.em.EmitRO(code.IN, code.AC, 0, 0, "read integer value")
	g.afterFuncDecl()

	g.beforeFuncDecl("output")
	g.em.EmitRM(code.LD, code.AC, 2, code.FP, "load output param")
	g.em.EmitRO(code.OUT, code.AC, 0, 0, "write integer value")
	g.afterFuncDecl()
}

// beforeFuncDecl records the function's entry address in its global
// symbol slot and reserves the jump that skips the body in straight
// line execution. The entry location is back-patched once the three
// header instructions are in place, so the offset is never assumed.
func (g *Generator) beforeFuncDecl(name string) {
	entrySlot := g.em.Skip(1)
	l := g.tab.Top().Lookup(name)
	g.em.EmitRM(code.ST, code.AC, l.MemLoc, code.GP, "set function pointer")
	g.functionSkip = g.em.Skip(1)

	entry := g.em.Skip(0)
	g.em.Backup(entrySlot)
	g.em.EmitRM(code.LDC, code.AC, entry, 0, "get function location")
	g.em.Restore()
}

// afterFuncDecl emits the callee epilogue: restore sp from the control
// link, stash the return address on the spill stack, restore fp, then
// jump through the return address. It also patches the function-skip
// slot to the location after the body; a return inside the body patches
// it too, and the declaration's final patch wins.
func (g *Generator) afterFuncDecl() {
	g.em.EmitRM(code.LD, code.AC1, -1, code.FP, "get old sp")
	g.em.EmitRM(code.LDA, code.SP, 0, code.AC1, "restore old sp")
	g.em.EmitRM(code.LD, code.AC1, 1, code.FP, "get return addr")
	g.spPush(code.AC1, "save return addr in sp stack")
	g.em.EmitRM(code.LD, code.AC1, 0, code.FP, "get old fp")
	g.em.EmitRM(code.LDA, code.FP, 0, code.AC1, "restore old fp")
	g.spPop(code.AC1, "get return addr from stack")
	g.em.EmitRM(code.LDA, code.PC, 0, code.AC1, "jump to return addr")

	loc := g.em.Skip(0)
	g.em.Backup(g.functionSkip)
	g.em.EmitRM(code.LDC, code.PC, loc, 0, "function skip")
	g.em.Restore()
}

// beforeFuncCall emits the caller side of a call: actuals pushed in
// reverse source order, return address, control links, new fp and sp,
// then the jump through the callee's stored entry address. The return
// address slot is reserved first and patched with the landing pad once
// the whole sequence is emitted.
func (g *Generator) beforeFuncCall(t *syntree.Node) {
	scope := g.tab.ScopeByName(t.Name)
	if scope == nil {
		return
	}
	paramNum := scope.MaxParamNum

	g.pushArgsReversed(t.Children[0], paramNum, 0)

	retSlot := g.em.Skip(1)
	g.em.EmitRM(code.ST, code.AC1, -paramNum, code.SP, "set return address")
	g.em.EmitRM(code.LDA, code.AC1, 0, code.FP, "get old fp")
	g.em.EmitRM(code.ST, code.AC1, -(paramNum + 1), code.SP, "set control link(old fp)")
	g.em.EmitRM(code.LDA, code.AC1, 0, code.SP, "get old sp")
	g.em.EmitRM(code.ST, code.AC1, -(paramNum + 2), code.SP, "set control link2(old sp)")
	g.em.EmitRM(code.LDA, code.FP, -(paramNum + 1), code.SP, "get new fp")
	g.em.EmitRM(code.LDC, code.AC, scope.MemSize, 0, "set frame size")
	g.em.EmitRO(code.SUB, code.SP, code.FP, code.AC, "get new sp")
	l := g.tab.Top().Lookup(t.Name)
	g.em.EmitRM(code.LD, code.PC, l.MemLoc, code.GP, "moving pc")

	ret := g.em.Skip(0)
	g.em.Backup(retSlot)
	g.em.EmitRM(code.LDC, code.AC1, ret, 0, "set return addr val")
	g.em.Restore()
}

// pushArgsReversed recurses to the end of the actual list first, so the
// leftmost actual is evaluated and stored last, at the lowest offset.
func (g *Generator) pushArgsReversed(arg *syntree.Node, paramNum, offset int) {
	if arg == nil {
		return
	}
	g.pushArgsReversed(arg.Sibling, paramNum, offset+1)
	g.genExp(arg)
	g.em.EmitRM(code.ST, code.AC, -(paramNum-1)+offset, code.SP, "save param in temp")
}

// spPush stores r on the spill stack and bumps sp.
func (g *Generator) spPush(r int, comment string) {
	g.em.EmitRM(code.ST, r, 0, code.SP, comment)
	g.em.EmitRM(code.LDA, code.SP, -1, code.SP, "stack pushed")
}

// spPop pops the spill stack into r.
func (g *Generator) spPop(r int, comment string) {
	g.em.EmitRM(code.LDA, code.SP, 1, code.SP, "stack poped")
	g.em.EmitRM(code.LD, r, 0, code.SP, comment)
}

// gen dispatches a node and its sibling chain.
func (g *Generator) gen(t *syntree.Node) {
	for ; t != nil; t = t.Sibling {
		switch t.Kind.Class() {
		case syntree.StmtClass:
			g.genStmt(t)
		case syntree.ExpClass:
			g.genExp(t)
		case syntree.DeclClass:
			if t.Kind == syntree.FuncK {
				g.genFuncDecl(t)
			}
		}
	}
}

func (g *Generator) genFuncDecl(t *syntree.Node) {
	scope := g.tab.ScopeByName(t.Name)
	if t.Name != "main" {
		g.beforeFuncDecl(t.Name)
	} else {
		// main is entered by falling through, not called; carve its
		// frame from the current stack top.
		g.em.EmitRM(code.LDA, code.FP, 0, code.SP, "set main fp")
		g.em.EmitRM(code.LDC, code.AC, scope.MemSize, 0, "main frame size")
		g.em.EmitRO(code.SUB, code.SP, code.FP, code.AC, "set main sp")
	}

	g.gen(t.Children[2])

	if t.Name != "main" {
		g.afterFuncDecl()
	}
}

func (g *Generator) genStmt(t *syntree.Node) {
	switch t.Kind {
	case syntree.CompoundK:
		g.tab.SetCurrent(t.Scope)
		g.gen(t.Children[1])
		g.tab.Pop()

	case syntree.IfK:
		if g.em.TraceCode {
			g.em.Comment("-> if")
		}
		g.gen(t.Children[0])
		savedLoc1 := g.em.Skip(1)
		g.em.Comment("if: jump to else belongs here")
		g.gen(t.Children[1])
		savedLoc2 := g.em.Skip(1)
		g.em.Comment("if: jump to end belongs here")
		currentLoc := g.em.Skip(0)
		g.em.Backup(savedLoc1)
		g.em.EmitRMAbs(code.JEQ, code.AC, currentLoc, "if: jmp to else")
		g.em.Restore()
		g.gen(t.Children[2])
		currentLoc = g.em.Skip(0)
		g.em.Backup(savedLoc2)
		g.em.EmitRMAbs(code.LDA, code.PC, currentLoc, "jmp to end")
		g.em.Restore()
		if g.em.TraceCode {
			g.em.Comment("<- if")
		}

	case syntree.IterK:
		if g.em.TraceCode {
			g.em.Comment("-> iter")
		}
		savedLoc1 := g.em.Skip(0)
		g.em.Comment("repeat: jump after body comes back here")
		g.gen(t.Children[0])
		savedLoc2 := g.em.Skip(1)
		g.gen(t.Children[1])
		g.em.EmitRMAbs(code.LDA, code.PC, savedLoc1, "repeat: go for test")
		currentLoc := g.em.Skip(0)
		g.em.Backup(savedLoc2)
		g.em.EmitRMAbs(code.JEQ, code.AC, currentLoc, "repeat end")
		g.em.Restore()
		if g.em.TraceCode {
			g.em.Comment("<- iter")
		}

	case syntree.ReturnK:
		if g.em.TraceCode {
			g.em.Comment("-> return")
		}
		if t.Children[0] != nil {
			g.gen(t.Children[0])
		}
		g.afterFuncDecl()
		if g.em.TraceCode {
			g.em.Comment("<- return")
		}
	}
}

func (g *Generator) genExp(t *syntree.Node) {
	switch t.Kind {
	case syntree.ConstK:
		g.em.EmitRM(code.LDC, code.AC, t.Val, 0, "load const")

	case syntree.IdK:
		g.genVarAccess(code.LD, t, "load Id")

	case syntree.ArrIdK:
		g.genVarAccess(code.LD, t, "load ArrId")

	case syntree.CallK:
		if g.em.TraceCode {
			g.em.Comment("-> call")
		}
		g.beforeFuncCall(t)
		if g.em.TraceCode {
			g.em.Comment("<- call")
		}

	case syntree.OpK:
		g.gen(t.Children[0])
		g.spPush(code.AC, "op: push left")
		g.gen(t.Children[1])
		g.spPop(code.AC1, "op: load left")
		switch t.Op {
		case syntree.Plus:
			g.em.EmitRO(code.ADD, code.AC, code.AC1, code.AC, "op +")
		case syntree.Minus:
			g.em.EmitRO(code.SUB, code.AC, code.AC1, code.AC, "op -")
		case syntree.Times:
			g.em.EmitRO(code.MUL, code.AC, code.AC1, code.AC, "op *")
		case syntree.Over:
			g.em.EmitRO(code.DIV, code.AC, code.AC1, code.AC, "op /")
		case syntree.Lt:
			g.genComparison(code.JLT, "op <")
		case syntree.Le:
			g.genComparison(code.JLE, "op <=")
		case syntree.Gt:
			g.genComparison(code.JGT, "op >")
		case syntree.Ge:
			g.genComparison(code.JGE, "op >=")
		case syntree.Eq:
			g.genComparison(code.JEQ, "op ==")
		case syntree.Ne:
			g.genComparison(code.JNE, "op !=")
		}

	case syntree.AssignK:
		if g.em.TraceCode {
			g.em.Comment("-> assign")
		}
		g.genVarAccess(code.LDA, t.Children[0], "assign: l-value address")
		g.spPush(code.AC, "assign: push l-value")
		g.gen(t.Children[1])
		g.spPop(code.AC1, "assign: load l-value")
		g.em.EmitRM(code.ST, code.AC, 0, code.AC1, "assign: store value")
		if g.em.TraceCode {
			g.em.Comment("<- assign")
		}
	}
}

// genComparison lowers a comparison to 0/1 in ac: subtract, branch on
// the condition, and load the boolean either way.
func (g *Generator) genComparison(jump code.Opcode, comment string) {
	g.em.EmitRO(code.SUB, code.AC, code.AC1, code.AC, comment)
	g.em.EmitRM(jump, code.AC, 2, code.PC, "br if true")
	g.em.EmitRM(code.LDC, code.AC, 0, 0, "false case")
	g.em.EmitRM(code.LDA, code.PC, 1, code.PC, "unconditional jmp")
	g.em.EmitRM(code.LDC, code.AC, 1, 0, "true case")
}

// genVarAccess computes the address of an Id, ArrId or assignment
// target and applies op to it: LD to load the value, LDA to leave the
// address in ac. The declaration is classified by scope (global, local,
// parameter) and kind (scalar, array); parameter arrays are indirect
// through the slot the caller filled with the base address.
func (g *Generator) genVarAccess(op code.Opcode, t *syntree.Node, comment string) {
	l := g.tab.Top().Lookup(t.Name)
	if l == nil {
		return
	}
	isGlobal := g.tab.IsGlobal(l)
	isParam := l.Category == symtab.ParamVar
	isArray := l.Type == symtab.IntegerArray

	// Base address into ac1.
	switch {
	case isGlobal:
		if isArray {
			g.em.EmitRM(code.LDA, code.AC1, l.MemLoc, code.GP, "base addr: global array")
		} else {
			g.em.EmitRM(code.LDA, code.AC1, 0, code.GP, "base addr: global var")
		}
	case isParam:
		if isArray {
			g.em.EmitRM(code.LD, code.AC1, 2+l.ParamIndex, code.FP, "base addr: param array")
		} else {
			g.em.EmitRM(code.LDA, code.AC1, 0, code.FP, "base addr: param var")
		}
	default:
		if isArray {
			g.em.EmitRM(code.LDA, code.AC1, -l.MemLoc, code.FP, "base addr: local array")
		} else {
			g.em.EmitRM(code.LDA, code.AC1, 0, code.FP, "base addr: local var")
		}
	}

	// Offset into ac.
	if isArray {
		if t.Kind == syntree.ArrIdK {
			g.spPush(code.AC1, "save base for index calc")
			g.gen(t.Children[0])
			g.spPop(code.AC1, "restore base")
			g.em.EmitRO(code.SUB, code.AC, code.Zero, code.AC, "negate index offset")
		}
	} else {
		switch {
		case isGlobal:
			g.em.EmitRM(code.LDC, code.AC, l.MemLoc, 0, "addr offset: global var")
		case isParam:
			g.em.EmitRM(code.LDC, code.AC, 2+l.ParamIndex, 0, "addr offset: param var")
		default:
			g.em.EmitRM(code.LDC, code.AC, -l.MemLoc, 0, "addr offset: local var")
		}
	}

	// An array name used without an index is passed as its base
	// address.
	if isArray && t.Kind != syntree.ArrIdK {
		g.em.EmitRM(code.LDA, code.AC, 0, code.AC1, "array base as value")
		return
	}

	g.em.EmitRO(code.ADD, code.AC, code.AC, code.AC1, "compute target address")
	g.em.EmitRM(op, code.AC, 0, code.AC, comment)
}
