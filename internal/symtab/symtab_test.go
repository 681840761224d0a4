package symtab

import (
	"strings"
	"testing"
)

func TestBuiltins(t *testing.T) {
	tab := NewTable()

	input := tab.Global().LookupLocal("input")
	if input == nil {
		t.Fatal("input not registered")
	}
	if input.Type != Integer || input.Category != Func || input.MemLoc != 1 {
		t.Errorf("input entry = %v/%v/%d, want Integer/Func/1", input.Type, input.Category, input.MemLoc)
	}

	output := tab.Global().LookupLocal("output")
	if output == nil {
		t.Fatal("output not registered")
	}
	if output.Type != Void || output.Category != Func || output.MemLoc != 2 {
		t.Errorf("output entry = %v/%v/%d, want Void/Func/2", output.Type, output.Category, output.MemLoc)
	}

	if params := tab.ParamList("input"); len(params) != 0 {
		t.Errorf("input params = %d, want 0", len(params))
	}
	params := tab.ParamList("output")
	if len(params) != 1 {
		t.Fatalf("output params = %d, want 1", len(params))
	}
	if params[0].Name != "arg" || params[0].Type != Integer || params[0].ParamIndex != 0 {
		t.Errorf("output param = %+v", params[0])
	}

	outScope := tab.ScopeByName("output")
	if outScope == nil || outScope.MaxParamNum != 1 || outScope.MemSize != 2 {
		t.Errorf("output scope = %+v", outScope)
	}

	// Registry order: global, input, output.
	scopes := tab.Scopes()
	if len(scopes) != 3 || scopes[0].Name != "global" || scopes[1].Name != "input" || scopes[2].Name != "output" {
		t.Errorf("registry = %v", scopes)
	}
}

func TestInsertLookupRoundTrip(t *testing.T) {
	tab := NewTable()
	tab.Push("f")

	e := tab.Insert(tab.Top(), "n", 4, IntegerArray, ParamVar, 1, 0)
	got := tab.Top().Lookup("n")
	if got != e {
		t.Fatal("lookup after insert returned a different entry")
	}
	if got.Type != IntegerArray || got.Category != ParamVar || got.ParamIndex != 1 {
		t.Errorf("entry = %v/%v/%d", got.Type, got.Category, got.ParamIndex)
	}
	if tab.Top().MaxParamNum != 2 {
		t.Errorf("MaxParamNum = %d, want 2", tab.Top().MaxParamNum)
	}
}

func TestReinsertAppendsLineOnly(t *testing.T) {
	tab := NewTable()
	g := tab.Global()

	e := tab.Insert(g, "x", 1, Integer, NormalVar, -1, 0)
	again := tab.Insert(g, "x", 5, Void, Default, -1, 0)

	if again != e {
		t.Fatal("re-insert created a second entry")
	}
	if e.Type != Integer || e.Category != NormalVar {
		t.Errorf("re-insert mutated entry: %v/%v", e.Type, e.Category)
	}
	if len(e.Lines) != 2 || e.Lines[0] != 1 || e.Lines[1] != 5 {
		t.Errorf("lines = %v, want [1 5]", e.Lines)
	}
}

func TestGlobalMemoryLayout(t *testing.T) {
	tab := NewTable()
	g := tab.Global()

	// Cursor starts past the two built-in slots.
	x := tab.Insert(g, "x", 1, Integer, NormalVar, -1, 0)
	a := tab.Insert(g, "a", 2, IntegerArray, NormalVar, -1, 10)
	y := tab.Insert(g, "y", 3, Integer, NormalVar, -1, 0)

	if x.MemLoc != 3 {
		t.Errorf("x at %d, want 3", x.MemLoc)
	}
	// Arrays record one past the last element; the cursor then skips
	// one more word.
	if a.MemLoc != 14 {
		t.Errorf("a at %d, want 14", a.MemLoc)
	}
	if y.MemLoc != 15 {
		t.Errorf("y at %d, want 15", y.MemLoc)
	}
	if g.MemSize != 16 {
		t.Errorf("global mem size = %d, want 16", g.MemSize)
	}
}

func TestLocalMemoryLayout(t *testing.T) {
	tab := NewTable()
	tab.ResetMemloc()
	tab.Push("f")

	i := tab.Insert(tab.Top(), "i", 1, Integer, NormalVar, -1, 0)
	buf := tab.Insert(tab.Top(), "buf", 2, IntegerArray, NormalVar, -1, 5)
	j := tab.Insert(tab.Top(), "j", 3, Integer, NormalVar, -1, 0)

	if i.MemLoc != 2 {
		t.Errorf("i at %d, want 2 (0 and 1 are the saved fp and saved sp)", i.MemLoc)
	}
	// Local arrays record their start offset.
	if buf.MemLoc != 3 {
		t.Errorf("buf at %d, want 3", buf.MemLoc)
	}
	if j.MemLoc != 9 {
		t.Errorf("j at %d, want 9", j.MemLoc)
	}
	if tab.Top().MemSize != 10 {
		t.Errorf("mem size = %d, want 10", tab.Top().MemSize)
	}
}

func TestMemSizePropagation(t *testing.T) {
	tab := NewTable()
	tab.ResetMemloc()
	tab.Push("f")
	outer := tab.Top()
	tab.Insert(outer, "i", 1, Integer, NormalVar, -1, 0)

	// A nested block of the same function shares the frame.
	tab.Push("f")
	inner := tab.Top()
	tab.Insert(inner, "k", 2, Integer, NormalVar, -1, 0)

	if inner.MemSize != 4 || outer.MemSize != 4 {
		t.Errorf("mem sizes = %d/%d, want 4/4", inner.MemSize, outer.MemSize)
	}
	if tab.Global().MemSize == 4 {
		t.Error("propagation crossed into the global scope")
	}
}

func TestNestingAndRegistry(t *testing.T) {
	tab := NewTable()
	tab.Push("f")
	f := tab.Top()
	tab.Push("f")
	nested := tab.Top()

	if f.NestedLevel != 1 || nested.NestedLevel != 2 {
		t.Errorf("levels = %d/%d, want 1/2", f.NestedLevel, nested.NestedLevel)
	}
	if nested.Parent != f || f.Parent != tab.Global() {
		t.Error("parent chain broken")
	}

	tab.Pop()
	tab.Pop()
	if tab.Top() != tab.Global() {
		t.Error("pop did not return to global")
	}
	// Popped scopes stay reachable through the registry.
	if tab.ScopeByName("f") != f {
		t.Error("registry lost the popped scope")
	}
	if len(tab.Scopes()) != 5 {
		t.Errorf("registry size = %d, want 5", len(tab.Scopes()))
	}
}

func TestShadowingLookup(t *testing.T) {
	tab := NewTable()
	globalX := tab.Insert(tab.Global(), "x", 1, Integer, NormalVar, -1, 0)
	tab.Push("main")
	localX := tab.Insert(tab.Top(), "x", 2, Integer, NormalVar, -1, 0)

	if got := tab.Top().Lookup("x"); got != localX {
		t.Error("lookup did not prefer the inner declaration")
	}
	if got := tab.Top().FindScopeOf("x"); got != tab.Top() {
		t.Error("FindScopeOf did not stop at the inner scope")
	}
	if tab.IsGlobal(localX) {
		t.Error("shadowing local classified as global")
	}
	if !tab.IsGlobal(globalX) {
		t.Error("global entry not classified as global")
	}
	if got := tab.Global().Lookup("x"); got != globalX {
		t.Error("global x disturbed by the shadow")
	}
}

func TestLookupMiss(t *testing.T) {
	tab := NewTable()
	tab.Push("f")
	if tab.Top().Lookup("nope") != nil {
		t.Error("lookup invented an entry")
	}
	if tab.Top().LookupLocal("input") != nil {
		t.Error("local lookup walked the parent chain")
	}
	if tab.Top().Lookup("input") == nil {
		t.Error("chained lookup missed a global")
	}
}

func TestDumpSections(t *testing.T) {
	tab := NewTable()
	tab.Insert(tab.Global(), "x", 1, Integer, NormalVar, -1, 0)
	tab.Insert(tab.Global(), "main", 2, Void, Func, -1, 0)
	tab.Push("main")
	tab.Insert(tab.Top(), "i", 3, Integer, NormalVar, -1, 0)
	tab.Pop()

	var sb strings.Builder
	tab.Dump(&sb)
	out := sb.String()

	for _, want := range []string{
		"<FUNCTION DECLARATION>",
		"<FUNCTION AND GLOBAL VAR>",
		"<FUNCTION PARAM AND LOCAL VAR>",
		"function name: main (nested level: 1)",
		"Line Numbers",
		"input",
		"output",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q", want)
		}
	}
}
