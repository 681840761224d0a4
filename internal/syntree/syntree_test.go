package syntree

import (
	"testing"

	"github.com/JunsuLime/CMinusCompiler/internal/symtab"
)

func TestKindClasses(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want NodeClass
	}{
		{CompoundK, StmtClass},
		{ReturnK, StmtClass},
		{ConstK, ExpClass},
		{AssignK, ExpClass},
		{FuncK, DeclClass},
		{ArrParamK, ParamClass},
		{TypeNameK, TypeClass},
	}
	for _, tt := range tests {
		if got := tt.kind.Class(); got != tt.want {
			t.Errorf("kind %d class = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestLink(t *testing.T) {
	a := NewConst(1, 1)
	b := NewConst(1, 2)
	c := NewConst(1, 3)

	head := Link(a, nil, b, c)
	if head != a || a.Sibling != b || b.Sibling != c || c.Sibling != nil {
		t.Error("sibling chain wrong")
	}
	if Link() != nil {
		t.Error("empty link should be nil")
	}
}

func TestConstructorShapes(t *testing.T) {
	idx := NewConst(3, 0)
	arr := NewArrId(3, "a", idx)
	if arr.Children[0] != idx || arr.Type != symtab.Integer {
		t.Errorf("ArrId = %+v", arr)
	}

	fn := NewFuncDecl(1, "f",
		NewTypeName(1, symtab.Void),
		NewParam(1, "n"),
		NewCompound(1, nil, nil))
	if fn.Children[0].Type != symtab.Void || fn.Children[1].Kind != ParamK || fn.Children[2].Kind != CompoundK {
		t.Errorf("FuncDecl children = %+v", fn.Children)
	}

	if op := NewOp(2, Le, NewId(2, "x"), NewConst(2, 1)); op.Op.String() != "<=" {
		t.Errorf("op string = %q", op.Op)
	}
}
