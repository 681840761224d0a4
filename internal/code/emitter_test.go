package code

import (
	"strings"
	"testing"
)

func TestEmitAdvancesLocation(t *testing.T) {
	e := NewEmitter(false)
	e.EmitRM(LD, SP, 0, AC, "prelude")
	e.EmitRO(ADD, AC, AC1, AC, "sum")

	ins := e.Instructions()
	if len(ins) != 2 {
		t.Fatalf("instruction count = %d, want 2", len(ins))
	}
	if ins[0].Loc != 0 || ins[1].Loc != 1 || e.Loc() != 2 {
		t.Errorf("locations = %d/%d, cursor %d", ins[0].Loc, ins[1].Loc, e.Loc())
	}
	if !ins[0].RM || ins[1].RM {
		t.Error("record shapes wrong")
	}
}

func TestSkipBackupRestore(t *testing.T) {
	e := NewEmitter(false)
	e.EmitRM(LDC, AC, 1, 0, "before")
	slot := e.Skip(1)
	e.EmitRM(LDC, AC, 2, 0, "after")

	if slot != 1 {
		t.Fatalf("reserved slot = %d, want 1", slot)
	}

	e.Backup(slot)
	e.EmitRM(LDC, PC, 9, 0, "patch")
	e.Restore()
	e.EmitRM(LDC, AC, 3, 0, "resumed")

	ins := e.Instructions()
	if len(ins) != 4 {
		t.Fatalf("instruction count = %d, want 4", len(ins))
	}
	// The patch replaced the reserved slot in place.
	if ins[1].Op != LDC || ins[1].R != PC || ins[1].D != 9 {
		t.Errorf("slot 1 = %s %d,%d(%d)", ins[1].Op, ins[1].R, ins[1].D, ins[1].S)
	}
	// Restore resumed at the previous head.
	if ins[3].D != 3 || ins[3].Loc != 3 {
		t.Errorf("resume wrote %d at loc %d", ins[3].D, ins[3].Loc)
	}
}

func TestEmitRMAbsIsPCRelative(t *testing.T) {
	e := NewEmitter(false)
	e.Skip(5)
	e.EmitRMAbs(JEQ, AC, 12, "forward")

	in := e.Instructions()[5]
	// Target 12 from location 5: the machine adds pc (already 6).
	if in.Op != JEQ || in.D != 6 || in.S != PC {
		t.Errorf("got %s %d,%d(%d)", in.Op, in.R, in.D, in.S)
	}

	e.EmitRMAbs(LDA, PC, 0, "backward")
	in = e.Instructions()[6]
	if in.D != -7 || in.S != PC {
		t.Errorf("backward jump = %d(%d), want -7(%d)", in.D, in.S, PC)
	}
}

func TestRenderFormats(t *testing.T) {
	e := NewEmitter(false)
	e.EmitRM(LD, SP, 0, AC, "load maxaddress")
	e.EmitRO(HALT, 0, 0, 0, "")

	out := e.String()
	if !strings.Contains(out, "0:     LD  4,0(0)") {
		t.Errorf("RM record missing: %q", out)
	}
	if !strings.Contains(out, "1:   HALT  0,0,0") {
		t.Errorf("RO record missing: %q", out)
	}
	// Comments are dropped without trace.
	if strings.Contains(out, "load maxaddress") {
		t.Error("comment rendered without trace")
	}
}

func TestRenderWithTrace(t *testing.T) {
	e := NewEmitter(true)
	e.Comment("Standard prelude:")
	e.EmitRM(LD, SP, 0, AC, "load maxaddress")

	out := e.String()
	if !strings.Contains(out, "* Standard prelude:\n") {
		t.Errorf("comment line missing: %q", out)
	}
	if !strings.Contains(out, "\tload maxaddress") {
		t.Errorf("instruction comment missing: %q", out)
	}
}

func TestWriteTo(t *testing.T) {
	e := NewEmitter(false)
	e.EmitRO(HALT, 0, 0, 0, "")

	var sb strings.Builder
	n, err := e.WriteTo(&sb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(len(sb.String())) || sb.Len() == 0 {
		t.Errorf("wrote %d bytes, buffer has %d", n, sb.Len())
	}
}
