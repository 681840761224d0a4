// internal/code/emitter.go
package code

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Instruction is one located TM record. Register-only instructions use
// R,S,T; register-memory instructions use R,D(S).
type Instruction struct {
	Loc     int
	Op      Opcode
	R       int
	S       int
	T       int
	D       int
	RM      bool
	Comment string
}

// Emitter is the instruction sink. It buffers located records so that
// back-patching can overwrite a reserved slot in place: Skip reserves
// locations, Backup moves the cursor onto a reserved slot, Restore
// returns it to the location just past the highest one emitted or
// reserved so far.
type Emitter struct {
	TraceCode bool

	instrs      []Instruction
	comments    map[int][]string
	emitLoc     int
	highEmitLoc int
}

// NewEmitter returns an empty sink. With trace enabled, comments are
// kept and rendered; without it they are dropped, matching the TM
// listing convention.
func NewEmitter(trace bool) *Emitter {
	return &Emitter{TraceCode: trace, comments: make(map[int][]string)}
}

// Loc returns the current emission location.
func (e *Emitter) Loc() int { return e.emitLoc }

// Instructions exposes the buffered records in location order.
func (e *Emitter) Instructions() []Instruction { return e.instrs }

// Comment attaches a comment line ahead of the next instruction.
func (e *Emitter) Comment(text string) {
	if !e.TraceCode {
		return
	}
	e.comments[e.emitLoc] = append(e.comments[e.emitLoc], text)
}

func (e *Emitter) emit(in Instruction) {
	in.Loc = e.emitLoc
	for len(e.instrs) <= e.emitLoc {
		e.instrs = append(e.instrs, Instruction{Loc: len(e.instrs)})
	}
	e.instrs[e.emitLoc] = in
	e.emitLoc++
	if e.highEmitLoc < e.emitLoc {
		e.highEmitLoc = e.emitLoc
	}
}

// EmitRO emits a register-only instruction op r,s,t.
func (e *Emitter) EmitRO(op Opcode, r, s, t int, comment string) {
	e.emit(Instruction{Op: op, R: r, S: s, T: t, Comment: comment})
}

// EmitRM emits a register-memory instruction op r,d(s).
func (e *Emitter) EmitRM(op Opcode, r, d, s int, comment string) {
	e.emit(Instruction{Op: op, R: r, D: d, S: s, RM: true, Comment: comment})
}

// EmitRMAbs converts an absolute code location into the pc-relative
// form register-memory instructions need, for jumps and back-patches
// whose target is a location rather than an offset.
func (e *Emitter) EmitRMAbs(op Opcode, r, loc int, comment string) {
	e.EmitRM(op, r, loc-(e.emitLoc+1), PC, comment)
}

// Skip reserves n locations for later back-patching and returns the
// first. Skip(0) returns the current location without reserving.
func (e *Emitter) Skip(n int) int {
	loc := e.emitLoc
	e.emitLoc += n
	if e.highEmitLoc < e.emitLoc {
		e.highEmitLoc = e.emitLoc
	}
	return loc
}

// Backup moves the cursor onto a previously reserved location.
func (e *Emitter) Backup(loc int) {
	e.emitLoc = loc
}

// Restore returns the cursor to the highest unemitted location.
func (e *Emitter) Restore() {
	e.emitLoc = e.highEmitLoc
}

func (e *Emitter) render(sb *strings.Builder, in Instruction) {
	if in.RM {
		fmt.Fprintf(sb, "%3d:  %5s  %d,%d(%d) ", in.Loc, in.Op, in.R, in.D, in.S)
	} else {
		fmt.Fprintf(sb, "%3d:  %5s  %d,%d,%d ", in.Loc, in.Op, in.R, in.S, in.T)
	}
	if e.TraceCode && in.Comment != "" {
		fmt.Fprintf(sb, "\t%s", in.Comment)
	}
	sb.WriteByte('\n')
}

// String renders the instruction stream as text records.
func (e *Emitter) String() string {
	var sb strings.Builder
	for _, in := range e.instrs {
		for _, c := range e.comments[in.Loc] {
			fmt.Fprintf(&sb, "* %s\n", c)
		}
		e.render(&sb, in)
	}
	for _, c := range e.comments[len(e.instrs)] {
		fmt.Fprintf(&sb, "* %s\n", c)
	}
	return sb.String()
}

// WriteTo writes the rendered instruction stream to w.
func (e *Emitter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, e.String())
	if err != nil {
		return int64(n), errors.Wrap(err, "write code listing")
	}
	return int64(n), nil
}
