// internal/symtab/print.go
package symtab

import (
	"fmt"
	"io"
)

func shortType(t ExpType) string {
	switch t {
	case Integer:
		return "Int"
	case Void:
		return "Void"
	case IntegerArray:
		return "IntArray"
	default:
		return "error"
	}
}

func categoryName(c IdCategory) string {
	switch c {
	case NormalVar:
		return "Variable"
	case Func:
		return "Function"
	case ParamVar:
		return "ParamVar"
	default:
		return ""
	}
}

// each walks the scope's entries in bucket order.
func (s *Scope) each(fn func(*Entry)) {
	for i := range s.bucket {
		for l := s.bucket[i]; l != nil; l = l.next {
			fn(l)
		}
	}
}

func (t *Table) printParams(w io.Writer, scope *Scope) {
	fmt.Fprintf(w, "\nparam           paramtype\n")
	fmt.Fprintf(w, "--------        ------------------\n")
	scope.each(func(l *Entry) {
		if l.Category == ParamVar {
			fmt.Fprintf(w, "%-15s %-11s\n", l.Name, l.Type)
		}
	})
}

func (t *Table) printFunctionDeclarations(w io.Writer) {
	fmt.Fprintf(w, "\n<FUNCTION DECLARATION>\n")
	t.global.each(func(l *Entry) {
		if l.Category != Func {
			return
		}
		fmt.Fprintf(w, "function Name   Type   \n")
		fmt.Fprintf(w, "-------------   -------\n")
		fmt.Fprintf(w, "%-15s %-11s\n", l.Name, shortType(l.Type))
		if scope := t.ScopeByName(l.Name); scope != nil {
			t.printParams(w, scope)
		}
		fmt.Fprintf(w, "\n")
	})
}

func (t *Table) printFunctionsAndGlobals(w io.Writer) {
	fmt.Fprintf(w, "\n<FUNCTION AND GLOBAL VAR>\n")
	fmt.Fprintf(w, "Name          Type          Data Type     Location\n")
	fmt.Fprintf(w, "-------       ---------     ---------     --------\n")
	t.global.each(func(l *Entry) {
		fmt.Fprintf(w, "%-13s %-13s %-13s %4d\n",
			l.Name, categoryName(l.Category), shortType(l.Type), l.MemLoc)
	})
}

func (t *Table) printParamsAndLocals(w io.Writer) {
	fmt.Fprintf(w, "\n<FUNCTION PARAM AND LOCAL VAR>\n")
	// Registry slots 0..2 hold global and the built-in input/output
	// scopes; user function scopes start at 3.
	for _, s := range t.scopes[3:] {
		fmt.Fprintf(w, "function name: %s (nested level: %d)\n", s.Name, s.NestedLevel)
		fmt.Fprintf(w, "   ID Name      ID Type     Data Type    Location\n")
		fmt.Fprintf(w, "------------  -----------  ------------  --------\n")
		s.each(func(l *Entry) {
			fmt.Fprintf(w, "%-13s %-13s %-13s %4d\n",
				l.Name, categoryName(l.Category), shortType(l.Type), l.MemLoc)
		})
	}
}

// Dump writes the formatted symbol-table listing: function declarations
// with their parameters, functions and globals with memory locations,
// per-function parameter and local tables, and a cross reference of
// every identifier with its nesting level, scope and line numbers.
func (t *Table) Dump(w io.Writer) {
	t.printFunctionDeclarations(w)
	t.printFunctionsAndGlobals(w)
	t.printParamsAndLocals(w)

	fmt.Fprintf(w, "\n\nVariable Name   Type        Nested Level  Scope        Line Numbers\n")
	fmt.Fprintf(w, "-------------   -------     ------------  -------      ------------\n")
	for _, s := range t.scopes {
		s.each(func(l *Entry) {
			fmt.Fprintf(w, "%-15s %-11s %-13d %-10s ", l.Name, shortType(l.Type), s.NestedLevel, s.Name)
			for _, line := range l.Lines {
				fmt.Fprintf(w, "%4d ", line)
			}
			fmt.Fprintf(w, "\n")
		})
	}
}
