// internal/symtab/symtab.go
package symtab

// ExpType is the type attached to a declaration or expression.
type ExpType int

const (
	Void ExpType = iota
	Integer
	IntegerArray
	Err
)

func (t ExpType) String() string {
	switch t {
	case Void:
		return "Void"
	case Integer:
		return "Integer"
	case IntegerArray:
		return "IntegerArray"
	default:
		return "error"
	}
}

// IdCategory classifies what an identifier names. Default marks a use
// site that has been bound back to its declaration; it carries no new
// type information.
type IdCategory int

const (
	NormalVar IdCategory = iota
	Func
	ParamVar
	Default
)

// Size is the number of bucket chains per scope.
const Size = 256

// shift is the power of two used as multiplier in the hash function.
const shift = 4

func hash(key string) int {
	h := 0
	for i := 0; i < len(key); i++ {
		h = ((h << shift) + int(key[i])) % Size
	}
	return h
}

// Entry is one symbol record: name, type, category, the 0-based
// parameter position (-1 for non-parameters), the assigned word offset,
// and every source line the name appears on.
type Entry struct {
	Name       string
	Type       ExpType
	Category   IdCategory
	ParamIndex int
	MemLoc     int
	Lines      []int

	next *Entry
}

// Scope is one nesting level of the name directory. Function-body
// scopes carry the function's name; the root is named "global".
type Scope struct {
	Name        string
	NestedLevel int
	Parent      *Scope
	MaxParamNum int
	MemSize     int

	bucket [Size]*Entry
}

// LookupLocal searches this scope only.
func (s *Scope) LookupLocal(name string) *Entry {
	l := s.bucket[hash(name)]
	for l != nil && l.Name != name {
		l = l.next
	}
	return l
}

// Lookup searches this scope and all ancestors; first match wins.
func (s *Scope) Lookup(name string) *Entry {
	for sc := s; sc != nil; sc = sc.Parent {
		if l := sc.LookupLocal(name); l != nil {
			return l
		}
	}
	return nil
}

// FindScopeOf returns the nearest scope on the ancestor chain that
// declares name, or nil.
func (s *Scope) FindScopeOf(name string) *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.LookupLocal(name) != nil {
			return sc
		}
	}
	return nil
}

// Table owns the scope stack, the registry of every scope ever created,
// and the two memory-offset cursors. Popped scopes stay reachable
// through the registry so post-analysis printing and lookup-by-name
// keep working.
type Table struct {
	global  *Scope
	current *Scope
	scopes  []*Scope

	loc       int // local cursor; offsets 0 and 1 hold the saved fp and saved sp
	globalLoc int
}

// NewTable creates the global scope and registers the two built-in
// functions input and output, each with a child scope shaped so that
// call-site argument checking works on them like on user functions.
func NewTable() *Table {
	t := &Table{loc: 2, globalLoc: 1}
	g := &Scope{Name: "global"}
	t.global = g
	t.current = g
	t.scopes = append(t.scopes, g)

	t.Insert(g, "input", -1, Integer, Func, -1, 0)
	t.Push("input")
	t.Top().MemSize = 2
	t.Pop()

	t.Insert(g, "output", -1, Void, Func, -1, 0)
	t.Push("output")
	t.Insert(t.Top(), "arg", -1, Integer, ParamVar, 0, 0)
	t.Pop()

	t.ResetMemloc()
	return t
}

// Push creates a child of the current scope, registers it, and makes it
// current.
func (t *Table) Push(name string) {
	s := &Scope{
		Name:        name,
		NestedLevel: t.current.NestedLevel + 1,
		Parent:      t.current,
	}
	t.current = s
	t.scopes = append(t.scopes, s)
}

// Pop makes the parent current. The popped scope is not destroyed; it
// remains reachable through the registry.
func (t *Table) Pop() {
	t.current = t.current.Parent
}

func (t *Table) Top() *Scope { return t.current }

// SetCurrent restores a saved scope, used when a later pass re-enters a
// compound through its stamped scope.
func (t *Table) SetCurrent(s *Scope) { t.current = s }

// Reset returns the cursor to the global scope without touching the
// registry.
func (t *Table) Reset() { t.current = t.global }

func (t *Table) Global() *Scope { return t.global }

// Scopes returns the registry in creation order.
func (t *Table) Scopes() []*Scope { return t.scopes }

// ResetMemloc restarts the local cursor for the next function. Offsets
// 0 and 1 are reserved for the saved frame pointer and stack pointer.
func (t *Table) ResetMemloc() { t.loc = 2 }

// Insert records a declaration in scope, assigning a memory location
// and advancing the matching cursor. On a name already present in the
// scope it only appends the line number; type, category and location
// stay untouched. arrSize is the element count for array declarations,
// 0 otherwise.
func (t *Table) Insert(scope *Scope, name string, lineno int, typ ExpType, cat IdCategory, paramIndex, arrSize int) *Entry {
	h := hash(name)
	l := scope.bucket[h]
	for l != nil && l.Name != name {
		l = l.next
	}
	if l != nil {
		l.Lines = append(l.Lines, lineno)
		return l
	}

	l = &Entry{
		Name:       name,
		Type:       typ,
		Category:   cat,
		ParamIndex: paramIndex,
		Lines:      []int{lineno},
	}
	if scope == t.global {
		if typ != IntegerArray {
			l.MemLoc = t.globalLoc
			t.globalLoc++
		} else {
			t.globalLoc += arrSize
			l.MemLoc = t.globalLoc
			t.globalLoc++
		}
		scope.MemSize = t.globalLoc
	} else {
		if cat != ParamVar {
			if typ != IntegerArray {
				l.MemLoc = t.loc
				t.loc++
			} else {
				l.MemLoc = t.loc
				t.loc += arrSize
				t.loc++
			}
			scope.MemSize = t.loc
			// Enclosing compounds of the same function share the frame;
			// keep their mem_size in step so the prologue sees the final
			// frame size.
			for s := t.current; s != nil && s.Name == scope.Name; s = s.Parent {
				s.MemSize = t.loc
			}
		} else {
			t.current.MemSize = t.loc
		}
	}
	if paramIndex != -1 {
		scope.MaxParamNum = paramIndex + 1
	}

	l.next = scope.bucket[h]
	scope.bucket[h] = l
	return l
}

// ScopeByName returns the first registered scope with the given name,
// or nil. Function scopes are registered under the function's name, so
// this resolves a callee's scope at a call site.
func (t *Table) ScopeByName(name string) *Scope {
	for _, s := range t.scopes {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ParamList returns the parameter entries of the named function ordered
// by parameter position, or nil if no such scope exists.
func (t *Table) ParamList(funcName string) []*Entry {
	scope := t.ScopeByName(funcName)
	if scope == nil {
		return nil
	}
	params := make([]*Entry, scope.MaxParamNum)
	for i := range scope.bucket {
		for l := scope.bucket[i]; l != nil; l = l.next {
			if l.Category == ParamVar && l.ParamIndex >= 0 && l.ParamIndex < len(params) {
				params[l.ParamIndex] = l
			}
		}
	}
	return params
}

// IsGlobal reports whether the entry itself is declared in the global
// scope. The comparison is by entry, not by name, so a local that
// shadows a global is not misclassified.
func (t *Table) IsGlobal(e *Entry) bool {
	return t.global.LookupLocal(e.Name) == e
}
