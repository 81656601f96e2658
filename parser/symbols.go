package parser

import "fmt"

// Symbol is a named entry in the SymbolTable. Index starts at 0 and, for
// data symbols, is set to the descriptor index of their blob in the
// constant heap.
type Symbol struct {
	Name  string
	Index uint32
}

// SymbolTable is an ordered collection of uniquely-named symbols. Names are
// case-sensitive; lookup goes through a name-keyed map, and a parallel
// slice keeps declaration order for xref tooling.
type SymbolTable struct {
	order  []*Symbol
	byName map[string]*Symbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Has reports whether name is already declared.
func (st *SymbolTable) Has(name string) bool {
	_, ok := st.byName[name]
	return ok
}

// Declare adds a new symbol with the given initial index. Returns an error
// if name is already declared.
func (st *SymbolTable) Declare(name string, index uint32) error {
	if st.Has(name) {
		return fmt.Errorf("symbol %q already declared", name)
	}
	sym := &Symbol{Name: name, Index: index}
	st.byName[name] = sym
	st.order = append(st.order, sym)
	return nil
}

// SetIndex updates a previously-declared symbol's index, used once the
// data directives know their heap blob's descriptor id.
func (st *SymbolTable) SetIndex(name string, index uint32) error {
	sym, ok := st.byName[name]
	if !ok {
		return fmt.Errorf("undefined symbol %q", name)
	}
	sym.Index = index
	return nil
}

// Lookup returns the symbol named name, if declared.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.byName[name]
	return sym, ok
}

// All returns every symbol in declaration order, for xref tooling.
func (st *SymbolTable) All() []*Symbol {
	return st.order
}
