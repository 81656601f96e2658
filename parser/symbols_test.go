package parser

import "testing"

func TestSymbolTableDeclareAndLookup(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Declare("msg", 0); err != nil {
		t.Fatalf("Declare failed: %v", err)
	}
	sym, ok := st.Lookup("msg")
	if !ok {
		t.Fatal("expected 'msg' to be found")
	}
	if sym.Index != 0 {
		t.Errorf("expected index 0, got %d", sym.Index)
	}
	if !st.Has("msg") {
		t.Error("expected Has to report true")
	}
}

func TestSymbolTableRejectsDuplicateDeclaration(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Declare("msg", 0); err != nil {
		t.Fatalf("first Declare failed: %v", err)
	}
	if err := st.Declare("msg", 1); err == nil {
		t.Fatal("expected an error declaring 'msg' twice")
	}
}

func TestSymbolTableSetIndexUpdatesExisting(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Declare("msg", 0); err != nil {
		t.Fatalf("Declare failed: %v", err)
	}
	if err := st.SetIndex("msg", 3); err != nil {
		t.Fatalf("SetIndex failed: %v", err)
	}
	sym, _ := st.Lookup("msg")
	if sym.Index != 3 {
		t.Errorf("expected index 3, got %d", sym.Index)
	}
}

func TestSymbolTableSetIndexRejectsUndeclared(t *testing.T) {
	st := NewSymbolTable()
	if err := st.SetIndex("nope", 0); err == nil {
		t.Fatal("expected an error setting the index of an undeclared symbol")
	}
}

func TestSymbolTableAllPreservesDeclarationOrder(t *testing.T) {
	st := NewSymbolTable()
	names := []string{"c", "a", "b"}
	for i, n := range names {
		if err := st.Declare(n, uint32(i)); err != nil {
			t.Fatalf("Declare(%q) failed: %v", n, err)
		}
	}
	all := st.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(all))
	}
	for i, n := range names {
		if all[i].Name != n {
			t.Errorf("position %d: expected %q, got %q", i, n, all[i].Name)
		}
	}
}
