package world

import "testing"

func TestSymbolInterning(t *testing.T) {
	st := NewSymbolTable()

	a := st.Intern("alpha")
	b := st.Intern("beta")
	if a == b {
		t.Error("distinct names interned to the same symbol")
	}
	if again := st.Intern("alpha"); again != a {
		t.Errorf("re-intern = %d, want %d", again, a)
	}
	if a == NoSymbol || b == NoSymbol {
		t.Error("Intern returned NoSymbol")
	}
}

func TestSymbolName(t *testing.T) {
	st := NewSymbolTable()
	a := st.Intern("alpha")

	if got := st.Name(a); got != "alpha" {
		t.Errorf("Name = %q, want %q", got, "alpha")
	}
	if got := st.Name(NoSymbol); got != "" {
		t.Errorf("Name(NoSymbol) = %q, want empty", got)
	}
	if got := st.Name(9999); got != "" {
		t.Errorf("Name of invalid symbol = %q, want empty", got)
	}
}

func TestSymbolLookup(t *testing.T) {
	st := NewSymbolTable()
	st.Intern("alpha")

	if _, ok := st.Lookup("alpha"); !ok {
		t.Error("Lookup of interned name failed")
	}
	if _, ok := st.Lookup("missing"); ok {
		t.Error("Lookup of missing name succeeded")
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}
