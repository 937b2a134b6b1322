package world

import "sync"

// ---------------------------------------------------------------------------
// SymbolTable: Interned symbols
// ---------------------------------------------------------------------------

// Symbol is an interned identifier. The zero value is NoSymbol, which is
// never returned by Intern.
type Symbol uint32

// NoSymbol is the absent symbol (no category, no tag).
const NoSymbol Symbol = 0

// SymbolTable interns symbol strings to unique IDs. Symbols are immutable,
// unique strings used for operation tags, categories, variable names, and
// method selectors.
type SymbolTable struct {
	mu     sync.RWMutex
	byName map[string]Symbol
	byID   []string // index 0 reserved for NoSymbol
}

// NewSymbolTable creates a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string]Symbol),
		byID:   make([]string, 1, 256),
	}
}

// Intern returns the Symbol for a name, creating a new one if needed.
func (st *SymbolTable) Intern(name string) Symbol {
	// Fast path: read-only lookup
	st.mu.RLock()
	if id, ok := st.byName[name]; ok {
		st.mu.RUnlock()
		return id
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := st.byName[name]; ok {
		return id
	}

	id := Symbol(len(st.byID))
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Lookup returns the Symbol for a name, or NoSymbol and false if not interned.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	id, ok := st.byName[name]
	return id, ok
}

// Name returns the name for a Symbol, or "" for NoSymbol or an invalid ID.
func (st *SymbolTable) Name(id Symbol) string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if id == NoSymbol || int(id) >= len(st.byID) {
		return ""
	}
	return st.byID[id]
}

// Len returns the number of interned symbols.
func (st *SymbolTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byID) - 1
}
