package world

import (
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// World: one running program instance
// ---------------------------------------------------------------------------

// World is the explicit context object for one running program instance:
// the registry, the symbol/kind/method tables, the live buffers, and the
// ambient active buffer all hang off it. Multiple independent worlds can
// coexist in one process; nothing here is package-global.
//
// A World is single-threaded by contract. A concurrent host serializes
// access before calling in (see server.WorldWorker).
type World struct {
	// InstanceID uniquely names this world instance across processes.
	InstanceID string

	Registry *Registry
	Symbols  *SymbolTable
	Kinds    *KindTable
	Methods  *MethodTable

	// TextInserter receives literal characters unmatched by event
	// bindings. Optional; installed by the text-editing collaborator.
	TextInserter TextInserter

	buffersByName map[string]ID
	bufferOrder   []ID
	activeBuffer  ID

	evalTarget ID // current execution context for calls and variables
}

// NewWorld creates a world with the built-in kinds and methods installed.
func NewWorld() *World {
	w := &World{
		InstanceID:    uuid.NewString(),
		Registry:      NewRegistry(),
		Symbols:       NewSymbolTable(),
		Kinds:         NewKindTable(),
		Methods:       NewMethodTable(),
		buffersByName: make(map[string]ID),
	}
	w.registerBuiltinKinds()
	w.registerBuiltinMethods()
	return w
}

// ---------------------------------------------------------------------------
// Persistence collaborator hooks
// ---------------------------------------------------------------------------

// BeforeSerialize prepares a block for snapshotting: volatile caches are
// dropped so they are rebuilt after reconstruction. Called by the
// persistence collaborator immediately before a snapshot.
func (w *World) BeforeSerialize(node ID) error {
	b, err := w.Block(node)
	if err != nil {
		return err
	}
	b.InvalidateLayout()
	return nil
}

// AfterDeserialize finalizes a reconstructed block. The caller must have
// re-registered the block (see Registry.RestoreAt) before invoking this;
// an unregistered node is an error. Called by the persistence
// collaborator immediately after reconstruction.
func (w *World) AfterDeserialize(node ID) error {
	b, err := w.Block(node)
	if err != nil {
		return err
	}
	b.InvalidateLayout()
	return nil
}
