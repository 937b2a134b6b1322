package world

import (
	"sync"

	"github.com/chazu/mosaic/ir"
)

// ---------------------------------------------------------------------------
// Kind: per-operation behavior with delegation-chain lookup
// ---------------------------------------------------------------------------

// RecompileFunc produces the IR form of a block.
type RecompileFunc func(w *World, b *Block) (ir.Node, error)

// EvaluateFunc executes a block and yields its result.
type EvaluateFunc func(w *World, b *Block) (Value, error)

// EvaluateInputsFunc fills a block's results cache from its inputs.
type EvaluateInputsFunc func(w *World, b *Block) error

// Kind describes the behavior of one block operation. Any of the three
// phase functions may be nil, in which case lookup falls through the
// parent chain and finally to the default behavior. The chain is an
// explicit ordered fallback list, not Go embedding: the first non-nil
// function found wins.
type Kind struct {
	Name   Symbol
	Parent *Kind

	RecompileFn      RecompileFunc
	EvaluateFn       EvaluateFunc
	EvaluateInputsFn EvaluateInputsFunc
}

func (k *Kind) recompileFn() RecompileFunc {
	for cur := k; cur != nil; cur = cur.Parent {
		if cur.RecompileFn != nil {
			return cur.RecompileFn
		}
	}
	return nil
}

func (k *Kind) evaluateFn() EvaluateFunc {
	for cur := k; cur != nil; cur = cur.Parent {
		if cur.EvaluateFn != nil {
			return cur.EvaluateFn
		}
	}
	return nil
}

func (k *Kind) evaluateInputsFn() EvaluateInputsFunc {
	for cur := k; cur != nil; cur = cur.Parent {
		if cur.EvaluateInputsFn != nil {
			return cur.EvaluateInputsFn
		}
	}
	return nil
}

// KindTable maps operation tags to kinds.
type KindTable struct {
	mu     sync.RWMutex
	byName map[Symbol]*Kind
}

// NewKindTable creates an empty kind table.
func NewKindTable() *KindTable {
	return &KindTable{byName: make(map[Symbol]*Kind)}
}

// Register adds a kind under its name, replacing any previous entry.
func (kt *KindTable) Register(k *Kind) {
	kt.mu.Lock()
	kt.byName[k.Name] = k
	kt.mu.Unlock()
}

// Lookup returns the kind for an operation tag, or nil.
func (kt *KindTable) Lookup(op Symbol) *Kind {
	kt.mu.RLock()
	defer kt.mu.RUnlock()
	return kt.byName[op]
}

// KindFor returns the kind governing a block, or nil when the block's
// operation has no registered kind and default behavior applies.
func (w *World) KindFor(b *Block) *Kind {
	return w.Kinds.Lookup(b.Op)
}
