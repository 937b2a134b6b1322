package world

import (
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// Method dispatch
// ---------------------------------------------------------------------------

// MethodFunc is the signature for native method implementations. The
// target arrives as an identifier; implementations resolve it through
// the registry when they need the block itself.
type MethodFunc func(w *World, target ID, args []Value) (Value, error)

// MethodTable maps selectors to native method implementations.
type MethodTable struct {
	mu       sync.RWMutex
	bySymbol map[Symbol]MethodFunc
}

// NewMethodTable creates an empty method table.
func NewMethodTable() *MethodTable {
	return &MethodTable{bySymbol: make(map[Symbol]MethodFunc)}
}

// Register adds a method under a selector, replacing any previous entry.
func (mt *MethodTable) Register(selector Symbol, fn MethodFunc) {
	mt.mu.Lock()
	mt.bySymbol[selector] = fn
	mt.mu.Unlock()
}

// Lookup returns the method for a selector, or nil.
func (mt *MethodTable) Lookup(selector Symbol) MethodFunc {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.bySymbol[selector]
}

// Dispatch applies the method named by selector to target with args.
// Unknown selectors are an error; task evaluation and IR call execution
// both funnel through here.
func (w *World) Dispatch(selector Symbol, target ID, args []Value) (Value, error) {
	fn := w.Methods.Lookup(selector)
	if fn == nil {
		return Nil(), fmt.Errorf("world: unknown method %q", w.Symbols.Name(selector))
	}
	return fn(w, target, args)
}

// RegisterMethod interns the selector name and registers fn under it,
// returning the selector symbol.
func (w *World) RegisterMethod(name string, fn MethodFunc) Symbol {
	sym := w.Symbols.Intern(name)
	w.Methods.Register(sym, fn)
	return sym
}

// ---------------------------------------------------------------------------
// Built-in methods
// ---------------------------------------------------------------------------

func (w *World) registerBuiltinMethods() {
	w.RegisterMethod("show", func(w *World, target ID, args []Value) (Value, error) {
		b, err := w.Block(target)
		if err != nil {
			return Nil(), err
		}
		b.Visible = true
		b.InvalidateLayout()
		return Nil(), nil
	})

	w.RegisterMethod("hide", func(w *World, target ID, args []Value) (Value, error) {
		b, err := w.Block(target)
		if err != nil {
			return Nil(), err
		}
		b.Visible = false
		b.InvalidateLayout()
		return Nil(), nil
	})

	w.RegisterMethod("toggle", func(w *World, target ID, args []Value) (Value, error) {
		b, err := w.Block(target)
		if err != nil {
			return Nil(), err
		}
		b.Visible = !b.Visible
		b.InvalidateLayout()
		return Bool(b.Visible), nil
	})

	w.RegisterMethod("setvar", func(w *World, target ID, args []Value) (Value, error) {
		if len(args) != 2 || args[0].Type != TypeSymbol {
			return Nil(), fmt.Errorf("world: setvar wants (symbol, value), got %d args", len(args))
		}
		b, err := w.Block(target)
		if err != nil {
			return Nil(), err
		}
		b.SetVar(args[0].Sym, args[1])
		return args[1], nil
	})

	w.RegisterMethod("getvar", func(w *World, target ID, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Type != TypeSymbol {
			return Nil(), fmt.Errorf("world: getvar wants (symbol), got %d args", len(args))
		}
		b, err := w.Block(target)
		if err != nil {
			return Nil(), err
		}
		v, _ := b.GetVar(args[0].Sym)
		return v, nil
	})

	w.RegisterMethod("tag", func(w *World, target ID, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Type != TypeSymbol {
			return Nil(), fmt.Errorf("world: tag wants (symbol), got %d args", len(args))
		}
		b, err := w.Block(target)
		if err != nil {
			return Nil(), err
		}
		b.AddTag(args[0].Sym)
		return Nil(), nil
	})

	w.RegisterMethod("untag", func(w *World, target ID, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Type != TypeSymbol {
			return Nil(), fmt.Errorf("world: untag wants (symbol), got %d args", len(args))
		}
		b, err := w.Block(target)
		if err != nil {
			return Nil(), err
		}
		b.RemoveTag(args[0].Sym)
		return Nil(), nil
	})

	w.RegisterMethod("evaluate", func(w *World, target ID, args []Value) (Value, error) {
		return w.Evaluate(target)
	})

	w.RegisterMethod("evaluateInputs", func(w *World, target ID, args []Value) (Value, error) {
		return Nil(), w.EvaluateInputs(target)
	})

	w.RegisterMethod("discard", func(w *World, target ID, args []Value) (Value, error) {
		return Nil(), w.Discard(target)
	})

	w.RegisterMethod("countTree", func(w *World, target ID, args []Value) (Value, error) {
		return Int64(int64(w.CountTree(target))), nil
	})

	w.RegisterMethod("bufferSet", func(w *World, target ID, args []Value) (Value, error) {
		if len(args) != 2 || args[0].Type != TypeSymbol {
			return Nil(), fmt.Errorf("world: bufferSet wants (symbol, value), got %d args", len(args))
		}
		buf := w.ActiveBuffer()
		if buf == nil {
			return Nil(), fmt.Errorf("world: no active buffer")
		}
		buf.SetVar(args[0].Sym, args[1])
		return args[1], nil
	})

	w.RegisterMethod("bufferGet", func(w *World, target ID, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Type != TypeSymbol {
			return Nil(), fmt.Errorf("world: bufferGet wants (symbol), got %d args", len(args))
		}
		buf := w.ActiveBuffer()
		if buf == nil {
			return Nil(), fmt.Errorf("world: no active buffer")
		}
		v, _ := buf.GetVar(args[0].Sym)
		return v, nil
	})
}
