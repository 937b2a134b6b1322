package world

import (
	"fmt"

	"github.com/chazu/mosaic/ir"
)

// ---------------------------------------------------------------------------
// Built-in kinds
// ---------------------------------------------------------------------------

// Operation tag names for the built-in kinds.
const (
	OpSequence = "sequence"
	OpLiteral  = "literal"
	OpQuote    = "quote"
	OpCall     = "call"
	OpTarget   = "target"
)

// Variable names the built-in kinds read from their block.
const (
	varValue  = "value"
	varMethod = "method"
	varTarget = "target"
)

func (w *World) registerBuiltinKinds() {
	base := &Kind{Name: w.Symbols.Intern(OpSequence)}
	w.Kinds.Register(base)

	// Leaf/data blocks recompile to their stored literal value.
	w.Kinds.Register(&Kind{
		Name:   w.Symbols.Intern(OpLiteral),
		Parent: base,
		RecompileFn: func(w *World, b *Block) (ir.Node, error) {
			v, _ := b.GetVar(w.Symbols.Intern(varValue))
			return &ir.Literal{Value: v}, nil
		},
	})

	// Quote blocks recompile their children without evaluating them:
	// the recompiled sequence is wrapped as data, and the inputs phase
	// is a no-op so no child ever executes.
	w.Kinds.Register(&Kind{
		Name:   w.Symbols.Intern(OpQuote),
		Parent: base,
		RecompileFn: func(w *World, b *Block) (ir.Node, error) {
			body, err := w.defaultRecompile(b)
			if err != nil {
				return nil, err
			}
			return &ir.Quote{Body: body}, nil
		},
		EvaluateInputsFn: func(w *World, b *Block) error { return nil },
	})

	// Call blocks recompile to an explicit call node, but their own
	// evaluation bypasses recompilation: it directly dispatches the
	// stored method/target/arguments triple.
	w.Kinds.Register(&Kind{
		Name:   w.Symbols.Intern(OpCall),
		Parent: base,
		RecompileFn: func(w *World, b *Block) (ir.Node, error) {
			mv, ok := b.GetVar(w.Symbols.Intern(varMethod))
			if !ok || mv.Type != TypeSymbol {
				return nil, fmt.Errorf("world: call block %d has no method", b.ID)
			}
			call := &ir.Call{Selector: w.Symbols.Name(mv.Sym)}
			if tv, ok := b.GetVar(w.Symbols.Intern(varTarget)); ok && tv.Type == TypeBlock {
				call.Target = &ir.Ref{Target: uint32(tv.Block)}
			}
			for _, in := range b.Inputs {
				if in == NoID {
					continue
				}
				arg, err := w.Recompile(in)
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
			}
			return call, nil
		},
		EvaluateFn: func(w *World, b *Block) (Value, error) {
			mv, ok := b.GetVar(w.Symbols.Intern(varMethod))
			if !ok || mv.Type != TypeSymbol {
				return Nil(), fmt.Errorf("world: call block %d has no method", b.ID)
			}
			target := w.evalTarget
			if tv, ok := b.GetVar(w.Symbols.Intern(varTarget)); ok && tv.Type == TypeBlock {
				target = tv.Block
			}
			if err := w.defaultEvaluateInputs(b); err != nil {
				return Nil(), err
			}
			args := make([]Value, len(b.Results))
			copy(args, b.Results)
			return w.Dispatch(mv.Sym, target, args)
		},
	})

	// Target blocks redirect subsequent child evaluation into a
	// different execution context.
	w.Kinds.Register(&Kind{
		Name:   w.Symbols.Intern(OpTarget),
		Parent: base,
		EvaluateInputsFn: func(w *World, b *Block) error {
			target := b.ID
			if tv, ok := b.GetVar(w.Symbols.Intern(varTarget)); ok && tv.Type == TypeBlock {
				target = tv.Block
			}
			return w.WithEvalTarget(target, func() error {
				return w.defaultEvaluateInputs(b)
			})
		},
		EvaluateFn: func(w *World, b *Block) (Value, error) {
			target := b.ID
			if tv, ok := b.GetVar(w.Symbols.Intern(varTarget)); ok && tv.Type == TypeBlock {
				target = tv.Block
			}
			form, err := w.Recompile(b.ID)
			if err != nil {
				return Nil(), err
			}
			var result Value
			err = w.WithEvalTarget(target, func() error {
				var execErr error
				result, execErr = w.Exec(form)
				return execErr
			})
			return result, err
		},
	})
}

// NewLiteralBlock creates a registered literal block holding v.
func (w *World) NewLiteralBlock(v Value) *Block {
	b := w.NewBlock(w.Symbols.Intern(OpLiteral))
	b.SetVar(w.Symbols.Intern(varValue), v)
	return b
}

// NewCallBlock creates a registered call block dispatching method to
// target with its evaluated inputs as arguments.
func (w *World) NewCallBlock(method Symbol, target ID) *Block {
	b := w.NewBlock(w.Symbols.Intern(OpCall))
	b.SetVar(w.Symbols.Intern(varMethod), Sym(method))
	if target != NoID {
		b.SetVar(w.Symbols.Intern(varTarget), BlockRef(target))
	}
	return b
}
