package world

import (
	"fmt"

	"github.com/chazu/mosaic/ir"
)

// ---------------------------------------------------------------------------
// Recompiler/Evaluator: the two-stage pipeline
// ---------------------------------------------------------------------------

// EvaluateInputs fills the block's results cache. The results slice grows
// to at least the number of inputs and never shrinks; each present input
// is evaluated in order and its result stored in the matching slot.
// A kind may override this phase to evaluate a subset, a different order,
// or nothing at all.
func (w *World) EvaluateInputs(node ID) error {
	b, err := w.Block(node)
	if err != nil {
		return err
	}
	if k := w.KindFor(b); k != nil {
		if fn := k.evaluateInputsFn(); fn != nil {
			return fn(w, b)
		}
	}
	return w.defaultEvaluateInputs(b)
}

func (w *World) defaultEvaluateInputs(b *Block) error {
	for len(b.Results) < len(b.Inputs) {
		b.Results = append(b.Results, Nil())
	}
	for i, in := range b.Inputs {
		if in == NoID {
			continue
		}
		v, err := w.Evaluate(in)
		if err != nil {
			return err
		}
		b.Results[i] = v
	}
	return nil
}

// Recompile produces the block's intermediate form. The default wraps the
// recompiled form of every input, in order, in a sequence node. Kinds
// override this phase to change what code is generated; leaf/data kinds
// recompile to their literal value.
func (w *World) Recompile(node ID) (ir.Node, error) {
	b, err := w.Block(node)
	if err != nil {
		return nil, err
	}
	if k := w.KindFor(b); k != nil {
		if fn := k.recompileFn(); fn != nil {
			return fn(w, b)
		}
	}
	return w.defaultRecompile(b)
}

func (w *World) defaultRecompile(b *Block) (ir.Node, error) {
	seq := &ir.Seq{Items: make([]ir.Node, 0, len(b.Inputs))}
	for _, in := range b.Inputs {
		if in == NoID {
			continue
		}
		n, err := w.Recompile(in)
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, n)
	}
	return seq, nil
}

// Evaluate executes a block. The default executes the block's recompiled
// form; kinds override this phase to change how or whether generated code
// runs, including bypassing recompilation altogether.
func (w *World) Evaluate(node ID) (Value, error) {
	b, err := w.Block(node)
	if err != nil {
		return Nil(), err
	}
	if k := w.KindFor(b); k != nil {
		if fn := k.evaluateFn(); fn != nil {
			return fn(w, b)
		}
	}
	form, err := w.Recompile(node)
	if err != nil {
		return Nil(), err
	}
	return w.Exec(form)
}

// ---------------------------------------------------------------------------
// IR interpreter
// ---------------------------------------------------------------------------

// Exec executes an intermediate form against this world. Calls with no
// explicit target dispatch to the current execution context; variables
// resolve against the context block first, then the active buffer.
func (w *World) Exec(n ir.Node) (Value, error) {
	switch n := n.(type) {
	case nil:
		return Nil(), nil

	case *ir.Seq:
		result := Nil()
		for _, item := range n.Items {
			v, err := w.Exec(item)
			if err != nil {
				return Nil(), err
			}
			result = v
		}
		return result, nil

	case *ir.Literal:
		if n.Value == nil {
			return Nil(), nil
		}
		v, ok := n.Value.(Value)
		if !ok {
			return Nil(), fmt.Errorf("world: literal holds %T, want world.Value", n.Value)
		}
		return v, nil

	case *ir.Ref:
		return BlockRef(ID(n.Target)), nil

	case *ir.Var:
		return w.lookupVar(n.Name), nil

	case *ir.Call:
		target := w.evalTarget
		if n.Target != nil {
			tv, err := w.Exec(n.Target)
			if err != nil {
				return Nil(), err
			}
			if tv.Type != TypeBlock {
				return Nil(), fmt.Errorf("world: call target is %v, want a block reference", tv)
			}
			target = tv.Block
		}
		args := make([]Value, len(n.Args))
		for i, arg := range n.Args {
			v, err := w.Exec(arg)
			if err != nil {
				return Nil(), err
			}
			args[i] = v
		}
		return w.Dispatch(w.Symbols.Intern(n.Selector), target, args)

	case *ir.Quote:
		return NodeVal(n.Body), nil

	default:
		return Nil(), fmt.Errorf("world: cannot execute IR node %T", n)
	}
}

// lookupVar resolves a variable name against the current execution
// context block, then the active buffer's namespace.
func (w *World) lookupVar(name string) Value {
	sym, ok := w.Symbols.Lookup(name)
	if !ok {
		return Nil()
	}
	if w.evalTarget != NoID {
		if b, err := w.Block(w.evalTarget); err == nil {
			if v, ok := b.GetVar(sym); ok {
				return v
			}
		}
	}
	if buf := w.ActiveBuffer(); buf != nil {
		if v, ok := buf.GetVar(sym); ok {
			return v
		}
	}
	return Nil()
}

// WithEvalTarget runs fn with the execution context redirected to the
// given block, restoring the previous context afterwards. Kinds whose
// semantics send subsequent child evaluation elsewhere use this.
func (w *World) WithEvalTarget(target ID, fn func() error) error {
	prev := w.evalTarget
	w.evalTarget = target
	defer func() { w.evalTarget = prev }()
	return fn()
}

// EvalTarget returns the current execution context block, or NoID.
func (w *World) EvalTarget() ID {
	return w.evalTarget
}
