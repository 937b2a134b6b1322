package world

import (
	"testing"

	"github.com/chazu/mosaic/ir"
)

// ---------------------------------------------------------------------------
// Recompile/evaluate pipeline tests
// ---------------------------------------------------------------------------

func TestEvaluateInputsSizing(t *testing.T) {
	w := NewWorld()

	root := w.NewBlock(w.Symbols.Intern(OpSequence))
	vals := []Value{Int64(1), Int64(2), Int64(3)}
	for _, v := range vals {
		leaf := w.NewLiteralBlock(v)
		mustAdopt(t, w, root.ID, leaf.ID)
	}

	if err := w.EvaluateInputs(root.ID); err != nil {
		t.Fatalf("EvaluateInputs: %v", err)
	}
	if len(root.Results) < len(root.Inputs) {
		t.Fatalf("len(results) = %d, want >= %d", len(root.Results), len(root.Inputs))
	}
	for i, want := range vals {
		if !root.Results[i].Equal(want) {
			t.Errorf("results[%d] = %v, want %v", i, root.Results[i], want)
		}
	}
}

func TestResultsNeverShrink(t *testing.T) {
	w := NewWorld()

	root := w.NewBlock(w.Symbols.Intern(OpSequence))
	a := w.NewLiteralBlock(Int64(1))
	b := w.NewLiteralBlock(Int64(2))
	mustAdopt(t, w, root.ID, a.ID)
	mustAdopt(t, w, root.ID, b.ID)

	if err := w.EvaluateInputs(root.ID); err != nil {
		t.Fatalf("EvaluateInputs: %v", err)
	}
	if err := w.DeleteInput(root.ID, b.ID); err != nil {
		t.Fatalf("DeleteInput: %v", err)
	}
	if err := w.EvaluateInputs(root.ID); err != nil {
		t.Fatalf("EvaluateInputs after delete: %v", err)
	}
	if len(root.Results) != 2 {
		t.Errorf("len(results) = %d, want 2 (results never shrink)", len(root.Results))
	}
}

func TestDefaultRecompileWrapsInputsInSequence(t *testing.T) {
	w := NewWorld()

	root := w.NewBlock(w.Symbols.Intern(OpSequence))
	mustAdopt(t, w, root.ID, w.NewLiteralBlock(Int64(7)).ID)
	mustAdopt(t, w, root.ID, w.NewLiteralBlock(Str("x")).ID)

	form, err := w.Recompile(root.ID)
	if err != nil {
		t.Fatalf("Recompile: %v", err)
	}
	seq, ok := form.(*ir.Seq)
	if !ok {
		t.Fatalf("form = %T, want *ir.Seq", form)
	}
	if len(seq.Items) != 2 {
		t.Fatalf("len(seq.Items) = %d, want 2", len(seq.Items))
	}
	if _, ok := seq.Items[0].(*ir.Literal); !ok {
		t.Errorf("items[0] = %T, want *ir.Literal", seq.Items[0])
	}
}

func TestEvaluateExecutesRecompiledForm(t *testing.T) {
	w := NewWorld()

	// A sequence yields the value of its last input.
	root := w.NewBlock(w.Symbols.Intern(OpSequence))
	mustAdopt(t, w, root.ID, w.NewLiteralBlock(Int64(1)).ID)
	mustAdopt(t, w, root.ID, w.NewLiteralBlock(Int64(42)).ID)

	got, err := w.Evaluate(root.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got.Equal(Int64(42)) {
		t.Errorf("Evaluate = %v, want 42", got)
	}
}

func TestQuoteKindDoesNotEvaluateChildren(t *testing.T) {
	w := NewWorld()
	cell, sym := registerCountingMethod(w, "sideEffect")

	quote := w.NewBlock(w.Symbols.Intern(OpQuote))
	call := w.NewCallBlock(sym, quote.ID)
	mustAdopt(t, w, quote.ID, call.ID)

	// evaluateInputs on a quote is a no-op.
	if err := w.EvaluateInputs(quote.ID); err != nil {
		t.Fatalf("EvaluateInputs: %v", err)
	}
	if cell.calls != 0 {
		t.Fatalf("quote evaluated a child (%d calls)", cell.calls)
	}

	// Evaluation yields the recompiled body as data, still unexecuted.
	got, err := w.Evaluate(quote.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Type != TypeNode {
		t.Fatalf("quote result type = %v, want TypeNode", got.Type)
	}
	if cell.calls != 0 {
		t.Errorf("quote execution ran its children (%d calls)", cell.calls)
	}

	// The quoted form can be executed later, on demand.
	if _, err := w.Exec(got.Node); err != nil {
		t.Fatalf("Exec of quoted form: %v", err)
	}
	if cell.calls != 1 {
		t.Errorf("deferred execution calls = %d, want 1", cell.calls)
	}
}

func TestCallKindBypassesRecompilation(t *testing.T) {
	w := NewWorld()
	target := w.NewBlock(w.Symbols.Intern(OpSequence))
	target.Visible = false

	call := w.NewCallBlock(w.Symbols.Intern("show"), target.ID)
	if _, err := w.Evaluate(call.ID); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !target.Visible {
		t.Error("call block did not dispatch its stored triple")
	}
}

func TestCallBlockPassesEvaluatedInputsAsArgs(t *testing.T) {
	w := NewWorld()
	var got []Value
	sym := w.RegisterMethod("collect", func(w *World, target ID, args []Value) (Value, error) {
		got = append([]Value(nil), args...)
		return Nil(), nil
	})

	call := w.NewCallBlock(sym, NoID)
	mustAdopt(t, w, call.ID, w.NewLiteralBlock(Int64(5)).ID)
	mustAdopt(t, w, call.ID, w.NewLiteralBlock(Str("arg")).ID)

	if _, err := w.Evaluate(call.ID); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 2 || !got[0].Equal(Int64(5)) || !got[1].Equal(Str("arg")) {
		t.Errorf("args = %v, want [5 \"arg\"]", got)
	}
}

func TestTargetKindRedirectsContext(t *testing.T) {
	w := NewWorld()

	other := w.NewBlock(w.Symbols.Intern(OpSequence))
	sym := w.Symbols.Intern("who")
	other.SetVar(sym, Str("redirected"))

	// A probe method that reads the current execution context.
	var seen ID
	probe := w.RegisterMethod("probe", func(w *World, target ID, args []Value) (Value, error) {
		seen = w.EvalTarget()
		return Nil(), nil
	})

	tgt := w.NewBlock(w.Symbols.Intern(OpTarget))
	tgt.SetVar(w.Symbols.Intern("target"), BlockRef(other.ID))
	mustAdopt(t, w, tgt.ID, w.NewCallBlock(probe, NoID).ID)

	if err := w.EvaluateInputs(tgt.ID); err != nil {
		t.Fatalf("EvaluateInputs: %v", err)
	}
	if seen != other.ID {
		t.Errorf("execution context = %d, want %d", seen, other.ID)
	}
	if w.EvalTarget() != NoID {
		t.Error("execution context not restored after target evaluation")
	}
}

func TestExecVarResolution(t *testing.T) {
	w := NewWorld()
	buf := w.CreateBuffer("main")
	sym := w.Symbols.Intern("speed")
	buf.SetVar(sym, Int64(9))

	got, err := w.Exec(&ir.Var{Name: "speed"})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !got.Equal(Int64(9)) {
		t.Errorf("var = %v, want 9 (buffer namespace)", got)
	}

	// Context-block variables shadow buffer variables.
	ctx := w.NewBlock(w.Symbols.Intern(OpSequence))
	ctx.SetVar(sym, Int64(1))
	err = w.WithEvalTarget(ctx.ID, func() error {
		v, err := w.Exec(&ir.Var{Name: "speed"})
		if err != nil {
			return err
		}
		if !v.Equal(Int64(1)) {
			t.Errorf("var = %v, want 1 (context shadows buffer)", v)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestExecSeqYieldsLastValue(t *testing.T) {
	w := NewWorld()

	got, err := w.Exec(&ir.Seq{Items: []ir.Node{
		&ir.Literal{Value: Int64(1)},
		&ir.Literal{Value: Int64(2)},
	}})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !got.Equal(Int64(2)) {
		t.Errorf("seq = %v, want 2", got)
	}

	empty, err := w.Exec(&ir.Seq{})
	if err != nil {
		t.Fatalf("Exec empty: %v", err)
	}
	if !empty.IsNil() {
		t.Errorf("empty seq = %v, want nil", empty)
	}
}
