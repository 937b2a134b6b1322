package ir

// ---------------------------------------------------------------------------
// IR: intermediate representation for recompiled block trees
// ---------------------------------------------------------------------------

// Node is the interface implemented by all IR nodes. The IR is pure data:
// the interpreter over it lives with the runtime, so trees can be built
// and inspected in isolation from execution.
type Node interface {
	node() // marker method
}

// Seq evaluates its items in order. An empty sequence evaluates to nil;
// otherwise the sequence yields the value of its last item.
type Seq struct {
	Items []Node
}

func (n *Seq) node() {}

// Literal yields a constant value. The payload is opaque to the IR; the
// runtime stores its own value representation here.
type Literal struct {
	Value any
}

func (n *Literal) node() {}

// Ref yields a reference to a registered object. Targets are raw registry
// identifiers, resolved by the interpreter at execution time.
type Ref struct {
	Target uint32
}

func (n *Ref) node() {}

// Var yields the value of a named variable, resolved against the current
// execution context and then the active buffer.
type Var struct {
	Name string
}

func (n *Var) node() {}

// Call dispatches a method. Target may be nil, in which case the call is
// directed at the current execution context. Args are evaluated in order
// before dispatch.
type Call struct {
	Selector string
	Target   Node
	Args     []Node
}

func (n *Call) node() {}

// Quote yields its body as data without evaluating it.
type Quote struct {
	Body Node
}

func (n *Quote) node() {}

// Count returns the number of nodes in a tree, including the root.
// A nil tree counts as zero.
func Count(n Node) int {
	if n == nil {
		return 0
	}
	total := 1
	switch n := n.(type) {
	case *Seq:
		for _, item := range n.Items {
			total += Count(item)
		}
	case *Call:
		total += Count(n.Target)
		for _, arg := range n.Args {
			total += Count(arg)
		}
	case *Quote:
		total += Count(n.Body)
	}
	return total
}
