package ir

import (
	"fmt"
	"strings"
)

// Print renders a node as an s-expression for diagnostics and tests.
func Print(n Node) string {
	var b strings.Builder
	printNode(&b, n)
	return b.String()
}

func printNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("()")
	case *Seq:
		b.WriteString("(seq")
		for _, item := range n.Items {
			b.WriteByte(' ')
			printNode(b, item)
		}
		b.WriteByte(')')
	case *Literal:
		fmt.Fprintf(b, "%v", n.Value)
	case *Ref:
		fmt.Fprintf(b, "@%d", n.Target)
	case *Var:
		b.WriteString(n.Name)
	case *Call:
		b.WriteString("(call ")
		b.WriteString(n.Selector)
		if n.Target != nil {
			b.WriteByte(' ')
			printNode(b, n.Target)
		}
		for _, arg := range n.Args {
			b.WriteByte(' ')
			printNode(b, arg)
		}
		b.WriteByte(')')
	case *Quote:
		b.WriteByte('\'')
		printNode(b, n.Body)
	default:
		fmt.Fprintf(b, "?%T", n)
	}
}
