package world

import (
	"strconv"
	"strings"

	"github.com/chazu/mosaic/ir"
)

// ---------------------------------------------------------------------------
// Value: tagged runtime values
// ---------------------------------------------------------------------------

// ValueType represents the type of a runtime value.
type ValueType int

const (
	TypeNil ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeSymbol
	TypeBlock // a block reference, held as an identifier
	TypeList
	TypeNode // quoted code-as-data
)

// Value is a runtime value: the result of evaluating a block, a variable
// binding, or a task argument. Block references are identifiers, never
// pointers.
type Value struct {
	Type  ValueType
	Int   int64
	Float float64
	Str   string
	Sym   Symbol
	Block ID
	List  []Value
	Node  ir.Node
}

// Nil returns the nil value.
func Nil() Value {
	return Value{Type: TypeNil}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{Type: TypeBool, Int: 1}
	}
	return Value{Type: TypeBool}
}

// Int64 creates an integer value.
func Int64(n int64) Value {
	return Value{Type: TypeInt, Int: n}
}

// Float64 creates a float value.
func Float64(f float64) Value {
	return Value{Type: TypeFloat, Float: f}
}

// Str creates a string value.
func Str(s string) Value {
	return Value{Type: TypeString, Str: s}
}

// Sym creates a symbol value.
func Sym(s Symbol) Value {
	return Value{Type: TypeSymbol, Sym: s}
}

// BlockRef creates a block reference value.
func BlockRef(id ID) Value {
	return Value{Type: TypeBlock, Block: id}
}

// ListVal creates a list value.
func ListVal(items ...Value) Value {
	return Value{Type: TypeList, List: items}
}

// NodeVal creates a quoted-code value.
func NodeVal(n ir.Node) Value {
	return Value{Type: TypeNode, Node: n}
}

// IsNil returns true if the value is nil.
func (v Value) IsNil() bool {
	return v.Type == TypeNil
}

// IsTruthy returns true for values considered "true" in conditionals.
// Nil and false are falsy; everything else, including zero numbers'
// absence, follows the numeric rules below.
func (v Value) IsTruthy() bool {
	switch v.Type {
	case TypeNil:
		return false
	case TypeBool:
		return v.Int != 0
	case TypeInt:
		return v.Int != 0
	case TypeFloat:
		return v.Float != 0
	case TypeString:
		return v.Str != ""
	case TypeList:
		return len(v.List) > 0
	default:
		return true
	}
}

// Equal reports structural equality between two values.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeNil:
		return true
	case TypeBool, TypeInt:
		return v.Int == o.Int
	case TypeFloat:
		return v.Float == o.Float
	case TypeString:
		return v.Str == o.Str
	case TypeSymbol:
		return v.Sym == o.Sym
	case TypeBlock:
		return v.Block == o.Block
	case TypeList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case TypeNode:
		return v.Node == o.Node
	default:
		return false
	}
}

// String returns a printable representation for diagnostics.
func (v Value) String() string {
	switch v.Type {
	case TypeNil:
		return "nil"
	case TypeBool:
		if v.Int != 0 {
			return "true"
		}
		return "false"
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case TypeString:
		return strconv.Quote(v.Str)
	case TypeSymbol:
		return "#" + strconv.FormatUint(uint64(v.Sym), 10)
	case TypeBlock:
		return "block:" + strconv.FormatUint(uint64(v.Block), 10)
	case TypeList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case TypeNode:
		return "'" + ir.Print(v.Node)
	default:
		return "?"
	}
}
