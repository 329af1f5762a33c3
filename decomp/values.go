package decomp

import "fmt"

// SymbolicValue is the tagged sum the interpreter pushes and pops while
// walking a code object. Recursion (Unop/Binop) is boxed through the
// interface itself, the same way the original Rust uses Box<DisValue>.
type SymbolicValue interface {
	isSymbolicValue()
	// Show renders the value as pseudo-code text.
	Show() string
}

// ConstValue is a compile-time known integer.
type ConstValue struct {
	Value int32
}

func (ConstValue) isSymbolicValue() {}
func (c ConstValue) Show() string   { return fmt.Sprintf("%d", c.Value) }

// DynamicValue is an opaque runtime value identified by a description,
// e.g. "global[3]" or "arg0".
type DynamicValue struct {
	Desc string
}

func (DynamicValue) isSymbolicValue() {}
func (d DynamicValue) Show() string   { return d.Desc }

// UnopValue is a unary expression over another symbolic value.
type UnopValue struct {
	Op   string
	Val  SymbolicValue
}

func (UnopValue) isSymbolicValue() {}
func (u UnopValue) Show() string    { return fmt.Sprintf("%s%s", u.Op, parenIfNeeded(u.Val)) }

// BinopValue is a binary expression over two symbolic values.
type BinopValue struct {
	Op          string
	Lhs, Rhs    SymbolicValue
}

func (BinopValue) isSymbolicValue() {}
func (b BinopValue) Show() string {
	return fmt.Sprintf("(%s) %s (%s)", b.Lhs.Show(), b.Op, b.Rhs.Show())
}

// FifoPosValue references a previously-evaluated string expression by
// index into the current path's FIFO buffer.
type FifoPosValue struct {
	Index int
}

func (FifoPosValue) isSymbolicValue() {}
func (f FifoPosValue) Show() string   { return fmt.Sprintf("$%d", f.Index) }

func parenIfNeeded(v SymbolicValue) string {
	if _, ok := v.(BinopValue); ok {
		return "(" + v.Show() + ")"
	}
	return v.Show()
}

// asConstInt returns the constant integer this value symbolically
// evaluates to, if it is statically known.
func asConstInt(v SymbolicValue) (int32, bool) {
	switch c := v.(type) {
	case ConstValue:
		return c.Value, true
	}
	return 0, false
}
