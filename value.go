package vm

import "fmt"

// refSpace names which pool a non-null Ref points into.
type refSpace uint8

const (
	spaceNone refSpace = iota
	spaceHeap
	spaceString
)

// Ref is an opaque reference: either null, or a live address into the
// heap or into the read-only string pool. Two null refs are always
// equal regardless of which space they would have otherwise addressed.
type Ref struct {
	null  bool
	space refSpace
	addr  uint32
}

// NullRef is the null reference, as pushed by ACONST_NULL.
var NullRef = Ref{null: true}

func heapRef(addr uint32) Ref   { return Ref{space: spaceHeap, addr: addr} }
func stringRef(addr uint32) Ref { return Ref{space: spaceString, addr: addr} }

// IsNull reports whether r is the null reference.
func (r Ref) IsNull() bool { return r.null }

func (r Ref) String() string {
	if r.null {
		return "null"
	}
	switch r.space {
	case spaceHeap:
		return fmt.Sprintf("heap+%d", r.addr)
	case spaceString:
		return fmt.Sprintf("str+%d", r.addr)
	default:
		return fmt.Sprintf("ref(?)+%d", r.addr)
	}
}

// refEqual implements the reference half of the Value equality rule:
// equal iff they denote the same address, and both-null is always
// equal regardless of space.
func refEqual(a, b Ref) bool {
	if a.null || b.null {
		return a.null == b.null
	}
	return a.space == b.space && a.addr == b.addr
}

// kind discriminates the two Value shapes.
type kind uint8

const (
	kindInt kind = iota
	kindRef
)

// Value is the tagged machine word carried on operand stacks and in
// locals: either a 32-bit signed integer, or an opaque reference. There
// is no implicit coercion between the two shapes.
type Value struct {
	k   kind
	i   int32
	ref Ref
}

// IntValue wraps a 32-bit signed integer as a Value.
func IntValue(i int32) Value { return Value{k: kindInt, i: i} }

// RefValue wraps a Ref as a Value.
func RefValue(r Ref) Value { return Value{k: kindRef, ref: r} }

// IsInt reports whether v carries an integer.
func (v Value) IsInt() bool { return v.k == kindInt }

// IsRef reports whether v carries a reference.
func (v Value) IsRef() bool { return v.k == kindRef }

// Int extracts the integer carried by v, trapping value-error if v does
// not carry one.
func (v Value) Int(vm *VM) int32 {
	if v.k != kindInt {
		vm.trap(ValueError, "expected int value, have reference")
	}
	return v.i
}

// Ref extracts the reference carried by v, trapping value-error if v
// does not carry one.
func (v Value) Ref(vm *VM) Ref {
	if v.k != kindRef {
		vm.trap(ValueError, "expected reference value, have int")
	}
	return v.ref
}

// Equal implements the Value equality rule: two integers are equal iff
// their 32-bit patterns match, two references are equal iff they
// denote the same address (both-null included), and an integer is
// never equal to a reference.
func (v Value) Equal(other Value) bool {
	if v.k != other.k {
		return false
	}
	if v.k == kindInt {
		return v.i == other.i
	}
	return refEqual(v.ref, other.ref)
}

func (v Value) String() string {
	if v.k == kindInt {
		return fmt.Sprintf("%d", v.i)
	}
	return v.ref.String()
}
