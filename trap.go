package vm

import "fmt"

// Kind classifies a non-normal termination of the engine. The taxonomy
// is closed: these five kinds plus the structural "invalid opcode"
// abort, which is reported with KindInvalidOpcode.
type Kind uint8

const (
	// UserError is raised by ATHROW.
	UserError Kind = iota
	// AssertionFailure is raised by ASSERT on a zero condition.
	AssertionFailure
	// MemoryError is raised by null dereference, negative array
	// length, zero element stride, or out-of-range array index.
	MemoryError
	// ValueError is raised when a Value's shape doesn't match what an
	// opcode expects (extracting an int from a ref or vice versa).
	ValueError
	// ArithError is raised by div/rem by zero, INT_MIN/-1 overflow, or
	// a shift amount outside [0, 31].
	ArithError
	// KindInvalidOpcode marks the structural "unassigned opcode byte"
	// abort for unassigned opcode bytes -- a compiler or
	// image-corruption condition, distinct from ValueError.
	KindInvalidOpcode
)

func (k Kind) String() string {
	switch k {
	case UserError:
		return "user-error"
	case AssertionFailure:
		return "assertion-failure"
	case MemoryError:
		return "memory-error"
	case ValueError:
		return "value-error"
	case ArithError:
		return "arith-error"
	case KindInvalidOpcode:
		return "invalid-opcode"
	default:
		return "unknown-trap"
	}
}

// TrapError is the classified, non-recoverable termination the engine
// commits to raising exactly once for any abort. Any trap unwinds
// immediately with no local recovery: the compiled program has no
// construct for catching one.
type TrapError struct {
	Kind    Kind
	Message string
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// trap raises a classified abort. It never returns; it panics with a
// *TrapError that Execute recovers at the top level.
func (vm *VM) trap(kind Kind, format string, args ...interface{}) {
	panic(&TrapError{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
