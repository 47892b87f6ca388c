package vm

import "fmt"

// FuncDesc describes one entry of the function pool: argument/local
// counts and the function's own code. NumVars is the total size of the
// locals vector, including the NumArgs argument slots at the low end
// of it -- INVOKESTATIC binds arguments into locals 0..NumArgs-1 of a
// vector sized by NumVars, not a separate vector of its own.
type FuncDesc struct {
	NumArgs uint16
	NumVars uint16
	Code    []byte
}

// NativeDesc describes one entry of the native pool: the argument
// count and an index into the host-provided NativeTable.
type NativeDesc struct {
	NumArgs uint16
	TableIndex uint16
}

// Native is a host-provided function: it takes a contiguous buffer of
// Values (length == the descriptor's NumArgs) and returns one Value.
// The VM trusts natives not to corrupt its state.
type Native func(vm *VM, args []Value) Value

// NativeTable is the fixed, host-supplied vector of native functions
// indexed by NativeDesc.TableIndex. Its order and semantics must agree
// between the program image and the embedding host; the
// library of concrete natives (arithmetic formatting, I/O, string
// helpers) is an external collaborator, out of scope for the core --
// see internal/nativelib for a minimal reference implementation.
type NativeTable []Native

// Image is the immutable, loader-supplied program the VM executes.
// Pools are read-only for the life of the program.
type Image struct {
	IntPool      []int32
	StringPool   []byte
	FunctionPool []FuncDesc
	NativePool   []NativeDesc
}

// EntryFunc returns the designated entry function, function-pool index 0.
func (img *Image) EntryFunc() (FuncDesc, error) {
	if len(img.FunctionPool) == 0 {
		return FuncDesc{}, fmt.Errorf("c0vm: image has no functions")
	}
	return img.FunctionPool[0], nil
}

func (img *Image) function(idx uint16) FuncDesc {
	if int(idx) >= len(img.FunctionPool) {
		panic(&TrapError{Kind: MemoryError, Message: fmt.Sprintf("function pool index %d out of range", idx)})
	}
	return img.FunctionPool[idx]
}

func (img *Image) nativeDesc(idx uint16) NativeDesc {
	if int(idx) >= len(img.NativePool) {
		panic(&TrapError{Kind: MemoryError, Message: fmt.Sprintf("native pool index %d out of range", idx)})
	}
	return img.NativePool[idx]
}

func (img *Image) int32At(idx uint16) int32 {
	if int(idx) >= len(img.IntPool) {
		panic(&TrapError{Kind: MemoryError, Message: fmt.Sprintf("int pool index %d out of range", idx)})
	}
	return img.IntPool[idx]
}

// stringRefAt returns a reference to the byte at the given offset
// within the string pool, per ALDC.
func (img *Image) stringRefAt(idx uint16) Ref {
	if int(idx) > len(img.StringPool) {
		panic(&TrapError{Kind: MemoryError, Message: fmt.Sprintf("string pool offset %d out of range", idx)})
	}
	return stringRef(uint32(idx))
}

// CStringArg resolves a Ref a native function received as an argument
// back into a Go string, using the currently-executing image's string
// pool. It is the native-facing counterpart to Image.CString.
func (vm *VM) CStringArg(r Ref) string {
	s, _ := vm.img.CString(r)
	return s
}

// CString reads a NUL-terminated string starting at a string-pool
// reference, the representation natives (like ATHROW's message, or
// print routines) use to recover a Go string from a Ref.
func (img *Image) CString(r Ref) (string, bool) {
	if r.IsNull() || r.space != spaceString {
		return "", false
	}
	start := int(r.addr)
	if start > len(img.StringPool) {
		return "", false
	}
	end := start
	for end < len(img.StringPool) && img.StringPool[end] != 0 {
		end++
	}
	return string(img.StringPool[start:end]), true
}
