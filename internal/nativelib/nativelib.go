// Package nativelib provides a minimal reference implementation of the
// native-function table a host embeds into a vm.VM (vm/pools.go's
// NativeTable): integer formatting and single-character I/O, the two
// families of native call a C0 program typically needs to produce any
// observable output at all.
//
// This library is an external collaborator to the VM core, not part
// of its contract: a host is free to supply any NativeTable whose
// indices agree with its compiled image's native pool.
package nativelib

import (
	"fmt"
	"io"

	c0vm "github.com/go-c0vm/c0vm"
	"github.com/go-c0vm/c0vm/internal/runeio"
)

// Index names the fixed slot each function occupies in Table's output,
// so a program image's native pool can reference them by position.
const (
	IndexPrintInt = iota
	IndexPrintChar
	IndexPrintString
	IndexReadChar
	IndexEOF
)

// Table builds the reference native table, writing program output
// through out and reading input through in. Passing a nil in disables
// ReadChar (it always returns EOF's sentinel, -1).
func Table(out io.Writer, in io.Reader) c0vm.NativeTable {
	var rr runeio.Reader
	if in != nil {
		rr = runeio.NewReader(in)
	}
	return c0vm.NativeTable{
		IndexPrintInt:    nativePrintInt(out),
		IndexPrintChar:   nativePrintChar(out),
		IndexPrintString: nativePrintString(out),
		IndexReadChar:    nativeReadChar(rr),
		IndexEOF:         nativeEOF(),
	}
}

// nativePrintInt implements print_int(n): writes the decimal
// representation of n followed by a newline, and returns n unchanged
// so callers may chain it inline.
func nativePrintInt(out io.Writer) c0vm.Native {
	return func(vm *c0vm.VM, args []c0vm.Value) c0vm.Value {
		n := args[0].Int(vm)
		fmt.Fprintf(out, "%d\n", n)
		return args[0]
	}
}

// nativePrintChar implements print_char(c): writes the single
// character denoted by c's low 7 bits (matching CMSTORE's masking,
// heap.go), with no trailing newline.
func nativePrintChar(out io.Writer) c0vm.Native {
	return func(vm *c0vm.VM, args []c0vm.Value) c0vm.Value {
		c := args[0].Int(vm) & 0x7f
		runeio.WriteANSIRune(out, rune(c))
		return args[0]
	}
}

// nativePrintString implements print_string(s): s is a reference into
// the program's string pool; the native reads it back to a Go string
// via the host's Image and writes it with a trailing newline.
func nativePrintString(out io.Writer) c0vm.Native {
	return func(vm *c0vm.VM, args []c0vm.Value) c0vm.Value {
		r := args[0].Ref(vm)
		s := vm.CStringArg(r)
		fmt.Fprintln(out, s)
		return args[0]
	}
}

// nativeReadChar implements read_char(): returns the next input byte
// as an integer, or -1 at end of input.
func nativeReadChar(rr runeio.Reader) c0vm.Native {
	return func(vm *c0vm.VM, args []c0vm.Value) c0vm.Value {
		if rr == nil {
			return c0vm.IntValue(-1)
		}
		r, _, err := rr.ReadRune()
		if err != nil {
			return c0vm.IntValue(-1)
		}
		return c0vm.IntValue(int32(r))
	}
}

// nativeEOF implements eof(): no arguments, always returns 0 (false)
// in this reference implementation since ReadChar already folds EOF
// into its own -1 sentinel; a richer host could track real stream state.
func nativeEOF() c0vm.Native {
	return func(vm *c0vm.VM, args []c0vm.Value) c0vm.Value {
		return c0vm.IntValue(0)
	}
}
