package vm

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// DumpFrame renders the current frame's operand stack and locals as a
// pair of tables, for interactive debugging (cmd/c0vm's --step mode)
// and test failure output. It never panics: a nil vm.cur prints an
// empty dump.
func (vm *VM) DumpFrame(w io.Writer) {
	f := vm.cur
	fmt.Fprintf(w, "pc=%d depth=%d\n", frameOrZeroPC(f), vm.calls.depth())

	stack := tablewriter.NewWriter(w)
	stack.SetHeader([]string{"stack (top first)", "value"})
	if f != nil {
		for i := f.stack.Size() - 1; i >= 0; i-- {
			stack.Append([]string{fmt.Sprintf("%d", i), f.stack.vals[i].String()})
		}
	}
	stack.Render()

	locals := tablewriter.NewWriter(w)
	locals.SetHeader([]string{"local", "value"})
	if f != nil {
		for i, v := range f.locals {
			locals.Append([]string{fmt.Sprintf("%d", i), v.String()})
		}
	}
	locals.Render()
}

func frameOrZeroPC(f *frame) int {
	if f == nil {
		return 0
	}
	return f.pc
}

// DumpPools renders an Image's int, function and native pools as
// tables and prints the string pool's size in bytes, for the `c0vm
// dump` subcommand.
func DumpPools(w io.Writer, img *Image) {
	ints := tablewriter.NewWriter(w)
	ints.SetHeader([]string{"#", "int"})
	for i, v := range img.IntPool {
		ints.Append([]string{fmt.Sprintf("%d", i), fmt.Sprintf("%d", v)})
	}
	ints.Render()

	funcs := tablewriter.NewWriter(w)
	funcs.SetHeader([]string{"#", "numArgs", "numVars", "codeLen"})
	for i, fd := range img.FunctionPool {
		funcs.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", fd.NumArgs),
			fmt.Sprintf("%d", fd.NumVars),
			fmt.Sprintf("%d", len(fd.Code)),
		})
	}
	funcs.Render()

	natives := tablewriter.NewWriter(w)
	natives.SetHeader([]string{"#", "numArgs", "tableIndex"})
	for i, nd := range img.NativePool {
		natives.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", nd.NumArgs),
			fmt.Sprintf("%d", nd.TableIndex),
		})
	}
	natives.Render()

	fmt.Fprintf(w, "string pool: %d bytes\n", len(img.StringPool))
}

// DumpCode disassembles one function's code using the opcode table and
// immWidth, without executing it.
func DumpCode(w io.Writer, code []byte) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"addr", "op", "imm"})
	for pc := 0; pc < len(code); {
		op := opcode(code[pc])
		width := immWidth(op)
		imm := ""
		if pc+1+width <= len(code) {
			imm = fmt.Sprintf("% x", code[pc+1:pc+1+width])
		}
		tw.Append([]string{fmt.Sprintf("%d", pc), op.String(), imm})
		pc += 1 + width
	}
	tw.Render()
}
