package vm_test

import (
	"bytes"
	"testing"

	vm "github.com/go-c0vm/c0vm"
	"github.com/go-c0vm/c0vm/internal/image"
	"github.com/go-c0vm/c0vm/internal/nativelib"
	"github.com/stretchr/testify/require"
)

func runProgram(t *testing.T, img *vm.Image) (int32, error) {
	t.Helper()
	machine := vm.New()
	return machine.Run(ctxBg(), img)
}

// Scenario A: straight-line arithmetic.
func Test_Exec_Arithmetic(t *testing.T) {
	img := imageForProgram(0, func(b *image.FuncBuilder) {
		b.Bipush(3)
		b.Bipush(4)
		b.Iadd()
		b.Bipush(2)
		b.Imul()
		b.Return()
	})
	result, err := runProgram(t, img)
	require.NoError(t, err)
	require.Equal(t, int32(14), result)
}

// Scenario B: conditional branch. bipush(1) < bipush(2) takes the
// branch, skipping the "not taken" arm that would return 0.
func Test_Exec_ConditionalBranch(t *testing.T) {
	img := imageForProgram(0, func(b *image.FuncBuilder) {
		b.Bipush(1)        // addr 0..1
		b.Bipush(2)        // addr 2..3
		target := b.Pos() + 3 /* if_icmplt */ + 2 /* bipush */ + 1 /* return */
		b.IfICmpLt(target) // addr 4..6
		b.Bipush(0)         // addr 7..8 (not taken)
		b.Return()          // addr 9
		b.Bipush(1)         // addr 10..11 (branch target)
		b.Return()          // addr 12
	})
	result, err := runProgram(t, img)
	require.NoError(t, err)
	require.Equal(t, int32(1), result)
}

// Scenario C: division by zero traps arith-error.
func Test_Exec_DivByZeroTraps(t *testing.T) {
	img := imageForProgram(0, func(b *image.FuncBuilder) {
		b.Bipush(1)
		b.Bipush(0)
		b.Idiv()
		b.Return()
	})
	_, err := runProgram(t, img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "arith-error")
}

// Scenario D: static call with argument passing.
func Test_Exec_StaticCall(t *testing.T) {
	b := image.NewBuilder()
	_, main := b.Func(0, 0)
	doubleIdx, double := b.Func(1, 1)

	main.Bipush(21)
	main.Invokestatic(doubleIdx)
	main.Return()
	main.Finish()

	double.Vload(0)
	double.Vload(0)
	double.Iadd()
	double.Return()
	double.Finish()

	result, err := runProgram(t, b.Image())
	require.NoError(t, err)
	require.Equal(t, int32(42), result)
}

// Scenario E: out-of-range array index traps memory-error.
func Test_Exec_ArrayOutOfBoundsTraps(t *testing.T) {
	img := imageForProgram(1, func(b *image.FuncBuilder) {
		b.Bipush(2)
		b.Newarray(4)
		b.Vstore(0)
		b.Vload(0)
		b.Bipush(5)
		b.Aadds()
		b.Pop()
		b.Bipush(0)
		b.Return()
	})
	_, err := runProgram(t, img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "memory-error")
}

// Scenario F: null dereference traps memory-error.
func Test_Exec_NullDereferenceTraps(t *testing.T) {
	img := imageForProgram(0, func(b *image.FuncBuilder) {
		b.AconstNull()
		b.Imload()
		b.Return()
	})
	_, err := runProgram(t, img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "memory-error")
}

func Test_Exec_AssertFailureTraps(t *testing.T) {
	b := image.NewBuilder()
	msg := b.CString("bad state")
	img := imageForProgram2(b, func(fn *image.FuncBuilder) {
		fn.Bipush(0)
		fn.Aldc(msg)
		fn.Assert()
		fn.Bipush(0)
		fn.Return()
	})
	_, err := runProgram(t, img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "assertion-failure")
	require.Contains(t, err.Error(), "bad state")
}

func Test_Exec_AthrowCarriesMessage(t *testing.T) {
	b := image.NewBuilder()
	msg := b.CString("kaboom")
	img := imageForProgram2(b, func(fn *image.FuncBuilder) {
		fn.Aldc(msg)
		fn.Athrow()
	})
	_, err := runProgram(t, img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "user-error")
	require.Contains(t, err.Error(), "kaboom")
}

// Scenario G: INVOKENATIVE dispatches into a host-provided function
// and its result lands back on the caller's own operand stack.
func Test_Exec_InvokeNative(t *testing.T) {
	var out bytes.Buffer
	b := image.NewBuilder()
	nativeIdx := b.Native(1, nativelib.IndexPrintInt)
	_, main := b.Func(0, 0)
	main.Bipush(5)
	main.Invokenative(nativeIdx)
	main.Return()
	main.Finish()

	machine := vm.New(vm.WithNatives(nativelib.Table(&out, nil)))
	result, err := machine.Run(ctxBg(), b.Image())
	require.NoError(t, err)
	require.Equal(t, int32(5), result)
	require.Equal(t, "5\n", out.String())
}

// imageForProgram2 is imageForProgram's variant for tests that need to
// intern pool entries (string constants) before emitting code.
func imageForProgram2(b *image.Builder, build func(*image.FuncBuilder)) *vm.Image {
	_, fn := b.Func(0, 1)
	build(fn)
	fn.Finish()
	return b.Image()
}
