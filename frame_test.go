package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Frame_Locals(t *testing.T) {
	f := newFrame(FuncDesc{NumArgs: 2, NumVars: 3, Code: []byte{0x90}})
	require.Len(t, f.locals, 3)
	require.Equal(t, Value{}, f.locals[0])
}

func Test_CallStack_LIFO(t *testing.T) {
	var cs callStack
	require.True(t, cs.isEmpty())
	a := newFrame(FuncDesc{})
	b := newFrame(FuncDesc{})
	cs.push(a)
	cs.push(b)
	require.Equal(t, 2, cs.depth())
	require.Same(t, b, cs.pop())
	require.Same(t, a, cs.pop())
	require.True(t, cs.isEmpty())
}

func Test_Frame_ImmediateDecoding(t *testing.T) {
	f := &frame{code: []byte{0x10, 0xff, 0x00, 0x01, 0x00}}
	require.Equal(t, int32(-1), f.s8(1))
	require.Equal(t, uint16(1), f.u16(2))
}

func Test_Frame_Branch(t *testing.T) {
	// goto at address 2, offset -2 targets address 0.
	f := &frame{pc: 2, code: []byte{0x00, 0x00, 0x46, 0xff, 0xfe}}
	require.Equal(t, 0, f.branch(2))
}

func Test_CheckShift(t *testing.T) {
	vm := &VM{}
	require.Equal(t, uint(5), vm.checkShift(5))
	require.Panics(t, func() { vm.checkShift(32) })
	require.Panics(t, func() { vm.checkShift(-1) })
}

func Test_Idiv_Irem(t *testing.T) {
	vm := &VM{}
	require.Equal(t, int32(3), vm.idiv(7, 2))
	require.Equal(t, int32(1), vm.irem(7, 2))
	require.Panics(t, func() { vm.idiv(1, 0) })
	require.Panics(t, func() { vm.irem(1, 0) })
	require.Panics(t, func() { vm.idiv(-1<<31, -1) })
}
