package vm_test

import (
	"testing"

	vm "github.com/go-c0vm/c0vm"
	"github.com/stretchr/testify/require"
)

func Test_Stack_PushPop(t *testing.T) {
	s := vm.NewStack()
	require.True(t, s.IsEmpty())
	s.Push(vm.IntValue(1))
	s.Push(vm.IntValue(2))
	require.Equal(t, 2, s.Size())
	require.Equal(t, vm.IntValue(2), s.Top())
	require.Equal(t, vm.IntValue(2), s.Pop())
	require.Equal(t, vm.IntValue(1), s.Pop())
	require.True(t, s.IsEmpty())
}

func Test_Stack_Dup(t *testing.T) {
	s := vm.NewStack()
	s.Push(vm.IntValue(7))
	s.Dup()
	require.Equal(t, 2, s.Size())
	require.Equal(t, vm.IntValue(7), s.Pop())
	require.Equal(t, vm.IntValue(7), s.Pop())
}

func Test_Stack_Swap(t *testing.T) {
	s := vm.NewStack()
	s.Push(vm.IntValue(1))
	s.Push(vm.IntValue(2))
	s.Swap()
	require.Equal(t, vm.IntValue(1), s.Pop())
	require.Equal(t, vm.IntValue(2), s.Pop())
}
