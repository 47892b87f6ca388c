package vm_test

import (
	"testing"

	vm "github.com/go-c0vm/c0vm"
	"github.com/go-c0vm/c0vm/internal/image"
	"github.com/stretchr/testify/require"
)

func Test_Value_Equal(t *testing.T) {
	require.True(t, vm.IntValue(3).Equal(vm.IntValue(3)))
	require.False(t, vm.IntValue(3).Equal(vm.IntValue(4)))
	require.False(t, vm.IntValue(0).Equal(vm.RefValue(vm.NullRef)))
	require.True(t, vm.RefValue(vm.NullRef).Equal(vm.RefValue(vm.NullRef)))
}

func Test_Value_ShapeMismatchTraps(t *testing.T) {
	machine := vm.New()
	img := imageForProgram(0, func(b *image.FuncBuilder) {
		b.Bipush(1)
		b.Amload()
		b.Return()
	})
	_, err := machine.Run(ctxBg(), img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "value-error")
}
