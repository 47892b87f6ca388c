package nativelib_test

import (
	"bytes"
	"strings"
	"testing"

	vm "github.com/go-c0vm/c0vm"
	"github.com/go-c0vm/c0vm/internal/nativelib"
	"github.com/stretchr/testify/require"
)

func Test_PrintInt(t *testing.T) {
	var out bytes.Buffer
	table := nativelib.Table(&out, nil)
	result := table[nativelib.IndexPrintInt](nil, []vm.Value{vm.IntValue(9)})
	require.Equal(t, vm.IntValue(9), result)
	require.Equal(t, "9\n", out.String())
}

func Test_PrintChar(t *testing.T) {
	var out bytes.Buffer
	table := nativelib.Table(&out, nil)
	table[nativelib.IndexPrintChar](nil, []vm.Value{vm.IntValue('A')})
	require.Equal(t, "A", out.String())
}

func Test_ReadChar_NilInputReturnsEOFSentinel(t *testing.T) {
	table := nativelib.Table(nil, nil)
	result := table[nativelib.IndexReadChar](nil, nil)
	require.Equal(t, vm.IntValue(-1), result)
}

func Test_ReadChar_ReadsFromInput(t *testing.T) {
	table := nativelib.Table(nil, strings.NewReader("x"))
	result := table[nativelib.IndexReadChar](nil, nil)
	require.Equal(t, vm.IntValue('x'), result)
}
