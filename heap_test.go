package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Heap_NewObjectZeroInit(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	r := vm.newObject(4)
	require.False(t, r.IsNull())
	require.Equal(t, int32(0), vm.heapLoad32(r.addr))
}

func Test_Heap_Store32RoundTrip(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	r := vm.newObject(4)
	vm.heapStore32(r.addr, -123456)
	require.Equal(t, int32(-123456), vm.heapLoad32(r.addr))
}

func Test_Heap_StoreByteMasksHighBit(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	r := vm.newObject(1)
	vm.heapStoreByte(r.addr, -1)
	require.Equal(t, int32(0x7f), vm.heapLoadByte(r.addr))
}

func Test_Heap_RefRoundTrip(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	cell := vm.newObject(refCellSize)
	inner := vm.newObject(4)
	vm.heapStoreRef(cell.addr, inner)
	got := vm.heapLoadRef(cell.addr)
	require.Equal(t, inner, got)
}

func Test_Heap_NewArray(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	a := vm.newArray(3, 4)
	require.Equal(t, int32(3), vm.arrayLength(a))
	e0 := vm.arrayElemAddr(a, 0)
	e2 := vm.arrayElemAddr(a, 2)
	require.Equal(t, uint32(4*2), e2.addr-e0.addr)
	require.Panics(t, func() { vm.arrayElemAddr(a, 3) })
	require.Panics(t, func() { vm.arrayElemAddr(a, -1) })
}

func Test_Heap_NewArrayZeroLength(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	a := vm.newArray(0, 4)
	require.True(t, a.IsNull())
}

func Test_Heap_NewArrayNegativeLength(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	require.Panics(t, func() { vm.newArray(-1, 4) })
}

func Test_Heap_FieldAddrUnchecked(t *testing.T) {
	vm := &VM{heap: newHeap(16, 0)}
	obj := vm.newObject(8)
	f := vm.fieldAddr(obj, 4)
	require.Equal(t, obj.addr+4, f.addr)
}
