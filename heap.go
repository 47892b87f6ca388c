package vm

import (
	"encoding/binary"

	"github.com/go-c0vm/c0vm/internal/mem"
)

// heap is a byte-addressed, allocate-only memory: the backing store
// for NEW/NEWARRAY allocations. It never reclaims, matching the
// engine's no-GC lifecycle:
// everything allocated lives until the whole program terminates.
//
// Address 0 is never handed out by alloc, so a zero address can never
// be mistaken for a valid heap Ref; Refs carry their own null flag
// regardless, but reserving 0 keeps heap dumps (dump.go) readable.
type heap struct {
	bytes mem.Bytes
	next  uint32
}

func newHeap(pageSize, limit uint) *heap {
	h := &heap{next: 1}
	h.bytes.PageSize = pageSize
	h.bytes.Limit = limit
	return h
}

// alloc reserves a block of n bytes and returns its base address. The
// block reads back as all-zero until stored to: mem.Bytes returns 0
// for any address in a page it has never allocated, so a bare pointer
// bump is all allocation requires -- no explicit zeroing pass.
func (h *heap) alloc(n uint32) uint32 {
	base := h.next
	h.next += n
	return base
}

func (vm *VM) heapLoad32(addr uint32) int32 {
	var buf [4]byte
	if err := vm.heap.bytes.LoadInto(uint(addr), buf[:]); err != nil {
		vm.trap(MemoryError, "%v", err)
	}
	return int32(binary.BigEndian.Uint32(buf[:]))
}

func (vm *VM) heapStore32(addr uint32, val int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(val))
	if err := vm.heap.bytes.Stor(uint(addr), buf[:]...); err != nil {
		vm.trap(MemoryError, "%v", err)
	}
}

func (vm *VM) heapLoadRef(addr uint32) Ref {
	var buf [5]byte
	if err := vm.heap.bytes.LoadInto(uint(addr), buf[:]); err != nil {
		vm.trap(MemoryError, "%v", err)
	}
	return decodeRef(buf)
}

func (vm *VM) heapStoreRef(addr uint32, r Ref) {
	buf := encodeRef(r)
	if err := vm.heap.bytes.Stor(uint(addr), buf[:]...); err != nil {
		vm.trap(MemoryError, "%v", err)
	}
}

func (vm *VM) heapLoadByte(addr uint32) int32 {
	b, err := vm.heap.bytes.Load(uint(addr))
	if err != nil {
		vm.trap(MemoryError, "%v", err)
	}
	return int32(int8(b))
}

func (vm *VM) heapStoreByte(addr uint32, val int32) {
	if err := vm.heap.bytes.Stor(uint(addr), byte(val&0x7f)); err != nil {
		vm.trap(MemoryError, "%v", err)
	}
}

// refCellSize is the on-heap width of a reference cell (AMLOAD/AMSTORE,
// and array elements of reference element size): one tag byte plus a
// 32-bit address.
const refCellSize = 5

func encodeRef(r Ref) [refCellSize]byte {
	var buf [refCellSize]byte
	if r.null {
		return buf
	}
	buf[0] = byte(r.space)
	binary.BigEndian.PutUint32(buf[1:], r.addr)
	return buf
}

func decodeRef(buf [refCellSize]byte) Ref {
	space := refSpace(buf[0])
	if space == spaceNone {
		return NullRef
	}
	return Ref{space: space, addr: binary.BigEndian.Uint32(buf[1:])}
}

// newObject implements NEW s: allocate s zero bytes,
// push a reference to the block.
func (vm *VM) newObject(size uint8) Ref {
	addr := vm.heap.alloc(uint32(size))
	return heapRef(addr)
}

// arrayHeader mirrors the count/elt_size header stored at the front
// of every array allocation.
// It is stored inline at the array's reference address, immediately
// before the zero-initialised payload, so that a single heap Ref
// addresses the whole object.
const arrayHeaderSize = 8 // count (4 bytes) + elt_size (4 bytes)

func (vm *VM) newArray(count int32, eltSize uint8) Ref {
	if count < 0 {
		vm.trap(MemoryError, "negative array length %d", count)
	}
	if count == 0 {
		return NullRef
	}
	if eltSize == 0 {
		vm.trap(MemoryError, "zero element stride")
	}
	total := arrayHeaderSize + uint32(count)*uint32(eltSize)
	base := vm.heap.alloc(total)
	var hdr [arrayHeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(count))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(eltSize))
	if err := vm.heap.bytes.Stor(uint(base), hdr[:]...); err != nil {
		vm.trap(MemoryError, "%v", err)
	}
	return heapRef(base)
}

func (vm *VM) arrayHeader(r Ref) (count int32, eltSize uint32) {
	if r.IsNull() {
		vm.trap(MemoryError, "array dereference of null")
	}
	var hdr [arrayHeaderSize]byte
	if err := vm.heap.bytes.LoadInto(uint(r.addr), hdr[:]); err != nil {
		vm.trap(MemoryError, "%v", err)
	}
	return int32(binary.BigEndian.Uint32(hdr[0:4])), binary.BigEndian.Uint32(hdr[4:8])
}

// arrayLength implements ARRAYLENGTH.
func (vm *VM) arrayLength(r Ref) int32 {
	count, _ := vm.arrayHeader(r)
	return count
}

// arrayElemAddr implements AADDS: push a reference to
// byte i*elt_size inside the payload, trapping on null or out-of-range i.
func (vm *VM) arrayElemAddr(r Ref, i int32) Ref {
	count, eltSize := vm.arrayHeader(r)
	if i < 0 || uint32(i) >= uint32(count) {
		vm.trap(MemoryError, "array index %d out of range [0, %d)", i, count)
	}
	addr := r.addr + arrayHeaderSize + uint32(i)*eltSize
	return heapRef(addr)
}

// fieldAddr implements AADDF f: no dereference, no bounds
// check -- the compiler is trusted to have sized the struct correctly.
func (vm *VM) fieldAddr(r Ref, f uint8) Ref {
	if r.IsNull() {
		vm.trap(MemoryError, "field access on null reference")
	}
	return heapRef(r.addr + uint32(f))
}
