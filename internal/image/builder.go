package image

import (
	"encoding/binary"

	"github.com/go-c0vm/c0vm"
)

// Builder assembles a vm.Image by hand, for tests and for small
// hand-written programs: one Func at a time, each emitting raw opcode
// bytes with helpers that encode the immediates the VM expects so
// callers never hand-compute big-endian byte pairs.
//
// This mirrors an incremental, append-only code-builder idiom
// (one opcode-plus-operands append helper per call site), scaled down
// to the handful of opcodes this engine has.
type Builder struct {
	img vm.Image
}

// NewBuilder starts an empty image.
func NewBuilder() *Builder {
	return &Builder{}
}

// Int interns an integer constant, returning its pool index.
func (b *Builder) Int(v int32) uint16 {
	b.img.IntPool = append(b.img.IntPool, v)
	return uint16(len(b.img.IntPool) - 1)
}

// CString interns a NUL-terminated string, returning an offset usable
// with ALDC.
func (b *Builder) CString(s string) uint16 {
	off := len(b.img.StringPool)
	b.img.StringPool = append(b.img.StringPool, append([]byte(s), 0)...)
	return uint16(off)
}

// Native registers a native-function descriptor, returning its pool
// index for INVOKENATIVE.
func (b *Builder) Native(numArgs uint16, tableIndex uint16) uint16 {
	b.img.NativePool = append(b.img.NativePool, vm.NativeDesc{NumArgs: numArgs, TableIndex: tableIndex})
	return uint16(len(b.img.NativePool) - 1)
}

// Func starts a new function body; its pool index is returned
// immediately so recursive calls can reference it before Finish.
func (b *Builder) Func(numArgs, numVars uint16) (idx uint16, fn *FuncBuilder) {
	idx = uint16(len(b.img.FunctionPool))
	b.img.FunctionPool = append(b.img.FunctionPool, vm.FuncDesc{NumArgs: numArgs, NumVars: numVars})
	return idx, &FuncBuilder{b: b, idx: idx}
}

// Image returns the assembled image. Call after every FuncBuilder has
// had Finish called.
func (b *Builder) Image() *vm.Image {
	return &b.img
}

// FuncBuilder accumulates one function's code bytes.
type FuncBuilder struct {
	b    *Builder
	idx  uint16
	code []byte
}

func (f *FuncBuilder) byte1(op byte) *FuncBuilder {
	f.code = append(f.code, op)
	return f
}

func (f *FuncBuilder) u8(op byte, v uint8) *FuncBuilder {
	f.code = append(f.code, op, byte(v))
	return f
}

func (f *FuncBuilder) s8(op byte, v int8) *FuncBuilder {
	f.code = append(f.code, op, byte(v))
	return f
}

func (f *FuncBuilder) u16(op byte, v uint16) *FuncBuilder {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	f.code = append(f.code, op, buf[0], buf[1])
	return f
}

// Pos reports the current code offset, for computing branch targets.
func (f *FuncBuilder) Pos() int { return len(f.code) }

// Branch emits op with a 16-bit signed offset computed relative to
// this instruction's own address, targeting the byte offset `target`.
func (f *FuncBuilder) Branch(op byte, target int) *FuncBuilder {
	opAddr := len(f.code)
	off := int16(target - opAddr)
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(off))
	f.code = append(f.code, op, buf[0], buf[1])
	return f
}

func (f *FuncBuilder) Nop() *FuncBuilder         { return f.byte1(0x00) }
func (f *FuncBuilder) Pop() *FuncBuilder         { return f.byte1(0x01) }
func (f *FuncBuilder) Dup() *FuncBuilder         { return f.byte1(0x02) }
func (f *FuncBuilder) Swap() *FuncBuilder        { return f.byte1(0x03) }
func (f *FuncBuilder) Bipush(v int8) *FuncBuilder { return f.s8(0x10, v) }
func (f *FuncBuilder) Ildc(idx uint16) *FuncBuilder { return f.u16(0x11, idx) }
func (f *FuncBuilder) Aldc(idx uint16) *FuncBuilder { return f.u16(0x12, idx) }
func (f *FuncBuilder) AconstNull() *FuncBuilder  { return f.byte1(0x13) }
func (f *FuncBuilder) Vload(i uint8) *FuncBuilder  { return f.u8(0x20, i) }
func (f *FuncBuilder) Vstore(i uint8) *FuncBuilder { return f.u8(0x21, i) }
func (f *FuncBuilder) Iadd() *FuncBuilder { return f.byte1(0x30) }
func (f *FuncBuilder) Isub() *FuncBuilder { return f.byte1(0x31) }
func (f *FuncBuilder) Imul() *FuncBuilder { return f.byte1(0x32) }
func (f *FuncBuilder) Idiv() *FuncBuilder { return f.byte1(0x33) }
func (f *FuncBuilder) Irem() *FuncBuilder { return f.byte1(0x34) }
func (f *FuncBuilder) Iand() *FuncBuilder { return f.byte1(0x35) }
func (f *FuncBuilder) Ior() *FuncBuilder  { return f.byte1(0x36) }
func (f *FuncBuilder) Ixor() *FuncBuilder { return f.byte1(0x37) }
func (f *FuncBuilder) Ishl() *FuncBuilder { return f.byte1(0x38) }
func (f *FuncBuilder) Ishr() *FuncBuilder { return f.byte1(0x39) }
func (f *FuncBuilder) Goto(target int) *FuncBuilder      { return f.Branch(0x46, target) }
func (f *FuncBuilder) IfCmpEq(target int) *FuncBuilder   { return f.Branch(0x40, target) }
func (f *FuncBuilder) IfCmpNe(target int) *FuncBuilder   { return f.Branch(0x41, target) }
func (f *FuncBuilder) IfICmpLt(target int) *FuncBuilder  { return f.Branch(0x42, target) }
func (f *FuncBuilder) IfICmpGe(target int) *FuncBuilder  { return f.Branch(0x43, target) }
func (f *FuncBuilder) IfICmpGt(target int) *FuncBuilder  { return f.Branch(0x44, target) }
func (f *FuncBuilder) IfICmpLe(target int) *FuncBuilder  { return f.Branch(0x45, target) }
func (f *FuncBuilder) Athrow() *FuncBuilder { return f.byte1(0x50) }
func (f *FuncBuilder) Assert() *FuncBuilder { return f.byte1(0x51) }
func (f *FuncBuilder) Imload() *FuncBuilder  { return f.byte1(0x60) }
func (f *FuncBuilder) Imstore() *FuncBuilder { return f.byte1(0x61) }
func (f *FuncBuilder) Amload() *FuncBuilder  { return f.byte1(0x62) }
func (f *FuncBuilder) Amstore() *FuncBuilder { return f.byte1(0x63) }
func (f *FuncBuilder) Cmload() *FuncBuilder  { return f.byte1(0x64) }
func (f *FuncBuilder) Cmstore() *FuncBuilder { return f.byte1(0x65) }
func (f *FuncBuilder) New(size uint8) *FuncBuilder   { return f.u8(0x66, size) }
func (f *FuncBuilder) Aaddf(field uint8) *FuncBuilder { return f.u8(0x67, field) }
func (f *FuncBuilder) Newarray(eltSize uint8) *FuncBuilder { return f.u8(0x70, eltSize) }
func (f *FuncBuilder) Arraylength() *FuncBuilder { return f.byte1(0x71) }
func (f *FuncBuilder) Aadds() *FuncBuilder       { return f.byte1(0x72) }
func (f *FuncBuilder) Invokestatic(idx uint16) *FuncBuilder  { return f.u16(0x80, idx) }
func (f *FuncBuilder) Invokenative(idx uint16) *FuncBuilder  { return f.u16(0x81, idx) }
func (f *FuncBuilder) Return() *FuncBuilder { return f.byte1(0x90) }

// Finish installs the accumulated code into the function's descriptor.
func (f *FuncBuilder) Finish() {
	fd := f.b.img.FunctionPool[f.idx]
	fd.Code = f.code
	f.b.img.FunctionPool[f.idx] = fd
}
