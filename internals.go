package vm

// Immediate decoding. All of these read from the current frame's code
// starting at its current program counter and do not themselves
// advance pc; callers advance pc by 1 (opcode) plus however many
// immediate bytes they consumed.

func (f *frame) u8(off int) uint8 {
	return f.code[f.pc+off]
}

// s8 sign-extends an 8-bit immediate to 32 bits (BIPUSH).
func (f *frame) s8(off int) int32 {
	return int32(int8(f.u8(off)))
}

// u16 combines two bytes big-endian, interpreted unsigned -- used for
// pool indices.
func (f *frame) u16(off int) uint16 {
	hi, lo := f.u8(off), f.u8(off+1)
	return uint16(hi)<<8 | uint16(lo)
}

// s16 combines two bytes big-endian, interpreted signed -- the encoding
// of branch offsets, which are added to the address of the branch
// instruction itself. branch below decodes its offset inline rather
// than calling s16.
func (f *frame) s16(off int) int32 {
	return int32(int16(f.u16(off)))
}

// branch computes the target pc for a conditional/unconditional branch
// whose immediate starts at the opcode's own address: offset 0 is the
// opcode byte itself, and the 16-bit signed immediate follows at
// offset 1.
func (f *frame) branch(opAddr int) int {
	off := int32(int16(f.u8(1))<<8 | int16(f.u8(2)))
	return opAddr + int(off)
}

// checkShift traps arith-error if amount is outside [0, 31].
func (vm *VM) checkShift(amount int32) uint {
	if amount < 0 || amount > 31 {
		vm.trap(ArithError, "shift amount %d out of range [0, 31]", amount)
	}
	return uint(amount)
}

func (vm *VM) idiv(x, y int32) int32 {
	if y == 0 {
		vm.trap(ArithError, "integer division by zero")
	}
	if x == -1<<31 && y == -1 {
		vm.trap(ArithError, "INT_MIN / -1 overflow")
	}
	return x / y
}

func (vm *VM) irem(x, y int32) int32 {
	if y == 0 {
		vm.trap(ArithError, "integer remainder by zero")
	}
	if x == -1<<31 && y == -1 {
		vm.trap(ArithError, "INT_MIN rem -1 overflow")
	}
	return x % y
}
