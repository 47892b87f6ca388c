package vm

import (
	"context"
)

// VM is the execution engine: value/stack support, frame & call-stack
// discipline, and the interpreter loop, assembled around one program
// Image. Construct one with New.
type VM struct {
	img     *Image
	natives NativeTable
	heap    *heap

	cur   *frame
	calls callStack

	logfn func(mess string, args ...interface{})

	memPageSize uint
	memLimit    uint

	stepHook func() bool
}

func (vm *VM) logf(format string, args ...interface{}) {
	if vm.logfn != nil {
		vm.logfn(format, args...)
	}
}

// WithStepHook installs a callback invoked before every opcode step;
// returning false from it aborts execution early (Execute returns
// context.Canceled). It returns a function that uninstalls the hook,
// for deferred cleanup by callers like cmd/c0vm's interactive stepper.
func (vm *VM) WithStepHook(hook func() bool) (remove func()) {
	vm.stepHook = hook
	return func() { vm.stepHook = nil }
}

// Execute runs the entry function (function-pool index 0) with an
// empty operand stack and zero-valued locals, and returns the integer
// it eventually produces via RETURN from that frame, or the classified
// trap that aborted it first.
//
// A *TrapError panic raised during execution (from vm.trap) is
// recovered here and turned into a plain error return. Any other panic,
// such as a runtime panic from a malformed image, is re-raised; Run
// (api.go) is the entry point that turns those into errors too.
func (vm *VM) Execute(ctx context.Context, img *Image) (result int32, err error) {
	entry, ferr := img.EntryFunc()
	if ferr != nil {
		return 0, ferr
	}

	vm.img = img
	vm.heap = newHeap(vm.memPageSize, vm.memLimit)
	vm.cur = newFrame(entry)
	vm.calls = callStack{}

	defer func() {
		if r := recover(); r != nil {
			if te, ok := r.(*TrapError); ok {
				err = te
				return
			}
			panic(r)
		}
	}()

	for {
		if cerr := ctx.Err(); cerr != nil {
			return 0, cerr
		}
		if vm.stepHook != nil && !vm.stepHook() {
			return 0, context.Canceled
		}
		if done, rv := vm.step(); done {
			return rv, nil
		}
	}
}

// step executes exactly one opcode against the current frame via the
// fetch-decode-dispatch loop. It returns done=true with the final
// result only when RETURN unwinds the entry frame.
func (vm *VM) step() (done bool, result int32) {
	f := vm.cur
	if f.pc < 0 || f.pc >= len(f.code) {
		vm.trap(KindInvalidOpcode, "program counter %d outside code of length %d", f.pc, len(f.code))
	}
	opAddr := f.pc
	op := opcode(f.code[opAddr])

	switch op {
	case opNop:
		f.pc++

	case opPop:
		f.stack.Pop()
		f.pc++
	case opDup:
		f.stack.Dup()
		f.pc++
	case opSwap:
		f.stack.Swap()
		f.pc++

	case opBipush:
		f.stack.Push(IntValue(f.s8(1)))
		f.pc += 2
	case opIldc:
		idx := f.u16(1)
		f.stack.Push(IntValue(vm.img.int32At(idx)))
		f.pc += 3
	case opAldc:
		idx := f.u16(1)
		f.stack.Push(RefValue(vm.img.stringRefAt(idx)))
		f.pc += 3
	case opAconstNull:
		f.stack.Push(RefValue(NullRef))
		f.pc++

	case opVload:
		i := f.u8(1)
		f.stack.Push(f.locals[i])
		f.pc += 2
	case opVstore:
		i := f.u8(1)
		f.locals[i] = f.stack.Pop()
		f.pc += 2

	case opIadd:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(x + y))
		f.pc++
	case opIsub:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(x - y))
		f.pc++
	case opImul:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(x * y))
		f.pc++
	case opIdiv:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(vm.idiv(x, y)))
		f.pc++
	case opIrem:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(vm.irem(x, y)))
		f.pc++
	case opIand:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(x & y))
		f.pc++
	case opIor:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(x | y))
		f.pc++
	case opIxor:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		f.stack.Push(IntValue(x ^ y))
		f.pc++
	case opIshl:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		sh := vm.checkShift(y)
		f.stack.Push(IntValue(x << sh))
		f.pc++
	case opIshr:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		sh := vm.checkShift(y)
		f.stack.Push(IntValue(x >> sh)) // arithmetic: Go's >> on signed ints preserves sign
		f.pc++

	case opIfCmpEq, opIfCmpNe:
		v2, v1 := f.stack.Pop(), f.stack.Pop()
		eq := v1.Equal(v2)
		taken := (op == opIfCmpEq && eq) || (op == opIfCmpNe && !eq)
		vm.branchOrFallthrough(f, opAddr, taken)
	case opIfICmpLt, opIfICmpGe, opIfICmpGt, opIfICmpLe:
		y, x := f.stack.Pop().Int(vm), f.stack.Pop().Int(vm)
		var taken bool
		switch op {
		case opIfICmpLt:
			taken = x < y
		case opIfICmpGe:
			taken = x >= y
		case opIfICmpGt:
			taken = x > y
		case opIfICmpLe:
			taken = x <= y
		}
		vm.branchOrFallthrough(f, opAddr, taken)
	case opGoto:
		f.pc = f.branch(opAddr)

	case opAthrow:
		msg := vm.messageFromRef(f.stack.Pop().Ref(vm))
		vm.trap(UserError, "%s", msg)
	case opAssert:
		msgRef := f.stack.Pop().Ref(vm)
		cond := f.stack.Pop().Int(vm)
		if cond == 0 {
			vm.trap(AssertionFailure, "%s", vm.messageFromRef(msgRef))
		}
		f.pc++

	case opImload:
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		f.stack.Push(IntValue(vm.heapLoad32(a.addr)))
		f.pc++
	case opImstore:
		x := f.stack.Pop().Int(vm)
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		vm.heapStore32(a.addr, x)
		f.pc++
	case opAmload:
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		f.stack.Push(RefValue(vm.heapLoadRef(a.addr)))
		f.pc++
	case opAmstore:
		b := f.stack.Pop().Ref(vm)
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		vm.heapStoreRef(a.addr, b)
		f.pc++
	case opCmload:
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		f.stack.Push(IntValue(vm.heapLoadByte(a.addr)))
		f.pc++
	case opCmstore:
		x := f.stack.Pop().Int(vm)
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		vm.heapStoreByte(a.addr, x)
		f.pc++
	case opNew:
		size := f.u8(1)
		f.stack.Push(RefValue(vm.newObject(size)))
		f.pc += 2
	case opAaddf:
		field := f.u8(1)
		a := f.stack.Pop().Ref(vm)
		f.stack.Push(RefValue(vm.fieldAddr(a, field)))
		f.pc += 2

	case opNewarray:
		eltSize := f.u8(1)
		n := f.stack.Pop().Int(vm)
		f.stack.Push(RefValue(vm.newArray(n, eltSize)))
		f.pc += 2
	case opArraylength:
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		f.stack.Push(IntValue(vm.arrayLength(a)))
		f.pc++
	case opAadds:
		i := f.stack.Pop().Int(vm)
		a := f.stack.Pop().Ref(vm)
		vm.checkNonNull(a)
		f.stack.Push(RefValue(vm.arrayElemAddr(a, i)))
		f.pc++

	case opInvokestatic:
		idx := f.u16(1)
		f.pc += 3
		vm.invokeStatic(idx)
	case opInvokenative:
		idx := f.u16(1)
		f.pc += 3
		vm.invokeNative(idx)

	case opReturn:
		return vm.doReturn()

	default:
		vm.trap(KindInvalidOpcode, "invalid opcode 0x%02x @%d", byte(op), opAddr)
	}

	return false, 0
}

func (vm *VM) branchOrFallthrough(f *frame, opAddr int, taken bool) {
	if taken {
		f.pc = f.branch(opAddr)
	} else {
		f.pc = opAddr + 3
	}
}

func (vm *VM) checkNonNull(r Ref) {
	if r.IsNull() {
		vm.trap(MemoryError, "dereference of null reference")
	}
}

func (vm *VM) messageFromRef(r Ref) string {
	if r.IsNull() {
		return "(null)"
	}
	if s, ok := vm.img.CString(r); ok {
		return s
	}
	return r.String()
}

// invokeStatic implements INVOKESTATIC: push the
// current frame, bind the callee's locals from the caller's operand
// stack in left-to-right order, and install a fresh frame.
func (vm *VM) invokeStatic(idx uint16) {
	desc := vm.img.function(idx)
	callee := newFrame(desc)
	for i := int(desc.NumArgs) - 1; i >= 0; i-- {
		callee.locals[i] = vm.cur.stack.Pop()
	}
	vm.calls.push(vm.cur)
	vm.cur = callee
}

// invokeNative implements INVOKENATIVE: no frame is
// created; the topmost NumArgs values are popped into a buffer in
// left-to-right order, passed to the host function, and its result is
// pushed back onto the caller's own operand stack.
func (vm *VM) invokeNative(idx uint16) {
	desc := vm.img.nativeDesc(idx)
	if int(desc.TableIndex) >= len(vm.natives) {
		vm.trap(MemoryError, "native table index %d out of range", desc.TableIndex)
	}
	args := make([]Value, desc.NumArgs)
	for i := int(desc.NumArgs) - 1; i >= 0; i-- {
		args[i] = vm.cur.stack.Pop()
	}
	res := vm.natives[desc.TableIndex](vm, args)
	vm.cur.stack.Push(res)
}

// doReturn implements RETURN's state transition: the
// current frame is disposed, and either the caller is resumed with the
// return value pushed onto its own operand stack, or -- if the call
// stack is empty -- execution terminates with that value.
func (vm *VM) doReturn() (done bool, result int32) {
	retval := vm.cur.stack.Pop()
	if vm.calls.isEmpty() {
		return true, retval.Int(vm)
	}
	vm.cur = vm.calls.pop()
	vm.cur.stack.Push(retval)
	return false, 0
}
