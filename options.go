package vm

// Option configures a VM at construction time via the standard
// functional-options pattern. The zero Option does nothing, so New()
// with no options produces a usable VM with sane defaults.
type Option interface {
	apply(vm *VM)
}

type optionFunc func(vm *VM)

func (f optionFunc) apply(vm *VM) { f(vm) }

// noption is the identity option, returned by combinators that decide
// at call time they have nothing to add.
var noption Option = optionFunc(func(*VM) {})

// options flattens a slice of Option into one, applied in order.
type options []Option

func (os options) apply(vm *VM) {
	for _, o := range os {
		if o != nil {
			o.apply(vm)
		}
	}
}

// Options combines several Option values into one.
func Options(opts ...Option) Option {
	return options(opts)
}

// WithNatives installs the host-provided native function table. Index
// i is dispatched by INVOKENATIVE for any NativeDesc.TableIndex == i.
func WithNatives(natives NativeTable) Option {
	return optionFunc(func(vm *VM) {
		vm.natives = natives
	})
}

// WithLogf installs a trace/debug sink, reached through VM.logf. The
// interpreter loop does not write any messages to it; see
// internal/logio for the concrete Logger cmd/c0vm wires in via this
// hook.
func WithLogf(logf func(format string, args ...interface{})) Option {
	if logf == nil {
		return noption
	}
	return optionFunc(func(vm *VM) {
		vm.logfn = logf
	})
}

// WithMemPageSize overrides the heap's paged-store page size (default:
// mem.DefaultPageSize). Mainly useful for shaking out page-boundary
// bugs in tests with a deliberately small page.
func WithMemPageSize(pageSize uint) Option {
	return optionFunc(func(vm *VM) {
		vm.memPageSize = pageSize
	})
}

// WithMemLimit caps the heap address range for one Execute call; 0
// means unlimited. A heap load or store that reaches past address limit
// surfaces as a memory-error trap (heap.go, internal/mem.LimitError);
// NEW and NEWARRAY do not check the limit when they reserve addresses.
func WithMemLimit(limit uint) Option {
	return optionFunc(func(vm *VM) {
		vm.memLimit = limit
	})
}
