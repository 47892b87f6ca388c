package vm

import (
	"context"
	"fmt"

	"github.com/go-c0vm/c0vm/internal/mem"
	"github.com/go-c0vm/c0vm/internal/panicerr"
)

// New constructs a VM ready to Run an Image. With no options it has no
// native functions installed (INVOKENATIVE will trap memory-error on
// any index) and an unbounded, default-paged heap.
func New(opts ...Option) *VM {
	vm := &VM{
		memPageSize: mem.DefaultPageSize,
	}
	Options(opts...).apply(vm)
	return vm
}

// Run executes img to completion, isolating the interpreter loop in
// its own goroutine via internal/panicerr.Recover: an unexpected
// runtime panic -- as opposed to a classified TrapError, which Execute
// already turns into a plain error -- is reported back as an error
// rather than crashing the host process.
func (vm *VM) Run(ctx context.Context, img *Image) (int32, error) {
	var result int32
	err := panicerr.Recover("c0vm", func() error {
		r, err := vm.Execute(ctx, img)
		result = r
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("c0vm: %w", err)
	}
	return result, nil
}
