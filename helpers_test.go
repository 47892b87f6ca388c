package vm_test

import (
	"context"

	vm "github.com/go-c0vm/c0vm"
	"github.com/go-c0vm/c0vm/internal/image"
)

func ctxBg() context.Context { return context.Background() }

// imageForProgram builds a single-function image (0 args, numVars
// locals) whose code is emitted by build, for tests that only care
// about one function's behavior.
func imageForProgram(numVars uint16, build func(*image.FuncBuilder)) *vm.Image {
	b := image.NewBuilder()
	_, fn := b.Func(0, numVars)
	build(fn)
	fn.Finish()
	return b.Image()
}
