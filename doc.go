/* Package vm implements the core of C0VM, a bytecode virtual machine for
a small imperative teaching language ("C0").

The machine is a single-threaded, stack-based interpreter. A compiled
program image supplies four read-only pools -- integers, strings,
function descriptors, and native-function descriptors -- plus an entry
function at index 0. The interpreter fetches, decodes and dispatches
opcodes against a chain of frames, each owning an operand stack, a
program counter and a local-variable vector.

Heap objects (single cells, structs, arrays and string-pool slices) are
reached only through references carried by Values on some operand stack
or in some frame's locals. There is no garbage collector: allocations
live until the program as a whole terminates.

Section 1: see value.go and stack.go for the Value/operand-stack
abstractions.

Section 2: see frame.go for the activation-record and call-stack
discipline, and heap.go for allocation and memory opcodes.

Section 3: see exec.go for the fetch-decode-dispatch loop and trap.go
for the closed taxonomy of runtime aborts.

Section 4: native functions, the loader's wire format, and the CLI
driver are external collaborators to the core and live under
internal/nativelib, internal/image and cmd/c0vm respectively.
*/
package vm
