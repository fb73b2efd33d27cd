package vm

import (
	"fmt"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/gc"
)

// call implements OpCall(n): pop n argument values then the callee, push a
// new call frame bound to the callee's chunk and closure, per §4.4. Excess
// arguments are discarded; missing ones read back as undefined, matching
// JavaScript's arity-independent calling convention.
func (vm *VM) call(argc int) error {
	if len(vm.stack) < argc+1 {
		return errors.NewRuntimeError(errors.InvalidBytecode, "call: operand stack underflow")
	}
	args := make([]bytecode.Value, argc)
	copy(args, vm.stack[len(vm.stack)-argc:])
	base := len(vm.stack) - argc - 1
	callee := vm.stack[base]
	vm.stack = vm.stack[:base]

	if callee.Type != bytecode.ValueObject {
		return errors.NewRuntimeError(errors.TypeError, fmt.Sprintf("%s is not a function", callee.Type))
	}
	obj := vm.heap.Get(callee.AsHandle())
	if obj == nil || obj.Kind != gc.KindFunction || obj.Function == nil {
		return errors.NewRuntimeError(errors.TypeError, "value is not callable")
	}
	fn := obj.Function

	if len(vm.frames) >= vm.maxFrames {
		return errors.NewRuntimeError(errors.StackOverflowError, "call stack overflow")
	}

	locals := make([]bytecode.Value, fn.Chunk.LocalCount)
	for i := 0; i < fn.Arity && i < len(locals); i++ {
		if i < len(args) {
			locals[i] = args[i]
		} else {
			locals[i] = bytecode.Undefined()
		}
	}
	vm.frames = append(vm.frames, &frame{
		chunk:   fn.Chunk,
		fn:      fn,
		locals:  locals,
		base:    base,
		closure: obj.Closure,
		name:    fn.Name,
	})
	return nil
}

// doReturn implements OpReturn: pop the return value, pop the frame,
// truncate the operand stack to the caller's base, and push the return
// value back. An empty frame stack after popping ends execution with that
// value, per §4.4.
func (vm *VM) doReturn() (bytecode.Value, bool, error) {
	ret, err := vm.pop()
	if err != nil {
		return bytecode.Value{}, false, err
	}
	f := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]

	if len(vm.frames) == 0 {
		return ret, true, nil
	}
	if f.base > len(vm.stack) {
		f.base = len(vm.stack)
	}
	vm.stack = vm.stack[:f.base]
	if err := vm.push(ret); err != nil {
		return bytecode.Value{}, false, err
	}
	return bytecode.Value{}, false, nil
}
