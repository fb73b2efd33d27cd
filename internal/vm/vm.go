// Package vm executes a compiled bytecode unit against an operand stack
// and a call-frame stack, mutating a process-wide globals map and
// allocating heap objects through the collector.
package vm

import (
	"fmt"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/gc"
)

const (
	defaultMaxStack  = 10_000
	defaultMaxFrames = 1_000
)

// frame is one invocation's dynamic context, per §3's "Call frame".
//
// boxedLocals is lazily populated the first time a local gets captured by a
// nested closure (see heap.go's makeClosure): from that point on, every
// load/store of that slot, including the owning frame's own, is redirected
// through the same heap box the closure holds, so a mutation made by either
// side after capture is visible to the other - a live upvalue rather than a
// snapshot taken at closure-creation time.
type frame struct {
	chunk       *bytecode.Chunk
	fn          *bytecode.FunctionConstant
	pc          int
	locals      []bytecode.Value
	boxedLocals map[int]bytecode.Handle
	base        int
	closure     map[string]bytecode.Handle
	name        string
}

// handler records one active try block's unwind target, parallel to the
// call-frame stack per §4.4's instruction table.
type handler struct {
	catchTarget int
	stackDepth  int
	frameDepth  int
}

// Option configures a VM at construction.
type Option func(*VM)

func WithMaxStack(n int) Option  { return func(vm *VM) { vm.maxStack = n } }
func WithMaxFrames(n int) Option { return func(vm *VM) { vm.maxFrames = n } }

// VM is a single-threaded bytecode interpreter, per §4.4. It owns its
// operand stack, call-frame stack, and globals map exclusively; the heap
// is the one resource it shares with its embedding engine, per §5.
type VM struct {
	stack   []bytecode.Value
	frames  []*frame
	globals map[string]bytecode.Value
	heap    *gc.Collector

	handlers []handler

	maxStack  int
	maxFrames int
}

func New(heap *gc.Collector, globals map[string]bytecode.Value, opts ...Option) *VM {
	if globals == nil {
		globals = make(map[string]bytecode.Value)
	}
	vm := &VM{
		globals:   globals,
		heap:      heap,
		maxStack:  defaultMaxStack,
		maxFrames: defaultMaxFrames,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

func (vm *VM) SetGlobal(name string, v bytecode.Value) { vm.globals[name] = v }
func (vm *VM) GetGlobal(name string) bytecode.Value {
	v, ok := vm.globals[name]
	if !ok {
		return bytecode.Undefined()
	}
	return v
}

// Globals exposes the live globals map, letting a module loader (see
// internal/module) read back the bindings a script left behind after
// Execute returns, since a module's exports are just its top-level
// globals - there is no separate export bytecode to run.
func (vm *VM) Globals() map[string]bytecode.Value { return vm.globals }

func (vm *VM) push(v bytecode.Value) error {
	if len(vm.stack) >= vm.maxStack {
		return errors.NewRuntimeError(errors.StackOverflowError, "operand stack overflow")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() (bytecode.Value, error) {
	if len(vm.stack) == 0 {
		return bytecode.Value{}, errors.NewRuntimeError(errors.InvalidBytecode, "pop from empty operand stack")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek() bytecode.Value { return vm.stack[len(vm.stack)-1] }

// Execute runs chunk as a top-level script, returning its result (the
// value on the stack when Halt is reached, or undefined).
func (vm *VM) Execute(chunk *bytecode.Chunk) (bytecode.Value, error) {
	vm.frames = append(vm.frames, &frame{chunk: chunk, locals: make([]bytecode.Value, chunk.LocalCount)})
	return vm.run()
}

// run is the core dispatch loop: fetch the current frame's next
// instruction, dispatch, advance pc unless the instruction set it
// explicitly. It terminates on Halt, on the frame stack going empty after
// Return, or on an unrecoverable error.
func (vm *VM) run() (bytecode.Value, error) {
	for {
		f := vm.frames[len(vm.frames)-1]
		if f.pc >= len(f.chunk.Code) {
			return bytecode.Undefined(), errors.NewRuntimeError(errors.InvalidBytecode, "program counter ran past the end of the chunk")
		}
		inst := f.chunk.Code[f.pc]
		f.pc++

		result, done, err := vm.dispatch(f, inst)
		if err != nil {
			if rt, ok := asRuntimeError(err); ok {
				recovered, handled := vm.unwind(rt)
				if handled {
					continue
				}
				return bytecode.Undefined(), recovered
			}
			return bytecode.Undefined(), err
		}
		if done {
			return result, nil
		}
	}
}

func asRuntimeError(err error) (*errors.RuntimeError, bool) {
	rt, ok := err.(*errors.RuntimeError)
	return rt, ok
}

// unwind consults the top handler on a thrown error: truncating frames and
// the operand stack to the handler's recorded depth, pushing the thrown
// value, and resuming at the handler's catch target, per §4.4's Throw
// semantics. If no handler exists, the error propagates to the caller.
func (vm *VM) unwind(rt *errors.RuntimeError) (*errors.RuntimeError, bool) {
	if len(vm.handlers) == 0 {
		return rt, false
	}
	h := vm.handlers[len(vm.handlers)-1]
	vm.handlers = vm.handlers[:len(vm.handlers)-1]

	vm.frames = vm.frames[:h.frameDepth+1]
	if h.stackDepth > len(vm.stack) {
		h.stackDepth = len(vm.stack)
	}
	vm.stack = vm.stack[:h.stackDepth]

	thrown := bytecode.Undefined()
	if rt.ThrownValue != nil {
		if v, ok := rt.ThrownValue.(bytecode.Value); ok {
			thrown = v
		} else {
			thrown = bytecode.String(fmt.Sprint(rt.ThrownValue))
		}
	} else {
		thrown = bytecode.String(rt.Error())
	}
	vm.stack = append(vm.stack, thrown)
	vm.frames[len(vm.frames)-1].pc = h.catchTarget
	return nil, true
}
