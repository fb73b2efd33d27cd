package vm

import (
	"fmt"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/gc"
)

// box allocates a heap carrier for v. A value that already refers to a
// heap object is stored as its handle directly; every other primitive is
// wrapped in a generic box so a property or array slot can uniformly hold
// a handle, per §3's boxed-primitive variants.
func (vm *VM) box(v bytecode.Value) bytecode.Handle {
	if v.Type == bytecode.ValueObject {
		return v.AsHandle()
	}
	return vm.heap.Allocate(gc.NewBox(v))
}

// unbox resolves handle back to a Value: a box yields its wrapped
// primitive, anything else is a genuine nested object reference.
func (vm *VM) unbox(handle bytecode.Handle) bytecode.Value {
	obj := vm.heap.Get(handle)
	if obj == nil {
		return bytecode.Undefined()
	}
	if obj.Kind == gc.KindBox {
		return *obj.Boxed
	}
	return bytecode.Object(handle)
}

func (vm *VM) newObject() bytecode.Value {
	return bytecode.Object(vm.heap.Allocate(gc.NewObject()))
}

func (vm *VM) newArray(elements []bytecode.Value) bytecode.Value {
	handles := make([]bytecode.Handle, len(elements))
	for i, el := range elements {
		handles[i] = vm.box(el)
	}
	return bytecode.Object(vm.heap.Allocate(gc.NewArray(handles)))
}

// getProperty reads key off obj, per §4.4: a missing property yields
// undefined, per the testable-properties list's "property access on a
// non-existent key returns undefined" invariant.
func (vm *VM) getProperty(objValue bytecode.Value, key string) (bytecode.Value, error) {
	if objValue.Type != bytecode.ValueObject {
		return bytecode.Value{}, errors.NewRuntimeError(errors.TypeError, fmt.Sprintf("cannot read property %q of %s", key, objValue.Type))
	}
	obj := vm.heap.Get(objValue.AsHandle())
	if obj == nil {
		return bytecode.Value{}, errors.NewRuntimeError(errors.ReferenceError, "object has been collected")
	}
	switch obj.Kind {
	case gc.KindObject:
		handle, ok := obj.Properties[key]
		if !ok {
			return bytecode.Undefined(), nil
		}
		return vm.unbox(handle), nil
	case gc.KindArray:
		if key == "length" {
			return bytecode.Number(float64(len(obj.Elements))), nil
		}
		return bytecode.Undefined(), nil
	case gc.KindFunction:
		if key == "name" {
			return bytecode.String(obj.Name), nil
		}
		return bytecode.Undefined(), nil
	default:
		return bytecode.Undefined(), nil
	}
}

// setProperty assigns obj[key] = value, allocating the object's Properties
// map lazily and boxing primitive values so the map stays handle-only.
func (vm *VM) setProperty(objValue bytecode.Value, key string, value bytecode.Value) error {
	if objValue.Type != bytecode.ValueObject {
		return errors.NewRuntimeError(errors.TypeError, fmt.Sprintf("cannot set property %q on %s", key, objValue.Type))
	}
	handle := objValue.AsHandle()
	obj := vm.heap.Get(handle)
	if obj == nil {
		return errors.NewRuntimeError(errors.ReferenceError, "object has been collected")
	}
	if obj.Kind != gc.KindObject {
		return errors.NewRuntimeError(errors.TypeError, fmt.Sprintf("cannot set property %q on a %v", key, obj.Kind))
	}
	if obj.Properties == nil {
		obj.Properties = make(map[string]bytecode.Handle)
	}
	obj.Properties[key] = vm.box(value)
	vm.heap.Update(handle, obj)
	return nil
}

// getElement reads an array index or falls back to getProperty for
// string/non-numeric keys, so o["x"] and o.x share one code path.
func (vm *VM) getElement(objValue, keyValue bytecode.Value) (bytecode.Value, error) {
	if objValue.Type == bytecode.ValueObject {
		obj := vm.heap.Get(objValue.AsHandle())
		if obj != nil && obj.Kind == gc.KindArray && keyValue.Type == bytecode.ValueNumber {
			idx := int(keyValue.AsNumber())
			if idx < 0 || idx >= len(obj.Elements) {
				return bytecode.Undefined(), nil
			}
			return vm.unbox(obj.Elements[idx]), nil
		}
	}
	return vm.getProperty(objValue, vm.toDisplayString(keyValue))
}

// setElement is getElement's write counterpart: a numeric key on an array
// mutates Elements directly (in range it overwrites; at or past the length
// it grows the array, filling any gap with undefined; a negative index is a
// RangeError); anything else falls back to a string-keyed property set.
func (vm *VM) setElement(objValue, keyValue, value bytecode.Value) error {
	if objValue.Type == bytecode.ValueObject && keyValue.Type == bytecode.ValueNumber {
		handle := objValue.AsHandle()
		obj := vm.heap.Get(handle)
		if obj != nil && obj.Kind == gc.KindArray {
			idx := int(keyValue.AsNumber())
			if idx < 0 {
				return errors.NewRuntimeError(errors.RangeError, "negative array index")
			}
			if idx < len(obj.Elements) {
				obj.Elements[idx] = vm.box(value)
			} else if idx == len(obj.Elements) {
				obj.Elements = append(obj.Elements, vm.box(value))
			} else {
				grown := make([]bytecode.Handle, idx+1)
				copy(grown, obj.Elements)
				undef := vm.box(bytecode.Undefined())
				for i := len(obj.Elements); i < idx; i++ {
					grown[i] = undef
				}
				grown[idx] = vm.box(value)
				obj.Elements = grown
			}
			vm.heap.Update(handle, obj)
			return nil
		}
	}
	return vm.setProperty(objValue, vm.toDisplayString(keyValue), value)
}

// makeClosure materializes a function constant into a heap closure. A
// directly-captured local is "opened": the first closure to capture slot
// uv.Index boxes its current value and records the box in
// f.boxedLocals[uv.Index], after which every OpLoadLocal/OpStoreLocal on
// that slot (the owning frame's own accesses included, see dispatch.go)
// reads and writes through the same box instead of f.locals directly. A
// second closure capturing the same still-open slot, or the frame's own
// later reads/writes, therefore observe each other's mutations - a live
// upvalue, not a value captured once at creation time. An upvalue
// forwarded from the enclosing function's own closure simply reuses the
// box handle already resolved for it.
func (vm *VM) makeClosure(f *frame, fn *bytecode.FunctionConstant) bytecode.Value {
	env := make(map[string]bytecode.Handle, len(fn.Upvalues))
	for _, uv := range fn.Upvalues {
		if uv.IsLocal {
			if f.boxedLocals == nil {
				f.boxedLocals = make(map[int]bytecode.Handle)
			}
			handle, ok := f.boxedLocals[uv.Index]
			if !ok {
				handle = vm.box(f.locals[uv.Index])
				f.boxedLocals[uv.Index] = handle
			}
			env[uv.Name] = handle
		} else if h, ok := f.closure[uv.Name]; ok {
			env[uv.Name] = h
		}
	}
	return bytecode.Object(vm.heap.Allocate(gc.NewFunction(fn.Name, fn, env)))
}
