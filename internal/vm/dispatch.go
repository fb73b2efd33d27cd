package vm

import (
	"fmt"
	"math"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/gc"
)

// dispatch executes one instruction against frame f. It returns (result,
// true, nil) only for the instructions that end execution (Halt, or
// Return with no caller left); every other instruction returns
// (zero, false, nil) or a non-nil error.
func (vm *VM) dispatch(f *frame, inst bytecode.Instruction) (bytecode.Value, bool, error) {
	switch inst.OpCode() {

	case bytecode.OpLoadConstant:
		v := f.chunk.GetConstant(int(inst.B()))
		return bytecode.Value{}, false, vm.push(v)

	case bytecode.OpLoadGlobal:
		// Per §4.4's LoadGlobal/StoreGlobal entry, a missing global reads
		// as undefined rather than raising - matching GetGlobal's host-API
		// behavior for the same lookup.
		name := f.chunk.GetName(int(inst.B()))
		return bytecode.Value{}, false, vm.push(vm.GetGlobal(name))

	case bytecode.OpStoreGlobal:
		v, err := vm.pop()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		vm.globals[f.chunk.GetName(int(inst.B()))] = v
		return bytecode.Value{}, false, nil

	case bytecode.OpLoadLocal:
		slot := int(inst.B())
		if slot < 0 || slot >= len(f.locals) {
			return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidBytecode, "local slot out of range")
		}
		if handle, ok := f.boxedLocals[slot]; ok {
			return bytecode.Value{}, false, vm.push(vm.unbox(handle))
		}
		return bytecode.Value{}, false, vm.push(f.locals[slot])

	case bytecode.OpStoreLocal:
		v, err := vm.pop()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		slot := int(inst.B())
		if slot < 0 || slot >= len(f.locals) {
			return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidBytecode, "local slot out of range")
		}
		if handle, ok := f.boxedLocals[slot]; ok {
			vm.heap.Update(handle, gc.NewBox(v))
		} else {
			f.locals[slot] = v
		}
		return bytecode.Value{}, false, nil

	case bytecode.OpLoadUpvalue:
		def := upvalueAt(f, int(inst.B()))
		handle, ok := f.closure[def]
		if !ok {
			return bytecode.Value{}, false, vm.push(bytecode.Undefined())
		}
		box := vm.heap.Get(handle)
		if box == nil || box.Kind != gc.KindBox {
			return bytecode.Value{}, false, vm.push(bytecode.Undefined())
		}
		return bytecode.Value{}, false, vm.push(*box.Boxed)

	case bytecode.OpStoreUpvalue:
		v, err := vm.pop()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		name := upvalueAt(f, int(inst.B()))
		if handle, ok := f.closure[name]; ok {
			vm.heap.Update(handle, gc.NewBox(v))
		} else {
			f.closure[name] = vm.heap.Allocate(gc.NewBox(v))
		}
		return bytecode.Value{}, false, nil

	case bytecode.OpClosure:
		v, err := vm.pop()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		fn := v.AsFunction()
		if fn == nil {
			return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidBytecode, "closure: top of stack is not a function constant")
		}
		return bytecode.Value{}, false, vm.push(vm.makeClosure(f, fn))

	case bytecode.OpAdd:
		return bytecode.Value{}, false, vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
			if a.Type == bytecode.ValueString || b.Type == bytecode.ValueString {
				return bytecode.String(vm.toDisplayString(a) + vm.toDisplayString(b))
			}
			return bytecode.Number(vm.toNumber(a) + vm.toNumber(b))
		})
	case bytecode.OpSubtract:
		return bytecode.Value{}, false, vm.numericBinary(func(a, b float64) float64 { return a - b })
	case bytecode.OpMultiply:
		return bytecode.Value{}, false, vm.numericBinary(func(a, b float64) float64 { return a * b })
	case bytecode.OpDivide:
		return bytecode.Value{}, false, vm.numericBinary(func(a, b float64) float64 { return a / b })
	case bytecode.OpModulo:
		return bytecode.Value{}, false, vm.numericBinary(math.Mod)
	case bytecode.OpPower:
		return bytecode.Value{}, false, vm.numericBinary(math.Pow)

	case bytecode.OpEqual:
		return bytecode.Value{}, false, vm.compareBinary(vm.looseEqual)
	case bytecode.OpNotEqual:
		return bytecode.Value{}, false, vm.compareBinary(func(a, b bytecode.Value) bool { return !vm.looseEqual(a, b) })
	case bytecode.OpStrictEqual:
		return bytecode.Value{}, false, vm.compareBinary(vm.strictEqual)
	case bytecode.OpStrictNotEqual:
		return bytecode.Value{}, false, vm.compareBinary(func(a, b bytecode.Value) bool { return !vm.strictEqual(a, b) })
	case bytecode.OpLess:
		return bytecode.Value{}, false, vm.relational(func(a, b float64) bool { return a < b }, func(a, b string) bool { return a < b })
	case bytecode.OpLessEqual:
		return bytecode.Value{}, false, vm.relational(func(a, b float64) bool { return a <= b }, func(a, b string) bool { return a <= b })
	case bytecode.OpGreater:
		return bytecode.Value{}, false, vm.relational(func(a, b float64) bool { return a > b }, func(a, b string) bool { return a > b })
	case bytecode.OpGreaterEqual:
		return bytecode.Value{}, false, vm.relational(func(a, b float64) bool { return a >= b }, func(a, b string) bool { return a >= b })

	case bytecode.OpLogicalAnd:
		return bytecode.Value{}, false, vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
			if !vm.toBoolean(a) {
				return a
			}
			return b
		})
	case bytecode.OpLogicalOr:
		return bytecode.Value{}, false, vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
			if vm.toBoolean(a) {
				return a
			}
			return b
		})
	case bytecode.OpLogicalNot:
		return bytecode.Value{}, false, vm.unary(func(v bytecode.Value) bytecode.Value { return bytecode.Boolean(!vm.toBoolean(v)) })

	case bytecode.OpBitwiseAnd:
		return bytecode.Value{}, false, vm.int32Binary(func(a, b int32) int32 { return a & b })
	case bytecode.OpBitwiseOr:
		return bytecode.Value{}, false, vm.int32Binary(func(a, b int32) int32 { return a | b })
	case bytecode.OpBitwiseXor:
		return bytecode.Value{}, false, vm.int32Binary(func(a, b int32) int32 { return a ^ b })
	case bytecode.OpBitwiseNot:
		return bytecode.Value{}, false, vm.unary(func(v bytecode.Value) bytecode.Value { return bytecode.Number(float64(^vm.toInt32(v))) })
	case bytecode.OpLeftShift:
		return bytecode.Value{}, false, vm.shift(func(a int32, b uint32) float64 { return float64(a << (b & 31)) })
	case bytecode.OpRightShift:
		return bytecode.Value{}, false, vm.shift(func(a int32, b uint32) float64 { return float64(a >> (b & 31)) })
	case bytecode.OpUnsignedRightShift:
		return bytecode.Value{}, false, vm.unsignedShift(func(a, b uint32) float64 { return float64(a >> (b & 31)) })

	case bytecode.OpUnaryPlus:
		return bytecode.Value{}, false, vm.unary(func(v bytecode.Value) bytecode.Value { return bytecode.Number(vm.toNumber(v)) })
	case bytecode.OpUnaryMinus:
		return bytecode.Value{}, false, vm.unary(func(v bytecode.Value) bytecode.Value { return bytecode.Number(-vm.toNumber(v)) })
	case bytecode.OpTypeOf:
		return bytecode.Value{}, false, vm.unary(vm.typeOf)

	case bytecode.OpJump:
		f.pc = f.pc + int(inst.SignedB())
		return bytecode.Value{}, false, nil
	case bytecode.OpJumpIfFalse:
		v, err := vm.pop()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		if !vm.toBoolean(v) {
			f.pc = f.pc + int(inst.SignedB())
		}
		return bytecode.Value{}, false, nil
	case bytecode.OpJumpIfTrue:
		v, err := vm.pop()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		if vm.toBoolean(v) {
			f.pc = f.pc + int(inst.SignedB())
		}
		return bytecode.Value{}, false, nil

	case bytecode.OpCall:
		return bytecode.Value{}, false, vm.call(int(inst.B()))
	case bytecode.OpReturn:
		return vm.doReturn()

	case bytecode.OpNewObject:
		return bytecode.Value{}, false, vm.push(vm.newObject())
	case bytecode.OpNewArray:
		n := int(inst.B())
		if len(vm.stack) < n {
			return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidBytecode, "new array: operand stack underflow")
		}
		elements := make([]bytecode.Value, n)
		copy(elements, vm.stack[len(vm.stack)-n:])
		vm.stack = vm.stack[:len(vm.stack)-n]
		return bytecode.Value{}, false, vm.push(vm.newArray(elements))
	case bytecode.OpGetProperty:
		key, obj, err := vm.popTwo()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		v, err := vm.getProperty(obj, key.AsString())
		if err != nil {
			return bytecode.Value{}, false, err
		}
		return bytecode.Value{}, false, vm.push(v)
	case bytecode.OpSetProperty:
		value, key, obj, err := vm.popThree()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		return bytecode.Value{}, false, vm.setProperty(obj, key.AsString(), value)
	case bytecode.OpGetElement:
		key, obj, err := vm.popTwo()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		v, err := vm.getElement(obj, key)
		if err != nil {
			return bytecode.Value{}, false, err
		}
		return bytecode.Value{}, false, vm.push(v)
	case bytecode.OpSetElement:
		value, key, obj, err := vm.popThree()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		return bytecode.Value{}, false, vm.setElement(obj, key, value)

	case bytecode.OpDeclareVar, bytecode.OpDeclareLet, bytecode.OpDeclareConst:
		return bytecode.Value{}, false, nil

	case bytecode.OpPop:
		_, err := vm.pop()
		return bytecode.Value{}, false, err
	case bytecode.OpDuplicate:
		if len(vm.stack) == 0 {
			return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidBytecode, "duplicate: operand stack underflow")
		}
		return bytecode.Value{}, false, vm.push(vm.peek())
	case bytecode.OpSwap:
		if len(vm.stack) < 2 {
			return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidBytecode, "swap: operand stack underflow")
		}
		n := len(vm.stack)
		vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]
		return bytecode.Value{}, false, nil
	case bytecode.OpNop:
		return bytecode.Value{}, false, nil
	case bytecode.OpHalt:
		if len(vm.stack) == 0 {
			return bytecode.Undefined(), true, nil
		}
		return vm.peek(), true, nil

	case bytecode.OpThrow:
		v, err := vm.pop()
		if err != nil {
			return bytecode.Value{}, false, err
		}
		return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidOperation, vm.toDisplayString(v)).WithThrownValue(v)

	case bytecode.OpTryBegin:
		vm.handlers = append(vm.handlers, handler{
			catchTarget: f.pc + int(inst.SignedB()),
			stackDepth:  len(vm.stack),
			frameDepth:  len(vm.frames) - 1,
		})
		return bytecode.Value{}, false, nil
	case bytecode.OpTryEnd:
		if len(vm.handlers) > 0 {
			vm.handlers = vm.handlers[:len(vm.handlers)-1]
		}
		return bytecode.Value{}, false, nil
	case bytecode.OpCatchBegin, bytecode.OpCatchEnd, bytecode.OpFinallyBegin, bytecode.OpFinallyEnd:
		// Purely structural markers: the handler stack is already
		// consulted by Throw, and an exception pending across a finally
		// is carried in compiler-temp locals (see compileTryStatement),
		// so no runtime bookkeeping happens at these boundaries.
		return bytecode.Value{}, false, nil

	case bytecode.OpAwait:
		return bytecode.Value{}, false, errors.NewRuntimeError(errors.AsyncError, "await is not supported")
	case bytecode.OpImport, bytecode.OpExport:
		return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidOperation, "module import/export bytecode is not executable directly")

	default:
		return bytecode.Value{}, false, errors.NewRuntimeError(errors.InvalidBytecode, fmt.Sprintf("unknown opcode %v", inst.OpCode()))
	}
}

func upvalueAt(f *frame, idx int) string {
	if f.fn == nil || idx < 0 || idx >= len(f.fn.Upvalues) {
		return ""
	}
	return f.fn.Upvalues[idx].Name
}

func (vm *VM) popTwo() (top, second bytecode.Value, err error) {
	if len(vm.stack) < 2 {
		return bytecode.Value{}, bytecode.Value{}, errors.NewRuntimeError(errors.InvalidBytecode, "operand stack underflow")
	}
	n := len(vm.stack)
	top, second = vm.stack[n-1], vm.stack[n-2]
	vm.stack = vm.stack[:n-2]
	return top, second, nil
}

func (vm *VM) popThree() (top, mid, bottom bytecode.Value, err error) {
	if len(vm.stack) < 3 {
		return bytecode.Value{}, bytecode.Value{}, bytecode.Value{}, errors.NewRuntimeError(errors.InvalidBytecode, "operand stack underflow")
	}
	n := len(vm.stack)
	top, mid, bottom = vm.stack[n-1], vm.stack[n-2], vm.stack[n-3]
	vm.stack = vm.stack[:n-3]
	return top, mid, bottom, nil
}

func (vm *VM) binaryArith(f func(a, b bytecode.Value) bytecode.Value) error {
	b, a, err := vm.popTwo()
	if err != nil {
		return err
	}
	return vm.push(f(a, b))
}

func (vm *VM) numericBinary(f func(a, b float64) float64) error {
	return vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
		return bytecode.Number(f(vm.toNumber(a), vm.toNumber(b)))
	})
}

func (vm *VM) compareBinary(f func(a, b bytecode.Value) bool) error {
	return vm.binaryArith(func(a, b bytecode.Value) bytecode.Value { return bytecode.Boolean(f(a, b)) })
}

// relational implements <, <=, >, >=: a string-string comparison is
// lexicographic, every other pairing coerces both sides to number, per
// §4.4.
func (vm *VM) relational(numCmp func(a, b float64) bool, strCmp func(a, b string) bool) error {
	return vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
		if a.Type == bytecode.ValueString && b.Type == bytecode.ValueString {
			return bytecode.Boolean(strCmp(a.AsString(), b.AsString()))
		}
		return bytecode.Boolean(numCmp(vm.toNumber(a), vm.toNumber(b)))
	})
}

func (vm *VM) int32Binary(f func(a, b int32) int32) error {
	return vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
		return bytecode.Number(float64(f(vm.toInt32(a), vm.toInt32(b))))
	})
}

func (vm *VM) shift(f func(a int32, b uint32) float64) error {
	return vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
		return bytecode.Number(f(vm.toInt32(a), vm.toUint32(b)))
	})
}

func (vm *VM) unsignedShift(f func(a, b uint32) float64) error {
	return vm.binaryArith(func(a, b bytecode.Value) bytecode.Value {
		return bytecode.Number(f(vm.toUint32(a), vm.toUint32(b)))
	})
}

func (vm *VM) unary(f func(v bytecode.Value) bytecode.Value) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.push(f(v))
}

func (vm *VM) typeOf(v bytecode.Value) bytecode.Value {
	switch v.Type {
	case bytecode.ValueUndefined:
		return bytecode.String("undefined")
	case bytecode.ValueNull:
		return bytecode.String("object")
	case bytecode.ValueBoolean:
		return bytecode.String("boolean")
	case bytecode.ValueNumber:
		return bytecode.String("number")
	case bytecode.ValueString:
		return bytecode.String("string")
	case bytecode.ValueObject:
		if obj := vm.heap.Get(v.AsHandle()); obj != nil && obj.Kind == gc.KindFunction {
			return bytecode.String("function")
		}
		return bytecode.String("object")
	default:
		return bytecode.String("undefined")
	}
}
