package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/lumenjs/lumen/internal/bytecode"
)

// toNumber implements the numeric-coercion rules the arithmetic and
// bitwise opcodes rely on, per §4.4: booleans become 0/1, strings parse
// as a float (empty/whitespace-only parses as 0, anything else
// unparseable yields NaN), null is 0, undefined and non-primitive object
// handles are NaN.
func (vm *VM) toNumber(v bytecode.Value) float64 {
	switch v.Type {
	case bytecode.ValueNumber:
		return v.AsNumber()
	case bytecode.ValueBoolean:
		if v.AsBool() {
			return 1
		}
		return 0
	case bytecode.ValueNull:
		return 0
	case bytecode.ValueString:
		s := strings.TrimSpace(v.AsString())
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

// toBoolean implements truthiness per §4.4: 0, NaN, "", null, and
// undefined are falsy; every other value, including every heap object
// handle, is truthy.
func (vm *VM) toBoolean(v bytecode.Value) bool {
	switch v.Type {
	case bytecode.ValueUndefined, bytecode.ValueNull:
		return false
	case bytecode.ValueBoolean:
		return v.AsBool()
	case bytecode.ValueNumber:
		n := v.AsNumber()
		return n != 0 && !math.IsNaN(n)
	case bytecode.ValueString:
		return v.AsString() != ""
	default:
		return true
	}
}

func (vm *VM) toInt32(v bytecode.Value) int32 {
	n := vm.toNumber(v)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(uint32(int64(n)))
}

func (vm *VM) toUint32(v bytecode.Value) uint32 {
	n := vm.toNumber(v)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return uint32(int64(n))
}

// toDisplayString renders v for string concatenation and property-key
// coercion; it only unboxes primitives, never reads the heap, matching
// the disassembly/debug String() method's shape.
func (vm *VM) toDisplayString(v bytecode.Value) string {
	switch v.Type {
	case bytecode.ValueString:
		return v.AsString()
	case bytecode.ValueUndefined:
		return "undefined"
	case bytecode.ValueNull:
		return "null"
	case bytecode.ValueBoolean:
		return strconv.FormatBool(v.AsBool())
	case bytecode.ValueNumber:
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	default:
		return v.String()
	}
}

// looseEqual implements Equal's abstract-equality coercion rules: same
// type compares strictly; null and undefined are mutually loosely equal
// and equal to nothing else; a number/string pair compares numerically;
// a boolean operand coerces to a number first, per §4.4.
func (vm *VM) looseEqual(a, b bytecode.Value) bool {
	if a.Type == b.Type {
		return vm.strictEqual(a, b)
	}
	if isNullish(a) && isNullish(b) {
		return true
	}
	if isNullish(a) || isNullish(b) {
		return false
	}
	if a.Type == bytecode.ValueBoolean {
		return vm.looseEqual(bytecode.Number(vm.toNumber(a)), b)
	}
	if b.Type == bytecode.ValueBoolean {
		return vm.looseEqual(a, bytecode.Number(vm.toNumber(b)))
	}
	if a.Type == bytecode.ValueNumber && b.Type == bytecode.ValueString {
		return a.AsNumber() == vm.toNumber(b)
	}
	if a.Type == bytecode.ValueString && b.Type == bytecode.ValueNumber {
		return vm.toNumber(a) == b.AsNumber()
	}
	return false
}

func isNullish(v bytecode.Value) bool {
	return v.Type == bytecode.ValueNull || v.Type == bytecode.ValueUndefined
}

// strictEqual implements StrictEqual: no coercion, differing types are
// never equal, NaN is never equal to itself, object values compare by
// handle identity.
func (vm *VM) strictEqual(a, b bytecode.Value) bool {
	return a.Equal(b)
}
