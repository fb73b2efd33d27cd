package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle identifies a heap object owned by the collector. It is opaque and
// process-unique; the zero Handle never refers to a live object.
type Handle uint64

// ValueType tags the variant held by a Value.
type ValueType byte

const (
	ValueUndefined ValueType = iota
	ValueNull
	ValueBoolean
	ValueNumber
	ValueString
	ValueObject
	// ValueFunction only appears inside a Chunk's constant pool; LoadConstant
	// materializes it into a heap closure and pushes a ValueObject handle.
	ValueFunction
)

var valueTypeNames = [...]string{
	ValueUndefined: "undefined",
	ValueNull:      "null",
	ValueBoolean:   "boolean",
	ValueNumber:    "number",
	ValueString:    "string",
	ValueObject:    "object",
	ValueFunction:  "function",
}

func (vt ValueType) String() string {
	if int(vt) < len(valueTypeNames) {
		return valueTypeNames[vt]
	}
	return "unknown"
}

// Value is a runtime or constant-pool value: a tagged union over the
// primitive domain plus an opaque heap handle. Values are copied by value
// everywhere except Object, which only aliases a handle.
type Value struct {
	Data any
	Type ValueType
}

func Undefined() Value               { return Value{Type: ValueUndefined} }
func Null() Value                    { return Value{Type: ValueNull} }
func Boolean(b bool) Value           { return Value{Type: ValueBoolean, Data: b} }
func Number(n float64) Value         { return Value{Type: ValueNumber, Data: n} }
func String(s string) Value          { return Value{Type: ValueString, Data: s} }
func Object(h Handle) Value          { return Value{Type: ValueObject, Data: h} }
func Function(fn *FunctionConstant) Value { return Value{Type: ValueFunction, Data: fn} }

func (v Value) IsUndefined() bool { return v.Type == ValueUndefined }
func (v Value) IsNull() bool      { return v.Type == ValueNull }

func (v Value) AsBool() bool       { b, _ := v.Data.(bool); return b }
func (v Value) AsNumber() float64  { n, _ := v.Data.(float64); return n }
func (v Value) AsString() string  { s, _ := v.Data.(string); return s }
func (v Value) AsHandle() Handle  { h, _ := v.Data.(Handle); return h }
func (v Value) AsFunction() *FunctionConstant {
	fn, _ := v.Data.(*FunctionConstant)
	return fn
}

// String renders a value the way disassembly and debug tooling display
// constants; it never consults the heap, so an Object value prints only its
// handle.
func (v Value) String() string {
	switch v.Type {
	case ValueUndefined:
		return "undefined"
	case ValueNull:
		return "null"
	case ValueBoolean:
		return strconv.FormatBool(v.AsBool())
	case ValueNumber:
		return formatNumber(v.AsNumber())
	case ValueString:
		return strconv.Quote(v.AsString())
	case ValueObject:
		return fmt.Sprintf("#%d", v.AsHandle())
	case ValueFunction:
		fn := v.AsFunction()
		if fn == nil {
			return "<function>"
		}
		return fmt.Sprintf("<function %s/%d>", fn.Name, fn.Arity)
	default:
		return "<invalid>"
	}
}

func formatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	return s
}

// Equal implements strict-equality comparison at the primitive level
// (NaN is never equal to itself, objects compare by handle identity).
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueUndefined, ValueNull:
		return true
	case ValueBoolean:
		return v.AsBool() == other.AsBool()
	case ValueNumber:
		return v.AsNumber() == other.AsNumber()
	case ValueString:
		return v.AsString() == other.AsString()
	case ValueObject:
		return v.AsHandle() == other.AsHandle()
	default:
		return false
	}
}
