package bytecode

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Persisted bytecode document
// ============================
//
// A Chunk is persisted as a small JSON-shaped document tree: the
// instruction stream is stored as mnemonic/operand triples rather than
// raw uint32 words, so the compact form is still diffable and the pretty
// form is genuinely readable. A function constant nests its own document
// recursively.
//
// Two renderings share one document tree (chunkDoc): Compact serializes
// it with encoding/json (stdlib; no closer fit among the pack's JSON-path
// libraries for a full recursive struct-to-document marshaler - see
// DESIGN.md), Pretty serializes the identical tree with goccy/go-yaml for
// a human-readable form. Both round-trip through the same intermediate
// representation, so Decompact and Unpretty share one assembly step.

// Serializer converts between a compiled Chunk and its persisted document
// forms. It carries no state; its methods are pure functions of their
// argument, but it exists as a type (rather than package-level functions)
// so callers can be handed one value implementing a narrow interface.
type Serializer struct{}

func NewSerializer() *Serializer { return &Serializer{} }

// chunkDoc is the document tree persisted for one Chunk (or, nested, one
// function constant's chunk). Field names are shared verbatim between the
// Compact (JSON) and Pretty (YAML) forms.
type chunkDoc struct {
	Name       string            `json:"name" yaml:"name"`
	LocalCount int               `json:"localCount" yaml:"localCount"`
	Names      []string          `json:"names,omitempty" yaml:"names,omitempty"`
	Constants  []constantDoc     `json:"constants,omitempty" yaml:"constants,omitempty"`
	Code       []instructionDoc  `json:"code" yaml:"code"`
	SourceMap  []sourceMapDoc    `json:"sourceMap,omitempty" yaml:"sourceMap,omitempty"`
}

type instructionDoc struct {
	Op string `json:"op" yaml:"op"`
	A  byte   `json:"a,omitempty" yaml:"a,omitempty"`
	B  uint16 `json:"b,omitempty" yaml:"b,omitempty"`
}

type sourceMapDoc struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// constantDoc stores one entry of a chunk's constant pool, selected by
// Type: Value holds a primitive's payload and Function a nested function
// constant; undefined and null constants set neither.
type constantDoc struct {
	Type     string      `json:"type" yaml:"type"`
	Value    any         `json:"value,omitempty" yaml:"value,omitempty"`
	Function *functionDoc `json:"function,omitempty" yaml:"function,omitempty"`
}

type functionDoc struct {
	Name     string         `json:"name" yaml:"name"`
	Arity    int            `json:"arity" yaml:"arity"`
	Async    bool           `json:"async,omitempty" yaml:"async,omitempty"`
	Generator bool          `json:"generator,omitempty" yaml:"generator,omitempty"`
	Upvalues []upvalueDoc   `json:"upvalues,omitempty" yaml:"upvalues,omitempty"`
	Chunk    *chunkDoc      `json:"chunk" yaml:"chunk"`
}

type upvalueDoc struct {
	IsLocal bool   `json:"isLocal" yaml:"isLocal"`
	Index   int    `json:"index" yaml:"index"`
	Name    string `json:"name" yaml:"name"`
}

// Compact renders chunk as the dense JSON persisted form.
func (s *Serializer) Compact(chunk *Chunk) ([]byte, error) {
	if chunk == nil {
		return nil, fmt.Errorf("bytecode: cannot serialize a nil chunk")
	}
	return json.Marshal(toChunkDoc(chunk))
}

// Decompact parses data as the Compact form, reconstructing a Chunk.
func (s *Serializer) Decompact(data []byte) (*Chunk, error) {
	var doc chunkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("bytecode: decompact: %w", err)
	}
	return fromChunkDoc(&doc)
}

// Pretty renders chunk as the same document tree in YAML, for a reader
// who wants to look at a disassembly dump without a "lumen disasm" pass.
func (s *Serializer) Pretty(chunk *Chunk) ([]byte, error) {
	if chunk == nil {
		return nil, fmt.Errorf("bytecode: cannot serialize a nil chunk")
	}
	return yaml.Marshal(toChunkDoc(chunk))
}

// Unpretty parses data as the Pretty form, reconstructing a Chunk.
func (s *Serializer) Unpretty(data []byte) (*Chunk, error) {
	var doc chunkDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("bytecode: unpretty: %w", err)
	}
	return fromChunkDoc(&doc)
}

func toChunkDoc(chunk *Chunk) *chunkDoc {
	doc := &chunkDoc{
		Name:       chunk.Name,
		LocalCount: chunk.LocalCount,
		Names:      append([]string(nil), chunk.Names...),
	}
	doc.Code = make([]instructionDoc, len(chunk.Code))
	for i, inst := range chunk.Code {
		doc.Code[i] = instructionDoc{Op: inst.OpCode().String(), A: inst.A(), B: inst.B()}
	}
	doc.Constants = make([]constantDoc, len(chunk.Constants))
	for i, v := range chunk.Constants {
		doc.Constants[i] = toConstantDoc(v)
	}
	doc.SourceMap = make([]sourceMapDoc, len(chunk.SourceMap))
	for i, e := range chunk.SourceMap {
		doc.SourceMap[i] = sourceMapDoc{Offset: e.InstructionOffset, Line: e.Line, Column: e.Column}
	}
	return doc
}

func toConstantDoc(v Value) constantDoc {
	switch v.Type {
	case ValueUndefined:
		return constantDoc{Type: "undefined"}
	case ValueNull:
		return constantDoc{Type: "null"}
	case ValueBoolean:
		return constantDoc{Type: "boolean", Value: v.AsBool()}
	case ValueNumber:
		return constantDoc{Type: "number", Value: v.AsNumber()}
	case ValueString:
		return constantDoc{Type: "string", Value: v.AsString()}
	case ValueFunction:
		fn := v.AsFunction()
		upvalues := make([]upvalueDoc, len(fn.Upvalues))
		for i, uv := range fn.Upvalues {
			upvalues[i] = upvalueDoc{IsLocal: uv.IsLocal, Index: uv.Index, Name: uv.Name}
		}
		return constantDoc{
			Type: "function",
			Function: &functionDoc{
				Name:      fn.Name,
				Arity:     fn.Arity,
				Async:     fn.Async,
				Generator: fn.Generator,
				Upvalues:  upvalues,
				Chunk:     toChunkDoc(fn.Chunk),
			},
		}
	default:
		return constantDoc{Type: "object"}
	}
}

func fromChunkDoc(doc *chunkDoc) (*Chunk, error) {
	chunk := NewChunk(doc.Name)
	chunk.LocalCount = doc.LocalCount
	chunk.Names = append([]string(nil), doc.Names...)

	chunk.Code = make([]Instruction, len(doc.Code))
	for i, id := range doc.Code {
		op, ok := opCodesByName[id.Op]
		if !ok {
			return nil, fmt.Errorf("bytecode: unknown opcode mnemonic %q", id.Op)
		}
		chunk.Code[i] = MakeInstruction(op, id.A, id.B)
	}

	chunk.Constants = make([]Value, len(doc.Constants))
	for i, cd := range doc.Constants {
		v, err := fromConstantDoc(cd)
		if err != nil {
			return nil, err
		}
		chunk.Constants[i] = v
	}

	chunk.SourceMap = make([]SourceMapEntry, len(doc.SourceMap))
	for i, e := range doc.SourceMap {
		chunk.SourceMap[i] = SourceMapEntry{InstructionOffset: e.Offset, Line: e.Line, Column: e.Column}
	}
	return chunk, nil
}

func fromConstantDoc(cd constantDoc) (Value, error) {
	switch cd.Type {
	case "undefined":
		return Undefined(), nil
	case "null":
		return Null(), nil
	case "boolean":
		b, _ := cd.Value.(bool)
		return Boolean(b), nil
	case "number":
		n, err := numberFromAny(cd.Value)
		if err != nil {
			return Value{}, err
		}
		return Number(n), nil
	case "string":
		str, _ := cd.Value.(string)
		return String(str), nil
	case "function":
		if cd.Function == nil {
			return Value{}, fmt.Errorf("bytecode: function constant missing its body")
		}
		nested, err := fromChunkDoc(cd.Function.Chunk)
		if err != nil {
			return Value{}, err
		}
		upvalues := make([]UpvalueDef, len(cd.Function.Upvalues))
		for i, uv := range cd.Function.Upvalues {
			upvalues[i] = UpvalueDef{IsLocal: uv.IsLocal, Index: uv.Index, Name: uv.Name}
		}
		return Function(&FunctionConstant{
			Chunk:     nested,
			Name:      cd.Function.Name,
			Upvalues:  upvalues,
			Arity:     cd.Function.Arity,
			Async:     cd.Function.Async,
			Generator: cd.Function.Generator,
		}), nil
	default:
		return Value{}, fmt.Errorf("bytecode: cannot deserialize constant of type %q", cd.Type)
	}
}

// numberFromAny recovers a float64 from the decoded document value: JSON
// and YAML both decode a bare number into float64 already, but guard
// against an int arriving from a hand-edited document (gjson/sjson round
// trip through text, so this is reachable from cmd/lumen inspect).
func numberFromAny(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("bytecode: number constant has non-numeric value %v", v)
	}
}
