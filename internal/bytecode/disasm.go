package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders chunk as human-readable text: one line per
// instruction, annotated with its source position when the chunk carries a
// source map, and recursing into nested function constants.
func Disassemble(chunk *Chunk) string {
	var b strings.Builder
	disassemble(&b, chunk, "")
	return b.String()
}

func disassemble(b *strings.Builder, chunk *Chunk, indent string) {
	fmt.Fprintf(b, "%schunk %s (%d instructions, %d constants, %d names)\n",
		indent, chunk.Name, len(chunk.Code), len(chunk.Constants), len(chunk.Names))

	for i, inst := range chunk.Code {
		line, col := chunk.Position(i)
		fmt.Fprintf(b, "%s%04d  %-22s %s\n", indent, i, inst.OpCode().String(), operandText(chunk, inst))
		if line != 0 {
			fmt.Fprintf(b, "%s      ; %d:%d\n", indent, line, col)
		}
	}

	for i, v := range chunk.Constants {
		if v.Type != ValueFunction {
			continue
		}
		fn := v.AsFunction()
		if fn == nil {
			continue
		}
		fmt.Fprintf(b, "%sconst[%d] = function %s/%d\n", indent, i, fn.Name, fn.Arity)
		disassemble(b, fn.Chunk, indent+"  ")
	}
}

func operandText(chunk *Chunk, inst Instruction) string {
	switch inst.OpCode() {
	case OpLoadConstant:
		return fmt.Sprintf("%d  ; %s", inst.B(), chunk.GetConstant(int(inst.B())).String())
	case OpLoadGlobal, OpStoreGlobal:
		return fmt.Sprintf("%d  ; %s", inst.B(), chunk.GetName(int(inst.B())))
	case OpLoadLocal, OpStoreLocal, OpLoadUpvalue, OpStoreUpvalue,
		OpDeclareVar, OpDeclareLet, OpDeclareConst:
		return fmt.Sprintf("%d", inst.B())
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpTryBegin:
		return fmt.Sprintf("%+d", inst.SignedB())
	case OpCall, OpNewArray:
		return fmt.Sprintf("%d", inst.B())
	default:
		return ""
	}
}
