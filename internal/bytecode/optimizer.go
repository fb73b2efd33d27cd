package bytecode

// Optimize runs a peephole pass over chunk in place, and recurses into any
// nested function constants. Per §9's note that the optimizer must be
// semantics-preserving at minimum, it implements exactly two rewrites:
// eliding a LoadConstant immediately followed by Pop, and deleting dead
// code that falls after an unconditional terminator and before the next
// instruction any jump can land on.
func Optimize(chunk *Chunk) {
	optimizeChunk(chunk)
	for _, v := range chunk.Constants {
		if v.Type == ValueFunction {
			if fn := v.AsFunction(); fn != nil {
				Optimize(fn.Chunk)
			}
		}
	}
}

func isTerminator(op OpCode) bool {
	switch op {
	case OpJump, OpReturn, OpHalt, OpThrow:
		return true
	default:
		return false
	}
}

func jumpTarget(code []Instruction, index int) (int, bool) {
	switch code[index].OpCode() {
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpTryBegin:
		return index + 1 + int(code[index].SignedB()), true
	default:
		return 0, false
	}
}

func optimizeChunk(chunk *Chunk) {
	code := chunk.Code
	n := len(code)
	if n == 0 {
		return
	}

	isTarget := make([]bool, n)
	for i := range code {
		if target, ok := jumpTarget(code, i); ok && target >= 0 && target < n {
			isTarget[target] = true
		}
	}

	remove := make([]bool, n)

	for i := 0; i < n-1; i++ {
		if code[i].OpCode() == OpLoadConstant && code[i+1].OpCode() == OpPop &&
			!isTarget[i] && !isTarget[i+1] {
			remove[i] = true
			remove[i+1] = true
		}
	}

	for i := 0; i < n; i++ {
		if remove[i] || !isTerminator(code[i].OpCode()) {
			continue
		}
		for j := i + 1; j < n && !isTarget[j]; j++ {
			remove[j] = true
		}
	}

	if !anyTrue(remove) {
		return
	}

	oldToNew := make([]int, n)
	newCode := make([]Instruction, 0, n)
	for i := 0; i < n; i++ {
		if remove[i] {
			oldToNew[i] = -1
			continue
		}
		oldToNew[i] = len(newCode)
		newCode = append(newCode, code[i])
	}

	for i, inst := range newCode {
		op := inst.OpCode()
		if op != OpJump && op != OpJumpIfFalse && op != OpJumpIfTrue && op != OpTryBegin {
			continue
		}
		oldIndex := indexOfNew(oldToNew, i)
		oldTarget, _ := jumpTarget(code, oldIndex)
		newTarget := oldToNew[oldTarget]
		newCode[i] = inst.withB(uint16(int16(newTarget - i - 1)))
	}

	newSourceMap := make([]SourceMapEntry, 0, len(chunk.SourceMap))
	for _, entry := range chunk.SourceMap {
		offset := entry.InstructionOffset
		for offset < n && remove[offset] {
			offset++
		}
		if offset >= n {
			continue
		}
		mapped := oldToNew[offset]
		if len(newSourceMap) > 0 && newSourceMap[len(newSourceMap)-1].InstructionOffset == mapped {
			continue
		}
		newSourceMap = append(newSourceMap, SourceMapEntry{InstructionOffset: mapped, Line: entry.Line, Column: entry.Column})
	}

	chunk.Code = newCode
	chunk.SourceMap = newSourceMap
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

// indexOfNew recovers the original index whose mapped position is newIndex
// by a linear scan of oldToNew from the start, returning -1 if no entry
// maps there.
func indexOfNew(oldToNew []int, newIndex int) int {
	for old, mapped := range oldToNew {
		if mapped == newIndex {
			return old
		}
	}
	return -1
}
