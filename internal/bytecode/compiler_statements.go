package bytecode

import "github.com/lumenjs/lumen/internal/ast"

// compileStatement lowers stmt. Every statement leaves the operand stack at
// the depth it found it (§4.3's "expression statement discards its value"
// rule, generalized).
func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.compileExpressionStatement(s)
	case *ast.BlockStatement:
		c.beginScope()
		for _, inner := range s.Statements {
			c.compileStatement(inner)
		}
		c.endScope()
	case *ast.VariableDeclaration:
		c.compileVariableDeclaration(s)
	case *ast.FunctionDeclaration:
		c.compileFunctionDeclaration(s)
	case *ast.ReturnStatement:
		c.compileReturnStatement(s)
	case *ast.IfStatement:
		c.compileIfStatement(s)
	case *ast.WhileStatement:
		c.compileWhileStatement(s)
	case *ast.ForStatement:
		c.compileForStatement(s)
	case *ast.BreakStatement:
		c.compileBreakStatement(s)
	case *ast.ContinueStatement:
		c.compileContinueStatement(s)
	case *ast.ThrowStatement:
		c.compileThrowStatement(s)
	case *ast.TryStatement:
		c.compileTryStatement(s)
	default:
		c.internalError(stmt, "unknown statement node %T", stmt)
	}
}

func (c *Compiler) compileExpressionStatement(s *ast.ExpressionStatement) {
	if s.Expression == nil {
		return
	}
	c.compileExpression(s.Expression)
	line, col := c.lineCol(s)
	c.chunk.WriteSimple(OpPop, line, col)
}

var declareOpCodes = map[ast.DeclarationKind]OpCode{
	ast.DeclarationVar:   OpDeclareVar,
	ast.DeclarationLet:   OpDeclareLet,
	ast.DeclarationConst: OpDeclareConst,
}

// compileVariableDeclaration lowers each declarator: the initializer (or
// undefined), a fresh local slot via a store, then the kind-specific
// declare opcode recording the slot for diagnostics, per §4.3.
func (c *Compiler) compileVariableDeclaration(s *ast.VariableDeclaration) {
	declareOp, ok := declareOpCodes[s.Kind]
	if !ok {
		c.internalError(s, "unknown declaration kind %v", s.Kind)
		return
	}
	for _, decl := range s.Declarations {
		line, col := c.lineCol(decl)
		if decl.Init != nil {
			c.compileExpression(decl.Init)
		} else {
			c.emitConstant(Undefined(), decl)
		}
		slot := c.declareLocal(decl.Name.Value)
		c.chunk.Write(OpStoreLocal, uint16(slot), line, col)
		c.chunk.Write(declareOp, uint16(slot), line, col)
	}
}

// compileFunctionDeclaration binds the function's name in the enclosing
// scope at the point it is compiled: a local slot when nested inside
// another function, otherwise a global.
func (c *Compiler) compileFunctionDeclaration(s *ast.FunctionDeclaration) {
	fn := c.compileFunction(functionHeader{
		Name:      s.Name.Value,
		Params:    s.Params,
		Body:      s.Body,
		Async:     s.Async,
		Generator: s.Generator,
	}, s)
	line, col := c.lineCol(s)
	idx := c.chunk.AddConstant(Function(fn))
	c.chunk.Write(OpLoadConstant, uint16(idx), line, col)
	c.chunk.WriteSimple(OpClosure, line, col)

	if c.enclosing != nil {
		slot := c.declareLocal(s.Name.Value)
		c.chunk.Write(OpStoreLocal, uint16(slot), line, col)
		return
	}
	nameIdx := c.chunk.AddName(s.Name.Value)
	c.chunk.Write(OpStoreGlobal, uint16(nameIdx), line, col)
}

func (c *Compiler) compileReturnStatement(s *ast.ReturnStatement) {
	line, col := c.lineCol(s)
	if s.Value != nil {
		c.compileExpression(s.Value)
	} else {
		c.emitConstant(Undefined(), s)
	}
	c.chunk.WriteSimple(OpReturn, line, col)
}

// compileIfStatement mirrors the ternary lowering: with no else branch the
// single conditional jump targets the end.
func (c *Compiler) compileIfStatement(s *ast.IfStatement) {
	line, col := c.lineCol(s)
	c.compileExpression(s.Condition)
	falseJump := c.chunk.Write(OpJumpIfFalse, 0, line, col)
	c.compileStatement(s.Consequent)

	if s.Alternate == nil {
		if err := c.chunk.PatchJump(falseJump); err != nil {
			c.internalError(s, "%v", err)
		}
		return
	}

	endJump := c.chunk.Write(OpJump, 0, line, col)
	if err := c.chunk.PatchJump(falseJump); err != nil {
		c.internalError(s, "%v", err)
	}
	c.compileStatement(s.Alternate)
	if err := c.chunk.PatchJump(endJump); err != nil {
		c.internalError(s, "%v", err)
	}
}

// compileWhileStatement records loop_start, emits the test and a
// JumpIfFalse to exit, the body, then a Jump back to loop_start; continue
// targets loop_start, break targets exit, per §4.3.
func (c *Compiler) compileWhileStatement(s *ast.WhileStatement) {
	line, col := c.lineCol(s)
	loopStart := c.chunk.InstructionCount()
	lc := c.pushLoop()

	c.compileExpression(s.Condition)
	exitJump := c.chunk.Write(OpJumpIfFalse, 0, line, col)
	c.compileStatement(s.Body)
	c.chunk.Write(OpJump, 0, line, col)
	if err := c.chunk.PatchJumpTo(c.chunk.InstructionCount()-1, loopStart); err != nil {
		c.internalError(s, "%v", err)
	}

	exitTarget := c.chunk.InstructionCount()
	if err := c.chunk.PatchJump(exitJump); err != nil {
		c.internalError(s, "%v", err)
	}
	c.patchLoopJumps(lc, loopStart, exitTarget)
	c.popLoop()
}

// compileForStatement compiles init in a fresh scope, then mirrors
// compileWhileStatement with an update clause inserted at the continue
// target, per §4.3.
func (c *Compiler) compileForStatement(s *ast.ForStatement) {
	line, col := c.lineCol(s)
	c.beginScope()
	if s.Init != nil {
		c.compileStatement(s.Init)
	}

	loopStart := c.chunk.InstructionCount()
	lc := c.pushLoop()

	var exitJump int
	hasTest := s.Test != nil
	if hasTest {
		c.compileExpression(s.Test)
		exitJump = c.chunk.Write(OpJumpIfFalse, 0, line, col)
	}

	c.compileStatement(s.Body)

	continueTarget := c.chunk.InstructionCount()
	if s.Update != nil {
		c.compileExpression(s.Update)
		c.chunk.WriteSimple(OpPop, line, col)
	}
	c.chunk.Write(OpJump, 0, line, col)
	if err := c.chunk.PatchJumpTo(c.chunk.InstructionCount()-1, loopStart); err != nil {
		c.internalError(s, "%v", err)
	}

	exitTarget := c.chunk.InstructionCount()
	if hasTest {
		if err := c.chunk.PatchJump(exitJump); err != nil {
			c.internalError(s, "%v", err)
		}
	}
	c.patchLoopJumps(lc, continueTarget, exitTarget)
	c.popLoop()
	c.endScope()
}

// compileBreakStatement emits a placeholder Jump captured into the
// innermost loop record for later patching to the loop's exit.
func (c *Compiler) compileBreakStatement(s *ast.BreakStatement) {
	lc := c.currentLoop()
	if lc == nil {
		c.invalidSyntax(s, "break outside of a loop")
		return
	}
	line, col := c.lineCol(s)
	idx := c.chunk.Write(OpJump, 0, line, col)
	lc.breakJumps = append(lc.breakJumps, idx)
}

func (c *Compiler) compileContinueStatement(s *ast.ContinueStatement) {
	lc := c.currentLoop()
	if lc == nil {
		c.invalidSyntax(s, "continue outside of a loop")
		return
	}
	line, col := c.lineCol(s)
	idx := c.chunk.Write(OpJump, 0, line, col)
	lc.continueJumps = append(lc.continueJumps, idx)
}

func (c *Compiler) compileThrowStatement(s *ast.ThrowStatement) {
	c.compileExpression(s.Value)
	line, col := c.lineCol(s)
	c.chunk.WriteSimple(OpThrow, line, col)
}

// compileTryStatement emits TryBegin(0)/TryEnd around the protected block,
// a Jump past the handler, then the catch block at the patched TryBegin
// target; a present catch parameter is bound by a StoreLocal at catch
// entry, where the thrown value sits on the operand stack per §9. A
// finally block, if present, is surrounded by FinallyBegin/FinallyEnd and
// runs after both the normal and the catch path. A try with a finally but
// no catch stashes the thrown value and a pending flag in compiler-temp
// locals instead of discarding it, and re-throws once the finally
// completes, so a pending exception survives the finally per §9.
func (c *Compiler) compileTryStatement(s *ast.TryStatement) {
	line, col := c.lineCol(s)

	rethrowsPending := s.Catch == nil && s.Finally != nil
	var pendingFlag, pendingValue int
	if rethrowsPending {
		pendingFlag = c.tempLocal()
		pendingValue = c.tempLocal()
		c.emitConstant(Boolean(false), s)
		c.chunk.Write(OpStoreLocal, uint16(pendingFlag), line, col)
	}

	tryBeginIdx := c.chunk.Write(OpTryBegin, 0, line, col)
	c.compileStatement(s.Block)
	c.chunk.WriteSimple(OpTryEnd, line, col)
	skipCatchJump := c.chunk.Write(OpJump, 0, line, col)

	catchTarget := c.chunk.InstructionCount()
	if err := c.chunk.PatchJumpTo(tryBeginIdx, catchTarget); err != nil {
		c.internalError(s, "%v", err)
	}
	if s.Catch != nil {
		c.chunk.WriteSimple(OpCatchBegin, line, col)
		c.beginScope()
		if s.Catch.Param != nil {
			slot := c.declareLocal(s.Catch.Param.Value)
			c.chunk.Write(OpStoreLocal, uint16(slot), line, col)
		} else {
			c.chunk.WriteSimple(OpPop, line, col)
		}
		for _, inner := range s.Catch.Body.Statements {
			c.compileStatement(inner)
		}
		c.endScope()
		c.chunk.WriteSimple(OpCatchEnd, line, col)
	} else if rethrowsPending {
		// No catch clause but a finally waits downstream: hold onto the
		// thrown value and mark it pending instead of discarding it.
		c.chunk.Write(OpStoreLocal, uint16(pendingValue), line, col)
		c.emitConstant(Boolean(true), s)
		c.chunk.Write(OpStoreLocal, uint16(pendingFlag), line, col)
	} else {
		// No catch and no finally to defer to: the thrown value still
		// lands here (per the Throw opcode's behavior), with nothing left
		// to re-raise it to, so it is discarded.
		c.chunk.WriteSimple(OpPop, line, col)
	}
	if err := c.chunk.PatchJump(skipCatchJump); err != nil {
		c.internalError(s, "%v", err)
	}

	if s.Finally != nil {
		c.chunk.WriteSimple(OpFinallyBegin, line, col)
		c.compileStatement(s.Finally)
		c.chunk.WriteSimple(OpFinallyEnd, line, col)
	}

	if rethrowsPending {
		c.chunk.Write(OpLoadLocal, uint16(pendingFlag), line, col)
		skipRethrow := c.chunk.Write(OpJumpIfFalse, 0, line, col)
		c.chunk.Write(OpLoadLocal, uint16(pendingValue), line, col)
		c.chunk.WriteSimple(OpThrow, line, col)
		if err := c.chunk.PatchJump(skipRethrow); err != nil {
			c.internalError(s, "%v", err)
		}
	}
}
