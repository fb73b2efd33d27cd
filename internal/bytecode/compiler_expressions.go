package bytecode

import "github.com/lumenjs/lumen/internal/ast"

// compileExpression lowers expr, leaving exactly one value on the operand
// stack per §4.3.
func (c *Compiler) compileExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		c.compileIdentifierLoad(e)
	case *ast.NumberLiteral:
		c.emitConstant(Number(e.Value), e)
	case *ast.StringLiteral:
		c.emitConstant(String(e.Value), e)
	case *ast.TemplateLiteral:
		c.unsupported(e, "template substitutions are not supported")
		c.emitConstant(String(e.Value), e)
	case *ast.RegexpLiteral:
		c.unsupported(e, "regular expression literals are not supported")
	case *ast.BooleanLiteral:
		c.emitConstant(Boolean(e.Value), e)
	case *ast.NullLiteral:
		c.emitConstant(Null(), e)
	case *ast.UndefinedLiteral:
		c.emitConstant(Undefined(), e)
	case *ast.BinaryExpression:
		c.compileBinaryExpression(e)
	case *ast.UnaryExpression:
		c.compileUnaryExpression(e)
	case *ast.UpdateExpression:
		c.compileUpdateExpression(e)
	case *ast.AssignmentExpression:
		c.compileAssignmentExpression(e)
	case *ast.ConditionalExpression:
		c.compileConditionalExpression(e)
	case *ast.CallExpression:
		c.compileCallExpression(e)
	case *ast.MemberExpression:
		c.compileMemberExpression(e)
	case *ast.ArrayLiteral:
		c.compileArrayLiteral(e)
	case *ast.ObjectLiteral:
		c.compileObjectLiteral(e)
	case *ast.FunctionExpression:
		c.compileFunctionExpression(e)
	default:
		c.internalError(expr, "unknown expression node %T", expr)
	}
}

func (c *Compiler) emitConstant(v Value, node ast.Node) {
	line, col := c.lineCol(node)
	idx := c.chunk.AddConstant(v)
	c.chunk.Write(OpLoadConstant, uint16(idx), line, col)
}

func (c *Compiler) lineCol(node ast.Node) (int, int) {
	pos := c.posOf(node)
	return pos.Line, pos.Column
}

// compileIdentifierLoad resolves name against the local scope, then the
// enclosing-compiler chain (as an upvalue), then falls back to a global.
func (c *Compiler) compileIdentifierLoad(id *ast.Identifier) {
	line, col := c.lineCol(id)
	if slot, ok := c.resolveLocal(id.Value); ok {
		c.chunk.Write(OpLoadLocal, uint16(slot), line, col)
		return
	}
	if idx, ok := c.resolveUpvalue(id.Value); ok {
		c.chunk.Write(OpLoadUpvalue, uint16(idx), line, col)
		return
	}
	nameIdx := c.chunk.AddName(id.Value)
	c.chunk.Write(OpLoadGlobal, uint16(nameIdx), line, col)
}

// compileIdentifierStore emits the store half of an assignment to name.
func (c *Compiler) compileIdentifierStore(id *ast.Identifier, line, col int) {
	if slot, ok := c.resolveLocal(id.Value); ok {
		c.chunk.Write(OpStoreLocal, uint16(slot), line, col)
		return
	}
	if idx, ok := c.resolveUpvalue(id.Value); ok {
		c.chunk.Write(OpStoreUpvalue, uint16(idx), line, col)
		return
	}
	nameIdx := c.chunk.AddName(id.Value)
	c.chunk.Write(OpStoreGlobal, uint16(nameIdx), line, col)
}

var binaryOpCodes = map[string]OpCode{
	"+": OpAdd, "-": OpSubtract, "*": OpMultiply, "/": OpDivide, "%": OpModulo, "**": OpPower,
	"==": OpEqual, "!=": OpNotEqual, "===": OpStrictEqual, "!==": OpStrictNotEqual,
	"<": OpLess, "<=": OpLessEqual, ">": OpGreater, ">=": OpGreaterEqual,
	"&&": OpLogicalAnd, "||": OpLogicalOr,
	"&": OpBitwiseAnd, "|": OpBitwiseOr, "^": OpBitwiseXor,
	"<<": OpLeftShift, ">>": OpRightShift, ">>>": OpUnsignedRightShift,
}

// compileBinaryExpression compiles left then right then the operator's
// opcode; short-circuit evaluation of && and || is decided by the VM, not
// by emitting jumps here, per §4.3.
func (c *Compiler) compileBinaryExpression(e *ast.BinaryExpression) {
	op, ok := binaryOpCodes[e.Operator]
	if !ok {
		c.unsupported(e, "unsupported binary operator %q", e.Operator)
		return
	}
	c.compileExpression(e.Left)
	c.compileExpression(e.Right)
	line, col := c.lineCol(e)
	c.chunk.WriteSimple(op, line, col)
}

func (c *Compiler) compileUnaryExpression(e *ast.UnaryExpression) {
	line, col := c.lineCol(e)
	switch e.Operator {
	case "+":
		c.compileExpression(e.Operand)
		c.chunk.WriteSimple(OpUnaryPlus, line, col)
	case "-":
		c.compileExpression(e.Operand)
		c.chunk.WriteSimple(OpUnaryMinus, line, col)
	case "!":
		c.compileExpression(e.Operand)
		c.chunk.WriteSimple(OpLogicalNot, line, col)
	case "~":
		c.compileExpression(e.Operand)
		c.chunk.WriteSimple(OpBitwiseNot, line, col)
	case "typeof":
		c.compileExpression(e.Operand)
		c.chunk.WriteSimple(OpTypeOf, line, col)
	case "void":
		c.compileExpression(e.Operand)
		c.chunk.WriteSimple(OpPop, line, col)
		c.emitConstant(Undefined(), e)
	default:
		c.unsupported(e, "unsupported unary operator %q", e.Operator)
	}
}

// compileUpdateExpression lowers ++/-- to a load, a constant 1, the
// arithmetic op, and a store, yielding the pre- or post-update value per
// whether Prefix is set.
func (c *Compiler) compileUpdateExpression(e *ast.UpdateExpression) {
	id, ok := e.Operand.(*ast.Identifier)
	if !ok {
		c.invalidSyntax(e, "invalid update target")
		return
	}
	line, col := c.lineCol(e)
	op := OpAdd
	if e.Operator == "--" {
		op = OpSubtract
	}

	c.compileIdentifierLoad(id)
	if !e.Prefix {
		c.chunk.WriteSimple(OpDuplicate, line, col)
	}
	c.emitConstant(Number(1), e)
	c.chunk.WriteSimple(op, line, col)
	if e.Prefix {
		c.chunk.WriteSimple(OpDuplicate, line, col)
	}
	// StoreLocal/StoreUpvalue/StoreGlobal all pop their operand: for
	// prefix the duplicate above supplies the left-on-stack result (the
	// updated value); for postfix the earlier duplicate already set the
	// pre-update value aside, and that is exactly what remains once the
	// store consumes the updated value above it.
	c.compileIdentifierStore(id, line, col)
}

var compoundBaseOp = map[string]OpCode{
	"+=": OpAdd, "-=": OpSubtract, "*=": OpMultiply, "/=": OpDivide, "%=": OpModulo, "**=": OpPower,
	"&=": OpBitwiseAnd, "|=": OpBitwiseOr, "^=": OpBitwiseXor,
	"<<=": OpLeftShift, ">>=": OpRightShift, ">>>=": OpUnsignedRightShift,
}

// compileAssignmentExpression lowers plain (=) and compound assignment,
// per §4.3: identifier targets resolve through the same local/upvalue/
// global chain as a load; member targets compile object+key once and reuse
// them for both the compound load and the final store.
func (c *Compiler) compileAssignmentExpression(e *ast.AssignmentExpression) {
	line, col := c.lineCol(e)

	if id, ok := e.Target.(*ast.Identifier); ok {
		if e.Operator == "=" {
			c.compileExpression(e.Value)
		} else {
			op, ok := compoundBaseOp[e.Operator]
			if !ok {
				c.unsupported(e, "unsupported assignment operator %q", e.Operator)
				return
			}
			c.compileIdentifierLoad(id)
			c.compileExpression(e.Value)
			c.chunk.WriteSimple(op, line, col)
		}
		// The store below pops its operand, so an assignment expression's
		// own value (every expression leaves exactly one) is this surviving
		// duplicate, not whatever the store itself left behind.
		c.chunk.WriteSimple(OpDuplicate, line, col)
		c.compileIdentifierStore(id, line, col)
		return
	}

	member, ok := e.Target.(*ast.MemberExpression)
	if !ok {
		c.invalidSyntax(e, "invalid assignment target")
		return
	}

	// SetProperty/SetElement consume exactly their three operands and
	// push nothing back, and the only stack primitives available
	// (Duplicate/Swap) only ever reach the top two slots - not deep enough
	// to shepherd a value past both the object and the key. Local slots
	// have no such depth limit, so the object, key, and computed value are
	// parked there instead: each can be reloaded as many times as needed
	// (once for a compound read, again for the final Set, once more for
	// the assignment expression's own result) without any stack juggling.
	c.compileExpression(member.Object)
	objSlot := c.tempLocal()
	c.chunk.Write(OpStoreLocal, uint16(objSlot), line, col)

	c.compileMemberKey(member)
	keySlot := c.tempLocal()
	c.chunk.Write(OpStoreLocal, uint16(keySlot), line, col)

	if e.Operator != "=" {
		op, ok := compoundBaseOp[e.Operator]
		if !ok {
			c.unsupported(e, "unsupported assignment operator %q", e.Operator)
			return
		}
		c.chunk.Write(OpLoadLocal, uint16(objSlot), line, col)
		c.chunk.Write(OpLoadLocal, uint16(keySlot), line, col)
		if member.Computed {
			c.chunk.WriteSimple(OpGetElement, line, col)
		} else {
			c.chunk.WriteSimple(OpGetProperty, line, col)
		}
		c.compileExpression(e.Value)
		c.chunk.WriteSimple(op, line, col)
	} else {
		c.compileExpression(e.Value)
	}
	valueSlot := c.tempLocal()
	c.chunk.Write(OpStoreLocal, uint16(valueSlot), line, col)

	c.chunk.Write(OpLoadLocal, uint16(objSlot), line, col)
	c.chunk.Write(OpLoadLocal, uint16(keySlot), line, col)
	c.chunk.Write(OpLoadLocal, uint16(valueSlot), line, col)
	if member.Computed {
		c.chunk.WriteSimple(OpSetElement, line, col)
	} else {
		c.chunk.WriteSimple(OpSetProperty, line, col)
	}

	c.chunk.Write(OpLoadLocal, uint16(valueSlot), line, col)
}

// compileMemberKey pushes the member's key, materializing a dotted
// identifier as a string constant so GetProperty/SetProperty always
// consume a string key.
func (c *Compiler) compileMemberKey(member *ast.MemberExpression) {
	if member.Computed {
		c.compileExpression(member.Property)
		return
	}
	id, ok := member.Property.(*ast.Identifier)
	if !ok {
		c.internalError(member, "dotted member property is not an identifier")
		return
	}
	c.emitConstant(String(id.Value), member)
}

func (c *Compiler) compileConditionalExpression(e *ast.ConditionalExpression) {
	line, col := c.lineCol(e)
	c.compileExpression(e.Test)
	falseJump := c.chunk.Write(OpJumpIfFalse, 0, line, col)
	c.compileExpression(e.Consequent)
	endJump := c.chunk.Write(OpJump, 0, line, col)
	if err := c.chunk.PatchJump(falseJump); err != nil {
		c.internalError(e, "%v", err)
	}
	c.compileExpression(e.Alternate)
	if err := c.chunk.PatchJump(endJump); err != nil {
		c.internalError(e, "%v", err)
	}
}

func (c *Compiler) compileCallExpression(e *ast.CallExpression) {
	line, col := c.lineCol(e)
	c.compileExpression(e.Callee)
	for _, arg := range e.Arguments {
		c.compileExpression(arg)
	}
	if len(e.Arguments) > 0xFFFF {
		c.invalidSyntax(e, "too many call arguments")
		return
	}
	c.chunk.Write(OpCall, uint16(len(e.Arguments)), line, col)
}

func (c *Compiler) compileMemberExpression(e *ast.MemberExpression) {
	line, col := c.lineCol(e)
	c.compileExpression(e.Object)
	c.compileMemberKey(e)
	if e.Computed {
		c.chunk.WriteSimple(OpGetElement, line, col)
	} else {
		c.chunk.WriteSimple(OpGetProperty, line, col)
	}
}

// compileArrayLiteral lowers holes as LoadConstant undefined per §4.3.
func (c *Compiler) compileArrayLiteral(e *ast.ArrayLiteral) {
	line, col := c.lineCol(e)
	for _, el := range e.Elements {
		if el == nil {
			c.emitConstant(Undefined(), e)
			continue
		}
		c.compileExpression(el)
	}
	if len(e.Elements) > 0xFFFF {
		c.invalidSyntax(e, "too many array elements")
		return
	}
	c.chunk.Write(OpNewArray, uint16(len(e.Elements)), line, col)
}

func (c *Compiler) compileObjectLiteral(e *ast.ObjectLiteral) {
	line, col := c.lineCol(e)
	c.chunk.WriteSimple(OpNewObject, line, col)
	for _, prop := range e.Properties {
		c.chunk.WriteSimple(OpDuplicate, line, col)
		c.compileObjectKey(prop)
		c.compileExpression(prop.Value)
		c.chunk.WriteSimple(OpSetProperty, line, col)
	}
}

func (c *Compiler) compileObjectKey(prop *ast.Property) {
	if prop.Computed {
		c.compileExpression(prop.Key)
		return
	}
	switch key := prop.Key.(type) {
	case *ast.Identifier:
		c.emitConstant(String(key.Value), prop)
	case *ast.StringLiteral:
		c.emitConstant(String(key.Value), prop)
	case *ast.NumberLiteral:
		c.emitConstant(String(formatNumber(key.Value)), prop)
	default:
		c.internalError(prop, "unsupported object key node %T", prop.Key)
	}
}

func (c *Compiler) compileFunctionExpression(e *ast.FunctionExpression) {
	fn := c.compileFunction(functionHeader{
		Name:      nameOf(e.Name),
		Params:    e.Params,
		Body:      e.Body,
		Async:     e.Async,
		Generator: e.Generator,
	}, e)
	line, col := c.lineCol(e)
	idx := c.chunk.AddConstant(Function(fn))
	c.chunk.Write(OpLoadConstant, uint16(idx), line, col)
	c.chunk.WriteSimple(OpClosure, line, col)
}

func nameOf(id *ast.Identifier) string {
	if id == nil {
		return ""
	}
	return id.Value
}
