package bytecode

import (
	"fmt"

	"github.com/lumenjs/lumen/internal/ast"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/lexer"
)

// Compiler lowers a Program into a Chunk, per §4.3: a stack of lexical
// scopes mapping names to local slots, a stack of loop records for
// break/continue patching, and a link to the enclosing compiler so nested
// function bodies can resolve captured variables as upvalues.
type Compiler struct {
	chunk      *Chunk
	enclosing  *Compiler
	source     string
	locals     []local
	scopeDepth int
	nextSlot   int
	upvalues   []upvalueRef
	loopStack  []*loopContext
	errors     []*errors.CompileError
	tempCount  int
}

type local struct {
	name  string
	depth int
	slot  int
}

// upvalueRef records how this compiler's function captures one variable
// from an enclosing frame: either directly from a local slot, or forwarded
// from the enclosing function's own upvalue list.
type upvalueRef struct {
	index   int
	isLocal bool
	name    string
}

type loopContext struct {
	breakJumps    []int
	continueJumps []int
}

// Compile lowers program into a single top-level Chunk for script source.
// source is retained only for error-context rendering.
func Compile(program *ast.Program, source string) (*Chunk, []error) {
	c := newCompiler("main", nil, source)
	c.beginScope()
	for i, stmt := range program.Statements {
		if i == len(program.Statements)-1 {
			if expr, ok := stmt.(*ast.ExpressionStatement); ok && expr.Expression != nil {
				// The top-level program's result is whatever the script's
				// final expression statement evaluates to (per Halt's
				// "value on the stack when reached, or undefined" rule),
				// so unlike every other expression statement this one does
				// not discard its value.
				c.compileExpression(expr.Expression)
				break
			}
		}
		c.compileStatement(stmt)
	}
	c.endScope()
	c.chunk.WriteSimple(OpHalt, 0, 0)
	chunk := c.finish()

	if len(c.errors) == 0 {
		return chunk, nil
	}
	errs := make([]error, len(c.errors))
	for i, e := range c.errors {
		errs[i] = e
	}
	return chunk, errs
}

func newCompiler(name string, enclosing *Compiler, source string) *Compiler {
	return &Compiler{chunk: NewChunk(name), enclosing: enclosing, source: source}
}

// finish runs the peephole optimizer and records the frame's final local
// count; every exit path from Compile/compileFunction funnels through it.
func (c *Compiler) finish() *Chunk {
	Optimize(c.chunk)
	c.chunk.LocalCount = c.nextSlot
	return c.chunk
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareLocal reserves the next slot in the current frame for name,
// shadowing any outer binding of the same name in an enclosing scope.
func (c *Compiler) declareLocal(name string) int {
	slot := c.nextSlot
	c.nextSlot++
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth, slot: slot})
	return slot
}

// tempLocal reserves a fresh local slot under a name no source identifier
// can ever spell, for compiler-internal bookkeeping within one expression
// (member-target assignment needs to hold the object, key, and computed
// value across several instructions without deep stack manipulation).
func (c *Compiler) tempLocal() int {
	c.tempCount++
	return c.declareLocal(fmt.Sprintf("\x00t%d", c.tempCount))
}

func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].slot, true
		}
	}
	return 0, false
}

// resolveUpvalue walks the enclosing-compiler chain looking for name,
// adding an upvalue capture at each level it must cross to reach it.
func (c *Compiler) resolveUpvalue(name string) (int, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if slot, ok := c.enclosing.resolveLocal(name); ok {
		return c.addUpvalue(slot, true, name), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name); ok {
		return c.addUpvalue(idx, false, name), true
	}
	return 0, false
}

func (c *Compiler) addUpvalue(index int, isLocal bool, name string) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal, name: name})
	return len(c.upvalues) - 1
}

func (c *Compiler) pushLoop() *loopContext {
	lc := &loopContext{}
	c.loopStack = append(c.loopStack, lc)
	return lc
}

func (c *Compiler) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Compiler) currentLoop() *loopContext {
	if len(c.loopStack) == 0 {
		return nil
	}
	return c.loopStack[len(c.loopStack)-1]
}

// patchLoopJumps resolves every pending break jump to exitTarget and every
// pending continue jump to continueTarget, per §4.3's patching rule.
func (c *Compiler) patchLoopJumps(lc *loopContext, continueTarget, exitTarget int) {
	for _, idx := range lc.continueJumps {
		if err := c.chunk.PatchJumpTo(idx, continueTarget); err != nil {
			c.internalError(nil, "%v", err)
		}
	}
	for _, idx := range lc.breakJumps {
		if err := c.chunk.PatchJumpTo(idx, exitTarget); err != nil {
			c.internalError(nil, "%v", err)
		}
	}
}

func (c *Compiler) posOf(node ast.Node) lexer.Position {
	if node == nil {
		return lexer.Position{}
	}
	return node.Pos()
}

func (c *Compiler) unsupported(node ast.Node, format string, args ...any) {
	c.errors = append(c.errors, errors.NewCompileError(errors.UnsupportedFeature, fmt.Sprintf(format, args...), c.source, c.posOf(node)))
}

func (c *Compiler) invalidSyntax(node ast.Node, format string, args ...any) {
	c.errors = append(c.errors, errors.NewCompileError(errors.InvalidSyntax, fmt.Sprintf(format, args...), c.source, c.posOf(node)))
}

func (c *Compiler) internalError(node ast.Node, format string, args ...any) {
	c.errors = append(c.errors, errors.NewCompileError(errors.InternalError, fmt.Sprintf(format, args...), c.source, c.posOf(node)))
}
