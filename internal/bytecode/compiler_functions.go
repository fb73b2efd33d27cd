package bytecode

import "github.com/lumenjs/lumen/internal/ast"

// functionHeader carries the parts a FunctionDeclaration and a
// FunctionExpression share, so compileFunction has one body for both.
type functionHeader struct {
	Name      string
	Params    []*ast.Identifier
	Body      *ast.BlockStatement
	Async     bool
	Generator bool
}

// compileFunction compiles a nested function body into its own Chunk:
// parameters become slot declarations in a fresh scope, the body compiles
// into that scope, and a trailing "LoadConstant undefined; Return" is
// appended to guarantee every path returns, per §4.3. The child compiler's
// accumulated upvalue list becomes the constant's UpvalueDef table.
func (c *Compiler) compileFunction(hdr functionHeader, node ast.Node) *FunctionConstant {
	if hdr.Async {
		c.unsupported(node, "async functions are not supported")
	}
	if hdr.Generator {
		c.unsupported(node, "generator functions are not supported")
	}

	child := newCompiler(hdr.Name, c, c.source)
	child.beginScope()
	for _, param := range hdr.Params {
		child.declareLocal(param.Value)
	}
	for _, stmt := range hdr.Body.Statements {
		child.compileStatement(stmt)
	}
	child.endScope()

	line, col := child.lineCol(hdr.Body)
	child.emitConstant(Undefined(), hdr.Body)
	child.chunk.WriteSimple(OpReturn, line, col)

	c.errors = append(c.errors, child.errors...)
	chunk := child.finish()

	upvalues := make([]UpvalueDef, len(child.upvalues))
	for i, uv := range child.upvalues {
		upvalues[i] = UpvalueDef{IsLocal: uv.isLocal, Index: uv.index, Name: uv.name}
	}

	return &FunctionConstant{
		Chunk:     chunk,
		Name:      hdr.Name,
		Upvalues:  upvalues,
		Arity:     len(hdr.Params),
		Async:     hdr.Async,
		Generator: hdr.Generator,
	}
}
