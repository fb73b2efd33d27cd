// Package parser turns a token stream into an *ast.Program using
// recursive descent for statements and Pratt-style operator precedence
// for expressions.
//
// Parse is the package's single entry point; everything else is either
// a statement production (statements.go) or an expression production
// (expressions.go) reachable from it.
package parser

import (
	"github.com/lumenjs/lumen/internal/ast"
	"github.com/lumenjs/lumen/internal/lexer"
)

// Parse tokenizes and parses source, returning the resulting Program
// along with any accumulated parse errors. A non-empty error slice does
// not necessarily mean Program is nil: the top-level loop recovers from
// a bad statement by skipping a token and continuing, so later
// statements may still have parsed successfully.
func Parse(source string) (*ast.Program, []error) {
	l := lexer.New(source)
	p := New(l, source)
	program := p.ParseProgram()

	parseErrs := p.Errors()
	if len(parseErrs) == 0 {
		return program, nil
	}
	errs := make([]error, len(parseErrs))
	for i, e := range parseErrs {
		errs[i] = e
	}
	return program, errs
}
