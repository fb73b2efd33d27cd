// Package errors defines the tagged error taxonomy shared by the lexer,
// parser, compiler, and virtual machine, and formats those errors with
// source context, line/column information, and a caret pointing to the
// offending position.
package errors

import (
	"fmt"
	"strings"

	"github.com/lumenjs/lumen/internal/lexer"
)

// sourceError is the formatting machinery shared by every error kind
// below: a message, the source text it was raised against, and the
// position to point a caret at.
type sourceError struct {
	Message string
	Source  string
	Pos     lexer.Position
}

// getSourceLine extracts a specific line from the source. Lines are 1-indexed.
func (e sourceError) getSourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// getSourceContext returns lines from (lineNum-before) to (lineNum+after).
func (e sourceError) getSourceContext(lineNum, before, after int) []string {
	if e.Source == "" {
		return nil
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return nil
	}
	start := lineNum - before
	if start < 1 {
		start = 1
	}
	end := lineNum + after
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start-1 : end]
}

// format renders "<kind> at line:col: <message>" plus the offending
// source line and a caret pointing at the column.
func (e sourceError) format(kind string, color bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s at %d:%d: %s", kind, e.Pos.Line, e.Pos.Column, e.Message))

	line := e.getSourceLine(e.Pos.Line)
	if line == "" {
		return sb.String()
	}
	sb.WriteString("\n")
	lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
	sb.WriteString(lineNumStr)
	sb.WriteString(line)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
	if color {
		sb.WriteString("\033[1;31m")
	}
	sb.WriteString("^")
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

// formatWithContext renders the same header but with contextLines of
// surrounding source on either side of the error line, dimmed when color
// is enabled.
func (e sourceError) formatWithContext(kind string, contextLines int, color bool) string {
	lines := e.getSourceContext(e.Pos.Line, contextLines, contextLines)
	if len(lines) == 0 {
		return e.format(kind, color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s at %d:%d: %s\n\n", kind, e.Pos.Line, e.Pos.Column, e.Message))

	startLine := e.Pos.Line - contextLines
	if startLine < 1 {
		startLine = 1
	}
	for i, line := range lines {
		currentLine := startLine + i
		lineNumStr := fmt.Sprintf("%4d | ", currentLine)
		if currentLine == e.Pos.Line {
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
			continue
		}
		if color {
			sb.WriteString("\033[2m")
		}
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ---------------------------------------------------------------------
// ParseError — raised by the lexer and the parser.
// ---------------------------------------------------------------------

// ParseErrorKind distinguishes the lexer's lexical errors from the
// parser's unexpected-token and syntax errors. Lexer errors propagate
// through the parser unchanged.
type ParseErrorKind int

const (
	LexicalError ParseErrorKind = iota
	UnexpectedToken
	SyntaxError
)

func (k ParseErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case UnexpectedToken:
		return "unexpected token"
	case SyntaxError:
		return "syntax error"
	default:
		return "parse error"
	}
}

// ParseError is returned by the lexer (always LexicalError) and the parser.
type ParseError struct {
	sourceError
	Kind ParseErrorKind
}

// NewParseError creates a parse error of the given kind at pos.
func NewParseError(kind ParseErrorKind, message, source string, pos lexer.Position) *ParseError {
	return &ParseError{sourceError: sourceError{Message: message, Source: source, Pos: pos}, Kind: kind}
}

func (e *ParseError) Error() string { return e.format(e.Kind.String(), false) }

// Format renders the error with source context, optionally colorized.
func (e *ParseError) Format(color bool) string { return e.format(e.Kind.String(), color) }

// FormatWithContext renders the error with contextLines of surrounding source.
func (e *ParseError) FormatWithContext(contextLines int, color bool) string {
	return e.formatWithContext(e.Kind.String(), contextLines, color)
}

// ---------------------------------------------------------------------
// CompileError — raised by the compiler.
// ---------------------------------------------------------------------

// CompileErrorKind categorizes a compiler failure.
type CompileErrorKind int

const (
	UnsupportedFeature CompileErrorKind = iota
	InvalidSyntax
	InternalError
)

func (k CompileErrorKind) String() string {
	switch k {
	case UnsupportedFeature:
		return "unsupported feature"
	case InvalidSyntax:
		return "invalid syntax"
	case InternalError:
		return "internal compiler error"
	default:
		return "compile error"
	}
}

// CompileError is returned by the compiler.
type CompileError struct {
	sourceError
	Kind CompileErrorKind
}

// NewCompileError creates a compile error of the given kind at pos.
func NewCompileError(kind CompileErrorKind, message, source string, pos lexer.Position) *CompileError {
	return &CompileError{sourceError: sourceError{Message: message, Source: source, Pos: pos}, Kind: kind}
}

// WrapAsInvalidSyntax lifts an upstream parser/lexer failure into a
// CompileError of kind InvalidSyntax, preserving its message and position.
func WrapAsInvalidSyntax(err error) *CompileError {
	if pe, ok := err.(*ParseError); ok {
		return NewCompileError(InvalidSyntax, pe.Message, pe.Source, pe.Pos)
	}
	return NewCompileError(InvalidSyntax, err.Error(), "", lexer.Position{})
}

func (e *CompileError) Error() string { return e.format(e.Kind.String(), false) }

// Format renders the error with source context, optionally colorized.
func (e *CompileError) Format(color bool) string { return e.format(e.Kind.String(), color) }

// ---------------------------------------------------------------------
// RuntimeError — raised by the virtual machine.
// ---------------------------------------------------------------------

// RuntimeErrorKind categorizes a virtual-machine failure.
type RuntimeErrorKind int

const (
	TypeError RuntimeErrorKind = iota
	ReferenceError
	RangeError
	StackOverflowError
	OutOfMemoryError
	InvalidBytecode
	InvalidOperation
	AsyncError
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case ReferenceError:
		return "ReferenceError"
	case RangeError:
		return "RangeError"
	case StackOverflowError:
		return "RangeError: stack overflow"
	case OutOfMemoryError:
		return "OutOfMemoryError"
	case InvalidBytecode:
		return "InvalidBytecode"
	case InvalidOperation:
		return "InvalidOperation"
	case AsyncError:
		return "AsyncError"
	default:
		return "RuntimeError"
	}
}

// RuntimeError is returned by the virtual machine. An unhandled script
// throw reaches the engine boundary as a RuntimeError whose Message is
// the thrown value's string form; ThrownValue carries the raw value for
// a caller that wants more than the string form.
type RuntimeError struct {
	sourceError
	Kind        RuntimeErrorKind
	Stack       StackTrace
	ThrownValue any
}

// NewRuntimeError creates a runtime error of the given kind.
func NewRuntimeError(kind RuntimeErrorKind, message string) *RuntimeError {
	return &RuntimeError{sourceError: sourceError{Message: message}, Kind: kind}
}

// AtPosition attaches source text and position for caret rendering.
func (e *RuntimeError) AtPosition(source string, pos lexer.Position) *RuntimeError {
	e.Source, e.Pos = source, pos
	return e
}

// WithStack attaches a call-stack snapshot captured at the point of failure.
func (e *RuntimeError) WithStack(st StackTrace) *RuntimeError {
	e.Stack = st
	return e
}

// WithThrownValue attaches the raw value thrown by a script `throw`.
func (e *RuntimeError) WithThrownValue(v any) *RuntimeError {
	e.ThrownValue = v
	return e
}

func (e *RuntimeError) Error() string {
	msg := e.format(e.Kind.String(), false)
	if len(e.Stack) == 0 {
		return msg
	}
	return msg + "\n" + e.Stack.String()
}

// Format renders the error with source context, optionally colorized.
func (e *RuntimeError) Format(color bool) string { return e.format(e.Kind.String(), color) }

// ---------------------------------------------------------------------
// ModuleError — raised while loading a module.
// ---------------------------------------------------------------------

// ModuleErrorKind categorizes a module-loading failure.
type ModuleErrorKind int

const (
	ModuleNotFound ModuleErrorKind = iota
	ModuleReadError
	ModuleCompileFailed
	ModuleExecuteFailed
)

// ModuleError wraps a failure to find, read, compile, or execute the
// module at Path.
type ModuleError struct {
	Path  string
	Kind  ModuleErrorKind
	Cause error
}

// NewModuleError creates a module error of the given kind for path.
func NewModuleError(kind ModuleErrorKind, path string, cause error) *ModuleError {
	return &ModuleError{Path: path, Kind: kind, Cause: cause}
}

func (e *ModuleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("module error loading %q: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("module error loading %q", e.Path)
}

// Unwrap exposes the underlying cause for errors.As/errors.Is.
func (e *ModuleError) Unwrap() error { return e.Cause }

// ---------------------------------------------------------------------
// EngineError — the top-level boundary error aggregating the above.
// ---------------------------------------------------------------------

// EngineError is what callers of the public engine surface see: exactly
// one of Parse, Compile, Runtime, or Module is non-nil.
type EngineError struct {
	Parse   *ParseError
	Compile *CompileError
	Runtime *RuntimeError
	Module  *ModuleError
}

func (e *EngineError) Error() string {
	switch {
	case e.Parse != nil:
		return e.Parse.Error()
	case e.Compile != nil:
		return e.Compile.Error()
	case e.Runtime != nil:
		return e.Runtime.Error()
	case e.Module != nil:
		return e.Module.Error()
	default:
		return "unknown engine error"
	}
}

// Unwrap exposes whichever concrete error is set.
func (e *EngineError) Unwrap() error {
	switch {
	case e.Parse != nil:
		return e.Parse
	case e.Compile != nil:
		return e.Compile
	case e.Runtime != nil:
		return e.Runtime
	case e.Module != nil:
		return e.Module
	default:
		return nil
	}
}

// WrapEngineError classifies any error surfaced by the pipeline into the
// matching EngineError variant.
func WrapEngineError(err error) *EngineError {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case *ParseError:
		return &EngineError{Parse: e}
	case *CompileError:
		return &EngineError{Compile: e}
	case *RuntimeError:
		return &EngineError{Runtime: e}
	case *ModuleError:
		return &EngineError{Module: e}
	default:
		return &EngineError{Runtime: NewRuntimeError(InvalidOperation, err.Error())}
	}
}

// FormatErrors formats multiple parse errors together, numbering each
// for a multi-error compile report.
func FormatErrors(errs []*ParseError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("parsing failed with %d error(s):\n\n", len(errs)))
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("[error %d of %d]\n", i+1, len(errs)))
		sb.WriteString(err.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
