package errors

import (
	"fmt"
	"strings"

	"github.com/lumenjs/lumen/internal/lexer"
)

// StackFrame represents a single frame in a call stack: the function being
// executed and its location in the source code at the point of the call.
type StackFrame struct {
	Position     *lexer.Position
	FunctionName string
}

// String returns a formatted representation of the stack frame, e.g.
// "add [line: 3, column: 12]". If position is unavailable, only the
// function name is returned.
func (sf StackFrame) String() string {
	if sf.Position == nil {
		return sf.FunctionName
	}
	return fmt.Sprintf("%s [line: %d, column: %d]", sf.FunctionName, sf.Position.Line, sf.Position.Column)
}

// StackTrace is a complete call stack, ordered oldest (bottom) to newest (top).
type StackTrace []StackFrame

// String renders the trace with the most recent call first.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Top returns the most recent frame, or nil if the trace is empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Depth returns the number of frames in the trace.
func (st StackTrace) Depth() int {
	return len(st)
}

// NewStackFrame creates a stack frame for the given function and position.
func NewStackFrame(functionName string, position *lexer.Position) StackFrame {
	return StackFrame{FunctionName: functionName, Position: position}
}

// NewStackTrace creates an empty stack trace.
func NewStackTrace() StackTrace {
	return make(StackTrace, 0)
}
