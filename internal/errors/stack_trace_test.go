package errors

import (
	"strings"
	"testing"

	"github.com/lumenjs/lumen/internal/lexer"
)

func TestStackFrame_String(t *testing.T) {
	tests := []struct {
		name     string
		frame    StackFrame
		expected string
	}{
		{
			name: "Frame with position",
			frame: StackFrame{
				FunctionName: "myFunction",
				Position:     &lexer.Position{Line: 10, Column: 5},
			},
			expected: "myFunction [line: 10, column: 5]",
		},
		{
			name: "Frame without position",
			frame: StackFrame{
				FunctionName: "myFunction",
				Position:     nil,
			},
			expected: "myFunction",
		},
		{
			name: "Frame with anonymous function name",
			frame: StackFrame{
				FunctionName: "<anonymous>",
				Position:     &lexer.Position{Line: 7, Column: 1},
			},
			expected: "<anonymous> [line: 7, column: 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.frame.String()
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestStackTrace_String(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		trace    StackTrace
	}{
		{
			name:     "Empty stack trace",
			trace:    StackTrace{},
			expected: "",
		},
		{
			name: "Single frame",
			trace: StackTrace{
				{FunctionName: "main", Position: &lexer.Position{Line: 1, Column: 1}},
			},
			expected: "main [line: 1, column: 1]",
		},
		{
			name: "Multiple frames",
			trace: StackTrace{
				{FunctionName: "main", Position: &lexer.Position{Line: 20, Column: 1}},
				{FunctionName: "foo", Position: &lexer.Position{Line: 15, Column: 5}},
				{FunctionName: "bar", Position: &lexer.Position{Line: 10, Column: 3}},
			},
			expected: "bar [line: 10, column: 3]\nfoo [line: 15, column: 5]\nmain [line: 20, column: 1]",
		},
		{
			name: "Frames with and without position",
			trace: StackTrace{
				{FunctionName: "main", Position: &lexer.Position{Line: 20, Column: 1}},
				{FunctionName: "foo", Position: nil},
			},
			expected: "foo\nmain [line: 20, column: 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.trace.String()
			if result != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, result)
			}
		})
	}
}

func TestStackTrace_Top(t *testing.T) {
	tests := []struct {
		expected *string
		name     string
		trace    StackTrace
	}{
		{
			name:     "Empty stack",
			trace:    StackTrace{},
			expected: nil,
		},
		{
			name: "Single frame",
			trace: StackTrace{
				{FunctionName: "main", Position: &lexer.Position{Line: 1, Column: 1}},
			},
			expected: stringPtr("main"),
		},
		{
			name: "Multiple frames",
			trace: StackTrace{
				{FunctionName: "main", Position: &lexer.Position{Line: 20, Column: 1}},
				{FunctionName: "foo", Position: &lexer.Position{Line: 15, Column: 5}},
				{FunctionName: "bar", Position: &lexer.Position{Line: 10, Column: 3}},
			},
			expected: stringPtr("bar"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := tt.trace.Top()
			if tt.expected == nil {
				if top != nil {
					t.Errorf("Expected nil, got %v", top)
				}
			} else {
				if top == nil {
					t.Errorf("Expected %q, got nil", *tt.expected)
				} else if top.FunctionName != *tt.expected {
					t.Errorf("Expected %q, got %q", *tt.expected, top.FunctionName)
				}
			}
		})
	}
}

func TestStackTrace_Depth(t *testing.T) {
	tests := []struct {
		name     string
		trace    StackTrace
		expected int
	}{
		{
			name:     "Empty stack",
			trace:    StackTrace{},
			expected: 0,
		},
		{
			name: "Single frame",
			trace: StackTrace{
				{FunctionName: "main"},
			},
			expected: 1,
		},
		{
			name: "Multiple frames",
			trace: StackTrace{
				{FunctionName: "main"},
				{FunctionName: "foo"},
				{FunctionName: "bar"},
			},
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			depth := tt.trace.Depth()
			if depth != tt.expected {
				t.Errorf("Expected depth %d, got %d", tt.expected, depth)
			}
		})
	}
}

func TestNewStackFrame(t *testing.T) {
	pos := &lexer.Position{Line: 42, Column: 13}
	frame := NewStackFrame("testFunc", pos)

	if frame.FunctionName != "testFunc" {
		t.Errorf("Expected FunctionName 'testFunc', got %q", frame.FunctionName)
	}
	if frame.Position != pos {
		t.Errorf("Expected position %v, got %v", pos, frame.Position)
	}
}

func TestNewStackTrace(t *testing.T) {
	trace := NewStackTrace()

	if trace == nil {
		t.Error("NewStackTrace returned nil")
	}
	if len(trace) != 0 {
		t.Errorf("Expected empty stack trace, got length %d", len(trace))
	}
}

func TestStackTrace_RealWorldScenario(t *testing.T) {
	// main -> processData -> validateInput
	trace := StackTrace{
		{FunctionName: "main", Position: &lexer.Position{Line: 50, Column: 1}},
		{FunctionName: "processData", Position: &lexer.Position{Line: 30, Column: 5}},
		{FunctionName: "validateInput", Position: &lexer.Position{Line: 10, Column: 3}},
	}

	expected := "validateInput [line: 10, column: 3]\nprocessData [line: 30, column: 5]\nmain [line: 50, column: 1]"
	result := trace.String()
	if result != expected {
		t.Errorf("Stack trace string doesn't match.\nExpected:\n%s\nGot:\n%s", expected, result)
	}

	if trace.Depth() != 3 {
		t.Errorf("Expected depth 3, got %d", trace.Depth())
	}

	top := trace.Top()
	if top == nil || top.FunctionName != "validateInput" {
		t.Errorf("Expected top to be validateInput, got %v", top)
	}
}

func TestStackTrace_StringOrdersMostRecentFirst(t *testing.T) {
	trace := StackTrace{
		{FunctionName: "callsABomb", Position: &lexer.Position{Line: 8, Column: 4}},
		{FunctionName: "thisOneBombs", Position: &lexer.Position{Line: 3, Column: 20}},
	}

	result := trace.String()
	lines := strings.Split(result, "\n")

	if lines[0] != "thisOneBombs [line: 3, column: 20]" {
		t.Errorf("First line unexpected: %q", lines[0])
	}
	if lines[1] != "callsABomb [line: 8, column: 4]" {
		t.Errorf("Second line unexpected: %q", lines[1])
	}
}

// Helper function for tests
func stringPtr(s string) *string {
	return &s
}
