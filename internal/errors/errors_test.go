package errors

import (
	"strings"
	"testing"

	"github.com/lumenjs/lumen/internal/lexer"
)

func TestParseError_Format(t *testing.T) {
	src := "let x = ;\n"
	err := NewParseError(UnexpectedToken, "expected expression", src, lexer.Position{Line: 1, Column: 9})

	got := err.Format(false)
	if !strings.Contains(got, "unexpected token at 1:9: expected expression") {
		t.Errorf("missing header, got:\n%s", got)
	}
	if !strings.Contains(got, "let x = ;") {
		t.Errorf("missing source line, got:\n%s", got)
	}
	if !strings.Contains(got, "^") {
		t.Errorf("missing caret, got:\n%s", got)
	}
}

func TestParseError_Error_NoSource(t *testing.T) {
	err := NewParseError(LexicalError, "unterminated string", "", lexer.Position{Line: 3, Column: 1})
	got := err.Error()
	if got != "lexical error at 3:1: unterminated string" {
		t.Errorf("unexpected error string: %q", got)
	}
}

func TestCompileError_WrapAsInvalidSyntax(t *testing.T) {
	pe := NewParseError(SyntaxError, "unexpected }", "", lexer.Position{Line: 2, Column: 5})
	ce := WrapAsInvalidSyntax(pe)

	if ce.Kind != InvalidSyntax {
		t.Errorf("expected InvalidSyntax kind, got %v", ce.Kind)
	}
	if ce.Message != "unexpected }" {
		t.Errorf("expected message carried over, got %q", ce.Message)
	}
	if ce.Pos != pe.Pos {
		t.Errorf("expected position carried over, got %v", ce.Pos)
	}
}

func TestCompileError_UnsupportedFeature(t *testing.T) {
	err := NewCompileError(UnsupportedFeature, "await is not supported", "await x;", lexer.Position{Line: 1, Column: 1})
	got := err.Error()
	if !strings.HasPrefix(got, "unsupported feature at 1:1: await is not supported") {
		t.Errorf("unexpected error string: %q", got)
	}
}

func TestRuntimeError_WithStack(t *testing.T) {
	err := NewRuntimeError(ReferenceError, "x is not defined").
		WithStack(StackTrace{
			{FunctionName: "main", Position: &lexer.Position{Line: 4, Column: 1}},
		})

	got := err.Error()
	if !strings.Contains(got, "ReferenceError") {
		t.Errorf("expected kind in message, got %q", got)
	}
	if !strings.Contains(got, "main [line: 4, column: 1]") {
		t.Errorf("expected stack frame in message, got %q", got)
	}
}

func TestRuntimeError_WithThrownValue(t *testing.T) {
	err := NewRuntimeError(TypeError, "custom error").WithThrownValue(42)
	if err.ThrownValue != 42 {
		t.Errorf("expected thrown value 42, got %v", err.ThrownValue)
	}
}

func TestModuleError_Unwrap(t *testing.T) {
	cause := NewParseError(SyntaxError, "bad token", "", lexer.Position{})
	err := NewModuleError(ModuleCompileFailed, "./mod.js", cause)

	if err.Unwrap() != error(cause) {
		t.Errorf("expected Unwrap to return cause")
	}
	if !strings.Contains(err.Error(), "./mod.js") {
		t.Errorf("expected path in message, got %q", err.Error())
	}
}

func TestWrapEngineError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want func(*EngineError) bool
	}{
		{
			name: "parse error",
			err:  NewParseError(SyntaxError, "bad", "", lexer.Position{}),
			want: func(e *EngineError) bool { return e.Parse != nil },
		},
		{
			name: "compile error",
			err:  NewCompileError(InternalError, "bad", "", lexer.Position{}),
			want: func(e *EngineError) bool { return e.Compile != nil },
		},
		{
			name: "runtime error",
			err:  NewRuntimeError(TypeError, "bad"),
			want: func(e *EngineError) bool { return e.Runtime != nil },
		},
		{
			name: "module error",
			err:  NewModuleError(ModuleNotFound, "./x.js", nil),
			want: func(e *EngineError) bool { return e.Module != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapEngineError(tt.err)
			if !tt.want(got) {
				t.Errorf("unexpected wrapping: %+v", got)
			}
			if got.Unwrap() != tt.err {
				t.Errorf("expected Unwrap to return original error")
			}
		})
	}
}

func TestFormatErrors(t *testing.T) {
	errs := []*ParseError{
		NewParseError(SyntaxError, "first", "", lexer.Position{Line: 1, Column: 1}),
		NewParseError(UnexpectedToken, "second", "", lexer.Position{Line: 2, Column: 1}),
	}

	got := FormatErrors(errs, false)
	if !strings.Contains(got, "2 error(s)") {
		t.Errorf("expected error count header, got %q", got)
	}
	if !strings.Contains(got, "first") || !strings.Contains(got, "second") {
		t.Errorf("expected both messages, got %q", got)
	}
}

func TestFormatErrors_Single(t *testing.T) {
	errs := []*ParseError{NewParseError(SyntaxError, "only one", "", lexer.Position{Line: 1, Column: 1})}
	got := FormatErrors(errs, false)
	if strings.Contains(got, "error(s)") {
		t.Errorf("single error should not print the aggregate header, got %q", got)
	}
}

func TestParseError_FormatWithContext(t *testing.T) {
	src := "line1\nline2\nlet x = ;\nline4\nline5\n"
	err := NewParseError(UnexpectedToken, "expected expression", src, lexer.Position{Line: 3, Column: 9})

	got := err.FormatWithContext(1, false)
	if !strings.Contains(got, "line2") || !strings.Contains(got, "line4") {
		t.Errorf("expected surrounding context lines, got:\n%s", got)
	}
	if !strings.Contains(got, "let x = ;") {
		t.Errorf("expected error line, got:\n%s", got)
	}
}
