package vm_test

import (
	"testing"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/gc"
	"github.com/lumenjs/lumen/internal/parser"
	"github.com/lumenjs/lumen/internal/vm"
)

func run(t *testing.T, source string) bytecode.Value {
	t.Helper()
	program, errs := parser.Parse(source)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	chunk, compileErrs := bytecode.Compile(program, source)
	if len(compileErrs) != 0 {
		t.Fatalf("compile errors: %v", compileErrs)
	}
	machine := vm.New(gc.New(), nil)
	result, err := machine.Execute(chunk)
	if err != nil {
		t.Fatalf("execution error: %v", err)
	}
	return result
}

func TestVM_ArithmeticPrecedence(t *testing.T) {
	result := run(t, "1 + 2 * 3;")
	if result.AsNumber() != 7 {
		t.Fatalf("expected 7, got %v", result)
	}
}

func TestVM_LogicalOrFallback(t *testing.T) {
	result := run(t, `let a = 0; let b = a || "fallback"; b;`)
	if result.Type != bytecode.ValueString || result.AsString() != "fallback" {
		t.Fatalf("expected \"fallback\", got %v", result)
	}
}

func TestVM_ForLoopSum(t *testing.T) {
	result := run(t, `
		let sum = 0;
		for (let i = 0; i < 5; i = i + 1) {
			sum = sum + i;
		}
		sum;
	`)
	if result.AsNumber() != 10 {
		t.Fatalf("expected 10, got %v", result)
	}
}

func TestVM_ObjectAndArrayMemberAccess(t *testing.T) {
	result := run(t, `
		let o = {x: 1, y: [2, 3]};
		o.y[1];
	`)
	if result.AsNumber() != 3 {
		t.Fatalf("expected 3, got %v", result)
	}
}

func TestVM_TryCatchFinally(t *testing.T) {
	result := run(t, `
		let r = "";
		try {
			throw "boom";
		} catch (e) {
			r = e + "!";
		} finally {
			r = r;
		}
		r;
	`)
	if result.Type != bytecode.ValueString || result.AsString() != "boom!" {
		t.Fatalf("expected \"boom!\", got %v", result)
	}
}

func TestVM_TryFinallyWithoutCatchRunsFinallyThenRethrows(t *testing.T) {
	program, errs := parser.Parse(`
		let r = "before";
		try {
			throw "boom";
		} finally {
			r = "after";
		}
		r;
	`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	chunk, compileErrs := bytecode.Compile(program, "try-finally-rethrow")
	if len(compileErrs) != 0 {
		t.Fatalf("compile errors: %v", compileErrs)
	}
	machine := vm.New(gc.New(), nil)
	if _, err := machine.Execute(chunk); err == nil {
		t.Fatal("expected the pending throw to survive the finally block and propagate")
	}
}

func TestVM_TryFinallyWithoutCatchOuterCatchSeesRethrow(t *testing.T) {
	result := run(t, `
		let r = "before";
		let caught = "";
		try {
			try {
				throw "boom";
			} finally {
				r = "after";
			}
		} catch (e) {
			caught = r + ":" + e;
		}
		caught;
	`)
	if result.Type != bytecode.ValueString || result.AsString() != "after:boom" {
		t.Fatalf("expected \"after:boom\", got %v", result)
	}
}

func TestVM_FunctionCallAndReturn(t *testing.T) {
	result := run(t, `
		function add(a, b) { return a + b; }
		add(2, 3);
	`)
	if result.AsNumber() != 5 {
		t.Fatalf("expected 5, got %v", result)
	}
}

func TestVM_ClosureCapturesOuterLocal(t *testing.T) {
	result := run(t, `
		function makeCounter() {
			let count = 0;
			function increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		let counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	if result.AsNumber() != 3 {
		t.Fatalf("expected 3, got %v", result)
	}
}

func TestVM_ClosureObservesOwningFrameMutationAfterCreation(t *testing.T) {
	result := run(t, `
		function f() {
			let x = 0;
			function g() { return x; }
			x = 1;
			return g;
		}
		f()();
	`)
	if result.AsNumber() != 1 {
		t.Fatalf("expected 1 (closure must see the mutation made after it was created), got %v", result)
	}
}

func TestVM_UndeclaredGlobalReferenceReadsAsUndefined(t *testing.T) {
	result := run(t, "missing;")
	if result.Type != bytecode.ValueUndefined {
		t.Fatalf("expected undefined for a missing global, got %v", result)
	}
}

func TestVM_UncaughtThrowPropagatesAsRuntimeError(t *testing.T) {
	program, errs := parser.Parse(`throw "boom";`)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	chunk, compileErrs := bytecode.Compile(program, `throw "boom";`)
	if len(compileErrs) != 0 {
		t.Fatalf("compile errors: %v", compileErrs)
	}
	machine := vm.New(gc.New(), nil)
	if _, err := machine.Execute(chunk); err == nil {
		t.Fatal("expected an uncaught throw to surface as a runtime error")
	}
}
