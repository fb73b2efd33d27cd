package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildLumen compiles the CLI into a temp dir once per test and returns the
// binary path, following the teacher's "build then exec" integration style.
func buildLumen(t *testing.T) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "lumen")
	build := exec.Command("go", "build", "-o", binary, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build lumen: %v\n%s", err, out)
	}
	return binary
}

func TestRunIntegration_EvalExpression(t *testing.T) {
	binary := buildLumen(t)
	out, err := exec.Command(binary, "run", "-e", "1 + 2 * 3;", "-v").CombinedOutput()
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "7") {
		t.Fatalf("expected output to contain 7, got: %s", out)
	}
}

func TestRunIntegration_ParseErrorExitsNonZero(t *testing.T) {
	binary := buildLumen(t)
	cmd := exec.Command(binary, "run", "-e", "let x = ;")
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected a nonzero exit for a parse error, output: %s", out)
	}
}

func TestCompileAndDisasmIntegration(t *testing.T) {
	binary := buildLumen(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "script.js")
	if err := os.WriteFile(script, []byte("function add(a, b) { return a + b; } add(1, 2);"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := exec.Command(binary, "compile", script).CombinedOutput()
	if err != nil {
		t.Fatalf("compile failed: %v\n%s", err, out)
	}

	bytecodeFile := filepath.Join(dir, "script.lbc")
	if _, err := os.Stat(bytecodeFile); err != nil {
		t.Fatalf("expected %s to exist: %v", bytecodeFile, err)
	}

	disasmOut, err := exec.Command(binary, "disasm", bytecodeFile).CombinedOutput()
	if err != nil {
		t.Fatalf("disasm failed: %v\n%s", err, disasmOut)
	}
	if !strings.Contains(string(disasmOut), "add") {
		t.Fatalf("expected disassembly to mention the function name, got: %s", disasmOut)
	}
}

func TestInspectIntegration_QueryAndPatch(t *testing.T) {
	binary := buildLumen(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "script.js")
	if err := os.WriteFile(script, []byte("41;"), 0644); err != nil {
		t.Fatal(err)
	}
	if out, err := exec.Command(binary, "compile", script).CombinedOutput(); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, out)
	}

	bytecodeFile := filepath.Join(dir, "script.lbc")
	out, err := exec.Command(binary, "inspect", bytecodeFile, "constants.0.value").CombinedOutput()
	if err != nil {
		t.Fatalf("inspect query failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "41") {
		t.Fatalf("expected to read back the literal 41, got: %s", out)
	}

	if out, err := exec.Command(binary, "inspect", "--set", "constants.0.value=42", bytecodeFile).CombinedOutput(); err != nil {
		t.Fatalf("inspect patch failed: %v\n%s", err, out)
	}

	out, err = exec.Command(binary, "inspect", bytecodeFile, "constants.0.value").CombinedOutput()
	if err != nil {
		t.Fatalf("inspect re-query failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "42") {
		t.Fatalf("expected the patched value 42, got: %s", out)
	}
}
