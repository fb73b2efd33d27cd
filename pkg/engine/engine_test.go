package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/pkg/engine"
)

func TestEngine_ExecuteScriptReturnsFinalExpressionValue(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.ExecuteScript("1 + 2 * 3;")
	if err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	if result.AsNumber() != 7 {
		t.Fatalf("expected 7, got %v", result)
	}
}

func TestEngine_ExecuteScriptReportsCompileErrorAtBoundary(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.ExecuteScript("let x = ;"); err == nil {
		t.Fatal("expected a parse failure to surface as an engine error")
	}
}

func TestEngine_GlobalsPersistAcrossExecuteScriptCalls(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.ExecuteScript("counter = 1;"); err != nil {
		t.Fatalf("first ExecuteScript: %v", err)
	}
	v, ok := e.GetGlobal("counter")
	if !ok || v.AsNumber() != 1 {
		t.Fatalf("expected global counter=1 to persist, got %v (ok=%v)", v, ok)
	}

	result, err := e.ExecuteScript("counter;")
	if err != nil {
		t.Fatalf("second ExecuteScript: %v", err)
	}
	if result.AsNumber() != 1 {
		t.Fatalf("expected the second script to observe the first script's global, got %v", result)
	}
}

func TestEngine_SetGlobalIsVisibleToScripts(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.SetGlobal("injected", bytecode.Number(99))
	result, err := e.ExecuteScript("injected;")
	if err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	if result.AsNumber() != 99 {
		t.Fatalf("expected the host-set global to be visible, got %v", result)
	}
}

func TestEngine_GCCollectAndStats(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.ExecuteScript(`let o = {a: 1}; o.a;`); err != nil {
		t.Fatalf("ExecuteScript: %v", err)
	}
	stats := e.GCStats()
	if stats.TotalAllocations == 0 {
		t.Fatal("expected at least one allocation from the object literal")
	}
	e.GCCollect()
}

func TestEngine_LoadModuleExportsTopLevelFunction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.js")
	if err := os.WriteFile(path, []byte(`function answer() { return 42; }`), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := engine.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := e.LoadModule(path)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	fn, ok := info.Exports["answer"]
	if !ok || fn.Type != bytecode.ValueObject {
		t.Fatalf("expected the module to export its top-level function, got %v", info.Exports)
	}
}
