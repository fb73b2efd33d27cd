package module_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/module"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func echoExecutor(result map[string]bytecode.Value, err error) module.Executor {
	return func(*bytecode.Chunk) (map[string]bytecode.Value, error) { return result, err }
}

func TestCache_PutGetSizeInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "let x = 1;")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	cache := module.NewCache()
	if cache.Size() != 0 {
		t.Fatalf("expected empty cache, got size %d", cache.Size())
	}

	chunk := bytecode.NewChunk("a.js")
	exports := map[string]bytecode.Value{"x": bytecode.Number(1)}
	cache.Put(path, chunk, exports, info.ModTime())
	if cache.Size() != 1 {
		t.Fatalf("expected size 1, got %d", cache.Size())
	}

	gotChunk, gotExports, ok := cache.Get(path)
	if !ok || gotChunk != chunk || gotExports["x"].AsNumber() != 1 {
		t.Fatalf("expected to retrieve the cached entry, got %v %v %v", gotChunk, gotExports, ok)
	}

	cache.Invalidate(path)
	if _, _, ok := cache.Get(path); ok {
		t.Fatal("expected the entry to be gone after Invalidate")
	}
	if cache.Size() != 0 {
		t.Fatalf("expected size 0 after invalidate, got %d", cache.Size())
	}
}

func TestCache_GetMissesAfterFileModified(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "let x = 1;")
	info, _ := os.Stat(path)

	cache := module.NewCache()
	cache.Put(path, bytecode.NewChunk("a.js"), nil, info.ModTime())

	if _, _, ok := cache.Get(path); !ok {
		t.Fatal("expected a cache hit before modification")
	}

	time.Sleep(10 * time.Millisecond)
	writeFile(t, dir, "a.js", "let x = 2;")

	if _, _, ok := cache.Get(path); ok {
		t.Fatal("expected a cache miss after the file's mtime moved on")
	}
}

func TestCache_GetMissesAfterFileDeleted(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "let x = 1;")
	info, _ := os.Stat(path)

	cache := module.NewCache()
	cache.Put(path, bytecode.NewChunk("a.js"), nil, info.ModTime())

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := cache.Get(path); ok {
		t.Fatal("expected a cache miss once the backing file is gone")
	}
}

func TestLoader_LoadCompilesAndCachesOnFirstLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mod.js", "let answer = 42;")

	cache := module.NewCache()
	calls := 0
	executor := func(chunk *bytecode.Chunk) (map[string]bytecode.Value, error) {
		calls++
		return map[string]bytecode.Value{"answer": bytecode.Number(42)}, nil
	}
	loader := module.NewLoader(cache, executor)

	info1, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info1.Exports["answer"].AsNumber() != 42 {
		t.Fatalf("expected export answer=42, got %v", info1.Exports["answer"])
	}
	if calls != 1 {
		t.Fatalf("expected the executor to run once, ran %d times", calls)
	}

	info2, err := loader.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the second Load to hit the cache without re-executing, ran %d times", calls)
	}
	if info1.ID != info2.ID {
		t.Fatalf("expected a stable module ID across loads, got %q and %q", info1.ID, info2.ID)
	}
}

func TestLoader_LoadReportsModuleErrorForMissingFile(t *testing.T) {
	loader := module.NewLoader(module.NewCache(), echoExecutor(nil, nil))
	if _, err := loader.Load(filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Fatal("expected an error loading a nonexistent module path")
	}
}

func TestLoader_LoadReportsModuleErrorForParseFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.js", "let x = ;")
	loader := module.NewLoader(module.NewCache(), echoExecutor(nil, nil))
	if _, err := loader.Load(path); err == nil {
		t.Fatal("expected a parse failure to surface as a module error")
	}
}
