// Package module resolves, compiles, executes, and caches the scripts an
// engine loads by path, realizing §6's load_module(path) operation.
package module

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/parser"
)

// entry is one cached module: its compiled chunk, the export table
// produced the last time it ran, and the source file's modification time
// at the point it was compiled.
type entry struct {
	chunk   *bytecode.Chunk
	exports map[string]bytecode.Value
	modTime time.Time
}

// Cache is a path-keyed cache of compiled modules, invalidated whenever
// the backing file's modification time moves past what was recorded at
// cache time. Grounded on the teacher's unit cache (path-keyed, mtime
// invalidated, Put/Get/Invalidate/Size).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Put records chunk and exports for path, stamped with modTime.
func (c *Cache) Put(path string, chunk *bytecode.Chunk, exports map[string]bytecode.Value, modTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = &entry{chunk: chunk, exports: exports, modTime: modTime}
}

// Get returns the cached chunk and exports for path, provided the file on
// disk has not been modified since it was cached. A missing or unreadable
// file, or one whose mtime has moved on, misses.
func (c *Cache) Get(path string) (*bytecode.Chunk, map[string]bytecode.Value, bool) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok {
		return nil, nil, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.ModTime().Equal(e.modTime) {
		c.Invalidate(path)
		return nil, nil, false
	}
	return e.chunk, e.exports, true
}

func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ModuleInfo is what a successful Load returns: the module's resolved
// identity and the bindings it left in its globals after running.
type ModuleInfo struct {
	ID      string
	Path    string
	Exports map[string]bytecode.Value
}

// Executor runs a compiled chunk to completion and reports back the
// globals it populated; the module loader treats those globals as the
// module's export table, since there is no separate export bytecode to
// run (OpImport/OpExport are reserved, not emitted - see
// internal/vm/dispatch.go). The engine supplies this by running the
// chunk on a VM that shares its heap.
type Executor func(chunk *bytecode.Chunk) (map[string]bytecode.Value, error)

// Loader resolves module paths to source files, compiles and executes
// them through execute, and caches the result by absolute path.
type Loader struct {
	cache   *Cache
	execute Executor
}

func NewLoader(cache *Cache, execute Executor) *Loader {
	return &Loader{cache: cache, execute: execute}
}

// Load realizes load_module(path): read, parse, compile, execute, and
// cache, or return the cached result if the file is unchanged since it
// was last compiled.
func (l *Loader) Load(path string) (*ModuleInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewModuleError(errors.ModuleNotFound, path, err)
	}

	if _, exports, ok := l.cache.Get(abs); ok {
		return &ModuleInfo{ID: abs, Path: abs, Exports: exports}, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.NewModuleError(errors.ModuleNotFound, abs, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.NewModuleError(errors.ModuleNotFound, abs, err)
	}

	source := string(data)
	program, parseErrs := parser.Parse(source)
	if len(parseErrs) != 0 {
		return nil, errors.NewModuleError(errors.ModuleCompileFailed, abs, parseErrs[0])
	}
	chunk, compileErrs := bytecode.Compile(program, source)
	if len(compileErrs) != 0 {
		return nil, errors.NewModuleError(errors.ModuleCompileFailed, abs, compileErrs[0])
	}

	exports, err := l.execute(chunk)
	if err != nil {
		return nil, errors.NewModuleError(errors.ModuleExecuteFailed, abs, err)
	}

	l.cache.Put(abs, chunk, exports, info.ModTime())
	return &ModuleInfo{ID: abs, Path: abs, Exports: exports}, nil
}
