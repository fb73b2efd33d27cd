// Package engine is the embedding surface the rest of this repository is
// built to serve: one configured Engine compiles and runs scripts, loads
// modules, and exposes the collector's statistics, per §6's external
// interfaces.
package engine

import (
	"io"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/errors"
	"github.com/lumenjs/lumen/internal/gc"
	"github.com/lumenjs/lumen/internal/module"
	"github.com/lumenjs/lumen/internal/parser"
	"github.com/lumenjs/lumen/internal/vm"
)

// Value is the engine's public value type: the same tagged union the
// compiler and VM already use internally, so a caller receiving a Value
// back from ExecuteScript can inspect it with the same accessors
// (AsNumber, AsString, ...) the rest of the codebase does.
type Value = bytecode.Value

// Option configures an Engine at construction, following the functional-
// options shape the teacher applies throughout (lexer, VM, collector).
type Option func(*Engine)

// WithStackLimit bounds the VM's operand stack depth.
func WithStackLimit(n int) Option { return func(e *Engine) { e.vmOpts = append(e.vmOpts, vm.WithMaxStack(n)) } }

// WithFrameLimit bounds the VM's call-frame depth.
func WithFrameLimit(n int) Option { return func(e *Engine) { e.vmOpts = append(e.vmOpts, vm.WithMaxFrames(n)) } }

// WithYoungThreshold overrides the collector's young-generation byte
// threshold for triggering an automatic minor collection.
func WithYoungThreshold(bytes int) Option {
	return func(e *Engine) { e.gcOpts = append(e.gcOpts, gc.WithYoungThreshold(bytes)) }
}

// WithGCFrequency overrides how many allocations the collector tolerates
// before forcing a collection regardless of byte footprint.
func WithGCFrequency(n int) Option {
	return func(e *Engine) { e.gcOpts = append(e.gcOpts, gc.WithCollectionFrequency(n)) }
}

// WithOutput stores w as the Engine's output writer. No Engine method
// writes to it, and an Engine built without this option holds a nil writer.
func WithOutput(w io.Writer) Option { return func(e *Engine) { e.output = w } }

// Engine owns the one heap and globals map shared by every script it
// runs, the module cache built on top of that heap, and the VM
// construction options each run is configured with; only the call-frame
// stack and operand stack are per-run, per §5's single-shared-resource
// model (the heap is the VM's one resource shared with its embedding
// engine).
type Engine struct {
	heap    *gc.Collector
	globals map[string]bytecode.Value
	output  io.Writer

	vmOpts []vm.Option
	gcOpts []gc.Option

	moduleCache  *module.Cache
	moduleLoader *module.Loader
}

// New constructs an Engine, applying opts.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		globals: make(map[string]bytecode.Value),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.heap = gc.New(e.gcOpts...)
	e.moduleCache = module.NewCache()
	e.moduleLoader = module.NewLoader(e.moduleCache, e.executeForModule)
	return e, nil
}

func (e *Engine) newVM() *vm.VM {
	return vm.New(e.heap, e.globals, e.vmOpts...)
}

// ExecuteScript parses, compiles, and runs source, returning its result
// value. A failure at any stage is reported as an *errors.EngineError
// per §7's boundary-error contract.
func (e *Engine) ExecuteScript(source string) (Value, error) {
	program, parseErrs := parser.Parse(source)
	if len(parseErrs) != 0 {
		pe, _ := parseErrs[0].(*errors.ParseError)
		return Value{}, errors.WrapEngineError(pe)
	}
	chunk, compileErrs := bytecode.Compile(program, source)
	if len(compileErrs) != 0 {
		ce, _ := compileErrs[0].(*errors.CompileError)
		return Value{}, errors.WrapEngineError(ce)
	}
	return e.ExecuteBytecode(chunk)
}

// ExecuteBytecode runs an already-compiled unit, e.g. one loaded from a
// persisted bytecode document via internal/bytecode's Serializer.
func (e *Engine) ExecuteBytecode(unit *bytecode.Chunk) (Value, error) {
	machine := e.newVM()
	result, err := machine.Execute(unit)
	if err != nil {
		return Value{}, errors.WrapEngineError(err)
	}
	return result, nil
}

// executeForModule is the module.Executor the Engine hands to its
// module.Loader: it runs chunk on a VM sharing this Engine's heap (so
// objects allocated by a module outlive the load and stay reachable from
// the importing script) but with a private globals map, so one module's
// top-level bindings never leak into another's or into the host script's.
// The returned map is exactly what the module left behind in its own
// globals - every top-level function declaration, plus any bare
// assignment to an undeclared name (compileVariableDeclaration always
// binds a local, so a `let`-only module has nothing to export this way;
// see DESIGN.md).
func (e *Engine) executeForModule(chunk *bytecode.Chunk) (map[string]bytecode.Value, error) {
	moduleGlobals := make(map[string]bytecode.Value)
	machine := vm.New(e.heap, moduleGlobals, e.vmOpts...)
	if _, err := machine.Execute(chunk); err != nil {
		return nil, err
	}
	return moduleGlobals, nil
}

// LoadModule realizes §6's load_module(path) operation.
func (e *Engine) LoadModule(path string) (*module.ModuleInfo, error) {
	info, err := e.moduleLoader.Load(path)
	if err != nil {
		return nil, errors.WrapEngineError(err)
	}
	return info, nil
}

// GCCollect forces an immediate collection and reports how many objects
// were freed.
func (e *Engine) GCCollect() int { return e.heap.Collect() }

// GCStats returns a snapshot of the collector's counters.
func (e *Engine) GCStats() gc.Stats { return e.heap.Stats() }

// SetGlobal binds name to v in the globals every ExecuteScript and
// ExecuteBytecode run on this Engine shares. Modules loaded through
// LoadModule run against their own globals and do not see it.
func (e *Engine) SetGlobal(name string, v Value) { e.globals[name] = v }

// GetGlobal reads name from the shared globals, reporting whether it was
// bound at all (distinct from a global whose value happens to be
// undefined).
func (e *Engine) GetGlobal(name string) (Value, bool) {
	v, ok := e.globals[name]
	return v, ok
}
