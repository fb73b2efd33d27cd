// Package gc implements the generational mark-and-sweep collector that
// owns every heap object: objects, arrays, functions, and promise-like
// values. Every other component holds only opaque handles into it.
package gc

import "github.com/lumenjs/lumen/internal/bytecode"

// Generation tags which sweep an object is eligible for.
type Generation byte

const (
	Young Generation = iota
	Old
)

// PromiseState is the state of a promise-like heap object.
type PromiseState byte

const (
	Pending PromiseState = iota
	Fulfilled
	Rejected
)

// ObjectKind tags the variant held by an Object.
type ObjectKind byte

const (
	KindObject ObjectKind = iota
	KindArray
	KindFunction
	KindPromise
	// KindBox wraps a single primitive or object-handle Value so it can be
	// referenced uniformly through a handle from a Properties or Elements
	// slot, collapsing §3's separate number/string/boolean/null/undefined
	// box variants into one generic carrier.
	KindBox
)

// Object is one heap object's payload, per §3's "Heap object" variant
// list. Only the fields relevant to Kind are populated.
type Object struct {
	Kind ObjectKind

	// KindObject
	Properties map[string]bytecode.Handle

	// KindArray
	Elements []bytecode.Handle

	// KindFunction
	Name     string
	Function *bytecode.FunctionConstant
	Closure  map[string]bytecode.Handle

	// KindPromise
	State     PromiseState
	Value     *bytecode.Handle
	Callbacks []bytecode.Handle

	// KindBox
	Boxed *bytecode.Value
}

func NewBox(v bytecode.Value) *Object { return &Object{Kind: KindBox, Boxed: &v} }

func NewObject() *Object {
	return &Object{Kind: KindObject, Properties: make(map[string]bytecode.Handle)}
}

func NewArray(elements []bytecode.Handle) *Object {
	return &Object{Kind: KindArray, Elements: elements}
}

func NewFunction(name string, fn *bytecode.FunctionConstant, closure map[string]bytecode.Handle) *Object {
	return &Object{Kind: KindFunction, Name: name, Function: fn, Closure: closure}
}

func NewPromise() *Object {
	return &Object{Kind: KindPromise, State: Pending}
}

// references returns the precomputed outgoing-handle set for obj, per
// §4.5's "precomputed set of outgoing handles" requirement.
func (obj *Object) references() []bytecode.Handle {
	switch obj.Kind {
	case KindObject:
		refs := make([]bytecode.Handle, 0, len(obj.Properties))
		for _, h := range obj.Properties {
			refs = append(refs, h)
		}
		return refs
	case KindArray:
		return obj.Elements
	case KindFunction:
		refs := make([]bytecode.Handle, 0, len(obj.Closure))
		for _, h := range obj.Closure {
			refs = append(refs, h)
		}
		return refs
	case KindPromise:
		refs := make([]bytecode.Handle, 0, len(obj.Callbacks)+1)
		if obj.Value != nil {
			refs = append(refs, *obj.Value)
		}
		refs = append(refs, obj.Callbacks...)
		return refs
	case KindBox:
		if obj.Boxed != nil && obj.Boxed.Type == bytecode.ValueObject {
			return []bytecode.Handle{obj.Boxed.AsHandle()}
		}
		return nil
	default:
		return nil
	}
}

// size estimates obj's byte footprint, grounded on the same rough-estimate
// scheme as the collector this package is modeled on: a flat cost per
// reference slot for container kinds.
func (obj *Object) size() int {
	switch obj.Kind {
	case KindObject:
		return len(obj.Properties) * 16
	case KindArray:
		return len(obj.Elements) * 8
	case KindFunction:
		n := 0
		if obj.Function != nil {
			n = obj.Function.Chunk.InstructionCount() * 4
		}
		return n + len(obj.Closure)*16
	case KindPromise:
		return 64
	case KindBox:
		return 16
	default:
		return 0
	}
}

type entry struct {
	object     *Object
	generation Generation
	marked     bool
	size       int
	refs       []bytecode.Handle
}

// Stats is a point-in-time snapshot of the collector's counters, per §6's
// gc_stats() surface.
type Stats struct {
	TotalObjects     int
	YoungObjects     int
	OldObjects       int
	RootObjects      int
	TotalAllocations int
	TotalCollections int
	BytesAllocated   int
	BytesFreed       int
}

// Option configures a Collector at construction time.
type Option func(*Collector)

// WithYoungThreshold overrides the byte footprint that triggers an
// automatic collection when the young generation exceeds it. Default: 1 MiB.
func WithYoungThreshold(bytes int) Option {
	return func(c *Collector) { c.youngThreshold = bytes }
}

// WithCollectionFrequency overrides how often (in allocation count) a
// collection is triggered regardless of byte footprint. Default: 100.
func WithCollectionFrequency(n int) Option {
	return func(c *Collector) { c.collectionFrequency = n }
}

// Collector is a generational mark-and-sweep heap, per §4.5. It is not
// safe for concurrent use directly; callers share it through a mutex per
// §5's single shared-resource policy.
type Collector struct {
	objects map[bytecode.Handle]*entry
	young   map[bytecode.Handle]struct{}
	old     map[bytecode.Handle]struct{}
	roots   map[bytecode.Handle]struct{}

	nextHandle bytecode.Handle

	totalAllocations int
	totalCollections int
	bytesAllocated   int
	bytesFreed       int

	youngThreshold      int
	collectionFrequency int
}

func New(opts ...Option) *Collector {
	c := &Collector{
		objects:             make(map[bytecode.Handle]*entry),
		young:               make(map[bytecode.Handle]struct{}),
		old:                 make(map[bytecode.Handle]struct{}),
		roots:               make(map[bytecode.Handle]struct{}),
		nextHandle:          1,
		youngThreshold:      1024 * 1024,
		collectionFrequency: 100,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Allocate places obj in the young generation and returns its handle. It
// triggers an automatic collection first if the young footprint or
// allocation count has crossed a threshold, per §4.5.
func (c *Collector) Allocate(obj *Object) bytecode.Handle {
	c.totalAllocations++
	if c.shouldCollect() {
		c.Collect()
	}

	handle := c.nextHandle
	c.nextHandle++

	e := &entry{object: obj, generation: Young, size: obj.size(), refs: obj.references()}
	c.objects[handle] = e
	c.young[handle] = struct{}{}
	c.bytesAllocated += e.size
	return handle
}

// Get returns the object at handle, or nil if handle does not resolve.
func (c *Collector) Get(handle bytecode.Handle) *Object {
	e, ok := c.objects[handle]
	if !ok {
		return nil
	}
	return e.object
}

// Update replaces the object at handle in place, recomputing its size and
// outgoing-reference set, and returns whether handle resolved.
func (c *Collector) Update(handle bytecode.Handle, obj *Object) bool {
	e, ok := c.objects[handle]
	if !ok {
		return false
	}
	c.bytesAllocated -= e.size
	e.object = obj
	e.size = obj.size()
	e.refs = obj.references()
	c.bytesAllocated += e.size
	return true
}

// AddRoot and RemoveRoot are idempotent with respect to the same handle,
// per §4.5's invariant.
func (c *Collector) AddRoot(handle bytecode.Handle) { c.roots[handle] = struct{}{} }
func (c *Collector) RemoveRoot(handle bytecode.Handle) { delete(c.roots, handle) }

// Collect runs one collection cycle: a full collection every 10th call,
// otherwise a minor collection, per §4.5. It returns the number of
// objects freed.
func (c *Collector) Collect() int {
	before := len(c.objects)
	beforeBytes := c.bytesAllocated

	full := c.totalCollections%10 == 0
	if full {
		c.fullCollect()
	} else {
		c.minorCollect()
	}

	c.totalCollections++
	c.bytesFreed += beforeBytes - c.bytesAllocated
	return before - len(c.objects)
}

func (c *Collector) minorCollect() {
	c.clearMarks()
	c.markFromRoots()

	promoted := make([]bytecode.Handle, 0)
	for h := range c.young {
		if c.objects[h].marked {
			promoted = append(promoted, h)
		}
	}
	for _, h := range promoted {
		delete(c.young, h)
		c.old[h] = struct{}{}
		c.objects[h].generation = Old
	}

	toRemove := make([]bytecode.Handle, 0)
	for h := range c.young {
		if !c.objects[h].marked {
			toRemove = append(toRemove, h)
		}
	}
	c.removeObjects(toRemove)
}

func (c *Collector) fullCollect() {
	c.clearMarks()
	c.markFromRoots()

	toRemove := make([]bytecode.Handle, 0)
	for h, e := range c.objects {
		if !e.marked {
			toRemove = append(toRemove, h)
		}
	}
	c.removeObjects(toRemove)
}

func (c *Collector) clearMarks() {
	for _, e := range c.objects {
		e.marked = false
	}
}

func (c *Collector) markFromRoots() {
	for h := range c.roots {
		c.markObject(h)
	}
}

// markObject marks handle and recurses into its outgoing references;
// an already-marked object is a no-op, per §4.5.
func (c *Collector) markObject(handle bytecode.Handle) {
	e, ok := c.objects[handle]
	if !ok || e.marked {
		return
	}
	e.marked = true
	for _, ref := range e.refs {
		c.markObject(ref)
	}
}

func (c *Collector) removeObjects(handles []bytecode.Handle) {
	freed := 0
	for _, h := range handles {
		e, ok := c.objects[h]
		if !ok {
			continue
		}
		freed += e.size
		delete(c.objects, h)
		delete(c.young, h)
		delete(c.old, h)
		delete(c.roots, h)
	}
	c.bytesAllocated -= freed
	if c.bytesAllocated < 0 {
		c.bytesAllocated = 0
	}
}

func (c *Collector) shouldCollect() bool {
	youngBytes := 0
	for h := range c.young {
		youngBytes += c.objects[h].size
	}
	return youngBytes > c.youngThreshold ||
		(c.collectionFrequency > 0 && c.totalAllocations%c.collectionFrequency == 0)
}

func (c *Collector) Stats() Stats {
	return Stats{
		TotalObjects:     len(c.objects),
		YoungObjects:     len(c.young),
		OldObjects:       len(c.old),
		RootObjects:      len(c.roots),
		TotalAllocations: c.totalAllocations,
		TotalCollections: c.totalCollections,
		BytesAllocated:   c.bytesAllocated,
		BytesFreed:       c.bytesFreed,
	}
}
