package gc_test

import (
	"testing"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/gc"
)

func TestCollector_AllocateAndGet(t *testing.T) {
	c := gc.New()
	h := c.Allocate(gc.NewArray([]bytecode.Handle{1, 2}))
	obj := c.Get(h)
	if obj == nil {
		t.Fatal("expected object to resolve")
	}
	if obj.Kind != gc.KindArray || len(obj.Elements) != 2 {
		t.Fatalf("unexpected object %+v", obj)
	}
}

func TestCollector_UnrootedObjectIsSweptOnCollect(t *testing.T) {
	c := gc.New()
	h := c.Allocate(gc.NewObject())
	c.Collect()
	if c.Get(h) != nil {
		t.Fatal("expected unrooted object to be swept")
	}
}

func TestCollector_RootedObjectSurvivesCollect(t *testing.T) {
	c := gc.New()
	h := c.Allocate(gc.NewObject())
	c.AddRoot(h)
	c.Collect()
	if c.Get(h) == nil {
		t.Fatal("expected rooted object to survive")
	}
}

func TestCollector_MarkReachesTransitively(t *testing.T) {
	c := gc.New()
	child := c.Allocate(gc.NewObject())
	parent := gc.NewObject()
	parent.Properties["child"] = child
	parentHandle := c.Allocate(parent)
	c.AddRoot(parentHandle)

	c.Collect()

	if c.Get(parentHandle) == nil {
		t.Fatal("expected rooted parent to survive")
	}
	if c.Get(child) == nil {
		t.Fatal("expected transitively-reachable child to survive")
	}
}

func TestCollector_RootRemovalAllowsCollection(t *testing.T) {
	c := gc.New()
	h := c.Allocate(gc.NewObject())
	c.AddRoot(h)
	c.RemoveRoot(h)
	c.Collect()
	if c.Get(h) != nil {
		t.Fatal("expected object to be swept after root removed")
	}
}

func TestCollector_BytesAllocatedTracksAllocationsAndSweeps(t *testing.T) {
	c := gc.New()
	h := c.Allocate(gc.NewArray(make([]bytecode.Handle, 4)))
	before := c.Stats().BytesAllocated
	if before <= 0 {
		t.Fatalf("expected positive bytes allocated, got %d", before)
	}
	_ = h
	c.Collect()
	after := c.Stats().BytesAllocated
	if after >= before {
		t.Fatalf("expected bytes allocated to drop after sweeping unrooted object, before=%d after=%d", before, after)
	}
}

func TestCollector_LivenessAfterManyAllocations(t *testing.T) {
	c := gc.New()
	for i := 0; i < 1000; i++ {
		c.Allocate(gc.NewArray(make([]bytecode.Handle, 4)))
	}
	c.Collect()
	stats := c.Stats()
	if stats.TotalObjects != 0 {
		t.Fatalf("expected no objects to remain live after sweeping, got %d", stats.TotalObjects)
	}
	if stats.BytesFreed <= 0 {
		t.Fatalf("expected cumulative bytes freed to be positive, got %d", stats.BytesFreed)
	}
}

func TestCollector_HandleIsNeverReissued(t *testing.T) {
	c := gc.New()
	first := c.Allocate(gc.NewObject())
	c.Collect()
	second := c.Allocate(gc.NewObject())
	if first == second {
		t.Fatal("expected a swept handle to never be reissued")
	}
}
