package heap

import "testing"

type node struct {
	id    int
	child *node
}

func (n *node) Trace(visit func(Collectable)) {
	if n.child != nil {
		visit(n.child)
	}
}

func TestAllocateAndGet(t *testing.T) {
	h := New(10)
	n := &node{id: 1}
	id, err := h.Allocate(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := h.Get(id)
	if got != Collectable(n) {
		t.Fatal("Get did not return the allocated object")
	}
}

func TestHeapExhausted(t *testing.T) {
	h := New(1)
	kept := &node{id: 1}
	if _, err := h.Allocate(kept); err != nil {
		t.Fatalf("first allocation should succeed: %v", err)
	}
	// Root the only live object so Allocate's reclaim-on-full retry can't
	// free it before giving up.
	h.AddRoot(func() []Collectable { return []Collectable{kept} })

	_, err := h.Allocate(&node{id: 2})
	if err == nil {
		t.Fatal("expected an ErrHeapExhausted error")
	}
	if _, ok := err.(*ErrHeapExhausted); !ok {
		t.Fatalf("expected *ErrHeapExhausted, got %T", err)
	}
}

func TestGarbageCollectReclaimsUnreachable(t *testing.T) {
	h := New(2)
	root := &node{id: 1}
	if _, err := h.Allocate(root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	garbage := &node{id: 2}
	if _, err := h.Allocate(garbage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.AddRoot(func() []Collectable { return []Collectable{root} })
	h.GarbageCollect()

	if h.Len() != 1 {
		t.Fatalf("expected 1 live object after collection, got %d", h.Len())
	}
}

func TestGarbageCollectKeepsReachableChildren(t *testing.T) {
	h := New(3)
	child := &node{id: 2}
	root := &node{id: 1, child: child}
	if _, err := h.Allocate(root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.Allocate(child); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.AddRoot(func() []Collectable { return []Collectable{root} })
	h.GarbageCollect()

	if h.Len() != 2 {
		t.Fatalf("expected root and its reachable child to survive, got %d live", h.Len())
	}
}

func TestUsePercentage(t *testing.T) {
	h := New(4)
	if h.UsePercentage() != 0 {
		t.Fatalf("expected 0%% use on an empty heap, got %d", h.UsePercentage())
	}
	h.Allocate(&node{id: 1})
	h.Allocate(&node{id: 2})
	if p := h.UsePercentage(); p != 50 {
		t.Fatalf("expected 50%% use with 2/4 slots filled, got %d", p)
	}
}
