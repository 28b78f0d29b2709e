package atlas

import "testing"

func TestShelfAllocatorBasic(t *testing.T) {
	a := NewShelfAllocator(100, 100)

	x, y, ok := a.Allocate(20, 20)
	if !ok || x != 0 || y != 0 {
		t.Fatalf("Allocate() = (%d,%d,%v), want (0,0,true)", x, y, ok)
	}
	x, y, ok = a.Allocate(20, 20)
	if !ok || x != 20 || y != 0 {
		t.Errorf("Allocate() = (%d,%d,%v), want (20,0,true)", x, y, ok)
	}
	if w, h := a.Extent(); w != 40 || h != 20 {
		t.Errorf("Extent() = %dx%d, want 40x20", w, h)
	}
}

func TestShelfAllocatorNewShelf(t *testing.T) {
	a := NewShelfAllocator(50, 100)
	a.Allocate(20, 20)
	a.Allocate(20, 20)

	x, y, ok := a.Allocate(20, 20)
	if !ok {
		t.Fatal("failed to allocate on a second shelf")
	}
	if x != 0 || y != 20 {
		t.Errorf("Allocate() = (%d,%d), want (0,20)", x, y)
	}
}

func TestShelfAllocatorFull(t *testing.T) {
	a := NewShelfAllocator(50, 50)
	count := 0
	for {
		if _, _, ok := a.Allocate(20, 20); !ok {
			break
		}
		count++
		if count > 100 {
			t.Fatal("allocator never filled up")
		}
	}
	if count != 4 {
		t.Errorf("allocations = %d, want 4", count)
	}
	if _, _, ok := a.Allocate(60, 1); ok {
		t.Error("Allocate() accepted an item wider than the area")
	}
}

func TestShelfAllocatorVariableHeights(t *testing.T) {
	a := NewShelfAllocator(100, 100)
	a.Allocate(20, 20)

	if _, y, ok := a.Allocate(20, 10); !ok || y != 0 {
		t.Errorf("shorter item y = %d, ok = %v; want same shelf", y, ok)
	}
	// The last shelf grows for a taller item.
	if _, y, ok := a.Allocate(20, 30); !ok || y != 0 {
		t.Errorf("taller item y = %d, ok = %v; want same shelf", y, ok)
	}
	a.Allocate(40, 5)
	if _, y, ok := a.Allocate(20, 5); !ok || y != 30 {
		t.Errorf("next shelf y = %d, ok = %v; want 30", y, ok)
	}
}
