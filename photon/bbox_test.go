package photon

import (
	"testing"

	"github.com/achilleasa/photonmap/types"
)

func TestBoundingBoxEmpty(t *testing.T) {
	b := EmptyBoundingBox()
	if !b.Empty() {
		t.Fatalf("expected a freshly constructed box to be empty")
	}

	b = b.Merge(types.Vec3{1, 2, 3})
	if b.Empty() {
		t.Fatalf("expected box to be non-empty after a merge")
	}
	if b.Min != (types.Vec3{1, 2, 3}) || b.Max != (types.Vec3{1, 2, 3}) {
		t.Fatalf("expected single-point box, got min=%v max=%v", b.Min, b.Max)
	}
}

func TestBoundingBoxMergeBoxIgnoresEmpty(t *testing.T) {
	b := BoundingBox{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}}
	merged := b.MergeBox(EmptyBoundingBox())
	if merged != b {
		t.Fatalf("merging an empty box should be a no-op; got %v", merged)
	}
}

func TestBoundingBoxContains(t *testing.T) {
	b := BoundingBox{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}}
	if !b.Contains(types.Vec3{0.5, 0.5, 0.5}) {
		t.Fatalf("expected box to contain its center")
	}
	if b.Contains(types.Vec3{2, 0, 0}) {
		t.Fatalf("expected box not to contain a point outside its extent")
	}
}

func TestBoundingBoxDistance2(t *testing.T) {
	b := BoundingBox{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}}

	if d := b.Distance2(types.Vec3{0.5, 0.5, 0.5}); d != 0 {
		t.Fatalf("expected zero distance for an interior point, got %v", d)
	}

	d := b.Distance2(types.Vec3{2, 0, 0})
	if d != 1 {
		t.Fatalf("expected distance2 1 for a point 1 unit past the box face, got %v", d)
	}

	d = b.Distance2(types.Vec3{2, 2, 0})
	if d != 2 {
		t.Fatalf("expected distance2 2 for a point 1 unit past two faces, got %v", d)
	}
}

func TestBoundingBoxMaxDistance2(t *testing.T) {
	b := BoundingBox{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}}

	// From the center, every corner is sqrt(0.75) away, so max-dist2 = 0.75.
	d := b.MaxDistance2(types.Vec3{0.5, 0.5, 0.5})
	if d < 0.74 || d > 0.76 {
		t.Fatalf("expected max-dist2 ~0.75 from the box center, got %v", d)
	}

	// Corner-to-corner: the farthest corner of a unit box from (0,0,0)
	// is (1,1,1), at squared distance 3.
	d = b.MaxDistance2(types.Vec3{0, 0, 0})
	if d != 3 {
		t.Fatalf("expected max-dist2 3 from a corner, got %v", d)
	}
}
