package photon

import (
	"math"

	"github.com/achilleasa/photonmap/types"
)

// BoundingBox is an axis-aligned box used both as the geometric extent of an
// octree octant during insertion and as the tight, payload-derived extent
// baked into a LinearOctant during compaction.
//
// An empty box (no point ever merged into it) is distinguishable from one
// containing a single point: Min holds +MaxFloat32 and Max holds
// -MaxFloat32 per axis, so any merge unconditionally replaces it.
type BoundingBox struct {
	Min, Max types.Vec3
}

// EmptyBoundingBox returns a box with no extent that absorbs the first
// point or box merged into it.
func EmptyBoundingBox() BoundingBox {
	return BoundingBox{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Empty reports whether the box has never had a point merged into it.
func (b BoundingBox) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Contains reports whether p lies within the box (inclusive).
func (b BoundingBox) Contains(p types.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Merge grows the box to include p.
func (b BoundingBox) Merge(p types.Vec3) BoundingBox {
	return BoundingBox{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// MergeBox grows the box to include other in its entirety.
func (b BoundingBox) MergeBox(other BoundingBox) BoundingBox {
	if other.Empty() {
		return b
	}
	return BoundingBox{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Distance2 returns the squared distance from p to the closest point of the
// box; zero if p is inside. Implemented by clamping p to the box and
// measuring the squared distance to the clamp.
func (b BoundingBox) Distance2(p types.Vec3) float32 {
	var d float32
	for axis := 0; axis < 3; axis++ {
		v := p[axis]
		if v < b.Min[axis] {
			d += (b.Min[axis] - v) * (b.Min[axis] - v)
		} else if v > b.Max[axis] {
			d += (v - b.Max[axis]) * (v - b.Max[axis])
		}
	}
	return d
}

// MaxDistance2 returns the squared distance from p to the farthest of the
// box's eight corners, computed axis-wise as the larger of the two face
// distances without enumerating corners explicitly.
func (b BoundingBox) MaxDistance2(p types.Vec3) float32 {
	var d float32
	for axis := 0; axis < 3; axis++ {
		dMin := p[axis] - b.Min[axis]
		if dMin < 0 {
			dMin = -dMin
		}
		dMax := p[axis] - b.Max[axis]
		if dMax < 0 {
			dMax = -dMax
		}
		far := dMin
		if dMax > far {
			far = dMax
		}
		d += far * far
	}
	return d
}
