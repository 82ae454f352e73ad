package photon

import "github.com/achilleasa/photonmap/types"

// Payload is anything the octree can store: it must expose the position
// used to pick a child octant and to compute kNN/radius distances.
type Payload interface {
	Pos() types.Vec3
}

const (
	// DefaultMaxOctreeDepth bounds dynamic-octree recursion so that a
	// dense cluster of near-coincident points cannot recurse
	// indefinitely and blow the call stack (the spec flags the absence
	// of such a cap as a suspect behavior of the original source).
	DefaultMaxOctreeDepth = 32

	// minOctantHalfExtent is the smallest half-extent an octant may be
	// split into. Below this, a leaf keeps accepting items past its
	// nominal capacity rather than subdividing further.
	minOctantHalfExtent = 1e-4
)

// dynamicNode is a node of the insert-driven build tree. A leaf holds an
// ordered item list; an internal node owns exactly eight children indexed
// by the sign of (pos-center) per axis. Consumed and destroyed in place by
// Compact.
type dynamicNode[P Payload] struct {
	box      BoundingBox // geometric octant box, not payload-tight
	leaf     bool
	items    []P
	children [8]*dynamicNode[P]

	// count is the number of items stored in this node's entire subtree
	// (own + descendants), maintained incrementally on insert so that
	// Compact's size pass is O(1) per node instead of a full re-walk.
	count int
}

func newDynamicLeaf[P Payload](box BoundingBox) *dynamicNode[P] {
	return &dynamicNode[P]{box: box, leaf: true}
}

// OctreeBuilder builds a dynamic octree by repeated single-item insertion.
// Not safe for concurrent use: the orchestrator inserts serially after the
// parallel emission pass completes (see Orchestrator.Build).
type OctreeBuilder[P Payload] struct {
	root         *dynamicNode[P]
	maxNodeData  int
	maxDepth     int
	minHalfExtent float32
}

// NewOctreeBuilder creates a builder rooted at box, splitting a leaf as
// soon as it holds more than maxNodeData items.
func NewOctreeBuilder[P Payload](box BoundingBox, maxNodeData int) *OctreeBuilder[P] {
	return &OctreeBuilder[P]{
		root:          newDynamicLeaf[P](box),
		maxNodeData:   maxNodeData,
		maxDepth:      DefaultMaxOctreeDepth,
		minHalfExtent: minOctantHalfExtent,
	}
}

// Insert adds item to the tree, descending into the child whose octant
// contains item.Pos(), splitting leaves that exceed capacity.
func (b *OctreeBuilder[P]) Insert(item P) {
	b.insert(b.root, item, 0)
}

func (b *OctreeBuilder[P]) insert(n *dynamicNode[P], item P, depth int) {
	n.count++
	if n.leaf {
		if len(n.items) >= b.maxNodeData && b.canSplit(n.box, depth) {
			b.split(n, depth)
		} else {
			n.items = append(n.items, item)
			return
		}
	}

	center := n.box.Center()
	idx := childIndex(center, item.Pos())
	if n.children[idx] == nil {
		n.children[idx] = newDynamicLeaf[P](childOctant(n.box, center, idx))
	}
	b.insert(n.children[idx], item, depth+1)
}

func (b *OctreeBuilder[P]) canSplit(box BoundingBox, depth int) bool {
	if depth >= b.maxDepth {
		return false
	}
	side := box.Max.Sub(box.Min)
	maxSide := side[0]
	if side[1] > maxSide {
		maxSide = side[1]
	}
	if side[2] > maxSide {
		maxSide = side[2]
	}
	return maxSide/2 > b.minHalfExtent
}

// split turns a leaf into an internal node, redistributing its existing
// items (not including whatever item triggered the split) into up to eight
// child leaves. The triggering insert call continues and recurses the new
// item into whichever child it belongs in.
func (b *OctreeBuilder[P]) split(n *dynamicNode[P], depth int) {
	items := n.items
	n.items = nil
	n.leaf = false

	center := n.box.Center()
	for _, it := range items {
		idx := childIndex(center, it.Pos())
		if n.children[idx] == nil {
			n.children[idx] = newDynamicLeaf[P](childOctant(n.box, center, idx))
		}
		n.children[idx].items = append(n.children[idx].items, it)
		n.children[idx].count++
	}
}

// childIndex picks the octant of pos relative to center: bit i of the
// result is set iff pos[i] >= center[i], so ties break to the positive
// side on each axis.
func childIndex(center, pos types.Vec3) int {
	idx := 0
	for axis := 0; axis < 3; axis++ {
		if pos[axis] >= center[axis] {
			idx |= 1 << uint(axis)
		}
	}
	return idx
}

// childOctant computes the geometric bounding box of child idx of a node
// spanning box with the given center.
func childOctant(box BoundingBox, center types.Vec3, idx int) BoundingBox {
	var min, max types.Vec3
	for axis := 0; axis < 3; axis++ {
		if idx&(1<<uint(axis)) != 0 {
			min[axis] = center[axis]
			max[axis] = box.Max[axis]
		} else {
			min[axis] = box.Min[axis]
			max[axis] = center[axis]
		}
	}
	return BoundingBox{Min: min, Max: max}
}
