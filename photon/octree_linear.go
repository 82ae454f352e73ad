package photon

import (
	"math"

	"github.com/achilleasa/photonmap/types"
)

// NullIdx is the sentinel next-sibling value meaning "no more siblings".
const NullIdx uint32 = 0xFFFFFFFF

// LinearOctant is the packed, depth-first record produced by Compact. The
// spec targets a cache-line-friendly 128-byte layout for the original
// implementation's packed encoding; the Go port favors a plain struct of
// the same logical fields over hand-padding, matching how the teacher's own
// scene.BvhNode keeps its packed layout to a simple struct comment ("each
// node takes 32 bytes") rather than explicit padding.
type LinearOctant struct {
	Box BoundingBox

	// StartData is the offset into the owning tree's Data array where
	// this subtree's items begin.
	StartData uint64

	// ContainedData is the item count stored in this subtree: own items
	// plus every descendant's.
	ContainedData uint64

	// NextSibling is the absolute index of the next sibling in Nodes,
	// or NullIdx if this is the last child of its parent.
	NextSibling uint32

	IsLeaf bool
}

// LinearOctree is the immutable, depth-first array-packed rewrite of an
// OctreeBuilder's dynamic tree. Node 0 is the root. Safe for concurrent
// read-only queries once built.
type LinearOctree[P Payload] struct {
	Nodes []LinearOctant
	Data  []P
}

// Compact consumes b's dynamic tree, producing a LinearOctree, and
// destroys the dynamic tree node by node as each is drained so that peak
// memory stays close to one copy of the data.
func Compact[P Payload](b *OctreeBuilder[P]) *LinearOctree[P] {
	root := b.root
	b.root = nil
	if root == nil || root.count == 0 {
		return &LinearOctree[P]{}
	}

	nodeCount := countNonEmptyNodes(root)
	tree := &LinearOctree[P]{
		Nodes: make([]LinearOctant, 0, nodeCount),
		Data:  make([]P, 0, root.count),
	}
	compactNode(root, tree)
	return tree
}

// countNonEmptyNodes is the size pass: a recursive tally of the number of
// non-empty nodes the compaction pass will emit, used to preallocate the
// target slice to exact size.
func countNonEmptyNodes[P Payload](n *dynamicNode[P]) int {
	if n == nil || n.count == 0 {
		return 0
	}
	if n.leaf {
		return 1
	}
	total := 1
	for _, c := range n.children {
		total += countNonEmptyNodes(c)
	}
	return total
}

// compactNode emits n (and its non-empty descendants) depth-first into
// tree, returning the index it was emitted at. Empty children are elided
// entirely so next-sibling chains only ever visit real nodes.
func compactNode[P Payload](n *dynamicNode[P], tree *LinearOctree[P]) int {
	idx := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, LinearOctant{})

	startData := uint64(len(tree.Data))
	box := EmptyBoundingBox()
	var own uint64
	if n.leaf {
		for _, it := range n.items {
			tree.Data = append(tree.Data, it)
			box = box.Merge(it.Pos())
		}
		own = uint64(len(n.items))
		n.items = nil
	}

	contained := own
	if !n.leaf {
		prevChildIdx := -1
		for c := 0; c < 8; c++ {
			child := n.children[c]
			if child == nil || child.count == 0 {
				n.children[c] = nil
				continue
			}
			childIdx := compactNode(child, tree)
			contained += uint64(child.count)
			box = box.MergeBox(tree.Nodes[childIdx].Box)
			if prevChildIdx != -1 {
				tree.Nodes[prevChildIdx].NextSibling = uint32(childIdx)
			}
			prevChildIdx = childIdx
			n.children[c] = nil
		}
		if prevChildIdx != -1 {
			tree.Nodes[prevChildIdx].NextSibling = NullIdx
		}
	}

	tree.Nodes[idx] = LinearOctant{
		Box:           box,
		StartData:     startData,
		ContainedData: contained,
		NextSibling:   NullIdx,
		IsLeaf:        n.leaf,
	}
	return idx
}

// Neighbor is a kNN candidate: an item together with its squared distance
// to the query point.
type Neighbor[P Payload] struct {
	Item  P
	Dist2 float32
}

// pendingSubtree is a best-first search frontier entry.
type pendingSubtree struct {
	idx   int
	dist2 float32
}

func distance2(a, b types.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

// KNN finds the k items of t nearest to p, writing them into result (a
// max-heap keyed by squared distance, reused across calls via Clear). A
// query against an empty tree leaves result empty.
func (t *LinearOctree[P]) KNN(p types.Vec3, k int, result *Queue[Neighbor[P]]) {
	result.Clear()
	if len(t.Data) == 0 || k <= 0 {
		return
	}
	if k > len(t.Data) {
		k = len(t.Data)
	}

	maxDist2 := float32(math.MaxFloat32)
	pending := NewQueue[pendingSubtree](func(a, b pendingSubtree) bool { return a.dist2 < b.dist2 })
	pending.Push(pendingSubtree{idx: 0, dist2: t.Nodes[0].Box.Distance2(p)})

	for !pending.Empty() {
		cur := pending.Pop()
		if cur.dist2 > maxDist2 {
			break
		}
		node := t.Nodes[cur.idx]

		if node.IsLeaf || node.ContainedData <= uint64(k) {
			for i := node.StartData; i < node.StartData+node.ContainedData; i++ {
				item := t.Data[i]
				d2 := distance2(item.Pos(), p)
				if d2 > maxDist2 {
					continue
				}
				acceptNeighbor(result, k, item, d2, &maxDist2)
			}
			continue
		}

		for ci := cur.idx + 1; ; {
			child := t.Nodes[ci]
			cd2 := child.Box.Distance2(p)
			if cd2 <= maxDist2 {
				pending.Push(pendingSubtree{idx: ci, dist2: cd2})
				if child.ContainedData >= uint64(k) {
					if md := child.Box.MaxDistance2(p); md < maxDist2 {
						maxDist2 = md
					}
				}
			}
			if child.NextSibling == NullIdx {
				break
			}
			ci = int(child.NextSibling)
		}
	}
}

func acceptNeighbor[P Payload](result *Queue[Neighbor[P]], k int, item P, d2 float32, maxDist2 *float32) {
	if result.Size() < k {
		result.PushUnordered(Neighbor[P]{Item: item, Dist2: d2})
		if result.Size() == k {
			result.MakeHeap()
			*maxDist2 = result.Top().Dist2
		}
		return
	}
	if d2 < result.Top().Dist2 {
		result.PopPush(Neighbor[P]{Item: item, Dist2: d2})
		*maxDist2 = result.Top().Dist2
	}
}

// RadiusSearch appends every item within radius of p to out (which is
// reset first), using a LIFO stack over node indices.
func (t *LinearOctree[P]) RadiusSearch(p types.Vec3, radius float32, out *[]P) {
	*out = (*out)[:0]
	if len(t.Nodes) == 0 {
		return
	}
	radius2 := radius * radius
	stack := []int{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := t.Nodes[idx]

		if node.IsLeaf {
			for i := node.StartData; i < node.StartData+node.ContainedData; i++ {
				item := t.Data[i]
				if distance2(item.Pos(), p) <= radius2 {
					*out = append(*out, item)
				}
			}
			continue
		}

		for ci := idx + 1; ; {
			child := t.Nodes[ci]
			cd2 := child.Box.Distance2(p)
			switch {
			case cd2 > radius2:
				// outside the radius, skip entirely
			case child.Box.MaxDistance2(p) <= radius2:
				// fully inside the radius, take the whole range
				for i := child.StartData; i < child.StartData+child.ContainedData; i++ {
					*out = append(*out, t.Data[i])
				}
			default:
				stack = append(stack, ci)
			}
			if child.NextSibling == NullIdx {
				break
			}
			ci = int(child.NextSibling)
		}
	}
}
