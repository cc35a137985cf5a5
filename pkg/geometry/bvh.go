package geometry

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Triangles   []*Triangle // Leaf contents (nil for internal nodes)
}

// BVH is a Bounding Volume Hierarchy over triangles from any number of surfaces
type BVH struct {
	Root *BVHNode
}

// Leaf threshold: if we have this many or fewer triangles, store them in a leaf node
const leafThreshold = 8

// NewBVH constructs a BVH from a slice of triangles
func NewBVH(triangles []*Triangle) *BVH {
	if len(triangles) == 0 {
		return &BVH{}
	}

	// Partitioning reorders the slice, so work on a copy
	trianglesCopy := make([]*Triangle, len(triangles))
	copy(trianglesCopy, triangles)

	return &BVH{Root: buildBVH(trianglesCopy)}
}

// buildBVH recursively splits at the midpoint of the longest axis
func buildBVH(triangles []*Triangle) *BVHNode {
	boundingBox := triangles[0].BoundingBox()
	for _, tri := range triangles[1:] {
		boundingBox = boundingBox.Union(tri.BoundingBox())
	}

	if len(triangles) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Triangles: triangles}
	}

	axis := boundingBox.LongestAxis()
	lo, hi := boundingBox.Min.Axis(axis), boundingBox.Max.Axis(axis)
	if hi <= lo {
		return &BVHNode{BoundingBox: boundingBox, Triangles: triangles}
	}
	splitPos := (lo + hi) * 0.5

	var left, right []*Triangle
	for _, tri := range triangles {
		if tri.BoundingBox().Center().Axis(axis) < splitPos {
			left = append(left, tri)
		} else {
			right = append(right, tri)
		}
	}

	// All centers on one side: no useful split
	if len(left) == 0 || len(right) == 0 {
		return &BVHNode{BoundingBox: boundingBox, Triangles: triangles}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(left),
		Right:       buildBVH(right),
	}
}

// TriangleHit is a raw BVH hit before it is resolved into an Intersection
type TriangleHit struct {
	Triangle    *Triangle
	T           float64
	Barycentric core.Vec3
}

// Nearest returns the closest triangle hit with tMin < t < tMax
func (bvh *BVH) Nearest(ray core.Ray, tMin, tMax float64) (TriangleHit, bool) {
	var closest TriangleHit
	if bvh.Root == nil {
		return closest, false
	}
	found := bvh.nearestNode(bvh.Root, ray, tMin, tMax, &closest)
	return closest, found
}

func (bvh *BVH) nearestNode(node *BVHNode, ray core.Ray, tMin, tMax float64, closest *TriangleHit) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}

	hitAnything := false
	closestSoFar := tMax

	if node.Triangles != nil {
		for _, tri := range node.Triangles {
			if t, bary, ok := tri.Hit(ray, tMin, closestSoFar); ok {
				hitAnything = true
				closestSoFar = t
				*closest = TriangleHit{Triangle: tri, T: t, Barycentric: bary}
			}
		}
		return hitAnything
	}

	if bvh.nearestNode(node.Left, ray, tMin, closestSoFar, closest) {
		hitAnything = true
		closestSoFar = closest.T
	}
	if bvh.nearestNode(node.Right, ray, tMin, closestSoFar, closest) {
		hitAnything = true
	}
	return hitAnything
}

// Any reports whether any triangle is hit with tMin < t < tMax, stopping at the first
func (bvh *BVH) Any(ray core.Ray, tMin, tMax float64) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.anyNode(bvh.Root, ray, tMin, tMax)
}

func (bvh *BVH) anyNode(node *BVHNode, ray core.Ray, tMin, tMax float64) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}
	if node.Triangles != nil {
		for _, tri := range node.Triangles {
			if _, _, ok := tri.Hit(ray, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	return bvh.anyNode(node.Left, ray, tMin, tMax) || bvh.anyNode(node.Right, ray, tMin, tMax)
}

// All calls visit for every triangle hit with tMin < t < tMax, in no particular order
func (bvh *BVH) All(ray core.Ray, tMin, tMax float64, visit func(TriangleHit)) {
	if bvh.Root == nil {
		return
	}
	bvh.allNode(bvh.Root, ray, tMin, tMax, visit)
}

func (bvh *BVH) allNode(node *BVHNode, ray core.Ray, tMin, tMax float64, visit func(TriangleHit)) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return
	}
	if node.Triangles != nil {
		for _, tri := range node.Triangles {
			if t, bary, ok := tri.Hit(ray, tMin, tMax); ok {
				visit(TriangleHit{Triangle: tri, T: t, Barycentric: bary})
			}
		}
		return
	}
	bvh.allNode(node.Left, ray, tMin, tMax, visit)
	bvh.allNode(node.Right, ray, tMin, tMax, visit)
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	TotalNodes     int
	LeafNodes      int
	MaxDepth       int
	AvgDepth       float64
	TotalTriangles int
}

// Stats walks the hierarchy and collects node statistics
func (bvh *BVH) Stats() BVHStats {
	stats := BVHStats{}
	if bvh.Root == nil {
		return stats
	}

	bvh.collectStats(bvh.Root, 0, &stats)

	// Calculate average depth after collecting all data
	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)

	if node.Triangles != nil {
		stats.LeafNodes++
		stats.TotalTriangles += len(node.Triangles)
		stats.AvgDepth += float64(depth) // Accumulate depth for average calculation
		return
	}
	bvh.collectStats(node.Left, depth+1, stats)
	bvh.collectStats(node.Right, depth+1, stats)
}
