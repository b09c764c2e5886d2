package occlusion

import "occlusion-engine/math"

const joinEpsilon = 1e-4

// joinedOccludes handles a sphere that is inside every edge plane of poly a
// except the one through edge k. If another active polygon shares that edge
// from the opposite side and the sphere is behind it and inside all of its
// other edge planes, the two polygons hide the sphere together.
//
// Only polygons without holes are joined.
func (c *Culler) joinedOccludes(a, k int, center math.Vec3, radius float32, ignoreID int) bool {
	pa := &c.polys[a]
	if pa.flags&flagHasHoles != 0 {
		return false
	}
	va := c.polyVerts(pa)
	e0, e1 := va[k], va[(k+1)%len(va)]
	shared := c.planesOf(pa.edges)[k]

	for b := range c.polys {
		if b == a {
			continue
		}
		pb := &c.polys[b]
		if pb.flags&flagHasHoles != 0 || (pb.id == ignoreID && ignoreID != NoIgnore) {
			continue
		}
		kb := c.sharedEdge(pb, e0, e1)
		if kb < 0 {
			continue
		}
		edgesB := c.planesOf(pb.edges)
		// b must lie across the shared edge, not folded back over a
		if shared.Normal.Dot(edgesB[kb].Normal) >= 0 {
			continue
		}
		if pb.plane.DistanceTo(center) > -radius {
			continue
		}
		inside := true
		for m, e := range edgesB {
			if m != kb && e.DistanceTo(center) > -radius {
				inside = false
				break
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// sharedEdge returns the index of the edge of p joining e0 and e1 in either
// direction, or -1.
func (c *Culler) sharedEdge(p *sortPoly, e0, e1 math.Vec3) int {
	vs := c.polyVerts(p)
	for i, v := range vs {
		w := vs[(i+1)%len(vs)]
		if (v.ApproxEqual(e0, joinEpsilon) && w.ApproxEqual(e1, joinEpsilon)) ||
			(v.ApproxEqual(e1, joinEpsilon) && w.ApproxEqual(e0, joinEpsilon)) {
			return i
		}
	}
	return -1
}
