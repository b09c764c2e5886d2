package occlusion

import "occlusion-engine/math"

// whittle removes active polygons that lie entirely in the shadow of another
// active polygon, and drops holes that are themselves in such a shadow.
//
// It is a single sweep over a stable order. A removed polygon is never used
// as an occluder afterwards, so of two identical polygons the one swept
// first survives. Survivors keep their order.
func (c *Culler) whittle() (removed, holesDropped int) {
	for i := range c.polys {
		o := &c.polys[i]
		if o.flags&flagRemoved != 0 {
			continue
		}

		for j := range c.polys {
			if j == i {
				continue
			}
			t := &c.polys[j]
			if t.flags&flagRemoved != 0 {
				continue
			}

			// something bigger on screen cannot fit in o's shadow
			if t.fit <= o.fit && c.inShadow(c.polyVerts(t), o, planeEpsilon) && !c.touchesHole(c.polyVerts(t), o) {
				t.flags |= flagRemoved
				removed++
				continue
			}
			if t.flags&flagHasHoles != 0 {
				holesDropped += c.dropHiddenHoles(t, o)
			}
		}
	}

	if removed > 0 {
		n := 0
		for i := range c.polys {
			if c.polys[i].flags&flagRemoved == 0 {
				c.polys[n] = c.polys[i]
				n++
			}
		}
		c.polys = c.polys[:n]
	}
	return removed, holesDropped
}

// inShadow reports whether every point is behind o and inside all of o's
// edge planes, allowing points up to tolerance outside. Removing a polygon
// tolerates coplanar neighbours; dropping a hole must pass a negative
// tolerance so a hole reaching past the shadow edge is kept.
func (c *Culler) inShadow(pts []math.Vec3, o *sortPoly, tolerance float32) bool {
	edges := c.planesOf(o.edges)
	for _, v := range pts {
		if o.plane.DistanceTo(v) > tolerance {
			return false
		}
		for _, e := range edges {
			if e.DistanceTo(v) > tolerance {
				return false
			}
		}
	}
	return true
}

// touchesHole reports whether pts may reach into the shadow of any hole of
// o. A hole is clear only if one of its edge planes has every point
// strictly outside it.
func (c *Culler) touchesHole(pts []math.Vec3, o *sortPoly) bool {
	for _, h := range c.polyHoles(o) {
		if !c.separatedFromHole(pts, h) {
			return true
		}
	}
	return false
}

func (c *Culler) separatedFromHole(pts []math.Vec3, h activeHole) bool {
	for _, e := range c.planesOf(h.edges) {
		outside := true
		for _, v := range pts {
			if e.DistanceTo(v) <= planeEpsilon {
				outside = false
				break
			}
		}
		if outside {
			return true
		}
	}
	return false
}

// dropHiddenHoles removes the holes of t that lie in o's shadow and clear of
// o's holes. Nothing behind such a hole is visible through it.
func (c *Culler) dropHiddenHoles(t, o *sortPoly) int {
	holes := c.polyHoles(t)
	kept := 0
	for _, h := range holes {
		pts := c.vertsOf(h.verts)
		if c.inShadow(pts, o, -planeEpsilon) && !c.touchesHole(pts, o) {
			continue
		}
		holes[kept] = h
		kept++
	}
	dropped := len(holes) - kept
	t.holes.n = int32(kept)
	if kept == 0 {
		t.flags &^= flagHasHoles
	}
	return dropped
}
