package occlusion

import "occlusion-engine/math"

// CullAABB reports whether box is hidden by the active set. It tests the
// box's bounding sphere.
func (c *Culler) CullAABB(box math.AABB) bool {
	return c.CullSphere(box.Center(), box.Size().Length()*0.5, NoIgnore)
}

// CullSphere reports whether the sphere is hidden by an active occluder.
// Occluders that came from the pool instance ignoreID are skipped, so an
// object can be tested without being hidden by its own occluder. A true
// result is always safe to act on; false means "draw it".
func (c *Culler) CullSphere(center math.Vec3, radius float32, ignoreID int) bool {
	if !c.prepared {
		return false
	}
	if c.diag != nil {
		c.diag.Stats.Queries++
	}

	toCenter := center.Sub(c.camPos)
	dist := toCenter.Length()
	if dist < closeEpsilon {
		return false
	}

	if c.cullBySpheres(toCenter.Mul(1/dist), dist, radius, ignoreID) {
		if c.diag != nil {
			c.diag.Stats.CulledBySphere++
		}
		return true
	}
	if c.cullByPolys(center, radius, ignoreID) {
		if c.diag != nil {
			c.diag.Stats.CulledByPoly++
		}
		return true
	}
	return false
}

// cullBySpheres casts a ray from the camera toward the occludee. Each
// occluder sphere is shrunk by the occludee's radius scaled to the
// occluder's depth; a hit on the shrunk sphere in front of the occludee
// means the whole occludee is behind it.
func (c *Culler) cullBySpheres(dir math.Vec3, dist, radius float32, ignoreID int) bool {
	near := dist - radius
	if near <= c.closestDist {
		return false
	}
	ray := math.Ray{Origin: c.camPos, Direction: dir}
	for _, s := range c.spheres {
		if s.id == ignoreID && ignoreID != NoIgnore {
			continue
		}
		if s.dist >= near {
			continue
		}
		r := s.radius - radius*s.dist/dist
		if r <= 0 {
			continue
		}
		if hit, ok := ray.IntersectSphere(s.center, r); ok && hit < near {
			return true
		}
	}
	return false
}

func (c *Culler) cullByPolys(center math.Vec3, radius float32, ignoreID int) bool {
	for i := range c.polys {
		p := &c.polys[i]
		if p.id == ignoreID && ignoreID != NoIgnore {
			continue
		}
		if p.plane.DistanceTo(center) > -radius {
			continue
		}

		failed, fails := -1, 0
		for k, e := range c.planesOf(p.edges) {
			if e.DistanceTo(center) > -radius {
				failed = k
				if fails++; fails > 1 {
					break
				}
			}
		}
		switch {
		case fails == 0:
		case fails == 1 && joinEdges:
			if !c.joinedOccludes(i, failed, center, radius, ignoreID) {
				continue
			}
		default:
			continue
		}

		if c.sphereClearOfHoles(p, center, radius) {
			return true
		}
	}
	return false
}

// sphereClearOfHoles reports whether the sphere is fully outside the shadow
// of every hole of p.
func (c *Culler) sphereClearOfHoles(p *sortPoly, center math.Vec3, radius float32) bool {
	for _, h := range c.polyHoles(p) {
		outside := false
		for _, e := range c.planesOf(h.edges) {
			if e.DistanceTo(center) > radius {
				outside = true
				break
			}
		}
		if !outside {
			return false
		}
	}
	return true
}

// CullAABBToPolys tests box against the active polygons only, using the
// box's extent along each plane normal instead of a bounding sphere. It is
// tighter than CullAABB for long thin boxes.
func (c *Culler) CullAABBToPolys(box math.AABB) bool {
	if !c.prepared {
		return false
	}
	if c.diag != nil {
		c.diag.Stats.BoxQueries++
	}
	if c.camPos.Distance(box.Center()) < closeEpsilon {
		return false
	}

next:
	for i := range c.polys {
		p := &c.polys[i]
		if _, hi := box.ProjectRangeInPlane(p.plane); hi > 0 {
			continue
		}
		for _, e := range c.planesOf(p.edges) {
			if _, hi := box.ProjectRangeInPlane(e); hi > 0 {
				continue next
			}
		}
		for _, h := range c.polyHoles(p) {
			if !c.boxClearOfHole(box, h) {
				continue next
			}
		}
		if c.diag != nil {
			c.diag.Stats.BoxCulledByPoly++
		}
		return true
	}
	return false
}

func (c *Culler) boxClearOfHole(box math.AABB, h activeHole) bool {
	for _, e := range c.planesOf(h.edges) {
		if lo, _ := box.ProjectRangeInPlane(e); lo > 0 {
			return true
		}
	}
	return false
}
