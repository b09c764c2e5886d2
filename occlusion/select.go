package occlusion

import (
	"encoding/binary"
	"hash/fnv"
	stdmath "math"

	"occlusion-engine/math"
	"occlusion-engine/occluder"
)

// Prepare rebuilds the active set for one frame from the candidate ids.
// Ids that are unknown or inactive are ignored. diag may be nil; when set
// it also receives the stats of the queries that follow.
func (c *Culler) Prepare(pool Pool, ids []int, view View, diag *Diagnostics) {
	if c.seen == nil {
		c.seen = make(map[int]struct{})
		if !c.hasPending {
			c.cfg = DefaultConfig()
		}
	}
	if c.hasPending {
		c.cfg = c.pending
		c.hasPending = false
	}
	c.camPos = view.Position
	c.diag = diag
	c.prepared = true

	c.sphereSelect.reset(c.cfg.MaxActiveSpheres)
	c.polySelect.reset(c.cfg.MaxActivePolys)
	clear(c.seen)

	candidates := 0
	for _, id := range ids {
		if _, dup := c.seen[id]; dup {
			Logger().Debug("occlusion: duplicate occluder id", "id", id)
			continue
		}
		c.seen[id] = struct{}{}

		inst := pool.Instance(id)
		if inst == nil || !inst.Active {
			continue
		}
		pool.EnsureUpToDate(id)
		if outsideAny(inst.AABB(), view.Planes) {
			continue
		}
		candidates++

		switch inst.Type {
		case occluder.TypeSpheres:
			c.offerSpheres(inst, view)
		case occluder.TypePolys:
			c.offerPolys(inst, view)
		}
	}

	c.buildSpheres()
	c.buildPolys()

	selected := len(c.polys)
	whittled, holesDropped := 0, 0
	if diag == nil || !diag.SkipWhittle {
		whittled, holesDropped = c.whittle()
	}
	c.checksum = c.computeChecksum()

	if diag != nil {
		diag.Stats.Candidates += candidates
		diag.Stats.SpheresSelected += len(c.spheres)
		diag.Stats.PolysSelected += selected
		diag.Stats.PolysWhittled += whittled
		diag.Stats.HolesDropped += holesDropped
	}
	Logger().Debug("occlusion: prepared",
		"candidates", candidates,
		"spheres", len(c.spheres),
		"polys", len(c.polys),
		"whittled", whittled,
		"holes_dropped", holesDropped)
}

func outsideAny(box math.AABB, planes []math.Plane) bool {
	for _, p := range planes {
		if box.OutsidePlane(p) {
			return true
		}
	}
	return false
}

func (c *Culler) offerSpheres(inst *occluder.Instance, view View) {
	for _, s := range inst.WorldSpheres() {
		if sphereOutsideAny(s, view.Planes) {
			continue
		}
		dist := s.Center.Distance(view.Position)
		// a sphere around the camera would hide everything
		if dist <= s.Radius {
			continue
		}
		fit := sphereFitReference / max(dist, minSphereFitDist) * s.Radius
		c.sphereSelect.offer(activeSphere{
			center: s.Center,
			radius: s.Radius,
			dist:   dist,
			id:     inst.ID,
		}, fit)
	}
}

func sphereOutsideAny(s occluder.Sphere, planes []math.Plane) bool {
	for _, p := range planes {
		if p.DistanceTo(s.Center) < -s.Radius {
			return true
		}
	}
	return false
}

func (c *Culler) offerPolys(inst *occluder.Instance, view View) {
	polys := inst.WorldPolys()
	for i := range polys {
		p := &polys[i]
		if len(p.Verts) < 3 {
			continue
		}
		c.clipPts = c.clipPts[:0]
		for _, v := range p.Verts {
			c.clipPts = append(c.clipPts, v.ToVec4(1).MulMat(view.ClipMatrix))
		}
		area := c.clipper.ClipAndFindPolyArea(c.clipPts)
		if area <= 0 {
			continue
		}
		// back faces are kept: a wall seen from behind still blocks the view
		facing := p.Plane.IsPointOver(view.Position)
		c.polySelect.offer(polyCandidate{poly: p, id: inst.ID, facing: facing}, area)
	}
}

func (c *Culler) buildSpheres() {
	c.spheres = append(c.spheres[:0], c.sphereSelect.items...)
	c.closestDist = float32(stdmath.MaxFloat32)
	for _, s := range c.spheres {
		c.closestDist = min(c.closestDist, s.dist)
	}
}

// buildPolys copies the selected polygons into the frame arenas, flipping
// those that face away, and builds their edge planes.
func (c *Culler) buildPolys() {
	c.polys = c.polys[:0]
	c.verts = c.verts[:0]
	c.edgePlanes = c.edgePlanes[:0]
	c.holes = c.holes[:0]

	for i, cand := range c.polySelect.items {
		p := cand.poly
		sp := sortPoly{id: cand.id, fit: c.polySelect.fits[i], plane: p.Plane}
		if cand.facing {
			sp.flags |= flagFacesCamera
		} else {
			sp.plane = p.Plane.Flip()
		}

		mark := c.mark()
		var ok bool
		sp.verts, sp.edges, ok = c.pushLoop(p.Verts, !cand.facing)
		if !ok {
			c.rewind(mark)
			Logger().Debug("occlusion: dropping polygon with degenerate silhouette", "id", cand.id)
			continue
		}

		sp.holes.start = int32(len(c.holes))
		for _, h := range p.Holes {
			hv, he, holeOK := c.pushLoop(h.Verts, !cand.facing)
			if !holeOK {
				ok = false
				break
			}
			c.holes = append(c.holes, activeHole{verts: hv, edges: he})
		}
		if !ok {
			// losing a hole would overstate what the polygon hides
			c.rewind(mark)
			Logger().Debug("occlusion: dropping polygon with degenerate hole", "id", cand.id)
			continue
		}
		sp.holes.n = int32(len(c.holes)) - sp.holes.start
		if sp.holes.n > 0 {
			sp.flags |= flagHasHoles
		}
		c.polys = append(c.polys, sp)
	}
}

type arenaMark struct {
	verts, edges, holes int
}

func (c *Culler) mark() arenaMark {
	return arenaMark{len(c.verts), len(c.edgePlanes), len(c.holes)}
}

func (c *Culler) rewind(m arenaMark) {
	c.verts = c.verts[:m.verts]
	c.edgePlanes = c.edgePlanes[:m.edges]
	c.holes = c.holes[:m.holes]
}

// pushLoop appends a vertex loop, reversed if flip is set, and one edge
// plane per edge through the camera. Each edge plane is oriented so the
// loop's centroid is on its negative side. ok is false when the camera is
// in line with an edge.
func (c *Culler) pushLoop(loop []math.Vec3, flip bool) (verts, edges span, ok bool) {
	verts = span{start: int32(len(c.verts)), n: int32(len(loop))}
	if flip {
		for i := len(loop) - 1; i >= 0; i-- {
			c.verts = append(c.verts, loop[i])
		}
	} else {
		c.verts = append(c.verts, loop...)
	}
	pts := c.vertsOf(verts)

	var centroid math.Vec3
	for _, v := range pts {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float32(len(pts)))

	edges = span{start: int32(len(c.edgePlanes)), n: verts.n}
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		plane, valid := math.PlaneFromPoints(c.camPos, a, b)
		if !valid {
			c.verts = c.verts[:verts.start]
			c.edgePlanes = c.edgePlanes[:edges.start]
			return span{}, span{}, false
		}
		if plane.DistanceTo(centroid) > 0 {
			plane = plane.Flip()
		}
		c.edgePlanes = append(c.edgePlanes, plane)
	}
	return verts, edges, true
}

func (c *Culler) computeChecksum() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	writeF := func(f float32) {
		binary.LittleEndian.PutUint32(buf[:], stdmath.Float32bits(f))
		h.Write(buf[:])
	}
	writeI := func(i int) {
		binary.LittleEndian.PutUint32(buf[:], uint32(int32(i)))
		h.Write(buf[:])
	}
	writeV := func(v math.Vec3) {
		writeF(v.X)
		writeF(v.Y)
		writeF(v.Z)
	}

	writeI(len(c.spheres))
	for _, s := range c.spheres {
		writeI(s.id)
		writeV(s.center)
		writeF(s.radius)
	}
	writeI(len(c.polys))
	for i := range c.polys {
		p := &c.polys[i]
		writeI(p.id)
		for _, v := range c.polyVerts(p) {
			writeV(v)
		}
		writeI(int(p.holes.n))
		for _, hole := range c.polyHoles(p) {
			writeI(int(hole.verts.n))
			for _, v := range c.vertsOf(hole.verts) {
				writeV(v)
			}
		}
	}
	return h.Sum64()
}
