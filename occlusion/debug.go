package occlusion

import (
	stdmath "math"

	"occlusion-engine/core"
	"occlusion-engine/math"
	"occlusion-engine/scene"
)

const debugCircleSegments = 24

var (
	debugFrontColor  = core.ColorGreen
	debugBackColor   = core.ColorYellow
	debugHoleColor   = core.ColorRed
	debugSphereColor = core.ColorBlue
)

// DebugMesh returns the active set as a line mesh: polygon outlines (green
// when the front face is seen, yellow otherwise), holes in red and three
// great circles per sphere in blue. The mesh is rebuilt only when Checksum
// changes, so callers may upload it once and compare pointers.
func (c *Culler) DebugMesh() *scene.Mesh {
	if c.debugHasMesh && c.debugSum == c.checksum {
		return c.debugMesh
	}

	var lb scene.LineBuilder
	for i := range c.polys {
		p := &c.polys[i]
		col := debugBackColor
		if p.flags&flagFacesCamera != 0 {
			col = debugFrontColor
		}
		lb.AddLoop(c.polyVerts(p), col)
		for _, h := range c.polyHoles(p) {
			lb.AddLoop(c.vertsOf(h.verts), debugHoleColor)
		}
	}
	for _, s := range c.spheres {
		addCircle(&lb, s.center, s.radius, 0, debugSphereColor)
		addCircle(&lb, s.center, s.radius, 1, debugSphereColor)
		addCircle(&lb, s.center, s.radius, 2, debugSphereColor)
	}

	c.debugMesh = lb.Build("OcclusionDebug")
	c.debugSum = c.checksum
	c.debugHasMesh = true
	return c.debugMesh
}

// addCircle draws a circle around center in the plane normal to axis
// (0 = x, 1 = y, 2 = z).
func addCircle(lb *scene.LineBuilder, center math.Vec3, radius float32, axis int, col core.Color) {
	var pts [debugCircleSegments]math.Vec3
	for i := range pts {
		a := 2 * stdmath.Pi * float64(i) / debugCircleSegments
		u := radius * float32(stdmath.Cos(a))
		v := radius * float32(stdmath.Sin(a))
		var off math.Vec3
		switch axis {
		case 0:
			off = math.Vec3{Y: u, Z: v}
		case 1:
			off = math.Vec3{X: u, Z: v}
		default:
			off = math.Vec3{X: u, Y: v}
		}
		pts[i] = center.Add(off)
	}
	lb.AddLoop(pts[:], col)
}
