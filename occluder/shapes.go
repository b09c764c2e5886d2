// Package occluder holds the long-lived occluder pool the culler reads each
// frame: sphere sets and convex polygon meshes with holes, stored in local
// space and refreshed to world space on demand.
package occluder

import (
	"errors"
	"fmt"

	"occlusion-engine/math"
)

// MaxPolyVerts bounds the vertex count of a polygon occluder or hole.
const MaxPolyVerts = 32

var (
	ErrTooManyVerts   = errors.New("occluder: polygon has too many vertices")
	ErrDegeneratePoly = errors.New("occluder: degenerate polygon")
)

// Sphere is a spherical occluder.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// Poly is a convex polygon and its plane. Holes lie in the parent's plane
// and restore visibility through the parent.
type Poly struct {
	Verts []math.Vec3
	Plane math.Plane
	Holes []Poly
}

// NewPoly validates verts and derives the plane from their winding.
// The normal points toward the side from which the winding appears
// counter-clockwise.
func NewPoly(verts []math.Vec3, holes ...Poly) (Poly, error) {
	if len(verts) > MaxPolyVerts {
		return Poly{}, fmt.Errorf("%w: %d > %d", ErrTooManyVerts, len(verts), MaxPolyVerts)
	}
	plane, ok := polyPlane(verts)
	if !ok {
		return Poly{}, ErrDegeneratePoly
	}
	holes = append([]Poly(nil), holes...)
	for i, h := range holes {
		if len(h.Verts) > MaxPolyVerts {
			return Poly{}, fmt.Errorf("hole %d: %w", i, ErrTooManyVerts)
		}
		if len(h.Verts) < 3 {
			return Poly{}, fmt.Errorf("hole %d: %w", i, ErrDegeneratePoly)
		}
		holes[i].Plane = plane
	}
	return Poly{Verts: verts, Plane: plane, Holes: holes}, nil
}

// MustPoly is NewPoly for literals in tests and tools.
func MustPoly(verts []math.Vec3, holes ...Poly) Poly {
	p, err := NewPoly(verts, holes...)
	if err != nil {
		panic(err)
	}
	return p
}

// HoleFromVerts wraps verts as a hole; the plane is filled in by NewPoly.
func HoleFromVerts(verts ...math.Vec3) Poly {
	return Poly{Verts: verts}
}

// polyPlane uses Newell's method so that slightly non-planar or partly
// collinear input still gets a sensible normal.
func polyPlane(verts []math.Vec3) (math.Plane, bool) {
	if len(verts) < 3 {
		return math.Plane{}, false
	}
	var n, centroid math.Vec3
	for i, a := range verts {
		b := verts[(i+1)%len(verts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
		centroid = centroid.Add(a)
	}
	if n.LengthSqr() < 1e-12 {
		return math.Plane{}, false
	}
	centroid = centroid.Mul(1 / float32(len(verts)))
	return math.NewPlane(n, centroid), true
}

// Centroid returns the vertex average.
func (p Poly) Centroid() math.Vec3 {
	var c math.Vec3
	for _, v := range p.Verts {
		c = c.Add(v)
	}
	if len(p.Verts) > 0 {
		c = c.Mul(1 / float32(len(p.Verts)))
	}
	return c
}

// Transform returns a copy of p moved by m, holes included.
func (p Poly) Transform(m math.Mat4) Poly {
	out := Poly{Verts: make([]math.Vec3, len(p.Verts))}
	for i, v := range p.Verts {
		out.Verts[i] = m.MulVec3(v)
	}
	plane, ok := polyPlane(out.Verts)
	if !ok {
		// collapsed by a zero scale; keep the transformed normal direction
		plane = math.NewPlane(m.MulDir(p.Plane.Normal), out.Centroid())
	}
	out.Plane = plane
	if len(p.Holes) > 0 {
		out.Holes = make([]Poly, len(p.Holes))
		for i, h := range p.Holes {
			hole := Poly{Verts: make([]math.Vec3, len(h.Verts)), Plane: plane}
			for j, v := range h.Verts {
				hole.Verts[j] = m.MulVec3(v)
			}
			out.Holes[i] = hole
		}
	}
	return out
}

// BoxPolys returns the six faces of box with outward normals. Together they
// make a closed occluder for a solid block.
func BoxPolys(box math.AABB) []Poly {
	mn, mx := box.Min, box.Max
	faces := [6][4]math.Vec3{
		{{X: mn.X, Y: mn.Y, Z: mn.Z}, {X: mn.X, Y: mn.Y, Z: mx.Z}, {X: mn.X, Y: mx.Y, Z: mx.Z}, {X: mn.X, Y: mx.Y, Z: mn.Z}}, // -x
		{{X: mx.X, Y: mn.Y, Z: mn.Z}, {X: mx.X, Y: mx.Y, Z: mn.Z}, {X: mx.X, Y: mx.Y, Z: mx.Z}, {X: mx.X, Y: mn.Y, Z: mx.Z}}, // +x
		{{X: mn.X, Y: mn.Y, Z: mn.Z}, {X: mx.X, Y: mn.Y, Z: mn.Z}, {X: mx.X, Y: mn.Y, Z: mx.Z}, {X: mn.X, Y: mn.Y, Z: mx.Z}}, // -y
		{{X: mn.X, Y: mx.Y, Z: mn.Z}, {X: mn.X, Y: mx.Y, Z: mx.Z}, {X: mx.X, Y: mx.Y, Z: mx.Z}, {X: mx.X, Y: mx.Y, Z: mn.Z}}, // +y
		{{X: mn.X, Y: mn.Y, Z: mn.Z}, {X: mn.X, Y: mx.Y, Z: mn.Z}, {X: mx.X, Y: mx.Y, Z: mn.Z}, {X: mx.X, Y: mn.Y, Z: mn.Z}}, // -z
		{{X: mn.X, Y: mn.Y, Z: mx.Z}, {X: mx.X, Y: mn.Y, Z: mx.Z}, {X: mx.X, Y: mx.Y, Z: mx.Z}, {X: mn.X, Y: mx.Y, Z: mx.Z}}, // +z
	}
	out := make([]Poly, 0, len(faces))
	for _, f := range faces {
		verts := append([]math.Vec3(nil), f[:]...)
		if p, err := NewPoly(verts); err == nil {
			out = append(out, p)
		}
	}
	return out
}
