package math

// Plane represents the half-space boundary n·p + d = 0.
// Points with a positive distance are "over" the plane.
type Plane struct {
	Normal Vec3
	D      float32
}

// NewPlane builds a plane with the given normal passing through point.
func NewPlane(normal, point Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(point)}
}

// PlaneFromPoints returns the plane through a, b and c. The normal follows
// (b-a) x (c-a). ok is false when the points are collinear.
func PlaneFromPoints(a, b, c Vec3) (p Plane, ok bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	if l < 1e-12 {
		return Plane{}, false
	}
	n = n.Mul(1 / l)
	return Plane{Normal: n, D: -n.Dot(a)}, true
}

// DistanceTo returns the signed distance from pt to the plane.
func (p Plane) DistanceTo(pt Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// IsPointOver reports whether pt lies strictly on the positive side.
func (p Plane) IsPointOver(pt Vec3) bool {
	return p.DistanceTo(pt) > 0
}

// Flip returns the same plane facing the opposite direction.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Negate(), D: -p.D}
}

