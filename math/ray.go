package math

// Ray is a half-line from Origin along Direction, which should be unit
// length so that hit distances are in world units.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectSphere returns the distance to the first intersection with the
// sphere. The distance is negative when the origin is inside it.
func (r Ray) IntersectSphere(center Vec3, radius float32) (float32, bool) {
	oc := center.Sub(r.Origin)
	along := oc.Dot(r.Direction)
	perpSqr := oc.LengthSqr() - along*along
	rSqr := radius * radius
	if perpSqr > rSqr {
		return 0, false
	}
	half := Sqrt(rSqr - perpSqr)
	if along+half < 0 {
		return 0, false // behind the origin
	}
	return along - half, true
}

// IntersectAABB is the slab test. It returns the entry distance, which is
// negative when the origin is inside the box.
func (r Ray) IntersectAABB(b AABB) (float32, bool) {
	invDir := Vec3{X: 1 / r.Direction.X, Y: 1 / r.Direction.Y, Z: 1 / r.Direction.Z}

	t1 := (b.Min.X - r.Origin.X) * invDir.X
	t2 := (b.Max.X - r.Origin.X) * invDir.X
	t3 := (b.Min.Y - r.Origin.Y) * invDir.Y
	t4 := (b.Max.Y - r.Origin.Y) * invDir.Y
	t5 := (b.Min.Z - r.Origin.Z) * invDir.Z
	t6 := (b.Max.Z - r.Origin.Z) * invDir.Z

	tmin := max(min(t1, t2), min(t3, t4), min(t5, t6))
	tmax := min(max(t1, t2), max(t3, t4), max(t5, t6))
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return tmin, true
}
