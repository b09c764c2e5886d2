package math

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// AABBFromPoints returns the tight box around pts. An empty slice yields
// the zero box.
func AABBFromPoints(pts []Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	out := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// ExpandSphere grows the box to contain the sphere.
func (b AABB) ExpandSphere(center Vec3, radius float32) AABB {
	r := Vec3{radius, radius, radius}
	return b.Union(AABB{Min: center.Sub(r), Max: center.Add(r)})
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// ProjectRangeInPlane returns the signed distance range covered by the box
// along the plane's normal.
func (b AABB) ProjectRangeInPlane(p Plane) (lo, hi float32) {
	half := b.Size().Mul(0.5)
	d := p.DistanceTo(b.Center())
	r := Abs(half.X*p.Normal.X) + Abs(half.Y*p.Normal.Y) + Abs(half.Z*p.Normal.Z)
	return d - r, d + r
}

// OutsidePlane reports whether the whole box lies on the negative side of p.
// Uses the positive vertex, the corner furthest along the normal.
func (b AABB) OutsidePlane(p Plane) bool {
	px := b.Max.X
	if p.Normal.X < 0 {
		px = b.Min.X
	}
	py := b.Max.Y
	if p.Normal.Y < 0 {
		py = b.Min.Y
	}
	pz := b.Max.Z
	if p.Normal.Z < 0 {
		pz = b.Min.Z
	}
	return p.DistanceTo(Vec3{X: px, Y: py, Z: pz}) < 0
}
