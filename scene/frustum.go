package scene

import "occlusion-engine/math"

// Frustum holds the six clip planes of a view frustum.
// Normals point into the frustum, so inside points have positive distance.
type Frustum struct {
	Planes [6]math.Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix.
// The planes are normalized so DistanceTo returns a true distance in world units.
//
// Matrices use the row-vector convention (clip = p * vp), so clip component j
// is the dot product of the point with column j of vp. Gribb/Hartmann combine
// those columns: left is col3 + col0, right is col3 - col0, and so on.
func FrustumFromVP(vp math.Mat4) Frustum {
	col := func(j int) math.Vec4 {
		return math.Vec4{X: vp[0][j], Y: vp[1][j], Z: vp[2][j], W: vp[3][j]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = normalizePlane(c3.Add(c0))
	f.Planes[1] = normalizePlane(c3.Sub(c0))
	f.Planes[2] = normalizePlane(c3.Add(c1))
	f.Planes[3] = normalizePlane(c3.Sub(c1))
	f.Planes[4] = normalizePlane(c3.Add(c2))
	f.Planes[5] = normalizePlane(c3.Sub(c2))
	return f
}

func normalizePlane(v math.Vec4) math.Plane {
	n := v.ToVec3()
	l := n.Length()
	if l == 0 {
		return math.Plane{}
	}
	return math.Plane{Normal: n.Mul(1 / l), D: v.W / l}
}

// IntersectsAABB returns false if the box is completely outside the frustum.
func (f *Frustum) IntersectsAABB(box math.AABB) bool {
	for i := range f.Planes {
		if box.OutsidePlane(f.Planes[i]) {
			return false
		}
	}
	return true
}

// IntersectsSphere returns false if the sphere is completely outside the frustum.
func (f *Frustum) IntersectsSphere(center math.Vec3, radius float32) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(center) < -radius {
			return false
		}
	}
	return true
}

// PlaneList returns the planes as a slice, the form the occlusion culler takes.
func (f *Frustum) PlaneList() []math.Plane {
	out := make([]math.Plane, len(f.Planes))
	copy(out, f.Planes[:])
	return out
}
