package occluder

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"occlusion-engine/core"
	"occlusion-engine/math"
)

const eps = 1e-4

func quad(z, half float32) []math.Vec3 {
	return []math.Vec3{
		{X: -half, Y: -half, Z: z},
		{X: half, Y: -half, Z: z},
		{X: half, Y: half, Z: z},
		{X: -half, Y: half, Z: z},
	}
}

func TestNewPolyPlane(t *testing.T) {
	p, err := NewPoly(quad(5, 1))
	if err != nil {
		t.Fatalf("NewPoly: %v", err)
	}
	// CCW seen from +z
	if !p.Plane.Normal.ApproxEqual(math.Vec3{Z: 1}, eps) {
		t.Errorf("Expected normal (0,0,1), got %v", p.Plane.Normal)
	}
	if d := p.Plane.DistanceTo(math.Vec3{Z: 5}); math.Abs(d) > eps {
		t.Errorf("Expected plane through z=5, distance %f", d)
	}
}

func TestNewPolyErrors(t *testing.T) {
	many := make([]math.Vec3, MaxPolyVerts+1)
	for i := range many {
		many[i] = math.Vec3{X: float32(i), Y: float32(i * i)}
	}
	if _, err := NewPoly(many); !errors.Is(err, ErrTooManyVerts) {
		t.Errorf("Expected ErrTooManyVerts, got %v", err)
	}

	line := []math.Vec3{{}, {X: 1}, {X: 2}}
	if _, err := NewPoly(line); !errors.Is(err, ErrDegeneratePoly) {
		t.Errorf("Expected ErrDegeneratePoly for collinear verts, got %v", err)
	}

	if _, err := NewPoly(quad(0, 1), HoleFromVerts(math.Vec3{}, math.Vec3{X: 1})); !errors.Is(err, ErrDegeneratePoly) {
		t.Errorf("Expected ErrDegeneratePoly for 2-vertex hole, got %v", err)
	}
}

func TestHoleTakesParentPlane(t *testing.T) {
	p := MustPoly(quad(3, 2), HoleFromVerts(quad(3, 0.5)...))
	if len(p.Holes) != 1 {
		t.Fatalf("Expected 1 hole, got %d", len(p.Holes))
	}
	if p.Holes[0].Plane != p.Plane {
		t.Errorf("Expected hole plane %v, got %v", p.Plane, p.Holes[0].Plane)
	}
}

func TestNewPolyLeavesCallerHolesAlone(t *testing.T) {
	holes := []Poly{HoleFromVerts(quad(3, 0.5)...)}
	p := MustPoly(quad(3, 2), holes...)

	if holes[0].Plane != (math.Plane{}) {
		t.Errorf("Expected caller's hole to keep a zero plane, got %v", holes[0].Plane)
	}
	if p.Holes[0].Plane != p.Plane {
		t.Errorf("Expected stored hole plane %v, got %v", p.Plane, p.Holes[0].Plane)
	}
	holes[0].Verts = nil
	if len(p.Holes[0].Verts) != 4 {
		t.Errorf("Expected stored hole to survive changes to the caller's slice")
	}
}

func TestPolyTransform(t *testing.T) {
	p := MustPoly(quad(0, 1), HoleFromVerts(quad(0, 0.25)...))
	m := math.Mat4Translation(math.Vec3{X: 10, Z: 4})
	w := p.Transform(m)

	if !w.Verts[0].ApproxEqual(math.Vec3{X: 9, Y: -1, Z: 4}, eps) {
		t.Errorf("Expected first vertex (9,-1,4), got %v", w.Verts[0])
	}
	if d := w.Plane.DistanceTo(math.Vec3{X: 10, Z: 4}); math.Abs(d) > eps {
		t.Errorf("Expected moved plane through (10,0,4), distance %f", d)
	}
	if !w.Holes[0].Verts[2].ApproxEqual(math.Vec3{X: 10.25, Y: 0.25, Z: 4}, eps) {
		t.Errorf("Expected hole vertex moved, got %v", w.Holes[0].Verts[2])
	}
	// source untouched
	if p.Verts[0].Z != 0 {
		t.Errorf("Transform mutated its receiver")
	}
}

func TestPoolRefreshAndTransform(t *testing.T) {
	pool := NewPool()
	xform := core.NewTransform()
	xform.Position = math.Vec3{Y: 3}
	id := pool.AddPolys("wall", []Poly{MustPoly(quad(0, 1))}, xform)

	pool.EnsureUpToDate(id)
	inst := pool.Instance(id)
	if !inst.Active {
		t.Errorf("Expected new instance to be active")
	}
	box := inst.AABB()
	if !box.Min.ApproxEqual(math.Vec3{X: -1, Y: 2}, eps) || !box.Max.ApproxEqual(math.Vec3{X: 1, Y: 4}, eps) {
		t.Errorf("Unexpected AABB %v", box)
	}

	xform.Position = math.Vec3{Z: -7}
	pool.SetTransform(id, xform)
	pool.EnsureUpToDate(id)
	if got := inst.WorldPolys()[0].Verts[0].Z; math.Abs(got+7) > eps {
		t.Errorf("Expected world z -7 after SetTransform, got %f", got)
	}
	if got := inst.LocalPolys()[0].Verts[0].Z; got != 0 {
		t.Errorf("Expected local geometry unchanged, got z %f", got)
	}
}

func TestPoolSphereScale(t *testing.T) {
	pool := NewPool()
	xform := core.NewTransform()
	xform.Scale = math.Vec3{X: 2, Y: 1, Z: 1}
	xform.Position = math.Vec3{X: 5}
	id := pool.AddSpheres("ball", []Sphere{{Center: math.Vec3{X: 1}, Radius: 1.5}}, xform)
	pool.EnsureUpToDate(id)

	s := pool.Instance(id).WorldSpheres()[0]
	if !s.Center.ApproxEqual(math.Vec3{X: 7}, eps) {
		t.Errorf("Expected center (7,0,0), got %v", s.Center)
	}
	// the smallest axis keeps the sphere inside the ellipsoid
	if math.Abs(s.Radius-1.5) > eps {
		t.Errorf("Expected radius 1.5, got %f", s.Radius)
	}
	// while the bounds cover the whole ellipsoid
	box := pool.Instance(id).AABB()
	if math.Abs(box.Max.X-10) > eps || math.Abs(box.Min.X-4) > eps {
		t.Errorf("Expected x bounds 4..10, got %v..%v", box.Min.X, box.Max.X)
	}
}

func TestPoolIDReuse(t *testing.T) {
	pool := NewPool()
	a := pool.AddSpheres("a", []Sphere{{Radius: 1}}, core.Transform{})
	b := pool.AddSpheres("b", []Sphere{{Radius: 1}}, core.Transform{})
	pool.Remove(a)
	if pool.Instance(a) != nil {
		t.Errorf("Expected removed instance to be nil")
	}
	if pool.Len() != 1 {
		t.Errorf("Expected 1 live instance, got %d", pool.Len())
	}
	c := pool.AddSpheres("c", []Sphere{{Radius: 1}}, core.Transform{})
	if c != a {
		t.Errorf("Expected id %d to be reused, got %d", a, c)
	}
	if ids := pool.IDs(); len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Errorf("Unexpected ids %v", ids)
	}
	pool.Remove(99)
}

func TestReadOBJ(t *testing.T) {
	src := `
# two quads and a broken face
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
o front
f 1 2 3 4
f 1/1/1 2/2/2 3/3/3
g back
f -1 -2 -3
f 1 1 1
`
	groups, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].Name != "front" || len(groups[0].Polys) != 2 {
		t.Errorf("Expected front with 2 polys, got %s with %d", groups[0].Name, len(groups[0].Polys))
	}
	if groups[1].Name != "back" || len(groups[1].Polys) != 1 {
		t.Errorf("Expected back with 1 poly, got %s with %d", groups[1].Name, len(groups[1].Polys))
	}
	// "f -1 -2 -3" winds 4,3,2 which is clockwise from +z
	if n := groups[1].Polys[0].Plane.Normal; !n.ApproxEqual(math.Vec3{Z: -1}, eps) {
		t.Errorf("Expected normal (0,0,-1), got %v", n)
	}
}

func TestReadOBJBadIndex(t *testing.T) {
	_, err := ReadOBJ(strings.NewReader("v 0 0 0\nf 1 2 3\n"))
	if err == nil {
		t.Errorf("Expected error for out of range face index")
	}
}

func TestSetRoundTrip(t *testing.T) {
	pool := NewPool()
	xform := core.NewTransform()
	xform.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	xform.Rotation = math.QuaternionFromAxisAngle(math.Vec3Up, 0.5)
	pid := pool.AddPolys("door", []Poly{MustPoly(quad(0, 2), HoleFromVerts(quad(0, 1)...))}, xform)
	sid := pool.AddSpheres("rock", []Sphere{{Center: math.Vec3{Y: 1}, Radius: 2}}, core.Transform{})
	pool.SetActive(sid, false)

	var buf bytes.Buffer
	if err := WriteSet(&buf, pool); err != nil {
		t.Fatalf("WriteSet: %v", err)
	}

	loaded := NewPool()
	ids, err := ReadSet(loaded, &buf)
	if err != nil {
		t.Fatalf("ReadSet: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 ids, got %d", len(ids))
	}

	door := loaded.Instance(ids[0])
	if door.Name != "door" || door.Type != TypePolys || !door.Active {
		t.Errorf("Unexpected door instance %+v", door)
	}
	if door.Transform != pool.Instance(pid).Transform {
		t.Errorf("Expected transform %+v, got %+v", pool.Instance(pid).Transform, door.Transform)
	}
	if len(door.LocalPolys()) != 1 || len(door.LocalPolys()[0].Holes) != 1 {
		t.Fatalf("Expected 1 poly with 1 hole")
	}

	rock := loaded.Instance(ids[1])
	if rock.Active {
		t.Errorf("Expected rock to stay inactive")
	}
	if s := rock.LocalSpheres()[0]; s.Radius != 2 || s.Center.Y != 1 {
		t.Errorf("Unexpected sphere %+v", s)
	}
}

func TestReadSetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"version", `{"Version":7}`},
		{"type", `{"Version":1,"Occluders":[{"Name":"x","Type":"cubes"}]}`},
		{"poly", `{"Version":1,"Occluders":[{"Name":"x","Type":"polys","Polys":[{"Verts":[{"X":0},{"X":1}]}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool()
			if _, err := ReadSet(pool, strings.NewReader(tt.src)); err == nil {
				t.Errorf("Expected error")
			}
			if pool.Len() != 0 {
				t.Errorf("Expected pool untouched, got %d instances", pool.Len())
			}
		})
	}
	_, err := ReadSet(NewPool(), strings.NewReader(`{"Version":1,"Occluders":[{"Type":"polys","Polys":[{"Verts":[{"X":0},{"X":1}]}]}]}`))
	if !errors.Is(err, ErrDegeneratePoly) {
		t.Errorf("Expected wrapped ErrDegeneratePoly, got %v", err)
	}
}

func TestBoxPolysFaceOutward(t *testing.T) {
	box := math.AABB{Min: math.Vec3{X: -1, Y: 0, Z: 2}, Max: math.Vec3{X: 3, Y: 2, Z: 4}}
	polys := BoxPolys(box)
	if len(polys) != 6 {
		t.Fatalf("Expected 6 faces, got %d", len(polys))
	}
	center := box.Center()
	for i, p := range polys {
		if p.Plane.DistanceTo(center) >= 0 {
			t.Errorf("face %d: expected box centre behind the face, normal %v", i, p.Plane.Normal)
		}
	}

	flat := BoxPolys(math.AABB{Max: math.Vec3{X: 1, Z: 1}})
	if len(flat) != 2 {
		t.Errorf("Expected only the 2 non-degenerate faces of a flat box, got %d", len(flat))
	}
}
