package scene

import (
	stdmath "math"
	"testing"

	"occlusion-engine/core"
	"occlusion-engine/math"
)

func newTestCamera() *Camera {
	cam := NewCamera(float32(stdmath.Pi/3), 1, 0.1, 1000)
	cam.LookAt(math.NewVec3(0, 0, 1), math.Vec3Up)
	return cam
}

func TestCameraClipSpace(t *testing.T) {
	cam := newTestCamera()
	vp := cam.GetViewProjectionMatrix()

	// a point straight ahead lands in the middle of the screen with w = depth
	clip := math.NewVec3(0, 0, 10).ToVec4(1).MulMat(vp)
	if stdmath.Abs(float64(clip.W-10)) > 0.001 {
		t.Errorf("expected w = 10, got %v", clip.W)
	}
	if stdmath.Abs(float64(clip.X)) > 0.001 || stdmath.Abs(float64(clip.Y)) > 0.001 {
		t.Errorf("expected centred point, got %v", clip)
	}

	// behind the camera has negative w
	if behind := math.NewVec3(0, 0, -10).ToVec4(1).MulMat(vp); behind.W >= 0 {
		t.Errorf("expected negative w behind the camera, got %v", behind.W)
	}
}

func TestFrustumFromVP(t *testing.T) {
	cam := newTestCamera()
	f := cam.GetFrustum()

	if !f.IntersectsSphere(math.NewVec3(0, 0, 10), 1) {
		t.Error("sphere in front of the camera should be inside")
	}
	if f.IntersectsSphere(math.NewVec3(0, 0, -10), 1) {
		t.Error("sphere behind the camera should be outside")
	}
	if f.IntersectsSphere(math.NewVec3(100, 0, 10), 1) {
		t.Error("sphere far to the side should be outside")
	}
	if f.IntersectsSphere(math.NewVec3(0, 0, 2000), 1) {
		t.Error("sphere beyond the far plane should be outside")
	}

	box := math.AABB{Min: math.NewVec3(-1, -1, 9), Max: math.NewVec3(1, 1, 11)}
	if !f.IntersectsAABB(box) {
		t.Error("box in front of the camera should be inside")
	}

	if n := len(f.PlaneList()); n != 6 {
		t.Errorf("expected 6 planes, got %d", n)
	}
}

func TestSetPositionKeepsDirection(t *testing.T) {
	cam := newTestCamera()
	cam.SetPosition(math.NewVec3(5, 0, 0))

	if fwd := cam.GetForward(); !fwd.ApproxEqual(math.Vec3Front, 0.0001) {
		t.Errorf("expected forward %v, got %v", math.Vec3Front, fwd)
	}
}

func TestLineBuilderBox(t *testing.T) {
	var lb LineBuilder
	lb.AddBox(math.AABB{Min: math.Vec3Zero, Max: math.Vec3One}, core.ColorWhite)
	m := lb.Build("box")

	if lb.Len() != 12 {
		t.Errorf("expected 12 edges, got %d", lb.Len())
	}
	if m.DrawMode != DrawLines {
		t.Errorf("expected DrawLines, got %v", m.DrawMode)
	}
	if !m.HasLocalAABB || m.LocalAABB.Max != math.Vec3One {
		t.Errorf("expected cached bounds, got %+v", m.LocalAABB)
	}
}

func TestAABBModelMatrix(t *testing.T) {
	box := math.AABB{Min: math.NewVec3(2, 2, 2), Max: math.NewVec3(4, 6, 8)}
	m := AABBModelMatrix(box)

	if got := m.MulVec3(math.Vec3One); !got.ApproxEqual(box.Max, 0.0001) {
		t.Errorf("expected %v, got %v", box.Max, got)
	}
	if got := m.MulVec3(math.Vec3One.Negate()); !got.ApproxEqual(box.Min, 0.0001) {
		t.Errorf("expected %v, got %v", box.Min, got)
	}
}

func TestCameraPath(t *testing.T) {
	path := NewCameraPath([]math.Vec3{{}, {X: 10}, {X: 10, Z: 10}}, 1, nil)

	pos, done := path.Update(0.5)
	if done || !pos.ApproxEqual(math.Vec3{X: 5}, 1e-4) {
		t.Errorf("expected (5,0,0) mid first segment, got %v done=%v", pos, done)
	}
	pos, done = path.Update(0.5)
	if done || !pos.ApproxEqual(math.Vec3{X: 10}, 1e-4) {
		t.Errorf("expected (10,0,0) at the corner, got %v done=%v", pos, done)
	}
	path.Update(0.25)
	pos, done = path.Update(0.75)
	if !done || !pos.ApproxEqual(math.Vec3{X: 10, Z: 10}, 1e-4) {
		t.Errorf("expected the end point and done, got %v done=%v", pos, done)
	}
	if pos, done = path.Update(1); !done || pos.Z != 10 {
		t.Errorf("expected to stay at the end, got %v done=%v", pos, done)
	}
}

func TestCameraPathLoop(t *testing.T) {
	path := NewCameraPath([]math.Vec3{{}, {X: 4}}, 1, nil)
	path.Loop = true
	path.Update(1)
	pos, done := path.Update(0.25)
	if done || !pos.ApproxEqual(math.Vec3{X: 1}, 1e-4) {
		t.Errorf("expected to restart the loop at (1,0,0), got %v done=%v", pos, done)
	}
}

func TestScreenRay(t *testing.T) {
	cam := NewCamera(stdmath.Pi/2, 2, 0.1, 100)
	cam.SetPosition(math.Vec3{Y: 1})
	cam.LookAt(math.Vec3{Y: 1, Z: -10}, math.Vec3Up)

	center := cam.ScreenRay(50, 25, 100, 50)
	if !center.Direction.ApproxEqual(math.Vec3Back, 1e-5) {
		t.Errorf("Expected centre ray along -z, got %v", center.Direction)
	}
	if center.Origin != cam.Position {
		t.Errorf("Expected origin %v, got %v", cam.Position, center.Origin)
	}

	// the right edge of a 90 degree, 2:1 view is at x = 2 for z = -1
	edge := cam.ScreenRay(100, 25, 100, 50)
	want := math.Vec3{X: 2, Z: -1}.Normalize()
	if !edge.Direction.ApproxEqual(want, 1e-5) {
		t.Errorf("Expected right edge ray %v, got %v", want, edge.Direction)
	}

	// and the projection agrees: a point on the edge ray lands on x = +1 in NDC
	p := edge.At(10).ToVec4(1).MulMat(cam.GetViewProjectionMatrix())
	if got := p.X / p.W; stdmath.Abs(float64(got-1)) > 1e-4 {
		t.Errorf("Expected NDC x = 1, got %v", got)
	}
}
