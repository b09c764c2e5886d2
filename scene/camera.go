package scene

import (
	stdmath "math"

	"occlusion-engine/math"
)

// Camera is a look-at perspective camera.
type Camera struct {
	Position    math.Vec3
	Target      math.Vec3
	Up          math.Vec3
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
	viewProjMatrix   math.Mat4
	frustum          Frustum
	dirty            bool
}

// NewCamera returns a camera at the origin looking down -Z.
func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    math.Vec3Zero,
		Target:      math.Vec3Back,
		Up:          math.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos math.Vec3) {
	// keep the viewing direction
	c.Target = c.Target.Add(pos.Sub(c.Position))
	c.Position = pos
	c.dirty = true
}

func (c *Camera) LookAt(target, up math.Vec3) {
	c.Target = target
	c.Up = up
	c.dirty = true
}

func (c *Camera) GetForward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	c.update()
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	c.update()
	return c.projectionMatrix
}

// GetViewProjectionMatrix maps world points to homogeneous clip space:
// clip = p.ToVec4(1).MulMat(vp).
func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	c.update()
	return c.viewProjMatrix
}

// GetFrustum returns the world-space frustum planes, normals pointing inward.
func (c *Camera) GetFrustum() Frustum {
	c.update()
	return c.frustum
}

func (c *Camera) update() {
	if !c.dirty {
		return
	}
	c.viewMatrix = math.Mat4LookAt(c.Position, c.Target, c.Up)
	c.projectionMatrix = math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.frustum = FrustumFromVP(c.viewProjMatrix)
	c.dirty = false
}

// OrbitCamera circles a target at a fixed distance.
type OrbitCamera struct {
	Camera
	Distance float32
	Yaw      float32
	Pitch    float32
	center   math.Vec3
}

func NewOrbitCamera(target math.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Camera:   *NewCamera(fov, aspectRatio, 0.1, 1000.0),
		Distance: distance,
		Pitch:    0.3,
		center:   target,
	}
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = max(-1.5, min(1.5, c.Pitch))

	cosPitch := cos32(c.Pitch)
	offset := math.Vec3{
		X: c.Distance * cosPitch * sin32(c.Yaw),
		Y: c.Distance * sin32(c.Pitch),
		Z: c.Distance * cosPitch * cos32(c.Yaw),
	}

	c.Position = c.center.Add(offset)
	c.LookAt(c.center, math.Vec3Up)
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = max(0.1, c.Distance+delta)
	c.UpdatePosition()
}

func sin32(a float32) float32 { return float32(stdmath.Sin(float64(a))) }
func cos32(a float32) float32 { return float32(stdmath.Cos(float64(a))) }

// ScreenRay returns the world-space ray through pixel (x, y) of a
// width×height viewport, y growing downward.
func (c *Camera) ScreenRay(x, y, width, height float32) math.Ray {
	ndcX := 2*x/width - 1
	ndcY := 1 - 2*y/height

	forward := c.GetForward()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)
	tanHalf := float32(stdmath.Tan(float64(c.FOV) / 2))

	dir := forward.
		Add(right.Mul(ndcX * tanHalf * c.AspectRatio)).
		Add(up.Mul(ndcY * tanHalf))
	return math.Ray{Origin: c.Position, Direction: dir.Normalize()}
}
