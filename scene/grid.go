package scene

import (
	"occlusion-engine/core"
	"occlusion-engine/math"
)

// CreateGrid builds a flat grid on the XZ plane rendered as GL_LINES.
//
//	size:      total world-space extent (grid goes from -size/2 to +size/2)
//	divisions: number of cells along each axis
//
// The X-axis centre line is red, the Z-axis centre line is blue,
// and all other lines are dark gray.
func CreateGrid(size float32, divisions int) *Mesh {
	if divisions < 1 {
		divisions = 1
	}

	half := size / 2.0
	step := size / float32(divisions)

	gray := core.Color{R: 0.35, G: 0.35, B: 0.35, A: 1}
	red := core.Color{R: 0.8, G: 0.15, B: 0.15, A: 1}
	blue := core.Color{R: 0.15, G: 0.35, B: 0.9, A: 1}

	var lb LineBuilder
	for i := 0; i <= divisions; i++ {
		v := -half + float32(i)*step
		cz, cx := gray, gray
		if i == divisions/2 {
			cz, cx = blue, red
		}
		lb.AddLine(math.Vec3{X: v, Z: -half}, math.Vec3{X: v, Z: half}, cz)
		lb.AddLine(math.Vec3{X: -half, Z: v}, math.Vec3{X: half, Z: v}, cx)
	}
	return lb.Build("Grid")
}

// AddBox appends the twelve edges of box.
func (lb *LineBuilder) AddBox(box math.AABB, c core.Color) {
	mn, mx := box.Min, box.Max
	corners := [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
	}
	lb.AddLoop(corners[:4], c)
	lb.AddLoop(corners[4:], c)
	for i := 0; i < 4; i++ {
		lb.AddLine(corners[i], corners[i+4], c)
	}
}

// CreateUnitBoxWireframe creates a unit cube wireframe mesh (corners at ±1, all axes).
// Used as a reusable AABB visualizer: supply a model matrix that scales and
// translates the cube to match the desired bounding box.
func CreateUnitBoxWireframe() *Mesh {
	var lb LineBuilder
	lb.AddBox(math.AABB{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3One}, core.ColorWhite)
	return lb.Build("UnitBoxWireframe")
}

// AABBModelMatrix maps the unit wireframe cube onto box.
func AABBModelMatrix(box math.AABB) math.Mat4 {
	half := box.Size().Mul(0.5)
	return math.Mat4Scale(half).Mul(math.Mat4Translation(box.Center()))
}
