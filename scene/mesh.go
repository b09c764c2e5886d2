package scene

import (
	"occlusion-engine/core"
	"occlusion-engine/math"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // gl.TRIANGLES (default)
	DrawLines                     // gl.LINES, pairs of indices form line segments
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    math.AABB
	HasLocalAABB bool

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		pts := make([]math.Vec3, len(vertices))
		for i, v := range vertices {
			pts[i] = v.Position
		}
		m.LocalAABB = math.AABBFromPoints(pts)
		m.HasLocalAABB = true
	}
	return m
}

// LineBuilder accumulates colored line segments into a DrawLines mesh.
type LineBuilder struct {
	vertices []core.Vertex
	indices  []uint32
}

// AddLine appends the segment a-b.
func (lb *LineBuilder) AddLine(a, b math.Vec3, c core.Color) {
	base := uint32(len(lb.vertices))
	lb.vertices = append(lb.vertices,
		core.Vertex{Position: a, Color: c},
		core.Vertex{Position: b, Color: c},
	)
	lb.indices = append(lb.indices, base, base+1)
}

// AddLoop appends a closed outline through pts.
func (lb *LineBuilder) AddLoop(pts []math.Vec3, c core.Color) {
	for i := range pts {
		lb.AddLine(pts[i], pts[(i+1)%len(pts)], c)
	}
}

// Len returns the number of segments added so far.
func (lb *LineBuilder) Len() int {
	return len(lb.indices) / 2
}

// Build returns the accumulated segments as a line mesh.
func (lb *LineBuilder) Build(name string) *Mesh {
	m := CreateMeshFromData(name, lb.vertices, lb.indices)
	m.DrawMode = DrawLines
	return m
}
