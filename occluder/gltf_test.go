package occluder

import (
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"occlusion-engine/math"
)

func testDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {2, 0, 0}})
	// the last triangle is degenerate
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 1, 3, 2, 0, 1, 4})
	doc.Meshes = []*gltf.Mesh{{
		Name: "wall",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "wall", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, 5}, Children: []int{2}},
		{Name: SpherePrefix + ".001", Translation: [3]float64{1, 2, 3}, Scale: [3]float64{2, 2, 2}},
		{Name: "wall child", Mesh: gltf.Index(0), Translation: [3]float64{10, 0, 0}},
	}
	doc.Scenes[0].Nodes = []int{0, 1}
	return doc
}

func TestConvertGLTF(t *testing.T) {
	res, err := convertGLTF(testDocument())
	if err != nil {
		t.Fatalf("convertGLTF: %v", err)
	}
	if len(res.Polys) != 4 {
		t.Fatalf("Expected 4 polys (2 per wall), got %d", len(res.Polys))
	}
	for i, p := range res.Polys[:2] {
		for _, v := range p.Verts {
			if math.Abs(v.Z-5) > eps {
				t.Errorf("poly %d: expected z 5, got %v", i, v)
			}
		}
	}
	// child inherits the parent's translation
	if v := res.Polys[2].Verts[0]; !v.ApproxEqual(math.Vec3{X: 10, Z: 5}, eps) {
		t.Errorf("Expected child vertex (10,0,5), got %v", v)
	}

	if len(res.Spheres) != 1 {
		t.Fatalf("Expected 1 sphere, got %d", len(res.Spheres))
	}
	s := res.Spheres[0]
	if !s.Center.ApproxEqual(math.Vec3{X: 1, Y: 2, Z: 3}, eps) || math.Abs(s.Radius-2) > eps {
		t.Errorf("Unexpected sphere %+v", s)
	}
}

func TestConvertGLTFBadNode(t *testing.T) {
	doc := testDocument()
	doc.Scenes[0].Nodes = []int{7}
	if _, err := convertGLTF(doc); err == nil {
		t.Errorf("Expected error for out of range node")
	}
}

func TestConvertGLTFStretchedSphere(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{
		{Name: SpherePrefix, Scale: [3]float64{2, 4, 3}},
	}
	doc.Scenes[0].Nodes = []int{0}

	res, err := convertGLTF(doc)
	if err != nil {
		t.Fatalf("convertGLTF: %v", err)
	}
	if len(res.Spheres) != 1 {
		t.Fatalf("Expected 1 sphere, got %d", len(res.Spheres))
	}
	if r := res.Spheres[0].Radius; math.Abs(r-2) > eps {
		t.Errorf("Expected the inscribed radius 2, got %f", r)
	}
}
