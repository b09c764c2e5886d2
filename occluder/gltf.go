package occluder

import (
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"occlusion-engine/core"
	"occlusion-engine/math"
)

// SpherePrefix marks glTF nodes that describe a sphere occluder rather than
// polygon geometry. The node's world position is the centre and its smallest
// world scale the radius, so a unit sphere mesh can be used as a stand-in.
const SpherePrefix = "occluder_sphere"

// GLTFResult holds the occluders found in a .glb / .gltf file, already in
// world space.
type GLTFResult struct {
	Polys   []Poly
	Spheres []Sphere
}

// LoadGLTF opens a .glb or .gltf file and converts its triangle meshes into
// polygon occluders, one per triangle, with node transforms applied.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return convertGLTF(doc)
}

func convertGLTF(doc *gltf.Document) (*GLTFResult, error) {
	result := &GLTFResult{}
	log := Logger()

	var roots []int
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		roots = doc.Scenes[*doc.Scene].Nodes
	} else {
		// No default scene: collect all parentless nodes
		hasParent := make([]bool, len(doc.Nodes))
		for _, gn := range doc.Nodes {
			for _, c := range gn.Children {
				if c < len(hasParent) {
					hasParent[c] = true
				}
			}
		}
		for i := range doc.Nodes {
			if !hasParent[i] {
				roots = append(roots, i)
			}
		}
	}

	var visit func(idx int, parent math.Mat4, depth int) error
	visit = func(idx int, parent math.Mat4, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node %d: cyclic hierarchy", idx)
		}
		gn := doc.Nodes[idx]
		xform := nodeTransform(gn)
		world := xform.GetMatrix().Mul(parent)

		if strings.HasPrefix(gn.Name, SpherePrefix) {
			result.Spheres = append(result.Spheres, Sphere{
				Center: world.MulVec3(math.Vec3Zero),
				// inscribed in the node's ellipsoid
				Radius: min(
					world.MulDir(math.Vec3Right).Length(),
					world.MulDir(math.Vec3Up).Length(),
					world.MulDir(math.Vec3Front).Length(),
				),
			})
		} else if gn.Mesh != nil && *gn.Mesh < len(doc.Meshes) {
			for pi, prim := range doc.Meshes[*gn.Mesh].Primitives {
				polys, err := primitivePolys(doc, prim, world)
				if err != nil {
					log.Warn("gltf: skipping primitive", "node", gn.Name, "prim", pi, "err", err)
					continue
				}
				result.Polys = append(result.Polys, polys...)
			}
		}

		for _, c := range gn.Children {
			if err := visit(c, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range roots {
		if err := visit(r, math.Mat4Identity(), 0); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func nodeTransform(gn *gltf.Node) core.Transform {
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()
	return core.Transform{
		Position: math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		Rotation: math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		Scale:    math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	}
}

// primitivePolys turns one triangle-list primitive into world-space polygons.
func primitivePolys(doc *gltf.Document, prim *gltf.Primitive, world math.Mat4) ([]Poly, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	polys := make([]Poly, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		var verts [3]math.Vec3
		for k := 0; k < 3; k++ {
			idx := indices[i+k]
			if int(idx) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range", idx)
			}
			p := positions[idx]
			verts[k] = world.MulVec3(math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		}
		poly, err := NewPoly(verts[:])
		if err != nil {
			// zero-area triangles are common in exported meshes
			continue
		}
		polys = append(polys, poly)
	}
	return polys, nil
}
