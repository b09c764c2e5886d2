package occluder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"occlusion-engine/core"
	"occlusion-engine/math"
)

// ── JSON data structures ──────────────────────────────────────────────────────

type vec3JSON struct {
	X, Y, Z float32
}

type transformJSON struct {
	Position vec3JSON
	Scale    vec3JSON
	// Quaternion stored as (X, Y, Z, W)
	RotX, RotY, RotZ, RotW float32
}

type sphereJSON struct {
	Center vec3JSON
	Radius float32
}

type polyJSON struct {
	Verts []vec3JSON
	Holes [][]vec3JSON `json:",omitempty"`
}

type instanceJSON struct {
	Name      string
	Type      string
	Active    bool
	Transform transformJSON
	Spheres   []sphereJSON `json:",omitempty"`
	Polys     []polyJSON   `json:",omitempty"`
}

type setJSON struct {
	Version   int
	Occluders []instanceJSON
}

const setVersion = 1

// ── Save ──────────────────────────────────────────────────────────────────────

// SaveSet writes every live instance of pool, in local space, to a JSON file.
func SaveSet(pool *Pool, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write occluder set %q: %w", path, err)
	}
	if err := WriteSet(f, pool); err != nil {
		f.Close()
		return fmt.Errorf("write occluder set %q: %w", path, err)
	}
	return f.Close()
}

// WriteSet encodes pool as indented JSON.
func WriteSet(w io.Writer, pool *Pool) error {
	js := setJSON{Version: setVersion}
	for _, id := range pool.IDs() {
		js.Occluders = append(js.Occluders, instanceToJSON(pool.Instance(id)))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(js); err != nil {
		return fmt.Errorf("marshal occluder set: %w", err)
	}
	return nil
}

// ── Load ──────────────────────────────────────────────────────────────────────

// LoadSet reads a file written by SaveSet and adds its instances to pool,
// returning the new ids in file order.
func LoadSet(pool *Pool, path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read occluder set %q: %w", path, err)
	}
	defer f.Close()

	ids, err := ReadSet(pool, f)
	if err != nil {
		return nil, fmt.Errorf("read occluder set %q: %w", path, err)
	}
	return ids, nil
}

// ReadSet decodes a JSON occluder set from r into pool.
func ReadSet(pool *Pool, r io.Reader) ([]int, error) {
	var js setJSON
	if err := json.NewDecoder(r).Decode(&js); err != nil {
		return nil, fmt.Errorf("unmarshal occluder set: %w", err)
	}
	if js.Version != setVersion {
		return nil, fmt.Errorf("unsupported occluder set version %d", js.Version)
	}

	// validate everything before touching the pool
	type pending struct {
		ij    instanceJSON
		polys []Poly
	}
	items := make([]pending, 0, len(js.Occluders))
	for i, ij := range js.Occluders {
		p := pending{ij: ij}
		switch ij.Type {
		case TypeSpheres.String():
		case TypePolys.String():
			for j, pj := range ij.Polys {
				poly, err := jsonToPoly(pj)
				if err != nil {
					return nil, fmt.Errorf("occluder %d (%s) poly %d: %w", i, ij.Name, j, err)
				}
				p.polys = append(p.polys, poly)
			}
		default:
			return nil, fmt.Errorf("occluder %d (%s): unknown type %q", i, ij.Name, ij.Type)
		}
		items = append(items, p)
	}

	ids := make([]int, 0, len(items))
	for _, p := range items {
		xform := jsonToTransform(p.ij.Transform)
		var id int
		if p.ij.Type == TypeSpheres.String() {
			spheres := make([]Sphere, len(p.ij.Spheres))
			for i, sj := range p.ij.Spheres {
				spheres[i] = Sphere{Center: jsonToVec3(sj.Center), Radius: sj.Radius}
			}
			id = pool.AddSpheres(p.ij.Name, spheres, xform)
		} else {
			id = pool.AddPolys(p.ij.Name, p.polys, xform)
		}
		pool.SetActive(id, p.ij.Active)
		ids = append(ids, id)
	}
	return ids, nil
}

// ── conversion helpers ────────────────────────────────────────────────────────

func vec3ToJSON(v math.Vec3) vec3JSON { return vec3JSON{v.X, v.Y, v.Z} }
func jsonToVec3(v vec3JSON) math.Vec3 { return math.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func vertsToJSON(vs []math.Vec3) []vec3JSON {
	out := make([]vec3JSON, len(vs))
	for i, v := range vs {
		out[i] = vec3ToJSON(v)
	}
	return out
}

func jsonToVerts(vs []vec3JSON) []math.Vec3 {
	out := make([]math.Vec3, len(vs))
	for i, v := range vs {
		out[i] = jsonToVec3(v)
	}
	return out
}

func transformToJSON(t core.Transform) transformJSON {
	return transformJSON{
		Position: vec3ToJSON(t.Position),
		Scale:    vec3ToJSON(t.Scale),
		RotX:     t.Rotation.X,
		RotY:     t.Rotation.Y,
		RotZ:     t.Rotation.Z,
		RotW:     t.Rotation.W,
	}
}

func jsonToTransform(tj transformJSON) core.Transform {
	t := core.NewTransform()
	t.Position = jsonToVec3(tj.Position)
	t.Scale = jsonToVec3(tj.Scale)
	t.Rotation = math.Quaternion{X: tj.RotX, Y: tj.RotY, Z: tj.RotZ, W: tj.RotW}
	if t.Rotation == (math.Quaternion{}) {
		t.Rotation = math.QuaternionIdentity()
	}
	return t
}

func polyToJSON(p Poly) polyJSON {
	pj := polyJSON{Verts: vertsToJSON(p.Verts)}
	for _, h := range p.Holes {
		pj.Holes = append(pj.Holes, vertsToJSON(h.Verts))
	}
	return pj
}

func jsonToPoly(pj polyJSON) (Poly, error) {
	holes := make([]Poly, len(pj.Holes))
	for i, h := range pj.Holes {
		holes[i] = HoleFromVerts(jsonToVerts(h)...)
	}
	return NewPoly(jsonToVerts(pj.Verts), holes...)
}

func instanceToJSON(inst *Instance) instanceJSON {
	ij := instanceJSON{
		Name:      inst.Name,
		Type:      inst.Type.String(),
		Active:    inst.Active,
		Transform: transformToJSON(inst.Transform),
	}
	for _, s := range inst.localSpheres {
		ij.Spheres = append(ij.Spheres, sphereJSON{Center: vec3ToJSON(s.Center), Radius: s.Radius})
	}
	for _, p := range inst.localPolys {
		ij.Polys = append(ij.Polys, polyToJSON(p))
	}
	return ij
}
