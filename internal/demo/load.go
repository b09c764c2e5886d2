package demo

import (
	"errors"
	"fmt"
	stdmath "math"

	"occlusion-engine/core"
	"occlusion-engine/math"
	"occlusion-engine/occluder"
)

// ErrNoSource is returned by Load when no file is named or the files hold
// no occluders.
var ErrNoSource = errors.New("demo: no occluders to load")

const orbitPoints = 8

// Files names the occluder sources merged into one scene. Empty fields are
// skipped.
type Files struct {
	Set  string // JSON occluder set
	OBJ  string
	GLTF string // .gltf or .glb
}

// Load builds a scene from occluder files. The occludees are a grid×grid
// lattice of boxes spread over the bounds and the path orbits the bounds at
// twice their radius.
func Load(files Files, grid int) (*Scene, error) {
	s := &Scene{Pool: occluder.NewPool()}

	if files.Set != "" {
		ids, err := occluder.LoadSet(s.Pool, files.Set)
		if err != nil {
			return nil, err
		}
		s.IDs = append(s.IDs, ids...)
	}
	if files.OBJ != "" {
		groups, err := occluder.LoadOBJ(files.OBJ)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			if len(g.Polys) > 0 {
				s.IDs = append(s.IDs, s.Pool.AddPolys(g.Name, g.Polys, core.NewTransform()))
			}
		}
	}
	if files.GLTF != "" {
		res, err := occluder.LoadGLTF(files.GLTF)
		if err != nil {
			return nil, err
		}
		if len(res.Polys) > 0 {
			s.IDs = append(s.IDs, s.Pool.AddPolys("gltf", res.Polys, core.NewTransform()))
		}
		if len(res.Spheres) > 0 {
			s.IDs = append(s.IDs, s.Pool.AddSpheres("gltf_spheres", res.Spheres, core.NewTransform()))
		}
	}
	if len(s.IDs) == 0 {
		return nil, ErrNoSource
	}

	for i, id := range s.IDs {
		s.Pool.EnsureUpToDate(id)
		box := s.Pool.Instance(id).AABB()
		if i == 0 {
			s.Bounds = box
		} else {
			s.Bounds = s.Bounds.Union(box)
		}
	}
	s.Occludees = lattice(s.Bounds, max(grid, 1))
	s.Path = orbit(s.Bounds)
	return s, nil
}

func lattice(bounds math.AABB, grid int) []math.AABB {
	size := bounds.Size()
	half := max(max(size.X, size.Z)/float32(grid*8), 0.25)
	y := bounds.Center().Y
	out := make([]math.AABB, 0, grid*grid)
	for i := 0; i < grid; i++ {
		for j := 0; j < grid; j++ {
			c := math.Vec3{
				X: bounds.Min.X + (float32(i)+0.5)*size.X/float32(grid),
				Y: y,
				Z: bounds.Min.Z + (float32(j)+0.5)*size.Z/float32(grid),
			}
			ext := math.Vec3{X: half, Y: half, Z: half}
			out = append(out, math.AABB{Min: c.Sub(ext), Max: c.Add(ext)})
		}
	}
	return out
}

// orbit returns a closed ring of points around bounds.
func orbit(bounds math.AABB) []math.Vec3 {
	center := bounds.Center()
	radius := max(bounds.Size().Length(), 1)
	pts := make([]math.Vec3, 0, orbitPoints+1)
	for i := 0; i <= orbitPoints; i++ {
		a := float64(i%orbitPoints) * 2 * stdmath.Pi / orbitPoints
		pts = append(pts, math.Vec3{
			X: center.X + radius*float32(stdmath.Cos(a)),
			Y: center.Y,
			Z: center.Z + radius*float32(stdmath.Sin(a)),
		})
	}
	return pts
}

// String summarises the scene for logs.
func (s *Scene) String() string {
	return fmt.Sprintf("%d occluders, %d occludees, bounds %v..%v",
		len(s.IDs), len(s.Occludees), s.Bounds.Min, s.Bounds.Max)
}
