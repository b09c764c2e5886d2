// Package demo generates a procedural city block layout used by the
// occlusion tools when no occluder file is given.
package demo

import (
	"math/rand"

	"occlusion-engine/core"
	"occlusion-engine/math"
	"occlusion-engine/occluder"
)

const (
	cellSize     = 12 // street grid pitch
	buildingSize = 8  // footprint edge, leaving a 4 unit street
	eyeHeight    = 1.7
)

// Scene is a set of occluders in Pool and small boxes standing in for the
// objects a renderer would query. Path is a closed loop of camera positions
// through or around it.
type Scene struct {
	Pool      *occluder.Pool
	IDs       []int
	Occludees []math.AABB
	Bounds    math.AABB
	Path      []math.Vec3
}

// NewCity lays out blocks×blocks cells around the origin. Most cells hold a
// solid building, every fourth front wall gets a window hole and some cells
// hold a dome instead. The same seed always gives the same city.
// The camera path runs along the street ring at eye height.
func NewCity(blocks int, seed int64) *Scene {
	blocks = max(blocks, 1)
	rng := rand.New(rand.NewSource(seed))
	c := &Scene{Pool: occluder.NewPool()}

	half := float32(blocks*cellSize) / 2
	c.Bounds = math.AABB{
		Min: math.Vec3{X: -half, Y: 0, Z: -half},
		Max: math.Vec3{X: half, Y: 0, Z: half},
	}

	n := 0
	for i := 0; i < blocks; i++ {
		for j := 0; j < blocks; j++ {
			x0 := -half + float32(i*cellSize) + (cellSize-buildingSize)/2
			z0 := -half + float32(j*cellSize) + (cellSize-buildingSize)/2
			height := 6 + rng.Float32()*18
			c.Bounds.Max.Y = max(c.Bounds.Max.Y, height)

			switch {
			case rng.Intn(7) == 0:
				r := float32(buildingSize) / 2
				center := math.Vec3{X: x0 + r, Y: 0, Z: z0 + r}
				c.IDs = append(c.IDs, c.Pool.AddSpheres("dome", []occluder.Sphere{{Center: center, Radius: r}}, core.NewTransform()))
			default:
				box := math.AABB{
					Min: math.Vec3{X: x0, Y: 0, Z: z0},
					Max: math.Vec3{X: x0 + buildingSize, Y: height, Z: z0 + buildingSize},
				}
				polys := occluder.BoxPolys(box)
				if n%4 == 0 {
					polys = withWindow(polys, box)
				}
				c.IDs = append(c.IDs, c.Pool.AddPolys("building", polys, core.NewTransform()))
				n++
			}

			// one occludee on the street corner, one in the middle of the block
			c.Occludees = append(c.Occludees,
				smallBox(math.Vec3{X: x0 - 2, Z: z0 - 2}),
				smallBox(math.Vec3{X: x0 + buildingSize/2, Z: z0 + buildingSize/2}),
			)
		}
	}
	c.Path = streetLoop(half)
	return c
}

// withWindow replaces the +z face with one carrying a ground-floor hole.
func withWindow(polys []occluder.Poly, box math.AABB) []occluder.Poly {
	cx := (box.Min.X + box.Max.X) / 2
	z := box.Max.Z
	hole := occluder.HoleFromVerts(
		math.Vec3{X: cx - 1.5, Y: 1, Z: z},
		math.Vec3{X: cx + 1.5, Y: 1, Z: z},
		math.Vec3{X: cx + 1.5, Y: 4, Z: z},
		math.Vec3{X: cx - 1.5, Y: 4, Z: z},
	)
	for i, p := range polys {
		if p.Plane.Normal.Z > 0.5 {
			if withHole, err := occluder.NewPoly(p.Verts, hole); err == nil {
				polys[i] = withHole
			}
		}
	}
	return polys
}

func smallBox(base math.Vec3) math.AABB {
	return math.AABB{
		Min: math.Vec3{X: base.X - 0.5, Y: 0, Z: base.Z - 0.5},
		Max: math.Vec3{X: base.X + 0.5, Y: 2, Z: base.Z + 0.5},
	}
}

// streetLoop returns eye-height points in the margin just inside the
// city's outer edge.
func streetLoop(half float32) []math.Vec3 {
	edge := half - float32(cellSize-buildingSize)/4
	return []math.Vec3{
		{X: -edge, Y: eyeHeight, Z: -edge},
		{X: edge, Y: eyeHeight, Z: -edge},
		{X: edge, Y: eyeHeight, Z: edge},
		{X: -edge, Y: eyeHeight, Z: edge},
		{X: -edge, Y: eyeHeight, Z: -edge},
	}
}
