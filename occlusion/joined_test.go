package occlusion

import (
	"testing"

	"occlusion-engine/math"
	"occlusion-engine/occluder"
)

// failingEdge returns the only edge plane of poly i the sphere is not
// inside, or -1.
func failingEdge(c *Culler, i int, center math.Vec3, radius float32) int {
	failed := -1
	for k, e := range c.planesOf(c.polys[i].edges) {
		if e.DistanceTo(center) > -radius {
			if failed >= 0 {
				return -1
			}
			failed = k
		}
	}
	return failed
}

func TestJoinedEdges(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "left", rect(-5, 0, -5, 5, 10))
	addWall(pool, "right", rect(0, 5, -5, 5, 10))
	c, _ := prepared(t, pool, DefaultConfig())
	if len(c.polys) != 2 {
		t.Fatalf("Expected 2 active polys, got %d", len(c.polys))
	}

	// straddles the shared edge
	center, radius := math.Vec3{Z: 20}, float32(0.5)
	k := failingEdge(c, 0, center, radius)
	if k < 0 {
		t.Fatalf("Expected exactly one failing edge")
	}
	if !c.joinedOccludes(0, k, center, radius, NoIgnore) {
		t.Errorf("Expected the two halves to hide the sphere together")
	}
	if c.joinedOccludes(0, k, center, radius, 1) {
		t.Errorf("Expected ignoring the other half to stop the join")
	}

	if got := c.CullSphere(center, radius, NoIgnore); got != joinEdges {
		t.Errorf("Expected CullSphere = %v with joinEdges %v, got %v", joinEdges, joinEdges, got)
	}
}

func TestJoinedEdgesNeedSharedEdge(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "left", rect(-5, 0, -5, 5, 10))
	addWall(pool, "right", rect(0.5, 5, -5, 5, 10))
	c, _ := prepared(t, pool, DefaultConfig())

	center, radius := math.Vec3{Z: 20}, float32(0.5)
	k := failingEdge(c, 0, center, radius)
	if k < 0 {
		t.Fatalf("Expected exactly one failing edge")
	}
	if c.joinedOccludes(0, k, center, radius, NoIgnore) {
		t.Errorf("Expected no join across a gap")
	}
	if c.CullSphere(center, radius, NoIgnore) {
		t.Errorf("Expected sphere seen through the gap to be visible")
	}
}

func TestJoinedEdgesRejectFold(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "base", rect(-5, 0, -5, 5, 10))
	// shares the x = 0 edge but folds back over the base
	addWall(pool, "flap", []math.Vec3{
		{X: 0, Y: -5, Z: 10},
		{X: 0, Y: 5, Z: 10},
		{X: -2, Y: 5, Z: 14},
		{X: -2, Y: -5, Z: 14},
	})
	// the flap is inside the base's shadow, so keep whittling from removing it
	c := newCuller(t, DefaultConfig())
	c.Prepare(pool, pool.IDs(), testView(), &Diagnostics{SkipWhittle: true})
	if len(c.polys) != 2 {
		t.Fatalf("Expected 2 active polys, got %d", len(c.polys))
	}

	center, radius := math.Vec3{Z: 20}, float32(0.5)
	k := failingEdge(c, 0, center, radius)
	if k < 0 {
		t.Fatalf("Expected exactly one failing edge")
	}
	if c.joinedOccludes(0, k, center, radius, NoIgnore) {
		t.Errorf("Expected no join when both polys are on the same side of the edge")
	}
}
