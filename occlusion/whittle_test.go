package occlusion

import (
	"testing"

	"occlusion-engine/math"
	"occlusion-engine/occluder"
)

func TestWhittleIdenticalPolys(t *testing.T) {
	pool := occluder.NewPool()
	first := addWall(pool, "a", rect(-5, 5, -5, 5, 10))
	addWall(pool, "b", rect(-5, 5, -5, 5, 10))
	c, diag := prepared(t, pool, DefaultConfig())

	polys := c.ActivePolys()
	if len(polys) != 1 {
		t.Fatalf("Expected exactly one of two identical polys to survive, got %d", len(polys))
	}
	if polys[0].ID != first {
		t.Errorf("Expected the first poly (id %d) to survive, got id %d", first, polys[0].ID)
	}
	if diag.Stats.PolysWhittled != 1 {
		t.Errorf("Expected 1 whittled, got %d", diag.Stats.PolysWhittled)
	}
}

func TestWhittleContained(t *testing.T) {
	tests := []struct {
		name string
		z    float32
	}{
		{"coplanar", 10},
		{"behind", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := occluder.NewPool()
			big := addWall(pool, "big", rect(-5, 5, -5, 5, 10))
			addWall(pool, "small", rect(-0.5, 0.5, -0.5, 0.5, tt.z))
			c, _ := prepared(t, pool, DefaultConfig())

			polys := c.ActivePolys()
			if len(polys) != 1 || polys[0].ID != big {
				t.Errorf("Expected only the big poly to remain, got %+v", polys)
			}
		})
	}
}

func TestWhittleKeepsPolyBehindHole(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "window", rect(-5, 5, -5, 5, 10), occluder.HoleFromVerts(rect(-1, 1, -1, 1, 10)...))
	pane := addWall(pool, "pane", rect(-1, 1, -1, 1, 10))
	c, _ := prepared(t, pool, DefaultConfig())

	polys := c.ActivePolys()
	if len(polys) != 2 {
		t.Fatalf("Expected both polys to remain, got %d", len(polys))
	}
	if polys[1].ID != pane {
		t.Errorf("Expected pane to remain, got id %d", polys[1].ID)
	}
}

func TestWhittleKeepsPolyPartlyBehindHole(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "window", rect(-5, 5, -5, 5, 10), occluder.HoleFromVerts(rect(-1, 1, -1, 1, 10)...))
	addWall(pool, "behind", rect(0, 2, 0, 2, 20))
	c, _ := prepared(t, pool, DefaultConfig())

	if n := len(c.ActivePolys()); n != 2 {
		t.Errorf("Expected a poly seen through the hole to remain, got %d polys", n)
	}
}

func TestWhittleRemovesPolyClearOfHole(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "window", rect(-5, 5, -5, 5, 10), occluder.HoleFromVerts(rect(-1, 1, -1, 1, 10)...))
	addWall(pool, "behind", rect(4, 6, 4, 6, 20))
	c, _ := prepared(t, pool, DefaultConfig())

	if n := len(c.ActivePolys()); n != 1 {
		t.Errorf("Expected the poly hidden clear of the hole to be removed, got %d polys", n)
	}
}

func TestWhittleDropsHiddenHole(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "front", rect(-5, 5, -5, 5, 10))
	back := addWall(pool, "back", rect(-20, 20, -20, 20, 20), occluder.HoleFromVerts(rect(-2, 2, -2, 2, 20)...))
	c, diag := prepared(t, pool, DefaultConfig())

	polys := c.ActivePolys()
	if len(polys) != 2 {
		t.Fatalf("Expected both polys to remain, got %d", len(polys))
	}
	for _, p := range polys {
		if p.ID == back && len(p.Holes) != 0 {
			t.Errorf("Expected the back poly's hole to be dropped")
		}
	}
	if diag.Stats.HolesDropped != 1 {
		t.Errorf("Expected 1 hole dropped, got %d", diag.Stats.HolesDropped)
	}
	// behind the dropped hole and beside the front wall's shadow
	if !c.CullSphere(math.Vec3{X: 15, Z: 30}, 0.1, NoIgnore) {
		t.Errorf("Expected sphere behind the back wall to be culled")
	}
}

func TestWhittleKeepsVisibleHole(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "front", rect(-5, 5, -5, 5, 10))
	addWall(pool, "back", rect(-20, 20, -20, 20, 20), occluder.HoleFromVerts(rect(8, 12, -2, 2, 20)...))
	c, diag := prepared(t, pool, DefaultConfig())

	if diag.Stats.HolesDropped != 0 {
		t.Errorf("Expected the visible hole to be kept")
	}
	if c.CullSphere(math.Vec3{X: 15, Z: 30}, 0.1, NoIgnore) {
		t.Errorf("Expected sphere seen through the hole to be visible")
	}
}

func TestWhittleKeepsHoleReachingPastShadowEdge(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "front", rect(-5, 5, -5, 5, 10))
	// the front wall's shadow ends at x = 10 on the back wall; the hole
	// pokes a sliver past it
	addWall(pool, "back", rect(-20, 20, -20, 20, 20), occluder.HoleFromVerts(rect(9, 10.0001, -1, 1, 20)...))
	c, diag := prepared(t, pool, DefaultConfig())

	if diag.Stats.HolesDropped != 0 {
		t.Errorf("Expected the hole to be kept, got %d dropped", diag.Stats.HolesDropped)
	}
	if c.CullSphere(math.Vec3{X: 20.0001, Z: 40}, 0, NoIgnore) {
		t.Errorf("Expected point seen through the hole sliver to be visible")
	}
}

func TestSkipWhittle(t *testing.T) {
	pool := occluder.NewPool()
	addWall(pool, "a", rect(-5, 5, -5, 5, 10))
	addWall(pool, "b", rect(-1, 1, -1, 1, 20))
	c := newCuller(t, DefaultConfig())
	c.Prepare(pool, pool.IDs(), testView(), &Diagnostics{SkipWhittle: true})
	if n := len(c.ActivePolys()); n != 2 {
		t.Errorf("Expected 2 polys with whittling off, got %d", n)
	}
}

func TestWhittleKeepsOrder(t *testing.T) {
	pool := occluder.NewPool()
	a := addWall(pool, "a", rect(-5, -1, -3, 3, 10))
	addWall(pool, "hidden", rect(-4, -2, -1, 1, 20))
	b := addWall(pool, "b", rect(1, 5, -3, 3, 10))
	d := addWall(pool, "d", rect(-3, 3, 4, 5, 10))
	c, _ := prepared(t, pool, DefaultConfig())

	polys := c.ActivePolys()
	want := []int{a, b, d}
	if len(polys) != len(want) {
		t.Fatalf("Expected %d polys, got %d", len(want), len(polys))
	}
	for i, p := range polys {
		if p.ID != want[i] {
			t.Errorf("poly %d: expected id %d, got %d", i, want[i], p.ID)
		}
	}
}
