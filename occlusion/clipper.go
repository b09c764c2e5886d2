package occlusion

import "occlusion-engine/math"

const clipEpsilon = 1e-6

// Clipper clips convex polygons in homogeneous clip space and measures the
// projected area of what survives. The zero value is ready to use; its
// scratch buffers are reused between calls.
type Clipper struct {
	a, b   []math.Vec4
	screen []math.Vec2
}

// boundary returns the signed distance of p to one of the six canonical
// half-spaces; non-negative means inside.
func boundary(p math.Vec4, side int) float32 {
	switch side {
	case 0:
		return p.W - p.X
	case 1:
		return p.W + p.X
	case 2:
		return p.W - p.Y
	case 3:
		return p.W + p.Y
	case 4:
		return p.W - p.Z
	default:
		return p.W + p.Z
	}
}

// ClipAndFindPolyArea clips pts against -w <= x,y,z <= w and returns the
// area of the result after the perspective divide, in normalized device
// units (the whole screen is 4). Polygons that clip away entirely return 0.
func (c *Clipper) ClipAndFindPolyArea(pts []math.Vec4) float32 {
	if len(pts) < 3 {
		return 0
	}
	c.a = append(c.a[:0], pts...)
	for side := 0; side < 6; side++ {
		c.b = clipSide(c.a, c.b[:0], side)
		c.a, c.b = c.b, c.a
		if len(c.a) < 3 {
			return 0
		}
	}

	c.screen = c.screen[:0]
	for _, p := range c.a {
		if p.W < clipEpsilon {
			return 0
		}
		c.screen = append(c.screen, math.Vec2{X: p.X / p.W, Y: p.Y / p.W})
	}
	return math.PolygonArea(c.screen)
}

// clipSide is one Sutherland-Hodgman stage.
func clipSide(in, out []math.Vec4, side int) []math.Vec4 {
	prev := in[len(in)-1]
	dPrev := boundary(prev, side)
	for _, cur := range in {
		d := boundary(cur, side)
		if (dPrev >= 0) != (d >= 0) {
			if denom := dPrev - d; math.Abs(denom) > clipEpsilon {
				out = append(out, prev.Lerp(cur, dPrev/denom))
			}
		}
		if d >= 0 {
			out = append(out, cur)
		}
		prev, dPrev = cur, d
	}
	return out
}
