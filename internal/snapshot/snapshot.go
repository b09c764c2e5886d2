// Package snapshot draws a culler's active set from the camera's point of
// view into an image, for headless inspection of what the culler selected.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"occlusion-engine/math"
	"occlusion-engine/occlusion"
)

// minW keeps vertices behind or at the eye out of the projection.
const minW = 1e-3

var (
	Background  = color.RGBA{24, 24, 32, 255}
	FrontFill   = color.RGBA{40, 160, 60, 160}
	BackFill    = color.RGBA{170, 160, 40, 160}
	SphereFill  = color.RGBA{50, 80, 200, 160}
	CulledMark  = color.RGBA{220, 40, 40, 255}
	VisibleMark = color.RGBA{230, 230, 230, 255}
	TextColor   = color.RGBA{255, 255, 255, 255}
)

// Marker is an occludee position and the culler's verdict for it.
type Marker struct {
	Center math.Vec3
	Culled bool
}

// Options controls the output image.
type Options struct {
	Width, Height int
	// Lines are drawn top-left, one per line, e.g. frame stats.
	Lines []string
}

// Render draws the active polygons (holes cut out), the active spheres as
// screen-space squares and the markers.
func Render(c *occlusion.Culler, view occlusion.View, markers []Marker, opts Options) *image.RGBA {
	w, h := max(opts.Width, 1), max(opts.Height, 1)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	p := projector{m: view.ClipMatrix, w: float32(w), h: float32(h)}

	for _, poly := range c.ActivePolys() {
		fill := BackFill
		if poly.FacesCamera {
			fill = FrontFill
		}
		z := vector.NewRasterizer(w, h)
		if !p.addLoop(z, poly.Verts) {
			continue
		}
		z.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})

		// holes are punched back to the background
		for _, hole := range poly.Holes {
			hz := vector.NewRasterizer(w, h)
			if p.addLoop(hz, hole) {
				hz.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{})
			}
		}
	}

	for _, s := range c.ActiveSpheres() {
		cx, cy, ok := p.project(s.Center)
		if !ok {
			continue
		}
		// project a point on the sphere's silhouette to get a screen radius
		side := perpendicular(s.Center.Sub(view.Position)).Mul(s.Radius)
		ex, ey, ok := p.project(s.Center.Add(side))
		if !ok {
			continue
		}
		r := max(math.Sqrt((ex-cx)*(ex-cx)+(ey-cy)*(ey-cy)), 1)
		fillRect(img, cx-r, cy-r, cx+r, cy+r, SphereFill)
	}

	for _, m := range markers {
		x, y, ok := p.project(m.Center)
		if !ok {
			continue
		}
		col := VisibleMark
		if m.Culled {
			col = CulledMark
		}
		fillRect(img, x-2, y-2, x+2, y+2, col)
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(TextColor),
		Face: basicfont.Face7x13,
	}
	for i, line := range opts.Lines {
		d.Dot = fixed.P(4, 13*(i+1))
		d.DrawString(line)
	}
	return img
}

// WritePNG renders and saves the image to path.
func WritePNG(path string, c *occlusion.Culler, view occlusion.View, markers []Marker, opts Options) error {
	img := Render(c, view, markers, opts)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot %q: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("snapshot %q: %w", path, err)
	}
	return f.Close()
}

type projector struct {
	m    math.Mat4
	w, h float32
}

// project maps a world point to pixel coordinates. ok is false for points
// at or behind the eye.
func (p projector) project(v math.Vec3) (x, y float32, ok bool) {
	clip := v.ToVec4(1).MulMat(p.m)
	if clip.W < minW {
		return 0, 0, false
	}
	x = (clip.X/clip.W + 1) * 0.5 * p.w
	y = (1 - clip.Y/clip.W) * 0.5 * p.h
	return x, y, true
}

func (p projector) addLoop(z *vector.Rasterizer, verts []math.Vec3) bool {
	if len(verts) < 3 {
		return false
	}
	for i, v := range verts {
		x, y, ok := p.project(v)
		if !ok {
			return false
		}
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	return true
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 float32, col color.RGBA) {
	r := image.Rect(int(x0), int(y0), int(x1)+1, int(y1)+1).Intersect(img.Bounds())
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// perpendicular returns a unit vector at right angles to dir.
func perpendicular(dir math.Vec3) math.Vec3 {
	side := dir.Cross(math.Vec3Up)
	if side.LengthSqr() < 1e-8 {
		side = dir.Cross(math.Vec3Right)
	}
	return side.Normalize()
}
