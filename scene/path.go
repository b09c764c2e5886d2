package scene

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"occlusion-engine/math"
)

// CameraPath moves a point along a polyline, easing each segment with a
// tween. Tools use it to fly a camera through a scene frame by frame.
type CameraPath struct {
	Points []math.Vec3
	Loop   bool

	segmentDuration float32
	easing          ease.TweenFunc
	segment         int
	tween           *gween.Tween
}

// NewCameraPath returns a path through points that spends segmentDuration
// seconds on each segment. A nil easing means linear.
func NewCameraPath(points []math.Vec3, segmentDuration float32, easing ease.TweenFunc) *CameraPath {
	if easing == nil {
		easing = ease.Linear
	}
	p := &CameraPath{
		Points:          points,
		segmentDuration: segmentDuration,
		easing:          easing,
	}
	p.Reset()
	return p
}

// Reset returns to the first point.
func (p *CameraPath) Reset() {
	p.segment = 0
	p.tween = gween.New(0, 1, p.segmentDuration, p.easing)
}

// Update advances by dt seconds and returns the new position. done is true
// once a non-looping path has reached its last point.
func (p *CameraPath) Update(dt float32) (pos math.Vec3, done bool) {
	switch len(p.Points) {
	case 0:
		return math.Vec3Zero, true
	case 1:
		return p.Points[0], true
	}
	if p.segment >= len(p.Points)-1 {
		return p.Points[len(p.Points)-1], true
	}

	t, finished := p.tween.Update(dt)
	a, b := p.Points[p.segment], p.Points[p.segment+1]
	pos = a.Add(b.Sub(a).Mul(t))
	if !finished {
		return pos, false
	}

	p.segment++
	p.tween = gween.New(0, 1, p.segmentDuration, p.easing)
	if p.segment < len(p.Points)-1 {
		return pos, false
	}
	if p.Loop {
		p.segment = 0
		return pos, false
	}
	return pos, true
}
