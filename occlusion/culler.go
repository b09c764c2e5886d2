// Package occlusion decides, once per frame and per camera, which objects are
// provably hidden behind opaque occluders.
//
// Prepare picks a bounded working set of sphere and polygon occluders from
// the pool, orients the polygons toward the camera, builds their silhouette
// planes and removes polygons hidden by other polygons. The Cull* queries
// then test occludees against that set until the next Prepare.
package occlusion

import (
	"occlusion-engine/math"
	"occlusion-engine/occluder"
	"occlusion-engine/scene"
)

// NoIgnore is the ignoreID that skips no occluder.
const NoIgnore = -1

const (
	// planeEpsilon absorbs float error in the side tests of whittling.
	planeEpsilon = 1e-4
	// closeEpsilon is the camera distance below which nothing is culled.
	closeEpsilon = 1e-3
	// sphereFitReference scales the sphere fit into the same rough range as
	// polygon screen areas.
	sphereFitReference = 100
	minSphereFitDist   = 0.01
)

// Pool is the part of the occluder pool the culler reads.
type Pool interface {
	Instance(id int) *occluder.Instance
	EnsureUpToDate(id int)
}

// View is what the culler needs to know about the camera.
type View struct {
	Position math.Vec3
	// ClipMatrix maps world points to homogeneous clip space as a row
	// vector: clip = p.ToVec4(1).MulMat(ClipMatrix).
	ClipMatrix math.Mat4
	// Planes are used for broad-phase rejection only. Normals point inward.
	Planes []math.Plane
}

// ViewFromCamera builds a View from a scene camera.
func ViewFromCamera(cam *scene.Camera) View {
	f := cam.GetFrustum()
	return View{
		Position:   cam.Position,
		ClipMatrix: cam.GetViewProjectionMatrix(),
		Planes:     f.PlaneList(),
	}
}

// Stats counts what happened since the Diagnostics was last reset.
type Stats struct {
	Candidates      int
	SpheresSelected int
	PolysSelected   int
	PolysWhittled   int
	HolesDropped    int
	Queries         int
	CulledBySphere  int
	CulledByPoly    int
	// CullAABBToPolys is counted apart from the sphere-based queries.
	BoxQueries      int
	BoxCulledByPoly int
}

// Diagnostics is passed to Prepare and collects stats for that frame and its
// queries. It also carries debug switches.
type Diagnostics struct {
	Stats Stats
	// SkipWhittle leaves every selected polygon in the active set.
	SkipWhittle bool
}

// Reset clears the stats and keeps the switches.
func (d *Diagnostics) Reset() {
	d.Stats = Stats{}
}

type polyFlags uint8

const (
	flagFacesCamera polyFlags = 1 << iota
	flagHasHoles
	flagRemoved
)

// span addresses a run of entries in one of the culler's arenas.
type span struct {
	start, n int32
}

func (s span) end() int32 { return s.start + s.n }

// sortPoly is an active polygon. Its plane is oriented so the camera is on
// the positive side; the shadow is on the negative side of the plane and of
// every edge plane.
type sortPoly struct {
	plane math.Plane
	verts span // into Culler.verts
	edges span // into Culler.edgePlanes, one per vertex
	holes span // into Culler.holes
	id    int
	fit   float32
	flags polyFlags
}

// activeHole is a hole of an active polygon. Its edge planes have the hole
// interior on the negative side.
type activeHole struct {
	verts span
	edges span
}

type activeSphere struct {
	center math.Vec3
	radius float32
	dist   float32
	id     int
}

type polyCandidate struct {
	poly   *occluder.Poly
	id     int
	facing bool
}

// Culler holds one camera's occlusion state. It is not safe for concurrent
// use; use one Culler per camera. The zero value is ready to use with
// DefaultConfig.
type Culler struct {
	cfg        Config
	pending    Config
	hasPending bool

	prepared bool
	camPos   math.Vec3
	diag     *Diagnostics

	spheres      []activeSphere
	closestDist  float32
	polys        []sortPoly
	verts        []math.Vec3
	edgePlanes   []math.Plane
	holes        []activeHole
	checksum     uint64
	sphereSelect topK[activeSphere]
	polySelect   topK[polyCandidate]
	clipper      Clipper
	clipPts      []math.Vec4
	seen         map[int]struct{}

	debugMesh    *scene.Mesh
	debugSum     uint64
	debugHasMesh bool
}

// New returns an empty Culler. Queries return false until Prepare runs.
func New(cfg Config) (*Culler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Culler{cfg: cfg, seen: make(map[int]struct{})}, nil
}

// SetConfig replaces the capacities. The change takes effect at the next
// Prepare. Invalid configs are logged and ignored.
func (c *Culler) SetConfig(cfg Config) {
	if err := cfg.Validate(); err != nil {
		Logger().Warn("occlusion: ignoring config", "err", err)
		return
	}
	c.pending = cfg
	c.hasPending = true
}

// Config returns the capacities in effect.
func (c *Culler) Config() Config {
	return c.cfg
}

// Prepared reports whether Prepare has run at least once.
func (c *Culler) Prepared() bool {
	return c.prepared
}

// Checksum identifies the current active set. It changes whenever the
// selected occluders or their oriented geometry change.
func (c *Culler) Checksum() uint64 {
	return c.checksum
}

// ActivePoly describes one polygon of the active set.
type ActivePoly struct {
	ID          int
	Verts       []math.Vec3
	Plane       math.Plane
	Holes       [][]math.Vec3
	Fit         float32
	FacesCamera bool
}

// ActiveSpheres returns copies of the selected sphere occluders.
func (c *Culler) ActiveSpheres() []occluder.Sphere {
	out := make([]occluder.Sphere, len(c.spheres))
	for i, s := range c.spheres {
		out[i] = occluder.Sphere{Center: s.center, Radius: s.radius}
	}
	return out
}

// ActivePolys returns copies of the polygons left after whittling, oriented
// toward the camera.
func (c *Culler) ActivePolys() []ActivePoly {
	out := make([]ActivePoly, len(c.polys))
	for i := range c.polys {
		p := &c.polys[i]
		ap := ActivePoly{
			ID:          p.id,
			Verts:       append([]math.Vec3(nil), c.polyVerts(p)...),
			Plane:       p.plane,
			Fit:         p.fit,
			FacesCamera: p.flags&flagFacesCamera != 0,
		}
		for _, h := range c.polyHoles(p) {
			ap.Holes = append(ap.Holes, append([]math.Vec3(nil), c.vertsOf(h.verts)...))
		}
		out[i] = ap
	}
	return out
}

func (c *Culler) vertsOf(s span) []math.Vec3 {
	return c.verts[s.start:s.end()]
}

func (c *Culler) planesOf(s span) []math.Plane {
	return c.edgePlanes[s.start:s.end()]
}

func (c *Culler) polyVerts(p *sortPoly) []math.Vec3 {
	return c.vertsOf(p.verts)
}

func (c *Culler) polyHoles(p *sortPoly) []activeHole {
	return c.holes[p.holes.start:p.holes.end()]
}
