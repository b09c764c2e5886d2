package occluder

import (
	"occlusion-engine/core"
	"occlusion-engine/math"
)

// Type distinguishes the two kinds of pool instance.
type Type int

const (
	TypeSpheres Type = iota
	TypePolys
)

func (t Type) String() string {
	switch t {
	case TypeSpheres:
		return "spheres"
	case TypePolys:
		return "polys"
	}
	return "unknown"
}

// Instance is one occluder in the pool: a set of spheres or a set of
// polygons sharing a transform.
type Instance struct {
	ID     int
	Name   string
	Type   Type
	Active bool

	Transform core.Transform

	localSpheres []Sphere
	localPolys   []Poly

	// world-space copies, valid while !worldDirty
	worldSpheres []Sphere
	worldPolys   []Poly
	aabb         math.AABB
	worldDirty   bool
}

// WorldSpheres returns the world-space spheres. Call Pool.EnsureUpToDate first.
func (inst *Instance) WorldSpheres() []Sphere { return inst.worldSpheres }

// WorldPolys returns the world-space polygons. Call Pool.EnsureUpToDate first.
func (inst *Instance) WorldPolys() []Poly { return inst.worldPolys }

// AABB returns the world-space bounds. Call Pool.EnsureUpToDate first.
func (inst *Instance) AABB() math.AABB { return inst.aabb }

// LocalSpheres returns the spheres as supplied, before the transform.
func (inst *Instance) LocalSpheres() []Sphere { return inst.localSpheres }

// LocalPolys returns the polygons as supplied, before the transform.
func (inst *Instance) LocalPolys() []Poly { return inst.localPolys }

func (inst *Instance) refresh() {
	m := inst.Transform.GetMatrix()
	identity := inst.Transform.IsIdentity()

	switch inst.Type {
	case TypeSpheres:
		// A non-uniform scale turns a sphere into an ellipsoid. The occluder
		// keeps the inscribed sphere (smallest axis) and the bounds the
		// enclosing one (largest axis).
		s := inst.Transform.Scale
		minScale := min(math.Abs(s.X), math.Abs(s.Y), math.Abs(s.Z))
		maxScale := max(math.Abs(s.X), math.Abs(s.Y), math.Abs(s.Z))
		inst.worldSpheres = inst.worldSpheres[:0]
		for i, sp := range inst.localSpheres {
			w := Sphere{Center: m.MulVec3(sp.Center), Radius: sp.Radius * minScale}
			inst.worldSpheres = append(inst.worldSpheres, w)
			if i == 0 {
				inst.aabb = math.AABB{Min: w.Center, Max: w.Center}
			}
			inst.aabb = inst.aabb.ExpandSphere(w.Center, sp.Radius*maxScale)
		}
	case TypePolys:
		inst.worldPolys = inst.worldPolys[:0]
		first := true
		for _, p := range inst.localPolys {
			w := p
			if !identity {
				w = p.Transform(m)
			}
			inst.worldPolys = append(inst.worldPolys, w)
			box := math.AABBFromPoints(w.Verts)
			if first {
				inst.aabb = box
				first = false
			} else {
				inst.aabb = inst.aabb.Union(box)
			}
		}
	}
	inst.worldDirty = false
}

// Pool owns every occluder instance. Ids are stable for the lifetime of an
// instance and reused after Remove.
type Pool struct {
	instances []*Instance
	free      []int
}

func NewPool() *Pool {
	return &Pool{}
}

func (p *Pool) add(inst *Instance) int {
	inst.Active = true
	inst.worldDirty = true
	if inst.Transform == (core.Transform{}) {
		inst.Transform = core.NewTransform()
	}
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		inst.ID = id
		p.instances[id] = inst
		return id
	}
	inst.ID = len(p.instances)
	p.instances = append(p.instances, inst)
	return inst.ID
}

// AddSpheres registers a sphere set and returns its id.
func (p *Pool) AddSpheres(name string, spheres []Sphere, xform core.Transform) int {
	local := make([]Sphere, len(spheres))
	copy(local, spheres)
	return p.add(&Instance{Name: name, Type: TypeSpheres, Transform: xform, localSpheres: local})
}

// AddPolys registers a polygon set and returns its id.
func (p *Pool) AddPolys(name string, polys []Poly, xform core.Transform) int {
	local := make([]Poly, len(polys))
	copy(local, polys)
	return p.add(&Instance{Name: name, Type: TypePolys, Transform: xform, localPolys: local})
}

// Remove frees id. Removing an unknown id is a no-op.
func (p *Pool) Remove(id int) {
	if p.Instance(id) == nil {
		return
	}
	p.instances[id] = nil
	p.free = append(p.free, id)
}

// Instance returns the instance for id, or nil.
func (p *Pool) Instance(id int) *Instance {
	if id < 0 || id >= len(p.instances) {
		return nil
	}
	return p.instances[id]
}

// SetTransform moves an instance; world geometry is rebuilt lazily.
func (p *Pool) SetTransform(id int, xform core.Transform) {
	if inst := p.Instance(id); inst != nil {
		inst.Transform = xform
		inst.worldDirty = true
	}
}

// SetActive toggles whether the culler may use the instance.
func (p *Pool) SetActive(id int, active bool) {
	if inst := p.Instance(id); inst != nil {
		inst.Active = active
	}
}

// EnsureUpToDate refreshes the world-space geometry of id if its transform
// changed since the last refresh.
func (p *Pool) EnsureUpToDate(id int) {
	if inst := p.Instance(id); inst != nil && inst.worldDirty {
		inst.refresh()
	}
}

// IDs lists every live instance id in ascending order.
func (p *Pool) IDs() []int {
	ids := make([]int, 0, len(p.instances)-len(p.free))
	for id, inst := range p.instances {
		if inst != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of live instances.
func (p *Pool) Len() int {
	return len(p.instances) - len(p.free)
}
