// scene3d.go - Scene3D: retained scene graph of entities, transforms,
// lights and cameras, backed by a donburi world as the component store.
//
// gfx3d.* calls mutate this state synchronously; nothing here rasterizes
// anything. render() (scene3d_render.go) is the one call that samples the
// graph and draws into CBUF.

package arcanee

import (
	"math"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// Vec3 is a plain 3-component vector used throughout Scene3D.
type Vec3 struct{ X, Y, Z float64 }

func (v Vec3) finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Quat is a rotation quaternion, XYZW order.
type Quat struct{ X, Y, Z, W float64 }

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = Quat{0, 0, 0, 1}

func (q Quat) finite() bool {
	return finite(q.X) && finite(q.Y) && finite(q.Z) && finite(q.W)
}

// normalize returns q scaled to unit length, or (Quat{}, false) if q has
// zero or non-finite magnitude. Spec: quaternions are normalized on
// assignment; a degenerate quaternion fails the operation safely.
func (q Quat) normalize() (Quat, bool) {
	if !q.finite() {
		return Quat{}, false
	}
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 || !finite(n) {
		return Quat{}, false
	}
	return Quat{q.X / n, q.Y / n, q.Z / n, q.W / n}, true
}

// Transform is an entity's local pos/rot/scale, applied in TRS order.
type Transform struct {
	Pos   Vec3
	Rot   Quat
	Scale Vec3
}

// LightKind enumerates the three supported light types.
type LightKind int

const (
	LightDirectional LightKind = iota
	LightPoint
	LightSpot
)

// Light holds validated lighting parameters for one entity.
type Light struct {
	Kind       LightKind
	Color      Vec3 // linear RGB, each component finite and >= 0
	Intensity  float64
	Range      float64 // point/spot only, > 0
	InnerAngle float64 // spot only, radians
	OuterAngle float64 // spot only, radians, > InnerAngle
}

// Camera holds a perspective projection plus either an explicit eye/at/up
// or a flag that the view should be derived from the owning entity's
// transform at render time.
type Camera struct {
	Eye, At, Up   Vec3
	FromTransform bool
	FOV           float64 // radians
	Near, Far     float64
}

// meshRef and materialRef attach resource-registry handles to an entity;
// kept as separate components so an entity can carry a mesh without a
// material override (falls back to the mesh's own default material) or
// a material without a mesh (not rendered, but legal to construct).
type meshRef struct{ Mesh Handle }
type materialRef struct{ Material Handle }
type parentRef struct{ Parent Handle }

var (
	transformComponent  = donburi.NewComponentType[Transform]()
	lightComponent       = donburi.NewComponentType[Light]()
	cameraComponent      = donburi.NewComponentType[Camera]()
	meshRefComponent     = donburi.NewComponentType[meshRef]()
	materialRefComponent = donburi.NewComponentType[materialRef]()
	parentRefComponent   = donburi.NewComponentType[parentRef]()
	// entityHandleComponent mirrors an entity's own ResourceEntity Handle
	// back onto itself, so code holding a *donburi.Entry (e.g. while
	// walking parent links) can recover the Handle needed to call back
	// into Scene3D's handle-keyed API without a second lookup table.
	entityHandleComponent = donburi.NewComponentType[Handle]()
)

// Scene3D owns one donburi world and exposes the entity/transform/light/
// camera operations gfx3d.* bindings call into. Entities are addressed by
// the same Handle type as every other resource, allocated from the
// ResourceEntity pool so ownership, quotas, and Stop/Reload teardown are
// uniform across the whole runtime.
type Scene3D struct {
	world    donburi.World
	registry *ResourceRegistry
	cartID   string
	lastErr  *LastErrorChannel
	logger   *Logger

	activeCamera Handle

	renderRequested bool
	renderCalls     int
}

// NewScene3D constructs an empty scene bound to a cartridge's resource
// registry (for entity handle allocation/quota) and error/log sinks.
func NewScene3D(registry *ResourceRegistry, cartID string, lastErr *LastErrorChannel, logger *Logger) *Scene3D {
	return &Scene3D{
		world:    donburi.NewWorld(),
		registry: registry,
		cartID:   cartID,
		lastErr:  lastErr,
		logger:   logger,
	}
}

func (s *Scene3D) fail(op string, cat Category, cause string) bool {
	s.lastErr.Set(newErr(op, cat, cause))
	return false
}

// BeginFrame resets the per-frame "how many times was render() called"
// counter. Called by the owning Cartridge before draw().
func (s *Scene3D) BeginFrame() {
	s.renderRequested = false
	s.renderCalls = 0
}

// entry resolves h to a live donburi entry owned by this cartridge's
// scene, or nil with lastErr set.
func (s *Scene3D) entry(op string, h Handle) *donburi.Entry {
	payload, rerr := s.registry.Resolve(h, ResourceEntity)
	if rerr != nil {
		s.lastErr.Set(newErr(op, rerr.Category, rerr.Cause))
		return nil
	}
	entry, ok := payload.(*donburi.Entry)
	if !ok || !entry.Valid() {
		s.lastErr.Set(newErr(op, CategoryInvalidHandle, "entity no longer valid"))
		return nil
	}
	return entry
}

// CreateEntity allocates a new entity with an identity transform and no
// other components attached.
func (s *Scene3D) CreateEntity() (Handle, *CartridgeError) {
	e := s.world.Create(transformComponent, entityHandleComponent)
	entry := s.world.Entry(e)
	donburi.SetValue(entry, transformComponent, Transform{Scale: Vec3{1, 1, 1}, Rot: IdentityQuat})
	h, rerr := s.registry.Allocate(ResourceEntity, s.cartID, entry)
	if rerr != nil {
		s.world.Remove(e)
		return 0, rerr
	}
	donburi.SetValue(entry, entityHandleComponent, h)
	return h, nil
}

// DestroyEntity removes the entity and every component attached to it
// (light/camera/mesh/material refs). Idempotent on a stale handle.
func (s *Scene3D) DestroyEntity(h Handle) {
	entry := s.entryQuiet(h)
	if entry == nil {
		s.registry.Free(h)
		return
	}
	if h == s.activeCamera {
		s.activeCamera = 0
	}
	s.world.Remove(entry.Entity())
	s.registry.Free(h)
}

func (s *Scene3D) entryQuiet(h Handle) *donburi.Entry {
	payload, rerr := s.registry.Resolve(h, ResourceEntity)
	if rerr != nil {
		return nil
	}
	entry, ok := payload.(*donburi.Entry)
	if !ok || !entry.Valid() {
		return nil
	}
	return entry
}

// SetTransform validates and applies pos/rot/scale. A zero or non-finite
// scale component, or a degenerate quaternion, fails safely and leaves
// the existing transform untouched.
func (s *Scene3D) SetTransform(h Handle, pos Vec3, rot Quat, scale Vec3) bool {
	const op = "gfx3d.setTransform"
	entry := s.entry(op, h)
	if entry == nil {
		return false
	}
	if !pos.finite() {
		return s.fail(op, CategoryInvalidArgument, "position must be finite")
	}
	if !scale.finite() || scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		return s.fail(op, CategoryInvalidArgument, "scale must be finite and non-zero")
	}
	nrot, ok := rot.normalize()
	if !ok {
		return s.fail(op, CategoryInvalidArgument, "rotation quaternion must be finite and non-zero")
	}
	donburi.SetValue(entry, transformComponent, Transform{Pos: pos, Rot: nrot, Scale: scale})
	return true
}

// Transform returns the entity's current local transform.
func (s *Scene3D) Transform(h Handle) (Transform, bool) {
	entry := s.entry("gfx3d.getTransform", h)
	if entry == nil {
		return Transform{}, false
	}
	return *donburi.Get[Transform](entry, transformComponent), true
}

// SetParent attaches h under parent (for glTF node hierarchy import and
// general scene composition); pass 0 to clear.
func (s *Scene3D) SetParent(h, parent Handle) bool {
	const op = "gfx3d.setParent"
	entry := s.entry(op, h)
	if entry == nil {
		return false
	}
	if parent == 0 {
		if entry.HasComponent(parentRefComponent) {
			entry.RemoveComponent(parentRefComponent)
		}
		return true
	}
	if s.entry(op, parent) == nil {
		return false
	}
	if !entry.HasComponent(parentRefComponent) {
		entry.AddComponent(parentRefComponent)
	}
	donburi.SetValue(entry, parentRefComponent, parentRef{Parent: parent})
	return true
}

// WorldTransform composes an entity's transform with its ancestors',
// walking parent links to the root. Cycles (which SetParent cannot
// normally create, since it only ever points at already-live entities)
// are defended against with a bounded walk.
func (s *Scene3D) WorldTransform(h Handle) Mat4 {
	const maxDepth = 256
	m := Mat4Identity()
	cur := h
	for i := 0; i < maxDepth && cur != 0; i++ {
		entry := s.entryQuiet(cur)
		if entry == nil {
			break
		}
		t := *donburi.Get[Transform](entry, transformComponent)
		m = TRSMatrix(t).Mul(m)
		if !entry.HasComponent(parentRefComponent) {
			break
		}
		cur = donburi.Get[parentRef](entry, parentRefComponent).Parent
	}
	return m
}

// AttachLight validates and attaches/replaces a light component.
func (s *Scene3D) AttachLight(h Handle, l Light) bool {
	const op = "gfx3d.attachLight"
	entry := s.entry(op, h)
	if entry == nil {
		return false
	}
	if !l.Color.finite() || l.Color.X < 0 || l.Color.Y < 0 || l.Color.Z < 0 {
		return s.fail(op, CategoryInvalidArgument, "light color must be finite and non-negative")
	}
	if !finite(l.Intensity) || l.Intensity < 0 {
		return s.fail(op, CategoryInvalidArgument, "light intensity must be finite and non-negative")
	}
	if l.Kind == LightPoint || l.Kind == LightSpot {
		if !finite(l.Range) || l.Range <= 0 {
			return s.fail(op, CategoryInvalidArgument, "light range must be > 0")
		}
	}
	if l.Kind == LightSpot {
		if !finite(l.InnerAngle) || !finite(l.OuterAngle) || l.InnerAngle <= 0 || l.OuterAngle <= l.InnerAngle {
			return s.fail(op, CategoryInvalidArgument, "spot outerAngle must be > innerAngle > 0")
		}
	}
	if !entry.HasComponent(lightComponent) {
		entry.AddComponent(lightComponent)
	}
	donburi.SetValue(entry, lightComponent, l)
	return true
}

func (s *Scene3D) RemoveLight(h Handle) {
	if entry := s.entryQuiet(h); entry != nil && entry.HasComponent(lightComponent) {
		entry.RemoveComponent(lightComponent)
	}
}

// AttachCamera validates and attaches/replaces a camera component.
func (s *Scene3D) AttachCamera(h Handle, cam Camera) bool {
	const op = "gfx3d.attachCamera"
	entry := s.entry(op, h)
	if entry == nil {
		return false
	}
	if !finite(cam.Near) || !finite(cam.Far) || cam.Near <= 0 || cam.Near >= cam.Far {
		return s.fail(op, CategoryInvalidArgument, "camera requires 0 < near < far")
	}
	if !finite(cam.FOV) || cam.FOV <= 0 || cam.FOV >= math.Pi {
		return s.fail(op, CategoryInvalidArgument, "camera fov must be in (0, pi)")
	}
	if !cam.FromTransform && (!cam.Eye.finite() || !cam.At.finite() || !cam.Up.finite()) {
		return s.fail(op, CategoryInvalidArgument, "camera eye/at/up must be finite")
	}
	if !entry.HasComponent(cameraComponent) {
		entry.AddComponent(cameraComponent)
	}
	donburi.SetValue(entry, cameraComponent, cam)
	return true
}

// SetActiveCamera designates h as the scene's single active camera.
// Fails safely if h does not exist or carries no camera component.
func (s *Scene3D) SetActiveCamera(h Handle) bool {
	const op = "gfx3d.setActiveCamera"
	entry := s.entry(op, h)
	if entry == nil {
		return false
	}
	if !entry.HasComponent(cameraComponent) {
		return s.fail(op, CategoryInvalidArgument, "entity has no camera attached")
	}
	s.activeCamera = h
	return true
}

// AttachMesh/AttachMaterial bind resource-registry handles to an entity.
func (s *Scene3D) AttachMesh(h, mesh Handle) bool {
	const op = "gfx3d.attachMesh"
	entry := s.entry(op, h)
	if entry == nil {
		return false
	}
	if _, rerr := s.registry.Resolve(mesh, ResourceMesh); rerr != nil {
		return s.fail(op, rerr.Category, rerr.Cause)
	}
	if !entry.HasComponent(meshRefComponent) {
		entry.AddComponent(meshRefComponent)
	}
	donburi.SetValue(entry, meshRefComponent, meshRef{Mesh: mesh})
	return true
}

func (s *Scene3D) AttachMaterial(h, material Handle) bool {
	const op = "gfx3d.attachMaterial"
	entry := s.entry(op, h)
	if entry == nil {
		return false
	}
	if _, rerr := s.registry.Resolve(material, ResourceMaterial); rerr != nil {
		return s.fail(op, rerr.Category, rerr.Cause)
	}
	if !entry.HasComponent(materialRefComponent) {
		entry.AddComponent(materialRefComponent)
	}
	donburi.SetValue(entry, materialRefComponent, materialRef{Material: material})
	return true
}

// Render marks the scene as requested for this frame. Per spec, only the
// last render() call in a frame is visible; repeated calls are legal but
// Dev Mode warns about the waste.
func (s *Scene3D) Render(devMode bool) {
	s.renderRequested = true
	s.renderCalls++
	if devMode && s.renderCalls > 1 {
		s.logger.Warn("gfx3d.render called %d times in one frame; only the last call's result is visible", s.renderCalls)
	}
}

// drawable is one renderable instance gathered by collectDrawables: a
// resolved mesh, its effective material, and its world transform.
type drawable struct {
	mesh     *Mesh
	material *Material
	world    Mat4
}

// collectDrawables walks every entity carrying both a transform and a
// mesh, in donburi's stable iteration order (ascending entity id), and
// resolves each to renderable form. Used by scene3d_render.go.
func (s *Scene3D) collectDrawables() []drawable {
	var out []drawable
	query := donburi.NewQuery(filter.Contains(meshRefComponent))
	query.Each(s.world, func(entry *donburi.Entry) {
		mref := donburi.Get[meshRef](entry, meshRefComponent)
		meshPayload, rerr := s.registry.Resolve(mref.Mesh, ResourceMesh)
		if rerr != nil {
			return
		}
		mesh := meshPayload.(*Mesh)
		matHandle := mesh.DefaultMaterial
		if entry.HasComponent(materialRefComponent) {
			matHandle = donburi.Get[materialRef](entry, materialRefComponent).Material
		}
		var mat *Material
		if matHandle != 0 {
			if payload, rerr := s.registry.Resolve(matHandle, ResourceMaterial); rerr == nil {
				mat = payload.(*Material)
			}
		}
		if mat == nil {
			mat = defaultMaterial()
		}

		// The entity's own Handle is stored as a component on its entry, so
		// handleOf reads it back without scanning the registry.
		h := s.handleOf(entry)
		out = append(out, drawable{mesh: mesh, material: mat, world: s.WorldTransform(h)})
	})
	return out
}

// handleOf recovers the Handle an entry was created with.
func (s *Scene3D) handleOf(entry *donburi.Entry) Handle {
	if !entry.HasComponent(entityHandleComponent) {
		return 0
	}
	return *donburi.Get[Handle](entry, entityHandleComponent)
}
