// registry.go - typed handle pools for cartridge-owned resources

package arcanee

import (
	"fmt"
)

// ResourceType tags the payload kind stored behind a Handle. Bound into
// the handle value itself so resolve() can catch a caller passing a
// texture handle where a sound handle is expected without touching the
// slab.
type ResourceType uint8

const (
	ResourceTexture ResourceType = iota + 1
	ResourceSurface
	ResourceSound
	ResourceEntity
	ResourceFont
	ResourceModule
	ResourceMesh
	ResourceMaterial
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTexture:
		return "texture"
	case ResourceSurface:
		return "surface"
	case ResourceSound:
		return "sound"
	case ResourceEntity:
		return "entity"
	case ResourceFont:
		return "font"
	case ResourceModule:
		return "module"
	case ResourceMesh:
		return "mesh"
	case ResourceMaterial:
		return "material"
	default:
		return "unknown"
	}
}

// Handle is the opaque value scripts hold. It packs type, generation and
// slot index so a stale handle from a freed-and-reused slot is rejected
// without the registry needing to track live handles separately.
//
//	bits 63..56: ResourceType
//	bits 55..32: generation
//	bits 31..0:  index + 1 (0 is reserved, meaning "no handle")
type Handle uint64

const handleInvalid Handle = 0

func makeHandle(t ResourceType, generation uint32, index1 uint32) Handle {
	return Handle(uint64(t)<<56 | uint64(generation)<<32 | uint64(index1))
}

func (h Handle) resourceType() ResourceType { return ResourceType(h >> 56) }
func (h Handle) generation() uint32         { return uint32(h >> 32) }
func (h Handle) index1() uint32             { return uint32(h) }

type slot struct {
	generation uint32
	owner      string
	payload    any
	free       bool
}

// pool is a slab of slots for a single ResourceType, with a free list for
// O(1) reuse of freed slots.
type pool struct {
	resType  ResourceType
	slots    []slot
	freeList []uint32 // indices (0-based) available for reuse
	maxCount int
}

func newPool(t ResourceType, maxCount int) *pool {
	return &pool{resType: t, maxCount: maxCount}
}

func (p *pool) count() int { return len(p.slots) - len(p.freeList) }

// ResourceRegistry owns one pool per ResourceType and enforces effective
// policy limits. destroy_all_owned_by is called on cartridge Stop/Reload
// to guarantee no cartridge-owned handle outlives its cartridge.
type ResourceRegistry struct {
	pools             map[ResourceType]*pool
	onDestroy         func(t ResourceType, payload any)
	texMemEstimate    int64
	maxTexMemEstimate int64
	surfacePixelSum   int64
	maxSurfacePixels  int64
}

// NewResourceRegistry builds empty pools sized from the effective policy.
// onDestroy, if non-nil, is invoked for every payload as it is freed (by
// Free or by DestroyAllOwnedBy) so owning subsystems (GPU/audio backends)
// can release native resources.
func NewResourceRegistry(eff EffectivePolicy, onDestroy func(ResourceType, any)) *ResourceRegistry {
	r := &ResourceRegistry{
		pools:             make(map[ResourceType]*pool),
		onDestroy:         onDestroy,
		maxTexMemEstimate: int64(eff.MaxTextures) * 4 * 1024 * 1024,
		maxSurfacePixels:  int64(eff.MaxSurfacePixels),
	}
	r.pools[ResourceTexture] = newPool(ResourceTexture, eff.MaxTextures)
	r.pools[ResourceSurface] = newPool(ResourceSurface, eff.MaxSurfaces)
	r.pools[ResourceSound] = newPool(ResourceSound, eff.MaxTextures)
	r.pools[ResourceEntity] = newPool(ResourceEntity, eff.MaxEntities)
	r.pools[ResourceFont] = newPool(ResourceFont, eff.MaxTextures)
	r.pools[ResourceModule] = newPool(ResourceModule, eff.MaxTextures)
	r.pools[ResourceMesh] = newPool(ResourceMesh, eff.MaxTextures)
	r.pools[ResourceMaterial] = newPool(ResourceMaterial, eff.MaxTextures)
	return r
}

// Allocate reserves a slot for owner (a cartridge id) and returns its
// handle, or handleInvalid with a QuotaExceeded error on exhaustion.
func (r *ResourceRegistry) Allocate(t ResourceType, owner string, payload any) (Handle, *CartridgeError) {
	p, ok := r.pools[t]
	if !ok {
		return handleInvalid, newErr("registry.allocate", CategoryInvalidArgument, fmt.Sprintf("unknown resource type %v", t))
	}
	if p.maxCount > 0 && p.count() >= p.maxCount {
		return handleInvalid, newErr("registry.allocate", CategoryQuotaExceeded, fmt.Sprintf("%s pool exhausted (max %d)", t, p.maxCount))
	}

	var idx uint32
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.slots[idx].generation++
		p.slots[idx].owner = owner
		p.slots[idx].payload = payload
		p.slots[idx].free = false
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, slot{generation: 1, owner: owner, payload: payload})
	}
	return makeHandle(t, p.slots[idx].generation, idx+1), nil
}

// Free releases handle's slot. Idempotent: freeing an already-free or
// stale handle is a no-op, never an error.
func (r *ResourceRegistry) Free(h Handle) {
	if h == handleInvalid {
		return
	}
	p, ok := r.pools[h.resourceType()]
	if !ok {
		return
	}
	idx := h.index1() - 1
	if int(idx) >= len(p.slots) {
		return
	}
	s := &p.slots[idx]
	if s.free || s.generation != h.generation() {
		return
	}
	payload := s.payload
	s.free = true
	s.payload = nil
	s.owner = ""
	p.freeList = append(p.freeList, idx)
	if r.onDestroy != nil {
		r.onDestroy(h.resourceType(), payload)
	}
}

// Resolve validates handle against expectedType and returns its payload,
// or InvalidHandle if the handle is stale, freed, out of range, or of the
// wrong type.
func (r *ResourceRegistry) Resolve(h Handle, expectedType ResourceType) (any, *CartridgeError) {
	if h == handleInvalid || h.resourceType() != expectedType {
		return nil, newErr("registry.resolve", CategoryInvalidHandle, "handle type mismatch or zero handle")
	}
	p, ok := r.pools[expectedType]
	if !ok {
		return nil, newErr("registry.resolve", CategoryInvalidHandle, "unknown resource type")
	}
	idx := h.index1() - 1
	if int(idx) >= len(p.slots) {
		return nil, newErr("registry.resolve", CategoryInvalidHandle, "index out of range")
	}
	s := &p.slots[idx]
	if s.free || s.generation != h.generation() {
		return nil, newErr("registry.resolve", CategoryInvalidHandle, "stale or freed handle")
	}
	return s.payload, nil
}

// Owner returns the owning cartridge id for a still-live handle, or "" if
// the handle is not live.
func (r *ResourceRegistry) Owner(h Handle) string {
	p, ok := r.pools[h.resourceType()]
	if !ok {
		return ""
	}
	idx := h.index1() - 1
	if h == handleInvalid || int(idx) >= len(p.slots) {
		return ""
	}
	s := &p.slots[idx]
	if s.free || s.generation != h.generation() {
		return ""
	}
	return s.owner
}

// DestroyAllOwnedBy frees every live handle across every pool owned by
// cartridgeID. Called on Stop/Reload so no handle outlives its cartridge.
func (r *ResourceRegistry) DestroyAllOwnedBy(cartridgeID string) {
	for t, p := range r.pools {
		for idx := range p.slots {
			s := &p.slots[idx]
			if s.free || s.owner != cartridgeID {
				continue
			}
			h := makeHandle(t, s.generation, uint32(idx)+1)
			r.Free(h)
		}
	}
}

// Count returns the number of live handles of the given type.
func (r *ResourceRegistry) Count(t ResourceType) int {
	p, ok := r.pools[t]
	if !ok {
		return 0
	}
	return p.count()
}

// AddTextureMemory tracks GPU-side memory estimate against the effective
// policy's texture budget, independent of the slab's own slot count
// limit (a pool can be within its slot count but over its byte budget).
func (r *ResourceRegistry) AddTextureMemory(bytes int64) *CartridgeError {
	if r.maxTexMemEstimate > 0 && r.texMemEstimate+bytes > r.maxTexMemEstimate {
		return newErr("registry.allocate", CategoryQuotaExceeded, "texture memory budget exceeded")
	}
	r.texMemEstimate += bytes
	return nil
}

func (r *ResourceRegistry) ReleaseTextureMemory(bytes int64) {
	r.texMemEstimate -= bytes
	if r.texMemEstimate < 0 {
		r.texMemEstimate = 0
	}
}

// AddSurfacePixels tracks the running total surface pixel sum against the
// effective policy's budget.
func (r *ResourceRegistry) AddSurfacePixels(pixels int64) *CartridgeError {
	if r.maxSurfacePixels > 0 && r.surfacePixelSum+pixels > r.maxSurfacePixels {
		return newErr("registry.allocate", CategoryQuotaExceeded, "total surface pixel budget exceeded")
	}
	r.surfacePixelSum += pixels
	return nil
}

func (r *ResourceRegistry) ReleaseSurfacePixels(pixels int64) {
	r.surfacePixelSum -= pixels
	if r.surfacePixelSum < 0 {
		r.surfacePixelSum = 0
	}
}
