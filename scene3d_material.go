// scene3d_material.go - PBR metallic-roughness material model and the
// mesh vertex/index buffers materials are painted onto, both stored as
// plain resource-registry payloads (same Handle-backed pattern as
// Canvas2D textures and surfaces).

package arcanee

// AlphaMode mirrors glTF's alphaMode: OPAQUE, MASK, BLEND.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// Material is a PBR metallic-roughness material. Colors are linear;
// textures referenced by handle (0 = none) are sRGB- or linear-encoded
// according to their semantic role, a tag implicit in which field holds
// the handle rather than a separate flag: BaseColorTexture and
// EmissiveTexture are sRGB, MetallicRoughnessTexture/NormalTexture/
// OcclusionTexture are linear.
type Material struct {
	BaseColor      [4]float64 // straight (non-premultiplied) RGBA, linear
	Metallic       float64
	Roughness      float64
	EmissiveFactor Vec3

	BaseColorTexture         Handle
	MetallicRoughnessTexture Handle
	NormalTexture            Handle
	EmissiveTexture          Handle
	OcclusionTexture         Handle

	AlphaMode   AlphaMode
	AlphaCutoff float64
	DoubleSided bool
}

func defaultMaterial() *Material {
	return &Material{
		BaseColor:   [4]float64{1, 1, 1, 1},
		Metallic:    1,
		Roughness:   1,
		AlphaCutoff: 0.5,
	}
}

// Vertex is one mesh vertex. Tangent.W carries handedness (+1/-1), the
// glTF convention for reconstructing bitangent as cross(normal,tangent)*w.
type Vertex struct {
	Pos     Vec3
	Normal  Vec3
	Tangent Vec3
	TangentW float64
	UV0     [2]float64
}

// Mesh is an indexed triangle list plus the material it was imported
// with; entities may override the material via AttachMaterial.
type Mesh struct {
	Vertices        []Vertex
	Indices         []uint32 // always a multiple of 3; triangle list
	DefaultMaterial Handle
}

// triangleCount is a convenience used by the rasterizer and tests.
func (m *Mesh) triangleCount() int { return len(m.Indices) / 3 }
