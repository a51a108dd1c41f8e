// scene3d_gltf.go - glTF 2.0 importer: reads a .gltf (plus its external
// buffers/images, all resolved through the VFS and confined to the
// importing file's own namespace) and populates the scene with entities,
// meshes, materials, and textures in the spec's documented order.

package arcanee

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
)

type gltfDoc struct {
	Buffers    []gltfBuffer    `json:"buffers"`
	BufferViews []gltfBufferView `json:"bufferViews"`
	Accessors  []gltfAccessor  `json:"accessors"`
	Images     []gltfImage     `json:"images"`
	Textures   []gltfTexture   `json:"textures"`
	Materials  []gltfMaterial  `json:"materials"`
	Meshes     []gltfMesh      `json:"meshes"`
	Nodes      []gltfNode      `json:"nodes"`
	Scenes     []gltfScene     `json:"scenes"`
	Scene      *int            `json:"scene"`
	Animations []gltfAnimation `json:"animations"`
}

type gltfBuffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

type gltfAccessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	Normalized    bool   `json:"normalized"`
}

type gltfImage struct {
	URI        string `json:"uri"`
	BufferView *int   `json:"bufferView"`
	MimeType   string `json:"mimeType"`
}

type gltfTexture struct {
	Source *int `json:"source"`
}

type gltfTextureRef struct {
	Index int `json:"index"`
}

type gltfPBR struct {
	BaseColorFactor          *[4]float64    `json:"baseColorFactor"`
	BaseColorTexture         *gltfTextureRef `json:"baseColorTexture"`
	MetallicFactor           *float64       `json:"metallicFactor"`
	RoughnessFactor          *float64       `json:"roughnessFactor"`
	MetallicRoughnessTexture *gltfTextureRef `json:"metallicRoughnessTexture"`
}

type gltfMaterial struct {
	PBR                  *gltfPBR        `json:"pbrMetallicRoughness"`
	NormalTexture        *gltfTextureRef `json:"normalTexture"`
	OcclusionTexture     *gltfTextureRef `json:"occlusionTexture"`
	EmissiveTexture      *gltfTextureRef `json:"emissiveTexture"`
	EmissiveFactor       *[3]float64     `json:"emissiveFactor"`
	AlphaMode            string          `json:"alphaMode"`
	AlphaCutoff          *float64        `json:"alphaCutoff"`
	DoubleSided          bool            `json:"doubleSided"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
	Mode       *int           `json:"mode"`
}

type gltfMesh struct {
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfNode struct {
	Children    []int      `json:"children"`
	Mesh        *int       `json:"mesh"`
	Camera      *int       `json:"camera"`
	Matrix      *[16]float64 `json:"matrix"`
	Translation *[3]float64 `json:"translation"`
	Rotation    *[4]float64 `json:"rotation"`
	Scale       *[3]float64 `json:"scale"`
	Name        string     `json:"name"`
}

type gltfScene struct {
	Nodes []int `json:"nodes"`
}

type gltfAnimation struct {
	Name     string `json:"name"`
	Channels []struct {
		Sampler int `json:"sampler"`
		Target  struct {
			Node *int   `json:"node"`
			Path string `json:"path"`
		} `json:"target"`
	} `json:"channels"`
	Samplers []struct {
		Input  int    `json:"input"`
		Output int    `json:"output"`
		Interp string `json:"interpolation"`
	} `json:"samplers"`
}

// GLTFImportResult holds what ImportGLTF produced: the root entity, the
// mesh, material and texture handles, and animation metadata. It has no
// scene entry.
type GLTFImportResult struct {
	Root       Handle
	Meshes     []Handle
	Materials  []Handle
	Textures   []Handle
	Animations []GLTFAnimationInfo
}

// GLTFAnimationInfo is import-time metadata only; Scene3D does not play
// animations back, it just reports what the asset contains.
type GLTFAnimationInfo struct {
	Name         string
	ChannelCount int
}

const (
	gltfByte          = 5120
	gltfUnsignedByte  = 5121
	gltfShort         = 5122
	gltfUnsignedShort = 5123
	gltfUnsignedInt   = 5125
	gltfFloat         = 5126
)

func gltfComponentSize(ct int) int {
	switch ct {
	case gltfByte, gltfUnsignedByte:
		return 1
	case gltfShort, gltfUnsignedShort:
		return 2
	case gltfUnsignedInt, gltfFloat:
		return 4
	default:
		return 0
	}
}

func gltfTypeComponents(t string) int {
	switch t {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4":
		return 4
	case "MAT4":
		return 16
	default:
		return 0
	}
}

// ImportGLTF reads gltfPath (a .gltf JSON document) through vfs, resolves
// every external buffer/image URI relative to gltfPath's own directory
// within its namespace, and populates scene with the imported hierarchy
// under a freshly created root entity.
func ImportGLTF(vfs *VFS, scene *Scene3D, registry *ResourceRegistry, cartID, gltfPath string) (*GLTFImportResult, *CartridgeError) {
	const op = "gfx3d.importGLTF"
	raw, rerr := vfs.ReadBytes(gltfPath)
	if rerr != nil {
		return nil, rerr
	}
	var doc gltfDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, newErr(op, CategoryAssetDecodeError, "invalid glTF JSON: "+err.Error())
	}

	baseDir := gltfDir(gltfPath)

	buffers := make([][]byte, len(doc.Buffers))
	for i, b := range doc.Buffers {
		data, err := gltfResolveURI(vfs, baseDir, b.URI, op)
		if err != nil {
			return nil, err
		}
		buffers[i] = data
	}

	// Image byte-fetch and decode run off the main thread: each image is
	// independent until registration, so an errgroup fans them out and
	// joins before the sequential registry bookkeeping below (handle
	// order and texture-budget accounting must stay deterministic).
	surfaces := make([]*RasterSurface, len(doc.Images))
	var g errgroup.Group
	for i, img := range doc.Images {
		i, img := i, img
		g.Go(func() error {
			data, err := gltfImageBytes(vfs, baseDir, img, buffers, doc.BufferViews, op)
			if err != nil {
				return err
			}
			surf, derr := decodeImageRaster(data, op)
			if derr != nil {
				return derr
			}
			surfaces[i] = surf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err.(*CartridgeError)
	}

	textures := make([]Handle, len(doc.Images))
	for i, surf := range surfaces {
		if err := registry.AddTextureMemory(int64(len(surf.Pix))); err != nil {
			return nil, err
		}
		h, aerr := registry.Allocate(ResourceTexture, cartID, &loadedTexture{surf: surf})
		if aerr != nil {
			registry.ReleaseTextureMemory(int64(len(surf.Pix)))
			return nil, aerr
		}
		textures[i] = h
	}

	materials := make([]Handle, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := gltfConvertMaterial(gm, doc.Textures, textures)
		h, aerr := registry.Allocate(ResourceMaterial, cartID, mat)
		if aerr != nil {
			return nil, aerr
		}
		materials[i] = h
	}

	meshes := make([]Handle, len(doc.Meshes))
	for i, gmesh := range doc.Meshes {
		mesh, derr := gltfBuildMesh(gmesh, doc.Accessors, doc.BufferViews, buffers, materials, op)
		if derr != nil {
			return nil, derr
		}
		h, aerr := registry.Allocate(ResourceMesh, cartID, mesh)
		if aerr != nil {
			return nil, aerr
		}
		meshes[i] = h
	}

	root, cerr := scene.CreateEntity()
	if cerr != nil {
		return nil, cerr
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < len(doc.Scenes) {
		for _, nodeIdx := range doc.Scenes[sceneIdx].Nodes {
			if err := gltfImportNode(scene, doc.Nodes, nodeIdx, root, meshes); err != nil {
				return nil, err
			}
		}
	}

	anims := make([]GLTFAnimationInfo, len(doc.Animations))
	for i, a := range doc.Animations {
		anims[i] = GLTFAnimationInfo{Name: a.Name, ChannelCount: len(a.Channels)}
	}

	return &GLTFImportResult{
		Root:       root,
		Meshes:     meshes,
		Materials:  materials,
		Textures:   textures,
		Animations: anims,
	}, nil
}

// gltfImportNode creates one entity per node (depth-first, matching
// spec's documented traversal order), parents it under parent, and
// recurses into children before returning to the next sibling.
func gltfImportNode(scene *Scene3D, nodes []gltfNode, idx int, parent Handle, meshes []Handle) *CartridgeError {
	if idx < 0 || idx >= len(nodes) {
		return newErr("gfx3d.importGLTF", CategoryAssetDecodeError, "node index out of range")
	}
	n := nodes[idx]
	e, cerr := scene.CreateEntity()
	if cerr != nil {
		return cerr
	}
	scene.SetParent(e, parent)
	pos, rot, scale := gltfNodeTransform(n)
	scene.SetTransform(e, pos, rot, scale)
	if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(meshes) {
		scene.AttachMesh(e, meshes[*n.Mesh])
	}
	for _, child := range n.Children {
		if err := gltfImportNode(scene, nodes, child, e, meshes); err != nil {
			return err
		}
	}
	return nil
}

func gltfNodeTransform(n gltfNode) (Vec3, Quat, Vec3) {
	if n.Matrix != nil {
		m := *n.Matrix
		pos := Vec3{m[12], m[13], m[14]}
		sx := math.Sqrt(m[0]*m[0] + m[1]*m[1] + m[2]*m[2])
		sy := math.Sqrt(m[4]*m[4] + m[5]*m[5] + m[6]*m[6])
		sz := math.Sqrt(m[8]*m[8] + m[9]*m[9] + m[10]*m[10])
		// Rotation extraction from a TRS-decomposed matrix is out of
		// scope for the CPU-only importer path; matrix-authored nodes
		// without explicit TRS keep identity rotation.
		return pos, IdentityQuat, Vec3{sx, sy, sz}
	}
	pos, rot, scale := Vec3{}, IdentityQuat, Vec3{1, 1, 1}
	if n.Translation != nil {
		pos = Vec3{n.Translation[0], n.Translation[1], n.Translation[2]}
	}
	if n.Rotation != nil {
		rot = Quat{n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3]}
	}
	if n.Scale != nil {
		scale = Vec3{n.Scale[0], n.Scale[1], n.Scale[2]}
	}
	return pos, rot, scale
}

func gltfConvertMaterial(gm gltfMaterial, gtextures []gltfTexture, textures []Handle) *Material {
	mat := defaultMaterial()
	if gm.PBR != nil {
		if gm.PBR.BaseColorFactor != nil {
			mat.BaseColor = *gm.PBR.BaseColorFactor
		}
		if gm.PBR.MetallicFactor != nil {
			mat.Metallic = *gm.PBR.MetallicFactor
		}
		if gm.PBR.RoughnessFactor != nil {
			mat.Roughness = *gm.PBR.RoughnessFactor
		}
		mat.BaseColorTexture = gltfTextureHandle(gm.PBR.BaseColorTexture, gtextures, textures)
		mat.MetallicRoughnessTexture = gltfTextureHandle(gm.PBR.MetallicRoughnessTexture, gtextures, textures)
	}
	mat.NormalTexture = gltfTextureHandle(gm.NormalTexture, gtextures, textures)
	mat.OcclusionTexture = gltfTextureHandle(gm.OcclusionTexture, gtextures, textures)
	mat.EmissiveTexture = gltfTextureHandle(gm.EmissiveTexture, gtextures, textures)
	if gm.EmissiveFactor != nil {
		mat.EmissiveFactor = Vec3{gm.EmissiveFactor[0], gm.EmissiveFactor[1], gm.EmissiveFactor[2]}
	}
	switch gm.AlphaMode {
	case "MASK":
		mat.AlphaMode = AlphaMask
	case "BLEND":
		mat.AlphaMode = AlphaBlend
	default:
		mat.AlphaMode = AlphaOpaque
	}
	if gm.AlphaCutoff != nil {
		mat.AlphaCutoff = *gm.AlphaCutoff
	}
	mat.DoubleSided = gm.DoubleSided
	return mat
}

func gltfTextureHandle(ref *gltfTextureRef, gtextures []gltfTexture, textures []Handle) Handle {
	if ref == nil || ref.Index < 0 || ref.Index >= len(gtextures) {
		return 0
	}
	src := gtextures[ref.Index].Source
	if src == nil || *src < 0 || *src >= len(textures) {
		return 0
	}
	return textures[*src]
}

func gltfBuildMesh(gmesh gltfMesh, accessors []gltfAccessor, views []gltfBufferView, buffers [][]byte, materials []Handle, op string) (*Mesh, *CartridgeError) {
	if len(gmesh.Primitives) == 0 {
		return &Mesh{}, nil
	}
	// Every triangle-mode primitive with POSITION data is imported: its
	// vertices and indices are appended onto the same buffers, indices
	// rebased onto the shared vertex list, so each glTF mesh index yields
	// exactly one Mesh.
	var verts []Vertex
	var indices []uint32
	var defaultMat Handle

	for _, prim := range gmesh.Primitives {
		if prim.Mode != nil && *prim.Mode != 4 {
			continue // triangles only
		}
		posIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		positions, err := gltfReadVec3(accessors, views, buffers, posIdx, op)
		if err != nil {
			return nil, err
		}
		normals := make([]Vec3, len(positions))
		if idx, ok := prim.Attributes["NORMAL"]; ok {
			if n, err := gltfReadVec3(accessors, views, buffers, idx, op); err == nil {
				normals = n
			}
		}
		uvs := make([][2]float64, len(positions))
		if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
			if u, err := gltfReadVec2(accessors, views, buffers, idx, op); err == nil {
				uvs = u
			}
		}
		tangents := make([]Vec3, len(positions))
		hasTangent := false
		if idx, ok := prim.Attributes["TANGENT"]; ok {
			if t, err := gltfReadVec3(accessors, views, buffers, idx, op); err == nil {
				tangents = t
				hasTangent = true
			}
		}

		base := uint32(len(verts))
		for i := range positions {
			verts = append(verts, Vertex{
				Pos:      positions[i],
				Normal:   normals[i],
				Tangent:  tangents[i],
				TangentW: 1,
				UV0:      uvs[i],
			})
		}

		var primIndices []uint32
		if prim.Indices != nil {
			idx, err := gltfReadIndices(accessors, views, buffers, *prim.Indices, op)
			if err != nil {
				return nil, err
			}
			primIndices = idx
		} else {
			for i := 0; i < len(positions); i++ {
				primIndices = append(primIndices, uint32(i))
			}
		}
		for _, i := range primIndices {
			indices = append(indices, base+i)
		}

		if !hasTangent {
			generateTangents(verts[base:], primIndices)
		}
		if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(materials) {
			defaultMat = materials[*prim.Material]
		}
	}

	return &Mesh{
		Vertices:        verts,
		Indices:         indices,
		DefaultMaterial: defaultMat,
	}, nil
}

// generateTangents computes a per-vertex tangent (and handedness) from
// position/UV deltas when the asset did not provide one, using the
// standard accumulate-then-orthogonalize algorithm.
func generateTangents(verts []Vertex, indices []uint32) {
	tan := make([]Vec3, len(verts))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(verts) || int(i1) >= len(verts) || int(i2) >= len(verts) {
			continue
		}
		p0, p1, p2 := verts[i0].Pos, verts[i1].Pos, verts[i2].Pos
		uv0, uv1, uv2 := verts[i0].UV0, verts[i1].UV0, verts[i2].UV0
		e1, e2 := sub(p1, p0), sub(p2, p0)
		du1, dv1 := uv1[0]-uv0[0], uv1[1]-uv0[1]
		du2, dv2 := uv2[0]-uv0[0], uv2[1]-uv0[1]
		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1 / det
		t := Vec3{
			(e1.X*dv2 - e2.X*dv1) * r,
			(e1.Y*dv2 - e2.Y*dv1) * r,
			(e1.Z*dv2 - e2.Z*dv1) * r,
		}
		tan[i0] = add(tan[i0], t)
		tan[i1] = add(tan[i1], t)
		tan[i2] = add(tan[i2], t)
	}
	for i := range verts {
		n := verts[i].Normal
		t := tan[i]
		// Gram-Schmidt orthogonalize against the normal.
		ortho := sub(t, scaleV(n, dot(n, t)))
		if lengthVec3(ortho) == 0 {
			continue
		}
		ortho = normalizeVec3(ortho)
		verts[i].Tangent = ortho
		verts[i].TangentW = 1
	}
}

func gltfDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// gltfResolveURI turns a relative/data URI into bytes, joining relative
// paths against baseDir and re-canonicalizing through the VFS so a
// "../" escape attempt is rejected the same way any other fs.* call
// would reject it.
func gltfResolveURI(vfs *VFS, baseDir, uri, op string) ([]byte, *CartridgeError) {
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri, op)
	}
	full := uri
	if baseDir != "" {
		full = baseDir + "/" + uri
	}
	// full is namespace-relative (cart:/save:/temp: prefix already present
	// on the caller's gltfPath); reuse the original namespace.
	idx := strings.Index(full, ":/")
	if idx < 0 {
		return nil, newErr(op, CategoryInvalidArgument, "malformed glTF reference path")
	}
	return vfs.ReadBytes(full)
}

func decodeDataURI(uri, op string) ([]byte, *CartridgeError) {
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return nil, newErr(op, CategoryAssetDecodeError, "malformed data URI")
	}
	meta, payload := uri[:comma], uri[comma+1:]
	if strings.Contains(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, newErr(op, CategoryAssetDecodeError, "invalid base64 data URI")
		}
		return data, nil
	}
	return []byte(payload), nil
}

func gltfImageBytes(vfs *VFS, baseDir string, img gltfImage, buffers [][]byte, views []gltfBufferView, op string) ([]byte, *CartridgeError) {
	if img.BufferView != nil {
		if *img.BufferView < 0 || *img.BufferView >= len(views) {
			return nil, newErr(op, CategoryAssetDecodeError, "image bufferView out of range")
		}
		v := views[*img.BufferView]
		if v.Buffer < 0 || v.Buffer >= len(buffers) {
			return nil, newErr(op, CategoryAssetDecodeError, "image buffer out of range")
		}
		b := buffers[v.Buffer]
		if v.ByteOffset+v.ByteLength > len(b) {
			return nil, newErr(op, CategoryAssetDecodeError, "image bufferView exceeds buffer")
		}
		return b[v.ByteOffset : v.ByteOffset+v.ByteLength], nil
	}
	return gltfResolveURI(vfs, baseDir, img.URI, op)
}

func gltfAccessorBytes(accessors []gltfAccessor, views []gltfBufferView, buffers [][]byte, idx int, op string) (gltfAccessor, []byte, int, *CartridgeError) {
	if idx < 0 || idx >= len(accessors) {
		return gltfAccessor{}, nil, 0, newErr(op, CategoryAssetDecodeError, "accessor index out of range")
	}
	acc := accessors[idx]
	if acc.BufferView == nil {
		return acc, nil, 0, newErr(op, CategoryAssetDecodeError, "sparse/zero-filled accessors are not supported")
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(views) {
		return acc, nil, 0, newErr(op, CategoryAssetDecodeError, "bufferView index out of range")
	}
	v := views[*acc.BufferView]
	if v.Buffer < 0 || v.Buffer >= len(buffers) {
		return acc, nil, 0, newErr(op, CategoryAssetDecodeError, "buffer index out of range")
	}
	stride := v.ByteStride
	compCount := gltfTypeComponents(acc.Type)
	compSize := gltfComponentSize(acc.ComponentType)
	if compCount == 0 || compSize == 0 {
		return acc, nil, 0, newErr(op, CategoryAssetDecodeError, "unsupported accessor type")
	}
	if stride == 0 {
		stride = compCount * compSize
	}
	return acc, buffers[v.Buffer], v.ByteOffset + acc.ByteOffset, nil
}

func gltfReadFloat(b []byte, off, componentType int) float64 {
	switch componentType {
	case gltfFloat:
		bits := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
		return float64(math.Float32frombits(bits))
	case gltfUnsignedByte:
		return float64(b[off]) / 255
	case gltfUnsignedShort:
		return float64(uint16(b[off]) | uint16(b[off+1])<<8) / 65535
	default:
		return 0
	}
}

func gltfReadVec3(accessors []gltfAccessor, views []gltfBufferView, buffers [][]byte, idx int, op string) ([]Vec3, *CartridgeError) {
	acc, buf, base, err := gltfAccessorBytes(accessors, views, buffers, idx, op)
	if err != nil {
		return nil, err
	}
	compSize := gltfComponentSize(acc.ComponentType)
	v := views[*acc.BufferView]
	stride := v.ByteStride
	if stride == 0 {
		stride = 3 * compSize
	}
	out := make([]Vec3, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := base + i*stride
		if off+3*compSize > len(buf) {
			return nil, newErr(op, CategoryAssetDecodeError, "accessor data exceeds buffer")
		}
		out[i] = Vec3{
			gltfReadFloat(buf, off, acc.ComponentType),
			gltfReadFloat(buf, off+compSize, acc.ComponentType),
			gltfReadFloat(buf, off+2*compSize, acc.ComponentType),
		}
	}
	return out, nil
}

func gltfReadVec2(accessors []gltfAccessor, views []gltfBufferView, buffers [][]byte, idx int, op string) ([][2]float64, *CartridgeError) {
	acc, buf, base, err := gltfAccessorBytes(accessors, views, buffers, idx, op)
	if err != nil {
		return nil, err
	}
	compSize := gltfComponentSize(acc.ComponentType)
	v := views[*acc.BufferView]
	stride := v.ByteStride
	if stride == 0 {
		stride = 2 * compSize
	}
	out := make([][2]float64, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := base + i*stride
		if off+2*compSize > len(buf) {
			return nil, newErr(op, CategoryAssetDecodeError, "accessor data exceeds buffer")
		}
		out[i] = [2]float64{
			gltfReadFloat(buf, off, acc.ComponentType),
			gltfReadFloat(buf, off+compSize, acc.ComponentType),
		}
	}
	return out, nil
}

func gltfReadIndices(accessors []gltfAccessor, views []gltfBufferView, buffers [][]byte, idx int, op string) ([]uint32, *CartridgeError) {
	acc, buf, base, err := gltfAccessorBytes(accessors, views, buffers, idx, op)
	if err != nil {
		return nil, err
	}
	compSize := gltfComponentSize(acc.ComponentType)
	out := make([]uint32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := base + i*compSize
		if off+compSize > len(buf) {
			return nil, newErr(op, CategoryAssetDecodeError, "index data exceeds buffer")
		}
		switch acc.ComponentType {
		case gltfUnsignedByte:
			out[i] = uint32(buf[off])
		case gltfUnsignedShort:
			out[i] = uint32(buf[off]) | uint32(buf[off+1])<<8
		case gltfUnsignedInt:
			out[i] = uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
		}
	}
	return out, nil
}

