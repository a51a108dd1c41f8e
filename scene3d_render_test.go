package arcanee

import "testing"

func TestRenderActiveSceneFailsSafelyWithNoCamera(t *testing.T) {
	s := newTestScene(t)
	target := NewRasterSurface(16, 16)
	if s.RenderActiveScene(target) {
		t.Fatal("expected RenderActiveScene to fail with no active camera")
	}
	if s.lastErr.GetCategory() != CategoryInvalidArgument {
		t.Fatalf("expected CategoryInvalidArgument, got %v", s.lastErr.GetCategory())
	}
}

func triangleMesh(registry *ResourceRegistry, mat Handle) Handle {
	mesh := &Mesh{
		Vertices: []Vertex{
			{Pos: Vec3{-1, -1, 0}},
			{Pos: Vec3{1, -1, 0}},
			{Pos: Vec3{0, 1, 0}},
		},
		Indices:         []uint32{0, 1, 2},
		DefaultMaterial: mat,
	}
	h, _ := registry.Allocate(ResourceMesh, "demo", mesh)
	return h
}

func TestRenderActiveSceneRasterizesOpaqueTriangle(t *testing.T) {
	s := newTestScene(t)
	target := NewRasterSurface(16, 16)

	mat := &Material{BaseColor: [4]float64{1, 0, 0, 1}, AlphaMode: AlphaOpaque, DoubleSided: true}
	matH, _ := s.registry.Allocate(ResourceMaterial, "demo", mat)
	meshH := triangleMesh(s.registry, matH)

	entity, _ := s.CreateEntity()
	if !s.AttachMesh(entity, meshH) {
		t.Fatal("expected AttachMesh to succeed")
	}

	camEntity, _ := s.CreateEntity()
	cam := Camera{Eye: Vec3{0, 0, 5}, At: Vec3{0, 0, 0}, Up: Vec3{0, 1, 0}, FOV: 1, Near: 0.1, Far: 100}
	if !s.AttachCamera(camEntity, cam) {
		t.Fatal("expected AttachCamera to succeed")
	}
	if !s.SetActiveCamera(camEntity) {
		t.Fatal("expected SetActiveCamera to succeed")
	}

	if !s.RenderActiveScene(target) {
		t.Fatal("expected RenderActiveScene to succeed with an active camera")
	}

	off := (8*target.Width + 8) * 4
	if target.Pix[off+3] == 0 {
		t.Fatal("expected the triangle to cover the center pixel")
	}
	if target.Pix[off+0] == 0 {
		t.Fatal("expected the center pixel to carry the material's red channel")
	}
}

func TestRenderActiveSceneWithoutMeshLeavesTargetTransparent(t *testing.T) {
	s := newTestScene(t)
	target := NewRasterSurface(16, 16)

	camEntity, _ := s.CreateEntity()
	cam := Camera{Eye: Vec3{0, 0, 5}, At: Vec3{0, 0, 0}, Up: Vec3{0, 1, 0}, FOV: 1, Near: 0.1, Far: 100}
	s.AttachCamera(camEntity, cam)
	s.SetActiveCamera(camEntity)

	if !s.RenderActiveScene(target) {
		t.Fatal("expected RenderActiveScene to succeed even with nothing to draw")
	}
	off := (8*target.Width + 8) * 4
	if target.Pix[off+3] != 0 {
		t.Fatal("expected an empty scene to leave the target transparent")
	}
}
