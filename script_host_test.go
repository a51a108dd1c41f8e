package arcanee

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestScriptHostVFS(t *testing.T, files map[string]string) *VFS {
	t.Helper()
	cartDir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(cartDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	saveDir := t.TempDir()
	tempDir := t.TempDir()
	return NewVFS(dirCartSource{cartDir}, saveDir, tempDir, true, 1<<20)
}

func TestScriptHostMissingEntryPointsFaults(t *testing.T) {
	vfs := newTestScriptHostVFS(t, map[string]string{
		"main.nut": "x = 1",
	})
	sh := NewScriptHost("demo", vfs, NewLogger(), &LastErrorChannel{})
	defer sh.Close()

	err := sh.LoadEntry("main.nut")
	if err == nil {
		t.Fatal("expected MissingEntryPoints error")
	}
	if err.Category != CategoryMissingEntryPoints {
		t.Fatalf("expected MissingEntryPoints, got %v", err.Category)
	}
}

func TestScriptHostLoadsAndVerifiesEntryPoints(t *testing.T) {
	vfs := newTestScriptHostVFS(t, map[string]string{
		"main.nut": `
function init() end
function update(dt) end
function draw(alpha) end
`,
	})
	sh := NewScriptHost("demo", vfs, NewLogger(), &LastErrorChannel{})
	defer sh.Close()

	if err := sh.LoadEntry("main.nut"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sh.CallInit(); err != nil {
		t.Fatalf("unexpected error calling init: %v", err)
	}
	if err := sh.CallUpdate(1.0 / 60.0); err != nil {
		t.Fatalf("unexpected error calling update: %v", err)
	}
	if err := sh.CallDraw(0.5); err != nil {
		t.Fatalf("unexpected error calling draw: %v", err)
	}
}

func TestScriptHostModuleCachingReturnsSameValue(t *testing.T) {
	vfs := newTestScriptHostVFS(t, map[string]string{
		"lib.nut": "return 42",
	})
	sh := NewScriptHost("demo", vfs, NewLogger(), &LastErrorChannel{})
	defer sh.Close()

	v1, err := sh.loadModule("cart:/lib.nut")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := sh.loadModule("cart:/lib.nut")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1 != v2 {
		t.Fatalf("expected cached module to return the identical value")
	}
}

func TestResolveRequireTargetRejectsTraversalAndNonCart(t *testing.T) {
	vfs := newTestScriptHostVFS(t, map[string]string{"main.nut": "x=1"})
	sh := NewScriptHost("demo", vfs, NewLogger(), &LastErrorChannel{})
	defer sh.Close()

	if _, err := sh.resolveRequireTarget("../outside", "cart:/sub"); err == nil {
		t.Fatal("expected .. to be rejected")
	}
	if _, err := sh.resolveRequireTarget("/etc/passwd", "cart:/"); err == nil {
		t.Fatal("expected non-cart:/ absolute path to be rejected")
	}
}

func TestResolveRequireTargetAppendsExtension(t *testing.T) {
	vfs := newTestScriptHostVFS(t, map[string]string{"main.nut": "x=1"})
	sh := NewScriptHost("demo", vfs, NewLogger(), &LastErrorChannel{})
	defer sh.Close()

	got, err := sh.resolveRequireTarget("utils", "cart:/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "cart:/utils.nut" {
		t.Fatalf("expected cart:/utils.nut, got %q", got)
	}
}
