package arcanee

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func buildTestArchive(t *testing.T, files map[string]string, withIntegrity bool) string {
	t.Helper()
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "cartridge.arc")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if withIntegrity {
		manifest := IntegrityManifest{Files: map[string]string{}}
		for name, content := range files {
			sum := sha256.Sum256([]byte(content))
			manifest.Files[name] = hex.EncodeToString(sum[:])
		}
		data, err := json.Marshal(manifest)
		if err != nil {
			t.Fatal(err)
		}
		w, err := zw.Create("integrity.json")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archivePath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return archivePath
}

func TestArchiveCartSourceReadBytes(t *testing.T) {
	path := buildTestArchive(t, map[string]string{
		"cartridge.toml": "id = \"demo\"",
		"main.nut":       "-- entry",
		"assets/a.png":   "fakepng",
	}, false)

	a, err := OpenArchiveCartSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	data, err := a.ReadBytes("main.nut")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "-- entry" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestArchiveCartSourceIntegrityPass(t *testing.T) {
	path := buildTestArchive(t, map[string]string{
		"cartridge.toml": "id = \"demo\"",
		"main.nut":       "-- entry",
	}, true)

	a, err := OpenArchiveCartSource(path)
	if err != nil {
		t.Fatalf("unexpected error with valid integrity manifest: %v", err)
	}
	defer a.Close()
}

func TestArchiveCartSourceIntegrityFailureRejected(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "cartridge.arc")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("main.nut")
	w.Write([]byte("-- entry"))

	badManifest := IntegrityManifest{Files: map[string]string{
		"main.nut": "0000000000000000000000000000000000000000000000000000000000000000",
	}}
	data, _ := json.Marshal(badManifest)
	w2, _ := zw.Create("integrity.json")
	w2.Write(data)
	zw.Close()
	os.WriteFile(archivePath, buf.Bytes(), 0o644)

	if _, err := OpenArchiveCartSource(archivePath); err == nil {
		t.Fatal("expected integrity mismatch to be rejected")
	}
}

func TestArchiveCartSourcePathTraversalIgnored(t *testing.T) {
	path := buildTestArchive(t, map[string]string{
		"main.nut": "-- entry",
	}, false)
	a, err := OpenArchiveCartSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if _, err := a.ReadBytes("../../etc/passwd"); err == nil {
		t.Fatal("expected traversal path to fail lookup")
	}
}

func TestArchiveCartSourceListDir(t *testing.T) {
	path := buildTestArchive(t, map[string]string{
		"main.nut":      "-- entry",
		"assets/a.png":  "a",
		"assets/b.png":  "b",
		"assets/sub/c":  "c",
	}, false)
	a, err := OpenArchiveCartSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	names, ok := a.ListDir("assets")
	if !ok {
		t.Fatal("expected assets directory to be listable")
	}
	want := map[string]bool{"a.png": true, "b.png": true, "sub": true}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for _, n := range names {
		if !want[n] {
			t.Fatalf("unexpected entry %q in %v", n, names)
		}
	}
}
