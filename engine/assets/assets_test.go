package assets

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

func TestDefaultAssets(t *testing.T) {
	r := NewRegistry(core.NewNopLogger())
	r.CreateDefaultAssets()

	tests := []struct {
		key      string
		vertices int
		indices  uint32
	}{
		{DefaultCube, 8, 36},
		{DefaultPyramid, 5, 18},
		{DefaultSphere, 33 * 17, 32 * 16 * 6 - 2*32*3},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := r.Mesh(tt.key)
			if m == nil {
				t.Fatalf("mesh %q missing", tt.key)
			}
			if m.VertexCount() != tt.vertices || m.IndexCount() != tt.indices {
				t.Errorf("got %d vertices / %d indices, want %d / %d", m.VertexCount(), m.IndexCount(), tt.vertices, tt.indices)
			}
			if len(m.Normals) != m.VertexCount() {
				t.Errorf("normals = %d, want one per vertex", len(m.Normals))
			}
			if m.BuffersCreated() {
				t.Error("fresh mesh should not have buffers")
			}
		})
	}

	if r.Material(DefaultMaterial) == nil {
		t.Error("default material missing")
	}
	if r.Mesh("nope") != nil || r.Material("nope") != nil {
		t.Error("unknown keys should return nil")
	}
	if got := r.MeshKeys(); fmt.Sprint(got) != "[cube pyramid sphere]" {
		t.Errorf("mesh keys = %v", got)
	}
}

func TestCubeNormalsPointOutwards(t *testing.T) {
	m := NewCubeMesh("c", 2)
	for i, p := range m.Positions {
		if d := p.Normalize().Dot(m.Normals[i]); d < 0.9 {
			t.Errorf("vertex %d: normal %v does not point away from the centre (%v)", i, m.Normals[i], p)
		}
	}
}

func TestMarkBuffersCreatedOnce(t *testing.T) {
	m := NewPyramidMesh("p", 1)
	m.MarkBuffersCreated("first")
	m.MarkBuffersCreated("second")
	if !m.BuffersCreated() || m.Handle() != "first" {
		t.Errorf("handle = %q, want first", m.Handle())
	}
}

func TestParseMaterial(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "name = \"red\"\ncolor = [1.0, 0.0, 0.0, 1.0]\nshininess = 16.0\n", false},
		{"defaults", "name = \"plain\"\n", false},
		{"missing name", "color = [1.0, 0.0, 0.0, 1.0]\n", true},
		{"colour out of range", "name = \"hot\"\ncolor = [2.0, 0.0, 0.0, 1.0]\n", true},
		{"negative shininess", "name = \"dull\"\nshininess = -1.0\n", true},
		{"not toml", "name = ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMaterial([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Name == "" {
				t.Error("name not decoded")
			}
		})
	}

	m, _ := ParseMaterial([]byte("name = \"red\"\ncolor = [1.0, 0.0, 0.0, 1.0]\n"))
	if m.RGB() != math.NewVec3(1, 0, 0) {
		t.Errorf("rgb = %v", m.RGB())
	}
	if m.Shininess != 32 {
		t.Errorf("shininess default = %v, want 32", m.Shininess)
	}
	_, err := ParseMaterial([]byte("color = [1.0, 0.0, 0.0, 1.0]\n"))
	if !errors.Is(err, core.ErrInvalidMaterial) {
		t.Errorf("got %v, want ErrInvalidMaterial", err)
	}
}

// writeTriangleGLTF writes a glTF file holding one indexed triangle with
// its buffer embedded as a data URI.
func writeTriangleGLTF(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(&buf, binary.LittleEndian, f)
	}
	for _, i := range []uint16{0, 1, 2, 0} {
		binary.Write(&buf, binary.LittleEndian, i)
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": %q}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}]
}`, buf.Len(), uri)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGLTFMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.gltf")
	writeTriangleGLTF(t, path)

	m, err := LoadGLTFMesh(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "tri" || m.VertexCount() != 3 || m.IndexCount() != 3 {
		t.Fatalf("got %s with %d vertices / %d indices", m.Name, m.VertexCount(), m.IndexCount())
	}
	for i, n := range m.Normals {
		if !n.Compare(math.NewVec3(0, 0, 1), 1e-5) {
			t.Errorf("normal %d = %v, want +Z", i, n)
		}
	}

	if _, err := LoadGLTFMesh(filepath.Join(t.TempDir(), "missing.gltf")); err == nil {
		t.Error("missing file should fail")
	}
}

func waitForKey(t *testing.T, w *Watcher, key string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-w.Events:
			if got == key {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", key)
		}
	}
}

func TestWatcherLoadsAndReloads(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "red.toml"), []byte("name = \"red\"\ncolor = [1.0, 0.0, 0.0, 1.0]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeTriangleGLTF(t, filepath.Join(dir, "tri.gltf"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(core.NewNopLogger())
	w, err := NewWatcher(r, core.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if r.Material("red") == nil || r.Mesh("tri") == nil {
		t.Fatal("initial scan should load material and mesh")
	}
	if r.Material("notes") != nil {
		t.Error("unrelated files must be ignored")
	}

	// drain the notifications of the initial scan
	for len(w.Events) > 0 {
		<-w.Events
	}
	w.Start()

	if err := os.WriteFile(filepath.Join(dir, "blue.toml"), []byte("name = \"blue\"\ncolor = [0.0, 0.0, 1.0, 1.0]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForKey(t, w, "blue")
	if m := r.Material("blue"); m == nil || m.Color[2] != 1 {
		t.Fatalf("blue material = %+v", m)
	}

	if err := os.Remove(filepath.Join(dir, "red.toml")); err != nil {
		t.Fatal(err)
	}
	waitForKey(t, w, "red")
	if r.Material("red") != nil {
		t.Error("removed file should drop the material")
	}
}

func TestLoadDirOnce(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "props")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "green.toml"), []byte("name = \"green\"\ncolor = [0.0, 1.0, 0.0, 1.0]\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "bad.toml"), []byte("color = [2.0, 0.0, 0.0, 1.0]\n"), 0o644)
	writeTriangleGLTF(t, filepath.Join(sub, "tri.gltf"))

	r := NewRegistry(nil)
	if err := LoadDir(r, dir, nil); err != nil {
		t.Fatal(err)
	}
	if r.Material("green") == nil || r.Mesh("tri") == nil {
		t.Errorf("materials = %v, meshes = %v", r.MaterialKeys(), r.MeshKeys())
	}
	if r.Material("bad") != nil {
		t.Error("an invalid material must be skipped")
	}
	if err := LoadDir(r, filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("a missing directory should be reported")
	}
}
