package software

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/scene"
)

var background = color.RGBA{R: 10, G: 20, B: 30, A: 255}

type harness struct {
	backend  *Backend
	renderer *renderer.Renderer
	graph    *scene.Graph
	registry *assets.Registry
}

func newHarness(t *testing.T, options Options) *harness {
	t.Helper()
	logger := core.NewNopLogger()
	registry := assets.NewRegistry(logger)
	registry.CreateDefaultAssets()
	red := assets.NewMaterial("red")
	red.Color = [4]float32{1, 0, 0, 1}
	registry.AddMaterial("red", red)

	graph := scene.NewGraph(logger, nil, nil, nil)
	camera := graph.NewPerspectiveCamera("camera")
	camera.SetViewport(64, 48)
	camera.SetPosition(0, 0, 5)
	graph.SetActiveCamera(camera)

	options.ClearColor = background
	backend := New(options, logger)
	r := renderer.New(backend, registry, logger)
	if err := r.Initialize("test", 64, 48); err != nil {
		t.Fatal(err)
	}
	return &harness{backend: backend, renderer: r, graph: graph, registry: registry}
}

func (h *harness) cube(t *testing.T, material string) *scene.Entity {
	t.Helper()
	e := h.graph.NewEntity("cube")
	e.MeshKey = assets.DefaultCube
	e.MaterialKey = material
	if err := h.graph.Add(e, nil); err != nil {
		t.Fatal(err)
	}
	return e
}

func (h *harness) frame(t *testing.T) renderer.FrameStats {
	t.Helper()
	h.graph.Update(0.016)
	stats, err := h.renderer.RenderFrame(h.graph)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.renderer.EndFrame(0.016); err != nil {
		t.Fatal(err)
	}
	return stats
}

func TestRasterizesLitCube(t *testing.T) {
	h := newHarness(t, Options{})
	h.cube(t, "")

	stats := h.frame(t)
	if stats.Draws != 1 || stats.BuffersCreated != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	img := h.backend.Image()
	center := img.RGBAAt(32, 24)
	if center == background {
		t.Fatal("centre pixel should be covered by the cube")
	}
	if center.R != center.G || center.G != center.B {
		t.Errorf("white cube under white light should be grey, got %v", center)
	}
	if center.R <= 26 {
		t.Errorf("front face should be lit above ambient, got %v", center)
	}
	if corner := img.RGBAAt(0, 0); corner != background {
		t.Errorf("corner = %v, want background", corner)
	}
	if d := h.backend.Depth(32, 24); d >= 1 {
		t.Errorf("depth = %v, want a written value", d)
	}

	c := h.backend.Counters()
	if c.DrawCalls != 1 || c.Triangles != 12 || c.Fragments == 0 {
		t.Errorf("counters = %+v", c)
	}
}

func TestMaterialColourReachesFragments(t *testing.T) {
	h := newHarness(t, Options{})
	h.cube(t, "red")
	h.frame(t)

	center := h.backend.Image().RGBAAt(32, 24)
	if center.R == 0 || center.G != 0 || center.B != 0 {
		t.Errorf("centre = %v, want pure red shading", center)
	}
}

func TestGeometryBehindCameraIsDropped(t *testing.T) {
	h := newHarness(t, Options{})
	e := h.cube(t, "")
	e.SetPosition(0, 0, 10)
	h.frame(t)

	if c := h.backend.Counters(); c.Fragments != 0 || c.Triangles != 0 {
		t.Errorf("counters = %+v, want nothing drawn", c)
	}
	if center := h.backend.Image().RGBAAt(32, 24); center != background {
		t.Errorf("centre = %v, want background", center)
	}
}

func TestNearerSurfaceWins(t *testing.T) {
	h := newHarness(t, Options{})
	far := h.cube(t, "red")
	far.SetPosition(0, 0, -3)
	h.cube(t, "")
	h.frame(t)

	center := h.backend.Image().RGBAAt(32, 24)
	if center.R != center.G {
		t.Errorf("centre = %v, want the nearer white cube", center)
	}
}

func TestBuffersAreUploadedOnce(t *testing.T) {
	h := newHarness(t, Options{})
	h.cube(t, "")
	h.cube(t, "red")
	for i := 0; i < 3; i++ {
		h.frame(t)
	}
	if n := h.backend.BufferCount(); n != 1 {
		t.Errorf("buffers = %d, want 1", n)
	}
	if h.backend.Frame() != 3 {
		t.Errorf("frame = %d, want 3", h.backend.Frame())
	}
}

func TestFrameDumps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	h := newHarness(t, Options{DumpDir: dir, DumpEvery: 2})
	h.cube(t, "")
	for i := 0; i < 4; i++ {
		h.frame(t)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 2 || names[0] != "frame-000002.bmp" || names[1] != "frame-000004.bmp" {
		t.Fatalf("dumps = %v", names)
	}

	f, err := os.Open(filepath.Join(dir, names[1]))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("dump size = %v", b)
	}
}

func TestInvalidSizeDegradesRenderer(t *testing.T) {
	logger := core.NewNopLogger()
	r := renderer.New(New(Options{}, logger), assets.NewRegistry(logger), logger)
	if err := r.Initialize("test", 0, 0); err == nil {
		t.Fatal("expected an error")
	}
	if !r.Degraded() {
		t.Error("renderer should be degraded")
	}
}

func TestResizeReallocates(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.renderer.OnResize(32, 16); err != nil {
		t.Fatal(err)
	}
	if b := h.backend.Image().Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("bounds = %v", b)
	}
	if err := h.renderer.OnResize(0, 0); err != nil {
		t.Fatal(err)
	}
	if b := h.backend.Image().Bounds(); b.Dx() != 32 {
		t.Errorf("minimize should keep the buffers, got %v", b)
	}
}
