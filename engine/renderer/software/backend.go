// Package software is a CPU rasterizer implementing renderer.RendererBackend.
// It needs no window or GPU, which makes it the backend for headless runs
// and tests.
package software

import (
	"fmt"
	"image"
	"image/color"
	m "math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

// Options configures the backend.
type Options struct {
	// DumpDir receives a BMP of the presented frame every DumpEvery frames.
	// Empty disables dumps.
	DumpDir   string
	DumpEvery int
	// ClearColor fills the colour buffer on Clear.
	ClearColor color.RGBA
}

type buffer struct {
	positions []math.Vec3
	normals   []math.Vec3
	indices   []uint32
}

// FrameCounters counts the work done since the last Clear.
type FrameCounters struct {
	DrawCalls int
	Triangles int
	Fragments int
}

type Backend struct {
	logger  *log.Logger
	options Options

	width, height int
	color         *image.RGBA
	depth         []float32

	buffers map[assets.BufferHandle]*buffer
	bound   assets.BufferHandle
	mat4    map[string]math.Mat4
	vec3    map[string]math.Vec3

	initialized bool
	frame       uint64
	counters    FrameCounters
}

func New(options Options, logger *log.Logger) *Backend {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Backend{
		logger:  logger.WithPrefix("software"),
		options: options,
		buffers: make(map[assets.BufferHandle]*buffer),
		mat4:    make(map[string]math.Mat4),
		vec3:    make(map[string]math.Vec3),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	if appWidth == 0 || appHeight == 0 {
		return fmt.Errorf("invalid framebuffer size %dx%d", appWidth, appHeight)
	}
	if b.options.DumpDir != "" {
		if err := os.MkdirAll(b.options.DumpDir, 0o755); err != nil {
			return fmt.Errorf("create dump directory: %w", err)
		}
	}
	b.allocate(int(appWidth), int(appHeight))
	b.initialized = true
	b.logger.Info("software backend initialized", "app", appName, "width", appWidth, "height", appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.buffers = make(map[assets.BufferHandle]*buffer)
	b.bound = ""
	b.initialized = false
	b.logger.Info("software backend shut down", "frames", b.frame)
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	if width == 0 || height == 0 {
		// minimized
		return nil
	}
	b.allocate(int(width), int(height))
	return nil
}

func (b *Backend) allocate(width, height int) {
	b.width, b.height = width, height
	b.color = image.NewRGBA(image.Rect(0, 0, width, height))
	b.depth = make([]float32, width*height)
	b.clearDepth()
}

func (b *Backend) clearDepth() {
	n := len(b.depth)
	if n == 0 {
		return
	}
	b.depth[0] = m.MaxFloat32
	for i := 1; i < n; i *= 2 {
		copy(b.depth[i:], b.depth[:i])
	}
}

func (b *Backend) Clear() {
	b.counters = FrameCounters{}
	if b.color == nil {
		return
	}
	c := b.options.ClearColor
	pix := b.color.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	b.clearDepth()
}

// CreateBuffers copies the mesh geometry. Later changes to the mesh are not
// seen by the backend.
func (b *Backend) CreateBuffers(mesh *assets.Mesh) (assets.BufferHandle, error) {
	if !b.initialized {
		return "", fmt.Errorf("backend not initialized")
	}
	if mesh == nil || len(mesh.Positions) == 0 {
		return "", fmt.Errorf("mesh has no vertices")
	}
	buf := &buffer{
		positions: append([]math.Vec3(nil), mesh.Positions...),
		normals:   append([]math.Vec3(nil), mesh.Normals...),
		indices:   append([]uint32(nil), mesh.Indices...),
	}
	handle := assets.BufferHandle(uuid.NewString())
	b.buffers[handle] = buf
	b.logger.Debug("buffers created", "mesh", mesh.Name, "handle", handle, "vertices", len(buf.positions), "indices", len(buf.indices))
	return handle, nil
}

func (b *Backend) Bind(handle assets.BufferHandle) {
	b.bound = handle
}

func (b *Backend) SetUniformMat4(name string, value math.Mat4) {
	b.mat4[name] = value
}

func (b *Backend) SetUniformVec3(name string, x, y, z float32) {
	b.vec3[name] = math.NewVec3(x, y, z)
}

func (b *Backend) uniformMat4(name string) math.Mat4 {
	if v, ok := b.mat4[name]; ok {
		return v
	}
	return math.NewMat4Identity()
}

type clipVertex struct {
	x, y, z float32
	invW    float32
	world   math.Vec3
	normal  math.Vec3
}

/**
 * @brief Rasterizes indexCount indices of the buffer as triangles using the
 * current uniforms. Triangles with a vertex behind the eye are dropped
 * whole. Fragments are depth tested and shaded with renderer.Phong.
 */
func (b *Backend) DrawIndexed(handle assets.BufferHandle, indexCount uint32) {
	buf, ok := b.buffers[handle]
	if !ok || b.color == nil {
		b.logger.Warn("draw with unknown buffer", "handle", handle)
		return
	}
	b.counters.DrawCalls++

	model := b.uniformMat4(renderer.UniformModel)
	view := b.uniformMat4(renderer.UniformView)
	projection := b.uniformMat4(renderer.UniformProjection)
	mvp := projection.Mul(view).Mul(model)
	normalMatrix := model.Inverse().Transposed()

	light := renderer.Light{
		Position: b.vec3[renderer.UniformLightPos],
		Color:    b.vec3[renderer.UniformLightColor],
	}
	viewPos := b.vec3[renderer.UniformViewPos]
	objectColor := b.vec3[renderer.UniformObjectColor]

	count := int(indexCount)
	if count > len(buf.indices) {
		count = len(buf.indices)
	}

	var tri [3]clipVertex
	for i := 0; i+2 < count; i += 3 {
		visible := true
		for k := 0; k < 3; k++ {
			idx := buf.indices[i+k]
			if int(idx) >= len(buf.positions) {
				visible = false
				break
			}
			p := buf.positions[idx]
			clip := mvp.MulVec4(p.ToVec4(1))
			if clip.W <= 0 {
				visible = false
				break
			}
			invW := 1 / clip.W
			var n math.Vec3
			if int(idx) < len(buf.normals) {
				n = normalMatrix.MulDirection(buf.normals[idx])
			}
			tri[k] = clipVertex{
				x:      (clip.X*invW + 1) * 0.5 * float32(b.width),
				y:      (1 - clip.Y*invW) * 0.5 * float32(b.height),
				z:      clip.Z * invW,
				invW:   invW,
				world:  model.MulPoint(p),
				normal: n,
			}
		}
		if !visible {
			continue
		}
		b.counters.Triangles++
		b.rasterize(&tri, viewPos, light, objectColor)
	}
}

func (b *Backend) rasterize(tri *[3]clipVertex, viewPos math.Vec3, light renderer.Light, objectColor math.Vec3) {
	v0, v1, v2 := tri[0], tri[1], tri[2]

	area := edge(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if area == 0 {
		return
	}

	minX := int(math.Clamp(floor(min3(v0.x, v1.x, v2.x)), 0, float32(b.width)))
	maxX := int(math.Clamp(ceil(max3(v0.x, v1.x, v2.x)), -1, float32(b.width-1)))
	minY := int(math.Clamp(floor(min3(v0.y, v1.y, v2.y)), 0, float32(b.height)))
	maxY := int(math.Clamp(ceil(max3(v0.y, v1.y, v2.y)), -1, float32(b.height-1)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5

			w0 := edge(v1.x, v1.y, v2.x, v2.y, px, py) / area
			w1 := edge(v2.x, v2.y, v0.x, v0.y, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*v0.z + w1*v1.z + w2*v2.z
			if z < -1 || z > 1 {
				continue
			}
			offset := y*b.width + x
			if z >= b.depth[offset] {
				continue
			}

			// perspective-correct attribute weights
			p0, p1, p2 := w0*v0.invW, w1*v1.invW, w2*v2.invW
			sum := p0 + p1 + p2
			p0, p1, p2 = p0/sum, p1/sum, p2/sum

			world := v0.world.MulScalar(p0).Add(v1.world.MulScalar(p1)).Add(v2.world.MulScalar(p2))
			normal := v0.normal.MulScalar(p0).Add(v1.normal.MulScalar(p1)).Add(v2.normal.MulScalar(p2))

			shaded := renderer.Phong(world, normal, viewPos, light, objectColor)

			b.depth[offset] = z
			b.color.SetRGBA(x, y, toRGBA(shaded))
			b.counters.Fragments++
		}
	}
}

// Present closes the frame and dumps it when a dump is due.
func (b *Backend) Present(deltaTime float64) error {
	b.frame++
	if b.options.DumpDir == "" || b.options.DumpEvery <= 0 || b.color == nil {
		return nil
	}
	if b.frame%uint64(b.options.DumpEvery) != 0 {
		return nil
	}
	return b.dump(filepath.Join(b.options.DumpDir, fmt.Sprintf("frame-%06d.bmp", b.frame)))
}

func (b *Backend) dump(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame dump: %w", err)
	}
	defer f.Close()
	if err := bmp.Encode(f, b.color); err != nil {
		return fmt.Errorf("encode frame dump: %w", err)
	}
	b.logger.Debug("frame dumped", "path", path)
	return nil
}

// Image returns the colour buffer. It is overwritten by the next frame.
func (b *Backend) Image() *image.RGBA {
	return b.color
}

// Depth returns the depth at (x, y), or +Inf outside the framebuffer.
func (b *Backend) Depth(x, y int) float32 {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return float32(m.Inf(1))
	}
	return b.depth[y*b.width+x]
}

func (b *Backend) Counters() FrameCounters {
	return b.counters
}

func (b *Backend) Frame() uint64 {
	return b.frame
}

func (b *Backend) BufferCount() int {
	return len(b.buffers)
}

func toRGBA(c math.Vec3) color.RGBA {
	return color.RGBA{
		R: uint8(math.Clamp(c.X, 0, 1) * 255),
		G: uint8(math.Clamp(c.Y, 0, 1) * 255),
		B: uint8(math.Clamp(c.Z, 0, 1) * 255),
		A: 255,
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func floor(v float32) float32 { return float32(m.Floor(float64(v))) }
func ceil(v float32) float32  { return float32(m.Ceil(float64(v))) }

func min3(a, b, c float32) float32 {
	return float32(m.Min(float64(a), m.Min(float64(b), float64(c))))
}

func max3(a, b, c float32) float32 {
	return float32(m.Max(float64(a), m.Max(float64(b), float64(c))))
}
