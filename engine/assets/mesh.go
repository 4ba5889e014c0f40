package assets

import "github.com/spaghettifunk/lumen/engine/math"

// BufferHandle identifies the GPU-side (or backend-side) buffers created
// for a mesh.
type BufferHandle string

// Mesh is indexed triangle geometry. Backend buffers are created for it at
// most once, the first time it is submitted for drawing.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32

	buffersCreated bool
	handle         BufferHandle
}

func NewMesh(name string, positions []math.Vec3, indices []uint32) *Mesh {
	m := &Mesh{
		Name:      name,
		Positions: positions,
		Indices:   indices,
	}
	m.CalculateNormals()
	return m
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// CalculateNormals replaces the normals with smooth, area-weighted vertex
// normals derived from the triangles.
func (m *Mesh) CalculateNormals() {
	m.Normals = math.GeometryGenerateNormals(m.Positions, m.Indices)
}

func (m *Mesh) BuffersCreated() bool {
	return m.buffersCreated
}

func (m *Mesh) Handle() BufferHandle {
	return m.handle
}

// MarkBuffersCreated records the backend handle. Later calls are ignored so
// the first handle wins.
func (m *Mesh) MarkBuffersCreated(handle BufferHandle) {
	if m.buffersCreated {
		return
	}
	m.buffersCreated = true
	m.handle = handle
}
