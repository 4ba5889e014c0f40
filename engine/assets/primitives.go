package assets

import (
	m "math"

	"github.com/spaghettifunk/lumen/engine/math"
)

// NewCubeMesh builds an axis-aligned cube of the given edge length centred
// on the origin, sharing its 8 corners between faces.
func NewCubeMesh(name string, size float32) *Mesh {
	s := size / 2
	positions := []math.Vec3{
		// front
		{X: -s, Y: -s, Z: s},
		{X: s, Y: -s, Z: s},
		{X: s, Y: s, Z: s},
		{X: -s, Y: s, Z: s},
		// back
		{X: -s, Y: -s, Z: -s},
		{X: s, Y: -s, Z: -s},
		{X: s, Y: s, Z: -s},
		{X: -s, Y: s, Z: -s},
	}
	indices := []uint32{
		0, 1, 2, 2, 3, 0, // front
		4, 6, 5, 4, 7, 6, // back
		0, 3, 7, 0, 7, 4, // left
		1, 5, 6, 1, 6, 2, // right
		3, 2, 6, 3, 6, 7, // top
		0, 4, 5, 0, 5, 1, // bottom
	}
	return NewMesh(name, positions, indices)
}

// NewSphereMesh builds a UV sphere with the poles on the Z axis.
func NewSphereMesh(name string, radius float32, sectors, stacks int) *Mesh {
	if sectors < 3 {
		sectors = 3
	}
	if stacks < 2 {
		stacks = 2
	}
	positions := make([]math.Vec3, 0, (stacks+1)*(sectors+1))
	for i := 0; i <= stacks; i++ {
		stackAngle := m.Pi/2 - float64(i)*m.Pi/float64(stacks)
		xy := float64(radius) * m.Cos(stackAngle)
		z := float64(radius) * m.Sin(stackAngle)
		for j := 0; j <= sectors; j++ {
			sectorAngle := 2 * m.Pi * float64(j) / float64(sectors)
			positions = append(positions, math.NewVec3(
				float32(xy*m.Cos(sectorAngle)),
				float32(xy*m.Sin(sectorAngle)),
				float32(z),
			))
		}
	}

	var indices []uint32
	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors) + 1
		for j := 0; j < sectors; j++ {
			if i != 0 {
				indices = append(indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				indices = append(indices, k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}
	return NewMesh(name, positions, indices)
}

// NewPyramidMesh builds a square-based pyramid whose base sits at -size/2
// and whose apex is at +size/2 on Y.
func NewPyramidMesh(name string, size float32) *Mesh {
	s := size / 2
	positions := []math.Vec3{
		// base
		{X: -s, Y: -s, Z: s},
		{X: s, Y: -s, Z: s},
		{X: s, Y: -s, Z: -s},
		{X: -s, Y: -s, Z: -s},
		// apex
		{X: 0, Y: s, Z: 0},
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // base
		0, 1, 4, // front
		1, 2, 4, // right
		2, 3, 4, // back
		3, 0, 4, // left
	}
	return NewMesh(name, positions, indices)
}
