package assets

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/lumen/engine/math"
)

// LoadGLTFMesh imports every triangle primitive of every mesh in a glTF or
// GLB document into one Mesh. Normals are read when present and computed
// otherwise.
func LoadGLTFMesh(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh := &Mesh{Name: name}
	hasNormals := true

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				// Skip non-triangle primitives (lines, points, etc)
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: read positions: %w", m.Name, err)
			}

			var normals [][3]float32
			if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
				normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: read normals: %w", m.Name, err)
				}
			}
			if len(normals) != len(positions) {
				hasNormals = false
			}

			baseVertex := uint32(len(mesh.Positions))
			for i, p := range positions {
				mesh.Positions = append(mesh.Positions, math.NewVec3(p[0], p[1], p[2]))
				if i < len(normals) {
					n := normals[i]
					mesh.Normals = append(mesh.Normals, math.NewVec3(n[0], n[1], n[2]))
				} else {
					mesh.Normals = append(mesh.Normals, math.NewVec3Zero())
				}
			}

			if prim.Indices != nil {
				indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: read indices: %w", m.Name, err)
				}
				for _, idx := range indices {
					mesh.Indices = append(mesh.Indices, baseVertex+idx)
				}
			} else {
				for i := range positions {
					mesh.Indices = append(mesh.Indices, baseVertex+uint32(i))
				}
			}
		}
	}

	if len(mesh.Positions) == 0 {
		return nil, fmt.Errorf("gltf %s: no triangle geometry", path)
	}
	if !hasNormals {
		mesh.CalculateNormals()
	}
	return mesh, nil
}
