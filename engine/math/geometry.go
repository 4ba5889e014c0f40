package math

/**
 * @brief Generates smooth vertex normals for an indexed triangle list.
 * Each face normal is accumulated into its three vertices (unnormalized,
 * so larger faces weigh more) and the sums are normalized at the end.
 * Triangles referencing out-of-range vertices are skipped.
 */
func GeometryGenerateNormals(positions []Vec3, indices []uint32) []Vec3 {
	normals := make([]Vec3, len(positions))
	count := uint32(len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]
		if i0 >= count || i1 >= count || i2 >= count {
			continue
		}

		edge1 := positions[i1].Sub(positions[i0])
		edge2 := positions[i2].Sub(positions[i0])
		face := edge1.Cross(edge2)

		normals[i0] = normals[i0].Add(face)
		normals[i1] = normals[i1].Add(face)
		normals[i2] = normals[i2].Add(face)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
