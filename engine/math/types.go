package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. Stored as (x, y, z, w). */
type Quaternion Vec4

/**
 * @brief a 4x4 matrix, typically used to represent object transformations.
 *
 * Elements are stored column-major and vectors are treated as columns, so
 * a.Mul(b) applied to v is a(b(v)). Indices:
 *
 *	| 0  4  8  12 |
 *	| 1  5  9  13 |
 *	| 2  6  10 14 |
 *	| 3  7  11 15 |
 *
 * The translation of an affine transform lives in elements 12, 13 and 14.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the transform of an object in the world.
 * Transforms form a tree: each node owns its children and keeps a
 * non-owning pointer to its parent. The world matrix is cached and only
 * rebuilt after the node, or one of its ancestors, has changed.
 * NOTE: The properties of this should not be edited directly, but done
 * via the methods in transform.go so the dirty flags stay coherent.
 */
type Transform struct {
	/** @brief The position relative to the parent. */
	position Vec3
	/** @brief The rotation relative to the parent. */
	rotation Quaternion
	/** @brief The scale relative to the parent. */
	scale Vec3
	/**
	 * @brief Indicates that the cached world matrix no longer matches the
	 * local fields or the parent chain.
	 */
	isDirty bool
	/** @brief The cached world matrix, valid while isDirty is false. */
	world Mat4
	/** @brief The parent transform if one is assigned. Can also be nil. */
	parent *Transform
	/** @brief The child transforms, in insertion order. */
	children []*Transform
}
