package math

import (
	m "math"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func ktan(x float32) float32 {
	return float32(m.Tan(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{1, 1, 1}
}

func NewVec3Up() Vec3 {
	return Vec3{0, 1, 0}
}

// NewVec3Forward returns the forward direction, which is -Z.
func NewVec3Forward() Vec3 {
	return Vec3{0, 0, -1}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul multiplies componentwise.
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float32 {
	return ksqrt(v.LengthSquared())
}

// Normalize returns a unit-length copy of v. A zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Reflect reflects the incident vector about the normal n, which is
// expected to be normalized: v - 2*dot(n, v)*n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.MulScalar(2 * n.Dot(v)))
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 */
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return kabs(v.X-other.X) <= tolerance &&
		kabs(v.Y-other.Y) <= tolerance &&
		kabs(v.Z-other.Z) <= tolerance
}

func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Elements returns the components as an array, handy for serialization.
func (v Vec3) Elements() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// ------------------------------------------
// Vector 4
// ------------------------------------------

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

func (v Vec4) ToVec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// ------------------------------------------
// Matrix 4
// ------------------------------------------

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 */
func NewMat4Identity() Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0
	out_matrix.Data[5] = 1.0
	out_matrix.Data[10] = 1.0
	out_matrix.Data[15] = 1.0
	return out_matrix
}

// At returns the element at the given row and column.
func (mt Mat4) At(row, col int) float32 {
	return mt.Data[col*4+row]
}

// Set writes the element at the given row and column.
func (mt *Mat4) Set(row, col int, value float32) {
	mt.Data[col*4+row] = value
}

/**
 * @brief Returns the result of multiplying mt and other (mt * other).
 * Applied to a vector, other acts first.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out_matrix := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += mt.Data[k*4+row] * other.Data[col*4+k]
			}
			out_matrix.Data[col*4+row] = sum
		}
	}
	return out_matrix
}

// MulVec4 transforms v by the matrix.
func (mt Mat4) MulVec4(v Vec4) Vec4 {
	d := mt.Data
	return Vec4{
		d[0]*v.X + d[4]*v.Y + d[8]*v.Z + d[12]*v.W,
		d[1]*v.X + d[5]*v.Y + d[9]*v.Z + d[13]*v.W,
		d[2]*v.X + d[6]*v.Y + d[10]*v.Z + d[14]*v.W,
		d[3]*v.X + d[7]*v.Y + d[11]*v.Z + d[15]*v.W,
	}
}

// MulPoint transforms p as a point (w = 1) without a perspective divide.
func (mt Mat4) MulPoint(p Vec3) Vec3 {
	return mt.MulVec4(p.ToVec4(1)).ToVec3()
}

// MulDirection transforms d as a direction (w = 0).
func (mt Mat4) MulDirection(d Vec3) Vec3 {
	return mt.MulVec4(d.ToVec4(0)).ToVec3()
}

// Translation returns the translation column of the matrix.
func (mt Mat4) Translation() Vec3 {
	return Vec3{mt.Data[12], mt.Data[13], mt.Data[14]}
}

/**
 * @brief Compares all elements of mt and other and ensures the difference
 * is less than tolerance.
 */
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := 0; i < 16; i++ {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}

/**
 * @brief Creates and returns an orthographic projection matrix. Typically used to
 * render flat or 2D scenes.
 *
 * @param left The left side of the view frustum.
 * @param right The right side of the view frustum.
 * @param bottom The bottom side of the view frustum.
 * @param top The top side of the view frustum.
 * @param near_clip The near clipping plane distance.
 * @param far_clip The far clipping plane distance.
 * @return A new orthographic projection matrix.
 */
func NewMat4Orthographic(left, right, bottom, top, near_clip, far_clip float32) Mat4 {
	out_matrix := NewMat4Identity()

	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far_clip - near_clip)

	out_matrix.Set(0, 0, 2.0*rl)
	out_matrix.Set(1, 1, 2.0*tb)
	out_matrix.Set(2, 2, -2.0*fn)

	out_matrix.Set(0, 3, -(right+left)*rl)
	out_matrix.Set(1, 3, -(top+bottom)*tb)
	out_matrix.Set(2, 3, -(far_clip+near_clip)*fn)
	return out_matrix
}

/**
 * @brief Creates and returns a perspective matrix. Typically used to render 3d scenes.
 *
 * @param fov_radians The field of view in radians.
 * @param aspect_ratio The aspect ratio.
 * @param near_clip The near clipping plane distance.
 * @param far_clip The far clipping plane distance.
 * @return A new perspective matrix.
 */
func NewMat4Perspective(fov_radians, aspect_ratio, near_clip, far_clip float32) Mat4 {
	f := 1.0 / ktan(fov_radians*0.5)
	out_matrix := Mat4{}
	out_matrix.Set(0, 0, f/aspect_ratio)
	out_matrix.Set(1, 1, f)
	out_matrix.Set(2, 2, (far_clip+near_clip)/(near_clip-far_clip))
	out_matrix.Set(2, 3, (2.0*far_clip*near_clip)/(near_clip-far_clip))
	out_matrix.Set(3, 2, -1.0)
	return out_matrix
}

/**
 * @brief Creates and returns a look-at matrix, or a matrix looking
 * at target from the perspective of position.
 *
 * The rotation rows are (right, up, -forward) and the translation
 * column is (-right.eye, -up.eye, forward.eye).
 *
 * @param position The position of the matrix.
 * @param target The position to "look at".
 * @param up The up vector.
 * @return A matrix looking at target from the perspective of position.
 */
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	forward := target.Sub(position).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)

	out_matrix := NewMat4Identity()
	out_matrix.Set(0, 0, right.X)
	out_matrix.Set(0, 1, right.Y)
	out_matrix.Set(0, 2, right.Z)
	out_matrix.Set(1, 0, trueUp.X)
	out_matrix.Set(1, 1, trueUp.Y)
	out_matrix.Set(1, 2, trueUp.Z)
	out_matrix.Set(2, 0, -forward.X)
	out_matrix.Set(2, 1, -forward.Y)
	out_matrix.Set(2, 2, -forward.Z)
	out_matrix.Set(0, 3, -right.Dot(position))
	out_matrix.Set(1, 3, -trueUp.Dot(position))
	out_matrix.Set(2, 3, forward.Dot(position))
	return out_matrix
}

/**
 * @brief Returns a transposed copy of the provided matrix (rows->colums)
 */
func (mt Mat4) Transposed() Mat4 {
	out_matrix := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out_matrix.Set(col, row, mt.At(row, col))
		}
	}
	return out_matrix
}

/**
 * @brief Creates and returns an inverse of the provided matrix. A singular
 * matrix yields the identity.
 */
func (mt Mat4) Inverse() Mat4 {
	a := mt.Data

	t0 := a[10] * a[15]
	t1 := a[14] * a[11]
	t2 := a[6] * a[15]
	t3 := a[14] * a[7]
	t4 := a[6] * a[11]
	t5 := a[10] * a[7]
	t6 := a[2] * a[15]
	t7 := a[14] * a[3]
	t8 := a[2] * a[11]
	t9 := a[10] * a[3]
	t10 := a[2] * a[7]
	t11 := a[6] * a[3]
	t12 := a[8] * a[13]
	t13 := a[12] * a[9]
	t14 := a[4] * a[13]
	t15 := a[12] * a[5]
	t16 := a[4] * a[9]
	t17 := a[8] * a[5]
	t18 := a[0] * a[13]
	t19 := a[12] * a[1]
	t20 := a[0] * a[9]
	t21 := a[8] * a[1]
	t22 := a[0] * a[5]
	t23 := a[4] * a[1]

	var o [16]float32
	o[0] = (t0*a[5] + t3*a[9] + t4*a[13]) - (t1*a[5] + t2*a[9] + t5*a[13])
	o[1] = (t1*a[1] + t6*a[9] + t9*a[13]) - (t0*a[1] + t7*a[9] + t8*a[13])
	o[2] = (t2*a[1] + t7*a[5] + t10*a[13]) - (t3*a[1] + t6*a[5] + t11*a[13])
	o[3] = (t5*a[1] + t8*a[5] + t11*a[9]) - (t4*a[1] + t9*a[5] + t10*a[9])

	det := a[0]*o[0] + a[4]*o[1] + a[8]*o[2] + a[12]*o[3]
	if kabs(det) < K_FLOAT_EPSILON {
		return NewMat4Identity()
	}
	d := 1.0 / det

	out_matrix := Mat4{}
	out_matrix.Data[0] = d * o[0]
	out_matrix.Data[1] = d * o[1]
	out_matrix.Data[2] = d * o[2]
	out_matrix.Data[3] = d * o[3]
	out_matrix.Data[4] = d * ((t1*a[4] + t2*a[8] + t5*a[12]) - (t0*a[4] + t3*a[8] + t4*a[12]))
	out_matrix.Data[5] = d * ((t0*a[0] + t7*a[8] + t8*a[12]) - (t1*a[0] + t6*a[8] + t9*a[12]))
	out_matrix.Data[6] = d * ((t3*a[0] + t6*a[4] + t11*a[12]) - (t2*a[0] + t7*a[4] + t10*a[12]))
	out_matrix.Data[7] = d * ((t4*a[0] + t9*a[4] + t10*a[8]) - (t5*a[0] + t8*a[4] + t11*a[8]))
	out_matrix.Data[8] = d * ((t12*a[7] + t15*a[11] + t16*a[15]) - (t13*a[7] + t14*a[11] + t17*a[15]))
	out_matrix.Data[9] = d * ((t13*a[3] + t18*a[11] + t21*a[15]) - (t12*a[3] + t19*a[11] + t20*a[15]))
	out_matrix.Data[10] = d * ((t14*a[3] + t19*a[7] + t22*a[15]) - (t15*a[3] + t18*a[7] + t23*a[15]))
	out_matrix.Data[11] = d * ((t17*a[3] + t20*a[7] + t23*a[11]) - (t16*a[3] + t21*a[7] + t22*a[11]))
	out_matrix.Data[12] = d * ((t14*a[10] + t17*a[14] + t13*a[6]) - (t16*a[14] + t12*a[6] + t15*a[10]))
	out_matrix.Data[13] = d * ((t20*a[14] + t12*a[2] + t19*a[10]) - (t18*a[10] + t21*a[14] + t13*a[2]))
	out_matrix.Data[14] = d * ((t18*a[6] + t23*a[14] + t15*a[2]) - (t22*a[14] + t14*a[2] + t19*a[6]))
	out_matrix.Data[15] = d * ((t22*a[10] + t16*a[2] + t21*a[6]) - (t20*a[6] + t23*a[10] + t17*a[2]))
	return out_matrix
}

func NewMat4Translation(position Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[12] = position.X
	out_matrix.Data[13] = position.Y
	out_matrix.Data[14] = position.Z
	return out_matrix
}

func NewMat4Scale(scale Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[0] = scale.X
	out_matrix.Data[5] = scale.Y
	out_matrix.Data[10] = scale.Z
	return out_matrix
}

// NewMat4EulerX returns a counter-clockwise rotation about +X.
func NewMat4EulerX(angle_radians float32) Mat4 {
	out_matrix := NewMat4Identity()
	c := kcos(angle_radians)
	s := ksin(angle_radians)
	out_matrix.Set(1, 1, c)
	out_matrix.Set(1, 2, -s)
	out_matrix.Set(2, 1, s)
	out_matrix.Set(2, 2, c)
	return out_matrix
}

// NewMat4EulerY returns a counter-clockwise rotation about +Y.
func NewMat4EulerY(angle_radians float32) Mat4 {
	out_matrix := NewMat4Identity()
	c := kcos(angle_radians)
	s := ksin(angle_radians)
	out_matrix.Set(0, 0, c)
	out_matrix.Set(0, 2, s)
	out_matrix.Set(2, 0, -s)
	out_matrix.Set(2, 2, c)
	return out_matrix
}

// NewMat4EulerZ returns a counter-clockwise rotation about +Z.
func NewMat4EulerZ(angle_radians float32) Mat4 {
	out_matrix := NewMat4Identity()
	c := kcos(angle_radians)
	s := ksin(angle_radians)
	out_matrix.Set(0, 0, c)
	out_matrix.Set(0, 1, -s)
	out_matrix.Set(1, 0, s)
	out_matrix.Set(1, 1, c)
	return out_matrix
}

// ------------------------------------------
// Quaternion
// ------------------------------------------

func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

/**
 * @brief Creates a quaternion from Euler angles in radians using the
 * half-angle composition. Roll rotates about X, pitch about Y and yaw
 * about Z.
 */
func NewQuatFromEuler(pitch, yaw, roll float32) Quaternion {
	cy := kcos(yaw * 0.5)
	sy := ksin(yaw * 0.5)
	cp := kcos(pitch * 0.5)
	sp := ksin(pitch * 0.5)
	cr := kcos(roll * 0.5)
	sr := ksin(roll * 0.5)

	return Quaternion{
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
		W: cr*cp*cy + sr*sp*sy,
	}
}

func NewQuatFromAxisAngle(axis Vec3, angle float32) Quaternion {
	half_angle := 0.5 * angle
	s := ksin(half_angle)
	c := kcos(half_angle)
	a := axis.Normalize()
	return Quaternion{s * a.X, s * a.Y, s * a.Z, c}
}

func (q Quaternion) Normal() float32 {
	return ksqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

func (q Quaternion) Normalize() Quaternion {
	normal := q.Normal()
	if normal == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{q.X / normal, q.Y / normal, q.Z / normal, q.W / normal}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.X*other.W + q.Y*other.Z - q.Z*other.Y + q.W*other.X,
		Y: -q.X*other.Z + q.Y*other.W + q.Z*other.X + q.W*other.Y,
		Z: q.X*other.Y - q.Y*other.X + q.Z*other.W + q.W*other.Z,
		W: -q.X*other.X - q.Y*other.Y - q.Z*other.Z + q.W*other.W,
	}
}

// ToMat4 returns the rotation matrix of the normalized quaternion.
func (q Quaternion) ToMat4() Mat4 {
	out_matrix := NewMat4Identity()

	n := q.Normalize()

	out_matrix.Set(0, 0, 1.0-2.0*n.Y*n.Y-2.0*n.Z*n.Z)
	out_matrix.Set(0, 1, 2.0*n.X*n.Y-2.0*n.Z*n.W)
	out_matrix.Set(0, 2, 2.0*n.X*n.Z+2.0*n.Y*n.W)

	out_matrix.Set(1, 0, 2.0*n.X*n.Y+2.0*n.Z*n.W)
	out_matrix.Set(1, 1, 1.0-2.0*n.X*n.X-2.0*n.Z*n.Z)
	out_matrix.Set(1, 2, 2.0*n.Y*n.Z-2.0*n.X*n.W)

	out_matrix.Set(2, 0, 2.0*n.X*n.Z-2.0*n.Y*n.W)
	out_matrix.Set(2, 1, 2.0*n.Y*n.Z+2.0*n.X*n.W)
	out_matrix.Set(2, 2, 1.0-2.0*n.X*n.X-2.0*n.Y*n.Y)

	return out_matrix
}

func (q Quaternion) Elements() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

/**
 * @brief Converts provided degrees to radians.
 */
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}
