package math

func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	return &Transform{
		position: position,
		rotation: rotation,
		scale:    scale,
		isDirty:  true,
		world:    NewMat4Identity(),
	}
}

func (t *Transform) Position() Vec3 {
	return t.position
}

func (t *Transform) Rotation() Quaternion {
	return t.rotation
}

func (t *Transform) Scale() Vec3 {
	return t.scale
}

func (t *Transform) Parent() *Transform {
	return t.parent
}

// Children returns the child transforms. The slice must not be modified.
func (t *Transform) Children() []*Transform {
	return t.children
}

func (t *Transform) IsDirty() bool {
	return t.isDirty
}

func (t *Transform) SetPosition(position Vec3) {
	t.position = position
	t.markDirty()
}

func (t *Transform) Translate(translation Vec3) {
	t.position = t.position.Add(translation)
	t.markDirty()
}

/**
 * @brief Sets the rotation from Euler angles in radians.
 * @param pitch rotation around Y.
 * @param yaw rotation around Z.
 * @param roll rotation around X.
 */
func (t *Transform) SetRotation(pitch, yaw, roll float32) {
	t.rotation = NewQuatFromEuler(pitch, yaw, roll)
	t.markDirty()
}

// Rotate applies rotation on top of the current local rotation.
func (t *Transform) Rotate(rotation Quaternion) {
	t.rotation = t.rotation.Mul(rotation)
	t.markDirty()
}

func (t *Transform) SetScale(scale Vec3) {
	t.scale = scale
	t.markDirty()
}

/**
 * @brief Appends child to this transform, detaching it from its previous
 * parent first. Adding an ancestor of t (or t itself) is ignored.
 */
func (t *Transform) AddChild(child *Transform) {
	if child == nil || child.IsAncestorOf(t) {
		return
	}
	if child.parent == t {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = t
	t.children = append(t.children, child)
	child.markDirty()
}

/**
 * @brief Detaches child from this transform. Children of other
 * transforms are ignored.
 */
func (t *Transform) RemoveChild(child *Transform) {
	if child == nil || child.parent != t {
		return
	}
	for i, c := range t.children {
		if c == child {
			t.children = append(t.children[:i], t.children[i+1:]...)
			break
		}
	}
	child.parent = nil
	child.markDirty()
}

// IsAncestorOf reports whether t is other or one of its ancestors.
func (t *Transform) IsAncestorOf(other *Transform) bool {
	for n := other; n != nil; n = n.parent {
		if n == t {
			return true
		}
	}
	return false
}

// GetLocal composes translation * rotation * scale.
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	tr := NewMat4Translation(t.position)
	tr = tr.Mul(t.rotation.ToMat4())
	return tr.Mul(NewMat4Scale(t.scale))
}

/**
 * @brief Returns the world matrix, rebuilding it only when this transform
 * or one of its ancestors changed since the last call.
 */
func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.isDirty {
		local := t.GetLocal()
		if t.parent != nil {
			t.world = t.parent.GetWorld().Mul(local)
		} else {
			t.world = local
		}
		t.isDirty = false
	}
	return t.world
}

// WorldPosition returns the translation of the world matrix.
func (t *Transform) WorldPosition() Vec3 {
	return t.GetWorld().Translation()
}

// markDirty flags t and its descendants. A node that is already dirty has
// dirty descendants, so the walk stops there.
func (t *Transform) markDirty() {
	if t.isDirty {
		return
	}
	t.isDirty = true
	for _, c := range t.children {
		c.markDirty()
	}
}
