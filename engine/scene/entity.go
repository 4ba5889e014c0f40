package scene

import (
	"sort"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// Entity is a named node of the scene forest. It owns its transform and
// its children; the parent pointer is a back-reference only. The child
// list and the transform's child list always hold the same nodes in the
// same order.
type Entity struct {
	id     uint64
	name   string
	active bool

	transform *math.Transform

	// MeshKey and MaterialKey reference assets in the registry. Empty
	// means absent.
	MeshKey     string
	MaterialKey string

	behavior     Behavior
	behaviorName string
	started      bool

	children []*Entity
	parent   *Entity

	components map[string]any

	camera *Camera
	graph  *Graph
}

func newEntity(id uint64, name string) *Entity {
	return &Entity{
		id:        id,
		name:      name,
		active:    true,
		transform: math.TransformCreate(),
	}
}

func (e *Entity) ID() uint64 {
	return e.id
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) SetName(name string) {
	e.name = name
}

func (e *Entity) Active() bool {
	return e.active
}

// SetActive toggles the entity. An inactive entity skips its own update
// and the update of its whole subtree, and is not drawn.
func (e *Entity) SetActive(active bool) {
	e.active = active
}

func (e *Entity) Transform() *math.Transform {
	return e.transform
}

func (e *Entity) Parent() *Entity {
	return e.parent
}

// Children returns the child entities. The slice must not be modified.
func (e *Entity) Children() []*Entity {
	return e.children
}

// Camera returns the camera built on this entity, or nil.
func (e *Entity) Camera() *Camera {
	return e.camera
}

func (e *Entity) Behavior() Behavior {
	return e.behavior
}

func (e *Entity) BehaviorName() string {
	return e.behaviorName
}

// Graph returns the graph the entity is registered in, or nil.
func (e *Entity) Graph() *Graph {
	return e.graph
}

// Behavior-facing capabilities.

func (e *Entity) Translate(dx, dy, dz float32) {
	e.transform.Translate(math.NewVec3(dx, dy, dz))
}

func (e *Entity) SetPosition(x, y, z float32) {
	e.transform.SetPosition(math.NewVec3(x, y, z))
}

func (e *Entity) SetRotation(pitch, yaw, roll float32) {
	e.transform.SetRotation(pitch, yaw, roll)
}

// Rotate turns the entity by the given Euler angles on top of its current
// rotation.
func (e *Entity) Rotate(pitch, yaw, roll float32) {
	e.transform.Rotate(math.NewQuatFromEuler(pitch, yaw, roll))
}

func (e *Entity) SetScale(x, y, z float32) {
	e.transform.SetScale(math.NewVec3(x, y, z))
}

func (e *Entity) Position() math.Vec3 {
	return e.transform.Position()
}

func (e *Entity) Scale() math.Vec3 {
	return e.transform.Scale()
}

// WorldPosition returns the translation of the entity's world matrix.
func (e *Entity) WorldPosition() math.Vec3 {
	return e.transform.WorldPosition()
}

// Input returns the input state of the entity's graph, or nil.
func (e *Entity) Input() *core.Input {
	if e.graph == nil {
		return nil
	}
	return e.graph.input
}

// AddComponent stores component under name, replacing any previous one.
// Components are free-form data owned by the entity; they are not part of
// snapshots.
func (e *Entity) AddComponent(name string, component any) {
	if e.components == nil {
		e.components = make(map[string]any)
	}
	e.components[name] = component
}

// Component returns the component stored under name, or nil.
func (e *Entity) Component(name string) any {
	return e.components[name]
}

func (e *Entity) RemoveComponent(name string) {
	delete(e.components, name)
}

// ComponentNames lists the component names in sorted order.
func (e *Entity) ComponentNames() []string {
	names := make([]string, 0, len(e.components))
	for n := range e.components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ComponentAs returns the component stored under name when it has type T.
func ComponentAs[T any](e *Entity, name string) (T, bool) {
	c, ok := e.components[name].(T)
	return c, ok
}

/**
 * @brief Appends child, detaching it from its current parent. Adding an
 * ancestor of e (or e itself) is ignored. When e is registered in a graph
 * the child's subtree is registered too.
 */
func (e *Entity) AddChild(child *Entity) {
	if child != nil && child.graph != nil && child.graph != e.graph {
		child.graph.Remove(child)
	}
	if !e.attachChild(child) {
		return
	}
	if e.graph != nil {
		e.graph.register(child)
	}
}

/**
 * @brief Detaches child from e. When e is registered in a graph this
 * removes the child's subtree from the graph.
 */
func (e *Entity) RemoveChild(child *Entity) {
	if child == nil || child.parent != e {
		return
	}
	if e.graph != nil && child.graph == e.graph {
		e.graph.Remove(child)
		return
	}
	e.detachChild(child)
}

// IsAncestorOf reports whether e is other or one of its ancestors.
func (e *Entity) IsAncestorOf(other *Entity) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// FindChild searches the subtree below e, depth first, for the first
// entity with the given name.
func (e *Entity) FindChild(name string) *Entity {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
		if found := c.FindChild(name); found != nil {
			return found
		}
	}
	return nil
}

// Descendants returns every entity below e in pre-order.
func (e *Entity) Descendants() []*Entity {
	var out []*Entity
	for _, c := range e.children {
		walk(c, func(n *Entity) bool {
			out = append(out, n)
			return true
		})
	}
	return out
}

// attachChild links child under e in both forests. It reports false when
// nothing changed.
func (e *Entity) attachChild(child *Entity) bool {
	if child == nil || child.IsAncestorOf(e) || child.parent == e {
		return false
	}
	if child.parent != nil {
		child.parent.detachChild(child)
	} else if child.graph != nil {
		child.graph.removeRoot(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.transform.AddChild(child.transform)
	return true
}

func (e *Entity) detachChild(child *Entity) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			break
		}
	}
	child.parent = nil
	e.transform.RemoveChild(child.transform)
}

// walk visits root and its subtree in pre-order. Returning false from fn
// skips the children of that entity.
func walk(root *Entity, fn func(*Entity) bool) {
	if !fn(root) {
		return
	}
	for _, c := range root.children {
		walk(c, fn)
	}
}
