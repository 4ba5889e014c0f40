package scene

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/lumen/engine/core"
)

// Graph owns the entity forest. Every entity reachable from a root is in
// the id index exactly once. The graph is not safe for concurrent use: one
// update or render pass runs against it at a time.
type Graph struct {
	roots        []*Entity
	index        map[uint64]*Entity
	activeCamera *Camera

	ids       *core.IDGenerator
	input     *core.Input
	behaviors *BehaviorRegistry
	events    *core.EventBus
	logger    *log.Logger
}

// NewGraph creates an empty graph. ids, behaviors and events may be nil;
// a private id generator and an empty behavior registry are created for
// the first two.
func NewGraph(logger *log.Logger, ids *core.IDGenerator, behaviors *BehaviorRegistry, events *core.EventBus) *Graph {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	if ids == nil {
		ids = core.NewIDGenerator()
	}
	if behaviors == nil {
		behaviors = NewBehaviorRegistry()
	}
	return &Graph{
		index:     make(map[uint64]*Entity),
		ids:       ids,
		behaviors: behaviors,
		events:    events,
		logger:    logger.WithPrefix("scene"),
	}
}

// NewEntity creates a detached entity with a fresh id. It joins the graph
// through Add.
func (g *Graph) NewEntity(name string) *Entity {
	return newEntity(g.ids.Next(), name)
}

// SetInput makes input available to the behaviors of this graph.
func (g *Graph) SetInput(input *core.Input) {
	g.input = input
}

func (g *Graph) Input() *core.Input {
	return g.input
}

func (g *Graph) Behaviors() *BehaviorRegistry {
	return g.behaviors
}

func (g *Graph) Roots() []*Entity {
	return g.roots
}

func (g *Graph) Len() int {
	return len(g.index)
}

/**
 * @brief Registers entity, and its subtree, under parent or as a root when
 * parent is nil. Adding an entity whose id is already indexed does
 * nothing. The parent must already belong to the graph.
 */
func (g *Graph) Add(entity *Entity, parent *Entity) error {
	if entity == nil || g.index[entity.id] == entity {
		return nil
	}
	if parent != nil {
		if parent.graph != g {
			return fmt.Errorf("add %q under %q: %w", entity.name, parent.name, core.ErrNotInGraph)
		}
		if entity.IsAncestorOf(parent) {
			return fmt.Errorf("add %q under %q: %w", entity.name, parent.name, core.ErrCycle)
		}
		if entity.graph != nil && entity.graph != g {
			entity.graph.Remove(entity)
		}
		parent.attachChild(entity)
	} else {
		if entity.graph != nil && entity.graph != g {
			entity.graph.Remove(entity)
		}
		if entity.parent != nil {
			entity.parent.detachChild(entity)
		}
		g.roots = append(g.roots, entity)
	}
	g.register(entity)
	return nil
}

/**
 * @brief Removes entity and its whole subtree from the graph. The subtree
 * stays intact as a detached tree; every removed behavior gets OnDestroy.
 * Reports whether anything was removed.
 */
func (g *Graph) Remove(entity *Entity) bool {
	if entity == nil || g.index[entity.id] != entity {
		return false
	}
	if entity.parent != nil {
		entity.parent.detachChild(entity)
	} else {
		g.removeRoot(entity)
	}

	walk(entity, func(e *Entity) bool {
		if g.index[e.id] == e {
			delete(g.index, e.id)
		}
		e.graph = nil
		g.destroyBehavior(e)
		if g.activeCamera != nil && g.activeCamera.Entity == e {
			g.activeCamera = nil
		}
		g.fire(core.EVENT_CODE_ENTITY_REMOVED, e)
		return true
	})
	g.logger.Info("entity removed", "id", entity.id, "name", entity.name)
	return true
}

/**
 * @brief Moves entity under newParent, or to the roots when newParent is
 * nil. Both must belong to the graph. Moving an entity below itself
 * returns ErrCycle.
 */
func (g *Graph) Reparent(entity *Entity, newParent *Entity) error {
	if entity == nil || entity.graph != g {
		return core.ErrNotInGraph
	}
	if newParent == nil {
		if entity.parent == nil {
			return nil
		}
		entity.parent.detachChild(entity)
		g.roots = append(g.roots, entity)
		return nil
	}
	if newParent.graph != g {
		return core.ErrNotInGraph
	}
	if entity.IsAncestorOf(newParent) {
		return fmt.Errorf("reparent %q under %q: %w", entity.name, newParent.name, core.ErrCycle)
	}
	newParent.attachChild(entity)
	return nil
}

// FindByID returns the entity with the given id, or nil.
func (g *Graph) FindByID(id uint64) *Entity {
	e, ok := g.index[id]
	if !ok {
		g.logger.Debug("entity not found", "id", id)
	}
	return e
}

// FindByName returns the first entity in pre-order with the given name,
// or nil.
func (g *Graph) FindByName(name string) *Entity {
	var found *Entity
	g.Walk(func(e *Entity) bool {
		if found != nil {
			return false
		}
		if e.name == name {
			found = e
			return false
		}
		return true
	})
	if found == nil {
		g.logger.Debug("entity not found", "name", name)
	}
	return found
}

// Walk visits every entity in pre-order. Returning false from fn skips
// the children of that entity.
func (g *Graph) Walk(fn func(*Entity) bool) {
	for _, r := range g.roots {
		walk(r, fn)
	}
}

// Entities returns every registered entity in pre-order.
func (g *Graph) Entities() []*Entity {
	out := make([]*Entity, 0, len(g.index))
	g.Walk(func(e *Entity) bool {
		out = append(out, e)
		return true
	})
	return out
}

// HierarchyNode is a read-only view of the forest.
type HierarchyNode struct {
	ID       uint64
	Name     string
	Active   bool
	Children []HierarchyNode
}

func (g *Graph) Hierarchy() []HierarchyNode {
	nodes := make([]HierarchyNode, 0, len(g.roots))
	for _, r := range g.roots {
		nodes = append(nodes, hierarchyOf(r))
	}
	return nodes
}

func hierarchyOf(e *Entity) HierarchyNode {
	n := HierarchyNode{ID: e.id, Name: e.name, Active: e.active}
	for _, c := range e.children {
		n.Children = append(n.Children, hierarchyOf(c))
	}
	return n
}

func (g *Graph) ActiveCamera() *Camera {
	return g.activeCamera
}

// SetActiveCamera selects the camera used for rendering. A camera that is
// not yet part of the graph is added as a root.
func (g *Graph) SetActiveCamera(camera *Camera) {
	if camera != nil && camera.graph != g {
		if err := g.Add(camera.Entity, nil); err != nil {
			g.logger.Error("active camera not added", "err", err)
			return
		}
	}
	g.activeCamera = camera
}

/**
 * @brief Runs one frame of behaviors. Roots are visited in order and each
 * subtree is finished before the next sibling starts. An inactive entity
 * stops the walk for its whole subtree.
 */
func (g *Graph) Update(deltaTime float64) {
	roots := append([]*Entity(nil), g.roots...)
	for _, r := range roots {
		g.updateEntity(r, deltaTime)
	}
}

func (g *Graph) updateEntity(e *Entity, deltaTime float64) {
	// a behavior earlier in the pass may have removed e
	if !e.active || e.graph != g {
		return
	}
	if e.camera != nil {
		e.camera.ResetView()
	}
	g.runBehavior(e, deltaTime)

	children := append([]*Entity(nil), e.children...)
	for _, c := range children {
		g.updateEntity(c, deltaTime)
	}
}

// runBehavior isolates failures: an error or panic is logged and the
// traversal goes on. A behavior whose Start fails is detached.
func (g *Graph) runBehavior(e *Entity, deltaTime float64) {
	b := e.behavior
	if b == nil {
		return
	}
	if !e.started {
		e.started = true
		if err := safeCall(b.Start); err != nil {
			g.logger.Error("behavior start failed", "id", e.id, "name", e.name, "behavior", e.behaviorName, "err", err)
			e.behavior = nil
			e.behaviorName = ""
			return
		}
	}
	if err := safeCall(func() error { return b.Update(deltaTime) }); err != nil {
		g.logger.Error("behavior update failed", "id", e.id, "name", e.name, "behavior", e.behaviorName, "err", err)
	}
}

/**
 * @brief Instantiates the behavior registered under name and attaches it
 * to entity, replacing any previous one. On failure the entity is left
 * without a behavior and the error is logged and returned.
 */
func (g *Graph) AttachBehavior(entity *Entity, name string) error {
	var b Behavior
	err := safeCall(func() error {
		var err error
		b, err = g.behaviors.Create(name, entity)
		return err
	})
	if err != nil {
		g.destroyBehavior(entity)
		g.logger.Error("behavior not attached", "id", entity.id, "name", entity.name, "behavior", name, "err", err)
		return err
	}
	g.SetBehavior(entity, name, b)
	return nil
}

// SetBehavior attaches an already built behavior. A nil behavior detaches
// the current one.
func (g *Graph) SetBehavior(entity *Entity, name string, b Behavior) {
	g.destroyBehavior(entity)
	entity.behavior = b
	entity.behaviorName = name
	entity.started = false
}

func (g *Graph) destroyBehavior(e *Entity) {
	b := e.behavior
	if b == nil {
		return
	}
	e.behavior = nil
	e.behaviorName = ""
	e.started = false
	if err := safeCall(func() error { b.OnDestroy(); return nil }); err != nil {
		g.logger.Error("behavior destroy failed", "id", e.id, "name", e.name, "err", err)
	}
}

// Clear removes every root.
func (g *Graph) Clear() {
	roots := append([]*Entity(nil), g.roots...)
	for _, r := range roots {
		g.Remove(r)
	}
}

// register indexes root and its subtree, skipping entities already
// indexed. An entity built by another graph's generator may collide with
// an indexed id; it is re-keyed.
func (g *Graph) register(root *Entity) {
	walk(root, func(e *Entity) bool {
		if other, ok := g.index[e.id]; ok {
			if other == e {
				return true
			}
			previous := e.id
			e.id = g.ids.Next()
			g.logger.Warn("entity id taken, reassigned", "previous", previous, "id", e.id, "name", e.name)
		}
		g.index[e.id] = e
		e.graph = g
		g.ids.Observe(e.id)
		g.fire(core.EVENT_CODE_ENTITY_ADDED, e)
		g.logger.Info("entity added", "id", e.id, "name", e.name)
		return true
	})
}

func (g *Graph) removeRoot(entity *Entity) {
	for i, r := range g.roots {
		if r == entity {
			g.roots = append(g.roots[:i], g.roots[i+1:]...)
			return
		}
	}
}

func (g *Graph) fire(code core.SystemEventCode, e *Entity) {
	if g.events == nil {
		return
	}
	ctx := core.EventContext{}
	ctx.Data.U64[0] = e.id
	ctx.Data.C[0] = e.name
	g.events.Fire(code, g, ctx)
}
