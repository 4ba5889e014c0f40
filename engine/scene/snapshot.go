package scene

import (
	"github.com/spaghettifunk/lumen/engine/math"
)

// EntitySnapshot is the serializable record of an entity and its subtree.
type EntitySnapshot struct {
	ID       uint64           `json:"id" toml:"id" yaml:"id"`
	Name     string           `json:"name" toml:"name" yaml:"name"`
	Active   bool             `json:"active" toml:"active" yaml:"active"`
	Position [3]float32       `json:"position" toml:"position" yaml:"position"`
	Rotation [4]float32       `json:"rotation" toml:"rotation" yaml:"rotation"`
	Scale    [3]float32       `json:"scale" toml:"scale" yaml:"scale"`
	Mesh     string           `json:"mesh,omitempty" toml:"mesh,omitempty" yaml:"mesh,omitempty"`
	Material string           `json:"material,omitempty" toml:"material,omitempty" yaml:"material,omitempty"`
	Behavior string           `json:"behavior,omitempty" toml:"behavior,omitempty" yaml:"behavior,omitempty"`
	Children []EntitySnapshot `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// SceneSnapshot is the serializable record of a whole graph.
type SceneSnapshot struct {
	Name     string           `json:"name" toml:"name" yaml:"name"`
	Entities []EntitySnapshot `json:"entities" toml:"entities" yaml:"entities"`
}

// Snapshot records e and its subtree.
func (e *Entity) Snapshot() EntitySnapshot {
	t := e.transform
	s := EntitySnapshot{
		ID:       e.id,
		Name:     e.name,
		Active:   e.active,
		Position: t.Position().Elements(),
		Rotation: t.Rotation().Elements(),
		Scale:    t.Scale().Elements(),
		Mesh:     e.MeshKey,
		Material: e.MaterialKey,
		Behavior: e.behaviorName,
	}
	for _, c := range e.children {
		s.Children = append(s.Children, c.Snapshot())
	}
	return s
}

/**
 * @brief Builds a detached entity from a snapshot. Only the name, the
 * active flag, the position and the asset keys are restored: rotation and
 * scale come back as identity and one, the entity gets a fresh id, and
 * children and behavior are left to Restore.
 */
func (g *Graph) EntityFromSnapshot(s EntitySnapshot) *Entity {
	e := g.NewEntity(s.Name)
	e.active = s.Active
	e.transform.SetPosition(math.NewVec3(s.Position[0], s.Position[1], s.Position[2]))
	e.MeshKey = s.Mesh
	e.MaterialKey = s.Material
	return e
}

// Snapshot records every root except the active camera, which belongs to
// the engine rather than to the scene content.
func (g *Graph) Snapshot(name string) SceneSnapshot {
	s := SceneSnapshot{Name: name}
	for _, r := range g.roots {
		if g.activeCamera != nil && g.activeCamera.Entity == r {
			continue
		}
		s.Entities = append(s.Entities, r.Snapshot())
	}
	return s
}

// Restore adds the entities of snapshot to the graph as new roots and
// returns them. Behaviors are attached by name; an unknown behavior is
// logged and the entity is kept without one.
func (g *Graph) Restore(snapshot SceneSnapshot) []*Entity {
	roots := make([]*Entity, 0, len(snapshot.Entities))
	for _, s := range snapshot.Entities {
		e := g.restoreEntity(s)
		if err := g.Add(e, nil); err != nil {
			g.logger.Error("restore entity", "name", s.Name, "err", err)
			continue
		}
		g.restoreBehaviors(e, s)
		roots = append(roots, e)
	}
	return roots
}

func (g *Graph) restoreEntity(s EntitySnapshot) *Entity {
	e := g.EntityFromSnapshot(s)
	for _, cs := range s.Children {
		e.attachChild(g.restoreEntity(cs))
	}
	return e
}

func (g *Graph) restoreBehaviors(e *Entity, s EntitySnapshot) {
	if s.Behavior != "" {
		_ = g.AttachBehavior(e, s.Behavior)
	}
	for i, cs := range s.Children {
		if i < len(e.children) {
			g.restoreBehaviors(e.children[i], cs)
		}
	}
}
