package scene

import (
	"errors"
	"fmt"
	m "math"
	"strings"
	"testing"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

const tolerance = 1e-5

// recorder collects the hook calls of every behavior built by it.
type recorder struct {
	calls []string
}

func (r *recorder) factory(startErr, updateErr error, panicOnUpdate bool) BehaviorFactory {
	return func(api API) (Behavior, error) {
		name := api.Name()
		return &FuncBehavior{
			StartFn: func() error {
				r.calls = append(r.calls, "start:"+name)
				return startErr
			},
			UpdateFn: func(dt float64) error {
				r.calls = append(r.calls, "update:"+name)
				if panicOnUpdate {
					panic("boom")
				}
				return updateErr
			},
			DestroyFn: func() {
				r.calls = append(r.calls, "destroy:"+name)
			},
		}, nil
	}
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func newTestGraph(rec *recorder) *Graph {
	behaviors := NewBehaviorRegistry()
	behaviors.Register("record", rec.factory(nil, nil, false))
	behaviors.Register("fail-start", rec.factory(errors.New("no"), nil, false))
	behaviors.Register("fail-update", rec.factory(nil, errors.New("no"), false))
	behaviors.Register("panic", rec.factory(nil, nil, true))
	return NewGraph(core.NewNopLogger(), core.NewIDGenerator(), behaviors, nil)
}

func mustAdd(t *testing.T, g *Graph, e, parent *Entity) {
	t.Helper()
	if err := g.Add(e, parent); err != nil {
		t.Fatalf("add %s: %v", e.Name(), err)
	}
}

func TestNewEntityDefaults(t *testing.T) {
	g := newTestGraph(&recorder{})
	a := g.NewEntity("a")
	b := g.NewEntity("b")
	if a.ID() >= b.ID() {
		t.Errorf("ids should increase: %d then %d", a.ID(), b.ID())
	}
	if !a.Active() || a.Parent() != nil || len(a.Children()) != 0 {
		t.Error("new entity should be active and detached")
	}
	if a.MeshKey != "" || a.MaterialKey != "" || a.Behavior() != nil {
		t.Error("new entity should carry no assets or behavior")
	}
}

func TestScenarioActivationGating(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)

	r := g.NewEntity("R")
	c := g.NewEntity("C")
	mustAdd(t, g, r, nil)
	mustAdd(t, g, c, r)
	c.SetPosition(1, 0, 0)
	g.AttachBehavior(r, "record")
	g.AttachBehavior(c, "record")

	r.Translate(2, 0, 0)
	got := c.Transform().GetWorld().Translation()
	if !got.Compare(math.NewVec3(3, 0, 0), tolerance) {
		t.Fatalf("C world translation = %v, want (3,0,0)", got)
	}

	g.Update(0.016)
	if rec.count("update:R") != 1 || rec.count("update:C") != 1 {
		t.Fatalf("calls = %v", rec.calls)
	}

	c.SetActive(false)
	g.Update(0.016)
	g.Update(0.016)
	if rec.count("update:R") != 3 {
		t.Errorf("R should keep updating, calls = %v", rec.calls)
	}
	if rec.count("update:C") != 1 {
		t.Errorf("inactive C must not update, calls = %v", rec.calls)
	}

	c.SetActive(true)
	g.Update(0.016)
	if rec.count("update:C") != 2 {
		t.Errorf("reactivated C should resume, calls = %v", rec.calls)
	}
}

func TestInactiveAncestorGatesSubtree(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)
	a := g.NewEntity("A")
	b := g.NewEntity("B")
	c := g.NewEntity("C")
	mustAdd(t, g, a, nil)
	mustAdd(t, g, b, a)
	mustAdd(t, g, c, b)
	for _, e := range []*Entity{a, b, c} {
		g.AttachBehavior(e, "record")
	}

	b.SetActive(false)
	g.Update(0.1)
	if rec.count("update:A") != 1 || rec.count("update:B") != 0 || rec.count("update:C") != 0 {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestUpdateIsPreOrder(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)
	r1 := g.NewEntity("r1")
	a := g.NewEntity("a")
	a1 := g.NewEntity("a1")
	b := g.NewEntity("b")
	r2 := g.NewEntity("r2")
	mustAdd(t, g, r1, nil)
	mustAdd(t, g, a, r1)
	mustAdd(t, g, a1, a)
	mustAdd(t, g, b, r1)
	mustAdd(t, g, r2, nil)
	for _, e := range g.Entities() {
		g.AttachBehavior(e, "record")
	}

	g.Update(0)
	var updates []string
	for _, c := range rec.calls {
		if strings.HasPrefix(c, "update:") {
			updates = append(updates, strings.TrimPrefix(c, "update:"))
		}
	}
	if got := strings.Join(updates, ","); got != "r1,a,a1,b,r2" {
		t.Errorf("order = %s", got)
	}
}

func TestMutationsVisibleWithinSamePass(t *testing.T) {
	g := newTestGraph(&recorder{})
	mover := g.NewEntity("mover")
	target := g.NewEntity("target")
	mustAdd(t, g, mover, nil)
	mustAdd(t, g, target, nil)

	var seen math.Vec3
	g.SetBehavior(mover, "push", &FuncBehavior{UpdateFn: func(float64) error {
		target.Translate(1, 0, 0)
		return nil
	}})
	g.SetBehavior(target, "read", &FuncBehavior{UpdateFn: func(float64) error {
		seen = target.WorldPosition()
		return nil
	}})

	g.Update(0)
	if !seen.Compare(math.NewVec3(1, 0, 0), tolerance) {
		t.Errorf("target saw %v, want (1,0,0)", seen)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	g := newTestGraph(&recorder{})
	e := g.NewEntity("e")
	mustAdd(t, g, e, nil)
	mustAdd(t, g, e, nil)
	if len(g.Roots()) != 1 || g.Len() != 1 {
		t.Errorf("roots = %d, index = %d, want 1/1", len(g.Roots()), g.Len())
	}

	other := g.NewEntity("other")
	mustAdd(t, g, other, nil)
	mustAdd(t, g, e, other)
	if e.Parent() != nil {
		t.Error("re-adding an indexed entity must not move it")
	}
}

func TestAddIndexesSubtree(t *testing.T) {
	g := newTestGraph(&recorder{})
	root := g.NewEntity("root")
	child := g.NewEntity("child")
	grandchild := g.NewEntity("grandchild")
	root.AddChild(child)
	child.AddChild(grandchild)

	mustAdd(t, g, root, nil)
	for _, e := range []*Entity{root, child, grandchild} {
		if g.FindByID(e.ID()) != e {
			t.Errorf("%s not indexed", e.Name())
		}
	}

	late := g.NewEntity("late")
	grandchild.AddChild(late)
	if g.FindByID(late.ID()) != late || late.Graph() != g {
		t.Error("child added to a registered entity should be indexed")
	}
	if late.Transform().Parent() != grandchild.Transform() {
		t.Error("transform forest should follow the entity forest")
	}
}

func TestAddRejectsForeignParent(t *testing.T) {
	g := newTestGraph(&recorder{})
	loose := g.NewEntity("loose")
	e := g.NewEntity("e")
	if err := g.Add(e, loose); !errors.Is(err, core.ErrNotInGraph) {
		t.Errorf("got %v, want ErrNotInGraph", err)
	}
}

func TestFindByNameAndID(t *testing.T) {
	g := newTestGraph(&recorder{})
	a := g.NewEntity("player")
	b := g.NewEntity("enemy")
	c := g.NewEntity("enemy")
	mustAdd(t, g, a, nil)
	mustAdd(t, g, b, a)
	mustAdd(t, g, c, nil)

	if g.FindByName("enemy") != b {
		t.Error("FindByName should return the first match in pre-order")
	}
	if g.FindByName("ghost") != nil {
		t.Error("miss should return nil")
	}
	if g.FindByID(c.ID()) != c || g.FindByID(9999) != nil {
		t.Error("FindByID mismatch")
	}
	if a.FindChild("enemy") != b {
		t.Error("FindChild should search the subtree")
	}
}

// Removing an entity takes its whole subtree out of the graph.
func TestRemoveCascades(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)
	p := g.NewEntity("P")
	c := g.NewEntity("C")
	gc := g.NewEntity("GC")
	sibling := g.NewEntity("S")
	mustAdd(t, g, p, nil)
	mustAdd(t, g, c, p)
	mustAdd(t, g, gc, c)
	mustAdd(t, g, sibling, p)
	g.AttachBehavior(c, "record")
	g.AttachBehavior(gc, "record")

	if !g.Remove(c) {
		t.Fatal("remove should report success")
	}
	if g.FindByID(c.ID()) != nil || g.FindByID(gc.ID()) != nil {
		t.Error("removed subtree must leave the index")
	}
	if g.FindByID(sibling.ID()) != sibling {
		t.Error("sibling must stay")
	}
	if len(p.Children()) != 1 || p.Children()[0] != sibling {
		t.Errorf("parent children = %v", p.Children())
	}
	if c.Parent() != nil || c.Transform().Parent() != nil {
		t.Error("removed entity should be detached in both forests")
	}
	if gc.Parent() != c {
		t.Error("the removed subtree stays intact")
	}
	if rec.count("destroy:C") != 1 || rec.count("destroy:GC") != 1 {
		t.Errorf("OnDestroy calls = %v", rec.calls)
	}
	if g.Remove(c) {
		t.Error("second remove should be a no-op")
	}

	g.Update(0)
	if rec.count("update:C") != 0 {
		t.Error("removed entity must not update")
	}
}

func TestRemoveDuringUpdate(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)
	a := g.NewEntity("A")
	b := g.NewEntity("B")
	mustAdd(t, g, a, nil)
	mustAdd(t, g, b, nil)
	g.AttachBehavior(b, "record")
	g.SetBehavior(a, "killer", &FuncBehavior{UpdateFn: func(float64) error {
		g.Remove(b)
		return nil
	}})

	g.Update(0)
	if rec.count("update:B") != 0 {
		t.Errorf("entity removed earlier in the pass should be skipped, calls = %v", rec.calls)
	}
}

func TestReparent(t *testing.T) {
	g := newTestGraph(&recorder{})
	p1 := g.NewEntity("P1")
	p2 := g.NewEntity("P2")
	c := g.NewEntity("C")
	mustAdd(t, g, p1, nil)
	mustAdd(t, g, p2, nil)
	mustAdd(t, g, c, p1)
	p1.SetPosition(10, 0, 0)
	p2.SetPosition(0, 5, 0)
	c.SetPosition(1, 0, 0)

	if err := g.Reparent(c, p2); err != nil {
		t.Fatal(err)
	}
	p1.Translate(100, 0, 0)
	if got := c.WorldPosition(); !got.Compare(math.NewVec3(1, 5, 0), tolerance) {
		t.Errorf("got %v, want (1,5,0)", got)
	}
	if len(p1.Children()) != 0 || c.Parent() != p2 {
		t.Error("child should have moved")
	}

	if err := g.Reparent(p2, c); !errors.Is(err, core.ErrCycle) {
		t.Errorf("got %v, want ErrCycle", err)
	}

	if err := g.Reparent(c, nil); err != nil {
		t.Fatal(err)
	}
	if c.Parent() != nil || len(g.Roots()) != 3 {
		t.Error("reparent to nil should make a root")
	}
}

func TestBehaviorFailuresAreIsolated(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)
	names := []string{"fail-start", "fail-update", "panic", "record"}
	for _, n := range names {
		e := g.NewEntity(n)
		mustAdd(t, g, e, nil)
		g.AttachBehavior(e, n)
	}
	missing := g.NewEntity("missing")
	mustAdd(t, g, missing, nil)
	if err := g.AttachBehavior(missing, "nope"); !errors.Is(err, core.ErrBehaviorNotFound) {
		t.Errorf("got %v, want ErrBehaviorNotFound", err)
	}
	if missing.Behavior() != nil {
		t.Error("failed attach should leave no behavior")
	}

	g.Update(0)
	g.Update(0)

	if rec.count("update:fail-start") != 0 {
		t.Error("behavior whose start failed must not update")
	}
	if g.FindByName("fail-start").Behavior() != nil {
		t.Error("behavior whose start failed should be detached")
	}
	if rec.count("update:fail-update") != 2 || rec.count("update:panic") != 2 {
		t.Errorf("failing behaviors keep running each frame, calls = %v", rec.calls)
	}
	if rec.count("update:record") != 2 || rec.count("start:record") != 1 {
		t.Errorf("siblings must be unaffected, calls = %v", rec.calls)
	}
}

func TestReplacingBehaviorDestroysPrevious(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)
	e := g.NewEntity("e")
	mustAdd(t, g, e, nil)
	g.AttachBehavior(e, "record")
	g.Update(0)
	g.AttachBehavior(e, "record")
	g.Update(0)

	if rec.count("destroy:e") != 1 || rec.count("start:e") != 2 {
		t.Errorf("calls = %v", rec.calls)
	}
	if e.BehaviorName() != "record" {
		t.Errorf("behavior name = %q", e.BehaviorName())
	}
}

func TestEventsFired(t *testing.T) {
	bus := core.NewEventBus()
	g := NewGraph(core.NewNopLogger(), nil, nil, bus)
	var log []string
	listen := func(code core.SystemEventCode, _ interface{}, _ interface{}, data core.EventContext) bool {
		log = append(log, fmt.Sprintf("%d:%s", code, data.Data.C[0]))
		return false
	}
	bus.Register(core.EVENT_CODE_ENTITY_ADDED, "t", listen)
	bus.Register(core.EVENT_CODE_ENTITY_REMOVED, "t", listen)

	e := g.NewEntity("e")
	mustAdd(t, g, e, nil)
	g.Remove(e)
	want := fmt.Sprintf("%d:e,%d:e", core.EVENT_CODE_ENTITY_ADDED, core.EVENT_CODE_ENTITY_REMOVED)
	if strings.Join(log, ",") != want {
		t.Errorf("events = %v, want %s", log, want)
	}
}

func TestHierarchy(t *testing.T) {
	g := newTestGraph(&recorder{})
	a := g.NewEntity("a")
	b := g.NewEntity("b")
	mustAdd(t, g, a, nil)
	mustAdd(t, g, b, a)
	b.SetActive(false)

	h := g.Hierarchy()
	if len(h) != 1 || h[0].Name != "a" || len(h[0].Children) != 1 || h[0].Children[0].Active {
		t.Errorf("hierarchy = %+v", h)
	}
	if d := a.Descendants(); len(d) != 1 || d[0] != b {
		t.Errorf("descendants = %v", d)
	}
}

func TestCameraDefaultView(t *testing.T) {
	g := newTestGraph(&recorder{})
	cam := g.NewPerspectiveCamera("cam")
	g.SetActiveCamera(cam)
	cam.SetPosition(1, 2, 5)
	cam.SetRotation(0.5, 0.5, 0.5)

	want := math.NewMat4LookAt(math.NewVec3(1, 2, 5), math.NewVec3(1, 2, 4), math.NewVec3Up())
	if !cam.ViewMatrix().Compare(want, tolerance) {
		t.Errorf("view = %v, want %v", cam.ViewMatrix(), want)
	}
	if g.FindByID(cam.ID()) == nil {
		t.Error("active camera should be registered")
	}
}

func TestCameraLookAtPersistsUntilUpdate(t *testing.T) {
	g := newTestGraph(&recorder{})
	cam := g.NewPerspectiveCamera("cam")
	g.SetActiveCamera(cam)
	cam.SetPosition(0, 0, 5)

	cam.LookAt(math.NewVec3(5, 0, 0))
	override := cam.ViewMatrix()
	cam.Translate(0, 1, 0)
	if cam.ViewMatrix() != override {
		t.Error("look-at override should persist within the frame")
	}

	g.Update(0.016)
	want := math.NewMat4LookAt(math.NewVec3(0, 1, 5), math.NewVec3(0, 1, 4), math.NewVec3Up())
	if !cam.ViewMatrix().Compare(want, tolerance) {
		t.Errorf("after update view = %v, want %v", cam.ViewMatrix(), want)
	}
}

func TestCameraFollowsParent(t *testing.T) {
	g := newTestGraph(&recorder{})
	rig := g.NewEntity("rig")
	mustAdd(t, g, rig, nil)
	cam := g.NewPerspectiveCamera("cam")
	mustAdd(t, g, cam.Entity, rig)
	rig.SetPosition(3, 0, 0)

	v := cam.ViewMatrix()
	if got := v.MulPoint(math.NewVec3(3, 0, 0)); !got.Compare(math.NewVec3Zero(), tolerance) {
		t.Errorf("camera eye should be its world position, got %v", got)
	}
}

func TestPerspectiveProjectionScenario(t *testing.T) {
	g := newTestGraph(&recorder{})
	cam := g.NewCamera("cam", &PerspectiveProjection{FovDegrees: 45, Aspect: 16.0 / 9.0})
	cam.Near, cam.Far = 0.1, 1000
	p := cam.ProjectionMatrix()

	f := 1 / m.Tan(22.5*m.Pi/180)
	if d := m.Abs(float64(p.At(0, 0)) - f/(16.0/9.0)); d > tolerance {
		t.Errorf("[0,0] = %v, want %v", p.At(0, 0), f/(16.0/9.0))
	}
	if d := m.Abs(float64(p.At(1, 1)) - f); d > tolerance {
		t.Errorf("[1,1] = %v, want %v", p.At(1, 1), f)
	}

	cam.SetViewport(800, 800)
	if a := cam.Projection.(*PerspectiveProjection).Aspect; a != 1 {
		t.Errorf("aspect after viewport = %v, want 1", a)
	}
	cam.SetViewport(800, 0)
	if a := cam.Projection.(*PerspectiveProjection).Aspect; a != 1 {
		t.Errorf("zero height should be ignored, aspect = %v", a)
	}
}

func TestOrthographicSetSize(t *testing.T) {
	g := newTestGraph(&recorder{})
	cam := g.NewOrthographicCamera("ortho")
	cam.SetViewport(40, 20)
	o := cam.Projection.(*OrthographicProjection)
	if o.Left != -20 || o.Right != 20 || o.Bottom != -10 || o.Top != 10 {
		t.Errorf("bounds = %+v", o)
	}
	want := math.NewMat4Orthographic(-20, 20, -10, 10, DefaultNear, DefaultFar)
	if cam.ProjectionMatrix() != want {
		t.Error("projection should use the recentred bounds")
	}
}

func TestRemovingActiveCameraClearsIt(t *testing.T) {
	g := newTestGraph(&recorder{})
	cam := g.NewPerspectiveCamera("cam")
	g.SetActiveCamera(cam)
	g.Remove(cam.Entity)
	if g.ActiveCamera() != nil {
		t.Error("active camera should be cleared")
	}
}

// Round trip keeps name, active, position and asset keys. Rotation and
// scale come back as identity and one.
func TestSnapshotPartialRoundTrip(t *testing.T) {
	g := newTestGraph(&recorder{})
	e := g.NewEntity("crate")
	e.SetActive(false)
	e.SetPosition(1, 2, 3)
	e.SetRotation(0.1, 0.2, 0.3)
	e.SetScale(2, 2, 2)
	e.MeshKey = "cube"
	e.MaterialKey = "wood"

	s := e.Snapshot()
	if s.Scale != [3]float32{2, 2, 2} || s.Rotation == [4]float32{0, 0, 0, 1} {
		t.Fatalf("snapshot should record rotation and scale: %+v", s)
	}

	back := g.EntityFromSnapshot(s)
	if back.Name() != "crate" || back.Active() || back.MeshKey != "cube" || back.MaterialKey != "wood" {
		t.Errorf("restored = %+v", back.Snapshot())
	}
	if back.Position() != math.NewVec3(1, 2, 3) {
		t.Errorf("position = %v", back.Position())
	}
	if back.Transform().Rotation() != math.NewQuatIdentity() || back.Scale() != math.NewVec3One() {
		t.Errorf("rotation/scale should reset, got %v %v", back.Transform().Rotation(), back.Scale())
	}
	if back.ID() == e.ID() {
		t.Error("restored entity should get a fresh id")
	}
}

func TestSceneSnapshotRestore(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph(rec)
	cam := g.NewPerspectiveCamera("cam")
	g.SetActiveCamera(cam)
	root := g.NewEntity("root")
	child := g.NewEntity("child")
	mustAdd(t, g, root, nil)
	mustAdd(t, g, child, root)
	child.SetPosition(0, 1, 0)
	g.AttachBehavior(child, "record")

	snap := g.Snapshot("level")
	if len(snap.Entities) != 1 || snap.Entities[0].Name != "root" {
		t.Fatalf("snapshot should skip the active camera: %+v", snap)
	}

	other := newTestGraph(rec)
	roots := other.Restore(snap)
	if len(roots) != 1 || other.Len() != 2 {
		t.Fatalf("restored %d roots, %d entities", len(roots), other.Len())
	}
	c := other.FindByName("child")
	if c == nil || c.Parent() != roots[0] || c.BehaviorName() != "record" {
		t.Fatalf("child not restored: %+v", c)
	}
	if got := c.WorldPosition(); !got.Compare(math.NewVec3(0, 1, 0), tolerance) {
		t.Errorf("child world = %v", got)
	}
}

func TestSubtreeFromAnotherGraphIsRekeyed(t *testing.T) {
	rec := &recorder{}
	a := newTestGraph(rec)
	b := newTestGraph(rec)

	x := a.NewEntity("x")
	mustAdd(t, a, x, nil)
	parent := a.NewEntity("parent")
	child := b.NewEntity("child")
	if child.ID() != x.ID() {
		t.Fatalf("setup: ids %d and %d should collide", child.ID(), x.ID())
	}
	parent.AddChild(child)
	a.SetBehavior(child, "record", &FuncBehavior{UpdateFn: func(float64) error {
		rec.calls = append(rec.calls, "update:child")
		return nil
	}})
	mustAdd(t, a, parent, nil)

	if child.ID() == x.ID() {
		t.Fatal("colliding id should be reassigned")
	}
	if a.FindByID(child.ID()) != child || child.Graph() != a {
		t.Fatal("moved child should be indexed in its new graph")
	}
	if a.FindByID(x.ID()) != x || a.Len() != 3 {
		t.Fatalf("x = %v, len = %d", a.FindByID(x.ID()), a.Len())
	}

	a.Update(0.016)
	if rec.count("update:child") != 1 {
		t.Errorf("child updates = %d, want 1", rec.count("update:child"))
	}

	a.Remove(parent)
	if a.FindByID(x.ID()) != x || a.Len() != 1 {
		t.Errorf("removing the moved subtree must keep x indexed: x = %v, len = %d", a.FindByID(x.ID()), a.Len())
	}
}

type health struct{ points int }

func TestEntityComponents(t *testing.T) {
	g := newTestGraph(&recorder{})
	e := g.NewEntity("player")
	if e.Component("health") != nil || len(e.ComponentNames()) != 0 {
		t.Fatal("a new entity has no components")
	}

	e.AddComponent("health", &health{points: 3})
	e.AddComponent("tag", "hero")
	if h, ok := ComponentAs[*health](e, "health"); !ok || h.points != 3 {
		t.Errorf("health = %v, %v", h, ok)
	}
	if _, ok := ComponentAs[*health](e, "tag"); ok {
		t.Error("a component of another type must not match")
	}
	if got := fmt.Sprint(e.ComponentNames()); got != "[health tag]" {
		t.Errorf("names = %s", got)
	}

	e.AddComponent("tag", "villain")
	if e.Component("tag") != "villain" {
		t.Errorf("tag = %v, want the replacement", e.Component("tag"))
	}
	e.RemoveComponent("health")
	if e.Component("health") != nil {
		t.Error("removed component should be gone")
	}
}

func TestRotateComposes(t *testing.T) {
	g := newTestGraph(&recorder{})
	e := g.NewEntity("turret")
	e.Transform().GetWorld()
	e.Rotate(0, math.DegToRad(45), 0)
	e.Rotate(0, math.DegToRad(45), 0)
	want := math.NewQuatFromEuler(0, math.DegToRad(90), 0).ToMat4()
	if !e.Transform().Rotation().ToMat4().Compare(want, tolerance) {
		t.Errorf("two 45 degree turns should make 90: %v", e.Transform().Rotation())
	}
	if !e.Transform().IsDirty() {
		t.Error("Rotate should dirty the transform")
	}
}

func TestEntityInputFollowsGraph(t *testing.T) {
	g := newTestGraph(&recorder{})
	in := core.NewInput(nil, nil)
	g.SetInput(in)
	e := g.NewEntity("e")
	if e.Input() != nil {
		t.Error("a detached entity has no input")
	}
	mustAdd(t, g, e, nil)
	if e.Input() != in {
		t.Error("a registered entity should see the graph's input")
	}
}
