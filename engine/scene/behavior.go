package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// API is the set of capabilities a behavior may use on its entity.
type API interface {
	ID() uint64
	Name() string
	Translate(dx, dy, dz float32)
	SetPosition(x, y, z float32)
	SetRotation(pitch, yaw, roll float32)
	Rotate(pitch, yaw, roll float32)
	SetScale(x, y, z float32)
	Position() math.Vec3
	Scale() math.Vec3
	SetActive(active bool)
	Active() bool
	// Input is the keyboard and mouse state of the engine, or nil outside
	// a graph with input attached. Queries on nil report nothing pressed.
	Input() *core.Input
	Component(name string) any
}

// Behavior is per-entity logic driven by the scene graph. Start runs once
// before the first Update, Update runs once per frame while the entity and
// all of its ancestors are active, OnDestroy runs when the entity leaves
// the graph or the behavior is replaced.
type Behavior interface {
	Start() error
	Update(deltaTime float64) error
	OnDestroy()
}

// BehaviorFactory builds a behavior bound to one entity.
type BehaviorFactory func(api API) (Behavior, error)

// BehaviorRegistry resolves behavior names to factories.
type BehaviorRegistry struct {
	mu        sync.RWMutex
	factories map[string]BehaviorFactory
}

func NewBehaviorRegistry() *BehaviorRegistry {
	return &BehaviorRegistry{factories: make(map[string]BehaviorFactory)}
}

// Register adds or replaces the factory for name.
func (r *BehaviorRegistry) Register(name string, factory BehaviorFactory) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

func (r *BehaviorRegistry) Lookup(name string) (BehaviorFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

func (r *BehaviorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create instantiates the behavior registered under name for api.
func (r *BehaviorRegistry) Create(name string, api API) (Behavior, error) {
	factory, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrBehaviorNotFound, name)
	}
	b, err := factory(api)
	if err != nil {
		return nil, fmt.Errorf("create behavior %q: %w", name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("create behavior %q: factory returned nil", name)
	}
	return b, nil
}

// FuncBehavior adapts plain functions to Behavior. Nil hooks are skipped.
type FuncBehavior struct {
	StartFn   func() error
	UpdateFn  func(deltaTime float64) error
	DestroyFn func()
}

func (f *FuncBehavior) Start() error {
	if f.StartFn == nil {
		return nil
	}
	return f.StartFn()
}

func (f *FuncBehavior) Update(deltaTime float64) error {
	if f.UpdateFn == nil {
		return nil
	}
	return f.UpdateFn(deltaTime)
}

func (f *FuncBehavior) OnDestroy() {
	if f.DestroyFn != nil {
		f.DestroyFn()
	}
}

// safeCall runs fn and turns a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
