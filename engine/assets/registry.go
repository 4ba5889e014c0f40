package assets

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/lumen/engine/core"
)

const (
	DefaultCube     = "cube"
	DefaultSphere   = "sphere"
	DefaultPyramid  = "pyramid"
	DefaultMaterial = "default"
)

// Registry owns meshes and materials and hands them out by key. Entities
// only ever hold the keys. Lookups of unknown keys return nil.
type Registry struct {
	mutex     sync.RWMutex
	meshes    map[string]*Mesh
	materials map[string]*Material
	logger    *log.Logger
}

func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Registry{
		meshes:    make(map[string]*Mesh),
		materials: make(map[string]*Material),
		logger:    logger.WithPrefix("assets"),
	}
}

// CreateDefaultAssets registers the built-in primitive meshes and the
// default material.
func (r *Registry) CreateDefaultAssets() {
	r.AddMesh(DefaultCube, NewCubeMesh("DefaultCube", 1))
	r.AddMesh(DefaultSphere, NewSphereMesh("DefaultSphere", 1, 32, 16))
	r.AddMesh(DefaultPyramid, NewPyramidMesh("DefaultPyramid", 1))
	r.AddMaterial(DefaultMaterial, NewMaterial("Default"))
}

func (r *Registry) AddMesh(key string, mesh *Mesh) {
	r.mutex.Lock()
	r.meshes[key] = mesh
	r.mutex.Unlock()
	r.logger.Debug("mesh registered", "key", key, "vertices", mesh.VertexCount(), "indices", mesh.IndexCount())
}

func (r *Registry) Mesh(key string) *Mesh {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.meshes[key]
}

func (r *Registry) RemoveMesh(key string) {
	r.mutex.Lock()
	delete(r.meshes, key)
	r.mutex.Unlock()
}

func (r *Registry) AddMaterial(key string, material *Material) {
	r.mutex.Lock()
	r.materials[key] = material
	r.mutex.Unlock()
	r.logger.Debug("material registered", "key", key)
}

func (r *Registry) Material(key string) *Material {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.materials[key]
}

func (r *Registry) RemoveMaterial(key string) {
	r.mutex.Lock()
	delete(r.materials, key)
	r.mutex.Unlock()
}

func (r *Registry) MeshKeys() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return sortedKeys(r.meshes)
}

func (r *Registry) MaterialKeys() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return sortedKeys(r.materials)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
