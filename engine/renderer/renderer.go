package renderer

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

var errMeshMissing = errors.New("mesh not found")

// FrameStats summarizes one submitted frame.
type FrameStats struct {
	Draws          int
	BuffersCreated int
	Skipped        int
	Failed         int
}

// Renderer turns the active part of a scene graph into backend calls.
type Renderer struct {
	backend  RendererBackend
	registry *assets.Registry
	logger   *log.Logger
	light    Light

	degraded bool
}

func New(backend RendererBackend, registry *assets.Registry, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Renderer{
		backend:  backend,
		registry: registry,
		logger:   logger.WithPrefix("renderer"),
		light:    DefaultLight(),
	}
}

/**
 * @brief Initializes the backend. When the backend cannot build its
 * program the renderer keeps running in degraded mode: the failure is
 * logged once and every later frame is a no-op. The returned error wraps
 * core.ErrBackendUnavailable.
 */
func (r *Renderer) Initialize(appName string, width, height uint32) error {
	if r.backend == nil {
		r.degrade(fmt.Errorf("no backend configured"))
		return core.ErrBackendUnavailable
	}
	if err := r.backend.Initialize(appName, width, height); err != nil {
		r.degrade(err)
		return fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	return nil
}

func (r *Renderer) degrade(err error) {
	if r.degraded {
		return
	}
	r.degraded = true
	r.logger.Error("backend unavailable, rendering disabled", "err", err)
}

// Degraded reports whether frames are being dropped.
func (r *Renderer) Degraded() bool {
	return r.degraded
}

func (r *Renderer) Shutdown() error {
	if r.backend == nil || r.degraded {
		return nil
	}
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) error {
	if r.backend == nil || r.degraded {
		return nil
	}
	return r.backend.Resized(width, height)
}

// EndFrame presents the frame. Nothing happens in degraded mode.
func (r *Renderer) EndFrame(deltaTime float64) error {
	if r.backend == nil || r.degraded {
		return nil
	}
	return r.backend.Present(deltaTime)
}

/**
 * @brief Submits one frame: clear, bind the camera and the light, then
 * walk the active entities depth first and draw every one that carries a
 * mesh. Inactive entities hide their subtree. The camera entity is not
 * drawn, its children are. A failing draw is logged and skipped.
 */
func (r *Renderer) RenderFrame(graph *scene.Graph) (FrameStats, error) {
	var stats FrameStats
	if r.degraded {
		return stats, nil
	}

	r.backend.Clear()

	camera := graph.ActiveCamera()
	if camera == nil {
		return stats, core.ErrNoActiveCamera
	}

	view := camera.ViewMatrix()
	projection := camera.ProjectionMatrix()
	eye := camera.WorldPosition()

	r.backend.SetUniformVec3(UniformViewPos, eye.X, eye.Y, eye.Z)
	r.backend.SetUniformVec3(UniformLightColor, r.light.Color.X, r.light.Color.Y, r.light.Color.Z)
	r.backend.SetUniformVec3(UniformLightPos, r.light.Position.X, r.light.Position.Y, r.light.Position.Z)

	graph.Walk(func(e *scene.Entity) bool {
		if !e.Active() {
			return false
		}
		if e == camera.Entity || e.MeshKey == "" {
			return true
		}
		created, err := r.drawEntity(e, view, projection)
		if created {
			stats.BuffersCreated++
		}
		if errors.Is(err, errMeshMissing) {
			stats.Skipped++
			r.logger.Debug("mesh not found", "id", e.ID(), "mesh", e.MeshKey)
			return true
		}
		if err != nil {
			stats.Failed++
			r.logger.Error("draw failed", "id", e.ID(), "name", e.Name(), "mesh", e.MeshKey, "err", err)
			return true
		}
		stats.Draws++
		return true
	})
	return stats, nil
}

func (r *Renderer) drawEntity(e *scene.Entity, view, projection math.Mat4) (created bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	mesh := r.registry.Mesh(e.MeshKey)
	if mesh == nil {
		return false, errMeshMissing
	}

	model := e.Transform().GetWorld()

	if !mesh.BuffersCreated() {
		handle, err := r.backend.CreateBuffers(mesh)
		if err != nil {
			return false, fmt.Errorf("create buffers for %q: %w", e.MeshKey, err)
		}
		mesh.MarkBuffersCreated(handle)
		created = true
	}

	color := r.objectColor(e)

	r.backend.Bind(mesh.Handle())
	r.backend.SetUniformMat4(UniformModel, model)
	r.backend.SetUniformMat4(UniformView, view)
	r.backend.SetUniformMat4(UniformProjection, projection)
	r.backend.SetUniformVec3(UniformObjectColor, color.X, color.Y, color.Z)
	r.backend.DrawIndexed(mesh.Handle(), mesh.IndexCount())
	return created, nil
}

// objectColor is the material colour, or opaque white without a material.
func (r *Renderer) objectColor(e *scene.Entity) math.Vec3 {
	if e.MaterialKey == "" {
		return math.NewVec3One()
	}
	material := r.registry.Material(e.MaterialKey)
	if material == nil {
		return math.NewVec3One()
	}
	return material.RGB()
}
