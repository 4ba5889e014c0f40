package scene

import (
	"github.com/spaghettifunk/lumen/engine/math"
)

const (
	DefaultNear        float32 = 0.1
	DefaultFar         float32 = 1000
	DefaultFov         float32 = 45
	DefaultAspect      float32 = 16.0 / 9.0
	DefaultOrthoExtent float32 = 10
)

// Projection is the lens of a camera.
type Projection interface {
	Matrix(near, far float32) math.Mat4
	// Resize adapts the projection to a viewport of the given size.
	Resize(width, height float32)
}

// PerspectiveProjection is a symmetric frustum.
type PerspectiveProjection struct {
	FovDegrees float32
	Aspect     float32
}

func (p *PerspectiveProjection) Matrix(near, far float32) math.Mat4 {
	return math.NewMat4Perspective(math.DegToRad(p.FovDegrees), p.Aspect, near, far)
}

// SetViewport sets the aspect ratio to width/height. A zero height is
// ignored.
func (p *PerspectiveProjection) SetViewport(width, height float32) {
	if height == 0 {
		return
	}
	p.Aspect = width / height
}

func (p *PerspectiveProjection) Resize(width, height float32) {
	p.SetViewport(width, height)
}

// OrthographicProjection is an axis-aligned view box.
type OrthographicProjection struct {
	Left, Right, Bottom, Top float32
}

func (o *OrthographicProjection) Matrix(near, far float32) math.Mat4 {
	return math.NewMat4Orthographic(o.Left, o.Right, o.Bottom, o.Top, near, far)
}

// SetSize recentres the box on the origin with the given extent.
func (o *OrthographicProjection) SetSize(width, height float32) {
	o.Left = -width / 2
	o.Right = width / 2
	o.Bottom = -height / 2
	o.Top = height / 2
}

func (o *OrthographicProjection) Resize(width, height float32) {
	o.SetSize(width, height)
}

// Camera is an entity that produces view and projection matrices. The
// view is cached and the cache is cleared once per graph update, when the
// camera entity itself is updated.
type Camera struct {
	*Entity

	Near       float32
	Far        float32
	Projection Projection

	view      math.Mat4
	viewValid bool
}

// NewCamera creates a detached camera entity with the given projection.
func (g *Graph) NewCamera(name string, projection Projection) *Camera {
	return newCamera(g.NewEntity(name), projection)
}

// NewPerspectiveCamera creates a detached camera with the default lens.
func (g *Graph) NewPerspectiveCamera(name string) *Camera {
	return g.NewCamera(name, &PerspectiveProjection{FovDegrees: DefaultFov, Aspect: DefaultAspect})
}

// NewOrthographicCamera creates a detached camera with a 20x20 view box.
func (g *Graph) NewOrthographicCamera(name string) *Camera {
	return g.NewCamera(name, &OrthographicProjection{
		Left:   -DefaultOrthoExtent,
		Right:  DefaultOrthoExtent,
		Bottom: -DefaultOrthoExtent,
		Top:    DefaultOrthoExtent,
	})
}

func newCamera(e *Entity, projection Projection) *Camera {
	c := &Camera{
		Entity:     e,
		Near:       DefaultNear,
		Far:        DefaultFar,
		Projection: projection,
	}
	e.camera = c
	return c
}

/**
 * @brief Returns the view matrix. Unless LookAt was called since the last
 * reset, the camera sits at its world position looking down -Z with +Y up;
 * the entity's rotation is not consulted.
 */
func (c *Camera) ViewMatrix() math.Mat4 {
	if !c.viewValid {
		eye := c.WorldPosition()
		c.view = math.NewMat4LookAt(eye, eye.Add(math.NewVec3Forward()), math.NewVec3Up())
		c.viewValid = true
	}
	return c.view
}

// LookAt points the camera at target until the next reset.
func (c *Camera) LookAt(target math.Vec3) {
	c.view = math.NewMat4LookAt(c.WorldPosition(), target, math.NewVec3Up())
	c.viewValid = true
}

// ResetView drops the cached view matrix.
func (c *Camera) ResetView() {
	c.viewValid = false
}

func (c *Camera) ProjectionMatrix() math.Mat4 {
	if c.Projection == nil {
		return math.NewMat4Identity()
	}
	return c.Projection.Matrix(c.Near, c.Far)
}

// SetViewport forwards the viewport size to the projection.
func (c *Camera) SetViewport(width, height float32) {
	if c.Projection != nil {
		c.Projection.Resize(width, height)
	}
}
