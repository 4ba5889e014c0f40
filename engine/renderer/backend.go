package renderer

import (
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/math"
)

// Uniform names bound by the frame submission.
const (
	UniformModel       = "model"
	UniformView        = "view"
	UniformProjection  = "projection"
	UniformObjectColor = "objectColor"
	UniformViewPos     = "viewPos"
	UniformLightColor  = "lightColor"
	UniformLightPos    = "lightPos"
)

// RendererBackend is the graphics device the frame submission talks to.
// The renderer never touches a device outside these calls.
type RendererBackend interface {
	// Initialize prepares the device and its shading program. A failure
	// here puts the renderer in degraded mode.
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	Clear()
	CreateBuffers(mesh *assets.Mesh) (assets.BufferHandle, error)
	Bind(handle assets.BufferHandle)
	DrawIndexed(handle assets.BufferHandle, indexCount uint32)
	SetUniformMat4(name string, value math.Mat4)
	SetUniformVec3(name string, x, y, z float32)
	// Present hands the finished frame over. It is the only place the
	// frame loop may block.
	Present(deltaTime float64) error
}
