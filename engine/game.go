package engine

import (
	"github.com/spaghettifunk/lumen/engine/renderer"
)

// Game is the application driven by the engine. Nil hooks are skipped.
type Game struct {
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

// Initialize runs once the engine context is ready.
type Initialize func(e *Engine) error

// Update runs before the scene graph update of each frame.
type Update func(deltaTime float64) error

// Render runs after the frame was submitted, before it is presented.
type Render func(stats renderer.FrameStats, deltaTime float64) error

type OnResize func(width uint32, height uint32) error
type Shutdown func() error
