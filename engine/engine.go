package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/behaviors"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/persist"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/scripting"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine is the context object owning every subsystem. Nothing in the
// engine is global: subsystems receive what they need from here.
type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *Config
	logger       *log.Logger

	events    *core.EventBus
	input     *core.Input
	jobs      *core.JobSystem
	ids       *core.IDGenerator
	assets    *assets.Registry
	watcher   *assets.Watcher
	behaviors *scene.BehaviorRegistry
	graph     *scene.Graph
	camera    *scene.Camera
	lookAt    *math.Vec3
	backend   *software.Backend
	renderer  *renderer.Renderer

	clock   *core.Clock
	metrics *core.Metrics

	isRunning   bool
	isSuspended bool
	width       uint32
	height      uint32
	lastTime    float64
}

// Option customizes the engine context built by New.
type Option func(*Engine)

// WithLogger replaces the logger built from the logging config.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

/**
 * @brief Builds the engine context from cfg. A nil cfg uses the defaults.
 * Subsystems are created but nothing is loaded until Initialize.
 */
func New(g *Game, cfg *Config, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, errors.New("engine needs a game instance")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       cfg,
		logger:       core.NewLogger(cfg.Logging),
		events:       core.NewEventBus(),
		ids:          core.NewIDGenerator(),
		behaviors:    scene.NewBehaviorRegistry(),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        cfg.Application.StartWidth,
		height:       cfg.Application.StartHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	logger := e.logger

	jobs, err := core.NewJobSystem(min(runtime.NumCPU(), 4), 16, logger)
	if err != nil {
		return nil, err
	}
	e.jobs = jobs
	e.assets = assets.NewRegistry(logger)
	e.graph = scene.NewGraph(logger, e.ids, e.behaviors, e.events)
	e.input = core.NewInput(e.events, logger)
	e.graph.SetInput(e.input)
	e.backend = software.New(software.Options{
		DumpDir:   cfg.Renderer.DumpDir,
		DumpEvery: cfg.Renderer.DumpEvery,
	}, logger)
	e.renderer = renderer.New(e.backend, e.assets, logger)

	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine cannot initialize in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)

	if err := e.loadAssets(); err != nil {
		return err
	}

	behaviors.RegisterBuiltins(e.behaviors)
	if dir := e.config.Assets.ScriptsDir; dir != "" {
		names, err := scripting.LoadDir(e.behaviors, dir, e.logger)
		if err != nil {
			return err
		}
		e.logger.Info("scripts loaded", "dir", dir, "behaviors", names)
	}

	e.camera = e.createCamera()
	e.graph.SetActiveCamera(e.camera)

	if file := e.config.Scene.File; file != "" {
		e.loadScene(file)
	}

	// a failing backend leaves the renderer degraded, the simulation runs on
	if err := e.renderer.Initialize(e.config.Application.Name, e.width, e.height); err != nil {
		e.logger.Warn("continuing without rendering", "err", err)
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	e.logger.Info("engine initialized", "app", e.config.Application.Name, "width", e.width, "height", e.height)
	return nil
}

func (e *Engine) loadAssets() error {
	e.assets.CreateDefaultAssets()

	if err := e.loadMeshes(e.config.Assets.Meshes); err != nil {
		return err
	}

	dir := e.config.Assets.MaterialsDir
	if dir == "" {
		return nil
	}
	if !e.config.Assets.Watch {
		return assets.LoadDir(e.assets, dir, e.logger)
	}
	w, err := assets.NewWatcher(e.assets, e.logger)
	if err != nil {
		return err
	}
	if err := w.Watch(dir); err != nil {
		w.Close()
		return err
	}
	w.Start()
	e.watcher = w
	return nil
}

// loadMeshes loads the configured glTF meshes on the job system and
// reports the first failure in key order.
func (e *Engine) loadMeshes(meshes map[string]string) error {
	keys := make([]string, 0, len(meshes))
	for key := range meshes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	waits := make([]func() error, len(keys))
	for i, key := range keys {
		key, path := key, meshes[key]
		waits[i] = e.jobs.Go(func() error {
			mesh, err := assets.LoadGLTFMesh(path)
			if err != nil {
				return fmt.Errorf("load mesh %q: %w", key, err)
			}
			e.assets.AddMesh(key, mesh)
			return nil
		})
	}
	var first error
	for _, wait := range waits {
		if err := wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (e *Engine) createCamera() *scene.Camera {
	c := e.config.Camera
	var camera *scene.Camera
	switch c.Projection {
	case PROJECTION_ORTHOGRAPHIC:
		camera = e.graph.NewOrthographicCamera("camera")
		camera.Projection.(*scene.OrthographicProjection).SetSize(c.OrthoWidth, c.OrthoHeight)
	default:
		camera = e.graph.NewPerspectiveCamera("camera")
		p := camera.Projection.(*scene.PerspectiveProjection)
		p.FovDegrees = c.Fov
		p.SetViewport(float32(e.width), float32(e.height))
	}
	camera.Near = c.Near
	camera.Far = c.Far
	camera.SetPosition(c.Position[0], c.Position[1], c.Position[2])
	return camera
}

// loadScene restores a scene file. A broken file is logged and the engine
// starts with an empty scene.
func (e *Engine) loadScene(path string) {
	snapshot, err := persist.LoadScene(path)
	if err != nil {
		if errors.Is(err, core.ErrMalformedScene) {
			e.logger.Error("scene file is malformed, starting empty", "path", path, "err", err)
		} else {
			e.logger.Error("scene file not loaded, starting empty", "path", path, "err", err)
		}
		return
	}
	roots := e.graph.Restore(*snapshot)
	e.logger.Info("scene loaded", "path", path, "name", snapshot.Name, "roots", len(roots), "entities", e.graph.Len())
}

// SaveScene writes the current scene, without the engine camera, to path.
func (e *Engine) SaveScene(path string) error {
	snapshot := e.graph.Snapshot(e.config.Application.Name)
	return persist.SaveScene(path, &snapshot)
}

/**
 * @brief Advances the engine by one frame: game update, scene update,
 * submission, game render hook and present. Errors from the game stop the
 * engine; rendering problems are logged.
 */
func (e *Engine) Step(deltaTime float64) error {
	frameStart := time.Now()

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(deltaTime); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	e.graph.Update(deltaTime)
	// the camera resets its view during the update; re-apply a look-at
	// requested by the game for this frame
	if e.lookAt != nil && e.camera != nil {
		e.camera.LookAt(*e.lookAt)
	}
	e.lookAt = nil

	stats, err := e.renderer.RenderFrame(e.graph)
	if err != nil {
		e.logger.Warn("frame not rendered", "err", err)
	}

	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(stats, deltaTime); err != nil {
			return fmt.Errorf("game render: %w", err)
		}
	}

	if err := e.renderer.EndFrame(deltaTime); err != nil {
		e.logger.Error("present failed", "err", err)
	}

	// NOTE: input state copying happens last so that "was down" queries
	// in the next frame see this frame's state
	e.input.Update()

	e.metrics.Update(time.Since(frameStart).Seconds())
	return nil
}

/**
 * @brief Runs the main loop until ctx is cancelled, a quit event arrives,
 * the game fails or the configured frame limit is reached. Frames are
 * paced to the target FPS. While suspended no frame is produced.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	targetFrameSeconds := e.config.Application.TargetFrameSeconds()
	maxFrames := e.config.Application.MaxFrames

	var frames uint64
	for e.isRunning {
		if err := ctx.Err(); err != nil {
			e.logger.Info("context done, stopping", "reason", err)
			break
		}
		if maxFrames > 0 && frames >= maxFrames {
			e.logger.Info("frame limit reached", "frames", frames)
			break
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		frameStart := time.Now()
		if !e.isSuspended {
			if err := e.Step(delta); err != nil {
				e.logger.Error("game failed, shutting down", "err", err)
				e.isRunning = false
				return err
			}
			frames++
		}

		// give the remaining frame time back
		remaining := targetFrameSeconds - time.Since(frameStart).Seconds()
		if remaining > 0 {
			timer := time.NewTimer(time.Duration(remaining * float64(time.Second)))
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}
	e.isRunning = false
	e.logger.Info("main loop stopped", "frames", frames, "fps", e.metrics.FPS(), "frame_ms", e.metrics.FrameTime())
	return nil
}

// Quit asks the main loop to stop after the current frame.
func (e *Engine) Quit() {
	e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

// Resize reports a new framebuffer size. A zero size suspends the engine
// until the next non-zero size.
func (e *Engine) Resize(width, height uint32) {
	var data core.EventContext
	data.Data.U32[0] = width
	data.Data.U32[1] = height
	e.events.Fire(core.EVENT_CODE_RESIZED, e, data)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs []error

	if file := e.config.Scene.SaveFile; file != "" {
		if err := e.SaveScene(file); err != nil {
			errs = append(errs, err)
		} else {
			e.logger.Info("scene saved", "path", file)
		}
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		e.watcher = nil
	}
	e.graph.Clear()
	e.jobs.Shutdown()
	if err := e.renderer.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	e.events.Shutdown()

	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		e.logger.Info("EVENT_CODE_APPLICATION_QUIT received, shutting down")
		e.isRunning = false
		return true
	}
	return false
}

// onKey quits on escape. The event is left unhandled so games see it too.
func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_KEY_PRESSED && core.KeyCode(data.Data.U32[0]) == core.KEY_ESCAPE {
		e.logger.Debug("escape pressed, shutting down")
		e.Quit()
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code != core.EVENT_CODE_RESIZED {
		return false
	}
	width, height := data.Data.U32[0], data.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	e.logger.Debug("framebuffer resize", "width", width, "height", height)

	// Handle minimization
	if width == 0 || height == 0 {
		e.logger.Info("framebuffer minimized, suspending application")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		e.logger.Info("framebuffer restored, resuming application")
		e.isSuspended = false
	}
	if e.camera != nil {
		e.camera.SetViewport(float32(width), float32(height))
	}
	if err := e.renderer.OnResize(width, height); err != nil {
		e.logger.Error("renderer resize", "err", err)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			e.logger.Error("game resize", "err", err)
		}
	}
	// let other listeners see the event too
	return false
}

func (e *Engine) Stage() Stage                       { return e.currentStage }
func (e *Engine) Config() *Config                    { return e.config }
func (e *Engine) Logger() *log.Logger                { return e.logger }
func (e *Engine) Events() *core.EventBus             { return e.events }
func (e *Engine) Input() *core.Input                 { return e.input }
func (e *Engine) Jobs() *core.JobSystem              { return e.jobs }
func (e *Engine) Assets() *assets.Registry           { return e.assets }
func (e *Engine) Behaviors() *scene.BehaviorRegistry { return e.behaviors }
func (e *Engine) Graph() *scene.Graph                { return e.graph }
func (e *Engine) Camera() *scene.Camera              { return e.camera }
func (e *Engine) Renderer() *renderer.Renderer       { return e.renderer }
func (e *Engine) Backend() *software.Backend         { return e.backend }
func (e *Engine) Metrics() *core.Metrics             { return e.metrics }
func (e *Engine) IsSuspended() bool                  { return e.isSuspended }

/**
 * @brief Points the engine camera at target for the current frame. The
 * camera resets its view while the graph updates, so the request is
 * applied again after the update and holds through rendering. Call it
 * every frame to keep tracking a target.
 */
func (e *Engine) CameraLookAt(target math.Vec3) {
	if e.camera == nil {
		return
	}
	e.camera.LookAt(target)
	e.lookAt = &target
}

// ProcessKey feeds a key transition from the platform layer.
func (e *Engine) ProcessKey(key core.KeyCode, pressed bool) {
	e.input.ProcessKey(key, pressed)
}

// ProcessButton feeds a mouse button transition from the platform layer.
func (e *Engine) ProcessButton(button core.Button, pressed bool) {
	e.input.ProcessButton(button, pressed)
}

// ProcessMouseMove feeds the cursor position from the platform layer.
func (e *Engine) ProcessMouseMove(x, y uint16) {
	e.input.ProcessMouseMove(x, y)
}

// ProcessMouseWheel feeds a wheel step from the platform layer.
func (e *Engine) ProcessMouseWheel(zDelta int8) {
	e.input.ProcessMouseWheel(zDelta)
}
