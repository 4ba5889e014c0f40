package testbed

import (
	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/behaviors"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/scripting"
)

const orbitScript = `
local t = 0

function start()
  log("orbit started for " .. entity.name())
end

function update(dt)
  t = t + dt
  entity.set_position(math.cos(t) * 3, 0.5, math.sin(t) * 3)
end
`

type TestGame struct {
	*engine.Game
	engine *engine.Engine
}

type gameState struct {
	width  uint32
	height uint32

	frames uint64
	draws  int

	root     *scene.Entity
	follower *scene.Entity
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) logger() *log.Logger {
	return g.engine.Logger().WithPrefix("testbed")
}

/**
 * @brief Builds the demo scene: a spinning cube carrying a bobbing cube
 * that carries a pyramid, a Lua driven sphere orbiting the origin and a
 * sphere springing after it. Entities already restored from a scene file
 * are kept and the demo is not built twice.
 */
func (g *TestGame) Initialize(e *engine.Engine) error {
	g.engine = e
	g.logger().Debug("TestGame Initialize fn....")

	e.Behaviors().Register("orbit", scripting.LuaFactory("orbit", orbitScript, e.Logger()))

	graph := e.Graph()
	if root := graph.FindByName("cube_1"); root != nil {
		g.state().root = root
		g.logger().Info("scene already populated", "entities", graph.Len())
		return nil
	}

	gold := assets.NewMaterial("gold")
	gold.Color = [4]float32{1, 0.8, 0.1, 1}
	e.Assets().AddMaterial("gold", gold)

	root, err := g.spawn("cube_1", assets.DefaultCube, assets.DefaultMaterial, nil, behaviors.SpinName)
	if err != nil {
		return err
	}
	root.SetScale(1.5, 1.5, 1.5)

	cube2, err := g.spawn("cube_2", assets.DefaultCube, "gold", root, behaviors.BobName)
	if err != nil {
		return err
	}
	cube2.SetPosition(2, 0, 0)
	cube2.SetScale(0.5, 0.5, 0.5)

	pyramid, err := g.spawn("pyramid", assets.DefaultPyramid, "", cube2, "")
	if err != nil {
		return err
	}
	pyramid.SetPosition(0, 1.5, 0)

	orbiter, err := g.spawn("orbiter", assets.DefaultSphere, "gold", nil, "orbit")
	if err != nil {
		return err
	}
	orbiter.SetScale(0.3, 0.3, 0.3)

	follower, err := g.spawn("follower", assets.DefaultSphere, "", nil, "")
	if err != nil {
		return err
	}
	follower.SetScale(0.2, 0.2, 0.2)
	graph.SetBehavior(follower, behaviors.SpringFollowName, mustBehavior(
		behaviors.SpringFollow(orbiter.WorldPosition, 2, 0.6), follower))

	g.state().root = root
	g.state().follower = follower

	e.Camera().SetPosition(0, 2, 10)
	g.logger().Info("testbed scene ready", "entities", graph.Len())
	return nil
}

func (g *TestGame) spawn(name, mesh, material string, parent *scene.Entity, behavior string) (*scene.Entity, error) {
	graph := g.engine.Graph()
	e := graph.NewEntity(name)
	e.MeshKey = mesh
	e.MaterialKey = material
	if err := graph.Add(e, parent); err != nil {
		return nil, err
	}
	if behavior != "" {
		if err := graph.AttachBehavior(e, behavior); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func mustBehavior(factory scene.BehaviorFactory, api scene.API) scene.Behavior {
	b, err := factory(api)
	if err != nil {
		panic(err)
	}
	return b
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.frames++
	if state.frames%120 == 0 {
		m := g.engine.Metrics()
		g.logger().Debug("frame stats", "frames", state.frames, "fps", m.FPS(), "frame_ms", m.FrameTime())
	}
	return nil
}

func (g *TestGame) Render(stats renderer.FrameStats, deltaTime float64) error {
	g.state().draws += stats.Draws
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	g.logger().Info("testbed shutting down", "frames", state.frames, "draws", state.draws)
	return nil
}

// Frames returns the number of frames the game has seen.
func (g *TestGame) Frames() uint64 {
	return g.state().frames
}

// FollowerPosition is the world position of the spring follower.
func (g *TestGame) FollowerPosition() math.Vec3 {
	if f := g.state().follower; f != nil {
		return f.WorldPosition()
	}
	return math.NewVec3Zero()
}
