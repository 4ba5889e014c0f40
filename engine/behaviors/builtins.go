// Package behaviors holds the behaviors every engine instance ships with.
package behaviors

import (
	m "math"

	"github.com/charmbracelet/harmonica"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const (
	SpinName         = "spin"
	BobName          = "bob"
	SpringFollowName = "spring_follow"
)

const (
	DefaultSpinRate        float32 = 1
	DefaultBobAmplitude    float32 = 0.5
	DefaultBobFrequency    float32 = 0.5
	DefaultSpringFrequency float64 = 4
	DefaultSpringDamping   float64 = 1
)

// RegisterBuiltins registers the built-in behaviors with their defaults.
func RegisterBuiltins(registry *scene.BehaviorRegistry) {
	registry.Register(SpinName, Spin(DefaultSpinRate))
	registry.Register(BobName, Bob(DefaultBobAmplitude, DefaultBobFrequency))
	// with no target the entity settles on its parent's origin
	registry.Register(SpringFollowName, SpringFollow(nil, DefaultSpringFrequency, DefaultSpringDamping))
}

// Spin yaws the entity at rate radians per second.
func Spin(rate float32) scene.BehaviorFactory {
	return func(api scene.API) (scene.Behavior, error) {
		var yaw float32
		return &scene.FuncBehavior{
			UpdateFn: func(deltaTime float64) error {
				yaw += rate * float32(deltaTime)
				if yaw > 2*math.K_PI {
					yaw -= 2 * math.K_PI
				}
				api.SetRotation(0, yaw, 0)
				return nil
			},
		}, nil
	}
}

// Bob moves the entity up and down around the height it had at start.
func Bob(amplitude, frequency float32) scene.BehaviorFactory {
	return func(api scene.API) (scene.Behavior, error) {
		var base math.Vec3
		var elapsed float64
		return &scene.FuncBehavior{
			StartFn: func() error {
				base = api.Position()
				return nil
			},
			UpdateFn: func(deltaTime float64) error {
				elapsed += deltaTime
				offset := amplitude * float32(m.Sin(2*m.Pi*float64(frequency)*elapsed))
				p := api.Position()
				api.SetPosition(p.X, base.Y+offset, p.Z)
				return nil
			},
		}, nil
	}
}

type springFollow struct {
	api       scene.API
	target    func() math.Vec3
	frequency float64
	damping   float64

	spring   harmonica.Spring
	springDt float64
	velocity [3]float64
}

/**
 * @brief Eases the entity toward target, in the parent's space, with a
 * damped spring. A damping of one settles without overshoot. A nil target
 * is the parent's origin.
 */
func SpringFollow(target func() math.Vec3, frequency, damping float64) scene.BehaviorFactory {
	return func(api scene.API) (scene.Behavior, error) {
		return &springFollow{
			api:       api,
			target:    target,
			frequency: frequency,
			damping:   damping,
		}, nil
	}
}

func (s *springFollow) Start() error {
	return nil
}

func (s *springFollow) Update(deltaTime float64) error {
	if deltaTime <= 0 {
		return nil
	}
	// harmonica bakes the time step into the coefficients
	if deltaTime != s.springDt {
		s.spring = harmonica.NewSpring(deltaTime, s.frequency, s.damping)
		s.springDt = deltaTime
	}

	var goal math.Vec3
	if s.target != nil {
		goal = s.target()
	}
	pos := s.api.Position().Elements()
	want := goal.Elements()

	var next [3]float32
	for i := 0; i < 3; i++ {
		p, v := s.spring.Update(float64(pos[i]), s.velocity[i], float64(want[i]))
		next[i] = float32(p)
		s.velocity[i] = v
	}
	s.api.SetPosition(next[0], next[1], next[2])
	return nil
}

func (s *springFollow) OnDestroy() {}
