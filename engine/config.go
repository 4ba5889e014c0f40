package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const (
	PROJECTION_PERSPECTIVE  = "perspective"
	PROJECTION_ORTHOGRAPHIC = "orthographic"

	BACKEND_SOFTWARE = "software"
)

// Config is the engine configuration file.
type Config struct {
	Application ApplicationConfig  `toml:"application"`
	Logging     core.LoggingConfig `toml:"logging"`
	Camera      CameraConfig       `toml:"camera"`
	Assets      AssetsConfig       `toml:"assets"`
	Renderer    RendererConfig     `toml:"renderer"`
	Scene       SceneConfig        `toml:"scene"`
}

type CameraConfig struct {
	Projection  string     `toml:"projection"` // perspective or orthographic
	Fov         float32    `toml:"fov"`        // degrees
	Near        float32    `toml:"near"`
	Far         float32    `toml:"far"`
	Position    [3]float32 `toml:"position"`
	OrthoWidth  float32    `toml:"ortho_width"`
	OrthoHeight float32    `toml:"ortho_height"`
}

type AssetsConfig struct {
	MaterialsDir string            `toml:"materials_dir"`
	ScriptsDir   string            `toml:"scripts_dir"`
	Watch        bool              `toml:"watch"`
	Meshes       map[string]string `toml:"meshes"` // registry key -> glTF path
}

type RendererConfig struct {
	Backend   string `toml:"backend"`
	DumpDir   string `toml:"dump_dir"`
	DumpEvery int    `toml:"dump_every"`
}

type SceneConfig struct {
	// File is loaded at start-up when set.
	File string `toml:"file"`
	// SaveFile receives a snapshot at shutdown when set.
	SaveFile string `toml:"save_file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:        DefaultAppName,
			StartWidth:  DefaultWidth,
			StartHeight: DefaultHeight,
			TargetFPS:   DefaultTargetFPS,
		},
		Logging: core.LoggingConfig{
			Level:  "info",
			Prefix: DefaultAppName,
		},
		Camera: CameraConfig{
			Projection:  PROJECTION_PERSPECTIVE,
			Fov:         scene.DefaultFov,
			Near:        scene.DefaultNear,
			Far:         scene.DefaultFar,
			Position:    [3]float32{0, 0, 5},
			OrthoWidth:  scene.DefaultOrthoExtent,
			OrthoHeight: scene.DefaultOrthoExtent,
		},
		Assets: AssetsConfig{
			Meshes: map[string]string{},
		},
		Renderer: RendererConfig{
			Backend: BACKEND_SOFTWARE,
		},
	}
}

/**
 * @brief Loads the configuration at path over the defaults. A missing file
 * yields the defaults, a malformed or invalid one an error.
 */
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Application.StartWidth == 0 || c.Application.StartHeight == 0 {
		return fmt.Errorf("application size must be positive, got %dx%d", c.Application.StartWidth, c.Application.StartHeight)
	}
	if c.Application.TargetFPS < 0 {
		return fmt.Errorf("target_fps must not be negative")
	}
	switch c.Camera.Projection {
	case PROJECTION_PERSPECTIVE:
		if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
			return fmt.Errorf("camera fov must be in (0, 180), got %v", c.Camera.Fov)
		}
	case PROJECTION_ORTHOGRAPHIC:
		if c.Camera.OrthoWidth <= 0 || c.Camera.OrthoHeight <= 0 {
			return fmt.Errorf("orthographic size must be positive")
		}
	default:
		return fmt.Errorf("unknown camera projection %q", c.Camera.Projection)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera planes must satisfy 0 < near < far, got %v and %v", c.Camera.Near, c.Camera.Far)
	}
	if c.Renderer.Backend != BACKEND_SOFTWARE {
		return fmt.Errorf("unknown renderer backend %q", c.Renderer.Backend)
	}
	if c.Renderer.DumpEvery < 0 {
		return fmt.Errorf("dump_every must not be negative")
	}
	return nil
}
