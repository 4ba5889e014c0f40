package engine

const (
	DefaultAppName   = "lumen"
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultTargetFPS = 60
)

type ApplicationConfig struct {
	// The application name handed to the backend.
	Name string `toml:"name"`
	// Framebuffer starting width.
	StartWidth uint32 `toml:"width"`
	// Framebuffer starting height.
	StartHeight uint32 `toml:"height"`
	// Frames per second Run aims for. Zero runs unthrottled.
	TargetFPS int `toml:"target_fps"`
	// Run stops after this many frames. Zero runs until cancelled.
	MaxFrames uint64 `toml:"max_frames"`
}

// TargetFrameSeconds is the target time per frame, or zero when unthrottled.
func (a ApplicationConfig) TargetFrameSeconds() float64 {
	if a.TargetFPS <= 0 {
		return 0
	}
	return 1.0 / float64(a.TargetFPS)
}
