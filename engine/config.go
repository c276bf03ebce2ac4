package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/softglow/lantern/engine/core"
)

// Config is the full engine configuration, loaded from a TOML file.
// Every field has a sensible default, so an empty or missing file still
// yields a runnable engine.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
	Scene    SceneConfig    `toml:"scene"`
	Camera   CameraConfig   `toml:"camera"`
	Light    LightConfig    `toml:"light"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	// Validation requests the Khronos validation layer. Startup degrades
	// to a warning when the layer is not installed.
	Validation bool `toml:"validation"`
	// Samples caps color multisampling at 1, 2 or 4. The device may
	// settle lower if the hardware supports less.
	Samples int `toml:"samples"`
	// ShadowMapSize is the edge length in pixels of each cube shadow
	// face.
	ShadowMapSize int `toml:"shadow_map_size"`
}

type AssetsConfig struct {
	Dir           string `toml:"dir"`
	WatchShaders  bool   `toml:"watch_shaders"`
	ScreenshotDir string `toml:"screenshot_dir"`
}

type SceneConfig struct {
	// Model is the Wavefront OBJ file to render, relative to the models
	// directory under Assets.Dir.
	Model string `toml:"model"`
}

type CameraConfig struct {
	FOVDegrees float32    `toml:"fov_degrees"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
	Position   [3]float32 `toml:"position"`
	// MoveSpeed is in world units per second, TurnSpeed in radians per
	// second.
	MoveSpeed float32 `toml:"move_speed"`
	TurnSpeed float32 `toml:"turn_speed"`
}

type LightConfig struct {
	Position [3]float32 `toml:"position"`
	// ShadowNear and ShadowFar bound all six shadow projections. Far
	// should cover the scene's diameter as seen from the light; depth
	// precision degrades as the ratio grows.
	ShadowNear float32 `toml:"shadow_near"`
	ShadowFar  float32 `toml:"shadow_far"`
}

type LogConfig struct {
	// Verbose switches the logger to debug level, which includes the
	// per-second frame time report.
	Verbose bool `toml:"verbose"`
}

// DefaultConfig returns the built-in configuration: an 800x600 window
// looking at the Cornell box from (0, 1, 3.5) with the light near the
// ceiling.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Lantern",
			Width:  800,
			Height: 600,
		},
		Renderer: RendererConfig{
			Validation:    false,
			Samples:       4,
			ShadowMapSize: 1024,
		},
		Assets: AssetsConfig{
			Dir:           "assets",
			WatchShaders:  true,
			ScreenshotDir: "screenshots",
		},
		Scene: SceneConfig{
			Model: "cornell_box.obj",
		},
		Camera: CameraConfig{
			FOVDegrees: 45,
			Near:       0.1,
			Far:        100,
			Position:   [3]float32{0, 1, 3.5},
			MoveSpeed:  2.5,
			TurnSpeed:  1.5,
		},
		Light: LightConfig{
			Position:   [3]float32{0, 1.9, 0},
			ShadowNear: 0.05,
			ShadowFar:  25,
		},
		Log: LogConfig{
			Verbose: false,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. A missing file is not
// an error, only a malformed or invalid one is. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			core.LogInfo("no config file at %s, using built-in defaults", path)
			return config, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate rejects configurations the renderer cannot start with.
func (c *Config) Validate() error {
	if c.Window.Title == "" {
		return errors.New("window.title must not be empty")
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size %dx%d is not drawable", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.Samples {
	case 1, 2, 4:
	default:
		return fmt.Errorf("renderer.samples must be 1, 2 or 4, got %d", c.Renderer.Samples)
	}
	if c.Renderer.ShadowMapSize < 64 || c.Renderer.ShadowMapSize > 8192 {
		return fmt.Errorf("renderer.shadow_map_size %d is outside [64, 8192]", c.Renderer.ShadowMapSize)
	}
	if c.Assets.Dir == "" {
		return errors.New("assets.dir must not be empty")
	}
	if c.Assets.ScreenshotDir == "" {
		return errors.New("assets.screenshot_dir must not be empty")
	}
	if c.Scene.Model == "" {
		return errors.New("scene.model must not be empty")
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		return fmt.Errorf("camera.fov_degrees %g is outside (0, 180)", c.Camera.FOVDegrees)
	}
	if c.Camera.Near <= 0 {
		return fmt.Errorf("camera.near %g must be positive", c.Camera.Near)
	}
	if c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera.far %g must exceed camera.near %g", c.Camera.Far, c.Camera.Near)
	}
	if c.Camera.MoveSpeed <= 0 || c.Camera.TurnSpeed <= 0 {
		return errors.New("camera speeds must be positive")
	}
	if c.Light.ShadowNear <= 0 {
		return fmt.Errorf("light.shadow_near %g must be positive", c.Light.ShadowNear)
	}
	if c.Light.ShadowFar <= c.Light.ShadowNear {
		return fmt.Errorf("light.shadow_far %g must exceed light.shadow_near %g", c.Light.ShadowFar, c.Light.ShadowNear)
	}
	return nil
}
