package engine

import (
	"errors"
	"fmt"

	"github.com/softglow/lantern/engine/assets"
	"github.com/softglow/lantern/engine/core"
	"github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/platform"
	"github.com/softglow/lantern/engine/renderer"
	"github.com/softglow/lantern/engine/renderer/components"
	"github.com/softglow/lantern/engine/renderer/metadata"
)

// eventQueueCapacity bounds the window event backlog. Events beyond it
// are dropped with a warning rather than blocking the callback thread.
const eventQueueCapacity = 256

// Engine owns the window, the asset manager, the renderer and the main
// loop that ties them together. Create one with New, then call Startup,
// Run and Shutdown in that order.
type Engine struct {
	config   *Config
	bus      *core.EventBus
	platform *platform.Platform
	assets   *assets.Manager
	renderer *renderer.System
	camera   *components.Camera
	clock    *core.Clock

	running     bool
	suspended   bool
	lastTime    float64
	lastFPSTime float64
	frameCount  uint64
}

func New(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	core.LogSetVerbose(config.Log.Verbose)

	bus := core.NewEventBus(eventQueueCapacity)
	return &Engine{
		config:   config,
		bus:      bus,
		platform: platform.New(bus),
		clock:    core.NewClock(),
	}, nil
}

// Startup opens the window, loads the scene from disk and brings up the
// renderer. On error the engine is left in a state Shutdown can still
// clean up.
func (e *Engine) Startup() error {
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	if err := e.platform.Startup(e.config.Window.Title, e.config.Window.Width, e.config.Window.Height); err != nil {
		return fmt.Errorf("platform startup: %w", err)
	}

	manager, err := assets.NewManager(&assets.ManagerConfig{
		BaseDir:      e.config.Assets.Dir,
		Bus:          e.bus,
		WatchShaders: e.config.Assets.WatchShaders,
	})
	if err != nil {
		return fmt.Errorf("asset manager: %w", err)
	}
	e.assets = manager

	scene, err := loadScene(e.assets, e.config)
	if err != nil {
		return err
	}
	shaders, err := loadShaderSet(e.assets)
	if err != nil {
		return err
	}

	e.renderer = renderer.NewSystem(e.platform, metadata.RendererConfig{
		ApplicationName:  e.config.Window.Title,
		EnableValidation: e.config.Renderer.Validation,
		SampleCount:      e.config.Renderer.Samples,
		ShadowMapSize:    e.config.Renderer.ShadowMapSize,
	})
	if err := e.renderer.Initialize(scene, shaders); err != nil {
		return fmt.Errorf("renderer startup: %w", err)
	}

	e.camera = components.NewCamera()
	e.camera.SetPosition(e.cameraStartPosition())

	core.LogInfo("engine up: %s %dx%d, model %s",
		e.config.Window.Title, e.config.Window.Width, e.config.Window.Height, e.config.Scene.Model)
	return nil
}

// Run drives the main loop until the window closes, Escape is pressed
// or Stop is called. It must run on the main goroutine because the
// window system delivers its callbacks there.
func (e *Engine) Run() error {
	e.running = true
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()
	e.lastFPSTime = e.lastTime

	for e.running {
		if !e.platform.PumpMessages() {
			e.running = false
		}
		e.bus.Drain(e.handleEvent)

		if !e.running {
			break
		}
		if e.suspended {
			// Nothing to draw while minimized. Block until the window
			// system has news instead of spinning.
			e.platform.WaitMessages()
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		e.camera.Tick(float32(delta * 1000))

		packet := &metadata.RenderPacket{
			DeltaTime: delta,
			View:      e.camera.View(),
		}
		if err := e.renderer.DrawFrame(packet); err != nil {
			if errors.Is(err, core.ErrFrameSkipped) {
				continue
			}
			return fmt.Errorf("draw frame: %w", err)
		}

		core.MetricsUpdate(delta)
		e.frameCount++
		if currentTime-e.lastFPSTime >= 1.0 {
			e.lastFPSTime = currentTime
			fps, frameTime := core.MetricsFrame()
			core.LogDebug("%.1f fps, %.2f ms/frame", fps, frameTime)
		}
	}
	return nil
}

// Stop asks the main loop to exit after the current iteration. Safe to
// call from any goroutine.
func (e *Engine) Stop() {
	e.bus.Publish(core.Event{Type: core.EventQuit})
}

// Shutdown tears everything down in reverse startup order. Partial
// startup is fine, it skips whatever never came up.
func (e *Engine) Shutdown() {
	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			core.LogError("renderer shutdown: %v", err)
		}
		e.renderer = nil
	}
	if e.assets != nil {
		e.assets.Shutdown()
		e.assets = nil
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			core.LogError("platform shutdown: %v", err)
		}
	}
	core.LogInfo("engine down after %d frames", e.frameCount)
}

func (e *Engine) handleEvent(event core.Event) {
	switch event.Type {
	case core.EventQuit:
		core.LogInfo("quit requested")
		e.running = false

	case core.EventResized:
		e.onResized(event.Width, event.Height)

	case core.EventKeyPressed:
		e.onKeyPressed(event.Key)

	case core.EventKeyReleased:
		if direction, ok := cameraDirectionForKey(event.Key); ok {
			e.camera.StopMovement(direction)
		}

	case core.EventAssetModified:
		e.reloadShaders(event.Path)

	case core.EventCaptureRequested:
		path, err := e.renderer.CaptureScreenshot(e.config.Assets.ScreenshotDir)
		if err != nil {
			core.LogError("screenshot failed: %v", err)
			return
		}
		core.LogInfo("screenshot written to %s", path)
	}
}

func (e *Engine) onResized(width, height uint32) {
	if width == 0 || height == 0 {
		if !e.suspended {
			core.LogInfo("window minimized, suspending rendering")
			e.suspended = true
		}
		return
	}
	if e.suspended {
		core.LogInfo("window restored, resuming rendering")
		e.suspended = false
	}
	e.renderer.Resized(width, height)
}

func (e *Engine) onKeyPressed(key core.KeyCode) {
	switch key {
	case core.KEY_ESCAPE:
		e.running = false
	case core.KEY_SPACE:
		// Return to the configured start pose.
		e.camera.SetPosition(e.cameraStartPosition())
	default:
		if direction, ok := cameraDirectionForKey(key); ok {
			e.camera.StartMovement(direction, e.cameraSpeed(direction))
		}
	}
}

// reloadShaders rebuilds the pipelines from the blobs currently on
// disk. A failed load or rebuild keeps the previous pipelines running,
// so a broken shader costs a log line instead of the session.
func (e *Engine) reloadShaders(changedPath string) {
	core.LogInfo("shader change detected: %s", changedPath)
	shaders, err := loadShaderSet(e.assets)
	if err != nil {
		core.LogError("shader reload aborted: %v", err)
		return
	}
	if err := e.renderer.ReloadShaders(shaders); err != nil {
		core.LogError("shader reload failed, keeping previous pipelines: %v", err)
	}
}

func (e *Engine) cameraStartPosition() math.Vec3 {
	p := e.config.Camera.Position
	return math.NewVec3(p[0], p[1], p[2])
}

func (e *Engine) cameraSpeed(direction components.CameraDirection) float32 {
	if isTurnDirection(direction) {
		return e.config.Camera.TurnSpeed
	}
	return e.config.Camera.MoveSpeed
}

// cameraDirectionForKey maps the movement keys onto camera directions.
// W/S walk along the view axis, A/D strafe, Q/E change height and the
// arrow keys turn.
func cameraDirectionForKey(key core.KeyCode) (components.CameraDirection, bool) {
	switch key {
	case core.KEY_W:
		return components.MoveNegativeZ, true
	case core.KEY_S:
		return components.MovePositiveZ, true
	case core.KEY_A:
		return components.MoveNegativeX, true
	case core.KEY_D:
		return components.MovePositiveX, true
	case core.KEY_E:
		return components.MovePositiveY, true
	case core.KEY_Q:
		return components.MoveNegativeY, true
	case core.KEY_LEFT:
		return components.TurnNegativeYaw, true
	case core.KEY_RIGHT:
		return components.TurnPositiveYaw, true
	case core.KEY_UP:
		return components.TurnPositivePitch, true
	case core.KEY_DOWN:
		return components.TurnNegativePitch, true
	}
	return 0, false
}

func isTurnDirection(direction components.CameraDirection) bool {
	switch direction {
	case components.TurnPositivePitch, components.TurnNegativePitch,
		components.TurnPositiveYaw, components.TurnNegativeYaw:
		return true
	}
	return false
}
