package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window

	bus *core.EventBus
}

func New(bus *core.EventBus) *Platform {
	return &Platform{bus: bus}
}

func (p *Platform) Startup(applicationName string, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}

	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("no vulkan loader found")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vulkan bindings: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages runs pending window callbacks. Returns false once the
// user asked the window to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// WaitMessages blocks until window events arrive. Used while minimized
// so the loop does not spin on a 0x0 framebuffer.
func (p *Platform) WaitMessages() {
	glfw.WaitEvents()
}

// FramebufferSize returns the window's drawable area in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// RequiredExtensionNames lists the instance extensions the window system
// needs for surface creation.
func (p *Platform) RequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateSurface creates a presentation surface for the given instance.
func (p *Platform) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	return vk.SurfaceFromPointer(surface), nil
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := translateKey(key)
	if !ok {
		return
	}

	switch action {
	case glfw.Press:
		if code == core.KEY_SNAPSHOT {
			p.bus.Publish(core.Event{Type: core.EventCaptureRequested})
			return
		}
		p.bus.Publish(core.Event{Type: core.EventKeyPressed, Key: code})
	case glfw.Release:
		p.bus.Publish(core.Event{Type: core.EventKeyReleased, Key: code})
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.bus.Publish(core.Event{
		Type:   core.EventResized,
		Width:  uint32(width),
		Height: uint32(height),
	})
}

func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case glfw.KeySpace:
		return core.KEY_SPACE, true
	case glfw.KeyLeft:
		return core.KEY_LEFT, true
	case glfw.KeyUp:
		return core.KEY_UP, true
	case glfw.KeyRight:
		return core.KEY_RIGHT, true
	case glfw.KeyDown:
		return core.KEY_DOWN, true
	case glfw.KeyPrintScreen:
		return core.KEY_SNAPSHOT, true
	case glfw.KeyA:
		return core.KEY_A, true
	case glfw.KeyD:
		return core.KEY_D, true
	case glfw.KeyE:
		return core.KEY_E, true
	case glfw.KeyQ:
		return core.KEY_Q, true
	case glfw.KeyS:
		return core.KEY_S, true
	case glfw.KeyW:
		return core.KEY_W, true
	default:
		return 0, false
	}
}
