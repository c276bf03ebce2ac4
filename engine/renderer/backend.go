package renderer

import (
	"github.com/softglow/lantern/engine/renderer/metadata"
)

// Backend is the surface the engine drives a rendering API through.
// Vulkan is the only implementation; the interface keeps the engine
// loop free of API types and pins down the contract a future backend
// would have to meet.
type Backend interface {
	// Initialize uploads the scene and builds every device object.
	// Must be called once, after the platform window exists.
	Initialize(scene metadata.SceneDescription, shaders metadata.ShaderSet) error
	// DrawFrame renders and presents one frame. Returns
	// core.ErrFrameSkipped when the swapchain had to be rebuilt
	// instead.
	DrawFrame(packet *metadata.RenderPacket) error
	// Resized records a surface size change for the next DrawFrame.
	Resized(width, height uint32)
	// ReloadShaders swaps in recompiled SPIR-V; failure leaves the
	// previous shaders running.
	ReloadShaders(shaders metadata.ShaderSet) error
	// CaptureScreenshot writes the last presented image below dir and
	// returns the file path.
	CaptureScreenshot(dir string) (string, error)
	// Shutdown destroys all device objects. Safe to call on a
	// partially initialized backend.
	Shutdown() error
}
