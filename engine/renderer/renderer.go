package renderer

import (
	"github.com/softglow/lantern/engine/platform"
	"github.com/softglow/lantern/engine/renderer/metadata"
	"github.com/softglow/lantern/engine/renderer/vulkan"
)

// System fronts the rendering backend for the engine loop.
type System struct {
	backend Backend
}

var _ Backend = (*vulkan.Renderer)(nil)

func NewSystem(p *platform.Platform, config metadata.RendererConfig) *System {
	return &System{backend: vulkan.New(p, config)}
}

func (s *System) Initialize(scene metadata.SceneDescription, shaders metadata.ShaderSet) error {
	return s.backend.Initialize(scene, shaders)
}

func (s *System) DrawFrame(packet *metadata.RenderPacket) error {
	return s.backend.DrawFrame(packet)
}

func (s *System) Resized(width, height uint32) {
	s.backend.Resized(width, height)
}

func (s *System) ReloadShaders(shaders metadata.ShaderSet) error {
	return s.backend.ReloadShaders(shaders)
}

func (s *System) CaptureScreenshot(dir string) (string, error) {
	return s.backend.CaptureScreenshot(dir)
}

func (s *System) Shutdown() error {
	return s.backend.Shutdown()
}
