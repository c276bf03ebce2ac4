package metadata

import (
	"github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/resources"
)

// RendererConfig carries the settings the rendering backend needs at
// startup.
type RendererConfig struct {
	ApplicationName string
	// EnableValidation requests the Khronos validation layer and a debug
	// callback that routes messages into the engine log.
	EnableValidation bool
	// SampleCount caps color multisampling. The device settles on the
	// highest supported count that does not exceed it (4, 2 or 1).
	SampleCount int
	// ShadowMapSize is the edge length in pixels of each cube shadow
	// face. Zero selects the built-in default.
	ShadowMapSize int
}

// SceneDescription is everything the renderer bakes at setup time: the
// geometry to upload, the point light, the clip planes shared by all
// six shadow projections and the camera projection parameters. The
// backend re-derives the projection matrix from these on every resize.
type SceneDescription struct {
	Mesh          *resources.Mesh
	LightPosition math.Vec3
	ShadowNear    float32
	ShadowFar     float32

	CameraFOVDegrees float32
	CameraNear       float32
	CameraFar        float32
}

// RenderPacket is handed to the renderer once per frame by the engine
// loop.
type RenderPacket struct {
	DeltaTime float64
	// View is the camera's world-to-view matrix for this frame. The model
	// transform is identity, so the backend only combines this with its
	// projection.
	View math.Mat4
}

// ShaderSet names the four SPIR-V blobs the renderer consumes: the lit
// scene pair and the shadow depth pair.
type ShaderSet struct {
	SceneVertex    *resources.ShaderBlob
	SceneFragment  *resources.ShaderBlob
	ShadowVertex   *resources.ShaderBlob
	ShadowFragment *resources.ShaderBlob
}
