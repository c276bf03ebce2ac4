package engine

import (
	"fmt"

	"github.com/softglow/lantern/engine/assets"
	"github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/renderer/metadata"
	"github.com/softglow/lantern/engine/resources"
)

// loadScene pulls the model from disk and pairs it with the light and
// camera parameters from the configuration. The result is everything
// the renderer needs to bake its static state.
func loadScene(manager *assets.Manager, config *Config) (metadata.SceneDescription, error) {
	mesh, err := manager.LoadMesh(config.Scene.Model)
	if err != nil {
		return metadata.SceneDescription{}, err
	}

	light := config.Light.Position
	return metadata.SceneDescription{
		Mesh:          mesh,
		LightPosition: math.NewVec3(light[0], light[1], light[2]),
		ShadowNear:    config.Light.ShadowNear,
		ShadowFar:     config.Light.ShadowFar,

		CameraFOVDegrees: config.Camera.FOVDegrees,
		CameraNear:       config.Camera.Near,
		CameraFar:        config.Camera.Far,
	}, nil
}

// loadShaderSet reads all four compiled shader modules. Loading is
// all-or-nothing so a half-finished shader rebuild never reaches the
// renderer.
func loadShaderSet(manager *assets.Manager) (metadata.ShaderSet, error) {
	var set metadata.ShaderSet

	entries := []struct {
		name string
		blob **resources.ShaderBlob
	}{
		{assets.SceneVertexShader, &set.SceneVertex},
		{assets.SceneFragmentShader, &set.SceneFragment},
		{assets.ShadowVertexShader, &set.ShadowVertex},
		{assets.ShadowFragmentShader, &set.ShadowFragment},
	}
	for _, entry := range entries {
		blob, err := manager.LoadShader(entry.name)
		if err != nil {
			return metadata.ShaderSet{}, fmt.Errorf("shader set: %w", err)
		}
		*entry.blob = blob
	}
	return set, nil
}
