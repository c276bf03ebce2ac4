package assets

import (
	"fmt"
	"os"

	"github.com/softglow/lantern/engine/resources"
)

// Compiled shader modules the renderer loads by fixed name.
const (
	SceneVertexShader    = "shader_vert.spv"
	SceneFragmentShader  = "shader_frag.spv"
	ShadowVertexShader   = "shadow_vert.spv"
	ShadowFragmentShader = "shadow_frag.spv"
)

// LoadShaderBlob reads a compiled SPIR-V module from disk. The contents are
// handed to the driver untouched, only the framing is validated here.
func LoadShaderBlob(path string) (*resources.ShaderBlob, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader file: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("shader %s is empty", path)
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("shader %s is %d bytes, not a whole number of 32-bit words", path, len(code))
	}
	return &resources.ShaderBlob{Path: path, Code: code}, nil
}
