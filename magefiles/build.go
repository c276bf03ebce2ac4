//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// shaderSources pairs each GLSL source under assets/shaders with the
// compiled module name the engine loads at startup.
var shaderSources = [][2]string{
	{"shader.vert", "shader_vert.spv"},
	{"shader.frag", "shader_frag.spv"},
	{"shadow.vert", "shadow_vert.spv"},
	{"shadow.frag", "shadow_frag.spv"},
}

// Compiles the GLSL shader sources to SPIR-V with glslc.
func (Build) Shaders() error {
	for _, pair := range shaderSources {
		source := filepath.Join("assets", "shaders", pair[0])
		compiled := filepath.Join("assets", "shaders", pair[1])
		if _, err := executeCmd("glslc", withArgs(source, "-o", compiled), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Compiles the shaders and builds the lantern binary.
func (Build) Binary() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "lantern", "."), withStream())
	return err
}

type Test mg.Namespace

// Runs the full test suite.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
