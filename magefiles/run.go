//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the renderer from source.
func (Run) Renderer() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("run", "."), withStream())
	return err
}
