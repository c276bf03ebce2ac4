package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceRegistryAcquireRelease(t *testing.T) {
	reg := NewResourceRegistry()

	id := reg.Acquire("swapchain", 1)
	assert.Equal(t, 1, reg.LiveCount())

	require.NoError(t, reg.Release(id))
	assert.Equal(t, 0, reg.LiveCount())

	assert.Error(t, reg.Release(id))
}

func TestResourceRegistryReleaseGeneration(t *testing.T) {
	reg := NewResourceRegistry()

	reg.Acquire("framebuffer", 1)
	reg.Acquire("framebuffer", 1)
	reg.Acquire("shadow-cube", 1)
	survivor := reg.Acquire("pipeline", 2)

	released := reg.ReleaseGeneration(1)
	assert.Equal(t, 3, released)
	assert.Equal(t, 1, reg.LiveCount())

	// The newer generation is untouched.
	require.NoError(t, reg.Release(survivor))
	assert.Equal(t, 0, reg.LiveCount())
}

func TestResourceRegistryReportLeaks(t *testing.T) {
	reg := NewResourceRegistry()
	assert.Equal(t, 0, reg.ReportLeaks())

	reg.Acquire("depth-target", 3)
	reg.Acquire("color-target", 3)
	assert.Equal(t, 2, reg.ReportLeaks())
}
