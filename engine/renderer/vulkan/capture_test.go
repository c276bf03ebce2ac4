package vulkan

import (
	"image"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelsToImage(t *testing.T) {
	t.Run("swizzles bgra to rgba", func(t *testing.T) {
		pixels := []byte{
			0x10, 0x20, 0x30, 0x80, // blue, green, red, alpha
			0x01, 0x02, 0x03, 0x04,
		}
		img, err := pixelsToImage(pixels, 2, 1, vk.FormatB8g8r8a8Srgb)
		require.NoError(t, err)

		nrgba, ok := img.(*image.NRGBA)
		require.True(t, ok)
		assert.Equal(t, []byte{0x30, 0x20, 0x10, 0xff, 0x03, 0x02, 0x01, 0xff}, nrgba.Pix)
	})

	t.Run("passes rgba through with opaque alpha", func(t *testing.T) {
		pixels := []byte{0x11, 0x22, 0x33, 0x00}
		img, err := pixelsToImage(pixels, 1, 1, vk.FormatR8g8b8a8Unorm)
		require.NoError(t, err)

		nrgba := img.(*image.NRGBA)
		assert.Equal(t, []byte{0x11, 0x22, 0x33, 0xff}, nrgba.Pix)
	})

	t.Run("rejects formats it cannot decode", func(t *testing.T) {
		_, err := pixelsToImage(nil, 1, 1, vk.FormatR5g6b5UnormPack16)
		assert.Error(t, err)
	})
}
