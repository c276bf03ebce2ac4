package vulkan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softglow/lantern/engine/math"
)

// cubeFaceLookup mirrors the fixed-function cube map coordinate
// selection: pick the major axis, then derive the in-face texel from
// the minor components. Faces follow layer order +X,-X,+Y,-Y,+Z,-Z.
func cubeFaceLookup(direction math.Vec3) (face int, s, t float32) {
	absX, absY, absZ := abs(direction.X), abs(direction.Y), abs(direction.Z)

	var sc, tc, ma float32
	switch {
	case absX >= absY && absX >= absZ && direction.X > 0:
		face, sc, tc, ma = 0, -direction.Z, -direction.Y, absX
	case absX >= absY && absX >= absZ:
		face, sc, tc, ma = 1, direction.Z, -direction.Y, absX
	case absY >= absX && absY >= absZ && direction.Y > 0:
		face, sc, tc, ma = 2, direction.X, direction.Z, absY
	case absY >= absX && absY >= absZ:
		face, sc, tc, ma = 3, direction.X, -direction.Z, absY
	case direction.Z > 0:
		face, sc, tc, ma = 4, direction.X, -direction.Y, absZ
	default:
		face, sc, tc, ma = 5, -direction.X, -direction.Y, absZ
	}
	return face, (sc/ma + 1) / 2, (tc/ma + 1) / 2
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func projectThroughFace(matrix math.Mat4, point math.Vec3) (ndcX, ndcY, depth, w float32) {
	clip := matrix.MulVec4(point.ToVec4(1))
	return clip.X / clip.W, clip.Y / clip.W, clip.Z / clip.W, clip.W
}

func TestShadowFacesLookAlongTheirAxes(t *testing.T) {
	light := math.NewVec3(0, 1.9, 0)
	matrices := ShadowFaceMatrices(light, 0.1, 100)

	axes := [shadowFaceCount]math.Vec3{
		math.NewVec3(1, 0, 0),
		math.NewVec3(-1, 0, 0),
		math.NewVec3(0, 1, 0),
		math.NewVec3(0, -1, 0),
		math.NewVec3(0, 0, 1),
		math.NewVec3(0, 0, -1),
	}

	for face, axis := range axes {
		point := light.Add(axis.MulScalar(5))

		ndcX, ndcY, depth, w := projectThroughFace(matrices[face], point)
		assert.Greater(t, w, float32(0), "face %d must see its own axis", face)
		assert.InDelta(t, 0, ndcX, 1e-5, "face %d axis point off center", face)
		assert.InDelta(t, 0, ndcY, 1e-5, "face %d axis point off center", face)
		assert.Greater(t, depth, float32(0), "face %d depth below range", face)
		assert.Less(t, depth, float32(1), "face %d depth above range", face)

		opposite := face ^ 1
		_, _, _, wOpposite := projectThroughFace(matrices[opposite], point)
		assert.Less(t, wOpposite, float32(0), "face %d must not see face %d's axis", opposite, face)
	}
}

// Rendering and sampling have to agree texel for texel: a point
// rasterized through a face matrix must land on the same (s,t) the
// hardware derives from the point's direction when the scene pass
// samples the cube.
func TestShadowProjectionMatchesCubeLookup(t *testing.T) {
	light := math.NewVec3(0.5, 1.9, -0.25)
	matrices := ShadowFaceMatrices(light, 0.1, 100)

	points := []math.Vec3{
		light.Add(math.NewVec3(4, 1.2, -0.8)),
		light.Add(math.NewVec3(-3, 0.4, 1.1)),
		light.Add(math.NewVec3(0.9, 5, 1.7)),
		light.Add(math.NewVec3(-1.2, -6, 0.3)),
		light.Add(math.NewVec3(1.4, -0.9, 7)),
		light.Add(math.NewVec3(-0.6, 1.1, -5)),
		light.Add(math.NewVec3(2.5, 2.4, 2.3)),
		light.Add(math.NewVec3(-0.01, -8, 0.02)),
	}

	for i, point := range points {
		point := point
		t.Run(fmt.Sprintf("point_%d", i), func(t *testing.T) {
			direction := point.Sub(light)
			face, wantS, wantT := cubeFaceLookup(direction)

			ndcX, ndcY, depth, w := projectThroughFace(matrices[face], point)
			require.Greater(t, w, float32(0), "selected face does not see the point")
			require.GreaterOrEqual(t, depth, float32(0))
			require.LessOrEqual(t, depth, float32(1))

			assert.InDelta(t, wantS, (ndcX+1)/2, 1e-4, "horizontal texel mismatch on face %d", face)
			assert.InDelta(t, wantT, (ndcY+1)/2, 1e-4, "vertical texel mismatch on face %d", face)
		})
	}
}

func TestShadowDepthRange(t *testing.T) {
	light := math.NewVec3(0, 0, 0)
	near, far := float32(0.1), float32(100)
	matrices := ShadowFaceMatrices(light, near, far)

	t.Run("near plane maps to zero", func(t *testing.T) {
		_, _, depth, _ := projectThroughFace(matrices[0], math.NewVec3(near, 0, 0))
		assert.InDelta(t, 0, depth, 1e-5)
	})

	t.Run("far plane maps to one", func(t *testing.T) {
		_, _, depth, _ := projectThroughFace(matrices[0], math.NewVec3(far, 0, 0))
		assert.InDelta(t, 1, depth, 1e-3)
	})

	t.Run("depth grows with distance", func(t *testing.T) {
		_, _, nearDepth, _ := projectThroughFace(matrices[4], math.NewVec3(0, 0, 2))
		_, _, farDepth, _ := projectThroughFace(matrices[4], math.NewVec3(0, 0, 50))
		assert.Less(t, nearDepth, farDepth)
	})
}

func TestShadowFaceMatricesFollowTheLight(t *testing.T) {
	light := math.NewVec3(3, -2, 7)
	matrices := ShadowFaceMatrices(light, 0.1, 100)

	// The same relative offset must project identically wherever the
	// light sits.
	reference := ShadowFaceMatrices(math.NewVec3(0, 0, 0), 0.1, 100)
	offset := math.NewVec3(1.5, 0.4, -0.2)

	for face := 0; face < shadowFaceCount; face++ {
		x1, y1, d1, w1 := projectThroughFace(matrices[face], light.Add(offset))
		x2, y2, d2, w2 := projectThroughFace(reference[face], offset)
		if w2 <= 0 {
			assert.LessOrEqual(t, w1, float32(0))
			continue
		}
		assert.InDelta(t, x2, x1, 1e-4)
		assert.InDelta(t, y2, y1, 1e-4)
		assert.InDelta(t, d2, d1, 1e-4)
		assert.InDelta(t, w2, w1, 1e-4)
	}
}
