package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/resources"
)

func parseOBJ(t *testing.T, source string) (*resources.Mesh, error) {
	t.Helper()
	return parseWavefront(strings.NewReader(source), t.TempDir())
}

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTriangle(t *testing.T) {
	mesh, err := parseOBJ(t, `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)
	require.NoError(t, err)

	require.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, 1, mesh.TriangleCount())
	assert.Equal(t, []uint16{0, 1, 2}, mesh.Indices)
	assert.Equal(t, math.NewVec3(0, 0, 0), mesh.Positions[0])
	assert.Equal(t, math.NewVec3(1, 0, 0), mesh.Positions[1])
	assert.Equal(t, math.NewVec3(0, 1, 0), mesh.Positions[2])
	assert.Equal(t, []uint32{0, 0, 0}, mesh.MaterialIndices)
}

func TestQuadSplitsIntoTwoTriangles(t *testing.T) {
	mesh, err := parseOBJ(t, `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`)
	require.NoError(t, err)

	require.Equal(t, 6, mesh.VertexCount())
	assert.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, []uint16{0, 1, 2, 3, 4, 5}, mesh.Indices)

	// First triangle keeps corners 0,1,2 and the second fans out as 0,2,3.
	p := []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(1, 0, 0),
		math.NewVec3(1, 1, 0),
		math.NewVec3(0, 1, 0),
	}
	assert.Equal(t, []math.Vec3{p[0], p[1], p[2], p[0], p[2], p[3]}, mesh.Positions)
}

func TestNegativeIndicesCountBackFromLatestPosition(t *testing.T) {
	mesh, err := parseOBJ(t, `
v 9 9 9
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`)
	require.NoError(t, err)

	require.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, math.NewVec3(0, 0, 0), mesh.Positions[0])
	assert.Equal(t, math.NewVec3(1, 0, 0), mesh.Positions[1])
	assert.Equal(t, math.NewVec3(0, 1, 0), mesh.Positions[2])
}

func TestFaceNormals(t *testing.T) {
	t.Run("counter clockwise winding faces forward", func(t *testing.T) {
		mesh, err := parseOBJ(t, `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)
		require.NoError(t, err)
		for _, normal := range mesh.Normals {
			assert.Equal(t, math.NewVec3(0, 0, 1), normal)
		}
	})

	t.Run("clockwise winding faces backward", func(t *testing.T) {
		mesh, err := parseOBJ(t, `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 3 2
`)
		require.NoError(t, err)
		for _, normal := range mesh.Normals {
			assert.Equal(t, math.NewVec3(0, 0, -1), normal)
		}
	})

	t.Run("planar quad shares one normal across both triangles", func(t *testing.T) {
		mesh, err := parseOBJ(t, `
v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
f 1 2 3 4
`)
		require.NoError(t, err)
		require.Len(t, mesh.Normals, 6)
		for _, normal := range mesh.Normals {
			assert.Equal(t, math.NewVec3(0, 0, 1), normal)
		}
	})

	t.Run("degenerate face yields zero normal", func(t *testing.T) {
		mesh, err := parseOBJ(t, `
v 0 0 0
v 0 0 0
v 0 0 0
f 1 2 3
`)
		require.NoError(t, err)
		for _, normal := range mesh.Normals {
			assert.Equal(t, math.NewVec3(0, 0, 0), normal)
		}
	})
}

func TestMaterialAssignment(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "scene.mtl", `
newmtl stone
Ka 0.1 0.1 0.1
Kd 0.5 0.5 0.5

newmtl brass
Ka 0.2 0.1 0.0
Kd 0.8 0.6 0.2
`)
	writeAsset(t, dir, "scene.obj", `
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
usemtl brass
f 1 2 3
usemtl stone
f 1 2 3
`)

	mesh, err := LoadWavefrontModel(filepath.Join(dir, "scene.obj"))
	require.NoError(t, err)

	require.Len(t, mesh.Materials, 2)
	assert.Equal(t, "stone", mesh.Materials[0].Name)
	assert.Equal(t, math.NewVec3(0.1, 0.1, 0.1), mesh.Materials[0].Ambient)
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0.5), mesh.Materials[0].Diffuse)
	assert.Equal(t, "brass", mesh.Materials[1].Name)

	// Faces before any usemtl default to slot zero.
	require.Len(t, mesh.MaterialIndices, 9)
	assert.Equal(t, []uint32{0, 0, 0}, mesh.MaterialIndices[0:3])
	assert.Equal(t, []uint32{1, 1, 1}, mesh.MaterialIndices[3:6])
	assert.Equal(t, []uint32{0, 0, 0}, mesh.MaterialIndices[6:9])
}

func TestUnknownMaterialFailsLoad(t *testing.T) {
	_, err := parseOBJ(t, `
v 0 0 0
v 1 0 0
v 0 1 0
usemtl missing
f 1 2 3
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown material")
}

func TestMissingMaterialLibraryFailsLoad(t *testing.T) {
	_, err := parseOBJ(t, "mtllib nowhere.mtl\n")
	require.Error(t, err)
}

func makeMaterialLibrary(count int) string {
	var builder strings.Builder
	for i := 0; i < count; i++ {
		fmt.Fprintf(&builder, "newmtl mat%02d\nKa 0.1 0.1 0.1\nKd 0.5 0.5 0.5\n", i)
	}
	return builder.String()
}

func TestMaterialCapBoundary(t *testing.T) {
	t.Run("exactly at the cap loads", func(t *testing.T) {
		dir := t.TempDir()
		writeAsset(t, dir, "full.mtl", makeMaterialLibrary(resources.MaxMaterialCount))
		writeAsset(t, dir, "full.obj", "mtllib full.mtl\n")

		mesh, err := LoadWavefrontModel(filepath.Join(dir, "full.obj"))
		require.NoError(t, err)
		assert.Len(t, mesh.Materials, resources.MaxMaterialCount)
	})

	t.Run("one above the cap fails", func(t *testing.T) {
		dir := t.TempDir()
		writeAsset(t, dir, "over.mtl", makeMaterialLibrary(resources.MaxMaterialCount+1))
		writeAsset(t, dir, "over.obj", "mtllib over.mtl\n")

		_, err := LoadWavefrontModel(filepath.Join(dir, "over.obj"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, resources.ErrTooManyMaterials))
	})
}

func TestMalformedFaces(t *testing.T) {
	prelude := "v 0 0 0\nv 1 0 0\nv 0 1 0\n"
	tests := []struct {
		name string
		face string
	}{
		{"two indices", "f 1 2"},
		{"five indices", "f 1 2 3 1 2"},
		{"index zero", "f 1 2 0"},
		{"positive out of range", "f 1 2 4"},
		{"negative out of range", "f -4 -3 -2"},
		{"not a number", "f 1 2 three"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOBJ(t, prelude+tt.face+"\n")
			assert.Error(t, err)
		})
	}
}

func TestCommentsAndUnknownDirectivesAreIgnored(t *testing.T) {
	mesh, err := parseOBJ(t, `
# a full comment line
o triangle
s off
v 0 0 0
v 1 0 0   # trailing comment
v 0 1 0
vn 0 0 1
vt 0 0
f 1 2 3
`)
	require.NoError(t, err)
	assert.Equal(t, 3, mesh.VertexCount())
	// File normals are ignored, the face normal is recomputed.
	assert.Equal(t, math.NewVec3(0, 0, 1), mesh.Normals[0])
}

func TestMalformedVertexPosition(t *testing.T) {
	_, err := parseOBJ(t, "v 1 2\n")
	require.Error(t, err)

	_, err = parseOBJ(t, "v 1 2 x\n")
	require.Error(t, err)
}

func TestMaterialPropertiesOutsideDefinitionFail(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "bad.mtl", "Ka 0.1 0.1 0.1\n")
	writeAsset(t, dir, "bad.obj", "mtllib bad.mtl\n")

	_, err := LoadWavefrontModel(filepath.Join(dir, "bad.obj"))
	require.Error(t, err)
}
