package resources

import (
	"errors"

	"github.com/softglow/lantern/engine/math"
)

// MaxMaterialCount is the hard ceiling on distinct materials per scene.
// The fragment uniform block embeds a fixed array of this size, so the
// loader rejects scenes that exceed it instead of truncating silently.
const MaxMaterialCount = 20

var ErrTooManyMaterials = errors.New("material count exceeds uniform block capacity")

// Material holds the ambient and diffuse colors referenced by mesh faces.
type Material struct {
	Name    string
	Ambient math.Vec3
	Diffuse math.Vec3
}

// Mesh is a loaded scene in the unindexed-per-triangle layout the
// renderer uploads: every triangle contributes three fresh vertices, and
// the three attribute arrays stay parallel.
//
// Invariants: len(Positions) == len(Normals) == len(MaterialIndices),
// and every Indices value < len(Positions).
type Mesh struct {
	Positions       []math.Vec3
	Normals         []math.Vec3
	MaterialIndices []uint32
	Indices         []uint16
	Materials       []Material
}

// VertexCount reports the number of vertices shared by the parallel
// attribute arrays.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount reports how many triangles the index buffer draws.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ShaderBlob is compiled shader bytecode plus its source path, consumed
// opaque at pipeline-creation time.
type ShaderBlob struct {
	Path string
	Code []byte
}
