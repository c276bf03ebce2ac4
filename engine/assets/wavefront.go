package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/resources"
)

// LoadWavefrontModel parses a Wavefront OBJ file together with the material
// libraries it references and returns a flat triangle mesh. Only a small
// subset of the format is recognized: v, f (triangles and quads), mtllib and
// usemtl. Normals are always recomputed per face, so every face contributes
// its own run of vertices and nothing is shared between faces.
func LoadWavefrontModel(path string) (*resources.Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer file.Close()

	return parseWavefront(file, filepath.Dir(path))
}

// maxMeshVertices is the number of vertices addressable with uint16 indices.
const maxMeshVertices = 1 << 16

func parseWavefront(r io.Reader, baseDir string) (*resources.Mesh, error) {
	mesh := &resources.Mesh{}

	// Raw v entries in file order. Face indices refer into this list and
	// resolved vertices are copied out per face.
	var rawPositions []math.Vec3

	materialIndices := map[string]uint32{}
	currentMaterial := uint32(0)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := splitDirective(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			position, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex position: %w", lineNo, err)
			}
			rawPositions = append(rawPositions, position)

		case "mtllib":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: mtllib without a file name", lineNo)
			}
			if err := mergeMaterialLibrary(mesh, materialIndices, filepath.Join(baseDir, fields[1])); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

		case "usemtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: usemtl without a material name", lineNo)
			}
			index, ok := materialIndices[fields[1]]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown material %q", lineNo, fields[1])
			}
			currentMaterial = index

		case "f":
			if err := appendFace(mesh, rawPositions, fields[1:], currentMaterial); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	return mesh, nil
}

// splitDirective tokenizes one line and drops everything from the first
// token that opens a comment.
func splitDirective(line string) []string {
	fields := strings.Fields(line)
	for i, field := range fields {
		if strings.HasPrefix(field, "#") {
			return fields[:i]
		}
	}
	return fields
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		value, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = float32(value)
	}
	return math.NewVec3(out[0], out[1], out[2]), nil
}

// appendFace resolves the face's position indices and emits one triangle or
// a quad split into two triangles. Vertices are never shared across faces so
// that each face keeps its own flat normal.
func appendFace(mesh *resources.Mesh, rawPositions []math.Vec3, fields []string, material uint32) error {
	if len(fields) < 3 || len(fields) > 4 {
		return fmt.Errorf("face with %d vertices, only triangles and quads are supported", len(fields))
	}

	corners := make([]math.Vec3, len(fields))
	for i, field := range fields {
		index, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("face index %q: %w", field, err)
		}
		resolved, err := resolveFaceIndex(index, len(rawPositions))
		if err != nil {
			return err
		}
		corners[i] = rawPositions[resolved]
	}

	emitted := 3
	if len(corners) == 4 {
		emitted = 6
	}
	if len(mesh.Positions)+emitted > maxMeshVertices {
		return fmt.Errorf("mesh exceeds %d vertices, too large for 16-bit indices", maxMeshVertices)
	}

	appendTriangle(mesh, corners[0], corners[1], corners[2], material)
	if len(corners) == 4 {
		appendTriangle(mesh, corners[0], corners[2], corners[3], material)
	}
	return nil
}

// resolveFaceIndex maps an OBJ face index onto the raw position list.
// Positive indices are 1-based, negative indices count back from the most
// recently declared position.
func resolveFaceIndex(index, positionCount int) (int, error) {
	resolved := index
	switch {
	case index > 0:
		resolved = index - 1
	case index < 0:
		resolved = positionCount + index
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}
	if resolved < 0 || resolved >= positionCount {
		return 0, fmt.Errorf("face index %d is out of range, %d positions declared", index, positionCount)
	}
	return resolved, nil
}

func appendTriangle(mesh *resources.Mesh, p0, p1, p2 math.Vec3, material uint32) {
	normal := p1.Sub(p0).Cross(p2.Sub(p0)).Normalized()

	base := uint16(len(mesh.Positions))
	mesh.Positions = append(mesh.Positions, p0, p1, p2)
	mesh.Normals = append(mesh.Normals, normal, normal, normal)
	mesh.MaterialIndices = append(mesh.MaterialIndices, material, material, material)
	mesh.Indices = append(mesh.Indices, base, base+1, base+2)
}

// mergeMaterialLibrary parses one MTL file and appends its materials to the
// mesh. Name lookups always point at the latest definition.
func mergeMaterialLibrary(mesh *resources.Mesh, materialIndices map[string]uint32, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open material library: %w", err)
	}
	defer file.Close()

	materials, err := parseMaterialLibrary(file)
	if err != nil {
		return fmt.Errorf("material library %s: %w", filepath.Base(path), err)
	}

	for _, material := range materials {
		materialIndices[material.Name] = uint32(len(mesh.Materials))
		mesh.Materials = append(mesh.Materials, material)
	}
	if len(mesh.Materials) > resources.MaxMaterialCount {
		return fmt.Errorf("%w: %d declared, at most %d supported",
			resources.ErrTooManyMaterials, len(mesh.Materials), resources.MaxMaterialCount)
	}
	return nil
}

// parseMaterialLibrary reads newmtl, Ka and Kd directives. A material is
// complete once the next newmtl or the end of the file is reached.
func parseMaterialLibrary(r io.Reader) ([]resources.Material, error) {
	var materials []resources.Material
	var pending *resources.Material

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := splitDirective(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: newmtl without a name", lineNo)
			}
			if pending != nil {
				materials = append(materials, *pending)
			}
			pending = &resources.Material{Name: fields[1]}

		case "Ka":
			if pending == nil {
				return nil, fmt.Errorf("line %d: Ka outside a material definition", lineNo)
			}
			color, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: ambient color: %w", lineNo, err)
			}
			pending.Ambient = color

		case "Kd":
			if pending == nil {
				return nil, fmt.Errorf("line %d: Kd outside a material definition", lineNo)
			}
			color, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: diffuse color: %w", lineNo, err)
			}
			pending.Diffuse = color
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read material library: %w", err)
	}

	if pending != nil {
		materials = append(materials, *pending)
	}
	return materials, nil
}
