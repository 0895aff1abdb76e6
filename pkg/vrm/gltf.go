// Package vrm loads VRM avatar models: a minimal glTF/GLB reader that
// extracts the node hierarchy and the VRM humanoid bone mapping, plus
// the asset fallback chain used when a model cannot be loaded.
package vrm

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirrorstage/go-avatar/pkg/rig"
)

// GLB container constants.
const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	chunkJSON    = 0x4E4F534A // "JSON"
	glbHeaderLen = 12
	chunkHdrLen  = 8
)

// document is the subset of glTF this package reads.
type document struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Nodes      []docNode         `json:"nodes"`
	Meshes     []json.RawMessage `json:"meshes"`
	Extensions struct {
		VRM0 *vrm0Extension `json:"VRM"`
		VRM1 *vrm1Extension `json:"VRMC_vrm"`
	} `json:"extensions"`
}

type docNode struct {
	Name        string    `json:"name"`
	Children    []int     `json:"children"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
	Mesh        *int      `json:"mesh"`
}

// parseDocument decodes either a GLB container or bare glTF JSON.
func parseDocument(data []byte) (*document, error) {
	if len(data) >= glbHeaderLen && binary.LittleEndian.Uint32(data[0:4]) == glbMagic {
		jsonChunk, err := glbJSONChunk(data)
		if err != nil {
			return nil, err
		}
		data = jsonChunk
	} else if idx := bytes.IndexFunc(data, notSpace); idx < 0 || data[idx] != '{' {
		return nil, ErrNotGLTF
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("vrm: decode glTF JSON: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("vrm: document has no nodes")
	}
	return &doc, nil
}

func notSpace(r rune) bool {
	return r != ' ' && r != '\t' && r != '\r' && r != '\n'
}

// glbJSONChunk walks the GLB chunk list and returns the JSON chunk.
func glbJSONChunk(data []byte) ([]byte, error) {
	if len(data) < glbHeaderLen {
		return nil, ErrTruncated
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != glbVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, version)
	}

	total := binary.LittleEndian.Uint32(data[8:12])
	if int(total) > len(data) {
		return nil, ErrTruncated
	}

	off := glbHeaderLen
	for off+chunkHdrLen <= int(total) {
		length := int(binary.LittleEndian.Uint32(data[off : off+4]))
		ctype := binary.LittleEndian.Uint32(data[off+4 : off+8])
		off += chunkHdrLen
		if off+length > int(total) {
			return nil, ErrTruncated
		}
		if ctype == chunkJSON {
			return data[off : off+length], nil
		}
		off += length
	}
	return nil, ErrNoJSONChunk
}

// nodes converts the document hierarchy to rig nodes, deriving parent
// indices from the children arrays.
func (d *document) nodes() []rig.Node {
	out := make([]rig.Node, len(d.Nodes))

	for i, n := range d.Nodes {
		out[i] = rig.Node{
			Name:        n.Name,
			Parent:      -1,
			Translation: vec3From(n.Translation),
			Rest:        quatFrom(n.Rotation),
		}
	}

	for parent, n := range d.Nodes {
		for _, child := range n.Children {
			if child < 0 || child >= len(out) || child == parent {
				continue
			}
			out[child].Parent = parent
		}
	}

	return out
}

// meshCount returns how many meshes the document declares.
func (d *document) meshCount() int {
	return len(d.Meshes)
}

func vec3From(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

func quatFrom(v []float64) mgl64.Quat {
	if len(v) != 4 {
		return mgl64.QuatIdent()
	}
	// glTF stores x,y,z,w.
	return mgl64.Quat{W: v[3], V: mgl64.Vec3{v[0], v[1], v[2]}}
}
