package vrm

import (
	"os"
	"path/filepath"

	"github.com/mirrorstage/go-avatar/internal/log"
	"github.com/mirrorstage/go-avatar/pkg/rig"
)

// Kind tags what the loader managed to produce. Consumers switch on it
// exhaustively; there is no nil-rig surprise behind KindRigged.
type Kind int

// Asset kinds, best outcome first.
const (
	// KindRigged means a humanoid rig resolved and can be animated.
	KindRigged Kind = iota
	// KindMesh means the model parsed but carries no humanoid mapping;
	// it can be displayed, not animated.
	KindMesh
	// KindPlaceholder means the model could not be loaded at all.
	KindPlaceholder
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindRigged:
		return "rigged"
	case KindMesh:
		return "mesh"
	case KindPlaceholder:
		return "placeholder"
	}
	return "unknown"
}

// Asset is the outcome of loading a model. Rig is non-nil exactly when
// Kind is KindRigged.
type Asset struct {
	Kind      Kind
	Name      string
	Path      string
	Rig       *rig.Rig
	MeshCount int
}

// Load reads a model file and walks the fallback chain: rigged model,
// then plain mesh, then placeholder. It never fails; a missing or
// malformed file degrades to KindPlaceholder with a log line.
func Load(path string) *Asset {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("model unreadable, using placeholder", "path", path, "error", err)
		return placeholder(path)
	}
	return Parse(data, path)
}

// Parse decodes model bytes and walks the same fallback chain as Load.
func Parse(data []byte, path string) *Asset {
	doc, err := parseDocument(data)
	if err != nil {
		log.Warn("model unparseable, using placeholder", "path", path, "error", err)
		return placeholder(path)
	}

	name := doc.title()
	if name == "" {
		name = strippedBase(path)
	}

	nodes := doc.nodes()

	if humanoid, ok := doc.humanoid(); ok {
		r := rig.New(nodes, humanoid)
		if r.JointCount() > 0 {
			log.Info("model loaded",
				"path", path,
				"name", name,
				"kind", KindRigged.String(),
				"joints", r.JointCount(),
				"nodes", len(nodes))
			return &Asset{
				Kind:      KindRigged,
				Name:      name,
				Path:      path,
				Rig:       r,
				MeshCount: doc.meshCount(),
			}
		}
		log.Warn("humanoid mapping resolved no joints", "path", path)
	}

	if doc.meshCount() > 0 {
		log.Info("model loaded without rig",
			"path", path,
			"name", name,
			"kind", KindMesh.String(),
			"meshes", doc.meshCount())
		return &Asset{
			Kind:      KindMesh,
			Name:      name,
			Path:      path,
			MeshCount: doc.meshCount(),
		}
	}

	log.Warn("model has neither rig nor meshes, using placeholder", "path", path)
	return placeholder(path)
}

func placeholder(path string) *Asset {
	return &Asset{
		Kind: KindPlaceholder,
		Name: strippedBase(path),
		Path: path,
	}
}

func strippedBase(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "." || base == "" {
		return "avatar"
	}
	return base
}
