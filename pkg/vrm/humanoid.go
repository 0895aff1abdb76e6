package vrm

import (
	"github.com/mirrorstage/go-avatar/pkg/rig"
)

// vrm0Extension is the VRM 0.x "VRM" extension subset.
type vrm0Extension struct {
	Meta struct {
		Title string `json:"title"`
	} `json:"meta"`
	Humanoid struct {
		HumanBones []struct {
			Bone string `json:"bone"`
			Node int    `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// vrm1Extension is the VRM 1.0 "VRMC_vrm" extension subset.
type vrm1Extension struct {
	SpecVersion string `json:"specVersion"`
	Meta        struct {
		Name string `json:"name"`
	} `json:"meta"`
	Humanoid struct {
		HumanBones map[string]struct {
			Node int `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// vrm0BoneRenames maps VRM 0.x bone names that changed in VRM 1.0.
// The 0.x thumb chain proximal/intermediate/distal became
// metacarpal/proximal/distal.
var vrm0BoneRenames = map[string]rig.BoneName{
	"leftThumbProximal":      rig.BoneLeftThumbMetacarpal,
	"leftThumbIntermediate":  rig.BoneLeftThumbProximal,
	"rightThumbProximal":     rig.BoneRightThumbMetacarpal,
	"rightThumbIntermediate": rig.BoneRightThumbProximal,
}

// humanoid extracts the bone-to-node mapping, preferring the VRM 1.0
// extension when both are present. The second return is false when the
// document carries no humanoid description at all.
func (d *document) humanoid() (map[rig.BoneName]int, bool) {
	if ext := d.Extensions.VRM1; ext != nil && len(ext.Humanoid.HumanBones) > 0 {
		out := make(map[rig.BoneName]int, len(ext.Humanoid.HumanBones))
		for name, hb := range ext.Humanoid.HumanBones {
			bone := rig.BoneName(name)
			if !rig.IsCanonical(bone) {
				continue
			}
			out[bone] = hb.Node
		}
		return out, true
	}

	if ext := d.Extensions.VRM0; ext != nil && len(ext.Humanoid.HumanBones) > 0 {
		out := make(map[rig.BoneName]int, len(ext.Humanoid.HumanBones))
		for _, hb := range ext.Humanoid.HumanBones {
			bone := rig.BoneName(hb.Bone)
			if renamed, ok := vrm0BoneRenames[hb.Bone]; ok {
				bone = renamed
			}
			if !rig.IsCanonical(bone) {
				continue
			}
			// First declaration wins on duplicates.
			if _, dup := out[bone]; dup {
				continue
			}
			out[bone] = hb.Node
		}
		return out, true
	}

	return nil, false
}

// title returns the model's display name from whichever meta block is
// present, or "" when unnamed.
func (d *document) title() string {
	if ext := d.Extensions.VRM1; ext != nil && ext.Meta.Name != "" {
		return ext.Meta.Name
	}
	if ext := d.Extensions.VRM0; ext != nil && ext.Meta.Title != "" {
		return ext.Meta.Title
	}
	return ""
}
