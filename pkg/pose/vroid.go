package pose

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirrorstage/go-avatar/pkg/rig"
)

// vroidFile is the on-disk shape of a VRoid pose export.
type vroidFile struct {
	BoneDefinitions map[string]vroidRotation `json:"boneDefinitions"`
}

// vroidRotation is one bone's local rotation quaternion as exported.
type vroidRotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// vroidBoneTargets maps VRoid skeleton bone names to rig bones. Finger
// bones are deliberately absent: pose files carry stale finger data at
// best, so fingers are synthesized instead (see fingers.go). Unknown
// names are skipped, which also skips accessory bones (hair, skirt).
var vroidBoneTargets = map[string]rig.BoneName{
	"J_Bip_C_Hips":       rig.BoneHips,
	"J_Bip_C_Spine":      rig.BoneSpine,
	"J_Bip_C_Chest":      rig.BoneChest,
	"J_Bip_C_UpperChest": rig.BoneUpperChest,
	"J_Bip_C_Neck":       rig.BoneNeck,
	"J_Bip_C_Head":       rig.BoneHead,
	"J_Adj_L_FaceEye":    rig.BoneLeftEye,
	"J_Adj_R_FaceEye":    rig.BoneRightEye,

	"J_Bip_L_Shoulder": rig.BoneLeftShoulder,
	"J_Bip_L_UpperArm": rig.BoneLeftUpperArm,
	"J_Bip_L_LowerArm": rig.BoneLeftLowerArm,
	"J_Bip_L_Hand":     rig.BoneLeftHand,
	"J_Bip_R_Shoulder": rig.BoneRightShoulder,
	"J_Bip_R_UpperArm": rig.BoneRightUpperArm,
	"J_Bip_R_LowerArm": rig.BoneRightLowerArm,
	"J_Bip_R_Hand":     rig.BoneRightHand,

	"J_Bip_L_UpperLeg": rig.BoneLeftUpperLeg,
	"J_Bip_L_LowerLeg": rig.BoneLeftLowerLeg,
	"J_Bip_L_Foot":     rig.BoneLeftFoot,
	"J_Bip_L_ToeBase":  rig.BoneLeftToes,
	"J_Bip_R_UpperLeg": rig.BoneRightUpperLeg,
	"J_Bip_R_LowerLeg": rig.BoneRightLowerLeg,
	"J_Bip_R_Foot":     rig.BoneRightFoot,
	"J_Bip_R_ToeBase":  rig.BoneRightToes,
}

// ConvertOrientation adapts a quaternion from the VRoid export
// convention to rig convention by negating x and y. z and w pass
// through untouched. Applying it twice restores the original rotation.
func ConvertOrientation(q mgl64.Quat) mgl64.Quat {
	return mgl64.Quat{
		W: q.W,
		V: mgl64.Vec3{-q.V.X(), -q.V.Y(), q.V.Z()},
	}
}

// Parse decodes a VRoid pose file: bone names are mapped to rig names
// and every rotation is converted to rig convention. A file without a
// boneDefinitions section parses to an empty snapshot rather than an
// error. Fingers are not read here; see SynthesizeFingers.
func Parse(data []byte, name string) (*Snapshot, error) {
	var f vroidFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("pose: decode %q: %w", name, err)
	}

	s := NewSnapshot(name)
	for foreign, rot := range f.BoneDefinitions {
		bone, ok := vroidBoneTargets[foreign]
		if !ok {
			continue
		}
		s.Rotations[bone] = ConvertOrientation(mgl64.Quat{
			W: rot.W,
			V: mgl64.Vec3{rot.X, rot.Y, rot.Z},
		})
	}
	return s, nil
}
