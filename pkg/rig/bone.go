// Package rig models a humanoid skeleton: canonical bone names, the
// node hierarchy they resolve to, and the mutable joint rotations the
// motion pipeline animates.
package rig

// BoneName is a canonical humanoid bone identifier. The names follow
// the VRM 1.0 humanoid bone set; VRM 0.x names are normalized on load.
type BoneName string

// Torso, head and face bones.
const (
	BoneHips       BoneName = "hips"
	BoneSpine      BoneName = "spine"
	BoneChest      BoneName = "chest"
	BoneUpperChest BoneName = "upperChest"
	BoneNeck       BoneName = "neck"
	BoneHead       BoneName = "head"
	BoneLeftEye    BoneName = "leftEye"
	BoneRightEye   BoneName = "rightEye"
	BoneJaw        BoneName = "jaw"
)

// Arm bones.
const (
	BoneLeftShoulder  BoneName = "leftShoulder"
	BoneLeftUpperArm  BoneName = "leftUpperArm"
	BoneLeftLowerArm  BoneName = "leftLowerArm"
	BoneLeftHand      BoneName = "leftHand"
	BoneRightShoulder BoneName = "rightShoulder"
	BoneRightUpperArm BoneName = "rightUpperArm"
	BoneRightLowerArm BoneName = "rightLowerArm"
	BoneRightHand     BoneName = "rightHand"
)

// Leg bones.
const (
	BoneLeftUpperLeg  BoneName = "leftUpperLeg"
	BoneLeftLowerLeg  BoneName = "leftLowerLeg"
	BoneLeftFoot      BoneName = "leftFoot"
	BoneLeftToes      BoneName = "leftToes"
	BoneRightUpperLeg BoneName = "rightUpperLeg"
	BoneRightLowerLeg BoneName = "rightLowerLeg"
	BoneRightFoot     BoneName = "rightFoot"
	BoneRightToes     BoneName = "rightToes"
)

// Finger bones, VRM 1.0 naming. The thumb chain is
// metacarpal/proximal/distal; the other fingers are
// proximal/intermediate/distal.
const (
	BoneLeftThumbMetacarpal      BoneName = "leftThumbMetacarpal"
	BoneLeftThumbProximal        BoneName = "leftThumbProximal"
	BoneLeftThumbDistal          BoneName = "leftThumbDistal"
	BoneLeftIndexProximal        BoneName = "leftIndexProximal"
	BoneLeftIndexIntermediate    BoneName = "leftIndexIntermediate"
	BoneLeftIndexDistal          BoneName = "leftIndexDistal"
	BoneLeftMiddleProximal       BoneName = "leftMiddleProximal"
	BoneLeftMiddleIntermediate   BoneName = "leftMiddleIntermediate"
	BoneLeftMiddleDistal         BoneName = "leftMiddleDistal"
	BoneLeftRingProximal         BoneName = "leftRingProximal"
	BoneLeftRingIntermediate     BoneName = "leftRingIntermediate"
	BoneLeftRingDistal           BoneName = "leftRingDistal"
	BoneLeftLittleProximal       BoneName = "leftLittleProximal"
	BoneLeftLittleIntermediate   BoneName = "leftLittleIntermediate"
	BoneLeftLittleDistal         BoneName = "leftLittleDistal"
	BoneRightThumbMetacarpal     BoneName = "rightThumbMetacarpal"
	BoneRightThumbProximal       BoneName = "rightThumbProximal"
	BoneRightThumbDistal         BoneName = "rightThumbDistal"
	BoneRightIndexProximal       BoneName = "rightIndexProximal"
	BoneRightIndexIntermediate   BoneName = "rightIndexIntermediate"
	BoneRightIndexDistal         BoneName = "rightIndexDistal"
	BoneRightMiddleProximal      BoneName = "rightMiddleProximal"
	BoneRightMiddleIntermediate  BoneName = "rightMiddleIntermediate"
	BoneRightMiddleDistal        BoneName = "rightMiddleDistal"
	BoneRightRingProximal        BoneName = "rightRingProximal"
	BoneRightRingIntermediate    BoneName = "rightRingIntermediate"
	BoneRightRingDistal          BoneName = "rightRingDistal"
	BoneRightLittleProximal      BoneName = "rightLittleProximal"
	BoneRightLittleIntermediate  BoneName = "rightLittleIntermediate"
	BoneRightLittleDistal        BoneName = "rightLittleDistal"
)

// Side identifies which half of the body a mirrored bone belongs to.
type Side int

// Body sides.
const (
	SideLeft Side = iota
	SideRight
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Finger identifies one of the five fingers.
type Finger int

// Fingers, thumb first.
const (
	FingerThumb Finger = iota
	FingerIndex
	FingerMiddle
	FingerRing
	FingerLittle
)

// String returns the lowercase finger name.
func (f Finger) String() string {
	switch f {
	case FingerThumb:
		return "thumb"
	case FingerIndex:
		return "index"
	case FingerMiddle:
		return "middle"
	case FingerRing:
		return "ring"
	case FingerLittle:
		return "little"
	}
	return "unknown"
}

// Segment identifies the position of a finger joint within its chain,
// from the knuckle outward.
type Segment int

// Finger segments.
const (
	SegmentProximal Segment = iota
	SegmentIntermediate
	SegmentDistal
)

// String returns the lowercase segment name.
func (s Segment) String() string {
	switch s {
	case SegmentIntermediate:
		return "intermediate"
	case SegmentDistal:
		return "distal"
	}
	return "proximal"
}

// FingerJoint describes one synthesizable finger bone.
type FingerJoint struct {
	Bone    BoneName
	Side    Side
	Finger  Finger
	Segment Segment
}

var fingerJoints = []FingerJoint{
	{BoneLeftThumbMetacarpal, SideLeft, FingerThumb, SegmentProximal},
	{BoneLeftThumbProximal, SideLeft, FingerThumb, SegmentIntermediate},
	{BoneLeftThumbDistal, SideLeft, FingerThumb, SegmentDistal},
	{BoneLeftIndexProximal, SideLeft, FingerIndex, SegmentProximal},
	{BoneLeftIndexIntermediate, SideLeft, FingerIndex, SegmentIntermediate},
	{BoneLeftIndexDistal, SideLeft, FingerIndex, SegmentDistal},
	{BoneLeftMiddleProximal, SideLeft, FingerMiddle, SegmentProximal},
	{BoneLeftMiddleIntermediate, SideLeft, FingerMiddle, SegmentIntermediate},
	{BoneLeftMiddleDistal, SideLeft, FingerMiddle, SegmentDistal},
	{BoneLeftRingProximal, SideLeft, FingerRing, SegmentProximal},
	{BoneLeftRingIntermediate, SideLeft, FingerRing, SegmentIntermediate},
	{BoneLeftRingDistal, SideLeft, FingerRing, SegmentDistal},
	{BoneLeftLittleProximal, SideLeft, FingerLittle, SegmentProximal},
	{BoneLeftLittleIntermediate, SideLeft, FingerLittle, SegmentIntermediate},
	{BoneLeftLittleDistal, SideLeft, FingerLittle, SegmentDistal},
	{BoneRightThumbMetacarpal, SideRight, FingerThumb, SegmentProximal},
	{BoneRightThumbProximal, SideRight, FingerThumb, SegmentIntermediate},
	{BoneRightThumbDistal, SideRight, FingerThumb, SegmentDistal},
	{BoneRightIndexProximal, SideRight, FingerIndex, SegmentProximal},
	{BoneRightIndexIntermediate, SideRight, FingerIndex, SegmentIntermediate},
	{BoneRightIndexDistal, SideRight, FingerIndex, SegmentDistal},
	{BoneRightMiddleProximal, SideRight, FingerMiddle, SegmentProximal},
	{BoneRightMiddleIntermediate, SideRight, FingerMiddle, SegmentIntermediate},
	{BoneRightMiddleDistal, SideRight, FingerMiddle, SegmentDistal},
	{BoneRightRingProximal, SideRight, FingerRing, SegmentProximal},
	{BoneRightRingIntermediate, SideRight, FingerRing, SegmentIntermediate},
	{BoneRightRingDistal, SideRight, FingerRing, SegmentDistal},
	{BoneRightLittleProximal, SideRight, FingerLittle, SegmentProximal},
	{BoneRightLittleIntermediate, SideRight, FingerLittle, SegmentIntermediate},
	{BoneRightLittleDistal, SideRight, FingerLittle, SegmentDistal},
}

// FingerJoints returns every finger bone with its side, finger and
// segment. The returned slice is shared; callers must not modify it.
func FingerJoints() []FingerJoint {
	return fingerJoints
}

// canonicalOrder lists every humanoid bone, torso-out. Frames and
// listings iterate in this order so output is stable.
var canonicalOrder = []BoneName{
	BoneHips, BoneSpine, BoneChest, BoneUpperChest, BoneNeck, BoneHead,
	BoneLeftEye, BoneRightEye, BoneJaw,
	BoneLeftShoulder, BoneLeftUpperArm, BoneLeftLowerArm, BoneLeftHand,
	BoneRightShoulder, BoneRightUpperArm, BoneRightLowerArm, BoneRightHand,
	BoneLeftUpperLeg, BoneLeftLowerLeg, BoneLeftFoot, BoneLeftToes,
	BoneRightUpperLeg, BoneRightLowerLeg, BoneRightFoot, BoneRightToes,
	BoneLeftThumbMetacarpal, BoneLeftThumbProximal, BoneLeftThumbDistal,
	BoneLeftIndexProximal, BoneLeftIndexIntermediate, BoneLeftIndexDistal,
	BoneLeftMiddleProximal, BoneLeftMiddleIntermediate, BoneLeftMiddleDistal,
	BoneLeftRingProximal, BoneLeftRingIntermediate, BoneLeftRingDistal,
	BoneLeftLittleProximal, BoneLeftLittleIntermediate, BoneLeftLittleDistal,
	BoneRightThumbMetacarpal, BoneRightThumbProximal, BoneRightThumbDistal,
	BoneRightIndexProximal, BoneRightIndexIntermediate, BoneRightIndexDistal,
	BoneRightMiddleProximal, BoneRightMiddleIntermediate, BoneRightMiddleDistal,
	BoneRightRingProximal, BoneRightRingIntermediate, BoneRightRingDistal,
	BoneRightLittleProximal, BoneRightLittleIntermediate, BoneRightLittleDistal,
}

var canonicalSet = func() map[BoneName]struct{} {
	set := make(map[BoneName]struct{}, len(canonicalOrder))
	for _, b := range canonicalOrder {
		set[b] = struct{}{}
	}
	return set
}()

// AllBones returns every canonical bone name in stable order.
// The returned slice is shared; callers must not modify it.
func AllBones() []BoneName {
	return canonicalOrder
}

// IsCanonical reports whether name is a known humanoid bone name.
func IsCanonical(name BoneName) bool {
	_, ok := canonicalSet[name]
	return ok
}
