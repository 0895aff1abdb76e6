package pose

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirrorstage/go-avatar/pkg/rig"
)

// Relaxed-hand curl angles in radians, one per segment position.
// Fingers curl about the local Z axis, the thumb about local Y.
// Left-hand curls are negative; the right hand mirrors the sign.
const (
	proximalCurl     = 0.30
	intermediateCurl = 0.25
	distalCurl       = 0.20

	thumbProximalCurl     = 0.20
	thumbIntermediateCurl = 0.15
	thumbDistalCurl       = 0.10
)

// SynthesizeFingers writes a constant relaxed curl for every finger
// bone into the snapshot, replacing any finger data already present.
// Pose files don't carry trustworthy finger rotations, so the curls
// are generated instead of read.
func SynthesizeFingers(s *Snapshot) {
	for _, fj := range rig.FingerJoints() {
		var angle float64
		if fj.Finger == rig.FingerThumb {
			switch fj.Segment {
			case rig.SegmentIntermediate:
				angle = thumbIntermediateCurl
			case rig.SegmentDistal:
				angle = thumbDistalCurl
			default:
				angle = thumbProximalCurl
			}
		} else {
			switch fj.Segment {
			case rig.SegmentIntermediate:
				angle = intermediateCurl
			case rig.SegmentDistal:
				angle = distalCurl
			default:
				angle = proximalCurl
			}
		}

		if fj.Side == rig.SideLeft {
			angle = -angle
		}

		var euler mgl64.Vec3
		if fj.Finger == rig.FingerThumb {
			euler = mgl64.Vec3{0, angle, 0}
		} else {
			euler = mgl64.Vec3{0, 0, angle}
		}
		s.Rotations[fj.Bone] = rig.EulerToQuat(euler)
	}
}
