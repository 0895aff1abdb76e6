// Package avatar implements the motion controller. One Avatar owns a
// loaded model asset, the active pose snapshot, and all animation
// state; the frame loop calls Step once per tick and publishes the
// returned frame. All joint mutation happens inside Step, so the
// avatar needs no locks of its own.
package avatar

import (
	"github.com/mirrorstage/go-avatar/internal/log"
	"github.com/mirrorstage/go-avatar/pkg/motion"
	"github.com/mirrorstage/go-avatar/pkg/pose"
	"github.com/mirrorstage/go-avatar/pkg/protocol"
	"github.com/mirrorstage/go-avatar/pkg/rig"
	"github.com/mirrorstage/go-avatar/pkg/vrm"
)

// State is the pose state machine.
type State int

const (
	// StatePosed is normal operation: pose applied, motion running.
	StatePosed State = iota
	// StateRecovering is the transient state while the snapshot is
	// re-applied after a visibility regain or pose swap. It lasts at
	// most one frame.
	StateRecovering
)

// String returns the lowercase state name.
func (s State) String() string {
	if s == StateRecovering {
		return "recovering"
	}
	return "posed"
}

// trackMode is resolved once at construction from the joints the model
// actually has.
type trackMode int

const (
	trackHeadNeck trackMode = iota
	trackEyes
	trackNone
)

// Placeholder assets spin slowly so the fallback is visibly alive.
const placeholderSpinRate = 0.5 // rad/s

// Secondary offsets (speech wobble) are clamped before application.
var maxSecondary = motion.Offset{Pitch: 0.12, Yaw: 0.12, Roll: 0.10}

// SecondarySource supplies an additive head offset sampled once per
// frame, e.g. the speech wobbler.
type SecondarySource func() motion.Offset

// Avatar is the motion controller context for one loaded model.
type Avatar struct {
	asset  *vrm.Asset
	params motion.Params
	inputs *Inputs

	snapshot  *pose.Snapshot
	secondary SecondarySource

	state      State
	mode       trackMode
	elapsed    float64
	seq        uint64
	spin       float64
	wasVisible bool
}

// New creates an avatar around a loaded asset. The tracking mode is
// resolved here, once: head/neck if the rig has either joint, eye gaze
// if it only has eyes, otherwise tracking is disabled.
func New(asset *vrm.Asset, params motion.Params) *Avatar {
	a := &Avatar{
		asset:      asset,
		params:     params,
		inputs:     NewInputs(),
		state:      StatePosed,
		mode:       trackNone,
		wasVisible: true,
	}

	if asset.Kind == vrm.KindRigged {
		switch {
		case asset.Rig.Has(rig.BoneHead) || asset.Rig.Has(rig.BoneNeck):
			a.mode = trackHeadNeck
		case asset.Rig.Has(rig.BoneLeftEye) || asset.Rig.Has(rig.BoneRightEye):
			a.mode = trackEyes
			log.Debug("no head or neck joints, tracking with eye gaze", "model", asset.Name)
		default:
			log.Debug("no trackable joints, pointer tracking disabled", "model", asset.Name)
		}
	}

	return a
}

// Inputs returns the mailbox event producers write into.
func (a *Avatar) Inputs() *Inputs {
	return a.inputs
}

// Asset returns the loaded asset.
func (a *Avatar) Asset() *vrm.Asset {
	return a.asset
}

// State returns the pose state as of the last step.
func (a *Avatar) State() State {
	return a.state
}

// Pose returns the active pose snapshot, or nil before the first swap.
func (a *Avatar) Pose() *pose.Snapshot {
	return a.snapshot
}

// SetSecondary installs the secondary offset source. Call before the
// frame loop starts.
func (a *Avatar) SetSecondary(src SecondarySource) {
	a.secondary = src
}

// ApplyPose swaps the active pose immediately and runs the recovery
// sequence. Only the frame loop may call this; producers use
// Inputs().QueuePose.
func (a *Avatar) ApplyPose(s *pose.Snapshot) {
	if s == nil {
		return
	}
	a.snapshot = s
	a.recover()
}

// Step advances the avatar by dt seconds and returns the frame to
// publish. It samples inputs exactly once, at the start.
func (a *Avatar) Step(dt float64) protocol.FrameData {
	in := a.inputs.Sample()

	if in.NewPose != nil {
		a.ApplyPose(in.NewPose)
	} else if in.Visible && !a.wasVisible {
		a.recover()
	} else {
		a.state = StatePosed
	}
	a.wasVisible = in.Visible

	if in.Visible {
		switch a.asset.Kind {
		case vrm.KindRigged:
			a.stepRigged(dt, in)
		case vrm.KindMesh:
			// Nothing to animate.
		case vrm.KindPlaceholder:
			a.spin += placeholderSpinRate * dt
		}
		a.elapsed += dt
	}

	a.seq++
	return a.frame()
}

// stepRigged applies idle motion and pointer tracking to the rig.
func (a *Avatar) stepRigged(dt float64, in InputState) {
	p := a.params.Scaled(in.MotionScale)
	r := a.asset.Rig

	d := motion.IdleDeltas(a.elapsed, dt, p)
	addEuler(r, rig.BoneChest, d.ChestPitch, 0, 0)
	addEuler(r, rig.BoneUpperChest, d.UpperChestPitch, 0, 0)
	addEuler(r, rig.BoneSpine, 0, d.SpineYaw, d.SpineRoll)
	addEuler(r, rig.BoneHips, 0, d.HipsYaw, d.HipsRoll)

	switch a.mode {
	case trackHeadNeck:
		a.trackHead(r, in)
	case trackEyes:
		a.trackEyes(r, in)
	case trackNone:
		// Resolved at construction: nothing to drive.
	}
}

// trackHead smooths head and neck toward the pointer target. Either
// joint may be absent; the other still tracks.
func (a *Avatar) trackHead(r *rig.Rig, in InputState) {
	targetPitch, targetYaw := motion.PointerTarget(in.PointerX, in.PointerY)
	bobPitch, bobYaw := motion.HeadBob(a.elapsed)
	sec := a.sampleSecondary()

	if j, ok := r.Joint(rig.BoneHead); ok {
		j.Euler[0] = motion.Lerp(j.Euler[0], targetPitch+bobPitch+sec.Pitch, motion.HeadSmoothing)
		j.Euler[1] = motion.Lerp(j.Euler[1], targetYaw+bobYaw+sec.Yaw, motion.HeadSmoothing)
		j.Euler[2] = motion.Lerp(j.Euler[2], sec.Roll, motion.HeadSmoothing)
	}

	if j, ok := r.Joint(rig.BoneNeck); ok {
		neckPitch := targetPitch*motion.NeckFollow + motion.NeckBob(a.elapsed)
		neckYaw := targetYaw * motion.NeckFollow
		j.Euler[0] = motion.Lerp(j.Euler[0], neckPitch, motion.NeckSmoothing)
		j.Euler[1] = motion.Lerp(j.Euler[1], neckYaw, motion.NeckSmoothing)
	}
}

// trackEyes aims the eye joints at the gaze target.
func (a *Avatar) trackEyes(r *rig.Rig, in InputState) {
	gazePitch, gazeYaw := motion.EyeGaze(in.PointerX, in.PointerY)

	for _, bone := range []rig.BoneName{rig.BoneLeftEye, rig.BoneRightEye} {
		if j, ok := r.Joint(bone); ok {
			j.Euler[0] = motion.Lerp(j.Euler[0], gazePitch, motion.HeadSmoothing)
			j.Euler[1] = motion.Lerp(j.Euler[1], gazeYaw, motion.HeadSmoothing)
		}
	}
}

func (a *Avatar) sampleSecondary() motion.Offset {
	if a.secondary == nil {
		return motion.Offset{}
	}
	return a.secondary().Clamp(maxSecondary)
}

// recover re-applies the pose snapshot, re-centers tracking, and
// zeroes the idle clock. It enters StateRecovering for the frame being
// produced; the next step returns to StatePosed.
func (a *Avatar) recover() {
	a.state = StateRecovering
	a.elapsed = 0

	if a.asset.Kind != vrm.KindRigged {
		return
	}

	r := a.asset.Rig
	r.Reset()

	if a.snapshot == nil {
		return
	}
	for _, bone := range a.snapshot.Bones() {
		j, ok := r.Joint(bone)
		if !ok {
			continue
		}
		q, _ := a.snapshot.Get(bone)
		j.Euler = rig.QuatToEuler(q)
	}
}

// frame serializes the current joint state.
func (a *Avatar) frame() protocol.FrameData {
	f := protocol.FrameData{
		Seq:   a.seq,
		T:     a.elapsed,
		Kind:  a.asset.Kind.String(),
		State: a.state.String(),
	}

	switch a.asset.Kind {
	case vrm.KindRigged:
		r := a.asset.Rig
		bones := r.Bones()
		f.Joints = make([]protocol.JointRotation, 0, len(bones))
		for _, bone := range bones {
			j, _ := r.Joint(bone)
			f.Joints = append(f.Joints, protocol.JointRotation{
				Bone: string(bone),
				X:    j.Euler[0],
				Y:    j.Euler[1],
				Z:    j.Euler[2],
			})
		}
	case vrm.KindMesh:
		// Static: no joints to report.
	case vrm.KindPlaceholder:
		f.Spin = a.spin
	}

	return f
}

// addEuler accumulates deltas onto a joint, skipping silently when the
// model lacks the bone.
func addEuler(r *rig.Rig, bone rig.BoneName, pitch, yaw, roll float64) {
	j, ok := r.Joint(bone)
	if !ok {
		return
	}
	j.Euler[0] += pitch
	j.Euler[1] += yaw
	j.Euler[2] += roll
}
