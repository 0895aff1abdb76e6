// Package pose loads and converts avatar pose files. Pose files arrive
// in the VRoid export convention (different bone names, flipped
// handedness); this package adapts them to rig bone names and rig
// orientation, synthesizes the finger curls the files omit, and keeps
// a registry of named poses for runtime swaps.
package pose

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirrorstage/go-avatar/pkg/rig"
)

// Snapshot is a complete converted pose: rig bone names mapped to
// local rotations in rig convention. A snapshot with no rotations is
// valid; applying it changes nothing.
type Snapshot struct {
	Name      string
	Source    string
	LoadedAt  time.Time
	Rotations map[rig.BoneName]mgl64.Quat
}

// NewSnapshot returns an empty snapshot with the given name.
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:      name,
		LoadedAt:  time.Now(),
		Rotations: make(map[rig.BoneName]mgl64.Quat),
	}
}

// Get returns the rotation for a bone, or false if the pose does not
// set it.
func (s *Snapshot) Get(b rig.BoneName) (mgl64.Quat, bool) {
	q, ok := s.Rotations[b]
	return q, ok
}

// Set stores a rotation for a bone.
func (s *Snapshot) Set(b rig.BoneName, q mgl64.Quat) {
	s.Rotations[b] = q
}

// Len returns the number of bones the pose sets.
func (s *Snapshot) Len() int {
	return len(s.Rotations)
}

// Bones returns the posed bones in canonical order.
func (s *Snapshot) Bones() []rig.BoneName {
	out := make([]rig.BoneName, 0, len(s.Rotations))
	for _, b := range rig.AllBones() {
		if _, ok := s.Rotations[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Name:      s.Name,
		Source:    s.Source,
		LoadedAt:  s.LoadedAt,
		Rotations: make(map[rig.BoneName]mgl64.Quat, len(s.Rotations)),
	}
	for b, q := range s.Rotations {
		c.Rotations[b] = q
	}
	return c
}
