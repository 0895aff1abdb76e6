package rig

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Node is one transform in the source model hierarchy. Parent is an
// index into the node list, -1 for roots.
type Node struct {
	Name        string
	Parent      int
	Translation mgl64.Vec3
	Rest        mgl64.Quat
}

// Joint is a humanoid bone resolved to a node. Euler is the mutable
// local rotation (radians, intrinsic XYZ) the motion pipeline writes.
type Joint struct {
	Bone  BoneName
	Node  int
	Euler mgl64.Vec3
}

// Rig owns the node hierarchy and the humanoid joints resolved against
// it. Joint lookup is a map hit; bones the model lacks simply miss.
type Rig struct {
	nodes  []Node
	joints map[BoneName]*Joint
	byNode map[int]*Joint
}

// New resolves the humanoid bone mapping against the node hierarchy in
// a single pass. Entries with unknown bone names or out-of-range node
// indices are dropped; the rig is usable with any subset of bones.
func New(nodes []Node, humanoid map[BoneName]int) *Rig {
	r := &Rig{
		nodes:  nodes,
		joints: make(map[BoneName]*Joint, len(humanoid)),
		byNode: make(map[int]*Joint, len(humanoid)),
	}

	for bone, idx := range humanoid {
		if !IsCanonical(bone) {
			continue
		}
		if idx < 0 || idx >= len(nodes) {
			continue
		}
		if _, taken := r.byNode[idx]; taken {
			continue
		}
		j := &Joint{
			Bone:  bone,
			Node:  idx,
			Euler: QuatToEuler(nodes[idx].Rest),
		}
		r.joints[bone] = j
		r.byNode[idx] = j
	}

	return r
}

// Joint returns the joint for a bone, or false if the model lacks it.
func (r *Rig) Joint(b BoneName) (*Joint, bool) {
	j, ok := r.joints[b]
	return j, ok
}

// Has reports whether the bone resolved to a node.
func (r *Rig) Has(b BoneName) bool {
	_, ok := r.joints[b]
	return ok
}

// Bones returns the resolved bones in canonical order.
func (r *Rig) Bones() []BoneName {
	out := make([]BoneName, 0, len(r.joints))
	for _, b := range canonicalOrder {
		if _, ok := r.joints[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// JointCount returns the number of resolved humanoid joints.
func (r *Rig) JointCount() int {
	return len(r.joints)
}

// Nodes returns the node hierarchy. Callers must not modify it.
func (r *Rig) Nodes() []Node {
	return r.nodes
}

// Reset restores every joint to its rest rotation.
func (r *Rig) Reset() {
	for _, j := range r.joints {
		j.Euler = QuatToEuler(r.nodes[j.Node].Rest)
	}
}

// localQuat returns the node's effective local rotation: the joint's
// animated rotation when the node is a humanoid joint, its rest
// rotation otherwise.
func (r *Rig) localQuat(i int) mgl64.Quat {
	if j, ok := r.byNode[i]; ok {
		return EulerToQuat(j.Euler)
	}
	return r.nodes[i].Rest
}

// WorldMatrices computes the world transform of every node from the
// current joint rotations. Parents are resolved lazily so node order
// does not matter.
func (r *Rig) WorldMatrices() []mgl64.Mat4 {
	world := make([]mgl64.Mat4, len(r.nodes))
	done := make([]bool, len(r.nodes))

	var resolve func(i int) mgl64.Mat4
	resolve = func(i int) mgl64.Mat4 {
		if done[i] {
			return world[i]
		}
		// Mark before recursing so a malformed parent cycle terminates;
		// the node inside the cycle resolves against identity.
		done[i] = true
		world[i] = mgl64.Ident4()

		n := r.nodes[i]
		local := mgl64.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z())
		local = local.Mul4(r.localQuat(i).Normalize().Mat4())

		if n.Parent >= 0 && n.Parent < len(r.nodes) && n.Parent != i {
			world[i] = resolve(n.Parent).Mul4(local)
		} else {
			world[i] = local
		}
		return world[i]
	}

	for i := range r.nodes {
		resolve(i)
	}
	return world
}

// WorldPositions returns the world-space position of every node.
func (r *Rig) WorldPositions() []mgl64.Vec3 {
	mats := r.WorldMatrices()
	out := make([]mgl64.Vec3, len(mats))
	for i, m := range mats {
		out[i] = mgl64.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}
	}
	return out
}
