package nestable

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/go-gl/mathgl/mgl64"
)

// Follower drives a node's world pose from a Dragonfly player, so a player's
// avatar node can serve as the parent of attachments and other entities.
//
// Follower implements player.Handler and can be passed to Player.Handle
// directly. Servers that already have a handler call Follow from their own
// HandleMove and HandleTeleport instead.
//
// Concurrency:
// Dragonfly runs handlers inside the world transaction, which is the single
// update pass the hierarchy expects writes to happen in.
type Follower struct {
	player.NopHandler
	node   Node
	offset Transform

	// rot is the last rotation seen, reused for teleports
	rot cube.Rotation
}

// Compile-time check that Follower implements player.Handler.
var _ player.Handler = (*Follower)(nil)

// NewFollower creates a follower that writes to node.
func NewFollower(node Node) *Follower {
	return &Follower{node: node, offset: Identity()}
}

// Offset sets a transform applied in the player's frame, such as an eye
// height, before the pose is written to the node.
func (f *Follower) Offset(t Transform) *Follower {
	f.offset = t
	return f
}

// Node returns the node driven by the follower.
func (f *Follower) Node() Node {
	return f.node
}

// HandleMove handles the player moving.
func (f *Follower) HandleMove(ctx *player.Context, newPos mgl64.Vec3, newRot cube.Rotation) {
	if ctx.Cancelled() {
		return
	}
	f.Follow(newPos, newRot)
}

// HandleTeleport handles the player being teleported.
func (f *Follower) HandleTeleport(ctx *player.Context, pos mgl64.Vec3) {
	if ctx.Cancelled() {
		return
	}
	f.Follow(pos, f.rot)
}

// Follow writes a player pose to the node in world frame. The node's scale
// is left as it is.
func (f *Follower) Follow(pos mgl64.Vec3, rot cube.Rotation) {
	f.rot = rot
	n := f.node.Spatial()
	pose := Transform{Position: pos, Rotation: RotationQuat(rot), Scale: mgl64.Vec3{1, 1, 1}}
	world := pose.Mul(f.offset)
	n.SetPosition(world.Position)
	n.SetOrientation(world.Rotation)
}

// RotationQuat converts a Dragonfly yaw/pitch rotation (degrees) to a
// quaternion. The identity faces +Z; positive yaw turns towards -X and
// positive pitch looks down, matching cube.Rotation's direction vector.
func RotationQuat(r cube.Rotation) mgl64.Quat {
	yaw := mgl64.QuatRotate(-mgl64.DegToRad(r.Yaw()), mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(mgl64.DegToRad(r.Pitch()), mgl64.Vec3{1, 0, 0})
	return yaw.Mul(pitch).Normalize()
}
