// Package nestable resolves the world-space pose of objects that may be
// positioned relative to other objects.
//
// Every avatar, entity or attachment that takes part in the hierarchy embeds a
// *Nestable. A Nestable stores only its local transform plus the identity of
// its parent (and optionally a joint of that parent). World-frame values are
// derived on demand by walking the chain of parents up to the root:
//
//	reg := nestable.NewRegistry()
//
//	root := nestable.New(uuid.Nil)
//	child := nestable.New(uuid.Nil, nestable.WithLocalTransform(
//	    nestable.Identity().WithPosition(mgl64.Vec3{1, 0, 0})))
//	_ = reg.Add(root)
//	_ = reg.Add(child)
//
//	_ = child.SetParentID(root.ID())
//	root.SetPosition(mgl64.Vec3{5, 0, 0})
//	child.Position() // (6, 0, 0)
//
// # Parents
//
// Parents are looked up by id through a Resolver, usually a *Registry. The
// link to a resolved parent is weak: it never keeps the parent alive, and a
// parent that was destroyed or removed is treated as absent. A node whose
// parent cannot be resolved (not loaded yet, destroyed, or behind a chain
// that is too deep) behaves as if it had no parent for that read.
//
// # Joints
//
// A node may attach to a joint of its parent instead of the parent's origin.
// The parent exposes joints by implementing Skeleton (and optionally
// JointNamer). If the parent has no skeleton the joint index is ignored; if
// the index is out of range the parent's origin is used.
//
// # Frames
//
//	Transform, Position, Orientation, Scale            world frame
//	LocalTransform, LocalPosition, LocalOrientation,   parent (or joint) frame
//	LocalScale
//
// World setters invert the parent frame and store the result locally, so a
// world read right after a world write returns the value written.
//
// # Concurrency
//
// Nodes carry no locks. All writes are expected to happen during a single
// update pass, with reads after it. Reads resolve parents lazily and update
// link caches, so concurrent reads of a shared chain must also be serialized
// by the caller. Registry is safe for concurrent use.
package nestable

import (
	"github.com/google/uuid"
)

// Version is the nestable version.
const Version = "1.0.0"

// NoJoint is the joint index meaning "attached to the parent's origin".
const NoJoint = -1

// DefaultMaxDepth is the default number of parent links a chain walk follows
// before the chain is considered broken.
const DefaultMaxDepth = 64

// Nil is the id of no node. A node whose parent id is Nil is a root.
var Nil = uuid.Nil
