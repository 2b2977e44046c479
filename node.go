package nestable

import (
	"fmt"
	"weak"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Nestable is the hierarchy state of a node: its identity, its declared
// parent and its local transform. Avatars, entities and attachments embed a
// *Nestable to take part in the hierarchy.
//
// Only the local transform is authoritative. World-frame values are derived
// from it and the resolved parent chain on every read.
type Nestable struct {
	// id is the node's identity
	id uuid.UUID

	// parentID is the declared parent, Nil for a root
	parentID uuid.UUID

	// parentJoint is the joint of the parent this node is relative to, or NoJoint
	parentJoint int

	// local is the transform relative to the parent (or joint) frame
	local Transform

	// resolver looks up the parent by id
	resolver Resolver

	// maxDepth bounds chain walks
	maxDepth int

	// metrics may be nil
	metrics *Metrics

	// owner is the object embedding this Nestable, as handed out by a resolver.
	// It is queried for the Skeleton capability.
	owner Node

	// parent is the lazily resolved link to the parent
	parent weak.Pointer[Nestable]

	// children holds nodes that resolved this node as their parent
	children map[weak.Pointer[Nestable]]struct{}

	// visiting is set while this node's parent frame is being computed
	visiting bool

	// walk is set while a child reads one of this node's joints
	walk *walkState

	// destroyed is set by Destroy; a destroyed node never resolves as a parent
	destroyed bool
}

// New creates a node with the given id. If id is Nil a random id is generated.
// The node starts with an identity local transform and no parent unless
// options say otherwise.
func New(id uuid.UUID, opts ...Option) *Nestable {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Nestable{
		id:          id,
		parentID:    o.ParentID,
		parentJoint: o.ParentJoint,
		local:       o.Local,
		resolver:    o.Resolver,
		maxDepth:    o.MaxDepth,
		metrics:     o.Metrics,
	}
}

// Spatial returns n. Types that embed *Nestable get it promoted, which is how
// they satisfy Node.
func (n *Nestable) Spatial() *Nestable {
	return n
}

// ID returns the node's id.
func (n *Nestable) ID() uuid.UUID {
	return n.id
}

// SetID changes the node's id. If the node's resolver is a Registry the node
// is re-indexed under the new id. Children that declared the old id as their
// parent lose their link to n.
func (n *Nestable) SetID(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrNilID
	}
	if id == n.id {
		return nil
	}
	if rk, ok := n.resolver.(rekeyer); ok {
		if err := rk.rekey(n, n.id, id); err != nil {
			return err
		}
	}
	n.id = id
	n.releaseChildren()
	return nil
}

// ParentID returns the declared parent id, or Nil.
func (n *Nestable) ParentID() uuid.UUID {
	return n.parentID
}

// ParentJointIndex returns the parent joint the node is relative to, or NoJoint.
func (n *Nestable) ParentJointIndex() int {
	return n.parentJoint
}

// Resolver returns the resolver used to look up the parent.
func (n *Nestable) Resolver() Resolver {
	return n.resolver
}

// SetResolver replaces the resolver. The cached parent link is dropped.
func (n *Nestable) SetResolver(r Resolver) {
	n.resolver = r
	n.dropParent()
}

// MaxDepth returns the chain walk depth guard.
func (n *Nestable) MaxDepth() int {
	return n.maxDepth
}

// LocalTransform returns the transform relative to the parent frame.
func (n *Nestable) LocalTransform() Transform {
	return n.local
}

// SetLocalTransform sets the transform relative to the parent frame.
func (n *Nestable) SetLocalTransform(t Transform) {
	n.local = t
}

// LocalPosition returns the position relative to the parent frame.
func (n *Nestable) LocalPosition() mgl64.Vec3 {
	return n.local.Position
}

// SetLocalPosition sets the position relative to the parent frame.
func (n *Nestable) SetLocalPosition(p mgl64.Vec3) {
	n.local.Position = p
}

// LocalOrientation returns the orientation relative to the parent frame.
func (n *Nestable) LocalOrientation() mgl64.Quat {
	return n.local.Rotation
}

// SetLocalOrientation sets the orientation relative to the parent frame.
func (n *Nestable) SetLocalOrientation(q mgl64.Quat) {
	n.local.Rotation = q
}

// LocalScale returns the scale relative to the parent frame.
func (n *Nestable) LocalScale() mgl64.Vec3 {
	return n.local.Scale
}

// SetLocalScale sets the scale relative to the parent frame.
func (n *Nestable) SetLocalScale(s mgl64.Vec3) {
	n.local.Scale = s
}

// Children returns the live nodes that currently resolve n as their parent.
// Links to destroyed, collected or re-parented children are pruned.
func (n *Nestable) Children() []Node {
	out := make([]Node, 0, len(n.children))
	for wp := range n.children {
		c := wp.Value()
		if c == nil || c.destroyed || c.parentID != n.id || c.parent.Value() != n {
			delete(n.children, wp)
			continue
		}
		out = append(out, c.node())
	}
	return out
}

// Destroy marks the node as gone. It leaves its parent's child set, and every
// child drops its link to it, so children treat n as an unresolved parent from
// now on. Destroy is called by Registry.Remove; owners that do not use a
// Registry call it when they delete the object.
func (n *Nestable) Destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	n.dropParent()
	n.releaseChildren()
	n.owner = nil
}

// Destroyed returns true if Destroy has been called.
func (n *Nestable) Destroyed() bool {
	return n.destroyed
}

// String returns a string representation of the node for debugging.
func (n *Nestable) String() string {
	return fmt.Sprintf("Nestable{ID: %s, Parent: %s, Joint: %d, Local: %s}",
		n.id, n.parentID, n.parentJoint, n.local)
}

// node returns the object embedding n if known, otherwise n itself.
func (n *Nestable) node() Node {
	if n.owner != nil {
		return n.owner
	}
	return n
}

// releaseChildren clears the parent link of every child.
func (n *Nestable) releaseChildren() {
	for wp := range n.children {
		if c := wp.Value(); c != nil && c.parent.Value() == n {
			c.parent = weak.Pointer[Nestable]{}
		}
	}
	n.children = nil
}

// rekeyer is implemented by resolvers that index nodes by id.
type rekeyer interface {
	rekey(n *Nestable, old, id uuid.UUID) error
}
