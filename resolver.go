package nestable

import (
	"github.com/google/uuid"
)

// Node is implemented by every object that participates in the hierarchy.
// Objects usually satisfy it by embedding a *Nestable.
//
// Usage:
//
//	type Sword struct {
//	    *nestable.Nestable
//	    Damage int
//	}
type Node interface {
	// Spatial returns the hierarchy state of the node.
	Spatial() *Nestable

	ID() uuid.UUID
	ParentID() uuid.UUID
	ParentJointIndex() int

	Transform() Transform
	SetTransform(t Transform)
	LocalTransform() Transform
	SetLocalTransform(t Transform)
}

// Resolver maps a node id to a live node. It is consulted lazily whenever a
// node needs its parent and must be cheap enough to call every frame.
//
// Implementations return (nil, false) if no node with that id is currently
// loaded. The returned node is not retained strongly by the caller.
type Resolver interface {
	Resolve(id uuid.UUID) (Node, bool)
}

// ResolverFunc adapts an ordinary function to a Resolver.
type ResolverFunc func(id uuid.UUID) (Node, bool)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id uuid.UUID) (Node, bool) {
	return f(id)
}

// Skeleton is implemented by nodes with joints that children can attach to.
type Skeleton interface {
	// JointWorldTransform returns the world-frame transform of the joint.
	// It returns false if index is not a valid joint.
	JointWorldTransform(index int) (Transform, bool)
}

// JointNamer is optionally implemented by a Skeleton to look joints up by name.
type JointNamer interface {
	JointIndex(name string) (int, bool)
	// JointNames lists joint names in index order.
	JointNames() []string
}

// options configures nodes and registries.
type options struct {
	// Resolver looks up parents. A Registry sets itself when a node is added.
	Resolver Resolver

	// MaxDepth bounds parent chain walks.
	// Default: DefaultMaxDepth.
	MaxDepth int

	// Local is the initial local transform.
	// Default: Identity().
	Local Transform

	// ParentID and ParentJoint are the initial parent binding.
	// Default: Nil, NoJoint.
	ParentID    uuid.UUID
	ParentJoint int

	// Metrics receives resolution and degradation counts. May be nil.
	Metrics *Metrics
}

// defaultOptions returns sensible defaults.
func defaultOptions() options {
	return options{
		MaxDepth:    DefaultMaxDepth,
		Local:       Identity(),
		ParentJoint: NoJoint,
	}
}

// Option configures a Nestable or a Registry.
type Option func(*options)

// WithResolver sets the resolver used to find the parent.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.Resolver = r
	}
}

// WithMaxDepth sets the number of parent links a chain walk may follow.
// Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.MaxDepth = depth
		}
	}
}

// WithLocalTransform sets the initial local transform.
func WithLocalTransform(t Transform) Option {
	return func(o *options) {
		o.Local = t
	}
}

// WithParent sets the initial parent and joint without rebasing the local
// transform. Use NoJoint to attach to the parent's origin.
func WithParent(id uuid.UUID, joint int) Option {
	return func(o *options) {
		o.ParentID = id
		if joint < 0 {
			joint = NoJoint
		}
		o.ParentJoint = joint
	}
}

// WithMetrics reports resolution outcomes to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.Metrics = m
	}
}
