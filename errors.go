package nestable

import "errors"

var (
	// ErrCycle is returned when a parent assignment would make a node its own ancestor.
	ErrCycle = errors.New("nestable: parent would create a cycle")

	// ErrParentNotFound means the parent id could not be resolved to a live node.
	ErrParentNotFound = errors.New("nestable: parent not found")

	// ErrChainTooDeep means a parent chain walk hit the depth guard or came
	// back to a node already being walked.
	ErrChainTooDeep = errors.New("nestable: parent chain too deep")

	// ErrJointFallback means the parent joint index was invalid for the
	// parent's skeleton and the parent's origin was used instead.
	ErrJointFallback = errors.New("nestable: joint index invalid, using parent origin")

	// ErrNoSkeleton means the parent does not expose joints.
	ErrNoSkeleton = errors.New("nestable: parent has no skeleton")

	// ErrUnknownJoint means the parent skeleton has no joint with that name.
	ErrUnknownJoint = errors.New("nestable: unknown joint")

	// ErrDuplicateID means another node is already registered under the id.
	ErrDuplicateID = errors.New("nestable: duplicate node id")

	// ErrNilNode is returned for a nil node or a node without hierarchy state.
	ErrNilNode = errors.New("nestable: nil node")

	// ErrNilID is returned when assigning the Nil id to a node.
	ErrNilID = errors.New("nestable: nil id")

	// ErrDestroyed is returned when registering a node that was destroyed.
	ErrDestroyed = errors.New("nestable: node destroyed")
)
