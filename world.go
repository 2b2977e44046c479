package nestable

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Transform returns the world-frame transform. If the parent chain is broken
// the node degrades gracefully: an unresolvable ancestor acts as a root, and a
// chain that trips the depth guard makes the node act as a root itself.
func (n *Nestable) Transform() Transform {
	t, _ := n.world()
	return t
}

// TransformChecked returns the same value as Transform together with the
// reason the parent chain degraded, if it did. The error wraps
// ErrParentNotFound, ErrChainTooDeep or ErrJointFallback; callers may log it
// as a warning.
func (n *Nestable) TransformChecked() (Transform, error) {
	return n.world()
}

// SetTransform sets the world-frame transform. The local transform is derived
// by inverting the current parent frame.
func (n *Nestable) SetTransform(t Transform) {
	n.rebase(t)
}

// ParentTransform returns the frame the local transform is relative to: the
// parent joint's world transform, the parent's world transform, or identity.
func (n *Nestable) ParentTransform() Transform {
	frame, _ := n.frame()
	return frame
}

// Position returns the world-frame position.
func (n *Nestable) Position() mgl64.Vec3 {
	return n.Transform().Position
}

// SetPosition sets the world-frame position.
func (n *Nestable) SetPosition(p mgl64.Vec3) {
	frame := n.ParentTransform()
	n.local.Position = frame.Unapply(p, n.local.Position)
}

// Orientation returns the world-frame orientation.
func (n *Nestable) Orientation() mgl64.Quat {
	return n.Transform().Rotation
}

// SetOrientation sets the world-frame orientation.
func (n *Nestable) SetOrientation(q mgl64.Quat) {
	frame := n.ParentTransform()
	n.local.Rotation = frame.UnapplyRotation(q)
}

// Scale returns the world-frame scale.
func (n *Nestable) Scale() mgl64.Vec3 {
	return n.Transform().Scale
}

// SetScale sets the world-frame scale. Axes on which the parent frame has
// zero scale keep their local value.
func (n *Nestable) SetScale(s mgl64.Vec3) {
	frame := n.ParentTransform()
	n.local.Scale = frame.UnapplyScale(s, n.local.Scale)
}

// world composes the parent frame with the local transform. Degraded reads
// are reported only by the read the caller started, not by the nested reads a
// skeleton makes while a child walks through one of its joints.
func (n *Nestable) world() (Transform, error) {
	frame, err := n.frame()
	if err != nil {
		if w := n.walk; w != nil {
			if w.err == nil {
				w.err = err
			}
		} else {
			n.reportDegraded(err)
		}
	}
	return frame.Mul(n.local), err
}

// frame returns the parent frame of n. Inside a joint lookup the walk of the
// child that asked for the joint is continued; otherwise a new walk starts
// at n under n's own depth guard.
func (n *Nestable) frame() (Transform, error) {
	if w := n.walk; w != nil {
		return n.parentFrame(w.depth, w.limit)
	}
	return n.parentFrame(0, n.maxDepth)
}

// walkState carries a chain walk through a skeleton's joint lookup.
type walkState struct {
	// depth is the number of links followed when the lookup started
	depth int

	// limit is the depth guard of the node that started the walk
	limit int

	// err is the first degradation seen by reads nested in the lookup
	err error
}

// parentFrame returns the world-frame transform that n's local transform is
// relative to. depth is the number of links already followed and limit is the
// depth guard of the node that started the walk.
//
// ErrChainTooDeep always comes with an identity frame, so the node that
// started the walk acts as a root. Other errors carry the best frame that
// could be built.
func (n *Nestable) parentFrame(depth, limit int) (Transform, error) {
	if n.parentID == uuid.Nil {
		return Identity(), nil
	}
	if n.visiting {
		return Identity(), fmt.Errorf("%w: cycle through %s", ErrChainTooDeep, n.id)
	}
	if depth >= limit {
		return Identity(), fmt.Errorf("%w: more than %d links above %s", ErrChainTooDeep, limit, n.id)
	}

	n.visiting = true
	defer func() { n.visiting = false }()

	p := n.parentPointer()
	if p == nil {
		return Identity(), fmt.Errorf("%w: %s", ErrParentNotFound, n.parentID)
	}
	if p.visiting {
		return Identity(), fmt.Errorf("%w: cycle through %s", ErrChainTooDeep, p.id)
	}

	var jointErr error
	if n.parentJoint != NoJoint {
		if sk, ok := p.owner.(Skeleton); ok {
			jt, ok, err := p.jointFrame(sk, n.parentJoint, depth+1, limit)
			if errors.Is(err, ErrChainTooDeep) {
				return Identity(), err
			}
			if ok {
				return jt, err
			}
			jointErr = fmt.Errorf("%w: joint %d on %s", ErrJointFallback, n.parentJoint, p.id)
		}
	}

	above, err := p.parentFrame(depth+1, limit)
	if errors.Is(err, ErrChainTooDeep) {
		return Identity(), err
	}
	if err == nil {
		err = jointErr
	}
	return above.Mul(p.local), err
}

// jointFrame asks sk for a joint of n. Reads of n's frame made by the
// skeleton continue the current walk at depth, so joints count against the
// depth guard like any other link.
func (n *Nestable) jointFrame(sk Skeleton, index, depth, limit int) (Transform, bool, error) {
	prev := n.walk
	w := &walkState{depth: depth, limit: limit}
	n.walk = w
	defer func() { n.walk = prev }()

	jt, ok := sk.JointWorldTransform(index)
	return jt, ok, w.err
}

// reportDegraded logs and counts a degraded read.
func (n *Nestable) reportDegraded(err error) {
	switch {
	case errors.Is(err, ErrChainTooDeep):
		n.metrics.degraded(reasonTooDeep)
		slog.Warn("nestable: parent chain broken, treating node as root",
			"node", n.id,
			"parent", n.parentID,
			"error", err)
	case errors.Is(err, ErrJointFallback):
		n.metrics.degraded(reasonJointFallback)
		slog.Debug("nestable: joint fallback", "node", n.id, "error", err)
	case errors.Is(err, ErrParentNotFound):
		n.metrics.degraded(reasonNotFound)
	}
}
