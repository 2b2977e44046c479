package nestable

import (
	"fmt"
	"log/slog"
	"weak"

	"github.com/google/uuid"
)

// Parent returns the resolved parent, or (nil, false) if the node has no
// parent or the parent cannot currently be resolved.
//
// A cached link is reused while the parent is alive, not destroyed, and still
// carries the declared id. Otherwise the resolver is consulted; on success the
// link is cached and n joins the parent's children.
func (n *Nestable) Parent() (Node, bool) {
	p := n.parentPointer()
	if p == nil {
		return nil, false
	}
	return p.node(), true
}

// SetParentID declares a new parent and keeps the node's current world pose
// by recomputing its local transform against the new parent frame. Pass Nil
// to make the node a root.
//
// Resolution of the new parent is lazy: if it is not loaded yet the local
// transform becomes the current world transform, and the link is made on a
// later read. SetParentID returns ErrCycle, and changes nothing, if id is the
// node itself or one of its resolvable descendants.
func (n *Nestable) SetParentID(id uuid.UUID) error {
	if id == n.parentID {
		return nil
	}
	if id != uuid.Nil && n.isAncestorOf(id) {
		n.metrics.cycleRejected()
		return fmt.Errorf("%w: %s under %s", ErrCycle, n.id, id)
	}

	world := n.Transform()
	n.dropParent()
	n.parentID = id
	n.rebase(world)
	return nil
}

// ClearParent makes the node a root, keeping its world pose.
func (n *Nestable) ClearParent() {
	_ = n.SetParentID(uuid.Nil)
}

// SetParentJointIndex attaches the node to a joint of its parent, keeping its
// world pose. Negative values attach to the parent's origin.
func (n *Nestable) SetParentJointIndex(index int) {
	if index < 0 {
		index = NoJoint
	}
	if index == n.parentJoint {
		return
	}
	world := n.Transform()
	n.parentJoint = index
	n.rebase(world)
}

// SetParentJointName attaches the node to the parent joint with the given
// name, keeping its world pose. The parent must be resolvable and implement
// JointNamer.
func (n *Nestable) SetParentJointName(name string) error {
	p := n.parentPointer()
	if p == nil {
		return fmt.Errorf("%w: %s", ErrParentNotFound, n.parentID)
	}
	namer, ok := p.owner.(JointNamer)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSkeleton, p.id)
	}
	index, ok := namer.JointIndex(name)
	if !ok {
		return fmt.Errorf("%w: %q on %s", ErrUnknownJoint, name, p.id)
	}
	n.SetParentJointIndex(index)
	return nil
}

// HasAncestor reports whether id is reachable by following resolved parents
// from n. The walk is bounded by the depth guard.
func (n *Nestable) HasAncestor(id uuid.UUID) bool {
	p := n.parentPointer()
	for depth := 0; p != nil && depth < n.maxDepth; depth++ {
		if p.id == id {
			return true
		}
		p = p.parentPointer()
	}
	return false
}

// isAncestorOf reports whether n is, or is an ancestor of, the node with the given id.
func (n *Nestable) isAncestorOf(id uuid.UUID) bool {
	if id == n.id {
		return true
	}
	cand := n.resolve(id)
	if cand == nil {
		return false
	}
	if cand == n {
		return true
	}
	return cand.HasAncestor(n.id)
}

// rebase sets the local transform so that the world transform equals world
// under the current parent frame.
func (n *Nestable) rebase(world Transform) {
	frame, _ := n.frame()
	n.local = frame.WorldToLocal(world, n.local)
}

// parentPointer returns the live parent, resolving it if needed.
func (n *Nestable) parentPointer() *Nestable {
	if n.parentID == uuid.Nil {
		n.dropParent()
		return nil
	}

	if p := n.parent.Value(); p != nil {
		if !p.destroyed && p.id == n.parentID {
			n.metrics.resolution(resultCached)
			return p
		}
		n.dropParent()
	}

	p := n.resolve(n.parentID)
	if p == nil || p == n {
		n.metrics.resolution(resultMissing)
		slog.Debug("nestable: parent not resolvable, deferring", "node", n.id, "parent", n.parentID)
		return nil
	}

	n.parent = weak.Make(p)
	p.addChild(n)
	n.metrics.resolution(resultResolved)
	return p
}

// resolve asks the resolver for a live node with the given id.
func (n *Nestable) resolve(id uuid.UUID) *Nestable {
	if n.resolver == nil {
		return nil
	}
	node, ok := n.resolver.Resolve(id)
	if !ok || node == nil {
		return nil
	}
	p := node.Spatial()
	if p == nil || p.destroyed || p.id != id {
		return nil
	}
	p.owner = node
	return p
}

// dropParent clears the cached parent link and leaves the parent's child set.
func (n *Nestable) dropParent() {
	if p := n.parent.Value(); p != nil {
		p.removeChild(n)
	}
	n.parent = weak.Pointer[Nestable]{}
}

// addChild registers c as a child of n.
func (n *Nestable) addChild(c *Nestable) {
	if n.children == nil {
		n.children = make(map[weak.Pointer[Nestable]]struct{})
	}
	n.children[weak.Make(c)] = struct{}{}
}

// removeChild removes c from n's child set.
func (n *Nestable) removeChild(c *Nestable) {
	delete(n.children, weak.Make(c))
}
