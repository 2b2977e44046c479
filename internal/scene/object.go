package scene

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/oriumgames/nestable"
)

// Object is a node created from a scene file. Objects with joints act as
// skeletons for their children.
type Object struct {
	*nestable.Nestable

	name   string
	joints []nestable.Transform
	names  []string
	index  map[string]int
}

// Compile-time check that Object is a node that exposes its joints.
var (
	_ nestable.Node       = (*Object)(nil)
	_ nestable.Skeleton   = (*Object)(nil)
	_ nestable.JointNamer = (*Object)(nil)
)

// NewObject creates an object with joints given in its own frame.
func NewObject(name string, id uuid.UUID, joints []Joint, opts ...nestable.Option) *Object {
	o := &Object{
		Nestable: nestable.New(id, opts...),
		name:     name,
		index:    make(map[string]int, len(joints)),
	}
	for i, j := range joints {
		o.joints = append(o.joints, j.Transform())
		o.names = append(o.names, j.Name)
		o.index[j.Name] = i
	}
	return o
}

// Name returns the scene name of the object.
func (o *Object) Name() string {
	return o.name
}

// JointCount returns the number of joints.
func (o *Object) JointCount() int {
	return len(o.joints)
}

// JointWorldTransform implements nestable.Skeleton.
func (o *Object) JointWorldTransform(index int) (nestable.Transform, bool) {
	if index < 0 || index >= len(o.joints) {
		return nestable.Transform{}, false
	}
	return o.Transform().Mul(o.joints[index]), true
}

// JointIndex implements nestable.JointNamer.
func (o *Object) JointIndex(name string) (int, bool) {
	i, ok := o.index[name]
	return i, ok
}

// JointNames implements nestable.JointNamer.
func (o *Object) JointNames() []string {
	return slices.Clone(o.names)
}

// Build creates the scene's objects, adds them to reg and links each to its
// parent. opts apply to every object. Objects are returned in file order.
//
// Parents outside the file are linked lazily like any other parent; a joint
// named on such a parent requires it to be resolvable already. If any node
// fails, the objects added so far are removed again.
func (f *File) Build(reg *nestable.Registry, opts ...nestable.Option) ([]*Object, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	objects := make([]*Object, 0, len(f.Nodes))
	byName := make(map[string]*Object, len(f.Nodes))
	fail := func(name string, err error) ([]*Object, error) {
		for _, o := range objects {
			reg.Remove(o.ID())
		}
		return nil, fmt.Errorf("scene: node %q: %w", name, err)
	}

	for i := range f.Nodes {
		spec := &f.Nodes[i]
		id, _ := spec.id()
		o := NewObject(spec.Name, id, spec.Joints, opts...)
		if err := reg.Add(o); err != nil {
			return fail(spec.Name, err)
		}
		objects = append(objects, o)
		byName[spec.Name] = o
	}

	for i := range f.Nodes {
		spec := &f.Nodes[i]
		if err := f.link(byName[spec.Name], spec, byName); err != nil {
			return fail(spec.Name, err)
		}
	}
	return objects, nil
}

// link parents o and sets its local pose.
func (f *File) link(o *Object, spec *Node, byName map[string]*Object) error {
	if spec.Parent != "" {
		joint := nestable.NoJoint
		if spec.JointIndex != nil {
			joint = *spec.JointIndex
		}

		parent, inFile := byName[spec.Parent]
		var parentID uuid.UUID
		if inFile {
			parentID = parent.ID()
			if spec.Joint != "" {
				joint, _ = parent.JointIndex(spec.Joint)
			}
		} else {
			parentID = uuid.MustParse(spec.Parent)
		}

		if err := o.SetParentID(parentID); err != nil {
			return err
		}
		if spec.Joint != "" && !inFile {
			if err := o.SetParentJointName(spec.Joint); err != nil {
				return err
			}
		} else {
			o.SetParentJointIndex(joint)
		}
	}
	o.SetLocalTransform(spec.Pose.Transform())
	return nil
}
