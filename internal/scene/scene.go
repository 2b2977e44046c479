// Package scene loads node hierarchies from YAML scene files.
//
// A scene file lists nodes by name. A node may name its parent (another node
// in the file, or the id of a node that is loaded elsewhere), a joint of that
// parent, its local pose and, for skeletal objects, a list of joints:
//
//	nodes:
//	  - name: knight
//	    position: [10, 0, 0]
//	    joints:
//	      - name: hand
//	        position: [0.4, 1.2, 0]
//	  - name: sword
//	    parent: knight
//	    joint: hand
//	    rotation: [0, 0, 90]
//
// Rotations are Euler angles in degrees, applied about X, then Y, then Z.
// Nodes without an explicit id get one derived from their name, so loading
// the same file twice yields the same ids.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/oriumgames/nestable"
)

// Namespace is the UUID namespace for ids derived from node names.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/oriumgames/nestable/scene"))

// File is a decoded scene file.
type File struct {
	// Nodes are created in this order.
	Nodes []Node `yaml:"nodes"`
}

// Node describes one node of a scene.
type Node struct {
	// Name identifies the node within the file. Required and unique.
	Name string `yaml:"name"`

	// ID is the node's UUID. Derived from Name when empty.
	ID string `yaml:"id,omitempty"`

	// Parent is the name of another node in the file, or the UUID of a node
	// outside it. Empty for a root.
	Parent string `yaml:"parent,omitempty"`

	// Joint names a joint of the parent. Mutually exclusive with JointIndex.
	Joint string `yaml:"joint,omitempty"`

	// JointIndex selects a parent joint by index.
	JointIndex *int `yaml:"joint_index,omitempty"`

	// Pose is the local transform relative to the parent (or joint).
	Pose `yaml:",inline"`

	// Joints makes the node a skeleton. Joint poses are relative to the node.
	Joints []Joint `yaml:"joints,omitempty"`
}

// Joint is a named static joint of a skeletal node.
type Joint struct {
	Name string `yaml:"name"`
	Pose `yaml:",inline"`
}

// Pose is a transform written as three-element vectors.
type Pose struct {
	// Position defaults to the origin.
	Position []float64 `yaml:"position,omitempty,flow"`

	// Rotation is XYZ Euler degrees and defaults to no rotation.
	Rotation []float64 `yaml:"rotation,omitempty,flow"`

	// Scale defaults to (1, 1, 1).
	Scale []float64 `yaml:"scale,omitempty,flow"`
}

// Load decodes and validates a scene. Unknown fields are rejected. An empty
// document is an empty scene.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile loads a scene from a file path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return Load(fh)
}

// Validate checks the scene for errors. All problems are reported together.
func (f *File) Validate() error {
	var errs []error

	byName := make(map[string]*Node, len(f.Nodes))
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.Name == "" {
			errs = append(errs, fmt.Errorf("nodes[%d]: name is required", i))
			continue
		}
		if _, dup := byName[n.Name]; dup {
			errs = append(errs, fmt.Errorf("node %q: duplicate name", n.Name))
			continue
		}
		byName[n.Name] = n
	}

	ids := make(map[uuid.UUID]string, len(f.Nodes))
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.Name == "" {
			continue
		}
		errs = append(errs, n.validate(byName)...)

		if id, err := n.id(); err == nil {
			if other, dup := ids[id]; dup && other != n.Name {
				errs = append(errs, fmt.Errorf("node %q: id %s already used by %q", n.Name, id, other))
			}
			ids[id] = n.Name
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (n *Node) validate(byName map[string]*Node) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("node %q: "+format, append([]any{n.Name}, args...)...))
	}

	if _, err := n.id(); err != nil {
		fail("invalid id: %v", err)
	}
	for _, err := range n.Pose.validate() {
		fail("%v", err)
	}

	joints := make(map[string]bool, len(n.Joints))
	for i, j := range n.Joints {
		if j.Name == "" {
			fail("joints[%d]: name is required", i)
		} else if joints[j.Name] {
			fail("duplicate joint %q", j.Name)
		}
		joints[j.Name] = true
		for _, err := range j.Pose.validate() {
			fail("joint %q: %v", j.Name, err)
		}
	}

	if n.Parent == "" {
		if n.Joint != "" || n.JointIndex != nil {
			fail("joint set without a parent")
		}
		return errs
	}
	if n.Parent == n.Name {
		fail("node is its own parent")
		return errs
	}
	if n.Joint != "" && n.JointIndex != nil {
		fail("joint and joint_index are mutually exclusive")
	}

	parent, inFile := byName[n.Parent]
	if !inFile {
		if _, err := uuid.Parse(n.Parent); err != nil {
			fail("parent %q is neither a node of this scene nor a UUID", n.Parent)
		}
		return errs
	}
	if n.Joint != "" && parent.jointIndex(n.Joint) < 0 {
		fail("parent %q has no joint %q", n.Parent, n.Joint)
	}
	return errs
}

// id returns the explicit id, or the id derived from the name.
func (n *Node) id() (uuid.UUID, error) {
	if n.ID == "" {
		return uuid.NewSHA1(Namespace, []byte(n.Name)), nil
	}
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, nestable.ErrNilID
	}
	return id, nil
}

// jointIndex returns the index of the named joint, or -1.
func (n *Node) jointIndex(name string) int {
	for i, j := range n.Joints {
		if j.Name == name {
			return i
		}
	}
	return -1
}

func (p Pose) validate() []error {
	var errs []error
	check := func(field string, v []float64) {
		if v != nil && len(v) != 3 {
			errs = append(errs, fmt.Errorf("%s must have 3 components, got %d", field, len(v)))
		}
	}
	check("position", p.Position)
	check("rotation", p.Rotation)
	check("scale", p.Scale)
	return errs
}

// Transform converts the pose. Missing components take their defaults.
func (p Pose) Transform() nestable.Transform {
	t := nestable.Identity()
	if len(p.Position) == 3 {
		t.Position = mgl64.Vec3{p.Position[0], p.Position[1], p.Position[2]}
	}
	if len(p.Rotation) == 3 {
		t.Rotation = EulerToQuat(mgl64.Vec3{p.Rotation[0], p.Rotation[1], p.Rotation[2]})
	}
	if len(p.Scale) == 3 {
		t.Scale = mgl64.Vec3{p.Scale[0], p.Scale[1], p.Scale[2]}
	}
	return t
}

// PoseOf converts a transform back to its file representation.
func PoseOf(t nestable.Transform) Pose {
	euler := QuatToEuler(t.Rotation)
	return Pose{
		Position: t.Position[:],
		Rotation: euler[:],
		Scale:    t.Scale[:],
	}
}
