package nestable

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const epsilon = 1e-9

// avatar is a node with a skeleton whose joints are expressed in the
// avatar's own frame.
type avatar struct {
	*Nestable
	joints []Transform
	names  map[string]int
}

// Compile-time check that an embedding type satisfies the node capabilities.
var (
	_ Node       = (*avatar)(nil)
	_ Skeleton   = (*avatar)(nil)
	_ JointNamer = (*avatar)(nil)
)

func newAvatar(joints map[string]Transform, order ...string) *avatar {
	a := &avatar{Nestable: New(uuid.Nil), names: make(map[string]int)}
	for i, name := range order {
		a.joints = append(a.joints, joints[name])
		a.names[name] = i
	}
	return a
}

func (a *avatar) JointWorldTransform(index int) (Transform, bool) {
	if index < 0 || index >= len(a.joints) {
		return Transform{}, false
	}
	return a.Transform().Mul(a.joints[index]), true
}

func (a *avatar) JointIndex(name string) (int, bool) {
	i, ok := a.names[name]
	return i, ok
}

func (a *avatar) JointNames() []string {
	out := make([]string, len(a.joints))
	for name, i := range a.names {
		out[i] = name
	}
	return out
}

func at(x, y, z float64) Transform {
	return Identity().WithPosition(mgl64.Vec3{x, y, z})
}

func rotZ(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(deg*math.Pi/180, mgl64.Vec3{0, 0, 1})
}

func mustAdd(t *testing.T, reg *Registry, nodes ...Node) {
	t.Helper()
	for _, n := range nodes {
		if err := reg.Add(n); err != nil {
			t.Fatalf("Add(%s): %v", n.ID(), err)
		}
	}
}

func mustParent(t *testing.T, child *Nestable, parent uuid.UUID) {
	t.Helper()
	if err := child.SetParentID(parent); err != nil {
		t.Fatalf("SetParentID(%s): %v", parent, err)
	}
}

func assertVec(t *testing.T, name string, got, want mgl64.Vec3) {
	t.Helper()
	if !vecNear(got, want, epsilon) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertQuat(t *testing.T, name string, got, want mgl64.Quat) {
	t.Helper()
	if !got.OrientationEqualThreshold(want, epsilon) {
		t.Errorf("%s = %v %v, want %v %v", name, got.W, got.V, want.W, want.V)
	}
}
