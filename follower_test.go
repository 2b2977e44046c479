package nestable

import (
	"math"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

func TestRotationQuat(t *testing.T) {
	forward := mgl64.Vec3{0, 0, 1}
	tests := []struct {
		name string
		rot  cube.Rotation
		want mgl64.Vec3
	}{
		{"zero", cube.Rotation{0, 0}, mgl64.Vec3{0, 0, 1}},
		{"yaw 90", cube.Rotation{90, 0}, mgl64.Vec3{-1, 0, 0}},
		{"yaw 180", cube.Rotation{180, 0}, mgl64.Vec3{0, 0, -1}},
		{"pitch 30", cube.Rotation{0, 30}, mgl64.Vec3{0, -0.5, math.Sqrt(3) / 2}},
		{"pitch -90", cube.Rotation{0, -90}, mgl64.Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec(t, "direction", RotationQuat(tt.rot).Rotate(forward), tt.want)
		})
	}
}

func TestFollowerFollow(t *testing.T) {
	n := New(uuid.Nil, WithLocalTransform(Identity().WithScale(mgl64.Vec3{2, 2, 2})))
	f := NewFollower(n).Offset(at(0, 1.5, 0))

	rot := cube.Rotation{90, 0}
	f.Follow(mgl64.Vec3{1, 2, 3}, rot)

	assertVec(t, "position", n.Position(), mgl64.Vec3{1, 3.5, 3})
	assertQuat(t, "orientation", n.Orientation(), RotationQuat(rot))
	assertVec(t, "scale", n.Scale(), mgl64.Vec3{2, 2, 2})
	if f.Node() != n {
		t.Error("Node() did not return the followed node")
	}
}

func TestFollowerUnderParent(t *testing.T) {
	reg := NewRegistry()
	vehicle := New(uuid.Nil, WithLocalTransform(NewTransform(mgl64.Vec3{10, 0, 0}, rotZ(90), mgl64.Vec3{1, 1, 1})))
	rider := New(uuid.Nil, WithParent(vehicle.ID(), NoJoint))
	mustAdd(t, reg, vehicle, rider)

	rot := cube.Rotation{45, 10}
	NewFollower(rider).Follow(mgl64.Vec3{4, 5, 6}, rot)

	assertVec(t, "position", rider.Position(), mgl64.Vec3{4, 5, 6})
	assertQuat(t, "orientation", rider.Orientation(), RotationQuat(rot))

	// Moving the parent carries the rider until the next player update.
	vehicle.SetPosition(mgl64.Vec3{11, 0, 0})
	assertVec(t, "carried", rider.Position(), mgl64.Vec3{5, 5, 6})
}
