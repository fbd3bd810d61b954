package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenekit/pkg/formats"
	"github.com/Faultbox/scenekit/pkg/math"
)

func key(time float32, eye, lookAt math.Vec3) formats.CameraKeyframe {
	return formats.CameraKeyframe{Time: time, Eye: eye, LookAt: lookAt, Up: math.Vec3{Y: 1}}
}

func assertVec(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func dollyPath() *Path {
	return NewPath([]formats.CameraKeyframe{
		key(0, math.Vec3{Z: 1}, math.Vec3{}),
		key(10, math.Vec3{X: 10, Z: 1}, math.Vec3{X: 10}),
	})
}

func TestPath_Empty(t *testing.T) {
	assert.True(t, NewPath(nil).Empty())
	assert.Equal(t, float32(0), NewPath(nil).Period())
	assert.False(t, dollyPath().Empty())
	assert.Equal(t, 2, dollyPath().Len())
}

func TestPath_Midpoint(t *testing.T) {
	pose := dollyPath().State(5)

	assertVec(t, math.Vec3{X: 5, Z: 1}, pose.Eye)
	assertVec(t, math.Vec3{X: 5}, pose.LookAt)
	assertVec(t, math.Vec3{Y: 1}, pose.Up)
}

func TestPath_Endpoints(t *testing.T) {
	p := dollyPath()

	start := p.State(0)
	assertVec(t, math.Vec3{Z: 1}, start.Eye)
	assertVec(t, math.Vec3{}, start.LookAt)

	end := p.State(10)
	assertVec(t, math.Vec3{X: 10, Z: 1}, end.Eye)
	assertVec(t, math.Vec3{X: 10}, end.LookAt)
	assertVec(t, math.Vec3{Y: 1}, end.Up)
}

func TestPath_Periodic(t *testing.T) {
	p := NewPath([]formats.CameraKeyframe{
		key(1, math.Vec3{Z: 2}, math.Vec3{}),
		key(3, math.Vec3{X: 2, Z: 2}, math.Vec3{X: 1}),
		key(5, math.Vec3{X: 2, Y: 1, Z: 4}, math.Vec3{Y: 1}),
	})
	require.Equal(t, float32(4), p.Period())

	for _, tm := range []float32{1.5, 2.25, 3.7, 4.9} {
		want := p.State(tm)
		for _, shift := range []float32{4, 8, 12} {
			got := p.State(tm + shift)
			assertVec(t, want.Eye, got.Eye)
			assertVec(t, want.LookAt, got.LookAt)
			assertVec(t, want.Up, got.Up)
			assert.Equal(t, tm+shift, got.Time)
		}
	}
}

func TestPath_BeforeFirstKeyframe(t *testing.T) {
	p := dollyPath()

	for _, tm := range []float32{-0.001, -2, -15} {
		pose := p.State(tm)
		assert.Equal(t, math.Vec3{Z: 1}, pose.Eye)
		assert.Equal(t, math.Vec3{}, pose.LookAt)
		assert.Equal(t, math.Vec3{Y: 1}, pose.Up)
		assert.Equal(t, tm, pose.Time)
	}
}

func TestPath_SingleKeyframe(t *testing.T) {
	k := key(2, math.Vec3{X: 1, Y: 2, Z: 3}, math.Vec3{})
	p := NewPath([]formats.CameraKeyframe{k})

	for _, tm := range []float32{-5, 0, 2, 100} {
		pose := p.State(tm)
		assert.Equal(t, k.Eye, pose.Eye)
		assert.Equal(t, k.LookAt, pose.LookAt)
		assert.Equal(t, k.Up, pose.Up)
	}
}

func TestPath_SphericalView(t *testing.T) {
	// The view direction turns from -Z to +X; the view length blends from
	// 2 to 4.
	p := NewPath([]formats.CameraKeyframe{
		key(0, math.Vec3{}, math.Vec3{Z: -2}),
		key(1, math.Vec3{}, math.Vec3{X: 4}),
	})

	pose := p.State(0.5)
	view := pose.LookAt.Sub(pose.Eye)
	assert.InDelta(t, 3, view.Length(), 1e-4)

	dir := view.Normalize()
	assert.InDelta(t, 0.70710677, dir.X, 1e-4)
	assert.InDelta(t, 0, dir.Y, 1e-4)
	assert.InDelta(t, -0.70710677, dir.Z, 1e-4)
}

func TestPath_NearlyParallelUp(t *testing.T) {
	a := key(0, math.Vec3{Z: 1}, math.Vec3{})
	b := key(1, math.Vec3{Z: 1}, math.Vec3{})
	b.Up = math.Vec3{X: 0.001, Y: 1}.Normalize()
	p := NewPath([]formats.CameraKeyframe{a, b})

	for _, tm := range []float32{0.1, 0.5, 0.9} {
		pose := p.State(tm)
		assert.InDelta(t, 1, pose.Up.Length(), 1e-5)
		assert.InDelta(t, 1, pose.LookAt.Sub(pose.Eye).Length(), 1e-5)
	}
}

func TestPose_ViewMatrix(t *testing.T) {
	pose := Pose{Eye: math.Vec3{Z: 5}, LookAt: math.Vec3{}, Up: math.Vec3{Y: 1}}

	view := pose.ViewMatrix()
	assertVec(t, math.Vec3{Z: -5}, view.TransformPoint(math.Vec3{}))
	assertVec(t, math.Vec3{Z: -1}, pose.Forward())
}
