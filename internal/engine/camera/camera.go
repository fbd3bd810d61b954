// Package camera animates the viewpoint along the keyframed camera path of a
// scene.
package camera

import (
	"sort"

	"github.com/Faultbox/scenekit/pkg/formats"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Pose is the interpolated camera at a playback time.
type Pose struct {
	Time   float32 // The queried playback time, not wrapped
	Eye    math.Vec3
	LookAt math.Vec3
	Up     math.Vec3
}

// ViewMatrix returns the view matrix for this pose.
func (p Pose) ViewMatrix() math.Mat4 {
	return math.LookAt(p.Eye, p.LookAt, p.Up)
}

// Forward returns the unit view direction.
func (p Pose) Forward() math.Vec3 {
	return p.LookAt.Sub(p.Eye).Normalize()
}

// Path samples a time-sorted list of camera keyframes. Playback loops over
// the span between the first and last keyframe.
type Path struct {
	keys []formats.CameraKeyframe
}

// NewPath wraps keys, which must be sorted by time as ParseScene leaves them.
// The slice is referenced, not copied.
func NewPath(keys []formats.CameraKeyframe) *Path {
	return &Path{keys: keys}
}

// Empty reports whether the path has no keyframes. State must not be called
// on an empty path.
func (p *Path) Empty() bool {
	return len(p.keys) == 0
}

// Len returns the number of keyframes.
func (p *Path) Len() int {
	return len(p.keys)
}

// Period returns the loop length in seconds.
func (p *Path) Period() float32 {
	if len(p.keys) == 0 {
		return 0
	}
	return p.keys[len(p.keys)-1].Time - p.keys[0].Time
}

// State returns the camera at the given time. Times past the last keyframe
// wrap around to the start of the path; times at or before the first
// keyframe return it unchanged. The eye is blended linearly while the view
// vector and up vector are blended on the sphere.
func (p *Path) State(time float32) Pose {
	keys := p.keys
	start := keys[0].Time
	period := p.Period()
	if period <= 0 {
		return poseOf(keys[0], time)
	}

	delta := time - start
	if delta > period {
		delta = math.WrapPeriod(delta, period)
	}
	local := start + delta

	// First keyframe at or after local.
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time >= local })
	if i == 0 {
		return poseOf(keys[0], time)
	}
	if i == len(keys) {
		i--
	}

	a, b := keys[i-1], keys[i]
	span := b.Time - a.Time
	if span <= 0 {
		return poseOf(b, time)
	}
	f := (local - a.Time) / span

	eye := a.Eye.Lerp(b.Eye, f)
	view := math.Slerp(a.LookAt.Sub(a.Eye), b.LookAt.Sub(b.Eye), f)
	up := math.Slerp(a.Up, b.Up, f).Normalize()

	return Pose{
		Time:   time,
		Eye:    eye,
		LookAt: eye.Add(view),
		Up:     up,
	}
}

func poseOf(k formats.CameraKeyframe, time float32) Pose {
	return Pose{Time: time, Eye: k.Eye, LookAt: k.LookAt, Up: k.Up}
}
