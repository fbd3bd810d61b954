// Package lighting resolves scene lights at a playback time.
package lighting

import (
	"github.com/Faultbox/scenekit/pkg/formats"
	"github.com/Faultbox/scenekit/pkg/math"
)

// MaxPointLights is the maximum number of lights resolved for one frame.
const MaxPointLights = 32

// PointLight is a spherical light at its position for one playback time.
type PointLight struct {
	Position math.Vec3
	Emission math.Vec3
	Radius   float32
}

// ResolveLights places every light at the given time. Orbiting lights are
// rotated around their axis by AngularVelocity*time; static lights keep their
// parsed position. Lights beyond MaxPointLights are dropped.
func ResolveLights(lights []formats.Light, time float32) []PointLight {
	count := len(lights)
	if count > MaxPointLights {
		count = MaxPointLights
	}

	out := make([]PointLight, 0, count)
	for _, l := range lights[:count] {
		out = append(out, PointLight{
			Position: Orbit(l, time),
			Emission: l.Emission,
			Radius:   l.Radius,
		})
	}
	return out
}

// Orbit returns the position of a single light at the given time.
func Orbit(l formats.Light, time float32) math.Vec3 {
	if l.AngularVelocity == 0 || l.AxisDirection.Length() == 0 {
		return l.Position
	}
	rot := math.RotateAxis(l.AxisDirection, l.AngularVelocity*time)
	return l.AxisPosition.Add(rot.TransformDirection(l.Position.Sub(l.AxisPosition)))
}
