package formats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Faultbox/scenekit/pkg/math"
)

// CameraKeyframe is a timed camera pose on the playback path.
type CameraKeyframe struct {
	Time   float32
	Eye    math.Vec3
	LookAt math.Vec3
	Up     math.Vec3 // Orthogonal to LookAt-Eye after parsing
}

// Light is a spherical light that may orbit around an axis.
type Light struct {
	Position        math.Vec3
	Emission        math.Vec3
	Radius          float32
	AxisDirection   math.Vec3
	AxisPosition    math.Vec3
	AngularVelocity float32 // Radians per second
}

// Material is a named surface description.
type Material struct {
	Color       math.Vec3
	Specular    float32
	Roughness   float32
	TextureFile string // Empty when the flat color is used
}

// MeshRef places a mesh file in the scene.
type MeshRef struct {
	Transform math.Mat4
	File      string
	Material  string // Empty means use the materials embedded in the file
	Animation string // Empty for static meshes
}

// AnimationKeyframe is one sample of a named animation group.
type AnimationKeyframe struct {
	Time      float32
	Transform math.Mat4
	File      string
}

// Scene is a parsed scene description. It is not modified after ParseScene
// returns.
type Scene struct {
	Folder     string
	Cameras    []CameraKeyframe
	Lights     []Light
	Materials  map[string]Material
	Meshes     []MeshRef
	Animations map[string][]AnimationKeyframe
	Animated   bool
}

func defaultCamera() CameraKeyframe {
	return CameraKeyframe{
		Eye: math.Vec3{X: 0, Y: 0, Z: 1},
		Up:  math.Vec3{X: 0, Y: 1, Z: 0},
	}
}

func defaultLight() Light {
	return Light{
		Emission:      math.Splat3(1),
		Radius:        0.001,
		AxisDirection: math.Vec3{X: 0, Y: 1, Z: 0},
	}
}

func defaultMaterial() Material {
	return Material{
		Color:     math.Splat3(1),
		Roughness: 128,
	}
}

// MaterialNames returns the material names in sorted order.
func (s *Scene) MaterialNames() []string {
	names := make([]string, 0, len(s.Materials))
	for name := range s.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnimationNames returns the animation group names in sorted order.
func (s *Scene) AnimationNames() []string {
	names := make([]string, 0, len(s.Animations))
	for name := range s.Animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnimationFrame returns the keyframe of the named group that is active at
// the given time. Groups loop over their time span like the camera path.
// Keyframes are held, not blended, since consecutive frames may reference
// different mesh files.
func (s *Scene) AnimationFrame(name string, time float32) (AnimationKeyframe, bool) {
	keys := s.Animations[name]
	if len(keys) == 0 {
		return AnimationKeyframe{}, false
	}

	start := keys[0].Time
	span := keys[len(keys)-1].Time - start
	delta := time - start
	if span <= 0 {
		return keys[0], true
	}
	if delta > span || delta < 0 {
		delta = math.WrapPeriod(delta, span)
	}

	local := start + delta
	// Last keyframe whose time is <= local.
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > local })
	if i == 0 {
		return keys[0], true
	}
	return keys[i-1], true
}

// Describe writes a human readable summary of the scene.
func (s *Scene) Describe(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Folder [ %s ]\n\n", s.Folder)

	b.WriteString("Cameras [\n")
	for _, c := range s.Cameras {
		fmt.Fprintf(&b, "  { time = %g, eye = %s, lookat = %s, up = %s }\n",
			c.Time, vecString(c.Eye), vecString(c.LookAt), vecString(c.Up))
	}
	b.WriteString("]\n\n")

	b.WriteString("Lights [\n")
	for _, l := range s.Lights {
		fmt.Fprintf(&b, "  { position = %s, emission = %s, radius = %g, angular_v = %g }\n",
			vecString(l.Position), vecString(l.Emission), l.Radius, l.AngularVelocity)
	}
	b.WriteString("]\n\n")

	b.WriteString("Materials [\n")
	for _, name := range s.MaterialNames() {
		m := s.Materials[name]
		fmt.Fprintf(&b, "  { name = %s, color = %s, specular = %g, roughness = %g, file = %s }\n",
			orNone(name), vecString(m.Color), m.Specular, m.Roughness, orNone(m.TextureFile))
	}
	b.WriteString("]\n\n")

	b.WriteString("Meshes [\n")
	for _, m := range s.Meshes {
		material := m.Material
		if material == "" {
			material = "<Embedded>"
		}
		fmt.Fprintf(&b, "  { file = %s, material = %s, transform = %s, animation = %s }\n",
			m.File, material, matString(m.Transform), orNone(m.Animation))
	}
	b.WriteString("]\n\n")

	b.WriteString("Animations [\n")
	for _, name := range s.AnimationNames() {
		for _, k := range s.Animations[name] {
			fmt.Fprintf(&b, "  { name = %s, time = %g, file = %s, transform = %s }\n",
				name, k.Time, orNone(k.File), matString(k.Transform))
		}
	}
	b.WriteString("]\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func orNone(s string) string {
	if s == "" {
		return "<None>"
	}
	return s
}

func vecString(v math.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// matString prints the matrix row by row.
func matString(m math.Mat4) string {
	rows := make([]string, 4)
	for r := 0; r < 4; r++ {
		rows[r] = fmt.Sprintf("(%g, %g, %g, %g)", m[r], m[4+r], m[8+r], m[12+r])
	}
	return "(" + strings.Join(rows, ", ") + ")"
}
