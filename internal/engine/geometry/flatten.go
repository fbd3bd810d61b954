package geometry

import "github.com/Faultbox/scenekit/pkg/math"

// stream accumulates indexed vertex attributes across all meshes. Faces
// index the global vertex arrays.
type stream struct {
	positions []math.Vec3
	normals   []math.Vec3
	colors    []math.Vec3
	texCoords []math.Vec3
	texRects  []math.Vec4
	glosses   []math.Vec2
	faces     [][3]int

	bounds    Bounds
	hasBounds bool
}

func (s *stream) vertexCount() int {
	return len(s.positions)
}

func (s *stream) extend(p math.Vec3) {
	if !s.hasBounds {
		s.bounds = Bounds{Min: p, Max: p}
		s.hasBounds = true
		return
	}
	s.bounds.Min = s.bounds.Min.Min(p)
	s.bounds.Max = s.bounds.Max.Max(p)
}

// flatten expands the indexed stream so every triangle owns its three
// vertices.
func (s *stream) flatten() *Baked {
	return &Baked{
		Positions:     flatten(s.positions, s.faces),
		Normals:       flatten(s.normals, s.faces),
		Colors:        flatten(s.colors, s.faces),
		TexCoords:     flatten(s.texCoords, s.faces),
		TexRects:      flatten(s.texRects, s.faces),
		Glosses:       flatten(s.glosses, s.faces),
		Bounds:        Bounds{Min: s.bounds.Min.Min(s.bounds.Max), Max: s.bounds.Min.Max(s.bounds.Max)},
		TriangleCount: len(s.faces),
		VertexCount:   len(s.faces) * 3,
	}
}

func flatten[T any](values []T, faces [][3]int) []T {
	out := make([]T, 0, len(faces)*3)
	for _, f := range faces {
		out = append(out, values[f[0]], values[f[1]], values[f[2]])
	}
	return out
}
