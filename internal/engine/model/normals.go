package model

import "github.com/Faultbox/scenekit/pkg/math"

// GenerateNormals computes smooth vertex normals for a triangle list. Face
// normals are area weighted and shared across vertices at the same position.
func GenerateNormals(positions []math.Vec3, faces [][3]int) []math.Vec3 {
	normals := make([]math.Vec3, len(positions))
	for _, f := range faces {
		a, b, c := positions[f[0]], positions[f[1]], positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, i := range f {
			normals[i] = normals[i].Add(n)
		}
	}

	SmoothNormals(positions, normals)

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// SmoothNormals averages normals at shared vertex positions.
// This reduces faceted appearance on models.
func SmoothNormals(positions, normals []math.Vec3) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i, p := range positions {
		key := [3]int32{
			int32(p.X / epsilon),
			int32(p.Y / epsilon),
			int32(p.Z / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	// Average normals for vertices at same position
	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(normals[idx])
		}

		avg := sum.Normalize()
		for _, idx := range idxs {
			normals[idx] = avg
		}
	}
}
