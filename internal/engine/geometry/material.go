package geometry

import (
	"fmt"
	"path/filepath"

	"github.com/chewxy/math32"

	"github.com/Faultbox/scenekit/pkg/formats"
	"github.com/Faultbox/scenekit/pkg/math"
)

// surface is the resolved appearance of one submesh.
type surface struct {
	color   math.Vec3
	texture string // Path handed to the packer, empty when untextured
	gloss   math.Vec2
}

// resolveSurface picks the submesh appearance. A material named by the scene
// mesh overrides whatever the mesh file carries. A texture replaces the flat
// color, which then stays white.
func resolveSurface(scene *formats.Scene, mesh formats.MeshRef, imported ImportedMaterial) (surface, error) {
	s := surface{color: math.Splat3(1)}

	if mesh.Material != "" {
		m, ok := scene.Materials[mesh.Material]
		if !ok {
			return surface{}, fmt.Errorf("%w: %s", ErrUndefinedMaterial, mesh.Material)
		}
		if m.TextureFile == "" {
			s.color = m.Color
		} else {
			s.texture = filepath.Join(scene.Folder, m.TextureFile)
		}
		s.gloss = math.Vec2{X: m.Specular, Y: m.Roughness}
		return s, nil
	}

	if imported.Texture == "" {
		s.color = imported.Diffuse
	} else {
		s.texture = filepath.Join(scene.Folder, filepath.Dir(mesh.File), imported.Texture)
	}
	spec := imported.Specular
	s.gloss = math.Vec2{
		X: (spec.X + spec.Y + spec.Z) / 3,
		Y: shininessToRoughness(imported.Shininess),
	}
	return s, nil
}

// shininessToRoughness maps a Phong exponent to a microfacet roughness.
func shininessToRoughness(shininess float32) float32 {
	return math32.Sqrt(2 / (2 + shininess))
}
