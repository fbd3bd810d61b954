// Package geometry bakes a parsed scene into a flattened, renderer-ready
// vertex stream.
package geometry

import (
	"errors"
	"fmt"

	"github.com/Faultbox/scenekit/internal/engine/texture"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Bake errors.
var (
	ErrImportFailed      = errors.New("failed to import mesh")
	ErrUndefinedMaterial = errors.New("reference to undefined material")
	ErrTextureLoad       = errors.New("failed to load texture")
	ErrFaceIndex         = errors.New("face index out of range")
)

// BakeError reports which scene mesh failed to bake.
type BakeError struct {
	Mesh int    // Index into Scene.Meshes
	File string // Mesh file as written in the scene
	Err  error
}

func (e *BakeError) Error() string {
	return fmt.Sprintf("mesh %d (%s): %v", e.Mesh, e.File, e.Err)
}

func (e *BakeError) Unwrap() error {
	return e.Err
}

// ImportedMaterial is the material a mesh file carries for a submesh.
type ImportedMaterial struct {
	Diffuse   math.Vec3
	Specular  math.Vec3
	Shininess float32
	Texture   string // Diffuse texture relative to the mesh file, empty when none
}

// Submesh is one triangulated part of an imported mesh with a single
// material. Faces index into the submesh's own vertex arrays.
type Submesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2 // nil when the file has no texture coordinates
	Faces     [][3]int
	Material  ImportedMaterial
}

// ImportedMesh is the triangulated content of a mesh file.
type ImportedMesh struct {
	Submeshes []Submesh
}

// MeshImporter loads mesh files.
type MeshImporter interface {
	Import(path string) (*ImportedMesh, error)
}

// TexturePacker places textures in a layered atlas.
type TexturePacker interface {
	Load(path string) (texture.Block, error)
	Count() int
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Diagonal returns the length of the box diagonal.
func (b Bounds) Diagonal() float32 {
	return b.Max.Sub(b.Min).Length()
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// MeshRange locates one scene mesh in the baked stream.
type MeshRange struct {
	Offset    int // First vertex
	Count     int // Vertex count, three per triangle
	Animation string
}

// Baked is the flattened scene. Every triangle owns three consecutive
// vertices and all attribute slices have VertexCount entries.
type Baked struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Colors    []math.Vec3
	TexCoords []math.Vec3 // (u, v, layer); layer -1 means untextured
	TexRects  []math.Vec4 // (offsetX, offsetY, sizeX, sizeY) in the layer
	Glosses   []math.Vec2 // (specular, roughness)

	Meshes []MeshRange
	Bounds Bounds

	TriangleCount int
	VertexCount   int
	TextureCount  int
}

// MeshVertices returns the position slice of scene mesh i.
func (b *Baked) MeshVertices(i int) []math.Vec3 {
	r := b.Meshes[i]
	return b.Positions[r.Offset : r.Offset+r.Count]
}

// Animated reports whether any mesh references an animation group.
func (b *Baked) Animated() bool {
	for _, m := range b.Meshes {
		if m.Animation != "" {
			return true
		}
	}
	return false
}
