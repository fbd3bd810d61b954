package model

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenekit/internal/assets"
	"github.com/Faultbox/scenekit/pkg/math"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const quadOBJ = `mtllib materials/quad.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl brick
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl unknown
f 1 3 4
`

const quadMTL = `newmtl brick
Kd 0.5 0.5 0.5
Ks 0.3 0.6 0.9
Ns 20
map_Kd brick.png
`

func TestImporter_OBJ(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quad.obj"), quadOBJ)
	writeFile(t, filepath.Join(dir, "materials", "quad.mtl"), quadMTL)

	im := NewImporter(assets.NewManager())
	mesh, err := im.Import(filepath.Join(dir, "quad.obj"))
	require.NoError(t, err)
	require.Len(t, mesh.Submeshes, 2)

	brick := mesh.Submeshes[0]
	assert.Len(t, brick.Positions, 4)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, brick.Faces)
	require.Len(t, brick.TexCoords, 4)
	// V is flipped to the top-left image origin.
	assert.Equal(t, math.Vec2{X: 0, Y: 1}, brick.TexCoords[0])
	assert.Equal(t, math.Vec2{X: 1, Y: 0}, brick.TexCoords[2])
	assert.Equal(t, math.Vec3{Z: 1}, brick.Normals[3])

	assert.Equal(t, math.Splat3(0.5), brick.Material.Diffuse)
	assert.Equal(t, math.Vec3{X: 0.3, Y: 0.6, Z: 0.9}, brick.Material.Specular)
	assert.Equal(t, float32(20), brick.Material.Shininess)
	assert.Equal(t, filepath.Join("materials", "brick.png"), brick.Material.Texture)

	// No uvs or normals in the file: uvs are dropped, normals generated.
	plain := mesh.Submeshes[1]
	assert.Nil(t, plain.TexCoords)
	require.Len(t, plain.Normals, 3)
	for _, n := range plain.Normals {
		assert.InDelta(t, 1, n.Z, 1e-6)
	}
	assert.Equal(t, math.Splat3(1), plain.Material.Diffuse)
	assert.Empty(t, plain.Material.Texture)
}

func TestImporter_OBJMissingLibrary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tri.obj"), "mtllib gone.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl red\nf 1 2 3\n")

	mesh, err := NewImporter(assets.NewManager()).Import(filepath.Join(dir, "tri.obj"))
	require.NoError(t, err)
	require.Len(t, mesh.Submeshes, 1)
	assert.Equal(t, math.Splat3(1), mesh.Submeshes[0].Material.Diffuse)
}

func TestImporter_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.obj"), "f 1 2 3\n")
	im := NewImporter(assets.NewManager())

	_, err := im.Import(filepath.Join(dir, "model.fbx"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = im.Import(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)

	_, err = im.Import(filepath.Join(dir, "bad.obj"))
	assert.Error(t, err)

	_, err = im.Import(filepath.Join(dir, "missing.gltf"))
	assert.Error(t, err)
}

// triangleGLTF builds a glTF document with one unindexed triangle drawn by
// two nodes.
func triangleGLTF(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	data := base64.StdEncoding.EncodeToString(buf.Bytes())

	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0, "children": [1]}, {"mesh": 1}],
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0}, "material": 0}]},
    {"primitives": [{"attributes": {"POSITION": 0}, "material": 1}]}
  ],
  "materials": [
    {"pbrMetallicRoughness": {"baseColorFactor": [0.5, 0.25, 1, 1], "roughnessFactor": 1}},
    {"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}, "roughnessFactor": 0.5}}
  ],
  "textures": [{"source": 0}],
  "images": [{"uri": "tex/checker.png"}],
  "buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
    "min": [0, 0, 0], "max": [1, 1, 0]}]
}`, data)
}

func TestImporter_GLTF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.gltf")
	writeFile(t, path, triangleGLTF(t))

	mesh, err := NewImporter(assets.NewManager()).Import(path)
	require.NoError(t, err)
	require.Len(t, mesh.Submeshes, 2)

	first := mesh.Submeshes[0]
	assert.Equal(t, []math.Vec3{{}, {X: 1}, {Y: 1}}, first.Positions)
	assert.Equal(t, [][3]int{{0, 1, 2}}, first.Faces)
	assert.Nil(t, first.TexCoords)
	for _, n := range first.Normals {
		assert.InDelta(t, 1, n.Z, 1e-6)
	}
	assert.Equal(t, math.Vec3{X: 0.5, Y: 0.25, Z: 1}, first.Material.Diffuse)
	assert.InDelta(t, 0, first.Material.Shininess, 1e-6)
	assert.Empty(t, first.Material.Texture)

	second := mesh.Submeshes[1]
	assert.Equal(t, "tex/checker.png", second.Material.Texture)
	assert.InDelta(t, 6, second.Material.Shininess, 1e-5)
}

func TestRoughnessShininessRoundTrip(t *testing.T) {
	for _, r := range []float32{0.1, 0.5, 0.9, 1} {
		s := roughnessToShininess(r)
		assert.InDelta(t, r*r, 2/(2+s), 1e-5)
	}
}

func TestGenerateNormals(t *testing.T) {
	// Two triangles folded along the X axis share the edge vertices.
	positions := []math.Vec3{{}, {X: 1}, {Y: 1}, {Z: -1}}
	faces := [][3]int{{0, 1, 2}, {0, 1, 3}}

	normals := GenerateNormals(positions, faces)
	require.Len(t, normals, 4)
	for _, n := range normals {
		assert.InDelta(t, 1, n.Length(), 1e-5)
	}
	assert.InDelta(t, 1, normals[2].Z, 1e-6)
	assert.InDelta(t, 1, normals[3].Y, 1e-6)
	// Shared vertices average both faces.
	assert.InDelta(t, normals[0].Y, normals[0].Z, 1e-6)
}
