package model

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/engine/geometry"
	"github.com/Faultbox/scenekit/pkg/math"
)

// minRoughness keeps the shininess conversion finite for mirror-like
// materials.
const minRoughness = 0.01

func (im *Importer) importGLTF(path string) (*geometry.ImportedMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gltf %s: %w", path, err)
	}

	mesh := &geometry.ImportedMesh{}
	for _, mi := range meshOrder(doc) {
		for pi, prim := range doc.Meshes[mi].Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				im.log.Debug("skipping non-triangle primitive",
					zap.String("path", path), zap.Int("mesh", mi), zap.Int("primitive", pi))
				continue
			}
			sub, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("reading gltf %s mesh %d primitive %d: %w", path, mi, pi, err)
			}
			mesh.Submeshes = append(mesh.Submeshes, sub)
		}
	}
	return mesh, nil
}

// meshOrder walks the default scene breadth first and returns the meshes in
// visiting order. Node transforms are not applied. Documents without scenes
// list every mesh once.
func meshOrder(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		order := make([]int, len(doc.Meshes))
		for i := range order {
			order[i] = i
		}
		return order
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}

	var order []int
	queue := append([]int(nil), doc.Scenes[sceneIdx].Nodes...)
	visited := make(map[int]bool)
	for len(queue) > 0 {
		ni := queue[0]
		queue = queue[1:]
		if visited[ni] {
			continue
		}
		visited[ni] = true

		node := doc.Nodes[ni]
		if node.Mesh != nil {
			order = append(order, *node.Mesh)
		}
		queue = append(queue, node.Children...)
	}
	return order
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (geometry.Submesh, error) {
	var sub geometry.Submesh

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return sub, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return sub, fmt.Errorf("positions: %w", err)
	}
	sub.Positions = toVec3s(positions)

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return sub, fmt.Errorf("indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			sub.Faces = append(sub.Faces, [3]int{int(indices[i]), int(indices[i+1]), int(indices[i+2])})
		}
	} else {
		for i := 0; i+2 < len(sub.Positions); i += 3 {
			sub.Faces = append(sub.Faces, [3]int{i, i + 1, i + 2})
		}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return sub, fmt.Errorf("normals: %w", err)
		}
		sub.Normals = toVec3s(normals)
	} else {
		sub.Normals = GenerateNormals(sub.Positions, sub.Faces)
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return sub, fmt.Errorf("texture coordinates: %w", err)
		}
		sub.TexCoords = make([]math.Vec2, len(uvs))
		for i, uv := range uvs {
			sub.TexCoords[i] = math.Vec2{X: uv[0], Y: uv[1]}
		}
	}

	if prim.Material != nil {
		sub.Material = gltfMaterial(doc, doc.Materials[*prim.Material])
	} else {
		sub.Material = geometry.ImportedMaterial{Diffuse: math.Splat3(1), Shininess: roughnessToShininess(1)}
	}
	return sub, nil
}

// gltfMaterial maps metallic-roughness PBR onto the diffuse/specular model.
func gltfMaterial(doc *gltf.Document, m *gltf.Material) geometry.ImportedMaterial {
	out := geometry.ImportedMaterial{Diffuse: math.Splat3(1), Shininess: roughnessToShininess(1)}

	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return out
	}

	c := pbr.BaseColorFactorOrDefault()
	out.Diffuse = math.Vec3{X: float32(c[0]), Y: float32(c[1]), Z: float32(c[2])}
	out.Shininess = roughnessToShininess(float32(pbr.RoughnessFactorOrDefault()))

	if pbr.BaseColorTexture != nil {
		tex := doc.Textures[pbr.BaseColorTexture.Index]
		if tex.Source != nil {
			img := doc.Images[*tex.Source]
			if img.URI != "" && !img.IsEmbeddedResource() {
				out.Texture = img.URI
			}
		}
	}
	return out
}

// roughnessToShininess inverts r = sqrt(2 / (2 + s)).
func roughnessToShininess(r float32) float32 {
	r = math32.Max(r, minRoughness)
	return 2/(r*r) - 2
}

func toVec3s(in [][3]float32) []math.Vec3 {
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	return out
}
