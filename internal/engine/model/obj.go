package model

import (
	"bytes"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/engine/geometry"
	"github.com/Faultbox/scenekit/pkg/formats"
	"github.com/Faultbox/scenekit/pkg/math"
)

// objBuilder collects the faces of one material into a submesh, sharing
// vertices that repeat the same position/uv/normal triple.
type objBuilder struct {
	sub     geometry.Submesh
	lookup  map[formats.OBJVertex]int
	hasUV   bool
	hasNorm bool
}

func (im *Importer) importOBJ(path string) (*geometry.ImportedMesh, error) {
	data, err := im.source.Load(path)
	if err != nil {
		return nil, err
	}
	obj, err := formats.ParseOBJ(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for _, w := range obj.Warnings {
		im.log.Debug("obj warning", zap.String("path", path), zap.String("warning", w))
	}

	materials := im.loadMaterialLibs(path, obj.MaterialLibs)

	// Submeshes in order of first use.
	var order []string
	builders := make(map[string]*objBuilder)
	for _, face := range obj.Faces {
		b, ok := builders[face.Material]
		if !ok {
			b = &objBuilder{
				lookup:  make(map[formats.OBJVertex]int),
				hasUV:   true,
				hasNorm: true,
			}
			b.sub.Material = objMaterial(materials[face.Material])
			builders[face.Material] = b
			order = append(order, face.Material)
		}
		for _, tri := range face.Triangles() {
			b.sub.Faces = append(b.sub.Faces, [3]int{
				b.vertex(obj, tri[0]),
				b.vertex(obj, tri[1]),
				b.vertex(obj, tri[2]),
			})
		}
	}

	mesh := &geometry.ImportedMesh{}
	for _, name := range order {
		b := builders[name]
		if !b.hasUV {
			b.sub.TexCoords = nil
		}
		if !b.hasNorm {
			b.sub.Normals = GenerateNormals(b.sub.Positions, b.sub.Faces)
		}
		mesh.Submeshes = append(mesh.Submeshes, b.sub)
	}
	return mesh, nil
}

func (b *objBuilder) vertex(obj *formats.OBJ, v formats.OBJVertex) int {
	if i, ok := b.lookup[v]; ok {
		return i
	}
	i := len(b.sub.Positions)
	b.lookup[v] = i

	b.sub.Positions = append(b.sub.Positions, obj.Positions[v.Position])

	var uv math.Vec2
	if v.TexCoord >= 0 {
		t := obj.TexCoords[v.TexCoord]
		// Images are stored top row first.
		uv = math.Vec2{X: t.X, Y: 1 - t.Y}
	} else {
		b.hasUV = false
	}
	b.sub.TexCoords = append(b.sub.TexCoords, uv)

	var n math.Vec3
	if v.Normal >= 0 {
		n = obj.Normals[v.Normal]
	} else {
		b.hasNorm = false
	}
	b.sub.Normals = append(b.sub.Normals, n)

	return i
}

// loadMaterialLibs reads every referenced material library. Missing or
// broken libraries are logged and their materials fall back to defaults.
// Texture paths are rewritten relative to the OBJ file.
func (im *Importer) loadMaterialLibs(objPath string, libs []string) map[string]*formats.MTLMaterial {
	materials := make(map[string]*formats.MTLMaterial)
	dir := filepath.Dir(objPath)

	for _, lib := range libs {
		data, err := im.source.Load(filepath.Join(dir, lib))
		if err != nil {
			im.log.Warn("material library not loaded", zap.String("obj", objPath), zap.String("mtllib", lib), zap.Error(err))
			continue
		}
		mats, err := formats.ParseMTL(bytes.NewReader(data))
		if err != nil {
			im.log.Warn("material library not parsed", zap.String("obj", objPath), zap.String("mtllib", lib), zap.Error(err))
			continue
		}
		for name, m := range mats {
			if m.DiffuseMap != "" {
				m.DiffuseMap = filepath.Join(filepath.Dir(lib), m.DiffuseMap)
			}
			materials[name] = m
		}
	}
	return materials
}

func objMaterial(m *formats.MTLMaterial) geometry.ImportedMaterial {
	if m == nil {
		return geometry.ImportedMaterial{Diffuse: math.Splat3(1)}
	}
	return geometry.ImportedMaterial{
		Diffuse:   m.Diffuse,
		Specular:  m.Specular,
		Shininess: m.Shininess,
		Texture:   m.DiffuseMap,
	}
}
