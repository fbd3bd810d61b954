package geometry

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/engine/texture"
	"github.com/Faultbox/scenekit/pkg/formats"
	"github.com/Faultbox/scenekit/pkg/math"
)

// untexturedCoord marks a vertex that samples no atlas layer.
var untexturedCoord = math.Vec3{X: 0, Y: 0, Z: -1}

// Option configures Bake.
type Option func(*baker)

// WithLogger sets the logger used for bake statistics.
func WithLogger(log *zap.Logger) Option {
	return func(b *baker) {
		if log != nil {
			b.log = log
		}
	}
}

type baker struct {
	scene    *formats.Scene
	importer MeshImporter
	packer   TexturePacker
	log      *zap.Logger
}

// Bake imports every scene mesh, resolves its materials and textures, and
// merges the result into one flattened triangle stream. Meshes are processed
// in scene order, so equal inputs produce identical output.
func Bake(scene *formats.Scene, importer MeshImporter, packer TexturePacker, opts ...Option) (*Baked, error) {
	b := &baker{
		scene:    scene,
		importer: importer,
		packer:   packer,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	var s stream
	ranges := make([]MeshRange, 0, len(scene.Meshes))
	for i, mesh := range scene.Meshes {
		firstFace := len(s.faces)
		if err := b.bakeMesh(mesh, &s); err != nil {
			return nil, &BakeError{Mesh: i, File: mesh.File, Err: err}
		}
		ranges = append(ranges, MeshRange{
			Offset:    firstFace * 3,
			Count:     (len(s.faces) - firstFace) * 3,
			Animation: mesh.Animation,
		})
	}

	baked := s.flatten()
	baked.Meshes = ranges
	baked.TextureCount = packer.Count()

	lo, hi := baked.Bounds.Min.Array(), baked.Bounds.Max.Array()
	b.log.Info("baked scene",
		zap.Int("meshes", len(baked.Meshes)),
		zap.Int("vertices", baked.VertexCount),
		zap.Int("triangles", baked.TriangleCount),
		zap.Int("textures", baked.TextureCount),
		zap.Float32s("aabb_min", lo[:]),
		zap.Float32s("aabb_max", hi[:]))

	return baked, nil
}

func (b *baker) bakeMesh(mesh formats.MeshRef, s *stream) error {
	path := filepath.Join(b.scene.Folder, mesh.File)
	imported, err := b.importer.Import(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrImportFailed, path, err)
	}
	if imported == nil {
		return fmt.Errorf("%w: %s: no mesh data", ErrImportFailed, path)
	}

	model := mesh.Transform
	normalMatrix := model.NormalMatrix()

	for i := range imported.Submeshes {
		sub := &imported.Submeshes[i]

		surf, err := resolveSurface(b.scene, mesh, sub.Material)
		if err != nil {
			return err
		}

		var block texture.Block
		textured := surf.texture != ""
		if textured {
			if block, err = b.packer.Load(surf.texture); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrTextureLoad, surf.texture, err)
			}
		}

		if err := checkFaces(sub, i); err != nil {
			return err
		}

		base := s.vertexCount()
		rect := math.Vec4{block.Offset.X, block.Offset.Y, block.Size.X, block.Size.Y}
		for vi, p := range sub.Positions {
			position := model.TransformPoint(p)
			var normal math.Vec3
			if vi < len(sub.Normals) {
				normal = normalMatrix.MulVec3(sub.Normals[vi])
			}

			s.positions = append(s.positions, position)
			s.normals = append(s.normals, normal)
			s.colors = append(s.colors, surf.color)
			s.glosses = append(s.glosses, surf.gloss)

			if textured && vi < len(sub.TexCoords) {
				uv := sub.TexCoords[vi]
				s.texCoords = append(s.texCoords, math.Vec3{X: uv.X, Y: uv.Y, Z: float32(block.Index)})
				s.texRects = append(s.texRects, rect)
			} else {
				s.texCoords = append(s.texCoords, untexturedCoord)
				s.texRects = append(s.texRects, math.Vec4{})
			}

			s.extend(position)
		}

		for _, f := range sub.Faces {
			s.faces = append(s.faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
		}

		b.log.Debug("baked submesh",
			zap.String("file", mesh.File),
			zap.Int("submesh", i),
			zap.Int("vertices", len(sub.Positions)),
			zap.Int("faces", len(sub.Faces)),
			zap.Bool("textured", textured))
	}
	return nil
}

// checkFaces rejects faces that point outside the submesh's vertices.
func checkFaces(sub *Submesh, index int) error {
	n := len(sub.Positions)
	for fi, f := range sub.Faces {
		for _, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("%w: submesh %d face %d references vertex %d of %d", ErrFaceIndex, index, fi, v, n)
			}
		}
	}
	return nil
}
