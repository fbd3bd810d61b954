// Package model imports mesh files into triangulated submeshes for baking.
package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/engine/geometry"
)

// ErrUnsupportedFormat is returned for mesh files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// Source loads raw file bytes. *assets.Manager satisfies it.
type Source interface {
	Load(path string) ([]byte, error)
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger used for import warnings.
func WithLogger(log *zap.Logger) Option {
	return func(im *Importer) {
		if log != nil {
			im.log = log
		}
	}
}

// Importer reads Wavefront OBJ and glTF 2.0 files. It implements
// geometry.MeshImporter.
type Importer struct {
	source Source
	log    *zap.Logger
}

// NewImporter creates an importer reading OBJ and MTL files through source.
// glTF files are read directly from disk.
func NewImporter(source Source, opts ...Option) *Importer {
	im := &Importer{
		source: source,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import loads the mesh at path, choosing the decoder by extension.
func (im *Importer) Import(path string) (*geometry.ImportedMesh, error) {
	var (
		mesh *geometry.ImportedMesh
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		mesh, err = im.importOBJ(path)
	case ".gltf", ".glb":
		mesh, err = im.importGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	im.log.Debug("imported mesh",
		zap.String("path", path),
		zap.Int("submeshes", len(mesh.Submeshes)))
	return mesh, nil
}
