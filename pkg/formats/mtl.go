package formats

import (
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/scenekit/pkg/encoding"
	"github.com/Faultbox/scenekit/pkg/math"
)

// MTLMaterial is one newmtl entry of a material library.
type MTLMaterial struct {
	Name       string
	Diffuse    math.Vec3 // Kd
	Specular   math.Vec3 // Ks
	Shininess  float32   // Ns
	DiffuseMap string    // map_Kd, relative to the library
}

func defaultMTLMaterial(name string) *MTLMaterial {
	return &MTLMaterial{Name: name, Diffuse: math.Splat3(1)}
}

// ParseMTLFile parses a material library from disk.
func ParseMTLFile(path string) (map[string]*MTLMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading mtl file: %w", err)
	}
	defer f.Close()

	return ParseMTL(f)
}

// ParseMTL parses a Wavefront material library keyed by material name.
// Statements other than newmtl, Kd, Ks, Ns and map_Kd are ignored.
func ParseMTL(r io.Reader) (map[string]*MTLMaterial, error) {
	materials := make(map[string]*MTLMaterial)
	var current *MTLMaterial

	err := scanLines(r, func(line int, fields []string) error {
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return fmt.Errorf("%w: line %d: newmtl with no name", ErrInvalidMTL, line)
			}
			current = defaultMTLMaterial(fields[1])
			materials[current.Name] = current
			return nil
		}
		if current == nil {
			return nil
		}

		var err error
		switch fields[0] {
		case "Kd":
			current.Diffuse, err = parseVec3Fields(fields[1:])
		case "Ks":
			current.Specular, err = parseVec3Fields(fields[1:])
		case "Ns":
			if len(fields) < 2 {
				return fmt.Errorf("%w: line %d: Ns with no value", ErrInvalidMTL, line)
			}
			current.Shininess, err = parseFloat(fields[1])
		case "map_Kd":
			if len(fields) < 2 {
				return fmt.Errorf("%w: line %d: map_Kd with no file", ErrInvalidMTL, line)
			}
			// Options such as -s and -o precede the file name.
			current.DiffuseMap = encoding.NormalizePath(fields[len(fields)-1])
		}
		if err != nil {
			return fmt.Errorf("%w: line %d: %s: %v", ErrInvalidMTL, line, fields[0], err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return materials, nil
}
