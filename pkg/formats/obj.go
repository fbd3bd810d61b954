package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/scenekit/pkg/encoding"
	"github.com/Faultbox/scenekit/pkg/math"
)

// OBJ format errors.
var (
	ErrInvalidOBJ = errors.New("invalid OBJ data")
	ErrInvalidMTL = errors.New("invalid MTL data")
)

// OBJVertex references one corner of a face. Indices are zero based and
// resolved from relative form; TexCoord and Normal are -1 when absent.
type OBJVertex struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJFace is a polygon with at least three corners.
type OBJFace struct {
	Vertices []OBJVertex
	Material string // Active usemtl name, empty when none
}

// OBJ is a decoded Wavefront object file.
type OBJ struct {
	Positions    []math.Vec3
	Normals      []math.Vec3
	TexCoords    []math.Vec2
	Faces        []OBJFace
	MaterialLibs []string
	Warnings     []string
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading obj file: %w", err)
	}
	defer f.Close()

	return ParseOBJ(f)
}

// ParseOBJ parses Wavefront OBJ text. Supported statements are v, vn, vt,
// f, usemtl and mtllib. Smoothing groups and o/g statements are ignored;
// other statements are recorded as warnings.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	obj := &OBJ{}
	var material string

	err := scanLines(r, func(line int, fields []string) error {
		switch fields[0] {
		case "v":
			v, err := parseVec3Fields(fields[1:])
			if err != nil {
				return objError(line, "vertex: %v", err)
			}
			obj.Positions = append(obj.Positions, v)
		case "vn":
			v, err := parseVec3Fields(fields[1:])
			if err != nil {
				return objError(line, "normal: %v", err)
			}
			obj.Normals = append(obj.Normals, v)
		case "vt":
			if len(fields) < 3 {
				return objError(line, "texture coordinate needs 2 values")
			}
			u, err := parseFloat(fields[1])
			if err != nil {
				return objError(line, "texture coordinate: %v", err)
			}
			v, err := parseFloat(fields[2])
			if err != nil {
				return objError(line, "texture coordinate: %v", err)
			}
			obj.TexCoords = append(obj.TexCoords, math.Vec2{X: u, Y: v})
		case "f":
			face, err := obj.parseFace(fields[1:])
			if err != nil {
				return objError(line, "face: %v", err)
			}
			face.Material = material
			obj.Faces = append(obj.Faces, face)
		case "usemtl":
			if len(fields) < 2 {
				return objError(line, "usemtl with no name")
			}
			material = fields[1]
		case "mtllib":
			for _, lib := range fields[1:] {
				obj.MaterialLibs = append(obj.MaterialLibs, encoding.NormalizePath(lib))
			}
		case "o", "g", "s":
			// Only materials split submeshes. Normals missing from the file
			// are generated smooth.
		default:
			obj.Warnings = append(obj.Warnings, fmt.Sprintf("line %d: unsupported statement %q", line, fields[0]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (obj *OBJ) parseFace(fields []string) (OBJFace, error) {
	if len(fields) < 3 {
		return OBJFace{}, fmt.Errorf("need at least 3 vertices, got %d", len(fields))
	}

	face := OBJFace{Vertices: make([]OBJVertex, len(fields))}
	for i, field := range fields {
		parts := strings.Split(field, "/")

		pos, err := resolveIndex(parts[0], len(obj.Positions))
		if err != nil {
			return OBJFace{}, err
		}
		vert := OBJVertex{Position: pos, TexCoord: -1, Normal: -1}

		if len(parts) > 1 && parts[1] != "" {
			if vert.TexCoord, err = resolveIndex(parts[1], len(obj.TexCoords)); err != nil {
				return OBJFace{}, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if vert.Normal, err = resolveIndex(parts[2], len(obj.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
		face.Vertices[i] = vert
	}
	return face, nil
}

// resolveIndex converts a one-based or negative relative index into a zero
// based one.
func resolveIndex(field string, count int) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", field)
	}
	switch {
	case v > 0:
		v--
	case v < 0:
		v += count
	default:
		return 0, errors.New("index 0 is not valid")
	}
	if v < 0 || v >= count {
		return 0, fmt.Errorf("index %s out of range (%d defined)", field, count)
	}
	return v, nil
}

// Triangles fans the face into triangles.
func (f OBJFace) Triangles() [][3]OBJVertex {
	tris := make([][3]OBJVertex, 0, len(f.Vertices)-2)
	for i := 1; i+1 < len(f.Vertices); i++ {
		tris = append(tris, [3]OBJVertex{f.Vertices[0], f.Vertices[i], f.Vertices[i+1]})
	}
	return tris
}

func objError(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidOBJ, line, fmt.Sprintf(format, args...))
}

// scanLines calls fn for every non-empty, non-comment line with the line
// split into fields.
func scanLines(r io.Reader, fn func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(encoding.NewReader(r))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseVec3Fields(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("need 3 values, got %d", len(fields))
	}
	var v [3]float32
	for i := range v {
		f, err := parseFloat(fields[i])
		if err != nil {
			return math.Vec3{}, fmt.Errorf("bad number %q", fields[i])
		}
		v[i] = f
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}
