package formats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/scenekit/pkg/encoding"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Scene format errors.
var (
	ErrUnexpectedEOF = errors.New("unexpected end of scene input")
	ErrUnknownKey    = errors.New("unknown key")
	ErrUnknownBlock  = errors.New("unsupported component")
	ErrExpectedToken = errors.New("bad token")
	ErrInvalidNumber = errors.New("invalid number")
)

// ParseError reports malformed scene text. Err is one of the scene format
// errors above.
type ParseError struct {
	Line     int
	Token    string
	Expected string // Set for ErrExpectedToken
	Err      error
}

func (e *ParseError) Error() string {
	switch {
	case e.Expected != "":
		return fmt.Sprintf("scene line %d: %v: expected %q, got %q", e.Line, e.Err, e.Expected, e.Token)
	case e.Token != "":
		return fmt.Sprintf("scene line %d: %v: %q", e.Line, e.Err, e.Token)
	default:
		return fmt.Sprintf("scene line %d: %v", e.Line, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// blockKind identifies a top-level block keyword.
type blockKind int

const (
	blockCamera blockKind = iota
	blockLight
	blockMaterial
	blockMesh
	blockAnimation
)

// String returns the block keyword.
func (k blockKind) String() string {
	switch k {
	case blockCamera:
		return "camera"
	case blockLight:
		return "light"
	case blockMaterial:
		return "material"
	case blockMesh:
		return "mesh"
	case blockAnimation:
		return "animation"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

func lookupBlock(tok string) (blockKind, bool) {
	switch tok {
	case "camera":
		return blockCamera, true
	case "light":
		return blockLight, true
	case "material":
		return blockMaterial, true
	case "mesh":
		return blockMesh, true
	case "animation":
		return blockAnimation, true
	}
	return 0, false
}

// ParseSceneFile parses a scene description from disk. Relative file
// references in the scene resolve against the file's directory.
func ParseSceneFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	defer f.Close()

	return ParseScene(f, filepath.Dir(path))
}

// ParseScene parses scene description text. folder is recorded as the base
// directory for the files the scene references.
func ParseScene(r io.Reader, folder string) (*Scene, error) {
	p := &sceneParser{
		tok: newTokenizer(encoding.NewReader(r)),
		scene: &Scene{
			Folder:     folder,
			Materials:  make(map[string]Material),
			Animations: make(map[string][]AnimationKeyframe),
		},
	}

	for {
		tok, err := p.tok.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading scene: %w", err)
		}

		kind, ok := lookupBlock(tok)
		if !ok {
			return nil, p.fail(tok, ErrUnknownBlock)
		}

		switch kind {
		case blockCamera:
			err = p.parseCamera()
		case blockLight:
			err = p.parseLight()
		case blockMaterial:
			err = p.parseMaterial()
		case blockMesh:
			err = p.parseMesh()
		case blockAnimation:
			err = p.parseAnimation()
		}
		if err != nil {
			return nil, err
		}
	}

	p.scene.normalize()
	return p.scene, nil
}

// normalize sorts the timed records and derives the animated flag.
func (s *Scene) normalize() {
	sort.SliceStable(s.Cameras, func(i, j int) bool {
		return s.Cameras[i].Time < s.Cameras[j].Time
	})
	for _, keys := range s.Animations {
		sort.SliceStable(keys, func(i, j int) bool {
			return keys[i].Time < keys[j].Time
		})
	}

	for _, keys := range s.Animations {
		if len(keys) > 0 {
			s.Animated = true
			return
		}
	}
	for _, l := range s.Lights {
		if l.AngularVelocity != 0 {
			s.Animated = true
			return
		}
	}
}

type sceneParser struct {
	tok   *tokenizer
	scene *Scene
}

func (p *sceneParser) fail(tok string, err error) error {
	return &ParseError{Line: p.tok.lineNumber(), Token: tok, Err: err}
}

// next reads a token that must exist.
func (p *sceneParser) next() (string, error) {
	tok, err := p.tok.next()
	if errors.Is(err, io.EOF) {
		return "", p.fail("", ErrUnexpectedEOF)
	}
	if err != nil {
		return "", fmt.Errorf("reading scene: %w", err)
	}
	return tok, nil
}

func (p *sceneParser) expect(want string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok != want {
		return &ParseError{Line: p.tok.lineNumber(), Token: tok, Expected: want, Err: ErrExpectedToken}
	}
	return nil
}

func (p *sceneParser) str() (string, error) {
	tok, err := p.next()
	if err != nil {
		return "", err
	}
	return unquote(tok), nil
}

func (p *sceneParser) number() (float32, error) {
	tok, err := p.next()
	if err != nil {
		return 0, err
	}
	v, err := parseFloat(tok)
	if err != nil {
		return 0, p.fail(tok, ErrInvalidNumber)
	}
	return v, nil
}

func (p *sceneParser) vec3() (math.Vec3, error) {
	var v [3]float32
	for i := range v {
		n, err := p.number()
		if err != nil {
			return math.Vec3{}, err
		}
		v[i] = n
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// mat4 reads sixteen numbers in column-major order.
func (p *sceneParser) mat4() (math.Mat4, error) {
	var m math.Mat4
	for i := range m {
		n, err := p.number()
		if err != nil {
			return math.Mat4{}, err
		}
		m[i] = n
	}
	return m, nil
}

// transformStatement applies a transform key to m. Each operation is
// pre-multiplied onto the running matrix, so the first statement in a block
// ends up outermost. It reports false when key is not a transform key.
func (p *sceneParser) transformStatement(key string, m *math.Mat4) (bool, error) {
	switch key {
	case "transform":
		v, err := p.mat4()
		if err != nil {
			return true, err
		}
		*m = v
	case "translate":
		v, err := p.vec3()
		if err != nil {
			return true, err
		}
		*m = math.Translate(v.X, v.Y, v.Z).Mul(*m)
	case "rotate":
		r, err := p.vec3()
		if err != nil {
			return true, err
		}
		*m = math.RotateY(math.Radians(r.Y)).Mul(*m)
		*m = math.RotateX(math.Radians(r.X)).Mul(*m)
		*m = math.RotateZ(math.Radians(r.Z)).Mul(*m)
	case "scale":
		v, err := p.vec3()
		if err != nil {
			return true, err
		}
		*m = math.Scale(v.X, v.Y, v.Z).Mul(*m)
	default:
		return false, nil
	}
	return true, nil
}

func (p *sceneParser) parseCamera() error {
	if err := p.expect("{"); err != nil {
		return err
	}

	camera := defaultCamera()
	for {
		key, err := p.next()
		if err != nil {
			return err
		}
		switch key {
		case "time":
			camera.Time, err = p.number()
		case "eye":
			camera.Eye, err = p.vec3()
		case "lookat":
			camera.LookAt, err = p.vec3()
		case "up":
			camera.Up, err = p.vec3()
		case "}":
			dir := camera.LookAt.Sub(camera.Eye)
			camera.Up = dir.Cross(camera.Up).Cross(dir).Normalize()
			p.scene.Cameras = append(p.scene.Cameras, camera)
			return nil
		default:
			return p.fail(key, ErrUnknownKey)
		}
		if err != nil {
			return err
		}
	}
}

func (p *sceneParser) parseLight() error {
	if err := p.expect("{"); err != nil {
		return err
	}

	light := defaultLight()
	for {
		key, err := p.next()
		if err != nil {
			return err
		}
		switch key {
		case "emission":
			light.Emission, err = p.vec3()
		case "position":
			light.Position, err = p.vec3()
		case "radius":
			light.Radius, err = p.number()
		case "axis_direction":
			light.AxisDirection, err = p.vec3()
		case "axis_position":
			light.AxisPosition, err = p.vec3()
		case "angular_v":
			var deg float32
			deg, err = p.number()
			light.AngularVelocity = math.Radians(deg)
		case "}":
			p.scene.Lights = append(p.scene.Lights, light)
			return nil
		default:
			return p.fail(key, ErrUnknownKey)
		}
		if err != nil {
			return err
		}
	}
}

// parseMaterial handles both "material { ... }" and "material name { ... }".
func (p *sceneParser) parseMaterial() error {
	var name string

	tok, err := p.tok.peek()
	if errors.Is(err, io.EOF) {
		return p.fail("", ErrUnexpectedEOF)
	}
	if err != nil {
		return fmt.Errorf("reading scene: %w", err)
	}
	if tok == "{" {
		_, _ = p.next()
	} else {
		if name, err = p.str(); err != nil {
			return err
		}
		if err := p.expect("{"); err != nil {
			return err
		}
	}

	material := defaultMaterial()
	for {
		key, err := p.next()
		if err != nil {
			return err
		}
		switch key {
		case "color":
			material.Color, err = p.vec3()
		case "file", "albedoTex":
			material.TextureFile, err = p.str()
		case "name":
			name, err = p.str()
		case "specular":
			material.Specular, err = p.number()
		case "roughness":
			material.Roughness, err = p.number()
		case "}":
			p.scene.Materials[name] = material
			return nil
		default:
			return p.fail(key, ErrUnknownKey)
		}
		if err != nil {
			return err
		}
	}
}

func (p *sceneParser) parseMesh() error {
	if err := p.expect("{"); err != nil {
		return err
	}

	mesh := MeshRef{Transform: math.Identity()}
	for {
		key, err := p.next()
		if err != nil {
			return err
		}
		if ok, err := p.transformStatement(key, &mesh.Transform); ok {
			if err != nil {
				return err
			}
			continue
		}
		switch key {
		case "file":
			mesh.File, err = p.str()
		case "material":
			mesh.Material, err = p.str()
		case "animation":
			mesh.Animation, err = p.str()
		case "}":
			p.scene.Meshes = append(p.scene.Meshes, mesh)
			return nil
		default:
			return p.fail(key, ErrUnknownKey)
		}
		if err != nil {
			return err
		}
	}
}

func (p *sceneParser) parseAnimation() error {
	if err := p.expect("{"); err != nil {
		return err
	}

	var name string
	frame := AnimationKeyframe{Transform: math.Identity()}
	for {
		key, err := p.next()
		if err != nil {
			return err
		}
		if ok, err := p.transformStatement(key, &frame.Transform); ok {
			if err != nil {
				return err
			}
			continue
		}
		switch key {
		case "name":
			name, err = p.str()
		case "time":
			frame.Time, err = p.number()
		case "file":
			frame.File, err = p.str()
		case "}":
			p.scene.Animations[name] = append(p.scene.Animations[name], frame)
			return nil
		default:
			return p.fail(key, ErrUnknownKey)
		}
		if err != nil {
			return err
		}
	}
}
