package texture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/scenekit/pkg/math"
)

// DefaultLayerSize is the edge length of an atlas layer in pixels.
const DefaultLayerSize = 4096

// ErrEmptyImage is returned for textures with no pixels.
var ErrEmptyImage = errors.New("texture has no pixels")

// Block locates a packed texture. Offset and Size are normalized to the
// layer, so sampling maps (u, v) to Offset + fract(u, v) * Size.
type Block struct {
	Index  int // Atlas layer
	Offset math.Vec2
	Size   math.Vec2
}

// Source loads raw texture bytes. *assets.Manager satisfies it.
type Source interface {
	Load(path string) ([]byte, error)
}

// Option configures a Packer.
type Option func(*Packer)

// WithLayerSize sets the layer edge length in pixels.
func WithLayerSize(size int) Option {
	return func(p *Packer) {
		if size > 0 {
			p.size = size
		}
	}
}

// WithLogger sets the logger used for packing events.
func WithLogger(log *zap.Logger) Option {
	return func(p *Packer) {
		if log != nil {
			p.log = log
		}
	}
}

// layer is one atlas page filled shelf by shelf, top to bottom.
type layer struct {
	img         *image.NRGBA
	cursorX     int
	cursorY     int
	shelfHeight int
}

// Packer places textures into square layers. Loading the same path twice
// returns the first placement. A Packer is not safe for concurrent use.
type Packer struct {
	source Source
	size   int
	log    *zap.Logger

	blocks map[string]Block
	layers []*layer
}

// NewPacker creates a packer reading textures from source.
func NewPacker(source Source, opts ...Option) *Packer {
	p := &Packer{
		source: source,
		size:   DefaultLayerSize,
		log:    zap.NewNop(),
		blocks: make(map[string]Block),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LayerSize returns the layer edge length in pixels.
func (p *Packer) LayerSize() int {
	return p.size
}

// Count returns the number of distinct textures loaded.
func (p *Packer) Count() int {
	return len(p.blocks)
}

// LayerCount returns the number of atlas layers in use.
func (p *Packer) LayerCount() int {
	return len(p.layers)
}

// Load decodes the texture at path and packs it, downscaling images that
// do not fit in a layer.
func (p *Packer) Load(path string) (Block, error) {
	if b, ok := p.blocks[path]; ok {
		return b, nil
	}

	data, err := p.source.Load(path)
	if err != nil {
		return Block{}, err
	}
	img, err := Decode(path, data)
	if err != nil {
		return Block{}, err
	}
	return p.Add(path, img)
}

// Add packs an already decoded image under the given key.
func (p *Packer) Add(key string, img image.Image) (Block, error) {
	if b, ok := p.blocks[key]; ok {
		return b, nil
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return Block{}, fmt.Errorf("%w: %s", ErrEmptyImage, key)
	}

	w, h := fitSize(bounds.Dx(), bounds.Dy(), p.size)
	if w != bounds.Dx() || h != bounds.Dy() {
		p.log.Debug("downscaling texture",
			zap.String("texture", key),
			zap.Int("width", bounds.Dx()),
			zap.Int("height", bounds.Dy()),
			zap.Int("scaled_width", w),
			zap.Int("scaled_height", h))
	}

	index, x, y := p.place(w, h)
	dst := p.layers[index].img
	rect := image.Rect(x, y, x+w, y+h)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, rect, img, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, rect, img, bounds, draw.Src, nil)
	}

	size := float32(p.size)
	b := Block{
		Index:  index,
		Offset: math.Vec2{X: float32(x) / size, Y: float32(y) / size},
		Size:   math.Vec2{X: float32(w) / size, Y: float32(h) / size},
	}
	p.blocks[key] = b

	p.log.Debug("packed texture",
		zap.String("texture", key),
		zap.Int("layer", index),
		zap.Int("x", x),
		zap.Int("y", y))

	return b, nil
}

// place reserves a w by h rectangle, opening a new shelf or layer when the
// current one is full.
func (p *Packer) place(w, h int) (index, x, y int) {
	if n := len(p.layers); n > 0 {
		l := p.layers[n-1]
		if l.cursorX+w > p.size {
			l.cursorY += l.shelfHeight
			l.cursorX = 0
			l.shelfHeight = 0
		}
		if l.cursorY+h <= p.size {
			x, y = l.cursorX, l.cursorY
			l.cursorX += w
			if h > l.shelfHeight {
				l.shelfHeight = h
			}
			return n - 1, x, y
		}
	}

	l := &layer{
		img:         image.NewNRGBA(image.Rect(0, 0, p.size, p.size)),
		cursorX:     w,
		shelfHeight: h,
	}
	p.layers = append(p.layers, l)
	return len(p.layers) - 1, 0, 0
}

// fitSize shrinks w by h to fit in a square of the given edge, keeping the
// aspect ratio.
func fitSize(w, h, edge int) (int, int) {
	if w <= edge && h <= edge {
		return w, h
	}
	if w >= h {
		return edge, max(1, h*edge/w)
	}
	return max(1, w*edge/h), edge
}

// Array is the finished atlas.
type Array struct {
	Size   int
	Layers []*image.NRGBA
}

// CreateArray returns the packed layers. The images are shared with the
// packer.
func (p *Packer) CreateArray() *Array {
	arr := &Array{Size: p.size, Layers: make([]*image.NRGBA, len(p.layers))}
	for i, l := range p.layers {
		arr.Layers[i] = l.img
	}
	return arr
}

// Save writes every layer to dir as layer_NN.webp and returns the file
// paths.
func (a *Array) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating atlas dir: %w", err)
	}

	paths := make([]string, 0, len(a.Layers))
	for i, img := range a.Layers {
		path := filepath.Join(dir, fmt.Sprintf("layer_%02d.webp", i))
		if err := writeWebP(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode %s: %w", path, err)
	}
	return f.Close()
}
