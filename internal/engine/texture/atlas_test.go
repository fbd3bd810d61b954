package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/scenekit/pkg/math"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

type mapSource map[string][]byte

func (m mapSource) Load(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.New("missing " + path)
	}
	return data, nil
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPacker_Shelves(t *testing.T) {
	p := NewPacker(nil, WithLayerSize(8))

	a, err := p.Add("a", solid(4, 4, color.NRGBA{R: 255, A: 255}))
	require.NoError(t, err)
	b, err := p.Add("b", solid(4, 2, color.NRGBA{G: 255, A: 255}))
	require.NoError(t, err)
	c, err := p.Add("c", solid(2, 2, color.NRGBA{B: 255, A: 255}))
	require.NoError(t, err)

	assert.Equal(t, Block{Index: 0, Offset: math.Vec2{}, Size: math.Vec2{X: 0.5, Y: 0.5}}, a)
	assert.Equal(t, Block{Index: 0, Offset: math.Vec2{X: 0.5}, Size: math.Vec2{X: 0.5, Y: 0.25}}, b)
	// The first shelf is full, c opens a second one below the tallest image.
	assert.Equal(t, Block{Index: 0, Offset: math.Vec2{Y: 0.5}, Size: math.Vec2{X: 0.25, Y: 0.25}}, c)

	assert.Equal(t, 3, p.Count())
	assert.Equal(t, 1, p.LayerCount())

	arr := p.CreateArray()
	require.Len(t, arr.Layers, 1)
	assert.Equal(t, 8, arr.Size)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, arr.Layers[0].NRGBAAt(3, 3))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, arr.Layers[0].NRGBAAt(5, 1))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, arr.Layers[0].NRGBAAt(1, 5))
	assert.Equal(t, color.NRGBA{}, arr.Layers[0].NRGBAAt(7, 7))
}

func TestPacker_NewLayer(t *testing.T) {
	p := NewPacker(nil, WithLayerSize(4))

	first, err := p.Add("first", solid(4, 4, color.NRGBA{A: 255}))
	require.NoError(t, err)
	second, err := p.Add("second", solid(3, 3, color.NRGBA{A: 255}))
	require.NoError(t, err)

	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, math.Vec2{}, second.Offset)
	assert.Equal(t, 2, p.LayerCount())
}

func TestPacker_Dedup(t *testing.T) {
	p := NewPacker(nil, WithLayerSize(8))

	first, err := p.Add("same", solid(2, 2, color.NRGBA{A: 255}))
	require.NoError(t, err)
	again, err := p.Add("same", solid(6, 6, color.NRGBA{A: 255}))
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, 1, p.Count())
}

func TestPacker_Downscale(t *testing.T) {
	p := NewPacker(nil, WithLayerSize(8))

	b, err := p.Add("wide", solid(32, 16, color.NRGBA{R: 200, A: 255}))
	require.NoError(t, err)
	assert.Equal(t, math.Vec2{X: 1, Y: 0.5}, b.Size)

	got := p.CreateArray().Layers[0].NRGBAAt(4, 2)
	assert.InDelta(t, 200, int(got.R), 2)
}

func TestPacker_EmptyImage(t *testing.T) {
	p := NewPacker(nil)
	_, err := p.Add("empty", image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEmptyImage)
	assert.Equal(t, 0, p.Count())
}

func TestPacker_Load(t *testing.T) {
	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, solid(2, 2, color.NRGBA{G: 255, A: 255})))

	src := mapSource{
		"wood.png":  encodePNG(t, solid(2, 2, color.NRGBA{R: 255, A: 255})),
		"grass.bmp": bmpBuf.Bytes(),
		"bad.png":   []byte("not an image"),
	}
	p := NewPacker(src, WithLayerSize(8))

	wood, err := p.Load("wood.png")
	require.NoError(t, err)
	grass, err := p.Load("grass.bmp")
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), grass.Offset.X)
	assert.Equal(t, wood, mustLoad(t, p, "wood.png"))

	layer := p.CreateArray().Layers[0]
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, layer.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, layer.NRGBAAt(2, 0))

	_, err = p.Load("bad.png")
	assert.Error(t, err)
	_, err = p.Load("missing.png")
	assert.Error(t, err)
	assert.Equal(t, 2, p.Count())
}

func mustLoad(t *testing.T, p *Packer, path string) Block {
	t.Helper()
	b, err := p.Load(path)
	require.NoError(t, err)
	return b
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, edge int
		wantW      int
		wantH      int
	}{
		{10, 10, 16, 10, 10},
		{32, 16, 16, 16, 8},
		{16, 64, 16, 4, 16},
		{1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := fitSize(tt.w, tt.h, tt.edge)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestArray_Save(t *testing.T) {
	p := NewPacker(nil, WithLayerSize(4))
	_, err := p.Add("a", solid(4, 4, color.NRGBA{R: 255, A: 255}))
	require.NoError(t, err)
	_, err = p.Add("b", solid(4, 4, color.NRGBA{B: 255, A: 255}))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "atlas")
	paths, err := p.CreateArray().Save(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "layer_00.webp"),
		filepath.Join(dir, "layer_01.webp"),
	}, paths)

	for _, path := range paths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
