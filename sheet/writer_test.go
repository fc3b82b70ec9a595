package sheet

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidThumb(c color.Color) image.Image {
	m := image.NewNRGBA(image.Rect(0, 0, CellSize, CellSize))
	draw.Draw(m, m.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return m
}

func TestEncode(t *testing.T) {
	thumbs := []image.Image{
		solidThumb(color.NRGBA{0xff, 0x00, 0x00, 0xff}),
		solidThumb(color.NRGBA{0x00, 0xff, 0x00, 0xff}),
		solidThumb(color.NRGBA{0x00, 0x00, 0xff, 0xff}),
	}

	var b bytes.Buffer
	require.NoError(t, Encode(&b, thumbs, 2))

	config, err := gif.DecodeConfig(&b)
	require.NoError(t, err)
	assert.Equal(t, 2*CellSize, config.Width)
	assert.Equal(t, 2*CellSize, config.Height)
}

func TestEncodeDefaultColumns(t *testing.T) {
	thumbs := make([]image.Image, 10)
	for i := range thumbs {
		thumbs[i] = solidThumb(color.NRGBA{byte(i * 20), 0x80, 0x40, 0xff})
	}

	var b bytes.Buffer
	require.NoError(t, Encode(&b, thumbs, 0))

	config, err := gif.DecodeConfig(&b)
	require.NoError(t, err)
	assert.Equal(t, DefaultColumns*CellSize, config.Width)
	assert.Equal(t, 2*CellSize, config.Height)
}

func TestEncodeSingle(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Encode(&b, []image.Image{solidThumb(color.Black)}, 0))

	config, err := gif.DecodeConfig(&b)
	require.NoError(t, err)
	assert.Equal(t, CellSize, config.Width)
	assert.Equal(t, CellSize, config.Height)
}

func TestEncodeEmpty(t *testing.T) {
	var b bytes.Buffer
	assert.Error(t, Encode(&b, nil, 0))
}

func TestEncodeWrongSize(t *testing.T) {
	var b bytes.Buffer
	m := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	assert.Error(t, Encode(&b, []image.Image{m}, 0))
}
