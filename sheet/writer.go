package sheet

import (
	"errors"
	"image"
	"image/draw"
	"image/gif"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

var (
	errNoThumbs  = errors.New("sheet: no thumbnails")
	errWrongSize = errors.New("sheet: thumbnail is wrong size")
)

// Encode writes the given thumbnails to w as a GIF contact sheet with the
// given number of columns, or DefaultColumns if columns is not positive.
// Every thumbnail must be exactly CellSize pixels square.
func Encode(w io.Writer, thumbs []image.Image, columns int) error {
	if len(thumbs) == 0 {
		return errNoThumbs
	}
	if columns < 1 {
		columns = DefaultColumns
	}
	if columns > len(thumbs) {
		columns = len(thumbs)
	}

	for _, m := range thumbs {
		if b := m.Bounds(); b.Dx() != CellSize || b.Dy() != CellSize {
			return errWrongSize
		}
	}

	rows := (len(thumbs) + columns - 1) / columns
	dst := image.NewNRGBA(image.Rect(0, 0, columns*CellSize, rows*CellSize))

	for i, m := range thumbs {
		x := (i % columns) * CellSize
		y := (i / columns) * CellSize
		r := image.Rect(x, y, x+CellSize, y+CellSize)
		draw.Draw(dst, r, m, m.Bounds().Min, draw.Src)
	}

	return gif.Encode(w, dst, &gif.Options{
		NumColors: numColors,
		Quantizer: quantize.MedianCutQuantizer{},
	})
}
