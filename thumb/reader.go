package thumb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	// ErrMagicNotFound means the thumbnail magic pattern is absent from
	// the scan window, so the file carries no recognizable thumbnail.
	ErrMagicNotFound = errors.New("thumb: magic pattern not found")

	// ErrUnsupportedVersion means the thumbnail uses a compression
	// format older than v4, which is not supported.
	ErrUnsupportedVersion = errors.New("thumb: unsupported compression version")
)

type decoder struct {
	data []byte
	pos  int

	version byte
	blocks  [numBlocks]int

	result []byte
	temp   []byte
}

// Extract decodes the embedded thumbnail from the leading bytes of a brush
// file. data should hold the first HeaderSize bytes; shorter input is
// accepted but may not contain the whole thumbnail. When scaleAlpha is true
// the alpha channel is boosted so dark-background icons become fully opaque;
// pass false for material and light presets.
//
// On success the returned slice is always exactly PixelBytes long, RGBA
// interleaved, row-major top to bottom. Regions not covered by the encoded
// blocks are left zero. The only failures are ErrMagicNotFound and
// ErrUnsupportedVersion; malformed block data degrades to a partially
// filled thumbnail instead.
func Extract(data []byte, scaleAlpha bool) ([]byte, error) {
	d := decoder{
		data:   data,
		result: make([]byte, PixelBytes),
		temp:   make([]byte, PixelBytes+scratchSlack),
	}

	if err := d.locate(); err != nil {
		return nil, err
	}
	d.readBlockSizes()
	d.decodeBlocks(scaleAlpha)

	return d.result, nil
}

// locate skips the fixed file header and scans a small window for the magic
// pattern, leaving the cursor just past it.
func (d *decoder) locate() error {
	pos := headerSkip
	limit := len(d.data) - len(magic)
	if limit > headerSkip+scanWindow {
		limit = headerSkip + scanWindow
	}

	for ; ; pos++ {
		if pos >= limit {
			return ErrMagicNotFound
		}
		if bytes.Equal(d.data[pos:pos+len(magic)], magic[:]) {
			break
		}
	}

	// The compression version sits 6 bytes before the magic.
	d.version = d.data[pos-6]
	if d.version < minVersion {
		return ErrUnsupportedVersion
	}

	d.pos = pos + len(magic)

	return nil
}

// readBlockSizes reads the compressed byte count of each block. v4 stores
// four 16-bit sizes; v5+ stores only two 32-bit sizes after a 12-byte gap,
// leaving blocks 2 and 3 empty.
func (d *decoder) readBlockSizes() {
	if d.version > minVersion {
		d.pos += 12
		d.blocks[0] = int(d.int32())
		d.blocks[1] = int(d.int32())
	} else {
		for i := range d.blocks {
			d.blocks[i] = int(d.int16())
		}
	}
}

func (d *decoder) int16() int16 {
	if d.pos < 0 || d.pos+2 > len(d.data) {
		d.pos += 2
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(d.data[d.pos:]))
	d.pos += 2
	return v
}

func (d *decoder) int32() int32 {
	if d.pos < 0 || d.pos+4 > len(d.data) {
		d.pos += 4
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(d.data[d.pos:]))
	d.pos += 4
	return v
}

func (d *decoder) decodeBlocks(scaleAlpha bool) {
	offset := 0

	for _, size := range d.blocks {
		if size == 0 {
			break
		}

		start := d.pos

		// v6 adds a 4-byte prefix to every block.
		if d.version >= 6 {
			d.pos += 4
		}

		n := d.decompress()
		d.distribute(offset, n, scaleAlpha)
		offset += n

		// The declared size is authoritative, regardless of how many
		// bytes decompression actually consumed.
		d.pos = start + size
	}
}

// decompress run-length decodes one block into the scratch buffer and
// returns the number of bytes written. The control byte is a signed count:
// 0 ends the block, positive repeats the next byte that many times and
// negative copies that many literal bytes.
func (d *decoder) decompress() int {
	w := 0

	for d.pos >= 0 && d.pos < len(d.data) {
		ctrl := d.data[d.pos]
		d.pos++

		switch {
		case ctrl == 0:
			return w
		case ctrl <= 127:
			if d.pos >= len(d.data) {
				return w
			}
			v := d.data[d.pos]
			d.pos++
			for i := 0; i < int(ctrl) && w < len(d.temp); i++ {
				d.temp[w] = v
				w++
			}
		default:
			for i := 256 - int(ctrl); i > 0; i-- {
				if d.pos >= len(d.data) || w >= len(d.temp) {
					return w
				}
				d.temp[w] = d.data[d.pos]
				d.pos++
				w++
			}
		}
	}

	return w
}

// distribute splits n decompressed bytes into four planar sub-channels of
// n/4 bytes each and interleaves them into the output buffer starting at
// offset. Block regions are contiguous in the output, so offset need not be
// pixel aligned. Writes stop silently at either buffer's end.
func (d *decoder) distribute(offset, n int, scaleAlpha bool) {
	read := 0
	perSub := n >> 2

	for sub := 0; sub < numSubChannels; sub++ {
		dst := offset + sub
		for i := 0; i < perSub; i++ {
			if dst < PixelBytes && read < n {
				d.result[dst] = d.temp[read]
				read++
				if sub == alphaChannel {
					d.finishPixel(dst, scaleAlpha)
				}
			}
			dst += 4
		}
	}
}

// finishPixel runs once per pixel, right after its alpha byte lands at a:
// boost the alpha from the neighbouring color byte if requested, then swap
// the stored BGR order to RGB.
func (d *decoder) finishPixel(a int, scaleAlpha bool) {
	if scaleAlpha && d.result[a-1] != 0 {
		p := int(d.result[a-1])
		if sq := p * p; sq > 255 {
			d.result[a] = 255
		} else {
			d.result[a] = byte(sq >> 1)
		}
	}
	d.result[a-3], d.result[a-1] = d.result[a-1], d.result[a-3]
}

// Decode reads a ZBP brush file from r and returns its embedded thumbnail
// as an image.Image. At most HeaderSize bytes are read. Alpha scaling is
// applied, matching how brush presets are displayed.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, HeaderSize))
	if err != nil {
		return nil, err
	}

	pix, err := Extract(data, true)
	if err != nil {
		return nil, err
	}

	return &image.NRGBA{
		Pix:    pix,
		Stride: Width * 4,
		Rect:   image.Rect(0, 0, Width, Height),
	}, nil
}

// DecodeConfig returns the color model and dimensions of the embedded
// thumbnail without decoding it. It reads just enough of r to verify that
// a supported thumbnail is present.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(headerSkip+scanWindow+len(magic))))
	if err != nil {
		return image.Config{}, err
	}

	d := decoder{data: data}
	if err := d.locate(); err != nil {
		return image.Config{}, err
	}

	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      Width,
		Height:     Height,
	}, nil
}
