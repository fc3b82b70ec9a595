/*
Package thumb implements a decoder for the thumbnail embedded in ZBrush
.ZBP brush preset files.

Every brush file carries a 96 by 96 pixel RGBA preview deep inside its
otherwise unstructured header. The preview is stored as up to four
independently RLE-compressed blocks, each holding four planar sub-channels
that are interleaved into RGBA on output. Two layout variants exist,
selected by a compression version byte found next to an 8-byte magic
pattern: v4 uses four 16-bit block sizes, v5 and later uses two 32-bit
block sizes, and v6 adds a 4-byte prefix to each block. The stored channel
order differs from RGBA, so the decoder swaps two color bytes per pixel,
and the alpha channel may optionally be boosted so dark-background icons
render opaque.

Only the first 37 000 bytes of a file are ever needed.
*/
package thumb

const (
	// Width and Height are the dimensions of every embedded thumbnail.
	// The format supports no other size.
	Width  = 96
	Height = Width

	numPixels = Width * Height

	// PixelBytes is the size of a decoded thumbnail: 96x96 RGBA8.
	PixelBytes = numPixels * 4

	// HeaderSize is how many leading bytes of a brush file the decoder
	// needs. Reading more is harmless, reading less lowers the chance
	// of a successful decode.
	HeaderSize = 37000

	headerSkip = 200
	scanWindow = 40

	// Decompression scratch runs this much past the output size so a
	// final run can spill without being truncated mid-write.
	scratchSlack = 256

	minVersion = 4

	numBlocks      = 4
	numSubChannels = 4

	alphaChannel = 3
)

// magic marks the start of the thumbnail block inside the file header.
var magic = [8]byte{0x00, 0x90, 0x00, 0x00, 0x04, 0x00, 0x80, 0x01}
