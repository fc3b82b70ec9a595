/*
Package sheet composes decoded brush thumbnails into a contact sheet and
encodes it as a GIF, giving a quick visual index of a brush library.

Thumbnails are laid out left to right in fixed 96 by 96 cells; the last row
is padded with empty cells. The GIF palette is reduced with a median-cut
quantizer.
*/
package sheet

const (
	// CellSize is the width and height of one thumbnail cell.
	CellSize = 96

	// DefaultColumns is used when the caller doesn't pick a column count.
	DefaultColumns = 8

	numColors = 256
)
