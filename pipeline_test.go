package zbp

import (
	"bytes"
	"encoding/binary"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmdtoolbox/zbp/thumb"
)

// brushData builds a minimal valid brush file: a 200-byte header with the
// thumbnail magic and a v4 block table, followed by four RLE blocks each
// painting 100 bytes of 0xff.
func brushData() []byte {
	var b bytes.Buffer

	b.Write(make([]byte, 194))
	b.WriteByte(4)
	b.Write(make([]byte, 5))
	b.Write([]byte{0x00, 0x90, 0x00, 0x00, 0x04, 0x00, 0x80, 0x01})

	blk := []byte{100, 0xff, 0}
	size := int16(len(blk))
	binary.Write(&b, binary.LittleEndian, [4]int16{size, size, size, size})
	for i := 0; i < 4; i++ {
		b.Write(blk)
	}
	b.WriteByte(0)

	return b.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testBrowser(t *testing.T) *Browser {
	b, err := New(filepath.Join(t.TempDir(), "zbp.db"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Clay", "ClayBuildup.zbp"), brushData())
	writeFile(t, filepath.Join(dir, "Clay", "ClayTubes.ZBP"), brushData())
	writeFile(t, filepath.Join(dir, "Clay", "notes.txt"), []byte("not a brush"))
	writeFile(t, filepath.Join(dir, ".hidden", "Secret.zbp"), brushData())

	b := testBrowser(t)
	require.NoError(t, b.Scan(dir))

	brushes, err := b.Brushes(false)
	require.NoError(t, err)
	require.Len(t, brushes, 2)
	assert.Equal(t, "ClayBuildup", brushes[0].Name)
	assert.Equal(t, "ClayTubes", brushes[1].Name)
	assert.Equal(t, "Clay", brushes[0].Category)

	pix, err := b.Thumbnail(brushes[0].Path)
	require.NoError(t, err)
	require.Len(t, pix, thumb.PixelBytes)
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 400), pix[:400])
	assert.Equal(t, make([]byte, thumb.PixelBytes-400), pix[400:])
}

func TestScanNoThumbnail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Broken.zbp"), make([]byte, 1000))

	b := testBrowser(t)
	require.NoError(t, b.Scan(dir))

	// Indexed, but with nothing cached.
	brushes, err := b.Brushes(false)
	require.NoError(t, err)
	require.Len(t, brushes, 1)

	pix, err := b.Thumbnail(brushes[0].Path)
	require.NoError(t, err)
	assert.Nil(t, pix)
}

func TestScanTwice(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Clay.zbp"), brushData())

	b := testBrowser(t)
	require.NoError(t, b.Scan(dir))
	require.NoError(t, b.Scan(dir))

	brushes, err := b.Brushes(false)
	require.NoError(t, err)
	assert.Len(t, brushes, 1)
}

func TestScanInstall(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ZBrushes", "Clay", "Clay.zbp"), brushData())
	writeFile(t, filepath.Join(root, "ZData", "BrushPresets", "Move.zbp"), brushData())
	writeFile(t, filepath.Join(root, "ZOther", "Skip.zbp"), brushData())

	b := testBrowser(t)
	require.NoError(t, b.ScanInstall(root))

	brushes, err := b.Brushes(false)
	require.NoError(t, err)
	require.Len(t, brushes, 2)
	assert.Equal(t, "Clay", brushes[0].Name)
	assert.Equal(t, "Move", brushes[1].Name)
}
