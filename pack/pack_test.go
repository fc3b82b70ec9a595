package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmdtoolbox/zbp/thumb"
)

func testPixels(fill byte) []byte {
	pix := make([]byte, thumb.PixelBytes)
	for i := range pix {
		pix[i] = fill
	}
	return pix
}

func TestRoundTrip(t *testing.T) {
	db := New()

	require.NoError(t, db.Set("Move", 200, testPixels(0x22)))
	require.NoError(t, db.Set("Clay", 100, testPixels(0x11)))
	require.Equal(t, 2, db.Length())

	b, err := db.MarshalBinary()
	require.NoError(t, err)

	got := New()
	require.NoError(t, got.UnmarshalBinary(b))
	require.Equal(t, 2, got.Length())
	assert.Equal(t, []string{"Clay", "Move"}, got.Names())

	e, ok := got.Entry("Clay")
	require.True(t, ok)
	assert.Equal(t, int64(100), e.MTime)
	assert.Equal(t, testPixels(0x11), e.Pix)

	e, ok = got.Entry("Move")
	require.True(t, ok)
	assert.Equal(t, int64(200), e.MTime)
	assert.Equal(t, testPixels(0x22), e.Pix)
}

func TestSetDuplicate(t *testing.T) {
	db := New()

	require.NoError(t, db.Set("Clay", 100, testPixels(0x11)))
	require.NoError(t, db.Set("Clay", 200, testPixels(0x22)))
	require.Equal(t, 1, db.Length())

	// First occurrence wins.
	e, ok := db.Entry("Clay")
	require.True(t, ok)
	assert.Equal(t, int64(100), e.MTime)
	assert.Equal(t, testPixels(0x11), e.Pix)
}

func TestSetWrongLength(t *testing.T) {
	db := New()
	assert.Error(t, db.Set("Clay", 100, make([]byte, 16)))
}

func TestEntryMissing(t *testing.T) {
	db := New()
	_, ok := db.Entry("Clay")
	assert.False(t, ok)
}

func TestUnmarshalBadInput(t *testing.T) {
	tables := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"badMagic", []byte{'N', 'O', 'P', 'E', 1, 0, 0, 0, 0, 0}},
		{"badVersion", []byte{'Z', 'B', 'P', 'K', 9, 0, 0, 0, 0, 0}},
		{"truncated", []byte{'Z', 'B', 'P', 'K', 1, 0, 1, 0, 0, 0, 4, 0, 'C', 'l', 'a', 'y'}},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Error(t, New().UnmarshalBinary(table.data))
		})
	}
}
