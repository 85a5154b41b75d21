package cff

import (
	"bytes"
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRoundTrip(t *testing.T) {
	items := [][]byte{[]byte("abc"), {}, []byte("defgh")}
	enc := EncodeIndex(items, 1)
	assert.Equal(t, fonttest.CFFIndex(items), enc)
	assert.Equal(t, len(enc), IndexSize(items, 1))
	dec, n, err := DecodeIndex(append(enc, 0xff, 0xff), 1)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	require.Len(t, dec, 3)
	assert.Equal(t, "abc", string(dec[0]))
	assert.Empty(t, dec[1])
	assert.Equal(t, "defgh", string(dec[2]))
}

func TestEmptyIndex(t *testing.T) {
	assert.Equal(t, []byte{0, 0}, EncodeIndex(nil, 1))
	assert.Equal(t, []byte{0, 0, 0, 0}, EncodeIndex(nil, 2))
	items, n, err := DecodeIndex([]byte{0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, items)
}

func TestIndexOffsetSizeBoundaries(t *testing.T) {
	// maxOffset is 1 + total size of the items
	for _, tc := range []struct {
		total   int
		offSize byte
	}{
		{254, 1}, {255, 2},
		{65534, 2}, {65535, 3},
		{16777214, 3}, {16777215, 4},
	} {
		items := [][]byte{bytes.Repeat([]byte{'x'}, tc.total-1), {'y'}}
		enc := EncodeIndex(items, 1)
		assert.Equal(t, tc.offSize, enc[2], "total size %d", tc.total)
		assert.Equal(t, len(enc), IndexSize(items, 1))
		dec, n, err := DecodeIndex(enc, 1)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		require.Len(t, dec, 2)
		assert.Equal(t, tc.total-1, len(dec[0]))
		assert.Equal(t, []byte{'y'}, dec[1])
	}
}

func TestIndexVersion2Count(t *testing.T) {
	items := [][]byte{{1}, {2, 3}}
	enc := EncodeIndex(items, 2)
	assert.Equal(t, []byte{0, 0, 0, 2, 1, 1, 2, 4, 1, 2, 3}, enc)
	dec, n, err := DecodeIndex(enc, 2)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, items, dec)
}

func TestIndexCorrupt(t *testing.T) {
	_, _, err := DecodeIndex([]byte{0, 1, 5, 1, 2}, 1) // offset size 5
	assert.Error(t, err)
	_, _, err = DecodeIndex([]byte{0, 1, 1, 1, 9, 'a'}, 1) // item beyond data
	assert.Error(t, err)
	_, _, err = DecodeIndex([]byte{0, 2, 1, 1, 3, 2, 'a', 'b'}, 1) // decreasing offsets
	assert.Error(t, err)
}
