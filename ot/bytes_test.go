package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorScalars(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	data := []byte{0x01, 0x02, 0xff, 0xfe, 0x00, 0x01, 0x80, 0x00, 'c', 'm', 'a', 'p', 0x40, 0x00}
	c := NewCursor(data, T("test"))
	assert.Equal(t, uint16(0x0102), c.U16())
	assert.Equal(t, int16(-2), c.I16())
	assert.Equal(t, 1.5, c.Fixed())
	assert.Equal(t, T("cmap"), c.Tag())
	assert.Equal(t, 1.0, c.F2Dot14())
	assert.Equal(t, 0, c.Remaining())
	assert.NoError(t, c.Err())
}

func TestCursorErrorsAreSticky(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	c := NewCursor([]byte{0, 7, 0}, T("test")).Section("record")
	assert.Equal(t, uint16(7), c.U16())
	assert.Equal(t, uint16(0), c.U16()) // only 1 byte left
	require.Error(t, c.Err())
	assert.Equal(t, uint8(0), c.U8(), "reads after an error must return zero")
	assert.True(t, errors.Is(c.Err(), ErrFormat))
	var ferr *FontError
	require.True(t, errors.As(c.Err(), &ferr))
	assert.Equal(t, T("test"), ferr.Table)
	assert.Equal(t, "record", ferr.Section)
}

func TestCursorOffsets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	data := []byte{0, 4, 0, 0, 0, 2, 0, 9, 0, 8}
	c := NewCursor(data, T("test"))
	sub := c.At(int(c.U16()))
	assert.Equal(t, []uint16{2, 9, 8}, sub.U16s(3))
	assert.NoError(t, sub.Err())
	assert.Equal(t, 2, c.Pos(), "At must not move the parent cursor")
	bad := c.At(100)
	assert.Error(t, bad.Err())
	assert.NoError(t, c.Err(), "an illegal offset fails the sub-cursor only")
	assert.Error(t, c.Sub(8, 4).Err())
}

func TestCursorRejectsHugeCounts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	c := NewCursor([]byte{0, 1, 0, 2}, T("test"))
	assert.Nil(t, c.U16s(1000))
	assert.Error(t, c.Err())
	c = NewCursor(nil, T("test"))
	assert.Nil(t, c.U16s(-1))
	assert.Error(t, c.Err())
}

func TestLazyMemoizesErrors(t *testing.T) {
	var l Lazy[int]
	calls := 0
	f := func() (int, error) {
		calls++
		return 0, errors.New("boom")
	}
	_, err1 := l.Get(f)
	_, err2 := l.Get(f)
	assert.Error(t, err1)
	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, calls)
	l.Reset()
	v, err := l.Get(func() (int, error) { return 42, nil })
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestTags(t *testing.T) {
	assert.Equal(t, "cmap", T("cmap").String())
	assert.Equal(t, "ab  ", T("ab").String())
	assert.Equal(t, T("ab"), MakeTag([]byte("ab")))
	assert.Equal(t, T("GSUB"), MakeTag([]byte("GSUBX")))
}
