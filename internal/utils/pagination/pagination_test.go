package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := Encode(Cursor{ID: 42, UpdatedMicro: 1700000000123456})
	require.NoError(t, err)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.ID)
	assert.Equal(t, int64(1700000000123456), c.UpdatedMicro)

	empty, err := Decode("")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = Decode("%%%not-base64")
	assert.Error(t, err)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		page, limit      int
		total            int64
		totalPages       int
		hasNext, hasPrev bool
	}{
		{1, 20, 0, 0, false, false},
		{1, 20, 20, 1, false, false},
		{1, 20, 21, 2, true, false},
		{2, 20, 21, 2, false, true},
		{3, 10, 25, 3, false, true},
		{5, 10, 25, 3, false, true},
	}
	for _, tt := range tests {
		p := NewPage(tt.page, tt.limit, tt.total)
		assert.Equal(t, tt.totalPages, p.TotalPages, "%+v", tt)
		assert.Equal(t, tt.hasNext, p.HasNextPage, "%+v", tt)
		assert.Equal(t, tt.hasPrev, p.HasPrevPage, "%+v", tt)
	}
}

func TestWindow(t *testing.T) {
	p := NewPage(2, 10, 25)
	start, end := p.Window(25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	p = NewPage(3, 10, 25)
	start, end = p.Window(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	p = NewPage(9, 10, 25)
	start, end = p.Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}

func TestWindowHugePage(t *testing.T) {
	p := NewPage(1<<62, 4, 7)
	assert.Equal(t, math.MaxInt, p.Offset())

	start, end := p.Window(7)
	assert.Equal(t, 7, start)
	assert.Equal(t, 7, end)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNextPage)

	p = NewPage(math.MaxInt, math.MaxInt, 3)
	start, end = p.Window(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
}

func TestNormalize(t *testing.T) {
	page, limit := Normalize(0, 0, 20, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	_, limit = Normalize(1, 500, 20, 100)
	assert.Equal(t, 100, limit)
}
