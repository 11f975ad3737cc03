package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Normalize(t *testing.T) {
	p := Page[string]{Number: 2, TotalPages: 3}
	p.Normalize()
	assert.NotNil(t, p.Content)
	assert.True(t, p.Empty)
	assert.False(t, p.First)
	assert.True(t, p.Last)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		page, total, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 4},
		{99, 5, 4},
		{-1, 5, 0},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.page, tt.total), "Clamp(%d, %d)", tt.page, tt.total)
	}
}

func TestNavFor(t *testing.T) {
	nav := NavFor(0, 3)
	assert.Equal(t, 1, nav.DisplayPage)
	assert.False(t, nav.HasPrev)
	assert.True(t, nav.HasNext)
	assert.Equal(t, 0, nav.PrevPage)
	assert.Equal(t, 1, nav.NextPage)

	last := NavFor(7, 3)
	assert.Equal(t, 3, last.DisplayPage)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)
	assert.Equal(t, 2, last.NextPage)
}
