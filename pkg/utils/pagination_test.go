package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		window  PageWindow
		total   int64
		offset  int
		pages   int
		hasNext bool
	}{
		{PageWindow{Page: 1, PerPage: 10}, 0, 0, 0, false},
		{PageWindow{Page: 1, PerPage: 10}, 10, 0, 1, false},
		{PageWindow{Page: 1, PerPage: 10}, 11, 0, 2, true},
		{PageWindow{Page: 3, PerPage: 5}, 11, 10, 3, false},
		{PageWindow{Page: 0, PerPage: 5}, 11, 0, 3, true},
		{PageWindow{Page: 2, PerPage: 0}, 11, 0, 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.offset, tt.window.Offset(), "%+v offset", tt.window)
		assert.Equal(t, tt.pages, tt.window.Pages(tt.total), "%+v pages of %d", tt.window, tt.total)
		assert.Equal(t, tt.hasNext, tt.window.HasNext(tt.total), "%+v has next of %d", tt.window, tt.total)
	}
}
