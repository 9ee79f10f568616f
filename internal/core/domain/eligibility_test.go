package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNextOrderFree(t *testing.T) {
	tests := []struct {
		count int
		want  bool
	}{
		{-1, false},
		{0, false},
		{3, false},
		{4, true},
		{5, false},
		{8, false},
		{9, true},
		{14, true},
		{99, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNextOrderFree(tt.count), "order_count=%d", tt.count)
	}
}

func TestIsNextOrderFree_FifthOfEveryFive(t *testing.T) {
	for k := 0; k < 20; k++ {
		free := 0
		for n := 5 * k; n < 5*k+5; n++ {
			if IsNextOrderFree(n) {
				free++
			}
		}
		assert.Equal(t, 1, free, "window starting at %d", 5*k)
	}
}
