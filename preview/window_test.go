package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyRowsPitch(t *testing.T) {
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	dst := make([]byte, 2*12)
	copyRows(dst, 12, src, 8, 2)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0}, dst[:12])
	assert.Equal(t, []byte{9, 10, 11, 12, 13, 14, 15, 16, 0, 0, 0, 0}, dst[12:])
}

func TestCopyRowsShortDestination(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, 4)
	copyRows(dst, 4, src, 4, 2)
	assert.Equal(t, []byte{1, 2, 3, 4}, dst)
}
