package regionarena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockCount(t *testing.T) {
	assert.Equal(t, 1, blockCount(1, 4*1024*1024))
	assert.Equal(t, 1, blockCount(4*1024*1024, 4*1024*1024))
	assert.Equal(t, 4, blockCount(16*1024*1024, 4*1024*1024))
	assert.Equal(t, 5, blockCount(16*1024*1024+1, 4*1024*1024))
}

func TestBlockMask(t *testing.T) {
	assert.Equal(t, uint64(0b111), blockMask(3, 0))
	assert.Equal(t, uint64(0b111000), blockMask(3, 3))
	assert.Equal(t, uint64(0), blockMask(0, 5))
	assert.Equal(t, ^uint64(0), blockMask(64, 0))
}

func TestGoodCommitSize(t *testing.T) {
	assert.Equal(t, 2*1024*1024, goodCommitSize(1, 2*1024*1024))
	assert.Equal(t, 4*1024*1024, goodCommitSize(4*1024*1024, 2*1024*1024))
	assert.Equal(t, 100, goodCommitSize(100, 0))
}
