package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPackPtrLen(t *testing.T) {
	t.Parallel()

	packed := PackPtrLen(0x10, 0x20)
	assert.Equal(t, uint64(0x10)<<32|0x20, packed)

	ptr, length := UnpackPtrLen(packed)
	assert.Equal(t, uint32(0x10), ptr)
	assert.Equal(t, uint32(0x20), length)
}

func TestPackPtrLen_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ptr := rapid.Uint32().Draw(t, "ptr")
		length := rapid.Uint32().Draw(t, "length")

		gotPtr, gotLen := UnpackPtrLen(PackPtrLen(ptr, length))
		if gotPtr != ptr || gotLen != length {
			t.Fatalf("round trip mismatch: (%d,%d) -> (%d,%d)", ptr, length, gotPtr, gotLen)
		}
	})
}
