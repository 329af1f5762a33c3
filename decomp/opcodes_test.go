package decomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemapIdentity(t *testing.T) {
	for i := 0; i < 256; i++ {
		require.Equal(t, byte(i), RemapIdentity[i])
	}
}

func TestRemapPermutationAIsPermutation(t *testing.T) {
	seen := make(map[byte]bool)
	for i := 0; i < 256; i++ {
		seen[RemapPermutationA[i]] = true
	}
	require.Len(t, seen, 256, "permutation_A must be a bijection over the byte space")
}

func TestRemapPermutationBForcesHighRange(t *testing.T) {
	require.Equal(t, byte(0xF8), RemapPermutationB[0x3D])
	require.Equal(t, byte(0xF9), RemapPermutationB[0x3E])
	require.Equal(t, byte(0xFA), RemapPermutationB[0x3F])
	require.Equal(t, byte(0x00), RemapPermutationB[0x00])
}

func TestLookupOpUnknownByte(t *testing.T) {
	_, ok := lookupOp(0xFF)
	require.False(t, ok)
}

func TestLookupOpExitMatchesScenarioByte(t *testing.T) {
	k, ok := lookupOp(0x0C)
	require.True(t, ok)
	require.Equal(t, OpExit, k)
}

func TestUnkPlaceholderRangeDecodesCleanly(t *testing.T) {
	for b := byte(0x50); b <= 0x6F; b++ {
		k, ok := lookupOp(b)
		require.True(t, ok)
		require.Equal(t, OpUnkPlaceholder, k)
		meta := k.Meta()
		require.Equal(t, 0, meta.ImmSize)
		require.False(t, meta.Terminator)
	}
}
