package decomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBatchAppliesPatcherBeforeDecompiling proves a supplied Patcher
// replaces an entry's bytes before Batch ever decompiles it: the
// unpatched object is Tick;Exit (two statements), the patcher turns
// the leading Tick into a second Exit (one statement), matching §6.5's
// "decomp itself never sees unpatched bytes" requirement.
func TestBatchAppliesPatcherBeforeDecompiling(t *testing.T) {
	raw := buildObject(t, []byte{0x35, 0x0C}, nil) // Tick; Exit
	store := ObjectStore{"obj": {Kind: EntryCode, Code: raw}}

	patched := false
	patcher := Patcher(func(key string, b []byte) []byte {
		if key != "obj" {
			return b
		}
		patched = true
		out := make([]byte, len(b))
		copy(out, b)
		out[offCodeStart] = 0x0C // Exit, replacing Tick
		return out
	})

	result := Batch(store, BatchOptions{Config: DefaultConfig(), Patcher: patcher})
	require.True(t, patched)
	require.Len(t, result.Objects, 1)

	obj := result.Objects[0]
	require.NotNil(t, obj.Result)
	require.NoError(t, obj.Result.Err)
	require.Len(t, obj.Result.Statements, 1)
	require.Equal(t, TagExit, obj.Result.Statements[0].Tag)

	require.Equal(t, byte(0x0C), result.Store["obj"].Code[offCodeStart])
}

func TestBatchWithoutPatcherLeavesEntriesUnchanged(t *testing.T) {
	raw := buildObject(t, []byte{0x35, 0x0C}, nil)
	store := ObjectStore{"obj": {Kind: EntryCode, Code: raw}}

	result := Batch(store, BatchOptions{Config: DefaultConfig()})
	require.Len(t, result.Objects[0].Result.Statements, 2)
}
