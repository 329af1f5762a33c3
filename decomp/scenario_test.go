package decomp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 1: a lone Exit.
func TestScenarioImmediateExit(t *testing.T) {
	raw := buildObject(t, []byte{0x0C}, nil)
	res := Decompile(raw, DefaultConfig())
	require.NoError(t, res.Err)
	require.Len(t, res.Statements, 1)
	require.Equal(t, TagExit, res.Statements[0].Tag)
	require.Contains(t, res.Rendered, "exit")
}

// Scenario 2: push 1; Jez over a single Tick; then Exit.
func TestScenarioConditionalSkip(t *testing.T) {
	// byte layout:
	// 0: PushImm8 1         -> 02 01
	// 2: Jez <imm16>        -> 2E xx xx   (target = 2+imm+3)
	// 5: Tick               -> 35
	// 6: Exit                -> 0C
	// Jez should jump to offset 6 (skip the Tick) when false.
	// target = pos + imm + 3 = 2 + imm + 3 = 6  => imm = 1
	code := []byte{0x02, 0x01, 0x2E, 0x01, 0x00, 0x35, 0x0C}
	raw := buildObject(t, code, nil)
	res := Decompile(raw, DefaultConfig())
	require.NoError(t, res.Err)

	require.Len(t, res.Statements, 2)
	chain := res.Statements[0]
	require.Equal(t, TagChain, chain.Tag)
	require.Len(t, chain.Branches, 1)
	br := chain.Branches[0]
	require.True(t, br.Fallthrough)
	require.Equal(t, "if (1)", br.Cond)
	require.Len(t, br.Body, 1)
	require.Equal(t, TagTick, br.Body[0].Tag)

	require.Equal(t, TagExit, res.Statements[1].Tag)
	require.Contains(t, res.Rendered, "exit")
}

// Scenario 3: infinite tick loop folds into a single wait-while line.
func TestScenarioWaitWhileLoop(t *testing.T) {
	// Layout:
	// 0: PushImm8 1        02 01
	// 2: Jez L_end         2E imm16   (false -> exit loop, true -> fall to Tick)
	// 5: Tick              35
	// 6: Jmp L_test        2D imm16   (back edge to offset 0)
	// 9: Exit              0C        (L_end, a real instruction so the
	//                                  Jez target is interpretable)
	//
	// Jez: target = 2 + imm + 3 = 9  => imm = 4
	// Jmp: target = 6 + imm + 3 = 0  => imm = -9
	code := []byte{
		0x02, 0x01,
		0x2E, 0x04, 0x00,
		0x35,
		0x2D, 0xF7, 0xFF, // -9 as int16
		0x0C,
	}
	raw := buildObject(t, code, nil)
	res := Decompile(raw, DefaultConfig())
	require.NoError(t, res.Err)

	require.Len(t, res.Statements, 2)
	require.Equal(t, TagLine, res.Statements[0].Tag)
	require.Equal(t, "wait while 1", res.Statements[0].Text)
	require.Equal(t, TagExit, res.Statements[1].Tag)
}

// Scenario 4: a cascade of four "global[0]==k" comparisons, each
// guarding a Tick and falling through to the next comparison on
// failure, flattens via nestedChainMerge into one Chain carrying all
// four branches instead of three nested ifs.
func TestScenarioCascadingComparisonFlattening(t *testing.T) {
	// Each branch: GlbGet X; PushImm8 k; Eq; Jez next_test; <body: Tick>; Jmp end
	// For simplicity every body is a single Tick and every branch after a
	// failed test falls through to the next comparison; the last
	// comparison's false edge goes straight to end.
	//
	// This builds: if (global[0]==0) {tick} else if (==1) {tick} else if
	// (==2) {tick} else if (==3) {tick}
	var code []byte
	var jezFixups []int // offset of imm16 needing patch to "next test start"
	testStarts := make([]int, 4)

	for k := 0; k < 4; k++ {
		testStarts[k] = len(code)
		code = append(code, 0x1C, 0x00) // GlbGet 0
		code = append(code, 0x02, byte(k)) // PushImm8 k
		code = append(code, 0x13) // Eq
		jezPos := len(code)
		code = append(code, 0x2E, 0x00, 0x00) // Jez <patched>
		jezFixups = append(jezFixups, jezPos)
		code = append(code, 0x35) // Tick
		// Jmp to end patched later
		code = append(code, 0x2D, 0x00, 0x00)
	}
	end := len(code)

	// Patch each branch's Jez to land on the next branch's test start
	// (or `end` for the last), and each Tick's trailing Jmp to `end`.
	for k := 0; k < 4; k++ {
		jezPos := jezFixups[k]
		var target int
		if k == 3 {
			target = end
		} else {
			target = testStarts[k+1]
		}
		imm := int16(target - jezPos - 3)
		code[jezPos+1] = byte(imm)
		code[jezPos+2] = byte(imm >> 8)

		jmpPos := jezPos + 1 + 2 + 1 // after Jez(3 bytes) + Tick(1 byte)
		imm = int16(end - jmpPos - 3)
		code[jmpPos+1] = byte(imm)
		code[jmpPos+2] = byte(imm >> 8)
	}

	raw := buildObject(t, code, nil)
	res := Decompile(raw, DefaultConfig())
	require.NoError(t, res.Err)
	require.Len(t, res.Statements, 1)
	require.Equal(t, TagChain, res.Statements[0].Tag)
	require.Len(t, res.Statements[0].Branches, 4)
	for k, br := range res.Statements[0].Branches {
		require.True(t, br.Fallthrough)
		require.Contains(t, br.Cond, "global[0]")
		require.Len(t, br.Body, 1)
		require.Equal(t, TagTick, br.Body[0].Tag)
		_ = k
	}
}

// Scenario 5: early-exit splitting. A two-branch chain where the
// non-fallthrough body is a bare Exit; the fallthrough body's
// statements are spliced out as siblings rather than nested in the if.
func TestScenarioEarlyExitSplitting(t *testing.T) {
	// 0: PushImm8 1     02 01
	// 2: Jez L_exit     2E imm16   (true -> fall to Tick at 5; false -> jump to L_exit)
	// 5: Tick           35          (fallthrough: "rest")
	// 6: Exit           0C          (rest's own exit)
	// 7: Exit           0C          (L_exit, the early-exit branch's own exit)
	code := []byte{0x02, 0x01, 0x2E, 0x00, 0x00, 0x35, 0x0C, 0x0C}
	imm := int16(7 - 2 - 3)
	code[3] = byte(imm)
	code[4] = byte(imm >> 8)

	raw := buildObject(t, code, nil)
	res := Decompile(raw, DefaultConfig())
	require.NoError(t, res.Err)

	require.Len(t, res.Statements, 3)
	require.Equal(t, TagChain, res.Statements[0].Tag)
	require.Len(t, res.Statements[0].Branches, 1)
	require.False(t, res.Statements[0].Branches[0].Fallthrough)
	require.Equal(t, TagExit, res.Statements[0].Branches[0].Body[0].Tag)
	require.Equal(t, TagTick, res.Statements[1].Tag)
	require.Equal(t, TagExit, res.Statements[2].Tag)
}

// Scenario 6: pushing a string constant then AddObject records a Code
// xref, synthesizing a Dummy entry for the unseen target.
func TestScenarioCrossReferenceDiscovery(t *testing.T) {
	code := []byte{0x37, 0x00, 0x00, 0x45, 0x0C} // PushStr 0; AddObject; Exit
	raw := buildObject(t, code, []string{"foo"})
	res := Decompile(raw, DefaultConfig())
	require.NoError(t, res.Err)
	require.Len(t, res.Xrefs, 1)
	require.Equal(t, "foo", res.Xrefs[0].OtherKey)
	require.Equal(t, XrefCode, res.Xrefs[0].Kind.Tag)

	store := make(ObjectStore)
	finalizeXrefs(store, map[string][]Xref{"self": res.Xrefs})
	entry, ok := store["foo"]
	require.True(t, ok)
	require.Equal(t, EntryDummy, entry.Kind)
	require.Len(t, entry.BackRefs, 1)
	require.Equal(t, "self", entry.BackRefs[0].FromKey)
	require.Equal(t, XrefCode, entry.BackRefs[0].Kind.Tag)
}

// Scenario 7: two different sources referencing the same target both
// land as typed back-references, and a later stronger-typed xref still
// promotes a Dummy target while preserving the earlier back-reference.
func TestScenarioBackReferencesAccumulateAcrossSources(t *testing.T) {
	store := make(ObjectStore)
	allXrefs := map[string][]Xref{
		"a": {{OtherKey: "shared", Kind: XrefKind{Tag: XrefCode}}},
		"b": {{OtherKey: "shared", Kind: XrefKind{Tag: XrefGlobalRead}}},
	}
	finalizeXrefs(store, allXrefs)

	entry, ok := store["shared"]
	require.True(t, ok)
	require.Equal(t, EntryGlobal, entry.Kind)
	require.Len(t, entry.BackRefs, 2)
	require.Equal(t, "a", entry.BackRefs[0].FromKey)
	require.Equal(t, XrefCode, entry.BackRefs[0].Kind.Tag)
	require.Equal(t, "b", entry.BackRefs[1].FromKey)
	require.Equal(t, XrefGlobalRead, entry.BackRefs[1].Kind.Tag)
}
