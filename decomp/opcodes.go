package decomp

// OpKind is the canonicalized instruction variant after opcode remapping
// (§6.4) has been applied to the raw byte. Unlike the raw byte, an OpKind
// has a fixed, build-time meaning.
type OpKind int

const (
	OpPop OpKind = iota
	OpDup
	OpPushImm8
	OpPushImm16
	OpPushImm32
	OpPushStr

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpBitNot
	OpBitAnd
	OpBitOr
	OpXor
	OpShl
	OpShr

	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe

	OpLogicAnd
	OpLogicOr
	OpLogicNot

	OpGlbGet
	OpGlbSet
	OpGlbSetPop
	OpGlbPreInc
	OpGlbPreDec
	OpGlbPostInc
	OpGlbPostDec
	OpGlbAdd
	OpGlbSub
	OpGlbMul
	OpGlbDiv
	OpGlbMod
	OpGlbShl
	OpGlbShr
	OpGlbBitAnd
	OpGlbBitOr
	OpGlbBitXor

	OpJmp
	OpJez
	OpJmp32

	OpOnInit
	OpOnInteractL
	OpOnInteractR
	OpOnKey
	OpOnCombine

	OpExit
	OpQuit

	OpTick
	OpToFifo

	// Domain opcodes: each pops one value, and if it symbolically
	// evaluates to a known string constant, records a typed
	// cross-reference against it (§4.3 "Cross-reference emission").
	OpSetCursor
	OpSetPicture
	OpSetAnimation
	OpSetRegion
	OpSetCharacter
	OpAddObject
	OpInventoryAdd
	OpDialogueText
	OpSetSound
	OpSetDisplayName
	OpGlobalReadRef
	OpGlobalWriteRef

	// OpUnkPlaceholder stands in for opcodes whose raw byte is observed
	// but whose effect has not been reverse-engineered. They decode
	// cleanly (zero immediate, zero stack effect, non-terminating) and
	// surface as a visible placeholder comment rather than aborting
	// analysis, matching the partially-understood texture of the
	// original opcode table.
	OpUnkPlaceholder

	opKindCount
)

// OpMeta is the static, build-time metadata for one OpKind: immediate
// layout and stack arity (§3 "Instruction"), plus whether the
// instruction is a terminator (§4.2).
type OpMeta struct {
	Name       string
	ImmSize    int // bytes of immediate following the opcode byte: 0, 1, 2 or 4
	StackIn    int
	StackOut   int
	Terminator bool
}

var opMeta [opKindCount]OpMeta

func registerOp(k OpKind, name string, immSize, in, out int, terminator bool) {
	opMeta[k] = OpMeta{Name: name, ImmSize: immSize, StackIn: in, StackOut: out, Terminator: terminator}
}

func init() {
	registerOp(OpPop, "Pop", 0, 1, 0, false)
	registerOp(OpDup, "Dup", 0, 1, 2, false)
	registerOp(OpPushImm8, "PushImm8", 1, 0, 1, false)
	registerOp(OpPushImm16, "PushImm16", 2, 0, 1, false)
	registerOp(OpPushImm32, "PushImm32", 4, 0, 1, false)
	registerOp(OpPushStr, "PushStr", 2, 0, 1, false)

	registerOp(OpAdd, "Add", 0, 2, 1, false)
	registerOp(OpSub, "Sub", 0, 2, 1, false)
	registerOp(OpMul, "Mul", 0, 2, 1, false)
	registerOp(OpDiv, "Div", 0, 2, 1, false)
	registerOp(OpMod, "Mod", 0, 2, 1, false)
	registerOp(OpNeg, "Neg", 0, 1, 1, false)
	registerOp(OpBitNot, "BitNot", 0, 1, 1, false)
	registerOp(OpBitAnd, "BitAnd", 0, 2, 1, false)
	registerOp(OpBitOr, "BitOr", 0, 2, 1, false)
	registerOp(OpXor, "Xor", 0, 2, 1, false)
	registerOp(OpShl, "Shl", 0, 2, 1, false)
	registerOp(OpShr, "Shr", 0, 2, 1, false)

	registerOp(OpEq, "Eq", 0, 2, 1, false)
	registerOp(OpNe, "Ne", 0, 2, 1, false)
	registerOp(OpLt, "Lt", 0, 2, 1, false)
	registerOp(OpGt, "Gt", 0, 2, 1, false)
	registerOp(OpLe, "Le", 0, 2, 1, false)
	registerOp(OpGe, "Ge", 0, 2, 1, false)

	registerOp(OpLogicAnd, "LogicAnd", 0, 2, 1, false)
	registerOp(OpLogicOr, "LogicOr", 0, 2, 1, false)
	registerOp(OpLogicNot, "LogicNot", 0, 1, 1, false)

	registerOp(OpGlbGet, "GlbGet", 1, 0, 1, false)
	registerOp(OpGlbSet, "GlbSet", 1, 1, 1, false)
	registerOp(OpGlbSetPop, "GlbSetPop", 1, 1, 0, false)
	registerOp(OpGlbPreInc, "GlbPreInc", 1, 0, 1, false)
	registerOp(OpGlbPreDec, "GlbPreDec", 1, 0, 1, false)
	registerOp(OpGlbPostInc, "GlbPostInc", 1, 0, 1, false)
	registerOp(OpGlbPostDec, "GlbPostDec", 1, 0, 1, false)
	registerOp(OpGlbAdd, "GlbAdd", 1, 1, 0, false)
	registerOp(OpGlbSub, "GlbSub", 1, 1, 0, false)
	registerOp(OpGlbMul, "GlbMul", 1, 1, 0, false)
	registerOp(OpGlbDiv, "GlbDiv", 1, 1, 0, false)
	registerOp(OpGlbMod, "GlbMod", 1, 1, 0, false)
	registerOp(OpGlbShl, "GlbShl", 1, 1, 0, false)
	registerOp(OpGlbShr, "GlbShr", 1, 1, 0, false)
	registerOp(OpGlbBitAnd, "GlbBitAnd", 1, 1, 0, false)
	registerOp(OpGlbBitOr, "GlbBitOr", 1, 1, 0, false)
	registerOp(OpGlbBitXor, "GlbBitXor", 1, 1, 0, false)

	registerOp(OpJmp, "Jmp", 2, 0, 0, true)
	registerOp(OpJez, "Jez", 2, 1, 0, true)
	registerOp(OpJmp32, "Jmp32", 4, 0, 0, true)

	registerOp(OpOnInit, "OnInit", 2, 0, 0, true)
	registerOp(OpOnInteractL, "OnInteractL", 2, 0, 0, true)
	registerOp(OpOnInteractR, "OnInteractR", 2, 0, 0, true)
	registerOp(OpOnKey, "OnKey", 2, 0, 0, true)
	registerOp(OpOnCombine, "OnCombine", 2, 0, 0, true)

	registerOp(OpExit, "Exit", 0, 0, 0, true)
	registerOp(OpQuit, "Quit", 0, 0, 0, true)

	registerOp(OpTick, "Tick", 0, 0, 0, false)
	registerOp(OpToFifo, "ToFifo", 0, 1, 0, false)

	registerOp(OpSetCursor, "SetCursor", 0, 1, 0, false)
	registerOp(OpSetPicture, "SetPicture", 0, 1, 0, false)
	registerOp(OpSetAnimation, "SetAnimation", 0, 1, 0, false)
	registerOp(OpSetRegion, "SetRegion", 0, 1, 0, false)
	registerOp(OpSetCharacter, "SetCharacter", 0, 1, 0, false)
	registerOp(OpAddObject, "AddObject", 0, 1, 0, false)
	registerOp(OpInventoryAdd, "InventoryAdd", 0, 1, 0, false)
	registerOp(OpDialogueText, "DialogueText", 0, 1, 0, false)
	registerOp(OpSetSound, "SetSound", 0, 1, 0, false)
	registerOp(OpSetDisplayName, "SetDisplayName", 0, 1, 0, false)
	registerOp(OpGlobalReadRef, "GlobalReadRef", 0, 1, 1, false)
	registerOp(OpGlobalWriteRef, "GlobalWriteRef", 0, 2, 0, false)

	registerOp(OpUnkPlaceholder, "Unk", 0, 0, 0, false)
}

// Meta returns the static metadata for an OpKind.
func (k OpKind) Meta() OpMeta { return opMeta[k] }

// byteToKind maps a canonical (post-remap) opcode byte to its OpKind.
// A byte with no entry is a genuinely unrecognized opcode (§4.2 step 1:
// "Unknown opcode ⇒ MalformedCode").
var byteToKind = map[byte]OpKind{}

func mapByte(b byte, k OpKind) { byteToKind[b] = k }

func init() {
	mapByte(0x00, OpPop)
	mapByte(0x01, OpDup)
	mapByte(0x02, OpPushImm8)
	mapByte(0x03, OpPushImm16)
	mapByte(0x04, OpPushImm32)
	mapByte(0x37, OpPushStr)

	mapByte(0x05, OpAdd)
	mapByte(0x06, OpSub)
	mapByte(0x07, OpMul)
	mapByte(0x08, OpDiv)
	mapByte(0x09, OpMod)
	mapByte(0x0A, OpNeg)
	mapByte(0x0B, OpBitNot)
	mapByte(0x0C, OpExit) // scenario 1: code [0x0C] is a lone Exit.
	mapByte(0x0D, OpQuit)
	mapByte(0x0E, OpBitAnd)
	mapByte(0x0F, OpBitOr)
	mapByte(0x10, OpXor)
	mapByte(0x11, OpShl)
	mapByte(0x12, OpShr)

	mapByte(0x13, OpEq)
	mapByte(0x14, OpNe)
	mapByte(0x15, OpLt)
	mapByte(0x16, OpGt)
	mapByte(0x17, OpLe)
	mapByte(0x18, OpGe)

	mapByte(0x19, OpLogicAnd)
	mapByte(0x1A, OpLogicOr)
	mapByte(0x1B, OpLogicNot)

	mapByte(0x1C, OpGlbGet)
	mapByte(0x1D, OpGlbSet)
	mapByte(0x1E, OpGlbSetPop)
	mapByte(0x1F, OpGlbPreInc)
	mapByte(0x20, OpGlbPreDec)
	mapByte(0x21, OpGlbPostInc)
	mapByte(0x22, OpGlbPostDec)
	mapByte(0x23, OpGlbAdd)
	mapByte(0x24, OpGlbSub)
	mapByte(0x25, OpGlbMul)
	mapByte(0x26, OpGlbDiv)
	mapByte(0x27, OpGlbMod)
	mapByte(0x28, OpGlbShl)
	mapByte(0x29, OpGlbShr)
	mapByte(0x2A, OpGlbBitAnd)
	mapByte(0x2B, OpGlbBitOr)
	mapByte(0x2C, OpGlbBitXor)

	mapByte(0x2D, OpJmp)
	mapByte(0x2E, OpJez)
	mapByte(0x2F, OpJmp32)

	mapByte(0x30, OpOnInit)
	mapByte(0x31, OpOnInteractL)
	mapByte(0x32, OpOnInteractR)
	mapByte(0x33, OpOnKey)
	mapByte(0x34, OpOnCombine)

	mapByte(0x35, OpTick)
	mapByte(0x36, OpToFifo)

	mapByte(0x40, OpSetCursor)
	mapByte(0x41, OpSetPicture)
	mapByte(0x42, OpSetAnimation)
	mapByte(0x43, OpSetRegion)
	mapByte(0x44, OpSetCharacter)
	mapByte(0x45, OpAddObject)
	mapByte(0x46, OpInventoryAdd)
	mapByte(0x47, OpDialogueText)
	mapByte(0x48, OpSetSound)
	mapByte(0x49, OpSetDisplayName)
	mapByte(0x4A, OpGlobalReadRef)
	mapByte(0x4B, OpGlobalWriteRef)

	// A block of bytes recognized on the wire, with known (empty)
	// immediate/stack shape, but unknown effect. These came up in
	// captured scripts during reverse-engineering but were never
	// pinned down; they decode as no-op placeholders rather than
	// aborting the whole object.
	for b := byte(0x50); b <= 0x6F; b++ {
		mapByte(b, OpUnkPlaceholder)
	}
}

// lookupOp resolves a canonical (post-remap) byte to its OpKind. The
// bool is false for a byte with no known mapping at all.
func lookupOp(b byte) (OpKind, bool) {
	k, ok := byteToKind[b]
	return k, ok
}

// RemapTable is a §6.4 opcode remap: a 256-entry table mapping a raw
// on-disk opcode byte to the canonical byte this build's opTable
// understands. Unmapped bytes map to themselves by construction.
type RemapTable [256]byte

func identityTable() RemapTable {
	var t RemapTable
	for i := range t {
		t[i] = byte(i)
	}
	return t
}

// RemapIdentity performs no remapping: the on-disk byte is already
// canonical.
var RemapIdentity = identityTable()

// RemapPermutationA rotates each of four consecutive 64-byte ranges
// within itself by +59, +35, +42, -204 (mod 64) respectively, per the
// source's documented permutation; every byte stays in its own range,
// so the table is a bijection.
var RemapPermutationA = buildPermutationA()

func buildPermutationA() RemapTable {
	t := identityTable()
	deltas := [4]int{59, 35, 42, -204}
	for band := 0; band < 4; band++ {
		delta := deltas[band]
		for i := 0; i < 64; i++ {
			b := band*64 + i
			t[b] = byte(band*64 + ((i+delta)%64+64)%64)
		}
	}
	return t
}

// RemapPermutationB is identity except for a handful of entries forced
// into the 0xF8-0xFA range, per the source's documented permutation.
var RemapPermutationB = buildPermutationB()

func buildPermutationB() RemapTable {
	t := identityTable()
	forced := map[byte]byte{
		0x3D: 0xF8,
		0x3E: 0xF9,
		0x3F: 0xFA,
	}
	for from, to := range forced {
		t[from] = to
	}
	return t
}
