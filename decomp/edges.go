package decomp

// EdgeKind discriminates a JumpEdge's semantic origin (§3 "Jump edge").
type EdgeKind int

const (
	EdgeStraight EdgeKind = iota // implicit fallthrough
	EdgeUnconditional
	EdgeConditional
	EdgeOnInit
	EdgeOnInteract
	EdgeOnKey
	EdgeOnCombine
	EdgeUnknown
)

// JumpEdge is an outgoing control-flow edge recorded at the offset of
// the instruction that produced it.
type JumpEdge struct {
	From        int
	To          int
	ToIsEnd     bool
	Kind        EdgeKind
	Test        string // Conditional: the branch test's rendered text
	Which       string // OnInteract: "L" or "R"
	KeyExpr     string // OnKey
	ItemExpr    string // OnCombine
	OpByte      byte   // Unknown
	Fallthrough bool   // the edge to the next instruction, taken when the jump is not (Jez: the tested value is non-zero)
}
