package decomp

// Result is the product of decompiling a single code object: the
// reconstructed statement list, its rendered pseudo-code, the CFG it
// was derived from (kept for callers that want block-level detail),
// and the cross-references discovered along the way.
type Result struct {
	Statements []AstToken
	Rendered   string
	CFG        *CFG
	Xrefs      []Xref
	Err        error
	ErrOffset  int
}

// Decompile runs the full C1-C5 pipeline against raw object bytes:
// parse the preamble, symbolically interpret the code, build the CFG
// and post-dominators, walk the CFG into a structural AST, and render
// it to pseudo-code text.
func Decompile(raw []byte, cfg Config) *Result {
	co, err := ParseCodeObject(raw, cfg)
	if err != nil {
		return &Result{Err: err}
	}

	ir := Interpret(co, cfg)
	if ir.Err != nil {
		return &Result{Err: ir.Err, ErrOffset: ir.ErrOffset, Xrefs: ir.Xrefs}
	}

	g := BuildCFG(ir.Tokens, ir.Edges, ir.Leaders, ir.InstrLen)
	stmts := Walk(g)

	return &Result{
		Statements: stmts,
		Rendered:   Render(stmts),
		CFG:        g,
		Xrefs:      ir.Xrefs,
	}
}
