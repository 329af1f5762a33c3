package decomp

// walker holds the mutable state threaded through the structural
// reconstruction walk (§4.7): the path of currently-open block IDs (to
// detect continuations to an enclosing header), the set of loop
// headers currently open, and a stack of output levels, one per open
// nesting scope.
type walker struct {
	cfg       *CFG
	path      map[BlockID]bool
	pathLoops map[BlockID]bool
	outStack  [][]AstToken
}

func newWalker(cfg *CFG) *walker {
	return &walker{
		cfg:       cfg,
		path:      make(map[BlockID]bool),
		pathLoops: make(map[BlockID]bool),
		outStack:  [][]AstToken{{}},
	}
}

func (w *walker) emit(tok AstToken) {
	top := len(w.outStack) - 1
	if tok.Tag == TagSequence {
		w.outStack[top] = append(w.outStack[top], tok.Body...)
		return
	}
	w.outStack[top] = append(w.outStack[top], tok)
}

func (w *walker) openLevel() {
	w.outStack = append(w.outStack, []AstToken{})
}

func (w *walker) closeLevel() []AstToken {
	top := len(w.outStack) - 1
	body := w.outStack[top]
	w.outStack = w.outStack[:top]
	return body
}

// Walk runs C4's structural walk starting at the code object's entry
// block and returns the reconstructed top-level statement list.
func Walk(cfg *CFG) []AstToken {
	w := newWalker(cfg)
	w.walk(blockID(0), endBlock)
	return w.closeLevel()
}

// walk implements §4.7, with two differences: a block with a single
// Straight/Unconditional successor continues straight into it up to
// outerEnd, with no join point of its own, and only a branching block
// walks on from its join point after emitting its chain.
func (w *walker) walk(start, outerEnd BlockID) {
	if start == outerEnd || start == endBlock {
		return
	}
	if w.path[start] {
		w.emit(tokContinue())
		return
	}

	if !w.pathLoops[start] {
		if loopEnd, ok := w.cfg.findLoopEnd(start, outerEnd, w.pathLoops); ok {
			w.openLevel()
			w.pathLoops[start] = true
			w.walk(start, loopEnd)
			body := w.closeLevel()
			body = append(body, tokBreak())
			w.emit(makeLoop(body))
			delete(w.pathLoops, start)
			w.walk(loopEnd, outerEnd)
			return
		}
	}

	w.path[start] = true
	block := w.cfg.Blocks[start]
	if block != nil {
		for _, l := range block.Lines {
			w.emit(l)
		}
	}

	if block != nil && !block.Exits {
		succs := block.Successors
		if len(succs) == 1 && (succs[0].Kind == EdgeStraight || succs[0].Kind == EdgeUnconditional) {
			w.walk(succTarget(succs[0]), outerEnd)
			delete(w.path, start)
			return
		}

		join := w.cfg.findJoinPoint(start, outerEnd)
		var branches []ChainBranch
		for i, e := range succs {
			w.openLevel()
			w.walk(succTarget(e), join)
			body := w.closeLevel()
			if len(body) == 0 && i != 0 {
				continue
			}
			from := e.From
			branches = append(branches, ChainBranch{
				Line:        &from,
				Cond:        e.Test,
				Fallthrough: e.Fallthrough,
				Body:        body,
			})
		}
		w.emit(makeChain(branches))
		w.walk(join, outerEnd)
		delete(w.path, start)
		return
	}

	delete(w.path, start)
}

func succTarget(e JumpEdge) BlockID {
	if e.ToIsEnd {
		return endBlock
	}
	return blockID(e.To)
}
