package decomp

import "sort"

// BlockID identifies a basic block by its start offset, or the
// synthetic END sentinel that always sorts last (§3 "Basic block").
type BlockID struct {
	Offset int
	IsEnd  bool
}

func blockID(off int) BlockID { return BlockID{Offset: off} }

var endBlock = BlockID{IsEnd: true}

func (b BlockID) less(o BlockID) bool {
	if b.IsEnd != o.IsEnd {
		return o.IsEnd
	}
	return b.Offset < o.Offset
}

// Block is one basic block of the reconstructed CFG (§3 "Basic block").
type Block struct {
	ID            BlockID
	StartOff      int
	TerminatorOff int
	EndOff        int
	Lines         []AstToken
	Predecessors  map[BlockID]bool
	Successors    []JumpEdge
	Exits         bool
}

// CFG is the built control-flow graph plus its post-dominator sets.
type CFG struct {
	Blocks   map[BlockID]*Block
	Order    []BlockID // deterministic, offset-sorted (excluding END)
	Postdoms map[BlockID]map[BlockID]bool
}

// BuildCFG partitions the code into basic blocks from the leaders set
// and jump-edge map produced by C2, then computes post-dominators
// (§4.4, §4.5). instrLen and tokens come straight from InterpResult.
func BuildCFG(tokens map[int]AstToken, edges map[int][]JumpEdge, leaders map[int]bool, instrLen map[int]int) *CFG {
	var instrOffs []int
	for off := range instrLen {
		instrOffs = append(instrOffs, off)
	}
	sort.Ints(instrOffs)

	cfg := &CFG{Blocks: make(map[BlockID]*Block)}

	var order []int
	for off := range leaders {
		if _, ok := instrLen[off]; ok {
			order = append(order, off)
		}
	}
	sort.Ints(order)

	idxOf := make(map[int]int, len(instrOffs))
	for i, off := range instrOffs {
		idxOf[off] = i
	}

	for _, start := range order {
		block := &Block{
			ID:           blockID(start),
			StartOff:     start,
			Predecessors: make(map[BlockID]bool),
		}

		i, ok := idxOf[start]
		if !ok {
			// Guard only: order above keeps just the leaders that have a
			// recorded instruction, so this branch is not taken. A
			// leader without one would become a trivial exiting block.
			block.TerminatorOff = start
			block.EndOff = start
			block.Exits = true
			block.Successors = []JumpEdge{{From: start, ToIsEnd: true, Kind: EdgeStraight}}
			cfg.Blocks[block.ID] = block
			cfg.Order = append(cfg.Order, block.ID)
			continue
		}

		for ; i < len(instrOffs); i++ {
			cur := instrOffs[i]
			if cur != start && leaders[cur] {
				block.EndOff = cur
				break
			}
			if tok, ok := tokens[cur]; ok {
				block.Lines = append(block.Lines, tok)
			}
			edgesHere := edges[cur]
			nextOff := cur + instrLen[cur]
			if len(edgesHere) > 0 {
				block.TerminatorOff = cur
				block.EndOff = nextOff
				block.Successors = edgesHere
				break
			}
			if isExitToken(tokens, cur) {
				block.TerminatorOff = cur
				block.EndOff = nextOff
				block.Exits = true
				break
			}
			block.TerminatorOff = cur
			block.EndOff = nextOff
			if i+1 >= len(instrOffs) {
				break
			}
		}

		if block.Exits {
			block.Successors = append(block.Successors, JumpEdge{From: block.TerminatorOff, ToIsEnd: true, Kind: EdgeStraight})
		} else if len(block.Successors) == 0 {
			block.Successors = append(block.Successors, JumpEdge{From: block.TerminatorOff, To: block.EndOff, Kind: EdgeStraight})
		}

		cfg.Blocks[block.ID] = block
		cfg.Order = append(cfg.Order, block.ID)
	}

	cfg.Blocks[endBlock] = &Block{ID: endBlock, Predecessors: make(map[BlockID]bool), Exits: true}

	for _, b := range cfg.Blocks {
		for _, e := range b.Successors {
			to := endBlock
			if !e.ToIsEnd {
				to = blockID(e.To)
			}
			if target, ok := cfg.Blocks[to]; ok {
				target.Predecessors[b.ID] = true
			}
		}
	}

	sort.Slice(cfg.Order, func(i, j int) bool { return cfg.Order[i].less(cfg.Order[j]) })

	cfg.Postdoms = computePostdoms(cfg)
	return cfg
}

func isExitToken(tokens map[int]AstToken, off int) bool {
	tok, ok := tokens[off]
	return ok && tok.Tag == TagExit
}

// computePostdoms runs the standard iterative fixed-point algorithm
// (§4.5): postdom(B) = {B} ∪ ⋂ postdom(S) for S ∈ succ(B); postdom(END)
// = {END}.
func computePostdoms(cfg *CFG) map[BlockID]map[BlockID]bool {
	all := make(map[BlockID]bool)
	for id := range cfg.Blocks {
		all[id] = true
	}

	postdoms := make(map[BlockID]map[BlockID]bool)
	postdoms[endBlock] = map[BlockID]bool{endBlock: true}
	for id := range cfg.Blocks {
		if id == endBlock {
			continue
		}
		postdoms[id] = cloneSet(all)
	}

	changed := true
	for changed {
		changed = false
		for _, id := range cfg.Order {
			b := cfg.Blocks[id]
			var succIDs []BlockID
			for _, e := range b.Successors {
				if e.ToIsEnd {
					succIDs = append(succIDs, endBlock)
				} else {
					succIDs = append(succIDs, blockID(e.To))
				}
			}
			var merged map[BlockID]bool
			for i, s := range succIDs {
				if i == 0 {
					merged = cloneSet(postdoms[s])
				} else {
					merged = intersect(merged, postdoms[s])
				}
			}
			if merged == nil {
				merged = make(map[BlockID]bool)
			}
			merged[id] = true
			if !setEqual(merged, postdoms[id]) {
				postdoms[id] = merged
				changed = true
			}
		}
	}
	return postdoms
}

func cloneSet(s map[BlockID]bool) map[BlockID]bool {
	out := make(map[BlockID]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersect(a, b map[BlockID]bool) map[BlockID]bool {
	out := make(map[BlockID]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func setEqual(a, b map[BlockID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// successorsOf returns the block IDs reachable in one hop from id.
func (cfg *CFG) successorsOf(id BlockID) []BlockID {
	b := cfg.Blocks[id]
	if b == nil {
		return nil
	}
	var out []BlockID
	for _, e := range b.Successors {
		if e.ToIsEnd {
			out = append(out, endBlock)
		} else {
			out = append(out, blockID(e.To))
		}
	}
	return out
}

// findJoinPoint returns the nearest block (BFS distance from condBlock)
// that post-dominates every successor of condBlock (§4.5). outerEnd is
// an eligible candidate like any other block, and is also returned when
// no block qualifies.
func (cfg *CFG) findJoinPoint(condBlock, outerEnd BlockID) BlockID {
	succs := cfg.successorsOf(condBlock)
	if len(succs) == 0 {
		return outerEnd
	}

	postdomsAll := func(candidate BlockID) bool {
		for _, s := range succs {
			if !cfg.Postdoms[s][candidate] {
				return false
			}
		}
		return true
	}

	visited := map[BlockID]bool{condBlock: true}
	queue := []BlockID{condBlock}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur != condBlock && postdomsAll(cur) {
			return cur
		}
		for _, nxt := range cfg.successorsOf(cur) {
			if !visited[nxt] {
				visited[nxt] = true
				queue = append(queue, nxt)
			}
		}
	}
	return outerEnd
}

// reachableWithout returns, via BFS, the set of blocks reachable from
// start without crossing any block in barriers (barriers themselves are
// not expanded past, but they ARE included in the reachable set so
// callers can test "X reachable" membership cheaply).
func (cfg *CFG) reachableWithout(start BlockID, barriers map[BlockID]bool) map[BlockID]bool {
	visited := map[BlockID]bool{start: true}
	queue := []BlockID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if barriers[cur] {
			continue
		}
		for _, nxt := range cfg.successorsOf(cur) {
			if !visited[nxt] {
				visited[nxt] = true
				queue = append(queue, nxt)
			}
		}
	}
	return visited
}

// findLoopEnd implements §4.6: given a loop header H, it collects the
// loop body (H plus every block reachable from H, without crossing
// outerEnd or an enclosing header, that can reach H again) and returns
// the first successor outside that body, scanning body blocks in BFS
// order from H. ok is false when H is not on a cycle or no edge leaves
// the body.
func (cfg *CFG) findLoopEnd(h BlockID, outerEnd BlockID, enclosingHeaders map[BlockID]bool) (BlockID, bool) {
	barriers := cloneSet(enclosingHeaders)
	barriers[outerEnd] = true

	forward := cfg.reachableWithout(h, barriers)
	body := map[BlockID]bool{}
	for b := range forward {
		if b == h {
			body[b] = true
			continue
		}
		if barriers[b] {
			continue
		}
		back := cfg.reachableWithout(b, barriers)
		if back[h] {
			body[b] = true
		}
	}
	if len(body) <= 1 {
		return BlockID{}, false
	}

	order := cfg.reachableWithoutOrdered(h, barriers)
	for _, u := range order {
		if !body[u] {
			continue
		}
		for _, v := range cfg.successorsOf(u) {
			if !body[v] {
				return v, true
			}
		}
	}
	return BlockID{}, false
}

// reachableWithoutOrdered is reachableWithout but returns blocks in BFS
// distance order so the caller can pick the nearest candidate.
func (cfg *CFG) reachableWithoutOrdered(start BlockID, barriers map[BlockID]bool) []BlockID {
	visited := map[BlockID]bool{start: true}
	queue := []BlockID{start}
	var order []BlockID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		if barriers[cur] {
			continue
		}
		for _, nxt := range cfg.successorsOf(cur) {
			if !visited[nxt] {
				visited[nxt] = true
				queue = append(queue, nxt)
			}
		}
	}
	return order
}
