package decomp

import "encoding/binary"

// Instruction is one decoded, post-remap instruction (§3 "Instruction").
type Instruction struct {
	OpcodeByte byte
	Kind       OpKind
	ImmValue   int64
	ImmSize    int
}

// frame is one reachable execution path during symbolic interpretation
// (§3 "Symbolic frame").
type frame struct {
	position int
	stack    []SymbolicValue
	fifo     []string
}

func (fr *frame) clone() *frame {
	stack := make([]SymbolicValue, len(fr.stack))
	copy(stack, fr.stack)
	fifo := make([]string, len(fr.fifo))
	copy(fifo, fr.fifo)
	return &frame{position: fr.position, stack: stack, fifo: fifo}
}

func (fr *frame) popN(n int) ([]SymbolicValue, bool) {
	if len(fr.stack) < n {
		return nil, false
	}
	args := make([]SymbolicValue, n)
	for i := 0; i < n; i++ {
		args[i] = fr.stack[len(fr.stack)-1]
		fr.stack = fr.stack[:len(fr.stack)-1]
	}
	return args, true
}

func (fr *frame) push(vs ...SymbolicValue) {
	fr.stack = append(fr.stack, vs...)
}

// mark states for the per-byte instruction/data classification (§4.2).
const (
	markNone = -1
	markData = -2
)

// InterpResult is C2's product: rendered lines and jump edges keyed by
// offset, the leaders set for C3, and the xrefs discovered along the
// way (§2 "Data flow").
type InterpResult struct {
	Tokens     map[int]AstToken
	Edges      map[int][]JumpEdge
	Leaders    map[int]bool
	Xrefs      []Xref
	InstrLen   map[int]int // offset -> 1+immediate_size, for every visited instruction
	Err        error
	ErrOffset  int
}

// Interpret performs the work-list reachability walk described in §4.2,
// starting from offset 0 of co.Raw[co.CodeStart:co.CodeStart+co.CodeSize].
func Interpret(co *CodeObject, cfg Config) *InterpResult {
	res := &InterpResult{
		Tokens:   make(map[int]AstToken),
		Edges:    make(map[int][]JumpEdge),
		Leaders:  map[int]bool{0: true},
		InstrLen: make(map[int]int),
	}

	code := co.Raw[co.CodeStart : co.CodeStart+co.CodeSize]
	marks := make(map[int]int) // offset -> markNone(unused)/markData/stackDepth

	worklist := []*frame{{position: 0}}

	fail := func(off int, err error) {
		if res.Err == nil {
			res.Err = err
			res.ErrOffset = off
		}
	}

	for len(worklist) > 0 && res.Err == nil {
		fr := worklist[0]
		worklist = worklist[1:]

		pos := fr.position
		if pos < 0 || pos >= len(code) {
			fail(pos, errMalformedCode(pos, "position out of range"))
			break
		}

		rawByte := code[pos]
		canonByte := cfg.Remap[rawByte]
		kind, ok := lookupOp(canonByte)
		if !ok {
			fail(pos, errMalformedCode(pos, "unknown opcode"))
			break
		}
		meta := kind.Meta()

		if pos+1+meta.ImmSize > len(code) {
			fail(pos, errMalformedCode(pos, "truncated immediate"))
			break
		}

		depth := len(fr.stack)
		if existing, seen := marks[pos]; seen {
			if existing == markData {
				fail(pos, errMalformedCode(pos, "instruction overlaps data"))
				break
			}
			if existing != depth {
				fail(pos, errMalformedCode(pos, "stack-depth mismatch at join"))
				break
			}
			// Already visited with matching depth: stop this path.
			continue
		}
		marks[pos] = depth
		res.InstrLen[pos] = 1 + meta.ImmSize

		for b := pos + 1; b < pos+1+meta.ImmSize; b++ {
			if existing, seen := marks[b]; seen && existing != markData {
				fail(pos, errMalformedCode(pos, "immediate overlaps instruction"))
				break
			}
			marks[b] = markData
		}
		if res.Err != nil {
			break
		}

		ins := Instruction{
			OpcodeByte: rawByte,
			Kind:       kind,
			ImmSize:    meta.ImmSize,
			ImmValue:   readImm(code, pos+1, meta.ImmSize),
		}

		args, ok := fr.popN(meta.StackIn)
		if !ok {
			fail(pos, errMalformedCode(pos, "stack underflow"))
			break
		}

		eff, err := applyEffect(ins, pos, args, fr, cfg, len(code), co.Strings)
		if err != nil {
			fail(pos, err)
			break
		}

		if eff.token != nil {
			res.Tokens[pos] = *eff.token
		}
		if len(eff.xrefs) > 0 {
			res.Xrefs = append(res.Xrefs, eff.xrefs...)
		}
		if len(eff.edges) > 0 {
			// A jump to one past the last byte leaves the code: record
			// it as an edge to END rather than to an instruction.
			for i := range eff.edges {
				if eff.edges[i].To == len(code) {
					eff.edges[i].ToIsEnd = true
				}
			}
			res.Edges[pos] = append(res.Edges[pos], eff.edges...)
			for _, e := range eff.edges {
				if !e.ToIsEnd {
					res.Leaders[e.To] = true
				}
			}
		}

		fr.push(eff.pushed...)

		if !eff.suppressAdvance && !eff.exited {
			next := fr.clone()
			next.position = pos + 1 + meta.ImmSize
			worklist = append(worklist, next)
		}

		for _, succPos := range eff.extraFrames {
			if succPos == len(code) {
				continue
			}
			nf := fr.clone()
			nf.position = succPos
			worklist = append(worklist, nf)
		}
	}

	return res
}

func readImm(code []byte, off, size int) int64 {
	switch size {
	case 0:
		return 0
	case 1:
		return int64(code[off])
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(code[off:])))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(code[off:])))
	}
	return 0
}
