package decomp

import "fmt"

// effect is the per-step symbolic-evaluation result (§4.2 step 4): an
// optional AST token for this offset, values to push, any discovered
// cross-references, any outgoing jump edges, extra successor offsets
// beyond the default linear advance, and whether normal PC advance
// should be suppressed.
type effect struct {
	token           *AstToken
	pushed          []SymbolicValue
	xrefs           []Xref
	edges           []JumpEdge
	extraFrames     []int
	suppressAdvance bool
	exited          bool
}

var binopSymbol = map[OpKind]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpBitAnd: "&", OpBitOr: "|", OpXor: "^", OpShl: "<<", OpShr: ">>",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	OpLogicAnd: "&&", OpLogicOr: "||",
}

var unopSymbol = map[OpKind]string{
	OpNeg: "-", OpBitNot: "~", OpLogicNot: "!",
}

func applyEffect(ins Instruction, pos int, args []SymbolicValue, fr *frame, cfg Config, codeLen int, strings []string) (effect, error) {
	switch ins.Kind {
	case OpPop:
		return effect{}, nil

	case OpDup:
		return effect{pushed: []SymbolicValue{args[0], args[0]}}, nil

	case OpPushImm8, OpPushImm16, OpPushImm32:
		return effect{pushed: []SymbolicValue{ConstValue{Value: int32(ins.ImmValue)}}}, nil

	case OpPushStr:
		idx := int(uint16(ins.ImmValue))
		if idx < 0 || idx >= len(strings) {
			return effect{}, errMalformedCode(pos, fmt.Sprintf("string index %d out of range", idx))
		}
		quoted := fmt.Sprintf("%q", strings[idx])
		return effect{pushed: []SymbolicValue{DynamicValue{Desc: quoted}}}, nil

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpBitAnd, OpBitOr, OpXor, OpShl, OpShr,
		OpEq, OpNe, OpLt, OpGt, OpLe, OpGe, OpLogicAnd, OpLogicOr:
		lhs, rhs := args[0], args[1]
		return effect{pushed: []SymbolicValue{BinopValue{Op: binopSymbol[ins.Kind], Lhs: lhs, Rhs: rhs}}}, nil

	case OpNeg, OpBitNot, OpLogicNot:
		return effect{pushed: []SymbolicValue{UnopValue{Op: unopSymbol[ins.Kind], Val: args[0]}}}, nil

	case OpGlbGet:
		name := fmt.Sprintf("global[%d]", uint8(ins.ImmValue))
		return effect{pushed: []SymbolicValue{DynamicValue{Desc: name}}}, nil

	case OpGlbSet:
		name := fmt.Sprintf("global[%d]", uint8(ins.ImmValue))
		val := args[0]
		tok := tokLine(pos, fmt.Sprintf("%s = %s", name, val.Show()))
		return effect{token: &tok, pushed: []SymbolicValue{val}}, nil

	case OpGlbSetPop:
		name := fmt.Sprintf("global[%d]", uint8(ins.ImmValue))
		val := args[0]
		tok := tokLine(pos, fmt.Sprintf("%s = %s", name, val.Show()))
		return effect{token: &tok}, nil

	case OpGlbPreInc, OpGlbPreDec, OpGlbPostInc, OpGlbPostDec:
		name := fmt.Sprintf("global[%d]", uint8(ins.ImmValue))
		var text, resultDesc string
		switch ins.Kind {
		case OpGlbPreInc:
			text, resultDesc = "++"+name, "++"+name
		case OpGlbPreDec:
			text, resultDesc = "--"+name, "--"+name
		case OpGlbPostInc:
			text, resultDesc = name+"++", name
		case OpGlbPostDec:
			text, resultDesc = name+"--", name
		}
		tok := tokLine(pos, text)
		return effect{token: &tok, pushed: []SymbolicValue{DynamicValue{Desc: resultDesc}}}, nil

	case OpGlbAdd, OpGlbSub, OpGlbMul, OpGlbDiv, OpGlbMod, OpGlbShl, OpGlbShr,
		OpGlbBitAnd, OpGlbBitOr, OpGlbBitXor:
		name := fmt.Sprintf("global[%d]", uint8(ins.ImmValue))
		sym := map[OpKind]string{
			OpGlbAdd: "+=", OpGlbSub: "-=", OpGlbMul: "*=", OpGlbDiv: "/=", OpGlbMod: "%=",
			OpGlbShl: "<<=", OpGlbShr: ">>=", OpGlbBitAnd: "&=", OpGlbBitOr: "|=", OpGlbBitXor: "^=",
		}[ins.Kind]
		tok := tokLine(pos, fmt.Sprintf("%s %s %s", name, sym, args[0].Show()))
		return effect{token: &tok}, nil

	case OpJmp:
		target, err := jumpTarget(pos, int32(ins.ImmValue), codeLen)
		if err != nil {
			return effect{}, err
		}
		edge := JumpEdge{From: pos, To: target, Kind: EdgeUnconditional}
		return effect{edges: []JumpEdge{edge}, extraFrames: []int{target}, suppressAdvance: true}, nil

	case OpJez:
		target, err := jumpTarget(pos, int32(ins.ImmValue), codeLen)
		if err != nil {
			return effect{}, err
		}
		cond := args[0]
		test := fmt.Sprintf("if (%s)", cond.Show())
		fallthroughPos := pos + 1 + ins.ImmSize
		fallEdge := JumpEdge{From: pos, To: fallthroughPos, Kind: EdgeConditional, Test: test, Fallthrough: true}
		targetEdge := JumpEdge{From: pos, To: target, Kind: EdgeConditional, Test: test, Fallthrough: false}
		return effect{
			edges:           []JumpEdge{fallEdge, targetEdge},
			extraFrames:     []int{fallthroughPos, target},
			suppressAdvance: true,
		}, nil

	case OpJmp32:
		raw := uint32(int32(ins.ImmValue))
		high16 := int32((raw >> 16) & 0xFFFF)
		target, err := jumpTarget(pos, high16, codeLen)
		if err != nil {
			return effect{}, err
		}
		edge := JumpEdge{From: pos, To: target, Kind: EdgeUnconditional}
		return effect{edges: []JumpEdge{edge}, extraFrames: []int{target}, suppressAdvance: true}, nil

	case OpOnInit, OpOnInteractL, OpOnInteractR, OpOnKey, OpOnCombine:
		target, err := jumpTarget(pos, int32(ins.ImmValue), codeLen)
		if err != nil {
			return effect{}, err
		}
		fallthroughPos := pos + 1 + ins.ImmSize
		var kind EdgeKind
		var which, keyExpr, itemExpr string
		switch ins.Kind {
		case OpOnInit:
			kind = EdgeOnInit
		case OpOnInteractL:
			kind, which = EdgeOnInteract, "L"
		case OpOnInteractR:
			kind, which = EdgeOnInteract, "R"
		case OpOnKey:
			kind, keyExpr = EdgeOnKey, fmt.Sprintf("key[%d]", ins.ImmValue)
		case OpOnCombine:
			kind, itemExpr = EdgeOnCombine, fmt.Sprintf("item[%d]", ins.ImmValue)
		}
		installEdge := JumpEdge{From: pos, To: target, Kind: kind, Which: which, KeyExpr: keyExpr, ItemExpr: itemExpr}
		fallEdge := JumpEdge{From: pos, To: fallthroughPos, Kind: kind, Which: which, KeyExpr: keyExpr, ItemExpr: itemExpr, Fallthrough: true}
		return effect{
			edges:           []JumpEdge{fallEdge, installEdge},
			extraFrames:     []int{fallthroughPos, target},
			suppressAdvance: true,
		}, nil

	case OpExit, OpQuit:
		tok := tokExit(pos)
		return effect{token: &tok, exited: true}, nil

	case OpTick:
		tok := tokTick(pos)
		return effect{token: &tok}, nil

	case OpToFifo:
		idx := len(fr.fifo)
		fr.fifo = append(fr.fifo, args[0].Show())
		return effect{pushed: []SymbolicValue{FifoPosValue{Index: idx}}}, nil

	case OpSetCursor:
		return domainRefEffect(pos, args[0], "set_cursor", XrefKind{Tag: XrefPath, Path: PathCursor})
	case OpSetPicture:
		return domainRefEffect(pos, args[0], "set_picture", XrefKind{Tag: XrefPath, Path: PathPicture})
	case OpSetAnimation:
		return domainRefEffect(pos, args[0], "set_animation", XrefKind{Tag: XrefPath, Path: PathAnimation})
	case OpSetRegion:
		return domainRefEffect(pos, args[0], "set_region", XrefKind{Tag: XrefRegion, Region: RegionOther})
	case OpSetCharacter:
		return domainRefEffect(pos, args[0], "set_character", XrefKind{Tag: XrefPath, Path: PathCharacter})
	case OpAddObject:
		return domainRefEffect(pos, args[0], "add_object", XrefKind{Tag: XrefCode})
	case OpInventoryAdd:
		return domainRefEffect(pos, args[0], "inventory_add", XrefKind{Tag: XrefItem})
	case OpDialogueText:
		return domainRefEffect(pos, args[0], "dialogue_text", XrefKind{Tag: XrefText, Text: TextDialogue})
	case OpSetSound:
		return domainRefEffect(pos, args[0], "set_sound", XrefKind{Tag: XrefPath, Path: PathSound})
	case OpSetDisplayName:
		return domainRefEffect(pos, args[0], "set_display_name", XrefKind{Tag: XrefText, Text: TextDisplayName})

	case OpGlobalReadRef:
		val := args[0]
		key, ok := stringConstKey(val)
		var xrefs []Xref
		if ok {
			loc := pos
			xrefs = []Xref{{OtherKey: key, Location: &loc, Kind: XrefKind{Tag: XrefGlobalRead}}}
		}
		return effect{pushed: []SymbolicValue{DynamicValue{Desc: fmt.Sprintf("global_ref(%s)", val.Show())}}, xrefs: xrefs}, nil

	case OpGlobalWriteRef:
		target, value := args[0], args[1]
		key, ok := stringConstKey(target)
		var xrefs []Xref
		kind := XrefKind{Tag: XrefGlobalWrite}
		if c, isConst := asConstInt(value); isConst {
			kind = XrefKind{Tag: XrefGlobalWriteConst, Const: uint32(c)}
		}
		if ok {
			loc := pos
			xrefs = []Xref{{OtherKey: key, Location: &loc, Kind: kind}}
		}
		tok := tokLine(pos, fmt.Sprintf("global_ref(%s) = %s", target.Show(), value.Show()))
		return effect{token: &tok, xrefs: xrefs}, nil

	case OpUnkPlaceholder:
		tok := tokLine(pos, fmt.Sprintf("; unk opcode 0x%02X", ins.OpcodeByte))
		return effect{token: &tok}, nil
	}

	return effect{}, errMalformedCode(pos, fmt.Sprintf("unhandled opcode kind %d", ins.Kind))
}

// domainRefEffect implements the common shape of §4.3's "Cross-reference
// emission": pop one value, emit a call-style line, and if the value is
// a known string constant, record a typed xref against it.
func domainRefEffect(pos int, arg SymbolicValue, callName string, kind XrefKind) (effect, error) {
	tok := tokLine(pos, fmt.Sprintf("%s(%s)", callName, arg.Show()))
	var xrefs []Xref
	if key, ok := stringConstKey(arg); ok {
		loc := pos
		xrefs = []Xref{{OtherKey: key, Location: &loc, Kind: kind}}
	}
	return effect{token: &tok, xrefs: xrefs}, nil
}

// stringConstKey extracts a known string-constant key from a symbolic
// value. Only a Dynamic value carrying a quoted string description
// counts; everything else is "not symbolically known" per §4.3
// ("record_xref ... if value symbolically evaluates to a known string
// constant").
func stringConstKey(v SymbolicValue) (string, bool) {
	d, ok := v.(DynamicValue)
	if !ok {
		return "", false
	}
	if len(d.Desc) >= 2 && d.Desc[0] == '"' && d.Desc[len(d.Desc)-1] == '"' {
		return d.Desc[1 : len(d.Desc)-1], true
	}
	return "", false
}

// jumpTarget computes a relative jump's destination (§4.3 "Jump address
// computation") and validates it lands within the code buffer.
func jumpTarget(pos int, imm int32, codeLen int) (int, error) {
	target := pos + int(imm) + 3
	if target < 0 || target > codeLen {
		return 0, errMalformedCode(pos, fmt.Sprintf("jump target 0x%X out of range", target))
	}
	return target, nil
}
