package decomp

import (
	"fmt"
	"regexp"
)

// switchRe recognizes an equality test against a common side, used by
// make_chain rules 3 and 4 (§4.8).
var switchRe = regexp.MustCompile(`^if \(\((.*)\) ==s? \((.*)\)\)$`)

// makeChain applies the §4.8 chain rewrites, in order, once, to a
// non-empty list of chain branches collected by the walk.
func makeChain(branches []ChainBranch) AstToken {
	if len(branches) == 0 {
		return tokChain(nil)
	}

	if tok, ok := earlyExitSplit(branches); ok {
		return tok
	}

	branches = nestedChainMerge(branches)

	if tok, ok := switchFromTrailingSwitch(branches); ok {
		return tok
	}

	if tok, ok := switchFromEqualityChain(branches); ok {
		return tok
	}

	return tokChain(branches)
}

// earlyExitSplit implements rule 1: `if (C) exit; rest`. The walk
// always places the fallthrough branch first, so the non-fallthrough
// branch whose body ends in Exit may land at either index; match on
// fallthrough-ness rather than position.
func earlyExitSplit(branches []ChainBranch) (AstToken, bool) {
	if len(branches) != 2 {
		return AstToken{}, false
	}
	a, b := branches[0], branches[1]
	exitBranch, restBranch, ok := pickEarlyExit(a, b)
	if !ok {
		return AstToken{}, false
	}

	ifChain := tokChain([]ChainBranch{{
		Line:        exitBranch.Line,
		Cond:        exitBranch.Cond,
		Fallthrough: exitBranch.Fallthrough,
		Body:        exitBranch.Body,
	}})

	// The fallthrough body's statements become siblings of the if,
	// folded into a synthetic wrapper token via Body so the caller
	// (walk) can splice them at the current nesting level.
	out := append([]AstToken{ifChain}, restBranch.Body...)
	return tokSequence(out), true
}

func pickEarlyExit(a, b ChainBranch) (exitBranch, restBranch ChainBranch, ok bool) {
	if !a.Fallthrough && endsWithExit(a.Body) && b.Fallthrough {
		return a, b, true
	}
	if !b.Fallthrough && endsWithExit(b.Body) && a.Fallthrough {
		return b, a, true
	}
	return ChainBranch{}, ChainBranch{}, false
}

func endsWithExit(body []AstToken) bool {
	if len(body) == 0 {
		return false
	}
	return body[len(body)-1].Tag == TagExit
}

// nestedChainMerge implements rule 2: if the last branch is not a
// fallthrough (with fallthrough-first edge order, it is the jump
// target, i.e. the "else" side) and has a single-statement body that is
// itself a Chain, splice that inner chain's branches onto the current
// chain.
func nestedChainMerge(branches []ChainBranch) []ChainBranch {
	if len(branches) == 0 {
		return branches
	}
	last := branches[len(branches)-1]
	if last.Fallthrough || len(last.Body) != 1 || last.Body[0].Tag != TagChain {
		return branches
	}
	inner := last.Body[0]
	out := make([]ChainBranch, 0, len(branches)-1+len(inner.Branches))
	out = append(out, branches[:len(branches)-1]...)
	out = append(out, inner.Branches...)
	return out
}

// switchFromTrailingSwitch implements rule 3: the last branch is a
// non-fallthrough branch wrapping a single Switch statement, and every preceding
// branch's condition is an equality test against the switch's test
// expression (or its mirror). Fold the preceding branches into the
// switch, new cases first.
func switchFromTrailingSwitch(branches []ChainBranch) (AstToken, bool) {
	if len(branches) < 2 {
		return AstToken{}, false
	}
	last := branches[len(branches)-1]
	if last.Fallthrough || len(last.Body) != 1 || last.Body[0].Tag != TagSwitch {
		return AstToken{}, false
	}
	sw := last.Body[0]
	preceding := branches[:len(branches)-1]

	lhsAll, rhsAll := true, true
	labels := make([]string, len(preceding))
	for i, br := range preceding {
		m := switchRe.FindStringSubmatch(br.Cond)
		if m == nil {
			return AstToken{}, false
		}
		lhs, rhs := m[1], m[2]
		if lhs != sw.SwitchTest {
			lhsAll = false
		}
		if rhs != sw.SwitchTest {
			rhsAll = false
		}
		if lhs == sw.SwitchTest {
			labels[i] = rhs
		} else if rhs == sw.SwitchTest {
			labels[i] = lhs
		}
	}
	if !lhsAll && !rhsAll {
		return AstToken{}, false
	}

	newCases := make([]SwitchCase, len(preceding))
	for i, br := range preceding {
		newCases[i] = SwitchCase{Line: br.Line, Value: labels[i], Body: br.Body}
	}
	cases := append(newCases, sw.SwitchCases...)
	return tokSwitch(sw.SwitchTest, cases), true
}

// switchFromEqualityChain implements rule 4: len >= 2, no branch is a
// fallthrough, and every branch matches the equality pattern against a
// common side.
func switchFromEqualityChain(branches []ChainBranch) (AstToken, bool) {
	if len(branches) < 2 {
		return AstToken{}, false
	}
	for _, br := range branches {
		if br.Fallthrough {
			return AstToken{}, false
		}
	}

	matches := make([][2]string, len(branches))
	for i, br := range branches {
		m := switchRe.FindStringSubmatch(br.Cond)
		if m == nil {
			return AstToken{}, false
		}
		matches[i] = [2]string{m[1], m[2]}
	}

	tryCommon := func(side int) (string, []string, bool) {
		common := matches[0][side]
		labels := make([]string, len(branches))
		for i, m := range matches {
			if m[side] != common {
				return "", nil, false
			}
			labels[i] = m[1-side]
		}
		return common, labels, true
	}

	var common string
	var labels []string
	var ok bool
	if common, labels, ok = tryCommon(0); !ok {
		if common, labels, ok = tryCommon(1); !ok {
			return AstToken{}, false
		}
	}

	cases := make([]SwitchCase, len(branches))
	for i, br := range branches {
		cases[i] = SwitchCase{Line: br.Line, Value: labels[i], Body: br.Body}
	}
	return tokSwitch(common, cases), true
}

// makeLoop implements §4.8's while/wait-while idiom recognition.
func makeLoop(body []AstToken) AstToken {
	if len(body) == 2 && body[1].Tag == TagBreak && body[0].Tag == TagChain && len(body[0].Branches) == 1 {
		br := body[0].Branches[0]
		if br.Fallthrough && len(br.Body) > 0 && br.Body[len(br.Body)-1].Tag == TagContinue {
			inner := br.Body[:len(br.Body)-1]
			cond := stripIfPrefix(br.Cond)
			if len(inner) == 1 && inner[0].Tag == TagTick {
				return tokLine(*inner[0].Line, fmt.Sprintf("wait while %s", cond))
			}
			return tokWhile(br.Line, cond, inner)
		}
	}
	return tokLoop(body)
}

func stripIfPrefix(cond string) string {
	const prefix = "if ("
	if len(cond) >= len(prefix)+1 && cond[:len(prefix)] == prefix && cond[len(cond)-1] == ')' {
		return cond[len(prefix) : len(cond)-1]
	}
	return cond
}

// tokSequence wraps a flat slice of already-reconstructed statements so
// callers that expect a single AstToken (the walk's emit site) can
// splice its contents as siblings. It carries no tag of its own meaning
// beyond "a sequence to be flattened"; Render flattens it on sight.
func tokSequence(stmts []AstToken) AstToken {
	return AstToken{Tag: TagSequence, Body: stmts}
}
