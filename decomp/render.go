package decomp

import "strings"

// Render walks a reconstructed statement list and produces indented
// pseudo-code text, the final structured listing named by C5. HTML/SVG
// anchor rendering is explicitly out of scope; block offsets remain
// available on the tokens themselves for a caller that wants to build
// its own highlighting layer on top.
func Render(stmts []AstToken) string {
	var b strings.Builder
	renderBlock(&b, stmts, 0)
	return b.String()
}

func renderBlock(b *strings.Builder, stmts []AstToken, indent int) {
	for _, s := range stmts {
		renderStmt(b, s, indent)
	}
}

func indentStr(n int) string { return strings.Repeat("    ", n) }

func renderStmt(b *strings.Builder, s AstToken, indent int) {
	pad := indentStr(indent)
	switch s.Tag {
	case TagLine:
		b.WriteString(pad)
		b.WriteString(s.Text)
		b.WriteString("\n")
	case TagBreak:
		b.WriteString(pad)
		b.WriteString("break\n")
	case TagContinue:
		b.WriteString(pad)
		b.WriteString("continue\n")
	case TagExit:
		b.WriteString(pad)
		b.WriteString("exit\n")
	case TagTick:
		b.WriteString(pad)
		b.WriteString("tick\n")
	case TagLoop:
		b.WriteString(pad)
		b.WriteString("loop {\n")
		renderBlock(b, s.Body, indent+1)
		b.WriteString(pad)
		b.WriteString("}\n")
	case TagWhile:
		b.WriteString(pad)
		b.WriteString("while (")
		b.WriteString(s.Cond)
		b.WriteString(") {\n")
		renderBlock(b, s.Body, indent+1)
		b.WriteString(pad)
		b.WriteString("}\n")
	case TagChain:
		renderChain(b, s.Branches, indent)
	case TagSwitch:
		renderSwitch(b, s, indent)
	case TagSequence:
		renderBlock(b, s.Body, indent)
	}
}

func renderChain(b *strings.Builder, branches []ChainBranch, indent int) {
	pad := indentStr(indent)
	for i, br := range branches {
		kw := "if"
		if i > 0 {
			kw = "else if"
		}
		if i == len(branches)-1 && br.Fallthrough && i > 0 {
			b.WriteString(pad)
			b.WriteString("else {\n")
		} else {
			b.WriteString(pad)
			b.WriteString(kw)
			b.WriteString(" (")
			b.WriteString(conditionText(br.Cond))
			b.WriteString(") {\n")
		}
		renderBlock(b, br.Body, indent+1)
		b.WriteString(pad)
		b.WriteString("}\n")
	}
}

// conditionText strips a leading "if (" / trailing ")" the interpreter
// already wrapped the condition text in, since renderChain supplies its
// own parens and keyword.
func conditionText(cond string) string {
	c := stripIfPrefix(cond)
	if c != cond {
		return c
	}
	return cond
}

func renderSwitch(b *strings.Builder, s AstToken, indent int) {
	pad := indentStr(indent)
	b.WriteString(pad)
	b.WriteString("switch (")
	b.WriteString(s.SwitchTest)
	b.WriteString(") {\n")
	for _, c := range s.SwitchCases {
		b.WriteString(indentStr(indent + 1))
		b.WriteString("case ")
		b.WriteString(c.Value)
		b.WriteString(":\n")
		renderBlock(b, c.Body, indent+2)
	}
	b.WriteString(pad)
	b.WriteString("}\n")
}
