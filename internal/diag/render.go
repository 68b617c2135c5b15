package diag

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"minicc/tac"
	"minicc/token"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	opcodeColor = color.New(color.FgYellow)
)

// Section writes a colorized "[NAME]" banner line to w, one per
// pipeline stage.
func Section(w *Writer, name string) {
	fmt.Fprintln(w, headerColor.Sprintf("[%s]", name))
}

// Rule writes a horizontal divider between pipeline stages.
func Rule(w *Writer) {
	fmt.Fprintln(w, strings.Repeat("-", 47))
}

// Tokens writes one line per token.
func Tokens(w *Writer, toks []token.Token) {
	for _, t := range toks {
		fmt.Fprintf(w, "    %s\n", t)
	}
}

// TAC writes the readable rendering of a TAC program used for both the
// [INTERMEDIATE CODE] and [OPTIMIZED TAC] sections.
func TAC(w *Writer, prog tac.Program) {
	for _, q := range prog {
		fmt.Fprintln(w, formatQuad(q))
	}
}

func formatQuad(q tac.Quad) string {
	switch q.Op {
	case tac.FUNC:
		return q.A1 + ":"
	case tac.END_FUNC:
		return opcodeColor.Sprintf("END %s", q.A1)
	case tac.PARAM_DECL:
		return fmt.Sprintf("  PARAM_DECL %s", q.A1)
	case tac.MOV:
		return fmt.Sprintf("  %s = %s", q.Res, q.A1)
	case tac.RET:
		return fmt.Sprintf("  return %s", q.A1)
	case tac.PRINT:
		return fmt.Sprintf("  print %s", q.A1)
	case tac.IFZ_GOTO:
		return fmt.Sprintf("  IFZ %s -> %s", q.A1, q.Res)
	case tac.GOTO:
		return opcodeColor.Sprintf("  GOTO %s", q.A1)
	case tac.LABEL:
		return q.A1 + ":"
	case tac.PARAM:
		return fmt.Sprintf("  PARAM %s", q.A1)
	case tac.CALL:
		return opcodeColor.Sprintf("  CALL %s, %s", q.A1, q.A2)
	case tac.POP:
		return fmt.Sprintf("  POP %s", q.Res)
	default:
		if tac.IsArithRel(q.Op) {
			return fmt.Sprintf("  %s = %s %s %s", q.Res, q.A1, tac.Symbol(q.Op), q.A2)
		}
		return fmt.Sprintf("  %s %s %s %s", q.Op, q.A1, q.A2, q.Res)
	}
}

// RawDump writes the fully structural, untemplated form of v using
// go-spew, bypassing the bespoke tree printer; it backs the CLI's
// -dump=raw mode.
func RawDump(w *Writer, label string, v interface{}) {
	Section(w, label+" (raw)")
	spew.Fdump(w, v)
}
