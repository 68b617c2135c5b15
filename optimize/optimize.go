// Package optimize implements a two-pass peephole optimizer over TAC:
// constant folding and temporary propagation.
//
// The first pass is a single switch over the opcode, falling through to
// a control-flow-preserving default for anything that isn't arithmetic
// or MOV.
package optimize

import (
	"strconv"

	"minicc/tac"
)

// controlFlowOps pass through unchanged except for operand resolution;
// folding never crosses them.
var controlFlowOps = map[tac.Op]bool{
	tac.LABEL: true, tac.GOTO: true, tac.IFZ_GOTO: true,
	tac.FUNC: true, tac.END_FUNC: true,
	tac.PARAM: true, tac.CALL: true, tac.POP: true, tac.PARAM_DECL: true,
}

// Optimize runs the two-pass peephole optimizer over prog and returns
// the optimized program. Optimize is total: it cannot fail on
// well-formed TAC.
func Optimize(prog tac.Program) tac.Program {
	pass1, tempMap := firstPass(prog)
	return secondPass(pass1, tempMap)
}

// isTemp matches generator temporaries exactly ("t" followed by
// digits), so that a source variable whose name merely starts with t is
// never mistaken for one and propagated away.
func isTemp(name string) bool {
	if len(name) < 2 || name[0] != 't' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

func resolve(tempMap map[string]string, s string) string {
	if v, ok := tempMap[s]; ok {
		return v
	}
	return s
}

func isIntLiteral(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func fold(op tac.Op, a, b int64) int64 {
	switch op {
	case tac.PLUS:
		return a + b
	case tac.MINUS:
		return a - b
	case tac.MUL:
		return a * b
	case tac.DIV:
		if b == 0 {
			return 0
		}
		return a / b
	case tac.EQ:
		return boolInt(a == b)
	case tac.NE:
		return boolInt(a != b)
	case tac.GT:
		return boolInt(a > b)
	case tac.LT:
		return boolInt(a < b)
	case tac.GE:
		return boolInt(a >= b)
	case tac.LE:
		return boolInt(a <= b)
	}
	panic("optimize: fold called with non arithmetic/relational op")
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// firstPass resolves operands through the running temp->operand map,
// folds constant arithmetic, and records MOV-into-temp assignments in
// the map instead of emitting them.
func firstPass(prog tac.Program) (tac.Program, map[string]string) {
	tempMap := make(map[string]string)
	var out tac.Program

	for _, q := range prog {
		switch {
		case controlFlowOps[q.Op]:
			out = append(out, tac.Quad{
				Op:  q.Op,
				A1:  resolveIfName(tempMap, q.A1),
				A2:  resolveIfName(tempMap, q.A2),
				Res: q.Res,
			})

		case q.Op == tac.MOV:
			src := resolveIfName(tempMap, q.A1)
			if isTemp(q.Res) {
				tempMap[q.Res] = src
			} else {
				out = append(out, tac.Quad{Op: tac.MOV, A1: src, Res: q.Res})
			}

		case tac.IsArithRel(q.Op):
			left := resolveIfName(tempMap, q.A1)
			right := resolveIfName(tempMap, q.A2)
			if isIntLiteral(left) && isIntLiteral(right) {
				lv, _ := strconv.ParseInt(left, 10, 64)
				rv, _ := strconv.ParseInt(right, 10, 64)
				folded := strconv.FormatInt(fold(q.Op, lv, rv), 10)
				if isTemp(q.Res) {
					tempMap[q.Res] = folded
				} else {
					out = append(out, tac.Quad{Op: tac.MOV, A1: folded, Res: q.Res})
				}
			} else {
				out = append(out, tac.Quad{Op: q.Op, A1: left, A2: right, Res: q.Res})
			}

		case q.Op == tac.RET:
			out = append(out, tac.Quad{Op: tac.RET, A1: resolveIfName(tempMap, q.A1)})

		case q.Op == tac.PRINT:
			out = append(out, tac.Quad{Op: tac.PRINT, A1: resolveIfName(tempMap, q.A1)})

		default:
			out = append(out, q)
		}
	}
	return out, tempMap
}

// resolveIfName resolves s through tempMap; the empty (unused) operand
// is left untouched.
func resolveIfName(tempMap map[string]string, s string) string {
	if s == "" {
		return s
	}
	return resolve(tempMap, s)
}

// secondPass rewrites any surviving "MOV tN, dest" where tN was mapped
// in the first pass into "MOV resolvedValue, dest".
func secondPass(prog tac.Program, tempMap map[string]string) tac.Program {
	out := make(tac.Program, 0, len(prog))
	for _, q := range prog {
		if q.Op == tac.MOV {
			if v, ok := tempMap[q.A1]; ok {
				out = append(out, tac.Quad{Op: tac.MOV, A1: v, Res: q.Res})
				continue
			}
		}
		out = append(out, q)
	}
	return out
}
