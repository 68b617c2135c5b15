package tac

import (
	"fmt"
	"strconv"

	"minicc/ast"
)

var binOpToTAC = map[string]Op{
	"+": PLUS, "-": MINUS, "*": MUL, "/": DIV,
	"==": EQ, "!=": NE, ">": GT, "<": LT, ">=": GE, "<=": LE,
}

// Generator lowers a validated AST into TAC. Fresh temporary and label
// names are drawn from monotone counters that are local to one
// Generator (and thus to one compilation).
type Generator struct {
	code       Program
	tempCount  int
	labelCount int
	scopeCount int

	// scopes maps source variable names to their storage names, one
	// frame per lexical block, innermost last. Declarations in a nested
	// block get a fresh storage name so they cannot alias an outer
	// variable of the same spelling in the interpreter's flat per-call
	// environment; see lookup.
	scopes []map[string]string
}

// NewGenerator creates a Generator ready to lower a Program.
func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) emit(op Op, a1, a2, res string) {
	g.code = append(g.code, Quad{Op: op, A1: a1, A2: a2, Res: res})
}

func (g *Generator) newTemp() string {
	g.tempCount++
	return fmt.Sprintf("t%d", g.tempCount)
}

func (g *Generator) newLabel(base string) string {
	g.labelCount++
	return fmt.Sprintf("%s%d", base, g.labelCount)
}

func (g *Generator) pushScope() {
	g.scopes = append(g.scopes, make(map[string]string))
}

func (g *Generator) popScope() {
	g.scopes = g.scopes[:len(g.scopes)-1]
}

// declare binds name in the innermost scope and returns its storage
// name. Function-level declarations and parameters keep their source
// spelling; a declaration inside an if/else/while body gets a dotted
// suffix ("x.3") so that it occupies its own slot in the call frame and
// the outer name stays unbound. "." cannot appear in a source
// identifier, so the suffixed names never collide with user variables.
func (g *Generator) declare(name string) string {
	storage := name
	if len(g.scopes) > 1 {
		g.scopeCount++
		storage = fmt.Sprintf("%s.%d", name, g.scopeCount)
	}
	g.scopes[len(g.scopes)-1][name] = storage
	return storage
}

// lookup resolves a source name to its storage name, searching from the
// innermost scope outward. Names the analyzer vouched for are always
// found; anything else passes through unchanged.
func (g *Generator) lookup(name string) string {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if s, ok := g.scopes[i][name]; ok {
			return s
		}
	}
	return name
}

// Generate lowers prog and returns the resulting TAC program.
func Generate(prog *ast.Program) Program {
	g := NewGenerator()
	for _, fn := range prog.Functions {
		g.emit(FUNC, fn.Name, "", "")
		g.scopes = []map[string]string{make(map[string]string)}
		for _, p := range fn.Params {
			g.declare(p)
			g.emit(PARAM_DECL, p, "", "")
		}
		for _, stmt := range fn.Body {
			g.genStmt(stmt)
		}
		g.emit(END_FUNC, fn.Name, "", "")
	}
	return g.code
}

func (g *Generator) genStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.Declaration:
		storage := g.declare(n.Name)
		if n.Value != nil {
			v := g.genExpr(n.Value)
			g.emit(MOV, v, "", storage)
		}
	case *ast.Assignment:
		v := g.genExpr(n.Value)
		g.emit(MOV, v, "", g.lookup(n.Name))
	case *ast.Return:
		v := g.genExpr(n.Value)
		g.emit(RET, v, "", "")
	case *ast.Print:
		v := g.genExpr(n.Value)
		g.emit(PRINT, v, "", "")
	case *ast.If:
		cond := g.genExpr(n.Cond)
		elseLabel := g.newLabel("ELSE")
		endLabel := g.newLabel("ENDIF")
		g.emit(IFZ_GOTO, cond, "", elseLabel)
		g.pushScope()
		for _, s := range n.Then {
			g.genStmt(s)
		}
		g.popScope()
		g.emit(GOTO, endLabel, "", "")
		g.emit(LABEL, elseLabel, "", "")
		g.pushScope()
		for _, s := range n.Else {
			g.genStmt(s)
		}
		g.popScope()
		g.emit(LABEL, endLabel, "", "")
	case *ast.While:
		startLabel := g.newLabel("WHILE_START")
		endLabel := g.newLabel("WHILE_END")
		g.emit(LABEL, startLabel, "", "")
		cond := g.genExpr(n.Cond)
		g.emit(IFZ_GOTO, cond, "", endLabel)
		g.pushScope()
		for _, s := range n.Body {
			g.genStmt(s)
		}
		g.popScope()
		g.emit(GOTO, startLabel, "", "")
		g.emit(LABEL, endLabel, "", "")
	case *ast.ExprStmt:
		g.genExpr(n.Call)
	default:
		panic(fmt.Sprintf("tac: unknown statement type %T", stmt))
	}
}

func (g *Generator) genExpr(expr ast.Expr) string {
	switch n := expr.(type) {
	case *ast.Number:
		t := g.newTemp()
		g.emit(MOV, strconv.FormatInt(n.Value, 10), "", t)
		return t
	case *ast.String:
		t := g.newTemp()
		g.emit(MOV, strconv.Quote(n.Value), "", t)
		return t
	case *ast.Var:
		return g.lookup(n.Name)
	case *ast.BinOp:
		left := g.genExpr(n.Left)
		right := g.genExpr(n.Right)
		t := g.newTemp()
		g.emit(binOpToTAC[n.Op], left, right, t)
		return t
	case *ast.FuncCall:
		for _, arg := range n.Args {
			v := g.genExpr(arg)
			g.emit(PARAM, v, "", "")
		}
		g.emit(CALL, n.Name, strconv.Itoa(len(n.Args)), "")
		t := g.newTemp()
		g.emit(POP, "", "", t)
		return t
	default:
		panic(fmt.Sprintf("tac: unknown expression type %T", expr))
	}
}
