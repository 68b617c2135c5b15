package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint renders the tree-branch form of a Program used by the CLI's
// [SYNTAX TREE] dump.
func Fprint(w io.Writer, p *Program) {
	for _, fn := range p.Functions {
		fmt.Fprintf(w, "Program(%s)\n", fn.Name)
		printStmts(w, fn.Body, "")
	}
}

func printStmts(w io.Writer, stmts []Stmt, indent string) {
	for i, s := range stmts {
		last := i == len(stmts)-1
		branch := "├── "
		next := indent + "│   "
		if last {
			branch = "└── "
			next = indent + "    "
		}
		io.WriteString(w, indent+branch)
		printStmt(w, s, next)
	}
}

func printStmt(w io.Writer, s Stmt, indent string) {
	switch n := s.(type) {
	case *Declaration:
		val := "None"
		if n.Value != nil {
			val = exprString(n.Value)
		}
		fmt.Fprintf(w, "VarDecl(%s, %s)\n", n.Name, val)
	case *Assignment:
		fmt.Fprintf(w, "Assign(%s, %s)\n", n.Name, exprString(n.Value))
	case *Return:
		fmt.Fprintf(w, "Return(%s)\n", exprString(n.Value))
	case *Print:
		fmt.Fprintf(w, "Print(%s)\n", exprString(n.Value))
	case *ExprStmt:
		fmt.Fprintf(w, "%s\n", exprString(n.Call))
	case *If:
		fmt.Fprintf(w, "If(%s)\n", exprString(n.Cond))
		for i, st := range n.Then {
			last := i == len(n.Then)-1 && n.Else == nil
			branch := "├── "
			next := indent + "│   "
			if last {
				branch = "└── "
				next = indent + "    "
			}
			io.WriteString(w, indent+branch)
			printStmt(w, st, next)
		}
		if n.Else != nil {
			fmt.Fprintf(w, "%s├── Else\n", indent)
			printStmts(w, n.Else, indent)
		}
	case *While:
		fmt.Fprintf(w, "While(%s)\n", exprString(n.Cond))
		printStmts(w, n.Body, indent)
	default:
		fmt.Fprintf(w, "%v\n", s)
	}
}

func exprString(e Expr) string {
	switch n := e.(type) {
	case *Number:
		return fmt.Sprintf("%d", n.Value)
	case *String:
		return n.Value
	case *Var:
		return n.Name
	case *BinOp:
		return fmt.Sprintf("(%s %s %s)", exprString(n.Left), n.Op, exprString(n.Right))
	case *FuncCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("%v", e)
	}
}
