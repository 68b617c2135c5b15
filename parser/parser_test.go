package parser_test

import (
	"testing"

	"minicc/ast"
	"minicc/lexer"
	"minicc/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %+v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse: %+v", err)
	}
	return prog
}

func TestParseFunctionShape(t *testing.T) {
	prog := mustParse(t, `int add(int a, int b) { return a+b; } int main() { return add(2,40); }`)
	if len(prog.Functions) != 2 {
		t.Fatalf("got %d functions, want 2", len(prog.Functions))
	}
	add := prog.Functions[0]
	if add.Name != "add" || len(add.Params) != 2 || add.Params[0] != "a" || add.Params[1] != "b" {
		t.Errorf("got %+v, want add(a, b)", add)
	}
	if len(add.Body) != 1 {
		t.Fatalf("got %d statements in add's body, want 1", len(add.Body))
	}
	ret, ok := add.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("got %T, want *ast.Return", add.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinOp)
	if !ok || bin.Op != "+" {
		t.Errorf("got %+v, want a BinOp(+)", ret.Value)
	}
}

func TestParseParamsWithoutRepeatedInt(t *testing.T) {
	// params := ('int'? IDENT) (',' 'int'? IDENT)* - the type keyword is
	// optional on each parameter.
	prog := mustParse(t, `int add(int a, b) { return a+b; } int main() { return 0; }`)
	add := prog.Functions[0]
	if len(add.Params) != 2 || add.Params[1] != "b" {
		t.Errorf("got params %v, want [a b]", add.Params)
	}
}

func TestParseCallDisambiguation(t *testing.T) {
	prog := mustParse(t, `int f() { return 0; } int main() { f(); return 0; }`)
	main := prog.Functions[1]
	stmt, ok := main.Body[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.ExprStmt", main.Body[0])
	}
	if stmt.Call.Name != "f" {
		t.Errorf("got call to %q, want f", stmt.Call.Name)
	}
}

func TestParseElseIfIsNestedIf(t *testing.T) {
	prog := mustParse(t, `int main() {
		if (1<2) { return 1; } else if (2<3) { return 2; } else { return 3; }
	}`)
	ifStmt := prog.Functions[0].Body[0].(*ast.If)
	if len(ifStmt.Else) != 1 {
		t.Fatalf("got %d else statements, want 1 nested if", len(ifStmt.Else))
	}
	if _, ok := ifStmt.Else[0].(*ast.If); !ok {
		t.Errorf("got %T, want a nested *ast.If for else-if", ifStmt.Else[0])
	}
}

func TestParseRelationalChainFoldsLeftToRight(t *testing.T) {
	// expression := additive (relop additive)*; a<b<c folds as (a<b)<c.
	prog := mustParse(t, `int main() { int a; int b; int c; return a<b<c; }`)
	ret := prog.Functions[0].Body[3].(*ast.Return)
	outer, ok := ret.Value.(*ast.BinOp)
	if !ok || outer.Op != "<" {
		t.Fatalf("got %+v, want outer BinOp(<)", ret.Value)
	}
	inner, ok := outer.Left.(*ast.BinOp)
	if !ok || inner.Op != "<" {
		t.Errorf("got %+v, want inner BinOp(<) on the left", outer.Left)
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := mustParse(t, `int main() { return 2+3*4; }`)
	ret := prog.Functions[0].Body[0].(*ast.Return)
	bin := ret.Value.(*ast.BinOp)
	if bin.Op != "+" {
		t.Fatalf("got top op %q, want +", bin.Op)
	}
	right := bin.Right.(*ast.BinOp)
	if right.Op != "*" {
		t.Errorf("got right op %q, want *", right.Op)
	}
}

func TestParseSyntaxErrorCarriesPosition(t *testing.T) {
	toks, err := lexer.Tokenize("int main() { return }")
	if err != nil {
		t.Fatalf("tokenize: %+v", err)
	}
	_, err = parser.Parse(toks)
	if err == nil {
		t.Fatal("expected a syntax error for a missing return expression")
	}
	pe, ok := err.(*parser.Error)
	if !ok {
		t.Fatalf("got error of type %T, want *parser.Error", err)
	}
	if pe.Pos.Line == 0 {
		t.Errorf("got zero-valued position on syntax error")
	}
}
