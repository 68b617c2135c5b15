// Package parser implements a hand-written recursive-descent parser
// with a single token of lookahead (two where a call must be
// distinguished from a variable reference).
//
// Errors are fail-fast with no recovery: the first mismatch aborts the
// parse via an internal panic caught in Parse, carrying the offending
// token's position.
package parser

import (
	"strconv"

	"github.com/pkg/errors"

	"minicc/ast"
	"minicc/token"
)

// Error reports a syntax error at the offending token's position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	return errors.Errorf("syntax error at %s: %s", e.Pos, e.Msg).Error()
}

type parser struct {
	toks []token.Token
	pos  int
}

// Parse builds a Program from a complete token stream (including its
// trailing EOF token).
func Parse(toks []token.Token) (prog *ast.Program, err error) {
	p := &parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*Error); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	return p.program(), nil
}

func (p *parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *parser) peek(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) fail(format string, args ...interface{}) {
	panic(&Error{Pos: p.cur().Pos, Msg: errorsSprintf(format, args...)})
}

func errorsSprintf(format string, args ...interface{}) string {
	return errors.Errorf(format, args...).Error()
}

// eat consumes and returns the current token, which must have the
// given kind.
func (p *parser) eat(kind token.Kind) token.Token {
	t := p.cur()
	if t.Kind != kind {
		p.fail("expected %s, found %s", kind, t.Kind)
	}
	p.pos++
	return t
}

func (p *parser) program() *ast.Program {
	var funcs []*ast.Function
	for p.cur().Kind != token.EOF {
		funcs = append(funcs, p.function())
	}
	return &ast.Program{Functions: funcs}
}

func (p *parser) function() *ast.Function {
	pos := p.cur().Pos
	p.eat(token.INT)
	name := p.eat(token.IDENT).Text
	p.eat(token.LPAREN)
	var params []string
	if p.cur().Kind != token.RPAREN {
		for {
			if p.cur().Kind == token.INT {
				p.eat(token.INT)
			}
			params = append(params, p.eat(token.IDENT).Text)
			if p.cur().Kind == token.COMMA {
				p.eat(token.COMMA)
				continue
			}
			break
		}
	}
	p.eat(token.RPAREN)
	body := p.block()
	return &ast.Function{Name: name, Params: params, Body: body, Pos: pos}
}

func (p *parser) block() []ast.Stmt {
	p.eat(token.LBRACE)
	var stmts []ast.Stmt
	for p.cur().Kind != token.RBRACE {
		stmts = append(stmts, p.statement())
	}
	p.eat(token.RBRACE)
	return stmts
}

func (p *parser) statement() ast.Stmt {
	switch p.cur().Kind {
	case token.INT:
		return p.declaration()
	case token.IDENT:
		if p.peek(1).Kind == token.LPAREN {
			call := p.funcCall()
			p.eat(token.SEMI)
			return &ast.ExprStmt{Call: call}
		}
		return p.assignment()
	case token.RETURN:
		return p.returnStmt()
	case token.PRINT:
		return p.printStmt()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	default:
		p.fail("unexpected token %s in statement", p.cur().Kind)
		panic("unreachable")
	}
}

func (p *parser) declaration() ast.Stmt {
	pos := p.cur().Pos
	p.eat(token.INT)
	name := p.eat(token.IDENT).Text
	var val ast.Expr
	if p.cur().Kind == token.ASSIGN {
		p.eat(token.ASSIGN)
		val = p.expression()
	}
	p.eat(token.SEMI)
	return &ast.Declaration{Name: name, Value: val, Pos: pos}
}

func (p *parser) assignment() ast.Stmt {
	pos := p.cur().Pos
	name := p.eat(token.IDENT).Text
	p.eat(token.ASSIGN)
	val := p.expression()
	p.eat(token.SEMI)
	return &ast.Assignment{Name: name, Value: val, Pos: pos}
}

func (p *parser) returnStmt() ast.Stmt {
	pos := p.cur().Pos
	p.eat(token.RETURN)
	val := p.expression()
	p.eat(token.SEMI)
	return &ast.Return{Value: val, Pos: pos}
}

func (p *parser) printStmt() ast.Stmt {
	pos := p.cur().Pos
	p.eat(token.PRINT)
	p.eat(token.LPAREN)
	val := p.expression()
	p.eat(token.RPAREN)
	p.eat(token.SEMI)
	return &ast.Print{Value: val, Pos: pos}
}

func (p *parser) ifStmt() ast.Stmt {
	pos := p.cur().Pos
	p.eat(token.IF)
	p.eat(token.LPAREN)
	cond := p.expression()
	p.eat(token.RPAREN)
	then := p.block()
	var els []ast.Stmt
	if p.cur().Kind == token.ELSE {
		p.eat(token.ELSE)
		if p.cur().Kind == token.IF {
			els = []ast.Stmt{p.ifStmt()}
		} else {
			els = p.block()
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Pos: pos}
}

func (p *parser) whileStmt() ast.Stmt {
	pos := p.cur().Pos
	p.eat(token.WHILE)
	p.eat(token.LPAREN)
	cond := p.expression()
	p.eat(token.RPAREN)
	body := p.block()
	return &ast.While{Cond: cond, Body: body, Pos: pos}
}

func (p *parser) funcCall() *ast.FuncCall {
	pos := p.cur().Pos
	name := p.eat(token.IDENT).Text
	p.eat(token.LPAREN)
	var args []ast.Expr
	if p.cur().Kind != token.RPAREN {
		for {
			args = append(args, p.expression())
			if p.cur().Kind == token.COMMA {
				p.eat(token.COMMA)
				continue
			}
			break
		}
	}
	p.eat(token.RPAREN)
	return &ast.FuncCall{Name: name, Args: args, Pos: pos}
}

var relOps = map[token.Kind]string{
	token.EQ: "==", token.NE: "!=",
	token.LT: "<", token.LE: "<=",
	token.GT: ">", token.GE: ">=",
}

func (p *parser) expression() ast.Expr {
	n := p.additive()
	for {
		op, ok := relOps[p.cur().Kind]
		if !ok {
			return n
		}
		pos := p.cur().Pos
		p.pos++
		r := p.additive()
		n = &ast.BinOp{Op: op, Left: n, Right: r, Pos: pos}
	}
}

func (p *parser) additive() ast.Expr {
	n := p.term()
	for p.cur().Kind == token.PLUS || p.cur().Kind == token.MINUS {
		op := "+"
		if p.cur().Kind == token.MINUS {
			op = "-"
		}
		pos := p.cur().Pos
		p.pos++
		r := p.term()
		n = &ast.BinOp{Op: op, Left: n, Right: r, Pos: pos}
	}
	return n
}

func (p *parser) term() ast.Expr {
	n := p.factor()
	for p.cur().Kind == token.MUL || p.cur().Kind == token.DIV {
		op := "*"
		if p.cur().Kind == token.DIV {
			op = "/"
		}
		pos := p.cur().Pos
		p.pos++
		r := p.factor()
		n = &ast.BinOp{Op: op, Left: n, Right: r, Pos: pos}
	}
	return n
}

func (p *parser) factor() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.NUMBER:
		p.pos++
		v, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			p.fail("invalid integer literal %q", t.Text)
		}
		return &ast.Number{Value: v, Pos: t.Pos}
	case token.STRING:
		p.pos++
		return &ast.String{Value: t.Text, Pos: t.Pos}
	case token.IDENT:
		if p.peek(1).Kind == token.LPAREN {
			return p.funcCall()
		}
		p.pos++
		return &ast.Var{Name: t.Text, Pos: t.Pos}
	case token.LPAREN:
		p.pos++
		n := p.expression()
		p.eat(token.RPAREN)
		return n
	default:
		p.fail("unexpected token %s in expression", t.Kind)
		panic("unreachable")
	}
}
