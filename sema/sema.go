// Package sema validates declarations, references, and function
// signatures over a parsed Program, in two passes: collect every
// function into a global table, then walk each body with a lexical
// scope stack.
package sema

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"minicc/ast"
)

// Error reports a semantic error naming the offending construct.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return errors.Errorf("semantic error: %s", e.Msg).Error()
}

// varType distinguishes the language's two value types.
type varType int

const (
	typeInt varType = iota
	typeString
)

type analyzer struct {
	functions map[string]*ast.Function
	scopes    []map[string]varType
	narrate   io.Writer
}

// Option configures an analysis run.
type Option func(*analyzer)

// Verbose narrates per-function and per-declaration progress to w as
// the analyzer walks the tree. It has no effect on the validated AST
// or on any error returned.
func Verbose(w io.Writer) Option {
	return func(a *analyzer) { a.narrate = w }
}

// Analyze validates prog. It returns the first error encountered;
// there is no recovery.
func Analyze(prog *ast.Program, opts ...Option) (err error) {
	a := &analyzer{functions: make(map[string]*ast.Function)}
	for _, opt := range opts {
		opt(a)
	}
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*Error); ok {
				err = se
				return
			}
			panic(r)
		}
	}()

	for _, fn := range prog.Functions {
		if _, dup := a.functions[fn.Name]; dup {
			a.fail("duplicate function %q", fn.Name)
		}
		a.functions[fn.Name] = fn
	}

	for _, fn := range prog.Functions {
		a.visitFunction(fn)
	}
	return nil
}

func (a *analyzer) fail(format string, args ...interface{}) {
	panic(&Error{Msg: errors.Errorf(format, args...).Error()})
}

func (a *analyzer) note(format string, args ...interface{}) {
	if a.narrate != nil {
		fmt.Fprintf(a.narrate, format+"\n", args...)
	}
}

func (a *analyzer) visitFunction(fn *ast.Function) {
	a.note("Analyzing function: %s", fn.Name)
	a.scopes = []map[string]varType{make(map[string]varType)}
	for _, p := range fn.Params {
		if _, dup := a.top()[p]; dup {
			a.fail("duplicate parameter %q in function %q", p, fn.Name)
		}
		a.top()[p] = typeInt
		a.note("Declared parameter: %s", p)
	}
	for _, stmt := range fn.Body {
		a.visitStmt(stmt)
	}
}

// top returns the innermost live scope frame.
func (a *analyzer) top() map[string]varType {
	return a.scopes[len(a.scopes)-1]
}

// pushScope and popScope implement block-local scoping:
// if/else/while bodies get their own frame on the scope
// stack, so a nested declaration of a name visible in an outer frame
// is legal shadowing rather than a redeclaration, and the frame is
// discarded on block exit so its declarations don't leak to sibling or
// following statements.
func (a *analyzer) pushScope() {
	a.scopes = append(a.scopes, make(map[string]varType))
}

func (a *analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

// lookup finds name in the innermost scope that declares it, searching
// from the current block outward to the function's top-level frame.
func (a *analyzer) lookup(name string) (varType, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if t, ok := a.scopes[i][name]; ok {
			return t, true
		}
	}
	return 0, false
}

func (a *analyzer) visitStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.Declaration:
		if _, dup := a.top()[n.Name]; dup {
			a.fail("variable %q redeclared", n.Name)
		}
		a.top()[n.Name] = typeInt
		a.note("Declared variable: %s", n.Name)
		if n.Value != nil {
			a.visitExpr(n.Value)
		}
	case *ast.Assignment:
		if _, ok := a.lookup(n.Name); !ok {
			a.fail("variable %q used before declaration", n.Name)
		}
		a.visitExpr(n.Value)
	case *ast.Return:
		a.visitExpr(n.Value)
	case *ast.Print:
		a.visitExpr(n.Value)
	case *ast.If:
		a.visitExpr(n.Cond)
		a.pushScope()
		for _, s := range n.Then {
			a.visitStmt(s)
		}
		a.popScope()
		if n.Else != nil {
			a.pushScope()
			for _, s := range n.Else {
				a.visitStmt(s)
			}
			a.popScope()
		}
	case *ast.While:
		a.visitExpr(n.Cond)
		a.pushScope()
		for _, s := range n.Body {
			a.visitStmt(s)
		}
		a.popScope()
	case *ast.ExprStmt:
		a.visitCall(n.Call)
	default:
		a.fail("unknown statement type %T", stmt)
	}
}

// visitExpr type-checks an expression and returns its type. Binary
// operators require integer operands, except that == and != additionally
// accept a string on either side.
func (a *analyzer) visitExpr(expr ast.Expr) varType {
	switch n := expr.(type) {
	case *ast.Number:
		return typeInt
	case *ast.String:
		return typeString
	case *ast.Var:
		if _, ok := a.lookup(n.Name); !ok {
			a.fail("use of undeclared variable %q", n.Name)
		}
		return typeInt
	case *ast.BinOp:
		lt := a.visitExpr(n.Left)
		rt := a.visitExpr(n.Right)
		if (n.Op == "==" || n.Op == "!=") && (lt == typeString || rt == typeString) {
			return typeInt
		}
		if lt != typeInt || rt != typeInt {
			a.fail("incompatible types in operation %q", n.Op)
		}
		return typeInt
	case *ast.FuncCall:
		a.visitCall(n)
		return typeInt
	default:
		a.fail("unknown expression type %T", expr)
		panic("unreachable")
	}
}

func (a *analyzer) visitCall(call *ast.FuncCall) {
	fn, ok := a.functions[call.Name]
	if !ok {
		a.fail("call to undeclared function %q", call.Name)
	}
	if len(call.Args) != len(fn.Params) {
		a.fail("function %q expects %d args, got %d", call.Name, len(fn.Params), len(call.Args))
	}
	for _, arg := range call.Args {
		if t := a.visitExpr(arg); t != typeInt {
			a.fail("argument to %q must be an integer", call.Name)
		}
	}
}
