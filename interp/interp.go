// Package interp executes TAC programs: nested call frames, a
// process-wide parameter-passing stack, and mixed-type (integer/string)
// value handling.
//
// An Interpreter is configured with functional options. The dispatch
// loop is a single switch over the opcode, with a top-level recover
// turning an internal panic into a returned RuntimeError.
package interp

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"minicc/tac"
)

// RuntimeError is a fatal interpreter error: unknown function in CALL,
// unknown label in a jump, or a string operand in a strict-integer
// operation.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	return errors.Errorf("runtime error: %s", e.Msg).Error()
}

// frame is one live call's environment plus its return register, the
// slot holding the most recent callee's return value, read by POP.
type frame struct {
	env map[string]Value
	ret Value
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// Output redirects PRINT output to w instead of the default io.Discard.
func Output(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// DisableDynamicScopeFallback turns off the legacy name-resolution
// fallback under which a name unresolved in the current frame is
// searched for in every older frame. The fallback is on by default.
func DisableDynamicScopeFallback() Option {
	return func(in *Interpreter) { in.noDynamicScope = true }
}

// MaxParamStackDepth bounds the process-wide parameter stack; a PARAM
// push that would exceed it is a RuntimeError instead of growing
// without limit. max <= 0 leaves the stack unbounded.
func MaxParamStackDepth(max int) Option {
	return func(in *Interpreter) { in.maxParamDepth = max }
}

// Interpreter executes a TAC program.
type Interpreter struct {
	prog   tac.Program
	labels map[string]int
	funcs  map[string]int
	out    io.Writer

	frames         []*frame
	params         []Value
	output         []string
	noDynamicScope bool
	maxParamDepth  int
}

// New builds an Interpreter over prog, indexing labels and function
// entry points. It fails if no function named main exists.
func New(prog tac.Program, opts ...Option) (*Interpreter, error) {
	in := &Interpreter{
		prog:   prog,
		labels: make(map[string]int),
		funcs:  make(map[string]int),
		out:    io.Discard,
	}
	for i, q := range prog {
		if q.Op == tac.LABEL && q.A1 != "" {
			in.labels[q.A1] = i
		}
		if q.Op == tac.FUNC && q.A1 != "" {
			in.funcs[q.A1] = i
		}
	}
	for _, opt := range opts {
		opt(in)
	}
	if _, ok := in.funcs["main"]; !ok {
		return nil, &RuntimeError{Msg: "main() not found"}
	}
	return in, nil
}

// Execute calls main with no arguments and returns the captured PRINT
// output lines together with main's return value as the process exit
// value.
func (in *Interpreter) Execute() (output []string, exitValue int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()
	ret := in.call("main", nil)
	return in.output, ret.Int64(), nil
}

func (in *Interpreter) fail(format string, args ...interface{}) {
	panic(&RuntimeError{Msg: errors.Errorf(format, args...).Error()})
}

// call runs one invocation of the named function: bind parameters from
// the argument vector, then execute quads until RET or END_FUNC.
// Nested CALLs recurse into call, so the host Go call stack doubles as
// the interpreter's call stack.
func (in *Interpreter) call(name string, args []Value) Value {
	start, ok := in.funcs[name]
	if !ok {
		in.fail("function %q not found", name)
	}

	env := make(map[string]Value)
	pc := start + 1
	argIdx := 0
	for pc < len(in.prog) && in.prog[pc].Op == tac.PARAM_DECL {
		pname := in.prog[pc].A1
		if argIdx < len(args) {
			env[pname] = args[argIdx]
		} else {
			env[pname] = Int(0)
		}
		argIdx++
		pc++
	}

	fr := &frame{env: env}
	in.frames = append(in.frames, fr)
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	for pc < len(in.prog) {
		q := in.prog[pc]
		switch q.Op {
		case tac.END_FUNC, tac.FUNC, tac.PARAM_DECL, tac.LABEL:
			// no-ops during execution; END_FUNC additionally ends the frame
			if q.Op == tac.END_FUNC {
				return Int(0)
			}
			pc++

		case tac.MOV:
			env[q.Res] = in.value(fr, q.A1)
			pc++

		case tac.PLUS, tac.MINUS, tac.MUL, tac.DIV, tac.EQ, tac.NE, tac.GT, tac.LT, tac.GE, tac.LE:
			env[q.Res] = in.evalBinOp(fr, q.Op, q.A1, q.A2)
			pc++

		case tac.PARAM:
			if in.maxParamDepth > 0 && len(in.params) >= in.maxParamDepth {
				in.fail("parameter stack exceeded configured depth %d", in.maxParamDepth)
			}
			in.params = append(in.params, in.value(fr, q.A1))
			pc++

		case tac.CALL:
			argc, _ := strconv.Atoi(q.A2)
			var callArgs []Value
			if argc > 0 {
				n := len(in.params)
				callArgs = append(callArgs, in.params[n-argc:]...)
				in.params = in.params[:n-argc]
			}
			fr.ret = in.call(q.A1, callArgs)
			pc++

		case tac.POP:
			env[q.Res] = fr.ret
			pc++

		case tac.PRINT:
			v := in.value(fr, q.A1)
			line := v.String()
			io.WriteString(in.out, line+"\n")
			in.output = append(in.output, line)
			pc++

		case tac.IFZ_GOTO:
			cond := in.ensureInt(in.value(fr, q.A1), "IFZ_GOTO")
			if cond == 0 {
				next, ok := in.labels[q.Res]
				if !ok {
					in.fail("undefined label %q", q.Res)
				}
				pc = next
				continue
			}
			pc++

		case tac.GOTO:
			next, ok := in.labels[q.A1]
			if !ok {
				in.fail("undefined label %q", q.A1)
			}
			pc = next

		case tac.RET:
			return in.value(fr, q.A1)

		default:
			in.fail("unsupported opcode %s", q.Op)
		}
	}
	return Int(0)
}

// value evaluates an operand string: empty, quoted string literal,
// integer literal, or a name looked up first in the current frame and,
// failing that, in every older frame from newest to oldest. That
// fallback is dynamic scoping and is a deliberately preserved legacy
// quirk, not a design goal; DisableDynamicScopeFallback turns it off.
func (in *Interpreter) value(fr *frame, s string) Value {
	if s == "" {
		return Int(0)
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return Str(strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`))
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if v, ok := fr.env[s]; ok {
		return v
	}
	if !in.noDynamicScope {
		for i := len(in.frames) - 1; i >= 0; i-- {
			if v, ok := in.frames[i].env[s]; ok {
				return v
			}
		}
	}
	return Int(0)
}

// ensureInt requires v to hold an integer for use in a strict-integer
// operation; a string operand is a runtime error.
func (in *Interpreter) ensureInt(v Value, opName string) int64 {
	if v.IsString() {
		in.fail("cannot use string value %q in numeric operation %q", v.String(), opName)
	}
	return v.Int64()
}

func (in *Interpreter) evalBinOp(fr *frame, op tac.Op, a1, a2 string) Value {
	left := in.value(fr, a1)
	right := in.value(fr, a2)

	if op == tac.EQ || op == tac.NE {
		if left.IsString() || right.IsString() {
			eq := left.String() == right.String()
			if op == tac.NE {
				eq = !eq
			}
			return Int(boolInt(eq))
		}
	}

	l := in.ensureInt(left, tac.Symbol(op))
	r := in.ensureInt(right, tac.Symbol(op))
	switch op {
	case tac.PLUS:
		return Int(l + r)
	case tac.MINUS:
		return Int(l - r)
	case tac.MUL:
		return Int(l * r)
	case tac.DIV:
		if r == 0 {
			return Int(0)
		}
		return Int(l / r)
	case tac.EQ:
		return Int(boolInt(l == r))
	case tac.NE:
		return Int(boolInt(l != r))
	case tac.GT:
		return Int(boolInt(l > r))
	case tac.LT:
		return Int(boolInt(l < r))
	case tac.GE:
		return Int(boolInt(l >= r))
	case tac.LE:
		return Int(boolInt(l <= r))
	default:
		in.fail("unsupported binary opcode %s", op)
		panic("unreachable")
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
