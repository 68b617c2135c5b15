package interp_test

import (
	"strings"
	"testing"

	"minicc/interp"
	"minicc/lexer"
	"minicc/optimize"
	"minicc/parser"
	"minicc/sema"
	"minicc/tac"
)

// run executes src through the full front-to-back pipeline, the way
// cmd/minicc's run() does, and returns the captured PRINT output lines
// and main's return value.
func run(t *testing.T, src string) ([]string, int64) {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %+v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse: %+v", err)
	}
	if err := sema.Analyze(prog); err != nil {
		t.Fatalf("analyze: %+v", err)
	}
	code := optimize.Optimize(tac.Generate(prog))

	var out strings.Builder
	in, err := interp.New(code, interp.Output(&out))
	if err != nil {
		t.Fatalf("new interpreter: %+v", err)
	}
	lines, exit, err := in.Execute()
	if err != nil {
		t.Fatalf("execute: %+v", err)
	}
	return lines, exit
}

func TestEndToEndArithmetic(t *testing.T) {
	lines, exit := run(t, `int main(){ return 2+3*4; }`)
	if len(lines) != 0 || exit != 14 {
		t.Errorf("got output=%v exit=%d, want output=[] exit=14", lines, exit)
	}
}

func TestEndToEndWhileLoop(t *testing.T) {
	lines, exit := run(t, `int main(){ int i=0; while(i<3){ print(i); i=i+1; } return i; }`)
	want := []string{"0", "1", "2"}
	if strings.Join(lines, ",") != strings.Join(want, ",") || exit != 3 {
		t.Errorf("got output=%v exit=%d, want output=%v exit=3", lines, exit, want)
	}
}

func TestEndToEndFunctionCall(t *testing.T) {
	lines, exit := run(t, `int add(int a,int b){ return a+b; } int main(){ return add(2,40); }`)
	if len(lines) != 0 || exit != 42 {
		t.Errorf("got output=%v exit=%d, want output=[] exit=42", lines, exit)
	}
}

func TestEndToEndFactorialRecursion(t *testing.T) {
	lines, exit := run(t, `int fact(int n){ if(n==0){ return 1; } return n*fact(n-1); } int main(){ return fact(5); }`)
	if len(lines) != 0 || exit != 120 {
		t.Errorf("got output=%v exit=%d, want output=[] exit=120", lines, exit)
	}
}

func TestEndToEndStringsAndEquality(t *testing.T) {
	lines, exit := run(t, `int main(){ print("hello"); if("hi"=="hi"){ print(1); } else { print(0); } return 0; }`)
	want := []string{"hello", "1"}
	if strings.Join(lines, ",") != strings.Join(want, ",") || exit != 0 {
		t.Errorf("got output=%v exit=%d, want output=%v exit=0", lines, exit, want)
	}
}

func TestEndToEndBlockScopingAndZeroDefault(t *testing.T) {
	// Inner x does not leak; outer x is never assigned and
	// defaults to 0.
	lines, exit := run(t, `int main(){ int x; if(1<2){ int x; x=7; } return x; }`)
	if len(lines) != 0 || exit != 0 {
		t.Errorf("got output=%v exit=%d, want output=[] exit=0", lines, exit)
	}
}

func TestEndToEndSiblingBlocksShadowIndependently(t *testing.T) {
	// The second block's x starts unbound even though the first block
	// assigned its own shadow of the same name.
	lines, exit := run(t, `int main(){ int x; if(1<2){ int x; x=5; } if(2<3){ int x; return x; } return 9; }`)
	if len(lines) != 0 || exit != 0 {
		t.Errorf("got output=%v exit=%d, want output=[] exit=0", lines, exit)
	}
}

func TestEndToEndVariableNamedLikeTemp(t *testing.T) {
	lines, exit := run(t, `int main(){ int total=0; while(total<3){ total=total+1; } return total; }`)
	if len(lines) != 0 || exit != 3 {
		t.Errorf("got output=%v exit=%d, want output=[] exit=3", lines, exit)
	}
}

func TestEndToEndDivisionByZeroYieldsZero(t *testing.T) {
	_, exit := run(t, `int main(){ return 5/0; }`)
	if exit != 0 {
		t.Errorf("got exit=%d, want 0 (division by zero must not abort)", exit)
	}
}

func TestEndToEndIfWithNoElseFallsThrough(t *testing.T) {
	lines, exit := run(t, `int main(){ if(0){ print(1); } return 9; }`)
	if len(lines) != 0 || exit != 9 {
		t.Errorf("got output=%v exit=%d, want output=[] exit=9", lines, exit)
	}
}

func TestEndToEndDeterminism(t *testing.T) {
	src := `int fib(int n){ if(n<2){ return n; } return fib(n-1)+fib(n-2); } int main(){ return fib(10); }`
	lines1, exit1 := run(t, src)
	lines2, exit2 := run(t, src)
	if exit1 != exit2 || strings.Join(lines1, ",") != strings.Join(lines2, ",") {
		t.Errorf("got non-deterministic results: (%v,%d) vs (%v,%d)", lines1, exit1, lines2, exit2)
	}
}

func TestNewRequiresMainFunction(t *testing.T) {
	_, err := interp.New(tac.Program{{Op: tac.FUNC, A1: "helper"}, {Op: tac.END_FUNC, A1: "helper"}})
	if err == nil {
		t.Fatal("expected an error when no main function is present")
	}
}

func TestDynamicScopeFallbackIsPreservedByDefault(t *testing.T) {
	// A callee that reads a name it never declared falls back to the
	// caller's frame. Hand-built TAC exercises this directly since sema
	// would reject the equivalent source program.
	code := tac.Program{
		{Op: tac.FUNC, A1: "main"},
		{Op: tac.MOV, A1: "99", Res: "shared"},
		{Op: tac.PARAM, A1: "0"},
		{Op: tac.CALL, A1: "helper", A2: "0"},
		{Op: tac.POP, Res: "t1"},
		{Op: tac.RET, A1: "t1"},
		{Op: tac.END_FUNC, A1: "main"},
		{Op: tac.FUNC, A1: "helper"},
		{Op: tac.RET, A1: "shared"},
		{Op: tac.END_FUNC, A1: "helper"},
	}
	in, err := interp.New(code)
	if err != nil {
		t.Fatalf("new: %+v", err)
	}
	_, exit, err := in.Execute()
	if err != nil {
		t.Fatalf("execute: %+v", err)
	}
	if exit != 99 {
		t.Errorf("got exit=%d, want 99 (dynamic scope fallback should find caller's shared)", exit)
	}
}

func TestDynamicScopeFallbackCanBeDisabled(t *testing.T) {
	code := tac.Program{
		{Op: tac.FUNC, A1: "main"},
		{Op: tac.MOV, A1: "99", Res: "shared"},
		{Op: tac.PARAM, A1: "0"},
		{Op: tac.CALL, A1: "helper", A2: "0"},
		{Op: tac.POP, Res: "t1"},
		{Op: tac.RET, A1: "t1"},
		{Op: tac.END_FUNC, A1: "main"},
		{Op: tac.FUNC, A1: "helper"},
		{Op: tac.RET, A1: "shared"},
		{Op: tac.END_FUNC, A1: "helper"},
	}
	in, err := interp.New(code, interp.DisableDynamicScopeFallback())
	if err != nil {
		t.Fatalf("new: %+v", err)
	}
	_, exit, err := in.Execute()
	if err != nil {
		t.Fatalf("execute: %+v", err)
	}
	if exit != 0 {
		t.Errorf("got exit=%d, want 0 (fallback disabled, name unresolved)", exit)
	}
}

func TestRelationalStringOperandIsRuntimeError(t *testing.T) {
	code := tac.Program{
		{Op: tac.FUNC, A1: "main"},
		{Op: tac.MOV, A1: `"hi"`, Res: "s"},
		{Op: tac.GT, A1: "s", A2: "1", Res: "t1"},
		{Op: tac.RET, A1: "t1"},
		{Op: tac.END_FUNC, A1: "main"},
	}
	in, err := interp.New(code)
	if err != nil {
		t.Fatalf("new: %+v", err)
	}
	_, _, err = in.Execute()
	if err == nil {
		t.Fatal("expected a RuntimeError for a string operand in GT")
	}
	if _, ok := err.(*interp.RuntimeError); !ok {
		t.Errorf("got error of type %T, want *interp.RuntimeError", err)
	}
}

func TestUnknownLabelIsRuntimeError(t *testing.T) {
	code := tac.Program{
		{Op: tac.FUNC, A1: "main"},
		{Op: tac.GOTO, A1: "NOWHERE"},
		{Op: tac.END_FUNC, A1: "main"},
	}
	in, err := interp.New(code)
	if err != nil {
		t.Fatalf("new: %+v", err)
	}
	_, _, err = in.Execute()
	if err == nil {
		t.Fatal("expected a RuntimeError for an undefined label")
	}
}

func TestMaxParamStackDepthIsEnforced(t *testing.T) {
	code := tac.Program{
		{Op: tac.FUNC, A1: "main"},
		{Op: tac.PARAM, A1: "1"},
		{Op: tac.PARAM, A1: "2"},
		{Op: tac.RET, A1: "0"},
		{Op: tac.END_FUNC, A1: "main"},
	}
	in, err := interp.New(code, interp.MaxParamStackDepth(1))
	if err != nil {
		t.Fatalf("new: %+v", err)
	}
	_, _, err = in.Execute()
	if err == nil {
		t.Fatal("expected a RuntimeError once the parameter stack exceeds its configured depth")
	}
}
