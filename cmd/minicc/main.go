// Command minicc reads a mini-C source file, runs it through the full
// compile pipeline, and prints, in order: tokens, AST, TAC, optimized
// TAC, target text, program output, and exit value.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"minicc/ast"
	"minicc/interp"
	"minicc/internal/config"
	"minicc/internal/diag"
	"minicc/lexer"
	"minicc/optimize"
	"minicc/parser"
	"minicc/sema"
	"minicc/tac"
	"minicc/target"
)

// dumpMode is a flag.Value over a small closed set of string choices,
// validated at parse time.
type dumpMode string

func (d *dumpMode) String() string { return string(*d) }
func (d *dumpMode) Set(s string) error {
	switch s {
	case "", "tree", "raw":
		*d = dumpMode(s)
		return nil
	default:
		return errors.Errorf("unknown -dump mode %q (want tree or raw)", s)
	}
}

var (
	debug      bool
	verbose    bool
	noColor    bool
	configPath string
	dump       dumpMode = "tree"
)

func atExit(err error) {
	if err == nil {
		return
	}
	if debug {
		fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
	}
	os.Exit(1)
}

func main() {
	flag.BoolVar(&debug, "debug", false, "print full error causes on failure")
	flag.BoolVar(&verbose, "v", false, "narrate semantic analysis as it runs")
	flag.BoolVar(&noColor, "no-color", false, "disable colorized diagnostic output")
	flag.StringVar(&configPath, "config", "", "load compiler settings from `file` (TOML)")
	flag.Var(&dump, "dump", "AST/TAC dump style: tree or raw")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: minicc [flags] <source-file>")
		os.Exit(2)
	}

	if noColor {
		disableColor()
	}

	var err error
	defer func() { atExit(err) }()

	err = run(flag.Arg(0))
}

func run(path string) error {
	settings := config.Default()
	if configPath != "" {
		loaded, lerr := config.Load(configPath)
		if lerr != nil {
			return lerr
		}
		settings = loaded
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %q", path)
	}

	stdout := bufio.NewWriter(os.Stdout)
	w := diag.NewWriter(stdout)
	defer stdout.Flush()

	fmt.Fprintln(w, "===============================================")
	fmt.Fprintln(w, "                MINICC")
	fmt.Fprintln(w, "===============================================")
	fmt.Fprintln(w)
	diag.Section(w, "SOURCE CODE")
	fmt.Fprintln(w, string(src))
	diag.Rule(w)

	toks, err := lexer.Tokenize(string(src))
	if err != nil {
		return errors.Wrapf(err, "tokenizing %q", path)
	}
	diag.Section(w, "TOKENS")
	diag.Tokens(w, toks)
	diag.Rule(w)

	prog, err := parser.Parse(toks)
	if err != nil {
		return errors.Wrapf(err, "parsing %q", path)
	}
	diag.Section(w, "SYNTAX TREE")
	if dump == "raw" {
		diag.RawDump(w, "SYNTAX TREE", prog)
	} else {
		ast.Fprint(w, prog)
	}
	diag.Rule(w)

	var semaOpts []sema.Option
	if verbose {
		semaOpts = append(semaOpts, sema.Verbose(w))
	}
	if err := sema.Analyze(prog, semaOpts...); err != nil {
		return errors.Wrapf(err, "analyzing %q", path)
	}
	diag.Section(w, "SEMANTIC CHECKS COMPLETED")
	diag.Rule(w)

	code := tac.Generate(prog)
	diag.Section(w, "INTERMEDIATE CODE (TAC)")
	if dump == "raw" {
		diag.RawDump(w, "INTERMEDIATE CODE (TAC)", code)
	} else {
		diag.TAC(w, code)
	}
	diag.Rule(w)

	optimized := code
	if settings.Optimize {
		optimized = optimize.Optimize(code)
	}
	diag.Section(w, "OPTIMIZED TAC")
	if dump == "raw" {
		diag.RawDump(w, "OPTIMIZED TAC", optimized)
	} else {
		diag.TAC(w, optimized)
	}
	diag.Rule(w)

	lines := target.Generate(optimized)
	diag.Section(w, "TARGET CODE")
	for _, l := range lines {
		fmt.Fprintf(w, "    %s\n", l)
	}
	diag.Rule(w)

	var opts []interp.Option
	opts = append(opts, interp.Output(w))
	if !settings.PreserveDynamicScopeFallback {
		opts = append(opts, interp.DisableDynamicScopeFallback())
	}
	if settings.MaxParamStackDepth > 0 {
		opts = append(opts, interp.MaxParamStackDepth(settings.MaxParamStackDepth))
	}
	in, err := interp.New(optimized, opts...)
	if err != nil {
		return errors.Wrapf(err, "preparing interpreter for %q", path)
	}

	diag.Section(w, "PROGRAM OUTPUT")
	_, exitValue, err := in.Execute()
	if err != nil {
		return errors.Wrapf(err, "executing %q", path)
	}
	diag.Rule(w)
	fmt.Fprintf(w, "Program exited with return value: %d\n", exitValue)

	return w.Err
}
