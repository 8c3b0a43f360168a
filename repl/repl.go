// Package repl provides an interactive line-based shell for building and
// querying XADD diagrams.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/xadd-go/xadd/internal/diag"
	"github.com/xadd-go/xadd/internal/exporter"
	"github.com/xadd-go/xadd/internal/importer"
	"github.com/xadd-go/xadd/internal/symbexpr"
	"github.com/xadd-go/xadd/internal/xadd"
)

const PROMPT = "xadd> "

// Session holds one engine plus the diagrams named so far. The result of
// the most recent command is always available as "_".
type Session struct {
	eng   *xadd.Engine
	named map[string]xadd.Diagram
	out   io.Writer
}

// NewSession returns a Session writing its output to out.
func NewSession(out io.Writer) *Session {
	return &Session{
		eng:   xadd.NewEngine(),
		named: make(map[string]xadd.Diagram),
		out:   out,
	}
}

// Start runs a read-eval-print loop over in until EOF or :quit.
func Start(in io.Reader, out io.Writer) {
	s := NewSession(out)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return
		}
		s.Eval(line)
	}
}

// Eval executes one REPL line: a command starting with ":", or a diagram
// definition "name = <text>" / bare "<text>".
func (s *Session) Eval(line string) {
	if strings.HasPrefix(line, ":") {
		s.evalCommand(line)
		return
	}

	name := "_"
	text := line
	if eq := strings.Index(line, "="); eq > 0 {
		candidate := strings.TrimSpace(line[:eq])
		if isIdent(candidate) {
			name = candidate
			text = strings.TrimSpace(line[eq+1:])
		}
	}

	d, err := importer.Import(s.eng, "<repl>", text)
	if err != nil {
		s.reportError(text, err)
		return
	}
	s.named[name] = d
	s.named["_"] = d
	s.printIndented(d)
}

func (s *Session) evalCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help", ":h":
		s.printHelp()
	case ":apply":
		s.cmdApply(fields[1:])
	case ":unary":
		s.cmdUnary(fields[1:])
	case ":eval":
		s.cmdEval(fields[1:])
	case ":prune":
		s.cmdPrune(fields[1:])
	case ":print":
		s.cmdPrint(fields[1:])
	case ":vars":
		s.cmdVars(fields[1:])
	default:
		color.New(color.FgRed).Fprintf(s.out, "unknown command %s (try :help)\n", fields[0])
	}
}

func (s *Session) cmdApply(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "usage: :apply <op> <a> <b> [name]")
		return
	}
	op, err := xadd.ParseOp(args[0])
	if err != nil {
		s.reportError("", err)
		return
	}
	a, ok := s.lookup(args[1])
	if !ok {
		return
	}
	b, ok := s.lookup(args[2])
	if !ok {
		return
	}
	result, err := a.Apply(b, op)
	if err != nil {
		s.reportError("", err)
		return
	}
	s.store(args, 3, result)
	s.printIndented(result)
}

func (s *Session) cmdUnary(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: :unary <op> <a> [exponent] [name]")
		return
	}
	op, err := xadd.ParseUnaryOp(args[0])
	if err != nil {
		s.reportError("", err)
		return
	}
	a, ok := s.lookup(args[1])
	if !ok {
		return
	}
	var arg xadd.Arg
	next := 2
	if op == xadd.UnaryPow {
		if len(args) < 3 {
			fmt.Fprintln(s.out, "pow needs an exponent: :unary pow <a> <exponent>")
			return
		}
		exp, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintf(s.out, "bad exponent %q\n", args[2])
			return
		}
		arg = symbexpr.Number(exp)
		next = 3
	}
	result, err := a.Unary(op, arg)
	if err != nil {
		s.reportError("", err)
		return
	}
	s.store(args, next, result)
	s.printIndented(result)
}

func (s *Session) cmdEval(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: :eval <a> [var=value ...]")
		return
	}
	a, ok := s.lookup(args[0])
	if !ok {
		return
	}
	boolAssign := map[string]bool{}
	contAssign := map[string]float64{}
	for _, binding := range args[1:] {
		name, raw, found := strings.Cut(binding, "=")
		if !found {
			fmt.Fprintf(s.out, "bad binding %q (want var=value)\n", binding)
			return
		}
		switch raw {
		case "true", "false":
			boolAssign[name] = raw == "true"
		default:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				fmt.Fprintf(s.out, "bad value %q for %s\n", raw, name)
				return
			}
			contAssign[name] = v
		}
	}
	result, err := a.Evaluate(boolAssign, contAssign, true)
	if err != nil {
		s.reportError("", err)
		return
	}
	fmt.Fprintf(s.out, "%g\n", result)
}

func (s *Session) cmdPrune(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: :prune <a> [name]")
		return
	}
	a, ok := s.lookup(args[0])
	if !ok {
		return
	}
	result, err := a.Prune()
	if err != nil {
		s.reportError("", err)
		return
	}
	s.store(args, 1, result)
	s.printIndented(result)
}

func (s *Session) cmdPrint(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: :print <a>")
		return
	}
	a, ok := s.lookup(args[0])
	if !ok {
		return
	}
	text, err := exporter.Format(a)
	if err != nil {
		s.reportError("", err)
		return
	}
	fmt.Fprintln(s.out, text)
}

func (s *Session) cmdVars(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: :vars <a>")
		return
	}
	a, ok := s.lookup(args[0])
	if !ok {
		return
	}
	vars, err := a.Engine.CollectVars(a.Root)
	if err != nil {
		s.reportError("", err)
		return
	}
	names := make([]string, 0, len(vars))
	for v := range vars {
		names = append(names, v)
	}
	sort.Strings(names)
	fmt.Fprintln(s.out, strings.Join(names, " "))
}

// store saves result under args[idx] when present, and always under "_".
func (s *Session) store(args []string, idx int, result xadd.Diagram) {
	if len(args) > idx {
		s.named[args[idx]] = result
	}
	s.named["_"] = result
}

func (s *Session) lookup(name string) (xadd.Diagram, bool) {
	d, ok := s.named[name]
	if !ok {
		color.New(color.FgRed).Fprintf(s.out, "no diagram named %q\n", name)
	}
	return d, ok
}

func (s *Session) printIndented(d xadd.Diagram) {
	text, err := exporter.FormatIndented(d)
	if err != nil {
		s.reportError("", err)
		return
	}
	fmt.Fprint(s.out, text)
}

func (s *Session) reportError(source string, err error) {
	reporter := diag.NewReporter("<repl>", source)
	fmt.Fprint(s.out, reporter.FormatError(diag.FromAny(err)))
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, `commands:
  <text>                     import a diagram, e.g. ([x <= 0] ([1]) ([2]))
  name = <text>              import and bind it to a name
  :apply <op> <a> <b> [name] compose two diagrams (add, prod, min, <=, ...)
  :unary <op> <a> [exp]      leaf-wise transform (sin, sqrt, pow, not, ...)
  :eval <a> var=value ...    evaluate under an assignment (b=true, x=1.5)
  :prune <a> [name]          drop branches with infeasible guards
  :print <a>                 print in importable form
  :vars <a>                  list free variables
  :quit                      exit
`)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if !alpha && !(digit && i > 0) {
			return false
		}
	}
	return true
}
