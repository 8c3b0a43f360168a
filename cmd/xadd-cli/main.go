package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/xadd-go/xadd/internal/diag"
	"github.com/xadd-go/xadd/internal/exporter"
	"github.com/xadd-go/xadd/internal/importer"
	"github.com/xadd-go/xadd/internal/xadd"
	"github.com/xadd-go/xadd/repl"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: xadd-cli <file.xadd> [<op> <file.xadd>]")
		fmt.Println("       xadd-cli repl")
		os.Exit(1)
	}

	if os.Args[1] == "repl" {
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	eng := xadd.NewEngine()
	d := importFile(eng, os.Args[1])

	if len(os.Args) >= 4 {
		op, err := xadd.ParseOp(os.Args[2])
		if err != nil {
			reportError(os.Args[2], "", err)
			os.Exit(1)
		}
		other := importFile(eng, os.Args[3])
		result, err := d.Apply(other, op)
		if err != nil {
			reportError(os.Args[1], "", err)
			os.Exit(1)
		}
		d = result
	}

	text, err := exporter.Format(d)
	if err != nil {
		reportError(os.Args[1], "", err)
		os.Exit(1)
	}
	fmt.Println(text)

	indented, err := exporter.FormatIndented(d)
	if err != nil {
		reportError(os.Args[1], "", err)
		os.Exit(1)
	}
	fmt.Print(indented)

	color.Green("ok: %s", os.Args[1])
}

func importFile(eng *xadd.Engine, path string) xadd.Diagram {
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}
	d, err := importer.Import(eng, path, string(source))
	if err != nil {
		reportError(path, string(source), err)
		os.Exit(1)
	}
	return d
}

// reportError prints a caret-style diagnostic against the file's source.
func reportError(filename, source string, err error) {
	reporter := diag.NewReporter(filename, source)
	fmt.Fprint(os.Stderr, reporter.FormatError(diag.FromAny(err)))
}
