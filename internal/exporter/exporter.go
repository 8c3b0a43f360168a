// Package exporter formats XADD diagrams back into the textual grammar
// the importer reads, walking store state directly rather than
// re-deriving a grammar AST first.
package exporter

import (
	"fmt"
	"strings"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/xadd"
)

// Format renders d's diagram as textual XADD source.
func Format(d xadd.Diagram) (string, error) {
	return formatNode(d.Engine, d.Root)
}

func formatNode(eng *xadd.Engine, id store.NodeID) (string, error) {
	node, err := eng.Store.Get(id)
	if err != nil {
		return "", err
	}
	if node.Kind == store.KindLeaf {
		return fmt.Sprintf("([%s])", node.Expr.String()), nil
	}

	dec, err := eng.Registry.Get(node.Dec)
	if err != nil {
		return "", err
	}
	high, err := formatNode(eng, node.High)
	if err != nil {
		return "", err
	}
	low, err := formatNode(eng, node.Low)
	if err != nil {
		return "", err
	}
	// The true branch is written first, matching the importer.
	return fmt.Sprintf("(%s %s %s)", formatDecision(dec), high, low), nil
}

func formatDecision(dec decision.Decision) string {
	if dec.IsBool() {
		return fmt.Sprintf("[%s]", dec.BoolVar)
	}
	return fmt.Sprintf("[%s %s 0]", dec.Form.ToExpr().String(), dec.Kind.String())
}

// bareDecision renders a decision without the grammar's brackets, for the
// indented human-readable form.
func bareDecision(dec decision.Decision) string {
	if dec.IsBool() {
		return dec.BoolVar
	}
	return fmt.Sprintf("%s %s 0", dec.Form.ToExpr().String(), dec.Kind.String())
}

// FormatIndented renders d the way a human would read it, one node per
// line with two-space indentation per decision level. Used by the REPL and
// CLI's pretty-print mode; the round-trippable grammar format is Format.
func FormatIndented(d xadd.Diagram) (string, error) {
	var b strings.Builder
	if err := formatIndentedNode(&b, d.Engine, d.Root, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func formatIndentedNode(b *strings.Builder, eng *xadd.Engine, id store.NodeID, level int) error {
	node, err := eng.Store.Get(id)
	if err != nil {
		return err
	}
	pad := strings.Repeat("  ", level)
	if node.Kind == store.KindLeaf {
		fmt.Fprintf(b, "%s[%s]\n", pad, node.Expr.String())
		return nil
	}
	dec, err := eng.Registry.Get(node.Dec)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "%sif %s:\n", pad, bareDecision(dec))
	if err := formatIndentedNode(b, eng, node.High, level+1); err != nil {
		return err
	}
	fmt.Fprintf(b, "%selse:\n", pad)
	return formatIndentedNode(b, eng, node.Low, level+1)
}
