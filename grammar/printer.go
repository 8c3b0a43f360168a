package grammar

import (
	"fmt"
	"strings"
)

// String renders d back into the textual XADD format, used by tests to
// check parse/print round-tripping; the canonical exporter for engine
// diagrams lives in internal/exporter and formats straight from store
// state rather than by building this AST first.
func (d *Diagram) String() string {
	if d == nil || d.Root == nil {
		return ""
	}
	return d.Root.String()
}

func (n *Node) String() string {
	switch {
	case n.Bracket != nil:
		return n.Bracket.String()
	case n.Bool != nil:
		return n.Bool.String()
	default:
		return ""
	}
}

func (b *BracketNode) String() string {
	if b.Low != nil && b.High != nil {
		return fmt.Sprintf("(%s %s %s)", b.Head.String(), b.High.String(), b.Low.String())
	}
	return fmt.Sprintf("(%s)", b.Head.String())
}

func (b *BoolNode) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Name, b.High.String(), b.Low.String())
}

func (b *Bracket) String() string {
	if b.HasRel() {
		return fmt.Sprintf("[%s %s %s]", b.Left.String(), b.Rel, b.Right.String())
	}
	return fmt.Sprintf("[%s]", b.Left.String())
}

func (e *Expr) String() string {
	var sb strings.Builder
	sb.WriteString(e.Left.String())
	for _, op := range e.Ops {
		fmt.Fprintf(&sb, " %s %s", op.Op, op.Right.String())
	}
	return sb.String()
}

func (t *Term) String() string {
	var sb strings.Builder
	sb.WriteString(t.Left.String())
	for _, op := range t.Ops {
		fmt.Fprintf(&sb, " %s %s", op.Op, op.Right.String())
	}
	return sb.String()
}

func (f *Factor) String() string {
	if f.Neg {
		return "-" + f.Atom.String()
	}
	return f.Atom.String()
}

func (a *Atom) String() string {
	switch {
	case a.Call != nil:
		return a.Call.String()
	case a.Number != nil:
		return *a.Number
	case a.Ident != nil:
		return *a.Ident
	case a.Paren != nil:
		return "(" + a.Paren.String() + ")"
	default:
		return ""
	}
}

func (c *Call) String() string {
	var sb strings.Builder
	sb.WriteString(c.Func)
	sb.WriteString("(")
	for i, arg := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(")")
	return sb.String()
}
