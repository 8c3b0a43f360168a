package grammar

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
)

// parserInstance is built once, at package initialization, and reused;
// participle parsers are safe for concurrent read-only use once built.
var parserInstance = mustBuildParser()

func mustBuildParser() *participle.Parser[Diagram] {
	p, err := participle.Build[Diagram](
		participle.Lexer(XaddLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Sprintf("grammar: failed to build parser: %v", err))
	}
	return p
}

// ParseString parses src (named filename for error positions) into a
// Diagram AST. On failure the returned error is a participle.Error
// carrying a Position; callers render it (internal/diag renders it with
// Rust-style caret diagnostics for the CLI/REPL/LSP surfaces).
func ParseString(filename, src string) (*Diagram, error) {
	return parserInstance.ParseString(filename, src)
}

// ParseFile reads path and parses its contents as a Diagram AST.
func ParseFile(path string) (*Diagram, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grammar: failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}
