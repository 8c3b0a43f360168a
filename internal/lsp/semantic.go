package lsp

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/xadd-go/xadd/grammar"
)

// SemanticToken is a single LSP semantic token entry. Line and StartChar
// are 0-based; TokenType indexes SemanticTokenTypes and TokenModifiers is
// a bitmask over SemanticTokenModifiers.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

// leafFunctions are identifiers highlighted as functions rather than
// variables when they head a call.
var leafFunctions = map[string]bool{
	"sin": true, "cos": true, "tan": true,
	"sinh": true, "cosh": true, "tanh": true,
	"exp": true, "log": true, "log2": true, "log10": true, "log1p": true,
	"floor": true, "ceil": true, "sqrt": true, "pow": true,
}

// collectSemanticTokens lexes source and classifies every token. Working
// from the token stream rather than the AST keeps positions exact and
// still produces tokens for documents that fail to parse.
func collectSemanticTokens(source string) []SemanticToken {
	lx, err := grammar.XaddLexer.Lex("", strings.NewReader(source))
	if err != nil {
		return nil
	}
	symbols := grammar.XaddLexer.Symbols()

	var tokens []SemanticToken
	var pending *lexer.Token // identifier waiting to learn if "(" follows

	flushPending := func(isCall bool) {
		if pending == nil {
			return
		}
		tokenType := "variable"
		if isCall && leafFunctions[pending.Value] {
			tokenType = "function"
		}
		tokens = append(tokens, makeToken(pending.Pos, pending.Value, tokenType))
		pending = nil
	}

	for {
		tok, err := lx.Next()
		if err != nil || tok.EOF() {
			break
		}
		switch tok.Type {
		case symbols["Ident"]:
			flushPending(false)
			t := tok
			pending = &t
		case symbols["Number"]:
			flushPending(false)
			tokens = append(tokens, makeToken(tok.Pos, tok.Value, "number"))
		case symbols["Operator"]:
			flushPending(false)
			tokens = append(tokens, makeToken(tok.Pos, tok.Value, "operator"))
		case symbols["Punctuation"]:
			flushPending(tok.Value == "(")
		default:
			// Whitespace between an identifier and "(" still makes a call.
			if tok.Type != symbols["Whitespace"] {
				flushPending(false)
			}
		}
	}
	flushPending(false)

	return tokens
}

func makeToken(pos lexer.Position, value, tokenType string) SemanticToken {
	return SemanticToken{
		Line:      uint32(pos.Line - 1),
		StartChar: uint32(pos.Column - 1),
		Length:    uint32(len(value)),
		TokenType: indexOf(tokenType, SemanticTokenTypes),
	}
}

// indexOf returns the index of a string in a list, or -1 if not found.
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}
