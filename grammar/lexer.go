package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// XaddLexer tokenizes the textual XADD format: a whitespace-insensitive
// S-expression-like grammar of decisions, branches, and arithmetic
// leaf/inequality expressions. The token set is deliberately small; the
// format has no keywords, strings, or statement punctuation.
var XaddLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},

		// Relational and arithmetic operators; multi-character relations
		// must be matched before their single-character prefixes.
		{"Operator", `(<=|>=|==|!=|[-+*/<>])`, nil},

		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Number", `[0-9]+(\.[0-9]+)?`, nil},

		{"Punctuation", `[()\[\],]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
