package lsp

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/xadd-go/xadd/internal/diag"
)

// ConvertParseError transforms a grammar parse error into LSP diagnostics
// for IDE display, anchored at the error's source position.
func ConvertParseError(err error) []protocol.Diagnostic {
	var pe participle.Error
	if !errors.As(err, &pe) {
		return []protocol.Diagnostic{{
			Range:    protocol.Range{Start: protocol.Position{}, End: protocol.Position{Character: 1}},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("xadd-parser"),
			Message:  err.Error(),
		}}
	}

	pos := pe.Position()
	line := uint32(0)
	char := uint32(0)
	if pos.Line > 0 {
		line = uint32(pos.Line - 1)
	}
	if pos.Column > 0 {
		char = uint32(pos.Column - 1)
	}

	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: char},
			End:   protocol.Position{Line: line, Character: char + 5},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("xadd-parser"),
		Message:  pe.Message(),
	}}
}

// ConvertEngineError transforms an engine error (malformed decision,
// unknown operator, ...) into LSP diagnostics. Engine errors report in
// terms of decisions and node ids rather than source spans, so the
// diagnostic is anchored at the start of the document and tagged with the
// error's code.
func ConvertEngineError(err error) []protocol.Diagnostic {
	message := err.Error()
	if code := diag.CodeFor(err); code != "" {
		message = fmt.Sprintf("%s: %s", code, message)
	}

	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{},
			End:   protocol.Position{Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("xadd-engine"),
		Message:  message,
	}}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}
