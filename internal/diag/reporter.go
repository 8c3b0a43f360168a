package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/alecthomas/participle/v2"
)

// Level is the severity of a CompilerError.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
	Help    Level = "help"
)

// Position locates a CompilerError in source text. Line/Column are
// 1-based; a zero Line means "no known source location" (e.g. an error
// raised deep inside Apply with no surviving parse position).
type Position struct {
	Line, Column int
}

// Suggestion is a suggested fix attached to a CompilerError.
type Suggestion struct {
	Message     string
	Replacement string
	Position    Position
	Length      int
}

// CompilerError is a structured error with suggestions and context,
// carrying one of the codes in codes.go.
type CompilerError struct {
	Level       Level
	Code        string
	Message     string
	Position    Position
	Length      int
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

// FromEngineError builds a CompilerError from an xadd package error with
// no known source position (the common case: engine operations report
// failures in terms of node/decision ids, not source spans).
func FromEngineError(err error) CompilerError {
	code := CodeFor(err)
	return CompilerError{
		Level:   Error,
		Code:    code,
		Message: err.Error(),
	}
}

// FromParseError builds a CompilerError from a participle parse error,
// which does carry a source position. Wrapped parse errors (e.g. from the
// importer) are unwrapped first.
func FromParseError(err error) CompilerError {
	var pe participle.Error
	if !errors.As(err, &pe) {
		return CompilerError{Level: Error, Code: CodeParseError, Message: err.Error()}
	}
	pos := pe.Position()
	return CompilerError{
		Level:    Error,
		Code:     CodeParseError,
		Message:  pe.Message(),
		Position: Position{Line: pos.Line, Column: pos.Column},
		Length:   1,
	}
}

// FromAny classifies err: parse errors keep their source position,
// everything else is reported as an engine error.
func FromAny(err error) CompilerError {
	var pe participle.Error
	if errors.As(err, &pe) {
		return FromParseError(err)
	}
	return FromEngineError(err)
}

// Reporter formats CompilerErrors against one source file.
type Reporter struct {
	filename string
	source   string
	lines    []string
}

// NewReporter returns a Reporter for filename/source.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		source:   source,
		lines:    strings.Split(source, "\n"),
	}
}

// FormatError renders err with Rust-like styling: a header line, a
// location line, a code frame with a caret marker, and any
// suggestions/notes/help text attached.
func (r *Reporter) FormatError(err CompilerError) string {
	var result strings.Builder

	levelColor := r.levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(err.Level)), err.Message))
	}

	if err.Position.Line <= 0 {
		result.WriteString("\n")
		return result.String()
	}

	lineWidth := r.lineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", lineWidth)

	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column))
	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Position.Line > 1 && err.Position.Line-1 < len(r.lines) {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", lineWidth, err.Position.Line-1)), dim("│"), r.lines[err.Position.Line-2]))
	}

	if err.Position.Line <= len(r.lines) {
		line := r.lines[err.Position.Line-1]
		result.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", lineWidth, err.Position.Line)), dim("│"), line))
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), r.marker(err.Position.Column, err.Length, err.Level)))
	}

	if err.Position.Line < len(r.lines) {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", lineWidth, err.Position.Line+1)), dim("│"), r.lines[err.Position.Line]))
	}

	if len(err.Suggestions) > 0 {
		result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		cyan := color.New(color.FgCyan).SprintFunc()
		for i, s := range err.Suggestions {
			if i == 0 {
				result.WriteString(fmt.Sprintf("%s %s %s: %s\n", indent, cyan("help"), cyan("try"), s.Message))
			} else {
				result.WriteString(fmt.Sprintf("%s %s %s\n", indent, cyan("    "), s.Message))
			}
		}
	}

	for _, note := range err.Notes {
		blue := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), blue("note:"), note))
	}

	if err.HelpText != "" {
		green := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), green("help:"), err.HelpText))
	}

	result.WriteString("\n")
	return result.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (r *Reporter) marker(column, length int, level Level) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max(0, column-1))
	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == Warning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func (r *Reporter) lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
