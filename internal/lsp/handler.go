// Package lsp implements a language server for .xadd files: live
// diagnostics for parse and decision errors, completion over the closed
// binary operator set and the leaf function names, and semantic tokens for
// editor highlighting.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/xadd-go/xadd/grammar"
	"github.com/xadd-go/xadd/internal/importer"
	"github.com/xadd-go/xadd/internal/xadd"
)

// Semantic token types advertised to the client; indices into this slice
// appear in the encoded token stream.
var SemanticTokenTypes = []string{
	"variable",
	"function",
	"number",
	"operator",
}

// Semantic token modifiers advertised to the client.
var SemanticTokenModifiers = []string{
	"declaration",
	"readonly",
}

// XaddHandler implements the LSP server handlers for .xadd documents.
type XaddHandler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewXaddHandler creates and returns a new XaddHandler instance.
func NewXaddHandler() *XaddHandler {
	return &XaddHandler{
		content: make(map[string]string),
	}
}

// Initialize responds to the client's initialize request and advertises
// the server's capabilities.
func (h *XaddHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// Initialized is called once the client has processed the server's
// capabilities.
func (h *XaddHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("xadd LSP initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *XaddHandler) Shutdown(ctx *glsp.Context) error {
	log.Println("xadd LSP shutdown")
	return nil
}

// SetTrace handles trace-level changes from the client.
func (h *XaddHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor.
func (h *XaddHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("opened file: %s\n", params.TextDocument.URI)

	diagnostics, err := h.updateAST(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to update AST: %w", err)
	}
	if diagnostics != nil {
		sendDiagnosticNotification(ctx, params.TextDocument.URI, diagnostics)
	}
	return nil
}

// TextDocumentDidClose handles file close notifications from the editor.
func (h *XaddHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("closed file: %s\n", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	return nil
}

// TextDocumentDidChange handles file change notifications from the editor.
func (h *XaddHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Printf("changed file: %s\n", params.TextDocument.URI)

	diagnostics, err := h.updateAST(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to update AST: %w", err)
	}
	if diagnostics != nil {
		sendDiagnosticNotification(ctx, params.TextDocument.URI, diagnostics)
	}
	return nil
}

// TextDocumentCompletion offers the closed binary operator set plus the
// leaf function names, so clients don't have to memorize them. The unary
// operators neg, pos, sgn and not are not offered.
func (h *XaddHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (interface{}, error) {
	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        operatorCompletions(),
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the
// entire document.
func (h *XaddHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	log.Println("TextDocumentSemanticTokensFull called for:", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	source, err := h.getOrLoadContent(ctx, path, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	tokens := collectSemanticTokens(source)

	var data []uint32
	var prevLine, prevStart uint32

	// Encode tokens into the LSP wire format: delta-line, delta-start
	// compression relative to the previous token.
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

func (h *XaddHandler) getOrLoadContent(ctx *glsp.Context, path string, rawURI protocol.DocumentUri) (string, error) {
	h.mu.RLock()
	source, ok := h.content[path]
	h.mu.RUnlock()

	if !ok {
		diagnostics, err := h.updateAST(rawURI)
		if err != nil {
			return "", err
		}
		if diagnostics != nil {
			sendDiagnosticNotification(ctx, rawURI, diagnostics)
		}

		h.mu.RLock()
		source = h.content[path]
		h.mu.RUnlock()
	}

	return source, nil
}

// updateAST re-reads, re-parses, and re-validates the document behind
// rawURI, returning the diagnostics to publish (nil when clean).
func (h *XaddHandler) updateAST(rawURI protocol.DocumentUri) ([]protocol.Diagnostic, error) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	h.mu.Lock()
	h.content[path] = string(content)
	h.mu.Unlock()

	ast, err := grammar.ParseString(path, string(content))
	if err != nil {
		return ConvertParseError(err), nil
	}

	// The diagram parsed; build it into a throwaway engine so decision
	// validation (malformed decisions, nonlinear guards) surfaces too.
	if _, err := importer.ImportAST(xadd.NewEngine(), ast); err != nil {
		return ConvertEngineError(err), nil
	}

	return nil, nil
}

// uriToPath converts a file URI to a platform-local file path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, strip the leading slash of /C:/... paths.
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	log.Printf("sending %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func operatorCompletions() []protocol.CompletionItem {
	opKind := protocol.CompletionItemKindOperator
	fnKind := protocol.CompletionItemKindFunction

	var items []protocol.CompletionItem
	for _, op := range []string{
		"add", "subtract", "prod", "div", "min", "max",
		"and", "or", "==", "!=", "<", "<=", ">", ">=",
	} {
		items = append(items, protocol.CompletionItem{
			Label:  op,
			Kind:   &opKind,
			Detail: ptrString("binary operator"),
		})
	}
	for _, fn := range []string{
		"sin", "cos", "tan", "sinh", "cosh", "tanh",
		"exp", "log", "log2", "log10", "log1p",
		"floor", "ceil", "sqrt", "pow",
	} {
		items = append(items, protocol.CompletionItem{
			Label:  fn,
			Kind:   &fnKind,
			Detail: ptrString("leaf function"),
		})
	}
	return items
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func ptrString(s string) *string {
	return &s
}
