package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/xadd-go/xadd/internal/lsp"
)

const lsName = "xadd"

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	// Configure debug logging (1 = debug level, nil = default logger).
	commonlog.Configure(1, nil)

	xaddHandler := lsp.NewXaddHandler()

	handler = protocol.Handler{
		Initialize:                     xaddHandler.Initialize,
		Initialized:                    xaddHandler.Initialized,
		Shutdown:                       xaddHandler.Shutdown,
		SetTrace:                       xaddHandler.SetTrace,
		TextDocumentDidOpen:            xaddHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           xaddHandler.TextDocumentDidClose,
		TextDocumentDidChange:          xaddHandler.TextDocumentDidChange,
		TextDocumentCompletion:         xaddHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: xaddHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Printf("Starting xadd LSP server (version %s)...", version)

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting xadd LSP server:", err)
		os.Exit(1)
	}
}
