// Package mcp exposes stored browser sessions over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/index"
	"github.com/aki/amber/internal/store"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Server serves the session store to MCP clients over stdio.
type Server struct {
	mcpServer *server.MCPServer
	store     store.Store
	index     *index.Manager
	log       logger.Logger
}

// NewServer creates a server over st. Session references may be ids or
// the short indexes kept by idx.
func NewServer(st store.Store, idx *index.Manager, log logger.Logger) (*Server, error) {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"amber",
			Version,
			server.WithResourceCapabilities(false, false),
			server.WithToolCapabilities(false),
			server.WithLogging(),
		),
		store: st,
		index: idx,
		log:   log.WithGroup("mcp"),
	}

	s.registerResources()
	if err := s.registerTools(); err != nil {
		return nil, err
	}

	return s, nil
}

// Start serves requests on stdin and stdout until the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("serving MCP over stdio")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}

// resolve finds the session named by ref, an id or an index.
func (s *Server) resolve(ctx context.Context, ref string) (*store.Session, error) {
	if ref == "" {
		return nil, InvalidParameterError("session_identifier", "a session id or index")
	}

	id := ref
	if s.index != nil {
		id = s.index.Resolve(ctx, ref)
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, SessionNotFoundError(ref)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}
