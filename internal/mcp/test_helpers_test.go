package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/index"
	"github.com/aki/amber/internal/store"
)

// setupTestServer creates a server over a fresh store whose indexes follow
// store writes.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	dataDir := t.TempDir()
	st, err := store.NewFileStore(dataDir)
	require.NoError(t, err)
	idx, err := index.NewManager(dataDir)
	require.NoError(t, err)

	st.OnCreating(func(ctx context.Context, s *store.Session) {
		_, _ = idx.Acquire(ctx, s.ID)
	})
	st.OnDeleting(func(ctx context.Context, s *store.Session) {
		_ = idx.Release(ctx, s.ID)
	})

	s, err := NewServer(st, idx, logger.Nop())
	require.NoError(t, err)
	return s
}

func putSession(t *testing.T, s *Server, sess *store.Session) {
	t.Helper()
	require.NoError(t, s.store.Put(context.Background(), sess))
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// decodeResult unmarshals the "result" field of an enhanced tool result.
func decodeResult(t *testing.T, result *mcp.CallToolResult, target interface{}) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var envelope struct {
		Result   json.RawMessage        `json:"result"`
		Metadata map[string]interface{} `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Result, target))
	return envelope.Metadata
}
