package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/amber/internal/store"
)

// registerTools registers the session tools. The resource_ tools mirror the
// resources for clients that cannot read resources.
func (s *Server) registerTools() error {
	tools := []struct {
		name    string
		params  interface{}
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"resource_session_list", SessionListParams{}, s.handleSessionList},
		{"resource_session_show", SessionIDParams{}, s.handleSessionShow},
		{"session_autosave", SessionAutoSaveParams{}, s.handleSessionAutoSave},
		{"session_remove", SessionIDParams{}, s.handleSessionRemove},
	}

	for _, tool := range tools {
		opts, err := WithStructOptions(GetEnhancedDescription(tool.name), tool.params)
		if err != nil {
			return fmt.Errorf("failed to create %s options: %w", tool.name, err)
		}
		s.mcpServer.AddTool(mcp.NewTool(tool.name, opts...), tool.handler)
	}
	return nil
}

func (s *Server) handleSessionList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionListParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}

	list, err := s.sessionList(ctx, params.State)
	if err != nil {
		return nil, err
	}
	return createEnhancedResult("resource_session_list", list, nil)
}

func (s *Server) handleSessionShow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionIDParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}

	sess, err := s.resolve(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}
	return createEnhancedResult("resource_session_show", s.detail(ctx, sess), inferred(params.SessionID, sess))
}

func (s *Server) handleSessionAutoSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionAutoSaveParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}

	sess, err := s.resolve(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}

	sess, err = s.store.Update(ctx, sess.ID, store.Changes{AutoSave: &params.Enabled})
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	s.log.Info("auto-save changed", "session", sess.ID, "enabled", params.Enabled)

	return createEnhancedResult("session_autosave", s.info(ctx, sess), inferred(params.SessionID, sess))
}

func (s *Server) handleSessionRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionIDParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}

	sess, err := s.resolve(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("failed to remove session: %w", err)
	}
	s.log.Info("session removed", "session", sess.ID)

	return createEnhancedResult("session_remove", map[string]string{
		"removed": sess.ID,
		"message": fmt.Sprintf("Session %s removed", sess.ID),
	}, inferred(params.SessionID, sess))
}

// inferred records the id a short reference resolved to.
func inferred(ref string, sess *store.Session) *ToolResultMetadata {
	if ref == sess.ID {
		return nil
	}
	return &ToolResultMetadata{
		InferredParameters: map[string]string{"session_id": sess.ID},
	}
}
