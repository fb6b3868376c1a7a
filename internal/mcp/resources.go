package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/store"
)

const (
	sessionListURI = "amber://session"
	sessionPrefix  = sessionListURI + "/"
)

// Session states accepted by the list filter.
const (
	stateAll    = "all"
	stateOpen   = "open"
	stateClosed = "closed"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		sessionListURI,
		"Session List",
		mcp.WithResourceDescription("List all stored browser sessions"),
		mcp.WithMIMEType("application/json"),
	), s.handleSessionListResource)

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(
		sessionPrefix+"{id}",
		"Session Details",
		mcp.WithTemplateDescription("Get a stored session by ID or index"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleSessionDetailResource)
}

// sessionInfo is the summary shown in session lists.
type sessionInfo struct {
	ID        string `json:"id"`
	Index     string `json:"index,omitempty"`
	Name      string `json:"name,omitempty"`
	URI       string `json:"uri,omitempty"`
	WindowID  int    `json:"windowId"`
	Open      bool   `json:"open"`
	Saved     bool   `json:"saved"`
	AutoSave  bool   `json:"autoSave"`
	TabCount  int    `json:"tabCount"`
	UpdatedAt string `json:"updatedAt"`
	Detail    string `json:"detail"`
}

// sessionDetail adds the saved tab URLs to the summary.
type sessionDetail struct {
	sessionInfo
	Tabs      []string `json:"tabs"`
	CreatedAt string   `json:"createdAt"`
}

func (s *Server) info(ctx context.Context, sess *store.Session) sessionInfo {
	info := sessionInfo{
		ID:        sess.ID,
		Name:      sess.Name,
		URI:       sess.URI,
		WindowID:  sess.WindowID,
		Open:      sess.WindowID != browser.WindowIDNone,
		Saved:     sess.Confirmed(),
		AutoSave:  sess.AutoSave,
		TabCount:  len(sess.Tabs),
		UpdatedAt: sess.UpdatedAt.Format(time.RFC3339),
		Detail:    sessionPrefix + sess.ID,
	}
	if s.index != nil {
		if idx, ok := s.index.Get(ctx, sess.ID); ok {
			info.Index = idx.String()
		}
	}
	return info
}

func (s *Server) detail(ctx context.Context, sess *store.Session) sessionDetail {
	return sessionDetail{
		sessionInfo: s.info(ctx, sess),
		Tabs:        sess.Tabs,
		CreatedAt:   sess.CreatedAt.Format(time.RFC3339),
	}
}

// sessionList returns the stored sessions in the given state.
func (s *Server) sessionList(ctx context.Context, state string) ([]sessionInfo, error) {
	switch state {
	case "", stateAll, stateOpen, stateClosed:
	default:
		return nil, InvalidParameterError("state", "one of all, open, closed")
	}

	list := []sessionInfo{}
	err := s.store.Each(ctx, func(sess *store.Session) error {
		open := sess.WindowID != browser.WindowIDNone
		if (state == stateOpen && !open) || (state == stateClosed && open) {
			return nil
		}
		list = append(list, s.info(ctx, sess))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return list, nil
}

func (s *Server) handleSessionListResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.sessionList(ctx, stateAll)
	if err != nil {
		return nil, err
	}
	return jsonContents(request.Params.URI, list)
}

// parseSessionURI extracts the session reference from amber://session/{id}.
func parseSessionURI(uri string) (string, error) {
	ref, ok := strings.CutPrefix(uri, sessionPrefix)
	if !ok || ref == "" || strings.Contains(ref, "/") {
		return "", fmt.Errorf("invalid session URI: %s", uri)
	}
	return ref, nil
}

func (s *Server) handleSessionDetailResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ref, err := parseSessionURI(request.Params.URI)
	if err != nil {
		return nil, err
	}

	sess, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return jsonContents(request.Params.URI, s.detail(ctx, sess))
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
