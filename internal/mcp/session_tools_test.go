package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/store"
)

func TestNewServer_RegistersTools(t *testing.T) {
	s := setupTestServer(t)
	require.NotNil(t, s.mcpServer)

	for name := range toolDescriptions {
		assert.NotEmpty(t, GetEnhancedDescription(name), name)
	}
}

func TestSessionList_FiltersByState(t *testing.T) {
	s := setupTestServer(t)
	putSession(t, s, &store.Session{ID: "open", WindowID: 1})
	putSession(t, s, &store.Session{ID: "closed", WindowID: browser.WindowIDNone})

	tests := []struct {
		state string
		want  []string
	}{
		{state: "", want: []string{"closed", "open"}},
		{state: "all", want: []string{"closed", "open"}},
		{state: "open", want: []string{"open"}},
		{state: "closed", want: []string{"closed"}},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			result, err := s.handleSessionList(context.Background(), callTool("resource_session_list", map[string]interface{}{"state": tt.state}))
			require.NoError(t, err)

			var list []sessionInfo
			meta := decodeResult(t, result, &list)
			assert.Equal(t, "resource_session_list", meta["tool_used"])

			var ids []string
			for _, info := range list {
				ids = append(ids, info.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestSessionList_RejectsUnknownState(t *testing.T) {
	s := setupTestServer(t)

	_, err := s.handleSessionList(context.Background(), callTool("resource_session_list", map[string]interface{}{"state": "busy"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid state")
}

func TestSessionShow_ResolvesIndex(t *testing.T) {
	s := setupTestServer(t)
	putSession(t, s, &store.Session{ID: "s1", WindowID: 1, Tabs: []string{"https://a"}})

	result, err := s.handleSessionShow(context.Background(), callTool("resource_session_show", map[string]interface{}{"session_identifier": "1"}))
	require.NoError(t, err)

	var detail sessionDetail
	meta := decodeResult(t, result, &detail)
	assert.Equal(t, "s1", detail.ID)
	assert.Equal(t, []string{"https://a"}, detail.Tabs)
	assert.Equal(t, map[string]interface{}{"session_id": "s1"}, meta["inferred_parameters"])
}

func TestSessionShow_NotFound(t *testing.T) {
	s := setupTestServer(t)

	_, err := s.handleSessionShow(context.Background(), callTool("resource_session_show", map[string]interface{}{"session_identifier": "7"}))
	require.Error(t, err)

	var suggest *ErrorWithSuggestions
	require.True(t, errors.As(err, &suggest))
	assert.Equal(t, "session not found: 7", suggest.Message)
}

func TestSessionShow_MissingIdentifier(t *testing.T) {
	s := setupTestServer(t)

	_, err := s.handleSessionShow(context.Background(), callTool("resource_session_show", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session_identifier")
}

func TestSessionAutoSave(t *testing.T) {
	ctx := context.Background()
	s := setupTestServer(t)
	putSession(t, s, &store.Session{ID: "s1", WindowID: 1})

	result, err := s.handleSessionAutoSave(ctx, callTool("session_autosave", map[string]interface{}{
		"session_identifier": "s1",
		"enabled":            true,
	}))
	require.NoError(t, err)

	var info sessionInfo
	meta := decodeResult(t, result, &info)
	assert.True(t, info.AutoSave)
	assert.Nil(t, meta["inferred_parameters"])

	sess, err := s.store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sess.AutoSave)
}

func TestSessionRemove(t *testing.T) {
	ctx := context.Background()
	s := setupTestServer(t)
	putSession(t, s, &store.Session{ID: "s1", WindowID: 1})

	result, err := s.handleSessionRemove(ctx, callTool("session_remove", map[string]interface{}{"session_identifier": "1"}))
	require.NoError(t, err)

	var out map[string]string
	decodeResult(t, result, &out)
	assert.Equal(t, "s1", out["removed"])

	_, err = s.store.Get(ctx, "s1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, ok := s.index.Get(ctx, "s1")
	assert.False(t, ok)
}

func TestErrorWithSuggestions(t *testing.T) {
	err := SessionNotFoundError("s9")
	assert.Equal(t, "session not found: s9\n\nDid you mean to use one of these tools instead?\n  - resource_session_list - List all stored sessions\n", err.Error())

	assert.ErrorIs(t, err, store.ErrNotFound)

	plain := NewErrorWithSuggestions("boom")
	assert.Equal(t, "boom", plain.Error())
}

func TestStructToToolOptions(t *testing.T) {
	opts, err := StructToToolOptions(SessionAutoSaveParams{})
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	_, err = StructToToolOptions("not a struct")
	assert.Error(t, err)
}
