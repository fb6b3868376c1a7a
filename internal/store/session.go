// Package store persists sessions: named groups of a browser window's tabs.
package store

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrNotFound matches every error reporting a missing session.
	ErrNotFound = errors.New("session not found")
	// ErrAlreadyExists matches every error reporting a duplicate session id.
	ErrAlreadyExists = errors.New("session already exists")
)

// ErrSessionNotFound is returned when no session has the given id or window.
type ErrSessionNotFound struct {
	ID       string
	WindowID int
}

func (e ErrSessionNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("no session bound to window %d", e.WindowID)
	}
	return fmt.Sprintf("session not found: %s", e.ID)
}

// Is makes the error match ErrNotFound.
func (e ErrSessionNotFound) Is(target error) bool { return target == ErrNotFound }

// ErrSessionExists is returned by Add for an id already stored.
type ErrSessionExists struct {
	ID string
}

func (e ErrSessionExists) Error() string {
	return fmt.Sprintf("session already exists: %s", e.ID)
}

// Is makes the error match ErrAlreadyExists.
func (e ErrSessionExists) Is(target error) bool { return target == ErrAlreadyExists }

// Session binds a browser window to the tab URLs last known to be saved.
//
// Name and URI stay empty until the companion confirms the first save.
type Session struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	URI      string   `yaml:"uri,omitempty" json:"uri,omitempty"`
	WindowID int      `yaml:"windowId" json:"windowId"`
	Tabs     []string `yaml:"tabs" json:"tabs"`
	AutoSave bool     `yaml:"autoSave" json:"autoSave"`

	CreatedAt time.Time `yaml:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `yaml:"updatedAt" json:"updatedAt"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Tabs = slices.Clone(s.Tabs)
	return &c
}

// Confirmed reports whether the companion has saved the session.
func (s *Session) Confirmed() bool {
	return s.URI != ""
}

// Changes is a partial update. Nil fields are left alone; for Tabs a nil
// slice means unchanged and an empty non-nil slice clears the list.
type Changes struct {
	Name     *string
	URI      *string
	WindowID *int
	Tabs     []string
	AutoSave *bool
}

// IsZero reports whether the changes touch nothing.
func (c Changes) IsZero() bool {
	return c.Name == nil && c.URI == nil && c.WindowID == nil && c.Tabs == nil && c.AutoSave == nil
}

// Apply writes the changes into s.
func (c Changes) Apply(s *Session) {
	if c.Name != nil {
		s.Name = *c.Name
	}
	if c.URI != nil {
		s.URI = *c.URI
	}
	if c.WindowID != nil {
		s.WindowID = *c.WindowID
	}
	if c.Tabs != nil {
		s.Tabs = slices.Clone(c.Tabs)
	}
	if c.AutoSave != nil {
		s.AutoSave = *c.AutoSave
	}
}

// Diff returns the changes turning before into after.
func Diff(before, after *Session) Changes {
	var c Changes
	if before.Name != after.Name {
		c.Name = ptr(after.Name)
	}
	if before.URI != after.URI {
		c.URI = ptr(after.URI)
	}
	if before.WindowID != after.WindowID {
		c.WindowID = ptr(after.WindowID)
	}
	if !slices.Equal(before.Tabs, after.Tabs) {
		c.Tabs = slices.Clone(after.Tabs)
		if c.Tabs == nil {
			c.Tabs = []string{}
		}
	}
	if before.AutoSave != after.AutoSave {
		c.AutoSave = ptr(after.AutoSave)
	}
	return c
}

func ptr[T any](v T) *T { return &v }
