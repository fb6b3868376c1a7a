package browser

import "context"

// WindowQuery filters ListWindows.
type WindowQuery struct {
	Populate bool
	// Types restricts the result to these window types; empty means all.
	Types []WindowType
}

// CreateWindowOptions configures a new window.
type CreateWindowOptions struct {
	URL string
}

// TabQuery filters QueryTabs. Zero values do not filter.
type TabQuery struct {
	Highlighted   bool
	CurrentWindow bool
	WindowID      int
}

// CreateTabOptions configures a new tab.
type CreateTabOptions struct {
	WindowID  int
	URL       string
	Active    bool
	Discarded bool
	// Index places the tab; negative appends.
	Index int
}

// UpdateTabOptions changes an existing tab.
type UpdateTabOptions struct {
	URL string
}

// MoveOptions places moved tabs. WindowID of zero keeps the tabs in their
// window; Index -1 appends.
type MoveOptions struct {
	WindowID int
	Index    int
}

// MenuItem is a tab context-menu entry.
type MenuItem struct {
	ID       string
	ParentID string
	Title    string
	Contexts []string
}

// Windows is the window part of the host API.
type Windows interface {
	GetWindow(ctx context.Context, windowID int, populate bool) (*Window, error)
	ListWindows(ctx context.Context, query WindowQuery) ([]*Window, error)
	CreateWindow(ctx context.Context, opts CreateWindowOptions) (*Window, error)
	SetTitlePreface(ctx context.Context, windowID int, preface string) error
}

// Tabs is the tab part of the host API.
type Tabs interface {
	GetTab(ctx context.Context, tabID int) (*Tab, error)
	QueryTabs(ctx context.Context, query TabQuery) ([]Tab, error)
	CreateTab(ctx context.Context, opts CreateTabOptions) (*Tab, error)
	UpdateTab(ctx context.Context, tabID int, opts UpdateTabOptions) (*Tab, error)
	MoveTabs(ctx context.Context, tabIDs []int, opts MoveOptions) error
}

// Chrome is the window decoration part of the host API: the toolbar badge
// and the tab context menu.
type Chrome interface {
	// SetBadgeText sets the badge for one window; empty text clears it.
	SetBadgeText(ctx context.Context, windowID int, text string) error
	CreateMenuItem(ctx context.Context, item MenuItem) error
	UpdateMenuItem(ctx context.Context, id, title string) error
	RemoveMenuItem(ctx context.Context, id string) error
}

// Runtime reaches the extension's own UI surfaces.
type Runtime interface {
	Broadcast(ctx context.Context, message string) error
}

// Host is everything the engine needs from the browser.
type Host interface {
	Windows
	Tabs
	Chrome
	Runtime
}
