package browser

// Event is a notification raised by the host browser.
type Event interface {
	browserEvent()
}

// TabCreated is raised after a tab is opened.
type TabCreated struct {
	Tab Tab
}

// TabRemoved is raised after a tab is closed. IsWindowClosing is set when the
// tab went away because its whole window closed.
type TabRemoved struct {
	TabID           int
	WindowID        int
	IsWindowClosing bool
}

// TabChange lists the properties of a tab update; nil means unchanged.
type TabChange struct {
	URL   *string
	Title *string
}

// TabUpdated is raised after a tab's properties change.
type TabUpdated struct {
	TabID  int
	Change TabChange
}

// WindowFocusChanged is raised when focus moves; WindowID may be WindowIDNone.
type WindowFocusChanged struct {
	WindowID int
}

// WindowRemoved is raised after a window closes.
type WindowRemoved struct {
	WindowID int
}

// MenuClicked is raised when a context-menu item is chosen.
type MenuClicked struct {
	MenuItemID string
	// TabID is the tab the menu was opened on.
	TabID int
}

func (TabCreated) browserEvent()         {}
func (TabRemoved) browserEvent()         {}
func (TabUpdated) browserEvent()         {}
func (WindowFocusChanged) browserEvent() {}
func (WindowRemoved) browserEvent()      {}
func (MenuClicked) browserEvent()        {}
