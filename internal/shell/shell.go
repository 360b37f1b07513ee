// Package shell models the console chrome: theme, sidebar and the active page.
// Every transition is a pure function on ViewState so the UI can replay them.
package shell

import (
	"errors"
	"fmt"
	"strings"
)

// DesktopBreakpoint is the viewport width at which the sidebar stops being a drawer.
const DesktopBreakpoint = 768

// Themes
const (
	ThemeLight   = "light"
	ThemeDark    = "dark"
	ThemeOceanic = "oceanic"
)

// Pages
const (
	PageDashboard = "dashboard"
	PageUsers     = "users"
	PagePosts     = "posts"
	PageSettings  = "settings"
	PageLogs      = "logs"
)

// Sidebar modes as rendered
const (
	SidebarExpanded     = "expanded"
	SidebarCollapsed    = "collapsed"
	SidebarDrawerOpen   = "drawer-open"
	SidebarDrawerHidden = "drawer-hidden"
)

// ValidThemes defines the selectable themes
var ValidThemes = map[string]bool{
	ThemeLight:   true,
	ThemeDark:    true,
	ThemeOceanic: true,
}

// ValidPages defines the routable pages
var ValidPages = map[string]bool{
	PageDashboard: true,
	PageUsers:     true,
	PagePosts:     true,
	PageSettings:  true,
	PageLogs:      true,
}

var (
	ErrInvalidTheme  = errors.New("invalid theme")
	ErrInvalidPage   = errors.New("invalid page")
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingTarget = errors.New("postId and platform are required")
)

// ViewState is the whole shell state. Only Theme is persisted.
type ViewState struct {
	Theme       string            `json:"theme"`
	SidebarOpen bool              `json:"sidebarOpen"`
	Desktop     bool              `json:"desktop"`
	Page        string            `json:"page"`
	Expanded    map[string]string `json:"expanded,omitempty"`
}

// NewViewState returns the state on first load for a viewport width. An
// unknown saved theme falls back to light.
func NewViewState(width int, theme string) ViewState {
	if !ValidThemes[theme] {
		theme = ThemeLight
	}
	desktop := width >= DesktopBreakpoint
	return ViewState{
		Theme:       theme,
		SidebarOpen: desktop,
		Desktop:     desktop,
		Page:        PageDashboard,
	}
}

// Resize recomputes the breakpoint. Landing on desktop always reopens the sidebar.
func (s ViewState) Resize(width int) ViewState {
	s.Desktop = width >= DesktopBreakpoint
	if s.Desktop {
		s.SidebarOpen = true
	}
	return s
}

// ToggleSidebar flips the drawer on mobile and the collapse on desktop.
func (s ViewState) ToggleSidebar() ViewState {
	s.SidebarOpen = !s.SidebarOpen
	return s
}

// Navigate mounts another page.
func (s ViewState) Navigate(page string) (ViewState, error) {
	if !ValidPages[page] {
		return s, fmt.Errorf("%w: %q", ErrInvalidPage, page)
	}
	s.Page = page
	return s, nil
}

// CycleTheme rotates light, dark, oceanic and back to light.
func (s ViewState) CycleTheme() ViewState {
	switch s.Theme {
	case ThemeLight:
		s.Theme = ThemeDark
	case ThemeDark:
		s.Theme = ThemeOceanic
	default:
		s.Theme = ThemeLight
	}
	return s
}

// SetTheme picks a theme directly, as the settings page does.
func (s ViewState) SetTheme(theme string) (ViewState, error) {
	if !ValidThemes[theme] {
		return s, fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	s.Theme = theme
	return s, nil
}

// ToggleExpanded opens one body on a content card. Opening another platform
// replaces it, toggling the open one closes it.
func (s ViewState) ToggleExpanded(postID, platform string) ViewState {
	next := make(map[string]string, len(s.Expanded)+1)
	for k, v := range s.Expanded {
		next[k] = v
	}
	if next[postID] == platform {
		delete(next, postID)
	} else {
		next[postID] = platform
	}
	s.Expanded = next
	return s
}

// ExpandedFor returns the open platform for a card, empty when collapsed.
func (s ViewState) ExpandedFor(postID string) string {
	return s.Expanded[postID]
}

// Title is the header text for the active page.
func (s ViewState) Title() string {
	if s.Page == "" {
		return ""
	}
	return strings.ToUpper(s.Page[:1]) + s.Page[1:]
}

// SidebarMode describes how the sidebar renders.
func (s ViewState) SidebarMode() string {
	switch {
	case s.Desktop && s.SidebarOpen:
		return SidebarExpanded
	case s.Desktop:
		return SidebarCollapsed
	case s.SidebarOpen:
		return SidebarDrawerOpen
	default:
		return SidebarDrawerHidden
	}
}

// ShowOverlay reports whether the mobile backdrop is visible.
func (s ViewState) ShowOverlay() bool {
	return !s.Desktop && s.SidebarOpen
}
