package shell

import "fmt"

// Action types accepted by Apply
const (
	ActionResize         = "resize"
	ActionToggleSidebar  = "toggle_sidebar"
	ActionNavigate       = "navigate"
	ActionCycleTheme     = "cycle_theme"
	ActionSetTheme       = "set_theme"
	ActionToggleExpanded = "toggle_expanded"
)

// Action is a serialized transition
type Action struct {
	Type     string `json:"type" binding:"required"`
	Width    int    `json:"width,omitempty"`
	Page     string `json:"page,omitempty"`
	Theme    string `json:"theme,omitempty"`
	PostID   string `json:"postId,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Apply runs one action against s. The input state is never modified.
func Apply(s ViewState, a Action) (ViewState, error) {
	switch a.Type {
	case ActionResize:
		return s.Resize(a.Width), nil
	case ActionToggleSidebar:
		return s.ToggleSidebar(), nil
	case ActionNavigate:
		return s.Navigate(a.Page)
	case ActionCycleTheme:
		return s.CycleTheme(), nil
	case ActionSetTheme:
		return s.SetTheme(a.Theme)
	case ActionToggleExpanded:
		if a.PostID == "" || a.Platform == "" {
			return s, ErrMissingTarget
		}
		return s.ToggleExpanded(a.PostID, a.Platform), nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

// ThemeChanged reports whether applying an action moved the theme, which is
// the only field that needs persisting.
func ThemeChanged(before, after ViewState) bool {
	return before.Theme != after.Theme
}
