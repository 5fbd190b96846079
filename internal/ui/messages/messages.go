package messages

import "github.com/fragmede/dashpanel/internal/auth"

// View transition messages.
type (
	GoBackMsg      struct{}
	OpenLoginMsg   struct{}
	OpenHistoryMsg struct{}
	OpenURLMsg     struct{ URL string }
)

// Data messages.
type (
	// PageLoadedMsg reports the end of a Start or LoadMore on a panel.
	PageLoadedMsg struct {
		Panel   string
		Added   int
		HasMore bool
		Err     error
	}

	// DeletedMsg reports a confirmed delete, successful or not.
	DeletedMsg struct {
		Panel   string
		Kind    string
		ItemID  string
		Label   string
		Removed int
		Err     error
	}

	LoginResultMsg struct {
		Viewer auth.Viewer
		Err    error
	}

	SessionRestoredMsg struct {
		Viewer auth.Viewer
	}

	LoggedOutMsg struct {
		Err error
	}

	// NewItemsMsg carries the number of items on a panel's first page that
	// are not loaded locally.
	NewItemsMsg struct {
		Panel string
		Count int
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
