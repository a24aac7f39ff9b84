package session

import "github.com/skybi/pokedex/internal/listsync"

// Session represents the UI session of a single browser.
// Every session owns the list view state of exactly one controller.
// The ID is a random UUID which is handed to the browser as a cookie.
type Session struct {
	ID         string
	Controller *listsync.Controller
	Expires    int64
}
