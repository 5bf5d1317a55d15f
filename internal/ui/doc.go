// Package ui implements a read-only terminal browser for the playlist store using bubbletea's Elm architecture.
//
// The browser has two views:
//  1. [PlaylistListView] : every playlist with its owner, track count and total duration
//  2. [TrackListView] : the tracks of the selected playlist
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Data is read through a [Source], which [repositories.Repository] satisfies.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
