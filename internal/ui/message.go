package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plbot/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgPlaylistFetched
)

type playlistsFetched struct {
	playlists []models.Playlist
	err       error
}

type playlistFetched struct {
	playlist *models.Playlist
	err      error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsFetched{playlists, err}}
}

// playlistFetchedMsg is the constructor for [MsgPlaylistFetched]
func playlistFetchedMsg(playlist *models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistFetched, data: playlistFetched{playlist, err}}
}
