package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
)

// Source is the read side of the playlist store.
type Source interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	source       Source
	width        int
	height       int
	playlistList list.Model
	trackList    list.Model
	selected     *models.Playlist
	loaded       bool
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model reading from source.
func NewModel(ctx context.Context, source Source) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		source:       source,
		playlistList: newList(nil, "Playlists"),
		trackList:    newList(nil, "Tracks"),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// View returns the active view.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.refresh, m.keys.quit})
	}

	switch m.view {
	case TrackListView:
		return m.renderTrackList()
	default:
		return m.renderPlaylistList()
	}
}

// Selected returns the playlist whose tracks are shown, if any.
func (m *Model) Selected() *models.Playlist {
	return m.selected
}

// State returns the active view.
func (m *Model) State() ViewState {
	return m.view
}

// Init fetches the playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	case Msg:
		return m.handleMsg(msg)
	}
	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}

		items := make([]list.Item, len(data.playlists))
		for i, p := range data.playlists {
			items[i] = playlistItem{playlist: p}
		}
		cmd := m.playlistList.SetItems(items)
		m.playlistList.Title = fmt.Sprintf("Playlists (%d) • %s", len(data.playlists), formatter.FormatDuration(totalDuration(data.playlists)))
		m.loaded = true
		m.err = nil
		return m, cmd
	case MsgPlaylistFetched:
		data := msg.data.(playlistFetched)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}

		m.selected = data.playlist
		items := make([]list.Item, len(data.playlist.Tracks))
		for i, t := range data.playlist.Tracks {
			items[i] = trackItem{track: t}
		}
		cmd := m.trackList.SetItems(items)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", data.playlist.Name)
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering() {
		return m.updateLists(msg)
	}

	if m.err != nil {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh), key.Matches(msg, m.keys.back):
			m.err = nil
			m.view = PlaylistListView
			return m, m.fetchPlaylists()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		if m.view == TrackListView && m.selected != nil {
			return m, m.fetchPlaylist(m.selected.ID)
		}
		return m, m.fetchPlaylists()
	}

	switch m.view {
	case PlaylistListView:
		if key.Matches(msg, m.keys.enter) {
			if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				return m, m.fetchPlaylist(item.playlist.ID)
			}
			return m, nil
		}
	case TrackListView:
		if key.Matches(msg, m.keys.back) {
			m.view = PlaylistListView
			m.selected = nil
			return m, m.fetchPlaylists()
		}
	}
	return m.updateLists(msg)
}

func (m *Model) filtering() bool {
	switch m.view {
	case TrackListView:
		return m.trackList.FilterState() == list.Filtering
	default:
		return m.playlistList.FilterState() == list.Filtering
	}
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.source.ListPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchPlaylist(id int64) tea.Cmd {
	return func() tea.Msg {
		p, err := m.source.GetPlaylist(m.ctx, id)
		return playlistFetchedMsg(p, err)
	}
}

func (m *Model) renderPlaylistList() string {
	if !m.loaded {
		return styles.muted.Render("Loading playlists...")
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	p := m.selected
	var b strings.Builder
	b.WriteString(styles.title.Render(p.Name))
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(styles.muted.Render(p.Description))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Owner: %s  Created: %s  Duration: %s\n",
		p.Owner.Mention(), p.CreatedAt.Format("02.01.2006"), styles.accent.Render(formatter.FormatDuration(p.Duration)))
	if p.Duration != p.TrackSum() {
		b.WriteString(styles.err.Render(fmt.Sprintf("Stored duration differs from track total %s", formatter.FormatDuration(p.TrackSum()))))
		b.WriteString("\n")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.refresh, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", b.String(), m.trackList.View(), helpView)
}

func totalDuration(playlists []models.Playlist) int {
	total := 0
	for _, p := range playlists {
		total += p.Duration
	}
	return total
}
