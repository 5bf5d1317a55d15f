package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

func (h *Handler) listAll(ctx context.Context, edit bool) ([]Reply, error) {
	playlists, err := h.repo.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	createRow := row(Button{Text: formatter.BtnCreateOwn, Data: cbNewPlaylist})
	if len(playlists) == 0 {
		return []Reply{{Text: formatter.MsgNoPlaylists, Keyboard: [][]Button{createRow}, Edit: edit}}, nil
	}

	keyboard := playlistKeyboard(playlists)
	keyboard = append(keyboard, createRow)
	return []Reply{{
		Text:      formatter.PlaylistsSummary("Все плейлисты", playlists),
		ParseMode: formatter.ParseMode,
		Keyboard:  keyboard,
		Edit:      edit,
	}}, nil
}

func (h *Handler) listMine(ctx context.Context, ev Event, edit bool) ([]Reply, error) {
	_, err := h.repo.FindUser(ctx, ev.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return []Reply{{Text: formatter.MsgNoOwnPlaylists, Edit: edit}}, nil
	}
	if err != nil {
		return nil, err
	}

	playlists, err := h.repo.ListPlaylistsByOwner(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}

	if len(playlists) == 0 {
		return []Reply{{Text: formatter.MsgNoOwnPlaylists, Edit: edit}}, nil
	}

	keyboard := playlistKeyboard(playlists)
	keyboard = append(keyboard, row(Button{Text: formatter.BtnCreatePlaylist, Data: cbNewPlaylist}))
	return []Reply{{
		Text:      formatter.PlaylistsSummary("Мои плейлисты", playlists),
		ParseMode: formatter.ParseMode,
		Keyboard:  keyboard,
		Edit:      edit,
	}}, nil
}

func playlistKeyboard(playlists []models.Playlist) [][]Button {
	keyboard := make([][]Button, 0, len(playlists)+1)
	for _, p := range playlists {
		keyboard = append(keyboard, row(Button{Text: formatter.PlaylistButton(p), Data: callback(cbInfo, p.ID)}))
	}
	return keyboard
}

func (h *Handler) showPlaylist(ctx context.Context, ev Event, id int64) ([]Reply, error) {
	p, err := h.repo.GetPlaylist(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return []Reply{text(formatter.MsgPlaylistNotFound)}, nil
	}
	if err != nil {
		return nil, err
	}
	return []Reply{playlistCard(p, ev.UserID)}, nil
}

// playlistCard renders the detail view. Owners also get edit and delete buttons.
func playlistCard(p *models.Playlist, viewer int64) Reply {
	keyboard := [][]Button{row(Button{Text: formatter.BtnPlay, Data: callback(cbPlay, p.ID)})}
	if p.IsOwnedBy(viewer) {
		keyboard = append(keyboard, row(
			Button{Text: formatter.BtnEdit, Data: callback(cbEdit, p.ID)},
			Button{Text: formatter.BtnDelete, Data: callback(cbDelete, p.ID)},
		))
	}
	keyboard = append(keyboard, row(Button{Text: formatter.BtnBack, Data: cbAll}))

	return Reply{
		Text:      formatter.PlaylistCard(p),
		ParseMode: formatter.ParseMode,
		Keyboard:  keyboard,
		PhotoRef:  p.CoverRef,
	}
}

func (h *Handler) deletePlaylist(ctx context.Context, ev Event, id int64) ([]Reply, error) {
	p, err := h.repo.DeletePlaylist(ctx, id, ev.UserID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return []Reply{text(formatter.MsgPlaylistNotFound)}, nil
	case errors.Is(err, shared.ErrForbidden):
		return []Reply{text(formatter.MsgForbiddenDelete)}, nil
	case err != nil:
		return nil, err
	}

	h.logger.Info("playlist deleted", "user", ev.UserID, "playlist_id", id)
	return []Reply{{
		Text:      formatter.PlaylistDeleted(p.Name),
		ParseMode: formatter.ParseMode,
		Keyboard:  [][]Button{row(Button{Text: formatter.BtnAllPlaylists, Data: cbAll})},
	}}, nil
}

func (h *Handler) editPlaylist(ctx context.Context, ev Event, id int64, edit bool) ([]Reply, error) {
	p, err := h.repo.GetPlaylist(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return []Reply{text(formatter.MsgPlaylistNotFound)}, nil
	}
	if err != nil {
		return nil, err
	}

	if !p.IsOwnedBy(ev.UserID) {
		return []Reply{text(formatter.MsgForbiddenEdit)}, nil
	}

	tracks, err := h.repo.ListRemovableTracks(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return []Reply{text(formatter.MsgNoTracksToRemove)}, nil
	}

	keyboard := make([][]Button, 0, len(tracks)+1)
	for _, t := range tracks {
		keyboard = append(keyboard, row(Button{Text: formatter.TrackButton(t), Data: callback(cbDeleteTrack, t.ID)}))
	}
	keyboard = append(keyboard, row(Button{Text: formatter.BtnBack, Data: callback(cbInfo, id)}))

	return []Reply{{
		Text:      formatter.ChooseTracksToRemove(p.Name),
		ParseMode: formatter.ParseMode,
		Keyboard:  keyboard,
		Edit:      edit,
	}}, nil
}

func (h *Handler) play(ctx context.Context, id int64) ([]Reply, error) {
	p, err := h.repo.GetPlaylist(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return []Reply{text(formatter.MsgPlaylistNotFound)}, nil
	}
	if err != nil {
		return nil, err
	}

	if len(p.Tracks) == 0 {
		return []Reply{text(formatter.MsgNoTracksToPlay)}, nil
	}

	audio := make([]AudioRef, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		audio = append(audio, AudioRef{FileID: t.MediaRef, Title: t.Title})
	}
	return []Reply{{Audio: audio}}, nil
}

// rename handles "/rename <id> <name>".
func (h *Handler) rename(ctx context.Context, ev Event, args string) ([]Reply, error) {
	idArg, name, _ := strings.Cut(args, " ")
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || strings.TrimSpace(name) == "" {
		return []Reply{text(formatter.MsgRenameUsage)}, nil
	}

	p, err := h.repo.UpdatePlaylist(ctx, id, ev.UserID, models.PlaylistPatch{Name: &name})
	if err != nil {
		return h.updateFailed(err)
	}
	return []Reply{{Text: formatter.PlaylistRenamed(p.Name), ParseMode: formatter.ParseMode}}, nil
}

// setCover handles a photo captioned "/cover <id>".
func (h *Handler) setCover(ctx context.Context, ev Event) ([]Reply, error) {
	cmd, args, ok := parseCommand(ev.Photo.Caption)
	if !ok || cmd != "cover" {
		return []Reply{text(formatter.MsgCoverUsage)}, nil
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil || ev.Photo.FileID == "" {
		return []Reply{text(formatter.MsgCoverUsage)}, nil
	}

	p, err := h.repo.UpdatePlaylist(ctx, id, ev.UserID, models.PlaylistPatch{CoverRef: &ev.Photo.FileID})
	if err != nil {
		return h.updateFailed(err)
	}
	return []Reply{{Text: formatter.CoverUpdated(p.Name), ParseMode: formatter.ParseMode}}, nil
}

func (h *Handler) updateFailed(err error) ([]Reply, error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return []Reply{text(formatter.MsgPlaylistNotFound)}, nil
	case errors.Is(err, shared.ErrForbidden):
		return []Reply{text(formatter.MsgForbiddenEdit)}, nil
	case errors.Is(err, shared.ErrValidation):
		return []Reply{text(formatter.MsgInvalidInput)}, nil
	}
	return nil, err
}
