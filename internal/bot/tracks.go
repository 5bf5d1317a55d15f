package bot

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/shared"
)

// addTrack appends an audio attachment to the sender's first playlist.
func (h *Handler) addTrack(ctx context.Context, ev Event) ([]Reply, error) {
	if ev.Audio.FileID == "" {
		return []Reply{text(formatter.MsgSendAudio)}, nil
	}

	track, p, err := h.repo.AddTrack(ctx, ev.UserID, ev.Audio.Title, ev.Audio.FileID, max(ev.Audio.Duration, 0))
	switch {
	case errors.Is(err, shared.ErrNoPlaylist):
		return []Reply{text(formatter.MsgCreatePlaylistFirst)}, nil
	case errors.Is(err, shared.ErrValidation):
		return []Reply{text(formatter.MsgSendAudio)}, nil
	case err != nil:
		return nil, err
	}

	return []Reply{{Text: formatter.TrackAdded(track, p), ParseMode: formatter.ParseMode}}, nil
}

// removeTrack deletes a track and shows the refreshed playlist.
func (h *Handler) removeTrack(ctx context.Context, ev Event, trackID int64) ([]Reply, error) {
	track, err := h.repo.RemoveTrack(ctx, trackID, ev.UserID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return []Reply{text(formatter.MsgTrackNotFound)}, nil
	case errors.Is(err, shared.ErrForbidden):
		return []Reply{text(formatter.MsgForbiddenEdit)}, nil
	case err != nil:
		return nil, err
	}

	replies := []Reply{{Text: formatter.TrackRemoved(track.Title), ParseMode: formatter.ParseMode}}
	card, err := h.showPlaylist(ctx, ev, track.PlaylistID)
	if err != nil {
		return nil, err
	}
	return append(replies, card...), nil
}
