package bot

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/dialogue"
	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/shared"
)

func (h *Handler) startDialogue(ctx context.Context, ev Event) ([]Reply, error) {
	if err := h.sessions.Put(ctx, ev.UserID, dialogue.Start(h.now())); err != nil {
		return nil, err
	}
	return []Reply{text(formatter.MsgAskName)}, nil
}

func (h *Handler) continueDialogue(ctx context.Context, ev Event, s *dialogue.Session) ([]Reply, error) {
	switch s.Step {
	case dialogue.StepAwaitingName:
		next, err := s.SetName(ev.Text, h.now())
		if errors.Is(err, shared.ErrValidation) {
			if strings.TrimSpace(ev.Text) == "" {
				return []Reply{text(formatter.MsgEmptyName)}, nil
			}
			return []Reply{text(formatter.MsgNameTooLong)}, nil
		}
		if err != nil {
			return nil, err
		}

		if err := h.sessions.Put(ctx, ev.UserID, next); err != nil {
			return nil, err
		}
		return []Reply{text(formatter.MsgAskDescription)}, nil
	case dialogue.StepAwaitingDescription:
		return h.finishDialogue(ctx, ev, *s, strings.TrimSpace(ev.Text))
	}

	if err := h.sessions.Delete(ctx, ev.UserID); err != nil {
		return nil, err
	}
	return []Reply{text(formatter.MsgUnknown)}, nil
}

func (h *Handler) skipDescription(ctx context.Context, ev Event) ([]Reply, error) {
	s, err := h.sessions.Get(ctx, ev.UserID)
	if errors.Is(err, dialogue.ErrNoSession) {
		return []Reply{text(formatter.MsgUnknown)}, nil
	}
	if err != nil {
		return nil, err
	}

	if s.Step == dialogue.StepAwaitingName {
		return []Reply{text(formatter.MsgAskName)}, nil
	}
	return h.finishDialogue(ctx, ev, *s, "")
}

func (h *Handler) cancelDialogue(ctx context.Context, ev Event) ([]Reply, error) {
	_, err := h.sessions.Get(ctx, ev.UserID)
	if errors.Is(err, dialogue.ErrNoSession) {
		return []Reply{text(formatter.MsgNothingToCancel)}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := h.sessions.Delete(ctx, ev.UserID); err != nil {
		return nil, err
	}
	return []Reply{text(formatter.MsgCancelled)}, nil
}

// finishDialogue creates the playlist, registering the user on first use, then forgets the session.
func (h *Handler) finishDialogue(ctx context.Context, ev Event, s dialogue.Session, description string) ([]Reply, error) {
	done, err := s.Finish(h.now())
	if err != nil {
		return nil, err
	}

	user, err := h.repo.EnsureUser(ctx, ev.UserID, ev.FirstName, ev.Username)
	if err != nil {
		return nil, err
	}

	p, err := h.repo.CreatePlaylist(ctx, user.ID, done.Name, description)
	if errors.Is(err, shared.ErrValidation) {
		return []Reply{text(formatter.MsgInvalidInput)}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := h.sessions.Delete(ctx, ev.UserID); err != nil {
		h.logger.Warn("failed to clear finished dialogue", "user", ev.UserID, "err", err)
	}

	h.logger.Info("playlist created", "user", ev.UserID, "playlist_id", p.ID)
	return []Reply{{
		Text:      formatter.PlaylistCreated(p.Name),
		ParseMode: formatter.ParseMode,
		Keyboard: [][]Button{
			row(Button{Text: "🎧 " + p.Name, Data: callback(cbInfo, p.ID)}),
			row(Button{Text: formatter.BtnAllPlaylists, Data: cbAll}),
		},
	}}, nil
}
