// Package bot turns chat events into repository calls and renders the replies.
//
// [Handler.Handle] is transport neutral: an adapter converts platform updates into [Event] values and sends
// each returned [Reply]. Expected outcomes (not found, not the owner, no playlist yet, invalid input) become
// user-facing messages. Store failures are logged and answered with a generic error message.
package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/dialogue"
	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

// Callback data prefixes. Ids follow the underscore, e.g. "plinfo_12".
const (
	cbAll         = "all"
	cbMine        = "my"
	cbNewPlaylist = "new_playlist"
	cbInfo        = "plinfo"
	cbDelete      = "del"
	cbEdit        = "edit"
	cbDeleteTrack = "deltrack"
	cbPlay        = "play"
)

// DefaultDialogueTTL is used when no session store is supplied.
const DefaultDialogueTTL = 10 * time.Minute

// Repository is the persistence the handlers need. [repositories.Repository] implements it.
type Repository interface {
	EnsureUser(ctx context.Context, externalID int64, displayName, handle string) (*models.User, error)
	FindUser(ctx context.Context, externalID int64) (*models.User, error)
	CreatePlaylist(ctx context.Context, ownerID int64, name, description string) (*models.Playlist, error)
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	ListPlaylistsByOwner(ctx context.Context, externalID int64) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id int64, requesterExternalID int64) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, requesterExternalID int64, patch models.PlaylistPatch) (*models.Playlist, error)
	AddTrack(ctx context.Context, ownerExternalID int64, title, mediaRef string, duration int) (*models.Track, *models.Playlist, error)
	RemoveTrack(ctx context.Context, trackID int64, requesterExternalID int64) (*models.Track, error)
	ListRemovableTracks(ctx context.Context, playlistID int64) ([]models.Track, error)
}

// Options configures a [Handler].
type Options struct {
	Repository Repository
	// Sessions defaults to an in-memory store with [DefaultDialogueTTL].
	Sessions dialogue.Store
	Logger   *log.Logger
	// RatePerSecond and Burst bound events per user. A non-positive rate disables limiting.
	RatePerSecond float64
	Burst         int
}

// Handler routes events to the playlist operations.
type Handler struct {
	repo     Repository
	sessions dialogue.Store
	logger   *log.Logger
	limiter  *userLimiter
	now      func() time.Time
}

func NewHandler(opts Options) *Handler {
	if opts.Sessions == nil {
		opts.Sessions = dialogue.NewMemoryStore(DefaultDialogueTTL)
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Handler{
		repo:     opts.Repository,
		sessions: opts.Sessions,
		logger:   opts.Logger,
		limiter:  newUserLimiter(opts.RatePerSecond, opts.Burst),
		now:      time.Now,
	}
}

// Handle processes one event and returns the replies to send, in order.
//
// The error is non-nil only for events that cannot be attributed to a user.
func (h *Handler) Handle(ctx context.Context, ev Event) ([]Reply, error) {
	if ev.UserID == 0 {
		return nil, errors.Wrap(shared.ErrInvalidInput, "event has no user id")
	}

	logger := h.logger.With("user", ev.UserID, "kind", ev.Kind())
	if !h.limiter.Allow(ev.UserID) {
		logger.Warn("rate limited")
		return []Reply{text(formatter.MsgSlowDown)}, nil
	}

	replies, err := h.route(ctx, ev)
	switch {
	case err == nil:
		logger.Debug("handled event", "replies", len(replies))
		return replies, nil
	case shared.IsBusinessError(err):
		logger.Debug("rejected event", "err", err)
		return []Reply{text(businessMessage(err))}, nil
	default:
		logger.Error("failed to handle event", "err", err)
		return []Reply{text(formatter.MsgGenericError)}, nil
	}
}

func (h *Handler) route(ctx context.Context, ev Event) ([]Reply, error) {
	switch {
	case ev.Audio != nil:
		return h.addTrack(ctx, ev)
	case ev.Photo != nil:
		return h.setCover(ctx, ev)
	case ev.Callback != "":
		return h.routeCallback(ctx, ev)
	}

	if cmd, args, ok := parseCommand(ev.Text); ok {
		return h.routeCommand(ctx, ev, cmd, args)
	}
	return h.routeText(ctx, ev)
}

func (h *Handler) routeCommand(ctx context.Context, ev Event, cmd, args string) ([]Reply, error) {
	switch cmd {
	case "start":
		return h.welcome(), nil
	case "all":
		return h.listAll(ctx, false)
	case "my":
		return h.listMine(ctx, ev, false)
	case "new_playlist":
		return h.startDialogue(ctx, ev)
	case "skip":
		return h.skipDescription(ctx, ev)
	case "cancel":
		return h.cancelDialogue(ctx, ev)
	case "add_track":
		return []Reply{text(formatter.MsgAddTrackHint)}, nil
	case "edit_playlist":
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			return []Reply{text(formatter.MsgEditUsage)}, nil
		}
		return h.editPlaylist(ctx, ev, id, false)
	case "rename":
		return h.rename(ctx, ev, args)
	case "cover":
		return []Reply{text(formatter.MsgCoverUsage)}, nil
	}
	return []Reply{text(formatter.MsgUnknown)}, nil
}

func (h *Handler) routeCallback(ctx context.Context, ev Event) ([]Reply, error) {
	switch ev.Callback {
	case cbAll:
		return h.listAll(ctx, true)
	case cbMine:
		return h.listMine(ctx, ev, true)
	case cbNewPlaylist:
		return h.startDialogue(ctx, ev)
	}

	action, id, ok := parseCallback(ev.Callback)
	if !ok {
		return []Reply{text(formatter.MsgUnknown)}, nil
	}

	switch action {
	case cbInfo:
		return h.showPlaylist(ctx, ev, id)
	case cbDelete:
		return h.deletePlaylist(ctx, ev, id)
	case cbEdit:
		return h.editPlaylist(ctx, ev, id, true)
	case cbDeleteTrack:
		return h.removeTrack(ctx, ev, id)
	case cbPlay:
		return h.play(ctx, id)
	}
	return []Reply{text(formatter.MsgUnknown)}, nil
}

func (h *Handler) routeText(ctx context.Context, ev Event) ([]Reply, error) {
	s, err := h.sessions.Get(ctx, ev.UserID)
	if errors.Is(err, dialogue.ErrNoSession) {
		return []Reply{text(formatter.MsgUnknown)}, nil
	}
	if err != nil {
		return nil, err
	}
	return h.continueDialogue(ctx, ev, s)
}

func (h *Handler) welcome() []Reply {
	return []Reply{{
		Text:      formatter.Welcome(),
		ParseMode: formatter.ParseMode,
		Keyboard: [][]Button{
			row(Button{Text: formatter.BtnAllPlaylists, Data: cbAll}, Button{Text: formatter.BtnMyPlaylists, Data: cbMine}),
			row(Button{Text: formatter.BtnCreatePlaylist, Data: cbNewPlaylist}),
		},
	}}
}

// businessMessage is the fallback text for expected outcomes no route handled itself.
func businessMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return formatter.MsgPlaylistNotFound
	case errors.Is(err, shared.ErrForbidden):
		return formatter.MsgForbiddenEdit
	case errors.Is(err, shared.ErrNoPlaylist):
		return formatter.MsgCreatePlaylistFirst
	}
	return formatter.MsgInvalidInput
}

// parseCommand splits "/cmd@bot args" into its name and argument string.
func parseCommand(s string) (cmd, args string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(s[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// parseCallback splits "action_<id>" data.
func parseCallback(data string) (action string, id int64, ok bool) {
	i := strings.LastIndexByte(data, '_')
	if i <= 0 {
		return "", 0, false
	}

	id, err := strconv.ParseInt(data[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return data[:i], id, true
}

func callback(action string, id int64) string {
	return action + "_" + strconv.FormatInt(id, 10)
}
