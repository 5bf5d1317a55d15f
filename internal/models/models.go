package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/shared"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultDisplayName = "Пользователь"
	DefaultTrackTitle  = "Без названия"

	MaxPlaylistNameLength = 100
	MaxTrackTitleLength   = 200
	MaxMediaRefLength     = 300
)

var validate = validator.New()

// User is a chat-platform user identified by the platform's numeric id.
type User struct {
	ID          int64  `json:"id"`
	ExternalID  int64  `json:"external_id" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Handle      string `json:"handle,omitempty"`
}

// Mention renders the user the way chat messages refer to them: @handle when one is set, the display name otherwise.
func (u *User) Mention() string {
	if u == nil {
		return DefaultDisplayName
	}
	if u.Handle != "" {
		return "@" + u.Handle
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return DefaultDisplayName
}

// Validate checks the user's fields.
func (u *User) Validate() error {
	return check(u, "user")
}

// Playlist is an owned, ordered collection of tracks.
//
// Duration caches the sum of the durations of the playlist's tracks, in seconds.
type Playlist struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	CoverRef    string    `json:"cover_ref,omitempty" validate:"max=300"`
	CreatedAt   time.Time `json:"created_at"`
	Duration    int       `json:"duration" validate:"gte=0"`
	OwnerID     int64     `json:"owner_id"`
	TrackCount  int       `json:"track_count"`
	Owner       *User     `json:"owner,omitempty" validate:"-"`
	Tracks      []Track   `json:"tracks,omitempty" validate:"-"`
}

// Validate checks the playlist's fields. Names are trimmed-non-blank and at most [MaxPlaylistNameLength] characters.
func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.Wrap(shared.ErrValidation, "playlist name is blank")
	}
	if utf8.RuneCountInString(p.Name) > MaxPlaylistNameLength {
		return errors.Wrapf(shared.ErrValidation, "playlist name longer than %d characters", MaxPlaylistNameLength)
	}
	return check(p, "playlist")
}

// IsOwnedBy reports whether the platform user externalID owns the playlist. The owner must be loaded.
func (p *Playlist) IsOwnedBy(externalID int64) bool {
	return p.Owner != nil && p.Owner.ExternalID == externalID
}

// TrackSum is the sum of the loaded tracks' durations.
func (p *Playlist) TrackSum() int {
	total := 0
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// Track is an audio item belonging to exactly one playlist.
type Track struct {
	ID         int64  `json:"id"`
	Title      string `json:"title" validate:"required"`
	MediaRef   string `json:"media_ref" validate:"required,max=300"`
	Duration   int    `json:"duration" validate:"gte=0"`
	PlaylistID int64  `json:"playlist_id"`
}

// Validate checks the track's fields.
func (t *Track) Validate() error {
	if utf8.RuneCountInString(t.Title) > MaxTrackTitleLength {
		return errors.Wrapf(shared.ErrValidation, "track title longer than %d characters", MaxTrackTitleLength)
	}
	return check(t, "track")
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// PlaylistPatch lists the owner-editable playlist fields. Nil fields are left unchanged.
type PlaylistPatch struct {
	Name        *string
	Description *string
	CoverRef    *string
}

// Empty reports whether the patch changes nothing.
func (p PlaylistPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.CoverRef == nil
}

// Apply copies the set fields onto pl.
func (p PlaylistPatch) Apply(pl *Playlist) {
	if p.Name != nil {
		pl.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		pl.Description = strings.TrimSpace(*p.Description)
	}
	if p.CoverRef != nil {
		pl.CoverRef = *p.CoverRef
	}
}

func check(v any, kind string) error {
	if err := validate.Struct(v); err != nil {
		return errors.Wrapf(shared.ErrValidation, "invalid %s: %v", kind, err)
	}
	return nil
}
