// Package dialogue tracks the two-step playlist-creation conversation per user.
//
// A [Session] moves AwaitingName -> AwaitingDescription -> Done. Transitions are pure functions on values;
// a [Store] keeps the current session for each user and forgets it after a TTL.
package dialogue

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

var (
	// ErrNoSession is returned by [Store.Get] when the user has no live dialogue.
	ErrNoSession = errors.New("no active dialogue")
	// ErrInvalidTransition is returned when a transition does not apply to the session's current step.
	ErrInvalidTransition = errors.New("invalid dialogue transition")
)

// Step is a position in the playlist-creation dialogue.
type Step int

const (
	StepAwaitingName Step = iota
	StepAwaitingDescription
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepAwaitingName:
		return "awaiting_name"
	case StepAwaitingDescription:
		return "awaiting_description"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// Session is one user's in-progress dialogue.
type Session struct {
	Step      Step      `json:"step"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Start begins a new dialogue waiting for the playlist name.
func Start(now time.Time) Session {
	return Session{Step: StepAwaitingName, UpdatedAt: now}
}

// SetName records the playlist name and moves on to the description.
func (s Session) SetName(name string, now time.Time) (Session, error) {
	if s.Step != StepAwaitingName {
		return s, errors.Wrapf(ErrInvalidTransition, "set name at step %s", s.Step)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return s, errors.Wrap(shared.ErrValidation, "playlist name is blank")
	}
	if utf8.RuneCountInString(name) > models.MaxPlaylistNameLength {
		return s, errors.Wrapf(shared.ErrValidation, "playlist name longer than %d characters", models.MaxPlaylistNameLength)
	}

	s.Name = name
	s.Step = StepAwaitingDescription
	s.UpdatedAt = now
	return s, nil
}

// Finish completes the dialogue once the description (possibly empty) is known.
func (s Session) Finish(now time.Time) (Session, error) {
	if s.Step != StepAwaitingDescription {
		return s, errors.Wrapf(ErrInvalidTransition, "finish at step %s", s.Step)
	}
	s.Step = StepDone
	s.UpdatedAt = now
	return s, nil
}

// Expired reports whether the session has been idle longer than ttl. A non-positive ttl never expires.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.UpdatedAt) > ttl
}

// Store keeps the current dialogue of each user, keyed by platform user id.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, s Session) error
	Delete(ctx context.Context, userID int64) error
}
