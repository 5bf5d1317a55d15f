package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

// CreatePlaylist inserts an empty playlist owned by the user with internal id ownerID.
//
// Returns [shared.ErrValidation] for a blank name and [shared.ErrNotFound] when the owner does not exist.
func (r *Repository) CreatePlaylist(ctx context.Context, ownerID int64, name, description string) (*models.Playlist, error) {
	p := &models.Playlist{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   r.now().UTC().Truncate(time.Second),
		OwnerID:     ownerID,
		Tracks:      []models.Track{},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return inTx(ctx, r, func(tx *sql.Tx) (*models.Playlist, error) {
		owner, err := findUser(ctx, tx, `id = ?`, ownerID)
		if err != nil {
			return nil, err
		}

		query := `
			INSERT INTO playlists (name, description, cover_ref, created_at, duration, owner_id)
			VALUES (?, ?, NULL, ?, 0, ?)
		`
		res, err := tx.ExecContext(ctx, query, p.Name, nullString(p.Description), p.CreatedAt, p.OwnerID)
		if err != nil {
			return nil, shared.StoreError(err, "failed to insert playlist")
		}

		if p.ID, err = res.LastInsertId(); err != nil {
			return nil, shared.StoreError(err, "failed to read playlist id")
		}
		p.Owner = owner

		r.logger.Info("created playlist", "playlist_id", p.ID, "owner", owner.ExternalID)
		return p, nil
	})
}

// ListPlaylists returns every playlist with its owner, oldest first.
func (r *Repository) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return inTx(ctx, r, func(tx *sql.Tx) ([]models.Playlist, error) {
		return queryPlaylists(ctx, tx, "")
	})
}

// ListPlaylistsByOwner returns the playlists owned by the user with the given platform id, oldest first.
func (r *Repository) ListPlaylistsByOwner(ctx context.Context, externalID int64) ([]models.Playlist, error) {
	return inTx(ctx, r, func(tx *sql.Tx) ([]models.Playlist, error) {
		return queryPlaylists(ctx, tx, ` WHERE u.external_id = ?`, externalID)
	})
}

// GetPlaylist returns a playlist with its owner and tracks.
func (r *Repository) GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error) {
	return inTx(ctx, r, func(tx *sql.Tx) (*models.Playlist, error) {
		p, err := loadPlaylist(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		if p.Tracks, err = loadTracks(ctx, tx, id); err != nil {
			return nil, err
		}
		return p, nil
	})
}

// DeletePlaylist removes a playlist and all of its tracks when requesterExternalID owns it.
//
// The returned playlist is the state just before deletion. A non-owner gets [shared.ErrForbidden] and nothing changes.
func (r *Repository) DeletePlaylist(ctx context.Context, id int64, requesterExternalID int64) (*models.Playlist, error) {
	return inTx(ctx, r, func(tx *sql.Tx) (*models.Playlist, error) {
		p, err := loadPlaylist(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		if !p.IsOwnedBy(requesterExternalID) {
			return nil, errors.Wrapf(shared.ErrForbidden, "user %d does not own playlist %d", requesterExternalID, id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE playlist_id = ?`, id); err != nil {
			return nil, shared.StoreError(err, "failed to delete tracks")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
			return nil, shared.StoreError(err, "failed to delete playlist")
		}

		r.logger.Info("deleted playlist", "playlist_id", id, "tracks", p.TrackCount)
		return p, nil
	})
}

// UpdatePlaylist applies an owner's edit to the playlist's name, description or cover.
func (r *Repository) UpdatePlaylist(ctx context.Context, id int64, requesterExternalID int64, patch models.PlaylistPatch) (*models.Playlist, error) {
	return inTx(ctx, r, func(tx *sql.Tx) (*models.Playlist, error) {
		p, err := loadPlaylist(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		if !p.IsOwnedBy(requesterExternalID) {
			return nil, errors.Wrapf(shared.ErrForbidden, "user %d does not own playlist %d", requesterExternalID, id)
		}

		if patch.Empty() {
			return p, nil
		}

		patch.Apply(p)
		if err := p.Validate(); err != nil {
			return nil, err
		}

		query := `UPDATE playlists SET name = ?, description = ?, cover_ref = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, query, p.Name, nullString(p.Description), nullString(p.CoverRef), id); err != nil {
			return nil, shared.StoreError(err, "failed to update playlist")
		}
		return p, nil
	})
}

// RecalculateDurations rewrites every cached playlist duration from its tracks and returns how many were wrong.
func (r *Repository) RecalculateDurations(ctx context.Context) (int64, error) {
	return inTx(ctx, r, func(tx *sql.Tx) (int64, error) {
		query := `
			UPDATE playlists
			SET duration = (SELECT COALESCE(SUM(t.duration), 0) FROM tracks t WHERE t.playlist_id = playlists.id)
			WHERE duration != (SELECT COALESCE(SUM(t.duration), 0) FROM tracks t WHERE t.playlist_id = playlists.id)
		`
		res, err := tx.ExecContext(ctx, query)
		if err != nil {
			return 0, shared.StoreError(err, "failed to recalculate durations")
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, shared.StoreError(err, "failed to get affected rows")
		}
		if n > 0 {
			r.logger.Warn("repaired playlist durations", "playlists", n)
		}
		return n, nil
	})
}
