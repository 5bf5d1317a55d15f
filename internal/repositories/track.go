package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

// AddTrack appends a track to the first playlist, by creation order, owned by ownerExternalID.
//
// The track insert and the duration increment commit together. A user that is unknown or owns no playlists gets
// [shared.ErrNoPlaylist] and nothing is written. Titles over [models.MaxTrackTitleLength] runes are truncated. The returned playlist reflects the new duration and track count.
func (r *Repository) AddTrack(ctx context.Context, ownerExternalID int64, title, mediaRef string, duration int) (*models.Track, *models.Playlist, error) {
	track := &models.Track{
		Title:    models.TruncateRunes(strings.TrimSpace(title), models.MaxTrackTitleLength),
		MediaRef: mediaRef,
		Duration: duration,
	}
	if track.Title == "" {
		track.Title = models.DefaultTrackTitle
	}
	if err := track.Validate(); err != nil {
		return nil, nil, err
	}

	var playlist *models.Playlist
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT p.id FROM playlists p
			JOIN users u ON u.id = p.owner_id
			WHERE u.external_id = ?
			ORDER BY p.id ASC
			LIMIT 1
		`
		err := tx.QueryRowContext(ctx, query, ownerExternalID).Scan(&track.PlaylistID)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(shared.ErrNoPlaylist, "user %d", ownerExternalID)
		}
		if err != nil {
			return shared.StoreError(err, "failed to find target playlist")
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO tracks (title, media_ref, duration, playlist_id) VALUES (?, ?, ?, ?)`,
			track.Title, track.MediaRef, track.Duration, track.PlaylistID,
		)
		if err != nil {
			return shared.StoreError(err, "failed to insert track")
		}

		if track.ID, err = res.LastInsertId(); err != nil {
			return shared.StoreError(err, "failed to read track id")
		}

		if _, err := tx.ExecContext(ctx, `UPDATE playlists SET duration = duration + ? WHERE id = ?`, track.Duration, track.PlaylistID); err != nil {
			return shared.StoreError(err, "failed to update playlist duration")
		}

		playlist, err = loadPlaylist(ctx, tx, track.PlaylistID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	r.logger.Debug("added track", "track_id", track.ID, "playlist_id", track.PlaylistID, "duration", track.Duration)
	return track, playlist, nil
}

// RemoveTrack deletes a track when requesterExternalID owns its playlist, and subtracts its duration from the playlist.
//
// The cached duration never drops below zero. The returned track carries the id of its former playlist.
func (r *Repository) RemoveTrack(ctx context.Context, trackID int64, requesterExternalID int64) (*models.Track, error) {
	return inTx(ctx, r, func(tx *sql.Tx) (*models.Track, error) {
		track, err := loadTrack(ctx, tx, trackID)
		if err != nil {
			return nil, err
		}

		var (
			owner   int64
			current int
		)
		query := `SELECT u.external_id, p.duration FROM playlists p JOIN users u ON u.id = p.owner_id WHERE p.id = ?`
		if err := tx.QueryRowContext(ctx, query, track.PlaylistID).Scan(&owner, &current); err != nil {
			return nil, shared.StoreError(err, "failed to query track playlist")
		}

		if owner != requesterExternalID {
			return nil, errors.Wrapf(shared.ErrForbidden, "user %d does not own playlist %d", requesterExternalID, track.PlaylistID)
		}

		if current < track.Duration {
			r.logger.Warn("playlist duration smaller than removed track, clamping at zero",
				"playlist_id", track.PlaylistID, "duration", current, "track_duration", track.Duration)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, trackID); err != nil {
			return nil, shared.StoreError(err, "failed to delete track")
		}

		if _, err := tx.ExecContext(ctx, `UPDATE playlists SET duration = MAX(duration - ?, 0) WHERE id = ?`, track.Duration, track.PlaylistID); err != nil {
			return nil, shared.StoreError(err, "failed to update playlist duration")
		}
		return track, nil
	})
}

// ListRemovableTracks returns the tracks of a playlist in insertion order.
func (r *Repository) ListRemovableTracks(ctx context.Context, playlistID int64) ([]models.Track, error) {
	return inTx(ctx, r, func(tx *sql.Tx) ([]models.Track, error) {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ?)`, playlistID).Scan(&exists); err != nil {
			return nil, shared.StoreError(err, "failed to check playlist")
		}
		if !exists {
			return nil, errors.Wrapf(shared.ErrNotFound, "playlist %d", playlistID)
		}
		return loadTracks(ctx, tx, playlistID)
	})
}

func loadTrack(ctx context.Context, tx *sql.Tx, id int64) (*models.Track, error) {
	var t models.Track
	err := tx.QueryRowContext(ctx, `SELECT id, title, media_ref, duration, playlist_id FROM tracks WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &t.MediaRef, &t.Duration, &t.PlaylistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(shared.ErrNotFound, "track %d", id)
	}
	if err != nil {
		return nil, shared.StoreError(err, "failed to query track")
	}
	return &t, nil
}

func loadTracks(ctx context.Context, tx *sql.Tx, playlistID int64) ([]models.Track, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, title, media_ref, duration, playlist_id FROM tracks WHERE playlist_id = ? ORDER BY id ASC`,
		playlistID,
	)
	if err != nil {
		return nil, shared.StoreError(err, "failed to query tracks")
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Title, &t.MediaRef, &t.Duration, &t.PlaylistID); err != nil {
			return nil, shared.StoreError(err, "failed to scan track")
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.StoreError(err, "row iteration error")
	}
	return tracks, nil
}
