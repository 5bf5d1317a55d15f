package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

// Repository provides transactional access to users, playlists and tracks.
type Repository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// NewRepository creates a [Repository] over db. A nil logger discards output.
func NewRepository(db *sql.DB, logger *log.Logger) *Repository {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Repository{db: db, logger: logger, now: time.Now}
}

// Ping checks that the underlying database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return shared.StoreError(err, "failed to ping database")
	}
	return nil
}

// withTx runs fn inside a single transaction.
//
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return shared.StoreError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return shared.StoreError(err, "failed to commit transaction")
	}
	return nil
}

// inTx is [Repository.withTx] for operations that produce a value.
func inTx[T any](ctx context.Context, r *Repository, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var out T
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

const playlistSelect = `
	SELECT p.id, p.name, p.description, p.cover_ref, p.created_at, p.duration, p.owner_id,
		u.id, u.external_id, u.display_name, u.handle,
		(SELECT COUNT(*) FROM tracks t WHERE t.playlist_id = p.id)
	FROM playlists p
	JOIN users u ON u.id = p.owner_id
`

func scanPlaylist(s scanner) (*models.Playlist, error) {
	var (
		p           models.Playlist
		owner       models.User
		description sql.NullString
		coverRef    sql.NullString
	)

	err := s.Scan(
		&p.ID, &p.Name, &description, &coverRef, &p.CreatedAt, &p.Duration, &p.OwnerID,
		&owner.ID, &owner.ExternalID, &owner.DisplayName, &owner.Handle,
		&p.TrackCount,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.CoverRef = coverRef.String
	p.Owner = &owner
	return &p, nil
}

// loadPlaylist reads one playlist with its owner but without tracks.
func loadPlaylist(ctx context.Context, tx *sql.Tx, id int64) (*models.Playlist, error) {
	p, err := scanPlaylist(tx.QueryRowContext(ctx, playlistSelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(shared.ErrNotFound, "playlist %d", id)
	}
	if err != nil {
		return nil, shared.StoreError(err, "failed to query playlist")
	}
	return p, nil
}

func queryPlaylists(ctx context.Context, tx *sql.Tx, where string, args ...any) ([]models.Playlist, error) {
	rows, err := tx.QueryContext(ctx, playlistSelect+where+` ORDER BY p.id ASC`, args...)
	if err != nil {
		return nil, shared.StoreError(err, "failed to query playlists")
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, shared.StoreError(err, "failed to scan playlist")
		}
		playlists = append(playlists, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.StoreError(err, "row iteration error")
	}
	return playlists, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
