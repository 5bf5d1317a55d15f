package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

// EnsureUser returns the user with the given platform id, creating it on first sight.
//
// Concurrent calls for the same id insert at most one row. Display name and handle are only used on creation.
func (r *Repository) EnsureUser(ctx context.Context, externalID int64, displayName, handle string) (*models.User, error) {
	user := &models.User{
		ExternalID:  externalID,
		DisplayName: strings.TrimSpace(displayName),
		Handle:      strings.TrimPrefix(strings.TrimSpace(handle), "@"),
	}
	if user.DisplayName == "" {
		user.DisplayName = models.DefaultDisplayName
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	return inTx(ctx, r, func(tx *sql.Tx) (*models.User, error) {
		query := `
			INSERT INTO users (external_id, display_name, handle) VALUES (?, ?, ?)
			ON CONFLICT(external_id) DO NOTHING
		`
		res, err := tx.ExecContext(ctx, query, user.ExternalID, user.DisplayName, user.Handle)
		if err != nil {
			return nil, shared.StoreError(err, "failed to insert user")
		}

		if n, _ := res.RowsAffected(); n > 0 {
			r.logger.Debug("created user", "external_id", externalID)
		}
		return findUser(ctx, tx, `external_id = ?`, externalID)
	})
}

// FindUser looks a user up by platform id without creating it.
func (r *Repository) FindUser(ctx context.Context, externalID int64) (*models.User, error) {
	return inTx(ctx, r, func(tx *sql.Tx) (*models.User, error) {
		return findUser(ctx, tx, `external_id = ?`, externalID)
	})
}

func findUser(ctx context.Context, tx *sql.Tx, where string, arg int64) (*models.User, error) {
	var u models.User
	err := tx.QueryRowContext(ctx, `SELECT id, external_id, display_name, handle FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Handle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(shared.ErrNotFound, "user %d", arg)
	}
	if err != nil {
		return nil, shared.StoreError(err, "failed to query user")
	}
	return &u, nil
}
