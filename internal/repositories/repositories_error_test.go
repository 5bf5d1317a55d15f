package repositories

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

func TestPlaylistErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := setupTestRepo(t)
			owner := mustUser(t, repo, 1)

			for _, name := range []string{"", "   ", strings.Repeat("x", models.MaxPlaylistNameLength+1)} {
				if _, err := repo.CreatePlaylist(ctx, owner.ID, name, ""); !errors.Is(err, shared.ErrValidation) {
					t.Errorf("name %q: expected ErrValidation, got %v", name, err)
				}
			}
			if n := countRows(t, repo, "playlists"); n != 0 {
				t.Errorf("expected no playlists, got %d", n)
			}
		})

		t.Run("UnknownOwner", func(t *testing.T) {
			repo := setupTestRepo(t)
			if _, err := repo.CreatePlaylist(ctx, 999, "Orphan", ""); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := setupTestRepo(t)
			if _, err := repo.GetPlaylist(ctx, 42); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("NotFound After Delete", func(t *testing.T) {
			repo := setupTestRepo(t)
			p := mustPlaylist(t, repo, mustUser(t, repo, 1), "Gone")

			if _, err := repo.DeletePlaylist(ctx, p.ID, 1); err != nil {
				t.Fatalf("failed to delete playlist: %v", err)
			}
			if _, err := repo.GetPlaylist(ctx, p.ID); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := setupTestRepo(t)
			if _, err := repo.DeletePlaylist(ctx, 42, 1); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("Forbidden leaves data intact", func(t *testing.T) {
			repo := setupTestRepo(t)
			mustUser(t, repo, 2)
			p := mustPlaylist(t, repo, mustUser(t, repo, 1), "Mine")
			mustTrack(t, repo, 1, "a", 30)

			if _, err := repo.DeletePlaylist(ctx, p.ID, 2); !errors.Is(err, shared.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}

			got, err := repo.GetPlaylist(ctx, p.ID)
			if err != nil {
				t.Fatalf("playlist should still exist: %v", err)
			}
			if len(got.Tracks) != 1 || got.Duration != 30 {
				t.Errorf("playlist should be untouched, got %d tracks and %ds", len(got.Tracks), got.Duration)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		repo := setupTestRepo(t)
		p := mustPlaylist(t, repo, mustUser(t, repo, 1), "Mine")
		blank, other := " ", "Theirs"

		if _, err := repo.UpdatePlaylist(ctx, p.ID, 1, models.PlaylistPatch{Name: &blank}); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if _, err := repo.UpdatePlaylist(ctx, p.ID, 2, models.PlaylistPatch{Name: &other}); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if _, err := repo.UpdatePlaylist(ctx, 99, 1, models.PlaylistPatch{Name: &other}); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		got, err := repo.GetPlaylist(ctx, p.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.Name != "Mine" {
			t.Errorf("failed updates must not change the name, got %q", got.Name)
		}
	})
}

func TestTrackErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("AddTrack", func(t *testing.T) {
		t.Run("Unknown user has no playlist", func(t *testing.T) {
			repo := setupTestRepo(t)

			_, _, err := repo.AddTrack(ctx, 77, "Song", "file-1", 100)
			if !errors.Is(err, shared.ErrNoPlaylist) {
				t.Fatalf("expected ErrNoPlaylist, got %v", err)
			}
			if n := countRows(t, repo, "users"); n != 0 {
				t.Errorf("expected no user rows, got %d", n)
			}
			if n := countRows(t, repo, "tracks"); n != 0 {
				t.Errorf("expected no track rows, got %d", n)
			}
		})

		t.Run("Known user without playlists", func(t *testing.T) {
			repo := setupTestRepo(t)
			mustUser(t, repo, 1)
			mustPlaylist(t, repo, mustUser(t, repo, 2), "Someone else's")

			if _, _, err := repo.AddTrack(ctx, 1, "Song", "file-1", 100); !errors.Is(err, shared.ErrNoPlaylist) {
				t.Fatalf("expected ErrNoPlaylist, got %v", err)
			}
			if n := countRows(t, repo, "tracks"); n != 0 {
				t.Errorf("expected no track rows, got %d", n)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			repo := setupTestRepo(t)
			mustPlaylist(t, repo, mustUser(t, repo, 1), "P")

			if _, _, err := repo.AddTrack(ctx, 1, "Song", "", 100); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation for missing media ref, got %v", err)
			}
			if _, _, err := repo.AddTrack(ctx, 1, "Song", "file-1", -1); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation for negative duration, got %v", err)
			}
		})
	})

	t.Run("RemoveTrack", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := setupTestRepo(t)
			if _, err := repo.RemoveTrack(ctx, 5, 1); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("Forbidden", func(t *testing.T) {
			repo := setupTestRepo(t)
			p := mustPlaylist(t, repo, mustUser(t, repo, 1), "P")
			track := mustTrack(t, repo, 1, "a", 50)

			if _, err := repo.RemoveTrack(ctx, track.ID, 2); !errors.Is(err, shared.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}

			got, _ := repo.GetPlaylist(ctx, p.ID)
			if got.Duration != 50 || len(got.Tracks) != 1 {
				t.Errorf("forbidden removal must not mutate, got %d tracks and %ds", len(got.Tracks), got.Duration)
			}
		})

		t.Run("Underflow clamps at zero", func(t *testing.T) {
			var buf bytes.Buffer
			repo := NewRepository(setupTestDB(t), shared.NewLogger(&buf))
			p := mustPlaylist(t, repo, mustUser(t, repo, 1), "P")
			track := mustTrack(t, repo, 1, "a", 100)

			if _, err := repo.db.Exec("UPDATE playlists SET duration = 5 WHERE id = ?", p.ID); err != nil {
				t.Fatalf("failed to corrupt duration: %v", err)
			}

			if _, err := repo.RemoveTrack(ctx, track.ID, 1); err != nil {
				t.Fatalf("failed to remove track: %v", err)
			}

			got, _ := repo.GetPlaylist(ctx, p.ID)
			if got.Duration != 0 {
				t.Errorf("expected duration clamped to 0, got %d", got.Duration)
			}
			if !strings.Contains(buf.String(), "clamping at zero") {
				t.Errorf("expected an underflow warning, got %q", buf.String())
			}
		})
	})

	t.Run("ListRemovableTracks NotFound", func(t *testing.T) {
		repo := setupTestRepo(t)
		if _, err := repo.ListRemovableTracks(ctx, 3); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	db.Close()

	_, err := repo.ListPlaylists(ctx)
	if !errors.Is(err, shared.ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
	if shared.IsBusinessError(err) {
		t.Error("store failures must not look like business errors")
	}

	if err := repo.Ping(ctx); !errors.Is(err, shared.ErrStore) {
		t.Errorf("expected ErrStore from Ping, got %v", err)
	}
}

func TestRecalculateDurations(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	p := mustPlaylist(t, repo, mustUser(t, repo, 1), "P")
	mustTrack(t, repo, 1, "a", 10)
	mustTrack(t, repo, 1, "b", 15)

	if _, err := repo.db.Exec("UPDATE playlists SET duration = 999 WHERE id = ?", p.ID); err != nil {
		t.Fatalf("failed to corrupt duration: %v", err)
	}

	n, err := repo.RecalculateDurations(ctx)
	if err != nil {
		t.Fatalf("failed to recalculate: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 repaired playlist, got %d", n)
	}

	got, _ := repo.GetPlaylist(ctx, p.ID)
	if got.Duration != 25 {
		t.Errorf("expected duration 25, got %d", got.Duration)
	}

	if n, _ := repo.RecalculateDurations(ctx); n != 0 {
		t.Errorf("expected nothing to repair on second run, got %d", n)
	}
}
