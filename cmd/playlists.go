package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints stored playlists, optionally only one owner's.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, db, err := r.openRepository(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	var playlists []models.Playlist
	if owner := cmd.Int64("owner"); owner != 0 {
		playlists, err = repo.ListPlaylistsByOwner(ctx, owner)
	} else {
		playlists, err = repo.ListPlaylists(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	total := 0
	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		total += p.Duration
		r.writePlain("%4d  %-30s %-20s %3d tracks  %s\n",
			p.ID, p.Name, p.Owner.Mention(), p.TrackCount, formatter.FormatDuration(p.Duration))
	}
	return r.writePlain("Total duration: %s\n", formatter.FormatDuration(total))
}

// PlaylistsShow prints one playlist with its tracks.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, db, err := r.openRepository(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := repo.GetPlaylist(ctx, cmd.Int64("id"))
	if err != nil {
		return fmt.Errorf("failed to get playlist: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(p, true)
	}

	text, err := formatter.ExportToText(p)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// PlaylistsExport writes a playlist to disk in the requested format.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, db, err := r.openRepository(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := repo.GetPlaylist(ctx, cmd.Int64("id"))
	if err != nil {
		return fmt.Errorf("failed to get playlist: %w", err)
	}

	paths, err := formatter.WriteExport(p, format, cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	r.logger.Info("exported playlist", "id", p.ID, "format", format, "files", len(paths))
	r.writePlain("✓ Exported '%s' (%d tracks)\n", p.Name, len(p.Tracks))
	for _, path := range paths {
		r.writePlain("  %s\n", path)
	}
	return nil
}

// PlaylistsExportAll runs a bulk export and prints progress as it goes.
func (r *Runner) PlaylistsExportAll(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, db, err := r.openRepository(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := tasks.NewExporter(repo, r.logger).BulkExport(ctx, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		IDs:        cmd.Int64Slice("id"),
	}, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("bulk export failed: %w", err)
	}

	r.writePlain("✓ Exported %d/%d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d playlist(s) failed to export, see %s", result.FailedExports, result.ManifestPath)
	}
	return nil
}

// PlaylistsRepair recalculates every stored duration from its tracks.
func (r *Runner) PlaylistsRepair(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, db, err := r.openRepository(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	repaired, err := repo.RecalculateDurations(ctx)
	if err != nil {
		return fmt.Errorf("failed to repair durations: %w", err)
	}
	return r.writePlain("✓ Repaired %d playlist(s)\n", repaired)
}
