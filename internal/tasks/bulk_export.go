package tasks

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/formatter"
	"github.com/desertthunder/plbot/internal/models"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	manifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: csv)
	OutputDir  string           // Base output directory (default: plbot_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	IDs        []int64          // Playlists to export; empty means all of them
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   int64    `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export. It is also the manifest written next to the files.
type BulkExportResult struct {
	Format            formatter.Format       `json:"format"`
	ExportedAt        time.Time              `json:"exported_at"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

// BulkExport exports playlists concurrently and writes a manifest summarizing the results.
//
// Results are ordered by playlist id. A cancelled context stops queuing new playlists and is returned with the
// partial result.
func (e *Exporter) BulkExport(ctx context.Context, opts BulkExportOpts, prog chan<- ProgressUpdate) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("plbot_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxWorkers)

	ids := opts.IDs
	if len(ids) == 0 {
		e.sendProgress(prog, fetchingPlaylistsUpdate())
		playlists, err := e.source.ListPlaylists(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list playlists")
		}
		for _, p := range playlists {
			ids = append(ids, p.ID)
		}
	}
	e.sendProgress(prog, foundPlaylistsUpdate(len(ids)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	jobs := make(chan int64)
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case <-ctx.Done():
				return
			case jobs <- id:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Results = append(result.Results, res)
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(len(result.Results), len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("playlist export failed", "playlist_id", res.PlaylistID, "err", res.Error)
			e.sendProgress(prog, exportFailedUpdate(len(result.Results), len(ids), res.PlaylistName, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int {
		return cmp.Compare(a.PlaylistID, b.PlaylistID)
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("bulk export finished",
		"format", opts.Format, "exported", result.SuccessfulExports, "failed", result.FailedExports, "dir", opts.OutputDir)
	return result, nil
}

// exportWorker exports playlists from the jobs channel until it is closed.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan int64,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for id := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportSinglePlaylist(ctx, id, opts)
	}
}

// exportSinglePlaylist loads one playlist and writes it in the requested format.
func (e *Exporter) exportSinglePlaylist(ctx context.Context, id int64, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{PlaylistID: id, PlaylistName: fmt.Sprintf("Unknown (%d)", id)}

	p, err := e.source.GetPlaylist(ctx, id)
	if err != nil {
		return result.failed(errors.Wrap(err, "failed to load playlist"))
	}
	result.PlaylistName = p.Name

	files, err := formatter.WriteExport(p, opts.Format, exportTarget(opts.OutputDir, p, opts.Format))
	if err != nil {
		return result.failed(err)
	}

	result.Files = files
	result.Success = true
	return result
}

func (r PlaylistExportResult) failed(err error) PlaylistExportResult {
	r.Error = err
	r.ErrorMessage = err.Error()
	return r
}

// exportTarget is the path handed to the formatter: a base path for csv, a directory for markdown, a file for text.
func exportTarget(dir string, p *models.Playlist, format formatter.Format) string {
	base := filepath.Join(dir, fmt.Sprintf("playlist_%d", p.ID))
	if format == formatter.FormatText {
		return base + ".txt"
	}
	return base
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}
	return nil
}
