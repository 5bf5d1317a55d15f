// package formatter renders playlists for chat replies and exports them to files (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

// Format names an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts a format name or common alias ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", errors.Wrapf(shared.ErrInvalidArgument, "unknown export format %q (use csv, markdown or text)", s)
}

// ExportToCSV converts a playlist's tracks to CSV format with columns: ID, Title, Duration, Seconds, MediaRef
func ExportToCSV(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Duration", "Seconds", "MediaRef"}); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV headers")
	}

	for _, track := range p.Tracks {
		record := []string{
			strconv.FormatInt(track.ID, 10),
			track.Title,
			FormatClock(track.Duration),
			strconv.Itoa(track.Duration),
			track.MediaRef,
		}
		if err := writer.Write(record); err != nil {
			return nil, errors.Wrap(err, "failed to write CSV record")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "CSV writer error")
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown format
func ExportToMarkdown(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)

	if p.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", p.Description)
	}

	fmt.Fprintf(&buf, "**Owner**: %s\n", p.Owner.Mention())
	fmt.Fprintf(&buf, "**Created**: %s\n", p.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(p.Tracks))
	fmt.Fprintf(&buf, "**Duration**: %s\n", FormatDuration(p.Duration))
	if p.CoverRef != "" {
		fmt.Fprintf(&buf, "**Cover**: `%s`\n", p.CoverRef)
	}

	buf.WriteString("\n## Tracks\n\n")
	for i, track := range p.Tracks {
		fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, track.Title, FormatClock(track.Duration))
	}
	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(&buf, "Duration: %s\n", FormatDuration(p.Duration))
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(p.Tracks))

	for i, track := range p.Tracks {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, track.Title, FormatClock(track.Duration))
	}
	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(p *models.Playlist) ([]byte, error) {
	meta := *p
	meta.Tracks = nil
	return json.MarshalIndent(meta, "", "  ")
}

func defaultBase(p *models.Playlist) string {
	return fmt.Sprintf("playlist_%d", p.ID)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist_{id} as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(p *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = defaultBase(p)
	}

	csvData, err := ExportToCSV(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate CSV")
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV file")
	}

	metadataJSON, err := ToMetadataJSON(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate metadata JSON")
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, errors.Wrap(err, "failed to write metadata file")
	}

	return &CSVExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport exports a playlist to {dir}/README.md. Directory name defaults to playlist_{id}.
func WriteMarkdownExport(p *models.Playlist, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = defaultBase(p)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create directory")
	}

	mdData, err := ExportToMarkdown(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate Markdown")
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write Markdown file")
	}
	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to playlist_{id}_tracks.txt as the filename.
func WriteTextExport(p *models.Playlist, path string) (string, error) {
	if path == "" {
		path = defaultBase(p) + "_tracks.txt"
	}

	textData, err := ExportToText(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate text")
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write text file")
	}
	return path, nil
}

// WriteExport writes p in the given format and returns the paths of every file created.
func WriteExport(p *models.Playlist, format Format, output string) ([]string, error) {
	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(p, output)
		if err != nil {
			return nil, err
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		path, err := WriteMarkdownExport(p, output)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatText:
		path, err := WriteTextExport(p, output)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, errors.Wrapf(shared.ErrInvalidArgument, "unknown export format %q", format)
}
