package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
	th "github.com/desertthunder/plbot/internal/testing"
)

func testPlaylist() *models.Playlist {
	return &models.Playlist{
		ID:          12,
		Name:        "Test Playlist",
		Description: "A test playlist",
		CreatedAt:   time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Duration:    420,
		TrackCount:  2,
		Owner:       &models.User{ExternalID: 1, DisplayName: "Ann", Handle: "ann"},
		Tracks: []models.Track{
			{ID: 1, Title: "Song One", MediaRef: "file-1", Duration: 180, PlaylistID: 12},
			{ID: 2, Title: "Song, Two", MediaRef: "file-2", Duration: 240, PlaylistID: 12},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testPlaylist())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Title,Duration,Seconds,MediaRef") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Song One,3:00,180,file-1") {
			t.Errorf("CSV missing first track, got: %s", output)
		}
		if !strings.Contains(output, `"Song, Two"`) {
			t.Errorf("CSV should quote titles containing commas, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		p := testPlaylist()
		p.CoverRef = "photo-1"

		data, err := ExportToMarkdown(p)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"**Description**: A test playlist",
			"**Owner**: @ann",
			"**Created**: 2024-03-09",
			"**Tracks**: 2",
			"**Duration**: 00ч 07мин",
			"**Cover**: `photo-1`",
			"1. Song One [3:00]",
			"2. Song, Two [4:00]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without description", func(t *testing.T) {
		p := testPlaylist()
		p.Description = ""

		data, _ := ExportToMarkdown(p)
		if strings.Contains(string(data), "**Description**") {
			t.Error("Markdown should omit an empty description")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testPlaylist())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Playlist: Test Playlist", "Tracks: 2", "1. Song One (3:00)"} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testPlaylist())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var meta map[string]any
		if err := json.Unmarshal(data, &meta); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if meta["name"] != "Test Playlist" {
			t.Errorf("expected name in metadata, got %v", meta["name"])
		}
		if _, ok := meta["tracks"]; ok {
			t.Error("metadata should not include tracks")
		}
	})

	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testPlaylist(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != "playlist_12_tracks.csv" {
				t.Errorf("unexpected tracks file %s", result.TracksFile)
			}
			th.AssertFileExists(t, result.TracksFile)
			th.AssertFileExists(t, result.MetadataFile)

			if content := th.MustReadFile(t, result.MetadataFile); !strings.Contains(content, "Test Playlist") {
				t.Errorf("metadata file missing playlist name: %s", content)
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom")

			result, err := WriteCSVExport(testPlaylist(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != base+"_tracks.csv" || result.MetadataFile != base+"_metadata.json" {
				t.Errorf("unexpected result %+v", result)
			}
			th.AssertFileExists(t, result.TracksFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")

		path, err := WriteMarkdownExport(testPlaylist(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		th.AssertDirExists(t, dir)
		if !strings.HasPrefix(th.MustReadFile(t, path), "# Test Playlist") {
			t.Errorf("README.md should start with the playlist title")
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		dir := t.TempDir()

		files, err := WriteExport(testPlaylist(), FormatText, filepath.Join(dir, "out.txt"))
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("expected one file, got %v", files)
		}
		th.AssertFileExists(t, files[0])

		files, err = WriteExport(testPlaylist(), FormatCSV, filepath.Join(dir, "out"))
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if len(files) != 2 {
			t.Errorf("expected tracks and metadata files, got %v", files)
		}

		if _, err := WriteExport(testPlaylist(), Format("xml"), ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
		err  bool
	}{
		{in: "csv", want: FormatCSV},
		{in: "MD", want: FormatMarkdown},
		{in: "markdown", want: FormatMarkdown},
		{in: " txt ", want: FormatText},
		{in: "json", err: true},
	}

	for _, tt := range tc {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseFormat(%q) error = %v, want error %v", tt.in, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
