package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plbot/internal/models"
	"github.com/desertthunder/plbot/internal/shared"
)

// Source loads stored playlists. [repositories.Repository] implements it.
type Source interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error)
}

// Exporter writes stored playlists to files.
type Exporter struct {
	source Source
	logger *log.Logger
}

func NewExporter(source Source, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Exporter{source: source, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
